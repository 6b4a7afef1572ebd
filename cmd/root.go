package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"runtime/debug"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/tacopkm/tpkm/internal/chain"
	"github.com/tacopkm/tpkm/internal/errs"
	"github.com/tacopkm/tpkm/internal/ipfs"
	"github.com/tacopkm/tpkm/internal/keystore"
	"github.com/tacopkm/tpkm/internal/netconf"
	"github.com/tacopkm/tpkm/internal/tui"
	"github.com/tacopkm/tpkm/internal/util"

	ethcommon "github.com/ethereum/go-ethereum/common"
)

const logoHeader = `
  _____                 ____  _  ____  __
 |_   _|_ _  ___ ___   |  _ \| |/ /  \/  |
   | |/ _` + "`" + ` |/ __/ _ \  | |_) | ' /| |\/| |
   | | (_| | (_| (_) | |  __/| . \| |  | |
   |_|\__,_|\___\___/  |_|   |_|\_\_|  |_|
`

func printLogo() {
	color.RGB(255, 176, 46).Print(logoHeader)
	fmt.Println()
}

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "tpkm",
	Short: "TacoPKM, the blockchain-backed library package manager",
	Run: func(cmd *cobra.Command, args []string) {
		printLogo()
		cmd.Help()
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("log-level", "info", "The log level to use")
}

// initConfig wires the environment and makes sure ~/.tacopkm exists.
func initConfig() {
	if _, err := util.ConfigDir(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	viper.AutomaticEnv() // read in environment variables that match
}

func newLogger(cmd *cobra.Command) *log.Logger {
	logger := log.New(os.Stderr)
	levelStr, _ := cmd.Flags().GetString("log-level")
	if os.Getenv("DEBUG") != "" {
		levelStr = "debug"
	}
	if level, err := log.ParseLevel(levelStr); err == nil {
		logger.SetLevel(level)
	}
	return logger
}

// fail renders a classified error and exits. Hints print below the message;
// incident ids and cause chains only show at debug level.
func fail(logger *log.Logger, err error) {
	var e *errs.Error
	if !errors.As(err, &e) {
		e = errs.Wrap(errs.KindUnknown, err, "%s", err.Error())
	}
	printWarning("%s", e.Message)
	if e.Hint != "" {
		fmt.Println(tui.Muted("   " + e.Hint))
	}
	logger.Debug("aborting", "kind", e.Kind, "reason", e.Reason, "incident", e.ID, "cause", e.Unwrap())
	if os.Getenv("DEBUG") != "" {
		os.Stderr.Write(debug.Stack())
	}
	os.Exit(1)
}

func printSuccess(msg string, args ...any) {
	fmt.Printf("%s %s", color.GreenString("✓"), fmt.Sprintf(msg, args...))
	fmt.Println()
}

func printWarning(msg string, args ...any) {
	fmt.Printf("%s %s", color.RedString("✕"), fmt.Sprintf(msg, args...))
	fmt.Println()
}

func printCommand(cmd string, args ...string) string {
	cmdline := "tpkm " + strings.Join(append([]string{cmd}, args...), " ")
	return color.HiCyanString(cmdline)
}

// ensureEndpoints loads the network profiles and resolves the endpoints the
// current invocation should use.
func ensureEndpoints(logger *log.Logger) (*netconf.Store, *netconf.Endpoints) {
	store, err := netconf.Load()
	if err != nil {
		fail(logger, err)
	}
	eps, err := store.Effective(logger)
	if err != nil {
		fail(logger, err)
	}
	logger.Debug("resolved endpoints", "rpc", eps.RPCURL, "contract", eps.ContractAddress, "ipfs", eps.IPFSURL, "source", eps.Source)
	return store, eps
}

// dialChain connects to the registry behind a spinner. The caller owns the
// returned client and must Close it.
func dialChain(ctx context.Context, logger *log.Logger, eps *netconf.Endpoints) *chain.Client {
	var client *chain.Client
	var dialErr error
	tui.ShowSpinner(logger, "Connecting to "+eps.RPCURL+" ...", func() {
		client, dialErr = chain.Dial(ctx, logger, eps.RPCURL, eps.ContractAddress)
	})
	if dialErr != nil {
		fail(logger, dialErr)
	}
	return client
}

// dialIPFS connects the IPFS API client and verifies the daemon is up.
func dialIPFS(ctx context.Context, logger *log.Logger, eps *netconf.Endpoints) *ipfs.Client {
	client := ipfs.Dial(eps.IPFSURL)
	if err := client.Probe(ctx); err != nil {
		fail(logger, err)
	}
	return client
}

// walletPassword resolves the keystore password: --password flag, then the
// TPKM_WALLET_PASSWORD environment variable, then a masked prompt.
func walletPassword(cmd *cobra.Command, logger *log.Logger, title string) string {
	if cmd.Flags().Lookup("password") != nil {
		if pw, _ := cmd.Flags().GetString("password"); pw != "" {
			return pw
		}
	}
	if pw := viper.GetString("TPKM_WALLET_PASSWORD"); pw != "" {
		return pw
	}
	if !tui.HasTTY {
		fail(logger, errs.New(errs.KindAuth, "a wallet password is required but no terminal is available").
			WithHint("pass --password or set TPKM_WALLET_PASSWORD"))
	}
	return tui.Input(logger, title, "", true)
}

// loadWallet decrypts the local keystore and attaches it to the client.
func loadWallet(cmd *cobra.Command, logger *log.Logger, client *chain.Client) *keystore.Wallet {
	ks, err := keystore.Default()
	if err != nil {
		fail(logger, err)
	}
	if !ks.Exists() {
		fail(logger, errs.New(errs.KindKeystoreMissing, "no wallet found at %s", ks.Path()).
			WithHint("run %s or %s first", printCommand("wallet", "create"), printCommand("wallet", "import", "<privateKey>")))
	}
	password := walletPassword(cmd, logger, "Enter your wallet password")
	var w *keystore.Wallet
	var decErr error
	tui.ShowSpinner(logger, "Unlocking wallet ...", func() {
		w, decErr = ks.Decrypt(password)
	})
	if decErr != nil {
		fail(logger, decErr)
	}
	if client != nil {
		if err := client.Attach(w); err != nil {
			fail(logger, err)
		}
	}
	logger.Debug("wallet unlocked", "address", w.Address.Hex())
	return w
}

// callerAddress returns the keystore address without decrypting it, or nil
// when no wallet exists. Read commands use it for access checks.
func callerAddress(logger *log.Logger) *ethcommon.Address {
	ks, err := keystore.Default()
	if err != nil {
		fail(logger, err)
	}
	if !ks.Exists() {
		return nil
	}
	addr, err := ks.Address()
	if err != nil {
		fail(logger, err)
	}
	return &addr
}

// confirmOrAbort enforces interactive confirmation for destructive actions.
// Without a terminal the command aborts instead of assuming consent.
func confirmOrAbort(logger *log.Logger, question string) {
	if !tui.HasTTY {
		fail(logger, errs.New(errs.KindValidation, "this action needs interactive confirmation and no terminal is available"))
	}
	if !tui.Ask(logger, question, false) {
		printWarning("cancelled")
		os.Exit(1)
	}
}
