package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/tacopkm/tpkm/internal/errs"
	"github.com/tacopkm/tpkm/internal/keystore"
	"github.com/tacopkm/tpkm/internal/tui"
	"github.com/tacopkm/tpkm/internal/util"
)

var walletCmd = &cobra.Command{
	Use:   "wallet",
	Short: "Manage the local wallet keystore",
}

var walletCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Generate a new wallet and store it encrypted",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		logger := newLogger(cmd)
		ks, err := keystore.Default()
		if err != nil {
			fail(logger, err)
		}
		if ks.Exists() {
			confirmOverwrite(logger, ks.Path())
			if err := os.Remove(ks.Path()); err != nil {
				fail(logger, errs.Wrap(errs.KindValidation, err, "cannot replace %s", ks.Path()))
			}
		}
		password := newWalletPassword(cmd, logger)
		addr, err := ks.Create(password)
		if err != nil {
			fail(logger, err)
		}
		printSuccess("Wallet created: %s", tui.Bold(addr.Hex()))
		fmt.Println(tui.Muted("   keystore: " + ks.Path()))
		fmt.Println(tui.Muted("   Fund this address before registering or publishing libraries."))
	},
}

var walletImportCmd = &cobra.Command{
	Use:   "import <privateKey>",
	Short: "Import a wallet from a hex-encoded private key",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		logger := newLogger(cmd)
		ks, err := keystore.Default()
		if err != nil {
			fail(logger, err)
		}
		if ks.Exists() {
			confirmOverwrite(logger, ks.Path())
			if err := os.Remove(ks.Path()); err != nil {
				fail(logger, errs.Wrap(errs.KindValidation, err, "cannot replace %s", ks.Path()))
			}
		}
		password := newWalletPassword(cmd, logger)
		addr, err := ks.Import(args[0], password)
		if err != nil {
			fail(logger, err)
		}
		printSuccess("Wallet imported: %s", tui.Bold(addr.Hex()))
		fmt.Println(tui.Muted("   keystore: " + ks.Path()))
	},
}

var walletAddressCmd = &cobra.Command{
	Use:   "address",
	Short: "Print the wallet address without decrypting the keystore",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		logger := newLogger(cmd)
		ks, err := keystore.Default()
		if err != nil {
			fail(logger, err)
		}
		addr, err := ks.Address()
		if err != nil {
			fail(logger, err)
		}
		fmt.Println(addr.Hex())
	},
}

var walletBalanceCmd = &cobra.Command{
	Use:   "balance",
	Short: "Show the wallet's ETH balance on the configured network",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		logger := newLogger(cmd)
		ks, err := keystore.Default()
		if err != nil {
			fail(logger, err)
		}
		addr, err := ks.Address()
		if err != nil {
			fail(logger, err)
		}
		ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGINT, syscall.SIGTERM)
		defer cancel()
		_, eps := ensureEndpoints(logger)
		client := dialChain(ctx, logger, eps)
		defer client.Close()
		balance, err := client.BalanceAt(ctx, addr)
		if err != nil {
			fail(logger, err)
		}
		fmt.Printf("%s  %s ETH\n", addr.Hex(), tui.Bold(util.FormatEth(balance)))
	},
}

// confirmOverwrite gates replacing an existing keystore. The old key is
// unrecoverable once overwritten.
func confirmOverwrite(logger *log.Logger, path string) {
	printWarning("a wallet already exists at %s", path)
	confirmOrAbort(logger, "Overwrite the existing wallet? Its key will be lost forever.")
}

// newWalletPassword collects a password for a fresh keystore. Interactive
// prompts ask twice; flag and environment passwords are taken as-is.
func newWalletPassword(cmd *cobra.Command, logger *log.Logger) string {
	if pw, _ := cmd.Flags().GetString("password"); pw != "" {
		return pw
	}
	if pw := viper.GetString("TPKM_WALLET_PASSWORD"); pw != "" {
		return pw
	}
	if !tui.HasTTY {
		fail(logger, errs.New(errs.KindAuth, "a wallet password is required but no terminal is available").
			WithHint("pass --password or set TPKM_WALLET_PASSWORD"))
	}
	password := tui.Input(logger, "Choose a wallet password", "", true)
	confirm := tui.Input(logger, "Confirm the wallet password", "", true)
	if confirm != password {
		fail(logger, errs.New(errs.KindValidation, "passwords do not match"))
	}
	return password
}

func init() {
	rootCmd.AddCommand(walletCmd)
	walletCmd.AddCommand(walletCreateCmd)
	walletCmd.AddCommand(walletImportCmd)
	walletCmd.AddCommand(walletAddressCmd)
	walletCmd.AddCommand(walletBalanceCmd)
	walletCreateCmd.Flags().String("password", "", "Password for the new keystore (prompted when omitted)")
	walletImportCmd.Flags().String("password", "", "Password for the new keystore (prompted when omitted)")
}
