package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/ethereum/go-ethereum/common"
	"github.com/spf13/cobra"

	"github.com/tacopkm/tpkm/internal/errs"
	"github.com/tacopkm/tpkm/internal/tui"
	"github.com/tacopkm/tpkm/internal/util"
)

var registerCmd = &cobra.Command{
	Use:   "register <name>",
	Short: "Register a new library name on the registry contract",
	Long: `Register a new library name on the registry contract.

The wallet that registers a library becomes its owner. Private libraries are
only installable by addresses the owner authorizes.

Examples:
  tpkm register zlib --description "compression library" --language c
  tpkm register internal-utils --private`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		logger := newLogger(cmd)
		name := args[0]
		if err := util.ValidateLibraryName(name); err != nil {
			fail(logger, err)
		}
		description, _ := cmd.Flags().GetString("description")
		tags, _ := cmd.Flags().GetStringSlice("tags")
		language, _ := cmd.Flags().GetString("language")
		private, _ := cmd.Flags().GetBool("private")

		ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGINT, syscall.SIGTERM)
		defer cancel()
		_, eps := ensureEndpoints(logger)
		client := dialChain(ctx, logger, eps)
		defer client.Close()
		loadWallet(cmd, logger, client)

		// Cheap read before the tx; the contract still enforces uniqueness.
		if _, err := client.Registry().LibraryInfo(ctx, name); err == nil {
			fail(logger, errs.New(errs.KindConflict, "the library name %q is already registered", name).
				WithReason(errs.ReasonNameTaken))
		} else if !errs.IsKind(err, errs.KindNotFound) {
			fail(logger, err)
		}

		var txHash common.Hash
		var txErr error
		tui.ShowSpinner(logger, "Registering "+name+" ...", func() {
			txHash, txErr = client.Registry().RegisterLibrary(ctx, name, description, tags, language, private)
		})
		if txErr != nil {
			fail(logger, txErr)
		}
		printSuccess("Library %s registered", tui.Bold(name))
		fmt.Println(tui.Muted("   tx: " + txHash.Hex()))
		if private {
			tui.ShowLock("Private library: authorize readers with %s", printCommand("authorize", name, "<address>"))
		}
	},
}

func init() {
	rootCmd.AddCommand(registerCmd)
	registerCmd.Flags().String("description", "", "Short description of the library")
	registerCmd.Flags().StringSlice("tags", nil, "Comma separated tags")
	registerCmd.Flags().String("language", "", "Implementation language")
	registerCmd.Flags().Bool("private", false, "Restrict installs to authorized addresses")
	registerCmd.Flags().String("password", "", "Wallet password (prompted when omitted)")
}
