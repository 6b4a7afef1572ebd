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

var deprecateCmd = &cobra.Command{
	Use:   "deprecate <name>@<version>",
	Short: "Mark a published version as deprecated",
	Long: `Mark a published version as deprecated.

Deprecated versions can still be installed; installers see a warning. Only
the library owner can deprecate.

Examples:
  tpkm deprecate zlib@1.1.0`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		logger := newLogger(cmd)
		name, version := util.SplitSpec(args[0])
		if err := util.ValidateLibraryName(name); err != nil {
			fail(logger, err)
		}
		if version == "" {
			fail(logger, errs.New(errs.KindValidation, "an exact version is required, e.g. %s@1.0.0", name))
		}

		ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGINT, syscall.SIGTERM)
		defer cancel()
		_, eps := ensureEndpoints(logger)
		client := dialChain(ctx, logger, eps)
		defer client.Close()
		wallet := loadWallet(cmd, logger, client)

		lib, err := client.Registry().LibraryInfo(ctx, name)
		if err != nil {
			fail(logger, err)
		}
		if lib.Owner != wallet.Address {
			fail(logger, errs.New(errs.KindPermission, "only the owner (%s) can deprecate versions of %q", lib.Owner.Hex(), name))
		}

		var txHash common.Hash
		var txErr error
		tui.ShowSpinner(logger, "Deprecating "+args[0]+" ...", func() {
			txHash, txErr = client.Registry().DeprecateVersion(ctx, name, version)
		})
		if txErr != nil {
			fail(logger, txErr)
		}
		printSuccess("Version %s deprecated", tui.Bold(args[0]))
		fmt.Println(tui.Muted("   tx: " + txHash.Hex()))
	},
}

func init() {
	rootCmd.AddCommand(deprecateCmd)
	deprecateCmd.Flags().String("password", "", "Wallet password (prompted when omitted)")
}
