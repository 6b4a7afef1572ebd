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

var deleteCmd = &cobra.Command{
	Use:   "delete <name>",
	Short: "Delete a library that has no published versions",
	Long: `Delete a library that has no published versions.

The contract rejects deleting a library once a version has been published.
Only the owner can delete.

Examples:
  tpkm delete my-abandoned-lib`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		logger := newLogger(cmd)
		name := args[0]
		if err := util.ValidateLibraryName(name); err != nil {
			fail(logger, err)
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
			fail(logger, errs.New(errs.KindPermission, "only the owner (%s) can delete %q", lib.Owner.Hex(), name))
		}
		// Local pre-check only. The contract is the authority.
		if versions, err := client.Registry().VersionNumbers(ctx, name); err == nil && len(versions) > 0 {
			fail(logger, errs.New(errs.KindPolicy, "cannot delete %q: it has %s published",
				name, util.Pluralize(len(versions), "version", "versions")).
				WithHint("published versions are permanent; deprecate them instead with %s", printCommand("deprecate", name+"@<version>")))
		}

		confirmOrAbort(logger, fmt.Sprintf("Delete the library %q from the registry?", name))
		typed := tui.Input(logger, "Type the library name to confirm", name, false)
		if typed != name {
			fail(logger, errs.New(errs.KindValidation, "confirmation did not match %q", name))
		}

		var txHash common.Hash
		var txErr error
		tui.ShowSpinner(logger, "Deleting "+name+" ...", func() {
			txHash, txErr = client.Registry().DeleteLibrary(ctx, name)
		})
		if txErr != nil {
			fail(logger, txErr)
		}
		printSuccess("Library %s deleted", tui.Bold(name))
		fmt.Println(tui.Muted("   tx: " + txHash.Hex()))
	},
}

func init() {
	rootCmd.AddCommand(deleteCmd)
	deleteCmd.Flags().String("password", "", "Wallet password (prompted when omitted)")
}
