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

var authorizeCmd = &cobra.Command{
	Use:   "authorize <name> <address>",
	Short: "Grant an address access to a private library",
	Args:  cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		runAuthorization(cmd, args, true)
	},
}

var revokeCmd = &cobra.Command{
	Use:   "revoke <name> <address>",
	Short: "Revoke an address's access to a private library",
	Args:  cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		runAuthorization(cmd, args, false)
	},
}

func runAuthorization(cmd *cobra.Command, args []string, grant bool) {
	logger := newLogger(cmd)
	name := args[0]
	if err := util.ValidateLibraryName(name); err != nil {
		fail(logger, err)
	}
	if !common.IsHexAddress(args[1]) {
		fail(logger, errs.New(errs.KindValidation, "%q is not a valid address", args[1]))
	}
	user := common.HexToAddress(args[1])

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
		fail(logger, errs.New(errs.KindPermission, "only the owner (%s) can manage access to %q", lib.Owner.Hex(), name))
	}
	if !lib.IsPrivate {
		fail(logger, errs.New(errs.KindPolicy, "the library %q is not private; everyone already has access", name))
	}
	if user == lib.Owner {
		verb := "revoke"
		if grant {
			verb = "authorize"
		}
		fail(logger, errs.New(errs.KindPolicy, "cannot %s the owner of %q", verb, name))
	}

	verb := "Revoking"
	if grant {
		verb = "Authorizing"
	}
	var txHash common.Hash
	var txErr error
	tui.ShowSpinner(logger, verb+" "+user.Hex()+" on "+name+" ...", func() {
		if grant {
			txHash, txErr = client.Registry().AuthorizeUser(ctx, name, user)
		} else {
			txHash, txErr = client.Registry().RevokeAuthorization(ctx, name, user)
		}
	})
	if txErr != nil {
		fail(logger, txErr)
	}
	if grant {
		printSuccess("Address %s authorized on %s", tui.Bold(user.Hex()), tui.Bold(name))
	} else {
		printSuccess("Address %s revoked from %s", tui.Bold(user.Hex()), tui.Bold(name))
	}
	fmt.Println(tui.Muted("   tx: " + txHash.Hex()))
}

func init() {
	rootCmd.AddCommand(authorizeCmd)
	rootCmd.AddCommand(revokeCmd)
	authorizeCmd.Flags().String("password", "", "Wallet password (prompted when omitted)")
	revokeCmd.Flags().String("password", "", "Wallet password (prompted when omitted)")
}
