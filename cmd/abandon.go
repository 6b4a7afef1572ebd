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
)

const defaultBurnAddress = "0x000000000000000000000000000000000000dEaD"

var abandonCmd = &cobra.Command{
	Use:   "abandon-registry",
	Short: "Irreversibly transfer ownership of the registry contract to a burn address",
	Long: `Irreversibly transfer ownership of the registry contract to a burn address.

After this no one can perform contract-owner operations again. Library-level
ownership is unaffected. Only the current contract owner can abandon.`,
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		logger := newLogger(cmd)
		burnStr, _ := cmd.Flags().GetString("burn-address")
		if !common.IsHexAddress(burnStr) {
			fail(logger, errs.New(errs.KindValidation, "%q is not a valid address", burnStr))
		}
		burn := common.HexToAddress(burnStr)

		ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGINT, syscall.SIGTERM)
		defer cancel()
		_, eps := ensureEndpoints(logger)
		client := dialChain(ctx, logger, eps)
		defer client.Close()
		wallet := loadWallet(cmd, logger, client)

		contractOwner, err := client.Registry().ContractOwner(ctx)
		if err != nil {
			fail(logger, err)
		}
		if contractOwner != wallet.Address {
			fail(logger, errs.New(errs.KindPermission, "only the contract owner (%s) can abandon the registry", contractOwner.Hex()))
		}

		contractAddr := client.ContractAddress().Hex()
		tui.ShowBanner("Abandon registry",
			fmt.Sprintf("Ownership of the contract at %s will be transferred to\n%s and can never be recovered.", contractAddr, burn.Hex()))
		confirmOrAbort(logger, "Transfer contract ownership to the burn address?")
		phrase := "abandon " + contractAddr
		typed := tui.Input(logger, "Type '"+phrase+"' to confirm", "", false)
		if typed != phrase {
			fail(logger, errs.New(errs.KindValidation, "confirmation did not match"))
		}

		var txHash common.Hash
		var txErr error
		tui.ShowSpinner(logger, "Abandoning registry ...", func() {
			txHash, txErr = client.Registry().TransferOwnership(ctx, burn)
		})
		if txErr != nil {
			fail(logger, txErr)
		}
		printSuccess("Registry ownership transferred to %s", tui.Bold(burn.Hex()))
		fmt.Println(tui.Muted("   tx: " + txHash.Hex()))
	},
}

func init() {
	rootCmd.AddCommand(abandonCmd)
	abandonCmd.Flags().String("burn-address", defaultBurnAddress, "Address to receive contract ownership")
	abandonCmd.Flags().String("password", "", "Wallet password (prompted when omitted)")
}
