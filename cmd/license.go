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

var setLicenseCmd = &cobra.Command{
	Use:   "set-license <name>",
	Short: "Configure the license fee and requirement for a library",
	Long: `Configure the license fee and requirement for a library.

Only the owner can change license settings, and private libraries cannot
require a license.

Examples:
  tpkm set-license zlib --fee "0.1 eth" --required
  tpkm set-license zlib --fee 0 --required=false`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		logger := newLogger(cmd)
		name := args[0]
		if err := util.ValidateLibraryName(name); err != nil {
			fail(logger, err)
		}
		feeStr, _ := cmd.Flags().GetString("fee")
		required, _ := cmd.Flags().GetBool("required")
		fee, err := util.ParseFee(feeStr)
		if err != nil {
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
			fail(logger, errs.New(errs.KindPermission, "only the owner (%s) can change license settings for %q", lib.Owner.Hex(), name))
		}
		if lib.IsPrivate && required {
			fail(logger, errs.New(errs.KindPolicy, "the private library %q cannot require a license", name).
				WithHint("authorize readers with %s instead", printCommand("authorize", name, "<address>")))
		}
		if fee.Sign() > 0 && !required {
			printWarning("fee is set but the license is not required; nobody has to pay it")
		}

		var txHash common.Hash
		var txErr error
		tui.ShowSpinner(logger, "Updating license settings ...", func() {
			txHash, txErr = client.Registry().SetLicense(ctx, name, fee, required)
		})
		if txErr != nil {
			fail(logger, txErr)
		}
		if required {
			printSuccess("License for %s: required, fee %s ETH", tui.Bold(name), util.FormatEth(fee))
		} else {
			printSuccess("License for %s: not required", tui.Bold(name))
		}
		fmt.Println(tui.Muted("   tx: " + txHash.Hex()))
	},
}

var purchaseLicenseCmd = &cobra.Command{
	Use:   "purchase-license <name>",
	Short: "Buy a license for a license-gated library",
	Long: `Buy a license for a license-gated library.

Without --amount the on-chain fee is sent. Sending less than the fee is
rejected locally; sending more succeeds but the surplus is not refunded.

Examples:
  tpkm purchase-license zlib
  tpkm purchase-license zlib --amount "0.1 eth"`,
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
		if lib.Owner == wallet.Address {
			fail(logger, errs.New(errs.KindPolicy, "you own %q; owners do not need a license", name))
		}
		if lib.IsPrivate {
			fail(logger, errs.New(errs.KindPolicy, "the library %q is private; licenses do not apply", name).
				WithHint("ask the owner to run %s", printCommand("authorize", name, wallet.Address.Hex())))
		}
		if !lib.LicenseRequired {
			fail(logger, errs.New(errs.KindPolicy, "the library %q does not require a license", name))
		}
		owned, err := client.Registry().HasUserLicense(ctx, name, wallet.Address)
		if err != nil {
			fail(logger, err)
		}
		if owned {
			fail(logger, errs.New(errs.KindConflict, "you already own a license for %q", name).
				WithReason(errs.ReasonLicenseAlreadyOwned))
		}

		amount := lib.LicenseFee
		if amountStr, _ := cmd.Flags().GetString("amount"); amountStr != "" {
			amount, err = util.ParseFee(amountStr)
			if err != nil {
				fail(logger, err)
			}
		}
		if amount.Cmp(lib.LicenseFee) < 0 {
			fail(logger, errs.New(errs.KindFunds, "amount %s ETH is below the license fee of %s ETH",
				util.FormatEth(amount), util.FormatEth(lib.LicenseFee)))
		}
		if amount.Cmp(lib.LicenseFee) > 0 {
			printWarning("sending %s ETH, more than the %s ETH fee; the surplus is not refunded",
				util.FormatEth(amount), util.FormatEth(lib.LicenseFee))
		}

		var txHash common.Hash
		var txErr error
		tui.ShowSpinner(logger, "Purchasing license for "+name+" ...", func() {
			txHash, txErr = client.Registry().PurchaseLicense(ctx, name, amount)
		})
		if txErr != nil {
			fail(logger, txErr)
		}
		printSuccess("License for %s purchased (%s ETH)", tui.Bold(name), util.FormatEth(amount))
		fmt.Println(tui.Muted("   tx: " + txHash.Hex()))
	},
}

func init() {
	rootCmd.AddCommand(setLicenseCmd)
	rootCmd.AddCommand(purchaseLicenseCmd)
	setLicenseCmd.Flags().String("fee", "0", "License fee, e.g. \"0.1 eth\", \"50 gwei\" or \"100 wei\"")
	setLicenseCmd.Flags().Bool("required", false, "Require a license to install")
	setLicenseCmd.Flags().String("password", "", "Wallet password (prompted when omitted)")
	purchaseLicenseCmd.Flags().String("amount", "", "Amount to send (defaults to the on-chain fee)")
	purchaseLicenseCmd.Flags().String("password", "", "Wallet password (prompted when omitted)")
}
