package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/tacopkm/tpkm/internal/publisher"
	"github.com/tacopkm/tpkm/internal/tui"
	"github.com/tacopkm/tpkm/internal/util"
)

var publishCmd = &cobra.Command{
	Use:   "publish [dir]",
	Short: "Archive the library and publish a version to the registry",
	Long: `Archive the library and publish a version to the registry.

The directory must contain a lib.config.json manifest and the library must
already be registered by your wallet. The archive is uploaded to IPFS and the
resulting CID is recorded on-chain together with the dependency list.

Examples:
  tpkm publish
  tpkm publish ./mylib --version 1.3.0`,
	Args: cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		logger := newLogger(cmd)
		dir := "."
		if len(args) == 1 {
			dir = args[0]
		}
		if !util.Exists(dir) {
			printWarning("directory does not exist: %s", dir)
			os.Exit(1)
		}
		versionOverride, _ := cmd.Flags().GetString("version")

		ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGINT, syscall.SIGTERM)
		defer cancel()
		_, eps := ensureEndpoints(logger)
		client := dialChain(ctx, logger, eps)
		defer client.Close()
		store := dialIPFS(ctx, logger, eps)
		wallet := loadWallet(cmd, logger, client)

		pub := publisher.New(client.Registry(), store, logger, wallet.Address)
		var result *publisher.Result
		var pubErr error
		tui.ShowSpinner(logger, "Publishing ...", func() {
			result, pubErr = pub.Publish(ctx, dir, versionOverride)
		})
		if pubErr != nil {
			fail(logger, pubErr)
		}
		printSuccess("Published %s", tui.Bold(result.Name+"@"+result.Version))
		fmt.Println(tui.Muted("   cid: " + result.CID))
		fmt.Println(tui.Muted("   tx:  " + result.TxHash.Hex()))
		if n := len(result.Dependencies); n > 0 {
			fmt.Println(tui.Muted(fmt.Sprintf("   %s recorded", util.Pluralize(n, "dependency", "dependencies"))))
		}
	},
}

func init() {
	rootCmd.AddCommand(publishCmd)
	publishCmd.Flags().String("version", "", "Publish this version instead of the manifest's")
	publishCmd.Flags().String("password", "", "Wallet password (prompted when omitted)")
}
