package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sort"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/tacopkm/tpkm/internal/tui"
	"github.com/tacopkm/tpkm/internal/util"
)

// Past this many names the per-library detail lookups get slow on public RPC
// endpoints, so we warn before fetching.
const listDetailWarnThreshold = 200

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List every library registered on the contract",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		logger := newLogger(cmd)
		ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGINT, syscall.SIGTERM)
		defer cancel()
		_, eps := ensureEndpoints(logger)
		client := dialChain(ctx, logger, eps)
		defer client.Close()

		var names []string
		var listErr error
		tui.ShowSpinner(logger, "Fetching library names ...", func() {
			names, listErr = client.Registry().AllLibraryNames(ctx)
		})
		if listErr != nil {
			fail(logger, listErr)
		}
		if len(names) == 0 {
			fmt.Println(tui.Muted("no libraries registered"))
			return
		}
		sort.Strings(names)

		long, _ := cmd.Flags().GetBool("long")
		if !long {
			for _, name := range names {
				fmt.Println(name)
			}
			fmt.Println(tui.Muted(util.Pluralize(len(names), "library", "libraries")))
			return
		}

		if len(names) > listDetailWarnThreshold {
			printWarning("fetching details for %d libraries may be slow", len(names))
		}
		for _, name := range names {
			lib, err := client.Registry().LibraryInfo(ctx, name)
			if err != nil {
				logger.Warnf("skipping %s: %s", name, err)
				continue
			}
			visibility := "public"
			if lib.IsPrivate {
				visibility = "private"
			}
			fmt.Printf("%s %s\n", tui.Bold(tui.PadRight(name, 32, " ")), tui.Muted(visibility))
			if lib.Description != "" {
				fmt.Println(tui.Muted("    " + util.MaxString(lib.Description, 96)))
			}
		}
	},
}

func init() {
	rootCmd.AddCommand(listCmd)
	listCmd.Flags().Bool("long", false, "Fetch and show per-library details")
}
