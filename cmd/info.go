package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/tacopkm/tpkm/internal/info"
	"github.com/tacopkm/tpkm/internal/tui"
	"github.com/tacopkm/tpkm/internal/util"
)

var infoCmd = &cobra.Command{
	Use:   "info <name>[@version]",
	Short: "Show a library's on-chain record",
	Long: `Show a library's on-chain record.

Private and license-gated libraries show a restricted view unless your wallet
has access.

Examples:
  tpkm info zlib
  tpkm info zlib@1.2.0
  tpkm info zlib --versions`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		logger := newLogger(cmd)
		name, version := util.SplitSpec(args[0])
		if err := util.ValidateLibraryName(name); err != nil {
			fail(logger, err)
		}
		listVersions, _ := cmd.Flags().GetBool("versions")

		ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGINT, syscall.SIGTERM)
		defer cancel()
		_, eps := ensureEndpoints(logger)
		client := dialChain(ctx, logger, eps)
		defer client.Close()
		caller := callerAddress(logger)

		var view *info.View
		var buildErr error
		tui.ShowSpinner(logger, "Fetching "+name+" ...", func() {
			view, buildErr = info.Build(ctx, client.Registry(), name, version, listVersions, caller)
		})
		if buildErr != nil {
			fail(logger, buildErr)
		}
		renderView(view)
	},
}

func renderView(v *info.View) {
	lib := v.Library
	visibility := "public"
	if lib.IsPrivate {
		visibility = "private"
	}
	fmt.Printf("%s %s\n", tui.Title(v.Name), tui.Muted("("+visibility+")"))
	if lib.Description != "" {
		fmt.Println("  " + lib.Description)
	}
	fmt.Println(tui.Muted("  owner:    " + lib.Owner.Hex()))
	if lib.Language != "" {
		fmt.Println(tui.Muted("  language: " + lib.Language))
	}
	if len(lib.Tags) > 0 {
		fmt.Println(tui.Muted("  tags:     " + strings.Join(lib.Tags, ", ")))
	}
	if lib.LicenseRequired {
		fmt.Println(tui.Muted("  license:  required, fee " + util.FormatEth(lib.LicenseFee) + " ETH"))
	}
	fmt.Println(tui.Muted("  access:   " + v.AccessNote))

	if v.Restricted {
		tui.ShowLock("version data hidden: %s", v.AccessNote)
		return
	}
	if len(v.Versions) > 0 {
		fmt.Println()
		fmt.Println(tui.Bold("  versions:"))
		for _, ver := range v.Versions {
			fmt.Println("    " + ver)
		}
	}
	if v.Version != nil {
		fmt.Println()
		fmt.Println(tui.Bold("  " + v.VersionNumber + ":"))
		fmt.Println(tui.Muted("    cid:       " + v.Version.IPFSHash))
		fmt.Println(tui.Muted("    publisher: " + v.Version.Publisher.Hex()))
		fmt.Println(tui.Muted("    published: " + v.Version.PublishedAt.Format("2006-01-02 15:04:05 MST")))
		if v.Version.Deprecated {
			fmt.Println("    " + tui.Warning("deprecated"))
		}
		if len(v.Version.Dependencies) > 0 {
			fmt.Println(tui.Muted("    dependencies:"))
			for _, dep := range v.Version.Dependencies {
				fmt.Println(tui.Muted("      " + dep.Name + " " + dep.Constraint))
			}
		}
	}
}

func init() {
	rootCmd.AddCommand(infoCmd)
	infoCmd.Flags().Bool("versions", false, "List all published versions")
}
