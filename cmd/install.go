package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/tacopkm/tpkm/internal/resolver"
	"github.com/tacopkm/tpkm/internal/tui"
	"github.com/tacopkm/tpkm/internal/util"
)

var installCmd = &cobra.Command{
	Use:   "install <name>[@versionOrRange]",
	Short: "Install a library and its dependencies",
	Long: `Install a library and its dependencies.

Without a version the latest stable release is installed. A version argument
may be an exact version or a semver range. Each resolved library is extracted
to <install-dir>/<name>/<version>/.

Examples:
  tpkm install zlib
  tpkm install zlib@1.2.0
  tpkm install "zlib@^1.0.0"`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		logger := newLogger(cmd)
		name, spec := util.SplitSpec(args[0])
		installDir, _ := cmd.Flags().GetString("install-dir")

		ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGINT, syscall.SIGTERM)
		defer cancel()
		_, eps := ensureEndpoints(logger)
		client := dialChain(ctx, logger, eps)
		defer client.Close()
		store := dialIPFS(ctx, logger, eps)
		caller := callerAddress(logger)

		inst := resolver.New(client.Registry(), store, logger, installDir, caller)
		installed := 0
		inst.OnInstalled = func(name, version string) {
			installed++
			printSuccess("installed %s", tui.Bold(name+"@"+version))
		}
		if _, err := inst.Install(ctx, name, spec); err != nil {
			fail(logger, err)
		}
		fmt.Println(tui.Muted(fmt.Sprintf("%s installed to %s",
			util.Pluralize(installed, "library", "libraries"), inst.Root())))
	},
}

func init() {
	rootCmd.AddCommand(installCmd)
	installCmd.Flags().String("install-dir", "", "Install root (default ./"+resolver.DefaultInstallRoot+")")
}
