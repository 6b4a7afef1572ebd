package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/tacopkm/tpkm/internal/errs"
	"github.com/tacopkm/tpkm/internal/libconfig"
	"github.com/tacopkm/tpkm/internal/tui"
	"github.com/tacopkm/tpkm/internal/util"
)

var initCmd = &cobra.Command{
	Use:   "init [dir]",
	Short: "Create a lib.config.json manifest in the current directory",
	Args:  cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		logger := newLogger(cmd)
		dir := "."
		if len(args) == 1 {
			dir = args[0]
		}
		if err := os.MkdirAll(dir, 0700); err != nil {
			fail(logger, errs.Wrap(errs.KindValidation, err, "cannot create directory %s", dir))
		}
		manifest := filepath.Join(dir, libconfig.FileName)
		if util.Exists(manifest) {
			if !tui.HasTTY {
				fail(logger, errs.New(errs.KindValidation, "%s already exists", manifest))
			}
			if !tui.Ask(logger, manifest+" already exists. Overwrite it?", false) {
				printWarning("cancelled")
				os.Exit(1)
			}
		}

		name, _ := cmd.Flags().GetString("name")
		if name == "" {
			if abs, err := filepath.Abs(dir); err == nil {
				name = filepath.Base(abs)
			}
			if tui.HasTTY {
				name = tui.InputWithValidation(logger, "Library name", "lowercase letters, digits and separators", util.ValidateLibraryName)
			}
		}
		if err := util.ValidateLibraryName(name); err != nil {
			fail(logger, err)
		}
		version, _ := cmd.Flags().GetString("version")

		cfg := libconfig.Template(name, version)
		if err := cfg.Save(dir); err != nil {
			fail(logger, err)
		}
		printSuccess("Created %s", tui.Bold(manifest))
		fmt.Println(tui.Muted("   Edit the manifest, then run " + printCommand("register", name) + " and " + printCommand("publish")))
	},
}

func init() {
	rootCmd.AddCommand(initCmd)
	initCmd.Flags().String("name", "", "Library name (defaults to the directory name, prompted on a terminal)")
	initCmd.Flags().String("version", "0.1.0", "Initial version for the manifest")
}
