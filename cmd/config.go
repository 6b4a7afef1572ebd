package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tacopkm/tpkm/internal/errs"
	"github.com/tacopkm/tpkm/internal/netconf"
	"github.com/tacopkm/tpkm/internal/tui"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage named network profiles",
}

var configAddCmd = &cobra.Command{
	Use:   "add <name>",
	Short: "Add or update a network profile",
	Long: `Add or update a network profile.

Examples:
  tpkm config add local --rpc http://127.0.0.1:8545 --contract 0x5FbDB2315678afecb367f032d93F642f64180aa3 --set-active
  tpkm config add sepolia --rpc wss://sepolia.example.org --contract 0x00000000219ab540356cBB839Cbe05303d7705Fa`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		logger := newLogger(cmd)
		store, err := netconf.Load()
		if err != nil {
			fail(logger, err)
		}
		rpcURL, _ := cmd.Flags().GetString("rpc")
		contract, _ := cmd.Flags().GetString("contract")
		activate, _ := cmd.Flags().GetBool("set-active")
		if err := store.Add(args[0], rpcURL, contract, activate); err != nil {
			fail(logger, err)
		}
		if err := store.Save(); err != nil {
			fail(logger, err)
		}
		printSuccess("Network %s saved", tui.Bold(args[0]))
		if activate {
			printSuccess("Network %s is now active", tui.Bold(args[0]))
		}
	},
}

var configSetActiveCmd = &cobra.Command{
	Use:   "set-active [name]",
	Short: "Select the active network profile",
	Args:  cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		logger := newLogger(cmd)
		store, err := netconf.Load()
		if err != nil {
			fail(logger, err)
		}
		var name string
		if len(args) == 1 {
			name = args[0]
		} else {
			names := store.Names()
			if len(names) == 0 {
				fail(logger, errs.New(errs.KindConfigMissing, "no network profiles configured").
					WithHint("add one with %s", printCommand("config", "add", "<name>", "--rpc", "<url>", "--contract", "<address>")))
			}
			if !tui.HasTTY {
				fail(logger, errs.New(errs.KindValidation, "a profile name is required when no terminal is available"))
			}
			options := make([]tui.Option, 0, len(names))
			for _, n := range names {
				p, _ := store.Get(n)
				options = append(options, tui.Option{
					ID:       n,
					Text:     fmt.Sprintf("%s (%s)", n, p.RPCURL),
					Selected: n == store.Active,
				})
			}
			name = tui.Select(logger, "Select the active network", "", options)
		}
		if err := store.SetActive(name); err != nil {
			fail(logger, err)
		}
		if err := store.Save(); err != nil {
			fail(logger, err)
		}
		printSuccess("Network %s is now active", tui.Bold(name))
	},
}

var configListCmd = &cobra.Command{
	Use:   "list",
	Short: "List the configured network profiles",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		logger := newLogger(cmd)
		store, err := netconf.Load()
		if err != nil {
			fail(logger, err)
		}
		names := store.Names()
		if len(names) == 0 {
			fmt.Println(tui.Muted("no network profiles configured"))
			return
		}
		for _, n := range names {
			p, _ := store.Get(n)
			marker := "  "
			if n == store.Active {
				marker = tui.Bold("* ")
			}
			fmt.Printf("%s%s\n", marker, tui.Bold(n))
			fmt.Println(tui.Muted("    rpc:      " + p.RPCURL))
			fmt.Println(tui.Muted("    contract: " + p.ContractAddress))
		}
	},
}

var configShowCmd = &cobra.Command{
	Use:   "show [name]",
	Short: "Show a profile, or the endpoints the next command would use",
	Args:  cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		logger := newLogger(cmd)
		if len(args) == 1 {
			store, err := netconf.Load()
			if err != nil {
				fail(logger, err)
			}
			p, ok := store.Get(args[0])
			if !ok {
				fail(logger, errs.New(errs.KindNotFound, "no network named %q", args[0]))
			}
			fmt.Println(tui.Bold(args[0]))
			fmt.Println("  rpc:      " + p.RPCURL)
			fmt.Println("  contract: " + p.ContractAddress)
			if args[0] == store.Active {
				fmt.Println(tui.Muted("  (active)"))
			}
			return
		}
		_, eps := ensureEndpoints(logger)
		fmt.Println("RPC URL:          " + eps.RPCURL)
		fmt.Println("Contract address: " + eps.ContractAddress)
		fmt.Println("IPFS API:         " + eps.IPFSURL)
		fmt.Println(tui.Muted("source: " + eps.Source))
	},
}

var configRemoveCmd = &cobra.Command{
	Use:   "remove <name>",
	Short: "Remove a network profile",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		logger := newLogger(cmd)
		store, err := netconf.Load()
		if err != nil {
			fail(logger, err)
		}
		clearedActive, err := store.Remove(args[0])
		if err != nil {
			fail(logger, err)
		}
		if err := store.Save(); err != nil {
			fail(logger, err)
		}
		printSuccess("Network %s removed", tui.Bold(args[0]))
		if clearedActive {
			printWarning("the removed network was active; select another with %s", printCommand("config", "set-active"))
		}
	},
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configAddCmd)
	configCmd.AddCommand(configSetActiveCmd)
	configCmd.AddCommand(configListCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configRemoveCmd)
	configAddCmd.Flags().String("rpc", "", "RPC endpoint URL (http, https, ws or wss)")
	configAddCmd.Flags().String("contract", "", "Registry contract address")
	configAddCmd.Flags().Bool("set-active", false, "Make this profile the active network")
	configAddCmd.MarkFlagRequired("rpc")
	configAddCmd.MarkFlagRequired("contract")
}
