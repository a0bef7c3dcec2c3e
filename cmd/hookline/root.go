package main

import (
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "hookline",
	Short: "Validation hook engine for coding agents",
	Long: `Hookline runs plugin-declared validation hooks in response to agent
tool events. It matches hooks against the tool and phase of each event,
orders them by declared dependencies, skips hooks whose inputs are
unchanged since their last success, and feeds results back to the agent
inline or through an async side channel.

Hooks are declared in hooks.yaml files under plugin roots; see
'hookline check' to validate the current declaration set.`,
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(checkCmd)
	rootCmd.AddCommand(cacheCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(versionCmd)
}
