package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/ShayCichocki/hookline/internal/config"
	"github.com/ShayCichocki/hookline/internal/registry"
)

var checkLenient bool

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Validate the hook declaration set",
	Long: `Loads every hooks.yaml under the configured plugin roots and runs
the full registry validation: duplicate keys, self-dependencies,
dangling required dependencies, and dependency cycles.

Prints the validated hooks with their triggers and dependencies.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}

		loader := registry.NewLoader(cfg.Registry.PluginRoots, checkLenient)
		decls, err := loader.Load()
		if err != nil {
			printStatus("✗", err.Error(), color.FgRed)
			os.Exit(1)
		}
		for _, w := range loader.Warnings() {
			printStatus("⚠", w, color.FgYellow)
		}

		reg, err := registry.New(decls)
		if err != nil {
			printStatus("✗", err.Error(), color.FgRed)
			os.Exit(1)
		}

		printStatus("✓", fmt.Sprintf("%d hooks valid", reg.Len()), color.FgGreen)
		for _, decl := range reg.All() {
			fmt.Printf("  %s\n", decl.Key())
			for _, trig := range decl.Triggers {
				fmt.Printf("    on %s/%s\n", trig.ToolPattern, trig.Phase)
			}
			if len(decl.FileFilters) > 0 {
				fmt.Printf("    files %s\n", strings.Join(decl.FileFilters, ", "))
			}
			for _, dep := range decl.Dependencies {
				suffix := ""
				if dep.Optional {
					suffix = " (optional)"
				}
				fmt.Printf("    after %s%s\n", dep.Key(), suffix)
			}
		}
		return nil
	},
}

// printStatus prints a status line with color
func printStatus(symbol, message string, colorAttr color.Attribute) {
	c := color.New(colorAttr)
	c.Printf("%s ", symbol)
	fmt.Println(message)
}

func init() {
	checkCmd.Flags().BoolVar(&checkLenient, "lenient", false, "Skip malformed hook declarations instead of aborting")
}
