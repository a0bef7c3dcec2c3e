package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ShayCichocki/hookline/internal/adapter"
	"github.com/ShayCichocki/hookline/internal/config"
	"github.com/ShayCichocki/hookline/internal/delivery"
	"github.com/ShayCichocki/hookline/pkg/hooks"
)

var (
	runLenient     bool
	runFingerprint string
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Process one hook event from stdin",
	Long: `Reads a Claude Code hook invocation as JSON from stdin, runs every
matching validation hook, and writes the inline results block to stdout.

Wire it into Claude Code settings as the command for PreToolUse,
PostToolUse, and Stop hooks. Exits 2 when any hook failed so the host
surfaces the results to the agent.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}

		ev, err := adapter.ParseClaudeCode(os.Stdin)
		if err != nil {
			return err
		}
		ev.Fingerprint = runFingerprint

		a, err := buildApp(cfg, runLenient)
		if err != nil {
			return err
		}

		outcome, err := a.engine.Process(context.Background(), ev)
		if err != nil {
			a.close()
			return err
		}
		// Flush the event log and cache before any exit path.
		a.close()

		if outcome.InlineBlock != "" {
			fmt.Println(outcome.InlineBlock)
		}

		if block := failureBlock(outcome.Results); block != "" {
			// Exit 2 is the host's "feed stderr back to the agent" signal.
			fmt.Fprintln(os.Stderr, block)
			os.Exit(2)
		}
		return nil
	},
}

// failureBlock renders every failing result, async-delivered ones included,
// so the exit-2 stderr message always carries the diagnostics. Empty when
// nothing failed.
func failureBlock(results []*hooks.Result) string {
	var failed []*hooks.Result
	for _, res := range results {
		if res.Status == hooks.StatusFailure {
			failed = append(failed, res)
		}
	}
	return delivery.FormatInline(failed)
}

func init() {
	runCmd.Flags().BoolVar(&runLenient, "lenient", false, "Skip malformed hook declarations instead of aborting")
	runCmd.Flags().StringVar(&runFingerprint, "fingerprint", "", "Workspace fingerprint for caching full-project hooks")
}
