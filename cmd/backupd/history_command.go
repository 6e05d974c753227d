package main

import (
	"fmt"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"backupd/internal/history"
)

func newHistoryCommand(ctx *commandContext) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recent backup cycles",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := ctx.environment()
			if err != nil {
				return err
			}
			store, err := history.Open(env.stateDir)
			if err != nil {
				return err
			}
			defer store.Close()

			cycles, err := store.Recent(cmd.Context(), limit)
			if err != nil {
				return err
			}
			stdout := cmd.OutOrStdout()
			if len(cycles) == 0 {
				fmt.Fprintln(stdout, "No backup cycles recorded yet")
				return nil
			}

			rows := make([][]string, 0, len(cycles))
			for _, cycle := range cycles {
				rows = append(rows, []string{
					cycle.StartedAt.Local().Format(time.RFC3339),
					formatCycleDuration(cycle),
					fmt.Sprintf("%d", cycle.FilesSeen),
					fmt.Sprintf("%d", cycle.FilesCopied),
					fmt.Sprintf("%d", cycle.FilesSkipped),
					humanize.Bytes(uint64(cycle.BytesCopied)),
					cycleOutcome(cycle),
				})
			}
			table := renderTable(
				[]string{"Started", "Duration", "Seen", "Copied", "Skipped", "Data", "Outcome"},
				rows,
				[]columnAlignment{alignLeft, alignRight, alignRight, alignRight, alignRight, alignRight, alignLeft},
			)
			fmt.Fprintln(stdout, table)
			return nil
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Number of cycles to show")
	return cmd
}

func formatCycleDuration(cycle *history.Cycle) string {
	d := cycle.Duration()
	if d == 0 {
		return "running"
	}
	return d.Round(time.Millisecond).String()
}

func cycleOutcome(cycle *history.Cycle) string {
	if cycle.ErrorMessage != "" {
		return cycle.ErrorMessage
	}
	if cycle.FinishedAt.IsZero() {
		return "running"
	}
	return "ok"
}
