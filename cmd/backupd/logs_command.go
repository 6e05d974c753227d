package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"backupd/internal/logs"
)

func newLogsCommand(ctx *commandContext) *cobra.Command {
	var lines int
	cmd := &cobra.Command{
		Use:   "logs",
		Short: "Show the tail of the daemon log",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := ctx.environment()
			if err != nil {
				return err
			}
			tail, err := logs.ReadLast(env.logPath, lines)
			if err != nil {
				return err
			}
			stdout := cmd.OutOrStdout()
			if len(tail) == 0 {
				fmt.Fprintln(stdout, "No log entries yet")
				return nil
			}
			for _, line := range tail {
				fmt.Fprintln(stdout, line)
			}
			return nil
		},
	}
	cmd.Flags().IntVarP(&lines, "lines", "n", 50, "Number of log lines to show")
	return cmd
}
