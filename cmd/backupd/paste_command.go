package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"backupd/internal/restore"
)

func newPasteCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "paste <target-directory>",
		Short: "Copy the whole backup tree into an existing directory",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := ctx.environment()
			if err != nil {
				return err
			}
			executor := restore.New(env.configs, env.logger)
			if err := executor.Paste(args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Restored backup tree into %s\n", args[0])
			return nil
		},
	}
}
