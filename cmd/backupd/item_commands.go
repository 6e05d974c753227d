package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/spf13/cobra"

	"backupd/internal/config"
)

func newListCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "Show the backup configuration and watched paths",
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := ctx.environment()
			if err != nil {
				return err
			}
			cfg, err := env.configs.Load()
			if err != nil {
				return err
			}

			stdout := cmd.OutOrStdout()
			fmt.Fprintf(stdout, "Config:      %s\n", env.configs.Path())
			fmt.Fprintf(stdout, "Destination: %s\n", cfg.BackupDestination)
			fmt.Fprintf(stdout, "Interval:    %ds\n", cfg.Interval)
			fmt.Fprintln(stdout)

			if len(cfg.ItemsToBackup) == 0 {
				fmt.Fprintln(stdout, "No paths are being backed up")
				return nil
			}

			colorize := shouldColorize(stdout)
			rows := make([][]string, 0, len(cfg.ItemsToBackup))
			for _, item := range cfg.ItemsToBackup {
				state := "ok"
				if _, err := os.Stat(item); err != nil {
					state = "missing"
					if colorize {
						state = text.FgRed.Sprint(state)
					}
				}
				rows = append(rows, []string{item, state})
			}
			table := renderTable([]string{"Path", "State"}, rows, []columnAlignment{alignLeft, alignLeft})
			fmt.Fprintln(stdout, table)
			return nil
		},
	}
}

func newAddCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "add <path>",
		Short: "Add a file or directory to the backup list",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := ctx.environment()
			if err != nil {
				return err
			}
			canonical, added, err := env.configs.AddItem(args[0])
			if err != nil {
				return err
			}
			stdout := cmd.OutOrStdout()
			if !added {
				fmt.Fprintf(stdout, "%s is already in the backup list\n", canonical)
				return nil
			}
			fmt.Fprintf(stdout, "Added %s\n", canonical)
			return nil
		},
	}
}

func newRemoveCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "remove <path>",
		Short: "Remove a path from the backup list",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := ctx.environment()
			if err != nil {
				return err
			}
			canonical, err := env.configs.RemoveItem(args[0])
			if errors.Is(err, config.ErrItemNotListed) {
				return fmt.Errorf("%s is not in the backup list", canonical)
			}
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Removed %s\n", canonical)
			return nil
		},
	}
}
