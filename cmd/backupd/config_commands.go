package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"backupd/internal/migrate"
)

func newSetIntervalCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:     "set-interval <seconds>",
		Aliases: []string{"set_interval"},
		Short:   "Set the number of seconds between backup cycles",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			seconds, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("interval must be a whole number of seconds, got %q", args[0])
			}
			env, err := ctx.environment()
			if err != nil {
				return err
			}
			if err := env.configs.SetInterval(seconds); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Backup interval set to %ds\n", seconds)
			return nil
		},
	}
}

func newChangeDestinationCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:     "change-destination <path>",
		Aliases: []string{"change_destination"},
		Short:   "Move the backup tree to a new destination",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := ctx.environment()
			if err != nil {
				return err
			}
			migrator := migrate.New(env.configs, env.checksums, env.logger)
			if err := migrator.ChangeDestination(args[0]); err != nil {
				return err
			}
			cfg, err := env.configs.Load()
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Backup destination is now %s\n", cfg.BackupDestination)
			return nil
		},
	}
}

func newClearDestinationCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:     "clear-destination",
		Aliases: []string{"clear_destination"},
		Short:   "Delete everything inside the backup destination",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := ctx.environment()
			if err != nil {
				return err
			}
			migrator := migrate.New(env.configs, env.checksums, env.logger)
			if err := migrator.ClearDestination(); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Backup destination cleared")
			return nil
		},
	}
}
