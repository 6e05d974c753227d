package main

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"backupd/internal/daemonctl"
)

func newDaemonCommands(ctx *commandContext) []*cobra.Command {
	startCmd := &cobra.Command{
		Use:   "start",
		Short: "Start the backup daemon",
		RunE: func(cmd *cobra.Command, args []string) error {
			stdout := cmd.OutOrStdout()
			exe, err := daemonExecutable()
			if err != nil {
				return err
			}

			if err := daemonctl.Start(exe, configFlagValue(ctx)); err != nil {
				return err
			}
			fmt.Fprintln(stdout, "Daemon started")
			return nil
		},
	}

	stopCmd := &cobra.Command{
		Use:   "stop",
		Short: "Stop the backup daemon",
		RunE: func(cmd *cobra.Command, args []string) error {
			stdout := cmd.OutOrStdout()
			pid, err := daemonctl.Stop()
			if errors.Is(err, daemonctl.ErrNotRunning) {
				fmt.Fprintln(stdout, "Daemon is not running")
				return nil
			}
			if errors.Is(err, daemonctl.ErrMarkerInvalid) {
				fmt.Fprintln(stdout, "Removed unreadable pid marker; daemon was not signalled")
				return nil
			}
			if err != nil {
				return err
			}
			if pid > 0 {
				fmt.Fprintf(stdout, "Stopping daemon process (pid %d)...\n", pid)
			}
			fmt.Fprintln(stdout, "Daemon stopped")
			return nil
		},
	}

	restartCmd := &cobra.Command{
		Use:   "restart",
		Short: "Restart the backup daemon",
		RunE: func(cmd *cobra.Command, args []string) error {
			stdout := cmd.OutOrStdout()
			exe, err := daemonExecutable()
			if err != nil {
				return err
			}

			pid, err := daemonctl.Stop()
			if err != nil && !errors.Is(err, daemonctl.ErrNotRunning) && !errors.Is(err, daemonctl.ErrMarkerInvalid) {
				return err
			}
			if pid > 0 {
				fmt.Fprintf(stdout, "Stopping daemon process (pid %d)...\n", pid)
				// Give the old process a moment to release its lock.
				time.Sleep(500 * time.Millisecond)
			}

			if err := daemonctl.Start(exe, configFlagValue(ctx)); err != nil {
				return err
			}
			fmt.Fprintln(stdout, "Daemon restarted")
			return nil
		},
	}

	return []*cobra.Command{startCmd, stopCmd, restartCmd}
}

func daemonExecutable() (string, error) {
	exe, err := os.Executable()
	if err != nil {
		return "", fmt.Errorf("resolve executable: %w", err)
	}
	return exe, nil
}

func configFlagValue(ctx *commandContext) string {
	if ctx.configFlag == nil {
		return ""
	}
	return strings.TrimSpace(*ctx.configFlag)
}
