package main

import (
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"backupd/internal/daemon"
	"backupd/internal/daemonctl"
	"backupd/internal/engine"
	"backupd/internal/history"
	"backupd/internal/pathresolve"
)

// newRunCommand runs the daemon loop in the foreground. `start` launches this
// same command detached; running it directly is useful under a supervisor or
// for debugging.
func newRunCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Run the backup loop in the foreground",
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := ctx.environment()
			if err != nil {
				return err
			}

			runCtx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			hist, err := history.Open(env.stateDir)
			if err != nil {
				env.logger.Warn("history journal unavailable", "error", err)
				hist = nil
			}
			defer hist.Close()

			resolver := pathresolve.New(env.logger)
			eng := engine.New(env.checksums, resolver, env.logger)
			d := daemon.New(env.configs, eng, hist, env.logger, daemonctl.LockFilePath(), daemonctl.PIDFilePath())

			if err := d.Run(runCtx); err != nil {
				if errors.Is(err, daemon.ErrAlreadyRunning) {
					return fmt.Errorf("%w; use `backupd stop` first", err)
				}
				return err
			}
			return nil
		},
	}
}
