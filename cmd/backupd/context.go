package main

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"backupd/internal/checksum"
	"backupd/internal/config"
	"backupd/internal/logging"
)

// appEnv is the composition root: the stores and logger every command works
// against, built once per invocation.
type appEnv struct {
	configs   *config.Store
	checksums *checksum.Store
	logger    *slog.Logger
	logPath   string
	stateDir  string
}

type commandContext struct {
	configFlag *string

	once sync.Once
	env  *appEnv
	err  error
}

func newCommandContext(configFlag *string) *commandContext {
	return &commandContext{configFlag: configFlag}
}

// environment lazily builds the app environment. The logger is constructed
// from the loaded config, so a fatal config parse error surfaces here.
func (c *commandContext) environment() (*appEnv, error) {
	c.once.Do(func() {
		configPath := ""
		if c.configFlag != nil {
			configPath = strings.TrimSpace(*c.configFlag)
		}
		if configPath == "" {
			path, err := config.DefaultPath()
			if err != nil {
				c.err = err
				return
			}
			configPath = path
		} else {
			expanded, err := config.ExpandPath(configPath)
			if err != nil {
				c.err = err
				return
			}
			configPath = expanded
		}

		stateDir := filepath.Dir(configPath)
		logPath := filepath.Join(stateDir, "backupd.log")

		// Bootstrap logger: console only, so a broken config is still
		// reported somewhere.
		bootstrap, err := logging.New(logging.Options{Console: os.Stdout})
		if err != nil {
			c.err = err
			return
		}

		configs := config.NewStore(configPath, bootstrap)
		cfg, err := configs.Load()
		if err != nil {
			c.err = err
			return
		}

		logger, err := logging.New(logging.Options{
			Level:    cfg.Logging.Level,
			Format:   cfg.Logging.Format,
			Console:  os.Stdout,
			FilePath: logPath,
		})
		if err != nil {
			c.err = err
			return
		}

		c.env = &appEnv{
			configs:   config.NewStore(configPath, logger),
			checksums: checksum.NewStore(filepath.Join(stateDir, "checksums.json"), logger),
			logger:    logger,
			logPath:   logPath,
			stateDir:  stateDir,
		}
	})
	return c.env, c.err
}
