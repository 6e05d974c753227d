package config

import "path/filepath"

const (
	// DefaultInterval is the seconds between backup cycles when the config
	// document is missing or carries an invalid interval.
	DefaultInterval = 300

	defaultBackupDirName = "backup"
	defaultLogFormat     = "console"
	defaultLogLevel      = "info"
)

// Default returns a Config populated with repository defaults. The backup
// destination defaults to a backup/ directory beside the config file, so it
// depends on where the document lives.
func Default(configDir string) Config {
	return Config{
		Interval:          DefaultInterval,
		BackupDestination: filepath.Join(configDir, defaultBackupDirName),
		ItemsToBackup:     []string{},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
