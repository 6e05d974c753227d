package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Config encapsulates the watch configuration for the backup daemon.
//
// Fields:
//   - Interval: seconds between backup cycles
//   - BackupDestination: absolute directory the backup tree is mirrored into
//   - ItemsToBackup: absolute source paths to scan each cycle
//   - Logging: log format and level
type Config struct {
	Interval          int      `toml:"interval"`
	BackupDestination string   `toml:"backup_destination"`
	ItemsToBackup     []string `toml:"items_to_backup"`
	Logging           Logging  `toml:"logging"`
}

// DefaultPath returns the absolute path to the default configuration file.
func DefaultPath() (string, error) {
	return ExpandPath("~/.config/backupd/config.toml")
}

// decode builds a Config from a decoded TOML document. A field holding a
// value of the wrong type is replaced by its default and reported, the same
// treatment heal applies to invalid values. Missing fields keep their zero
// value so heal sees them exactly as a typed decode would have left them.
func decode(raw map[string]any, configDir string) (Config, []string) {
	var cfg Config
	var healed []string
	defaults := Default(configDir)

	if value, ok := raw["interval"]; ok {
		if seconds, ok := value.(int64); ok {
			cfg.Interval = int(seconds)
		} else {
			cfg.Interval = defaults.Interval
			healed = append(healed, fmt.Sprintf("interval must be a whole number of seconds; reset to %d", defaults.Interval))
		}
	}

	if value, ok := raw["backup_destination"]; ok {
		if dest, ok := value.(string); ok {
			cfg.BackupDestination = dest
		} else {
			cfg.BackupDestination = defaults.BackupDestination
			healed = append(healed, fmt.Sprintf("backup_destination must be a string; reset to %s", defaults.BackupDestination))
		}
	}

	if value, ok := raw["items_to_backup"]; ok {
		entries, ok := value.([]any)
		if !ok {
			healed = append(healed, "items_to_backup must be a list of paths; reset to empty list")
		} else {
			for _, entry := range entries {
				item, ok := entry.(string)
				if !ok {
					cfg.ItemsToBackup = nil
					healed = append(healed, "items_to_backup contained a non-string entry; reset to empty list")
					break
				}
				cfg.ItemsToBackup = append(cfg.ItemsToBackup, item)
			}
		}
	}

	if value, ok := raw["logging"]; ok {
		if section, ok := value.(map[string]any); ok {
			if format, ok := section["format"].(string); ok {
				cfg.Logging.Format = format
			}
			if level, ok := section["level"].(string); ok {
				cfg.Logging.Level = level
			}
		}
	}

	return cfg, healed
}

// heal replaces invalid fields with their defaults and returns a description
// of every correction made. The corrected document must be persisted by the
// caller when any corrections are reported.
func (c *Config) heal(configDir string) []string {
	var healed []string
	defaults := Default(configDir)

	if c.Interval < 0 {
		c.Interval = defaults.Interval
		healed = append(healed, fmt.Sprintf("interval must be non-negative; reset to %d", defaults.Interval))
	}

	c.BackupDestination = strings.TrimSpace(c.BackupDestination)
	if !filepath.IsAbs(c.BackupDestination) {
		c.BackupDestination = defaults.BackupDestination
		healed = append(healed, fmt.Sprintf("backup_destination must be an absolute path; reset to %s", defaults.BackupDestination))
	} else {
		c.BackupDestination = filepath.Clean(c.BackupDestination)
	}

	if c.ItemsToBackup == nil {
		c.ItemsToBackup = []string{}
	}
	for _, item := range c.ItemsToBackup {
		if !filepath.IsAbs(strings.TrimSpace(item)) {
			c.ItemsToBackup = []string{}
			healed = append(healed, "items_to_backup contained a non-absolute path; reset to empty list")
			break
		}
	}

	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	switch c.Logging.Format {
	case "console", "json":
	default:
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}

	return healed
}

// ExpandPath resolves a leading ~ and returns a cleaned absolute path.
func ExpandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && pathValue[1] == '/' {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	absolute, err := filepath.Abs(filepath.Clean(pathValue))
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", pathValue, err)
	}
	return absolute, nil
}
