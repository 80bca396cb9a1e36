package config

import (
	"os"
	"path/filepath"
	"time"

	"github.com/adrg/xdg"
	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

type Config struct {
	DeviceBufferMs int    `koanf:"device_buffer_ms"` // speaker buffer length in milliseconds
	LogFile        string `koanf:"log_file"`         // path for the log file, empty disables file logging
	LogLevel       string `koanf:"log_level"`        // "debug", "info", "warn" or "error"
	ResumeLast     bool   `koanf:"resume_last"`      // reload the last played track on startup
}

func Load() (*Config, error) {
	k := koanf.New(".")

	// Try config files in order of priority (last wins)
	configPaths := getConfigPaths()

	for _, path := range configPaths {
		if _, err := os.Stat(path); err == nil {
			if err := k.Load(file.Provider(path), toml.Parser()); err != nil {
				return nil, err
			}
		}
	}

	cfg := &Config{
		DeviceBufferMs: 100,
		LogLevel:       "info",
	}

	if err := k.Unmarshal("", cfg); err != nil {
		return nil, err
	}

	if cfg.DeviceBufferMs <= 0 || cfg.DeviceBufferMs > 2000 {
		cfg.DeviceBufferMs = 100
	}

	if cfg.LogFile != "" {
		cfg.LogFile = expandPath(cfg.LogFile)
	}

	return cfg, nil
}

// DeviceBuffer returns the speaker buffer length as a duration.
func (c *Config) DeviceBuffer() time.Duration {
	return time.Duration(c.DeviceBufferMs) * time.Millisecond
}

func getConfigPaths() []string {
	paths := []string{}

	// 1. $XDG_CONFIG_HOME/cadence/config.toml
	paths = append(paths, filepath.Join(xdg.ConfigHome, "cadence", "config.toml"))

	// 2. ./config.toml (pwd, highest priority)
	paths = append(paths, "config.toml")

	return paths
}

func expandPath(path string) string {
	if path != "" && path[0] == '~' {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, path[1:])
		}
	}
	return path
}
