package config

import (
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

const defaultEditor = "code"

type Config struct {
	ScanDirs   []string `mapstructure:"scan_dirs"`
	Editor     string   `mapstructure:"editor"`
	ScanOnOpen bool     `mapstructure:"scan_on_open"`
}

func defaultConfig() *Config {
	return &Config{
		ScanDirs: []string{"~/Documents"},
		Editor:   editorFallback(),
	}
}

func editorFallback() string {
	if ed := os.Getenv("EDITOR"); ed != "" {
		return ed
	}
	return defaultEditor
}

// Dir returns the ws config directory, honoring XDG_CONFIG_HOME. The
// snapshot database lives here too.
func Dir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "ws")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "ws")
}

func Load() (*Config, error) {
	cfg := defaultConfig()

	v := viper.New()
	v.SetConfigName("config")
	v.AddConfigPath(Dir())

	v.SetDefault("scan_dirs", cfg.ScanDirs)
	v.SetDefault("editor", cfg.Editor)
	v.SetDefault("scan_on_open", false)

	for _, typ := range []string{"yaml", "toml"} {
		v.SetConfigType(typ)
		if err := v.ReadInConfig(); err == nil {
			if err := v.Unmarshal(cfg); err != nil {
				return nil, err
			}
			return cfg, nil
		}
	}

	return cfg, nil
}

// ExpandPath resolves a leading ~/ against the user's home directory.
func ExpandPath(path string) string {
	if path == "~" || path == "~/" {
		home, _ := os.UserHomeDir()
		return home
	}
	if len(path) > 1 && path[:2] == "~/" {
		home, _ := os.UserHomeDir()
		return filepath.Join(home, path[2:])
	}
	return os.ExpandEnv(path)
}

// ExpandedScanDirs returns ScanDirs with ~ and env vars resolved.
func (c *Config) ExpandedScanDirs() []string {
	dirs := make([]string, 0, len(c.ScanDirs))
	for _, d := range c.ScanDirs {
		dirs = append(dirs, ExpandPath(d))
	}
	return dirs
}
