// Package config loads taskflow settings from defaults, an optional config
// file, a .env file and TASKFLOW_* environment variables, in increasing order
// of precedence.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-viper/mapstructure/v2"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const appName = "taskflow"

// Themes supported by the terminal UI
const (
	ThemeDark  = "dark"
	ThemeLight = "light"
)

// Config is the root configuration.
type Config struct {
	DataDir         string   `mapstructure:"data_dir"`
	DBPath          string   `mapstructure:"db_path"`
	LogFile         string   `mapstructure:"log_file"`
	Theme           string   `mapstructure:"theme"`
	DefaultProjects []string `mapstructure:"default_projects"`
	ShowCompleted   bool     `mapstructure:"show_completed"`
	Debug           bool     `mapstructure:"debug"`
}

// Load resolves the configuration. An empty path looks for config.* in the
// user config directory and tolerates its absence; an explicit path must exist.
func Load(v *viper.Viper, path string) (Config, error) {
	if _, err := os.Stat(".env"); err == nil {
		if err := godotenv.Load(); err != nil {
			return Config{}, fmt.Errorf("load .env: %w", err)
		}
	}

	dataDir, err := DefaultDataDir()
	if err != nil {
		return Config{}, err
	}
	v.SetDefault("data_dir", dataDir)
	v.SetDefault("db_path", "")
	v.SetDefault("log_file", "")
	v.SetDefault("theme", ThemeDark)
	v.SetDefault("default_projects", []string{"Work", "Personal"})
	v.SetDefault("show_completed", true)
	v.SetDefault("debug", false)

	v.SetEnvPrefix("TASKFLOW")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	} else if dir, err := os.UserConfigDir(); err == nil {
		v.SetConfigName("config")
		v.AddConfigPath(filepath.Join(dir, appName))
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return Config{}, fmt.Errorf("read config: %w", err)
			}
		}
	}

	var cfg Config
	hook := viper.DecodeHook(mapstructure.ComposeDecodeHookFunc(
		mapstructure.StringToSliceHookFunc(","),
	))
	if err := v.Unmarshal(&cfg, hook); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}
	cfg.fill()
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks values that cannot be defaulted
func (c Config) Validate() error {
	switch c.Theme {
	case ThemeDark, ThemeLight:
	default:
		return fmt.Errorf("theme must be %q or %q, got %q", ThemeDark, ThemeLight, c.Theme)
	}
	for _, p := range c.DefaultProjects {
		if p == "" {
			return fmt.Errorf("default_projects contains an empty name")
		}
	}
	if c.DataDir == "" {
		return fmt.Errorf("data_dir is empty")
	}
	return nil
}

func (c *Config) fill() {
	c.Theme = strings.ToLower(strings.TrimSpace(c.Theme))
	for i, p := range c.DefaultProjects {
		c.DefaultProjects[i] = strings.TrimSpace(p)
	}
	c.DataDir = expandPath(c.DataDir)
	c.DBPath = expandPath(c.DBPath)
	c.LogFile = expandPath(c.LogFile)
	if c.DBPath == "" {
		c.DBPath = filepath.Join(c.DataDir, appName+".db")
	}
	if c.LogFile == "" {
		c.LogFile = filepath.Join(c.DataDir, appName+".log")
	}
}

// DefaultDataDir returns $XDG_DATA_HOME/taskflow, falling back to ~/.local/share/taskflow
func DefaultDataDir() (string, error) {
	dataDir := os.Getenv("XDG_DATA_HOME")
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		dataDir = filepath.Join(home, ".local", "share")
	}
	return filepath.Join(dataDir, appName), nil
}

// expandPath resolves environment variables and a leading ~
func expandPath(p string) string {
	if p == "" {
		return p
	}
	expanded := os.ExpandEnv(p)
	if expanded == "~" || strings.HasPrefix(expanded, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return expanded
		}
		return filepath.Join(home, strings.TrimPrefix(expanded[1:], "/"))
	}
	return expanded
}
