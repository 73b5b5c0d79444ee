// Package config loads the mcphost daemon configuration from YAML.
package config

import (
	"os"
	"path/filepath"
	"time"

	"emperror.dev/errors"
	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"

	"github.com/reyoung/mcphost/process"
)

const (
	DefaultListen            = "127.0.0.1:8999"
	DefaultRecoveryRetention = 7 * 24 * time.Hour
	DefaultWatchBuffer       = 256

	EnvListen = "MCPHOST_LISTEN"

	appName = "mcphost"
)

type Config struct {
	Listen            string                 `yaml:"listen"`
	LogLevel          string                 `yaml:"log_level"`
	LogFormat         string                 `yaml:"log_format"`
	Shell             string                 `yaml:"shell"`
	DataDir           string                 `yaml:"data_dir"`
	WriteTimeout      time.Duration          `yaml:"write_timeout"`
	ReplaceOnSpawn    bool                   `yaml:"replace_on_spawn"`
	RecoveryRetention time.Duration          `yaml:"recovery_retention"`
	WatchBuffer       int                    `yaml:"watch_buffer"`
	Servers           []process.ServerConfig `yaml:"servers"`
}

func Default() *Config {
	return &Config{
		Listen:            DefaultListen,
		LogLevel:          logrus.InfoLevel.String(),
		LogFormat:         "text",
		DataDir:           defaultDataDir(),
		RecoveryRetention: DefaultRecoveryRetention,
		WatchBuffer:       DefaultWatchBuffer,
	}
}

// DefaultPath is $XDG_CONFIG_HOME/mcphost/config.yaml, or the same under
// ~/.config.
func DefaultPath() string {
	return filepath.Join(xdgDir("XDG_CONFIG_HOME", ".config"), appName, "config.yaml")
}

func defaultDataDir() string {
	return filepath.Join(xdgDir("XDG_DATA_HOME", filepath.Join(".local", "share")), appName)
}

func xdgDir(env, fallback string) string {
	if dir := os.Getenv(env); dir != "" {
		return dir
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return fallback
	}
	return filepath.Join(home, fallback)
}

// Load reads path on top of the defaults. A missing file is not an error.
func Load(path string) (*Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, errors.WrapIfWithDetails(err, "failed to parse config", "path", path)
		}
	case os.IsNotExist(err):
		logrus.WithField("path", path).Debug("config file not found, using defaults")
	default:
		return nil, errors.WrapIfWithDetails(err, "failed to read config", "path", path)
	}

	if listen := os.Getenv(EnvListen); listen != "" {
		cfg.Listen = listen
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	var errs error
	if c.Listen == "" {
		errs = errors.Append(errs, errors.NewPlain("listen address is empty"))
	}
	if _, err := logrus.ParseLevel(c.LogLevel); err != nil {
		errs = errors.Append(errs, errors.WithDetails(errors.NewPlain("unknown log level"), "log_level", c.LogLevel))
	}
	if c.LogFormat != "text" && c.LogFormat != "json" {
		errs = errors.Append(errs, errors.WithDetails(errors.NewPlain("log format must be text or json"), "log_format", c.LogFormat))
	}
	if c.WriteTimeout < 0 {
		errs = errors.Append(errs, errors.NewPlain("write_timeout must not be negative"))
	}
	if c.WatchBuffer <= 0 {
		errs = errors.Append(errs, errors.NewPlain("watch_buffer must be positive"))
	}
	seen := make(map[string]bool, len(c.Servers))
	for _, s := range c.Servers {
		if err := s.Validate(); err != nil {
			errs = errors.Append(errs, err)
			continue
		}
		if seen[s.ID] {
			errs = errors.Append(errs, errors.WithDetails(errors.NewPlain("duplicate server id"), "server", s.ID))
		}
		seen[s.ID] = true
	}
	return errs
}

// Logger builds a logrus logger with the configured level and format.
func (c *Config) Logger() *logrus.Logger {
	log := logrus.New()
	if lvl, err := logrus.ParseLevel(c.LogLevel); err == nil {
		log.SetLevel(lvl)
	}
	if c.LogFormat == "json" {
		log.SetFormatter(&logrus.JSONFormatter{})
	} else {
		log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}
	return log
}
