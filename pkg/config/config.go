// Package config loads diary settings from .diary.yaml and DIARY_* variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	homedir "github.com/mitchellh/go-homedir"
	"github.com/spf13/viper"
)

const (
	BackendLocal    = "local"
	BackendPostgres = "postgres"
)

type Config struct {
	Backend       string             `mapstructure:"backend"`
	Path          string             `mapstructure:"path"`
	Database      DatabaseConfig     `mapstructure:"database"`
	Auth          AuthConfig         `mapstructure:"auth"`
	Gemini        GeminiConfig       `mapstructure:"gemini"`
	Reminders     ReminderConfig     `mapstructure:"reminders"`
	Notifications NotificationConfig `mapstructure:"notifications"`
	Receipts      ReceiptsConfig     `mapstructure:"receipts"`
	Log           LogConfig          `mapstructure:"log"`
}

type DatabaseConfig struct {
	DSN string `mapstructure:"dsn"`
}

type AuthConfig struct {
	// JWTSecret verifies access tokens issued by the hosted auth service.
	JWTSecret   string `mapstructure:"jwt_secret"`
	SessionPath string `mapstructure:"session_path"`
}

type GeminiConfig struct {
	APIKey    string        `mapstructure:"api_key"`
	Model     string        `mapstructure:"model"`
	LiveModel string        `mapstructure:"live_model"`
	Timeout   time.Duration `mapstructure:"timeout"`
}

type ReminderConfig struct {
	Interval time.Duration `mapstructure:"interval"`
}

type NotificationConfig struct {
	Enabled bool `mapstructure:"enabled"`
	Desktop bool `mapstructure:"desktop"`
}

type ReceiptsConfig struct {
	Bucket    string `mapstructure:"bucket"`
	Region    string `mapstructure:"region"`
	Endpoint  string `mapstructure:"endpoint"`
	AccessKey string `mapstructure:"access_key"`
	SecretKey string `mapstructure:"secret_key"`
}

type LogConfig struct {
	Level string `mapstructure:"level"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("backend", BackendLocal)
	v.SetDefault("path", "~/.diary.db")
	v.SetDefault("database.dsn", "")
	v.SetDefault("auth.jwt_secret", "")
	v.SetDefault("auth.session_path", "~/.diary.session")
	v.SetDefault("gemini.api_key", "")
	v.SetDefault("gemini.model", "gemini-2.5-flash")
	v.SetDefault("gemini.live_model", "gemini-live-2.5-flash-preview")
	v.SetDefault("gemini.timeout", 60*time.Second)
	v.SetDefault("reminders.interval", time.Minute)
	v.SetDefault("notifications.enabled", true)
	v.SetDefault("notifications.desktop", true)
	v.SetDefault("receipts.bucket", "")
	v.SetDefault("receipts.region", "us-east-1")
	v.SetDefault("receipts.endpoint", "")
	v.SetDefault("receipts.access_key", "")
	v.SetDefault("receipts.secret_key", "")
	v.SetDefault("log.level", "warn")
}

// Load walks DIARY_CONFIG_PATH, the working directory and the home directory
// looking for .diary.yaml. A missing file is not an error.
func Load() (*Config, error) {
	v := viper.New()
	setDefaults(v)
	v.SetConfigName(".diary") // .yaml is implicit
	v.SetEnvPrefix("DIARY")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if override := os.Getenv("DIARY_CONFIG_PATH"); override != "" {
		v.AddConfigPath(override)
	}
	v.AddConfigPath("./")
	if home, err := homedir.Dir(); err == nil {
		v.AddConfigPath(home)
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("config: read: %w", err)
		}
	}
	return decode(v)
}

// LoadFile reads exactly one config file.
func LoadFile(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}
	return decode(v)
}

func decode(v *viper.Viper) (*Config, error) {
	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("config: decode: %w", err)
	}
	var err error
	if cfg.Path, err = expand(cfg.Path); err != nil {
		return nil, err
	}
	if cfg.Auth.SessionPath, err = expand(cfg.Auth.SessionPath); err != nil {
		return nil, err
	}
	cfg.Backend = strings.ToLower(strings.TrimSpace(cfg.Backend))
	return cfg, cfg.Validate()
}

func expand(path string) (string, error) {
	if path == "" {
		return "", nil
	}
	p, err := homedir.Expand(path)
	if err != nil {
		return "", fmt.Errorf("config: expand %q: %w", path, err)
	}
	return filepath.Clean(p), nil
}

func (c *Config) Validate() error {
	switch c.Backend {
	case BackendLocal:
		if c.Path == "" {
			return errors.New("config: path required for the local backend")
		}
	case BackendPostgres:
		if c.Database.DSN == "" {
			return errors.New("config: database.dsn required for the postgres backend")
		}
	default:
		return fmt.Errorf("config: unknown backend %q (expected local or postgres)", c.Backend)
	}
	if c.Reminders.Interval <= 0 {
		return errors.New("config: reminders.interval must be positive")
	}
	return nil
}

// StoreBackend, BasePath and DatabaseDSN satisfy store.Config.
func (c *Config) StoreBackend() string { return c.Backend }

func (c *Config) BasePath() string { return c.Path }

func (c *Config) DatabaseDSN() string { return c.Database.DSN }
