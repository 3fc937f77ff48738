// Package config loads cashbook settings from the config file, the
// environment and an optional .env file.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every environment override, e.g. CASHBOOK_DATABASE_PATH.
const EnvPrefix = "CASHBOOK"

// Configuration keys.
const (
	KeyDatabasePath    = "database.path"
	KeyLogLevel        = "logging.level"
	KeyLogFormat       = "logging.format"
	KeyDefaultCurrency = "business.default_currency"
	KeyTheme           = "dashboard.theme"
	KeyRefresh         = "dashboard.refresh_interval"
)

// DefaultDatabasePath is used when no database path is configured.
const DefaultDatabasePath = "$HOME/.local/share/cashbook/cashbook.db"

// Settings is the resolved application configuration.
type Settings struct {
	DatabasePath    string
	LogLevel        string
	LogFormat       string
	DefaultCurrency string
	Theme           string
	RefreshInterval time.Duration
}

// SetDefaults registers default values on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault(KeyDatabasePath, DefaultDatabasePath)
	v.SetDefault(KeyLogLevel, "info")
	v.SetDefault(KeyLogFormat, "console")
	v.SetDefault(KeyDefaultCurrency, "USD")
	v.SetDefault(KeyTheme, "default")
	v.SetDefault(KeyRefresh, 30*time.Second)
}

// Init prepares v for reading. A .env file in the working directory is
// loaded into the process environment first; variables that are already
// set win. When cfgFile is empty, config.yaml is searched for in
// $HOME/.config/cashbook and the working directory. A missing config file
// is not an error.
func Init(v *viper.Viper, cfgFile string) error {
	_ = godotenv.Load()

	SetDefaults(v)

	if cfgFile != "" {
		v.SetConfigFile(ExpandPath(cfgFile))
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			return fmt.Errorf("failed to get home directory: %w", err)
		}
		v.AddConfigPath(filepath.Join(home, ".config", "cashbook"))
		v.AddConfigPath(".")
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return fmt.Errorf("failed to read config: %w", err)
		}
	}

	return nil
}

// FromViper resolves Settings from an initialized viper instance.
func FromViper(v *viper.Viper) Settings {
	return Settings{
		DatabasePath:    ExpandPath(v.GetString(KeyDatabasePath)),
		LogLevel:        v.GetString(KeyLogLevel),
		LogFormat:       v.GetString(KeyLogFormat),
		DefaultCurrency: strings.ToUpper(v.GetString(KeyDefaultCurrency)),
		Theme:           v.GetString(KeyTheme),
		RefreshInterval: v.GetDuration(KeyRefresh),
	}
}

// ExpandPath expands ~ and environment variables in a file path.
func ExpandPath(path string) string {
	if path == "" {
		return path
	}

	if path == "~" || strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			path = filepath.Join(home, strings.TrimPrefix(path[1:], "/"))
		}
	}

	return os.ExpandEnv(path)
}
