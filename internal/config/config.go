// Package config resolves runtime settings from defaults, a .env file, the
// YAML config file, HABIT_* environment variables and command-line flags,
// in increasing order of precedence.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gookit/validate"
	"github.com/joho/godotenv"
	"github.com/penwyp/go-habit-timeline/internal/core/constants"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	AppDirName = ".go-habit-timeline"
	EnvPrefix  = "HABIT"
)

var ErrInvalidConfig = errors.New("invalid configuration")

type Config struct {
	Source          string        `mapstructure:"source" validate:"required|in:file,api"`
	DataDir         string        `mapstructure:"data_dir" validate:"required"`
	APIURL          string        `mapstructure:"api_url" validate:"required|fullUrl"`
	APITimeout      time.Duration `mapstructure:"api_timeout"`
	Timezone        string        `mapstructure:"timezone"`
	Output          string        `mapstructure:"output" validate:"required|in:table,json,csv,summary"`
	CacheTTL        time.Duration `mapstructure:"cache_ttl"`
	CacheSizeMB     int           `mapstructure:"cache_size_mb" validate:"min:0"`
	SnapshotDir     string        `mapstructure:"snapshot_dir" validate:"required"`
	// SnapshotMaxAge is how old the offline snapshot may get before a run
	// against the API captures a new one.
	SnapshotMaxAge  time.Duration `mapstructure:"snapshot_max_age"`
	RefreshInterval time.Duration `mapstructure:"refresh_interval"`
	LogLevel        string        `mapstructure:"log_level" validate:"in:debug,info,warn,error"`
	LogFormat       string        `mapstructure:"log_format" validate:"in:text,json"`
	LogFile         string        `mapstructure:"log_file"`
	Server          ServerConfig  `mapstructure:"server"`
}

type ServerConfig struct {
	Host         string        `mapstructure:"host" validate:"required"`
	Port         int           `mapstructure:"port" validate:"required|int|min:1|max:65535"`
	Metrics      bool          `mapstructure:"metrics"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
}

// BaseDir is where the config file, logs and snapshots live by default.
func BaseDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return AppDirName
	}
	return filepath.Join(home, AppDirName)
}

// DefaultConfigFile is the config file read when --config is not given.
func DefaultConfigFile() string {
	return filepath.Join(BaseDir(), "config.yaml")
}

// Default returns the built-in settings.
func Default() *Config {
	base := BaseDir()
	return &Config{
		Source:          "file",
		DataDir:         filepath.Join(base, "data"),
		APIURL:          "http://localhost:8001/api",
		APITimeout:      constants.DefaultAPITimeout,
		Timezone:        "Local",
		Output:          "table",
		CacheTTL:        constants.DefaultCacheTTL,
		CacheSizeMB:     8,
		SnapshotDir:     filepath.Join(base, "snapshots"),
		SnapshotMaxAge:  constants.DefaultSnapshotMaxAge,
		RefreshInterval: constants.DefaultRefreshInterval,
		LogLevel:        "info",
		LogFormat:       "text",
		LogFile:         filepath.Join(base, "logs", "app.log"),
		Server: ServerConfig{
			Host:         "127.0.0.1",
			Port:         8090,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 10 * time.Second,
		},
	}
}

// FlagKeys maps command-line flag names onto config keys.
var FlagKeys = map[string]string{
	"source":    "source",
	"dir":       "data_dir",
	"api-url":   "api_url",
	"output":    "output",
	"timezone":  "timezone",
	"cache-ttl": "cache_ttl",
	"refresh":   "refresh_interval",
	"log-level": "log_level",
	"host":      "server.host",
	"port":      "server.port",
	"metrics":   "server.metrics",
}

// Options controls where Load looks.
type Options struct {
	// ConfigFile is an explicit config path; it must exist when set.
	ConfigFile string
	// EnvFile defaults to ".env" in the working directory. A missing file is ignored.
	EnvFile string
	// Flags, when set, override every other layer for flags the user changed.
	Flags *pflag.FlagSet
}

// Load resolves and validates the configuration.
func Load(opts Options) (*Config, error) {
	envFile := opts.EnvFile
	if envFile == "" {
		envFile = ".env"
	}
	if err := godotenv.Load(envFile); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load %s: %w", envFile, err)
	}

	v := viper.New()
	v.SetConfigType("yaml")
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v, Default())

	configFile := opts.ConfigFile
	if configFile == "" {
		configFile = DefaultConfigFile()
		if _, err := os.Stat(configFile); err != nil {
			configFile = ""
		}
	}
	if configFile != "" {
		v.SetConfigFile(ExpandHome(configFile))
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", configFile, err)
		}
	}

	if opts.Flags != nil {
		for name, key := range FlagKeys {
			if flag := opts.Flags.Lookup(name); flag != nil {
				if err := v.BindPFlag(key, flag); err != nil {
					return nil, fmt.Errorf("bind flag %s: %w", name, err)
				}
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unable to decode into config struct: %w", err)
	}

	cfg.DataDir = ExpandHome(cfg.DataDir)
	cfg.SnapshotDir = ExpandHome(cfg.SnapshotDir)
	cfg.LogFile = ExpandHome(cfg.LogFile)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper, d *Config) {
	v.SetDefault("source", d.Source)
	v.SetDefault("data_dir", d.DataDir)
	v.SetDefault("api_url", d.APIURL)
	v.SetDefault("api_timeout", d.APITimeout)
	v.SetDefault("timezone", d.Timezone)
	v.SetDefault("output", d.Output)
	v.SetDefault("cache_ttl", d.CacheTTL)
	v.SetDefault("cache_size_mb", d.CacheSizeMB)
	v.SetDefault("snapshot_dir", d.SnapshotDir)
	v.SetDefault("snapshot_max_age", d.SnapshotMaxAge)
	v.SetDefault("refresh_interval", d.RefreshInterval)
	v.SetDefault("log_level", d.LogLevel)
	v.SetDefault("log_format", d.LogFormat)
	v.SetDefault("log_file", d.LogFile)
	v.SetDefault("server.host", d.Server.Host)
	v.SetDefault("server.port", d.Server.Port)
	v.SetDefault("server.metrics", d.Server.Metrics)
	v.SetDefault("server.read_timeout", d.Server.ReadTimeout)
	v.SetDefault("server.write_timeout", d.Server.WriteTimeout)
}

// Validate checks field rules and the duration bounds struct tags cannot express.
func (c *Config) Validate() error {
	if v := validate.Struct(c); !v.Validate() {
		return fmt.Errorf("%w: %s", ErrInvalidConfig, v.Errors.One())
	}
	if v := validate.Struct(&c.Server); !v.Validate() {
		return fmt.Errorf("%w: server: %s", ErrInvalidConfig, v.Errors.One())
	}

	switch {
	case c.CacheTTL < 0:
		return fmt.Errorf("%w: cache_ttl must not be negative", ErrInvalidConfig)
	case c.SnapshotMaxAge < 0:
		return fmt.Errorf("%w: snapshot_max_age must not be negative", ErrInvalidConfig)
	case c.APITimeout <= 0:
		return fmt.Errorf("%w: api_timeout must be positive", ErrInvalidConfig)
	case c.RefreshInterval < time.Second:
		return fmt.Errorf("%w: refresh_interval must be at least 1s", ErrInvalidConfig)
	}
	return nil
}

// Addr is the server listen address.
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

// ExpandHome replaces a leading "~" with the user's home directory.
func ExpandHome(path string) string {
	if path == "~" || strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return filepath.Join(home, strings.TrimPrefix(path, "~"))
	}
	return path
}
