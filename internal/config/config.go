package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/penwyp/remi-timeline/internal/core/constants"
	"github.com/penwyp/remi-timeline/internal/util"
)

// ErrInvalid is wrapped by every validation failure.
var ErrInvalid = errors.New("invalid configuration")

const (
	DefaultConfigDir = "~/.remi-timeline"
	DefaultDataDir   = "~/.remi-timeline/posts"
	DefaultCacheDir  = "~/.remi-timeline/cache"
	DefaultLogFile   = "~/.remi-timeline/logs/app.log"
	DefaultServeAddr = "127.0.0.1:8080"
)

// Config is the resolved runtime configuration.
type Config struct {
	DataDir            string        `mapstructure:"data_dir"`
	DBPath             string        `mapstructure:"db_path"`
	CacheDir           string        `mapstructure:"cache_dir"`
	LogFile            string        `mapstructure:"log_file"`
	LogLevel           string        `mapstructure:"log_level"`
	LogFormat          string        `mapstructure:"log_format"`
	Timezone           string        `mapstructure:"timezone"`
	Sphere             string        `mapstructure:"sphere"`
	DecayWindow        time.Duration `mapstructure:"decay_window"`
	WheelRatePerSecond float64       `mapstructure:"wheel_rate_per_second"`
	Concurrency        int           `mapstructure:"concurrency"`
	Serve              ServeConfig   `mapstructure:"serve"`
}

// ServeConfig configures the HTTP API.
type ServeConfig struct {
	Addr        string   `mapstructure:"addr"`
	CORSOrigins []string `mapstructure:"cors_origins"`
}

// DefaultConfig returns the built-in defaults.
func DefaultConfig() *Config {
	return &Config{
		DataDir:            DefaultDataDir,
		CacheDir:           DefaultCacheDir,
		LogFile:            DefaultLogFile,
		LogLevel:           "info",
		LogFormat:          string(util.FormatText),
		Timezone:           "Local",
		DecayWindow:        constants.InteractionDecayWindow,
		WheelRatePerSecond: constants.DefaultWheelRatePerSecond,
		Concurrency:        4,
		Serve: ServeConfig{
			Addr:        DefaultServeAddr,
			CORSOrigins: []string{"*"},
		},
	}
}

// Validate fills empty fields with defaults and rejects values that cannot
// work.
func (c *Config) Validate() error {
	def := DefaultConfig()
	if c.DataDir == "" && c.DBPath == "" {
		c.DataDir = def.DataDir
	}
	if c.CacheDir == "" {
		c.CacheDir = def.CacheDir
	}
	if c.LogLevel == "" {
		c.LogLevel = def.LogLevel
	}
	if c.LogFormat == "" {
		c.LogFormat = def.LogFormat
	}
	if c.Timezone == "" {
		c.Timezone = def.Timezone
	}
	if c.DecayWindow == 0 {
		c.DecayWindow = def.DecayWindow
	}
	if c.WheelRatePerSecond == 0 {
		c.WheelRatePerSecond = def.WheelRatePerSecond
	}
	if c.Concurrency == 0 {
		c.Concurrency = def.Concurrency
	}
	if c.Serve.Addr == "" {
		c.Serve.Addr = def.Serve.Addr
	}

	if c.DecayWindow < 0 {
		return fmt.Errorf("%w: decay_window must be positive, got %s", ErrInvalid, c.DecayWindow)
	}
	if c.WheelRatePerSecond < 0 {
		return fmt.Errorf("%w: wheel_rate_per_second must not be negative", ErrInvalid)
	}
	if c.Concurrency < 0 {
		return fmt.Errorf("%w: concurrency must be positive", ErrInvalid)
	}
	switch util.LogFormat(c.LogFormat) {
	case util.FormatText, util.FormatJSON:
	default:
		return fmt.Errorf("%w: log_format must be text or json, got %q", ErrInvalid, c.LogFormat)
	}
	if _, err := util.LoadLocation(c.Timezone); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	return nil
}

// Location resolves the configured timezone. Call after Validate.
func (c *Config) Location() *time.Location {
	loc, err := util.LoadLocation(c.Timezone)
	if err != nil {
		return time.Local
	}
	return loc
}

// UsesDatabase reports whether posts come from SQLite instead of JSONL
// files.
func (c *Config) UsesDatabase() bool {
	return c.DBPath != ""
}
