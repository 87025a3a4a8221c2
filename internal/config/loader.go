package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// EnvPrefix namespaces environment overrides, e.g. REMI_DATA_DIR.
const EnvPrefix = "REMI"

// Loader resolves configuration with precedence
// defaults < config file < environment < explicit overrides.
type Loader struct {
	v          *viper.Viper
	configFile string
	searchDirs []string
}

// NewLoader creates a loader searching the default config directory and
// the working directory.
func NewLoader() *Loader {
	return &Loader{
		v:          viper.New(),
		searchDirs: []string{ExpandPath(DefaultConfigDir), "."},
	}
}

// SetConfigFile pins an explicit config file; a missing file is then an
// error.
func (l *Loader) SetConfigFile(path string) {
	l.configFile = path
}

// SetSearchDirs replaces the directories searched for config.yaml.
func (l *Loader) SetSearchDirs(dirs ...string) {
	l.searchDirs = dirs
}

// Override forces key to value, typically from a CLI flag the user set.
func (l *Loader) Override(key string, value interface{}) {
	l.v.Set(key, value)
}

// ConfigFileUsed returns the file that was read, if any.
func (l *Loader) ConfigFileUsed() string {
	return l.v.ConfigFileUsed()
}

// Load resolves, expands and validates the configuration.
func (l *Loader) Load() (*Config, error) {
	cfg := DefaultConfig()
	l.setup(cfg)

	if err := l.readConfigFile(); err != nil {
		return nil, err
	}
	if err := l.v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	cfg.DataDir = ExpandPath(cfg.DataDir)
	cfg.DBPath = ExpandPath(cfg.DBPath)
	cfg.CacheDir = ExpandPath(cfg.CacheDir)
	cfg.LogFile = ExpandPath(cfg.LogFile)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (l *Loader) setup(cfg *Config) {
	v := l.v
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	for _, dir := range l.searchDirs {
		v.AddConfigPath(dir)
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("data_dir", cfg.DataDir)
	v.SetDefault("db_path", cfg.DBPath)
	v.SetDefault("cache_dir", cfg.CacheDir)
	v.SetDefault("log_file", cfg.LogFile)
	v.SetDefault("log_level", cfg.LogLevel)
	v.SetDefault("log_format", cfg.LogFormat)
	v.SetDefault("timezone", cfg.Timezone)
	v.SetDefault("sphere", cfg.Sphere)
	v.SetDefault("decay_window", cfg.DecayWindow)
	v.SetDefault("wheel_rate_per_second", cfg.WheelRatePerSecond)
	v.SetDefault("concurrency", cfg.Concurrency)
	v.SetDefault("serve.addr", cfg.Serve.Addr)
	v.SetDefault("serve.cors_origins", cfg.Serve.CORSOrigins)
}

func (l *Loader) readConfigFile() error {
	if l.configFile != "" {
		l.v.SetConfigFile(ExpandPath(l.configFile))
		if err := l.v.ReadInConfig(); err != nil {
			return fmt.Errorf("failed to load config file: %w", err)
		}
		return nil
	}

	err := l.v.ReadInConfig()
	var notFound viper.ConfigFileNotFoundError
	if err != nil && !errors.As(err, &notFound) {
		return fmt.Errorf("failed to read config: %w", err)
	}
	return nil
}

// ExpandPath resolves a leading ~ and makes the path absolute. Empty stays
// empty.
func ExpandPath(path string) string {
	if path == "" {
		return ""
	}
	if path == "~" || strings.HasPrefix(path, "~/") {
		home, _ := os.UserHomeDir()
		path = filepath.Join(home, strings.TrimPrefix(path[1:], "/"))
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return path
	}
	return abs
}
