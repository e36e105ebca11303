package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// Config wraps viper for CLI settings management
type Config struct {
	v *viper.Viper
}

// New creates a new Config instance
func New() *Config {
	return &Config{
		v: viper.New(),
	}
}

// LoadFromFile loads configuration from a file
func (c *Config) LoadFromFile(path string) error {
	c.v.SetConfigFile(path)
	c.v.SetConfigType("yaml")
	if err := c.v.ReadInConfig(); err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}
	return nil
}

// GetString retrieves a string configuration value
func (c *Config) GetString(key string) string {
	return c.v.GetString(key)
}

// GetBool retrieves a boolean configuration value
func (c *Config) GetBool(key string) bool {
	return c.v.GetBool(key)
}

// Set sets a configuration value
func (c *Config) Set(key string, value interface{}) {
	c.v.Set(key, value)
}

// SetDefault sets a default value for a key
func (c *Config) SetDefault(key string, value interface{}) {
	c.v.SetDefault(key, value)
}

// AutomaticEnv enables automatic environment variable binding
func (c *Config) AutomaticEnv() {
	c.v.AutomaticEnv()
}

// SetEnvPrefix sets the environment variable prefix
func (c *Config) SetEnvPrefix(prefix string) {
	c.v.SetEnvPrefix(prefix)
}

// GetViper returns the underlying viper instance
func (c *Config) GetViper() *viper.Viper {
	return c.v
}

// CLIConfig contains tool-level settings, distinct from the per-project
// configuration loaded by Loader
type CLIConfig struct {
	// Logging contains logging configuration
	Logging LoggingConfig `yaml:"logging" mapstructure:"logging"`

	// Launcher contains runtime launcher configuration
	Launcher LauncherConfig `yaml:"launcher" mapstructure:"launcher"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	// Level is the log level (debug, info, warn, error)
	Level string `yaml:"level" mapstructure:"level"`

	// Format is the log format (json, console, auto)
	Format string `yaml:"format" mapstructure:"format"`

	// OutputPath is where to write logs
	OutputPath string `yaml:"output_path" mapstructure:"output_path"`

	// ErrorOutputPath is where to write error logs
	ErrorOutputPath string `yaml:"error_output_path" mapstructure:"error_output_path"`
}

// LauncherConfig contains runtime launcher configuration
type LauncherConfig struct {
	// Binary is the launcher executable; looked up on PATH when relative
	Binary string `yaml:"binary" mapstructure:"binary"`

	// ResolveTimeout bounds the wait for a channel version query before a
	// hint is logged
	ResolveTimeout time.Duration `yaml:"resolve_timeout" mapstructure:"resolve_timeout"`

	// StopTimeout is how long to wait for a graceful exit before killing
	// the runtime process
	StopTimeout time.Duration `yaml:"stop_timeout" mapstructure:"stop_timeout"`
}

// LoadCLIConfig loads CLI settings from a file. Environment variables with
// the OSPREY_ prefix override file values.
func LoadCLIConfig(path string) (*CLIConfig, error) {
	cfg := New()

	if path != "" {
		if err := cfg.LoadFromFile(path); err != nil {
			return nil, err
		}
	}

	cfg.SetEnvPrefix("OSPREY")
	cfg.AutomaticEnv()

	var cliCfg CLIConfig
	if err := cfg.GetViper().Unmarshal(&cliCfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	applyCLIDefaults(&cliCfg)

	return &cliCfg, nil
}

// applyCLIDefaults applies default values to CLI settings after unmarshaling
func applyCLIDefaults(cfg *CLIConfig) {
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "auto"
	}
	if cfg.Logging.OutputPath == "" {
		cfg.Logging.OutputPath = "stdout"
	}
	if cfg.Logging.ErrorOutputPath == "" {
		cfg.Logging.ErrorOutputPath = "stderr"
	}

	if cfg.Launcher.ResolveTimeout == 0 {
		cfg.Launcher.ResolveTimeout = 30 * time.Second
	}
	if cfg.Launcher.StopTimeout == 0 {
		cfg.Launcher.StopTimeout = 10 * time.Second
	}
}
