package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// FileName is the base name of the config file searched for in the working
// directory; the extension selects the format (yaml, toml or json).
const FileName = ".pbnrt"

// Config represents the complete pbnrt configuration
type Config struct {
	// References are extra type-reference files (.cs, manifests, descriptor sets)
	References []string `json:"references" mapstructure:"references"`
	// Guard is the setter guard detection mode: "symbol" or "text"
	Guard string `json:"guard" mapstructure:"guard"`
	// RequireProtobuf skips files that never reference Google.Protobuf
	RequireProtobuf bool `json:"requireProtobuf" mapstructure:"requireProtobuf"`
	// Exclude holds gitignore-style patterns of files to leave alone
	Exclude []string `json:"exclude" mapstructure:"exclude"`
	// Jobs bounds the number of files processed concurrently; 0 means one per CPU
	Jobs int `json:"jobs" mapstructure:"jobs"`

	Logging LoggingConfig `json:"logging" mapstructure:"logging"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Format string `json:"format" mapstructure:"format"`
	Level  string `json:"level" mapstructure:"level"`
}

// DefaultConfig returns the default configuration. obj/ is not excluded:
// Grpc.Tools generates its C# there.
func DefaultConfig() *Config {
	return &Config{
		References:      []string{},
		Guard:           "symbol",
		RequireProtobuf: true,
		Exclude:         []string{"bin/"},
		Jobs:            0,
		Logging: LoggingConfig{
			Format: "human",
			Level:  "warn",
		},
	}
}

func setDefaults(v *viper.Viper) {
	d := DefaultConfig()
	v.SetDefault("references", d.References)
	v.SetDefault("guard", d.Guard)
	v.SetDefault("requireProtobuf", d.RequireProtobuf)
	v.SetDefault("exclude", d.Exclude)
	v.SetDefault("jobs", d.Jobs)
	v.SetDefault("logging.format", d.Logging.Format)
	v.SetDefault("logging.level", d.Logging.Level)
}

// LoadConfig loads configuration from path when given, otherwise from
// .pbnrt.{yaml,toml,json} in dir. A missing config file yields the defaults.
// Environment variables prefixed PBNRT_ override file values
// (PBNRT_GUARD, PBNRT_LOGGING_LEVEL, ...).
func LoadConfig(path, dir string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix("PBNRT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName(FileName)
		v.AddConfigPath(dir)
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, &ConfigError{Field: "file", Message: err.Error()}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, &ConfigError{Field: "file", Message: err.Error()}
	}

	// Relative reference paths are relative to the config file.
	if used := v.ConfigFileUsed(); used != "" {
		base := filepath.Dir(used)
		for i, ref := range cfg.References {
			if !filepath.IsAbs(ref) {
				cfg.References[i] = filepath.Join(base, ref)
			}
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	switch strings.ToLower(c.Guard) {
	case "", "symbol", "text":
	default:
		return &ConfigError{Field: "guard", Message: fmt.Sprintf("unknown mode %q", c.Guard)}
	}
	if c.Jobs < 0 {
		return &ConfigError{Field: "jobs", Message: "must not be negative"}
	}
	switch strings.ToLower(c.Logging.Format) {
	case "", "human", "json":
	default:
		return &ConfigError{Field: "logging.format", Message: fmt.Sprintf("unknown format %q", c.Logging.Format)}
	}
	return nil
}

// ConfigError represents a configuration error
type ConfigError struct {
	Field   string
	Message string
}

func (e *ConfigError) Error() string {
	return "config error in field '" + e.Field + "': " + e.Message
}
