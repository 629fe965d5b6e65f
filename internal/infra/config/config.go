// Package config provides configuration loading from YAML files.
package config

import (
	"os"

	"github.com/cockroachdb/errors"
	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// Config represents the application configuration.
type Config struct {
	Recorder RecorderConfig `yaml:"recorder"`
	Storage  StorageConfig  `yaml:"storage"`
	Log      LogConfig      `yaml:"log"`
}

// RecorderConfig represents capture configuration.
type RecorderConfig struct {
	// Channels is the capture channel count. 0 leaves the engine default.
	Channels int `yaml:"channels" validate:"gte=0,lte=8"`
	// SamplingRate is the capture rate in Hz. 0 leaves the engine default.
	SamplingRate int `yaml:"sampling_rate" validate:"eq=0|gte=8000,lte=192000"`
	// MaxDurationMs limits a single recording. 0 means unlimited.
	MaxDurationMs int    `yaml:"max_duration_ms" validate:"gte=0"`
	FileExtension string `yaml:"file_extension" default:".wav"`
	NamePrefix    string `yaml:"name_prefix" default:"recording"`
	// NameFormat is a Go time layout embedded in generated file names.
	NameFormat string `yaml:"name_format" default:"2006-01-02 15:04:05"`
}

// StorageConfig represents sample storage configuration.
type StorageConfig struct {
	Path string `yaml:"path" validate:"required"`
	// FallbackPath is tried when Path is not writable. Empty disables the
	// fallback.
	FallbackPath string `yaml:"fallback_path"`
	StateFile    string `yaml:"state_file" default:"recorder-state.yaml"`
}

// LogConfig represents logger configuration.
type LogConfig struct {
	Output string `yaml:"output" default:"stdout"`
	Level  string `yaml:"level" default:"info"`
	File   string `yaml:"file"`
}

// Load loads configuration from a YAML file. Environment variables take
// precedence over file values for path fields.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read config file")
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, errors.Wrap(err, "failed to parse config file")
	}

	cfg.overrideFromEnv()

	if err := defaults.Set(&cfg); err != nil {
		return nil, errors.Wrap(err, "failed to set defaults")
	}

	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "config validation failed")
	}

	return &cfg, nil
}

// overrideFromEnv overrides config values with environment variables.
func (c *Config) overrideFromEnv() {
	if v := os.Getenv("RECORDER_STORAGE_PATH"); v != "" {
		c.Storage.Path = v
	}
	if v := os.Getenv("RECORDER_FALLBACK_PATH"); v != "" {
		c.Storage.FallbackPath = v
	}
	if v := os.Getenv("RECORDER_STATE_FILE"); v != "" {
		c.Storage.StateFile = v
	}
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	validate := validator.New()
	if err := validate.Struct(c); err != nil {
		return errors.Wrap(err, "struct validation failed")
	}
	return nil
}
