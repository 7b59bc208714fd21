// Package config provides configuration loading from YAML files.
package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/osa030/radiotray/internal/domain/station"
)

// Environment variables overriding file values.
const (
	EnvLogLevel   = "RADIOTRAY_LOG_LEVEL"
	EnvVolumeStep = "RADIOTRAY_VOLUME_STEP"
)

// Config represents the application configuration.
type Config struct {
	Logging   LoggingConfig   `yaml:"logging"`
	Player    PlayerConfig    `yaml:"player"`
	Backend   BackendConfig   `yaml:"backend"`
	Shortcuts ShortcutsConfig `yaml:"shortcuts"`
	Stations  station.List    `yaml:"stations"`
}

// LoggingConfig represents logging configuration.
type LoggingConfig struct {
	Output string `yaml:"output" default:"stdout"`
	Level  string `yaml:"level" default:"info" validate:"oneof=trace debug info warn warning error"`
	File   string `yaml:"file"`
}

// PlayerConfig represents playback control configuration.
type PlayerConfig struct {
	Volume             float64 `yaml:"volume" default:"0.5" validate:"gte=0,lte=1"`
	VolumeStep         float64 `yaml:"volume_step" default:"0.1" validate:"gt=0,lte=1"`
	EventBuffer        int     `yaml:"event_buffer" default:"64" validate:"gte=1,lte=4096"`
	RecoverableRetries int     `yaml:"recoverable_retries" validate:"gte=0,lte=10"`
}

// BackendConfig represents the media backend configuration.
type BackendConfig struct {
	Type     string         `yaml:"type" default:"icy" validate:"oneof=icy"`
	Settings map[string]any `yaml:"settings,omitempty"`
}

// ShortcutsConfig represents the global key bindings.
type ShortcutsConfig struct {
	VolumeUp        string `yaml:"volume_up" default:"Alt+W"`
	VolumeDown      string `yaml:"volume_down" default:"Alt+Q"`
	Stop            string `yaml:"stop" default:"Alt+Z"`
	TogglePlayPause string `yaml:"toggle_play_pause" default:"Alt+S"`
	Quit            string `yaml:"quit" default:"Alt+X"`
}

// Default returns a configuration holding only default values.
func Default() *Config {
	var cfg Config
	if err := defaults.Set(&cfg); err != nil {
		panic(err)
	}
	return &cfg
}

// Load loads configuration from a YAML file.
// Environment variables take precedence over file values.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read config file")
	}
	return Parse(data)
}

// Parse parses a YAML document into a validated configuration.
func Parse(data []byte) (*Config, error) {
	// Defaults first so that explicit zero values in the file are kept.
	var cfg Config
	if err := defaults.Set(&cfg); err != nil {
		return nil, errors.Wrap(err, "failed to set defaults")
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, errors.Wrap(err, "failed to parse config file")
	}

	// Override with environment variables
	if err := cfg.overrideFromEnv(); err != nil {
		return nil, err
	}
	cfg.Logging.Level = strings.ToLower(cfg.Logging.Level)

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "config validation failed")
	}

	return &cfg, nil
}

// overrideFromEnv overrides config values with environment variables.
func (c *Config) overrideFromEnv() error {
	if v := os.Getenv(EnvLogLevel); v != "" {
		c.Logging.Level = v
	}
	if v := os.Getenv(EnvVolumeStep); v != "" {
		step, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return errors.Wrapf(err, "invalid %s", EnvVolumeStep)
		}
		c.Player.VolumeStep = step
	}
	return nil
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	validate := validator.New()
	if err := validate.Struct(c); err != nil {
		return errors.Wrap(err, "struct validation failed")
	}

	return ValidateStations(c.Stations)
}

// ValidateStations checks that every station has a name and a URL.
func ValidateStations(list station.List) error {
	for i, s := range list {
		if s.Name == "" {
			return errors.Newf("station #%d: name is required", i+1)
		}
		if s.URL == "" {
			return errors.Newf("station #%d (%s): url is required", i+1, s.Name)
		}
	}
	return nil
}
