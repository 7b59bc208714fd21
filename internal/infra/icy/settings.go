// Package icy provides a media backend that monitors Shoutcast/Icecast HTTP streams.
// It connects, buffers and tracks elapsed time and ICY metadata; audio bytes are discarded.
package icy

import (
	"time"

	"github.com/cockroachdb/errors"
	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"github.com/mitchellh/mapstructure"
)

// Settings is the backend configuration decoded from the backend settings map.
type Settings struct {
	ConnectTimeoutMs int               `yaml:"connect_timeout_ms" mapstructure:"connect_timeout_ms" default:"5000" validate:"gte=1"`
	TickIntervalMs   int               `yaml:"tick_interval_ms" mapstructure:"tick_interval_ms" default:"1000" validate:"gte=1"`
	PrebufferBytes   int               `yaml:"prebuffer_bytes" mapstructure:"prebuffer_bytes" default:"65536" validate:"gte=0"`
	UserAgent        string            `yaml:"user_agent" mapstructure:"user_agent" default:"radiotray/1.0"`
	Headers          map[string]string `yaml:"headers" mapstructure:"headers"`
}

// ParseSettings decodes settings, applies defaults and validates the result.
// A nil map yields the defaults.
func ParseSettings(settings map[string]any) (Settings, error) {
	var s Settings
	if err := mapstructure.Decode(settings, &s); err != nil {
		return Settings{}, errors.Wrap(err, "failed to decode settings")
	}
	if err := defaults.Set(&s); err != nil {
		return Settings{}, errors.Wrap(err, "failed to set defaults")
	}
	if err := validator.New().Struct(s); err != nil {
		return Settings{}, errors.Wrap(err, "validation failed")
	}
	return s, nil
}

// ConnectTimeout returns the connect timeout.
func (s Settings) ConnectTimeout() time.Duration {
	return time.Duration(s.ConnectTimeoutMs) * time.Millisecond
}

// TickInterval returns the interval between elapsed time ticks.
func (s Settings) TickInterval() time.Duration {
	return time.Duration(s.TickIntervalMs) * time.Millisecond
}
