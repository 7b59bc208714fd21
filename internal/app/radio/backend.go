package radio

import (
	"github.com/cockroachdb/errors"
	zlog "github.com/rs/zerolog/log"

	"github.com/osa030/radiotray/internal/app/hotkey"
	"github.com/osa030/radiotray/internal/app/playback"
	"github.com/osa030/radiotray/internal/infra/config"
	"github.com/osa030/radiotray/internal/infra/icy"
)

// NewBackendFromConfig creates the media backend selected by the configuration.
func NewBackendFromConfig(cfg *config.Config) (playback.Backend, error) {
	zlog.Debug().Msgf("creating media backend: type=%s settings=%+v", cfg.Backend.Type, cfg.Backend.Settings)

	switch cfg.Backend.Type {
	case "icy", "":
		b, err := icy.NewFromSettings(cfg.Backend.Settings)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to create backend (type %s)", cfg.Backend.Type)
		}
		return b, nil

	default:
		return nil, errors.Newf("unsupported backend type: %s", cfg.Backend.Type)
	}
}

// Bindings returns the key bindings configured in cfg.
func Bindings(cfg config.ShortcutsConfig) []hotkey.Binding {
	return []hotkey.Binding{
		{Command: hotkey.CommandVolumeDown, Keys: cfg.VolumeDown},
		{Command: hotkey.CommandVolumeUp, Keys: cfg.VolumeUp},
		{Command: hotkey.CommandStop, Keys: cfg.Stop},
		{Command: hotkey.CommandTogglePlayPause, Keys: cfg.TogglePlayPause},
		{Command: hotkey.CommandQuit, Keys: cfg.Quit},
	}
}
