package playback

import (
	"github.com/osa030/radiotray/internal/domain/media"
	"github.com/osa030/radiotray/internal/domain/metadata"
)

// Backend is the media backend capability driven by the controller.
// Commands are fire-and-forget; their effect is observed later through Events.
// Implementations must deliver events in the order they happen.
type Backend interface {
	SetSource(uri string) error
	Play() error
	Pause() error
	Stop() error
	SetVolume(level float64) error

	Volume() float64
	State() media.BackendState
	Source() string
	Metadata() metadata.Snapshot

	// Events returns the backend event channel. It is closed by Close.
	Events() <-chan media.Event
	Close() error
}
