// Package playback provides the playback state machine for a single media backend.
package playback

import "github.com/osa030/radiotray/internal/domain/media"

// State represents the playback state confirmed by the backend.
type State int

const (
	StateIdle      State = iota // Nothing played yet
	StatePlaying                // Stream is playing
	StatePaused                 // Stream is paused
	StateStopped                // Playback stopped
	StateBuffering              // Waiting for stream data (transient)
	StateError                  // Backend reported an error
)

// String returns the string representation of the state.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StatePlaying:
		return "playing"
	case StatePaused:
		return "paused"
	case StateStopped:
		return "stopped"
	case StateBuffering:
		return "buffering"
	case StateError:
		return "error"
	default:
		return "unknown"
	}
}

// IsActive returns true if a stream is loaded in the backend (playing, paused or buffering).
func (s State) IsActive() bool {
	return s == StatePlaying || s == StatePaused || s == StateBuffering
}

// stateFromBackend maps a backend state to the public state.
func stateFromBackend(s media.BackendState) State {
	switch s {
	case media.BackendPlaying:
		return StatePlaying
	case media.BackendPaused:
		return StatePaused
	case media.BackendStopped:
		return StateStopped
	case media.BackendLoading, media.BackendBuffering:
		return StateBuffering
	case media.BackendError:
		return StateError
	default:
		return StateIdle
	}
}

// Source is the media reference loaded by the backend.
type Source struct {
	URI      string // Stream URL or local path
	Encoding string // Text encoding of the stream metadata
}

// IsZero returns true if no source is assigned.
func (s Source) IsZero() bool {
	return s.URI == ""
}
