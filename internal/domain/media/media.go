// Package media provides the vocabulary shared by media backends and the playback controller.
package media

import (
	"fmt"
	"time"

	"github.com/osa030/radiotray/internal/domain/metadata"
)

// BackendState represents a state reported by a media backend.
type BackendState int

const (
	BackendLoading   BackendState = iota // Source is being opened
	BackendStopped                       // Not playing
	BackendPlaying                       // Playing
	BackendBuffering                     // Waiting for stream data
	BackendPaused                        // Paused
	BackendError                         // Failed; see ErrorKind
)

// String returns the string representation of the backend state.
func (s BackendState) String() string {
	switch s {
	case BackendLoading:
		return "loading"
	case BackendStopped:
		return "stopped"
	case BackendPlaying:
		return "playing"
	case BackendBuffering:
		return "buffering"
	case BackendPaused:
		return "paused"
	case BackendError:
		return "error"
	default:
		return "unknown"
	}
}

// ErrorKind classifies a backend error.
type ErrorKind int

const (
	ErrorNone        ErrorKind = iota
	ErrorRecoverable           // Playback of the source may succeed if retried
	ErrorFatal                 // The source cannot be played
)

// String returns the string representation of the error kind.
func (k ErrorKind) String() string {
	switch k {
	case ErrorNone:
		return "none"
	case ErrorRecoverable:
		return "recoverable"
	case ErrorFatal:
		return "fatal"
	default:
		return "unknown"
	}
}

// EventType represents a backend event type.
type EventType int

const (
	EventTick            EventType = iota // Periodic elapsed time
	EventStateChanged                     // Backend state transition
	EventBufferStatus                     // Buffer fill percentage
	EventMetadataChanged                  // New metadata from the stream
	EventSourceChanged                    // Backend loaded a new source
)

// String returns the string representation of the event type.
func (e EventType) String() string {
	switch e {
	case EventTick:
		return "tick"
	case EventStateChanged:
		return "state_changed"
	case EventBufferStatus:
		return "buffer_status"
	case EventMetadataChanged:
		return "metadata_changed"
	case EventSourceChanged:
		return "source_changed"
	default:
		return "unknown"
	}
}

// Event represents an event raised by a media backend.
// Only the fields relevant to Type are set.
type Event struct {
	Type       EventType
	Elapsed    time.Duration     // EventTick
	Old, New   BackendState      // EventStateChanged
	ErrKind    ErrorKind         // EventStateChanged into BackendError
	ErrMessage string            // EventStateChanged into BackendError
	Percent    int               // EventBufferStatus
	Metadata   metadata.Snapshot // EventMetadataChanged
	Source     string            // EventSourceChanged
}

// String returns a short description used in logs.
func (e Event) String() string {
	switch e.Type {
	case EventTick:
		return fmt.Sprintf("tick(%v)", e.Elapsed)
	case EventStateChanged:
		return fmt.Sprintf("state_changed(%s->%s)", e.Old, e.New)
	case EventBufferStatus:
		return fmt.Sprintf("buffer_status(%d)", e.Percent)
	case EventSourceChanged:
		return fmt.Sprintf("source_changed(%s)", e.Source)
	default:
		return e.Type.String()
	}
}

// Tick creates a tick event.
func Tick(elapsed time.Duration) Event {
	return Event{Type: EventTick, Elapsed: elapsed}
}

// StateChanged creates a state transition event.
func StateChanged(oldState, newState BackendState) Event {
	return Event{Type: EventStateChanged, Old: oldState, New: newState}
}

// Failed creates a transition into BackendError.
func Failed(oldState BackendState, kind ErrorKind, message string) Event {
	return Event{Type: EventStateChanged, Old: oldState, New: BackendError, ErrKind: kind, ErrMessage: message}
}

// BufferStatus creates a buffer fill event.
func BufferStatus(percent int) Event {
	return Event{Type: EventBufferStatus, Percent: percent}
}

// MetadataChanged creates a metadata event.
func MetadataChanged(snapshot metadata.Snapshot) Event {
	return Event{Type: EventMetadataChanged, Metadata: snapshot}
}

// SourceChanged creates a source change event.
func SourceChanged(source string) Event {
	return Event{Type: EventSourceChanged, Source: source}
}
