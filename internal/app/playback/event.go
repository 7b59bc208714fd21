package playback

import (
	"time"

	"github.com/osa030/radiotray/internal/domain/metadata"
)

// EventType represents a playback event type.
type EventType int

const (
	EventPlayerTick      EventType = iota // Periodic elapsed time
	EventPlaying                          // Backend confirmed playing
	EventPaused                           // Backend confirmed paused
	EventStopped                          // Backend confirmed stopped
	EventErrorOccurred                    // Backend reported an error
	EventBuffering                        // Buffer fill progress
	EventVolumeChanged                    // Volume was set
	EventMetadataChanged                  // Stream metadata changed
)

// String returns the string representation of the event type.
func (e EventType) String() string {
	switch e {
	case EventPlayerTick:
		return "player_tick"
	case EventPlaying:
		return "playing"
	case EventPaused:
		return "paused"
	case EventStopped:
		return "stopped"
	case EventErrorOccurred:
		return "error_occurred"
	case EventBuffering:
		return "buffering"
	case EventVolumeChanged:
		return "volume_changed"
	case EventMetadataChanged:
		return "metadata_changed"
	default:
		return "unknown"
	}
}

// Event represents a playback event.
type Event struct {
	Seq      uint64            // Monotonic per controller
	Type     EventType         //
	State    State             // Confirmed state when the event was emitted
	Source   Source            // Assigned source when the event was emitted
	Elapsed  time.Duration     // EventPlayerTick
	Percent  int               // EventBuffering, EventVolumeChanged
	Metadata metadata.Snapshot // EventMetadataChanged
	Err      error             // EventErrorOccurred
}
