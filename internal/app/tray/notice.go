// Package tray turns playback events into tray notices.
package tray

import zlog "github.com/rs/zerolog/log"

// Icon names the tray icon image.
type Icon string

const (
	IconPassive Icon = "passive"
	IconActive  Icon = "active"
	IconActive1 Icon = "active-1"
	IconActive2 Icon = "active-2"
)

// animationFrames is the icon cycle shown while playing.
var animationFrames = []Icon{IconActive2, IconActive1, IconActive}

// Severity is the urgency of a notice message.
type Severity int

const (
	SeverityInfo Severity = iota
	SeverityCritical
)

// String returns the string representation of the severity.
func (s Severity) String() string {
	switch s {
	case SeverityInfo:
		return "info"
	case SeverityCritical:
		return "critical"
	default:
		return "unknown"
	}
}

// Notice is one tray update. Icon and Tooltip always hold the current values;
// Message is empty when no balloon is shown.
type Notice struct {
	Icon     Icon
	Tooltip  string
	Message  string
	Severity Severity
}

// Sink displays notices.
type Sink interface {
	Show(n Notice)
}

// SinkFunc adapts a function to Sink.
type SinkFunc func(n Notice)

// Show implements Sink.
func (f SinkFunc) Show(n Notice) {
	f(n)
}

// LogSink writes notices to the log. Icon-only updates are logged at trace level.
type LogSink struct{}

// Show implements Sink.
func (LogSink) Show(n Notice) {
	if n.Message == "" {
		zlog.Trace().Msgf("tray: icon=%s", n.Icon)
		return
	}

	ev := zlog.Info()
	if n.Severity == SeverityCritical {
		ev = zlog.Error()
	}
	ev.Str("icon", string(n.Icon)).Msgf("tray: %s", n.Message)
}
