package tray

import (
	"context"
	"fmt"
	"strings"
	"sync"

	zlog "github.com/rs/zerolog/log"
	"golang.org/x/net/html/charset"
	"golang.org/x/text/transform"

	"github.com/osa030/radiotray/internal/app/playback"
	"github.com/osa030/radiotray/internal/domain/metadata"
)

// Messages
const (
	MessageStarted   = "Program started!"
	MessagePlaying   = "Radio is playing."
	MessagePaused    = "Radio is paused."
	MessageStopped   = "Radio stopped."
	MessageError     = "Error occurred!"
	TooltipBuffering = "Stream buffering."
)

// displayedTags are the metadata tags shown to the user.
var displayedTags = map[string]bool{
	metadata.TagArtist: true,
	metadata.TagAlbum:  true,
	metadata.TagTitle:  true,
}

// Presenter maps playback events to notices.
type Presenter struct {
	mu   sync.Mutex
	sink Sink

	icon    Icon
	tooltip string
	frame   int
}

// NewPresenter creates a new presenter.
func NewPresenter(sink Sink) *Presenter {
	return &Presenter{sink: sink, icon: IconPassive}
}

// Run handles events until ctx is done or events is closed.
func (p *Presenter) Run(ctx context.Context, events <-chan playback.Event) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev, ok := <-events:
			if !ok {
				return nil
			}
			p.Handle(ev)
		}
	}
}

// Announce shows an informational message without changing icon or tooltip.
func (p *Presenter) Announce(message string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.showLocked(message, SeverityInfo)
}

// Handle maps a single event to at most one notice.
func (p *Presenter) Handle(ev playback.Event) {
	p.mu.Lock()
	defer p.mu.Unlock()

	switch ev.Type {
	case playback.EventPlaying:
		p.setLocked(IconActive, MessagePlaying)
		p.showLocked(MessagePlaying, SeverityInfo)

	case playback.EventPaused:
		p.setLocked(IconPassive, MessagePaused)
		p.showLocked(MessagePaused, SeverityInfo)

	case playback.EventStopped:
		p.setLocked(IconPassive, MessageStopped)
		p.showLocked(MessageStopped, SeverityInfo)

	case playback.EventErrorOccurred:
		if ev.Err != nil {
			zlog.Debug().Err(ev.Err).Msg("tray: error event")
		}
		p.setLocked(IconPassive, MessageError)
		p.showLocked(MessageError, SeverityCritical)

	case playback.EventBuffering:
		p.tooltip = TooltipBuffering
		p.showLocked(fmt.Sprintf("Buffering: %d%%...", ev.Percent), SeverityInfo)

	case playback.EventVolumeChanged:
		p.showLocked(fmt.Sprintf("Volume %d%%.", ev.Percent), SeverityInfo)

	case playback.EventMetadataChanged:
		text := FormatMetadata(ev.Metadata, ev.Source.Encoding)
		if text == "" {
			return
		}
		p.tooltip = text
		p.showLocked(text, SeverityInfo)

	case playback.EventPlayerTick:
		if ev.State != playback.StatePlaying {
			return
		}
		if p.frame >= len(animationFrames) {
			p.frame = 0
		}
		p.icon = animationFrames[p.frame]
		p.frame++
		p.showLocked("", SeverityInfo)
	}
}

// Icon returns the current icon.
func (p *Presenter) Icon() Icon {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.icon
}

// Tooltip returns the current tooltip.
func (p *Presenter) Tooltip() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.tooltip
}

func (p *Presenter) setLocked(icon Icon, tooltip string) {
	p.icon = icon
	p.tooltip = tooltip
}

func (p *Presenter) showLocked(message string, severity Severity) {
	p.sink.Show(Notice{
		Icon:     p.icon,
		Tooltip:  p.tooltip,
		Message:  message,
		Severity: severity,
	})
}

// FormatMetadata renders the artist, album and title tags as "KEY:\nvalue" blocks
// separated by blank lines, in sorted key order. Values are decoded from encoding;
// an empty or unknown encoding leaves them unchanged.
func FormatMetadata(snapshot metadata.Snapshot, encoding string) string {
	blocks := make([]string, 0, len(displayedTags))
	for _, key := range snapshot.Keys() {
		value := snapshot[key]
		if !displayedTags[key] || value == "" {
			continue
		}
		blocks = append(blocks, key+":\n"+Decode(value, encoding))
	}
	return strings.TrimSpace(strings.Join(blocks, "\n\n"))
}

// Decode converts s from the named text encoding to UTF-8.
func Decode(s, encoding string) string {
	if encoding == "" {
		return s
	}
	enc, _ := charset.Lookup(encoding)
	if enc == nil {
		zlog.Debug().Msgf("tray: unknown encoding %q", encoding)
		return s
	}
	decoded, _, err := transform.String(enc.NewDecoder(), s)
	if err != nil {
		zlog.Debug().Err(err).Msgf("tray: failed to decode metadata as %s", encoding)
		return s
	}
	return decoded
}
