package tray

import (
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/osa030/radiotray/internal/app/playback"
	"github.com/osa030/radiotray/internal/domain/metadata"
)

// recordingSink collects notices.
type recordingSink struct {
	notices []Notice
}

func (s *recordingSink) Show(n Notice) {
	s.notices = append(s.notices, n)
}

func (s *recordingSink) last(t *testing.T) Notice {
	t.Helper()
	require.NotEmpty(t, s.notices)
	return s.notices[len(s.notices)-1]
}

func TestPresenter_StateNotices(t *testing.T) {
	tests := []struct {
		name     string
		event    playback.Event
		expected Notice
	}{
		{
			name:     "playing",
			event:    playback.Event{Type: playback.EventPlaying},
			expected: Notice{Icon: IconActive, Tooltip: MessagePlaying, Message: MessagePlaying},
		},
		{
			name:     "paused",
			event:    playback.Event{Type: playback.EventPaused},
			expected: Notice{Icon: IconPassive, Tooltip: MessagePaused, Message: MessagePaused},
		},
		{
			name:     "stopped",
			event:    playback.Event{Type: playback.EventStopped},
			expected: Notice{Icon: IconPassive, Tooltip: MessageStopped, Message: MessageStopped},
		},
		{
			name:     "error",
			event:    playback.Event{Type: playback.EventErrorOccurred, Err: errors.New("boom")},
			expected: Notice{Icon: IconPassive, Tooltip: MessageError, Message: MessageError, Severity: SeverityCritical},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sink := &recordingSink{}
			p := NewPresenter(sink)

			p.Handle(tt.event)

			require.Len(t, sink.notices, 1)
			assert.Equal(t, tt.expected, sink.notices[0])
		})
	}
}

func TestPresenter_BufferingAndVolume(t *testing.T) {
	sink := &recordingSink{}
	p := NewPresenter(sink)
	p.Handle(playback.Event{Type: playback.EventPlaying})

	p.Handle(playback.Event{Type: playback.EventBuffering, Percent: 42})
	assert.Equal(t, Notice{Icon: IconActive, Tooltip: TooltipBuffering, Message: "Buffering: 42%..."}, sink.last(t))

	p.Handle(playback.Event{Type: playback.EventVolumeChanged, Percent: 30})
	assert.Equal(t, Notice{Icon: IconActive, Tooltip: TooltipBuffering, Message: "Volume 30%."}, sink.last(t))
}

func TestPresenter_TickAnimatesWhilePlaying(t *testing.T) {
	sink := &recordingSink{}
	p := NewPresenter(sink)

	p.Handle(playback.Event{Type: playback.EventPlayerTick, State: playback.StatePaused})
	assert.Empty(t, sink.notices)

	var icons []Icon
	for i := 0; i < 4; i++ {
		p.Handle(playback.Event{Type: playback.EventPlayerTick, State: playback.StatePlaying})
		n := sink.last(t)
		assert.Empty(t, n.Message)
		icons = append(icons, n.Icon)
	}
	assert.Equal(t, []Icon{IconActive2, IconActive1, IconActive, IconActive2}, icons)
}

func TestPresenter_Metadata(t *testing.T) {
	sink := &recordingSink{}
	p := NewPresenter(sink)

	p.Handle(playback.Event{
		Type: playback.EventMetadataChanged,
		Metadata: metadata.Snapshot{
			metadata.TagTitle:       "Innuendo",
			metadata.TagArtist:      "Queen",
			metadata.TagGenre:       "Rock",
			metadata.TagStreamTitle: "Queen - Innuendo",
		},
		Source: playback.Source{URI: "http://a.example", Encoding: "utf-8"},
	})

	expected := "ARTIST:\nQueen\n\nTITLE:\nInnuendo"
	n := sink.last(t)
	assert.Equal(t, expected, n.Message)
	assert.Equal(t, expected, n.Tooltip)
	assert.Equal(t, expected, p.Tooltip())
}

func TestPresenter_MetadataWithoutDisplayedTags(t *testing.T) {
	sink := &recordingSink{}
	p := NewPresenter(sink)

	p.Handle(playback.Event{
		Type:     playback.EventMetadataChanged,
		Metadata: metadata.Snapshot{metadata.TagGenre: "Rock", metadata.TagTitle: ""},
	})
	assert.Empty(t, sink.notices)
}

func TestPresenter_Announce(t *testing.T) {
	sink := &recordingSink{}
	p := NewPresenter(sink)

	p.Announce(MessageStarted)
	assert.Equal(t, Notice{Icon: IconPassive, Message: MessageStarted}, sink.last(t))
}

func TestFormatMetadata(t *testing.T) {
	tests := []struct {
		name     string
		snapshot metadata.Snapshot
		encoding string
		expected string
	}{
		{
			name:     "sorted keys",
			snapshot: metadata.Snapshot{"TITLE": "T", "ALBUM": "B", "ARTIST": "A"},
			expected: "ALBUM:\nB\n\nARTIST:\nA\n\nTITLE:\nT",
		},
		{
			name:     "empty values skipped",
			snapshot: metadata.Snapshot{"TITLE": "T", "ARTIST": ""},
			expected: "TITLE:\nT",
		},
		{
			name:     "windows-1251",
			snapshot: metadata.Snapshot{"TITLE": "\xcf\xf0\xe8\xe2\xe5\xf2"},
			encoding: "windows-1251",
			expected: "TITLE:\nПривет",
		},
		{
			name:     "unknown encoding passes through",
			snapshot: metadata.Snapshot{"TITLE": "abc"},
			encoding: "no-such-charset",
			expected: "TITLE:\nabc",
		},
		{
			name:     "nil snapshot",
			snapshot: nil,
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, FormatMetadata(tt.snapshot, tt.encoding))
		})
	}
}

func TestSeverity_String(t *testing.T) {
	assert.Equal(t, "info", SeverityInfo.String())
	assert.Equal(t, "critical", SeverityCritical.String())
}

func TestSinkFunc(t *testing.T) {
	var got Notice
	SinkFunc(func(n Notice) { got = n }).Show(Notice{Message: "hi"})
	assert.Equal(t, "hi", got.Message)
}

func TestLogSink(t *testing.T) {
	assert.NotPanics(t, func() {
		LogSink{}.Show(Notice{Message: "x", Severity: SeverityCritical})
		LogSink{}.Show(Notice{Icon: IconActive})
	})
}
