package selection

import (
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/osa030/radiotray/internal/app/playback"
	"github.com/osa030/radiotray/internal/domain/media"
	"github.com/osa030/radiotray/internal/domain/metadata"
	"github.com/osa030/radiotray/internal/domain/station"
)

var testStations = station.List{
	{Name: "Jazz", URL: "http://jazz.example/stream", Encoding: "utf-8"},
	{Name: "Rock", URL: "http://rock.example/stream", Encoding: "windows-1251"},
	{Name: "Talk", URL: "http://talk.example/stream"},
}

// mockPlayer records the commands issued by the selector.
type mockPlayer struct {
	state  playback.State
	source playback.Source
	err    error

	setSources []playback.Source
	switches   []playback.Source
}

func (m *mockPlayer) State() playback.State { return m.state }
func (m *mockPlayer) Source() playback.Source { return m.source }

func (m *mockPlayer) SetSource(source playback.Source) error {
	m.setSources = append(m.setSources, source)
	return m.err
}

func (m *mockPlayer) SwitchAndPlay(source playback.Source) error {
	m.switches = append(m.switches, source)
	return m.err
}

func TestSelector_Select(t *testing.T) {
	tests := []struct {
		name     string
		state    playback.State
		current  string
		index    int
		expected Decision
	}{
		{name: "same station while playing", state: playback.StatePlaying, current: testStations[0].URL, index: 0, expected: NoOp},
		{name: "same station while stopped", state: playback.StateStopped, current: testStations[1].URL, index: 1, expected: NoOp},
		{name: "other station while playing", state: playback.StatePlaying, current: testStations[0].URL, index: 1, expected: StopThenSwitchThenPlay},
		{name: "other station while paused", state: playback.StatePaused, current: testStations[0].URL, index: 2, expected: StopThenSwitchThenPlay},
		{name: "other station while buffering", state: playback.StateBuffering, current: testStations[0].URL, index: 1, expected: StopThenSwitchThenPlay},
		{name: "first selection", state: playback.StateIdle, index: 0, expected: SwitchOnly},
		{name: "other station while stopped", state: playback.StateStopped, current: testStations[0].URL, index: 1, expected: SwitchOnly},
		{name: "other station after error", state: playback.StateError, current: testStations[0].URL, index: 2, expected: SwitchOnly},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := &mockPlayer{state: tt.state, source: playback.Source{URI: tt.current}}
			sel, err := NewSelector(p).Select(testStations, tt.index)

			require.NoError(t, err)
			assert.Equal(t, tt.expected, sel.Decision)
			assert.Equal(t, tt.index, sel.Index)
			assert.Equal(t, testStations[tt.index], sel.Station)
		})
	}
}

func TestSelector_SelectInvalidIndex(t *testing.T) {
	s := NewSelector(&mockPlayer{})

	for _, index := range []int{-1, len(testStations), 100} {
		_, err := s.Select(testStations, index)
		assert.ErrorIs(t, err, ErrInvalidStationIndex, "index %d", index)
	}

	_, err := s.Select(nil, 0)
	assert.ErrorIs(t, err, ErrInvalidStationIndex)
}

func TestSelector_Apply(t *testing.T) {
	p := &mockPlayer{}
	s := NewSelector(p)

	require.NoError(t, s.Apply(Selection{Decision: NoOp, Station: testStations[0]}))
	assert.Empty(t, p.setSources)
	assert.Empty(t, p.switches)

	require.NoError(t, s.Apply(Selection{Decision: SwitchOnly, Station: testStations[1]}))
	assert.Equal(t, []playback.Source{{URI: testStations[1].URL, Encoding: "windows-1251"}}, p.setSources)
	assert.Empty(t, p.switches)

	require.NoError(t, s.Apply(Selection{Decision: StopThenSwitchThenPlay, Station: testStations[2]}))
	assert.Equal(t, []playback.Source{{URI: testStations[2].URL}}, p.switches)
}

func TestSelector_ApplyWrapsPlayerError(t *testing.T) {
	p := &mockPlayer{err: playback.ErrBackendUnavailable}
	s := NewSelector(p)

	err := s.Apply(Selection{Decision: SwitchOnly, Station: testStations[0]})
	assert.True(t, errors.Is(err, playback.ErrBackendUnavailable))

	_, err = s.Choose(testStations, 1)
	assert.ErrorIs(t, err, playback.ErrBackendUnavailable)
}

func TestDecision_String(t *testing.T) {
	assert.Equal(t, "noop", NoOp.String())
	assert.Equal(t, "switch_only", SwitchOnly.String())
	assert.Equal(t, "stop_then_switch_then_play", StopThenSwitchThenPlay.String())
	assert.Equal(t, "unknown", Decision(42).String())
}

// confirmingBackend confirms every command immediately through its event channel.
type confirmingBackend struct {
	state  media.BackendState
	source string
	events chan media.Event
}

func newConfirmingBackend() *confirmingBackend {
	return &confirmingBackend{state: media.BackendStopped, events: make(chan media.Event, 16)}
}

func (b *confirmingBackend) move(to media.BackendState) {
	old := b.state
	b.state = to
	b.events <- media.StateChanged(old, to)
}

func (b *confirmingBackend) SetSource(uri string) error {
	b.source = uri
	return nil
}

func (b *confirmingBackend) Play() error {
	b.move(media.BackendPlaying)
	return nil
}

func (b *confirmingBackend) Pause() error {
	b.move(media.BackendPaused)
	return nil
}

func (b *confirmingBackend) Stop() error {
	if b.state != media.BackendStopped {
		b.move(media.BackendStopped)
	}
	return nil
}

func (b *confirmingBackend) SetVolume(float64) error { return nil }
func (b *confirmingBackend) Volume() float64 { return 0.5 }
func (b *confirmingBackend) State() media.BackendState { return b.state }
func (b *confirmingBackend) Source() string { return b.source }
func (b *confirmingBackend) Metadata() metadata.Snapshot { return nil }
func (b *confirmingBackend) Events() <-chan media.Event { return b.events }
func (b *confirmingBackend) Close() error { return nil }

// pump delivers queued backend events, including those produced while handling them.
func pump(c *playback.Controller, b *confirmingBackend) {
	for {
		select {
		case ev := <-b.events:
			c.HandleBackendEvent(ev)
		default:
			return
		}
	}
}

func collect(sub <-chan playback.Event) []playback.EventType {
	var out []playback.EventType
	for {
		select {
		case ev := <-sub:
			out = append(out, ev.Type)
		default:
			return out
		}
	}
}

func TestSelector_ChooseWithController(t *testing.T) {
	t.Run("same station while playing is a no-op", func(t *testing.T) {
		b := newConfirmingBackend()
		c := playback.NewController(b, playback.Config{})
		sub := c.Subscribe()
		s := NewSelector(c)

		_, err := s.Choose(testStations, 0)
		require.NoError(t, err)
		require.NoError(t, c.StartPlay())
		pump(c, b)
		require.True(t, c.IsPlaying())
		collect(sub.C)

		sel, err := s.Choose(testStations, 0)
		require.NoError(t, err)
		pump(c, b)

		assert.Equal(t, NoOp, sel.Decision)
		assert.Empty(t, collect(sub.C))
		assert.True(t, c.IsPlaying())
	})

	t.Run("other station while paused stops then plays", func(t *testing.T) {
		b := newConfirmingBackend()
		c := playback.NewController(b, playback.Config{})
		sub := c.Subscribe()
		s := NewSelector(c)

		_, err := s.Choose(testStations, 0)
		require.NoError(t, err)
		require.NoError(t, c.StartPlay())
		pump(c, b)
		require.NoError(t, c.PausePlay())
		pump(c, b)
		require.True(t, c.IsPaused())
		collect(sub.C)

		sel, err := s.Choose(testStations, 1)
		require.NoError(t, err)
		pump(c, b)

		assert.Equal(t, StopThenSwitchThenPlay, sel.Decision)
		assert.Equal(t, []playback.EventType{playback.EventStopped, playback.EventPlaying}, collect(sub.C))
		assert.Equal(t, testStations[1].URL, b.source)
		assert.Equal(t, testStations[1].URL, c.Source().URI)
	})

	t.Run("first selection only assigns the source", func(t *testing.T) {
		b := newConfirmingBackend()
		c := playback.NewController(b, playback.Config{})
		sub := c.Subscribe()
		s := NewSelector(c)

		sel, err := s.Choose(testStations, 2)
		require.NoError(t, err)
		pump(c, b)

		assert.Equal(t, SwitchOnly, sel.Decision)
		assert.Empty(t, collect(sub.C))
		assert.Empty(t, b.source)
		assert.Equal(t, testStations[2].URL, c.Source().URI)
	})
}
