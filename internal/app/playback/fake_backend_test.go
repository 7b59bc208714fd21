package playback

import (
	"github.com/osa030/radiotray/internal/domain/media"
	"github.com/osa030/radiotray/internal/domain/metadata"
)

// fakeBackend records commands and, when autoConfirm is set, queues the state changes
// a serializing backend would report.
type fakeBackend struct {
	state       media.BackendState
	source      string
	volume      float64
	meta        metadata.Snapshot
	autoConfirm bool

	calls  []string
	queued []media.Event
	events chan media.Event
	closed bool
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{
		state:       media.BackendStopped,
		autoConfirm: true,
		events:      make(chan media.Event, 16),
	}
}

func (f *fakeBackend) transition(to media.BackendState) {
	if !f.autoConfirm || f.state == to {
		f.state = to
		return
	}
	from := f.state
	f.state = to
	f.queued = append(f.queued, media.StateChanged(from, to))
}

func (f *fakeBackend) SetSource(uri string) error {
	f.calls = append(f.calls, "set_source:"+uri)
	f.source = uri
	if f.autoConfirm {
		f.queued = append(f.queued, media.SourceChanged(uri))
	}
	return nil
}

func (f *fakeBackend) Play() error {
	f.calls = append(f.calls, "play")
	f.transition(media.BackendPlaying)
	return nil
}

func (f *fakeBackend) Pause() error {
	f.calls = append(f.calls, "pause")
	f.transition(media.BackendPaused)
	return nil
}

func (f *fakeBackend) Stop() error {
	f.calls = append(f.calls, "stop")
	switch f.state {
	case media.BackendPlaying, media.BackendPaused, media.BackendBuffering, media.BackendLoading:
		f.transition(media.BackendStopped)
	}
	return nil
}

func (f *fakeBackend) SetVolume(level float64) error {
	f.volume = level
	return nil
}

func (f *fakeBackend) Volume() float64 { return f.volume }
func (f *fakeBackend) State() media.BackendState { return f.state }
func (f *fakeBackend) Source() string { return f.source }
func (f *fakeBackend) Metadata() metadata.Snapshot { return f.meta.Clone() }
func (f *fakeBackend) Events() <-chan media.Event { return f.events }

func (f *fakeBackend) Close() error {
	if !f.closed {
		f.closed = true
		close(f.events)
	}
	return nil
}

// pump feeds queued events to the controller until none are left,
// including events queued by follow-up commands.
func pump(c *Controller, f *fakeBackend) {
	for len(f.queued) > 0 {
		ev := f.queued[0]
		f.queued = f.queued[1:]
		c.HandleBackendEvent(ev)
	}
}
