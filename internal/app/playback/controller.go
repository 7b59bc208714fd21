package playback

import (
	"context"
	"sync"
	"time"

	"github.com/cockroachdb/errors"
	zlog "github.com/rs/zerolog/log"

	"github.com/osa030/radiotray/internal/app/notification"
	"github.com/osa030/radiotray/internal/domain/media"
)

// Config holds controller configuration.
type Config struct {
	Volume             float64 // Initial volume level
	VolumeStep         float64 // Step for VolumeUp/VolumeDown
	EventBufferSize    int     // Per-subscriber event buffer
	RecoverableRetries int     // Automatic restarts after a recoverable error (0 disables)
}

// StateEventTimeout bounds how long a state or error event waits for room in a full
// subscriber buffer. Ticks, buffering, volume and metadata events are dropped at once.
const StateEventTimeout = 500 * time.Millisecond

// followUp is a transport command deferred until the backend confirms a stop.
type followUp int

const (
	followUpPlay followUp = iota
)

// Controller owns the media backend and turns its events into the playback event stream.
type Controller struct {
	mu sync.RWMutex

	backend Backend
	closed  bool

	// Playback state
	source    Source
	state     State // Last state confirmed by the backend
	announced State // Last state announced to subscribers

	volume  *VolumeManager
	tracker *MetadataTracker

	// Follow-ups waiting for stop confirmation
	awaitingStop bool
	pending      []followUp

	retries int

	config Config

	// Events
	seq    uint64
	events *notification.Manager[Event]
}

// NewController creates a new playback controller.
// A nil backend is accepted; every command then fails with ErrBackendUnavailable.
func NewController(backend Backend, config Config) *Controller {
	c := &Controller{
		backend:   backend,
		state:     StateIdle,
		announced: StateIdle,
		volume:    NewVolumeManager(config.Volume, config.VolumeStep),
		tracker:   NewMetadataTracker(),
		config:    config,
		events:    notification.NewManager[Event](config.EventBufferSize),
	}

	if backend != nil {
		if err := backend.SetVolume(c.volume.Level()); err != nil {
			zlog.Warn().Err(err).Msg("player: failed to apply initial volume")
		}
	}
	return c
}

// Subscribe returns a new subscription to the event stream.
func (c *Controller) Subscribe() *notification.Subscription[Event] {
	return c.events.Subscribe()
}

// Unsubscribe removes a subscription.
func (c *Controller) Unsubscribe(subscriptionID string) {
	c.events.Unsubscribe(subscriptionID)
}

// SetSource assigns the source used by the next StartPlay.
// It does not affect current playback.
func (c *Controller) SetSource(source Source) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.availableLocked(); err != nil {
		return err
	}
	c.setSourceLocked(source)
	return nil
}

// Source returns the assigned source.
func (c *Controller) Source() Source {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.source
}

// StartPlay commands the backend to play the assigned source.
// Playing is announced once the backend confirms it.
func (c *Controller) StartPlay() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.availableLocked(); err != nil {
		return err
	}
	return c.startPlayLocked()
}

// PausePlay commands the backend to pause.
func (c *Controller) PausePlay() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.availableLocked(); err != nil {
		return err
	}
	return c.pausePlayLocked()
}

// StopPlay commands the backend to stop and drops queued follow-ups.
func (c *Controller) StopPlay() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.availableLocked(); err != nil {
		return err
	}
	return c.stopPlayLocked()
}

// PlayOrPause pauses if the backend is currently playing, otherwise starts playback.
// The backend's live state is inspected, not the last confirmed one.
func (c *Controller) PlayOrPause() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.availableLocked(); err != nil {
		return err
	}
	if c.backend.State() == media.BackendPlaying {
		return c.pausePlayLocked()
	}
	return c.startPlayLocked()
}

// SwitchAndPlay stops the current stream, assigns source and starts it again.
// The start is deferred until the backend confirms the stop.
func (c *Controller) SwitchAndPlay(source Source) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.availableLocked(); err != nil {
		return err
	}
	if err := c.stopPlayLocked(); err != nil {
		return err
	}
	c.setSourceLocked(source)
	return c.startPlayLocked()
}

// SetVolume sets the volume level, clamped to [0.0, 1.0].
// VolumeChanged is emitted even when the level does not change.
func (c *Controller) SetVolume(level float64) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.availableLocked(); err != nil {
		return err
	}
	return c.setVolumeLocked(level)
}

// VolumeUp raises the volume by one step.
func (c *Controller) VolumeUp() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.availableLocked(); err != nil {
		return err
	}
	return c.setVolumeLocked(c.volume.Up())
}

// VolumeDown lowers the volume by one step.
func (c *Controller) VolumeDown() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.availableLocked(); err != nil {
		return err
	}
	return c.setVolumeLocked(c.volume.Down())
}

// Volume returns the current volume as a percentage.
func (c *Controller) Volume() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.volume.Percent()
}

// State returns the last state confirmed by the backend.
func (c *Controller) State() State {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.state
}

// IsPlaying returns true if the backend confirmed playing.
func (c *Controller) IsPlaying() bool {
	return c.State() == StatePlaying
}

// IsPaused returns true if the backend confirmed paused.
func (c *Controller) IsPaused() bool {
	return c.State() == StatePaused
}

// IsStopped returns true if the backend confirmed stopped.
func (c *Controller) IsStopped() bool {
	return c.State() == StateStopped
}

// IsBuffering returns true if the backend is buffering.
func (c *Controller) IsBuffering() bool {
	return c.State() == StateBuffering
}

// IsError returns true if the backend reported an error.
func (c *Controller) IsError() bool {
	return c.State() == StateError
}

// Run consumes backend events until ctx is done or the backend closes its event channel.
func (c *Controller) Run(ctx context.Context) error {
	c.mu.RLock()
	backend := c.backend
	c.mu.RUnlock()

	if backend == nil {
		return ErrBackendUnavailable
	}

	events := backend.Events()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev, ok := <-events:
			if !ok {
				zlog.Debug().Msg("player: backend event channel closed")
				return nil
			}
			c.HandleBackendEvent(ev)
		}
	}
}

// HandleBackendEvent applies a single backend event.
func (c *Controller) HandleBackendEvent(ev media.Event) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed || c.backend == nil {
		return
	}

	switch ev.Type {
	case media.EventTick:
		if snapshot, changed := c.tracker.Update(c.backend.Metadata()); changed {
			zlog.Info().Msg("player: new meta data")
			c.emitLocked(Event{Type: EventMetadataChanged, Metadata: snapshot})
		}
		c.emitLocked(Event{Type: EventPlayerTick, Elapsed: ev.Elapsed})

	case media.EventStateChanged:
		c.onStateChangedLocked(ev)

	case media.EventBufferStatus:
		percent := ev.Percent
		if percent < 0 {
			percent = 0
		} else if percent > 100 {
			percent = 100
		}
		zlog.Info().Msgf("player: buffering %d", percent)
		c.emitLocked(Event{Type: EventBuffering, Percent: percent})

	case media.EventMetadataChanged:
		if snapshot, changed := c.tracker.Update(ev.Metadata); changed {
			zlog.Info().Msg("player: new meta data")
			c.emitLocked(Event{Type: EventMetadataChanged, Metadata: snapshot})
		}

	case media.EventSourceChanged:
		zlog.Info().Msgf("player: source changed: %s", ev.Source)

	default:
		zlog.Warn().Msgf("player: unknown backend event: %s", ev)
	}
}

// Close closes the event stream and the backend.
// Later commands fail with ErrBackendUnavailable.
func (c *Controller) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return nil
	}
	c.closed = true
	c.pending = nil
	c.events.Close()

	if c.backend == nil {
		return nil
	}
	err := c.backend.Close()
	c.backend = nil
	if err != nil {
		return errors.Wrap(err, "failed to close backend")
	}
	return nil
}

func (c *Controller) availableLocked() error {
	if c.closed || c.backend == nil {
		return ErrBackendUnavailable
	}
	return nil
}

func (c *Controller) setSourceLocked(source Source) {
	c.source = source
	c.tracker.Reset()
	c.retries = 0
	zlog.Debug().Msgf("player: source assigned: %s (encoding=%s)", source.URI, source.Encoding)
}

func (c *Controller) startPlayLocked() error {
	if c.source.IsZero() {
		return ErrNoSource
	}

	if c.awaitingStop {
		c.pending = append(c.pending, followUpPlay)
		zlog.Debug().Msgf("player: start play deferred until stop is confirmed: source=%s", c.source.URI)
		return nil
	}

	if c.state == StatePaused && c.backend.Source() == c.source.URI {
		if err := c.backend.Play(); err != nil {
			return errors.Wrap(err, "failed to resume play")
		}
		zlog.Info().Msg("player: resume play")
		return nil
	}

	if err := c.backend.SetSource(c.source.URI); err != nil {
		return errors.Wrapf(err, "failed to set source %s", c.source.URI)
	}
	if err := c.backend.Play(); err != nil {
		return errors.Wrap(err, "failed to start play")
	}
	zlog.Info().Msgf("player: start play: source=%s", c.source.URI)
	return nil
}

func (c *Controller) pausePlayLocked() error {
	if err := c.backend.Pause(); err != nil {
		return errors.Wrap(err, "failed to pause play")
	}
	zlog.Info().Msg("player: pause play")
	return nil
}

func (c *Controller) stopPlayLocked() error {
	if len(c.pending) > 0 {
		zlog.Debug().Msgf("player: dropping %d queued follow-ups", len(c.pending))
	}
	c.pending = nil

	// Only a stream the backend still holds produces a stop confirmation.
	// The confirmed state may lag behind, e.g. an error that is still queued.
	active := stateFromBackend(c.backend.State()).IsActive()
	if err := c.backend.Stop(); err != nil {
		return errors.Wrap(err, "failed to stop play")
	}
	if active {
		c.awaitingStop = true
	}
	zlog.Info().Msgf("player: stop play (backend %s)", c.backend.State())
	return nil
}

func (c *Controller) setVolumeLocked(level float64) error {
	level = c.volume.Set(level)
	if err := c.backend.SetVolume(level); err != nil {
		return errors.Wrap(err, "failed to set volume")
	}

	percent := ToPercent(level)
	c.emitLocked(Event{Type: EventVolumeChanged, Percent: percent})
	zlog.Info().Msgf("player: volume changed to %d", percent)
	return nil
}

func (c *Controller) onStateChangedLocked(ev media.Event) {
	zlog.Info().Msgf("player: backend state changed: %s -> %s", ev.Old, ev.New)

	c.state = stateFromBackend(ev.New)

	switch c.state {
	case StatePlaying:
		c.retries = 0
		c.announceLocked(EventPlaying)

	case StatePaused:
		c.announceLocked(EventPaused)

	case StateStopped:
		c.announceLocked(EventStopped)
		if c.awaitingStop {
			c.awaitingStop = false
			c.runFollowUpsLocked()
		}

	case StateError:
		err := backendError(ev.ErrKind, ev.ErrMessage)
		if ev.ErrKind == media.ErrorFatal {
			zlog.Error().Msgf("player: fatal error %q", ev.ErrMessage)
		} else {
			zlog.Warn().Msgf("player: error %q", ev.ErrMessage)
		}

		c.awaitingStop = false
		if len(c.pending) > 0 {
			zlog.Warn().Msgf("player: dropping %d queued follow-ups after backend error", len(c.pending))
			c.pending = nil
		}

		// Every error is surfaced, even if the previous one was never cleared.
		c.announced = StateError
		c.emitLocked(Event{Type: EventErrorOccurred, Err: err})

		c.retryLocked(ev.ErrKind)
	}
}

// announceLocked emits a state event unless that state was already announced.
// Buffering never changes the announced state.
func (c *Controller) announceLocked(eventType EventType) {
	if c.announced == c.state {
		return
	}
	c.announced = c.state
	c.emitLocked(Event{Type: eventType})
}

func (c *Controller) runFollowUpsLocked() {
	pending := c.pending
	c.pending = nil

	for _, f := range pending {
		switch f {
		case followUpPlay:
			if err := c.startPlayLocked(); err != nil {
				zlog.Error().Err(err).Msg("player: queued start play failed")
			}
		}
	}
}

func (c *Controller) retryLocked(kind media.ErrorKind) {
	if kind != media.ErrorRecoverable || c.source.IsZero() {
		return
	}
	if c.retries >= c.config.RecoverableRetries {
		return
	}
	c.retries++

	zlog.Warn().Msgf("player: restarting after recoverable error: attempt=%d/%d source=%s",
		c.retries, c.config.RecoverableRetries, c.source.URI)

	if err := c.backend.SetSource(c.source.URI); err != nil {
		zlog.Error().Err(err).Msg("player: retry failed to set source")
		return
	}
	if err := c.backend.Play(); err != nil {
		zlog.Error().Err(err).Msg("player: retry failed to start play")
	}
}

// emitLocked stamps and publishes an event.
// Must be called with lock held so that all subscribers observe one order.
func (c *Controller) emitLocked(e Event) {
	c.seq++
	e.Seq = c.seq
	e.State = c.state
	e.Source = c.source

	switch e.Type {
	case EventPlaying, EventPaused, EventStopped, EventErrorOccurred:
		c.events.PublishWait(e, StateEventTimeout)
	default:
		c.events.Publish(e)
	}
}
