package icy

import (
	"context"
	"io"
	"math"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/cockroachdb/errors"
	zlog "github.com/rs/zerolog/log"

	"github.com/osa030/radiotray/internal/domain/media"
	"github.com/osa030/radiotray/internal/domain/metadata"
)

// Errors
var (
	ErrClosed   = errors.New("backend closed")
	ErrNoSource = errors.New("no source set")

	// errFatal marks connect failures that retrying cannot fix.
	errFatal = errors.New("fatal stream error")
)

// bufferStep is the buffer progress granularity in percent.
const bufferStep = 10

// Backend monitors one ICY stream at a time.
// Commands return immediately; their effect is reported through Events.
type Backend struct {
	mu sync.Mutex

	settings Settings
	client   *http.Client

	state  media.BackendState
	source string
	volume float64
	meta   metadata.Snapshot

	// Current stream session
	gen     uint64
	cancel  context.CancelFunc
	elapsed time.Duration

	closed bool
	wg     sync.WaitGroup
	queue  *eventQueue
}

// New creates a new backend.
func New(settings Settings) *Backend {
	dialer := &net.Dialer{Timeout: settings.ConnectTimeout()}
	transport := &http.Transport{
		Proxy:                 http.ProxyFromEnvironment,
		DialContext:           dialer.DialContext,
		DisableCompression:    true,
		ResponseHeaderTimeout: settings.ConnectTimeout(),
		ExpectContinueTimeout: 1 * time.Second,
	}

	return &Backend{
		settings: settings,
		// No total timeout for streaming
		client: &http.Client{Transport: transport},
		state:  media.BackendStopped,
		volume: 1.0,
		queue:  newEventQueue(),
	}
}

// NewFromSettings creates a backend from a raw settings map.
func NewFromSettings(settings map[string]any) (*Backend, error) {
	s, err := ParseSettings(settings)
	if err != nil {
		return nil, errors.Wrap(err, "invalid icy backend settings")
	}
	return New(s), nil
}

// SetSource loads uri. An active stream is stopped first.
func (b *Backend) SetSource(uri string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return ErrClosed
	}

	b.stopSessionLocked()
	if b.isActiveLocked() {
		b.setStateLocked(media.BackendStopped)
	}
	b.source = uri
	b.meta = nil
	b.queue.push(media.SourceChanged(uri))

	zlog.Debug().Msgf("icy: source set: %s", uri)
	return nil
}

// Play starts the stream, or resumes it when paused.
func (b *Backend) Play() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return ErrClosed
	}
	if b.source == "" {
		return ErrNoSource
	}

	switch b.state {
	case media.BackendPaused:
		if b.cancel != nil {
			b.setStateLocked(media.BackendPlaying)
			return nil
		}
	case media.BackendPlaying, media.BackendBuffering, media.BackendLoading:
		return nil
	}

	b.startSessionLocked()
	return nil
}

// Pause pauses an active stream. The connection is kept open.
func (b *Backend) Pause() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return ErrClosed
	}
	switch b.state {
	case media.BackendPlaying, media.BackendBuffering, media.BackendLoading:
		b.setStateLocked(media.BackendPaused)
	}
	return nil
}

// Stop closes the stream.
func (b *Backend) Stop() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return ErrClosed
	}
	b.stopSessionLocked()
	if b.isActiveLocked() {
		b.setStateLocked(media.BackendStopped)
	}
	return nil
}

// SetVolume stores the output level. The level is clamped to [0.0, 1.0].
func (b *Backend) SetVolume(level float64) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return ErrClosed
	}
	switch {
	case math.IsNaN(level) || level < 0:
		level = 0
	case level > 1:
		level = 1
	}
	b.volume = level
	return nil
}

// Volume returns the output level.
func (b *Backend) Volume() float64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.volume
}

// State returns the live backend state.
func (b *Backend) State() media.BackendState {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state
}

// Source returns the loaded source.
func (b *Backend) Source() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.source
}

// Metadata returns the metadata of the current stream.
func (b *Backend) Metadata() metadata.Snapshot {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.meta.Clone()
}

// Events returns the event channel. It is closed by Close.
func (b *Backend) Events() <-chan media.Event {
	return b.queue.out
}

// Close stops the stream and closes the event channel.
func (b *Backend) Close() error {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return nil
	}
	b.closed = true
	b.stopSessionLocked()
	b.mu.Unlock()

	b.wg.Wait()
	b.queue.close()
	b.client.CloseIdleConnections()
	return nil
}

func (b *Backend) isActiveLocked() bool {
	switch b.state {
	case media.BackendLoading, media.BackendBuffering, media.BackendPlaying, media.BackendPaused:
		return true
	default:
		return false
	}
}

func (b *Backend) setStateLocked(state media.BackendState) {
	if b.state == state {
		return
	}
	old := b.state
	b.state = state
	b.queue.push(media.StateChanged(old, state))
}

func (b *Backend) failLocked(kind media.ErrorKind, err error) {
	b.stopSessionLocked()
	old := b.state
	b.state = media.BackendError
	b.queue.push(media.Failed(old, kind, err.Error()))
}

func (b *Backend) startSessionLocked() {
	b.stopSessionLocked()

	ctx, cancel := context.WithCancel(context.Background())
	b.gen++
	b.cancel = cancel
	b.elapsed = 0
	b.setStateLocked(media.BackendLoading)

	gen, uri := b.gen, b.source
	b.wg.Add(2)
	go b.stream(ctx, gen, uri)
	go b.tick(ctx, gen)

	zlog.Debug().Msgf("icy: session %d started: %s", gen, uri)
}

func (b *Backend) stopSessionLocked() {
	if b.cancel == nil {
		return
	}
	b.cancel()
	b.cancel = nil
	b.gen++
}

// currentLocked reports whether gen is still the running session.
func (b *Backend) currentLocked(gen uint64) bool {
	return !b.closed && b.gen == gen && b.cancel != nil
}

func (b *Backend) stream(ctx context.Context, gen uint64, uri string) {
	defer b.wg.Done()

	resp, err := b.connect(ctx, uri)
	if err != nil {
		b.mu.Lock()
		if ctx.Err() == nil && b.currentLocked(gen) {
			kind := media.ErrorRecoverable
			if errors.Is(err, errFatal) {
				kind = media.ErrorFatal
			}
			zlog.Warn().Err(err).Msgf("icy: connect failed: %s", uri)
			b.failLocked(kind, err)
		}
		b.mu.Unlock()
		return
	}
	defer resp.Body.Close()

	metaint, _ := strconv.Atoi(resp.Header.Get("icy-metaint"))

	b.mu.Lock()
	if !b.currentLocked(gen) {
		b.mu.Unlock()
		return
	}
	b.mergeMetaLocked(HeaderTags(resp.Header))
	if b.state == media.BackendLoading {
		b.setStateLocked(media.BackendBuffering)
	}
	b.mu.Unlock()

	err = b.read(ctx, gen, newStreamReader(resp.Body, metaint))

	b.mu.Lock()
	defer b.mu.Unlock()
	if ctx.Err() != nil || !b.currentLocked(gen) {
		return
	}
	if err == nil || errors.Is(err, io.EOF) {
		err = errors.New("stream ended")
	}
	zlog.Warn().Err(err).Msgf("icy: stream failed: %s", uri)
	b.failLocked(media.ErrorRecoverable, err)
}

func (b *Backend) connect(ctx context.Context, uri string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, uri, nil)
	if err != nil {
		return nil, errors.Mark(errors.Wrap(err, "create request"), errFatal)
	}

	// Set ICY headers
	req.Header.Set("Icy-MetaData", "1")
	if b.settings.UserAgent != "" {
		req.Header.Set("User-Agent", b.settings.UserAgent)
	}

	// Set custom headers
	for k, v := range b.settings.Headers {
		req.Header.Set(k, v)
	}

	resp, err := b.client.Do(req)
	if err != nil {
		return nil, errors.Wrap(err, "http request")
	}

	if resp.StatusCode >= http.StatusBadRequest {
		resp.Body.Close()
		return nil, errors.Mark(errors.Newf("unexpected status: %d", resp.StatusCode), errFatal)
	}
	return resp, nil
}

// read consumes the stream until it fails or ctx is done.
func (b *Backend) read(ctx context.Context, gen uint64, r *streamReader) error {
	prebuffer := b.settings.PrebufferBytes
	buffered := 0
	reported := -1

	if prebuffer == 0 {
		b.mu.Lock()
		b.bufferedLocked(gen)
		b.mu.Unlock()
	}

	for {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		n, block, hasBlock, err := r.next()

		if hasBlock {
			if title, ok := ParseBlock(block)["StreamTitle"]; ok {
				b.mu.Lock()
				if b.currentLocked(gen) {
					b.setStreamTitleLocked(title)
				}
				b.mu.Unlock()
			}
		}

		if n > 0 && buffered < prebuffer {
			buffered += n
			percent := buffered * 100 / prebuffer
			if percent > 100 {
				percent = 100
			}
			if step := percent / bufferStep * bufferStep; step > reported {
				reported = step
				b.mu.Lock()
				if b.currentLocked(gen) {
					b.queue.push(media.BufferStatus(step))
					if buffered >= prebuffer {
						b.bufferedLocked(gen)
					}
				}
				b.mu.Unlock()
			}
		}

		if err != nil {
			return err
		}
	}
}

// bufferedLocked moves a buffering session to playing.
func (b *Backend) bufferedLocked(gen uint64) {
	if !b.currentLocked(gen) {
		return
	}
	if b.state == media.BackendBuffering || b.state == media.BackendLoading {
		b.setStateLocked(media.BackendPlaying)
	}
}

func (b *Backend) tick(ctx context.Context, gen uint64) {
	defer b.wg.Done()

	interval := b.settings.TickInterval()
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			b.mu.Lock()
			if b.currentLocked(gen) && b.state == media.BackendPlaying {
				b.elapsed += interval
				b.queue.push(media.Tick(b.elapsed))
			}
			b.mu.Unlock()
		}
	}
}

func (b *Backend) mergeMetaLocked(tags metadata.Snapshot) {
	if len(tags) == 0 {
		return
	}
	next := b.meta.Clone()
	if next == nil {
		next = metadata.Snapshot{}
	}
	for k, v := range tags {
		next[k] = v
	}
	if next.Equal(b.meta) {
		return
	}
	b.meta = next
	b.queue.push(media.MetadataChanged(next.Clone()))
}

func (b *Backend) setStreamTitleLocked(title string) {
	next := b.meta.Clone()
	if next == nil {
		next = metadata.Snapshot{}
	}
	delete(next, metadata.TagStreamTitle)
	delete(next, metadata.TagArtist)
	delete(next, metadata.TagTitle)
	for k, v := range StreamTitleTags(title) {
		next[k] = v
	}
	if next.Equal(b.meta) {
		return
	}
	b.meta = next
	b.queue.push(media.MetadataChanged(next.Clone()))
}
