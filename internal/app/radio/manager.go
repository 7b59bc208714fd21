// Package radio provides the radio manager tying stations, playback, tray and hotkeys together.
package radio

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"github.com/cockroachdb/errors"
	zlog "github.com/rs/zerolog/log"

	"github.com/osa030/radiotray/internal/app/hotkey"
	"github.com/osa030/radiotray/internal/app/notification"
	"github.com/osa030/radiotray/internal/app/playback"
	"github.com/osa030/radiotray/internal/app/selection"
	"github.com/osa030/radiotray/internal/app/tray"
	"github.com/osa030/radiotray/internal/domain/station"
	"github.com/osa030/radiotray/internal/infra/config"
)

// ErrAlreadyStarted is returned by Start when called twice.
var ErrAlreadyStarted = errors.New("radio already started")

// StationStore persists the station list.
type StationStore interface {
	SaveStations(list station.List) error
}

// StationStoreFunc adapts a function to StationStore.
type StationStoreFunc func(list station.List) error

// SaveStations implements StationStore.
func (f StationStoreFunc) SaveStations(list station.List) error {
	return f(list)
}

// Manager manages the radio.
type Manager struct {
	mu sync.RWMutex

	// Configuration
	config *config.Config
	store  StationStore

	// Stations
	stations station.List
	current  int // Index of the selected station, -1 if none

	// Components
	controller *playback.Controller
	selector   *selection.Selector
	presenter  *tray.Presenter
	dispatcher *hotkey.Dispatcher

	// Lifecycle
	started  bool
	ctx      context.Context
	cancel   context.CancelFunc
	done     chan struct{}
	quitOnce sync.Once
	wg       sync.WaitGroup
}

// NewManager creates a new radio manager. store may be nil, in which case station
// list updates are not persisted.
func NewManager(cfg *config.Config, backend playback.Backend, store StationStore, sink tray.Sink) *Manager {
	ctx, cancel := context.WithCancel(context.Background())

	if sink == nil {
		sink = tray.LogSink{}
	}

	controller := playback.NewController(backend, playback.Config{
		Volume:             cfg.Player.Volume,
		VolumeStep:         cfg.Player.VolumeStep,
		EventBufferSize:    cfg.Player.EventBuffer,
		RecoverableRetries: cfg.Player.RecoverableRetries,
	})

	m := &Manager{
		config:     cfg,
		store:      store,
		stations:   slices.Clone(cfg.Stations),
		current:    -1,
		controller: controller,
		selector:   selection.NewSelector(controller),
		presenter:  tray.NewPresenter(sink),
		ctx:        ctx,
		cancel:     cancel,
		done:       make(chan struct{}),
	}
	m.dispatcher = hotkey.NewDispatcher(controller, m.Quit)

	return m
}

// Start starts the playback and presentation loops. Cancelling ctx quits the radio.
func (m *Manager) Start(ctx context.Context) error {
	m.mu.Lock()
	if m.started {
		m.mu.Unlock()
		return ErrAlreadyStarted
	}
	m.started = true
	m.mu.Unlock()

	sub := m.controller.Subscribe()

	m.wg.Add(2)
	go m.playbackLoop()
	go m.presenterLoop(sub)

	go func() {
		select {
		case <-ctx.Done():
			zlog.Info().Msg("radio: context done, quitting")
			m.Quit()
		case <-m.done:
		}
	}()

	m.presenter.Announce(tray.MessageStarted)
	zlog.Info().Msgf("radio: started: stations=%d volume=%d%%", len(m.Stations()), m.controller.Volume())
	return nil
}

// Bind registers the configured key bindings and the command names with reg.
func (m *Manager) Bind(reg hotkey.Registrar) error {
	bindings := append(Bindings(m.config.Shortcuts), hotkey.NameBindings()...)
	return m.dispatcher.Bind(reg, bindings)
}

// Dispatch executes a hotkey command.
func (m *Manager) Dispatch(cmd hotkey.Command) error {
	return m.dispatcher.Dispatch(cmd)
}

// SelectStation selects the station at index.
func (m *Manager) SelectStation(index int) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, err := m.selector.Choose(m.stations, index); err != nil {
		return err
	}
	m.current = index
	return nil
}

// Stations returns a copy of the station list.
func (m *Manager) Stations() station.List {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return slices.Clone(m.stations)
}

// CurrentStation returns the selected station and its index.
func (m *Manager) CurrentStation() (station.Station, int, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if !m.stations.Valid(m.current) {
		return station.Station{}, -1, false
	}
	return m.stations[m.current], m.current, true
}

// StationLines returns one display line per station; the selected one is marked.
func (m *Manager) StationLines() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	lines := make([]string, len(m.stations))
	for i, s := range m.stations {
		marker := " "
		if i == m.current {
			marker = "*"
		}
		line := fmt.Sprintf("%s%d. %s", marker, i+1, s.Name)
		if s.Description != "" {
			line += " - " + s.Description
		}
		lines[i] = line
	}
	return lines
}

// UpdateStations persists list and makes it the current station list.
func (m *Manager) UpdateStations(list station.List) error {
	if err := config.ValidateStations(list); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.store != nil {
		if err := m.store.SaveStations(list); err != nil {
			return errors.Wrap(err, "failed to save stations")
		}
	}
	m.replaceStationsLocked(list)
	zlog.Info().Msgf("radio: stations updated: count=%d", len(list))
	return nil
}

// ReloadStations replaces the station list without persisting it.
func (m *Manager) ReloadStations(list station.List) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if slices.Equal(m.stations, list) {
		return
	}
	m.replaceStationsLocked(list)
	zlog.Info().Msgf("radio: stations reloaded: count=%d", len(list))
}

// replaceStationsLocked swaps the list and finds the playing station in it.
func (m *Manager) replaceStationsLocked(list station.List) {
	m.stations = slices.Clone(list)
	m.current = m.stations.IndexOfURL(m.controller.Source().URI)
}

// Quit requests shutdown. Done is closed afterwards.
func (m *Manager) Quit() {
	m.quitOnce.Do(func() {
		zlog.Info().Msg("radio: quit requested")
		m.cancel()
		close(m.done)
	})
}

// Done returns a channel that is closed when the radio quits.
func (m *Manager) Done() <-chan struct{} {
	return m.done
}

// Close quits, waits for the loops and closes the controller.
func (m *Manager) Close() error {
	m.Quit()
	m.wg.Wait()
	return m.controller.Close()
}

// playbackLoop feeds backend events to the controller.
func (m *Manager) playbackLoop() {
	defer m.wg.Done()

	err := m.controller.Run(m.ctx)
	switch {
	case err == nil:
		zlog.Warn().Msg("radio: backend closed its event stream")
		m.Quit()
	case errors.Is(err, context.Canceled):
	default:
		zlog.Error().Err(err).Msg("radio: playback loop failed")
		m.Quit()
	}
}

// presenterLoop feeds playback events to the tray presenter.
func (m *Manager) presenterLoop(sub *notification.Subscription[playback.Event]) {
	defer m.wg.Done()
	defer m.controller.Unsubscribe(sub.ID)

	for {
		if done := m.presentEvents(sub); done {
			return
		}
		// Restart loop after a panic in a sink
		zlog.Info().Msg("radio: restarting presenter loop")
	}
}

func (m *Manager) presentEvents(sub *notification.Subscription[playback.Event]) (done bool) {
	defer func() {
		if r := recover(); r != nil {
			zlog.Error().Msgf("radio: presenter panicked: %v", r)
			done = false
		}
	}()

	_ = m.presenter.Run(m.ctx, sub.C)
	return true
}
