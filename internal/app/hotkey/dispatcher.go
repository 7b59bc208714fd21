package hotkey

import (
	"github.com/cockroachdb/errors"
	zlog "github.com/rs/zerolog/log"
)

// Transport is the set of player operations reachable through hotkeys.
type Transport interface {
	VolumeUp() error
	VolumeDown() error
	StopPlay() error
	PlayOrPause() error
}

// Registrar registers a global key sequence.
// onActivate is invoked every time the sequence is pressed.
type Registrar interface {
	Register(keys string, onActivate func()) error
}

// Dispatcher executes commands against a transport.
type Dispatcher struct {
	transport Transport
	quit      func()
}

// NewDispatcher creates a new dispatcher. quit may be nil.
func NewDispatcher(transport Transport, quit func()) *Dispatcher {
	return &Dispatcher{transport: transport, quit: quit}
}

// Dispatch executes cmd.
func (d *Dispatcher) Dispatch(cmd Command) error {
	zlog.Debug().Msgf("hotkey: dispatch %s", cmd)

	var err error
	switch cmd {
	case CommandVolumeUp:
		err = d.transport.VolumeUp()
	case CommandVolumeDown:
		err = d.transport.VolumeDown()
	case CommandStop:
		err = d.transport.StopPlay()
	case CommandTogglePlayPause:
		err = d.transport.PlayOrPause()
	case CommandQuit:
		if d.quit != nil {
			d.quit()
		}
	default:
		return errors.Wrapf(ErrUnknownCommand, "command %d", cmd)
	}

	if err != nil {
		return errors.Wrapf(err, "hotkey %s failed", cmd)
	}
	return nil
}

// Bind registers every binding with reg.
// A failed registration is logged and does not prevent the others.
func (d *Dispatcher) Bind(reg Registrar, bindings []Binding) error {
	var errs error
	for _, b := range bindings {
		cmd := b.Command
		err := reg.Register(b.Keys, func() {
			if err := d.Dispatch(cmd); err != nil {
				zlog.Error().Err(err).Msgf("hotkey: %s", cmd)
			}
		})
		if err != nil {
			zlog.Warn().Err(err).Msgf("hotkey: failed to register %s for %s", b.Keys, cmd)
			errs = errors.CombineErrors(errs, errors.Wrapf(err, "register %s", b.Keys))
			continue
		}
		zlog.Debug().Msgf("hotkey: registered %s for %s", b.Keys, cmd)
	}
	return errs
}
