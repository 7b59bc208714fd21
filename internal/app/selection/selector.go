// Package selection decides how a station choice is applied to the player.
package selection

import (
	"github.com/cockroachdb/errors"
	zlog "github.com/rs/zerolog/log"

	"github.com/osa030/radiotray/internal/app/playback"
	"github.com/osa030/radiotray/internal/domain/station"
)

// ErrInvalidStationIndex is returned when the chosen index does not address a station.
var ErrInvalidStationIndex = station.ErrInvalidStationIndex

// Player is the part of the playback controller used by the selector.
type Player interface {
	State() playback.State
	Source() playback.Source
	SetSource(source playback.Source) error
	SwitchAndPlay(source playback.Source) error
}

// Decision describes what has to happen for a selection to take effect.
type Decision int

const (
	NoOp                   Decision = iota // Station already loaded
	SwitchOnly                             // Assign source, playback stays off
	StopThenSwitchThenPlay                 // Replace the active stream
)

// String returns the string representation of the decision.
func (d Decision) String() string {
	switch d {
	case NoOp:
		return "noop"
	case SwitchOnly:
		return "switch_only"
	case StopThenSwitchThenPlay:
		return "stop_then_switch_then_play"
	default:
		return "unknown"
	}
}

// Selection is a decided station choice.
type Selection struct {
	Index    int
	Station  station.Station
	Decision Decision
}

// Source returns the playback source for the selected station.
func (s Selection) Source() playback.Source {
	return playback.Source{URI: s.Station.URL, Encoding: s.Station.Encoding}
}

// Selector maps station choices onto player commands.
type Selector struct {
	player Player
}

// NewSelector creates a new selector.
func NewSelector(player Player) *Selector {
	return &Selector{player: player}
}

// Select decides how choosing list[index] affects playback.
func (s *Selector) Select(list station.List, index int) (Selection, error) {
	st, err := list.Get(index)
	if err != nil {
		return Selection{}, err
	}

	sel := Selection{Index: index, Station: st}
	switch {
	case st.URL == s.player.Source().URI:
		sel.Decision = NoOp
	case s.player.State().IsActive():
		sel.Decision = StopThenSwitchThenPlay
	default:
		sel.Decision = SwitchOnly
	}
	return sel, nil
}

// Apply performs the commands required by sel.
func (s *Selector) Apply(sel Selection) error {
	switch sel.Decision {
	case NoOp:
		return nil
	case SwitchOnly:
		if err := s.player.SetSource(sel.Source()); err != nil {
			return errors.Wrapf(err, "failed to switch to station #%d", sel.Index)
		}
		return nil
	case StopThenSwitchThenPlay:
		if err := s.player.SwitchAndPlay(sel.Source()); err != nil {
			return errors.Wrapf(err, "failed to switch and play station #%d", sel.Index)
		}
		return nil
	default:
		return errors.Newf("unknown decision: %d", sel.Decision)
	}
}

// Choose selects and applies list[index].
func (s *Selector) Choose(list station.List, index int) (Selection, error) {
	sel, err := s.Select(list, index)
	if err != nil {
		return Selection{}, err
	}
	if sel.Decision == NoOp {
		return sel, nil
	}
	if err := s.Apply(sel); err != nil {
		return sel, err
	}

	zlog.Info().Msgf("selection: station #%d selected: name=%s decision=%s", index, sel.Station.Name, sel.Decision)
	return sel, nil
}
