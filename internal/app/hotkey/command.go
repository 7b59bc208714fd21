// Package hotkey maps hotkey activations to transport commands.
package hotkey

import (
	"strings"

	"github.com/cockroachdb/errors"
)

// Errors
var (
	ErrUnknownCommand    = errors.New("unknown hotkey command")
	ErrAlreadyRegistered = errors.New("hotkey already registered")
)

// Command represents a hotkey command.
type Command int

const (
	CommandVolumeUp Command = iota
	CommandVolumeDown
	CommandStop
	CommandTogglePlayPause
	CommandQuit
)

// Commands lists every command in menu order.
var Commands = []Command{
	CommandVolumeUp,
	CommandVolumeDown,
	CommandStop,
	CommandTogglePlayPause,
	CommandQuit,
}

// String returns the string representation of the command.
func (c Command) String() string {
	switch c {
	case CommandVolumeUp:
		return "volume_up"
	case CommandVolumeDown:
		return "volume_down"
	case CommandStop:
		return "stop"
	case CommandTogglePlayPause:
		return "toggle_play_pause"
	case CommandQuit:
		return "quit"
	default:
		return "unknown"
	}
}

// ParseCommand returns the command named s. Matching ignores case and accepts "-" for "_".
func ParseCommand(s string) (Command, error) {
	name := strings.ReplaceAll(strings.ToLower(strings.TrimSpace(s)), "-", "_")
	for _, c := range Commands {
		if c.String() == name {
			return c, nil
		}
	}
	return 0, errors.Wrapf(ErrUnknownCommand, "%q", s)
}

// Binding associates a key sequence with a command.
type Binding struct {
	Command Command
	Keys    string // e.g. "Alt+Q"
}

// DefaultBindings returns the default key bindings.
func DefaultBindings() []Binding {
	return []Binding{
		{Command: CommandVolumeDown, Keys: "Alt+Q"},
		{Command: CommandVolumeUp, Keys: "Alt+W"},
		{Command: CommandStop, Keys: "Alt+Z"},
		{Command: CommandTogglePlayPause, Keys: "Alt+S"},
		{Command: CommandQuit, Keys: "Alt+X"},
	}
}

// NameBindings returns one binding per command whose key sequence is the command name.
func NameBindings() []Binding {
	out := make([]Binding, len(Commands))
	for i, c := range Commands {
		out[i] = Binding{Command: c, Keys: c.String()}
	}
	return out
}

// NormalizeKeys returns the canonical form of a key sequence: lower case, no blanks.
func NormalizeKeys(keys string) string {
	return strings.ToLower(strings.Join(strings.Fields(keys), ""))
}
