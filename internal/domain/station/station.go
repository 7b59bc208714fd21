// Package station provides the Station domain entity and the ordered station list.
package station

import "github.com/cockroachdb/errors"

// ErrInvalidStationIndex is returned when an index does not address a station in the list.
var ErrInvalidStationIndex = errors.New("invalid station index")

// Station represents a named streaming source.
type Station struct {
	Name        string `yaml:"name"`        // Display name
	Description string `yaml:"description"` // Shown as menu tooltip
	URL         string `yaml:"url"`         // Stream URL or local path
	Encoding    string `yaml:"encoding"`    // Text encoding of stream metadata (e.g. "windows-1251")
}

// List is an ordered station list. Insertion order is display order.
// Editing operations return a new List and never modify the receiver.
type List []Station

// Len returns the number of stations.
func (l List) Len() int {
	return len(l)
}

// Valid reports whether index addresses a station in the list.
func (l List) Valid(index int) bool {
	return index >= 0 && index < len(l)
}

// Get returns the station at index.
func (l List) Get(index int) (Station, error) {
	if !l.Valid(index) {
		return Station{}, errors.Wrapf(ErrInvalidStationIndex, "index %d (stations: %d)", index, len(l))
	}
	return l[index], nil
}

// IndexOfURL returns the index of the first station with the given URL, or -1.
func (l List) IndexOfURL(url string) int {
	for i, s := range l {
		if s.URL == url {
			return i
		}
	}
	return -1
}

// Append returns a copy of the list with s added at the end.
func (l List) Append(s Station) List {
	out := make(List, 0, len(l)+1)
	out = append(out, l...)
	return append(out, s)
}

// Remove returns a copy of the list without the station at index.
func (l List) Remove(index int) (List, error) {
	if !l.Valid(index) {
		return nil, errors.Wrapf(ErrInvalidStationIndex, "remove %d", index)
	}
	out := make(List, 0, len(l)-1)
	out = append(out, l[:index]...)
	return append(out, l[index+1:]...), nil
}

// Replace returns a copy of the list with the station at index replaced by s.
func (l List) Replace(index int, s Station) (List, error) {
	if !l.Valid(index) {
		return nil, errors.Wrapf(ErrInvalidStationIndex, "replace %d", index)
	}
	out := l.clone()
	out[index] = s
	return out, nil
}

// MoveUp returns a copy of the list with the station at index swapped with its predecessor.
// Moving the first station is a no-op.
func (l List) MoveUp(index int) (List, error) {
	if !l.Valid(index) {
		return nil, errors.Wrapf(ErrInvalidStationIndex, "move up %d", index)
	}
	out := l.clone()
	if index > 0 {
		out[index-1], out[index] = out[index], out[index-1]
	}
	return out, nil
}

// MoveDown returns a copy of the list with the station at index swapped with its successor.
// Moving the last station is a no-op.
func (l List) MoveDown(index int) (List, error) {
	if !l.Valid(index) {
		return nil, errors.Wrapf(ErrInvalidStationIndex, "move down %d", index)
	}
	out := l.clone()
	if index < len(out)-1 {
		out[index+1], out[index] = out[index], out[index+1]
	}
	return out, nil
}

func (l List) clone() List {
	out := make(List, len(l))
	copy(out, l)
	return out
}
