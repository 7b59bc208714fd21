// Package metadata provides the stream metadata snapshot.
package metadata

import (
	"sort"
	"strings"
)

// Well-known tags.
const (
	TagArtist       = "ARTIST"
	TagAlbum        = "ALBUM"
	TagTitle        = "TITLE"
	TagStreamTitle  = "STREAMTITLE"
	TagOrganization = "ORGANIZATION"
	TagGenre        = "GENRE"
	TagBitrate      = "BITRATE"
)

// Snapshot maps uppercase tag names to values as reported by the backend at one instant.
type Snapshot map[string]string

// Equal reports whether both snapshots hold the same keys and values.
// A nil snapshot equals an empty one.
func (s Snapshot) Equal(other Snapshot) bool {
	if len(s) != len(other) {
		return false
	}
	for k, v := range s {
		ov, ok := other[k]
		if !ok || ov != v {
			return false
		}
	}
	return true
}

// Clone returns a copy of the snapshot.
func (s Snapshot) Clone() Snapshot {
	if s == nil {
		return nil
	}
	out := make(Snapshot, len(s))
	for k, v := range s {
		out[k] = v
	}
	return out
}

// Get returns the value of tag. Tag lookup is case-insensitive.
func (s Snapshot) Get(tag string) string {
	return s[strings.ToUpper(tag)]
}

// Keys returns the tag names in sorted order.
func (s Snapshot) Keys() []string {
	keys := make([]string, 0, len(s))
	for k := range s {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
