package playback

import "github.com/osa030/radiotray/internal/domain/metadata"

// MetadataTracker detects changes between successive metadata snapshots.
type MetadataTracker struct {
	current metadata.Snapshot
}

// NewMetadataTracker creates an empty tracker.
func NewMetadataTracker() *MetadataTracker {
	return &MetadataTracker{}
}

// Update compares snapshot with the stored one using all keys and values.
// On a difference it stores a copy and returns it with true.
func (t *MetadataTracker) Update(snapshot metadata.Snapshot) (metadata.Snapshot, bool) {
	if snapshot.Equal(t.current) {
		return nil, false
	}
	t.current = snapshot.Clone()
	return t.current.Clone(), true
}

// Current returns a copy of the stored snapshot.
func (t *MetadataTracker) Current() metadata.Snapshot {
	return t.current.Clone()
}

// Reset forgets the stored snapshot.
func (t *MetadataTracker) Reset() {
	t.current = nil
}
