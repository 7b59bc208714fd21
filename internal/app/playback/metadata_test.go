package playback

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/osa030/radiotray/internal/domain/metadata"
)

func TestMetadataTracker_IdenticalSnapshotChangesOnce(t *testing.T) {
	tr := NewMetadataTracker()
	snapshot := metadata.Snapshot{metadata.TagArtist: "Queen", metadata.TagTitle: "Innuendo"}

	got, changed := tr.Update(snapshot)
	require.True(t, changed)
	assert.Equal(t, snapshot, got)

	got, changed = tr.Update(metadata.Snapshot{metadata.TagArtist: "Queen", metadata.TagTitle: "Innuendo"})
	assert.False(t, changed)
	assert.Nil(t, got)
}

func TestMetadataTracker_ComparesAllTags(t *testing.T) {
	tr := NewMetadataTracker()
	tr.Update(metadata.Snapshot{metadata.TagTitle: "Innuendo"})

	_, changed := tr.Update(metadata.Snapshot{metadata.TagTitle: "Innuendo", metadata.TagBitrate: "128"})
	assert.True(t, changed, "non well-known tags take part in the comparison")

	_, changed = tr.Update(metadata.Snapshot{metadata.TagTitle: "Innuendo", metadata.TagBitrate: "192"})
	assert.True(t, changed)
}

func TestMetadataTracker_EmptySnapshotIsNotAChange(t *testing.T) {
	tr := NewMetadataTracker()

	_, changed := tr.Update(nil)
	assert.False(t, changed)
	_, changed = tr.Update(metadata.Snapshot{})
	assert.False(t, changed)
}

func TestMetadataTracker_StoresCopy(t *testing.T) {
	tr := NewMetadataTracker()
	snapshot := metadata.Snapshot{metadata.TagTitle: "One"}
	tr.Update(snapshot)

	snapshot[metadata.TagTitle] = "Two"
	assert.Equal(t, "One", tr.Current()[metadata.TagTitle])

	_, changed := tr.Update(snapshot)
	assert.True(t, changed)
}

func TestMetadataTracker_Reset(t *testing.T) {
	tr := NewMetadataTracker()
	snapshot := metadata.Snapshot{metadata.TagTitle: "One"}
	tr.Update(snapshot)

	tr.Reset()
	assert.Nil(t, tr.Current())

	_, changed := tr.Update(snapshot)
	assert.True(t, changed)
}
