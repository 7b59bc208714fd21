package icy

import (
	"bytes"
	"io"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/osa030/radiotray/internal/domain/metadata"
)

// buildBlock encodes text as an ICY metadata block with its length byte.
func buildBlock(text string) []byte {
	if text == "" {
		return []byte{0}
	}
	blocks := (len(text) + 15) / 16
	out := make([]byte, 1+blocks*16)
	out[0] = byte(blocks)
	copy(out[1:], text)
	return out
}

func TestParseBlock(t *testing.T) {
	tests := []struct {
		name     string
		block    string
		expected map[string]string
	}{
		{
			name:     "title and url",
			block:    "StreamTitle='Queen - Innuendo';StreamUrl='http://x';\x00\x00\x00",
			expected: map[string]string{"StreamTitle": "Queen - Innuendo", "StreamUrl": "http://x"},
		},
		{
			name:     "quote inside value",
			block:    "StreamTitle='Guns N' Roses - Patience';",
			expected: map[string]string{"StreamTitle": "Guns N' Roses - Patience"},
		},
		{
			name:     "missing terminator",
			block:    "StreamTitle='Live'",
			expected: map[string]string{"StreamTitle": "Live"},
		},
		{
			name:     "empty value",
			block:    "StreamTitle='';",
			expected: map[string]string{"StreamTitle": ""},
		},
		{
			name:     "garbage",
			block:    "\x00\x00\x00\x00",
			expected: map[string]string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ParseBlock(tt.block))
		})
	}
}

func TestStreamTitleTags(t *testing.T) {
	assert.Equal(t, metadata.Snapshot{
		metadata.TagStreamTitle: "Queen - Innuendo",
		metadata.TagArtist:      "Queen",
		metadata.TagTitle:       "Innuendo",
	}, StreamTitleTags("Queen - Innuendo"))

	assert.Equal(t, metadata.Snapshot{
		metadata.TagStreamTitle: "Station ID",
		metadata.TagTitle:       "Station ID",
	}, StreamTitleTags(" Station ID "))

	assert.Equal(t, "A - B", StreamTitleTags("X - A - B")[metadata.TagTitle])
	assert.Empty(t, StreamTitleTags("  "))
}

func TestHeaderTags(t *testing.T) {
	h := http.Header{}
	h.Set("icy-name", "Test FM")
	h.Set("icy-genre", "Jazz")
	h.Set("icy-br", "128")
	h.Set("icy-url", "http://example")

	assert.Equal(t, metadata.Snapshot{
		metadata.TagOrganization: "Test FM",
		metadata.TagGenre:        "Jazz",
		metadata.TagBitrate:      "128",
	}, HeaderTags(h))
	assert.Empty(t, HeaderTags(http.Header{}))
}

func TestStreamReader(t *testing.T) {
	var stream bytes.Buffer
	stream.Write(bytes.Repeat([]byte{1}, 8))
	stream.Write(buildBlock("StreamTitle='A - B';"))
	stream.Write(bytes.Repeat([]byte{2}, 8))
	stream.Write(buildBlock(""))
	stream.Write(bytes.Repeat([]byte{3}, 4))

	r := newStreamReader(&stream, 8)

	var (
		audio  int
		blocks []string
	)
	for {
		n, block, hasBlock, err := r.next()
		audio += n
		if hasBlock {
			blocks = append(blocks, strings.TrimRight(block, "\x00"))
		}
		if err == io.EOF {
			break
		}
		require.NoError(t, err)
	}

	assert.Equal(t, 20, audio)
	assert.Equal(t, []string{"StreamTitle='A - B';", ""}, blocks)
}

func TestStreamReader_TruncatedBlock(t *testing.T) {
	r := newStreamReader(bytes.NewReader([]byte{2, 'a', 'b'}), 0)
	r.metaint, r.left = 4, 0

	_, _, hasBlock, err := r.next()
	assert.False(t, hasBlock)
	assert.Error(t, err)
}

func TestParseSettings(t *testing.T) {
	s, err := ParseSettings(nil)
	require.NoError(t, err)
	assert.Equal(t, 5000, s.ConnectTimeoutMs)
	assert.Equal(t, time.Second, s.TickInterval())
	assert.Equal(t, 65536, s.PrebufferBytes)
	assert.Equal(t, "radiotray/1.0", s.UserAgent)

	s, err = ParseSettings(map[string]any{
		"connect_timeout_ms": 2000,
		"tick_interval_ms":   250,
		"user_agent":         "test/2",
		"headers":            map[string]any{"X-Token": "abc"},
	})
	require.NoError(t, err)
	assert.Equal(t, 2*time.Second, s.ConnectTimeout())
	assert.Equal(t, 250*time.Millisecond, s.TickInterval())
	assert.Equal(t, "test/2", s.UserAgent)
	assert.Equal(t, map[string]string{"X-Token": "abc"}, s.Headers)

	_, err = ParseSettings(map[string]any{"prebuffer_bytes": -1})
	assert.Error(t, err)

	_, err = ParseSettings(map[string]any{"tick_interval_ms": "often"})
	assert.Error(t, err)
}
