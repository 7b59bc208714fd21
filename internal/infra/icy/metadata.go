package icy

import (
	"net/http"
	"strings"

	"github.com/osa030/radiotray/internal/domain/metadata"
)

// headerTags maps ICY response headers to metadata tags.
var headerTags = map[string]string{
	"icy-name":  metadata.TagOrganization,
	"icy-genre": metadata.TagGenre,
	"icy-br":    metadata.TagBitrate,
}

// HeaderTags extracts metadata tags from ICY response headers.
func HeaderTags(h http.Header) metadata.Snapshot {
	out := metadata.Snapshot{}
	for header, tag := range headerTags {
		if v := strings.TrimSpace(h.Get(header)); v != "" {
			out[tag] = v
		}
	}
	return out
}

// ParseBlock parses an ICY metadata block such as
// "StreamTitle='Artist - Title';StreamUrl='';" into its fields.
// Trailing NUL padding is ignored. Values are returned as raw bytes.
func ParseBlock(block string) map[string]string {
	block = strings.TrimRight(block, "\x00")
	fields := make(map[string]string)

	for len(block) > 0 {
		eq := strings.Index(block, "='")
		if eq < 0 {
			break
		}
		key := strings.TrimSpace(block[:eq])
		rest := block[eq+2:]

		// Values may contain quotes; the terminator is "';".
		end := strings.Index(rest, "';")
		var value string
		if end < 0 {
			value = strings.TrimSuffix(rest, "'")
			block = ""
		} else {
			value = rest[:end]
			block = rest[end+2:]
		}
		if key != "" {
			fields[key] = value
		}
	}
	return fields
}

// StreamTitleTags turns a StreamTitle value into metadata tags.
// "Artist - Title" is split at the first separator; without one the whole value is the title.
func StreamTitleTags(title string) metadata.Snapshot {
	title = strings.TrimSpace(title)
	if title == "" {
		return metadata.Snapshot{}
	}

	out := metadata.Snapshot{metadata.TagStreamTitle: title}
	if artist, song, ok := strings.Cut(title, " - "); ok {
		out[metadata.TagArtist] = strings.TrimSpace(artist)
		out[metadata.TagTitle] = strings.TrimSpace(song)
	} else {
		out[metadata.TagTitle] = title
	}
	return out
}
