package icy

import (
	"io"

	"github.com/cockroachdb/errors"
)

const readChunk = 16 * 1024

// streamReader splits an ICY stream into audio bytes and metadata blocks.
type streamReader struct {
	r       io.Reader
	metaint int // audio bytes between metadata blocks, 0 if none
	left    int // audio bytes until the next metadata block
	buf     []byte
}

func newStreamReader(r io.Reader, metaint int) *streamReader {
	if metaint < 0 {
		metaint = 0
	}
	return &streamReader{r: r, metaint: metaint, left: metaint, buf: make([]byte, readChunk)}
}

// next reads the next piece of the stream. It returns the number of audio bytes read,
// or a metadata block (possibly empty) when one was consumed.
func (s *streamReader) next() (audio int, block string, hasBlock bool, err error) {
	if s.metaint > 0 && s.left == 0 {
		block, err = s.readBlock()
		s.left = s.metaint
		return 0, block, err == nil, err
	}

	want := len(s.buf)
	if s.metaint > 0 && s.left < want {
		want = s.left
	}
	n, err := s.r.Read(s.buf[:want])
	if s.metaint > 0 {
		s.left -= n
	}
	return n, "", false, err
}

func (s *streamReader) readBlock() (string, error) {
	var size [1]byte
	if _, err := io.ReadFull(s.r, size[:]); err != nil {
		return "", errors.Wrap(err, "failed to read metadata length")
	}
	length := int(size[0]) * 16
	if length == 0 {
		return "", nil
	}

	block := make([]byte, length)
	if _, err := io.ReadFull(s.r, block); err != nil {
		return "", errors.Wrap(err, "failed to read metadata block")
	}
	return string(block), nil
}
