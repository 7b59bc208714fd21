package playback

import (
	"github.com/cockroachdb/errors"

	"github.com/osa030/radiotray/internal/domain/media"
)

// Errors
var (
	ErrBackendUnavailable = errors.New("media backend unavailable")
	ErrNoSource           = errors.New("no source assigned")
	ErrBackendFatal       = errors.New("fatal backend error")
	ErrBackendRecoverable = errors.New("recoverable backend error")
)

// backendError builds the error carried by EventErrorOccurred.
func backendError(kind media.ErrorKind, message string) error {
	if message == "" {
		message = "unknown error"
	}
	err := errors.Newf("backend error: %s", message)
	if kind == media.ErrorFatal {
		return errors.Mark(err, ErrBackendFatal)
	}
	return errors.Mark(err, ErrBackendRecoverable)
}
