// Package bind reads request bodies and maps read failures to project errors
package bind

import (
	"errors"
	"io"
	"net/http"

	perr "punchclock/internal/platform/errors"
	"punchclock/internal/platform/logger"
)

// DefaultMaxBytes caps a body when the caller passes no limit
const DefaultMaxBytes int64 = 1 << 20

// Body reads the whole request body, at most max bytes.
// An oversized body is a validation error, an empty one a JSON error
func Body(r *http.Request, max int64) ([]byte, error) {
	if max <= 0 {
		max = DefaultMaxBytes
	}
	defer func() {
		if err := r.Body.Close(); err != nil {
			logger.C(r.Context()).Debug().Err(err).Msg("close request body")
		}
	}()

	b, err := io.ReadAll(http.MaxBytesReader(nil, r.Body, max))
	if err != nil {
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			return nil, perr.Newf(perr.ErrorCodeValidation, "body exceeds %d bytes", max)
		}
		return nil, perr.Wrap(err, perr.ErrorCodeJSON, "read body")
	}
	if len(b) == 0 {
		return nil, perr.JSONErrf("empty body")
	}
	return b, nil
}
