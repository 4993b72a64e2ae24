package connect

import (
	"connectrpc.com/connect"
	"github.com/cockroachdb/errors"

	"github.com/osa030/surabhi/internal/app/library"
	"github.com/osa030/surabhi/internal/app/playback"
	"github.com/osa030/surabhi/internal/app/session"
	"github.com/osa030/surabhi/internal/domain/listing"
)

// toConnectError maps session errors onto Connect status codes.
func toConnectError(err error) error {
	switch {
	case errors.Is(err, session.ErrSessionNotReady):
		return connect.NewError(connect.CodeUnavailable, err)
	case errors.Is(err, session.ErrTrackNotFound),
		errors.Is(err, library.ErrNotFound):
		return connect.NewError(connect.CodeNotFound, err)
	case errors.Is(err, playback.ErrInvalidTrack),
		errors.Is(err, playback.ErrTrackNotInQueue),
		errors.Is(err, listing.ErrUnknownKind),
		errors.Is(err, library.ErrUnsupportedFile),
		errors.Is(err, library.ErrNothingImported):
		return connect.NewError(connect.CodeInvalidArgument, err)
	default:
		return connect.NewError(connect.CodeInternal, err)
	}
}
