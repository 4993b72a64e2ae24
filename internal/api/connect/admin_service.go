package connect

import (
	"bytes"
	"context"

	"connectrpc.com/connect"
	zlog "github.com/rs/zerolog/log"

	"github.com/osa030/surabhi/internal/api/playerv1"
	"github.com/osa030/surabhi/internal/api/playerv1/playerv1connect"
	"github.com/osa030/surabhi/internal/app/library"
	"github.com/osa030/surabhi/internal/app/session"
)

// AdminService implements the AdminService RPC.
type AdminService struct {
	session *session.Manager
}

// NewAdminService creates a new AdminService.
func NewAdminService(session *session.Manager) *AdminService {
	return &AdminService{
		session: session,
	}
}

// Ensure AdminService implements the interface.
var _ playerv1connect.AdminServiceHandler = (*AdminService)(nil)

// ImportFiles adds uploaded audio files to the local library.
func (s *AdminService) ImportFiles(
	ctx context.Context,
	req *connect.Request[playerv1.ImportFilesRequest],
) (*connect.Response[playerv1.ImportFilesResponse], error) {
	uploads := make([]library.Upload, 0, len(req.Msg.Files))
	for _, f := range req.Msg.Files {
		uploads = append(uploads, library.Upload{
			Name:    f.Name,
			Content: bytes.NewReader(f.Content),
		})
	}

	imported, err := s.session.ImportUploads(ctx, uploads)
	if err != nil {
		return nil, toConnectError(err)
	}
	zlog.Info().Msgf("admin: files imported: requested=%d imported=%d", len(uploads), len(imported))

	return connect.NewResponse(&playerv1.ImportFilesResponse{
		Tracks: s.session.TrackMessages(imported),
	}), nil
}

// RemoveLocalTrack deletes a track from the local library.
func (s *AdminService) RemoveLocalTrack(
	ctx context.Context,
	req *connect.Request[playerv1.RemoveLocalTrackRequest],
) (*connect.Response[playerv1.Empty], error) {
	if err := s.session.RemoveLocalTrack(ctx, req.Msg.TrackID); err != nil {
		return nil, toConnectError(err)
	}
	zlog.Info().Msgf("admin: local track removed: track_id=%s", req.Msg.TrackID)
	return connect.NewResponse(&playerv1.Empty{}), nil
}
