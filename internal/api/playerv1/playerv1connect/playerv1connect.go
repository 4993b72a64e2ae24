// Package playerv1connect wires the surabhi.player.v1 services to Connect
// handlers and clients.
package playerv1connect

import (
	"context"
	"net/http"
	"strings"

	"connectrpc.com/connect"

	"github.com/osa030/surabhi/internal/api/playerv1"
)

// Fully-qualified service names.
const (
	PlayerServiceName = "surabhi.player.v1.PlayerService"
	AdminServiceName  = "surabhi.player.v1.AdminService"
)

// Procedure paths, relative to the server root.
const (
	PlayerServicePlayProcedure            = "/surabhi.player.v1.PlayerService/Play"
	PlayerServicePlayTrackProcedure       = "/surabhi.player.v1.PlayerService/PlayTrack"
	PlayerServiceTogglePlayProcedure      = "/surabhi.player.v1.PlayerService/TogglePlay"
	PlayerServiceNextProcedure            = "/surabhi.player.v1.PlayerService/Next"
	PlayerServicePreviousProcedure        = "/surabhi.player.v1.PlayerService/Previous"
	PlayerServiceSeekProcedure            = "/surabhi.player.v1.PlayerService/Seek"
	PlayerServiceSetVolumeProcedure       = "/surabhi.player.v1.PlayerService/SetVolume"
	PlayerServiceToggleShuffleProcedure   = "/surabhi.player.v1.PlayerService/ToggleShuffle"
	PlayerServiceToggleRepeatProcedure    = "/surabhi.player.v1.PlayerService/ToggleRepeat"
	PlayerServiceToggleFavoriteProcedure  = "/surabhi.player.v1.PlayerService/ToggleFavorite"
	PlayerServiceGetStatusProcedure       = "/surabhi.player.v1.PlayerService/GetStatus"
	PlayerServiceGetListingProcedure      = "/surabhi.player.v1.PlayerService/GetListing"
	PlayerServiceListListingsProcedure    = "/surabhi.player.v1.PlayerService/ListListings"
	PlayerServiceSearchProcedure          = "/surabhi.player.v1.PlayerService/Search"
	PlayerServiceSubscribeProcedure       = "/surabhi.player.v1.PlayerService/Subscribe"
	AdminServiceImportFilesProcedure      = "/surabhi.player.v1.AdminService/ImportFiles"
	AdminServiceRemoveLocalTrackProcedure = "/surabhi.player.v1.AdminService/RemoveLocalTrack"
)

// withCodec puts the JSON codec ahead of caller options.
func withCodec[T any](opts []T, codec T) []T {
	return append([]T{codec}, opts...)
}

// PlayerServiceHandler is implemented by the player service.
type PlayerServiceHandler interface {
	// Play starts a track from a listing, replacing the queue with it.
	Play(context.Context, *connect.Request[playerv1.PlayRequest]) (*connect.Response[playerv1.StatusResponse], error)
	// PlayTrack plays a known track without replacing the queue.
	PlayTrack(context.Context, *connect.Request[playerv1.PlayTrackRequest]) (*connect.Response[playerv1.StatusResponse], error)
	// TogglePlay pauses or resumes.
	TogglePlay(context.Context, *connect.Request[playerv1.Empty]) (*connect.Response[playerv1.StatusResponse], error)
	Next(context.Context, *connect.Request[playerv1.Empty]) (*connect.Response[playerv1.StatusResponse], error)
	Previous(context.Context, *connect.Request[playerv1.Empty]) (*connect.Response[playerv1.StatusResponse], error)
	Seek(context.Context, *connect.Request[playerv1.SeekRequest]) (*connect.Response[playerv1.StatusResponse], error)
	SetVolume(context.Context, *connect.Request[playerv1.SetVolumeRequest]) (*connect.Response[playerv1.StatusResponse], error)
	ToggleShuffle(context.Context, *connect.Request[playerv1.Empty]) (*connect.Response[playerv1.ToggleShuffleResponse], error)
	ToggleRepeat(context.Context, *connect.Request[playerv1.Empty]) (*connect.Response[playerv1.ToggleRepeatResponse], error)
	ToggleFavorite(context.Context, *connect.Request[playerv1.ToggleFavoriteRequest]) (*connect.Response[playerv1.ToggleFavoriteResponse], error)
	GetStatus(context.Context, *connect.Request[playerv1.Empty]) (*connect.Response[playerv1.StatusResponse], error)
	GetListing(context.Context, *connect.Request[playerv1.GetListingRequest]) (*connect.Response[playerv1.GetListingResponse], error)
	ListListings(context.Context, *connect.Request[playerv1.Empty]) (*connect.Response[playerv1.ListListingsResponse], error)
	// Search queries the catalog and replaces the search-results listing.
	Search(context.Context, *connect.Request[playerv1.SearchRequest]) (*connect.Response[playerv1.SearchResponse], error)
	// Subscribe streams the initial state, then one notification per player event.
	Subscribe(context.Context, *connect.Request[playerv1.Empty], *connect.ServerStream[playerv1.Notification]) error
}

// NewPlayerServiceHandler builds an HTTP handler from the service
// implementation. It returns the path on which to mount the handler and the
// handler itself.
func NewPlayerServiceHandler(svc PlayerServiceHandler, opts ...connect.HandlerOption) (string, http.Handler) {
	opts = withCodec(opts, connect.HandlerOption(connect.WithCodec(playerv1.JSONCodec{})))
	handlers := map[string]http.Handler{
		PlayerServicePlayProcedure:           connect.NewUnaryHandler(PlayerServicePlayProcedure, svc.Play, opts...),
		PlayerServicePlayTrackProcedure:      connect.NewUnaryHandler(PlayerServicePlayTrackProcedure, svc.PlayTrack, opts...),
		PlayerServiceTogglePlayProcedure:     connect.NewUnaryHandler(PlayerServiceTogglePlayProcedure, svc.TogglePlay, opts...),
		PlayerServiceNextProcedure:           connect.NewUnaryHandler(PlayerServiceNextProcedure, svc.Next, opts...),
		PlayerServicePreviousProcedure:       connect.NewUnaryHandler(PlayerServicePreviousProcedure, svc.Previous, opts...),
		PlayerServiceSeekProcedure:           connect.NewUnaryHandler(PlayerServiceSeekProcedure, svc.Seek, opts...),
		PlayerServiceSetVolumeProcedure:      connect.NewUnaryHandler(PlayerServiceSetVolumeProcedure, svc.SetVolume, opts...),
		PlayerServiceToggleShuffleProcedure:  connect.NewUnaryHandler(PlayerServiceToggleShuffleProcedure, svc.ToggleShuffle, opts...),
		PlayerServiceToggleRepeatProcedure:   connect.NewUnaryHandler(PlayerServiceToggleRepeatProcedure, svc.ToggleRepeat, opts...),
		PlayerServiceToggleFavoriteProcedure: connect.NewUnaryHandler(PlayerServiceToggleFavoriteProcedure, svc.ToggleFavorite, opts...),
		PlayerServiceGetStatusProcedure:      connect.NewUnaryHandler(PlayerServiceGetStatusProcedure, svc.GetStatus, opts...),
		PlayerServiceGetListingProcedure:     connect.NewUnaryHandler(PlayerServiceGetListingProcedure, svc.GetListing, opts...),
		PlayerServiceListListingsProcedure:   connect.NewUnaryHandler(PlayerServiceListListingsProcedure, svc.ListListings, opts...),
		PlayerServiceSearchProcedure:         connect.NewUnaryHandler(PlayerServiceSearchProcedure, svc.Search, opts...),
		PlayerServiceSubscribeProcedure:      connect.NewServerStreamHandler(PlayerServiceSubscribeProcedure, svc.Subscribe, opts...),
	}
	return "/" + PlayerServiceName + "/", route(handlers)
}

// AdminServiceHandler is implemented by the library administration service.
type AdminServiceHandler interface {
	// ImportFiles adds uploaded audio files to the local library.
	ImportFiles(context.Context, *connect.Request[playerv1.ImportFilesRequest]) (*connect.Response[playerv1.ImportFilesResponse], error)
	// RemoveLocalTrack deletes a track from the local library.
	RemoveLocalTrack(context.Context, *connect.Request[playerv1.RemoveLocalTrackRequest]) (*connect.Response[playerv1.Empty], error)
}

// NewAdminServiceHandler builds an HTTP handler from the service
// implementation.
func NewAdminServiceHandler(svc AdminServiceHandler, opts ...connect.HandlerOption) (string, http.Handler) {
	opts = withCodec(opts, connect.HandlerOption(connect.WithCodec(playerv1.JSONCodec{})))
	handlers := map[string]http.Handler{
		AdminServiceImportFilesProcedure:      connect.NewUnaryHandler(AdminServiceImportFilesProcedure, svc.ImportFiles, opts...),
		AdminServiceRemoveLocalTrackProcedure: connect.NewUnaryHandler(AdminServiceRemoveLocalTrackProcedure, svc.RemoveLocalTrack, opts...),
	}
	return "/" + AdminServiceName + "/", route(handlers)
}

func route(handlers map[string]http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h, ok := handlers[r.URL.Path]
		if !ok {
			http.NotFound(w, r)
			return
		}
		h.ServeHTTP(w, r)
	})
}

// PlayerServiceClient is a client for the PlayerService service.
type PlayerServiceClient interface {
	Play(context.Context, *connect.Request[playerv1.PlayRequest]) (*connect.Response[playerv1.StatusResponse], error)
	PlayTrack(context.Context, *connect.Request[playerv1.PlayTrackRequest]) (*connect.Response[playerv1.StatusResponse], error)
	TogglePlay(context.Context, *connect.Request[playerv1.Empty]) (*connect.Response[playerv1.StatusResponse], error)
	Next(context.Context, *connect.Request[playerv1.Empty]) (*connect.Response[playerv1.StatusResponse], error)
	Previous(context.Context, *connect.Request[playerv1.Empty]) (*connect.Response[playerv1.StatusResponse], error)
	Seek(context.Context, *connect.Request[playerv1.SeekRequest]) (*connect.Response[playerv1.StatusResponse], error)
	SetVolume(context.Context, *connect.Request[playerv1.SetVolumeRequest]) (*connect.Response[playerv1.StatusResponse], error)
	ToggleShuffle(context.Context, *connect.Request[playerv1.Empty]) (*connect.Response[playerv1.ToggleShuffleResponse], error)
	ToggleRepeat(context.Context, *connect.Request[playerv1.Empty]) (*connect.Response[playerv1.ToggleRepeatResponse], error)
	ToggleFavorite(context.Context, *connect.Request[playerv1.ToggleFavoriteRequest]) (*connect.Response[playerv1.ToggleFavoriteResponse], error)
	GetStatus(context.Context, *connect.Request[playerv1.Empty]) (*connect.Response[playerv1.StatusResponse], error)
	GetListing(context.Context, *connect.Request[playerv1.GetListingRequest]) (*connect.Response[playerv1.GetListingResponse], error)
	ListListings(context.Context, *connect.Request[playerv1.Empty]) (*connect.Response[playerv1.ListListingsResponse], error)
	Search(context.Context, *connect.Request[playerv1.SearchRequest]) (*connect.Response[playerv1.SearchResponse], error)
	Subscribe(context.Context, *connect.Request[playerv1.Empty]) (*connect.ServerStreamForClient[playerv1.Notification], error)
}

// NewPlayerServiceClient constructs a client for the PlayerService service.
// baseURL is the server root, such as http://localhost:8080.
func NewPlayerServiceClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) PlayerServiceClient {
	baseURL = strings.TrimRight(baseURL, "/")
	opts = withCodec(opts, connect.ClientOption(connect.WithCodec(playerv1.JSONCodec{})))
	return &playerServiceClient{
		play:           connect.NewClient[playerv1.PlayRequest, playerv1.StatusResponse](httpClient, baseURL+PlayerServicePlayProcedure, opts...),
		playTrack:      connect.NewClient[playerv1.PlayTrackRequest, playerv1.StatusResponse](httpClient, baseURL+PlayerServicePlayTrackProcedure, opts...),
		togglePlay:     connect.NewClient[playerv1.Empty, playerv1.StatusResponse](httpClient, baseURL+PlayerServiceTogglePlayProcedure, opts...),
		next:           connect.NewClient[playerv1.Empty, playerv1.StatusResponse](httpClient, baseURL+PlayerServiceNextProcedure, opts...),
		previous:       connect.NewClient[playerv1.Empty, playerv1.StatusResponse](httpClient, baseURL+PlayerServicePreviousProcedure, opts...),
		seek:           connect.NewClient[playerv1.SeekRequest, playerv1.StatusResponse](httpClient, baseURL+PlayerServiceSeekProcedure, opts...),
		setVolume:      connect.NewClient[playerv1.SetVolumeRequest, playerv1.StatusResponse](httpClient, baseURL+PlayerServiceSetVolumeProcedure, opts...),
		toggleShuffle:  connect.NewClient[playerv1.Empty, playerv1.ToggleShuffleResponse](httpClient, baseURL+PlayerServiceToggleShuffleProcedure, opts...),
		toggleRepeat:   connect.NewClient[playerv1.Empty, playerv1.ToggleRepeatResponse](httpClient, baseURL+PlayerServiceToggleRepeatProcedure, opts...),
		toggleFavorite: connect.NewClient[playerv1.ToggleFavoriteRequest, playerv1.ToggleFavoriteResponse](httpClient, baseURL+PlayerServiceToggleFavoriteProcedure, opts...),
		getStatus:      connect.NewClient[playerv1.Empty, playerv1.StatusResponse](httpClient, baseURL+PlayerServiceGetStatusProcedure, opts...),
		getListing:     connect.NewClient[playerv1.GetListingRequest, playerv1.GetListingResponse](httpClient, baseURL+PlayerServiceGetListingProcedure, opts...),
		listListings:   connect.NewClient[playerv1.Empty, playerv1.ListListingsResponse](httpClient, baseURL+PlayerServiceListListingsProcedure, opts...),
		search:         connect.NewClient[playerv1.SearchRequest, playerv1.SearchResponse](httpClient, baseURL+PlayerServiceSearchProcedure, opts...),
		subscribe:      connect.NewClient[playerv1.Empty, playerv1.Notification](httpClient, baseURL+PlayerServiceSubscribeProcedure, opts...),
	}
}

type playerServiceClient struct {
	play           *connect.Client[playerv1.PlayRequest, playerv1.StatusResponse]
	playTrack      *connect.Client[playerv1.PlayTrackRequest, playerv1.StatusResponse]
	togglePlay     *connect.Client[playerv1.Empty, playerv1.StatusResponse]
	next           *connect.Client[playerv1.Empty, playerv1.StatusResponse]
	previous       *connect.Client[playerv1.Empty, playerv1.StatusResponse]
	seek           *connect.Client[playerv1.SeekRequest, playerv1.StatusResponse]
	setVolume      *connect.Client[playerv1.SetVolumeRequest, playerv1.StatusResponse]
	toggleShuffle  *connect.Client[playerv1.Empty, playerv1.ToggleShuffleResponse]
	toggleRepeat   *connect.Client[playerv1.Empty, playerv1.ToggleRepeatResponse]
	toggleFavorite *connect.Client[playerv1.ToggleFavoriteRequest, playerv1.ToggleFavoriteResponse]
	getStatus      *connect.Client[playerv1.Empty, playerv1.StatusResponse]
	getListing     *connect.Client[playerv1.GetListingRequest, playerv1.GetListingResponse]
	listListings   *connect.Client[playerv1.Empty, playerv1.ListListingsResponse]
	search         *connect.Client[playerv1.SearchRequest, playerv1.SearchResponse]
	subscribe      *connect.Client[playerv1.Empty, playerv1.Notification]
}

func (c *playerServiceClient) Play(ctx context.Context, req *connect.Request[playerv1.PlayRequest]) (*connect.Response[playerv1.StatusResponse], error) {
	return c.play.CallUnary(ctx, req)
}

func (c *playerServiceClient) PlayTrack(ctx context.Context, req *connect.Request[playerv1.PlayTrackRequest]) (*connect.Response[playerv1.StatusResponse], error) {
	return c.playTrack.CallUnary(ctx, req)
}

func (c *playerServiceClient) TogglePlay(ctx context.Context, req *connect.Request[playerv1.Empty]) (*connect.Response[playerv1.StatusResponse], error) {
	return c.togglePlay.CallUnary(ctx, req)
}

func (c *playerServiceClient) Next(ctx context.Context, req *connect.Request[playerv1.Empty]) (*connect.Response[playerv1.StatusResponse], error) {
	return c.next.CallUnary(ctx, req)
}

func (c *playerServiceClient) Previous(ctx context.Context, req *connect.Request[playerv1.Empty]) (*connect.Response[playerv1.StatusResponse], error) {
	return c.previous.CallUnary(ctx, req)
}

func (c *playerServiceClient) Seek(ctx context.Context, req *connect.Request[playerv1.SeekRequest]) (*connect.Response[playerv1.StatusResponse], error) {
	return c.seek.CallUnary(ctx, req)
}

func (c *playerServiceClient) SetVolume(ctx context.Context, req *connect.Request[playerv1.SetVolumeRequest]) (*connect.Response[playerv1.StatusResponse], error) {
	return c.setVolume.CallUnary(ctx, req)
}

func (c *playerServiceClient) ToggleShuffle(ctx context.Context, req *connect.Request[playerv1.Empty]) (*connect.Response[playerv1.ToggleShuffleResponse], error) {
	return c.toggleShuffle.CallUnary(ctx, req)
}

func (c *playerServiceClient) ToggleRepeat(ctx context.Context, req *connect.Request[playerv1.Empty]) (*connect.Response[playerv1.ToggleRepeatResponse], error) {
	return c.toggleRepeat.CallUnary(ctx, req)
}

func (c *playerServiceClient) ToggleFavorite(ctx context.Context, req *connect.Request[playerv1.ToggleFavoriteRequest]) (*connect.Response[playerv1.ToggleFavoriteResponse], error) {
	return c.toggleFavorite.CallUnary(ctx, req)
}

func (c *playerServiceClient) GetStatus(ctx context.Context, req *connect.Request[playerv1.Empty]) (*connect.Response[playerv1.StatusResponse], error) {
	return c.getStatus.CallUnary(ctx, req)
}

func (c *playerServiceClient) GetListing(ctx context.Context, req *connect.Request[playerv1.GetListingRequest]) (*connect.Response[playerv1.GetListingResponse], error) {
	return c.getListing.CallUnary(ctx, req)
}

func (c *playerServiceClient) ListListings(ctx context.Context, req *connect.Request[playerv1.Empty]) (*connect.Response[playerv1.ListListingsResponse], error) {
	return c.listListings.CallUnary(ctx, req)
}

func (c *playerServiceClient) Search(ctx context.Context, req *connect.Request[playerv1.SearchRequest]) (*connect.Response[playerv1.SearchResponse], error) {
	return c.search.CallUnary(ctx, req)
}

func (c *playerServiceClient) Subscribe(ctx context.Context, req *connect.Request[playerv1.Empty]) (*connect.ServerStreamForClient[playerv1.Notification], error) {
	return c.subscribe.CallServerStream(ctx, req)
}

// AdminServiceClient is a client for the AdminService service.
type AdminServiceClient interface {
	ImportFiles(context.Context, *connect.Request[playerv1.ImportFilesRequest]) (*connect.Response[playerv1.ImportFilesResponse], error)
	RemoveLocalTrack(context.Context, *connect.Request[playerv1.RemoveLocalTrackRequest]) (*connect.Response[playerv1.Empty], error)
}

// NewAdminServiceClient constructs a client for the AdminService service.
func NewAdminServiceClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) AdminServiceClient {
	baseURL = strings.TrimRight(baseURL, "/")
	opts = withCodec(opts, connect.ClientOption(connect.WithCodec(playerv1.JSONCodec{})))
	return &adminServiceClient{
		importFiles:      connect.NewClient[playerv1.ImportFilesRequest, playerv1.ImportFilesResponse](httpClient, baseURL+AdminServiceImportFilesProcedure, opts...),
		removeLocalTrack: connect.NewClient[playerv1.RemoveLocalTrackRequest, playerv1.Empty](httpClient, baseURL+AdminServiceRemoveLocalTrackProcedure, opts...),
	}
}

type adminServiceClient struct {
	importFiles      *connect.Client[playerv1.ImportFilesRequest, playerv1.ImportFilesResponse]
	removeLocalTrack *connect.Client[playerv1.RemoveLocalTrackRequest, playerv1.Empty]
}

func (c *adminServiceClient) ImportFiles(ctx context.Context, req *connect.Request[playerv1.ImportFilesRequest]) (*connect.Response[playerv1.ImportFilesResponse], error) {
	return c.importFiles.CallUnary(ctx, req)
}

func (c *adminServiceClient) RemoveLocalTrack(ctx context.Context, req *connect.Request[playerv1.RemoveLocalTrackRequest]) (*connect.Response[playerv1.Empty], error) {
	return c.removeLocalTrack.CallUnary(ctx, req)
}
