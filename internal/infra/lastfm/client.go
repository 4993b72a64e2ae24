// Package lastfm provides a client for the Last.fm chart API.
package lastfm

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/hashicorp/go-retryablehttp"
	zlog "github.com/rs/zerolog/log"
)

// DefaultCacheTTL is how long chart results are reused.
const DefaultCacheTTL = time.Hour

// topTracksCacheEntry represents a cached chart result.
type topTracksCacheEntry struct {
	tracks    []TopTrack
	expiresAt time.Time
}

// Client is a Last.fm API client.
type Client struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
	cacheTTL   time.Duration

	// Cache for chart and tag top tracks
	cache   map[string]*topTracksCacheEntry
	cacheMu sync.RWMutex
}

// Config represents Last.fm client configuration.
type Config struct {
	APIKey   string
	CacheTTL time.Duration
}

// TopTrack represents a charting track.
type TopTrack struct {
	Name   string
	Artist string
}

// GetTopTracksResponse represents the response from tag.getTopTracks and
// chart.getTopTracks.
type GetTopTracksResponse struct {
	Tracks struct {
		Track []struct {
			Name   string `json:"name"`
			Artist struct {
				Name string `json:"name"`
			} `json:"artist"`
		} `json:"track"`
	} `json:"tracks"`
}

// LastFMError represents an error response from Last.fm API.
type LastFMError struct {
	Error   int    `json:"error"`
	Message string `json:"message"`
}

// New creates a new Last.fm client.
func New(cfg Config) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("last.fm API key is required")
	}
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = DefaultCacheTTL
	}

	retryClient := retryablehttp.NewClient()
	retryClient.RetryMax = 2
	retryClient.Logger = nil
	httpClient := retryClient.StandardClient()
	httpClient.Timeout = 10 * time.Second

	return &Client{
		apiKey:     cfg.APIKey,
		baseURL:    "https://ws.audioscrobbler.com/2.0/",
		httpClient: httpClient,
		cacheTTL:   cfg.CacheTTL,
		cache:      make(map[string]*topTracksCacheEntry),
	}, nil
}

// GetTopTracks retrieves top tracks for a tag from Last.fm.
// Reference: https://www.last.fm/api/show/tag.getTopTracks
func (c *Client) GetTopTracks(ctx context.Context, tagName string, limit int) ([]TopTrack, error) {
	if tagName == "" {
		return nil, errors.New("tag name is required")
	}

	params := url.Values{}
	params.Set("method", "tag.getTopTracks")
	params.Set("tag", tagName)

	return c.topTracks(ctx, fmt.Sprintf("tag:%s:%d", tagName, clampLimit(limit)), params, limit)
}

// GetChartTopTracks retrieves global top tracks from Last.fm charts.
// Reference: https://www.last.fm/api/show/chart.getTopTracks
func (c *Client) GetChartTopTracks(ctx context.Context, limit int) ([]TopTrack, error) {
	params := url.Values{}
	params.Set("method", "chart.getTopTracks")

	return c.topTracks(ctx, fmt.Sprintf("chart:%d", clampLimit(limit)), params, limit)
}

func (c *Client) topTracks(ctx context.Context, cacheKey string, params url.Values, limit int) ([]TopTrack, error) {
	// Check cache first
	c.cacheMu.RLock()
	if entry, ok := c.cache[cacheKey]; ok && time.Now().Before(entry.expiresAt) {
		c.cacheMu.RUnlock()
		zlog.Debug().Msgf("lastfm: using cached top tracks: key=%s", cacheKey)
		return entry.tracks, nil
	}
	c.cacheMu.RUnlock()

	params.Set("api_key", c.apiKey)
	params.Set("limit", fmt.Sprintf("%d", clampLimit(limit)))
	params.Set("format", "json")

	var response GetTopTracksResponse
	if err := c.call(ctx, params, &response); err != nil {
		return nil, err
	}

	tracks := make([]TopTrack, 0, len(response.Tracks.Track))
	for _, t := range response.Tracks.Track {
		tracks = append(tracks, TopTrack{
			Name:   t.Name,
			Artist: t.Artist.Name,
		})
	}

	// Cache the result
	c.cacheMu.Lock()
	c.cache[cacheKey] = &topTracksCacheEntry{
		tracks:    tracks,
		expiresAt: time.Now().Add(c.cacheTTL),
	}
	c.cacheMu.Unlock()
	zlog.Debug().Msgf("lastfm: cached top tracks: key=%s count=%d", cacheKey, len(tracks))

	return tracks, nil
}

func (c *Client) call(ctx context.Context, params url.Values, out any) error {
	reqURL := c.baseURL + "?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return errors.Wrap(err, "failed to create request")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return errors.Wrap(err, "failed to send request")
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return errors.Wrap(err, "failed to read response body")
	}

	// Check for Last.fm API errors
	var apiError LastFMError
	if err := json.Unmarshal(body, &apiError); err == nil && apiError.Error != 0 {
		return errors.Errorf("last.fm API error %d: %s", apiError.Error, apiError.Message)
	}

	if err := json.Unmarshal(body, out); err != nil {
		return errors.Wrap(err, "failed to parse response")
	}
	return nil
}

func clampLimit(limit int) int {
	if limit <= 0 {
		return 20
	}
	if limit > 100 {
		return 100
	}
	return limit
}
