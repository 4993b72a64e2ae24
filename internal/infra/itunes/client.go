// Package itunes provides a client for the public iTunes Search API.
package itunes

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/hashicorp/go-retryablehttp"
	zlog "github.com/rs/zerolog/log"

	"github.com/osa030/surabhi/internal/domain/track"
)

// DefaultBaseURL is the iTunes Search API endpoint.
const DefaultBaseURL = "https://itunes.apple.com/search"

// IDPrefix is prepended to iTunes track IDs to form track IDs.
const IDPrefix = "itunes:"

// Client is an iTunes Search API client.
type Client struct {
	baseURL    string
	country    string
	httpClient *http.Client
}

// Config represents iTunes client configuration.
type Config struct {
	BaseURL  string        // Search endpoint (DefaultBaseURL when empty)
	Country  string        // Storefront country code (API default when empty)
	Timeout  time.Duration // Per-request timeout
	RetryMax int           // Retries for transient failures
}

// Result is one entry of a search response.
type Result struct {
	Kind           string `json:"kind"`
	TrackID        int64  `json:"trackId"`
	TrackName      string `json:"trackName"`
	ArtistName     string `json:"artistName"`
	CollectionName string `json:"collectionName"`
	ArtworkURL100  string `json:"artworkUrl100"`
	PreviewURL     string `json:"previewUrl"`
}

// SearchResponse represents the search endpoint response body.
type SearchResponse struct {
	ResultCount int      `json:"resultCount"`
	Results     []Result `json:"results"`
}

// New creates a new iTunes client.
func New(cfg Config) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	if cfg.RetryMax < 0 {
		cfg.RetryMax = 0
	}

	retryClient := retryablehttp.NewClient()
	retryClient.RetryMax = cfg.RetryMax
	retryClient.RetryWaitMin = 200 * time.Millisecond
	retryClient.RetryWaitMax = 2 * time.Second
	retryClient.Logger = nil

	httpClient := retryClient.StandardClient()
	httpClient.Timeout = cfg.Timeout

	return &Client{
		baseURL:    cfg.BaseURL,
		country:    cfg.Country,
		httpClient: httpClient,
	}
}

// Search returns songs matching term that have a preview.
// Reference: https://performance-partners.apple.com/search-api
func (c *Client) Search(ctx context.Context, term string, limit int) ([]track.Track, error) {
	if term == "" {
		return nil, errors.New("search term is required")
	}

	if limit <= 0 {
		limit = 20
	}
	if limit > 200 {
		limit = 200
	}

	params := url.Values{}
	params.Set("term", term)
	params.Set("media", "music")
	params.Set("entity", "song")
	params.Set("limit", strconv.Itoa(limit))
	if c.country != "" {
		params.Set("country", c.country)
	}

	reqURL := c.baseURL + "?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create request")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, errors.Wrap(err, "failed to send request")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, errors.Newf("itunes search returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read response body")
	}

	var response SearchResponse
	if err := json.Unmarshal(body, &response); err != nil {
		return nil, errors.Wrap(err, "failed to parse response")
	}

	tracks := make([]track.Track, 0, len(response.Results))
	for _, r := range response.Results {
		// Albums, videos and preview-less entries are not playable
		if r.Kind != "song" || r.PreviewURL == "" {
			continue
		}
		tracks = append(tracks, convertResult(r))
	}

	zlog.Debug().Msgf("itunes: search: term=%q results=%d songs=%d", term, response.ResultCount, len(tracks))
	return tracks, nil
}

func convertResult(r Result) track.Track {
	return track.Track{
		ID:         fmt.Sprintf("%s%d", IDPrefix, r.TrackID),
		Title:      r.TrackName,
		Artist:     r.ArtistName,
		Album:      r.CollectionName,
		ArtworkURL: r.ArtworkURL100,
		SourceURL:  r.PreviewURL,
		Origin:     track.OriginRemote,
	}
}
