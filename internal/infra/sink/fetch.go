package sink

import (
	"context"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/hashicorp/go-retryablehttp"
)

// maxSourceSize caps how much of a source is buffered for decoding.
const maxSourceSize = 256 << 20

// fetcher reads whole sources into memory so decoders can seek.
type fetcher struct {
	httpClient *http.Client
}

func newFetcher(timeout time.Duration, retryMax int) *fetcher {
	retryClient := retryablehttp.NewClient()
	retryClient.RetryMax = retryMax
	retryClient.RetryWaitMin = 200 * time.Millisecond
	retryClient.RetryWaitMax = 2 * time.Second
	retryClient.Logger = nil

	httpClient := retryClient.StandardClient()
	httpClient.Timeout = timeout

	return &fetcher{httpClient: httpClient}
}

// fetch returns the bytes behind a file:// or http(s):// source.
func (f *fetcher) fetch(ctx context.Context, source string) ([]byte, error) {
	u, err := url.Parse(source)
	if err != nil {
		return nil, errors.Wrapf(err, "invalid source %q", source)
	}

	switch u.Scheme {
	case "file":
		data, err := os.ReadFile(filepath.FromSlash(u.Path))
		if err != nil {
			return nil, errors.Wrap(err, "failed to read source file")
		}
		return data, nil

	case "http", "https":
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, source, nil)
		if err != nil {
			return nil, errors.Wrap(err, "failed to create request")
		}
		resp, err := f.httpClient.Do(req)
		if err != nil {
			return nil, errors.Wrap(err, "failed to fetch source")
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			return nil, errors.Newf("failed to fetch source: status %d", resp.StatusCode)
		}

		data, err := io.ReadAll(io.LimitReader(resp.Body, maxSourceSize+1))
		if err != nil {
			return nil, errors.Wrap(err, "failed to read source body")
		}
		if len(data) > maxSourceSize {
			return nil, errors.Newf("source exceeds %d bytes", maxSourceSize)
		}
		return data, nil

	default:
		return nil, errors.Newf("unsupported source scheme %q", u.Scheme)
	}
}
