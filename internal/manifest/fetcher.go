// Package manifest fetches and parses streaming manifests (HLS playlists
// and DASH MPDs) into a normalized form.
package manifest

import (
	"context"
	"io"
	"net/http"

	"github.com/pkg/errors"

	"github.com/streamlens/streamlens/internal/util"
)

// ErrNetwork marks fetch failures: timeout, transport error or non-2xx.
var ErrNetwork = errors.New("network error")

// Fetcher retrieves raw manifest bodies over HTTP. A single failed fetch
// propagates immediately; there are no retries and no caching at this layer.
type Fetcher struct {
	client *http.Client
}

// NewFetcher creates a Fetcher. A nil client uses the shared pooled client.
func NewFetcher(client *http.Client) *Fetcher {
	if client == nil {
		client = util.SharedHTTPClient()
	}
	return &Fetcher{client: client}
}

// Fetch performs a plain GET and returns the response body as text.
func (f *Fetcher) Fetch(ctx context.Context, url string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", errors.Wrapf(ErrNetwork, "build request for %s: %v", url, err)
	}
	req.Header.Set("Accept", "*/*")

	resp, err := f.client.Do(req)
	if err != nil {
		return "", errors.Wrapf(ErrNetwork, "fetch %s: %v", url, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", errors.Wrapf(ErrNetwork, "fetch %s: HTTP %d", url, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", errors.Wrapf(ErrNetwork, "read body of %s: %v", url, err)
	}

	return string(body), nil
}
