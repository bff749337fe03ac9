package media

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"time"

	"github.com/rs/zerolog/log"
)

// DefaultSourceURI is shown until the user supplies an image.
const DefaultSourceURI = "https://zh.minecraft.wiki/images/Enchanting_Table.gif?d3582"

// MaxAssetBytes caps how much a fetch will read.
const MaxAssetBytes = 64 << 20

// Fetcher loads static assets by URI. http(s) URIs are requested over the
// network; file URIs and bare paths are read from disk.
type Fetcher struct {
	Client *http.Client
}

// NewFetcher returns a Fetcher whose requests give up after timeout.
func NewFetcher(timeout time.Duration) *Fetcher {
	if timeout <= 0 {
		timeout = 20 * time.Second
	}
	return &Fetcher{Client: &http.Client{Timeout: timeout}}
}

// Fetch returns the bytes at uri.
func (f *Fetcher) Fetch(ctx context.Context, uri string) ([]byte, error) {
	u, err := url.Parse(uri)
	if err != nil {
		return nil, fmt.Errorf("media: parse %q: %w", uri, err)
	}
	switch u.Scheme {
	case "http", "https":
		return f.fetchHTTP(ctx, uri)
	case "file":
		return readFile(u.Path)
	case "":
		return readFile(uri)
	default:
		return nil, fmt.Errorf("media: fetch %q: unsupported scheme %q", uri, u.Scheme)
	}
}

func (f *Fetcher) fetchHTTP(ctx context.Context, uri string) ([]byte, error) {
	client := f.Client
	if client == nil {
		client = http.DefaultClient
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, uri, nil)
	if err != nil {
		return nil, fmt.Errorf("media: build request: %w", err)
	}
	req.Header.Set("Accept", "image/*")
	req.Header.Set("User-Agent", "winter-stage/1.0")

	start := time.Now()
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("media: fetch %s: %w", uri, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("media: fetch %s: status %s", uri, resp.Status)
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, MaxAssetBytes+1))
	if err != nil {
		return nil, fmt.Errorf("media: read %s: %w", uri, err)
	}
	if len(data) > MaxAssetBytes {
		return nil, fmt.Errorf("media: fetch %s: larger than %d bytes", uri, MaxAssetBytes)
	}
	log.Debug().Str("uri", uri).Int("bytes", len(data)).Dur("took", time.Since(start)).Msg("asset fetched")
	return data, nil
}

func readFile(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("media: read %s: %w", path, err)
	}
	return data, nil
}
