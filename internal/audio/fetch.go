package audio

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
)

// maxCueBytes bounds how much of a cue source is read into memory.
const maxCueBytes = 16 << 20

// ErrCueTooLarge means a cue source exceeds maxCueBytes.
var ErrCueTooLarge = errors.New("cue source too large")

// Fetcher retrieves the raw bytes of a cue source.
type Fetcher interface {
	Fetch(ctx context.Context, uri string) ([]byte, error)
}

// HTTPFetcher fetches http(s) URIs with Client and reads file URIs and bare
// paths from disk.
type HTTPFetcher struct {
	Client *http.Client
}

// Fetch implements Fetcher. Non-2xx responses are errors.
func (f HTTPFetcher) Fetch(ctx context.Context, uri string) ([]byte, error) {
	u, err := url.Parse(uri)
	if err != nil {
		return nil, fmt.Errorf("parse cue uri: %w", err)
	}

	switch strings.ToLower(u.Scheme) {
	case "http", "https":
		return f.fetchHTTP(ctx, uri)
	case "file":
		return readLimited(u.Path)
	case "":
		return readLimited(uri)
	default:
		return nil, fmt.Errorf("unsupported cue scheme %q", u.Scheme)
	}
}

func (f HTTPFetcher) fetchHTTP(ctx context.Context, uri string) ([]byte, error) {
	client := f.Client
	if client == nil {
		client = http.DefaultClient
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, uri, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch cue: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("fetch cue: unexpected status %s", resp.Status)
	}

	data, err := readCapped(resp.Body, maxCueBytes)
	if err != nil {
		return nil, fmt.Errorf("read cue body: %w", err)
	}
	return data, nil
}

func readLimited(path string) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open cue file: %w", err)
	}
	defer f.Close()

	data, err := readCapped(f, maxCueBytes)
	if err != nil {
		return nil, fmt.Errorf("read cue file: %w", err)
	}
	return data, nil
}

// readCapped reads r to the end, failing with ErrCueTooLarge instead of
// returning a clipped source when r holds more than limit bytes.
func readCapped(r io.Reader, limit int64) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(r, limit+1))
	if err != nil {
		return nil, err
	}
	if int64(len(data)) > limit {
		return nil, fmt.Errorf("%w: over %d bytes", ErrCueTooLarge, limit)
	}
	return data, nil
}
