// Package fetcher provides the byte-stream sources a load session decodes
// from: the production HTTP endpoint (with daily cache-busting) and local
// files for development datasets.
package fetcher

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"time"
)

// DefaultTimeout bounds the whole dataset download.
const DefaultTimeout = 60 * time.Second

// HTTPSource fetches the binary feature collection over HTTP GET. The
// request carries a cache-busting query parameter derived from the current
// date so browsers and CDNs do not serve yesterday's dataset.
type HTTPSource struct {
	URL    string
	Client *http.Client
	// nowFn is a test hook for the cache-busting date.
	nowFn func() time.Time
}

// NewHTTPSource builds a source for the given endpoint URL.
func NewHTTPSource(rawURL string) *HTTPSource {
	return &HTTPSource{
		URL:    rawURL,
		Client: &http.Client{Timeout: DefaultTimeout},
		nowFn:  time.Now,
	}
}

// Open issues the GET and returns the response body for incremental decode.
// Non-success statuses are transport failures.
func (s *HTTPSource) Open(ctx context.Context) (io.ReadCloser, error) {
	reqURL, err := s.bustedURL()
	if err != nil {
		return nil, fmt.Errorf("fetcher: bad endpoint %q: %w", s.URL, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("fetcher: building request: %w", err)
	}

	resp, err := s.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetcher: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		resp.Body.Close()
		return nil, fmt.Errorf("fetcher: GET %s: unexpected status %s", s.URL, resp.Status)
	}
	return resp.Body, nil
}

func (s *HTTPSource) String() string {
	return s.URL
}

// bustedURL appends d=YYYYMMDD to the endpoint query.
func (s *HTTPSource) bustedURL() (string, error) {
	u, err := url.Parse(s.URL)
	if err != nil {
		return "", err
	}
	q := u.Query()
	q.Set("d", s.nowFn().Format("20060102"))
	u.RawQuery = q.Encode()
	return u.String(), nil
}

// FileSource reads a dataset from the local filesystem. Used for development
// and by the watch-reload loop.
type FileSource struct {
	Path string
}

// NewFileSource builds a source for the given path.
func NewFileSource(path string) *FileSource {
	return &FileSource{Path: path}
}

// Open opens the file for incremental decode.
func (s *FileSource) Open(ctx context.Context) (io.ReadCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f, err := os.Open(s.Path)
	if err != nil {
		return nil, fmt.Errorf("fetcher: %w", err)
	}
	return f, nil
}

func (s *FileSource) String() string {
	return s.Path
}
