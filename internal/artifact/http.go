package artifact

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"
)

// HTTPSource fetches artifacts from {base}/artifacts/{key}/{name}.
type HTTPSource struct {
	base    string
	client  *http.Client
	limiter *rate.Limiter
}

// HTTPOption configures an HTTPSource.
type HTTPOption func(*HTTPSource)

// WithHTTPClient replaces the default client.
func WithHTTPClient(c *http.Client) HTTPOption {
	return func(s *HTTPSource) { s.client = c }
}

// WithRateLimit caps requests per second with the given burst.
func WithRateLimit(perSecond float64, burst int) HTTPOption {
	return func(s *HTTPSource) { s.limiter = rate.NewLimiter(rate.Limit(perSecond), burst) }
}

// NewHTTP creates a source for the given site root.
func NewHTTP(base string, opts ...HTTPOption) *HTTPSource {
	s := &HTTPSource{
		base:    strings.TrimRight(base, "/"),
		client:  &http.Client{Timeout: 30 * time.Second},
		limiter: rate.NewLimiter(rate.Limit(10), len(Files)),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// URL returns the address of an artifact.
func (s *HTTPSource) URL(ref CallRef, name string) string {
	return s.base + "/artifacts/" + ref.Key() + "/" + name
}

// Get fetches one artifact. Any non-200 response wraps ErrNotFound.
func (s *HTTPSource) Get(ctx context.Context, ref CallRef, name string) ([]byte, error) {
	if err := s.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit: %w", err)
	}

	url := s.URL(ref, name)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request %s: %w", url, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("GET %s returned %d: %s: %w", url, resp.StatusCode, truncate(string(body), 200), ErrNotFound)
	}
	return body, nil
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max] + "..."
}
