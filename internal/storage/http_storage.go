package storage

import (
	"context"
	"fmt"
	"image"
	"net/http"
	"time"

	apperrors "github.com/anime-shed/barcode-studio-go/internal/errors"
)

const (
	fetchAttempts  = 3
	defaultBackoff = time.Second
)

// HTTPLogoFetcher downloads logos over http(s) with bounded retries.
type HTTPLogoFetcher struct {
	client  *http.Client
	backoff time.Duration
}

// HTTPOption configures an HTTPLogoFetcher.
type HTTPOption func(*HTTPLogoFetcher)

// WithBackoff sets the base delay between attempts. Attempt n waits n*d.
func WithBackoff(d time.Duration) HTTPOption {
	return func(h *HTTPLogoFetcher) { h.backoff = d }
}

// WithHTTPClient replaces the default client.
func WithHTTPClient(c *http.Client) HTTPOption {
	return func(h *HTTPLogoFetcher) { h.client = c }
}

// NewHTTPLogoFetcher creates a fetcher tuned for small single-image downloads.
func NewHTTPLogoFetcher(opts ...HTTPOption) *HTTPLogoFetcher {
	transport := &http.Transport{
		MaxIdleConns:        10,
		MaxIdleConnsPerHost: 2,
		IdleConnTimeout:     30 * time.Second,

		TLSHandshakeTimeout:   5 * time.Second,
		ResponseHeaderTimeout: 5 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,

		MaxResponseHeaderBytes: 4096,
	}

	h := &HTTPLogoFetcher{
		client: &http.Client{
			Transport: transport,
			Timeout:   10 * time.Second,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) >= 3 {
					return fmt.Errorf("too many redirects (limit: 3)")
				}
				return nil
			},
		},
		backoff: defaultBackoff,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Fetch downloads and decodes the image at logoURL. Transport errors and 5xx
// responses are retried; 4xx responses are not.
func (h *HTTPLogoFetcher) Fetch(ctx context.Context, logoURL string) (image.Image, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, logoURL, nil)
	if err != nil {
		return nil, fmt.Errorf("invalid URL: %w", err)
	}
	req.Header.Set("Accept", "image/png, image/jpeg, image/webp, image/gif, */*")
	req.Header.Set("User-Agent", "Barcode-Studio/1.0")

	var lastErr error
	for attempt := 0; attempt < fetchAttempts; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(time.Duration(attempt) * h.backoff):
			}
		}

		img, retry, err := h.fetchOnce(req)
		if err == nil {
			return img, nil
		}
		lastErr = err
		if !retry {
			break
		}
	}

	return nil, fmt.Errorf("failed to fetch logo after %d attempts: %w", fetchAttempts, lastErr)
}

// fetchOnce performs a single request and reports whether a failure is
// worth retrying.
func (h *HTTPLogoFetcher) fetchOnce(req *http.Request) (image.Image, bool, error) {
	resp, err := h.client.Do(req)
	if err != nil {
		return nil, req.Context().Err() == nil, apperrors.NewNetworkError("Logo download failed", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusOK:
		img, err := decodeImage(resp.Body)
		return img, false, err
	case resp.StatusCode == http.StatusNotFound || resp.StatusCode == http.StatusGone:
		return nil, false, apperrors.NewNotFoundError("Logo not found",
			fmt.Errorf("client error: status code %d", resp.StatusCode))
	case resp.StatusCode >= 400 && resp.StatusCode < 500:
		return nil, false, fmt.Errorf("client error: status code %d", resp.StatusCode)
	case resp.StatusCode >= 500:
		return nil, true, fmt.Errorf("server error: status code %d", resp.StatusCode)
	default:
		return nil, false, fmt.Errorf("unexpected status code %d", resp.StatusCode)
	}
}
