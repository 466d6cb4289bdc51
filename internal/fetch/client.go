// Package fetch retrieves raw page markup from the source site.
package fetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog"
)

// Browsers get served the full markup; bots often get a challenge page.
const defaultUserAgent = "Mozilla/5.0 (X11; Linux x86_64; rv:128.0) Gecko/20100101 Firefox/128.0"

// maxBodySize caps detail page reads; forum pages are well under this.
const maxBodySize = 8 << 20

// Fetcher retrieves the raw markup of a page. Implementations must honor
// context cancellation and return within their configured timeout.
type Fetcher interface {
	Fetch(ctx context.Context, url string) ([]byte, error)
}

// Client is the plain HTTP fetcher.
type Client struct {
	httpClient *http.Client
	userAgent  string
	logger     zerolog.Logger
}

// NewClient creates an HTTP fetcher with a per-request timeout.
func NewClient(timeout time.Duration, logger zerolog.Logger) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		userAgent:  defaultUserAgent,
		logger:     logger.With().Str("component", "fetch").Logger(),
	}
}

// Fetch retrieves the page at url.
func (c *Client) Fetch(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch %s: unexpected status %d", url, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, fmt.Errorf("fetch %s: failed to read body: %w", url, err)
	}

	c.logger.Debug().
		Str("url", url).
		Int("bytes", len(body)).
		Dur("elapsed", time.Since(start)).
		Msg("fetched page")

	return body, nil
}
