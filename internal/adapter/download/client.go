// Package download fetches webhook-referenced transcript files over HTTP.
package download

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"meetquiz/internal/domain"
)

// Client downloads transcript files using an injected HTTP client so tests
// and callers control transport behavior.
type Client struct {
	httpClient *http.Client
}

// NewClient wraps the given HTTP client; a nil client gets a sane default
// timeout.
func NewClient(httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	return &Client{httpClient: httpClient}
}

// Download fetches rawURL with the provider's download token appended as the
// access_token query parameter and returns the response body as a string.
func (c *Client) Download(ctx context.Context, rawURL string, accessToken string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", fmt.Errorf("invalid download url %q: %w", rawURL, err)
	}
	if accessToken != "" {
		q := u.Query()
		q.Set("access_token", accessToken)
		u.RawQuery = q.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return "", err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("download transcript: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("download transcript: unexpected status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read transcript body: %w", err)
	}
	return string(body), nil
}

var _ domain.TranscriptDownloader = (*Client)(nil)
