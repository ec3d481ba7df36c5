package httpclient

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	coreErrors "github.com/angelospk/osdbclient/pkg/core/errors"
)

// DefaultTimeout bounds a single round trip when the caller supplies no http.Client.
const DefaultTimeout = 30 * time.Second

// maxResponseBytes caps how much of a response body is read.
const maxResponseBytes = 32 << 20

// Client posts encoded XML-RPC requests to a fixed endpoint.
type Client struct {
	endpoint   string
	userAgent  string
	httpClient *http.Client
}

// New creates a transport for endpoint. A nil httpClient gets one with timeout
// (DefaultTimeout when timeout is zero).
func New(endpoint, userAgent string, httpClient *http.Client, timeout time.Duration) *Client {
	if httpClient == nil {
		if timeout <= 0 {
			timeout = DefaultTimeout
		}
		httpClient = &http.Client{Timeout: timeout}
	}
	return &Client{
		endpoint:   endpoint,
		userAgent:  userAgent,
		httpClient: httpClient,
	}
}

// Endpoint returns the URL requests are sent to.
func (c *Client) Endpoint() string {
	return c.endpoint
}

// Post performs one blocking POST of body and returns the raw response body.
// All failures wrap coreErrors.ErrTransport.
func (c *Client) Post(ctx context.Context, body []byte) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create request: %v", coreErrors.ErrTransport, err)
	}

	req.Header.Set("Content-Type", "text/xml")
	req.Header.Set("Accept", "text/xml")
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to execute request: %w", coreErrors.ErrTransport, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read response body: %w", coreErrors.ErrTransport, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		snippet := strings.TrimSpace(string(respBody))
		if len(snippet) > 512 {
			snippet = snippet[:512]
		}
		return nil, fmt.Errorf("%w: status %d, body: %s", coreErrors.ErrTransport, resp.StatusCode, snippet)
	}

	return respBody, nil
}
