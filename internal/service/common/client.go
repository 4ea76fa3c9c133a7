//nolint:revive,nolintlint // Package name "common" is intentional for shared helpers.
package common

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"path"
	"time"

	"github.com/oshokin/watermark-tool/internal/config"
	"github.com/oshokin/watermark-tool/internal/version"
)

// Client fetches release files from the update folder over plain HTTP.
type Client struct {
	// baseURL is the update folder URL file names are resolved against.
	baseURL *url.URL
	// httpClient is the underlying HTTP client.
	httpClient *http.Client

	// callTimeout is the default timeout for short calls such as Ping.
	callTimeout time.Duration
}

// Option configures client behaviour.
type Option func(*Client)

// WithCallTimeout sets a default timeout for short calls.
func WithCallTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		if timeout > 0 {
			c.callTimeout = timeout
		}
	}
}

var (
	// errAddressRequired is returned when a required URL value is missing.
	errAddressRequired = errors.New("update folder URL must be provided")
	// errBadHTTPStatus is returned when the update folder answers with a non-OK status.
	errBadHTTPStatus = errors.New("unexpected http status")
)

// NewClient creates a client for the provided update folder URL.
func NewClient(folderURL string, opts ...Option) (*Client, error) {
	if folderURL == "" {
		return nil, errAddressRequired
	}

	baseURL, err := url.Parse(folderURL)
	if err != nil {
		return nil, fmt.Errorf("parse update folder URL: %w", err)
	}

	client := &Client{
		baseURL:     baseURL,
		httpClient:  http.DefaultClient,
		callTimeout: config.DefaultTimeout,
	}

	for _, opt := range opts {
		opt(client)
	}

	return client, nil
}

// Ping verifies the update folder answers HTTP requests at all.
// Any HTTP response counts as reachable: static hosts commonly return 403
// or 404 for the bare folder URL while happily serving the files inside it.
func (c *Client) Ping(ctx context.Context) error {
	callCtx, cancel := c.callContext(ctx)
	defer cancel()

	req, err := http.NewRequestWithContext(callCtx, http.MethodGet, c.baseURL.String(), http.NoBody)
	if err != nil {
		return fmt.Errorf("ping update folder: %w", err)
	}

	req.Header.Set("User-Agent", version.UserAgent())

	response, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("ping update folder: %w", err)
	}

	_ = response.Body.Close()

	return nil
}

// Fetch downloads a file from the update folder. The caller owns the body of
// the returned response; ContentLength is preserved for progress reporting.
// Fetch deliberately runs on the caller's context without the call timeout,
// large downloads may legitimately take longer.
func (c *Client) Fetch(ctx context.Context, fileName string) (*http.Response, error) {
	// Use path.Join to normalize duplicate slashes when composing the URL path.
	fileURL := *c.baseURL
	fileURL.Path = path.Join(fileURL.Path, fileName)
	finalURL := fileURL.String()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, finalURL, http.NoBody)
	if err != nil {
		return nil, err
	}

	// The update host's access log records which release is fetching.
	req.Header.Set("User-Agent", version.UserAgent())

	response, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}

	if response.StatusCode != http.StatusOK {
		_ = response.Body.Close()

		return nil, fmt.Errorf("%s, %s: %w", finalURL, response.Status, errBadHTTPStatus)
	}

	return response, nil
}

// FetchBytes downloads a whole file from the update folder into memory.
func (c *Client) FetchBytes(ctx context.Context, fileName string) ([]byte, error) {
	response, err := c.Fetch(ctx, fileName)
	if err != nil {
		return nil, err
	}

	defer func() {
		_ = response.Body.Close()
	}()

	data, err := io.ReadAll(response.Body)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", fileName, err)
	}

	return data, nil
}

// callContext returns a context with the client's call timeout if configured,
// otherwise a cancellable child context without a deadline.
func (c *Client) callContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if c.callTimeout <= 0 {
		return context.WithCancel(ctx)
	}

	return context.WithTimeout(ctx, c.callTimeout)
}
