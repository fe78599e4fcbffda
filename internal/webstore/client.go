// Package webstore queries the Chrome Web Store update service.
//
// The store does not expose a version API. Instead, an update query with
// redirects suppressed answers with a redirect whose target embeds the
// current version (".../extension_1_2_3_4.crx"); fetching that target
// yields the package bytes. A 204 means the extension is no longer
// downloadable (typically removed from the store).
package webstore

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strings"
	"time"
)

const (
	defaultEndpoint    = "https://clients2.google.com/service/update2/crx"
	defaultProdVersion = "65.0"
	defaultTimeout     = 30 * time.Second

	// The store rejects queries without a Chrome-looking User-Agent.
	userAgent = "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/68.0.3440.106 Safari/537.36"
)

var (
	// ErrNotFound means the store reported the extension as not
	// downloadable. Callers skip the extension; it is not a run failure.
	ErrNotFound = errors.New("webstore: extension not downloadable")

	// ErrBadRedirect means the store's answer did not carry a version in
	// the expected shape. Proceeding would be unsafe for every extension.
	ErrBadRedirect = errors.New("webstore: unexpected redirect target")
)

var crxVersionRE = regexp.MustCompile(`extension_([0-9_]+)\.crx`)

// Client talks to the web store update endpoint.
type Client struct {
	endpoint    string
	prodVersion string
	httpClient  *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient sets a custom HTTP client (useful for testing).
func WithHTTPClient(c *http.Client) Option {
	return func(w *Client) { w.httpClient = c }
}

// WithEndpoint overrides the update service URL.
func WithEndpoint(url string) Option {
	return func(w *Client) { w.endpoint = url }
}

// New creates a Client with the given options.
func New(opts ...Option) *Client {
	c := &Client{
		endpoint:    defaultEndpoint,
		prodVersion: defaultProdVersion,
		httpClient:  &http.Client{Timeout: defaultTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// ResolveLatest asks the store for the current version of the extension and
// the URL its package can be fetched from.
func (c *Client) ResolveLatest(ctx context.Context, id string) (version, fetchURL string, err error) {
	url := fmt.Sprintf("%s?response=redirect&prodversion=%s&x=id%%3D%s%%26installsource%%3Dondemand%%26uc",
		c.endpoint, c.prodVersion, id)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", "", fmt.Errorf("creating query request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.noRedirectClient().Do(req)
	if err != nil {
		return "", "", fmt.Errorf("querying web store for %s: %w", id, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNoContent {
		return "", "", fmt.Errorf("%w: %s", ErrNotFound, id)
	}

	loc, err := resp.Location()
	if err != nil {
		return "", "", fmt.Errorf("%w: status %d without redirect", ErrBadRedirect, resp.StatusCode)
	}

	target := loc.String()
	m := crxVersionRE.FindStringSubmatch(target)
	if m == nil {
		return "", "", fmt.Errorf("%w: %s", ErrBadRedirect, target)
	}

	return strings.ReplaceAll(m[1], "_", "."), target, nil
}

// Download fetches the package bytes from a URL returned by ResolveLatest.
func (c *Client) Download(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("creating download request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("downloading package: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("download returned status %d", resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading download stream: %w", err)
	}
	return data, nil
}

// noRedirectClient derives a client that surfaces redirects instead of
// following them, preserving the transport and timeout of the configured
// client so injected test clients keep working.
func (c *Client) noRedirectClient() *http.Client {
	return &http.Client{
		Transport: c.httpClient.Transport,
		Timeout:   c.httpClient.Timeout,
		Jar:       c.httpClient.Jar,
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}
}
