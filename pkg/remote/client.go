package remote

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/fulmenhq/nuspecgen/pkg/logger"
)

const acceptHeader = "application/vnd.github.v3+json"

// Options configures a Client. Proxy is required.
type Options struct {
	Proxy     *ProxyConfig
	UserAgent string
	// Token is sent as "Authorization: token <Token>" when set
	Token string
	// Timeout of zero means requests never time out
	Timeout time.Duration
}

// Resource is a decoded JSON document: a tree of map[string]any, []any,
// json.Number, string, bool and nil.
type Resource struct {
	URL   string
	Raw   []byte
	Value any
}

// Decode unmarshals the raw body into v.
func (r *Resource) Decode(v any) error {
	if err := json.Unmarshal(r.Raw, v); err != nil {
		return &ParseError{URL: r.URL, Wrapped: err}
	}
	return nil
}

// Client issues GET requests against the hosting API through the configured
// proxy and decodes JSON responses.
type Client struct {
	fetcher   HTTPFetcher
	userAgent string
	token     string
}

// NewClient creates a Client with real HTTP routed through opts.Proxy.
func NewClient(opts Options) (*Client, error) {
	if opts.Proxy == nil {
		return nil, &ConfigurationError{Key: ProxyEnvVar, Wrapped: ErrProxyNotSet}
	}

	transport := opts.Proxy.Transport()
	transport.TLSClientConfig = &tls.Config{MinVersion: tls.VersionTLS12}

	client := &http.Client{
		Timeout:   opts.Timeout,
		Transport: transport,
	}
	return NewClientWithFetcher(opts, NewRealHTTPFetcher(client)), nil
}

// NewClientWithFetcher creates a Client with injectable HTTP for testing
func NewClientWithFetcher(opts Options, fetcher HTTPFetcher) *Client {
	ua := opts.UserAgent
	if ua == "" {
		ua = DefaultUserAgent
	}
	return &Client{fetcher: fetcher, userAgent: ua, token: opts.Token}
}

// DefaultUserAgent is sent when Options.UserAgent is empty.
const DefaultUserAgent = "nuspecgen"

// UserAgent returns the User-Agent sent with every request.
func (c *Client) UserAgent() string {
	return c.userAgent
}

// Get fetches url and decodes the body into a generic tree.
func (c *Client) Get(ctx context.Context, url string) (*Resource, error) {
	body, err := c.fetch(ctx, url)
	if err != nil {
		return nil, err
	}

	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()
	var value any
	if err := dec.Decode(&value); err != nil {
		return nil, &ParseError{URL: url, Wrapped: err}
	}
	return &Resource{URL: url, Raw: body, Value: value}, nil
}

func (c *Client) fetch(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, &FetchError{URL: url, Wrapped: fmt.Errorf("failed to create request: %w", err)}
	}

	// GitHub rejects requests without a User-Agent
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", acceptHeader)
	if c.token != "" {
		req.Header.Set("Authorization", "token "+c.token)
	}

	logger.Debug("GET", logger.String("url", url))

	resp, err := c.fetcher.Do(req)
	if err != nil {
		return nil, &FetchError{URL: url, Wrapped: err}
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &FetchError{URL: url, StatusCode: resp.StatusCode, Wrapped: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, statusError(url, resp, body)
	}
	return body, nil
}

func statusError(url string, resp *http.Response, body []byte) error {
	fe := &FetchError{URL: url, StatusCode: resp.StatusCode}

	if resp.StatusCode == http.StatusForbidden || resp.StatusCode == http.StatusTooManyRequests {
		if resp.Header.Get("X-RateLimit-Remaining") == "0" {
			fe.RateLimited = true
			if reset, err := strconv.ParseInt(resp.Header.Get("X-RateLimit-Reset"), 10, 64); err == nil {
				fe.ResetAt = time.Unix(reset, 0)
			}
			return fe
		}
	}

	var apiErr struct {
		Message string `json:"message"`
	}
	if json.Unmarshal(body, &apiErr) == nil && apiErr.Message != "" {
		fe.Wrapped = errors.New(apiErr.Message)
	}
	return fe
}
