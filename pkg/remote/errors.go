package remote

import (
	"errors"
	"fmt"
	"time"
)

// ErrProxyNotSet indicates the proxy URL was empty.
var ErrProxyNotSet = errors.New("proxy URL is not set")

// ConfigurationError reports a missing or malformed client setting. It is
// raised before any request is attempted.
type ConfigurationError struct {
	// Key names the setting, e.g. "HTTP_PROXY"
	Key string
	// Value is the offending value with credentials redacted
	Value   string
	Wrapped error
}

func (e *ConfigurationError) Error() string {
	if e.Value == "" {
		return fmt.Sprintf("invalid configuration %s: %v", e.Key, e.Wrapped)
	}
	return fmt.Sprintf("invalid configuration %s=%q: %v", e.Key, e.Value, e.Wrapped)
}

func (e *ConfigurationError) Unwrap() error {
	return e.Wrapped
}

// FetchError indicates a GET that did not yield a usable response: a transport
// failure, a non-2xx status or an undecodable body.
type FetchError struct {
	URL        string
	StatusCode int
	// RateLimited is set when the API reported an exhausted quota
	RateLimited bool
	// ResetAt is when the quota resets, if the API said so
	ResetAt time.Time
	Wrapped error
}

func (e *FetchError) Error() string {
	switch {
	case e.RateLimited && !e.ResetAt.IsZero():
		return fmt.Sprintf("GET %s: rate limit exceeded (HTTP %d), resets at %s", e.URL, e.StatusCode, e.ResetAt.UTC().Format(time.RFC3339))
	case e.RateLimited:
		return fmt.Sprintf("GET %s: rate limit exceeded (HTTP %d)", e.URL, e.StatusCode)
	case e.StatusCode != 0 && e.Wrapped != nil:
		return fmt.Sprintf("GET %s: HTTP %d: %v", e.URL, e.StatusCode, e.Wrapped)
	case e.StatusCode != 0:
		return fmt.Sprintf("GET %s: HTTP %d", e.URL, e.StatusCode)
	default:
		return fmt.Sprintf("GET %s: %v", e.URL, e.Wrapped)
	}
}

func (e *FetchError) Unwrap() error {
	return e.Wrapped
}

// ParseError indicates a response body that is not valid JSON
type ParseError struct {
	URL     string
	Wrapped error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("failed to parse response from %s: %v", e.URL, e.Wrapped)
}

func (e *ParseError) Unwrap() error {
	return e.Wrapped
}

// IsConfigurationError reports whether err is a ConfigurationError.
func IsConfigurationError(err error) bool {
	var ce *ConfigurationError
	return errors.As(err, &ce)
}

// IsFetchError reports whether err came from a failed remote lookup.
func IsFetchError(err error) bool {
	var fe *FetchError
	var pe *ParseError
	return errors.As(err, &fe) || errors.As(err, &pe)
}
