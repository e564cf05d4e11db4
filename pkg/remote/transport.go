package remote

import (
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
)

// HTTPFetcher abstracts HTTP calls for testability
type HTTPFetcher interface {
	Do(req *http.Request) (*http.Response, error)
}

// RealHTTPFetcher wraps http.Client for production use
type RealHTTPFetcher struct {
	client *http.Client
}

// NewRealHTTPFetcher creates a production HTTP fetcher
func NewRealHTTPFetcher(client *http.Client) HTTPFetcher {
	return &RealHTTPFetcher{client: client}
}

func (f *RealHTTPFetcher) Do(req *http.Request) (*http.Response, error) {
	return f.client.Do(req)
}

type mockResponse struct {
	status int
	body   string
	header http.Header
}

// MockHTTPFetcher simulates HTTP responses for testing and records every
// request it receives.
type MockHTTPFetcher struct {
	mu        sync.Mutex
	responses map[string]mockResponse
	errors    map[string]error
	requests  []*http.Request
}

// NewMockHTTPFetcher creates a mock HTTP fetcher
func NewMockHTTPFetcher() *MockHTTPFetcher {
	return &MockHTTPFetcher{
		responses: make(map[string]mockResponse),
		errors:    make(map[string]error),
	}
}

// AddResponse registers a mock response for a URL
func (m *MockHTTPFetcher) AddResponse(urlStr string, statusCode int, body string) {
	m.AddResponseWithHeader(urlStr, statusCode, body, nil)
}

// AddResponseWithHeader registers a mock response carrying response headers.
func (m *MockHTTPFetcher) AddResponseWithHeader(urlStr string, statusCode int, body string, header http.Header) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if header == nil {
		header = make(http.Header)
	}
	m.responses[urlStr] = mockResponse{status: statusCode, body: body, header: header}
}

// AddError registers a mock error for a URL
func (m *MockHTTPFetcher) AddError(urlStr string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.errors[urlStr] = err
}

// Requests returns the requests received so far, in order.
func (m *MockHTTPFetcher) Requests() []*http.Request {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*http.Request, len(m.requests))
	copy(out, m.requests)
	return out
}

func (m *MockHTTPFetcher) Do(req *http.Request) (*http.Response, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.requests = append(m.requests, req)
	urlStr := req.URL.String()

	if err, ok := m.errors[urlStr]; ok {
		return nil, err
	}
	if r, ok := m.responses[urlStr]; ok {
		parsedURL, _ := url.Parse(urlStr)
		return &http.Response{
			StatusCode: r.status,
			Body:       io.NopCloser(strings.NewReader(r.body)),
			Header:     r.header.Clone(),
			Request:    &http.Request{URL: parsedURL},
		}, nil
	}
	// Unknown URLs are 404s
	return &http.Response{
		StatusCode: http.StatusNotFound,
		Body:       io.NopCloser(strings.NewReader(`{"message":"Not Found"}`)),
		Header:     make(http.Header),
		Request:    req,
	}, nil
}
