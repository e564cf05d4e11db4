package remote

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const repoURL = "https://api.github.com/repos/acme/widget"

func newTestClient(mock *MockHTTPFetcher, token string) *Client {
	return NewClientWithFetcher(Options{UserAgent: "nuspecgen-test", Token: token}, mock)
}

func TestClientGetDecodesTree(t *testing.T) {
	mock := NewMockHTTPFetcher()
	mock.AddResponse(repoURL, 200, `{"name":"widget","owner":{"login":"acme","url":"https://api.github.com/users/acme"},"stargazers_count":3}`)

	res, err := newTestClient(mock, "").Get(context.Background(), repoURL)
	require.NoError(t, err)

	obj, ok := res.Value.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "widget", obj["name"])

	owner, ok := obj["owner"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "https://api.github.com/users/acme", owner["url"])
	assert.Equal(t, json.Number("3"), obj["stargazers_count"])
}

func TestClientGetArray(t *testing.T) {
	mock := NewMockHTTPFetcher()
	mock.AddResponse(repoURL+"/tags", 200, `[{"name":"v1"},{"name":"v2"}]`)

	res, err := newTestClient(mock, "").Get(context.Background(), repoURL+"/tags")
	require.NoError(t, err)

	list, ok := res.Value.([]any)
	require.True(t, ok)
	assert.Len(t, list, 2)
}

func TestClientSendsHeaders(t *testing.T) {
	mock := NewMockHTTPFetcher()
	mock.AddResponse(repoURL, 200, `{}`)

	_, err := newTestClient(mock, "ghp_abc").Get(context.Background(), repoURL)
	require.NoError(t, err)

	reqs := mock.Requests()
	require.Len(t, reqs, 1)
	assert.Equal(t, http.MethodGet, reqs[0].Method)
	assert.Equal(t, "nuspecgen-test", reqs[0].Header.Get("User-Agent"))
	assert.Equal(t, "application/vnd.github.v3+json", reqs[0].Header.Get("Accept"))
	assert.Equal(t, "token ghp_abc", reqs[0].Header.Get("Authorization"))
}

func TestClientDefaultUserAgentAndNoToken(t *testing.T) {
	mock := NewMockHTTPFetcher()
	mock.AddResponse(repoURL, 200, `{}`)

	client := NewClientWithFetcher(Options{}, mock)
	assert.Equal(t, DefaultUserAgent, client.UserAgent())

	_, err := client.Get(context.Background(), repoURL)
	require.NoError(t, err)
	assert.Empty(t, mock.Requests()[0].Header.Get("Authorization"))
}

func TestClientNon2xxIsFetchError(t *testing.T) {
	mock := NewMockHTTPFetcher()
	mock.AddResponse(repoURL, 404, `{"message":"Not Found"}`)

	_, err := newTestClient(mock, "").Get(context.Background(), repoURL)
	require.Error(t, err)

	var fe *FetchError
	require.True(t, errors.As(err, &fe))
	assert.Equal(t, 404, fe.StatusCode)
	assert.Contains(t, err.Error(), "Not Found")
	assert.True(t, IsFetchError(err))
}

func TestClientUnknownURLIs404(t *testing.T) {
	_, err := newTestClient(NewMockHTTPFetcher(), "").Get(context.Background(), repoURL)
	var fe *FetchError
	require.True(t, errors.As(err, &fe))
	assert.Equal(t, http.StatusNotFound, fe.StatusCode)
}

func TestClientRateLimit(t *testing.T) {
	mock := NewMockHTTPFetcher()
	header := http.Header{}
	header.Set("X-RateLimit-Remaining", "0")
	header.Set("X-RateLimit-Reset", "1700000000")
	mock.AddResponseWithHeader(repoURL, 403, `{"message":"API rate limit exceeded"}`, header)

	_, err := newTestClient(mock, "").Get(context.Background(), repoURL)
	var fe *FetchError
	require.True(t, errors.As(err, &fe))
	assert.True(t, fe.RateLimited)
	assert.True(t, fe.ResetAt.Equal(time.Unix(1700000000, 0)))
	assert.Contains(t, err.Error(), "rate limit exceeded")
}

func TestClientTransportError(t *testing.T) {
	mock := NewMockHTTPFetcher()
	mock.AddError(repoURL, errors.New("connection refused"))

	_, err := newTestClient(mock, "").Get(context.Background(), repoURL)
	var fe *FetchError
	require.True(t, errors.As(err, &fe))
	assert.Equal(t, 0, fe.StatusCode)
	assert.Contains(t, err.Error(), "connection refused")
}

func TestClientInvalidJSONIsParseError(t *testing.T) {
	mock := NewMockHTTPFetcher()
	mock.AddResponse(repoURL, 200, `<html>proxy login</html>`)

	_, err := newTestClient(mock, "").Get(context.Background(), repoURL)
	var pe *ParseError
	require.True(t, errors.As(err, &pe))
	assert.True(t, IsFetchError(err))
}
