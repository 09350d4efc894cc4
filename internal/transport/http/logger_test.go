package http

import (
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestLogTransport_PassThrough tests that responses are returned intact.
func TestLogTransport_PassThrough(t *testing.T) {
	t.Parallel()

	next := roundTripFunc(func(*http.Request) (*http.Response, error) {
		return &http.Response{
			StatusCode: http.StatusOK,
			Header:     http.Header{"Content-Type": []string{"application/json"}},
			Body:       io.NopCloser(strings.NewReader(`{"url":"x"}`)),
		}, nil
	})

	transport := NewLogTransport(next, 0)

	req, err := http.NewRequest(http.MethodGet, "http://catalog.invalid/api/stream", nil) //nolint:noctx // Test code.
	require.NoError(t, err)

	resp, err := transport.RoundTrip(req)
	require.NoError(t, err)

	defer resp.Body.Close() //nolint:errcheck // Test cleanup, error is not critical.

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.JSONEq(t, `{"url":"x"}`, string(body))

	_, err = transport.RoundTrip(nil) //nolint:bodyclose // Body is empty on error.
	require.ErrorIs(t, err, ErrNilRequest)
}

// TestLogTransport_DumpRequestRedactsToken tests that the token never reaches the dump.
func TestLogTransport_DumpRequestRedactsToken(t *testing.T) {
	t.Parallel()

	transport := &LogTransport{next: http.DefaultTransport, maxLogLength: 4096}

	req, err := http.NewRequest(http.MethodGet, "http://catalog.invalid/api/album?albumId=1", nil) //nolint:noctx // Test code.
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer secret-token")

	dump := transport.dumpRequest(req)
	assert.NotContains(t, dump, "secret-token")
	assert.Contains(t, dump, "[REDACTED]")
	assert.Equal(t, "Bearer secret-token", req.Header.Get("Authorization"))
}

// TestLogTransport_DumpResponseSkipsBinary tests that binary bodies are not dumped.
func TestLogTransport_DumpResponseSkipsBinary(t *testing.T) {
	t.Parallel()

	transport := &LogTransport{next: http.DefaultTransport, maxLogLength: 4096}

	resp := &http.Response{
		StatusCode: http.StatusOK,
		ProtoMajor: 1,
		ProtoMinor: 1,
		Header:     http.Header{"Content-Type": []string{"audio/flac"}},
		Body:       io.NopCloser(strings.NewReader("fLaC-binary-payload")),
	}

	dump := transport.dumpResponse(resp)
	assert.NotContains(t, dump, "binary-payload")

	// The body is still readable afterwards.
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, "fLaC-binary-payload", string(body))
}

// TestLogTransport_Truncate tests dump truncation.
func TestLogTransport_Truncate(t *testing.T) {
	t.Parallel()

	transport := &LogTransport{maxLogLength: 5}
	assert.Equal(t, "abcde... [truncated]", transport.truncate([]byte("abcdefgh")))
	assert.Equal(t, "abc", transport.truncate([]byte("abc\n")))
}
