package http

import (
	"net/http"

	"github.com/oshokin/hifi-grabber/internal/utils"
)

// HeaderInjector is an http.RoundTripper that fills in the User-Agent and
// Authorization headers when a request does not carry them.
type HeaderInjector struct {
	// next is the underlying HTTP round tripper.
	next http.RoundTripper
	// userAgentProvider provides the User-Agent string to inject.
	userAgentProvider utils.UserAgentProvider
	// token is the catalog token; empty means no Authorization header.
	token string
}

// NewHeaderInjector creates and returns a new instance of HeaderInjector.
func NewHeaderInjector(next http.RoundTripper, userAgentProvider utils.UserAgentProvider, token string) http.RoundTripper {
	if next == nil {
		next = http.DefaultTransport
	}

	return &HeaderInjector{
		next:              next,
		userAgentProvider: userAgentProvider,
		token:             token,
	}
}

// RoundTrip implements the http.RoundTripper interface.
// The request is cloned before modification, as the RoundTripper contract requires.
func (t *HeaderInjector) RoundTrip(req *http.Request) (*http.Response, error) {
	if req == nil {
		return nil, ErrNilRequest
	}

	needsUserAgent := req.Header.Get(userAgentHeader) == "" && t.userAgentProvider != nil
	needsToken := req.Header.Get(authorizationHeader) == "" && t.token != ""

	if !needsUserAgent && !needsToken {
		return t.next.RoundTrip(req)
	}

	clone := req.Clone(req.Context())

	if needsUserAgent {
		clone.Header.Set(userAgentHeader, t.userAgentProvider.GetUserAgent())
	}

	if needsToken {
		clone.Header.Set(authorizationHeader, bearerPrefix+t.token)
	}

	return t.next.RoundTrip(clone)
}
