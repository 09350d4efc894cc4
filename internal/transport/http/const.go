package http

import "time"

const (
	// DefaultTimeout is the default timeout duration for HTTP requests.
	DefaultTimeout = 30 * time.Second

	// userAgentHeader is the HTTP header name for User-Agent.
	userAgentHeader = "User-Agent"
	// authorizationHeader is the HTTP header carrying the catalog token.
	authorizationHeader = "Authorization"
	// bearerPrefix precedes the token in the Authorization header.
	bearerPrefix = "Bearer "
	// redactedValue replaces secrets in debug dumps.
	redactedValue = "[REDACTED]"
)
