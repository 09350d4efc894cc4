// Package http provides the http.RoundTripper chain used for catalog requests:
// header injection (User-Agent and bearer token), client-side rate limiting,
// and debug dumps of requests and responses with secrets redacted.
package http
