// Package catalog provides a client for the music catalog REST API:
// album and track search, album metadata with track lists, stream URL
// resolution, and raw fetches of stream and cover URLs.
// The client never retries or caches; callers decide how to recover.
// Any non-2xx response or undecodable payload is reported as an
// *UnavailableError matching ErrCatalogUnavailable.
package catalog
