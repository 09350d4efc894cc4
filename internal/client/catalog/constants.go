package catalog

const (
	// catalogAPISearchURI is the URI path of the search endpoint.
	catalogAPISearchURI = "api/search"
	// catalogAPIAlbumURI is the URI path of the album metadata endpoint.
	catalogAPIAlbumURI = "api/album"
	// catalogAPIStreamURI is the URI path of the stream resolution endpoint.
	catalogAPIStreamURI = "api/stream"
)

// Endpoint names used in errors and metrics.
const (
	EndpointSearch = "search"
	EndpointAlbum  = "album"
	EndpointStream = "stream"
)

const (
	// DefaultSearchLimit is used when a search is made with a non-positive limit.
	DefaultSearchLimit = 25
	// maxSearchLimit caps the page size sent to the catalog.
	maxSearchLimit = 500
	// rateLimitBurst is the burst of the catalog rate limiter.
	rateLimitBurst = 2
)
