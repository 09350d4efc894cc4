package catalog

//go:generate $MOCKGEN -source=client.go -destination=mocks/client_mock.go

import (
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/oshokin/hifi-grabber/internal/config"
	"github.com/oshokin/hifi-grabber/internal/logger"
	"github.com/oshokin/hifi-grabber/internal/metrics"
	"github.com/oshokin/hifi-grabber/internal/model"
	http_transport "github.com/oshokin/hifi-grabber/internal/transport/http"
	"github.com/oshokin/hifi-grabber/internal/utils"
	"github.com/oshokin/hifi-grabber/internal/version"
)

// Client defines the interface for interacting with the catalog API.
type Client interface {
	// Search returns album or track summaries matching the query.
	Search(ctx context.Context, query string, kind model.SearchType, offset, limit int) (*model.SearchResult, error)
	// GetAlbum returns album metadata with its ordered track list.
	GetAlbum(ctx context.Context, albumID string) (*model.Album, error)
	// GetStreamURL resolves a playable URL for the track in the requested quality.
	GetStreamURL(ctx context.Context, trackID string, quality model.Quality) (string, error)
	// FetchStream opens the body of a resolved stream URL.
	FetchStream(ctx context.Context, streamURL string) (*FetchStreamResult, error)
	// DownloadFromURL opens the body of an arbitrary URL, such as a cover image.
	DownloadFromURL(ctx context.Context, url string) (io.ReadCloser, error)
}

// ClientImpl implements the Client interface.
type ClientImpl struct {
	// baseURL is the base URL for API requests.
	baseURL string
	// apiClient is used for catalog API calls and carries the token.
	apiClient *http.Client
	// rawClient is used for stream and cover downloads and never sends the token.
	rawClient *http.Client
	// metrics records catalog request outcomes; may be nil.
	metrics *metrics.Metrics
}

// NewClient creates and returns a new instance of ClientImpl.
func NewClient(cfg *config.Config, m *metrics.Metrics) (Client, error) {
	baseURL, err := url.Parse(cfg.CatalogBaseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid catalog URL: %w", err)
	}

	timeout := cfg.ParsedHTTPTimeout
	if timeout <= 0 {
		timeout = http_transport.DefaultTimeout
	}

	userAgents := utils.NewUserAgentProvider(cfg.UserAgents, version.UserAgent())

	apiTransport := http_transport.NewHeaderInjector(
		http_transport.NewRateLimitTransport(
			http_transport.NewLogTransport(http.DefaultTransport, 0),
			cfg.CatalogRateLimit,
			rateLimitBurst),
		userAgents,
		cfg.AuthToken)

	// Streams may take far longer than the timeout to transfer,
	// so only the wait for response headers is bounded.
	rawBase := &http.Transport{
		Proxy:                 http.ProxyFromEnvironment,
		DialContext:           (&net.Dialer{Timeout: timeout, KeepAlive: 30 * time.Second}).DialContext,
		ForceAttemptHTTP2:     true,
		MaxIdleConns:          100,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   timeout,
		ResponseHeaderTimeout: timeout,
		ExpectContinueTimeout: time.Second,
	}

	rawTransport := http_transport.NewHeaderInjector(
		http_transport.NewLogTransport(rawBase, 0),
		userAgents,
		"")

	return &ClientImpl{
		baseURL:   strings.TrimRight(baseURL.String(), "/"),
		apiClient: &http.Client{Transport: apiTransport, Timeout: timeout},
		rawClient: &http.Client{Transport: rawTransport},
		metrics:   m,
	}, nil
}

// Search returns album or track summaries matching the query.
func (c *ClientImpl) Search(
	ctx context.Context,
	query string,
	kind model.SearchType,
	offset, limit int,
) (*model.SearchResult, error) {
	if !kind.IsValid() {
		kind = model.SearchTypeAlbum
	}

	if offset < 0 {
		offset = 0
	}

	if limit <= 0 {
		limit = DefaultSearchLimit
	}

	limit = min(limit, maxSearchLimit)

	values := url.Values{}
	values.Set("q", query)
	values.Set("type", string(kind))
	values.Set("offset", strconv.Itoa(offset))
	values.Set("limit", strconv.Itoa(limit))

	response, err := fetchJSONWithQuery[SearchResponse](c, ctx, EndpointSearch, catalogAPISearchURI, values)
	if err != nil {
		return nil, err
	}

	result := &model.SearchResult{}

	switch kind {
	case model.SearchTypeTrack:
		result.Tracks = make([]model.Track, 0, len(response.Tracks))
		for i := range response.Tracks {
			result.Tracks = append(result.Tracks, response.Tracks[i].ToModel())
		}
	default:
		result.Albums = make([]model.Album, 0, len(response.Albums))
		for i := range response.Albums {
			result.Albums = append(result.Albums, *response.Albums[i].ToModel())
		}
	}

	logger.Debugf(ctx, "Catalog search %q (%s) returned %d albums and %d tracks",
		query, kind, len(result.Albums), len(result.Tracks))

	return result, nil
}

// GetAlbum returns album metadata with its ordered track list.
func (c *ClientImpl) GetAlbum(ctx context.Context, albumID string) (*model.Album, error) {
	if strings.TrimSpace(albumID) == "" {
		return nil, ErrEmptyID
	}

	values := url.Values{}
	values.Set("albumId", albumID)

	response, err := fetchJSONWithQuery[AlbumResponse](c, ctx, EndpointAlbum, catalogAPIAlbumURI, values)
	if err != nil {
		return nil, err
	}

	if response.Album == nil {
		return nil, &UnavailableError{
			Endpoint:   EndpointAlbum,
			StatusCode: http.StatusOK,
			Err:        fmt.Errorf("album %s missing from response", albumID),
		}
	}

	album := response.Album.ToModel()
	if album.ID == "" {
		album.ID = albumID
	}

	return album, nil
}

// GetStreamURL resolves a playable URL for the track in the requested quality.
func (c *ClientImpl) GetStreamURL(ctx context.Context, trackID string, quality model.Quality) (string, error) {
	if strings.TrimSpace(trackID) == "" {
		return "", ErrEmptyID
	}

	values := url.Values{}
	values.Set("trackId", trackID)
	values.Set("quality", strconv.Itoa(int(quality)))

	response, err := fetchJSONWithQuery[StreamResponse](c, ctx, EndpointStream, catalogAPIStreamURI, values)
	if err != nil {
		return "", err
	}

	streamURL := strings.TrimSpace(response.URL)
	if streamURL == "" {
		return "", &UnavailableError{
			Endpoint:   EndpointStream,
			StatusCode: http.StatusOK,
			Err:        ErrEmptyStreamURL,
		}
	}

	return streamURL, nil
}

// FetchStream opens the body of a resolved stream URL.
func (c *ClientImpl) FetchStream(ctx context.Context, streamURL string) (*FetchStreamResult, error) {
	request, err := http.NewRequestWithContext(ctx, http.MethodGet, streamURL, http.NoBody)
	if err != nil {
		return nil, err
	}

	// Some CDNs only serve audio as a range response.
	request.Header.Set("Range", "bytes=0-")

	response, err := c.rawClient.Do(request)
	if err != nil {
		return nil, err
	}

	if response.StatusCode != http.StatusOK && response.StatusCode != http.StatusPartialContent {
		response.Body.Close() //nolint:errcheck,gosec // Error on close is not critical here.

		return nil, fmt.Errorf("%w: %d", ErrUnexpectedHTTPStatus, response.StatusCode)
	}

	return &FetchStreamResult{
		Body:       response.Body,
		TotalBytes: response.ContentLength,
	}, nil
}

// DownloadFromURL opens the body of an arbitrary URL, such as a cover image.
func (c *ClientImpl) DownloadFromURL(ctx context.Context, url string) (io.ReadCloser, error) {
	request, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
	if err != nil {
		return nil, err
	}

	response, err := c.rawClient.Do(request)
	if err != nil {
		return nil, err
	}

	if response.StatusCode != http.StatusOK {
		response.Body.Close() //nolint:errcheck,gosec // Error on close is not critical here.

		return nil, fmt.Errorf("%w: %d", ErrUnexpectedHTTPStatus, response.StatusCode)
	}

	return response.Body, nil
}
