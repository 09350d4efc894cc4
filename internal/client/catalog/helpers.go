package catalog

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/goccy/go-json"

	"github.com/oshokin/hifi-grabber/internal/logger"
)

// maxErrorBodyLength bounds the part of an error response kept for diagnostics.
const maxErrorBodyLength = 512

// fetchJSONWithQuery calls a catalog endpoint and decodes its JSON payload.
// Every failure is returned as an *UnavailableError.
//
//nolint:revive // Has no sense, it's cause Go doesn't allow struct methods to be generic.
func fetchJSONWithQuery[T any](
	c *ClientImpl,
	ctx context.Context,
	endpoint string,
	uri string,
	query url.Values,
) (*T, error) {
	route, err := url.JoinPath(c.baseURL, uri)
	if err != nil {
		return nil, &UnavailableError{Endpoint: endpoint, Err: err}
	}

	request, err := http.NewRequestWithContext(ctx, http.MethodGet, route, http.NoBody)
	if err != nil {
		return nil, &UnavailableError{Endpoint: endpoint, Err: err}
	}

	if query != nil {
		request.URL.RawQuery = query.Encode()
	}

	request.Header.Set("Accept", "application/json")

	startTime := time.Now()

	response, err := c.apiClient.Do(request)
	if err != nil {
		c.metrics.CatalogRequest(endpoint, 0, time.Since(startTime))

		return nil, &UnavailableError{Endpoint: endpoint, Err: err}
	}

	defer response.Body.Close() //nolint:errcheck // Read-only body.

	c.metrics.CatalogRequest(endpoint, response.StatusCode, time.Since(startTime))

	if response.StatusCode < http.StatusOK || response.StatusCode >= http.StatusMultipleChoices {
		excerpt, _ := io.ReadAll(io.LimitReader(response.Body, maxErrorBodyLength))
		logger.Debugf(ctx, "Catalog %s endpoint returned HTTP %d: %s", endpoint, response.StatusCode, excerpt)

		return nil, &UnavailableError{
			Endpoint:   endpoint,
			StatusCode: response.StatusCode,
			Err:        fmt.Errorf("%w: %d", ErrUnexpectedHTTPStatus, response.StatusCode),
		}
	}

	var result T
	if err = json.NewDecoder(response.Body).Decode(&result); err != nil {
		if errors.Is(err, io.EOF) {
			err = io.ErrUnexpectedEOF
		}

		return nil, &UnavailableError{
			Endpoint:   endpoint,
			StatusCode: response.StatusCode,
			Err:        fmt.Errorf("failed to decode response: %w", err),
		}
	}

	return &result, nil
}
