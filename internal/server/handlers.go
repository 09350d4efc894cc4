package server

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/samber/lo"

	"github.com/oshokin/hifi-grabber/internal/client/catalog"
	"github.com/oshokin/hifi-grabber/internal/model"
	"github.com/oshokin/hifi-grabber/internal/service/download"
	"github.com/oshokin/hifi-grabber/internal/version"
)

// Static error definitions for better error handling.
var (
	// ErrEmptyQuery indicates a search without the "q" parameter.
	ErrEmptyQuery = errors.New("query parameter 'q' is required")
	// ErrInvalidSearchType indicates an unsupported "type" parameter.
	ErrInvalidSearchType = errors.New("type parameter must be 'album' or 'track'")
	// ErrInvalidNumber indicates a malformed numeric query parameter.
	ErrInvalidNumber = errors.New("invalid numeric parameter")
	// ErrJobNotFound indicates an unknown job ID.
	ErrJobNotFound = errors.New("job not found")
)

// submitResponse is returned for an accepted submission.
type submitResponse struct {
	JobID string `json:"jobId"`
}

// errorResponse is the body of every failed request.
type errorResponse struct {
	Error string `json:"error"`
	// UpstreamStatus is the catalog's HTTP status, when the failure came from it.
	UpstreamStatus int `json:"upstreamStatus,omitempty"`
}

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "ok",
		"version":   version.Short(),
		"timestamp": time.Now().Unix(),
	})
}

func (s *Server) search(c *gin.Context) {
	query := strings.TrimSpace(c.Query("q"))
	if query == "" {
		writeError(c, http.StatusBadRequest, ErrEmptyQuery)

		return
	}

	kind := model.SearchType(c.DefaultQuery("type", string(model.SearchTypeAlbum)))
	if !kind.IsValid() {
		writeError(c, http.StatusBadRequest, ErrInvalidSearchType)

		return
	}

	offset, err := intQuery(c, "offset", 0)
	if err != nil {
		writeError(c, http.StatusBadRequest, err)

		return
	}

	limit, err := intQuery(c, "limit", catalog.DefaultSearchLimit)
	if err != nil {
		writeError(c, http.StatusBadRequest, err)

		return
	}

	result, err := s.client.Search(c.Request.Context(), query, kind, offset, limit)
	if err != nil {
		writeCatalogError(c, err)

		return
	}

	c.JSON(http.StatusOK, result)
}

func (s *Server) album(c *gin.Context) {
	album, err := s.client.GetAlbum(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeCatalogError(c, err)

		return
	}

	c.JSON(http.StatusOK, album)
}

func (s *Server) qualities(c *gin.Context) {
	c.JSON(http.StatusOK, model.Qualities())
}

func (s *Server) history(c *gin.Context) {
	records := s.engine.History()

	limit, err := intQuery(c, "limit", len(records))
	if err != nil {
		writeError(c, http.StatusBadRequest, err)

		return
	}

	c.JSON(http.StatusOK, lo.Slice(records, 0, limit))
}

func (s *Server) listDownloads(c *gin.Context) {
	c.JSON(http.StatusOK, s.engine.Active())
}

func (s *Server) getDownload(c *gin.Context) {
	job, ok := s.engine.Job(c.Param("id"))
	if !ok {
		writeError(c, http.StatusNotFound, ErrJobNotFound)

		return
	}

	c.JSON(http.StatusOK, job)
}

func (s *Server) submitTrack(c *gin.Context) {
	var req download.TrackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, err)

		return
	}

	jobID, err := s.engine.SubmitTrack(c.Request.Context(), &req)
	if err != nil {
		writeSubmitError(c, err)

		return
	}

	c.JSON(http.StatusAccepted, submitResponse{JobID: jobID})
}

func (s *Server) submitAlbum(c *gin.Context) {
	var req download.AlbumRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, err)

		return
	}

	jobID, err := s.engine.SubmitAlbum(c.Request.Context(), &req)
	if err != nil {
		writeSubmitError(c, err)

		return
	}

	c.JSON(http.StatusAccepted, submitResponse{JobID: jobID})
}

func (s *Server) cancelDownload(c *gin.Context) {
	if !s.engine.Cancel(c.Param("id")) {
		writeError(c, http.StatusNotFound, ErrJobNotFound)

		return
	}

	c.Status(http.StatusNoContent)
}

func intQuery(c *gin.Context, key string, fallback int) (int, error) {
	raw, ok := c.GetQuery(key)
	if !ok || raw == "" {
		return fallback, nil
	}

	value, err := strconv.Atoi(raw)
	if err != nil || value < 0 {
		return 0, fmt.Errorf("%w: %s=%q", ErrInvalidNumber, key, raw)
	}

	return value, nil
}

func writeError(c *gin.Context, status int, err error) {
	c.AbortWithStatusJSON(status, errorResponse{Error: err.Error()})
}

// writeCatalogError maps catalog failures to 502 and carries the upstream status.
func writeCatalogError(c *gin.Context, err error) {
	if errors.Is(err, catalog.ErrEmptyID) {
		writeError(c, http.StatusBadRequest, err)

		return
	}

	c.AbortWithStatusJSON(http.StatusBadGateway, errorResponse{
		Error:          err.Error(),
		UpstreamStatus: catalog.StatusCodeOf(err),
	})
}

func writeSubmitError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, download.ErrEmptyTrackID), errors.Is(err, download.ErrEmptyAlbumID):
		writeError(c, http.StatusBadRequest, err)
	case errors.Is(err, download.ErrEngineClosed):
		writeError(c, http.StatusServiceUnavailable, err)
	default:
		writeError(c, http.StatusInternalServerError, err)
	}
}
