package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/oshokin/hifi-grabber/internal/client/catalog"
	"github.com/oshokin/hifi-grabber/internal/config"
	"github.com/oshokin/hifi-grabber/internal/logger"
	"github.com/oshokin/hifi-grabber/internal/notifier"
	"github.com/oshokin/hifi-grabber/internal/service/download"
)

const (
	readHeaderTimeout = 10 * time.Second
	shutdownTimeout   = 10 * time.Second
)

// Server serves the HTTP API.
type Server struct {
	cfg     *config.Config
	engine  download.Engine
	client  catalog.Client
	hub     *notifier.Hub
	router  *gin.Engine
	address string
}

// New builds the router. gatherer may be nil, in which case /metrics is not served.
func New(
	cfg *config.Config,
	engine download.Engine,
	client catalog.Client,
	hub *notifier.Hub,
	gatherer prometheus.Gatherer,
) *Server {
	address := cfg.ListenAddress
	if address == "" {
		address = config.DefaultListenAddress
	}

	s := &Server{
		cfg:     cfg,
		engine:  engine,
		client:  client,
		hub:     hub,
		router:  gin.New(),
		address: address,
	}

	s.router.Use(gin.Recovery(), requestLogger(), newCORS(cfg.CORSAllowedOrigins))
	s.setupRoutes(gatherer)

	return s
}

// Handler returns the root HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Run serves until ctx is cancelled and then shuts the server down.
func (s *Server) Run(ctx context.Context) error {
	httpServer := &http.Server{
		Addr:              s.address,
		Handler:           s.router,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	errCh := make(chan error, 1)

	go func() {
		logger.Infof(ctx, "HTTP server listening on %s", s.address)

		errCh <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return err
	}

	if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	logger.Info(ctx, "HTTP server stopped")

	return nil
}

func (s *Server) setupRoutes(gatherer prometheus.Gatherer) {
	s.router.GET("/healthz", s.health)
	s.router.GET("/ws", s.streamEvents)

	if gatherer != nil {
		s.router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))
	}

	api := s.router.Group("/api")
	{
		api.GET("/search", s.search)
		api.GET("/albums/:id", s.album)
		api.GET("/qualities", s.qualities)
		api.GET("/history", s.history)

		downloads := api.Group("/downloads")
		{
			downloads.GET("", s.listDownloads)
			downloads.GET("/:id", s.getDownload)
			downloads.POST("/track", s.submitTrack)
			downloads.POST("/album", s.submitAlbum)
			downloads.DELETE("/:id", s.cancelDownload)
		}
	}
}
