package app

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/oshokin/hifi-grabber/internal/config"
	"github.com/oshokin/hifi-grabber/internal/logger"
	"github.com/oshokin/hifi-grabber/internal/server"
)

// ExecuteServeCommand runs the HTTP API until ctx is cancelled.
func ExecuteServeCommand(ctx context.Context, cfg *config.Config) {
	c, err := newComponents(ctx, cfg)
	if err != nil {
		logger.Fatalf(ctx, "Failed to start: %v", err)
	}

	srv := server.New(cfg, c.engine, c.client, c.hub, c.registry)
	group, groupCtx := errgroup.WithContext(ctx)

	group.Go(func() error {
		return srv.Run(groupCtx)
	})

	group.Go(func() error {
		<-groupCtx.Done()

		logger.Info(ctx, "Stopping download engine")
		c.close()

		return nil
	})

	if err = group.Wait(); err != nil {
		logger.Fatalf(ctx, "Server failed: %v", err)
	}

	logger.Info(ctx, "Bye")
}
