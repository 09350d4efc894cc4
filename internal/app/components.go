package app

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/oshokin/hifi-grabber/internal/client/catalog"
	"github.com/oshokin/hifi-grabber/internal/config"
	"github.com/oshokin/hifi-grabber/internal/constants"
	"github.com/oshokin/hifi-grabber/internal/history"
	"github.com/oshokin/hifi-grabber/internal/logger"
	"github.com/oshokin/hifi-grabber/internal/metrics"
	"github.com/oshokin/hifi-grabber/internal/notifier"
	"github.com/oshokin/hifi-grabber/internal/service/download"
	"github.com/oshokin/hifi-grabber/internal/tagger"
)

// ErrPathNotWritable indicates that a storage location can't be written to.
var ErrPathNotWritable = errors.New("path is not writable")

// components holds the long-lived objects shared by the commands.
type components struct {
	registry *prometheus.Registry
	client   catalog.Client
	hub      *notifier.Hub
	engine   download.Engine
}

func newComponents(ctx context.Context, cfg *config.Config) (*components, error) {
	for _, dir := range []string{cfg.LibraryPath, cfg.TempPath, filepath.Dir(cfg.HistoryPath)} {
		if err := ensureWritableDir(dir); err != nil {
			return nil, err
		}
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	m := metrics.New(registry)

	client, err := catalog.NewClient(cfg, m)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize catalog client: %w", err)
	}

	store, err := history.NewFileStore(cfg.HistoryPath, cfg.HistoryLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to load history: %w", err)
	}

	hub := notifier.NewHub(m)

	engine, err := download.NewEngine(cfg, client, tagger.New(ctx, cfg), store, hub, m)
	if err != nil {
		hub.Close()

		return nil, fmt.Errorf("failed to initialize download engine: %w", err)
	}

	return &components{
		registry: registry,
		client:   client,
		hub:      hub,
		engine:   engine,
	}, nil
}

// close stops the engine first so that its final events still reach listeners.
func (c *components) close() {
	c.engine.Close()
	c.hub.Close()
}

// ensureWritableDir creates dir and checks that a file can be created inside it.
func ensureWritableDir(dir string) error {
	if err := os.MkdirAll(dir, constants.DefaultFolderPermissions); err != nil {
		return fmt.Errorf("%w: %s: %w", ErrPathNotWritable, dir, err)
	}

	probe, err := os.CreateTemp(dir, ".hifi-grabber-*"+constants.ExtensionTemp)
	if err != nil {
		return fmt.Errorf("%w: %s: %w", ErrPathNotWritable, dir, err)
	}

	name := probe.Name()

	_ = probe.Close()

	if err = os.Remove(name); err != nil {
		logger.Warnf(context.Background(), "Failed to remove %s: %v", name, err)
	}

	return nil
}
