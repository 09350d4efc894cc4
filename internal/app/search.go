package app

import (
	"context"
	"fmt"
	"time"

	"github.com/oshokin/hifi-grabber/internal/client/catalog"
	"github.com/oshokin/hifi-grabber/internal/config"
	"github.com/oshokin/hifi-grabber/internal/logger"
	"github.com/oshokin/hifi-grabber/internal/model"
)

// ExecuteSearchCommand prints catalog entries matching the query.
func ExecuteSearchCommand(ctx context.Context, cfg *config.Config, query string, kind model.SearchType, limit int) {
	client, err := catalog.NewClient(cfg, nil)
	if err != nil {
		logger.Fatalf(ctx, "Failed to initialize catalog client: %v", err)
	}

	result, err := client.Search(ctx, query, kind, 0, limit)
	if err != nil {
		logger.Fatalf(ctx, "Search failed: %v", err)
	}

	for _, line := range formatSearchResult(result) {
		logger.Info(ctx, line)
	}
}

func formatSearchResult(result *model.SearchResult) []string {
	if len(result.Albums) == 0 && len(result.Tracks) == 0 {
		return []string{"Nothing found"}
	}

	lines := make([]string, 0, len(result.Albums)+len(result.Tracks))

	for i := range result.Albums {
		album := &result.Albums[i]

		line := fmt.Sprintf("[album %s] %s - %s", album.ID, album.Artist, album.Title)
		if year, ok := album.ReleaseYear(); ok {
			line += fmt.Sprintf(" (%d)", year)
		}

		if len(album.Tracks) > 0 {
			line += fmt.Sprintf(", %d tracks", len(album.Tracks))
		}

		lines = append(lines, line)
	}

	for i := range result.Tracks {
		track := &result.Tracks[i]

		line := fmt.Sprintf("[track %s] %s - %s", track.ID, track.Artist, track.Title)
		if track.AlbumTitle != "" {
			line += " / " + track.AlbumTitle
		}

		if track.Duration > 0 {
			line += fmt.Sprintf(" [%s]", time.Duration(track.Duration)*time.Second)
		}

		lines = append(lines, line)
	}

	return lines
}
