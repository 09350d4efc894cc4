package app

import (
	"context"
	"strings"

	"github.com/oshokin/hifi-grabber/internal/config"
	"github.com/oshokin/hifi-grabber/internal/logger"
)

// ExecuteAuthSetTokenCommand stores the catalog token in the configuration file.
func ExecuteAuthSetTokenCommand(ctx context.Context, cfg *config.Config, token string) {
	token = strings.TrimSpace(token)
	if token == "" {
		logger.Fatal(ctx, "Token cannot be empty")
	}

	cfg.AuthToken = token

	if err := config.SaveConfig(cfg); err != nil {
		logger.Fatalf(ctx, "Failed to save configuration: %v", err)
	}

	logger.Info(ctx, "Configuration updated successfully!")
}
