package server

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/samber/lo"

	"github.com/oshokin/hifi-grabber/internal/logger"
)

const wildcardOrigin = "*"

// requestLogger logs every request at debug level and failures at warn level.
func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		ctx := c.Request.Context()
		kvs := []any{
			"method", c.Request.Method,
			"path", c.FullPath(),
			"status", c.Writer.Status(),
			"duration", time.Since(start),
		}

		if c.Writer.Status() >= 500 {
			logger.WarnKV(ctx, "HTTP request failed", kvs...)

			return
		}

		logger.DebugKV(ctx, "HTTP request", kvs...)
	}
}

func newCORS(origins []string) gin.HandlerFunc {
	cfg := cors.DefaultConfig()
	cfg.AllowMethods = []string{"GET", "POST", "DELETE", "OPTIONS"}
	cfg.AllowHeaders = []string{"Origin", "Content-Type", "Authorization"}

	if allowAnyOrigin(origins) {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = origins
	}

	return cors.New(cfg)
}

func allowAnyOrigin(origins []string) bool {
	return len(origins) == 0 || lo.Contains(origins, wildcardOrigin)
}
