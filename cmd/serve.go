package cmd

import (
	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"github.com/oshokin/hifi-grabber/internal/app"
	"github.com/oshokin/hifi-grabber/internal/logger"
)

//nolint:gochecknoglobals // Cobra command requires a global definition.
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API and the download engine",
	Long: `Starts the download engine and an HTTP server exposing:
- the REST API under /api
- a WebSocket feed of job events at /ws
- Prometheus metrics at /metrics

The server stops gracefully on SIGINT or SIGTERM.`,
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, _ []string) {
		prepareConfig(cmd)

		if !logger.IsDebugLevel() {
			gin.SetMode(gin.ReleaseMode)
		}

		app.ExecuteServeCommand(cmd.Context(), appConfig)
	},
}

//nolint:gochecknoinits // Cobra requires the init function to set up flags before the command is executed.
func init() {
	addDownloadFlags(serveCmd.Flags())

	serveCmd.Flags().StringP(
		"listen",
		"l",
		"",
		"address of the HTTP server, for example: :8080.")

	rootCmd.AddCommand(serveCmd)
}
