package cmd

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/oshokin/hifi-grabber/internal/app"
	"github.com/oshokin/hifi-grabber/internal/logger"
	"github.com/oshokin/hifi-grabber/internal/model"
)

//nolint:gochecknoglobals // Cobra command requires a global definition.
var searchCmd = &cobra.Command{
	Use:   "search [flags] {query}",
	Short: "Search the catalog for albums or tracks",
	Args:  cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		prepareConfig(cmd)

		searchType, _ := cmd.Flags().GetString("type")
		limit, _ := cmd.Flags().GetInt("limit")

		kind := model.SearchType(strings.ToLower(searchType))
		if !kind.IsValid() {
			logger.Fatalf(cmd.Context(), "Unknown search type: %s", searchType)
		}

		app.ExecuteSearchCommand(cmd.Context(), appConfig, strings.Join(args, " "), kind, limit)
	},
}

//nolint:gochecknoinits // Cobra requires the init function to set up flags before the command is executed.
func init() {
	searchCmd.Flags().StringP("type", "t", string(model.SearchTypeAlbum), "what to search for: album or track.")
	searchCmd.Flags().IntP("limit", "n", 0, "maximum number of results (default is the catalog's page size).")

	rootCmd.AddCommand(searchCmd)
}
