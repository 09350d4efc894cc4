package cmd

import (
	"github.com/spf13/cobra"

	"github.com/oshokin/hifi-grabber/internal/app"
)

//nolint:gochecknoglobals // Cobra command requires a global definition.
var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show finished downloads, newest first",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, _ []string) {
		prepareConfig(cmd)

		limit, _ := cmd.Flags().GetInt("limit")

		app.ExecuteHistoryCommand(cmd.Context(), appConfig, limit)
	},
}

//nolint:gochecknoinits // Cobra requires the init function to set up flags before the command is executed.
func init() {
	historyCmd.Flags().IntP("limit", "n", 20, "number of records to show, 0 shows all.")

	rootCmd.AddCommand(historyCmd)
}
