package cmd

import (
	"github.com/spf13/cobra"

	"github.com/oshokin/hifi-grabber/internal/app"
)

var (
	//nolint:gochecknoglobals // Cobra command requires a global definition.
	authCmd = &cobra.Command{
		Use:   "auth",
		Short: "Authentication management commands",
		Long: `Manage authentication for the catalog.

Use 'auth set-token' to store the catalog token in the configuration file.`,
	}

	//nolint:gochecknoglobals // Cobra command requires a global definition.
	authSetTokenCmd = &cobra.Command{
		Use:   "set-token <token>",
		Short: "Save the catalog authentication token",
		Long: `Saves the token to the configuration file as 'auth_token'.

The rest of the file is preserved, including key order. The file is created
if it doesn't exist.`,
		Args: cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			app.ExecuteAuthSetTokenCommand(cmd.Context(), appConfig, args[0])
		},
	}
)

//nolint:gochecknoinits // Cobra requires the init function to set up commands.
func init() {
	authCmd.AddCommand(authSetTokenCmd)
	rootCmd.AddCommand(authCmd)
}
