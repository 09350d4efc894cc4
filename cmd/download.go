package cmd

import (
	"github.com/spf13/cobra"

	"github.com/oshokin/hifi-grabber/internal/app"
	"github.com/oshokin/hifi-grabber/internal/model"
)

var (
	//nolint:gochecknoglobals // Cobra command requires a global definition.
	downloadCmd = &cobra.Command{
		Use:   "download",
		Short: "Download tracks or albums",
	}

	//nolint:gochecknoglobals // Cobra command requires a global definition.
	downloadTrackCmd = &cobra.Command{
		Use:   "track [flags] {track IDs}",
		Short: "Download single tracks",
		Long: `Downloads the given tracks into the library.

Without --album the files are named after the track IDs, because the catalog
has no single-track metadata lookup. With --album the album's metadata is used
for naming and tagging.`,
		Args: cobra.MinimumNArgs(1),
		Run: func(cmd *cobra.Command, ids []string) {
			prepareConfig(cmd)

			albumID, _ := cmd.Flags().GetString("album")

			app.ExecuteDownloadCommand(cmd.Context(), appConfig, &app.DownloadRequest{
				Kind:    model.JobKindTrack,
				IDs:     ids,
				AlbumID: albumID,
			})
		},
	}

	//nolint:gochecknoglobals // Cobra command requires a global definition.
	downloadAlbumCmd = &cobra.Command{
		Use:   "album [flags] {album IDs}",
		Short: "Download whole albums",
		Long: `Downloads every track of the given albums.

Tracks are staged in the temp folder and the album folder appears in the library
only once the album is finished. Failed tracks don't fail the album.`,
		Args: cobra.MinimumNArgs(1),
		Run: func(cmd *cobra.Command, ids []string) {
			prepareConfig(cmd)

			app.ExecuteDownloadCommand(cmd.Context(), appConfig, &app.DownloadRequest{
				Kind: model.JobKindAlbum,
				IDs:  ids,
			})
		},
	}
)

//nolint:gochecknoinits // Cobra requires the init function to set up flags before the command is executed.
func init() {
	addDownloadFlags(downloadTrackCmd.Flags())
	addDownloadFlags(downloadAlbumCmd.Flags())

	downloadTrackCmd.Flags().StringP(
		"album",
		"a",
		"",
		"album ID whose metadata names and tags the tracks.")

	downloadCmd.AddCommand(downloadTrackCmd, downloadAlbumCmd)
	rootCmd.AddCommand(downloadCmd)
}
