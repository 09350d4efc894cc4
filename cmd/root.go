package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/oshokin/hifi-grabber/internal/config"
	"github.com/oshokin/hifi-grabber/internal/logger"
	"github.com/oshokin/hifi-grabber/internal/version"
)

var (
	//nolint:gochecknoglobals // It is required for configuration initialization before the application starts.
	configFilenameFromFlag string

	//nolint:gochecknoglobals,lll // It is initialized once during the application's startup and shared across the command execution logic.
	appConfig *config.Config

	//nolint:gochecknoglobals,lll // Cobra command requires a global definition for proper command-line parsing and execution.
	rootCmd = &cobra.Command{
		Use:   "hifi-grabber",
		Short: "Download lossless tracks and albums from a streaming catalog.",
		Long: `HiFi Grabber downloads tracks and whole albums from a streaming catalog,
tags them with metadata and cover art and files them into a music library.

It runs either as a one-shot CLI ("download") or as an HTTP service ("serve")
with a REST API and a WebSocket feed of job progress.`,
		Version:          version.Short(),
		PersistentPreRun: initConfig,
	}
)

// Execute executes the root command.
func Execute() {
	signals := []os.Signal{syscall.SIGHUP, syscall.SIGINT, syscall.SIGTERM}
	ctx, stop := signal.NotifyContext(context.Background(), signals...)

	defer func() {
		_ = logger.Logger().Sync()
	}()

	defer stop()

	go func() {
		defer stop()

		err := rootCmd.ExecuteContext(ctx)
		cobra.CheckErr(err)
	}()

	<-ctx.Done()
}

//nolint:gochecknoinits // Cobra requires the init function to set up flags before the command is executed.
func init() {
	rootCmd.PersistentFlags().StringVarP(
		&configFilenameFromFlag,
		"config",
		"c",
		"",
		fmt.Sprintf("path to the configuration file (default is '%s')",
			config.DefaultConfigFilename))
}

func initConfig(cmd *cobra.Command, _ []string) {
	var err error

	appConfig, err = config.LoadConfig(configFilenameFromFlag)
	if err != nil {
		logger.Fatalf(cmd.Context(), "Failed to load configuration: %v", err)
	}
}

// prepareConfig applies the command's flags, validates the configuration and sets up logging.
func prepareConfig(cmd *cobra.Command) {
	if err := bindFlagsToConfig(cmd.Flags(), appConfig); err != nil {
		logger.Fatalf(cmd.Context(), "Invalid configuration: %v", err)
	}

	configureLogger(appConfig)
}

// addDownloadFlags registers the flags shared by the commands that download audio.
func addDownloadFlags(flags *pflag.FlagSet) {
	flags.IntP(
		"quality",
		"q",
		0,
		"audio quality: 5 = MP3 320k, 6 = FLAC 16-bit/44.1kHz, 7 = FLAC 24-bit/96kHz, 27 = FLAC 24-bit/192kHz.")

	flags.StringP(
		"output",
		"o",
		"",
		"library directory to save downloaded files (the path will be created if it doesn’t exist).")

	flags.StringP(
		"speed-limit",
		"s",
		"",
		"set download speed limit, for example: 500 kbps, 1 mbps, 1.5 mbps.")

	flags.String(
		"tagger",
		"",
		"tagging backend: ffmpeg or native.")
}

func bindFlagsToConfig(flags *pflag.FlagSet, cfg *config.Config) error {
	if flag := flags.Lookup("quality"); flag != nil && flag.Changed {
		cfg.Quality, _ = flags.GetInt("quality")
	}

	if flag := flags.Lookup("output"); flag != nil && flag.Changed {
		cfg.LibraryPath, _ = flags.GetString("output")
	}

	if flag := flags.Lookup("speed-limit"); flag != nil && flag.Changed {
		cfg.DownloadSpeedLimit, _ = flags.GetString("speed-limit")
	}

	if flag := flags.Lookup("tagger"); flag != nil && flag.Changed {
		cfg.Tagger, _ = flags.GetString("tagger")
	}

	if flag := flags.Lookup("listen"); flag != nil && flag.Changed {
		cfg.ListenAddress, _ = flags.GetString("listen")
	}

	return config.ValidateConfig(cfg)
}

func configureLogger(cfg *config.Config) {
	logger.SetLevel(cfg.ParsedLogLevel)

	if cfg.LogFile == "" {
		return
	}

	logger.SetLogger(logger.NewWithFile(nil, &logger.FileOptions{
		Path:       cfg.LogFile,
		MaxSizeMB:  cfg.LogMaxSizeMB,
		MaxBackups: cfg.LogMaxBackups,
		MaxAgeDays: cfg.LogMaxAgeDays,
	}))
}
