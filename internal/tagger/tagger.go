package tagger

//go:generate $MOCKGEN -source=tagger.go -destination=mocks/tagger_mock.go

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/oshokin/hifi-grabber/internal/config"
	"github.com/oshokin/hifi-grabber/internal/logger"
	"github.com/oshokin/hifi-grabber/internal/model"
)

// DefaultTimeout is the hard limit of a single tagging run when none is configured.
const DefaultTimeout = 30 * time.Second

// Tagger produces a tagged copy of an audio file.
// The audio payload is never re-encoded.
type Tagger interface {
	// Tag writes the tagged copy of req.InputPath to req.OutputPath.
	// On failure the output path is left absent.
	Tag(ctx context.Context, req *Request) error
}

// Request contains parameters of a single tagging run.
type Request struct {
	// InputPath is the downloaded audio file. It is never modified.
	InputPath string
	// OutputPath is where the tagged file is written.
	OutputPath string
	// CoverPath is an optional JPEG embedded as the front cover.
	CoverPath string
	// Quality selects the output container.
	Quality model.Quality
	// Metadata holds the tag values; nil writes no tags.
	Metadata *Metadata
}

// New creates the tagger selected by the configuration.
func New(ctx context.Context, cfg *config.Config) Tagger {
	timeout := cfg.ParsedTaggingTimeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	if cfg.Tagger == config.TaggerNative {
		return NewNativeTagger(timeout)
	}

	ffmpegPath := cfg.FFmpegPath
	if ffmpegPath == "" {
		ffmpegPath = config.DefaultFFmpegPath
	}

	if _, err := exec.LookPath(ffmpegPath); err != nil {
		logger.Warnf(ctx, "ffmpeg is not available (%v), files will be saved without tags", err)
	}

	return NewFFmpegTagger(ffmpegPath, timeout)
}

func (r *Request) validate() error {
	if strings.TrimSpace(r.InputPath) == "" {
		return ErrEmptyInputPath
	}

	if strings.TrimSpace(r.OutputPath) == "" {
		return ErrEmptyOutputPath
	}

	if filepath.Clean(r.InputPath) == filepath.Clean(r.OutputPath) {
		return ErrSamePaths
	}

	return nil
}

func (r *Request) hasCover() bool {
	if r.CoverPath == "" {
		return false
	}

	info, err := os.Stat(r.CoverPath)

	return err == nil && info.Mode().IsRegular() && info.Size() > 0
}

func removePartialOutput(ctx context.Context, path string) {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		logger.Warnf(ctx, "Failed to remove partial output %s: %v", path, err)
	}
}
