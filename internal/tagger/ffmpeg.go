package tagger

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"github.com/oshokin/hifi-grabber/internal/logger"
	"github.com/oshokin/hifi-grabber/internal/model"
)

const (
	// waitDelay bounds how long Wait blocks on output pipes after the process is killed.
	waitDelay = 2 * time.Second
	// maxStderrExcerpt is the number of trailing stderr bytes kept in errors.
	maxStderrExcerpt = 512
)

// FFmpegTagger tags files by remuxing them with an external ffmpeg binary.
type FFmpegTagger struct {
	// binaryPath is the ffmpeg executable.
	binaryPath string
	// timeout is the hard limit of a single run.
	timeout time.Duration
}

// NewFFmpegTagger creates a tagger that runs the given ffmpeg binary.
func NewFFmpegTagger(binaryPath string, timeout time.Duration) *FFmpegTagger {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	return &FFmpegTagger{
		binaryPath: binaryPath,
		timeout:    timeout,
	}
}

// Tag copies the audio stream of the input into the output with metadata and an optional cover.
func (t *FFmpegTagger) Tag(ctx context.Context, req *Request) error {
	if err := req.validate(); err != nil {
		return err
	}

	runCtx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()

	var stderr bytes.Buffer

	cmd := exec.CommandContext(runCtx, t.binaryPath, t.buildArgs(req)...)
	cmd.Stderr = &stderr
	cmd.WaitDelay = waitDelay

	startTime := time.Now()

	err := cmd.Run()
	if err == nil {
		logger.Debugf(ctx, "Tagged %s in %s", req.OutputPath, time.Since(startTime))

		return nil
	}

	removePartialOutput(ctx, req.OutputPath)

	switch {
	case ctx.Err() != nil:
		return fmt.Errorf("%w: %w", ErrTaggingFailed, ctx.Err())
	case errors.Is(runCtx.Err(), context.DeadlineExceeded):
		return fmt.Errorf("%w after %s", ErrTaggingTimeout, t.timeout)
	default:
		return fmt.Errorf("%w: %w: %s", ErrTaggingFailed, err, stderrExcerpt(stderr.String()))
	}
}

func (t *FFmpegTagger) buildArgs(req *Request) []string {
	container := req.Quality.Container()
	hasCover := req.hasCover()

	args := []string{"-hide_banner", "-nostdin", "-loglevel", "error", "-y", "-i", req.InputPath}

	if hasCover {
		args = append(args, "-i", req.CoverPath)
	}

	args = append(args, "-map", "0:a")

	if hasCover {
		args = append(args,
			"-map", "1:v",
			"-disposition:v", "attached_pic",
			"-metadata:s:v", "title=Album cover",
			"-metadata:s:v", "comment=Cover (front)")
	}

	args = append(args, "-c", "copy")

	for _, field := range req.Metadata.Fields(container) {
		args = append(args, "-metadata", field.Key+"="+field.Value)
	}

	if container == model.ContainerMP3 {
		args = append(args, "-id3v2_version", "3")
	}

	return append(args, "-f", container, req.OutputPath)
}

func stderrExcerpt(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return "no output"
	}

	if len(s) > maxStderrExcerpt {
		s = "..." + s[len(s)-maxStderrExcerpt:]
	}

	return s
}
