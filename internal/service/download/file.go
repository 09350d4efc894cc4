package download

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"

	"github.com/oshokin/hifi-grabber/internal/constants"
	"github.com/oshokin/hifi-grabber/internal/logger"
	"github.com/oshokin/hifi-grabber/internal/tagger"
	"github.com/oshokin/hifi-grabber/internal/utils"
)

// createNewFileOptions creates a file and fails if it already exists.
const createNewFileOptions = os.O_CREATE | os.O_EXCL | os.O_WRONLY

// downloadToFile streams the resolved URL into a new file at path.
func (e *EngineImpl) downloadToFile(ctx context.Context, streamURL, path string) (int64, error) {
	fetchResult, err := e.client.FetchStream(ctx, streamURL)
	if err != nil {
		return 0, fmt.Errorf("failed to fetch stream: %w", err)
	}

	defer fetchResult.Body.Close() //nolint:errcheck // Error on close is not critical here.

	f, err := os.OpenFile(filepath.Clean(path), createNewFileOptions, constants.DefaultFilePermissions)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrTempIOFailure, err)
	}

	written, err := e.copyStream(ctx, f, fetchResult.Body)
	if closeErr := f.Close(); err == nil {
		err = closeErr
	}

	if err != nil {
		if ctx.Err() != nil {
			return written, ctx.Err()
		}

		return written, fmt.Errorf("%w: failed to write file: %w", ErrTempIOFailure, err)
	}

	// Unknown length is reported as -1.
	if fetchResult.TotalBytes >= 0 && written != fetchResult.TotalBytes {
		return written, fmt.Errorf(
			"%w: %w: wrote %d bytes, expected %d bytes",
			ErrTempIOFailure,
			ErrIncompleteDownload,
			written,
			fetchResult.TotalBytes,
		)
	}

	e.metrics.BytesDownloaded(written)
	logger.Debugf(ctx, "Downloaded %s to %s", humanize.IBytes(uint64(max(written, 0))), path) //nolint:gosec // Non-negative.

	return written, nil
}

// copyStream copies src into dst, honoring the configured speed limit.
func (e *EngineImpl) copyStream(ctx context.Context, dst io.Writer, src io.Reader) (int64, error) {
	limit := e.cfg.ParsedDownloadSpeedLimit
	if limit <= 0 {
		return io.Copy(dst, src)
	}

	var written int64

	for {
		n, err := io.CopyN(dst, src, limit)
		written += n

		if errors.Is(err, io.EOF) {
			return written, nil
		}

		if err != nil {
			return written, err
		}

		// Throttle to respect speed limit.
		select {
		case <-ctx.Done():
			return written, ctx.Err()
		case <-time.After(time.Second):
		}
	}
}

// tagOrCopy tags the input into the output and falls back to a raw copy when tagging fails.
func (e *EngineImpl) tagOrCopy(ctx context.Context, req *tagger.Request) error {
	tagErr := e.tagger.Tag(ctx, req)
	if tagErr == nil {
		return nil
	}

	if ctx.Err() != nil {
		return ctx.Err()
	}

	logger.Warnf(ctx, "Tagging %s failed, saving it without tags: %v", filepath.Base(req.OutputPath), tagErr)
	e.metrics.TaggingFallback()

	if _, err := utils.CopyFile(req.InputPath, req.OutputPath); err != nil {
		removeFile(ctx, req.OutputPath)

		return fmt.Errorf("%w: %w (tagging: %w)", ErrFallbackCopyFailed, err, tagErr)
	}

	return nil
}

// ensureCover makes sure folder holds the cover image and returns its path.
// Failures are logged and yield an empty path: a missing cover never fails a job.
// The existence check and the write are not atomic; concurrent writers produce the same file.
func (e *EngineImpl) ensureCover(ctx context.Context, folder, coverURL string) string {
	coverPath := filepath.Join(folder, constants.CoverFilename)

	isExist, err := utils.IsFileExist(coverPath)
	if err != nil {
		logger.Warnf(ctx, "Failed to check cover %s: %v", coverPath, err)

		return ""
	}

	if isExist {
		return coverPath
	}

	if coverURL == "" {
		return ""
	}

	data, err := e.fetchCover(ctx, coverURL)
	if err != nil {
		logger.Warnf(ctx, "Failed to download cover %s: %v", coverURL, err)

		return ""
	}

	tempPath := coverPath + "." + uuid.NewString() + constants.ExtensionTemp
	if err = os.WriteFile(tempPath, data, constants.DefaultFilePermissions); err != nil {
		removeFile(ctx, tempPath)
		logger.Warnf(ctx, "Failed to save cover %s: %v", coverPath, err)

		return ""
	}

	if err = os.Rename(tempPath, coverPath); err != nil {
		removeFile(ctx, tempPath)
		logger.Warnf(ctx, "Failed to save cover %s: %v", coverPath, err)

		return ""
	}

	return coverPath
}

func (e *EngineImpl) fetchCover(ctx context.Context, coverURL string) ([]byte, error) {
	if data, ok := e.covers.Get(coverURL); ok {
		return data, nil
	}

	body, err := e.client.DownloadFromURL(ctx, coverURL)
	if err != nil {
		return nil, err
	}

	defer body.Close() //nolint:errcheck // Read-only body.

	var buf bytes.Buffer
	if _, err = io.Copy(&buf, body); err != nil {
		return nil, err
	}

	data := buf.Bytes()
	e.covers.Add(coverURL, data)

	return data, nil
}

// promote moves the staged album folder into the library.
// When the rename fails, the tree is copied instead; the staging folder is removed by the caller.
func promote(ctx context.Context, stagingDir, finalDir string) error {
	if err := os.MkdirAll(filepath.Dir(finalDir), constants.DefaultFolderPermissions); err != nil {
		return fmt.Errorf("%w: %w", ErrMoveFailed, err)
	}

	renameErr := os.Rename(stagingDir, finalDir)
	if renameErr == nil {
		return nil
	}

	logger.Debugf(ctx, "Rename of %s failed, copying instead: %v", stagingDir, renameErr)

	if err := utils.CopyDir(stagingDir, finalDir); err != nil {
		return fmt.Errorf("%w: %w (copy fallback: %w)", ErrMoveFailed, renameErr, err)
	}

	return nil
}

func removeFile(ctx context.Context, path string) {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		logger.Warnf(ctx, "Failed to remove temporary file %s: %v", path, err)
	}
}

func removeDir(ctx context.Context, path string) {
	if err := os.RemoveAll(path); err != nil {
		logger.Warnf(ctx, "Failed to remove temporary folder %s: %v", path, err)
	}
}
