package download

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/oshokin/hifi-grabber/internal/constants"
	"github.com/oshokin/hifi-grabber/internal/formatter"
	"github.com/oshokin/hifi-grabber/internal/logger"
	"github.com/oshokin/hifi-grabber/internal/model"
	"github.com/oshokin/hifi-grabber/internal/retry"
	"github.com/oshokin/hifi-grabber/internal/tagger"
)

// trackProgressDownloaded is the progress reported once the raw stream is stored.
const trackProgressDownloaded = 50

func (e *EngineImpl) runTrack(
	ctx context.Context,
	jobID string,
	quality model.Quality,
	track *model.Track,
	album *model.Album,
) (*jobResult, error) {
	streamURL, err := e.resolveStream(ctx, retry.Single(), track.ID, quality)
	if err != nil {
		return nil, err
	}

	tempRoot, err := e.tempRoot()
	if err != nil {
		return nil, err
	}

	tempPath := filepath.Join(tempRoot, jobID+"."+uuid.NewString()+constants.ExtensionTemp)
	defer removeFile(ctx, tempPath)

	size, err := e.downloadToFile(ctx, streamURL, tempPath)
	if err != nil {
		return nil, err
	}

	e.registry.update(jobID, func(j *model.Job) {
		j.Progress = trackProgressDownloaded
		j.Status = model.JobStatusProcessing
	})

	folder := filepath.Join(e.cfg.LibraryPath, formatter.AlbumFolderName(album))
	if err = os.MkdirAll(folder, constants.DefaultFolderPermissions); err != nil {
		return nil, fmt.Errorf("%w: failed to create album folder: %w", ErrTempIOFailure, err)
	}

	coverPath := e.ensureCover(ctx, folder, track.CoverURL)

	finalPath := filepath.Join(folder, formatter.TrackFileName(track, quality.Extension()))
	partPath := finalPath + "." + jobID + constants.ExtensionPart

	defer removeFile(ctx, partPath)

	err = e.tagOrCopy(ctx, &tagger.Request{
		InputPath:  tempPath,
		OutputPath: partPath,
		CoverPath:  coverPath,
		Quality:    quality,
		Metadata:   tagger.NewMetadata(track, album),
	})
	if err != nil {
		return nil, err
	}

	if err = ctx.Err(); err != nil {
		return nil, err
	}

	if err = os.Rename(partPath, finalPath); err != nil {
		return nil, fmt.Errorf("%w: failed to place track: %w", ErrTempIOFailure, err)
	}

	if info, statErr := os.Stat(finalPath); statErr == nil {
		size = info.Size()
	}

	return &jobResult{path: finalPath, size: size}, nil
}

// resolveStream obtains a playable URL for the track using the given policy.
func (e *EngineImpl) resolveStream(
	ctx context.Context,
	policy retry.Policy,
	trackID string,
	quality model.Quality,
) (string, error) {
	var streamURL string

	err := policy.Do(ctx, func(ctx context.Context, attempt int) error {
		url, err := e.client.GetStreamURL(ctx, trackID, quality)
		if err != nil {
			logger.Debugf(ctx, "Stream resolution of track %s failed (attempt %d): %v", trackID, attempt, err)

			return err
		}

		streamURL = url

		return nil
	})
	if err != nil {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}

		return "", fmt.Errorf("%w: track %s: %w", ErrStreamResolutionFailed, trackID, err)
	}

	return streamURL, nil
}

// tempRoot returns the temporary storage root, creating it if needed.
func (e *EngineImpl) tempRoot() (string, error) {
	root := e.cfg.TempPath
	if root == "" {
		root = filepath.Join(os.TempDir(), "hifi-grabber")
	}

	if err := os.MkdirAll(root, constants.DefaultFolderPermissions); err != nil {
		return "", fmt.Errorf("%w: failed to create temp folder: %w", ErrTempIOFailure, err)
	}

	return root, nil
}
