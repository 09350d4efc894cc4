package download

import (
	"context"
	"fmt"
	"math"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/oshokin/hifi-grabber/internal/constants"
	"github.com/oshokin/hifi-grabber/internal/formatter"
	"github.com/oshokin/hifi-grabber/internal/logger"
	"github.com/oshokin/hifi-grabber/internal/metrics"
	"github.com/oshokin/hifi-grabber/internal/model"
	"github.com/oshokin/hifi-grabber/internal/tagger"
	"github.com/oshokin/hifi-grabber/internal/utils"
)

func (e *EngineImpl) runAlbum(
	ctx context.Context,
	jobID string,
	quality model.Quality,
	albumID string,
) (*jobResult, error) {
	album, err := e.client.GetAlbum(ctx, albumID)
	if err != nil {
		return nil, err
	}

	total := len(album.Tracks)
	if total == 0 {
		return nil, fmt.Errorf("%w: %s", ErrEmptyAlbum, albumID)
	}

	e.registry.update(jobID, func(j *model.Job) {
		j.Title = album.Title
		j.Artist = album.Artist
		j.Album = album.Title
		j.AlbumInfo = album
		j.TotalTracks = total
		j.Duration = album.TotalDuration()
	})

	tempRoot, err := e.tempRoot()
	if err != nil {
		return nil, err
	}

	stagingDir := filepath.Join(tempRoot, jobID)
	if err = os.MkdirAll(stagingDir, constants.DefaultFolderPermissions); err != nil {
		return nil, fmt.Errorf("%w: failed to create staging folder: %w", ErrTempIOFailure, err)
	}

	// Runs on every exit path, including a failed promotion.
	defer removeDir(ctx, stagingDir)

	coverPath := e.ensureCover(ctx, stagingDir, album.CoverURL)

	var completed, failed int

	for i := range album.Tracks {
		if err = ctx.Err(); err != nil {
			return nil, err
		}

		track := &album.Tracks[i]

		e.registry.update(jobID, func(j *model.Job) {
			j.CurrentTrack = track.Title
		})

		trackErr := e.processAlbumTrack(ctx, stagingDir, coverPath, quality, track, album)

		switch {
		case trackErr == nil:
			completed++

			e.metrics.TrackFinished(metrics.TrackOutcomeCompleted)
		case ctx.Err() != nil:
			return nil, ctx.Err()
		default:
			failed++

			e.metrics.TrackFinished(metrics.TrackOutcomeFailed)
			logger.Errorf(ctx, "Track %d/%d %q failed: %v", i+1, total, track.Title, trackErr)
		}

		e.registry.update(jobID, func(j *model.Job) {
			j.CompletedTracks = completed
			j.FailedTracks = failed
			j.Progress = int(math.Round(float64(completed) / float64(total) * 100))
		})
	}

	if completed == 0 {
		return nil, fmt.Errorf("%w: %d of %d", ErrAllTracksFailed, failed, total)
	}

	e.registry.update(jobID, func(j *model.Job) {
		j.Status = model.JobStatusMoving
		j.CurrentTrack = ""
	})

	size, err := utils.DirSize(stagingDir)
	if err != nil {
		logger.Warnf(ctx, "Failed to measure %s: %v", stagingDir, err)
	}

	finalDir := filepath.Join(e.cfg.LibraryPath, formatter.AlbumFolderName(album))

	if err = promote(ctx, stagingDir, finalDir); err != nil {
		logger.Errorf(ctx, "Staged tracks of job %s in %s are discarded: %v", jobID, stagingDir, err)

		return nil, err
	}

	return &jobResult{path: finalDir, size: size}, nil
}

func (e *EngineImpl) processAlbumTrack(
	ctx context.Context,
	stagingDir string,
	coverPath string,
	quality model.Quality,
	track *model.Track,
	album *model.Album,
) error {
	streamURL, err := e.resolveStream(ctx, e.albumPolicy, track.ID, quality)
	if err != nil {
		return err
	}

	tempName := formatter.SanitizeComponent(track.ID) + "." + uuid.NewString() + constants.ExtensionTemp
	tempPath := filepath.Join(stagingDir, tempName)

	defer removeFile(ctx, tempPath)

	if _, err = e.downloadToFile(ctx, streamURL, tempPath); err != nil {
		return err
	}

	return e.tagOrCopy(ctx, &tagger.Request{
		InputPath:  tempPath,
		OutputPath: filepath.Join(stagingDir, formatter.TrackFileName(track, quality.Extension())),
		CoverPath:  coverPath,
		Quality:    quality,
		Metadata:   tagger.NewMetadata(track, album),
	})
}
