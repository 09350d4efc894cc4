package app

import (
	"context"
	"os"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/samber/lo"
	"github.com/schollz/progressbar/v3"
	"go.uber.org/zap"

	"github.com/oshokin/hifi-grabber/internal/config"
	"github.com/oshokin/hifi-grabber/internal/logger"
	"github.com/oshokin/hifi-grabber/internal/model"
	"github.com/oshokin/hifi-grabber/internal/notifier"
	"github.com/oshokin/hifi-grabber/internal/service/download"
)

const (
	// eventBuffer is large enough to hold every event of a typical album.
	eventBuffer = 1024
	// pollInterval is how often job states are re-read in case an event was dropped.
	pollInterval = time.Second
)

// DownloadRequest describes what the download command fetches.
type DownloadRequest struct {
	// Kind selects tracks or albums.
	Kind model.JobKind
	// IDs are catalog identifiers of the chosen kind.
	IDs []string
	// AlbumID is an optional album used to name and tag single tracks.
	AlbumID string
}

// ExecuteDownloadCommand downloads the requested items and waits for every job to finish.
func ExecuteDownloadCommand(ctx context.Context, cfg *config.Config, req *DownloadRequest) {
	c, err := newComponents(ctx, cfg)
	if err != nil {
		logger.Fatalf(ctx, "Failed to start: %v", err)
	}

	defer c.close()

	sub := c.hub.Subscribe(eventBuffer)
	defer c.hub.Unsubscribe(sub)

	jobIDs := submitJobs(ctx, c, req)
	if len(jobIDs) == 0 {
		return
	}

	finished := waitForJobs(ctx, c.engine, sub, jobIDs)

	printDownloadSummary(ctx, jobIDs, finished)
}

func submitJobs(ctx context.Context, c *components, req *DownloadRequest) []string {
	var album *model.Album

	if req.Kind == model.JobKindTrack && req.AlbumID != "" {
		var err error

		album, err = c.client.GetAlbum(ctx, req.AlbumID)
		if err != nil {
			logger.Warnf(ctx, "Failed to fetch album %s, tracks will be named by ID: %v", req.AlbumID, err)
		}
	}

	jobIDs := make([]string, 0, len(req.IDs))

	for _, id := range lo.Uniq(req.IDs) {
		var (
			jobID string
			err   error
		)

		switch req.Kind {
		case model.JobKindAlbum:
			jobID, err = c.engine.SubmitAlbum(ctx, &download.AlbumRequest{AlbumID: id})
		default:
			jobID, err = c.engine.SubmitTrack(ctx, &download.TrackRequest{TrackID: id, Album: album})
		}

		if err != nil {
			logger.Errorf(ctx, "Failed to submit %s %s: %v", req.Kind, id, err)

			continue
		}

		jobIDs = append(jobIDs, jobID)
	}

	return jobIDs
}

// waitForJobs follows job events until every job is terminal or ctx is cancelled.
// It returns the final snapshot of every finished job.
func waitForJobs(
	ctx context.Context,
	engine download.Engine,
	sub *notifier.Subscription,
	jobIDs []string,
) map[string]*model.Job {
	var (
		pending  = lo.SliceToMap(jobIDs, func(id string) (string, int) { return id, 0 })
		finished = make(map[string]*model.Job, len(jobIDs))
		bar      = newProgressBar(len(jobIDs))
		ticker   = time.NewTicker(pollInterval)
	)

	defer ticker.Stop()

	observe := func(job *model.Job) {
		if _, ok := pending[job.ID]; !ok {
			return
		}

		pending[job.ID] = job.Progress

		if job.Status.IsTerminal() {
			finished[job.ID] = job
			delete(pending, job.ID)
		}

		if bar != nil {
			bar.Describe(describeJob(job))
			_ = bar.Set(100*len(finished) + lo.Sum(lo.Values(pending)))
		}
	}

	for len(pending) > 0 {
		select {
		case <-ctx.Done():
			logger.Warn(ctx, "Interrupted, unfinished jobs are cancelled")

			return finished
		case event, ok := <-sub.C:
			if !ok {
				return finished
			}

			switch {
			case event.Type == notifier.EventJobChanged && event.Job != nil:
				observe(event.Job)
			case event.Type == notifier.EventJobRemoved:
				delete(pending, event.JobID)
			}
		case <-ticker.C:
			for id := range pending {
				if job, ok := engine.Job(id); ok {
					observe(job)
				}
			}
		}
	}

	if bar != nil {
		_ = bar.Finish()
	}

	return finished
}

// newProgressBar returns nil when verbose logging would interleave with the bar.
func newProgressBar(jobs int) *progressbar.ProgressBar {
	if logger.Level() < zap.InfoLevel {
		return nil
	}

	return progressbar.NewOptions(
		100*jobs,
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionSetDescription("Starting"),
		progressbar.OptionSetPredictTime(false),
		progressbar.OptionShowElapsedTimeOnFinish(),
		progressbar.OptionSetWidth(30),
	)
}

func describeJob(job *model.Job) string {
	if job.Kind == model.JobKindAlbum && job.CurrentTrack != "" {
		return job.Title + ": " + job.CurrentTrack
	}

	return job.Title + " (" + job.Status.String() + ")"
}

func printDownloadSummary(ctx context.Context, jobIDs []string, finished map[string]*model.Job) {
	var completed, failed int

	logger.Info(ctx, "")
	logger.Info(ctx, "═══════════════════════════════════════════════════════════════")
	logger.Info(ctx, "                     DOWNLOAD SUMMARY")
	logger.Info(ctx, "═══════════════════════════════════════════════════════════════")

	for _, id := range jobIDs {
		job, ok := finished[id]
		if !ok {
			logger.Warnf(ctx, "Unfinished: %s", id)

			continue
		}

		switch job.Status {
		case model.JobStatusCompleted:
			completed++

			size := humanize.IBytes(uint64(max(job.Size, 0))) //nolint:gosec // Non-negative.
			if job.Kind == model.JobKindAlbum {
				logger.Infof(ctx, "Completed: %s (%d/%d tracks, %s)", job.ResultPath, job.CompletedTracks, job.TotalTracks, size)
			} else {
				logger.Infof(ctx, "Completed: %s (%s)", job.ResultPath, size)
			}
		default:
			failed++

			logger.Errorf(ctx, "%s: %s: %s", job.Status, job.Title, job.Error)
		}
	}

	logger.Infof(ctx, "Jobs: %d completed, %d failed, %d total", completed, failed, len(jobIDs))
}
