package download

//go:generate $MOCKGEN -source=engine.go -destination=mocks/engine_mock.go

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/sync/semaphore"

	"github.com/oshokin/hifi-grabber/internal/client/catalog"
	"github.com/oshokin/hifi-grabber/internal/config"
	"github.com/oshokin/hifi-grabber/internal/history"
	"github.com/oshokin/hifi-grabber/internal/logger"
	"github.com/oshokin/hifi-grabber/internal/metrics"
	"github.com/oshokin/hifi-grabber/internal/model"
	"github.com/oshokin/hifi-grabber/internal/notifier"
	"github.com/oshokin/hifi-grabber/internal/retry"
	"github.com/oshokin/hifi-grabber/internal/tagger"
)

const (
	// defaultEvictionDelay is used when the configuration carries no eviction delay.
	defaultEvictionDelay = 15 * time.Second
	// coverCacheSize is the number of cover images kept in memory.
	coverCacheSize = 32
)

// Engine accepts download jobs and reports their state.
type Engine interface {
	// SubmitTrack starts a single-track job and returns its ID.
	SubmitTrack(ctx context.Context, req *TrackRequest) (string, error)
	// SubmitAlbum starts an album job and returns its ID.
	SubmitAlbum(ctx context.Context, req *AlbumRequest) (string, error)
	// Active returns snapshots of the jobs in the registry.
	Active() *ActiveJobs
	// Job returns the snapshot of a single registered job.
	Job(jobID string) (*model.Job, bool)
	// History returns finished jobs, newest first.
	History() []history.Record
	// Cancel removes the job from the registry and stops its work.
	Cancel(jobID string) bool
	// Wait blocks until every started job task has returned.
	Wait()
	// Close stops in-flight work and waits for it.
	Close()
}

// TrackRequest describes a single-track submission.
type TrackRequest struct {
	// TrackID is the catalog track identifier.
	TrackID string `json:"trackId"`
	// Quality is the requested stream quality; zero means the configured default.
	Quality model.Quality `json:"quality"`
	// Track is optional pre-fetched metadata used for naming and tagging.
	Track *model.Track `json:"track,omitempty"`
	// Album is optional pre-fetched album metadata.
	Album *model.Album `json:"album,omitempty"`
}

// AlbumRequest describes an album submission.
type AlbumRequest struct {
	// AlbumID is the catalog album identifier.
	AlbumID string `json:"albumId"`
	// Quality is the requested stream quality; zero means the configured default.
	Quality model.Quality `json:"quality"`
}

// ActiveJobs is a snapshot of the registry.
type ActiveJobs struct {
	Jobs       []*model.Job `json:"jobs"`
	QueueDepth int          `json:"queueDepth"`
}

// EngineImpl implements Engine.
type EngineImpl struct {
	// cfg contains the application configuration.
	cfg *config.Config
	// client talks to the catalog.
	client catalog.Client
	// tagger writes tags into downloaded files.
	tagger tagger.Tagger
	// store persists finished jobs.
	store history.Store
	// publisher receives job events; may be nil.
	publisher notifier.Publisher
	// metrics records job outcomes; may be nil.
	metrics *metrics.Metrics
	// registry holds active and recently finished jobs.
	registry *registry
	// slots caps running jobs; nil means unbounded.
	slots *semaphore.Weighted
	// covers caches cover images by URL.
	covers *lru.Cache[string, []byte]
	// albumPolicy retries stream resolution of album tracks.
	albumPolicy retry.Policy
	// evictionDelay is how long finished jobs stay in the registry.
	evictionDelay time.Duration
	// rootCtx is the parent of every job context.
	rootCtx context.Context
	// stop cancels rootCtx.
	stop context.CancelFunc
	// wg tracks running job goroutines.
	wg sync.WaitGroup
}

// NewEngine creates a download engine.
// publisher and m may be nil.
func NewEngine(
	cfg *config.Config,
	client catalog.Client,
	tg tagger.Tagger,
	store history.Store,
	publisher notifier.Publisher,
	m *metrics.Metrics,
) (Engine, error) {
	covers, err := lru.New[string, []byte](coverCacheSize)
	if err != nil {
		return nil, err
	}

	evictionDelay := cfg.ParsedEvictionDelay
	if evictionDelay <= 0 {
		evictionDelay = defaultEvictionDelay
	}

	albumPolicy := retry.Default()
	if cfg.RetryAttemptsCount > 0 {
		albumPolicy.MaxAttempts = int(cfg.RetryAttemptsCount)
	}

	if cfg.ParsedRetryBaseDelay >= 0 {
		albumPolicy.BaseDelay = cfg.ParsedRetryBaseDelay
	}

	if cfg.RetryMultiplier >= 1 {
		albumPolicy.Multiplier = cfg.RetryMultiplier
	}

	var slots *semaphore.Weighted
	if cfg.MaxConcurrentJobs > 0 {
		slots = semaphore.NewWeighted(cfg.MaxConcurrentJobs)
	}

	rootCtx, stop := context.WithCancel(logger.WithName(context.Background(), "engine"))

	return &EngineImpl{
		cfg:           cfg,
		client:        client,
		tagger:        tg,
		store:         store,
		publisher:     publisher,
		metrics:       m,
		registry:      newRegistry(publisher, m),
		slots:         slots,
		covers:        covers,
		albumPolicy:   albumPolicy,
		evictionDelay: evictionDelay,
		rootCtx:       rootCtx,
		stop:          stop,
	}, nil
}

// SubmitTrack starts a single-track job and returns its ID.
func (e *EngineImpl) SubmitTrack(ctx context.Context, req *TrackRequest) (string, error) {
	trackID := strings.TrimSpace(req.TrackID)
	if trackID == "" {
		return "", ErrEmptyTrackID
	}

	track, album := resolveTrackSubject(trackID, req.Track, req.Album)

	job := &model.Job{
		ID:        uuid.NewString(),
		Kind:      model.JobKindTrack,
		Quality:   e.quality(req.Quality),
		Status:    model.JobStatusQueued,
		Title:     track.Title,
		Artist:    track.Artist,
		Album:     album.Title,
		Track:     track,
		Duration:  track.Duration,
		StartedAt: time.Now(),
	}

	job.QualityLabel = job.Quality.Label()

	if err := e.start(ctx, job, func(jobCtx context.Context) (*jobResult, error) {
		return e.runTrack(jobCtx, job.ID, job.Quality, track, album)
	}); err != nil {
		return "", err
	}

	return job.ID, nil
}

// SubmitAlbum starts an album job and returns its ID.
func (e *EngineImpl) SubmitAlbum(ctx context.Context, req *AlbumRequest) (string, error) {
	albumID := strings.TrimSpace(req.AlbumID)
	if albumID == "" {
		return "", ErrEmptyAlbumID
	}

	job := &model.Job{
		ID:        uuid.NewString(),
		Kind:      model.JobKindAlbum,
		Quality:   e.quality(req.Quality),
		Status:    model.JobStatusQueued,
		Title:     albumID,
		StartedAt: time.Now(),
	}

	job.QualityLabel = job.Quality.Label()

	if err := e.start(ctx, job, func(jobCtx context.Context) (*jobResult, error) {
		return e.runAlbum(jobCtx, job.ID, job.Quality, albumID)
	}); err != nil {
		return "", err
	}

	return job.ID, nil
}

// Active returns snapshots of the jobs in the registry, oldest first.
func (e *EngineImpl) Active() *ActiveJobs {
	jobs, queued := e.registry.snapshot()

	return &ActiveJobs{
		Jobs:       jobs,
		QueueDepth: queued,
	}
}

// Job returns the snapshot of a single registered job.
func (e *EngineImpl) Job(jobID string) (*model.Job, bool) {
	return e.registry.get(jobID)
}

// History returns finished jobs, newest first.
func (e *EngineImpl) History() []history.Record {
	return e.store.List()
}

// Cancel removes the job from the registry, emits a single removal event and stops its work.
// It reports false when the job is unknown.
func (e *EngineImpl) Cancel(jobID string) bool {
	entry, ok := e.registry.remove(jobID)
	if !ok {
		return false
	}

	entry.cancel()

	if entry.job.Status.IsTerminal() {
		return true
	}

	ctx := logger.WithKV(e.rootCtx, "job", jobID)
	logger.Infof(ctx, "Job %s cancelled", jobID)

	endedAt := time.Now()
	entry.job.Status = model.JobStatusCancelled
	entry.job.EndedAt = &endedAt

	e.metrics.JobFinished(entry.job.Kind.String(), entry.job.Status.String(), endedAt.Sub(entry.job.StartedAt))
	e.appendHistory(ctx, entry.job)

	return true
}

// Wait blocks until every started job task has returned.
func (e *EngineImpl) Wait() {
	e.wg.Wait()
}

// Close stops accepting jobs, cancels in-flight work, stops eviction timers and waits.
func (e *EngineImpl) Close() {
	e.registry.close()
	e.stop()
	e.wg.Wait()
}

// jobResult is the outcome of a successful job run.
type jobResult struct {
	path string
	size int64
}

func (e *EngineImpl) start(
	ctx context.Context,
	job *model.Job,
	run func(ctx context.Context) (*jobResult, error),
) error {
	jobCtx, cancel := context.WithCancel(logger.WithKV(e.rootCtx, "job", job.ID))

	if !e.registry.add(job, cancel) {
		cancel()

		return ErrEngineClosed
	}

	e.metrics.JobSubmitted(job.Kind.String())
	logger.Infof(ctx, "Job %s accepted: %s %q (%s)", job.ID, job.Kind, job.Title, job.QualityLabel)

	e.wg.Add(1)

	go func() {
		defer e.wg.Done()
		defer cancel()

		if e.slots != nil {
			if err := e.slots.Acquire(jobCtx, 1); err != nil {
				e.finish(jobCtx, job.ID, nil, err)

				return
			}

			defer e.slots.Release(1)
		}

		e.registry.update(job.ID, func(j *model.Job) {
			j.Status = model.JobStatusDownloading
		})

		result, err := run(jobCtx)
		e.finish(jobCtx, job.ID, result, err)
	}()

	return nil
}

func (e *EngineImpl) finish(ctx context.Context, jobID string, result *jobResult, err error) {
	snapshot, ok := e.registry.finish(jobID, func(j *model.Job) {
		j.CurrentTrack = ""

		if err != nil {
			j.Status = model.JobStatusFailed
			j.Error = err.Error()

			return
		}

		j.Status = model.JobStatusCompleted
		j.Progress = 100

		if result != nil {
			j.ResultPath = result.path
			j.Size = result.size
		}
	})
	if !ok {
		logger.Debugf(ctx, "Job %s left the registry before finishing, result discarded", jobID)

		return
	}

	if err != nil {
		logger.Errorf(ctx, "Job %s failed: %v", jobID, err)
	} else {
		logger.Infof(ctx, "Job %s completed: %s", jobID, snapshot.ResultPath)
	}

	e.metrics.JobFinished(snapshot.Kind.String(), snapshot.Status.String(), snapshot.EndedAt.Sub(snapshot.StartedAt))
	e.appendHistory(ctx, snapshot)
	e.registry.scheduleEviction(jobID, e.evictionDelay)
}

func (e *EngineImpl) appendHistory(ctx context.Context, job *model.Job) {
	if err := e.store.Append(ctx, history.NewRecord(job)); err != nil {
		logger.Warnf(ctx, "Failed to record job %s in history: %v", job.ID, err)
	}
}

func (e *EngineImpl) quality(q model.Quality) model.Quality {
	if q == 0 {
		if e.cfg.ParsedQuality != 0 {
			return e.cfg.ParsedQuality
		}

		return model.DefaultQuality
	}

	return model.NormalizeQuality(int(q))
}

// resolveTrackSubject picks the metadata used for a single track.
// Without pre-fetched metadata the track is named after its ID.
func resolveTrackSubject(trackID string, track *model.Track, album *model.Album) (*model.Track, *model.Album) {
	var resolved model.Track

	switch {
	case track != nil:
		resolved = *track
	case album != nil:
		for i := range album.Tracks {
			if album.Tracks[i].ID == trackID {
				resolved = album.Tracks[i]

				break
			}
		}
	}

	resolved.ID = trackID
	if strings.TrimSpace(resolved.Title) == "" {
		resolved.Title = trackID
	}

	if album == nil {
		album = resolved.AlbumRef()
	}

	if resolved.CoverURL == "" {
		resolved.CoverURL = album.CoverURL
	}

	if resolved.Artist == "" {
		resolved.Artist = album.Artist
	}

	return &resolved, album
}
