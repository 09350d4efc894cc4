package download

import (
	"cmp"
	"context"
	"slices"
	"sync"
	"time"

	"github.com/oshokin/hifi-grabber/internal/metrics"
	"github.com/oshokin/hifi-grabber/internal/model"
	"github.com/oshokin/hifi-grabber/internal/notifier"
)

// registryEntry is a registered job and the means to stop it.
type registryEntry struct {
	job      *model.Job
	cancel   context.CancelFunc
	eviction *time.Timer
}

// registry is the set of active and recently finished jobs.
// Every change is published while the lock is held, so listeners see changes in order.
type registry struct {
	mu        sync.Mutex
	entries   map[string]*registryEntry
	closed    bool
	publisher notifier.Publisher
	metrics   *metrics.Metrics
}

func newRegistry(publisher notifier.Publisher, m *metrics.Metrics) *registry {
	return &registry{
		entries:   make(map[string]*registryEntry),
		publisher: publisher,
		metrics:   m,
	}
}

// add registers a new job. It reports false once the registry is closed.
func (r *registry) add(job *model.Job, cancel context.CancelFunc) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return false
	}

	stored := job.Clone()
	r.entries[job.ID] = &registryEntry{job: stored, cancel: cancel}
	r.publishChanged(stored)
	r.refreshGauges()

	return true
}

// update applies mutate to a copy of the job and keeps the result only if the lifecycle stays monotonic.
// It is a no-op for removed or finished jobs.
func (r *registry) update(jobID string, mutate func(job *model.Job)) (*model.Job, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	entry, ok := r.entries[jobID]
	if !ok || entry.job.Status.IsTerminal() {
		return nil, false
	}

	candidate := entry.job.Clone()
	mutate(candidate)

	if candidate.Status.IsTerminal() || !entry.job.Status.CanTransitionTo(candidate.Status) {
		candidate.Status = entry.job.Status
	}

	candidate.Progress = max(min(candidate.Progress, 100), entry.job.Progress)

	entry.job = candidate
	r.publishChanged(candidate)
	r.refreshGauges()

	return candidate.Clone(), true
}

// finish moves the job to a terminal state set by mutate.
// It reports false when the job is no longer registered or already finished.
func (r *registry) finish(jobID string, mutate func(job *model.Job)) (*model.Job, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	entry, ok := r.entries[jobID]
	if !ok || entry.job.Status.IsTerminal() {
		return nil, false
	}

	candidate := entry.job.Clone()
	mutate(candidate)

	if !candidate.Status.IsTerminal() {
		candidate.Status = model.JobStatusFailed
	}

	endedAt := time.Now()
	candidate.EndedAt = &endedAt

	entry.job = candidate
	r.publishChanged(candidate)
	r.refreshGauges()

	return candidate.Clone(), true
}

// remove deletes the job and publishes exactly one removal event.
func (r *registry) remove(jobID string) (*registryEntry, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	entry, ok := r.entries[jobID]
	if !ok {
		return nil, false
	}

	delete(r.entries, jobID)

	if entry.eviction != nil {
		entry.eviction.Stop()
	}

	if r.publisher != nil {
		r.publisher.Publish(notifier.Event{
			Type:      notifier.EventJobRemoved,
			JobID:     jobID,
			Timestamp: time.Now(),
		})
	}

	r.refreshGauges()

	return &registryEntry{
		job:    entry.job.Clone(),
		cancel: entry.cancel,
	}, true
}

// scheduleEviction removes the job after delay.
func (r *registry) scheduleEviction(jobID string, delay time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()

	entry, ok := r.entries[jobID]
	if !ok || r.closed {
		return
	}

	entry.eviction = time.AfterFunc(delay, func() {
		r.remove(jobID)
	})
}

// get returns a snapshot of a single job.
func (r *registry) get(jobID string) (*model.Job, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	entry, ok := r.entries[jobID]
	if !ok {
		return nil, false
	}

	return entry.job.Clone(), true
}

// snapshot returns copies of all jobs ordered by start time and the number of queued jobs.
func (r *registry) snapshot() ([]*model.Job, int) {
	r.mu.Lock()
	defer r.mu.Unlock()

	jobs := make([]*model.Job, 0, len(r.entries))

	for _, entry := range r.entries {
		jobs = append(jobs, entry.job.Clone())
	}

	slices.SortFunc(jobs, func(a, b *model.Job) int {
		if c := a.StartedAt.Compare(b.StartedAt); c != 0 {
			return c
		}

		return cmp.Compare(a.ID, b.ID)
	})

	return jobs, r.queuedLocked()
}

// close stops accepting jobs and stops every pending eviction.
func (r *registry) close() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.closed = true

	for _, entry := range r.entries {
		if entry.eviction != nil {
			entry.eviction.Stop()
		}
	}
}

func (r *registry) publishChanged(job *model.Job) {
	if r.publisher == nil {
		return
	}

	r.publisher.Publish(notifier.Event{
		Type:      notifier.EventJobChanged,
		JobID:     job.ID,
		Job:       job.Clone(),
		Timestamp: time.Now(),
	})
}

func (r *registry) refreshGauges() {
	r.metrics.SetJobCounts(len(r.entries), r.queuedLocked())
}

func (r *registry) queuedLocked() int {
	var queued int

	for _, entry := range r.entries {
		if entry.job.Status == model.JobStatusQueued {
			queued++
		}
	}

	return queued
}
