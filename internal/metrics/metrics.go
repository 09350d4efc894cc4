// Package metrics exposes Prometheus collectors for the download pipeline.
// All recording methods are safe to call on a nil *Metrics, which records nothing.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "hifi_grabber"

// Track outcome label values.
const (
	TrackOutcomeCompleted = "completed"
	TrackOutcomeFailed    = "failed"
)

// Metrics holds every collector registered by New.
type Metrics struct {
	// JobsSubmitted counts accepted submissions by job kind.
	JobsSubmitted *prometheus.CounterVec
	// JobsFinished counts jobs reaching a terminal state by kind and status.
	JobsFinished *prometheus.CounterVec
	// JobDuration observes the time from submission to a terminal state.
	JobDuration *prometheus.HistogramVec
	// ActiveJobs is the number of jobs in the registry.
	ActiveJobs prometheus.Gauge
	// QueuedJobs is the number of jobs waiting for a free slot.
	QueuedJobs prometheus.Gauge
	// TrackOutcomes counts individual album tracks by outcome.
	TrackOutcomes *prometheus.CounterVec
	// DownloadedBytes counts raw stream bytes written to temp storage.
	DownloadedBytes prometheus.Counter
	// TaggingFallbacks counts tagging failures recovered by a raw copy.
	TaggingFallbacks prometheus.Counter
	// CatalogRequests counts catalog API calls by endpoint and HTTP status.
	CatalogRequests *prometheus.CounterVec
	// CatalogRequestDuration observes catalog API latency by endpoint.
	CatalogRequestDuration *prometheus.HistogramVec
	// DroppedEvents counts notifier events dropped for slow listeners.
	DroppedEvents prometheus.Counter
}

// New creates the collectors and registers them with reg.
// A nil registerer creates unregistered collectors.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		JobsSubmitted: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "jobs_submitted_total",
			Help:      "Total number of submitted download jobs.",
		}, []string{"kind"}),
		JobsFinished: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "jobs_finished_total",
			Help:      "Total number of download jobs that reached a terminal state.",
		}, []string{"kind", "status"}),
		JobDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "job_duration_seconds",
			Help:      "Download job duration in seconds.",
			Buckets:   prometheus.ExponentialBuckets(1, 2, 12), // 1s to ~34min
		}, []string{"kind"}),
		ActiveJobs: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "active_jobs",
			Help:      "Number of jobs currently tracked by the engine.",
		}),
		QueuedJobs: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "queued_jobs",
			Help:      "Number of jobs waiting for a free slot.",
		}),
		TrackOutcomes: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "album_tracks_total",
			Help:      "Album tracks processed by outcome.",
		}, []string{"outcome"}),
		DownloadedBytes: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "downloaded_bytes_total",
			Help:      "Total stream bytes downloaded.",
		}),
		TaggingFallbacks: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "tagging_fallbacks_total",
			Help:      "Tagging failures recovered with an untagged copy.",
		}),
		CatalogRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "catalog_requests_total",
			Help:      "Catalog API requests by endpoint and status.",
		}, []string{"endpoint", "status"}),
		CatalogRequestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "catalog_request_duration_seconds",
			Help:      "Catalog API request duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"endpoint"}),
		DroppedEvents: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "notifier_dropped_events_total",
			Help:      "Realtime events dropped because a listener was too slow.",
		}),
	}
}

// JobSubmitted records a new job.
func (m *Metrics) JobSubmitted(kind string) {
	if m == nil {
		return
	}

	m.JobsSubmitted.WithLabelValues(kind).Inc()
}

// JobFinished records a job reaching a terminal state.
func (m *Metrics) JobFinished(kind, status string, duration time.Duration) {
	if m == nil {
		return
	}

	m.JobsFinished.WithLabelValues(kind, status).Inc()
	m.JobDuration.WithLabelValues(kind).Observe(duration.Seconds())
}

// SetJobCounts updates the active and queued gauges.
func (m *Metrics) SetJobCounts(active, queued int) {
	if m == nil {
		return
	}

	m.ActiveJobs.Set(float64(active))
	m.QueuedJobs.Set(float64(queued))
}

// TrackFinished records the outcome of a single album track.
func (m *Metrics) TrackFinished(outcome string) {
	if m == nil {
		return
	}

	m.TrackOutcomes.WithLabelValues(outcome).Inc()
}

// BytesDownloaded adds n downloaded bytes.
func (m *Metrics) BytesDownloaded(n int64) {
	if m == nil || n <= 0 {
		return
	}

	m.DownloadedBytes.Add(float64(n))
}

// TaggingFallback records a raw copy made after a tagging failure.
func (m *Metrics) TaggingFallback() {
	if m == nil {
		return
	}

	m.TaggingFallbacks.Inc()
}

// CatalogRequest records a catalog API call. A zero status means a transport error.
func (m *Metrics) CatalogRequest(endpoint string, status int, duration time.Duration) {
	if m == nil {
		return
	}

	label := "error"
	if status > 0 {
		label = strconv.Itoa(status)
	}

	m.CatalogRequests.WithLabelValues(endpoint, label).Inc()
	m.CatalogRequestDuration.WithLabelValues(endpoint).Observe(duration.Seconds())
}

// EventDropped records a notifier event that was not delivered.
func (m *Metrics) EventDropped() {
	if m == nil {
		return
	}

	m.DroppedEvents.Inc()
}
