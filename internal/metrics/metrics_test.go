package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestNew tests that every collector is registered once.
func TestNew(t *testing.T) {
	t.Parallel()

	reg := prometheus.NewRegistry()
	m := New(reg)
	require.NotNil(t, m)

	m.JobSubmitted("album")
	m.JobFinished("album", "completed", 3*time.Second)
	m.SetJobCounts(2, 1)
	m.TrackFinished(TrackOutcomeFailed)
	m.BytesDownloaded(1024)
	m.TaggingFallback()
	m.CatalogRequest("album", 200, 10*time.Millisecond)
	m.CatalogRequest("stream", 0, time.Millisecond)
	m.EventDropped()

	families, err := reg.Gather()
	require.NoError(t, err)

	names := make(map[string]bool, len(families))
	for _, family := range families {
		names[family.GetName()] = true
	}

	for _, name := range []string{
		"hifi_grabber_jobs_submitted_total",
		"hifi_grabber_jobs_finished_total",
		"hifi_grabber_job_duration_seconds",
		"hifi_grabber_active_jobs",
		"hifi_grabber_queued_jobs",
		"hifi_grabber_album_tracks_total",
		"hifi_grabber_downloaded_bytes_total",
		"hifi_grabber_tagging_fallbacks_total",
		"hifi_grabber_catalog_requests_total",
		"hifi_grabber_catalog_request_duration_seconds",
		"hifi_grabber_notifier_dropped_events_total",
	} {
		assert.True(t, names[name], "metric %s is not registered", name)
	}

	assert.InDelta(t, 1024, testutil.ToFloat64(m.DownloadedBytes), 0.001)
	assert.InDelta(t, 1, testutil.ToFloat64(m.CatalogRequests.WithLabelValues("stream", "error")), 0.001)
	assert.InDelta(t, 1, testutil.ToFloat64(m.TaggingFallbacks), 0.001)
}

// TestNilMetrics tests that a nil receiver records nothing and does not panic.
func TestNilMetrics(t *testing.T) {
	t.Parallel()

	var m *Metrics

	assert.NotPanics(t, func() {
		m.JobSubmitted("track")
		m.JobFinished("track", "failed", time.Second)
		m.SetJobCounts(0, 0)
		m.TrackFinished(TrackOutcomeCompleted)
		m.BytesDownloaded(1)
		m.TaggingFallback()
		m.CatalogRequest("search", 500, time.Second)
		m.EventDropped()
	})
}

// TestBytesDownloadedIgnoresNonPositive tests that zero and negative sizes are skipped.
func TestBytesDownloadedIgnoresNonPositive(t *testing.T) {
	t.Parallel()

	m := New(prometheus.NewRegistry())
	m.BytesDownloaded(0)
	m.BytesDownloaded(-5)

	assert.InDelta(t, 0, testutil.ToFloat64(m.DownloadedBytes), 0.001)
}
