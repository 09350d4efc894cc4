package model

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestQualityTable tests that every supported value maps to the documented label and container.
func TestQualityTable(t *testing.T) {
	t.Parallel()

	tests := []struct {
		value     int
		label     string
		container string
	}{
		{value: 5, label: "MP3 320k", container: "mp3"},
		{value: 6, label: "CD Quality (16-bit/44.1kHz)", container: "flac"},
		{value: 7, label: "Hi-Res 96kHz (24-bit/96kHz)", container: "flac"},
		{value: 27, label: "Hi-Res 192kHz (24-bit/192kHz)", container: "flac"},
	}

	for _, tt := range tests {
		t.Run(tt.label, func(t *testing.T) {
			t.Parallel()

			q := NormalizeQuality(tt.value)
			assert.Equal(t, Quality(tt.value), q)
			assert.True(t, q.IsKnown())
			assert.Equal(t, tt.label, q.Label())
			assert.Equal(t, tt.container, q.Container())
			assert.Equal(t, tt.container, q.Extension())
		})
	}
}

// TestUnknownQualityFallsBackToHiRes96 tests that any other integer maps to the value-7 row.
func TestUnknownQualityFallsBackToHiRes96(t *testing.T) {
	t.Parallel()

	for _, v := range []int{-1, 0, 1, 4, 8, 26, 28, 1000} {
		q := NormalizeQuality(v)
		assert.Equal(t, QualityHiRes96, q, "value %d", v)
		assert.Equal(t, "Hi-Res 96kHz (24-bit/96kHz)", q.Label())
		assert.Equal(t, "flac", q.Container())
	}

	// Unnormalized unknown values still render as the default row.
	assert.Equal(t, QualityHiRes96.Label(), Quality(99).Label())
	assert.Equal(t, "flac", Quality(99).Container())
}

// TestParseQuality tests textual quality parsing.
func TestParseQuality(t *testing.T) {
	t.Parallel()

	assert.Equal(t, QualityMP3320, ParseQuality("5"))
	assert.Equal(t, QualityHiRes192, ParseQuality(" 27 "))
	assert.Equal(t, QualityHiRes96, ParseQuality("lossless"))
	assert.Equal(t, QualityHiRes96, ParseQuality("12"))
}

// TestQualities tests the quality table listing.
func TestQualities(t *testing.T) {
	t.Parallel()

	qualities := Qualities()
	require.Len(t, qualities, 4)
	assert.Equal(t, QualityMP3320, qualities[0].Value)
	assert.Equal(t, QualityHiRes192, qualities[3].Value)
	assert.Equal(t, "flac", qualities[3].Container)
}

// TestParseReleaseYear tests release year extraction.
func TestParseReleaseYear(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input string
		year  int
		ok    bool
	}{
		{input: "2019-05-03", year: 2019, ok: true},
		{input: "1997", year: 1997, ok: true},
		{input: "2001-09", year: 2001, ok: true},
		{input: "2020-01-02T03:04:05Z", year: 2020, ok: true},
		{input: "1984-13-45", year: 1984, ok: true},
		{input: "", ok: false},
		{input: "soon", ok: false},
		{input: "May 2019", ok: false},
		{input: "99", ok: false},
	}

	for _, tt := range tests {
		year, ok := ParseReleaseYear(tt.input)
		assert.Equal(t, tt.ok, ok, "input %q", tt.input)
		assert.Equal(t, tt.year, year, "input %q", tt.input)
	}
}

// TestAlbumHelpers tests ReleaseYear, TotalDuration and Track.AlbumRef.
func TestAlbumHelpers(t *testing.T) {
	t.Parallel()

	var nilAlbum *Album

	_, ok := nilAlbum.ReleaseYear()
	assert.False(t, ok)
	assert.Zero(t, nilAlbum.TotalDuration())

	album := &Album{
		ReleaseDate: "2010-02-03",
		Tracks:      []Track{{Duration: 100}, {Duration: 200}},
	}

	year, ok := album.ReleaseYear()
	assert.True(t, ok)
	assert.Equal(t, 2010, year)
	assert.Equal(t, 300, album.TotalDuration())

	track := &Track{Artist: "Performer", AlbumTitle: "Record", ReleaseDate: "2001"}
	ref := track.AlbumRef()
	assert.Equal(t, "Performer", ref.Artist)
	assert.Equal(t, "Record", ref.Title)
	assert.Empty(t, ref.Tracks)

	track.AlbumArtist = "Band"
	assert.Equal(t, "Band", track.AlbumRef().Artist)
}

// TestJobStatusTransitions tests lifecycle monotonicity rules.
func TestJobStatusTransitions(t *testing.T) {
	t.Parallel()

	assert.True(t, JobStatusQueued.CanTransitionTo(JobStatusDownloading))
	assert.True(t, JobStatusDownloading.CanTransitionTo(JobStatusDownloading))
	assert.True(t, JobStatusDownloading.CanTransitionTo(JobStatusFailed))
	assert.True(t, JobStatusMoving.CanTransitionTo(JobStatusCompleted))
	assert.False(t, JobStatusProcessing.CanTransitionTo(JobStatusDownloading))
	assert.False(t, JobStatusCompleted.CanTransitionTo(JobStatusFailed))
	assert.False(t, JobStatusFailed.CanTransitionTo(JobStatusDownloading))
	assert.False(t, JobStatusCancelled.CanTransitionTo(JobStatusCancelled))

	assert.False(t, JobStatusMoving.IsTerminal())
	assert.True(t, JobStatusCompleted.IsTerminal())
	assert.True(t, JobStatusFailed.IsTerminal())
	assert.True(t, JobStatusCancelled.IsTerminal())
}

// TestJobJSON tests that kinds and statuses are encoded as strings.
func TestJobJSON(t *testing.T) {
	t.Parallel()

	job := &Job{
		ID:       "job-1",
		Kind:     JobKindAlbum,
		Status:   JobStatusMoving,
		Progress: 80,
	}

	data, err := json.Marshal(job)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"type":"album"`)
	assert.Contains(t, string(data), `"status":"moving"`)
	assert.Contains(t, string(data), `"progress":80`)
}

// TestJobClone tests that clones do not share mutable state.
func TestJobClone(t *testing.T) {
	t.Parallel()

	ended := time.Now()
	job := &Job{
		ID:        "job-1",
		Track:     &Track{Title: "Original"},
		AlbumInfo: &Album{Tracks: []Track{{Title: "One"}}},
		EndedAt:   &ended,
	}

	clone := job.Clone()
	clone.Track.Title = "Changed"
	clone.AlbumInfo.Tracks[0].Title = "Changed"
	*clone.EndedAt = ended.Add(time.Hour)

	assert.Equal(t, "Original", job.Track.Title)
	assert.Equal(t, "One", job.AlbumInfo.Tracks[0].Title)
	assert.Equal(t, ended, *job.EndedAt)

	var nilJob *Job
	assert.Nil(t, nilJob.Clone())
}
