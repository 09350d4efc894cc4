package model

import (
	"fmt"
	"time"
)

// JobKind is the type of a download job.
type JobKind uint8

const (
	// JobKindTrack downloads a single track.
	JobKindTrack JobKind = iota + 1
	// JobKindAlbum downloads a whole album.
	JobKindAlbum
)

// String returns a human-readable representation of the JobKind.
func (k JobKind) String() string {
	switch k {
	case JobKindTrack:
		return "track"
	case JobKindAlbum:
		return "album"
	default:
		return fmt.Sprintf("unknown: %d", k)
	}
}

// MarshalText implements encoding.TextMarshaler.
func (k JobKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// JobStatus is a state of the job lifecycle.
// Values are ordered: a job only ever moves to a greater status.
type JobStatus uint8

const (
	// JobStatusQueued - accepted, waiting for a free slot.
	JobStatusQueued JobStatus = iota
	// JobStatusDownloading - fetching metadata and audio.
	JobStatusDownloading
	// JobStatusProcessing - tagging and placing the file.
	JobStatusProcessing
	// JobStatusMoving - promoting a staged album into the library.
	JobStatusMoving
	// JobStatusCompleted - finished, possibly with failed album tracks.
	JobStatusCompleted
	// JobStatusFailed - finished with an error.
	JobStatusFailed
	// JobStatusCancelled - removed on request.
	JobStatusCancelled
)

// String returns a human-readable representation of the JobStatus.
func (s JobStatus) String() string {
	switch s {
	case JobStatusQueued:
		return "queued"
	case JobStatusDownloading:
		return "downloading"
	case JobStatusProcessing:
		return "processing"
	case JobStatusMoving:
		return "moving"
	case JobStatusCompleted:
		return "completed"
	case JobStatusFailed:
		return "failed"
	case JobStatusCancelled:
		return "cancelled"
	default:
		return fmt.Sprintf("unknown: %d", s)
	}
}

// MarshalText implements encoding.TextMarshaler.
func (s JobStatus) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// IsTerminal reports whether no further transitions are possible.
func (s JobStatus) IsTerminal() bool {
	return s >= JobStatusCompleted
}

// CanTransitionTo reports whether moving from s to next keeps the lifecycle monotonic.
func (s JobStatus) CanTransitionTo(next JobStatus) bool {
	if s.IsTerminal() {
		return false
	}

	return next >= s
}

// Job is a snapshot of a download job.
// Snapshots are copies: mutating one never affects the engine's state.
type Job struct {
	ID              string     `json:"id"`
	Kind            JobKind    `json:"type"`
	Quality         Quality    `json:"quality"`
	QualityLabel    string     `json:"qualityLabel"`
	Status          JobStatus  `json:"status"`
	Progress        int        `json:"progress"`
	Title           string     `json:"title"`
	Artist          string     `json:"artist"`
	Album           string     `json:"album,omitempty"`
	Track           *Track     `json:"track,omitempty"`
	AlbumInfo       *Album     `json:"albumInfo,omitempty"`
	TotalTracks     int        `json:"totalTracks,omitempty"`
	CompletedTracks int        `json:"completedTracks,omitempty"`
	FailedTracks    int        `json:"failedTracks,omitempty"`
	CurrentTrack    string     `json:"currentTrack,omitempty"`
	StartedAt       time.Time  `json:"startTime"`
	EndedAt         *time.Time `json:"endTime,omitempty"`
	ResultPath      string     `json:"path,omitempty"`
	Size            int64      `json:"size,omitempty"`
	Duration        int        `json:"duration,omitempty"`
	Error           string     `json:"error,omitempty"`
}

// Clone returns a deep copy of the job.
func (j *Job) Clone() *Job {
	if j == nil {
		return nil
	}

	clone := *j

	if j.Track != nil {
		track := *j.Track
		clone.Track = &track
	}

	if j.AlbumInfo != nil {
		album := *j.AlbumInfo
		album.Tracks = append([]Track(nil), j.AlbumInfo.Tracks...)
		clone.AlbumInfo = &album
	}

	if j.EndedAt != nil {
		endedAt := *j.EndedAt
		clone.EndedAt = &endedAt
	}

	return &clone
}
