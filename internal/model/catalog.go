package model

import (
	"strconv"
	"strings"
	"time"
)

// SearchType selects which entities a catalog search returns.
type SearchType string

const (
	// SearchTypeAlbum searches for albums.
	SearchTypeAlbum SearchType = "album"
	// SearchTypeTrack searches for tracks.
	SearchTypeTrack SearchType = "track"
)

// IsValid reports whether t is a known search type.
func (t SearchType) IsValid() bool {
	return t == SearchTypeAlbum || t == SearchTypeTrack
}

// Track is a single catalog track. Zero values mean "absent".
type Track struct {
	// ID is the catalog identifier.
	ID string `json:"id"`
	// Title is the track title.
	Title string `json:"title"`
	// Artist is the performer name.
	Artist string `json:"artist"`
	// TrackNumber is the position on the disc, 0 when unknown.
	TrackNumber int `json:"trackNumber,omitempty"`
	// DiscNumber is the disc index, 0 when unknown.
	DiscNumber int `json:"discNumber,omitempty"`
	// Duration is the length in seconds.
	Duration int `json:"duration,omitempty"`
	// MaximumBitDepth is the best available bit depth.
	MaximumBitDepth int `json:"maximumBitDepth,omitempty"`
	// MaximumSamplingRate is the best available sample rate in kHz.
	MaximumSamplingRate float64 `json:"maximumSamplingRate,omitempty"`

	// Album back-reference, filled when a track is known outside of its album.
	AlbumID     string `json:"albumId,omitempty"`
	AlbumTitle  string `json:"albumTitle,omitempty"`
	AlbumArtist string `json:"albumArtist,omitempty"`
	ReleaseDate string `json:"releaseDate,omitempty"`
	Genre       string `json:"genre,omitempty"`
	Label       string `json:"label,omitempty"`
	CoverURL    string `json:"cover,omitempty"`
}

// Album is a catalog album with its ordered track list.
type Album struct {
	ID          string  `json:"id"`
	Title       string  `json:"title"`
	Artist      string  `json:"artist"`
	ReleaseDate string  `json:"releaseDate,omitempty"`
	Genre       string  `json:"genre,omitempty"`
	Label       string  `json:"label,omitempty"`
	CoverURL    string  `json:"cover,omitempty"`
	Tracks      []Track `json:"tracks,omitempty"`
}

// SearchResult holds either album or track summaries.
type SearchResult struct {
	Albums []Album `json:"albums,omitempty"`
	Tracks []Track `json:"tracks,omitempty"`
}

// releaseDateLayouts are tried in order before falling back to a leading year.
//
//nolint:gochecknoglobals // Immutable list of layouts.
var releaseDateLayouts = []string{
	time.DateOnly,
	time.RFC3339,
	"2006-01",
	"2006",
}

// ParseReleaseYear extracts the year component of a release date.
// It reports false when no year can be parsed.
func ParseReleaseYear(date string) (int, bool) {
	date = strings.TrimSpace(date)
	if date == "" {
		return 0, false
	}

	for _, layout := range releaseDateLayouts {
		if parsed, err := time.Parse(layout, date); err == nil {
			return parsed.Year(), true
		}
	}

	if len(date) < 4 {
		return 0, false
	}

	year, err := strconv.Atoi(date[:4])
	if err != nil || year <= 0 {
		return 0, false
	}

	return year, true
}

// ReleaseYear returns the album's release year.
func (a *Album) ReleaseYear() (int, bool) {
	if a == nil {
		return 0, false
	}

	return ParseReleaseYear(a.ReleaseDate)
}

// TotalDuration returns the sum of track durations in seconds.
func (a *Album) TotalDuration() int {
	if a == nil {
		return 0
	}

	var total int
	for i := range a.Tracks {
		total += a.Tracks[i].Duration
	}

	return total
}

// AlbumRef builds an Album carrying the track's album back-reference and no tracks.
func (t *Track) AlbumRef() *Album {
	artist := t.AlbumArtist
	if artist == "" {
		artist = t.Artist
	}

	return &Album{
		ID:          t.AlbumID,
		Title:       t.AlbumTitle,
		Artist:      artist,
		ReleaseDate: t.ReleaseDate,
		Genre:       t.Genre,
		Label:       t.Label,
		CoverURL:    t.CoverURL,
	}
}
