package tagger

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/oshokin/hifi-grabber/internal/model"
)

// Metadata is the fixed set of tag values written into a file.
// Empty fields are skipped.
type Metadata struct {
	Title       string
	Artist      string
	Album       string
	AlbumArtist string
	TrackNumber string
	DiscNumber  string
	TotalTracks string
	Genre       string
	Label       string
	Year        string
	Comment     string
}

// Field is a single tag key and its value.
type Field struct {
	Key   string
	Value string
}

// NewMetadata builds tag values for a track.
// When album is nil the track's own album back-reference is used.
func NewMetadata(track *model.Track, album *model.Album) *Metadata {
	if track == nil {
		return &Metadata{}
	}

	if album == nil {
		album = track.AlbumRef()
	}

	m := &Metadata{
		Title:       strings.TrimSpace(track.Title),
		Artist:      firstNonEmpty(track.Artist, album.Artist),
		Album:       firstNonEmpty(album.Title, track.AlbumTitle),
		AlbumArtist: firstNonEmpty(album.Artist, track.AlbumArtist),
		Genre:       firstNonEmpty(track.Genre, album.Genre),
		Label:       firstNonEmpty(track.Label, album.Label),
		Comment:     Comment(track.MaximumBitDepth, track.MaximumSamplingRate),
	}

	if track.TrackNumber > 0 {
		m.TrackNumber = strconv.Itoa(track.TrackNumber)
	}

	if track.DiscNumber > 0 {
		m.DiscNumber = strconv.Itoa(track.DiscNumber)
	}

	if len(album.Tracks) > 0 {
		m.TotalTracks = strconv.Itoa(len(album.Tracks))
	}

	if year, ok := model.ParseReleaseYear(firstNonEmpty(album.ReleaseDate, track.ReleaseDate)); ok {
		m.Year = strconv.Itoa(year)
	}

	return m
}

// Comment describes the source resolution, e.g. "24-bit / 96 kHz".
// It returns an empty string when neither value is known.
func Comment(bitDepth int, samplingRate float64) string {
	parts := make([]string, 0, 2)

	if bitDepth > 0 {
		parts = append(parts, fmt.Sprintf("%d-bit", bitDepth))
	}

	if samplingRate > 0 {
		parts = append(parts, strconv.FormatFloat(samplingRate, 'f', -1, 64)+" kHz")
	}

	return strings.Join(parts, " / ")
}

// Fields returns the non-empty values keyed the way ffmpeg names them for the container.
func (m *Metadata) Fields(container string) []Field {
	if m == nil {
		return nil
	}

	trackNumber := m.TrackNumber
	if container == model.ContainerMP3 && trackNumber != "" && m.TotalTracks != "" {
		trackNumber += "/" + m.TotalTracks
	}

	candidates := []Field{
		{Key: "title", Value: m.Title},
		{Key: "artist", Value: m.Artist},
		{Key: "album", Value: m.Album},
		{Key: "album_artist", Value: m.AlbumArtist},
		{Key: "track", Value: trackNumber},
		{Key: "disc", Value: m.DiscNumber},
		{Key: "genre", Value: m.Genre},
		{Key: "publisher", Value: m.Label},
		{Key: "date", Value: m.Year},
		{Key: "comment", Value: m.Comment},
	}

	if container != model.ContainerMP3 {
		candidates = append(candidates, Field{Key: "TOTALTRACKS", Value: m.TotalTracks})
	}

	fields := make([]Field, 0, len(candidates))

	for _, f := range candidates {
		if v := strings.TrimSpace(f.Value); v != "" {
			fields = append(fields, Field{Key: f.Key, Value: v})
		}
	}

	return fields
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}

	return ""
}
