package catalog

import (
	"bytes"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/goccy/go-json"

	"github.com/oshokin/hifi-grabber/internal/model"
)

// FetchStreamResult holds the body of a resolved stream.
type FetchStreamResult struct {
	// Body is the stream content. The caller must close it.
	Body io.ReadCloser
	// TotalBytes is the announced length, or -1 when unknown.
	TotalBytes int64
}

// Number decodes a JSON number or a numeric string.
// Anything else, including null and garbage, decodes to zero.
type Number float64

// UnmarshalJSON implements json.Unmarshaler.
func (n *Number) UnmarshalJSON(data []byte) error {
	*n = 0

	raw := strings.TrimSpace(string(data))
	raw = strings.Trim(raw, `"`)

	v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err == nil && !math.IsNaN(v) && !math.IsInf(v, 0) {
		*n = Number(v)
	}

	return nil
}

// Int returns the value truncated to an int.
func (n Number) Int() int {
	return int(n)
}

// ID decodes either a JSON string or a JSON number into a string identifier.
type ID string

// UnmarshalJSON implements json.Unmarshaler.
func (id *ID) UnmarshalJSON(data []byte) error {
	*id = ""

	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*id = ID(strings.TrimSpace(s))

		return nil
	}

	var n json.Number

	decoder := json.NewDecoder(bytes.NewReader(data))
	decoder.UseNumber()

	if err := decoder.Decode(&n); err == nil {
		*id = ID(n.String())
	}

	return nil
}

// Name decodes either a plain string or an object with a "name" field.
type Name string

// UnmarshalJSON implements json.Unmarshaler.
func (n *Name) UnmarshalJSON(data []byte) error {
	*n = ""

	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*n = Name(strings.TrimSpace(s))

		return nil
	}

	var named struct {
		Name string `json:"name"`
	}

	if err := json.Unmarshal(data, &named); err == nil {
		*n = Name(strings.TrimSpace(named.Name))
	}

	return nil
}

// Track is the wire representation of a catalog track.
type Track struct {
	ID                  ID     `json:"id"`
	Title               string `json:"title"`
	Version             string `json:"version"`
	Artist              Name   `json:"artist"`
	TrackNumber         Number `json:"trackNumber"`
	DiscNumber          Number `json:"discNumber"`
	Duration            Number `json:"duration"`
	MaximumBitDepth     Number `json:"maximumBitDepth"`
	MaximumSamplingRate Number `json:"maximumSamplingRate"`
	AlbumID             ID     `json:"albumId"`
	AlbumTitle          string `json:"albumTitle"`
	AlbumArtist         Name   `json:"albumArtist"`
	ReleaseDate         string `json:"releaseDate"`
	Genre               Name   `json:"genre"`
	Label               Name   `json:"label"`
	Cover               string `json:"cover"`
}

// Album is the wire representation of a catalog album.
type Album struct {
	ID          ID      `json:"id"`
	Title       string  `json:"title"`
	Artist      Name    `json:"artist"`
	ReleaseDate string  `json:"releaseDate"`
	Genre       Name    `json:"genre"`
	Label       Name    `json:"label"`
	Cover       string  `json:"cover"`
	Tracks      []Track `json:"tracks"`
}

// SearchResponse is the payload of the search endpoint.
type SearchResponse struct {
	Albums []Album `json:"albums"`
	Tracks []Track `json:"tracks"`
}

// AlbumResponse is the payload of the album endpoint.
type AlbumResponse struct {
	Album *Album `json:"album"`
}

// StreamResponse is the payload of the stream endpoint.
type StreamResponse struct {
	URL string `json:"url"`
}

// ToModel converts the wire track into the domain type.
func (t *Track) ToModel() model.Track {
	title := strings.TrimSpace(t.Title)
	if version := strings.TrimSpace(t.Version); version != "" && !strings.Contains(title, version) {
		title += " (" + version + ")"
	}

	return model.Track{
		ID:                  string(t.ID),
		Title:               title,
		Artist:              string(t.Artist),
		TrackNumber:         t.TrackNumber.Int(),
		DiscNumber:          t.DiscNumber.Int(),
		Duration:            t.Duration.Int(),
		MaximumBitDepth:     t.MaximumBitDepth.Int(),
		MaximumSamplingRate: float64(t.MaximumSamplingRate),
		AlbumID:             string(t.AlbumID),
		AlbumTitle:          strings.TrimSpace(t.AlbumTitle),
		AlbumArtist:         string(t.AlbumArtist),
		ReleaseDate:         strings.TrimSpace(t.ReleaseDate),
		Genre:               string(t.Genre),
		Label:               string(t.Label),
		CoverURL:            strings.TrimSpace(t.Cover),
	}
}

// ToModel converts the wire album into the domain type.
// Tracks inherit the album back-reference fields they do not carry themselves.
func (a *Album) ToModel() *model.Album {
	album := &model.Album{
		ID:          string(a.ID),
		Title:       strings.TrimSpace(a.Title),
		Artist:      string(a.Artist),
		ReleaseDate: strings.TrimSpace(a.ReleaseDate),
		Genre:       string(a.Genre),
		Label:       string(a.Label),
		CoverURL:    strings.TrimSpace(a.Cover),
		Tracks:      make([]model.Track, 0, len(a.Tracks)),
	}

	for i := range a.Tracks {
		track := a.Tracks[i].ToModel()
		inheritAlbum(&track, album)
		album.Tracks = append(album.Tracks, track)
	}

	return album
}

func inheritAlbum(track *model.Track, album *model.Album) {
	if track.AlbumID == "" {
		track.AlbumID = album.ID
	}

	if track.AlbumTitle == "" {
		track.AlbumTitle = album.Title
	}

	if track.AlbumArtist == "" {
		track.AlbumArtist = album.Artist
	}

	if track.Artist == "" {
		track.Artist = album.Artist
	}

	if track.ReleaseDate == "" {
		track.ReleaseDate = album.ReleaseDate
	}

	if track.Genre == "" {
		track.Genre = album.Genre
	}

	if track.Label == "" {
		track.Label = album.Label
	}

	if track.CoverURL == "" {
		track.CoverURL = album.CoverURL
	}
}
