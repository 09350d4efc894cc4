package formatter

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/samber/lo"

	"github.com/oshokin/hifi-grabber/internal/model"
)

const (
	// MaxComponentLength is the maximum length of a sanitized component in runes.
	MaxComponentLength = 80

	// UnknownComponent replaces components that are empty after sanitizing.
	UnknownComponent = "Unknown"
)

// illegalCharsPattern matches characters that are not allowed in file names
// on common filesystems, plus ASCII control characters.
//
//nolint:gochecknoglobals // Immutable, pre-compiled regex pattern.
var illegalCharsPattern = regexp.MustCompile(`[<>:"/\\|?*\x00-\x1f\x7f]`)

// SanitizeComponent turns an arbitrary metadata value into a single path component.
func SanitizeComponent(s string) string {
	words := lo.FilterMap(strings.Fields(s), func(word string, _ int) (string, bool) {
		word = illegalCharsPattern.ReplaceAllString(word, "")

		return word, word != ""
	})

	result := strings.Join(words, " ")

	if runes := []rune(result); len(runes) > MaxComponentLength {
		result = strings.TrimSpace(string(runes[:MaxComponentLength]))
	}

	if result == "" {
		return UnknownComponent
	}

	return result
}

// AlbumFolderName returns "{artist} - {title}", suffixed with " ({year})"
// when the album has a parseable release year.
func AlbumFolderName(album *model.Album) string {
	if album == nil {
		return SanitizeComponent("") + " - " + SanitizeComponent("")
	}

	name := SanitizeComponent(album.Artist) + " - " + SanitizeComponent(album.Title)

	if year, ok := album.ReleaseYear(); ok {
		name += fmt.Sprintf(" (%d)", year)
	}

	return name
}

// TrackFileName returns "{NN} - {title}.{ext}".
// Non-positive track numbers are rendered as 01.
func TrackFileName(track *model.Track, ext string) string {
	number := 1
	title := ""

	if track != nil {
		title = track.Title

		if track.TrackNumber > 0 {
			number = track.TrackNumber
		}
	}

	ext = strings.TrimPrefix(ext, ".")

	return fmt.Sprintf("%02d - %s.%s", number, SanitizeComponent(title), ext)
}
