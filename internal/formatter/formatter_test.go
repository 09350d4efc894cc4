package formatter

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"

	"github.com/oshokin/hifi-grabber/internal/model"
)

// TestSanitizeComponent tests the sanitizing rules on representative inputs.
func TestSanitizeComponent(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{name: "plain", input: "Kind of Blue", expected: "Kind of Blue"},
		{name: "empty", input: "", expected: "Unknown"},
		{name: "only spaces", input: "   \t  ", expected: "Unknown"},
		{name: "only illegal", input: `<>:"/\|?*`, expected: "Unknown"},
		{name: "illegal removed", input: `AC/DC: Back?`, expected: "ACDC Back"},
		{name: "whitespace collapsed", input: "  a   b  \n c ", expected: "a b c"},
		{name: "control chars", input: "a\x00b\x1fc\x7f", expected: "abc"},
		{name: "tab between words", input: "Part 1\tPart 2", expected: "Part 1 Part 2"},
		{name: "newline between words", input: "Line one\nLine two", expected: "Line one Line two"},
		{name: "crlf between words", input: "A\r\nB", expected: "A B"},
		{name: "illegal between spaces", input: "Side A / Side B", expected: "Side A Side B"},
		{name: "unicode kept", input: "Björk – Homogénic", expected: "Björk – Homogénic"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tt.expected, SanitizeComponent(tt.input))
		})
	}
}

// TestSanitizeComponentTruncation tests that long values are cut to 80 runes and trimmed again.
func TestSanitizeComponentTruncation(t *testing.T) {
	t.Parallel()

	long := strings.Repeat("я", 100)
	result := SanitizeComponent(long)
	assert.Equal(t, MaxComponentLength, utf8.RuneCountInString(result))

	// The 80th rune is a space, so the result is trimmed to 79.
	spaced := strings.Repeat("a", 79) + " b" + strings.Repeat("c", 10)
	result = SanitizeComponent(spaced)
	assert.Equal(t, strings.Repeat("a", 79), result)
}

// TestSanitizeComponentProperties tests output invariants over a set of awkward inputs.
func TestSanitizeComponentProperties(t *testing.T) {
	t.Parallel()

	inputs := []string{
		"",
		" ",
		"normal",
		"a  b",
		"<<a>>",
		"\"quoted\"",
		"tab\tseparated\tvalues",
		strings.Repeat("x ", 60),
		strings.Repeat("/", 200),
		"Ω≈ç√∫ ˜µ≤≥÷",
		"trailing dot.",
		"\x01\x02\x03",
	}

	for _, input := range inputs {
		result := SanitizeComponent(input)

		assert.False(t, strings.ContainsAny(result, `<>:"/\|?*`), "input %q", input)
		assert.NotContains(t, result, "  ", "input %q", input)
		assert.LessOrEqual(t, utf8.RuneCountInString(result), MaxComponentLength, "input %q", input)
		assert.Equal(t, strings.TrimSpace(result), result, "input %q", input)
		assert.Equal(t, result, SanitizeComponent(result), "input %q", input)
		assert.NotEmpty(t, result)
	}
}

// TestAlbumFolderName tests folder naming with and without a release year.
func TestAlbumFolderName(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		album    *model.Album
		expected string
	}{
		{
			name:     "with year",
			album:    &model.Album{Artist: "Miles Davis", Title: "Kind of Blue", ReleaseDate: "1959-08-17"},
			expected: "Miles Davis - Kind of Blue (1959)",
		},
		{
			name:     "year only",
			album:    &model.Album{Artist: "Portishead", Title: "Dummy", ReleaseDate: "1994"},
			expected: "Portishead - Dummy (1994)",
		},
		{
			name:     "unparseable year",
			album:    &model.Album{Artist: "Artist", Title: "Title", ReleaseDate: "someday"},
			expected: "Artist - Title",
		},
		{
			name:     "missing fields",
			album:    &model.Album{},
			expected: "Unknown - Unknown",
		},
		{
			name:     "illegal characters",
			album:    &model.Album{Artist: "AC/DC", Title: "Who Made Who?", ReleaseDate: "1986-05-24"},
			expected: "ACDC - Who Made Who (1986)",
		},
		{
			name:     "nil album",
			album:    nil,
			expected: "Unknown - Unknown",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			first := AlbumFolderName(tt.album)
			assert.Equal(t, tt.expected, first)
			assert.Equal(t, first, AlbumFolderName(tt.album))
		})
	}
}

// TestTrackFileName tests track file naming.
func TestTrackFileName(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		track    *model.Track
		ext      string
		expected string
	}{
		{name: "numbered", track: &model.Track{Title: "So What", TrackNumber: 1}, ext: "flac", expected: "01 - So What.flac"},
		{name: "two digits", track: &model.Track{Title: "Outro", TrackNumber: 12}, ext: "mp3", expected: "12 - Outro.mp3"},
		{name: "three digits", track: &model.Track{Title: "Long", TrackNumber: 104}, ext: "flac", expected: "104 - Long.flac"},
		{name: "missing number", track: &model.Track{Title: "Intro"}, ext: "flac", expected: "01 - Intro.flac"},
		{name: "negative number", track: &model.Track{Title: "Intro", TrackNumber: -3}, ext: "flac", expected: "01 - Intro.flac"},
		{name: "dotted extension", track: &model.Track{Title: "A", TrackNumber: 2}, ext: ".mp3", expected: "02 - A.mp3"},
		{name: "illegal title", track: &model.Track{Title: "What?/Why:", TrackNumber: 3}, ext: "flac", expected: "03 - WhatWhy.flac"},
		{name: "nil track", track: nil, ext: "flac", expected: "01 - Unknown.flac"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tt.expected, TrackFileName(tt.track, tt.ext))
		})
	}
}
