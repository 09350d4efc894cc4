package model

import (
	"fmt"
	"strconv"
	"strings"
)

// Quality is the catalog format identifier requested for a stream.
type Quality int

const (
	// QualityMP3320 is a 320 kbps MP3 stream.
	QualityMP3320 Quality = 5
	// QualityCD is 16-bit/44.1kHz FLAC.
	QualityCD Quality = 6
	// QualityHiRes96 is 24-bit/96kHz FLAC.
	QualityHiRes96 Quality = 7
	// QualityHiRes192 is 24-bit/192kHz FLAC.
	QualityHiRes192 Quality = 27

	// DefaultQuality is used for every unrecognized value.
	DefaultQuality = QualityHiRes96
)

// Container names.
const (
	ContainerMP3  = "mp3"
	ContainerFLAC = "flac"
)

// QualityInfo describes a single row of the quality table.
type QualityInfo struct {
	Value     Quality `json:"value"`
	Label     string  `json:"label"`
	Container string  `json:"container"`
}

// Qualities returns the supported qualities in ascending order.
func Qualities() []QualityInfo {
	values := []Quality{QualityMP3320, QualityCD, QualityHiRes96, QualityHiRes192}
	result := make([]QualityInfo, 0, len(values))

	for _, q := range values {
		result = append(result, QualityInfo{
			Value:     q,
			Label:     q.Label(),
			Container: q.Container(),
		})
	}

	return result
}

// NormalizeQuality maps unknown values to DefaultQuality.
func NormalizeQuality(v int) Quality {
	q := Quality(v)
	if !q.IsKnown() {
		return DefaultQuality
	}

	return q
}

// ParseQuality parses a textual quality value such as "27".
// Non-numeric input yields DefaultQuality.
func ParseQuality(s string) Quality {
	v, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return DefaultQuality
	}

	return NormalizeQuality(v)
}

// IsKnown reports whether q is one of the supported values.
func (q Quality) IsKnown() bool {
	switch q {
	case QualityMP3320, QualityCD, QualityHiRes96, QualityHiRes192:
		return true
	default:
		return false
	}
}

// Label returns the human-readable name.
func (q Quality) Label() string {
	switch q {
	case QualityMP3320:
		return "MP3 320k"
	case QualityCD:
		return "CD Quality (16-bit/44.1kHz)"
	case QualityHiRes192:
		return "Hi-Res 192kHz (24-bit/192kHz)"
	default:
		return "Hi-Res 96kHz (24-bit/96kHz)"
	}
}

// Container returns the output container, which is also the file extension.
func (q Quality) Container() string {
	if q == QualityMP3320 {
		return ContainerMP3
	}

	return ContainerFLAC
}

// Extension returns the file extension without a leading dot.
func (q Quality) Extension() string {
	return q.Container()
}

// String implements fmt.Stringer.
func (q Quality) String() string {
	return fmt.Sprintf("%s [%d]", q.Label(), int(q))
}
