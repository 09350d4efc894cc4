package version

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestBuildInfo tests the version strings derived from the link-time variables.
func TestBuildInfo(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		got      string
		expected string
	}{
		{
			name:     "short",
			got:      Short(),
			expected: Version,
		},
		{
			name:     "full",
			got:      Full(),
			expected: "version: " + Version + ", commit: " + Commit + ", built at: " + BuildTime,
		},
		{
			name:     "user agent",
			got:      UserAgent(),
			expected: "hifi-grabber/" + Version + " (+https://github.com/oshokin/hifi-grabber)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tt.expected, tt.got)
		})
	}
}

// TestDefaults tests the values used when no ldflags are given.
func TestDefaults(t *testing.T) {
	t.Parallel()

	assert.NotEmpty(t, Commit)
	assert.NotEmpty(t, BuildTime)
	assert.Len(t, strings.Split(Version, "."), 3, "semantic version")
	assert.NotContains(t, UserAgent(), " /", "no empty product token")
}
