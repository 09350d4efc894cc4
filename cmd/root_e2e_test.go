package cmd_test

import (
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	// testBinaryName is the name of the test binary for E2E tests.
	testBinaryName = "hifi-grabber-test"
)

// TestMain builds the binary before running E2E tests.
func TestMain(m *testing.M) {
	//nolint:noctx // TestMain doesn't have access to context, and build is needed before tests run.
	buildCmd := exec.Command("go", "build", "-o", testBinaryName, "../.")
	if err := buildCmd.Run(); err != nil {
		os.Exit(1)
	}

	code := m.Run()

	_ = os.Remove(testBinaryName)

	os.Exit(code)
}

func runBinary(t *testing.T, args ...string) (string, error) {
	t.Helper()

	cmd := exec.CommandContext(t.Context(), "./"+testBinaryName, args...)
	output, err := cmd.CombinedOutput()

	return string(output), err
}

func writeConfig(t *testing.T, content string) string {
	t.Helper()

	configPath := filepath.Join(t.TempDir(), "test-config.yaml")
	require.NoError(t, os.WriteFile(configPath, []byte(content), 0o644)) //nolint:gosec // It's a test file.

	return configPath
}

// TestE2E_Version tests that the version command needs no configuration.
func TestE2E_Version(t *testing.T) {
	t.Parallel()

	output, err := runBinary(t, "version", "--config", filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err, output)
	assert.Contains(t, output, "version:")
	assert.Contains(t, output, "commit:")
}

// TestE2E_AuthSetToken tests that the token is written without reordering other keys.
func TestE2E_AuthSetToken(t *testing.T) {
	t.Parallel()

	configPath := writeConfig(t, `# catalog settings
catalog_base_url: "https://catalog.example.test"
auth_token: "old"
library_path: "/music"
quality: 27
`)

	output, err := runBinary(t, "auth", "set-token", "new-token", "--config", configPath)
	require.NoError(t, err, output)

	content, err := os.ReadFile(configPath)
	require.NoError(t, err)

	text := string(content)
	assert.Contains(t, text, `auth_token: "new-token"`)
	assert.NotContains(t, text, "old")
	assert.Contains(t, text, "# catalog settings")
	assert.Less(t, strings.Index(text, "catalog_base_url"), strings.Index(text, "auth_token"))
	assert.Less(t, strings.Index(text, "auth_token"), strings.Index(text, "library_path"))
	assert.Less(t, strings.Index(text, "library_path"), strings.Index(text, "quality"))
}

// TestE2E_InvalidConfig tests that an invalid configuration aborts the command.
func TestE2E_InvalidConfig(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		config  string
		message string
	}{
		{
			name:    "unknown log level",
			config:  "log_level: \"chatty\"\nhistory_path: \"history.json\"\n",
			message: "unknown log level",
		},
		{
			name:    "unknown tagger",
			config:  "tagger: \"sox\"\nhistory_path: \"history.json\"\n",
			message: "unknown tagger",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			output, err := runBinary(t, "history", "--config", writeConfig(t, tt.config))
			require.Error(t, err)
			assert.Contains(t, strings.ToLower(output), tt.message)
		})
	}
}

// TestE2E_EmptyHistory tests the history command on a fresh installation.
func TestE2E_EmptyHistory(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	configPath := writeConfig(t, "history_path: \""+filepath.ToSlash(filepath.Join(dir, "history.json"))+"\"\n")

	output, err := runBinary(t, "history", "--config", configPath)
	require.NoError(t, err, output)
	assert.Contains(t, output, "History is empty")
}
