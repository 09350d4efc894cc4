package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"

	"github.com/oshokin/hifi-grabber/internal/constants"
	"github.com/oshokin/hifi-grabber/internal/model"
)

// newValidConfig returns a configuration that passes validation.
func newValidConfig() *Config {
	return &Config{
		AuthToken:          "valid_token",
		CatalogBaseURL:     "https://catalog.example.com",
		LibraryPath:        "/music",
		TempPath:           "/tmp/hifi",
		HistoryPath:        "/var/lib/hifi/history.json",
		HistoryLimit:       500,
		Quality:            27,
		LogLevel:           "info",
		EvictionDelay:      "15s",
		Tagger:             "ffmpeg",
		TaggingTimeout:     "30s",
		HTTPTimeout:        "30s",
		RetryAttemptsCount: 3,
		RetryBaseDelay:     "2s",
		RetryMultiplier:    2,
		DownloadSpeedLimit: "1MB",
	}
}

// TestConstants tests the constants.
func TestConstants(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 1024*1024, DefaultMaxLogLength)
	assert.Equal(t, 500, DefaultHistoryLimit)
	assert.Equal(t, "15s", DefaultEvictionDelay)
	assert.Equal(t, "30s", DefaultTaggingTimeout)
}

// TestLoadConfig tests the LoadConfig function.
//
//nolint:paralleltest // LoadConfig uses the global viper instance.
func TestLoadConfig(t *testing.T) {
	tests := []struct {
		name           string
		configFilename string
		configContent  string
		expectError    bool
		expectedError  string
	}{
		{
			name:           "valid config file",
			configFilename: "valid_config.yaml",
			configContent: `
auth_token: "test_token"
catalog_base_url: "https://catalog.example.com"
library_path: "/music"
quality: 27
log_level: "debug"
eviction_delay: "12s"
tagger: "native"
max_concurrent_jobs: 2
cors_allowed_origins:
  - "http://localhost:5173"
`,
			expectError: false,
		},
		{
			name:           "non-existent file",
			configFilename: "non_existent.yaml",
			expectError:    true,
			expectedError:  "failed to read config from file",
		},
		{
			name:           "invalid yaml",
			configFilename: "invalid.yaml",
			configContent: `
invalid: yaml: content: [unclosed
`,
			expectError:   true,
			expectedError: "failed to read config from file",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			configPath := filepath.Join(t.TempDir(), tt.configFilename)

			if tt.configContent != "" {
				err := os.WriteFile(configPath, []byte(tt.configContent), constants.DefaultFilePermissions)
				require.NoError(t, err)
			}

			cfg, err := LoadConfig(configPath)

			if tt.expectError {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.expectedError)
				assert.Nil(t, cfg)

				return
			}

			require.NoError(t, err)
			require.NotNil(t, cfg)
			assert.Equal(t, "test_token", cfg.AuthToken)
			assert.Equal(t, 27, cfg.Quality)
			assert.Equal(t, "native", cfg.Tagger)
			assert.Equal(t, "12s", cfg.EvictionDelay)
			assert.Equal(t, int64(2), cfg.MaxConcurrentJobs)
			assert.Equal(t, []string{"http://localhost:5173"}, cfg.CORSAllowedOrigins)

			// Keys missing from the file keep their defaults.
			assert.Equal(t, DefaultHistoryLimit, cfg.HistoryLimit)
			assert.Equal(t, DefaultTaggingTimeout, cfg.TaggingTimeout)
			assert.Equal(t, DefaultFFmpegPath, cfg.FFmpegPath)
			assert.InDelta(t, DefaultRetryMultiplier, cfg.RetryMultiplier, 0.0001)

			require.NoError(t, ValidateConfig(cfg))
			assert.Equal(t, zapcore.DebugLevel, cfg.ParsedLogLevel)
			assert.Equal(t, 12*time.Second, cfg.ParsedEvictionDelay)
		})
	}
}

// TestValidateConfig tests the ValidateConfig function.
func TestValidateConfig(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		modify   func(cfg *Config)
		errorMsg string
	}{
		{
			name:   "valid config",
			modify: func(*Config) {},
		},
		{
			name:   "empty auth token is allowed",
			modify: func(cfg *Config) { cfg.AuthToken = "   " },
		},
		{
			name:     "relative catalog url",
			modify:   func(cfg *Config) { cfg.CatalogBaseURL = "catalog.example.com" },
			errorMsg: "catalog_base_url must be an absolute http(s) URL",
		},
		{
			name:     "unsupported catalog scheme",
			modify:   func(cfg *Config) { cfg.CatalogBaseURL = "ftp://catalog.example.com" },
			errorMsg: "catalog_base_url must be an absolute http(s) URL",
		},
		{
			name:     "empty library path",
			modify:   func(cfg *Config) { cfg.LibraryPath = " " },
			errorMsg: "library_path cannot be empty",
		},
		{
			name:     "empty history path",
			modify:   func(cfg *Config) { cfg.HistoryPath = "" },
			errorMsg: "history_path cannot be empty",
		},
		{
			name:     "zero history limit",
			modify:   func(cfg *Config) { cfg.HistoryLimit = 0 },
			errorMsg: "history_limit must be a positive integer",
		},
		{
			name:     "invalid log level",
			modify:   func(cfg *Config) { cfg.LogLevel = "invalid" },
			errorMsg: "unknown log level:",
		},
		{
			name:     "negative log backups",
			modify:   func(cfg *Config) { cfg.LogMaxBackups = -1 },
			errorMsg: "log rotation settings cannot be negative",
		},
		{
			name:     "negative concurrent jobs",
			modify:   func(cfg *Config) { cfg.MaxConcurrentJobs = -1 },
			errorMsg: "max_concurrent_jobs cannot be negative",
		},
		{
			name:     "invalid eviction delay",
			modify:   func(cfg *Config) { cfg.EvictionDelay = "soon" },
			errorMsg: "failed to parse eviction delay:",
		},
		{
			name:     "zero eviction delay",
			modify:   func(cfg *Config) { cfg.EvictionDelay = "0s" },
			errorMsg: "eviction_delay must be positive",
		},
		{
			name:     "unknown tagger",
			modify:   func(cfg *Config) { cfg.Tagger = "sox" },
			errorMsg: "unknown tagger:",
		},
		{
			name:     "invalid tagging timeout",
			modify:   func(cfg *Config) { cfg.TaggingTimeout = "never" },
			errorMsg: "failed to parse tagging timeout:",
		},
		{
			name:     "negative tagging timeout",
			modify:   func(cfg *Config) { cfg.TaggingTimeout = "-1s" },
			errorMsg: "tagging_timeout must be positive",
		},
		{
			name:     "zero http timeout",
			modify:   func(cfg *Config) { cfg.HTTPTimeout = "0s" },
			errorMsg: "http_timeout must be positive",
		},
		{
			name:     "negative rate limit",
			modify:   func(cfg *Config) { cfg.CatalogRateLimit = -1 },
			errorMsg: "catalog_rate_limit cannot be negative",
		},
		{
			name:     "invalid retry attempts count",
			modify:   func(cfg *Config) { cfg.RetryAttemptsCount = 0 },
			errorMsg: "retry_attempts_count must be a positive integer",
		},
		{
			name:     "invalid retry base delay",
			modify:   func(cfg *Config) { cfg.RetryBaseDelay = "invalid" },
			errorMsg: "failed to parse retry base delay:",
		},
		{
			name:     "retry multiplier below one",
			modify:   func(cfg *Config) { cfg.RetryMultiplier = 0.5 },
			errorMsg: "retry_multiplier must be at least 1",
		},
		{
			name:     "invalid download speed limit",
			modify:   func(cfg *Config) { cfg.DownloadSpeedLimit = "invalid" },
			errorMsg: "failed to parse download speed limit:",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cfg := newValidConfig()
			tt.modify(cfg)

			err := ValidateConfig(cfg)

			if tt.errorMsg != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errorMsg)

				return
			}

			require.NoError(t, err)
			assert.Equal(t, zapcore.InfoLevel, cfg.ParsedLogLevel)
			assert.Equal(t, 15*time.Second, cfg.ParsedEvictionDelay)
			assert.Equal(t, 30*time.Second, cfg.ParsedTaggingTimeout)
			assert.Equal(t, 2*time.Second, cfg.ParsedRetryBaseDelay)
		})
	}
}

// TestValidateConfig_Normalization tests the derived and defaulted fields.
func TestValidateConfig_Normalization(t *testing.T) {
	t.Parallel()

	cfg := newValidConfig()
	cfg.CatalogBaseURL = " https://catalog.example.com/ "
	cfg.TempPath = ""
	cfg.Tagger = " Native "
	cfg.FFmpegPath = ""
	cfg.Quality = 12

	require.NoError(t, ValidateConfig(cfg))

	assert.Equal(t, "https://catalog.example.com", cfg.CatalogBaseURL)
	assert.Equal(t, filepath.Join(os.TempDir(), "hifi-grabber"), cfg.TempPath)
	assert.Equal(t, TaggerNative, cfg.Tagger)
	assert.Equal(t, DefaultFFmpegPath, cfg.FFmpegPath)
	assert.Equal(t, model.QualityHiRes96, cfg.ParsedQuality)
}

// TestValidateConfig_DownloadSpeedLimit tests download speed limit validation.
func TestValidateConfig_DownloadSpeedLimit(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name          string
		speedLimit    string
		expectedBytes int64
	}{
		{name: "empty limit", speedLimit: "", expectedBytes: 0},
		{name: "zero limit", speedLimit: "0", expectedBytes: 0},
		{name: "1KB limit", speedLimit: "1KB", expectedBytes: 1000},
		{name: "1MB limit", speedLimit: "1MB", expectedBytes: 1000000},
		{name: "1MiB limit", speedLimit: "1MiB", expectedBytes: 1048576},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cfg := newValidConfig()
			cfg.DownloadSpeedLimit = tt.speedLimit

			require.NoError(t, ValidateConfig(cfg))
			assert.Equal(t, tt.expectedBytes, cfg.ParsedDownloadSpeedLimit)
		})
	}
}

// TestSaveConfig tests that the token is replaced while other keys keep their order.
//
//nolint:paralleltest // SaveConfig uses the global viper instance.
func TestSaveConfig(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "config.yaml")
	original := "# catalog settings\nlibrary_path: /music\nauth_token: old\nquality: 7\n"

	require.NoError(t, os.WriteFile(configPath, []byte(original), constants.DefaultFilePermissions))

	cfg, err := LoadConfig(configPath)
	require.NoError(t, err)

	cfg.AuthToken = "new-token"
	require.NoError(t, SaveConfig(cfg))

	content, err := os.ReadFile(configPath)
	require.NoError(t, err)

	text := string(content)
	assert.Contains(t, text, "# catalog settings")
	assert.Contains(t, text, `auth_token: "new-token"`)
	assert.Less(t, strings.Index(text, "library_path"), strings.Index(text, "auth_token"))
	assert.Less(t, strings.Index(text, "auth_token"), strings.Index(text, "quality"))
}

// TestSetAuthTokenInNode tests token insertion into documents that lack the key.
func TestSetAuthTokenInNode(t *testing.T) {
	t.Parallel()

	var node yaml.Node
	require.NoError(t, yaml.Unmarshal([]byte("quality: 7\n"), &node))

	setAuthTokenInNode(&node, "abc")

	var decoded map[string]any
	content, err := yaml.Marshal(&node)
	require.NoError(t, err)
	require.NoError(t, yaml.Unmarshal(content, &decoded))
	assert.Equal(t, "abc", decoded["auth_token"])
	assert.Equal(t, 7, decoded["quality"])

	var empty yaml.Node
	setAuthTokenInNode(&empty, "xyz")

	content, err = yaml.Marshal(&empty)
	require.NoError(t, err)
	assert.Contains(t, string(content), `auth_token: "xyz"`)
}

// TestHandleMissingConfigFile tests that a missing file is created with the token.
func TestHandleMissingConfigFile(t *testing.T) {
	t.Parallel()

	configPath := filepath.Join(t.TempDir(), "fresh.yaml")

	_, readErr := os.ReadFile(configPath)
	require.Error(t, readErr)

	require.NoError(t, handleMissingConfigFile(configPath, "token", readErr))

	content, err := os.ReadFile(configPath)
	require.NoError(t, err)
	assert.Contains(t, string(content), "auth_token: token")
}
