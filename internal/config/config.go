package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/viper"
	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"

	"github.com/oshokin/hifi-grabber/internal/constants"
	"github.com/oshokin/hifi-grabber/internal/logger"
	"github.com/oshokin/hifi-grabber/internal/model"
	"github.com/oshokin/hifi-grabber/internal/utils"
)

// Config holds all configuration settings.
type Config struct {
	// AuthToken is the token sent to the catalog API.
	AuthToken string `mapstructure:"auth_token"`
	// CatalogBaseURL is the base URL of the catalog API.
	CatalogBaseURL string `mapstructure:"catalog_base_url"`
	// LibraryPath is the root of the music library where finished albums are placed.
	LibraryPath string `mapstructure:"library_path"`
	// TempPath is the root for temporary files and album staging directories.
	TempPath string `mapstructure:"temp_path"`
	// HistoryPath is the JSON file holding the download history.
	HistoryPath string `mapstructure:"history_path"`
	// HistoryLimit is the maximum number of history records kept.
	HistoryLimit int `mapstructure:"history_limit"`
	// Quality is the default stream quality (5, 6, 7 or 27).
	Quality int `mapstructure:"quality"`
	// LogLevel specifies the logging verbosity level.
	LogLevel string `mapstructure:"log_level"`
	// LogFile is an optional path of a rotated JSON log file.
	LogFile string `mapstructure:"log_file"`
	// LogMaxSizeMB is the size of the log file that triggers rotation.
	LogMaxSizeMB int `mapstructure:"log_max_size_mb"`
	// LogMaxBackups is the number of rotated log files kept.
	LogMaxBackups int `mapstructure:"log_max_backups"`
	// LogMaxAgeDays is the number of days rotated log files are kept.
	LogMaxAgeDays int `mapstructure:"log_max_age_days"`
	// ListenAddress is the address of the HTTP server started by "serve".
	ListenAddress string `mapstructure:"listen_address"`
	// MaxConcurrentJobs caps the number of running jobs. Zero means unbounded.
	MaxConcurrentJobs int64 `mapstructure:"max_concurrent_jobs"`
	// EvictionDelay is how long a finished job stays visible in the active list (e.g. "15s").
	EvictionDelay string `mapstructure:"eviction_delay"`
	// Tagger selects the tagging backend: "ffmpeg" or "native".
	Tagger string `mapstructure:"tagger"`
	// FFmpegPath is the ffmpeg binary used by the ffmpeg tagger.
	FFmpegPath string `mapstructure:"ffmpeg_path"`
	// TaggingTimeout is the hard limit of a single tagging run (e.g. "30s").
	TaggingTimeout string `mapstructure:"tagging_timeout"`
	// HTTPTimeout bounds catalog API calls and the wait for stream response headers.
	HTTPTimeout string `mapstructure:"http_timeout"`
	// CatalogRateLimit is the maximum number of catalog requests per second. Zero disables limiting.
	CatalogRateLimit float64 `mapstructure:"catalog_rate_limit"`
	// RetryAttemptsCount is the number of stream resolution attempts for album tracks.
	RetryAttemptsCount int64 `mapstructure:"retry_attempts_count"`
	// RetryBaseDelay is the pause after the first failed attempt (e.g. "2s").
	RetryBaseDelay string `mapstructure:"retry_base_delay"`
	// RetryMultiplier scales the pause after every further failed attempt.
	RetryMultiplier float64 `mapstructure:"retry_multiplier"`
	// DownloadSpeedLimit sets the maximum download speed (e.g., "1MB", "500KB").
	DownloadSpeedLimit string `mapstructure:"download_speed_limit"`
	// CORSAllowedOrigins lists the origins allowed to call the HTTP API.
	CORSAllowedOrigins []string `mapstructure:"cors_allowed_origins"`
	// UserAgents is an optional list of User-Agent values rotated across catalog requests.
	UserAgents []string `mapstructure:"user_agents"`
	// ParsedQuality is the normalized default quality.
	ParsedQuality model.Quality
	// ParsedLogLevel is the parsed zap log level.
	ParsedLogLevel zapcore.Level
	// ParsedEvictionDelay is the parsed eviction delay.
	ParsedEvictionDelay time.Duration
	// ParsedTaggingTimeout is the parsed tagging timeout.
	ParsedTaggingTimeout time.Duration
	// ParsedHTTPTimeout is the parsed HTTP timeout.
	ParsedHTTPTimeout time.Duration
	// ParsedRetryBaseDelay is the parsed retry base delay.
	ParsedRetryBaseDelay time.Duration
	// ParsedDownloadSpeedLimit is the parsed download speed limit in bytes.
	ParsedDownloadSpeedLimit int64
}

const (
	// DefaultConfigFilename is the default name of the configuration file.
	DefaultConfigFilename = ".hifi-grabber.yaml"

	// DefaultCatalogBaseURL is the catalog API used when none is configured.
	DefaultCatalogBaseURL = "http://localhost:8000"

	// DefaultLibraryPath is the default library root.
	DefaultLibraryPath = "Music"

	// DefaultHistoryPath is the default history file.
	DefaultHistoryPath = "hifi-grabber-history.json"

	// DefaultHistoryLimit is the default number of history records kept.
	DefaultHistoryLimit = 500

	// DefaultListenAddress is the default address of the HTTP server.
	DefaultListenAddress = ":8080"

	// DefaultEvictionDelay is how long finished jobs stay in the active list by default.
	DefaultEvictionDelay = "15s"

	// DefaultTaggingTimeout is the default hard limit of a tagging run.
	DefaultTaggingTimeout = "30s"

	// DefaultHTTPTimeout is the default HTTP timeout.
	DefaultHTTPTimeout = "30s"

	// DefaultRetryBaseDelay is the default pause after the first failed attempt.
	DefaultRetryBaseDelay = "2s"

	// DefaultRetryMultiplier is the default backoff multiplier.
	DefaultRetryMultiplier = 2.0

	// DefaultRetryAttemptsCount is the default number of attempts for album tracks.
	DefaultRetryAttemptsCount = 3

	// DefaultFFmpegPath is the default ffmpeg binary name looked up in PATH.
	DefaultFFmpegPath = "ffmpeg"

	// DefaultMaxLogLength is the maximum size (in bytes) of a request or response body dumped to the log.
	DefaultMaxLogLength = 1 * 1024 * 1024 // 1 MB

	// TaggerFFmpeg selects the ffmpeg tagger.
	TaggerFFmpeg = "ffmpeg"
	// TaggerNative selects the in-process tagger.
	TaggerNative = "native"

	// tempFolderName is the folder created under the system temp directory when temp_path is empty.
	tempFolderName = "hifi-grabber"
)

// Static error definitions for better error handling.
var (
	// ErrInvalidCatalogBaseURL indicates that the catalog base URL is not an absolute HTTP(S) URL.
	ErrInvalidCatalogBaseURL = errors.New("catalog_base_url must be an absolute http(s) URL")
	// ErrEmptyLibraryPath indicates that the library path is missing.
	ErrEmptyLibraryPath = errors.New("library_path cannot be empty")
	// ErrEmptyHistoryPath indicates that the history path is missing.
	ErrEmptyHistoryPath = errors.New("history_path cannot be empty")
	// ErrInvalidHistoryLimit indicates that the history limit is invalid.
	ErrInvalidHistoryLimit = errors.New("history_limit must be a positive integer")
	// ErrUnknownLogLevel indicates that the log level is not recognized.
	ErrUnknownLogLevel = errors.New("unknown log level")
	// ErrInvalidLogRotation indicates that one of the log rotation settings is negative.
	ErrInvalidLogRotation = errors.New("log rotation settings cannot be negative")
	// ErrInvalidConcurrentJobs indicates that the concurrent jobs cap is negative.
	ErrInvalidConcurrentJobs = errors.New("max_concurrent_jobs cannot be negative")
	// ErrInvalidEvictionDelay indicates that the eviction delay is not positive.
	ErrInvalidEvictionDelay = errors.New("eviction_delay must be positive")
	// ErrUnknownTagger indicates that the tagger backend is not recognized.
	ErrUnknownTagger = errors.New("unknown tagger")
	// ErrInvalidTaggingTimeout indicates that the tagging timeout is not positive.
	ErrInvalidTaggingTimeout = errors.New("tagging_timeout must be positive")
	// ErrInvalidHTTPTimeout indicates that the HTTP timeout is not positive.
	ErrInvalidHTTPTimeout = errors.New("http_timeout must be positive")
	// ErrInvalidCatalogRateLimit indicates that the catalog rate limit is negative.
	ErrInvalidCatalogRateLimit = errors.New("catalog_rate_limit cannot be negative")
	// ErrInvalidRetryAttempts indicates that the retry attempts count is invalid.
	ErrInvalidRetryAttempts = errors.New("retry_attempts_count must be a positive integer")
	// ErrInvalidRetryBaseDelay indicates that the retry base delay is negative.
	ErrInvalidRetryBaseDelay = errors.New("retry_base_delay cannot be negative")
	// ErrInvalidRetryMultiplier indicates that the retry multiplier is below 1.
	ErrInvalidRetryMultiplier = errors.New("retry_multiplier must be at least 1")
)

// setDefaults registers the value of every key that may be omitted from the file.
func setDefaults(v *viper.Viper) {
	v.SetDefault("catalog_base_url", DefaultCatalogBaseURL)
	v.SetDefault("library_path", DefaultLibraryPath)
	v.SetDefault("temp_path", "")
	v.SetDefault("history_path", DefaultHistoryPath)
	v.SetDefault("history_limit", DefaultHistoryLimit)
	v.SetDefault("quality", int(model.DefaultQuality))
	v.SetDefault("log_level", "info")
	v.SetDefault("log_max_size_mb", 10)
	v.SetDefault("log_max_backups", 3)
	v.SetDefault("log_max_age_days", 28)
	v.SetDefault("listen_address", DefaultListenAddress)
	v.SetDefault("max_concurrent_jobs", 0)
	v.SetDefault("eviction_delay", DefaultEvictionDelay)
	v.SetDefault("tagger", TaggerFFmpeg)
	v.SetDefault("ffmpeg_path", DefaultFFmpegPath)
	v.SetDefault("tagging_timeout", DefaultTaggingTimeout)
	v.SetDefault("http_timeout", DefaultHTTPTimeout)
	v.SetDefault("catalog_rate_limit", 0)
	v.SetDefault("retry_attempts_count", DefaultRetryAttemptsCount)
	v.SetDefault("retry_base_delay", DefaultRetryBaseDelay)
	v.SetDefault("retry_multiplier", DefaultRetryMultiplier)
	v.SetDefault("download_speed_limit", "")
	v.SetDefault("cors_allowed_origins", []string{"*"})
}

// LoadConfig loads configuration settings from a YAML file.
// When no filename is given and the default file does not exist, only defaults are used.
func LoadConfig(configFilename string) (*Config, error) {
	isDefaultFile := configFilename == ""
	if isDefaultFile {
		configFilename = DefaultConfigFilename
	}

	setDefaults(viper.GetViper())
	viper.SetConfigFile(configFilename)

	if err := viper.ReadInConfig(); err != nil {
		if !isDefaultFile || !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("failed to read config from file: %w", err)
		}
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &cfg, nil
}

// ValidateConfig checks the configuration for validity and sets derived fields.
//
//nolint:funlen,gocognit,cyclop // Validation functions naturally have high complexity and length due to sequential checks.
func ValidateConfig(cfg *Config) error {
	var (
		downloadSpeedLimit       = strings.TrimSpace(cfg.DownloadSpeedLimit)
		parsedDownloadSpeedLimit uint64
		err                      error
	)

	cfg.AuthToken = strings.TrimSpace(cfg.AuthToken)

	cfg.CatalogBaseURL = strings.TrimRight(strings.TrimSpace(cfg.CatalogBaseURL), "/")
	if cfg.CatalogBaseURL == "" {
		cfg.CatalogBaseURL = DefaultCatalogBaseURL
	}

	baseURL, err := url.Parse(cfg.CatalogBaseURL)
	if err != nil || (baseURL.Scheme != "http" && baseURL.Scheme != "https") || baseURL.Host == "" {
		return fmt.Errorf("%w: '%s'", ErrInvalidCatalogBaseURL, cfg.CatalogBaseURL)
	}

	if strings.TrimSpace(cfg.LibraryPath) == "" {
		return ErrEmptyLibraryPath
	}

	if strings.TrimSpace(cfg.TempPath) == "" {
		cfg.TempPath = filepath.Join(os.TempDir(), tempFolderName)
	}

	if strings.TrimSpace(cfg.HistoryPath) == "" {
		return ErrEmptyHistoryPath
	}

	if cfg.HistoryLimit <= 0 {
		return ErrInvalidHistoryLimit
	}

	cfg.ParsedQuality = model.NormalizeQuality(cfg.Quality)

	parsedLogLevel, isLogLevelCorrect := logger.ParseLogLevel(cfg.LogLevel)
	if !(isLogLevelCorrect) {
		return fmt.Errorf("%w: '%s'", ErrUnknownLogLevel, cfg.LogLevel)
	}

	cfg.ParsedLogLevel = parsedLogLevel

	if cfg.LogMaxSizeMB < 0 || cfg.LogMaxBackups < 0 || cfg.LogMaxAgeDays < 0 {
		return ErrInvalidLogRotation
	}

	if cfg.MaxConcurrentJobs < 0 {
		return ErrInvalidConcurrentJobs
	}

	cfg.ParsedEvictionDelay, err = time.ParseDuration(cfg.EvictionDelay)
	if err != nil {
		return fmt.Errorf("failed to parse eviction delay: %w", err)
	}

	if cfg.ParsedEvictionDelay <= 0 {
		return ErrInvalidEvictionDelay
	}

	cfg.Tagger = strings.ToLower(strings.TrimSpace(cfg.Tagger))
	if cfg.Tagger == "" {
		cfg.Tagger = TaggerFFmpeg
	}

	if cfg.Tagger != TaggerFFmpeg && cfg.Tagger != TaggerNative {
		return fmt.Errorf("%w: '%s'", ErrUnknownTagger, cfg.Tagger)
	}

	if strings.TrimSpace(cfg.FFmpegPath) == "" {
		cfg.FFmpegPath = DefaultFFmpegPath
	}

	cfg.ParsedTaggingTimeout, err = time.ParseDuration(cfg.TaggingTimeout)
	if err != nil {
		return fmt.Errorf("failed to parse tagging timeout: %w", err)
	}

	if cfg.ParsedTaggingTimeout <= 0 {
		return ErrInvalidTaggingTimeout
	}

	cfg.ParsedHTTPTimeout, err = time.ParseDuration(cfg.HTTPTimeout)
	if err != nil {
		return fmt.Errorf("failed to parse http timeout: %w", err)
	}

	if cfg.ParsedHTTPTimeout <= 0 {
		return ErrInvalidHTTPTimeout
	}

	if cfg.CatalogRateLimit < 0 {
		return ErrInvalidCatalogRateLimit
	}

	if cfg.RetryAttemptsCount <= 0 {
		return ErrInvalidRetryAttempts
	}

	cfg.ParsedRetryBaseDelay, err = time.ParseDuration(cfg.RetryBaseDelay)
	if err != nil {
		return fmt.Errorf("failed to parse retry base delay: %w", err)
	}

	if cfg.ParsedRetryBaseDelay < 0 {
		return ErrInvalidRetryBaseDelay
	}

	if cfg.RetryMultiplier < 1 {
		return ErrInvalidRetryMultiplier
	}

	if downloadSpeedLimit != "" && downloadSpeedLimit != "0" {
		parsedDownloadSpeedLimit, err = humanize.ParseBytes(downloadSpeedLimit)
		if err != nil {
			return fmt.Errorf("failed to parse download speed limit: %w", err)
		}
	}

	// io.CopyN accepts only int64 so we transform it safely in order to use it later.
	cfg.ParsedDownloadSpeedLimit = utils.SafeUint64ToInt64(parsedDownloadSpeedLimit)

	return nil
}

// SaveConfig saves the configuration to the file while preserving the original format and order.
func SaveConfig(cfg *Config) error {
	configFile := getConfigFilePath()

	// Read the original file content.
	originalContent, err := os.ReadFile(configFile)
	if err != nil {
		return handleMissingConfigFile(configFile, cfg.AuthToken, err)
	}

	// Parse YAML while preserving order using yaml.Node.
	var node yaml.Node
	if err = yaml.Unmarshal(originalContent, &node); err != nil {
		return fmt.Errorf("failed to parse YAML: %w", err)
	}

	setAuthTokenInNode(&node, cfg.AuthToken)

	newContent, err := yaml.Marshal(&node)
	if err != nil {
		return fmt.Errorf("failed to marshal YAML: %w", err)
	}

	if err = os.WriteFile(configFile, newContent, constants.DefaultFilePermissions); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// getConfigFilePath returns the config file path from viper or the default.
func getConfigFilePath() string {
	configFile := viper.ConfigFileUsed()
	if configFile == "" {
		return DefaultConfigFilename
	}

	return configFile
}

// handleMissingConfigFile creates a new config file holding only the token if it doesn't exist.
func handleMissingConfigFile(configFile, authToken string, err error) error {
	if !os.IsNotExist(err) {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	content, err := yaml.Marshal(map[string]string{"auth_token": authToken})
	if err != nil {
		return fmt.Errorf("failed to marshal YAML: %w", err)
	}

	if err = os.WriteFile(configFile, content, constants.DefaultFilePermissions); err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}

	return nil
}

// setAuthTokenInNode updates the auth_token value in the YAML node tree,
// appending the key when the document does not have it yet.
func setAuthTokenInNode(node *yaml.Node, authToken string) {
	if node.Kind == 0 {
		node.Kind = yaml.DocumentNode
	}

	if len(node.Content) == 0 {
		node.Content = append(node.Content, &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"})
	}

	// The root node is a document node, content[0] is the actual map.
	mapNode := node.Content[0]
	if mapNode.Kind != yaml.MappingNode {
		return
	}

	// Key-value pairs are stored as alternating nodes.
	for i := 0; i+1 < len(mapNode.Content); i += 2 {
		if mapNode.Content[i].Value != "auth_token" {
			continue
		}

		valueNode := mapNode.Content[i+1]
		valueNode.Value = authToken
		valueNode.Tag = "!!str"

		if valueNode.Style == 0 {
			valueNode.Style = yaml.DoubleQuotedStyle
		}

		return
	}

	mapNode.Content = append(mapNode.Content,
		&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: "auth_token"},
		&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: authToken, Style: yaml.DoubleQuotedStyle},
	)
}
