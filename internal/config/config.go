// Package config provides configuration management for the application.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/amaumene/gosubfetch/internal/constants"
)

const (
	// Default configuration file name
	defaultConfigFile = "config.json"
)

// Config holds the application configuration.
// It supports loading from environment variables and JSON files.
type Config struct {
	// Server
	Port      string `json:"PORT"`
	StaticDir string `json:"STATIC_DIR"`

	// Logging
	LogLevel string `json:"LOG_LEVEL"`
	LogFile  string `json:"LOG_FILE"`

	// Storage settings
	SubtitlesDir string        `json:"SUBTITLES_DIR"`
	DatabasePath string        `json:"DATABASE_PATH"`
	CacheSize    int           `json:"CACHE_SIZE"`
	CacheTTL     time.Duration `json:"-"`

	// Upstream sites
	SearchURL        string `json:"SEARCH_URL"`
	SubtitleHostURL  string `json:"SUBTITLE_HOST_URL"`
	SubtitleLanguage string `json:"SUBTITLE_LANGUAGE"`
	UserAgent        string `json:"USER_AGENT"`

	// HTTPTimeout of zero leaves upstream calls bounded only by the request context.
	HTTPTimeout     time.Duration `json:"-"`
	SearchRateLimit int           `json:"SEARCH_RATE_LIMIT"`

	// Hours and seconds as they appear in the JSON file
	CacheTTLHours      int `json:"CACHE_TTL_HOURS"`
	HTTPTimeoutSeconds int `json:"HTTP_TIMEOUT_SECONDS"`
}

// Default returns the configuration used when nothing is overridden.
func Default() *Config {
	return &Config{
		Port:               constants.DefaultPort,
		StaticDir:          constants.DefaultStaticDir,
		LogLevel:           constants.DefaultLogLevel,
		SubtitlesDir:       constants.DefaultSubtitlesDir,
		DatabasePath:       constants.DefaultDatabasePath,
		CacheSize:          constants.DefaultCacheSize,
		CacheTTLHours:      constants.DefaultCacheTTL,
		SearchURL:          constants.DefaultSearchURL,
		SubtitleHostURL:    constants.DefaultSubtitleHostURL,
		SubtitleLanguage:   constants.DefaultSubtitleLang,
		HTTPTimeoutSeconds: int(constants.HTTPTimeout / time.Second),
		SearchRateLimit:    constants.SearchRateLimit,
	}
}

// Load reads configuration from an optional JSON file and environment variables.
// Environment variables take precedence over file values.
// Returns an error if the configuration is invalid.
func Load() (*Config, error) {
	return LoadFile(getEnvOrDefault("CONFIG_FILE", defaultConfigFile))
}

// LoadFile is Load with an explicit configuration file path.
func LoadFile(configFile string) (*Config, error) {
	cfg := Default()

	if configFile != "" {
		if err := cfg.loadFromFile(configFile); err != nil {
			// Ignore file not found errors
			if !os.IsNotExist(err) {
				return nil, fmt.Errorf("failed to load config file: %w", err)
			}
		}
	}

	if err := cfg.loadFromEnv(); err != nil {
		return nil, fmt.Errorf("invalid environment: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// loadFromEnv loads configuration from environment variables.
func (c *Config) loadFromEnv() error {
	stringVars := map[string]*string{
		"PORT":              &c.Port,
		"STATIC_DIR":        &c.StaticDir,
		"LOG_LEVEL":         &c.LogLevel,
		"LOG_FILE":          &c.LogFile,
		"SUBTITLES_DIR":     &c.SubtitlesDir,
		"DATABASE_PATH":     &c.DatabasePath,
		"SEARCH_URL":        &c.SearchURL,
		"SUBTITLE_HOST_URL": &c.SubtitleHostURL,
		"SUBTITLE_LANGUAGE": &c.SubtitleLanguage,
		"USER_AGENT":        &c.UserAgent,
	}
	for key, dst := range stringVars {
		if v := strings.TrimSpace(os.Getenv(key)); v != "" {
			*dst = v
		}
	}

	intVars := map[string]*int{
		"CACHE_SIZE":           &c.CacheSize,
		"CACHE_TTL_HOURS":      &c.CacheTTLHours,
		"HTTP_TIMEOUT_SECONDS": &c.HTTPTimeoutSeconds,
		"SEARCH_RATE_LIMIT":    &c.SearchRateLimit,
	}
	for key, dst := range intVars {
		v := strings.TrimSpace(os.Getenv(key))
		if v == "" {
			continue
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%s: %w", key, err)
		}
		*dst = n
	}

	return nil
}

// loadFromFile loads configuration from a JSON file.
func (c *Config) loadFromFile(filename string) error {
	data, err := os.ReadFile(filename)
	if err != nil {
		return err
	}

	return json.Unmarshal(data, c)
}

// Validate checks if the configuration is valid.
// Sets default values for missing optional fields and derives durations.
func (c *Config) Validate() error {
	if c.SubtitlesDir == "" {
		return fmt.Errorf("SUBTITLES_DIR must not be empty")
	}
	if c.SearchURL == "" || c.SubtitleHostURL == "" {
		return fmt.Errorf("SEARCH_URL and SUBTITLE_HOST_URL are required")
	}
	if c.HTTPTimeoutSeconds < 0 {
		return fmt.Errorf("HTTP_TIMEOUT_SECONDS must not be negative")
	}

	c.SubtitleHostURL = strings.TrimRight(c.SubtitleHostURL, "/")
	if c.SubtitleLanguage == "" {
		c.SubtitleLanguage = constants.DefaultSubtitleLang
	}
	if c.Port == "" {
		c.Port = constants.DefaultPort
	}
	if c.CacheSize <= 0 {
		c.CacheSize = constants.DefaultCacheSize
	}
	if c.CacheTTLHours <= 0 {
		c.CacheTTLHours = constants.DefaultCacheTTL
	}
	if c.SearchRateLimit <= 0 {
		c.SearchRateLimit = constants.SearchRateLimit
	}

	c.CacheTTL = time.Duration(c.CacheTTLHours) * time.Hour
	c.HTTPTimeout = time.Duration(c.HTTPTimeoutSeconds) * time.Second

	return nil
}

// getEnvOrDefault returns environment variable value or default if not set.
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
