package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds all application configuration.
// Every value can be supplied through environment variables; unset values fall
// back to sensible defaults.
//
// Environment Variables:
//
// Server:
// - LISTEN_ADDR: HTTP listen address (default: :5054)
// - LOG_LEVEL: zerolog level (default: info)
//
// Collaborators:
// - PLEX_BASE_URL: Plex server base URL (optional; empty degrades to an empty library)
// - PLEX_TOKEN: Plex auth token
// - TMDB_API_KEY: TMDb API key (optional; empty degrades to metadata-less questions)
// - TMDB_API_URL: TMDb API base URL (default: https://api.themoviedb.org/3)
// - TMDB_IMAGE_URL: TMDb image base URL (default: https://image.tmdb.org/t/p)
//
// Media paths:
// - MEDIA_BASE_PATH: local base directory media is mounted under (default: /media)
// - PATH_REWRITE_RULES: ordered "prefix=>replacement" pairs, comma separated.
//   When empty, a documented default set of common mount prefixes is rewritten
//   onto MEDIA_BASE_PATH.
//
// Trivia:
// - FRAME_SAMPLE_TARGET: average-color samples per video (default: 300)
// - STILL_FRAME_COUNT: still frames per round (default: 5)
// - QUOTE_MIN_LINES / QUOTE_MAX_LINES: dialogue block size bounds (default: 2 / 4)
// - QUOTE_MIN_LINE_LENGTH / QUOTE_MAX_LINE_LENGTH: line length bounds (default: 10 / 120)
// - QUOTE_MAX_GAP_SECONDS: max gap between adjacent block lines (default: 10)
//
// Cache & sessions:
// - CACHE_DIR: cache root directory (default: cache)
// - CACHE_MAX_AGE: age threshold for the cache sweep (default: 168h)
// - SESSION_MAX_AGE: age threshold for the session sweep (default: 10m)
type Config struct {
	Server  ServerConfig  `json:"server"`
	Plex    PlexConfig    `json:"plex"`
	TMDb    TMDbConfig    `json:"tmdb"`
	Media   MediaConfig   `json:"media"`
	Trivia  TriviaConfig  `json:"trivia"`
	Cache   CacheConfig   `json:"cache"`
	Session SessionConfig `json:"session"`
}

type ServerConfig struct {
	ListenAddr string `json:"listen_addr"`
	LogLevel   string `json:"log_level"`
}

type PlexConfig struct {
	BaseURL string `json:"base_url"`
	Token   string `json:"-"`
}

type TMDbConfig struct {
	APIKey   string `json:"-"`
	APIURL   string `json:"api_url"`
	ImageURL string `json:"image_url"`
}

type MediaConfig struct {
	BasePath     string `json:"base_path"`
	RewriteRules string `json:"rewrite_rules"`
}

type TriviaConfig struct {
	FrameSampleTarget int     `json:"frame_sample_target"`
	StillFrameCount   int     `json:"still_frame_count"`
	QuoteMinLines     int     `json:"quote_min_lines"`
	QuoteMaxLines     int     `json:"quote_max_lines"`
	QuoteMinLineLen   int     `json:"quote_min_line_len"`
	QuoteMaxLineLen   int     `json:"quote_max_line_len"`
	QuoteMaxGap       float64 `json:"quote_max_gap_seconds"`
}

type CacheConfig struct {
	Dir    string        `json:"dir"`
	MaxAge time.Duration `json:"max_age"`
}

type SessionConfig struct {
	MaxAge time.Duration `json:"max_age"`
}

// Option is a function type for configuring Config.
type Option func(*Config)

// NewFromEnv creates a new Config instance with values from environment
// variables and options.
func NewFromEnv(opts ...Option) (*Config, error) {
	config := &Config{
		Server: ServerConfig{
			ListenAddr: getEnvString("LISTEN_ADDR", ":5054"),
			LogLevel:   getEnvString("LOG_LEVEL", "info"),
		},
		Plex: PlexConfig{
			BaseURL: getEnvString("PLEX_BASE_URL", ""),
			Token:   getEnvString("PLEX_TOKEN", ""),
		},
		TMDb: TMDbConfig{
			APIKey:   getEnvString("TMDB_API_KEY", ""),
			APIURL:   getEnvString("TMDB_API_URL", "https://api.themoviedb.org/3"),
			ImageURL: getEnvString("TMDB_IMAGE_URL", "https://image.tmdb.org/t/p"),
		},
		Media: MediaConfig{
			BasePath:     getEnvString("MEDIA_BASE_PATH", "/media"),
			RewriteRules: getEnvString("PATH_REWRITE_RULES", ""),
		},
		Trivia: TriviaConfig{
			FrameSampleTarget: getEnvInt("FRAME_SAMPLE_TARGET", 300),
			StillFrameCount:   getEnvInt("STILL_FRAME_COUNT", 5),
			QuoteMinLines:     getEnvInt("QUOTE_MIN_LINES", 2),
			QuoteMaxLines:     getEnvInt("QUOTE_MAX_LINES", 4),
			QuoteMinLineLen:   getEnvInt("QUOTE_MIN_LINE_LENGTH", 10),
			QuoteMaxLineLen:   getEnvInt("QUOTE_MAX_LINE_LENGTH", 120),
			QuoteMaxGap:       getEnvFloat("QUOTE_MAX_GAP_SECONDS", 10),
		},
		Cache: CacheConfig{
			Dir:    getEnvString("CACHE_DIR", "cache"),
			MaxAge: getEnvDuration("CACHE_MAX_AGE", 7*24*time.Hour),
		},
		Session: SessionConfig{
			MaxAge: getEnvDuration("SESSION_MAX_AGE", 10*time.Minute),
		},
	}

	for _, opt := range opts {
		opt(config)
	}

	if err := config.validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// validate checks that the configured bounds are coherent.
func (c *Config) validate() error {
	if c.Trivia.FrameSampleTarget <= 0 {
		return fmt.Errorf("FRAME_SAMPLE_TARGET must be positive")
	}
	if c.Trivia.StillFrameCount <= 0 {
		return fmt.Errorf("STILL_FRAME_COUNT must be positive")
	}
	if c.Trivia.QuoteMinLines <= 0 || c.Trivia.QuoteMaxLines < c.Trivia.QuoteMinLines {
		return fmt.Errorf("QUOTE_MIN_LINES/QUOTE_MAX_LINES bounds are invalid")
	}
	if c.Trivia.QuoteMinLineLen < 0 || c.Trivia.QuoteMaxLineLen < c.Trivia.QuoteMinLineLen {
		return fmt.Errorf("QUOTE_MIN_LINE_LENGTH/QUOTE_MAX_LINE_LENGTH bounds are invalid")
	}
	if c.Trivia.QuoteMaxGap <= 0 {
		return fmt.Errorf("QUOTE_MAX_GAP_SECONDS must be positive")
	}
	if c.Cache.MaxAge < 0 {
		return fmt.Errorf("CACHE_MAX_AGE must not be negative")
	}
	if c.Session.MaxAge <= 0 {
		return fmt.Errorf("SESSION_MAX_AGE must be positive")
	}
	return nil
}

// getEnvString gets a string value from environment variables with default.
func getEnvString(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt gets an integer value from environment variables with default.
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

// getEnvFloat gets a float value from environment variables with default.
func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}

// getEnvDuration gets a duration value from environment variables with default.
// Plain numbers are interpreted as seconds.
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	if d, err := time.ParseDuration(value); err == nil {
		return d
	}
	if secs, err := strconv.Atoi(value); err == nil {
		return time.Duration(secs) * time.Second
	}
	return defaultValue
}
