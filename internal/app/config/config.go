// Package config loads the server configuration from environment variables.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"invisible_lens/internal/platform/redis"
)

// Config groups every setting the server reads at startup.
type Config struct {
	Port        string
	LogLevel    slog.Level
	CORSOrigins []string

	GeminiAPIKey string
	GeminiModel  string
	VisionHints  bool

	AnalyzerTimeout      time.Duration
	AnalyzerRateLimit    int
	AnalyzerRateInterval time.Duration
	CameraTimeout        time.Duration
	SessionTTL           time.Duration
	CacheTTL             time.Duration

	Redis redis.Config
}

// Load reads the configuration from the environment, applying defaults for unset keys.
// Invalid values are reported as errors rather than silently replaced.
func Load() (Config, error) {
	cfg := Config{
		Port:         getenv("PORT", "8080"),
		GeminiAPIKey: os.Getenv("GEMINI_API_KEY"),
		GeminiModel:  os.Getenv("GEMINI_MODEL"),
		Redis: redis.Config{
			Host:     os.Getenv("REDIS_HOST"),
			Port:     getenv("REDIS_PORT", "6379"),
			Password: os.Getenv("REDIS_PASSWORD"),
		},
	}

	if origins := os.Getenv("CORS_ORIGINS"); origins != "" {
		for _, o := range strings.Split(origins, ",") {
			if o = strings.TrimSpace(o); o != "" {
				cfg.CORSOrigins = append(cfg.CORSOrigins, o)
			}
		}
	}

	if err := cfg.LogLevel.UnmarshalText([]byte(getenv("LOG_LEVEL", "info"))); err != nil {
		return Config{}, fmt.Errorf("LOG_LEVEL: %w", err)
	}

	var err error
	if cfg.VisionHints, err = parseBool("VISION_HINTS", false); err != nil {
		return Config{}, err
	}
	if cfg.AnalyzerRateLimit, err = parseInt("ANALYZER_RATE_LIMIT", 10); err != nil {
		return Config{}, err
	}

	durations := []struct {
		key  string
		def  time.Duration
		dest *time.Duration
	}{
		{"ANALYZER_TIMEOUT", 30 * time.Second, &cfg.AnalyzerTimeout},
		{"ANALYZER_RATE_INTERVAL", time.Minute, &cfg.AnalyzerRateInterval},
		{"CAMERA_TIMEOUT", 30 * time.Second, &cfg.CameraTimeout},
		{"SESSION_TTL", 30 * time.Minute, &cfg.SessionTTL},
		{"CACHE_TTL", 24 * time.Hour, &cfg.CacheTTL},
	}
	for _, d := range durations {
		if *d.dest, err = parseDuration(d.key, d.def); err != nil {
			return Config{}, err
		}
	}

	return cfg, nil
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func parseBool(key string, def bool) (bool, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("%s: %w", key, err)
	}
	return b, nil
}

func parseInt(key string, def int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return n, nil
}

func parseDuration(key string, def time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("%s: must be positive, got %s", key, v)
	}
	return d, nil
}
