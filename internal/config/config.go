// Package config handles application configuration from environment variables
// and the optional rules file.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"slices"
	"strconv"
	"strings"
	"time"
)

// Config holds the application configuration.
type Config struct {
	TelegramBotToken string
	DatabasePath     string
	LogLevel         string
	AllowedUsers     []int64

	RulesPath   string
	MetricsAddr string

	WorkerConcurrency int
	JobPollInterval   time.Duration
	JobMaxAttempts    int

	EventFeeds   []string
	EventFeedRPS float64

	BriefingCacheSize int
	BriefingCacheTTL  time.Duration
}

// Load reads configuration from environment variables. The bot is disabled
// when TELEGRAM_BOT_TOKEN is empty.
func Load() (*Config, error) {
	cfg := &Config{
		TelegramBotToken: os.Getenv("TELEGRAM_BOT_TOKEN"),
		DatabasePath:     envOrDefault("DATABASE_PATH", "./data/rivalwatch.db"),
		LogLevel:         envOrDefault("LOG_LEVEL", "info"),
		RulesPath:        os.Getenv("RULES_PATH"),
		MetricsAddr:      os.Getenv("METRICS_ADDR"),
	}

	if raw := os.Getenv("ALLOWED_USERS"); raw != "" {
		for _, s := range strings.Split(raw, ",") {
			s = strings.TrimSpace(s)
			if s == "" {
				continue
			}
			uid, err := strconv.ParseInt(s, 10, 64)
			if err != nil {
				return nil, fmt.Errorf("invalid user ID %q in ALLOWED_USERS: %w", s, err)
			}
			cfg.AllowedUsers = append(cfg.AllowedUsers, uid)
		}
	}

	if raw := os.Getenv("EVENT_FEEDS"); raw != "" {
		for _, s := range strings.Split(raw, ",") {
			if s = strings.TrimSpace(s); s != "" {
				cfg.EventFeeds = append(cfg.EventFeeds, s)
			}
		}
	}

	var err error
	if cfg.WorkerConcurrency, err = envInt("WORKER_CONCURRENCY", 4); err != nil {
		return nil, err
	}
	if cfg.JobMaxAttempts, err = envInt("JOB_MAX_ATTEMPTS", 5); err != nil {
		return nil, err
	}
	if cfg.BriefingCacheSize, err = envInt("BRIEFING_CACHE_SIZE", 256); err != nil {
		return nil, err
	}
	if cfg.JobPollInterval, err = envDuration("JOB_POLL_INTERVAL", 30*time.Second); err != nil {
		return nil, err
	}
	if cfg.BriefingCacheTTL, err = envDuration("BRIEFING_CACHE_TTL", 10*time.Minute); err != nil {
		return nil, err
	}
	if cfg.EventFeedRPS, err = envFloat("EVENT_FEED_RPS", 1); err != nil {
		return nil, err
	}

	if cfg.WorkerConcurrency < 1 {
		return nil, fmt.Errorf("WORKER_CONCURRENCY must be at least 1")
	}
	if cfg.JobMaxAttempts < 1 {
		return nil, fmt.Errorf("JOB_MAX_ATTEMPTS must be at least 1")
	}

	return cfg, nil
}

// BotEnabled reports whether a Telegram token is configured.
func (c *Config) BotEnabled() bool {
	return c.TelegramBotToken != ""
}

// IsUserAllowed checks whether a user ID is in the allow list.
// Returns true if the allow list is empty (all users permitted).
func (c *Config) IsUserAllowed(userID int64) bool {
	if len(c.AllowedUsers) == 0 {
		return true
	}
	return slices.Contains(c.AllowedUsers, userID)
}

// SlogLevel maps LogLevel to a slog level, defaulting to info.
func (c *Config) SlogLevel() slog.Level {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func envOrDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envInt(key string, def int) (int, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return def, nil
	}
	v, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, raw, err)
	}
	return v, nil
}

func envFloat(key string, def float64) (float64, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return def, nil
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, raw, err)
	}
	return v, nil
}

func envDuration(key string, def time.Duration) (time.Duration, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return def, nil
	}
	v, err := time.ParseDuration(strings.TrimSpace(raw))
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, raw, err)
	}
	return v, nil
}
