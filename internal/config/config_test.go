package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"rivalwatch/internal/features"
	"rivalwatch/internal/insight"
)

var envKeys = []string{
	"TELEGRAM_BOT_TOKEN", "DATABASE_PATH", "LOG_LEVEL", "ALLOWED_USERS",
	"RULES_PATH", "METRICS_ADDR", "WORKER_CONCURRENCY", "JOB_POLL_INTERVAL", "JOB_MAX_ATTEMPTS",
	"EVENT_FEEDS", "EVENT_FEED_RPS", "BRIEFING_CACHE_SIZE", "BRIEFING_CACHE_TTL",
}

func defaults() *Config {
	return &Config{
		DatabasePath:      "./data/rivalwatch.db",
		LogLevel:          "info",
		WorkerConcurrency: 4,
		JobPollInterval:   30 * time.Second,
		JobMaxAttempts:    5,
		EventFeedRPS:      1,
		BriefingCacheSize: 256,
		BriefingCacheTTL:  10 * time.Minute,
	}
}

func TestLoad(t *testing.T) {
	tests := []struct {
		name    string
		env     map[string]string
		want    func() *Config
		wantErr bool
	}{
		{
			name: "no token, defaults applied",
			env:  map[string]string{},
			want: defaults,
		},
		{
			name: "all values set",
			env: map[string]string{
				"TELEGRAM_BOT_TOKEN":  "tok",
				"DATABASE_PATH":       "/tmp/rw.db",
				"LOG_LEVEL":           "debug",
				"ALLOWED_USERS":       "111,222,333",
				"RULES_PATH":          "/etc/rivalwatch/rules.yaml",
				"METRICS_ADDR":        ":9090",
				"WORKER_CONCURRENCY":  "8",
				"JOB_POLL_INTERVAL":   "5s",
				"JOB_MAX_ATTEMPTS":    "3",
				"EVENT_FEEDS":         "https://a.example/rss, https://b.example/atom",
				"EVENT_FEED_RPS":      "0.5",
				"BRIEFING_CACHE_SIZE": "16",
				"BRIEFING_CACHE_TTL":  "1m",
			},
			want: func() *Config {
				return &Config{
					TelegramBotToken:  "tok",
					DatabasePath:      "/tmp/rw.db",
					LogLevel:          "debug",
					AllowedUsers:      []int64{111, 222, 333},
					RulesPath:         "/etc/rivalwatch/rules.yaml",
					MetricsAddr:       ":9090",
					WorkerConcurrency: 8,
					JobPollInterval:   5 * time.Second,
					JobMaxAttempts:    3,
					EventFeeds:        []string{"https://a.example/rss", "https://b.example/atom"},
					EventFeedRPS:      0.5,
					BriefingCacheSize: 16,
					BriefingCacheTTL:  time.Minute,
				}
			},
		},
		{
			name: "allowed users with spaces",
			env:  map[string]string{"ALLOWED_USERS": " 10 , 20 , "},
			want: func() *Config {
				c := defaults()
				c.AllowedUsers = []int64{10, 20}
				return c
			},
		},
		{
			name:    "invalid user id",
			env:     map[string]string{"ALLOWED_USERS": "123,abc"},
			wantErr: true,
		},
		{
			name:    "invalid concurrency",
			env:     map[string]string{"WORKER_CONCURRENCY": "many"},
			wantErr: true,
		},
		{
			name:    "zero concurrency",
			env:     map[string]string{"WORKER_CONCURRENCY": "0"},
			wantErr: true,
		},
		{
			name:    "invalid ttl",
			env:     map[string]string{"BRIEFING_CACHE_TTL": "soon"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for _, key := range envKeys {
				t.Setenv(key, "")
			}
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			got, err := Load()
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if diff := cmp.Diff(tt.want(), got); diff != "" {
				t.Errorf("Load() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestIsUserAllowed(t *testing.T) {
	tests := []struct {
		name         string
		allowedUsers []int64
		userID       int64
		want         bool
	}{
		{name: "empty list allows everyone", allowedUsers: nil, userID: 42, want: true},
		{name: "user in list", allowedUsers: []int64{10, 20, 30}, userID: 20, want: true},
		{name: "user not in list", allowedUsers: []int64{10, 20, 30}, userID: 99, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &Config{AllowedUsers: tt.allowedUsers}
			got := cfg.IsUserAllowed(tt.userID)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("IsUserAllowed() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestSlogLevel(t *testing.T) {
	tests := []struct {
		level string
		want  slog.Level
	}{
		{level: "debug", want: slog.LevelDebug},
		{level: "WARN", want: slog.LevelWarn},
		{level: "error", want: slog.LevelError},
		{level: "verbose", want: slog.LevelInfo},
	}
	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			got := (&Config{LogLevel: tt.level}).SlogLevel()
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("SlogLevel() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestLoadRulesDefaults(t *testing.T) {
	got, err := LoadRules("")
	if err != nil {
		t.Fatalf("load rules: %v", err)
	}
	if diff := cmp.Diff(insight.DefaultThresholds(), got.Thresholds); diff != "" {
		t.Errorf("thresholds mismatch (-want +got):\n%s", diff)
	}
	if len(got.Features) != len(features.DefaultPatternSets) {
		t.Errorf("expected default feature patterns, got %d", len(got.Features))
	}
}

func TestLoadRulesOverrides(t *testing.T) {
	const doc = `
thresholds:
  rating_delta_daily: 0.25
  dense_day_count: 5
  promo_keywords: ["two for one"]
features:
  - feature: happy_hour
    include: ['\bhappy hours?\b', '\bsocial hour\b']
`
	path := filepath.Join(t.TempDir(), "rules.yaml")
	if err := os.WriteFile(path, []byte(doc), 0o600); err != nil {
		t.Fatalf("write rules: %v", err)
	}

	got, err := LoadRules(path)
	if err != nil {
		t.Fatalf("load rules: %v", err)
	}

	want := insight.DefaultThresholds()
	want.RatingDeltaDaily = 0.25
	want.DenseDayCount = 5
	want.PromoKeywords = []string{"two for one"}
	if diff := cmp.Diff(want, got.Thresholds); diff != "" {
		t.Errorf("thresholds mismatch (-want +got):\n%s", diff)
	}

	d, err := got.Detector()
	if err != nil {
		t.Fatalf("detector: %v", err)
	}
	if !d.Detect("Join our social hour every Friday").HappyHour {
		t.Error("expected overridden pattern to detect happy hour")
	}
}

func TestParseRulesErrors(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{name: "unknown key", doc: "thresholdz:\n  rating_delta_daily: 0.2\n"},
		{name: "bad regex", doc: "features:\n  - feature: catering\n    include: ['(unclosed']\n"},
		{name: "wrong type", doc: "thresholds:\n  dense_day_count: lots\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ParseRules([]byte(tt.doc)); err == nil {
				t.Fatal("expected error, got nil")
			}
		})
	}
}

func TestLoadRulesMissingFile(t *testing.T) {
	if _, err := LoadRules(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatal("expected error, got nil")
	}
}
