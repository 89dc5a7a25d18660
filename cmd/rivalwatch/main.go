package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"rivalwatch/internal/bot"
	"rivalwatch/internal/briefing"
	"rivalwatch/internal/config"
	"rivalwatch/internal/fetcher"
	"rivalwatch/internal/insight"
	"rivalwatch/internal/jobs"
	"rivalwatch/internal/metrics"
	"rivalwatch/internal/scheduler"
	"rivalwatch/internal/storage"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("load config", "error", err)
		os.Exit(1)
	}

	log := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.SlogLevel()}))

	rules, err := config.LoadRules(cfg.RulesPath)
	if err != nil {
		log.Error("load rules", "path", cfg.RulesPath, "error", err)
		os.Exit(1)
	}
	detector, err := rules.Detector()
	if err != nil {
		log.Error("build feature detector", "error", err)
		os.Exit(1)
	}

	if dir := filepath.Dir(cfg.DatabasePath); dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			log.Error("create data directory", "path", dir, "error", err)
			os.Exit(1)
		}
	}

	store, err := storage.NewSQLite(cfg.DatabasePath)
	if err != nil {
		log.Error("open database", "path", cfg.DatabasePath, "error", err)
		os.Exit(1)
	}
	defer func() { _ = store.Close() }()

	m := metrics.New()
	briefings := briefing.NewBuilder(store, briefing.NewCache(cfg.BriefingCacheSize, cfg.BriefingCacheTTL), m, log)

	deps := jobs.Deps{
		Store:       store,
		Events:      fetcher.New(&http.Client{Timeout: 30 * time.Second}, cfg.EventFeedRPS),
		Detector:    detector,
		Generator:   insight.NewGenerator(rules.Thresholds, m, log),
		Briefings:   briefings,
		Pushes:      m,
		Concurrency: cfg.WorkerConcurrency,
		Log:         log,
	}

	var b *bot.Bot
	if cfg.BotEnabled() {
		b, err = bot.New(cfg.TelegramBotToken, store, briefings, cfg, log)
		if err != nil {
			log.Error("create bot", "error", err)
			os.Exit(1)
		}
		deps.Notifier = b
	} else {
		log.Warn("TELEGRAM_BOT_TOKEN not set, bot disabled")
	}

	sched := scheduler.New(store, jobs.NewPipeline(deps), log)
	sched.SetTickInterval(cfg.JobPollInterval)
	sched.SetConcurrency(cfg.WorkerConcurrency)
	sched.SetMaxAttempts(cfg.JobMaxAttempts)
	sched.SetRecorder(m)
	sched.SetEventFeeds(cfg.EventFeeds)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if cfg.MetricsAddr != "" {
		srv := m.NewServer(cfg.MetricsAddr)
		go func() {
			log.Info("metrics listening", "addr", cfg.MetricsAddr)
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Error("metrics server", "error", err)
			}
		}()
		defer func() {
			shutdownCtx, stop := context.WithTimeout(context.Background(), 5*time.Second)
			defer stop()
			_ = srv.Shutdown(shutdownCtx)
		}()
	}

	log.Info("starting rivalwatch",
		"workers", cfg.WorkerConcurrency,
		"event_feeds", len(cfg.EventFeeds),
		"bot", b != nil,
	)

	if b != nil {
		go sched.Run(ctx)
		b.Run(ctx)
	} else {
		sched.Run(ctx)
	}

	log.Info("rivalwatch stopped")
}
