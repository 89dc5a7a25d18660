package jobs

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"rivalwatch/internal/insight"
	"rivalwatch/internal/model"
	"rivalwatch/internal/scoring"
	"rivalwatch/internal/storage"
)

// Notifier pushes an insight to an operator chat.
type Notifier interface {
	NotifyInsight(ctx context.Context, chatID int64, loc model.Location, rec model.InsightRecord) error
}

// Invalidator drops cached briefings after insights change.
type Invalidator interface {
	InvalidateLocation(locationID int64, dateKey string)
}

// PushRecorder observes push attempts.
type PushRecorder interface {
	InsightPushed(ok bool)
}

// GenerateHandler runs the rule modules for a (location, date), scores the
// output for the location's operator and stores it. Newly created critical
// insights are pushed to the operator chat.
type GenerateHandler struct {
	store     storage.Storage
	loader    *Loader
	generator *insight.Generator
	log       *slog.Logger

	invalidator Invalidator
	notifier    Notifier
	rec         PushRecorder
}

// NewGenerateHandler creates a GenerateHandler.
func NewGenerateHandler(store storage.Storage, loader *Loader, generator *insight.Generator, log *slog.Logger) *GenerateHandler {
	return &GenerateHandler{store: store, loader: loader, generator: generator, log: log}
}

// SetInvalidator sets the briefing cache to invalidate after a run.
func (h *GenerateHandler) SetInvalidator(inv Invalidator) { h.invalidator = inv }

// SetNotifier sets where critical insights are pushed.
func (h *GenerateHandler) SetNotifier(n Notifier, rec PushRecorder) {
	h.notifier = n
	h.rec = rec
}

// Type implements Handler.
func (h *GenerateHandler) Type() model.JobType { return model.JobInsightsGenerate }

// Run implements Handler.
func (h *GenerateHandler) Run(ctx context.Context, job model.Job) error {
	loc, err := h.store.GetLocation(ctx, job.LocationID)
	if errors.Is(err, storage.ErrNotFound) {
		return fmt.Errorf("location %d: %w", job.LocationID, ErrInvalidJob)
	}
	if err != nil {
		return fmt.Errorf("get location: %w", err)
	}

	in, err := h.loader.Load(ctx, *loc, job.DateKey)
	if err != nil {
		return fmt.Errorf("load inputs: %w", err)
	}
	items := h.generator.Run(ctx, in)

	existing, err := h.store.ListInsights(ctx, loc.ID, job.DateKey)
	if err != nil {
		return fmt.Errorf("list insights: %w", err)
	}
	known := make(map[string]bool, len(existing))
	for _, r := range existing {
		known[recordKey(r)] = true
	}

	prefs, err := h.store.ListPreferences(ctx, model.ChatConsumer(loc.ChatID))
	if err != nil {
		return fmt.Errorf("list preferences: %w", err)
	}
	weights := scoring.Weights(prefs)

	var fresh []model.InsightRecord
	for _, it := range items {
		rec, err := insight.ToRecord(loc.ID, job.DateKey, it)
		if err != nil {
			h.log.Error("encode insight", "type", it.Type, "location_id", loc.ID, "error", err)
			continue
		}
		rec = scoring.Apply(rec, weights)
		if err := h.store.UpsertInsight(ctx, &rec); err != nil {
			return fmt.Errorf("store insight: %w", err)
		}
		if !known[recordKey(rec)] {
			fresh = append(fresh, rec)
		}
	}

	if h.invalidator != nil {
		h.invalidator.InvalidateLocation(loc.ID, job.DateKey)
	}

	h.log.Info("insights generated",
		"location_id", loc.ID,
		"date_key", job.DateKey,
		"competitors", len(in.Competitors),
		"insights", len(items),
		"new", len(fresh),
	)

	h.push(ctx, *loc, fresh)
	return nil
}

func (h *GenerateHandler) push(ctx context.Context, loc model.Location, recs []model.InsightRecord) {
	if h.notifier == nil || loc.ChatID == 0 {
		return
	}
	scoring.Rank(recs)
	for _, r := range recs {
		if r.Suppressed || r.Urgency != model.SeverityCritical {
			continue
		}
		err := h.notifier.NotifyInsight(ctx, loc.ChatID, loc, r)
		if err != nil {
			h.log.Error("push insight", "insight_id", r.ID, "chat_id", loc.ChatID, "error", err)
		}
		if h.rec != nil {
			h.rec.InsightPushed(err == nil)
		}
	}
}

func recordKey(r model.InsightRecord) string {
	if r.CompetitorID == nil {
		return r.InsightType
	}
	return fmt.Sprintf("%s#%d", r.InsightType, *r.CompetitorID)
}
