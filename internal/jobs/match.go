package jobs

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"rivalwatch/internal/matcher"
	"rivalwatch/internal/model"
	"rivalwatch/internal/storage"
)

// MatchHandler associates the location's events for a date with its
// competitors and stores the match records.
type MatchHandler struct {
	store storage.Storage
	log   *slog.Logger
	delay time.Duration
}

// NewMatchHandler creates a MatchHandler.
func NewMatchHandler(store storage.Storage, log *slog.Logger) *MatchHandler {
	return &MatchHandler{store: store, log: log, delay: GenerateDelay}
}

// Type implements Handler.
func (h *MatchHandler) Type() model.JobType { return model.JobEventsMatch }

// Run implements Handler.
func (h *MatchHandler) Run(ctx context.Context, job model.Job) error {
	events, err := loadSnapshot[model.EventsSnapshot](ctx, h.store, model.EntityLocation, job.LocationID, model.ProviderEvents, job.DateKey)
	if err != nil {
		return err
	}
	if events == nil {
		h.log.Debug("no events snapshot to match", "location_id", job.LocationID, "date_key", job.DateKey)
	} else {
		competitors, err := h.store.ListCompetitors(ctx, job.LocationID)
		if err != nil {
			return fmt.Errorf("list competitors: %w", err)
		}
		matches := matcher.Match(job.LocationID, job.DateKey, events.Events, competitors)
		if err := h.store.UpsertEventMatches(ctx, matches); err != nil {
			return fmt.Errorf("store matches: %w", err)
		}
		h.log.Info("events matched",
			"location_id", job.LocationID,
			"date_key", job.DateKey,
			"events", len(events.Events),
			"matches", len(matches),
		)
	}

	if err := EnqueueGenerate(ctx, h.store, job.LocationID, job.DateKey, h.delay); err != nil {
		return fmt.Errorf("enqueue generate: %w", err)
	}
	return nil
}

type snapshotReader interface {
	GetSnapshot(ctx context.Context, kind model.EntityKind, entityID int64, provider model.Provider, dateKey string) (*model.Snapshot, error)
}

// loadSnapshot decodes the stored snapshot into T. A missing or undecodable
// snapshot is (nil, nil).
func loadSnapshot[T any](ctx context.Context, store snapshotReader, kind model.EntityKind, id int64, provider model.Provider, dateKey string) (*T, error) {
	snap, err := store.GetSnapshot(ctx, kind, id, provider, dateKey)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get %s snapshot: %w", provider, err)
	}
	var v T
	if err := snap.Decode(&v); err != nil {
		return nil, nil
	}
	return &v, nil
}
