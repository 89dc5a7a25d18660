package jobs

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"rivalwatch/internal/diff"
	"rivalwatch/internal/features"
	"rivalwatch/internal/model"
	"rivalwatch/internal/normalize"
	"rivalwatch/internal/storage"
)

// EventSource downloads event calendars.
type EventSource interface {
	FetchEvents(ctx context.Context, urls []string) (model.EventsSnapshot, error)
}

// IngestHandler normalizes an upstream payload and stores it as the entity's
// snapshot for the job date. It then queues the downstream stage.
type IngestHandler struct {
	store    storage.Storage
	events   EventSource
	detector *features.Detector
	log      *slog.Logger
	delay    time.Duration
}

// NewIngestHandler creates an IngestHandler. events may be nil when no feeds
// are fetched.
func NewIngestHandler(store storage.Storage, events EventSource, detector *features.Detector, log *slog.Logger) *IngestHandler {
	if detector == nil {
		detector = features.DefaultDetector()
	}
	return &IngestHandler{store: store, events: events, detector: detector, log: log, delay: GenerateDelay}
}

// Type implements Handler.
func (h *IngestHandler) Type() model.JobType { return model.JobSnapshotIngest }

// Run implements Handler.
func (h *IngestHandler) Run(ctx context.Context, job model.Job) error {
	if !job.Provider.Valid() {
		return fmt.Errorf("unknown provider %q: %w", job.Provider, ErrInvalidJob)
	}
	if _, err := time.Parse(model.DateKeyLayout, job.DateKey); err != nil {
		return fmt.Errorf("bad date key %q: %w", job.DateKey, ErrInvalidJob)
	}

	var p IngestPayload
	if len(job.Payload) > 0 && string(job.Payload) != "null" {
		if err := json.Unmarshal(job.Payload, &p); err != nil {
			return fmt.Errorf("decode payload: %v: %w", err, ErrInvalidJob)
		}
	}

	normalized, hash, err := h.normalize(ctx, job.Provider, p)
	if err != nil {
		return err
	}
	data, err := json.Marshal(normalized)
	if err != nil {
		return fmt.Errorf("marshal snapshot: %w", err)
	}

	snap := &model.Snapshot{
		EntityKind: model.EntityLocation,
		EntityID:   job.LocationID,
		Provider:   job.Provider,
		DateKey:    job.DateKey,
		RawData:    data,
		DiffHash:   hash,
	}
	if job.CompetitorID != nil {
		snap.EntityKind = model.EntityCompetitor
		snap.EntityID = *job.CompetitorID
	}
	if err := h.store.UpsertSnapshot(ctx, snap); err != nil {
		return fmt.Errorf("store snapshot: %w", err)
	}

	h.log.Debug("snapshot stored",
		"entity_kind", snap.EntityKind,
		"entity_id", snap.EntityID,
		"provider", snap.Provider,
		"date_key", snap.DateKey,
		"diff_hash", snap.DiffHash,
	)

	if job.Provider == model.ProviderEvents && job.CompetitorID == nil {
		if err := EnqueueMatch(ctx, h.store, job.LocationID, job.DateKey); err != nil {
			return fmt.Errorf("enqueue match: %w", err)
		}
		return nil
	}
	if err := EnqueueGenerate(ctx, h.store, job.LocationID, job.DateKey, h.delay); err != nil {
		return fmt.Errorf("enqueue generate: %w", err)
	}
	return nil
}

func (h *IngestHandler) normalize(ctx context.Context, provider model.Provider, p IngestPayload) (any, string, error) {
	switch provider {
	case model.ProviderPlaces:
		s := normalize.Profile(p.Raw)
		return s, diff.ProfileHash(s), nil
	case model.ProviderMenu:
		var s model.MenuSnapshot
		if len(p.Pages) > 0 {
			pages := make([]model.MenuSnapshot, 0, len(p.Pages))
			for _, raw := range p.Pages {
				pages = append(pages, normalize.Menu(raw))
			}
			s = normalize.MergeMenus(pages...)
		} else {
			s = normalize.Menu(p.Raw)
		}
		return s, diff.MenuHash(s), nil
	case model.ProviderSiteContent:
		s := normalize.SiteContent(p.Raw, h.detector)
		return s, diff.ContentHash(s), nil
	case model.ProviderEvents:
		var s model.EventsSnapshot
		if len(p.FeedURLs) > 0 {
			if h.events == nil {
				return nil, "", fmt.Errorf("no event source configured: %w", ErrInvalidJob)
			}
			fetched, err := h.events.FetchEvents(ctx, p.FeedURLs)
			if err != nil {
				return nil, "", fmt.Errorf("fetch events: %w", err)
			}
			s = fetched
		} else {
			s = normalize.Events(p.Raw)
		}
		return s, diff.EventsHash(s), nil
	case model.ProviderSEO:
		s := normalize.SEO(p.Raw)
		return s, diff.SEOHash(s), nil
	}
	return nil, "", fmt.Errorf("unknown provider %q: %w", provider, ErrInvalidJob)
}
