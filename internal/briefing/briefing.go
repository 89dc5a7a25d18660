// Package briefing assembles the ranked daily insight digest for an operator.
package briefing

import (
	"context"
	"fmt"
	"log/slog"

	"rivalwatch/internal/model"
	"rivalwatch/internal/scoring"
)

// Store is the subset of storage the builder reads from.
type Store interface {
	GetLocation(ctx context.Context, id int64) (*model.Location, error)
	ListInsights(ctx context.Context, locationID int64, dateKey string) ([]model.InsightRecord, error)
	ListPreferences(ctx context.Context, consumer string) ([]model.InsightPreference, error)
}

// Recorder observes cache lookups.
type Recorder interface {
	BriefingLookup(hit bool)
}

// Briefing is one day's insights for a location, scored for one consumer.
type Briefing struct {
	LocationID   int64
	LocationName string
	DateKey      string
	Consumer     string

	// Ranked holds unsuppressed insights by descending relevance.
	Ranked []model.InsightRecord
	// Suppressed holds insights of types the consumer keeps dismissing.
	Suppressed []model.InsightRecord
	// Dismissed counts insights the consumer already dismissed.
	Dismissed int
}

// ByUrgency returns the ranked insights of one urgency tier.
func (b *Briefing) ByUrgency(u model.Severity) []model.InsightRecord {
	var out []model.InsightRecord
	for _, r := range b.Ranked {
		if r.Urgency == u {
			out = append(out, r)
		}
	}
	return out
}

// Empty reports whether the briefing has nothing to show.
func (b *Briefing) Empty() bool {
	return len(b.Ranked) == 0 && len(b.Suppressed) == 0
}

// Builder builds and caches briefings.
type Builder struct {
	store Store
	cache *Cache
	rec   Recorder
	log   *slog.Logger
}

// NewBuilder creates a Builder. cache and rec may be nil.
func NewBuilder(store Store, cache *Cache, rec Recorder, log *slog.Logger) *Builder {
	return &Builder{store: store, cache: cache, rec: rec, log: log}
}

// Build returns the briefing of a location for a consumer and date, from
// the cache when present.
func (b *Builder) Build(ctx context.Context, locationID int64, consumer, dateKey string) (*Briefing, error) {
	key := Key{LocationID: locationID, Consumer: consumer, DateKey: dateKey}
	if b.cache != nil {
		if cached, ok := b.cache.Get(key); ok {
			b.lookup(true)
			return cached, nil
		}
		b.lookup(false)
	}

	loc, err := b.store.GetLocation(ctx, locationID)
	if err != nil {
		return nil, fmt.Errorf("get location: %w", err)
	}
	recs, err := b.store.ListInsights(ctx, locationID, dateKey)
	if err != nil {
		return nil, fmt.Errorf("list insights: %w", err)
	}
	prefs, err := b.store.ListPreferences(ctx, consumer)
	if err != nil {
		return nil, fmt.Errorf("list preferences: %w", err)
	}

	out := &Briefing{
		LocationID:   locationID,
		LocationName: loc.Name,
		DateKey:      dateKey,
		Consumer:     consumer,
	}
	weights := scoring.Weights(prefs)
	scored := make([]model.InsightRecord, 0, len(recs))
	for _, r := range recs {
		if r.Status == model.StatusDismissed {
			out.Dismissed++
			continue
		}
		scored = append(scored, scoring.Apply(r, weights))
	}
	scoring.Rank(scored)
	for _, r := range scored {
		if r.Suppressed {
			out.Suppressed = append(out.Suppressed, r)
		} else {
			out.Ranked = append(out.Ranked, r)
		}
	}

	b.log.Debug("briefing built",
		"location_id", locationID,
		"consumer", consumer,
		"date_key", dateKey,
		"ranked", len(out.Ranked),
		"suppressed", len(out.Suppressed),
	)

	if b.cache != nil {
		b.cache.Add(key, out)
	}
	return out, nil
}

// InvalidateLocation drops cached briefings of a location for one date.
func (b *Builder) InvalidateLocation(locationID int64, dateKey string) {
	if b.cache != nil {
		b.cache.InvalidateLocation(locationID, dateKey)
	}
}

// InvalidateConsumer drops cached briefings built for a consumer.
func (b *Builder) InvalidateConsumer(consumer string) {
	if b.cache != nil {
		b.cache.InvalidateConsumer(consumer)
	}
}

func (b *Builder) lookup(hit bool) {
	if b.rec != nil {
		b.rec.BriefingLookup(hit)
	}
}
