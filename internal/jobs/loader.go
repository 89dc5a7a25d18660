package jobs

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"rivalwatch/internal/insight"
	"rivalwatch/internal/model"
	"rivalwatch/internal/storage"
)

// Loader assembles generator inputs for one (location, date) from storage.
type Loader struct {
	store       storage.Storage
	concurrency int
}

// NewLoader creates a Loader reading up to concurrency competitors at once.
func NewLoader(store storage.Storage, concurrency int) *Loader {
	if concurrency < 1 {
		concurrency = 1
	}
	return &Loader{store: store, concurrency: concurrency}
}

// Load reads the location's and every active competitor's snapshots for
// dateKey, the day before and the week before, plus events and matches.
func (l *Loader) Load(ctx context.Context, loc model.Location, dateKey string) (insight.Inputs, error) {
	prevKey, err := model.ShiftDateKey(dateKey, -1)
	if err != nil {
		return insight.Inputs{}, fmt.Errorf("bad date key %q: %w", dateKey, ErrInvalidJob)
	}
	weekKey, _ := model.ShiftDateKey(dateKey, -7)

	in := insight.Inputs{LocationID: loc.ID, DateKey: dateKey}

	in.Location, err = l.entity(ctx, model.EntityLocation, loc.ID, dateKey, prevKey, weekKey)
	if err != nil {
		return in, err
	}
	if in.Events, err = loadSnapshot[model.EventsSnapshot](ctx, l.store, model.EntityLocation, loc.ID, model.ProviderEvents, dateKey); err != nil {
		return in, err
	}
	if in.EventsPrev, err = loadSnapshot[model.EventsSnapshot](ctx, l.store, model.EntityLocation, loc.ID, model.ProviderEvents, prevKey); err != nil {
		return in, err
	}
	if in.Matches, err = l.store.ListEventMatches(ctx, loc.ID, dateKey); err != nil {
		return in, fmt.Errorf("list matches: %w", err)
	}
	if in.MatchesPrev, err = l.store.ListEventMatches(ctx, loc.ID, prevKey); err != nil {
		return in, fmt.Errorf("list previous matches: %w", err)
	}

	all, err := l.store.ListCompetitors(ctx, loc.ID)
	if err != nil {
		return in, fmt.Errorf("list competitors: %w", err)
	}
	var active []model.Competitor
	for _, c := range all {
		if c.IsActive {
			active = append(active, c)
		}
	}

	results := make([]insight.CompetitorSnapshots, len(active))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(l.concurrency)
	for i, c := range active {
		g.Go(func() error {
			snaps, err := l.entity(gctx, model.EntityCompetitor, c.ID, dateKey, prevKey, weekKey)
			if err != nil {
				return fmt.Errorf("competitor %d: %w", c.ID, err)
			}
			results[i] = insight.CompetitorSnapshots{Competitor: c, EntitySnapshots: snaps}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return in, err
	}
	in.Competitors = results
	return in, nil
}

func (l *Loader) entity(ctx context.Context, kind model.EntityKind, id int64, dateKey, prevKey, weekKey string) (insight.EntitySnapshots, error) {
	var s insight.EntitySnapshots
	var err error
	if s.Profile, err = loadSnapshot[model.ProfileSnapshot](ctx, l.store, kind, id, model.ProviderPlaces, dateKey); err != nil {
		return s, err
	}
	if s.ProfilePrev, err = loadSnapshot[model.ProfileSnapshot](ctx, l.store, kind, id, model.ProviderPlaces, prevKey); err != nil {
		return s, err
	}
	if s.ProfileWeek, err = loadSnapshot[model.ProfileSnapshot](ctx, l.store, kind, id, model.ProviderPlaces, weekKey); err != nil {
		return s, err
	}
	if s.Menu, err = loadSnapshot[model.MenuSnapshot](ctx, l.store, kind, id, model.ProviderMenu, dateKey); err != nil {
		return s, err
	}
	if s.Content, err = loadSnapshot[model.SiteContentSnapshot](ctx, l.store, kind, id, model.ProviderSiteContent, dateKey); err != nil {
		return s, err
	}
	if s.SEO, err = loadSnapshot[model.SEOSnapshot](ctx, l.store, kind, id, model.ProviderSEO, dateKey); err != nil {
		return s, err
	}
	if s.SEOPrev, err = loadSnapshot[model.SEOSnapshot](ctx, l.store, kind, id, model.ProviderSEO, prevKey); err != nil {
		return s, err
	}
	before, err := l.store.HasSnapshotBefore(ctx, kind, id, dateKey)
	if err != nil {
		return s, fmt.Errorf("check snapshot history: %w", err)
	}
	s.FirstCapture = !before
	return s, nil
}
