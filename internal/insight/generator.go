package insight

import (
	"context"
	"fmt"
	"log/slog"

	"rivalwatch/internal/model"
)

// EntitySnapshots are the snapshots available for one entity. Nil means the
// provider was not captured. Prev fields hold the t-1 capture and Week
// fields the t-7 capture.
type EntitySnapshots struct {
	Profile     *model.ProfileSnapshot
	ProfilePrev *model.ProfileSnapshot
	ProfileWeek *model.ProfileSnapshot
	Menu        *model.MenuSnapshot
	Content     *model.SiteContentSnapshot
	SEO         *model.SEOSnapshot
	SEOPrev     *model.SEOSnapshot

	// FirstCapture is set when the entity has no snapshot before the run date.
	FirstCapture bool
}

// providers lists the providers present in the current captures.
func (s EntitySnapshots) providers() []model.Provider {
	var out []model.Provider
	if s.Profile != nil {
		out = append(out, model.ProviderPlaces)
	}
	if s.Menu != nil {
		out = append(out, model.ProviderMenu)
	}
	if s.Content != nil {
		out = append(out, model.ProviderSiteContent)
	}
	if s.SEO != nil {
		out = append(out, model.ProviderSEO)
	}
	return out
}

// CompetitorSnapshots pairs a competitor with its snapshots.
type CompetitorSnapshots struct {
	Competitor model.Competitor
	EntitySnapshots
}

// Inputs is everything the rule modules may read for one (location, date).
type Inputs struct {
	LocationID  int64
	DateKey     string
	Location    EntitySnapshots
	Competitors []CompetitorSnapshots

	Events     *model.EventsSnapshot
	EventsPrev *model.EventsSnapshot

	Matches     []model.EventMatchRecord
	MatchesPrev []model.EventMatchRecord
}

// Module is one independent rule family.
type Module struct {
	Name string
	Run  func(in Inputs, t Thresholds) []Insight
}

// Modules returns the rule modules in evaluation order.
func Modules() []Module {
	return []Module{
		{Name: "baseline", Run: baselineModule},
		{Name: "reviews", Run: reviewsModule},
		{Name: "menu", Run: menuModule},
		{Name: "content", Run: contentModule},
		{Name: "events", Run: eventsModule},
		{Name: "correlation", Run: correlationModule},
	}
}

// Recorder observes module outcomes.
type Recorder interface {
	ModuleEmitted(module string, count int)
	ModuleFailed(module string)
}

// Generator runs the rule modules and isolates their failures.
type Generator struct {
	modules    []Module
	thresholds Thresholds
	rec        Recorder
	log        *slog.Logger
}

// NewGenerator creates a Generator with the stock modules. rec may be nil.
func NewGenerator(t Thresholds, rec Recorder, log *slog.Logger) *Generator {
	return &Generator{
		modules:    Modules(),
		thresholds: t.Merge(),
		rec:        rec,
		log:        log,
	}
}

// SetModules replaces the rule modules (useful for testing).
func (g *Generator) SetModules(modules []Module) {
	g.modules = modules
}

// Run evaluates every module and returns their combined output ordered by
// type and competitor. A module that panics is logged and skipped. When two
// insights share a key the first one emitted is kept. A competitor captured
// for the first time only gets its baseline_snapshot.
func (g *Generator) Run(ctx context.Context, in Inputs) []Insight {
	var out []Insight
	seen := map[string]bool{}
	fresh := firstCaptured(in)
	for _, m := range g.modules {
		if ctx.Err() != nil {
			break
		}
		items, err := g.runModule(m, in)
		if err != nil {
			g.log.Error("insight module failed",
				"module", m.Name, "location_id", in.LocationID, "date_key", in.DateKey, "error", err)
			if g.rec != nil {
				g.rec.ModuleFailed(m.Name)
			}
			continue
		}
		if len(items) == 0 {
			g.log.Debug("insight module emitted nothing",
				"module", m.Name, "location_id", in.LocationID, "date_key", in.DateKey)
		}
		emitted := 0
		for _, it := range items {
			if it.CompetitorID != nil && fresh[*it.CompetitorID] && it.Type != TypeBaselineSnapshot {
				continue
			}
			if seen[it.Key()] {
				g.log.Warn("duplicate insight key",
					"module", m.Name, "type", it.Type, "location_id", in.LocationID, "date_key", in.DateKey)
				continue
			}
			seen[it.Key()] = true
			out = append(out, it)
			emitted++
		}
		if g.rec != nil {
			g.rec.ModuleEmitted(m.Name, emitted)
		}
	}
	Sort(out)
	return out
}

func (g *Generator) runModule(m Module, in Inputs) (items []Insight, err error) {
	defer func() {
		if r := recover(); r != nil {
			items = nil
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	return m.Run(in, g.thresholds), nil
}

// firstCaptured returns the competitors with no snapshot before this date.
func firstCaptured(in Inputs) map[int64]bool {
	out := map[int64]bool{}
	for _, c := range in.Competitors {
		if c.FirstCapture {
			out[c.Competitor.ID] = true
		}
	}
	return out
}
