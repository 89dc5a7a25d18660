package jobs

import (
	"log/slog"

	"rivalwatch/internal/features"
	"rivalwatch/internal/insight"
	"rivalwatch/internal/storage"
)

// Deps are the collaborators of the pipeline handlers. Events, Briefings,
// Notifier and Pushes may be nil.
type Deps struct {
	Store       storage.Storage
	Events      EventSource
	Detector    *features.Detector
	Generator   *insight.Generator
	Briefings   Invalidator
	Notifier    Notifier
	Pushes      PushRecorder
	Concurrency int
	Log         *slog.Logger
}

// NewPipeline returns a registry with the three pipeline stages.
func NewPipeline(d Deps) *Registry {
	gen := NewGenerateHandler(d.Store, NewLoader(d.Store, d.Concurrency), d.Generator, d.Log)
	if d.Briefings != nil {
		gen.SetInvalidator(d.Briefings)
	}
	if d.Notifier != nil {
		gen.SetNotifier(d.Notifier, d.Pushes)
	}

	r := NewRegistry()
	for _, h := range []Handler{
		NewIngestHandler(d.Store, d.Events, d.Detector, d.Log),
		NewMatchHandler(d.Store, d.Log),
		gen,
	} {
		if err := r.Register(h); err != nil {
			panic(err)
		}
	}
	return r
}
