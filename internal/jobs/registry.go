// Package jobs runs the pipeline stages behind the job contract: snapshot
// ingestion, event matching and insight generation.
package jobs

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"rivalwatch/internal/model"
)

// ErrInvalidJob marks a job that can never succeed, so retrying is pointless.
var ErrInvalidJob = errors.New("invalid job")

// Handler executes one job type.
type Handler interface {
	Type() model.JobType
	Run(ctx context.Context, job model.Job) error
}

// Registry maps job types to handlers.
type Registry struct {
	mu       sync.RWMutex
	handlers map[model.JobType]Handler
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{handlers: make(map[model.JobType]Handler)}
}

// Register adds a handler. Each job type may be registered once.
func (r *Registry) Register(h Handler) error {
	if h == nil {
		return fmt.Errorf("nil handler")
	}
	t := h.Type()
	if t == "" {
		return fmt.Errorf("handler type is empty")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.handlers[t]; exists {
		return fmt.Errorf("handler already registered for job_type=%s", t)
	}
	r.handlers[t] = h
	return nil
}

// Get returns the handler for a job type.
func (r *Registry) Get(jobType model.JobType) (Handler, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	h, ok := r.handlers[jobType]
	return h, ok
}

// Run dispatches job to its handler. A missing handler is an invalid job; a
// panicking handler is reported as an error.
func (r *Registry) Run(ctx context.Context, job model.Job) (err error) {
	h, ok := r.Get(job.JobType)
	if !ok {
		return fmt.Errorf("no handler for job_type=%s: %w", job.JobType, ErrInvalidJob)
	}
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("handler panic: %v", p)
		}
	}()
	return h.Run(ctx, job)
}
