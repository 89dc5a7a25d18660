package scheduler

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"rivalwatch/internal/jobs"
	"rivalwatch/internal/model"
	"rivalwatch/internal/storage"
)

type mockRunner struct {
	mu   sync.Mutex
	err  error
	runs []model.Job
}

func (m *mockRunner) Run(_ context.Context, job model.Job) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.runs = append(m.runs, job)
	return m.err
}

func (m *mockRunner) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.runs)
}

type mockRecorder struct {
	mu       sync.Mutex
	statuses []string
}

func (m *mockRecorder) JobProcessed(_, status string, _ time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.statuses = append(m.statuses, status)
}

func newTestStore(t *testing.T) *storage.SQLite {
	t.Helper()
	s, err := storage.NewSQLite(":memory:")
	if err != nil {
		t.Fatalf("new sqlite: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func enqueue(t *testing.T, s *storage.SQLite, locationID int64) model.Job {
	t.Helper()
	job := model.Job{JobType: model.JobEventsMatch, LocationID: locationID, DateKey: "2026-10-17"}
	if err := s.EnqueueJob(context.Background(), &job); err != nil {
		t.Fatalf("enqueue: %v", err)
	}
	return job
}

func pending(t *testing.T, s *storage.SQLite, at time.Time) []model.Job {
	t.Helper()
	out, err := s.ListPendingJobs(context.Background(), at, 100)
	if err != nil {
		t.Fatalf("list pending: %v", err)
	}
	return out
}

func TestSchedulerRunsPendingJobs(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	for i := int64(1); i <= 5; i++ {
		enqueue(t, store, i)
	}

	runner := &mockRunner{}
	rec := &mockRecorder{}
	sched := New(store, runner, discard())
	sched.SetConcurrency(3)
	sched.SetRecorder(rec)
	sched.checkAll(ctx)

	if diff := cmp.Diff(5, runner.count()); diff != "" {
		t.Errorf("run count mismatch (-want +got):\n%s", diff)
	}
	if got := pending(t, store, time.Now().Add(time.Hour)); len(got) != 0 {
		t.Errorf("expected no pending jobs, got %d", len(got))
	}
	if diff := cmp.Diff([]string{StatusDone, StatusDone, StatusDone, StatusDone, StatusDone}, rec.statuses); diff != "" {
		t.Errorf("statuses mismatch (-want +got):\n%s", diff)
	}
}

func TestSchedulerRetriesThenFails(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	enqueue(t, store, 1)

	now := time.Now().UTC()
	runner := &mockRunner{err: errors.New("upstream timeout")}
	sched := New(store, runner, discard())
	sched.SetMaxAttempts(2)
	sched.now = func() time.Time { return now }

	sched.checkAll(ctx)
	got := pending(t, store, now.Add(2*time.Minute))
	if len(got) != 1 {
		t.Fatalf("expected job to be rescheduled, got %d pending", len(got))
	}
	if got[0].Attempt != 1 || got[0].LastError != "upstream timeout" {
		t.Errorf("retried job = %+v", got[0])
	}
	if len(pending(t, store, now)) != 0 {
		t.Error("expected retried job to wait for its backoff")
	}

	sched.now = func() time.Time { return now.Add(2 * time.Minute) }
	sched.checkAll(ctx)
	if got := pending(t, store, now.Add(24*time.Hour)); len(got) != 0 {
		t.Errorf("expected job to be failed after max attempts, got %d pending", len(got))
	}
	if diff := cmp.Diff(2, runner.count()); diff != "" {
		t.Errorf("run count mismatch (-want +got):\n%s", diff)
	}
}

func TestSchedulerFailsInvalidJobImmediately(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	enqueue(t, store, 1)

	runner := &mockRunner{err: fmt.Errorf("unknown provider: %w", jobs.ErrInvalidJob)}
	rec := &mockRecorder{}
	sched := New(store, runner, discard())
	sched.SetRecorder(rec)
	sched.checkAll(ctx)

	if got := pending(t, store, time.Now().Add(24*time.Hour)); len(got) != 0 {
		t.Errorf("expected invalid job to be failed, got %d pending", len(got))
	}
	if diff := cmp.Diff([]string{StatusFailed}, rec.statuses); diff != "" {
		t.Errorf("statuses mismatch (-want +got):\n%s", diff)
	}
}

func TestBackoff(t *testing.T) {
	tests := []struct {
		attempt int
		want    time.Duration
	}{
		{attempt: 0, want: 30 * time.Second},
		{attempt: 1, want: time.Minute},
		{attempt: 3, want: 4 * time.Minute},
		{attempt: 7, want: time.Hour},
		{attempt: 50, want: time.Hour},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprint(tt.attempt), func(t *testing.T) {
			if diff := cmp.Diff(tt.want, Backoff(tt.attempt)); diff != "" {
				t.Errorf("Backoff() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestSchedulerPlansEventIngestOncePerDay(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	for _, name := range []string{"Harbor Grill", "Uptown Bistro"} {
		loc := model.Location{Name: name}
		if err := store.CreateLocation(ctx, &loc); err != nil {
			t.Fatalf("create location: %v", err)
		}
	}

	now := time.Date(2026, 10, 17, 6, 0, 0, 0, time.UTC)
	sched := New(store, &mockRunner{}, discard())
	sched.SetEventFeeds([]string{"https://events.harbor.example/rss"})
	sched.now = func() time.Time { return now }

	sched.planDay(ctx)
	got := pending(t, store, time.Now().Add(time.Hour))
	if len(got) != 2 {
		t.Fatalf("expected 2 planned jobs, got %d", len(got))
	}
	for _, j := range got {
		if j.JobType != model.JobSnapshotIngest || j.Provider != model.ProviderEvents || j.DateKey != "2026-10-17" || j.CompetitorID != nil {
			t.Errorf("planned job = %+v", j)
		}
	}

	// Finishing the jobs and planning again on the same day changes nothing.
	for _, j := range got {
		if err := store.MarkJobDone(ctx, j.ID); err != nil {
			t.Fatalf("mark done: %v", err)
		}
	}
	sched.planDay(ctx)
	if got := pending(t, store, time.Now().Add(time.Hour)); len(got) != 0 {
		t.Errorf("expected no re-planning on the same day, got %d", len(got))
	}

	now = now.Add(24 * time.Hour)
	sched.planDay(ctx)
	if got := pending(t, store, time.Now().Add(time.Hour)); len(got) != 2 {
		t.Errorf("expected planning on the next day, got %d", len(got))
	}
}

func TestSchedulerRunStopsOnCancel(t *testing.T) {
	store := newTestStore(t)
	enqueue(t, store, 1)
	runner := &mockRunner{}
	sched := New(store, runner, discard())
	sched.SetTickInterval(10 * time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		sched.Run(ctx)
		close(done)
	}()

	deadline := time.After(2 * time.Second)
	for runner.count() == 0 {
		select {
		case <-deadline:
			t.Fatal("job was not run")
		case <-time.After(5 * time.Millisecond):
		}
	}
	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("scheduler did not stop")
	}
}
