package jobs

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"rivalwatch/internal/model"
)

// GenerateDelay is how long insight generation waits after the last input
// for a (location, date) arrives. Each new input pushes the job back.
const GenerateDelay = 30 * time.Second

// Enqueuer queues jobs.
type Enqueuer interface {
	EnqueueJob(ctx context.Context, job *model.Job) error
}

// IngestPayload carries the upstream data of a snapshot.ingest job. Raw holds
// one provider payload. Pages holds a multi-page menu crawl. FeedURLs lists
// event calendars to download instead of a Raw payload.
type IngestPayload struct {
	Raw      json.RawMessage   `json:"raw,omitempty"`
	Pages    []json.RawMessage `json:"pages,omitempty"`
	FeedURLs []string          `json:"feedUrls,omitempty"`
}

// EnqueueIngest queues a snapshot.ingest job. competitorID is nil for the
// location's own snapshots.
func EnqueueIngest(ctx context.Context, q Enqueuer, locationID int64, competitorID *int64, provider model.Provider, dateKey string, p IngestPayload) (*model.Job, error) {
	payload, err := json.Marshal(p)
	if err != nil {
		return nil, fmt.Errorf("marshal payload: %w", err)
	}
	job := &model.Job{
		JobType:      model.JobSnapshotIngest,
		LocationID:   locationID,
		CompetitorID: competitorID,
		DateKey:      dateKey,
		Provider:     provider,
		Payload:      payload,
	}
	if err := q.EnqueueJob(ctx, job); err != nil {
		return nil, err
	}
	return job, nil
}

// EnqueueMatch queues an events.match job for a location and date.
func EnqueueMatch(ctx context.Context, q Enqueuer, locationID int64, dateKey string) error {
	return q.EnqueueJob(ctx, &model.Job{
		JobType:    model.JobEventsMatch,
		LocationID: locationID,
		DateKey:    dateKey,
	})
}

// EnqueueGenerate queues an insights.generate job to run after delay.
func EnqueueGenerate(ctx context.Context, q Enqueuer, locationID int64, dateKey string, delay time.Duration) error {
	return q.EnqueueJob(ctx, &model.Job{
		JobType:    model.JobInsightsGenerate,
		LocationID: locationID,
		DateKey:    dateKey,
		RunAfter:   time.Now().UTC().Add(delay),
	})
}
