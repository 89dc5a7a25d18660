// Package storage defines the persistence interface and its implementations.
package storage

import (
	"context"
	"errors"
	"time"

	"rivalwatch/internal/model"
)

// ErrNotFound is returned when a requested row does not exist.
var ErrNotFound = errors.New("not found")

// Storage is the interface for all persistence operations. Every write of a
// snapshot, match, insight or preference is an upsert on its natural key.
type Storage interface {
	CreateLocation(ctx context.Context, loc *model.Location) error
	GetLocation(ctx context.Context, id int64) (*model.Location, error)
	ListLocations(ctx context.Context) ([]model.Location, error)
	ListLocationsByChat(ctx context.Context, chatID int64) ([]model.Location, error)

	CreateCompetitor(ctx context.Context, c *model.Competitor) error
	GetCompetitor(ctx context.Context, id int64) (*model.Competitor, error)
	ListCompetitors(ctx context.Context, locationID int64) ([]model.Competitor, error)
	UpdateCompetitor(ctx context.Context, c *model.Competitor) error

	UpsertSnapshot(ctx context.Context, s *model.Snapshot) error
	GetSnapshot(ctx context.Context, kind model.EntityKind, entityID int64, provider model.Provider, dateKey string) (*model.Snapshot, error)
	HasSnapshotBefore(ctx context.Context, kind model.EntityKind, entityID int64, dateKey string) (bool, error)

	UpsertEventMatches(ctx context.Context, matches []model.EventMatchRecord) error
	ListEventMatches(ctx context.Context, locationID int64, dateKey string) ([]model.EventMatchRecord, error)

	UpsertInsight(ctx context.Context, rec *model.InsightRecord) error
	GetInsight(ctx context.Context, id int64) (*model.InsightRecord, error)
	ListInsights(ctx context.Context, locationID int64, dateKey string) ([]model.InsightRecord, error)
	SetInsightStatus(ctx context.Context, id int64, status model.InsightStatus) error

	GetPreference(ctx context.Context, consumer, insightType string) (*model.InsightPreference, error)
	ListPreferences(ctx context.Context, consumer string) ([]model.InsightPreference, error)
	UpsertPreference(ctx context.Context, p *model.InsightPreference) error

	EnqueueJob(ctx context.Context, job *model.Job) error
	ListPendingJobs(ctx context.Context, now time.Time, limit int) ([]model.Job, error)
	MarkJobDone(ctx context.Context, id string) error
	RetryJob(ctx context.Context, id string, errMsg string, runAfter time.Time) error
	MarkJobFailed(ctx context.Context, id string, errMsg string) error

	Close() error
}
