package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite" // SQLite driver registration.

	"rivalwatch/internal/model"
	"rivalwatch/migrations"
)

const timeLayout = "2006-01-02T15:04:05Z"

// SQLite implements Storage backed by a SQLite database.
type SQLite struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at dsn and runs pending migrations.
func NewSQLite(dsn string) (*SQLite, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// A single connection serializes writers and keeps ":memory:" databases
	// shared across calls.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}
	if _, err := db.Exec("PRAGMA foreign_keys=OFF"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("disable foreign keys: %w", err)
	}

	if err := migrations.Run(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLite{db: db}, nil
}

// Close closes the underlying database connection.
func (s *SQLite) Close() error {
	return s.db.Close()
}

// CreateLocation inserts a new location and populates its ID and CreatedAt.
func (s *SQLite) CreateLocation(ctx context.Context, loc *model.Location) error {
	now := time.Now().UTC().Format(timeLayout)
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO locations (name, address, website, chat_id, created_at) VALUES (?, ?, ?, ?, ?)`,
		loc.Name, loc.Address, loc.Website, loc.ChatID, now,
	)
	if err != nil {
		return fmt.Errorf("insert location: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("last insert id: %w", err)
	}
	loc.ID = id
	loc.CreatedAt, _ = time.Parse(timeLayout, now)
	return nil
}

// GetLocation returns a single location by its ID.
func (s *SQLite) GetLocation(ctx context.Context, id int64) (*model.Location, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, name, address, website, chat_id, created_at FROM locations WHERE id = ?`, id,
	)
	loc, err := scanLocation(row)
	if err != nil {
		return nil, err
	}
	return &loc, nil
}

// ListLocations returns every location.
func (s *SQLite) ListLocations(ctx context.Context) ([]model.Location, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, address, website, chat_id, created_at FROM locations ORDER BY id`,
	)
	if err != nil {
		return nil, fmt.Errorf("query locations: %w", err)
	}
	defer func() { _ = rows.Close() }()
	return scanAll(rows, scanLocation)
}

// ListLocationsByChat returns the locations operated from the given chat.
func (s *SQLite) ListLocationsByChat(ctx context.Context, chatID int64) ([]model.Location, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, address, website, chat_id, created_at FROM locations WHERE chat_id = ? ORDER BY id`,
		chatID,
	)
	if err != nil {
		return nil, fmt.Errorf("query locations: %w", err)
	}
	defer func() { _ = rows.Close() }()
	return scanAll(rows, scanLocation)
}

// CreateCompetitor inserts a new competitor and populates its ID and CreatedAt.
func (s *SQLite) CreateCompetitor(ctx context.Context, c *model.Competitor) error {
	now := time.Now().UTC().Format(timeLayout)
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO competitors (location_id, name, address, website, is_active, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		c.LocationID, c.Name, c.Address, c.Website, boolToInt(c.IsActive), now,
	)
	if err != nil {
		return fmt.Errorf("insert competitor: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("last insert id: %w", err)
	}
	c.ID = id
	c.CreatedAt, _ = time.Parse(timeLayout, now)
	return nil
}

// GetCompetitor returns a single competitor by its ID.
func (s *SQLite) GetCompetitor(ctx context.Context, id int64) (*model.Competitor, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, location_id, name, address, website, is_active, created_at FROM competitors WHERE id = ?`, id,
	)
	c, err := scanCompetitor(row)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// ListCompetitors returns all competitors of a location, active or not.
func (s *SQLite) ListCompetitors(ctx context.Context, locationID int64) ([]model.Competitor, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, location_id, name, address, website, is_active, created_at
		 FROM competitors WHERE location_id = ? ORDER BY id`, locationID,
	)
	if err != nil {
		return nil, fmt.Errorf("query competitors: %w", err)
	}
	defer func() { _ = rows.Close() }()
	return scanAll(rows, scanCompetitor)
}

// UpdateCompetitor persists changes to an existing competitor.
func (s *SQLite) UpdateCompetitor(ctx context.Context, c *model.Competitor) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE competitors SET name = ?, address = ?, website = ?, is_active = ? WHERE id = ?`,
		c.Name, c.Address, c.Website, boolToInt(c.IsActive), c.ID,
	)
	if err != nil {
		return fmt.Errorf("update competitor: %w", err)
	}
	return nil
}

// UpsertSnapshot writes a snapshot, replacing any existing one with the same
// entity, provider and date.
func (s *SQLite) UpsertSnapshot(ctx context.Context, snap *model.Snapshot) error {
	if snap.CapturedAt.IsZero() {
		snap.CapturedAt = time.Now().UTC()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO snapshots (entity_kind, entity_id, provider, date_key, captured_at, raw_data, diff_hash)
		 VALUES (?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT (entity_kind, entity_id, provider, date_key) DO UPDATE SET
		   captured_at = excluded.captured_at,
		   raw_data = excluded.raw_data,
		   diff_hash = excluded.diff_hash`,
		string(snap.EntityKind), snap.EntityID, string(snap.Provider), snap.DateKey,
		snap.CapturedAt.UTC().Format(timeLayout), rawOrNull(snap.RawData), snap.DiffHash,
	)
	if err != nil {
		return fmt.Errorf("upsert snapshot: %w", err)
	}
	return nil
}

// GetSnapshot returns the snapshot for an entity, provider and date, or
// ErrNotFound.
func (s *SQLite) GetSnapshot(ctx context.Context, kind model.EntityKind, entityID int64, provider model.Provider, dateKey string) (*model.Snapshot, error) {
	var snap model.Snapshot
	var kindStr, providerStr, captured, raw string
	err := s.db.QueryRowContext(ctx,
		`SELECT entity_kind, entity_id, provider, date_key, captured_at, raw_data, diff_hash
		 FROM snapshots WHERE entity_kind = ? AND entity_id = ? AND provider = ? AND date_key = ?`,
		string(kind), entityID, string(provider), dateKey,
	).Scan(&kindStr, &snap.EntityID, &providerStr, &snap.DateKey, &captured, &raw, &snap.DiffHash)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan snapshot: %w", err)
	}
	snap.EntityKind = model.EntityKind(kindStr)
	snap.Provider = model.Provider(providerStr)
	snap.CapturedAt, _ = time.Parse(timeLayout, captured)
	snap.RawData = json.RawMessage(raw)
	return &snap, nil
}

// HasSnapshotBefore reports whether the entity has any snapshot dated before
// dateKey.
func (s *SQLite) HasSnapshotBefore(ctx context.Context, kind model.EntityKind, entityID int64, dateKey string) (bool, error) {
	var count int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM snapshots WHERE entity_kind = ? AND entity_id = ? AND date_key < ?`,
		string(kind), entityID, dateKey,
	).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("count snapshots: %w", err)
	}
	return count > 0, nil
}

// UpsertEventMatches writes match records in one transaction.
func (s *SQLite) UpsertEventMatches(ctx context.Context, matches []model.EventMatchRecord) error {
	if len(matches) == 0 {
		return nil
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	for _, m := range matches {
		evidence, err := json.Marshal(m.Evidence)
		if err != nil {
			return fmt.Errorf("marshal match evidence: %w", err)
		}
		_, err = tx.ExecContext(ctx,
			`INSERT INTO event_matches (location_id, competitor_id, date_key, event_uid, match_type, confidence, evidence)
			 VALUES (?, ?, ?, ?, ?, ?, ?)
			 ON CONFLICT (location_id, competitor_id, date_key, event_uid) DO UPDATE SET
			   match_type = excluded.match_type,
			   confidence = excluded.confidence,
			   evidence = excluded.evidence`,
			m.LocationID, m.CompetitorID, m.DateKey, m.EventUID, string(m.MatchType), string(m.Confidence), string(evidence),
		)
		if err != nil {
			return fmt.Errorf("upsert event match: %w", err)
		}
	}
	return tx.Commit()
}

// ListEventMatches returns the matches recorded for a location and date.
func (s *SQLite) ListEventMatches(ctx context.Context, locationID int64, dateKey string) ([]model.EventMatchRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT location_id, competitor_id, date_key, event_uid, match_type, confidence, evidence
		 FROM event_matches WHERE location_id = ? AND date_key = ?
		 ORDER BY competitor_id, event_uid`, locationID, dateKey,
	)
	if err != nil {
		return nil, fmt.Errorf("query event matches: %w", err)
	}
	defer func() { _ = rows.Close() }()
	return scanAll(rows, scanMatch)
}

// UpsertInsight writes an insight keyed by (location, competitor, date, type)
// and populates its ID. On conflict the content and scoring fields are
// replaced; status and CreatedAt are kept.
func (s *SQLite) UpsertInsight(ctx context.Context, rec *model.InsightRecord) error {
	recs, err := json.Marshal(nonNilStrings(rec.Recommendations))
	if err != nil {
		return fmt.Errorf("marshal recommendations: %w", err)
	}
	if rec.Status == "" {
		rec.Status = model.StatusNew
	}
	now := time.Now().UTC().Format(timeLayout)
	var id int64
	err = s.db.QueryRowContext(ctx,
		`INSERT INTO insights (location_id, competitor_id, date_key, insight_type, title, summary,
		   confidence, severity, evidence, recommendations, relevance_score, urgency, suppressed,
		   status, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT (location_id, competitor_id, date_key, insight_type) DO UPDATE SET
		   title = excluded.title,
		   summary = excluded.summary,
		   confidence = excluded.confidence,
		   severity = excluded.severity,
		   evidence = excluded.evidence,
		   recommendations = excluded.recommendations,
		   relevance_score = excluded.relevance_score,
		   urgency = excluded.urgency,
		   suppressed = excluded.suppressed,
		   updated_at = excluded.updated_at
		 RETURNING id`,
		rec.LocationID, competitorKey(rec.CompetitorID), rec.DateKey, rec.InsightType, rec.Title, rec.Summary,
		string(rec.Confidence), string(rec.Severity), rawOrNull(rec.Evidence), string(recs),
		rec.RelevanceScore, string(rec.Urgency), boolToInt(rec.Suppressed),
		string(rec.Status), now, now,
	).Scan(&id)
	if err != nil {
		return fmt.Errorf("upsert insight: %w", err)
	}
	rec.ID = id
	return nil
}

const insightColumns = `id, location_id, competitor_id, date_key, insight_type, title, summary,
	confidence, severity, evidence, recommendations, relevance_score, urgency, suppressed,
	status, created_at, updated_at`

// GetInsight returns a single insight by its ID, or ErrNotFound.
func (s *SQLite) GetInsight(ctx context.Context, id int64) (*model.InsightRecord, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+insightColumns+` FROM insights WHERE id = ?`, id)
	rec, err := scanInsight(row)
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

// ListInsights returns the insights of a location for one date.
func (s *SQLite) ListInsights(ctx context.Context, locationID int64, dateKey string) ([]model.InsightRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+insightColumns+` FROM insights WHERE location_id = ? AND date_key = ?
		 ORDER BY insight_type, competitor_id`, locationID, dateKey,
	)
	if err != nil {
		return nil, fmt.Errorf("query insights: %w", err)
	}
	defer func() { _ = rows.Close() }()
	return scanAll(rows, scanInsight)
}

// SetInsightStatus records the operator's disposition of an insight.
func (s *SQLite) SetInsightStatus(ctx context.Context, id int64, status model.InsightStatus) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE insights SET status = ?, updated_at = ? WHERE id = ?`,
		string(status), time.Now().UTC().Format(timeLayout), id,
	)
	if err != nil {
		return fmt.Errorf("update insight status: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// GetPreference returns a consumer's preference for an insight type, or
// ErrNotFound.
func (s *SQLite) GetPreference(ctx context.Context, consumer, insightType string) (*model.InsightPreference, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT consumer, insight_type, weight, useful_count, dismissed_count, updated_at
		 FROM insight_preferences WHERE consumer = ? AND insight_type = ?`, consumer, insightType,
	)
	p, err := scanPreference(row)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// ListPreferences returns every preference of a consumer.
func (s *SQLite) ListPreferences(ctx context.Context, consumer string) ([]model.InsightPreference, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT consumer, insight_type, weight, useful_count, dismissed_count, updated_at
		 FROM insight_preferences WHERE consumer = ? ORDER BY insight_type`, consumer,
	)
	if err != nil {
		return nil, fmt.Errorf("query preferences: %w", err)
	}
	defer func() { _ = rows.Close() }()
	return scanAll(rows, scanPreference)
}

// UpsertPreference writes a preference keyed by (consumer, insight type).
func (s *SQLite) UpsertPreference(ctx context.Context, p *model.InsightPreference) error {
	if p.UpdatedAt.IsZero() {
		p.UpdatedAt = time.Now().UTC()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO insight_preferences (consumer, insight_type, weight, useful_count, dismissed_count, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?)
		 ON CONFLICT (consumer, insight_type) DO UPDATE SET
		   weight = excluded.weight,
		   useful_count = excluded.useful_count,
		   dismissed_count = excluded.dismissed_count,
		   updated_at = excluded.updated_at`,
		p.Consumer, p.InsightType, p.Weight, p.UsefulCount, p.DismissedCount, p.UpdatedAt.UTC().Format(timeLayout),
	)
	if err != nil {
		return fmt.Errorf("upsert preference: %w", err)
	}
	return nil
}

// EnqueueJob queues a job. Enqueueing the same (type, location, competitor,
// date, provider) tuple again resets the existing job to pending and keeps
// its ID, which is written back to job.ID.
func (s *SQLite) EnqueueJob(ctx context.Context, job *model.Job) error {
	now := time.Now().UTC()
	if job.ID == "" {
		job.ID = uuid.NewString()
	}
	if job.RunAfter.IsZero() {
		job.RunAfter = now
	}
	var id, created string
	err := s.db.QueryRowContext(ctx,
		`INSERT INTO jobs (id, job_type, location_id, competitor_id, date_key, provider, payload,
		   attempt, status, last_error, run_after, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, 0, 'pending', '', ?, ?)
		 ON CONFLICT (job_type, location_id, competitor_id, date_key, provider) DO UPDATE SET
		   payload = excluded.payload,
		   status = 'pending',
		   last_error = '',
		   run_after = excluded.run_after
		 RETURNING id, created_at`,
		job.ID, string(job.JobType), job.LocationID, competitorKey(job.CompetitorID), job.DateKey,
		string(job.Provider), rawOrNull(job.Payload), job.RunAfter.UTC().Format(timeLayout), now.Format(timeLayout),
	).Scan(&id, &created)
	if err != nil {
		return fmt.Errorf("enqueue job: %w", err)
	}
	job.ID = id
	job.Status = model.JobPending
	job.CreatedAt, _ = time.Parse(timeLayout, created)
	return nil
}

// ListPendingJobs returns up to limit pending jobs due at now, oldest first.
func (s *SQLite) ListPendingJobs(ctx context.Context, now time.Time, limit int) ([]model.Job, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, job_type, location_id, competitor_id, date_key, provider, payload,
		   attempt, status, last_error, run_after, created_at
		 FROM jobs
		 WHERE status = 'pending' AND run_after <= ?
		 ORDER BY run_after, created_at, id
		 LIMIT ?`,
		now.UTC().Format(timeLayout), limit,
	)
	if err != nil {
		return nil, fmt.Errorf("query pending jobs: %w", err)
	}
	defer func() { _ = rows.Close() }()
	return scanAll(rows, scanJob)
}

// MarkJobDone marks a job as completed.
func (s *SQLite) MarkJobDone(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, `UPDATE jobs SET status = 'done', last_error = '' WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("mark job done: %w", err)
	}
	return nil
}

// RetryJob records a failed attempt and reschedules the job.
func (s *SQLite) RetryJob(ctx context.Context, id string, errMsg string, runAfter time.Time) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE jobs SET attempt = attempt + 1, last_error = ?, run_after = ?, status = 'pending' WHERE id = ?`,
		errMsg, runAfter.UTC().Format(timeLayout), id,
	)
	if err != nil {
		return fmt.Errorf("retry job: %w", err)
	}
	return nil
}

// MarkJobFailed records a final failed attempt.
func (s *SQLite) MarkJobFailed(ctx context.Context, id string, errMsg string) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE jobs SET attempt = attempt + 1, last_error = ?, status = 'failed' WHERE id = ?`,
		errMsg, id,
	)
	if err != nil {
		return fmt.Errorf("mark job failed: %w", err)
	}
	return nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

// competitorKey maps a nil competitor to the 0 sentinel used in natural keys.
func competitorKey(id *int64) int64 {
	if id == nil {
		return 0
	}
	return *id
}

func competitorFromKey(key int64) *int64 {
	if key == 0 {
		return nil
	}
	return &key
}

func rawOrNull(raw json.RawMessage) string {
	if len(raw) == 0 {
		return "null"
	}
	return string(raw)
}

func nonNilStrings(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

type scannable interface {
	Scan(dest ...any) error
}

func scanAll[T any](rows *sql.Rows, scan func(scannable) (T, error)) ([]T, error) {
	var out []T
	for rows.Next() {
		v, err := scan(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

func notFound(err error, what string) error {
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	return fmt.Errorf("scan %s: %w", what, err)
}

func scanLocation(row scannable) (model.Location, error) {
	var loc model.Location
	var created string
	if err := row.Scan(&loc.ID, &loc.Name, &loc.Address, &loc.Website, &loc.ChatID, &created); err != nil {
		return loc, notFound(err, "location")
	}
	loc.CreatedAt, _ = time.Parse(timeLayout, created)
	return loc, nil
}

func scanCompetitor(row scannable) (model.Competitor, error) {
	var c model.Competitor
	var isActive int
	var created string
	if err := row.Scan(&c.ID, &c.LocationID, &c.Name, &c.Address, &c.Website, &isActive, &created); err != nil {
		return c, notFound(err, "competitor")
	}
	c.IsActive = isActive == 1
	c.CreatedAt, _ = time.Parse(timeLayout, created)
	return c, nil
}

func scanMatch(row scannable) (model.EventMatchRecord, error) {
	var m model.EventMatchRecord
	var matchType, confidence, evidence string
	if err := row.Scan(&m.LocationID, &m.CompetitorID, &m.DateKey, &m.EventUID, &matchType, &confidence, &evidence); err != nil {
		return m, notFound(err, "event match")
	}
	m.MatchType = model.MatchType(matchType)
	m.Confidence = model.Confidence(confidence)
	if err := json.Unmarshal([]byte(evidence), &m.Evidence); err != nil {
		return m, fmt.Errorf("unmarshal match evidence: %w", err)
	}
	return m, nil
}

func scanInsight(row scannable) (model.InsightRecord, error) {
	var rec model.InsightRecord
	var competitorID int64
	var confidence, severity, evidence, recs, urgency, status, created, updated string
	var suppressed int
	err := row.Scan(&rec.ID, &rec.LocationID, &competitorID, &rec.DateKey, &rec.InsightType, &rec.Title, &rec.Summary,
		&confidence, &severity, &evidence, &recs, &rec.RelevanceScore, &urgency, &suppressed,
		&status, &created, &updated)
	if err != nil {
		return rec, notFound(err, "insight")
	}
	rec.CompetitorID = competitorFromKey(competitorID)
	rec.Confidence = model.Confidence(confidence)
	rec.Severity = model.Severity(severity)
	rec.Evidence = json.RawMessage(evidence)
	if err := json.Unmarshal([]byte(recs), &rec.Recommendations); err != nil {
		return rec, fmt.Errorf("unmarshal recommendations: %w", err)
	}
	rec.Urgency = model.Severity(urgency)
	rec.Suppressed = suppressed == 1
	rec.Status = model.InsightStatus(status)
	rec.CreatedAt, _ = time.Parse(timeLayout, created)
	rec.UpdatedAt, _ = time.Parse(timeLayout, updated)
	return rec, nil
}

func scanPreference(row scannable) (model.InsightPreference, error) {
	var p model.InsightPreference
	var updated string
	if err := row.Scan(&p.Consumer, &p.InsightType, &p.Weight, &p.UsefulCount, &p.DismissedCount, &updated); err != nil {
		return p, notFound(err, "preference")
	}
	p.UpdatedAt, _ = time.Parse(timeLayout, updated)
	return p, nil
}

func scanJob(row scannable) (model.Job, error) {
	var j model.Job
	var jobType, provider, payload, status, runAfter, created string
	var competitorID int64
	err := row.Scan(&j.ID, &jobType, &j.LocationID, &competitorID, &j.DateKey, &provider, &payload,
		&j.Attempt, &status, &j.LastError, &runAfter, &created)
	if err != nil {
		return j, notFound(err, "job")
	}
	j.JobType = model.JobType(jobType)
	j.CompetitorID = competitorFromKey(competitorID)
	j.Provider = model.Provider(provider)
	j.Payload = json.RawMessage(payload)
	j.Status = model.JobStatus(status)
	j.RunAfter, _ = time.Parse(timeLayout, runAfter)
	j.CreatedAt, _ = time.Parse(timeLayout, created)
	return j, nil
}
