package model

import (
	"encoding/json"
	"strconv"
	"time"
)

// Confidence is how sure a rule or match is about its conclusion.
type Confidence string

// Supported confidence tiers.
const (
	ConfidenceHigh   Confidence = "high"
	ConfidenceMedium Confidence = "medium"
	ConfidenceLow    Confidence = "low"
)

// Severity is how important an insight is. It doubles as the urgency tier
// derived from a relevance score.
type Severity string

// Supported severities.
const (
	SeverityInfo     Severity = "info"
	SeverityWarning  Severity = "warning"
	SeverityCritical Severity = "critical"
)

// MatchType names the matcher rule that associated an event with a competitor.
type MatchType string

// Supported match types, in evaluation order.
const (
	MatchVenueName    MatchType = "venue_name"
	MatchVenueAddress MatchType = "venue_address"
	MatchURLDomain    MatchType = "url_domain"
)

// EventMatchRecord associates an event with a competitor. At most one record
// exists per (DateKey, EventUID, CompetitorID).
type EventMatchRecord struct {
	LocationID   int64         `json:"locationId"`
	CompetitorID int64         `json:"competitorId"`
	DateKey      string        `json:"dateKey"`
	EventUID     string        `json:"eventUid"`
	MatchType    MatchType     `json:"matchType"`
	Confidence   Confidence    `json:"confidence"`
	Evidence     MatchEvidence `json:"evidence"`
}

// MatchEvidence carries enough raw context to justify a match to a human.
type MatchEvidence struct {
	MatchInputs MatchInputs `json:"matchInputs"`
	Score       float64     `json:"score"`
}

// MatchInputs are the values the matcher compared.
type MatchInputs struct {
	EventTitle         string   `json:"eventTitle,omitempty"`
	VenueName          string   `json:"venueName,omitempty"`
	VenueAddress       string   `json:"venueAddress,omitempty"`
	EventURL           string   `json:"eventUrl,omitempty"`
	CompetitorName     string   `json:"competitorName,omitempty"`
	CompetitorAddress  string   `json:"competitorAddress,omitempty"`
	CompetitorWebsite  string   `json:"competitorWebsite,omitempty"`
	AddressTokens      []string `json:"addressTokens,omitempty"`
	MatchedTokens      []string `json:"matchedTokens,omitempty"`
	MatchRatio         float64  `json:"matchRatio,omitempty"`
	CompetitorDomain   string   `json:"competitorDomain,omitempty"`
	CandidateDomains   []string `json:"candidateDomains,omitempty"`
	CanonicalVenueName string   `json:"canonicalVenueName,omitempty"`
}

// InsightStatus is the operator's disposition of an insight.
type InsightStatus string

// Supported insight statuses.
const (
	StatusNew       InsightStatus = "new"
	StatusUseful    InsightStatus = "useful"
	StatusDismissed InsightStatus = "dismissed"
)

// InsightRecord is a stored insight. The upsert key is
// (LocationID, CompetitorID, DateKey, InsightType).
type InsightRecord struct {
	ID              int64
	LocationID      int64
	CompetitorID    *int64
	DateKey         string
	InsightType     string
	Title           string
	Summary         string
	Confidence      Confidence
	Severity        Severity
	Evidence        json.RawMessage
	Recommendations []string
	RelevanceScore  int
	Urgency         Severity
	Suppressed      bool
	Status          InsightStatus
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// InsightPreference is a consumer's learned weight for one insight type.
type InsightPreference struct {
	Consumer       string
	InsightType    string
	Weight         float64
	UsefulCount    int
	DismissedCount int
	UpdatedAt      time.Time
}

// JobType selects which stage a job runs.
type JobType string

// Supported job types.
const (
	JobSnapshotIngest   JobType = "snapshot.ingest"
	JobEventsMatch      JobType = "events.match"
	JobInsightsGenerate JobType = "insights.generate"
)

// JobStatus is the lifecycle state of a queued job.
type JobStatus string

// Supported job statuses.
const (
	JobPending JobStatus = "pending"
	JobDone    JobStatus = "done"
	JobFailed  JobStatus = "failed"
)

// Job is the unit of work consumed from the dispatcher. Replays of the same
// (JobType, LocationID, CompetitorID, DateKey, Provider) tuple are idempotent.
type Job struct {
	ID           string
	JobType      JobType
	LocationID   int64
	CompetitorID *int64
	DateKey      string
	Provider     Provider
	Payload      json.RawMessage
	Attempt      int
	Status       JobStatus
	LastError    string
	RunAfter     time.Time
	CreatedAt    time.Time
}

// ChatConsumer returns the preference consumer key of an operator chat.
func ChatConsumer(chatID int64) string {
	return "chat:" + strconv.FormatInt(chatID, 10)
}
