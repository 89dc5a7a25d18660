// Package insight turns snapshot diffs and match results into structured,
// explainable insights with deterministic rule modules.
package insight

import (
	"encoding/json"
	"fmt"
	"sort"

	"rivalwatch/internal/model"
)

// Insight types.
const (
	TypeRatingChange             = "review.rating_change"
	TypeRatingChangeWeekly       = "review.rating_change_weekly"
	TypeReviewVelocity           = "review.review_velocity"
	TypeReviewVelocityWeekly     = "review.review_velocity_weekly"
	TypeHoursChanged             = "review.hours_changed"
	TypePricePositioning         = "menu.price_positioning_shift"
	TypeCateringPricePositioning = "menu.catering_price_positioning_shift"
	TypeCategoryGap              = "menu.category_gap"
	TypeUniqueItems              = "menu.unique_items"
	TypePromoKeyword             = "menu.promo_keyword"
	TypeFeatureGap               = "content.feature_gap"
	TypeWeekendDensitySpike      = "events.weekend_density_spike"
	TypeDenseDay                 = "events.dense_day"
	TypeNewHighSignalEvent       = "events.new_high_signal_event"
	TypeCompetitorHostingEvent   = "events.competitor_hosting_event"
	TypeCompetitorCadenceUp      = "events.competitor_event_cadence_up"
	TypeEventTrafficOpportunity  = "correlation.event_traffic_opportunity"
	TypeAuthorityRisk            = "correlation.authority_risk"
	TypeCompetitorMomentum       = "correlation.competitor_momentum"
	TypeBaselineSnapshot         = "baseline_snapshot"
)

// Insight is the common envelope every rule module emits. CompetitorID is nil
// for insights about the location itself.
type Insight struct {
	Type            string
	CompetitorID    *int64
	Title           string
	Summary         string
	Confidence      model.Confidence
	Severity        model.Severity
	Evidence        Evidence
	Recommendations []string
}

// Key identifies an insight within one (location, date) run.
func (i Insight) Key() string {
	if i.CompetitorID == nil {
		return i.Type
	}
	return fmt.Sprintf("%s#%d", i.Type, *i.CompetitorID)
}

// Evidence is the typed payload justifying an insight. Each implementation
// reports a distinct kind used as the JSON discriminator.
type Evidence interface {
	Kind() string
}

// RatingEvidence backs review.rating_change*.
type RatingEvidence struct {
	Window    string  `json:"window"`
	Previous  float64 `json:"previous"`
	Current   float64 `json:"current"`
	Delta     float64 `json:"delta"`
	Threshold float64 `json:"threshold"`
}

func (RatingEvidence) Kind() string { return "rating" }

// ReviewCountEvidence backs review.review_velocity*.
type ReviewCountEvidence struct {
	Window    string `json:"window"`
	Previous  int    `json:"previous"`
	Current   int    `json:"current"`
	Delta     int    `json:"delta"`
	Threshold int    `json:"threshold"`
}

func (ReviewCountEvidence) Kind() string { return "review_count" }

// HoursEvidence backs review.hours_changed.
type HoursEvidence struct {
	Previous map[string]string `json:"previous"`
	Current  map[string]string `json:"current"`
}

func (HoursEvidence) Kind() string { return "hours" }

// PriceEvidence backs the price positioning insights.
type PriceEvidence struct {
	MenuType        model.MenuType `json:"menuType"`
	OwnAvg          float64        `json:"ownAvg"`
	CompetitorAvg   float64        `json:"competitorAvg"`
	Diff            float64        `json:"diff"`
	PctDiff         float64        `json:"pctDiff"`
	OwnItems        int            `json:"ownItems"`
	CompetitorItems int            `json:"competitorItems"`
}

func (PriceEvidence) Kind() string { return "price" }

// CategoryGapEvidence backs menu.category_gap.
type CategoryGapEvidence struct {
	Missing []string `json:"missing"`
}

func (CategoryGapEvidence) Kind() string { return "category_gap" }

// UniqueItemsEvidence backs menu.unique_items.
type UniqueItemsEvidence struct {
	Items []string `json:"items"`
	Count int      `json:"count"`
}

func (UniqueItemsEvidence) Kind() string { return "unique_items" }

// PromoEvidence backs menu.promo_keyword.
type PromoEvidence struct {
	Keyword string `json:"keyword"`
	Source  string `json:"source"`
}

func (PromoEvidence) Kind() string { return "promo" }

// FeatureGapEvidence backs content.feature_gap.
type FeatureGapEvidence struct {
	Gaps      []string `json:"gaps"`
	Platforms []string `json:"platforms,omitempty"`
}

func (FeatureGapEvidence) Kind() string { return "feature_gap" }

// WeekendSpikeEvidence backs events.weekend_density_spike.
type WeekendSpikeEvidence struct {
	Previous int     `json:"previous"`
	Current  int     `json:"current"`
	Delta    int     `json:"delta"`
	Pct      float64 `json:"pct"`
}

func (WeekendSpikeEvidence) Kind() string { return "weekend_spike" }

// DayCount is the number of events on one calendar date.
type DayCount struct {
	Date  string `json:"date"`
	Count int    `json:"count"`
}

// DenseDayEvidence backs events.dense_day.
type DenseDayEvidence struct {
	Days []DayCount `json:"days"`
}

func (DenseDayEvidence) Kind() string { return "dense_day" }

// EventRef points at one event and why it was selected.
type EventRef struct {
	UID     string   `json:"uid"`
	Title   string   `json:"title"`
	Date    string   `json:"date"`
	Reasons []string `json:"reasons"`
}

// HighSignalEvidence backs events.new_high_signal_event.
type HighSignalEvidence struct {
	Events []EventRef `json:"events"`
}

func (HighSignalEvidence) Kind() string { return "high_signal" }

// HostedEvent is one matcher result attributed to a competitor.
type HostedEvent struct {
	EventUID   string           `json:"eventUid"`
	MatchType  model.MatchType  `json:"matchType"`
	Confidence model.Confidence `json:"confidence"`
	Score      float64          `json:"score"`
}

// HostingEvidence backs events.competitor_hosting_event.
type HostingEvidence struct {
	Events []HostedEvent `json:"events"`
}

func (HostingEvidence) Kind() string { return "hosting" }

// CadenceEvidence backs events.competitor_event_cadence_up.
type CadenceEvidence struct {
	Previous int `json:"previous"`
	Current  int `json:"current"`
	Delta    int `json:"delta"`
}

func (CadenceEvidence) Kind() string { return "cadence" }

// TrafficOpportunityEvidence backs correlation.event_traffic_opportunity.
type TrafficOpportunityEvidence struct {
	Month          string  `json:"month"`
	PrevMonth      string  `json:"prevMonth"`
	Traffic        float64 `json:"traffic"`
	PrevTraffic    float64 `json:"prevTraffic"`
	Growth         float64 `json:"growth"`
	UpcomingEvents int     `json:"upcomingEvents"`
}

func (TrafficOpportunityEvidence) Kind() string { return "traffic_opportunity" }

// AuthorityRiskEvidence backs correlation.authority_risk.
type AuthorityRiskEvidence struct {
	ReferringDomainsPrev int                  `json:"referringDomainsPrev"`
	ReferringDomains     int                  `json:"referringDomains"`
	Traffic              []model.TrafficPoint `json:"traffic"`
}

func (AuthorityRiskEvidence) Kind() string { return "authority_risk" }

// MomentumEvidence backs correlation.competitor_momentum.
type MomentumEvidence struct {
	KeywordsPrev int `json:"keywordsPrev"`
	Keywords     int `json:"keywords"`
	Gain         int `json:"gain"`
	ReviewCount  int `json:"reviewCount"`
}

func (MomentumEvidence) Kind() string { return "momentum" }

// BaselineEvidence backs baseline_snapshot.
type BaselineEvidence struct {
	Providers []model.Provider `json:"providers"`
}

func (BaselineEvidence) Kind() string { return "baseline" }

var evidenceKinds = map[string]func() Evidence{
	"rating":              func() Evidence { return &RatingEvidence{} },
	"review_count":        func() Evidence { return &ReviewCountEvidence{} },
	"hours":               func() Evidence { return &HoursEvidence{} },
	"price":               func() Evidence { return &PriceEvidence{} },
	"category_gap":        func() Evidence { return &CategoryGapEvidence{} },
	"unique_items":        func() Evidence { return &UniqueItemsEvidence{} },
	"promo":               func() Evidence { return &PromoEvidence{} },
	"feature_gap":         func() Evidence { return &FeatureGapEvidence{} },
	"weekend_spike":       func() Evidence { return &WeekendSpikeEvidence{} },
	"dense_day":           func() Evidence { return &DenseDayEvidence{} },
	"high_signal":         func() Evidence { return &HighSignalEvidence{} },
	"hosting":             func() Evidence { return &HostingEvidence{} },
	"cadence":             func() Evidence { return &CadenceEvidence{} },
	"traffic_opportunity": func() Evidence { return &TrafficOpportunityEvidence{} },
	"authority_risk":      func() Evidence { return &AuthorityRiskEvidence{} },
	"momentum":            func() Evidence { return &MomentumEvidence{} },
	"baseline":            func() Evidence { return &BaselineEvidence{} },
}

type evidenceEnvelope struct {
	Kind string          `json:"kind"`
	Data json.RawMessage `json:"data"`
}

// EncodeEvidence serializes e with its kind discriminator.
func EncodeEvidence(e Evidence) (json.RawMessage, error) {
	if e == nil {
		return json.RawMessage("null"), nil
	}
	data, err := json.Marshal(e)
	if err != nil {
		return nil, fmt.Errorf("marshal evidence: %w", err)
	}
	out, err := json.Marshal(evidenceEnvelope{Kind: e.Kind(), Data: data})
	if err != nil {
		return nil, fmt.Errorf("marshal evidence envelope: %w", err)
	}
	return out, nil
}

// DecodeEvidence is the inverse of EncodeEvidence. The returned value is a
// pointer to the concrete evidence struct.
func DecodeEvidence(raw json.RawMessage) (Evidence, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return nil, nil
	}
	var env evidenceEnvelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, fmt.Errorf("unmarshal evidence envelope: %w", err)
	}
	newEvidence, ok := evidenceKinds[env.Kind]
	if !ok {
		return nil, fmt.Errorf("unknown evidence kind %q", env.Kind)
	}
	e := newEvidence()
	if err := json.Unmarshal(env.Data, e); err != nil {
		return nil, fmt.Errorf("unmarshal %s evidence: %w", env.Kind, err)
	}
	return e, nil
}

// ToRecord converts an insight into a storable record for the given location
// and date. Scoring fields are left for the caller.
func ToRecord(locationID int64, dateKey string, in Insight) (model.InsightRecord, error) {
	evidence, err := EncodeEvidence(in.Evidence)
	if err != nil {
		return model.InsightRecord{}, err
	}
	recs := in.Recommendations
	if recs == nil {
		recs = []string{}
	}
	return model.InsightRecord{
		LocationID:      locationID,
		CompetitorID:    in.CompetitorID,
		DateKey:         dateKey,
		InsightType:     in.Type,
		Title:           in.Title,
		Summary:         in.Summary,
		Confidence:      in.Confidence,
		Severity:        in.Severity,
		Evidence:        evidence,
		Recommendations: recs,
		Status:          model.StatusNew,
	}, nil
}

// Sort orders insights by type, location-level first, then competitor ID.
func Sort(items []Insight) {
	sort.SliceStable(items, func(i, j int) bool {
		if items[i].Type != items[j].Type {
			return items[i].Type < items[j].Type
		}
		return competitorOrder(items[i].CompetitorID) < competitorOrder(items[j].CompetitorID)
	})
}

func competitorOrder(id *int64) int64 {
	if id == nil {
		return -1
	}
	return *id
}
