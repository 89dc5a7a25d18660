// Package scoring ranks insights per consumer and applies operator feedback
// to the learned per-type weights.
package scoring

import (
	"math"
	"sort"
	"time"

	"rivalwatch/internal/model"
)

// Weight bounds and feedback step.
const (
	DefaultWeight  = 1.0
	MinWeight      = 0.1
	MaxWeight      = 2.0
	FeedbackStep   = 0.1
	SuppressWeight = 0.3
)

var severityBase = map[model.Severity]float64{
	model.SeverityCritical: 90,
	model.SeverityWarning:  60,
	model.SeverityInfo:     30,
}

var confidenceMultiplier = map[model.Confidence]float64{
	model.ConfidenceHigh:   1.0,
	model.ConfidenceMedium: 0.8,
	model.ConfidenceLow:    0.5,
}

// Breakdown explains how a score was derived.
type Breakdown struct {
	SeverityBase         float64 `json:"severityBase"`
	ConfidenceMultiplier float64 `json:"confidenceMultiplier"`
	Weight               float64 `json:"weight"`
	Raw                  float64 `json:"raw"`
}

// Result is the relevance of one insight for one consumer.
type Result struct {
	Score      int
	Urgency    model.Severity
	Suppressed bool
	Breakdown  Breakdown
}

// Score computes clamp(0, 100, round(base × multiplier × weight)). Unknown
// severities and confidences contribute zero. A weight of zero or less means
// no preference and is treated as the default.
func Score(sev model.Severity, conf model.Confidence, weight float64) Result {
	if weight <= 0 {
		weight = DefaultWeight
	}
	b := Breakdown{
		SeverityBase:         severityBase[sev],
		ConfidenceMultiplier: confidenceMultiplier[conf],
		Weight:               weight,
	}
	b.Raw = b.SeverityBase * b.ConfidenceMultiplier * b.Weight
	score := int(math.Round(b.Raw))
	score = max(0, min(100, score))
	return Result{
		Score:      score,
		Urgency:    Urgency(score),
		Suppressed: Suppressed(weight),
		Breakdown:  b,
	}
}

// Urgency maps a score to a tier: ≥75 critical, ≥45 warning, else info.
func Urgency(score int) model.Severity {
	switch {
	case score >= 75:
		return model.SeverityCritical
	case score >= 45:
		return model.SeverityWarning
	default:
		return model.SeverityInfo
	}
}

// Suppressed reports whether insights of a type with this weight should be
// de-emphasized.
func Suppressed(weight float64) bool {
	return weight <= SuppressWeight
}

// ClampWeight bounds w to [MinWeight, MaxWeight], rounded to one decimal.
func ClampWeight(w float64) float64 {
	w = math.Round(w*10) / 10
	return max(MinWeight, min(MaxWeight, w))
}

// NewPreference returns the default preference for a consumer and type.
func NewPreference(consumer, insightType string) model.InsightPreference {
	return model.InsightPreference{Consumer: consumer, InsightType: insightType, Weight: DefaultWeight}
}

// ApplyFeedback moves the weight one step up (useful) or down (not useful)
// and bumps the matching counter.
func ApplyFeedback(p model.InsightPreference, useful bool, now time.Time) model.InsightPreference {
	if p.Weight <= 0 {
		p.Weight = DefaultWeight
	}
	if useful {
		p.Weight = ClampWeight(p.Weight + FeedbackStep)
		p.UsefulCount++
	} else {
		p.Weight = ClampWeight(p.Weight - FeedbackStep)
		p.DismissedCount++
	}
	p.UpdatedAt = now
	return p
}

// Apply scores rec with the consumer's weight for its type and fills the
// relevance fields.
func Apply(rec model.InsightRecord, weights map[string]float64) model.InsightRecord {
	w, ok := weights[rec.InsightType]
	if !ok {
		w = DefaultWeight
	}
	r := Score(rec.Severity, rec.Confidence, w)
	rec.RelevanceScore = r.Score
	rec.Urgency = r.Urgency
	rec.Suppressed = r.Suppressed
	return rec
}

// Weights indexes preferences by insight type.
func Weights(prefs []model.InsightPreference) map[string]float64 {
	out := make(map[string]float64, len(prefs))
	for _, p := range prefs {
		out[p.InsightType] = p.Weight
	}
	return out
}

// Rank orders records by relevance score descending, then type, then ID.
// Suppressed records sort after all unsuppressed ones.
func Rank(recs []model.InsightRecord) {
	sort.SliceStable(recs, func(i, j int) bool {
		a, b := recs[i], recs[j]
		if a.Suppressed != b.Suppressed {
			return !a.Suppressed
		}
		if a.RelevanceScore != b.RelevanceScore {
			return a.RelevanceScore > b.RelevanceScore
		}
		if a.InsightType != b.InsightType {
			return a.InsightType < b.InsightType
		}
		return a.ID < b.ID
	})
}
