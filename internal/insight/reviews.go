package insight

import (
	"fmt"
	"math"

	"rivalwatch/internal/diff"
	"rivalwatch/internal/model"
)

// entity is the subject of a per-entity rule: the location itself
// (competitorID nil) or one competitor.
type entity struct {
	competitorID *int64
	name         string
	snaps        EntitySnapshots
}

func entities(in Inputs) []entity {
	out := []entity{{name: "Your location", snaps: in.Location}}
	for _, c := range in.Competitors {
		id := c.Competitor.ID
		out = append(out, entity{competitorID: &id, name: c.Competitor.Name, snaps: c.EntitySnapshots})
	}
	return out
}

func baselineModule(in Inputs, _ Thresholds) []Insight {
	var out []Insight
	for _, e := range entities(in) {
		if !e.snaps.FirstCapture {
			continue
		}
		providers := e.snaps.providers()
		if len(providers) == 0 {
			continue
		}
		out = append(out, Insight{
			Type:         TypeBaselineSnapshot,
			CompetitorID: e.competitorID,
			Title:        fmt.Sprintf("Baseline captured for %s", e.name),
			Summary:      fmt.Sprintf("First snapshot recorded for %s. Changes will be reported from the next capture.", e.name),
			Confidence:   model.ConfidenceHigh,
			Severity:     model.SeverityInfo,
			Evidence:     BaselineEvidence{Providers: providers},
		})
	}
	return out
}

func reviewsModule(in Inputs, t Thresholds) []Insight {
	var out []Insight
	for _, e := range entities(in) {
		if e.snaps.FirstCapture || e.snaps.Profile == nil {
			continue
		}
		cur := *e.snaps.Profile
		if prev := e.snaps.ProfilePrev; prev != nil {
			d := diff.Profile(*prev, cur)
			if it, ok := ratingInsight(e, d, "daily", TypeRatingChange, t.RatingDeltaDaily); ok {
				out = append(out, it)
			}
			if it, ok := reviewCountInsight(e, d, "daily", TypeReviewVelocity, t.ReviewDeltaDaily); ok {
				out = append(out, it)
			}
			if d.HoursChanged {
				out = append(out, Insight{
					Type:            TypeHoursChanged,
					CompetitorID:    e.competitorID,
					Title:           fmt.Sprintf("%s changed opening hours", e.name),
					Summary:         fmt.Sprintf("The published opening hours for %s differ from yesterday.", e.name),
					Confidence:      model.ConfidenceHigh,
					Severity:        model.SeverityInfo,
					Evidence:        HoursEvidence{Previous: d.HoursPrev, Current: d.HoursCurr},
					Recommendations: []string{"Compare the new hours with yours and check for uncovered time slots."},
				})
			}
		}
		if week := e.snaps.ProfileWeek; week != nil {
			d := diff.Profile(*week, cur)
			if it, ok := ratingInsight(e, d, "weekly", TypeRatingChangeWeekly, t.RatingDeltaWeekly); ok {
				out = append(out, it)
			}
			if it, ok := reviewCountInsight(e, d, "weekly", TypeReviewVelocityWeekly, t.ReviewDeltaWeekly); ok {
				out = append(out, it)
			}
		}
	}
	return out
}

func ratingInsight(e entity, d diff.ProfileDiff, window, typ string, threshold float64) (Insight, bool) {
	if d.RatingDelta == nil || math.Abs(*d.RatingDelta) < threshold {
		return Insight{}, false
	}
	delta := *d.RatingDelta
	severity := model.SeverityInfo
	direction := "rose"
	recs := []string{"Review recent feedback to see what drove the change."}
	if delta < 0 {
		severity = model.SeverityWarning
		direction = "dropped"
		recs = []string{"Read the latest low-star reviews and respond to recurring complaints."}
	}
	return Insight{
		Type:         typ,
		CompetitorID: e.competitorID,
		Title:        fmt.Sprintf("%s rating %s by %.2f", e.name, direction, math.Abs(delta)),
		Summary: fmt.Sprintf("%s rating moved from %.2f to %.2f (%s).",
			e.name, *d.RatingPrev, *d.RatingCurr, window),
		Confidence: model.ConfidenceHigh,
		Severity:   severity,
		Evidence: RatingEvidence{
			Window:    window,
			Previous:  *d.RatingPrev,
			Current:   *d.RatingCurr,
			Delta:     delta,
			Threshold: threshold,
		},
		Recommendations: recs,
	}, true
}

func reviewCountInsight(e entity, d diff.ProfileDiff, window, typ string, threshold int) (Insight, bool) {
	if d.ReviewCountDelta == nil {
		return Insight{}, false
	}
	delta := *d.ReviewCountDelta
	if abs(delta) < threshold {
		return Insight{}, false
	}
	return Insight{
		Type:         typ,
		CompetitorID: e.competitorID,
		Title:        fmt.Sprintf("%s review count changed by %+d", e.name, delta),
		Summary: fmt.Sprintf("%s went from %d to %d reviews (%s).",
			e.name, *d.ReviewCountPrev, *d.ReviewCountCurr, window),
		Confidence: model.ConfidenceHigh,
		Severity:   model.SeverityInfo,
		Evidence: ReviewCountEvidence{
			Window:    window,
			Previous:  *d.ReviewCountPrev,
			Current:   *d.ReviewCountCurr,
			Delta:     delta,
			Threshold: threshold,
		},
		Recommendations: []string{"Check whether a promotion or incident is driving review activity."},
	}, true
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}

// round4 rounds ratios compared against thresholds so boundary cases do not
// depend on float noise.
func round4(x float64) float64 {
	return math.Round(x*1e4) / 1e4
}
