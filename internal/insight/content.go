package insight

import (
	"fmt"
	"strings"

	"rivalwatch/internal/model"
)

type siteFeature struct {
	name string
	has  func(model.DetectedFeatures) bool
}

var siteFeatures = []siteFeature{
	{name: "reservations", has: func(d model.DetectedFeatures) bool { return d.Reservation }},
	{name: "online ordering", has: func(d model.DetectedFeatures) bool { return d.OnlineOrdering }},
	{name: "private dining", has: func(d model.DetectedFeatures) bool { return d.PrivateDining }},
	{name: "catering", has: func(d model.DetectedFeatures) bool { return d.Catering }},
	{name: "happy hour", has: func(d model.DetectedFeatures) bool { return d.HappyHour }},
	{name: "delivery platforms", has: func(d model.DetectedFeatures) bool { return len(d.DeliveryPlatforms) > 0 }},
}

func contentModule(in Inputs, t Thresholds) []Insight {
	own := in.Location.Content
	if own == nil {
		return nil
	}
	var out []Insight
	for _, c := range in.Competitors {
		if c.Content == nil {
			continue
		}
		var gaps []string
		for _, f := range siteFeatures {
			if f.has(c.Content.Detected) && !f.has(own.Detected) {
				gaps = append(gaps, f.name)
			}
		}
		if len(gaps) == 0 {
			continue
		}
		severity := model.SeverityInfo
		if len(gaps) >= t.FeatureGapWarn {
			severity = model.SeverityWarning
		}
		ev := FeatureGapEvidence{Gaps: gaps}
		if len(own.Detected.DeliveryPlatforms) == 0 {
			ev.Platforms = c.Content.Detected.DeliveryPlatforms
		}
		recs := make([]string, 0, len(gaps))
		for _, g := range gaps {
			recs = append(recs, fmt.Sprintf("Evaluate adding %s to your website.", g))
		}
		id := c.Competitor.ID
		out = append(out, Insight{
			Type:            TypeFeatureGap,
			CompetitorID:    &id,
			Title:           fmt.Sprintf("%s offers %s", c.Competitor.Name, strings.Join(gaps, ", ")),
			Summary:         fmt.Sprintf("%s's website advertises %d feature(s) yours does not: %s.", c.Competitor.Name, len(gaps), strings.Join(gaps, ", ")),
			Confidence:      model.ConfidenceMedium,
			Severity:        severity,
			Evidence:        ev,
			Recommendations: recs,
		})
	}
	return out
}
