package insight

import (
	"cmp"
	"fmt"
	"maps"
	"slices"

	"rivalwatch/internal/model"
)

func correlationModule(in Inputs, t Thresholds) []Insight {
	var out []Insight
	if it, ok := trafficOpportunityInsight(in, t); ok {
		out = append(out, it)
	}
	if it, ok := authorityRiskInsight(in, t); ok {
		out = append(out, it)
	}
	for _, c := range in.Competitors {
		if it, ok := momentumInsight(c, t); ok {
			out = append(out, it)
		}
	}
	return out
}

// upcomingEvents counts events dated on or after dateKey.
func upcomingEvents(s *model.EventsSnapshot, dateKey string) int {
	if s == nil {
		return 0
	}
	n := 0
	for _, e := range s.Events {
		if d := eventDate(e); d != "" && d >= dateKey {
			n++
		}
	}
	return n
}

func trafficOpportunityInsight(in Inputs, t Thresholds) (Insight, bool) {
	seo := in.Location.SEO
	if seo == nil || len(seo.TrafficHistory) < 2 || in.Events == nil {
		return Insight{}, false
	}
	upcoming := upcomingEvents(in.Events, in.DateKey)
	if upcoming == 0 {
		return Insight{}, false
	}
	last := seo.TrafficHistory[len(seo.TrafficHistory)-1]
	prev := seo.TrafficHistory[len(seo.TrafficHistory)-2]
	if prev.Traffic <= 0 {
		return Insight{}, false
	}
	growth := round4((last.Traffic - prev.Traffic) / prev.Traffic)
	if growth < t.TrafficGrowthPct {
		return Insight{}, false
	}
	return Insight{
		Type:  TypeEventTrafficOpportunity,
		Title: fmt.Sprintf("Search traffic up %.0f%% with %d events coming up", growth*100, upcoming),
		Summary: fmt.Sprintf("Organic traffic grew from %.0f (%s) to %.0f (%s) while %d local events are scheduled.",
			prev.Traffic, prev.Month, last.Traffic, last.Month, upcoming),
		Confidence: model.ConfidenceMedium,
		Severity:   model.SeverityInfo,
		Evidence: TrafficOpportunityEvidence{
			Month:          last.Month,
			PrevMonth:      prev.Month,
			Traffic:        last.Traffic,
			PrevTraffic:    prev.Traffic,
			Growth:         growth,
			UpcomingEvents: upcoming,
		},
		Recommendations: []string{"Publish event-day specials on your site while search interest is rising."},
	}, true
}

// decliningTail reports whether the last n points strictly decrease.
func decliningTail(points []model.TrafficPoint, n int) bool {
	if n < 2 || len(points) < n {
		return false
	}
	tail := points[len(points)-n:]
	for i := 1; i < len(tail); i++ {
		if tail[i].Traffic >= tail[i-1].Traffic {
			return false
		}
	}
	return true
}

func authorityRiskInsight(in Inputs, t Thresholds) (Insight, bool) {
	cur, prev := in.Location.SEO, in.Location.SEOPrev
	if cur == nil || prev == nil || cur.ReferringDomains == nil || prev.ReferringDomains == nil {
		return Insight{}, false
	}
	if *cur.ReferringDomains >= *prev.ReferringDomains {
		return Insight{}, false
	}
	if !decliningTail(cur.TrafficHistory, t.TrafficDeclinePoints) {
		return Insight{}, false
	}
	tail := slices.Clone(cur.TrafficHistory[len(cur.TrafficHistory)-t.TrafficDeclinePoints:])
	return Insight{
		Type:  TypeAuthorityRisk,
		Title: "Search authority is slipping",
		Summary: fmt.Sprintf("Referring domains fell from %d to %d and organic traffic declined %d months in a row.",
			*prev.ReferringDomains, *cur.ReferringDomains, t.TrafficDeclinePoints),
		Confidence: model.ConfidenceMedium,
		Severity:   model.SeverityCritical,
		Evidence: AuthorityRiskEvidence{
			ReferringDomainsPrev: *prev.ReferringDomains,
			ReferringDomains:     *cur.ReferringDomains,
			Traffic:              tail,
		},
		Recommendations: []string{
			"Audit lost backlinks and reclaim listings on local directories.",
			"Refresh key landing pages to recover rankings.",
		},
	}, true
}

func momentumInsight(c CompetitorSnapshots, t Thresholds) (Insight, bool) {
	if c.SEO == nil || c.SEOPrev == nil || c.SEO.RankedKeywords == nil || c.SEOPrev.RankedKeywords == nil {
		return Insight{}, false
	}
	if c.Profile == nil || c.Profile.Profile.ReviewCount == nil {
		return Insight{}, false
	}
	gain := *c.SEO.RankedKeywords - *c.SEOPrev.RankedKeywords
	reviews := *c.Profile.Profile.ReviewCount
	if gain < t.KeywordGain || reviews < t.MomentumReviewCount {
		return Insight{}, false
	}
	id := c.Competitor.ID
	return Insight{
		Type:         TypeCompetitorMomentum,
		CompetitorID: &id,
		Title:        fmt.Sprintf("%s is gaining search momentum", c.Competitor.Name),
		Summary: fmt.Sprintf("%s ranks for %d more keywords (%d total) and has %d reviews.",
			c.Competitor.Name, gain, *c.SEO.RankedKeywords, reviews),
		Confidence: model.ConfidenceMedium,
		Severity:   model.SeverityWarning,
		Evidence: MomentumEvidence{
			KeywordsPrev: *c.SEOPrev.RankedKeywords,
			Keywords:     *c.SEO.RankedKeywords,
			Gain:         gain,
			ReviewCount:  reviews,
		},
		Recommendations: []string{"Check which queries they now rank for and cover them on your site."},
	}, true
}

// sortedKeys returns the keys of m in ascending order.
func sortedKeys[K cmp.Ordered, V any](m map[K]V) []K {
	return slices.Sorted(maps.Keys(m))
}
