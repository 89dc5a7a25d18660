package normalize

import (
	"sort"
	"strings"

	"rivalwatch/internal/model"
)

// SEO normalizes a search-visibility payload. History points without a
// month or with a non-finite traffic value are dropped; one point is kept
// per month.
func SEO(raw []byte) model.SEOSnapshot {
	o := decode(raw)
	snap := model.SEOSnapshot{
		Domain:         strings.ToLower(o.str("domain", "target")),
		TrafficHistory: []model.TrafficPoint{},
	}

	byMonth := map[string]float64{}
	for _, p := range o.objects("trafficHistory", "traffic_history", "history") {
		month := p.str("month", "date")
		if len(month) >= 7 {
			month = month[:7]
		} else {
			continue
		}
		traffic := p.num("traffic", "etv", "organic_traffic")
		if traffic == nil {
			continue
		}
		byMonth[month] = *Money(*traffic)
	}
	for month, traffic := range byMonth {
		snap.TrafficHistory = append(snap.TrafficHistory, model.TrafficPoint{Month: month, Traffic: traffic})
	}
	sort.Slice(snap.TrafficHistory, func(i, j int) bool {
		return snap.TrafficHistory[i].Month < snap.TrafficHistory[j].Month
	})

	snap.ReferringDomains = nonNegative(o.integer("referringDomains", "referring_domains"))
	snap.RankedKeywords = nonNegative(o.integer("rankedKeywords", "ranked_keywords", "keywords_count"))
	if snap.RankedKeywords == nil {
		if organic := o.obj("metrics").obj("organic"); organic != nil {
			snap.RankedKeywords = nonNegative(organic.integer("count"))
		}
	}
	return snap
}
