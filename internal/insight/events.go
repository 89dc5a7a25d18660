package insight

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"rivalwatch/internal/diff"
	"rivalwatch/internal/model"
)

func eventsModule(in Inputs, t Thresholds) []Insight {
	var out []Insight
	if in.Events != nil {
		if in.EventsPrev != nil {
			if it, ok := weekendSpikeInsight(*in.EventsPrev, *in.Events, t); ok {
				out = append(out, it)
			}
			if it, ok := highSignalInsight(*in.EventsPrev, *in.Events, t); ok {
				out = append(out, it)
			}
		}
		if it, ok := denseDayInsight(*in.Events, t); ok {
			out = append(out, it)
		}
	}
	out = append(out, hostingInsights(in)...)
	if in.EventsPrev != nil {
		out = append(out, cadenceInsights(in, t)...)
	}
	return out
}

// eventDate is the YYYY-MM-DD of an event's structured start, or "".
func eventDate(e model.NormalizedEvent) string {
	if len(e.StartDatetime) >= 10 {
		return e.StartDatetime[:10]
	}
	return ""
}

func isWeekend(date string) bool {
	d, err := time.Parse(model.DateKeyLayout, date)
	if err != nil {
		return false
	}
	wd := d.Weekday()
	return wd == time.Saturday || wd == time.Sunday
}

// WeekendCount counts events starting on a Saturday or Sunday.
func WeekendCount(s model.EventsSnapshot) int {
	n := 0
	for _, e := range s.Events {
		if isWeekend(eventDate(e)) {
			n++
		}
	}
	return n
}

func weekendSpikeInsight(prev, cur model.EventsSnapshot, t Thresholds) (Insight, bool) {
	p, c := WeekendCount(prev), WeekendCount(cur)
	delta := c - p
	if delta < t.WeekendSpikeDelta {
		return Insight{}, false
	}
	pct := 1.0
	if p > 0 {
		pct = round4(float64(delta) / float64(p))
	}
	if pct < t.WeekendSpikePct {
		return Insight{}, false
	}
	severity := model.SeverityInfo
	if pct >= t.WeekendSpikeWarnPct {
		severity = model.SeverityWarning
	}
	return Insight{
		Type:       TypeWeekendDensitySpike,
		Title:      fmt.Sprintf("Weekend events up by %d", delta),
		Summary:    fmt.Sprintf("%d weekend events nearby, up from %d (%.0f%%).", c, p, pct*100),
		Confidence: model.ConfidenceHigh,
		Severity:   severity,
		Evidence:   WeekendSpikeEvidence{Previous: p, Current: c, Delta: delta, Pct: pct},
		Recommendations: []string{
			"Plan weekend staffing and inventory for higher foot traffic.",
			"Promote a pre- or post-event offer.",
		},
	}, true
}

func denseDayInsight(cur model.EventsSnapshot, t Thresholds) (Insight, bool) {
	counts := map[string]int{}
	for _, e := range cur.Events {
		if d := eventDate(e); d != "" {
			counts[d]++
		}
	}
	var days []DayCount
	severity := model.SeverityInfo
	for _, date := range sortedKeys(counts) {
		n := counts[date]
		if n < t.DenseDayCount {
			continue
		}
		days = append(days, DayCount{Date: date, Count: n})
		if n >= t.DenseDayWarnCount {
			severity = model.SeverityWarning
		}
	}
	if len(days) == 0 {
		return Insight{}, false
	}
	dates := make([]string, len(days))
	for i, d := range days {
		dates[i] = fmt.Sprintf("%s (%d)", d.Date, d.Count)
	}
	return Insight{
		Type:            TypeDenseDay,
		Title:           fmt.Sprintf("%d high-density event day(s) ahead", len(days)),
		Summary:         fmt.Sprintf("Busy dates: %s.", strings.Join(dates, ", ")),
		Confidence:      model.ConfidenceHigh,
		Severity:        severity,
		Evidence:        DenseDayEvidence{Days: days},
		Recommendations: []string{"Staff up and consider extended hours on these dates."},
	}, true
}

func highSignalInsight(prev, cur model.EventsSnapshot, t Thresholds) (Insight, bool) {
	known := map[string]bool{}
	for _, e := range prev.Events {
		known[e.UID] = true
	}
	var refs []EventRef
	for _, e := range cur.Events {
		if known[e.UID] {
			continue
		}
		var reasons []string
		title := strings.ToLower(e.Title)
		for _, kw := range t.HighSignalKeywords {
			if strings.Contains(title, strings.ToLower(kw)) {
				reasons = append(reasons, "keyword:"+strings.ToLower(kw))
				break
			}
		}
		if n := ticketSources(e); n >= t.HighSignalTicketSources {
			reasons = append(reasons, fmt.Sprintf("ticket_sources:%d", n))
		}
		if len(reasons) == 0 {
			continue
		}
		refs = append(refs, EventRef{UID: e.UID, Title: e.Title, Date: eventDate(e), Reasons: reasons})
	}
	if len(refs) == 0 {
		return Insight{}, false
	}
	titles := make([]string, len(refs))
	for i, r := range refs {
		titles[i] = r.Title
	}
	return Insight{
		Type:            TypeNewHighSignalEvent,
		Title:           fmt.Sprintf("%d notable new event(s) nearby", len(refs)),
		Summary:         fmt.Sprintf("New since the last capture: %s.", strings.Join(titles, "; ")),
		Confidence:      model.ConfidenceMedium,
		Severity:        model.SeverityInfo,
		Evidence:        HighSignalEvidence{Events: refs},
		Recommendations: []string{"Consider a themed special or extended hours around these events."},
	}, true
}

// ticketSources counts distinct ticket providers, by source name or, when a
// link has no source, by link domain.
func ticketSources(e model.NormalizedEvent) int {
	seen := map[string]bool{}
	for _, t := range e.TicketsAndInfo {
		key := diff.Canonical(t.Source)
		if key == "" {
			key = diff.Domain(t.Link)
		}
		if key != "" {
			seen[key] = true
		}
	}
	return len(seen)
}

// hosting reports whether a match is strong enough to attribute the event to
// the competitor.
func hosting(m model.EventMatchRecord) bool {
	return m.Confidence == model.ConfidenceHigh ||
		(m.Confidence == model.ConfidenceLow && m.MatchType == model.MatchURLDomain)
}

func hostingInsights(in Inputs) []Insight {
	byCompetitor := map[int64][]HostedEvent{}
	for _, m := range in.Matches {
		if !hosting(m) {
			continue
		}
		byCompetitor[m.CompetitorID] = append(byCompetitor[m.CompetitorID], HostedEvent{
			EventUID:   m.EventUID,
			MatchType:  m.MatchType,
			Confidence: m.Confidence,
			Score:      m.Evidence.Score,
		})
	}

	names := competitorNames(in)
	var out []Insight
	for _, id := range sortedKeys(byCompetitor) {
		events := byCompetitor[id]
		sort.Slice(events, func(i, j int) bool { return events[i].EventUID < events[j].EventUID })
		confidence := model.ConfidenceLow
		for _, e := range events {
			if e.Confidence == model.ConfidenceHigh {
				confidence = model.ConfidenceHigh
				break
			}
		}
		cid := id
		name := competitorName(names, id)
		out = append(out, Insight{
			Type:            TypeCompetitorHostingEvent,
			CompetitorID:    &cid,
			Title:           fmt.Sprintf("%s is hosting %d event(s)", name, len(events)),
			Summary:         fmt.Sprintf("%s appears as the venue or ticket seller for %d upcoming event(s).", name, len(events)),
			Confidence:      confidence,
			Severity:        model.SeverityInfo,
			Evidence:        HostingEvidence{Events: events},
			Recommendations: []string{"Consider counter-programming on the same dates."},
		})
	}
	return out
}

func cadenceInsights(in Inputs, t Thresholds) []Insight {
	cur := countByCompetitor(in.Matches)
	prev := countByCompetitor(in.MatchesPrev)
	names := competitorNames(in)
	fresh := map[int64]bool{}
	for _, c := range in.Competitors {
		fresh[c.Competitor.ID] = c.FirstCapture
	}

	var out []Insight
	for _, id := range sortedKeys(cur) {
		if fresh[id] {
			continue
		}
		delta := cur[id] - prev[id]
		if delta < t.CadenceDelta {
			continue
		}
		cid := id
		name := competitorName(names, id)
		out = append(out, Insight{
			Type:            TypeCompetitorCadenceUp,
			CompetitorID:    &cid,
			Title:           fmt.Sprintf("%s is running more events", name),
			Summary:         fmt.Sprintf("%s is linked to %d events, up from %d in the prior period.", name, cur[id], prev[id]),
			Confidence:      model.ConfidenceMedium,
			Severity:        model.SeverityInfo,
			Evidence:        CadenceEvidence{Previous: prev[id], Current: cur[id], Delta: delta},
			Recommendations: []string{"Review their event calendar for formats worth matching."},
		})
	}
	return out
}

func countByCompetitor(matches []model.EventMatchRecord) map[int64]int {
	out := map[int64]int{}
	for _, m := range matches {
		out[m.CompetitorID]++
	}
	return out
}

func competitorNames(in Inputs) map[int64]string {
	out := map[int64]string{}
	for _, c := range in.Competitors {
		out[c.Competitor.ID] = c.Competitor.Name
	}
	return out
}

func competitorName(names map[int64]string, id int64) string {
	if n := names[id]; n != "" {
		return n
	}
	return fmt.Sprintf("Competitor #%d", id)
}
