package bot

import (
	"fmt"
	"strings"

	"rivalwatch/internal/briefing"
	"rivalwatch/internal/model"
)

const (
	statusActive = "active"
	statusPaused = "paused"
)

// FormatInsight formats a single insight as a Telegram notification message.
func FormatInsight(locationName string, rec model.InsightRecord) string {
	var b strings.Builder
	fmt.Fprintf(&b, "[%s] %s\n\n", locationName, urgencyLabel(rec.Urgency))
	fmt.Fprintf(&b, "#%d %s\n", rec.ID, rec.Title)
	if rec.Summary != "" {
		b.WriteString("\n")
		b.WriteString(rec.Summary)
		b.WriteString("\n")
	}
	if len(rec.Recommendations) > 0 {
		b.WriteString("\nWhat to do:\n")
		for _, r := range rec.Recommendations {
			fmt.Fprintf(&b, "- %s\n", r)
		}
	}
	fmt.Fprintf(&b, "\nscore %d, %s confidence, %s", rec.RelevanceScore, rec.Confidence, rec.InsightType)
	return b.String()
}

// FormatBriefing formats a day's briefing grouped by urgency. Muted
// insights are listed last.
func FormatBriefing(br *briefing.Briefing) string {
	if br.Empty() {
		return fmt.Sprintf("No insights for %s on %s.", br.LocationName, br.DateKey)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Briefing for %s, %s\n", br.LocationName, br.DateKey)
	for _, u := range []model.Severity{model.SeverityCritical, model.SeverityWarning, model.SeverityInfo} {
		recs := br.ByUrgency(u)
		if len(recs) == 0 {
			continue
		}
		fmt.Fprintf(&b, "\n%s:\n", urgencyLabel(u))
		for _, r := range recs {
			fmt.Fprintf(&b, "  #%d %s (%d)\n", r.ID, r.Title, r.RelevanceScore)
		}
	}
	if len(br.Suppressed) > 0 {
		b.WriteString("\nMuted:\n")
		for _, r := range br.Suppressed {
			fmt.Fprintf(&b, "  #%d %s (%d, muted)\n", r.ID, r.Title, r.RelevanceScore)
		}
	}
	if br.Dismissed > 0 {
		fmt.Fprintf(&b, "\n%d dismissed hidden.\n", br.Dismissed)
	}
	b.WriteString("\nUse /useful <id> or /dismiss <id> to tune what you see.")
	return b.String()
}

// FormatLocationList formats the locations of a chat for display.
func FormatLocationList(locs []model.Location, competitorCounts map[int64]int) string {
	if len(locs) == 0 {
		return "You have no locations yet. Use /addlocation <name> | <address> | <website> to add one."
	}
	var b strings.Builder
	b.WriteString("Your locations:\n")
	for _, l := range locs {
		fmt.Fprintf(&b, "\n#%d %s\n", l.ID, l.Name)
		if l.Address != "" {
			fmt.Fprintf(&b, "   %s\n", l.Address)
		}
		fmt.Fprintf(&b, "   %d competitors\n", competitorCounts[l.ID])
	}
	return b.String()
}

// FormatCompetitorList formats the competitors tracked for a location.
func FormatCompetitorList(loc *model.Location, comps []model.Competitor) string {
	if len(comps) == 0 {
		return fmt.Sprintf("No competitors for #%d \"%s\".\nUse /addcompetitor %d <name> | <address> | <website> to add one.", loc.ID, loc.Name, loc.ID)
	}
	var b strings.Builder
	fmt.Fprintf(&b, "Competitors of #%d \"%s\":\n", loc.ID, loc.Name)
	for _, c := range comps {
		status := statusActive
		if !c.IsActive {
			status = statusPaused
		}
		fmt.Fprintf(&b, "\nC%d %s [%s]\n", c.ID, c.Name, status)
		if c.Address != "" {
			fmt.Fprintf(&b, "   %s\n", c.Address)
		}
		if c.Website != "" {
			fmt.Fprintf(&b, "   %s\n", c.Website)
		}
	}
	return b.String()
}

func urgencyLabel(u model.Severity) string {
	switch u {
	case model.SeverityCritical:
		return "Critical"
	case model.SeverityWarning:
		return "Warning"
	default:
		return "Info"
	}
}
