package insight

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"rivalwatch/internal/diff"
	"rivalwatch/internal/model"
)

type priceRule struct {
	typ      string
	menuType model.MenuType
	pct      func(Thresholds) float64
	warnPct  func(Thresholds) float64
}

var priceRules = []priceRule{
	{
		typ:      TypePricePositioning,
		menuType: model.MenuDineIn,
		pct:      func(t Thresholds) float64 { return t.DineInPricePct },
		warnPct:  func(t Thresholds) float64 { return t.DineInPriceWarnPct },
	},
	{
		typ:      TypeCateringPricePositioning,
		menuType: model.MenuCatering,
		pct:      func(t Thresholds) float64 { return t.CateringPricePct },
		warnPct:  func(t Thresholds) float64 { return t.CateringPriceWarnPct },
	},
}

func menuModule(in Inputs, t Thresholds) []Insight {
	own := in.Location.Menu
	if own == nil {
		return nil
	}
	var out []Insight
	for _, c := range in.Competitors {
		if c.Menu == nil {
			continue
		}
		id := c.Competitor.ID
		e := entity{competitorID: &id, name: c.Competitor.Name}
		for _, r := range priceRules {
			if it, ok := priceInsight(e, *own, *c.Menu, r, t); ok {
				out = append(out, it)
			}
		}
		if it, ok := categoryGapInsight(e, *own, *c.Menu); ok {
			out = append(out, it)
		}
		if it, ok := uniqueItemsInsight(e, *own, *c.Menu, t); ok {
			out = append(out, it)
		}
		if it, ok := promoInsight(e, *own, *c.Menu, t); ok {
			out = append(out, it)
		}
	}
	return out
}

// AveragePrice returns the mean priced-item value within one menu type and
// the number of priced items it was computed over.
func AveragePrice(m model.MenuSnapshot, menuType model.MenuType) (float64, int) {
	sum, n := 0.0, 0
	for _, c := range m.Categories {
		if c.MenuType != menuType {
			continue
		}
		for _, it := range c.Items {
			if it.PriceValue == nil {
				continue
			}
			sum += *it.PriceValue
			n++
		}
	}
	if n == 0 {
		return 0, 0
	}
	return diff.Round2(sum / float64(n)), n
}

func priceInsight(e entity, own, comp model.MenuSnapshot, r priceRule, t Thresholds) (Insight, bool) {
	ownAvg, ownN := AveragePrice(own, r.menuType)
	compAvg, compN := AveragePrice(comp, r.menuType)
	if ownN == 0 || compN == 0 || ownAvg <= 0 {
		return Insight{}, false
	}
	delta := diff.Round2(compAvg - ownAvg)
	pct := round4(math.Abs(delta) / ownAvg)
	if pct < r.pct(t) {
		return Insight{}, false
	}

	severity := model.SeverityInfo
	if pct >= r.warnPct(t) {
		severity = model.SeverityWarning
	}
	label := strings.ReplaceAll(string(r.menuType), "_", "-")
	direction := "higher"
	rec := fmt.Sprintf("You are priced below %s on %s items; consider whether there is room to raise prices.", e.name, label)
	if delta < 0 {
		direction = "lower"
		rec = fmt.Sprintf("%s undercuts you on %s items; highlight value or review portion pricing.", e.name, label)
	}
	return Insight{
		Type:         r.typ,
		CompetitorID: e.competitorID,
		Title:        fmt.Sprintf("%s %s prices are %.0f%% %s", e.name, label, pct*100, direction),
		Summary: fmt.Sprintf("Average %s item price: %s $%.2f vs yours $%.2f.",
			label, e.name, compAvg, ownAvg),
		Confidence: model.ConfidenceHigh,
		Severity:   severity,
		Evidence: PriceEvidence{
			MenuType:        r.menuType,
			OwnAvg:          ownAvg,
			CompetitorAvg:   compAvg,
			Diff:            delta,
			PctDiff:         pct,
			OwnItems:        ownN,
			CompetitorItems: compN,
		},
		Recommendations: []string{rec},
	}, true
}

// categoryNames maps normalized category keys to their first display name.
func categoryNames(m model.MenuSnapshot) map[string]string {
	out := map[string]string{}
	for _, c := range m.Categories {
		k := diff.Canonical(c.Name)
		if k == "" {
			continue
		}
		if _, ok := out[k]; !ok {
			out[k] = c.Name
		}
	}
	return out
}

func itemNames(m model.MenuSnapshot) map[string]string {
	out := map[string]string{}
	for _, c := range m.Categories {
		for _, it := range c.Items {
			k := diff.Canonical(it.Name)
			if k == "" {
				continue
			}
			if _, ok := out[k]; !ok {
				out[k] = it.Name
			}
		}
	}
	return out
}

// missing returns the display names of keys in theirs that are absent from
// ours, ordered by key.
func missing(theirs, ours map[string]string) []string {
	keys := make([]string, 0, len(theirs))
	for k := range theirs {
		if _, ok := ours[k]; !ok {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	out := make([]string, len(keys))
	for i, k := range keys {
		out[i] = theirs[k]
	}
	return out
}

func categoryGapInsight(e entity, own, comp model.MenuSnapshot) (Insight, bool) {
	ownCats := categoryNames(own)
	if len(ownCats) == 0 {
		return Insight{}, false
	}
	gaps := missing(categoryNames(comp), ownCats)
	if len(gaps) == 0 {
		return Insight{}, false
	}
	return Insight{
		Type:            TypeCategoryGap,
		CompetitorID:    e.competitorID,
		Title:           fmt.Sprintf("%s offers %d menu categories you don't", e.name, len(gaps)),
		Summary:         fmt.Sprintf("Categories on %s's menu but not yours: %s.", e.name, strings.Join(gaps, ", ")),
		Confidence:      model.ConfidenceMedium,
		Severity:        model.SeverityInfo,
		Evidence:        CategoryGapEvidence{Missing: gaps},
		Recommendations: []string{"Check whether any of these categories fit your concept."},
	}, true
}

func uniqueItemsInsight(e entity, own, comp model.MenuSnapshot, t Thresholds) (Insight, bool) {
	ownItems := itemNames(own)
	if len(ownItems) == 0 {
		return Insight{}, false
	}
	unique := missing(itemNames(comp), ownItems)
	if len(unique) < t.UniqueItemsMin {
		return Insight{}, false
	}
	sample := unique
	if len(sample) > 5 {
		sample = sample[:5]
	}
	return Insight{
		Type:            TypeUniqueItems,
		CompetitorID:    e.competitorID,
		Title:           fmt.Sprintf("%s has %d items not on your menu", e.name, len(unique)),
		Summary:         fmt.Sprintf("Examples: %s.", strings.Join(sample, ", ")),
		Confidence:      model.ConfidenceMedium,
		Severity:        model.SeverityInfo,
		Evidence:        UniqueItemsEvidence{Items: unique, Count: len(unique)},
		Recommendations: []string{"Look for signature dishes worth answering with a special."},
	}, true
}

// menuText is the lowercased text of every category, item name and
// description on a menu.
func menuText(m model.MenuSnapshot) string {
	var b strings.Builder
	for _, c := range m.Categories {
		b.WriteString(strings.ToLower(c.Name))
		b.WriteByte('\n')
		for _, it := range c.Items {
			b.WriteString(strings.ToLower(it.Name))
			b.WriteByte(' ')
			b.WriteString(strings.ToLower(it.Description))
			b.WriteByte('\n')
		}
	}
	return b.String()
}

func promoInsight(e entity, own, comp model.MenuSnapshot, t Thresholds) (Insight, bool) {
	compText := menuText(comp)
	ownText := menuText(own)
	for _, kw := range t.PromoKeywords {
		kw = strings.ToLower(kw)
		if !strings.Contains(compText, kw) || strings.Contains(ownText, kw) {
			continue
		}
		return Insight{
			Type:            TypePromoKeyword,
			CompetitorID:    e.competitorID,
			Title:           fmt.Sprintf("%s is promoting %q", e.name, kw),
			Summary:         fmt.Sprintf("%s's menu mentions %q and yours does not.", e.name, kw),
			Confidence:      model.ConfidenceMedium,
			Severity:        model.SeverityInfo,
			Evidence:        PromoEvidence{Keyword: kw, Source: comp.MenuURL},
			Recommendations: []string{fmt.Sprintf("Consider a %s offer of your own.", kw)},
		}, true
	}
	return Insight{}, false
}
