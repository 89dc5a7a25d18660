package normalize

import (
	"sort"
	"strconv"
	"strings"

	"rivalwatch/internal/model"
)

// Menu normalizes one scraped menu page.
func Menu(raw []byte) model.MenuSnapshot {
	o := decode(raw)
	snap := model.MenuSnapshot{
		MenuURL:    strings.TrimSpace(o.str("menuUrl", "menu_url", "url")),
		Currency:   strings.ToUpper(o.str("currency")),
		Categories: []model.MenuCategory{},
	}

	for _, c := range o.objects("categories", "sections") {
		name := CleanText(c.str("name", "title"))
		cat := model.MenuCategory{
			Name:     name,
			MenuType: menuType(c.str("menuType", "menu_type"), name),
			Items:    []model.MenuItem{},
		}
		for _, it := range c.objects("items") {
			item, ok := menuItem(it)
			if ok {
				cat.Items = append(cat.Items, item)
			}
		}
		if cat.Name == "" && len(cat.Items) == 0 {
			continue
		}
		snap.Categories = append(snap.Categories, cat)
	}

	meta := o.obj("parseMeta", "parse_meta")
	snap.ParseMeta = model.ParseMeta{
		Confidence: meta.str("confidence"),
		Notes:      meta.strs("notes"),
		Sources:    meta.strs("sources"),
	}
	if len(snap.ParseMeta.Sources) == 0 && snap.MenuURL != "" {
		snap.ParseMeta.Sources = []string{snap.MenuURL}
	}
	snap.ParseMeta.ItemsTotal = countItems(snap.Categories)
	return snap
}

func menuItem(o object) (model.MenuItem, bool) {
	name := CleanText(o.str("name", "title"))
	if name == "" {
		return model.MenuItem{}, false
	}
	item := model.MenuItem{
		Name:        name,
		Description: CleanText(o.str("description", "desc")),
	}

	switch v := o["price"].(type) {
	case float64:
		item.PriceValue = Money(v)
		if item.PriceValue != nil {
			item.Price = strconv.FormatFloat(*item.PriceValue, 'f', 2, 64)
		}
	case string:
		item.Price = CleanText(v)
		item.PriceValue = ParsePrice(v)
	}
	if pv := o.num("priceValue", "price_value"); pv != nil {
		item.PriceValue = Money(*pv)
	}

	for _, tag := range o.strs("tags") {
		if t := strings.ToLower(CleanText(tag)); t != "" {
			item.Tags = append(item.Tags, t)
		}
	}
	return item, true
}

// menuType honours an explicit type and otherwise infers one from the
// category name.
func menuType(explicit, categoryName string) model.MenuType {
	switch t := model.MenuType(strings.ToLower(strings.TrimSpace(explicit))); t {
	case model.MenuDineIn, model.MenuCatering, model.MenuHappyHour, model.MenuKids, model.MenuDrinks, model.MenuOther:
		return t
	}
	name := strings.ToLower(categoryName)
	switch {
	case strings.Contains(name, "cater"):
		return model.MenuCatering
	case strings.Contains(name, "happy hour"):
		return model.MenuHappyHour
	case strings.Contains(name, "kid") || strings.Contains(name, "children"):
		return model.MenuKids
	case containsAny(name, "drink", "cocktail", "wine", "beer", "beverage"):
		return model.MenuDrinks
	}
	return model.MenuDineIn
}

func containsAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

func countItems(cats []model.MenuCategory) int {
	n := 0
	for _, c := range cats {
		n += len(c.Items)
	}
	return n
}

// richness counts how many optional fields an item carries.
func richness(it model.MenuItem) int {
	n := 0
	if it.PriceValue != nil {
		n++
	}
	if it.Description != "" {
		n++
	}
	if len(it.Tags) > 0 {
		n++
	}
	return n
}

var confidenceRank = map[string]int{"low": 0, "medium": 1, "high": 2}

// MergeMenus combines several scraped pages of one entity's menu.
//
// Categories are keyed by menu type and normalized name, items by normalized
// name. On collision the record already kept is replaced only when the
// incoming one is strictly richer. Pages are ordered by URL before merging,
// so the result does not depend on the order pages were fetched in.
func MergeMenus(pages ...model.MenuSnapshot) model.MenuSnapshot {
	sorted := append([]model.MenuSnapshot(nil), pages...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return pageKey(sorted[i]) < pageKey(sorted[j])
	})

	out := model.MenuSnapshot{Categories: []model.MenuCategory{}}
	catIndex := map[string]int{}
	itemIndex := map[string]map[string]int{}
	sources := map[string]bool{}
	notes := map[string]bool{}
	confidence := ""

	for _, page := range sorted {
		if out.MenuURL == "" {
			out.MenuURL = page.MenuURL
		}
		if out.Currency == "" {
			out.Currency = page.Currency
		}
		for _, s := range page.ParseMeta.Sources {
			sources[s] = true
		}
		if page.MenuURL != "" {
			sources[page.MenuURL] = true
		}
		for _, n := range page.ParseMeta.Notes {
			notes[n] = true
		}
		if c := page.ParseMeta.Confidence; c != "" {
			if confidence == "" || confidenceRank[c] < confidenceRank[confidence] {
				confidence = c
			}
		}

		for _, cat := range page.Categories {
			ck := string(cat.MenuType) + "|" + NormalizeKey(cat.Name)
			ci, ok := catIndex[ck]
			if !ok {
				ci = len(out.Categories)
				catIndex[ck] = ci
				itemIndex[ck] = map[string]int{}
				out.Categories = append(out.Categories, model.MenuCategory{
					Name:     cat.Name,
					MenuType: cat.MenuType,
					Items:    []model.MenuItem{},
				})
			}
			for _, it := range cat.Items {
				ik := NormalizeKey(it.Name)
				if ik == "" {
					continue
				}
				if ii, seen := itemIndex[ck][ik]; seen {
					if richness(it) > richness(out.Categories[ci].Items[ii]) {
						out.Categories[ci].Items[ii] = it
					}
					continue
				}
				itemIndex[ck][ik] = len(out.Categories[ci].Items)
				out.Categories[ci].Items = append(out.Categories[ci].Items, it)
			}
		}
	}

	out.ParseMeta = model.ParseMeta{
		ItemsTotal: countItems(out.Categories),
		Confidence: confidence,
		Notes:      sortedSet(notes),
		Sources:    sortedSet(sources),
	}
	return out
}

func pageKey(m model.MenuSnapshot) string {
	if m.MenuURL != "" {
		return m.MenuURL
	}
	return strings.Join(m.ParseMeta.Sources, ",")
}

func sortedSet(set map[string]bool) []string {
	if len(set) == 0 {
		return nil
	}
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
