package diff

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"sort"
	"strings"
	"time"

	"rivalwatch/internal/model"
)

const uidSeparator = "|"

var startLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
}

// CanonicalStart returns s as an RFC3339 UTC timestamp, or "" when s is not
// a structured date.
func CanonicalStart(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	for _, layout := range startLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC().Format(time.RFC3339)
		}
	}
	return ""
}

// EventUID returns a stable 16-hex-char identifier for an event.
//
// With a structured start time the hash covers title, start (as UTC RFC3339
// when it parses), venue name, venue address and the URL without query
// parameters. Without one it falls back to title, displayed dates and URL.
// The two forms carry different version prefixes so they can never collide
// with each other.
func EventUID(e model.NormalizedEvent) string {
	var parts []string
	start := CanonicalStart(e.StartDatetime)
	if start == "" {
		start = strings.TrimSpace(e.StartDatetime)
	}
	if start != "" {
		parts = []string{
			"v1",
			Canonical(e.Title),
			start,
			Canonical(e.Venue.Name),
			Canonical(e.Venue.Address),
			StripQuery(e.URL),
		}
	} else {
		parts = []string{
			"v0",
			Canonical(e.Title),
			Canonical(e.DisplayedDates),
			StripQuery(e.URL),
		}
	}
	sum := sha256.Sum256([]byte(strings.Join(parts, uidSeparator)))
	return hex.EncodeToString(sum[:])[:16]
}

// hashJSON fingerprints v through its JSON encoding. encoding/json sorts map
// keys, so the result is independent of map iteration order.
func hashJSON(v any) string {
	b, err := json.Marshal(v)
	if err != nil {
		return ""
	}
	sum := sha256.Sum256(b)
	return hex.EncodeToString(sum[:])
}

// ProfileHash fingerprints the change-relevant profile fields. Reviews and
// the listing title are excluded.
func ProfileHash(s model.ProfileSnapshot) string {
	return hashJSON(struct {
		Rating      *float64          `json:"rating"`
		ReviewCount *int              `json:"reviewCount"`
		PriceLevel  string            `json:"priceLevel"`
		Address     string            `json:"address"`
		Website     string            `json:"website"`
		Phone       string            `json:"phone"`
		Hours       map[string]string `json:"hours"`
	}{
		Rating:      s.Profile.Rating,
		ReviewCount: s.Profile.ReviewCount,
		PriceLevel:  s.Profile.PriceLevel,
		Address:     s.Profile.Address,
		Website:     s.Profile.Website,
		Phone:       s.Profile.Phone,
		Hours:       s.Hours,
	})
}

// EventsHash fingerprints an events snapshot by its sorted event UIDs and
// date histogram.
func EventsHash(s model.EventsSnapshot) string {
	uids := make([]string, 0, len(s.Events))
	for _, e := range s.Events {
		uid := e.UID
		if uid == "" {
			uid = EventUID(e)
		}
		uids = append(uids, uid)
	}
	sort.Strings(uids)
	return hashJSON(struct {
		UIDs   []string       `json:"uids"`
		ByDate map[string]int `json:"byDate"`
	}{UIDs: uids, ByDate: s.Summary.ByDate})
}

// MenuHash fingerprints a menu by its sorted category and item names and
// prices. Parse metadata is excluded.
func MenuHash(s model.MenuSnapshot) string {
	lines := make([]string, 0, s.ParseMeta.ItemsTotal)
	for _, c := range s.Categories {
		for _, it := range c.Items {
			price := ""
			if it.PriceValue != nil {
				price = formatCents(*it.PriceValue)
			}
			lines = append(lines, strings.Join([]string{string(c.MenuType), Canonical(c.Name), Canonical(it.Name), price}, uidSeparator))
		}
	}
	sort.Strings(lines)
	return hashJSON(lines)
}

// ContentHash fingerprints detected site features.
func ContentHash(s model.SiteContentSnapshot) string {
	d := s.Detected
	platforms := append([]string(nil), d.DeliveryPlatforms...)
	sort.Strings(platforms)
	d.DeliveryPlatforms = platforms
	return hashJSON(d)
}

// SEOHash fingerprints search-visibility metrics.
func SEOHash(s model.SEOSnapshot) string {
	return hashJSON(struct {
		Traffic          []model.TrafficPoint `json:"traffic"`
		ReferringDomains *int                 `json:"referringDomains"`
		RankedKeywords   *int                 `json:"rankedKeywords"`
	}{s.TrafficHistory, s.ReferringDomains, s.RankedKeywords})
}
