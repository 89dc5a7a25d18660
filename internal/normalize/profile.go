package normalize

import (
	"strings"

	"rivalwatch/internal/model"
)

var weekdays = []string{"monday", "tuesday", "wednesday", "thursday", "friday", "saturday", "sunday"}

// Profile normalizes a places/listing payload. Both camelCase and the Places
// API snake_case field names are accepted.
func Profile(raw []byte) model.ProfileSnapshot {
	o := decode(raw)
	if p := o.obj("profile"); p != nil {
		// Already-normalized shape: profile fields nested, hours and reviews alongside.
		merged := object{}
		for k, v := range p {
			merged[k] = v
		}
		for _, k := range []string{"hours", "opening_hours", "recentReviews", "reviews"} {
			if v, ok := o[k]; ok {
				merged[k] = v
			}
		}
		o = merged
	}

	snap := model.ProfileSnapshot{
		Profile: model.Profile{
			Title:       CleanText(o.str("title", "name")),
			Rating:      rating(o.num("rating")),
			ReviewCount: nonNegative(o.integer("reviewCount", "user_ratings_total", "reviews_count")),
			PriceLevel:  priceLevel(o),
			Address:     collapse(o.str("address", "formatted_address")),
			Website:     strings.TrimSpace(o.str("website", "site")),
			Phone:       collapse(o.str("phone", "formatted_phone_number", "international_phone_number")),
		},
		Hours:         hours(o),
		RecentReviews: reviews(o),
	}
	return snap
}

func rating(v *float64) *float64 {
	if v == nil || *v < 0 || *v > 5 {
		return nil
	}
	return Money(*v)
}

func nonNegative(v *int) *int {
	if v == nil || *v < 0 {
		return nil
	}
	return v
}

// priceLevel accepts "$$" style strings or the numeric 0-4 Places level.
func priceLevel(o object) string {
	if s := o.str("priceLevel", "price_level", "price"); s != "" {
		if strings.Trim(s, "$") == "" {
			return s
		}
		if n := o.integer("priceLevel", "price_level"); n != nil && *n > 0 && *n <= 4 {
			return strings.Repeat("$", *n)
		}
	}
	return ""
}

func hours(o object) map[string]string {
	out := map[string]string{}
	if h := o.obj("hours"); h != nil {
		for k, v := range h {
			s, ok := v.(string)
			if !ok {
				continue
			}
			if day := strings.ToLower(strings.TrimSpace(k)); day != "" {
				out[day] = collapse(s)
			}
		}
		return out
	}

	lines := o.strs("hours")
	if oh := o.obj("opening_hours", "openingHours"); oh != nil {
		lines = oh.strs("weekday_text", "weekdayText")
	}
	for _, line := range lines {
		day, value, ok := strings.Cut(line, ":")
		if !ok {
			continue
		}
		day = strings.ToLower(strings.TrimSpace(day))
		for _, wd := range weekdays {
			if day == wd {
				out[day] = collapse(value)
			}
		}
	}
	return out
}

func reviews(o object) []model.Review {
	out := []model.Review{}
	for _, r := range o.objects("recentReviews", "reviews") {
		out = append(out, model.Review{
			Author:      collapse(r.str("author", "author_name")),
			Rating:      rating(r.num("rating")),
			Text:        CleanText(r.str("text", "snippet")),
			PublishedAt: r.str("publishedAt", "relative_time_description", "date"),
		})
	}
	return out
}

func collapse(s string) string {
	return strings.TrimSpace(whitespaceRe.ReplaceAllString(s, " "))
}
