package diff

import (
	"maps"
	"math"
	"strconv"

	"rivalwatch/internal/model"
)

// ProfileDiff is the field-level difference between two profile snapshots.
// Deltas are nil when either side lacks the value.
type ProfileDiff struct {
	RatingPrev       *float64 `json:"ratingPrev"`
	RatingCurr       *float64 `json:"ratingCurr"`
	RatingDelta      *float64 `json:"ratingDelta"`
	ReviewCountPrev  *int     `json:"reviewCountPrev"`
	ReviewCountCurr  *int     `json:"reviewCountCurr"`
	ReviewCountDelta *int     `json:"reviewCountDelta"`

	PriceLevelChanged bool `json:"priceLevelChanged"`
	AddressChanged    bool `json:"addressChanged"`
	WebsiteChanged    bool `json:"websiteChanged"`
	PhoneChanged      bool `json:"phoneChanged"`

	// HoursChanged compares the whole hours map. It is only set when both
	// sides carry hours, so a provider dropping the field is not a change.
	HoursChanged bool              `json:"hoursChanged"`
	HoursPrev    map[string]string `json:"hoursPrev,omitempty"`
	HoursCurr    map[string]string `json:"hoursCurr,omitempty"`
}

// Profile diffs prev against cur. Weekly comparisons call it again with the
// seven-days-prior snapshot as prev.
func Profile(prev, cur model.ProfileSnapshot) ProfileDiff {
	d := ProfileDiff{
		RatingPrev:      prev.Profile.Rating,
		RatingCurr:      cur.Profile.Rating,
		ReviewCountPrev: prev.Profile.ReviewCount,
		ReviewCountCurr: cur.Profile.ReviewCount,
	}
	if prev.Profile.Rating != nil && cur.Profile.Rating != nil {
		delta := Round2(*cur.Profile.Rating - *prev.Profile.Rating)
		d.RatingDelta = &delta
	}
	if prev.Profile.ReviewCount != nil && cur.Profile.ReviewCount != nil {
		delta := *cur.Profile.ReviewCount - *prev.Profile.ReviewCount
		d.ReviewCountDelta = &delta
	}
	d.PriceLevelChanged = changed(prev.Profile.PriceLevel, cur.Profile.PriceLevel)
	d.AddressChanged = changed(prev.Profile.Address, cur.Profile.Address)
	d.WebsiteChanged = changed(prev.Profile.Website, cur.Profile.Website)
	d.PhoneChanged = changed(prev.Profile.Phone, cur.Profile.Phone)

	if len(prev.Hours) > 0 && len(cur.Hours) > 0 && !maps.Equal(prev.Hours, cur.Hours) {
		d.HoursChanged = true
		d.HoursPrev = prev.Hours
		d.HoursCurr = cur.Hours
	}
	return d
}

// changed reports a difference only when both values are present.
func changed(prev, cur string) bool {
	return prev != "" && cur != "" && prev != cur
}

// Round2 rounds x to two decimals.
func Round2(x float64) float64 {
	return math.Round(x*100) / 100
}

func formatCents(v float64) string {
	return strconv.FormatFloat(Round2(v), 'f', 2, 64)
}
