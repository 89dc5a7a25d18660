package insight

// Thresholds holds every tunable constant used by the rule modules. Zero
// values in an override are replaced by the defaults in Merge.
type Thresholds struct {
	RatingDeltaDaily        float64 `yaml:"rating_delta_daily"`
	RatingDeltaWeekly       float64 `yaml:"rating_delta_weekly"`
	ReviewDeltaDaily        int     `yaml:"review_delta_daily"`
	ReviewDeltaWeekly       int     `yaml:"review_delta_weekly"`
	DineInPricePct          float64 `yaml:"dine_in_price_pct"`
	DineInPriceWarnPct      float64 `yaml:"dine_in_price_warn_pct"`
	CateringPricePct        float64 `yaml:"catering_price_pct"`
	CateringPriceWarnPct    float64 `yaml:"catering_price_warn_pct"`
	UniqueItemsMin          int     `yaml:"unique_items_min"`
	FeatureGapWarn          int     `yaml:"feature_gap_warn"`
	WeekendSpikeDelta       int     `yaml:"weekend_spike_delta"`
	WeekendSpikePct         float64 `yaml:"weekend_spike_pct"`
	WeekendSpikeWarnPct     float64 `yaml:"weekend_spike_warn_pct"`
	DenseDayCount           int     `yaml:"dense_day_count"`
	DenseDayWarnCount       int     `yaml:"dense_day_warn_count"`
	HighSignalTicketSources int     `yaml:"high_signal_ticket_sources"`
	CadenceDelta            int     `yaml:"cadence_delta"`
	TrafficGrowthPct        float64 `yaml:"traffic_growth_pct"`
	TrafficDeclinePoints    int     `yaml:"traffic_decline_points"`
	KeywordGain             int     `yaml:"keyword_gain"`
	MomentumReviewCount     int     `yaml:"momentum_review_count"`

	PromoKeywords      []string `yaml:"promo_keywords"`
	HighSignalKeywords []string `yaml:"high_signal_keywords"`
}

// DefaultThresholds returns the stock rule constants.
func DefaultThresholds() Thresholds {
	return Thresholds{
		RatingDeltaDaily:        0.1,
		RatingDeltaWeekly:       0.2,
		ReviewDeltaDaily:        2,
		ReviewDeltaWeekly:       5,
		DineInPricePct:          0.15,
		DineInPriceWarnPct:      0.30,
		CateringPricePct:        0.10,
		CateringPriceWarnPct:    0.25,
		UniqueItemsMin:          3,
		FeatureGapWarn:          2,
		WeekendSpikeDelta:       5,
		WeekendSpikePct:         0.3,
		WeekendSpikeWarnPct:     0.5,
		DenseDayCount:           8,
		DenseDayWarnCount:       12,
		HighSignalTicketSources: 2,
		CadenceDelta:            2,
		TrafficGrowthPct:        0.05,
		TrafficDeclinePoints:    3,
		KeywordGain:             10,
		MomentumReviewCount:     50,
		PromoKeywords: []string{
			"happy hour", "prix fixe", "bottomless", "all you can eat", "kids eat free",
			"half off", "half price", "bogo", "buy one get one", "tasting menu", "early bird",
		},
		HighSignalKeywords: []string{
			"festival", "concert", "marathon", "parade", "fair", "championship", "tournament",
			"game day", "expo", "convention", "fireworks", "live music", "playoff",
		},
	}
}

// Merge returns t with every zero field replaced by its default.
func (t Thresholds) Merge() Thresholds {
	d := DefaultThresholds()
	setF := func(v *float64, def float64) {
		if *v == 0 {
			*v = def
		}
	}
	setI := func(v *int, def int) {
		if *v == 0 {
			*v = def
		}
	}
	setF(&t.RatingDeltaDaily, d.RatingDeltaDaily)
	setF(&t.RatingDeltaWeekly, d.RatingDeltaWeekly)
	setI(&t.ReviewDeltaDaily, d.ReviewDeltaDaily)
	setI(&t.ReviewDeltaWeekly, d.ReviewDeltaWeekly)
	setF(&t.DineInPricePct, d.DineInPricePct)
	setF(&t.DineInPriceWarnPct, d.DineInPriceWarnPct)
	setF(&t.CateringPricePct, d.CateringPricePct)
	setF(&t.CateringPriceWarnPct, d.CateringPriceWarnPct)
	setI(&t.UniqueItemsMin, d.UniqueItemsMin)
	setI(&t.FeatureGapWarn, d.FeatureGapWarn)
	setI(&t.WeekendSpikeDelta, d.WeekendSpikeDelta)
	setF(&t.WeekendSpikePct, d.WeekendSpikePct)
	setF(&t.WeekendSpikeWarnPct, d.WeekendSpikeWarnPct)
	setI(&t.DenseDayCount, d.DenseDayCount)
	setI(&t.DenseDayWarnCount, d.DenseDayWarnCount)
	setI(&t.HighSignalTicketSources, d.HighSignalTicketSources)
	setI(&t.CadenceDelta, d.CadenceDelta)
	setF(&t.TrafficGrowthPct, d.TrafficGrowthPct)
	setI(&t.TrafficDeclinePoints, d.TrafficDeclinePoints)
	setI(&t.KeywordGain, d.KeywordGain)
	setI(&t.MomentumReviewCount, d.MomentumReviewCount)
	if len(t.PromoKeywords) == 0 {
		t.PromoKeywords = d.PromoKeywords
	}
	if len(t.HighSignalKeywords) == 0 {
		t.HighSignalKeywords = d.HighSignalKeywords
	}
	return t
}
