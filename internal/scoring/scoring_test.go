package scoring

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"rivalwatch/internal/model"
)

func TestScore(t *testing.T) {
	tests := []struct {
		name        string
		sev         model.Severity
		conf        model.Confidence
		weight      float64
		wantScore   int
		wantUrgency model.Severity
		wantSupp    bool
	}{
		{name: "critical high", sev: model.SeverityCritical, conf: model.ConfidenceHigh, weight: 1, wantScore: 90, wantUrgency: model.SeverityCritical},
		{name: "warning medium", sev: model.SeverityWarning, conf: model.ConfidenceMedium, weight: 1, wantScore: 48, wantUrgency: model.SeverityWarning},
		{name: "info low", sev: model.SeverityInfo, conf: model.ConfidenceLow, weight: 1, wantScore: 15, wantUrgency: model.SeverityInfo},
		{name: "no preference uses default weight", sev: model.SeverityInfo, conf: model.ConfidenceHigh, weight: 0, wantScore: 30, wantUrgency: model.SeverityInfo},
		{name: "boosted warning becomes critical", sev: model.SeverityWarning, conf: model.ConfidenceHigh, weight: 1.3, wantScore: 78, wantUrgency: model.SeverityCritical},
		{name: "clamped at 100", sev: model.SeverityCritical, conf: model.ConfidenceHigh, weight: 2, wantScore: 100, wantUrgency: model.SeverityCritical},
		{name: "suppressed at 0.3", sev: model.SeverityCritical, conf: model.ConfidenceHigh, weight: 0.3, wantScore: 27, wantUrgency: model.SeverityInfo, wantSupp: true},
		{name: "unknown severity", sev: "bogus", conf: model.ConfidenceHigh, weight: 1, wantScore: 0, wantUrgency: model.SeverityInfo},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Score(tt.sev, tt.conf, tt.weight)
			if got.Score != tt.wantScore || got.Urgency != tt.wantUrgency || got.Suppressed != tt.wantSupp {
				t.Errorf("Score() = %d/%s/%v, want %d/%s/%v",
					got.Score, got.Urgency, got.Suppressed, tt.wantScore, tt.wantUrgency, tt.wantSupp)
			}
		})
	}
}

func TestScoreBreakdown(t *testing.T) {
	got := Score(model.SeverityWarning, model.ConfidenceLow, 1.5)
	want := Result{
		Score:   45,
		Urgency: model.SeverityWarning,
		Breakdown: Breakdown{
			SeverityBase:         60,
			ConfidenceMultiplier: 0.5,
			Weight:               1.5,
			Raw:                  45,
		},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Score() mismatch (-want +got):\n%s", diff)
	}
}

func TestScoreMonotonic(t *testing.T) {
	severities := []model.Severity{model.SeverityCritical, model.SeverityWarning, model.SeverityInfo}
	confidences := []model.Confidence{model.ConfidenceHigh, model.ConfidenceMedium, model.ConfidenceLow}

	for _, conf := range confidences {
		for i := 1; i < len(severities); i++ {
			hi := Score(severities[i-1], conf, DefaultWeight).Score
			lo := Score(severities[i], conf, DefaultWeight).Score
			if hi <= lo {
				t.Errorf("%s: score(%s)=%d not > score(%s)=%d", conf, severities[i-1], hi, severities[i], lo)
			}
		}
	}

	for w := MinWeight; w <= MaxWeight+1e-9; w += FeedbackStep {
		for _, sev := range severities {
			for i := 1; i < len(confidences); i++ {
				hi := Score(sev, confidences[i-1], w).Score
				lo := Score(sev, confidences[i], w).Score
				if hi < lo {
					t.Errorf("w=%.1f %s: score(%s)=%d < score(%s)=%d", w, sev, confidences[i-1], hi, confidences[i], lo)
				}
			}
		}
	}
}

func TestApplyFeedbackStaysInBounds(t *testing.T) {
	now := time.Date(2026, 10, 17, 9, 0, 0, 0, time.UTC)
	p := NewPreference("chat:1", "menu.promo_keyword")
	for range 30 {
		p = ApplyFeedback(p, true, now)
		if p.Weight < MinWeight || p.Weight > MaxWeight {
			t.Fatalf("weight %v out of bounds", p.Weight)
		}
	}
	if p.Weight != MaxWeight {
		t.Errorf("weight after many useful = %v, want %v", p.Weight, MaxWeight)
	}
	for range 30 {
		p = ApplyFeedback(p, false, now)
		if p.Weight < MinWeight || p.Weight > MaxWeight {
			t.Fatalf("weight %v out of bounds", p.Weight)
		}
	}
	if p.Weight != MinWeight {
		t.Errorf("weight after many dismissals = %v, want %v", p.Weight, MinWeight)
	}
	if p.UsefulCount != 30 || p.DismissedCount != 30 {
		t.Errorf("counts = %d/%d, want 30/30", p.UsefulCount, p.DismissedCount)
	}
	if !p.UpdatedAt.Equal(now) {
		t.Errorf("UpdatedAt = %v, want %v", p.UpdatedAt, now)
	}
}

func TestApplyFeedbackSuppressesAfterSevenDismissals(t *testing.T) {
	p := NewPreference("chat:1", "events.dense_day")
	for i := 0; i < 6; i++ {
		p = ApplyFeedback(p, false, time.Time{})
	}
	if Suppressed(p.Weight) {
		t.Fatalf("weight %v suppressed too early", p.Weight)
	}
	p = ApplyFeedback(p, false, time.Time{})
	if p.Weight != 0.3 || !Suppressed(p.Weight) {
		t.Errorf("weight = %v suppressed = %v, want 0.3 true", p.Weight, Suppressed(p.Weight))
	}
}

func TestApplyAndRank(t *testing.T) {
	recs := []model.InsightRecord{
		{ID: 1, InsightType: "b.type", Severity: model.SeverityInfo, Confidence: model.ConfidenceHigh},
		{ID: 2, InsightType: "a.type", Severity: model.SeverityInfo, Confidence: model.ConfidenceHigh},
		{ID: 3, InsightType: "c.type", Severity: model.SeverityCritical, Confidence: model.ConfidenceHigh},
		{ID: 4, InsightType: "d.type", Severity: model.SeverityWarning, Confidence: model.ConfidenceHigh},
	}
	weights := Weights([]model.InsightPreference{
		{InsightType: "c.type", Weight: 0.2},
		{InsightType: "d.type", Weight: 1.5},
	})
	for i := range recs {
		recs[i] = Apply(recs[i], weights)
	}
	Rank(recs)

	var gotIDs []int64
	for _, r := range recs {
		gotIDs = append(gotIDs, r.ID)
	}
	if diff := cmp.Diff([]int64{4, 2, 1, 3}, gotIDs); diff != "" {
		t.Errorf("Rank order mismatch (-want +got):\n%s", diff)
	}
	if !recs[3].Suppressed || recs[3].RelevanceScore != 18 {
		t.Errorf("suppressed record = %+v", recs[3])
	}
	if recs[0].RelevanceScore != 90 || recs[0].Urgency != model.SeverityCritical {
		t.Errorf("boosted record = %d/%s, want 90/critical", recs[0].RelevanceScore, recs[0].Urgency)
	}
}
