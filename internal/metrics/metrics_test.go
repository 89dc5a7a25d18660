package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

// counterValue returns the value of the series of family name whose labels
// match want exactly.
func counterValue(t *testing.T, m *Metrics, name string, want map[string]string) float64 {
	t.Helper()
	families, err := m.Registry().Gather()
	if err != nil {
		t.Fatalf("gather: %v", err)
	}
	for _, f := range families {
		if f.GetName() != name {
			continue
		}
		for _, metric := range f.GetMetric() {
			got := map[string]string{}
			for _, lp := range metric.GetLabel() {
				got[lp.GetName()] = lp.GetValue()
			}
			if cmp.Equal(want, got) {
				return metric.GetCounter().GetValue()
			}
		}
	}
	return 0
}

func TestCounters(t *testing.T) {
	m := New()
	m.ModuleEmitted("menu", 3)
	m.ModuleEmitted("menu", 2)
	m.ModuleFailed("events")
	m.JobProcessed("insights.generate", "done", 150*time.Millisecond)
	m.BriefingLookup(true)
	m.BriefingLookup(false)
	m.BriefingLookup(false)
	m.InsightPushed(true)

	tests := []struct {
		name   string
		family string
		labels map[string]string
		want   float64
	}{
		{name: "emitted", family: "rivalwatch_insights_emitted_total", labels: map[string]string{"module": "menu"}, want: 5},
		{name: "failures", family: "rivalwatch_rule_module_failures_total", labels: map[string]string{"module": "events"}, want: 1},
		{name: "jobs", family: "rivalwatch_jobs_processed_total", labels: map[string]string{"job_type": "insights.generate", "status": "done"}, want: 1},
		{name: "cache misses", family: "rivalwatch_briefing_cache_lookups_total", labels: map[string]string{"result": "miss"}, want: 2},
		{name: "pushes", family: "rivalwatch_insight_pushes_total", labels: map[string]string{"status": "sent"}, want: 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := counterValue(t, m, tt.family, tt.labels)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("counter mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestHandler(t *testing.T) {
	m := New()
	m.ModuleEmitted("reviews", 1)

	srv := httptest.NewServer(m.Handler())
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/metrics")
	if err != nil {
		t.Fatalf("get metrics: %v", err)
	}
	defer func() { _ = resp.Body.Close() }()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	if !strings.Contains(string(body), `rivalwatch_insights_emitted_total{module="reviews"} 1`) {
		t.Errorf("metrics output missing emitted counter:\n%s", body)
	}

	health, err := http.Get(srv.URL + "/healthz")
	if err != nil {
		t.Fatalf("get healthz: %v", err)
	}
	_ = health.Body.Close()
	if diff := cmp.Diff(http.StatusOK, health.StatusCode); diff != "" {
		t.Errorf("healthz status mismatch (-want +got):\n%s", diff)
	}
}
