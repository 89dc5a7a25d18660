package matcher

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"rivalwatch/internal/model"
)

func TestMatchPair(t *testing.T) {
	tests := []struct {
		name       string
		event      model.NormalizedEvent
		competitor model.Competitor
		wantOK     bool
		wantType   model.MatchType
		wantConf   model.Confidence
		wantScore  float64
	}{
		{
			name:       "venue name ignores case and punctuation",
			event:      model.NormalizedEvent{Title: "Trivia", Venue: model.Venue{Name: "MOE'S   Tavern!"}},
			competitor: model.Competitor{ID: 1, Name: "Moes Tavern", IsActive: true},
			wantOK:     true,
			wantType:   model.MatchVenueName,
			wantConf:   model.ConfidenceHigh,
			wantScore:  0.95,
		},
		{
			name:       "full address overlap",
			event:      model.NormalizedEvent{Venue: model.Venue{Name: "Hall", Address: "742 Evergreen Terrace, Springfield"}},
			competitor: model.Competitor{ID: 1, Name: "Flanders Grill", Address: "742 Evergreen Terrace Springfield"},
			wantOK:     true,
			wantType:   model.MatchVenueAddress,
			wantConf:   model.ConfidenceMedium,
			wantScore:  0.8,
		},
		{
			name:       "partial address overlap above ratio",
			event:      model.NormalizedEvent{Venue: model.Venue{Address: "Evergreen Terrace"}},
			competitor: model.Competitor{ID: 1, Name: "X", Address: "Evergreen Terrace, Springfield"},
			wantOK:     true,
			wantType:   model.MatchVenueAddress,
			wantConf:   model.ConfidenceMedium,
			wantScore:  0.53,
		},
		{
			name:       "address overlap below ratio",
			event:      model.NormalizedEvent{Venue: model.Venue{Address: "1 Evergreen Way, Capital City"}},
			competitor: model.Competitor{ID: 1, Name: "X", Address: "742 Evergreen Terrace, Springfield"},
		},
		{
			name:       "address tokens only match whole words",
			event:      model.NormalizedEvent{Venue: model.Venue{Address: "Maine Streetcar Museum, Portland"}},
			competitor: model.Competitor{ID: 1, Name: "X", Address: "12 Main Street"},
		},
		{
			name:       "competitor address with one usable token",
			event:      model.NormalizedEvent{Venue: model.Venue{Address: "12 Main St"}},
			competitor: model.Competitor{ID: 1, Name: "X", Address: "12 Main St"},
		},
		{
			name: "ticket link domain",
			event: model.NormalizedEvent{
				URL:            "https://events.example.org/e/1",
				TicketsAndInfo: []model.TicketLink{{Source: "Venue", Link: "https://WWW.moestavern.com/tickets?id=3"}},
			},
			competitor: model.Competitor{ID: 1, Name: "X", Website: "moestavern.com"},
			wantOK:     true,
			wantType:   model.MatchURLDomain,
			wantConf:   model.ConfidenceLow,
			wantScore:  0.4,
		},
		{
			name:       "nothing in common",
			event:      model.NormalizedEvent{Title: "Parade", URL: "https://city.example.gov/parade", Venue: model.Venue{Name: "Main Square"}},
			competitor: model.Competitor{ID: 1, Name: "Moes Tavern", Address: "1 Walnut St, Springfield", Website: "https://moestavern.com"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := MatchPair(7, "2026-10-17", tt.event, tt.competitor)
			if ok != tt.wantOK {
				t.Fatalf("MatchPair ok = %v, want %v (record %+v)", ok, tt.wantOK, got)
			}
			if !ok {
				return
			}
			if got.MatchType != tt.wantType || got.Confidence != tt.wantConf {
				t.Errorf("MatchPair = %s/%s, want %s/%s", got.MatchType, got.Confidence, tt.wantType, tt.wantConf)
			}
			if got.Evidence.Score != tt.wantScore {
				t.Errorf("score = %v, want %v", got.Evidence.Score, tt.wantScore)
			}
			if got.LocationID != 7 || got.DateKey != "2026-10-17" || got.CompetitorID != tt.competitor.ID {
				t.Errorf("record keys not propagated: %+v", got)
			}
		})
	}
}

func TestMatchVenueNameWinsOverAddress(t *testing.T) {
	event := model.NormalizedEvent{
		UID:   "aaaaaaaaaaaaaaaa",
		Title: "Jazz Night",
		Venue: model.Venue{Name: "The Blue Room", Address: "12 Main Street, Springfield"},
	}
	competitors := []model.Competitor{
		{ID: 2, Name: "Moe's Tavern", Address: "12 Main Street Springfield", IsActive: true},
		{ID: 1, Name: "The Blue Room", Address: "12 Main Street Springfield", Website: "https://blueroom.example.com", IsActive: true},
	}

	got := Match(5, "2026-10-17", []model.NormalizedEvent{event, event}, competitors)
	want := []model.EventMatchRecord{
		{
			LocationID: 5, CompetitorID: 1, DateKey: "2026-10-17", EventUID: "aaaaaaaaaaaaaaaa",
			MatchType: model.MatchVenueName, Confidence: model.ConfidenceHigh,
			Evidence: model.MatchEvidence{
				MatchInputs: model.MatchInputs{
					EventTitle:         "Jazz Night",
					VenueName:          "The Blue Room",
					CompetitorName:     "The Blue Room",
					CanonicalVenueName: "the blue room",
				},
				Score: 0.95,
			},
		},
		{
			LocationID: 5, CompetitorID: 2, DateKey: "2026-10-17", EventUID: "aaaaaaaaaaaaaaaa",
			MatchType: model.MatchVenueAddress, Confidence: model.ConfidenceMedium,
			Evidence: model.MatchEvidence{
				MatchInputs: model.MatchInputs{
					EventTitle:        "Jazz Night",
					VenueAddress:      "12 Main Street, Springfield",
					CompetitorName:    "Moe's Tavern",
					CompetitorAddress: "12 Main Street Springfield",
					AddressTokens:     []string{"main", "street", "springfield"},
					MatchedTokens:     []string{"main", "street", "springfield"},
					MatchRatio:        1,
				},
				Score: 0.8,
			},
		},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Match mismatch (-want +got):\n%s", diff)
	}
}

func TestMatchSkipsInactiveAndComputesMissingUID(t *testing.T) {
	events := []model.NormalizedEvent{{Title: "Open Mic", Venue: model.Venue{Name: "Moe's"}}}
	competitors := []model.Competitor{
		{ID: 1, Name: "Moes", IsActive: false},
		{ID: 2, Name: "moes", IsActive: true},
	}
	got := Match(1, "2026-10-17", events, competitors)
	if len(got) != 1 {
		t.Fatalf("Match returned %d records, want 1", len(got))
	}
	if got[0].CompetitorID != 2 {
		t.Errorf("CompetitorID = %d, want 2", got[0].CompetitorID)
	}
	if len(got[0].EventUID) != 16 {
		t.Errorf("EventUID = %q, want 16 hex chars", got[0].EventUID)
	}
}

func TestAddressTokens(t *testing.T) {
	got := AddressTokens("12 Main St., Main Street #4, Springfield")
	want := []string{"main", "street", "springfield"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("AddressTokens mismatch (-want +got):\n%s", diff)
	}
}
