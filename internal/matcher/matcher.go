// Package matcher associates local events with competitors using an ordered
// cascade of explainable rules.
package matcher

import (
	"sort"
	"strings"

	"rivalwatch/internal/diff"
	"rivalwatch/internal/model"
)

// Rule scores and thresholds.
const (
	VenueNameScore       = 0.95
	VenueAddressWeight   = 0.8
	URLDomainScore       = 0.4
	MinAddressTokens     = 2
	MinAddressMatchRatio = 0.6
	minTokenLen          = 3
)

// rule tests one (event, competitor) pair. ok reports whether the rule is
// satisfied; when it is, the returned evidence justifies the match.
type rule struct {
	matchType  model.MatchType
	confidence model.Confidence
	eval       func(e model.NormalizedEvent, c model.Competitor) (model.MatchEvidence, bool)
}

// rules are evaluated in order; the first satisfied rule wins and the rest
// are skipped for that pair.
var rules = []rule{
	{matchType: model.MatchVenueName, confidence: model.ConfidenceHigh, eval: venueName},
	{matchType: model.MatchVenueAddress, confidence: model.ConfidenceMedium, eval: venueAddress},
	{matchType: model.MatchURLDomain, confidence: model.ConfidenceLow, eval: urlDomain},
}

// MatchPair runs the cascade for one pair. ok is false when no rule matches,
// which is the terminal "unmatched" state.
func MatchPair(locationID int64, dateKey string, e model.NormalizedEvent, c model.Competitor) (model.EventMatchRecord, bool) {
	for _, r := range rules {
		ev, ok := r.eval(e, c)
		if !ok {
			continue
		}
		return model.EventMatchRecord{
			LocationID:   locationID,
			CompetitorID: c.ID,
			DateKey:      dateKey,
			EventUID:     e.UID,
			MatchType:    r.matchType,
			Confidence:   r.confidence,
			Evidence:     ev,
		}, true
	}
	return model.EventMatchRecord{}, false
}

// Match evaluates every (event, competitor) pair and returns the matches
// ordered by competitor ID, then event UID. Inactive competitors are skipped.
func Match(locationID int64, dateKey string, events []model.NormalizedEvent, competitors []model.Competitor) []model.EventMatchRecord {
	var out []model.EventMatchRecord
	seen := map[pairKey]bool{}
	for _, c := range competitors {
		if !c.IsActive {
			continue
		}
		for _, e := range events {
			if e.UID == "" {
				e.UID = diff.EventUID(e)
			}
			key := pairKey{competitorID: c.ID, eventUID: e.UID}
			if seen[key] {
				continue
			}
			if rec, ok := MatchPair(locationID, dateKey, e, c); ok {
				seen[key] = true
				out = append(out, rec)
			}
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CompetitorID != out[j].CompetitorID {
			return out[i].CompetitorID < out[j].CompetitorID
		}
		return out[i].EventUID < out[j].EventUID
	})
	return out
}

type pairKey struct {
	competitorID int64
	eventUID     string
}

func venueName(e model.NormalizedEvent, c model.Competitor) (model.MatchEvidence, bool) {
	venue := diff.Canonical(e.Venue.Name)
	if venue == "" || venue != diff.Canonical(c.Name) {
		return model.MatchEvidence{}, false
	}
	return model.MatchEvidence{
		MatchInputs: model.MatchInputs{
			EventTitle:         e.Title,
			VenueName:          e.Venue.Name,
			CompetitorName:     c.Name,
			CanonicalVenueName: venue,
		},
		Score: VenueNameScore,
	}, true
}

// AddressTokens returns the canonical tokens of addr longer than two
// characters, deduplicated in first-seen order.
func AddressTokens(addr string) []string {
	var out []string
	seen := map[string]bool{}
	for _, tok := range strings.Fields(diff.Canonical(addr)) {
		if len([]rune(tok)) < minTokenLen || seen[tok] {
			continue
		}
		seen[tok] = true
		out = append(out, tok)
	}
	return out
}

func venueAddress(e model.NormalizedEvent, c model.Competitor) (model.MatchEvidence, bool) {
	tokens := AddressTokens(c.Address)
	if len(tokens) < MinAddressTokens {
		return model.MatchEvidence{}, false
	}
	venue := strings.Fields(diff.Canonical(e.Venue.Address))
	if len(venue) == 0 {
		return model.MatchEvidence{}, false
	}
	words := make(map[string]bool, len(venue))
	for _, w := range venue {
		words[w] = true
	}

	// Whole words only: "main" must not hit "maine".
	var matched []string
	for _, tok := range tokens {
		if words[tok] {
			matched = append(matched, tok)
		}
	}
	ratio := float64(len(matched)) / float64(len(tokens))
	if ratio < MinAddressMatchRatio {
		return model.MatchEvidence{}, false
	}
	return model.MatchEvidence{
		MatchInputs: model.MatchInputs{
			EventTitle:        e.Title,
			VenueAddress:      e.Venue.Address,
			CompetitorName:    c.Name,
			CompetitorAddress: c.Address,
			AddressTokens:     tokens,
			MatchedTokens:     matched,
			MatchRatio:        diff.Round2(ratio),
		},
		Score: diff.Round2(VenueAddressWeight * ratio),
	}, true
}

func urlDomain(e model.NormalizedEvent, c model.Competitor) (model.MatchEvidence, bool) {
	domain := diff.Domain(c.Website)
	if domain == "" {
		return model.MatchEvidence{}, false
	}

	var candidates []string
	if d := diff.Domain(e.URL); d != "" {
		candidates = append(candidates, d)
	}
	for _, t := range e.TicketsAndInfo {
		if d := diff.Domain(t.Link); d != "" {
			candidates = append(candidates, d)
		}
	}

	for _, d := range candidates {
		if d == domain {
			return model.MatchEvidence{
				MatchInputs: model.MatchInputs{
					EventTitle:        e.Title,
					EventURL:          e.URL,
					CompetitorName:    c.Name,
					CompetitorWebsite: c.Website,
					CompetitorDomain:  domain,
					CandidateDomains:  candidates,
				},
				Score: URLDomainScore,
			}, true
		}
	}
	return model.MatchEvidence{}, false
}
