package normalize

import (
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/mmcdole/gofeed"

	"rivalwatch/internal/features"
	"rivalwatch/internal/model"
)

func ptrF(v float64) *float64 { return &v }
func ptrI(v int) *int         { return &v }

func TestCleanText(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "emphasis", in: "**Crispy** _fried_ *chicken*", want: "Crispy fried chicken"},
		{name: "links and images", in: "See [our menu](https://x.com/menu) ![logo](a.png)", want: "See our menu logo"},
		{name: "headers and lists", in: "## Starters\n- Wings\n* Fries\n1. Soup", want: "Starters Wings Fries Soup"},
		{name: "whitespace", in: "  a \t\n\n b  ", want: "a b"},
		{name: "html", in: "<p>Hello<br/>world</p>", want: "Hello world"},
		{name: "snake case untouched", in: "dine_in menu", want: "dine_in menu"},
		{name: "empty", in: "", want: ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CleanText(tt.in)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("CleanText mismatch (-want +got):\n%s", diff)
			}
			if again := CleanText(tt.in); again != got {
				t.Errorf("CleanText not deterministic: %q vs %q", got, again)
			}
		})
	}
}

func TestParsePrice(t *testing.T) {
	tests := []struct {
		in   string
		want *float64
	}{
		{in: "$12.50", want: ptrF(12.5)},
		{in: "1,250", want: ptrF(1250)},
		{in: "$12 - $15", want: ptrF(12)},
		{in: "Market price", want: nil},
		{in: "", want: nil},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if diff := cmp.Diff(tt.want, ParsePrice(tt.in)); diff != "" {
				t.Errorf("ParsePrice(%q) mismatch (-want +got):\n%s", tt.in, diff)
			}
		})
	}
}

func TestMoneyRejectsNonFinite(t *testing.T) {
	for _, v := range []float64{math.NaN(), math.Inf(1), math.Inf(-1)} {
		if got := Money(v); got != nil {
			t.Errorf("Money(%v) = %v, want nil", v, *got)
		}
	}
}

func TestProfile(t *testing.T) {
	raw := []byte(`{
		"name": "Joe's  Bar",
		"rating": 4.46,
		"user_ratings_total": 312,
		"price_level": 2,
		"formatted_address": "12 Main St,  Springfield",
		"website": "https://joesbar.example.com",
		"formatted_phone_number": "(555) 010-0100",
		"opening_hours": {"weekday_text": ["Monday: 11 AM – 10 PM", "Sunday: Closed", "Bogus line"]},
		"reviews": [{"author_name": "Ann", "rating": 5, "text": "**Great** wings"}]
	}`)

	want := model.ProfileSnapshot{
		Profile: model.Profile{
			Title:       "Joe's Bar",
			Rating:      ptrF(4.46),
			ReviewCount: ptrI(312),
			PriceLevel:  "$$",
			Address:     "12 Main St, Springfield",
			Website:     "https://joesbar.example.com",
			Phone:       "(555) 010-0100",
		},
		Hours:         map[string]string{"monday": "11 AM – 10 PM", "sunday": "Closed"},
		RecentReviews: []model.Review{{Author: "Ann", Rating: ptrF(5), Text: "Great wings"}},
	}
	if diff := cmp.Diff(want, Profile(raw)); diff != "" {
		t.Errorf("Profile() mismatch (-want +got):\n%s", diff)
	}
}

func TestProfileMalformed(t *testing.T) {
	inputs := [][]byte{nil, []byte("not json"), []byte(`[1,2]`), []byte(`{"rating": "abc", "reviewCount": -3}`)}
	want := model.ProfileSnapshot{Hours: map[string]string{}, RecentReviews: []model.Review{}}
	for _, in := range inputs {
		if diff := cmp.Diff(want, Profile(in)); diff != "" {
			t.Errorf("Profile(%q) mismatch (-want +got):\n%s", in, diff)
		}
	}
}

func TestMenu(t *testing.T) {
	raw := []byte(`{
		"menuUrl": "https://joes.example.com/menu",
		"currency": "usd",
		"categories": [
			{"name": "## Starters", "items": [
				{"name": "**Wings**", "description": "Ten pieces", "price": "$12.50", "tags": ["Spicy"]},
				{"name": "", "price": 3}
			]},
			{"name": "Catering Trays", "items": [{"name": "Taco Bar", "price": 120}]}
		]
	}`)
	got := Menu(raw)
	want := model.MenuSnapshot{
		MenuURL:  "https://joes.example.com/menu",
		Currency: "USD",
		Categories: []model.MenuCategory{
			{Name: "Starters", MenuType: model.MenuDineIn, Items: []model.MenuItem{
				{Name: "Wings", Description: "Ten pieces", Price: "$12.50", PriceValue: ptrF(12.5), Tags: []string{"spicy"}},
			}},
			{Name: "Catering Trays", MenuType: model.MenuCatering, Items: []model.MenuItem{
				{Name: "Taco Bar", Price: "120.00", PriceValue: ptrF(120)},
			}},
		},
		ParseMeta: model.ParseMeta{ItemsTotal: 2, Sources: []string{"https://joes.example.com/menu"}},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Menu() mismatch (-want +got):\n%s", diff)
	}
}

func TestMergeMenusKeepsRicherRecord(t *testing.T) {
	a := model.MenuSnapshot{
		MenuURL: "https://a.example.com/menu",
		Categories: []model.MenuCategory{{Name: "Mains", MenuType: model.MenuDineIn, Items: []model.MenuItem{
			{Name: "Burger", PriceValue: ptrF(14)},
			{Name: "Salad", PriceValue: ptrF(9), Description: "Greens"},
		}}},
	}
	b := model.MenuSnapshot{
		MenuURL: "https://b.example.com/menu",
		Categories: []model.MenuCategory{{Name: "mains!", MenuType: model.MenuDineIn, Items: []model.MenuItem{
			{Name: "BURGER", PriceValue: ptrF(15), Description: "Double patty"},
			{Name: "salad", PriceValue: ptrF(10), Tags: []string{"vegan"}},
			{Name: "Fries", PriceValue: ptrF(4)},
		}}},
	}

	got := MergeMenus(a, b)
	want := model.MenuSnapshot{
		MenuURL: "https://a.example.com/menu",
		Categories: []model.MenuCategory{{Name: "Mains", MenuType: model.MenuDineIn, Items: []model.MenuItem{
			{Name: "BURGER", PriceValue: ptrF(15), Description: "Double patty"},
			{Name: "Salad", PriceValue: ptrF(9), Description: "Greens"},
			{Name: "Fries", PriceValue: ptrF(4)},
		}}},
		ParseMeta: model.ParseMeta{
			ItemsTotal: 3,
			Sources:    []string{"https://a.example.com/menu", "https://b.example.com/menu"},
		},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("MergeMenus mismatch (-want +got):\n%s", diff)
	}

	if diff := cmp.Diff(got, MergeMenus(b, a)); diff != "" {
		t.Errorf("MergeMenus depends on input order (-ab +ba):\n%s", diff)
	}
}

func TestSiteContent(t *testing.T) {
	raw := []byte(`{
		"website": "https://joes.example.com",
		"pages": [
			{"url": "/", "markdown": "# Welcome\n[Reserve a table](https://resy.com/joes)"},
			{"url": "/order", "markdown": "Order online or via **DoorDash**"}
		],
		"detected": {"catering": true, "deliveryPlatforms": ["Grubhub"]}
	}`)
	got := SiteContent(raw, features.DefaultDetector())
	want := model.SiteContentSnapshot{
		Website: "https://joes.example.com",
		Detected: model.DetectedFeatures{
			Reservation:       true,
			OnlineOrdering:    true,
			Catering:          true,
			DeliveryPlatforms: []string{"doordash", "grubhub"},
		},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("SiteContent mismatch (-want +got):\n%s", diff)
	}
}

func TestEventsDedupAndSummary(t *testing.T) {
	raw := []byte(`{
		"events": [
			{"title": "Jazz Night", "start_datetime": "2026-10-24T20:00:00Z",
			 "venue": {"name": "The Blue Room"}, "address": ["12 Main St", "Springfield"],
			 "link": "https://tix.example.com/jazz?src=a",
			 "ticket_info": [{"source": "Tix", "link": "https://tix.example.com/jazz"}]},
			{"title": "JAZZ NIGHT!", "start_datetime": "2026-10-24T20:00:00Z",
			 "venue": {"name": "the blue room"}, "address": ["12 Main St", "Springfield"],
			 "link": "https://tix.example.com/jazz?src=b",
			 "ticket_info": [{"source": "Tix", "link": "https://tix.example.com/jazz"}, {"source": "Venue", "link": "https://blueroom.example.com"}]},
			{"title": "Farmers Market", "date": {"when": "Sun, Oct 25"}, "link": "https://city.example.gov/market"},
			{"title": ""}
		]
	}`)
	got := Events(raw)

	if diff := cmp.Diff(2, got.Summary.TotalEvents); diff != "" {
		t.Fatalf("TotalEvents mismatch (-want +got):\n%s", diff)
	}
	wantByDate := map[string]int{"2026-10-24": 1, "unknown": 1}
	if diff := cmp.Diff(wantByDate, got.Summary.ByDate); diff != "" {
		t.Errorf("ByDate mismatch (-want +got):\n%s", diff)
	}
	wantByDomain := map[string]int{"tix.example.com": 1, "city.example.gov": 1}
	if diff := cmp.Diff(wantByDomain, got.Summary.ByDomain); diff != "" {
		t.Errorf("ByDomain mismatch (-want +got):\n%s", diff)
	}
	var jazz model.NormalizedEvent
	for _, e := range got.Events {
		if e.StartDatetime != "" {
			jazz = e
		}
	}
	if diff := cmp.Diff(2, len(jazz.TicketsAndInfo)); diff != "" {
		t.Errorf("expected the record with more ticket sources to win (-want +got):\n%s", diff)
	}
}

func TestEventsFromFeed(t *testing.T) {
	const rss = `<?xml version="1.0"?>
<rss version="2.0" xmlns:ev="http://purl.org/rss/1.0/modules/event/">
<channel>
  <title>Springfield Events</title>
  <item>
    <title>Jazz Night</title>
    <link>https://city.example.gov/e/1</link>
    <ev:startdate>2026-10-24T20:00:00Z</ev:startdate>
    <ev:location>The Blue Room, 12 Main St, Springfield</ev:location>
  </item>
  <item>
    <title>Craft Fair</title>
    <link>https://city.example.gov/e/2</link>
    <pubDate>Sat, 17 Oct 2026 09:00:00 GMT</pubDate>
  </item>
</channel>
</rss>`
	feed, err := gofeed.NewParser().ParseString(rss)
	if err != nil {
		t.Fatalf("parse feed: %v", err)
	}

	got := EventsFromFeed(feed)
	want := []model.NormalizedEvent{
		{
			Title:          "Craft Fair",
			DisplayedDates: "Sat, 17 Oct 2026 09:00:00 GMT",
			URL:            "https://city.example.gov/e/2",
		},
		{
			Title:         "Jazz Night",
			StartDatetime: "2026-10-24T20:00:00Z",
			Venue:         model.Venue{Name: "The Blue Room", Address: "12 Main St, Springfield"},
			URL:           "https://city.example.gov/e/1",
		},
	}
	if diff := cmp.Diff(want, got.Events, cmpopts.IgnoreFields(model.NormalizedEvent{}, "UID")); diff != "" {
		t.Errorf("EventsFromFeed mismatch (-want +got):\n%s", diff)
	}
	for _, e := range got.Events {
		if len(e.UID) != 16 {
			t.Errorf("event %q has uid %q", e.Title, e.UID)
		}
	}
}

func TestSEO(t *testing.T) {
	raw := []byte(`{
		"target": "Joes.example.com",
		"traffic_history": [
			{"date": "2026-09-01", "etv": 1200.456},
			{"date": "2026-08-01", "etv": 1000},
			{"date": "bad", "etv": 5},
			{"date": "2026-07-01"}
		],
		"referring_domains": 87,
		"metrics": {"organic": {"count": 450}}
	}`)
	want := model.SEOSnapshot{
		Domain: "joes.example.com",
		TrafficHistory: []model.TrafficPoint{
			{Month: "2026-08", Traffic: 1000},
			{Month: "2026-09", Traffic: 1200.46},
		},
		ReferringDomains: ptrI(87),
		RankedKeywords:   ptrI(450),
	}
	if diff := cmp.Diff(want, SEO(raw)); diff != "" {
		t.Errorf("SEO() mismatch (-want +got):\n%s", diff)
	}
}
