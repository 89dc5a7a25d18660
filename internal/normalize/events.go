package normalize

import (
	"sort"
	"strings"

	"github.com/mmcdole/gofeed"

	"rivalwatch/internal/diff"
	"rivalwatch/internal/model"
)

// Events normalizes a local-events search payload.
func Events(raw []byte) model.EventsSnapshot {
	o := decode(raw)
	var events []model.NormalizedEvent
	for _, e := range o.objects("events", "events_results") {
		ev, ok := event(e)
		if ok {
			events = append(events, ev)
		}
	}
	return BuildEventsSnapshot(events)
}

func event(o object) (model.NormalizedEvent, bool) {
	title := CleanText(o.str("title", "name"))
	if title == "" {
		return model.NormalizedEvent{}, false
	}

	ev := model.NormalizedEvent{
		Title:         title,
		StartDatetime: diff.CanonicalStart(o.str("startDatetime", "start_datetime", "startDate", "start_date")),
		URL:           strings.TrimSpace(o.str("url", "link")),
	}

	date := o.obj("date")
	if ev.StartDatetime == "" {
		ev.StartDatetime = diff.CanonicalStart(date.str("start_datetime", "startDate"))
	}
	ev.DisplayedDates = collapse(o.str("displayedDates", "displayed_dates", "when"))
	if ev.DisplayedDates == "" {
		ev.DisplayedDates = collapse(date.str("when", "start_date"))
	}

	venue := o.obj("venue")
	ev.Venue.Name = collapse(venue.str("name"))
	ev.Venue.Address = collapse(venue.str("address"))
	if ev.Venue.Address == "" {
		if parts := o.strs("address"); len(parts) > 0 {
			ev.Venue.Address = collapse(strings.Join(parts, ", "))
		} else {
			ev.Venue.Address = collapse(o.str("address"))
		}
	}
	if ev.Venue.Name == "" {
		ev.Venue.Name = collapse(o.str("venueName", "venue_name"))
	}

	for _, t := range o.objects("ticketsAndInfo", "ticket_info") {
		link := strings.TrimSpace(t.str("link", "url"))
		if link == "" {
			continue
		}
		ev.TicketsAndInfo = append(ev.TicketsAndInfo, model.TicketLink{
			Source: collapse(t.str("source")),
			Link:   link,
		})
	}

	ev.UID = diff.EventUID(ev)
	return ev, true
}

// EventsFromFeed normalizes an event calendar published as RSS or Atom.
// Items using the RSS event module (ev:startdate, ev:location) get a
// structured start and venue; others keep their published date as text.
func EventsFromFeed(feed *gofeed.Feed) model.EventsSnapshot {
	if feed == nil {
		return BuildEventsSnapshot(nil)
	}
	var events []model.NormalizedEvent
	for _, item := range feed.Items {
		if item == nil {
			continue
		}
		title := CleanText(item.Title)
		if title == "" {
			continue
		}
		ev := model.NormalizedEvent{
			Title: title,
			URL:   strings.TrimSpace(item.Link),
		}
		if start := extensionValue(item, "ev", "startdate"); start != "" {
			ev.StartDatetime = diff.CanonicalStart(start)
			if ev.StartDatetime == "" {
				ev.DisplayedDates = collapse(start)
			}
		} else {
			ev.DisplayedDates = collapse(item.Published)
		}
		if loc := extensionValue(item, "ev", "location"); loc != "" {
			name, addr, _ := strings.Cut(loc, ",")
			ev.Venue = model.Venue{Name: collapse(name), Address: collapse(addr)}
		}
		ev.UID = diff.EventUID(ev)
		events = append(events, ev)
	}
	return BuildEventsSnapshot(events)
}

func extensionValue(item *gofeed.Item, prefix, name string) string {
	if item.Extensions == nil {
		return ""
	}
	exts := item.Extensions[prefix][name]
	if len(exts) == 0 {
		return ""
	}
	return strings.TrimSpace(exts[0].Value)
}

// BuildEventsSnapshot dedups events by UID, orders them by start and UID,
// and computes the summary. When two records share a UID the one with more
// ticket sources is kept.
func BuildEventsSnapshot(events []model.NormalizedEvent) model.EventsSnapshot {
	byUID := map[string]model.NormalizedEvent{}
	for _, e := range events {
		if e.UID == "" {
			e.UID = diff.EventUID(e)
		}
		if prev, ok := byUID[e.UID]; ok && len(prev.TicketsAndInfo) >= len(e.TicketsAndInfo) {
			continue
		}
		byUID[e.UID] = e
	}

	out := make([]model.NormalizedEvent, 0, len(byUID))
	for _, e := range byUID {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].StartDatetime != out[j].StartDatetime {
			return out[i].StartDatetime < out[j].StartDatetime
		}
		return out[i].UID < out[j].UID
	})

	return model.EventsSnapshot{Events: out, Summary: Summarize(out)}
}

// Summarize aggregates events by date, venue name and URL domain. Events
// without a structured start are counted under "unknown".
func Summarize(events []model.NormalizedEvent) model.EventsSummary {
	s := model.EventsSummary{
		TotalEvents: len(events),
		ByDate:      map[string]int{},
		ByVenueName: map[string]int{},
		ByDomain:    map[string]int{},
	}
	for _, e := range events {
		s.ByDate[EventDate(e)]++
		if e.Venue.Name != "" {
			s.ByVenueName[e.Venue.Name]++
		}
		if d := diff.Domain(e.URL); d != "" {
			s.ByDomain[d]++
		}
	}
	return s
}

// EventDate returns the YYYY-MM-DD of an event's structured start, or
// "unknown".
func EventDate(e model.NormalizedEvent) string {
	if len(e.StartDatetime) >= 10 {
		return e.StartDatetime[:10]
	}
	return "unknown"
}
