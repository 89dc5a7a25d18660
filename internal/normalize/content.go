package normalize

import (
	"sort"
	"strings"

	"rivalwatch/internal/features"
	"rivalwatch/internal/model"
)

// SiteContent normalizes a website crawl. Page text (markdown, text or
// content fields of each page) is cleaned and run through the detector.
// Flags already present under "detected" are OR-ed with what the detector
// finds.
func SiteContent(raw []byte, detector *features.Detector) model.SiteContentSnapshot {
	o := decode(raw)
	snap := model.SiteContentSnapshot{
		Website:  strings.TrimSpace(o.str("website", "url")),
		Detected: model.DetectedFeatures{DeliveryPlatforms: []string{}},
	}

	var texts []string
	if t := o.str("markdown", "text", "content"); t != "" {
		texts = append(texts, CleanText(t))
	}
	for _, page := range o.objects("pages") {
		if t := page.str("markdown", "text", "content"); t != "" {
			texts = append(texts, CleanText(t))
		}
	}
	if detector != nil && len(texts) > 0 {
		snap.Detected = detector.Detect(strings.Join(texts, "\n"))
	}

	if d := o.obj("detected"); d != nil {
		snap.Detected.Reservation = snap.Detected.Reservation || d.boolean("reservation")
		snap.Detected.OnlineOrdering = snap.Detected.OnlineOrdering || d.boolean("onlineOrdering", "online_ordering")
		snap.Detected.PrivateDining = snap.Detected.PrivateDining || d.boolean("privateDining", "private_dining")
		snap.Detected.Catering = snap.Detected.Catering || d.boolean("catering")
		snap.Detected.HappyHour = snap.Detected.HappyHour || d.boolean("happyHour", "happy_hour")
		platforms := map[string]bool{}
		for _, p := range snap.Detected.DeliveryPlatforms {
			platforms[p] = true
		}
		for _, p := range d.strs("deliveryPlatforms", "delivery_platforms") {
			platforms[strings.ToLower(p)] = true
		}
		snap.Detected.DeliveryPlatforms = make([]string, 0, len(platforms))
		for p := range platforms {
			snap.Detected.DeliveryPlatforms = append(snap.Detected.DeliveryPlatforms, p)
		}
		sort.Strings(snap.Detected.DeliveryPlatforms)
	}
	return snap
}
