package model

// ProfileSnapshot is the canonical shape of a places/profile capture.
type ProfileSnapshot struct {
	Profile       Profile           `json:"profile"`
	Hours         map[string]string `json:"hours"`
	RecentReviews []Review          `json:"recentReviews"`
}

// Profile holds the listing fields used for change detection.
type Profile struct {
	Title       string   `json:"title,omitempty"`
	Rating      *float64 `json:"rating"`
	ReviewCount *int     `json:"reviewCount"`
	PriceLevel  string   `json:"priceLevel,omitempty"`
	Address     string   `json:"address,omitempty"`
	Website     string   `json:"website,omitempty"`
	Phone       string   `json:"phone,omitempty"`
}

// Review is one recent review shown on the listing.
type Review struct {
	Author      string   `json:"author,omitempty"`
	Rating      *float64 `json:"rating"`
	Text        string   `json:"text,omitempty"`
	PublishedAt string   `json:"publishedAt,omitempty"`
}

// MenuType classifies a menu category.
type MenuType string

// Supported menu types.
const (
	MenuDineIn    MenuType = "dine_in"
	MenuCatering  MenuType = "catering"
	MenuHappyHour MenuType = "happy_hour"
	MenuKids      MenuType = "kids"
	MenuDrinks    MenuType = "drinks"
	MenuOther     MenuType = "other"
)

// MenuSnapshot is the canonical shape of a scraped menu.
type MenuSnapshot struct {
	MenuURL    string         `json:"menuUrl,omitempty"`
	Currency   string         `json:"currency,omitempty"`
	Categories []MenuCategory `json:"categories"`
	ParseMeta  ParseMeta      `json:"parseMeta"`
}

// MenuCategory is a named group of menu items.
type MenuCategory struct {
	Name     string     `json:"name"`
	MenuType MenuType   `json:"menuType"`
	Items    []MenuItem `json:"items"`
}

// MenuItem is one dish or product. Price is the displayed text, PriceValue
// the parsed amount rounded to cents.
type MenuItem struct {
	Name        string   `json:"name"`
	Description string   `json:"description,omitempty"`
	Price       string   `json:"price,omitempty"`
	PriceValue  *float64 `json:"priceValue"`
	Tags        []string `json:"tags,omitempty"`
}

// ParseMeta describes how a menu was assembled.
type ParseMeta struct {
	ItemsTotal int      `json:"itemsTotal"`
	Confidence string   `json:"confidence,omitempty"`
	Notes      []string `json:"notes,omitempty"`
	Sources    []string `json:"sources,omitempty"`
}

// SiteContentSnapshot holds feature flags detected on a website.
type SiteContentSnapshot struct {
	Website  string           `json:"website,omitempty"`
	Detected DetectedFeatures `json:"detected"`
}

// DetectedFeatures are the boolean site features compared between entities.
type DetectedFeatures struct {
	Reservation       bool     `json:"reservation"`
	OnlineOrdering    bool     `json:"onlineOrdering"`
	PrivateDining     bool     `json:"privateDining"`
	Catering          bool     `json:"catering"`
	HappyHour         bool     `json:"happyHour"`
	DeliveryPlatforms []string `json:"deliveryPlatforms"`
}

// EventsSnapshot is the canonical (v1) shape of a local events capture.
type EventsSnapshot struct {
	Events  []NormalizedEvent `json:"events"`
	Summary EventsSummary     `json:"summary"`
}

// NormalizedEvent is one local event. UID is a stable content hash so the
// same real-world event dedups across fetches.
type NormalizedEvent struct {
	UID            string       `json:"uid"`
	Title          string       `json:"title"`
	StartDatetime  string       `json:"startDatetime,omitempty"`
	DisplayedDates string       `json:"displayedDates,omitempty"`
	Venue          Venue        `json:"venue"`
	TicketsAndInfo []TicketLink `json:"ticketsAndInfo,omitempty"`
	URL            string       `json:"url,omitempty"`
}

// Venue is where an event takes place.
type Venue struct {
	Name    string `json:"name,omitempty"`
	Address string `json:"address,omitempty"`
}

// TicketLink is a ticket or info source for an event.
type TicketLink struct {
	Source string `json:"source,omitempty"`
	Link   string `json:"link"`
}

// EventsSummary aggregates an events snapshot.
type EventsSummary struct {
	TotalEvents int            `json:"totalEvents"`
	ByDate      map[string]int `json:"byDate"`
	ByVenueName map[string]int `json:"byVenueName"`
	ByDomain    map[string]int `json:"byDomain"`
}

// SEOSnapshot holds search-visibility metrics for a domain.
type SEOSnapshot struct {
	Domain           string         `json:"domain,omitempty"`
	TrafficHistory   []TrafficPoint `json:"trafficHistory"`
	ReferringDomains *int           `json:"referringDomains"`
	RankedKeywords   *int           `json:"rankedKeywords"`
}

// TrafficPoint is estimated organic traffic for one month (YYYY-MM).
type TrafficPoint struct {
	Month   string  `json:"month"`
	Traffic float64 `json:"traffic"`
}
