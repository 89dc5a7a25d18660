// Package model defines the domain types used across the application.
package model

import (
	"encoding/json"
	"time"
)

// EntityKind distinguishes the two kinds of tracked entities.
type EntityKind string

// Supported entity kinds.
const (
	EntityLocation   EntityKind = "location"
	EntityCompetitor EntityKind = "competitor"
)

// Provider names the upstream source a snapshot was captured from.
type Provider string

// Supported providers.
const (
	ProviderPlaces      Provider = "places"
	ProviderMenu        Provider = "menu"
	ProviderSiteContent Provider = "site_content"
	ProviderEvents      Provider = "events"
	ProviderSEO         Provider = "seo"
)

// Valid reports whether p is a known provider.
func (p Provider) Valid() bool {
	switch p {
	case ProviderPlaces, ProviderMenu, ProviderSiteContent, ProviderEvents, ProviderSEO:
		return true
	}
	return false
}

// Location is the business being tracked. ChatID is the operator chat that
// consumes its insights.
type Location struct {
	ID        int64
	Name      string
	Address   string
	Website   string
	ChatID    int64
	CreatedAt time.Time
}

// Competitor is a business tracked on behalf of a location.
type Competitor struct {
	ID         int64
	LocationID int64
	Name       string
	Address    string
	Website    string
	IsActive   bool
	CreatedAt  time.Time
}

// Snapshot is a normalized, dated capture of one provider's data for one
// entity. It is unique per (EntityKind, EntityID, Provider, DateKey).
type Snapshot struct {
	EntityKind EntityKind
	EntityID   int64
	Provider   Provider
	DateKey    string
	CapturedAt time.Time
	RawData    json.RawMessage
	DiffHash   string
}

// DateKeyLayout is the calendar-day partition format.
const DateKeyLayout = "2006-01-02"

// ShiftDateKey returns the date key days away from key.
func ShiftDateKey(key string, days int) (string, error) {
	t, err := time.Parse(DateKeyLayout, key)
	if err != nil {
		return "", err
	}
	return t.AddDate(0, 0, days).Format(DateKeyLayout), nil
}

// Decode unmarshals the normalized payload into v.
func (s Snapshot) Decode(v any) error {
	return json.Unmarshal(s.RawData, v)
}
