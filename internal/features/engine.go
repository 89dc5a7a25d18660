// Package features detects site features in scraped page text with
// include/exclude regular-expression pattern sets.
package features

import (
	"fmt"
	"regexp"
	"sort"

	"rivalwatch/internal/model"
)

// Feature names a boolean site capability.
type Feature string

// Supported features.
const (
	Reservation    Feature = "reservation"
	OnlineOrdering Feature = "online_ordering"
	PrivateDining  Feature = "private_dining"
	Catering       Feature = "catering"
	HappyHour      Feature = "happy_hour"
)

// PatternSet describes how to recognise one feature. Include patterns use
// OR logic (at least one must match). Exclude patterns veto the feature.
type PatternSet struct {
	Feature Feature  `yaml:"feature"`
	Include []string `yaml:"include"`
	Exclude []string `yaml:"exclude"`
}

// Platform is a third-party delivery service recognised by pattern.
type Platform struct {
	Name    string `yaml:"name"`
	Pattern string `yaml:"pattern"`
}

// DefaultPatternSets are used when no overrides are configured.
var DefaultPatternSets = []PatternSet{
	{
		Feature: Reservation,
		Include: []string{`\breservations?\b`, `\breserve (a|your) table\b`, `\bbook (a|your) table\b`, `opentable\.com`, `resy\.com`, `sevenrooms\.com`, `exploretock\.com`},
		Exclude: []string{`\bno reservations\b`, `\breservations (are )?not (accepted|available)\b`, `\bwalk[- ]ins? only\b`},
	},
	{
		Feature: OnlineOrdering,
		Include: []string{`\border online\b`, `\bonline ordering\b`, `\border (pickup|takeout|to-go)\b`, `toasttab\.com`, `order\.online`, `chownow\.com`},
	},
	{
		Feature: PrivateDining,
		Include: []string{`\bprivate (dining|events?|parties|party|room)\b`, `\bbuy[- ]?outs?\b`, `\bevent space\b`},
	},
	{
		Feature: Catering,
		Include: []string{`\bcatering\b`, `\bcater(s|ed)? (your|an?) (event|party)\b`},
		Exclude: []string{`\bno catering\b`},
	},
	{
		Feature: HappyHour,
		Include: []string{`\bhappy hour\b`},
	},
}

// DefaultPlatforms are the delivery services recognised by default.
var DefaultPlatforms = []Platform{
	{Name: "doordash", Pattern: `doordash`},
	{Name: "ubereats", Pattern: `uber ?eats`},
	{Name: "grubhub", Pattern: `grubhub`},
	{Name: "postmates", Pattern: `postmates`},
	{Name: "seamless", Pattern: `seamless\.com|order on seamless`},
	{Name: "caviar", Pattern: `trycaviar|caviar delivery`},
}

type compiledSet struct {
	feature Feature
	include []*regexp.Regexp
	exclude []*regexp.Regexp
}

type compiledPlatform struct {
	name string
	re   *regexp.Regexp
}

// Detector evaluates pattern sets against page text. It is immutable after
// construction and safe for concurrent use.
type Detector struct {
	sets      []compiledSet
	platforms []compiledPlatform
}

// NewDetector compiles the given pattern sets and platforms. Patterns are
// matched case-insensitively.
func NewDetector(sets []PatternSet, platforms []Platform) (*Detector, error) {
	d := &Detector{}
	for _, s := range sets {
		cs := compiledSet{feature: s.Feature}
		for _, p := range s.Include {
			re, err := compile(p)
			if err != nil {
				return nil, fmt.Errorf("feature %s include: %w", s.Feature, err)
			}
			cs.include = append(cs.include, re)
		}
		for _, p := range s.Exclude {
			re, err := compile(p)
			if err != nil {
				return nil, fmt.Errorf("feature %s exclude: %w", s.Feature, err)
			}
			cs.exclude = append(cs.exclude, re)
		}
		d.sets = append(d.sets, cs)
	}
	for _, p := range platforms {
		re, err := compile(p.Pattern)
		if err != nil {
			return nil, fmt.Errorf("platform %s: %w", p.Name, err)
		}
		d.platforms = append(d.platforms, compiledPlatform{name: p.Name, re: re})
	}
	return d, nil
}

// DefaultDetector returns a detector built from the default pattern sets.
func DefaultDetector() *Detector {
	d, err := NewDetector(DefaultPatternSets, DefaultPlatforms)
	if err != nil {
		panic(err)
	}
	return d
}

// Detect returns the features present in text.
func (d *Detector) Detect(text string) model.DetectedFeatures {
	found := make(map[Feature]bool, len(d.sets))
	for _, s := range d.sets {
		if s.match(text) {
			found[s.feature] = true
		}
	}

	platforms := []string{}
	for _, p := range d.platforms {
		if p.re.MatchString(text) {
			platforms = append(platforms, p.name)
		}
	}
	sort.Strings(platforms)

	return model.DetectedFeatures{
		Reservation:       found[Reservation],
		OnlineOrdering:    found[OnlineOrdering],
		PrivateDining:     found[PrivateDining],
		Catering:          found[Catering],
		HappyHour:         found[HappyHour],
		DeliveryPlatforms: platforms,
	}
}

// match applies include-OR / exclude-veto logic. A set without include
// patterns never matches.
func (s compiledSet) match(text string) bool {
	for _, re := range s.exclude {
		if re.MatchString(text) {
			return false
		}
	}
	for _, re := range s.include {
		if re.MatchString(text) {
			return true
		}
	}
	return false
}

func compile(pattern string) (*regexp.Regexp, error) {
	re, err := regexp.Compile("(?i)" + pattern)
	if err != nil {
		return nil, fmt.Errorf("invalid regex: %w", err)
	}
	return re, nil
}

// ValidateRegex checks whether a pattern is a valid regular expression.
func ValidateRegex(pattern string) error {
	_, err := compile(pattern)
	return err
}
