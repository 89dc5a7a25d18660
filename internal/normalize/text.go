// Package normalize converts raw provider payloads into canonical snapshots.
//
// Every function here is pure and total: malformed or missing input degrades
// to nil or empty values instead of returning an error.
package normalize

import (
	"math"
	"regexp"
	"strconv"
	"strings"

	"rivalwatch/internal/diff"
)

var (
	imageRe      = regexp.MustCompile(`!\[([^\]]*)\]\([^)]*\)`)
	linkRe       = regexp.MustCompile(`\[([^\]]*)\]\([^)]*\)`)
	autolinkRe   = regexp.MustCompile(`<(https?://[^>\s]+)>`)
	htmlTagRe    = regexp.MustCompile(`<[^>]*>`)
	headerRe     = regexp.MustCompile(`(?m)^[ \t]{0,3}#{1,6}[ \t]*`)
	listMarkerRe = regexp.MustCompile(`(?m)^[ \t]*(?:[-*+]|\d+[.)])[ \t]+`)
	quoteRe      = regexp.MustCompile(`(?m)^[ \t]*>[ \t]?`)
	strongRe     = regexp.MustCompile(`\*\*([^*]+)\*\*`)
	strongUndRe  = regexp.MustCompile(`__([^_]+)__`)
	emRe         = regexp.MustCompile(`\*([^*\s][^*]*)\*`)
	emUndRe      = regexp.MustCompile(`(^|[^\w])_([^_]+)_([^\w]|$)`)
	strikeRe     = regexp.MustCompile(`~~([^~]+)~~`)
	codeRe       = regexp.MustCompile("`([^`]*)`")
	whitespaceRe = regexp.MustCompile(`\s+`)
	priceRe      = regexp.MustCompile(`\d{1,3}(?:,\d{3})+(?:\.\d+)?|\d+(?:\.\d+)?`)
)

// CleanText strips markdown emphasis, links, headers and list markers and
// collapses whitespace. The same input always yields the same output.
func CleanText(s string) string {
	if s == "" {
		return ""
	}
	s = imageRe.ReplaceAllString(s, "$1")
	s = linkRe.ReplaceAllString(s, "$1")
	s = autolinkRe.ReplaceAllString(s, "$1")
	s = htmlTagRe.ReplaceAllString(s, " ")
	s = headerRe.ReplaceAllString(s, "")
	s = listMarkerRe.ReplaceAllString(s, "")
	s = quoteRe.ReplaceAllString(s, "")
	s = strongRe.ReplaceAllString(s, "$1")
	s = strongUndRe.ReplaceAllString(s, "$1")
	s = emRe.ReplaceAllString(s, "$1")
	s = emUndRe.ReplaceAllString(s, "$1$2$3")
	s = strikeRe.ReplaceAllString(s, "$1")
	s = codeRe.ReplaceAllString(s, "$1")
	s = whitespaceRe.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}

// NormalizeKey is the case- and punctuation-insensitive key used to dedup
// menu categories and items.
func NormalizeKey(s string) string {
	return diff.Canonical(s)
}

// Money rounds v to cents. Non-finite values yield nil.
func Money(v float64) *float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	r := diff.Round2(v)
	return &r
}

// ParsePrice extracts the first amount from a displayed price such as
// "$12.50" or "1,250". Text without a number yields nil.
func ParsePrice(s string) *float64 {
	m := priceRe.FindString(s)
	if m == "" {
		return nil
	}
	v, err := strconv.ParseFloat(strings.ReplaceAll(m, ",", ""), 64)
	if err != nil {
		return nil
	}
	return Money(v)
}
