// Package fetcher downloads event calendars published as RSS or Atom.
package fetcher

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"

	"github.com/mmcdole/gofeed"
	"golang.org/x/time/rate"

	"rivalwatch/internal/model"
	"rivalwatch/internal/normalize"
)

const maxBodySize = 5 * 1024 * 1024

// HTTPClient is the interface for performing HTTP requests.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// Fetcher downloads and parses event feeds. Requests to the same host are
// spaced by a shared limiter.
type Fetcher struct {
	client HTTPClient
	limit  rate.Limit

	mu       sync.Mutex
	limiters map[string]*rate.Limiter
}

// New creates a Fetcher allowing rps requests per second to each host. A
// non-positive rps disables limiting.
func New(client HTTPClient, rps float64) *Fetcher {
	limit := rate.Inf
	if rps > 0 {
		limit = rate.Limit(rps)
	}
	return &Fetcher{
		client:   client,
		limit:    limit,
		limiters: make(map[string]*rate.Limiter),
	}
}

func (f *Fetcher) limiter(host string) *rate.Limiter {
	f.mu.Lock()
	defer f.mu.Unlock()
	l, ok := f.limiters[host]
	if !ok {
		l = rate.NewLimiter(f.limit, 1)
		f.limiters[host] = l
	}
	return l
}

// Fetch downloads and parses a feed from the given URL.
func (f *Fetcher) Fetch(ctx context.Context, rawURL string) (*gofeed.Feed, error) {
	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" {
		return nil, fmt.Errorf("invalid feed url %q", rawURL)
	}
	if err := f.limiter(strings.ToLower(u.Host)).Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", "RivalWatch/1.0")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http get: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}

	parser := gofeed.NewParser()
	feed, err := parser.ParseString(string(body))
	if err != nil {
		return nil, fmt.Errorf("parse feed: %w", err)
	}
	return feed, nil
}

// FetchEvents downloads every feed and merges their events into one
// snapshot. A feed that fails is returned as an error only when no feed
// succeeded.
func (f *Fetcher) FetchEvents(ctx context.Context, urls []string) (model.EventsSnapshot, error) {
	var events []model.NormalizedEvent
	var firstErr error
	ok := 0
	for _, u := range urls {
		feed, err := f.Fetch(ctx, u)
		if err != nil {
			if firstErr == nil {
				firstErr = fmt.Errorf("fetch %s: %w", u, err)
			}
			continue
		}
		ok++
		events = append(events, normalize.EventsFromFeed(feed).Events...)
	}
	if ok == 0 && firstErr != nil {
		return model.EventsSnapshot{}, firstErr
	}
	return normalize.BuildEventsSnapshot(events), nil
}
