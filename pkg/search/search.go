// Package search implements the local autocompletion feature: fetch
// Cinemeta's feed.json catalog of searchable items, build an in-memory
// scored index, and serve autocomplete queries against it. A refresh
// swaps the index atomically so a query in flight always sees either
// the old or the new index, never a half-built one.
package search

import (
	"bytes"
	"context"
	"encoding/gob"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/VictoriaMetrics/fastcache"

	"github.com/aggrecore/core/pkg/env"
)

// FeedCatalogID is the well-known feed resource Cinemeta serves its
// searchable-items list from, per original_source's
// CINEMETA_FEED_CATALOG_ID constant.
const FeedCatalogID = "feed.json"

// DefaultFeedURL is the Cinemeta catalogs host feed.json lives under.
const DefaultFeedURL = "https://cinemeta-catalogs.strem.io/top/" + FeedCatalogID

// feedCacheTTL bounds how long a fetched feed is trusted before a
// refresh re-fetches it, mirroring pkg/cinemata's 30-day movie-entry TTL
// but scaled down to the feed's much higher churn.
const feedCacheTTL = 6 * time.Hour

const feedCacheKey = "feed"

// Item is one entry of the Cinemeta feed, per original_source's
// Searchable struct.
type Item struct {
	ID          string  `json:"id"`
	Type        string  `json:"type"`
	Name        string  `json:"name"`
	Poster      string  `json:"poster,omitempty"`
	ImdbRating  *float64 `json:"imdbRating,omitempty"`
	Popularity  *uint64  `json:"popularity,omitempty"`
	ReleaseInfo string  `json:"releaseInfo,omitempty"`
}

type feedCacheEntry struct {
	Created time.Time
	Items   []Item
}

// Client fetches the Cinemeta feed through an Env, caching the raw
// result in a fastcache.Cache the way pkg/cinemata caches per-movie
// lookups, here keyed by a single constant key since the whole feed is
// one cacheable unit, not a per-id one.
type Client struct {
	env     env.Env
	feedURL string
	cache   *fastcache.Cache
}

func NewClient(e env.Env) *Client {
	return &Client{env: e, feedURL: DefaultFeedURL, cache: fastcache.New(8 * 1024 * 1024)}
}

func NewClientWithFeedURL(e env.Env, feedURL string) *Client {
	return &Client{env: e, feedURL: feedURL, cache: fastcache.New(8 * 1024 * 1024)}
}

// FetchItems returns the feed's items, serving a cached copy if it's
// younger than feedCacheTTL.
func (c *Client) FetchItems(ctx context.Context) ([]Item, error) {
	if cached, ok := c.cache.HasGet(nil, []byte(feedCacheKey)); ok {
		entry, err := decodeFeedCacheEntry(cached)
		if err == nil && c.env.Now().Sub(entry.Created) < feedCacheTTL {
			return entry.Items, nil
		}
	}

	status, body, err := c.env.Fetch(ctx, env.Request{Method: "GET", URL: c.feedURL})
	if err != nil {
		return nil, fmt.Errorf("search: fetching feed: %w", err)
	}
	if status < 200 || status >= 300 {
		return nil, fmt.Errorf("search: feed fetch returned status %d", status)
	}

	var items []Item
	if err := json.Unmarshal(body, &items); err != nil {
		return nil, fmt.Errorf("search: decoding feed: %w", err)
	}

	if encoded, err := encodeFeedCacheEntry(feedCacheEntry{Created: c.env.Now(), Items: items}); err == nil {
		c.cache.Set([]byte(feedCacheKey), encoded)
	}

	return items, nil
}

func encodeFeedCacheEntry(entry feedCacheEntry) ([]byte, error) {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(entry); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func decodeFeedCacheEntry(data []byte) (feedCacheEntry, error) {
	var entry feedCacheEntry
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(&entry); err != nil {
		return feedCacheEntry{}, err
	}
	return entry, nil
}

// normalizeName lowercases and trims for case-insensitive substring
// matching, the stdlib scorer justified in DESIGN.md (no fuzzy-match
// library appears anywhere in the retrieved corpus).
func normalizeName(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
