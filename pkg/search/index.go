package search

import (
	"math"
	"sort"
	"strings"
)

// IndexOptions tunes the per-item score boost, grounded on
// original_source's IndexOptions{imdb_rating_weight, popularity_weight}
// and DEFAULT_SCORE_THRESHOLD.
type IndexOptions struct {
	ImdbRatingWeight float64
	PopularityWeight float64
	ScoreThreshold   float64
}

// DefaultIndexOptions mirrors the weights/threshold original_source ships
// with (exposed there as localsearch::DEFAULT_SCORE_THRESHOLD, not
// otherwise documented beyond its use).
func DefaultIndexOptions() IndexOptions {
	return IndexOptions{ImdbRatingWeight: 1, PopularityWeight: 1, ScoreThreshold: 1.05}
}

type scoredItem struct {
	item  Item
	name  string
	boost float64
}

// Index is an immutable, already-scored snapshot of the feed, swapped in
// whole by a refresh rather than mutated in place.
type Index struct {
	items []scoredItem
	opts  IndexOptions
}

// BuildIndex computes each item's boost = exp(normalizedRating*w) *
// exp(normalizedPopularity*w), normalizing against the feed's own max
// rating/popularity the way original_source's score computer does.
func BuildIndex(items []Item, opts IndexOptions) *Index {
	var maxRating float64
	var maxPopularity uint64
	for _, it := range items {
		if it.ImdbRating != nil && *it.ImdbRating > maxRating {
			maxRating = *it.ImdbRating
		}
		if it.Popularity != nil && *it.Popularity > maxPopularity {
			maxPopularity = *it.Popularity
		}
	}
	if maxPopularity == 0 {
		maxPopularity = 1
	}

	scored := make([]scoredItem, len(items))
	for i, it := range items {
		ratingBoost := 1.0
		if it.ImdbRating != nil && maxRating > 0 {
			ratingBoost = math.Exp(*it.ImdbRating / maxRating * opts.ImdbRatingWeight)
		}
		popBoost := 1.0
		if it.Popularity != nil {
			popBoost = math.Exp(float64(*it.Popularity)/float64(maxPopularity)*opts.PopularityWeight)
		}
		scored[i] = scoredItem{item: it, name: normalizeName(it.Name), boost: ratingBoost * popBoost}
	}
	return &Index{items: scored, opts: opts}
}

// Result pairs a matched Item with the score it was ranked by.
type Result struct {
	Item  Item
	Score float64
}

// Autocomplete returns every item whose name contains query
// case-insensitively and whose boost clears the index's score
// threshold, ranked highest-boost first and capped to limit.
func (idx *Index) Autocomplete(query string, limit int) []Result {
	q := normalizeName(query)
	if q == "" {
		return nil
	}

	var results []Result
	for _, s := range idx.items {
		if !strings.Contains(s.name, q) {
			continue
		}
		if s.boost < idx.opts.ScoreThreshold {
			continue
		}
		results = append(results, Result{Item: s.item, Score: s.boost})
	}

	sort.Slice(results, func(i, j int) bool { return results[i].Score > results[j].Score })
	if limit > 0 && len(results) > limit {
		results = results[:limit]
	}
	return results
}
