package catalogs

import (
	"sort"
	"time"

	"github.com/aggrecore/core/pkg/stremio"
)

// LibrarySort discriminates the orderings LibraryWithFilters/LibraryByType
// support.
type LibrarySort int

const (
	SortLastWatched LibrarySort = iota
	SortCTime
	SortMTime
	SortName
)

// LibraryWithFilters is a pure, synchronous projection over Ctx's
// LibraryBucket. No addon fetch is involved, so unlike the catalog
// models above it has no loadable state: it recomputes from the bucket
// every time the selection changes. Type == "" means every type.
type LibraryWithFilters struct {
	Type  string
	Sort  LibrarySort
	Items []stremio.LibraryItem
}

// Recompute filters bucket's items by Type (when set), excluding removed
// items, and sorts per Sort.
func (f *LibraryWithFilters) Recompute(bucket stremio.LibraryBucket) {
	items := make([]stremio.LibraryItem, 0, len(bucket.Items))
	for _, item := range bucket.Items {
		if item.Removed {
			continue
		}
		if f.Type != "" && item.Type != f.Type {
			continue
		}
		items = append(items, item)
	}
	sortLibraryItems(items, f.Sort)
	f.Items = items
}

// LibraryByType groups every non-removed item by its Type, each group
// sorted by Sort: the per-type shelf view.
type LibraryByType struct {
	Sort  LibrarySort
	Types map[string][]stremio.LibraryItem
}

func (b *LibraryByType) Recompute(bucket stremio.LibraryBucket) {
	groups := make(map[string][]stremio.LibraryItem)
	for _, item := range bucket.Items {
		if item.Removed {
			continue
		}
		groups[item.Type] = append(groups[item.Type], item)
	}
	for t := range groups {
		sortLibraryItems(groups[t], b.Sort)
	}
	b.Types = groups
}

func sortLibraryItems(items []stremio.LibraryItem, by LibrarySort) {
	sort.Slice(items, func(i, j int) bool {
		a, b := items[i], items[j]
		switch by {
		case SortCTime:
			return ctimeOf(a).After(ctimeOf(b))
		case SortMTime:
			return a.MTime.After(b.MTime)
		case SortName:
			return a.Name < b.Name
		default: // SortLastWatched
			return lastWatchedOf(a).After(lastWatchedOf(b))
		}
	})
}

func ctimeOf(item stremio.LibraryItem) time.Time {
	if item.CTime != nil {
		return *item.CTime
	}
	return time.Time{}
}

func lastWatchedOf(item stremio.LibraryItem) time.Time {
	if item.State.LastWatched != nil {
		return *item.State.LastWatched
	}
	return item.MTime
}
