package notifications

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aggrecore/core/pkg/addon"
	"github.com/aggrecore/core/pkg/stremio"
)

func lib(items ...stremio.LibraryItem) stremio.LibraryBucket {
	b := stremio.NewLibraryBucket("")
	for _, i := range items {
		b.Items[i.ID] = i
	}
	return b
}

func TestPlanSelectsEligibleItemsOrderedByMTime(t *testing.T) {
	older := stremio.LibraryItem{ID: "tt1", Type: "series", MTime: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)}
	newer := stremio.LibraryItem{ID: "tt2", Type: "series", MTime: time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)}
	ineligible := stremio.LibraryItem{ID: "tt3", Type: "movie", MTime: time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)}

	ids, _ := Plan(lib(older, newer, ineligible), nil)
	assert.Equal(t, []string{"tt2", "tt1"}, ids)
}

func TestPlanBuildsCatalogRequestAcrossSupportingAddons(t *testing.T) {
	item := stremio.LibraryItem{ID: "tt1", Type: "series", MTime: time.Now()}
	addons := []stremio.Descriptor{
		{
			TransportURL: "https://cinemeta.example/manifest.json",
			Manifest: stremio.Manifest{
				Catalogs: []stremio.ManifestCatalog{
					{Type: "series", ID: "last-videos", Extra: []stremio.ExtraProp{{Name: "lastVideosIds"}}},
				},
			},
		},
	}

	_, requests := Plan(lib(item), addons)
	require.Len(t, requests, 1)
	assert.Equal(t, "tt1", requests[0].Path.ExtraMap()["lastVideosIds"])
}

func TestReduceKeepsVideosReleasedAfterLastWatchedAndNotAfterNow(t *testing.T) {
	now := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)
	lastWatched := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	item := stremio.LibraryItem{
		ID: "tt1", Type: "series",
		State: stremio.LibraryItemState{LastWatched: &lastWatched},
	}

	results := []addon.PlanResult{
		{
			Request: stremio.ResourceRequest{Base: "https://a.example"},
			Response: stremio.ResourceResponse{
				Kind: stremio.ResponseKindMetasDetailed,
				MetasDetailed: []stremio.MetaItem{
					{
						MetaItemPreview: stremio.MetaItemPreview{ID: "tt1", Type: "series"},
						Videos: []stremio.Video{
							{ID: "tt1:1:1", Released: "2025-12-01T00:00:00Z"}, // before last watched, drop
							{ID: "tt1:1:2", Released: "2026-03-01T00:00:00Z"}, // eligible
							{ID: "tt1:1:3", Released: "2027-01-01T00:00:00Z"}, // after now, drop
						},
					},
				},
			},
		},
	}

	bucket := Reduce("", now, []string{"tt1"}, lib(item), results)
	require.Contains(t, bucket.Items, "tt1")
	require.Len(t, bucket.Items["tt1"], 1)
	assert.Contains(t, bucket.Items["tt1"], "tt1:1:2")
}

func TestReduceDropsMetaWithNoEligibleVideos(t *testing.T) {
	now := time.Now()
	item := stremio.LibraryItem{ID: "tt1", Type: "series"}
	results := []addon.PlanResult{
		{
			Response: stremio.ResourceResponse{
				Kind: stremio.ResponseKindMetasDetailed,
				MetasDetailed: []stremio.MetaItem{
					{MetaItemPreview: stremio.MetaItemPreview{ID: "tt1"}, Videos: nil},
				},
			},
		},
	}
	bucket := Reduce("", now, []string{"tt1"}, lib(item), results)
	assert.NotContains(t, bucket.Items, "tt1")
}

func TestReducePrefersFirstAddonOrderMatch(t *testing.T) {
	now := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)
	item := stremio.LibraryItem{ID: "tt1", Type: "series"}

	results := []addon.PlanResult{
		{
			Response: stremio.ResourceResponse{
				Kind: stremio.ResponseKindMetasDetailed,
				MetasDetailed: []stremio.MetaItem{
					{MetaItemPreview: stremio.MetaItemPreview{ID: "tt1"}, Videos: []stremio.Video{
						{ID: "from-first-addon", Released: "2026-01-01T00:00:00Z"},
					}},
				},
			},
		},
		{
			Response: stremio.ResourceResponse{
				Kind: stremio.ResponseKindMetasDetailed,
				MetasDetailed: []stremio.MetaItem{
					{MetaItemPreview: stremio.MetaItemPreview{ID: "tt1"}, Videos: []stremio.Video{
						{ID: "from-second-addon", Released: "2026-01-01T00:00:00Z"},
					}},
				},
			},
		},
	}

	bucket := Reduce("", now, []string{"tt1"}, lib(item), results)
	require.Contains(t, bucket.Items, "tt1")
	assert.Contains(t, bucket.Items["tt1"], "from-first-addon")
	assert.NotContains(t, bucket.Items["tt1"], "from-second-addon")
}

func TestDismissItemRemovesMetaEntry(t *testing.T) {
	bucket := stremio.NewNotificationsBucket("", time.Now())
	bucket.Items["tt1"] = map[string]stremio.NotificationItem{"v1": {MetaID: "tt1", VideoID: "v1"}}

	DismissItem(bucket, "tt1")
	assert.NotContains(t, bucket.Items, "tt1")
}
