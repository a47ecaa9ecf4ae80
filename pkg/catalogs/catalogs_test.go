package catalogs

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/aggrecore/core/pkg/env"
	"github.com/aggrecore/core/pkg/loadable"
	"github.com/aggrecore/core/pkg/stremio"
)

func installedAddon(transportURL string) stremio.Descriptor {
	return stremio.Descriptor{
		TransportURL: transportURL,
		Manifest: stremio.Manifest{
			ID: "addon1",
			Catalogs: []stremio.ManifestCatalog{
				{Type: "movie", ID: "top"},
			},
			Resources: []stremio.ManifestResource{{Name: "meta", Types: []string{"movie"}}},
		},
	}
}

func TestCatalogsWithExtraFetchesAcrossAddons(t *testing.T) {
	mem := env.NewMemory(time.Now())
	mem.FetchFn = func(_ context.Context, req env.Request) (int, []byte, error) {
		return 200, []byte(`{"metas":[{"id":"tt1","type":"movie","name":"A"}]}`), nil
	}

	c := NewCatalogsWithExtra(mem, zap.NewNop())
	eff := c.Update(ActionLoadCatalogsWithExtra{Type: "movie", Addons: []stremio.Descriptor{installedAddon("http://addon1")}})
	require.Len(t, eff.Futures, 1)
	msg := eff.Futures[0](context.Background())
	c.Update(msg)

	results := c.Results.All()
	require.Len(t, results, 1)
}

func TestCatalogWithFiltersLoadAndNextPage(t *testing.T) {
	page := 0
	mem := env.NewMemory(time.Now())
	mem.FetchFn = func(_ context.Context, req env.Request) (int, []byte, error) {
		page++
		return 200, []byte(`{"metas":[{"id":"tt1","type":"movie","name":"A"}]}`), nil
	}

	c := NewCatalogWithFilters(mem, zap.NewNop())
	req := stremio.ResourceRequest{Base: "http://addon1", Path: stremio.ResourcePath{Resource: "catalog", Type: "movie", ID: "top"}}
	eff := c.Update(ActionLoadCatalogWithFilters{Request: req})
	msg := eff.Futures[0](context.Background())
	c.Update(msg)
	require.Equal(t, loadable.StateReady, c.Content.Content.State)
	require.Len(t, c.Content.Content.Value, 1)
	assert.False(t, c.HasMore)

	// A short first page leaves nothing to page into.
	eff = c.Update(ActionLoadNextPage{})
	assert.Empty(t, eff.Futures)
	assert.Equal(t, 1, page)
}

func TestCatalogWithFiltersEmptyNextPageKeepsLoadedItems(t *testing.T) {
	mem := env.NewMemory(time.Now())
	page := 0
	mem.FetchFn = func(_ context.Context, req env.Request) (int, []byte, error) {
		page++
		if page == 1 {
			items := "["
			for i := 0; i < catalogPageSize; i++ {
				if i > 0 {
					items += ","
				}
				items += `{"id":"tt` + string(rune('0'+i%10)) + `","type":"movie","name":"A"}`
			}
			items += "]"
			return 200, []byte(`{"metas":` + items + `}`), nil
		}
		return 200, []byte(`{"metas":[]}`), nil
	}

	c := NewCatalogWithFilters(mem, zap.NewNop())
	req := stremio.ResourceRequest{Base: "http://addon1", Path: stremio.ResourcePath{Resource: "catalog", Type: "movie", ID: "top"}}
	eff := c.Update(ActionLoadCatalogWithFilters{Request: req})
	c.Update(eff.Futures[0](context.Background()))
	require.Equal(t, loadable.StateReady, c.Content.Content.State)
	require.Len(t, c.Content.Content.Value, catalogPageSize)
	require.True(t, c.HasMore)

	eff = c.Update(ActionLoadNextPage{})
	require.Len(t, eff.Futures, 1)
	c.Update(eff.Futures[0](context.Background()))

	assert.Equal(t, loadable.StateReady, c.Content.Content.State)
	assert.Len(t, c.Content.Content.Value, catalogPageSize)
	assert.False(t, c.HasMore)
}

func TestMetaDetailsStaleSelectionDiscarded(t *testing.T) {
	mem := env.NewMemory(time.Now())
	mem.FetchFn = func(_ context.Context, req env.Request) (int, []byte, error) {
		return 200, []byte(`{"meta":{"id":"B","type":"movie","name":"B"}}`), nil
	}

	m := NewMetaDetails(mem, zap.NewNop())
	addons := []stremio.Descriptor{installedAddon("http://addon1")}
	effA := m.Update(ActionLoadMetaDetails{Type: "movie", ID: "A", Addons: addons})
	require.Len(t, effA.Futures, 1)

	m.Update(ActionLoadMetaDetails{Type: "movie", ID: "B", Addons: addons})

	msg := effA.Futures[0](context.Background())
	eff := m.Update(msg)
	assert.Equal(t, 0, len(eff.Msgs))
	assert.Equal(t, "B", m.Selected.Path.ID)
}

func TestAddonDetailsInstalledIsSynchronous(t *testing.T) {
	mem := env.NewMemory(time.Now())
	a := NewAddonDetails(mem, zap.NewNop())
	desc := installedAddon("http://addon1")
	eff := a.Update(ActionLoadInstalledAddon{Descriptor: desc})
	assert.Empty(t, eff.Futures)
	require.Equal(t, loadable.StateReady, a.Manifest.State)
	assert.Equal(t, "addon1", a.Manifest.Value.ID)
}

func TestLibraryWithFiltersExcludesRemoved(t *testing.T) {
	bucket := stremio.NewLibraryBucket("")
	bucket.Items["a"] = stremio.LibraryItem{ID: "a", Type: "movie", Name: "A", MTime: time.Now()}
	bucket.Items["b"] = stremio.LibraryItem{ID: "b", Type: "movie", Name: "B", Removed: true, MTime: time.Now()}

	f := &LibraryWithFilters{Type: "movie"}
	f.Recompute(bucket)
	require.Len(t, f.Items, 1)
	assert.Equal(t, "a", f.Items[0].ID)
}

func TestLibraryByTypeGroups(t *testing.T) {
	bucket := stremio.NewLibraryBucket("")
	bucket.Items["a"] = stremio.LibraryItem{ID: "a", Type: "movie", MTime: time.Now()}
	bucket.Items["b"] = stremio.LibraryItem{ID: "b", Type: "series", MTime: time.Now()}

	g := &LibraryByType{}
	g.Recompute(bucket)
	assert.Len(t, g.Types["movie"], 1)
	assert.Len(t, g.Types["series"], 1)
}
