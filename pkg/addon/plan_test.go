package addon

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/aggrecore/core/pkg/stremio"
)

func addonWithCatalog(transportURL, typ, id string, extra ...stremio.ExtraProp) stremio.Descriptor {
	return stremio.Descriptor{
		TransportURL: transportURL,
		Manifest: stremio.Manifest{
			Catalogs: []stremio.ManifestCatalog{{Type: typ, ID: id, Extra: extra}},
		},
	}
}

func TestPlanAllCatalogsFiltersByTypeAndExtra(t *testing.T) {
	installed := []stremio.Descriptor{
		addonWithCatalog("a", "movie", "top"),
		addonWithCatalog("b", "series", "top", stremio.ExtraProp{Name: "search", IsRequired: true}),
	}

	plan := Plan(installed, AggrRequest{Kind: AggrAllCatalogs, Type: "movie"})
	assert.Len(t, plan, 1)
	assert.Equal(t, "a", plan[0].Base)

	plan = Plan(installed, AggrRequest{Kind: AggrAllCatalogs, Type: "series"})
	assert.Empty(t, plan, "required extra 'search' not provided, catalog is ineligible")

	plan = Plan(installed, AggrRequest{
		Kind:  AggrAllCatalogs,
		Type:  "series",
		Extra: []stremio.ExtraValue{{Name: "search", Value: "foo"}},
	})
	assert.Len(t, plan, 1)
	assert.Equal(t, "b", plan[0].Base)
}

func TestPlanPreservesInstallOrder(t *testing.T) {
	installed := []stremio.Descriptor{
		addonWithCatalog("second", "movie", "top"),
		addonWithCatalog("first", "movie", "top"),
	}
	plan := Plan(installed, AggrRequest{Kind: AggrAllCatalogs, Type: "movie"})
	assert.Equal(t, []string{"second", "first"}, []string{plan[0].Base, plan[1].Base})
}

func TestPlanFromAddonSingleton(t *testing.T) {
	installed := []stremio.Descriptor{
		{TransportURL: "a", Manifest: stremio.Manifest{}},
		{TransportURL: "b", Manifest: stremio.Manifest{}},
	}
	path := stremio.ResourcePath{Resource: "meta", Type: "movie", ID: "tt1"}
	plan := Plan(installed, AggrRequest{Kind: AggrFromAddon, TransportURL: "b", Path: path})
	assert.Equal(t, []stremio.ResourceRequest{{Base: "b", Path: path}}, plan)

	plan = Plan(installed, AggrRequest{Kind: AggrFromAddon, TransportURL: "missing", Path: path})
	assert.Empty(t, plan)
}

func TestPlanAllOfResourceRespectsManifestSupport(t *testing.T) {
	installed := []stremio.Descriptor{
		{TransportURL: "supports", Manifest: stremio.Manifest{
			Resources: []stremio.ManifestResource{{Name: "meta", Types: []string{"movie"}}},
			Types:     []string{"movie"},
		}},
		{TransportURL: "no-meta", Manifest: stremio.Manifest{
			Resources: []stremio.ManifestResource{{Name: "stream"}},
		}},
	}
	path := stremio.ResourcePath{Resource: "meta", Type: "movie", ID: "tt1"}
	plan := Plan(installed, AggrRequest{Kind: AggrAllOfResource, Path: path})
	assert.Len(t, plan, 1)
	assert.Equal(t, "supports", plan[0].Base)
}
