// Package catalogs implements the browse/discover feature models that
// don't warrant their own dedicated state package: CatalogsWithExtra (an
// aggregate catalog query across every installed addon), CatalogWithFilters
// (one addon/catalog pair with a filter selection, yielding a next-page
// selector), and the two pure library views LibraryWithFilters/LibraryByType.
// Each is a thin typed instantiation of pkg/loadable's generic cell/collection
// machinery plus pkg/addon's planner.
package catalogs

import (
	"context"

	"go.uber.org/zap"

	"github.com/aggrecore/core/pkg/addon"
	"github.com/aggrecore/core/pkg/effect"
	"github.com/aggrecore/core/pkg/env"
	"github.com/aggrecore/core/pkg/loadable"
	"github.com/aggrecore/core/pkg/stremio"
)

// CatalogsWithExtra aggregates one catalog request across every
// installed addon that declares support for it (addon.AggrAllCatalogs),
// e.g. the "discover" surface's per-genre/search rows.
type CatalogsWithExtra struct {
	Type    string
	Extra   []stremio.ExtraValue
	Results *loadable.Collection[[]stremio.MetaItemPreview]

	addons []stremio.Descriptor
	env    env.Env
	logger *zap.Logger
}

func NewCatalogsWithExtra(e env.Env, logger *zap.Logger) *CatalogsWithExtra {
	return &CatalogsWithExtra{Results: loadable.NewCollection[[]stremio.MetaItemPreview](), env: e, logger: logger}
}

// ActionLoadCatalogsWithExtra (re)plans and fetches every matching
// catalog across addons.
type ActionLoadCatalogsWithExtra struct {
	Type   string
	Extra  []stremio.ExtraValue
	Addons []stremio.Descriptor
}

type internalCatalogsResult struct {
	request stremio.ResourceRequest
	value   []stremio.MetaItemPreview
	empty   bool
	err     error
}

func (c *CatalogsWithExtra) Update(msg effect.Msg) effect.Effects {
	switch m := msg.(type) {
	case ActionLoadCatalogsWithExtra:
		return c.load(m)
	case internalCatalogsResult:
		c.Results.Complete(m.request, m.value, m.empty, m.err)
		return effect.None
	default:
		return effect.None
	}
}

func (c *CatalogsWithExtra) load(m ActionLoadCatalogsWithExtra) effect.Effects {
	c.Type = m.Type
	c.Extra = m.Extra
	c.addons = m.Addons

	plan := addon.Plan(c.addons, addon.AggrRequest{Kind: addon.AggrAllCatalogs, Type: m.Type, Extra: m.Extra})
	var futures []effect.Future
	for _, req := range c.Results.Plan(plan, false) {
		futures = append(futures, c.fetchFuture(req))
	}
	return effect.Effects{Futures: futures}
}

func (c *CatalogsWithExtra) fetchFuture(req stremio.ResourceRequest) effect.Future {
	return func(ctx context.Context) effect.Msg {
		resp, err := addon.NewInterface(c.env, req.Base).Resource(ctx, req.Path)
		if err != nil {
			return internalCatalogsResult{request: req, err: err}
		}
		return internalCatalogsResult{request: req, value: resp.Metas, empty: resp.IsEmpty()}
	}
}
