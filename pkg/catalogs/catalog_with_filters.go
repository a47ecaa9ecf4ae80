package catalogs

import (
	"context"
	"strconv"

	"go.uber.org/zap"

	"github.com/aggrecore/core/pkg/addon"
	"github.com/aggrecore/core/pkg/effect"
	"github.com/aggrecore/core/pkg/env"
	"github.com/aggrecore/core/pkg/loadable"
	"github.com/aggrecore/core/pkg/stremio"
)

const extraSkip = "skip"
const catalogPageSize = 100

// CatalogWithFilters holds one addon/catalog's paged result set plus the
// next-page request a caller can dispatch to load more.
type CatalogWithFilters struct {
	Selected stremio.ResourceRequest
	Content  loadable.Cell[[]stremio.MetaItemPreview]
	HasMore  bool

	appending bool
	env       env.Env
	logger    *zap.Logger
}

func NewCatalogWithFilters(e env.Env, logger *zap.Logger) *CatalogWithFilters {
	return &CatalogWithFilters{env: e, logger: logger}
}

// ActionLoadCatalogWithFilters loads req as this model's selection,
// superseding whatever was loaded before it (stale results for an
// earlier selection are discarded).
type ActionLoadCatalogWithFilters struct {
	Request stremio.ResourceRequest
}

// ActionLoadNextPage re-issues the current selection with an advanced
// skip extra, appended rather than superseding so the UI can render an
// infinite-scroll list.
type ActionLoadNextPage struct{}

type internalCatalogWithFiltersResult struct {
	request stremio.ResourceRequest
	value   []stremio.MetaItemPreview
	empty   bool
	err     error
}

func (c *CatalogWithFilters) Update(msg effect.Msg) effect.Effects {
	switch m := msg.(type) {
	case ActionLoadCatalogWithFilters:
		return c.load(m.Request)
	case ActionLoadNextPage:
		return c.loadNextPage()
	case internalCatalogWithFiltersResult:
		return c.complete(m)
	default:
		return effect.None
	}
}

func (c *CatalogWithFilters) load(req stremio.ResourceRequest) effect.Effects {
	if !c.Content.Requested(req) {
		return effect.None
	}
	c.Selected = req
	c.HasMore = false
	c.appending = false
	return effect.Future1(c.fetchFuture(req))
}

func (c *CatalogWithFilters) loadNextPage() effect.Effects {
	if c.Content.Content.State != loadable.StateReady || !c.HasMore {
		return effect.None
	}
	skip := len(c.Content.Content.Value)
	next := withSkip(c.Selected, skip)
	loaded := c.Content.Content.Value
	if !c.Content.Requested(next) {
		return effect.None
	}
	// Requested resets the cell to Loading with no value; keep the pages
	// already loaded on it so complete can append the next page to them.
	c.Content.Content.Value = loaded
	c.Selected = next
	c.appending = true
	return effect.Future1(c.fetchFuture(next))
}

func withSkip(req stremio.ResourceRequest, skip int) stremio.ResourceRequest {
	extra := make([]stremio.ExtraValue, 0, len(req.Path.Extra)+1)
	for _, e := range req.Path.Extra {
		if e.Name != extraSkip {
			extra = append(extra, e)
		}
	}
	extra = append(extra, stremio.ExtraValue{Name: extraSkip, Value: strconv.Itoa(skip)})
	req.Path.Extra = extra
	return req
}

func (c *CatalogWithFilters) fetchFuture(req stremio.ResourceRequest) effect.Future {
	return func(ctx context.Context) effect.Msg {
		resp, err := addon.NewInterface(c.env, req.Base).Resource(ctx, req.Path)
		if err != nil {
			return internalCatalogWithFiltersResult{request: req, err: err}
		}
		return internalCatalogWithFiltersResult{request: req, value: resp.Metas, empty: resp.IsEmpty()}
	}
}

func (c *CatalogWithFilters) complete(m internalCatalogWithFiltersResult) effect.Effects {
	isAppend := c.appending
	previous := c.Content.Content.Value

	if isAppend && m.empty && m.err == nil {
		// An empty next page just means pagination is exhausted, not
		// that the catalog is empty; keep the items already loaded
		// instead of letting them get replaced with ErrEmptyContent.
		if !c.Content.Completed(m.request, previous, false, nil) {
			return effect.None
		}
		c.HasMore = false
		return effect.None
	}

	if !c.Content.Completed(m.request, m.value, m.empty, m.err) {
		return effect.None
	}

	c.HasMore = len(m.value) >= catalogPageSize
	if isAppend && c.Content.Content.State == loadable.StateReady {
		c.Content.Content.Value = append(append([]stremio.MetaItemPreview{}, previous...), m.value...)
	}
	return effect.None
}
