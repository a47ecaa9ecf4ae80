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

// MetaDetails loads the full MetaItem (videos included) for one selected
// id from the first installed addon declaring meta support for it (the
// addon.AggrAllOfResource plan, addon-install-order preference, the same
// single-winner shape pkg/player's meta load uses). A later selection
// supersedes an in-flight one; the stale result is discarded on arrival.
type MetaDetails struct {
	Selected stremio.ResourceRequest
	Content  loadable.Cell[stremio.MetaItem]

	addons []stremio.Descriptor
	env    env.Env
	logger *zap.Logger
}

func NewMetaDetails(e env.Env, logger *zap.Logger) *MetaDetails {
	return &MetaDetails{env: e, logger: logger}
}

// ActionLoadMetaDetails selects id/type, planning across every
// installed addon supporting the meta resource for it.
type ActionLoadMetaDetails struct {
	Type   string
	ID     string
	Addons []stremio.Descriptor
}

type internalMetaDetailsResult struct {
	request stremio.ResourceRequest
	value   stremio.MetaItem
	empty   bool
	err     error
}

func (m *MetaDetails) Update(msg effect.Msg) effect.Effects {
	switch t := msg.(type) {
	case ActionLoadMetaDetails:
		return m.load(t)
	case internalMetaDetailsResult:
		m.Content.Completed(t.request, t.value, t.empty, t.err)
		return effect.None
	default:
		return effect.None
	}
}

func (m *MetaDetails) load(a ActionLoadMetaDetails) effect.Effects {
	m.addons = a.Addons
	path := stremio.ResourcePath{Resource: "meta", Type: a.Type, ID: a.ID}
	plan := addon.Plan(m.addons, addon.AggrRequest{Kind: addon.AggrAllOfResource, Path: path})
	if len(plan) == 0 {
		return effect.None
	}

	req := plan[0]
	if !m.Content.Requested(req) {
		return effect.None
	}
	m.Selected = req
	return effect.Future1(m.fetchFuture(req))
}

func (m *MetaDetails) fetchFuture(req stremio.ResourceRequest) effect.Future {
	return func(ctx context.Context) effect.Msg {
		resp, err := addon.NewInterface(m.env, req.Base).Resource(ctx, req.Path)
		if err != nil {
			return internalMetaDetailsResult{request: req, err: err}
		}
		if resp.Kind != stremio.ResponseKindMeta || resp.Meta == nil {
			return internalMetaDetailsResult{request: req, empty: true}
		}
		return internalMetaDetailsResult{request: req, value: *resp.Meta}
	}
}
