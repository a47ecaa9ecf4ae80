package player

import (
	"context"

	"github.com/aggrecore/core/pkg/addon"
	"github.com/aggrecore/core/pkg/effect"
	"github.com/aggrecore/core/pkg/loadable"
	"github.com/aggrecore/core/pkg/stremio"
)

// Update is Player's entire mutation surface, mirroring pkg/ctx's
// type-switch dispatcher.
func (p *Player) Update(msg effect.Msg) effect.Effects {
	switch m := msg.(type) {
	case ActionLoad:
		return p.load(m)
	case ActionUnload:
		return p.unload()
	case ActionTimeChanged:
		return p.timeChanged(m)
	case ActionEnded:
		return p.ended(m)
	case internalMetaResult:
		return p.completeMeta(m)
	case internalSubtitlesResult:
		return p.completeSubtitles(m)
	default:
		p.logger.Debug("player: unhandled message")
		return effect.None
	}
}

func (p *Player) load(m ActionLoad) effect.Effects {
	sel := m.Selected
	p.Selected = &sel
	p.addons = m.Addons
	p.bingeWatching = m.BingeWatching
	p.Meta = &loadable.Cell[stremio.MetaItem]{}
	p.Subtitles = loadable.NewCollection[[]stremio.Subtitle]()
	p.NextVideo = nil
	p.NextStream = nil

	var futures []effect.Future

	if sel.MetaRequest != nil {
		if p.Meta.Requested(*sel.MetaRequest) {
			futures = append(futures, p.fetchMetaFuture(*sel.MetaRequest))
		}
	}

	if sel.SubtitlesPath != nil {
		plan := addon.Plan(p.addons, addon.AggrRequest{Kind: addon.AggrAllOfResource, Path: *sel.SubtitlesPath})
		for _, req := range p.Subtitles.Plan(plan, false) {
			futures = append(futures, p.fetchSubtitlesFuture(req))
		}
	}

	return effect.Effects{Futures: futures}
}

func (p *Player) unload() effect.Effects {
	p.Selected = nil
	p.addons = nil
	p.Meta = &loadable.Cell[stremio.MetaItem]{}
	p.Subtitles = loadable.NewCollection[[]stremio.Subtitle]()
	p.NextVideo = nil
	p.NextStream = nil
	return effect.None
}

func (p *Player) fetchMetaFuture(req stremio.ResourceRequest) effect.Future {
	return func(ctx context.Context) effect.Msg {
		resp, err := addon.NewInterface(p.env, req.Base).Resource(ctx, req.Path)
		if err != nil {
			return internalMetaResult{request: req, err: err}
		}
		if resp.Kind != stremio.ResponseKindMeta || resp.Meta == nil {
			return internalMetaResult{request: req, empty: true}
		}
		return internalMetaResult{request: req, value: *resp.Meta}
	}
}

func (p *Player) fetchSubtitlesFuture(req stremio.ResourceRequest) effect.Future {
	return func(ctx context.Context) effect.Msg {
		resp, err := addon.NewInterface(p.env, req.Base).Resource(ctx, req.Path)
		if err != nil {
			return internalSubtitlesResult{request: req, err: err}
		}
		return internalSubtitlesResult{request: req, value: resp.Subtitles, empty: resp.IsEmpty()}
	}
}

func (p *Player) completeMeta(m internalMetaResult) effect.Effects {
	if !p.Meta.Completed(m.request, m.value, m.empty, m.err) {
		return effect.None
	}
	if p.Meta.Content.State == loadable.StateReady {
		p.recomputeNext()
	}
	return effect.None
}

func (p *Player) completeSubtitles(m internalSubtitlesResult) effect.Effects {
	p.Subtitles.Complete(m.request, m.value, m.empty, m.err)
	return effect.None
}
