package player

import (
	"github.com/aggrecore/core/pkg/ctx"
	"github.com/aggrecore/core/pkg/effect"
	"github.com/aggrecore/core/pkg/loadable"
)

// timeChanged and ended translate playback progress into
// ctx.ActionPlayerProgress, locating the playing video within the loaded
// meta's ordered video list so the library bucket can flag the right
// WatchedBitfield bit.
func (p *Player) timeChanged(m ActionTimeChanged) effect.Effects {
	progress, ok := p.progressAction(m.Time, m.Duration, false)
	if !ok {
		return effect.None
	}
	return effect.Msg1(progress)
}

func (p *Player) ended(m ActionEnded) effect.Effects {
	progress, ok := p.progressAction(m.Time, m.Duration, true)
	if !ok {
		return effect.None
	}
	return effect.Msg1(progress)
}

func (p *Player) progressAction(timeOffset, duration int64, ended bool) (ctx.ActionPlayerProgress, bool) {
	if p.Selected == nil || p.Selected.MetaRequest == nil {
		return ctx.ActionPlayerProgress{}, false
	}

	videoIndex, videoCount := 0, 0
	if p.Meta.Content.State == loadable.StateReady {
		videos := p.Meta.Content.Value.Videos
		videoCount = len(videos)
		for i, v := range videos {
			if v.ID == p.Selected.VideoID {
				videoIndex = i
				break
			}
		}
	}
	if videoCount == 0 {
		videoCount = 1
	}

	return ctx.ActionPlayerProgress{
		ID:         p.Selected.MetaRequest.Path.ID,
		VideoID:    p.Selected.VideoID,
		VideoIndex: videoIndex,
		VideoCount: videoCount,
		TimeOffset: timeOffset,
		Duration:   duration,
		Ended:      ended,
	}, true
}
