package player

import "github.com/aggrecore/core/pkg/stremio"

// recomputeNext derives NextVideo/NextStream once Meta finishes loading:
// offer the successor video in the same meta's video list, and if one
// of its streams shares the playing stream's binge group, offer that
// stream too.
func (p *Player) recomputeNext() {
	p.NextVideo = nil
	p.NextStream = nil

	if !p.bingeWatching || p.Selected == nil {
		return
	}

	next := nextVideo(p.Meta.Content.Value.Videos, p.Selected.VideoID)
	if next == nil {
		return
	}
	p.NextVideo = next

	bingeGroup := p.Selected.Stream.BehaviorHints.BingeGroup
	if bingeGroup == "" {
		return
	}
	if stream := nextStream(*next, bingeGroup); stream != nil {
		p.NextStream = stream
	}
}

// nextVideo finds the video immediately following currentID in videos'
// ordering: when the current video carries SeriesInfo, the nearest later
// (season, episode) among the videos that carry SeriesInfo; otherwise
// the next video by list position.
func nextVideo(videos []stremio.Video, currentID string) *stremio.Video {
	currentIdx := -1
	for i, v := range videos {
		if v.ID == currentID {
			currentIdx = i
			break
		}
	}
	if currentIdx == -1 {
		return nil
	}
	current := videos[currentIdx]

	if current.SeriesInfo != nil {
		var best *stremio.Video
		for i := range videos {
			v := &videos[i]
			if v.SeriesInfo == nil || !current.SeriesInfo.Before(*v.SeriesInfo) {
				continue
			}
			if best == nil || v.SeriesInfo.Before(*best.SeriesInfo) {
				best = v
			}
		}
		return best
	}

	if currentIdx+1 < len(videos) {
		return &videos[currentIdx+1]
	}
	return nil
}
