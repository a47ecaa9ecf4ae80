package player

import "github.com/aggrecore/core/pkg/stremio"

// nextStream returns the first stream on video whose binge group matches
// group, staying on the same release group across episodes. Grounded on
// next_stream.rs's binge_group matching fixtures.
func nextStream(video stremio.Video, group string) *stremio.Stream {
	for i := range video.Streams {
		if video.Streams[i].BehaviorHints.BingeGroup == group {
			return &video.Streams[i]
		}
	}
	return nil
}
