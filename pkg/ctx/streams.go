package ctx

import (
	"github.com/aggrecore/core/pkg/effect"
	"github.com/aggrecore/core/pkg/stremio"
)

// lastPlayedVideoID returns the video id most recently played against
// metaID, by scanning the bucket for the greatest mtime among entries
// sharing that meta. Returns "" if none.
func (c *Ctx) lastPlayedVideoID(metaID string) string {
	var bestVideoID string
	var bestMTime int64
	for key, item := range c.Streams.Items {
		if key.MetaID != metaID {
			continue
		}
		if t := item.MTime.UnixNano(); t > bestMTime {
			bestMTime = t
			bestVideoID = key.VideoID
		}
	}
	return bestVideoID
}

// streamLoaded handles a resolved stream selection: derive the adjusted
// playback state (carry time_offset across a matching binge group, else
// start at zero) and upsert the (meta_id, video_id) entry.
func (c *Ctx) streamLoaded(m InternalStreamLoaded) effect.Effects {
	key := stremio.StreamsItemKey{MetaID: m.MetaID, VideoID: m.VideoID}

	var state stremio.StreamsItemState
	if lastVideoID := c.lastPlayedVideoID(m.MetaID); lastVideoID != "" {
		lastKey := stremio.StreamsItemKey{MetaID: m.MetaID, VideoID: lastVideoID}
		if last, ok := c.Streams.Items[lastKey]; ok {
			if m.BingeGroup != "" && last.Stream.BehaviorHints.BingeGroup == m.BingeGroup {
				state = last.State
			}
		}
	}

	c.Streams.Items[key] = stremio.StreamsItem{
		Stream:             m.Stream,
		MetaTransportURL:   m.MetaTransportURL,
		StreamTransportURL: m.StreamTransportURL,
		Type:               m.Type,
		State:              state,
		MTime:              c.env.Now(),
	}

	return effect.SequentialFuture1("streams", c.flushStreamsFuture())
}
