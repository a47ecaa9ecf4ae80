// Package player implements the Player sub-model: a selected
// stream/meta/subtitles load, next-video/next-stream computation, and
// progress reporting that feeds pkg/ctx's library update path.
package player

import (
	"go.uber.org/zap"

	"github.com/aggrecore/core/pkg/env"
	"github.com/aggrecore/core/pkg/loadable"
	"github.com/aggrecore/core/pkg/stremio"
)

// Selected is the user's current playback selection.
type Selected struct {
	Stream             stremio.Stream
	MetaRequest        *stremio.ResourceRequest
	SubtitlesPath      *stremio.ResourcePath
	VideoID            string
	StreamTransportURL string
}

// Player composes the selected stream with its loaded meta and
// subtitles, plus the derived next-video/next-stream the UI offers for
// binge-watching.
type Player struct {
	Selected *Selected

	Meta      *loadable.Cell[stremio.MetaItem]
	Subtitles *loadable.Collection[[]stremio.Subtitle]

	NextVideo  *stremio.Video
	NextStream *stremio.Stream

	addons        []stremio.Descriptor
	bingeWatching bool

	env    env.Env
	logger *zap.Logger
}

func New(e env.Env, logger *zap.Logger) *Player {
	return &Player{
		Meta:      &loadable.Cell[stremio.MetaItem]{},
		Subtitles: loadable.NewCollection[[]stremio.Subtitle](),
		env:       e,
		logger:    logger,
	}
}
