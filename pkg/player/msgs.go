package player

import "github.com/aggrecore/core/pkg/stremio"

// ActionLoad selects a new stream to play. Addons is the installed set
// used to plan the meta/subtitles fetches and to resolve
// next_video/next_stream against the library's ordering.
type ActionLoad struct {
	Selected      Selected
	Addons        []stremio.Descriptor
	BingeWatching bool
}

// ActionUnload clears the current selection and every loaded cell.
type ActionUnload struct{}

// ActionTimeChanged reports playback progress. It is translated into a
// ctx.ActionPlayerProgress once the loaded meta locates the playing video
// within its ordered video list.
type ActionTimeChanged struct {
	Time     int64
	Duration int64
}

// ActionEnded reports that playback reached the end of the stream, at the
// given final time/duration.
type ActionEnded struct {
	Time     int64
	Duration int64
}

type internalMetaResult struct {
	request stremio.ResourceRequest
	value   stremio.MetaItem
	empty   bool
	err     error
}

type internalSubtitlesResult struct {
	request stremio.ResourceRequest
	value   []stremio.Subtitle
	empty   bool
	err     error
}
