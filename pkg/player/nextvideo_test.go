package player

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/aggrecore/core/pkg/stremio"
)

func createVideo(id string, season, episode int, streams ...stremio.Stream) stremio.Video {
	return stremio.Video{ID: id, SeriesInfo: &stremio.SeriesInfo{Season: season, Episode: episode}, Streams: streams}
}

func createStream(bingeGroup string) stremio.Stream {
	s := stremio.NewURLStream("https://example/" + bingeGroup)
	s.BehaviorHints.BingeGroup = bingeGroup
	return s
}

func TestNextVideoBySeriesInfoOrder(t *testing.T) {
	videos := []stremio.Video{
		createVideo("tt1:1:1", 1, 1),
		createVideo("tt1:1:2", 1, 2),
		createVideo("tt1:1:3", 1, 3),
	}
	next := nextVideo(videos, "tt1:1:1")
	assert.Equal(t, "tt1:1:2", next.ID)
}

func TestNextVideoFallsBackToListPosition(t *testing.T) {
	videos := []stremio.Video{
		{ID: "tt1:extra1"},
		{ID: "tt1:extra2"},
	}
	next := nextVideo(videos, "tt1:extra1")
	assert.Equal(t, "tt1:extra2", next.ID)
}

func TestNextVideoReturnsNilAtEndOfList(t *testing.T) {
	videos := []stremio.Video{createVideo("tt1:1:1", 1, 1)}
	assert.Nil(t, nextVideo(videos, "tt1:1:1"))
}

func TestNextStreamMatchesBingeGroup(t *testing.T) {
	video := createVideo("tt1:1:2", 1, 2, createStream("other"), createStream("group-a"))
	s := nextStream(video, "group-a")
	assert.NotNil(t, s)
	assert.Equal(t, "group-a", s.BehaviorHints.BingeGroup)
}

func TestNextStreamNoMatchReturnsNil(t *testing.T) {
	video := createVideo("tt1:1:2", 1, 2, createStream("other"))
	assert.Nil(t, nextStream(video, "group-a"))
}
