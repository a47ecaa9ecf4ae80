package player

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/aggrecore/core/pkg/ctx"
	"github.com/aggrecore/core/pkg/effect"
	"github.com/aggrecore/core/pkg/env"
	"github.com/aggrecore/core/pkg/loadable"
	"github.com/aggrecore/core/pkg/stremio"
)

func newTestPlayer(t *testing.T) (*Player, *env.Memory) {
	t.Helper()
	mem := env.NewMemory(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
	return New(mem, zap.NewNop()), mem
}

// runFutures synchronously executes every future in eff and returns the
// resulting messages, mirroring pkg/ctx's test harness since there is no
// runtime yet to drive futures for real.
func runFutures(t *testing.T, eff effect.Effects) []effect.Msg {
	t.Helper()
	var out []effect.Msg
	for _, f := range eff.Futures {
		if m := f(context.Background()); m != nil {
			out = append(out, m)
		}
	}
	return out
}

func metaResponseBody(t *testing.T, meta stremio.MetaItem) []byte {
	t.Helper()
	b, err := json.Marshal(map[string]interface{}{"meta": meta})
	require.NoError(t, err)
	return b
}

func TestLoadFetchesMetaAndCompletesCell(t *testing.T) {
	p, mem := newTestPlayer(t)

	meta := stremio.MetaItem{
		MetaItemPreview: stremio.MetaItemPreview{ID: "tt1", Type: "series"},
		Videos: []stremio.Video{
			createVideo("tt1:1:1", 1, 1),
			createVideo("tt1:1:2", 1, 2, createStream("group-a")),
		},
	}
	mem.FetchFn = func(_ context.Context, req env.Request) (int, []byte, error) {
		return 200, metaResponseBody(t, meta), nil
	}

	req := stremio.ResourceRequest{Base: "https://addon.example", Path: stremio.ResourcePath{Resource: "meta", Type: "series", ID: "tt1"}}
	stream := createStream("group-a")
	eff := p.Update(ActionLoad{
		Selected:      Selected{Stream: stream, MetaRequest: &req, VideoID: "tt1:1:1"},
		BingeWatching: true,
	})
	msgs := runFutures(t, eff)
	require.Len(t, msgs, 1)

	completeEff := p.Update(msgs[0])
	assert.Equal(t, effect.None, completeEff)

	assert.Equal(t, loadable.StateReady, p.Meta.Content.State)
	assert.Equal(t, "tt1", p.Meta.Content.Value.ID)
	require.NotNil(t, p.NextVideo)
	assert.Equal(t, "tt1:1:2", p.NextVideo.ID)
	require.NotNil(t, p.NextStream)
	assert.Equal(t, "group-a", p.NextStream.BehaviorHints.BingeGroup)
}

func TestTimeChangedEmitsCtxProgressWithVideoIndex(t *testing.T) {
	p, _ := newTestPlayer(t)
	req := stremio.ResourceRequest{Base: "https://addon.example", Path: stremio.ResourcePath{Resource: "meta", Type: "series", ID: "tt1"}}
	p.Selected = &Selected{MetaRequest: &req, VideoID: "tt1:1:2"}
	p.Meta.Request = req
	p.Meta.Content = loadable.Ready(stremio.MetaItem{
		Videos: []stremio.Video{createVideo("tt1:1:1", 1, 1), createVideo("tt1:1:2", 1, 2)},
	})

	eff := p.Update(ActionTimeChanged{Time: 5000, Duration: 10000})
	require.Len(t, eff.Msgs, 1)
	progress := eff.Msgs[0].(ctx.ActionPlayerProgress)
	assert.Equal(t, "tt1", progress.ID)
	assert.Equal(t, 1, progress.VideoIndex)
	assert.Equal(t, 2, progress.VideoCount)
	assert.False(t, progress.Ended)
}

func TestEndedEmitsCtxProgressWithEndedTrue(t *testing.T) {
	p, _ := newTestPlayer(t)
	req := stremio.ResourceRequest{Base: "https://addon.example", Path: stremio.ResourcePath{Resource: "meta", Type: "movie", ID: "tt2"}}
	p.Selected = &Selected{MetaRequest: &req, VideoID: "tt2"}

	eff := p.Update(ActionEnded{Time: 9000, Duration: 9000})
	require.Len(t, eff.Msgs, 1)
	progress := eff.Msgs[0].(ctx.ActionPlayerProgress)
	assert.True(t, progress.Ended)
	assert.Equal(t, 1, progress.VideoCount)
}

func TestUnloadClearsSelection(t *testing.T) {
	p, _ := newTestPlayer(t)
	req := stremio.ResourceRequest{Base: "https://addon.example"}
	p.Selected = &Selected{MetaRequest: &req}
	p.Update(ActionUnload{})
	assert.Nil(t, p.Selected)
}
