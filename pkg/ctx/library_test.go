package ctx

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aggrecore/core/pkg/env"
	"github.com/aggrecore/core/pkg/stremio"
)

func TestAddToLibraryUpsertsAndFlushes(t *testing.T) {
	c, _ := newTestCtx(t)
	eff := c.Update(ActionAddToLibrary{Item: stremio.LibraryItem{ID: "tt1", Name: "Show", Type: "series"}})
	require.Contains(t, c.Library.Items, "tt1")
	require.Contains(t, c.LibraryRecent.Items, "tt1")
	runFuture(t, eff)
}

func TestInsertLibraryItemMergeKeepsGreaterMTime(t *testing.T) {
	c, _ := newTestCtx(t)
	older := stremio.LibraryItem{ID: "tt1", MTime: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC), State: stremio.LibraryItemState{TimeOffset: 10}}
	newer := stremio.LibraryItem{ID: "tt1", MTime: time.Date(2026, 1, 2, 0, 0, 0, 0, time.UTC), State: stremio.LibraryItemState{TimeOffset: 99}}

	c.insertLibraryItem(newer)
	c.insertLibraryItem(older)

	assert.Equal(t, int64(99), c.Library.Items["tt1"].State.TimeOffset)
}

func TestRebuildRecentWindowBoundsToWindowSize(t *testing.T) {
	c, _ := newTestCtx(t)
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < recentWindowSize+10; i++ {
		c.Library.Items[itemID(i)] = stremio.LibraryItem{
			ID:    itemID(i),
			MTime: base.Add(time.Duration(i) * time.Minute),
		}
	}
	c.rebuildRecentWindow()
	assert.Len(t, c.LibraryRecent.Items, recentWindowSize)
	// the newest items (highest i) must be the ones kept
	assert.Contains(t, c.LibraryRecent.Items, itemID(recentWindowSize+9))
	assert.NotContains(t, c.LibraryRecent.Items, itemID(0))
}

func itemID(i int) string {
	return "tt" + string(rune('a'+i%26)) + string(rune('0'+i/26))
}

func TestRewindLibraryItemResetsProgress(t *testing.T) {
	c, _ := newTestCtx(t)
	c.Library.Items["tt1"] = stremio.LibraryItem{ID: "tt1", State: stremio.LibraryItemState{TimeOffset: 500, TimesWatched: 2}}
	c.rebuildRecentWindow()

	c.Update(ActionRewindLibraryItem{ID: "tt1"})

	item := c.Library.Items["tt1"]
	assert.Equal(t, int64(0), item.State.TimeOffset)
	assert.Equal(t, 0, item.State.TimesWatched)
}

func TestToggleLibraryItemNotificationsFlips(t *testing.T) {
	c, _ := newTestCtx(t)
	c.Library.Items["tt1"] = stremio.LibraryItem{ID: "tt1"}
	c.rebuildRecentWindow()

	c.Update(ActionToggleLibraryItemNotifications{ID: "tt1"})
	assert.True(t, c.Library.Items["tt1"].State.NotificationsDisabled)

	c.Update(ActionToggleLibraryItemNotifications{ID: "tt1"})
	assert.False(t, c.Library.Items["tt1"].State.NotificationsDisabled)
}

func TestApplyPlayerProgressSetsWatchedBitAtThreshold(t *testing.T) {
	c, _ := newTestCtx(t)
	c.Library.Items["tt1"] = stremio.LibraryItem{ID: "tt1", Type: "series"}
	c.rebuildRecentWindow()

	c.Update(ActionPlayerProgress{
		ID: "tt1", VideoID: "tt1:1:1", VideoIndex: 2, VideoCount: 5,
		TimeOffset: 8000, Duration: 10000,
	})

	item := c.Library.Items["tt1"]
	assert.Equal(t, int64(8000), item.State.TimeOffset)
	assert.NotEmpty(t, item.State.Watched)
}

func TestApplyPlayerProgressBelowThresholdLeavesWatchedEmpty(t *testing.T) {
	c, _ := newTestCtx(t)
	c.Library.Items["tt1"] = stremio.LibraryItem{ID: "tt1", Type: "series"}
	c.rebuildRecentWindow()

	c.Update(ActionPlayerProgress{
		ID: "tt1", VideoID: "tt1:1:1", VideoIndex: 2, VideoCount: 5,
		TimeOffset: 1000, Duration: 10000,
	})

	assert.Empty(t, c.Library.Items["tt1"].State.Watched)
}

func TestApplyPlayerProgressEndedIncrementsTimesWatched(t *testing.T) {
	c, _ := newTestCtx(t)
	c.Library.Items["tt1"] = stremio.LibraryItem{ID: "tt1", Type: "series"}
	c.rebuildRecentWindow()

	c.Update(ActionPlayerProgress{ID: "tt1", VideoID: "v1", TimeOffset: 9999, Duration: 10000, Ended: true})
	assert.Equal(t, 1, c.Library.Items["tt1"].State.TimesWatched)
}

func TestSyncLibraryWithAPIRequiresAuth(t *testing.T) {
	c, _ := newTestCtx(t)
	eff := c.Update(ActionSyncLibraryWithAPI{})
	require.Len(t, eff.Msgs, 1)
	evt, ok := eff.Msgs[0].(EventError)
	require.True(t, ok)
	ctxErr, ok := evt.Err.(*Error)
	require.True(t, ok)
	assert.Equal(t, ErrUserNotLoggedIn, ctxErr.Kind)
}

func TestSyncLibraryWithAPIPullsAndPushes(t *testing.T) {
	c, m := newTestCtx(t)
	c.Profile.Auth = &stremio.Auth{Key: "k1", User: stremio.AuthUser{ID: "u1"}}
	c.Library.Items["local-only"] = stremio.LibraryItem{
		ID: "local-only", Type: "movie", MTime: m.Now(),
	}
	c.rebuildRecentWindow()

	m.FetchFn = func(_ context.Context, req env.Request) (int, []byte, error) {
		switch {
		case strings.Contains(req.URL, "datastoreMeta"):
			return 200, []byte(`{"result":[["remote-only","2027-01-01T00:00:00Z"]]}`), nil
		case strings.Contains(req.URL, "datastoreGet"):
			return 200, []byte(`{"result":[{"_id":"remote-only","type":"movie","mtime":"2027-01-01T00:00:00Z","state":{}}]}`), nil
		case strings.Contains(req.URL, "datastorePut"):
			return 200, []byte(`{"result":null}`), nil
		default:
			t.Fatalf("unexpected request to %s", req.URL)
			return 0, nil, nil
		}
	}

	eff := c.Update(ActionSyncLibraryWithAPI{})
	msgs := runFuture(t, eff)
	require.Len(t, msgs, 1)
	result, ok := msgs[0].(internalLibrarySyncResult)
	require.True(t, ok)
	require.NoError(t, result.err)

	c.Update(result)
	assert.Contains(t, c.Library.Items, "remote-only")
	assert.Contains(t, c.Library.Items, "local-only")
}
