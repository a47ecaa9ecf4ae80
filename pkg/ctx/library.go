package ctx

import (
	"context"
	"sort"
	"time"

	"github.com/aggrecore/core/pkg/effect"
	"github.com/aggrecore/core/pkg/stremio"
	"github.com/aggrecore/core/pkg/watchedbitfield"
)

// insertLibraryItem upserts item into the archive bucket (merging with
// any existing entry by greater mtime) and recomputes the recent window.
func (c *Ctx) insertLibraryItem(item stremio.LibraryItem) stremio.LibraryItem {
	if existing, ok := c.Library.Items[item.ID]; ok {
		item = mergedLibraryItem(existing, item)
	}
	c.Library.Items[item.ID] = item
	c.rebuildRecentWindow()
	return item
}

// rebuildRecentWindow repopulates LibraryRecent with the recentWindowSize
// newest-by-mtime items from the archive.
func (c *Ctx) rebuildRecentWindow() {
	ids := make([]string, 0, len(c.Library.Items))
	for id := range c.Library.Items {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool {
		return c.Library.Items[ids[i]].MTime.After(c.Library.Items[ids[j]].MTime)
	})
	if len(ids) > recentWindowSize {
		ids = ids[:recentWindowSize]
	}
	recent := stremio.NewLibraryBucket(c.Library.UID)
	for _, id := range ids {
		recent.Items[id] = c.Library.Items[id]
	}
	c.LibraryRecent = recent
}

// pushToAPIFuture returns a Future that datastorePuts item if the user
// is authenticated, a no-op Future otherwise (local-only library still
// mutates, it just never syncs).
func (c *Ctx) pushToAPIFuture(item stremio.LibraryItem) effect.Future {
	if c.Profile.Auth == nil {
		return func(context.Context) effect.Msg { return nil }
	}
	authKey := c.Profile.Auth.Key
	return func(fctx context.Context) effect.Msg {
		if err := c.api.DatastorePut(fctx, authKey, "libraryItem", []stremio.LibraryItem{item}); err != nil {
			return EventError{Err: err, Source: "libraryItemPush"}
		}
		return nil
	}
}

func (c *Ctx) addToLibrary(m ActionAddToLibrary) effect.Effects {
	item := m.Item
	item.MTime = c.env.Now()
	item = c.insertLibraryItem(item)
	return effect.Merge(
		effect.SequentialFuture1("library", c.flushLibraryFuture()),
		effect.Future1(c.pushToAPIFuture(item)),
	)
}

func (c *Ctx) removeFromLibrary(m ActionRemoveFromLibrary) effect.Effects {
	item, ok := c.Library.Items[m.ID]
	if !ok {
		return effect.None
	}
	item.Removed = true
	item.MTime = c.env.Now()
	item = c.insertLibraryItem(item)
	return effect.Merge(
		effect.SequentialFuture1("library", c.flushLibraryFuture()),
		effect.Future1(c.pushToAPIFuture(item)),
	)
}

func (c *Ctx) rewindLibraryItem(m ActionRewindLibraryItem) effect.Effects {
	item, ok := c.Library.Items[m.ID]
	if !ok {
		return effect.None
	}
	item.State.TimeOffset = 0
	item.State.TimesWatched = 0
	item.State.FlaggedWatched = 0
	item.MTime = c.env.Now()
	item = c.insertLibraryItem(item)
	return effect.Merge(
		effect.SequentialFuture1("library", c.flushLibraryFuture()),
		effect.Future1(c.pushToAPIFuture(item)),
	)
}

func (c *Ctx) toggleLibraryItemNotifications(m ActionToggleLibraryItemNotifications) effect.Effects {
	item, ok := c.Library.Items[m.ID]
	if !ok {
		return effect.None
	}
	item.State.NotificationsDisabled = !item.State.NotificationsDisabled
	item.MTime = c.env.Now()
	item = c.insertLibraryItem(item)
	return effect.Merge(
		effect.SequentialFuture1("library", c.flushLibraryFuture()),
		effect.Future1(c.pushToAPIFuture(item)),
	)
}

// watchedThreshold is the fraction of a video's duration past which it
// is marked watched in the WatchedBitfield.
const watchedThreshold = 0.7

// applyPlayerProgress handles TimeChanged/Ended reports from the player:
// updates progress fields, recomputes the WatchedBitfield when the
// watched threshold is crossed, and increments times_watched on End.
func (c *Ctx) applyPlayerProgress(m ActionPlayerProgress) effect.Effects {
	item, ok := c.Library.Items[m.ID]
	if !ok {
		return effect.None
	}

	now := c.env.Now()
	item.State.TimeOffset = m.TimeOffset
	item.State.Duration = m.Duration
	item.State.VideoID = m.VideoID
	item.State.LastWatched = &now
	item.MTime = now

	if m.Ended {
		item.State.TimesWatched++
	}

	if m.Duration > 0 && float64(m.TimeOffset) > float64(m.Duration)*watchedThreshold && m.VideoCount > 0 {
		bf, err := watchedbitfield.Decode(item.State.Watched)
		if err != nil || bf.Count != m.VideoCount {
			bf = watchedbitfield.New(item.ID, m.VideoCount)
		}
		bf.Set(m.VideoIndex, true)
		if encoded, err := bf.Encode(); err == nil {
			item.State.Watched = encoded
		}
	}

	item = c.insertLibraryItem(item)
	return effect.Merge(
		effect.SequentialFuture1("library", c.flushLibraryFuture()),
		effect.Future1(c.pushToAPIFuture(item)),
	)
}

// syncLibraryWithAPI runs the library sync algorithm: fetch server
// mtimes, compute pull/push sets, and concurrently datastoreGet the ids
// to pull and datastorePut the items to push.
func (c *Ctx) syncLibraryWithAPI() effect.Effects {
	if c.Profile.Auth == nil {
		return effect.Msg1(EventError{Err: &Error{Kind: ErrUserNotLoggedIn}, Source: "SyncLibraryWithAPI"})
	}
	authKey := c.Profile.Auth.Key
	localItems := c.Library.Items
	now := c.env.Now()

	future := func(fctx context.Context) effect.Msg {
		remote, err := c.api.DatastoreMeta(fctx, authKey, "libraryItem")
		if err != nil {
			return internalLibrarySyncResult{err: err}
		}

		remoteMTime := make(map[string]time.Time, len(remote))
		for _, e := range remote {
			remoteMTime[e.ID] = e.MTime
		}

		var idsToPull []string
		for id, mtime := range remoteMTime {
			local, ok := localItems[id]
			if !ok || mtime.After(local.MTime) {
				idsToPull = append(idsToPull, id)
			}
		}

		var itemsToPush []stremio.LibraryItem
		for id, item := range localItems {
			if !item.ShouldPush(now) {
				continue
			}
			remoteMT, inRemote := remoteMTime[id]
			if !inRemote || item.MTime.After(remoteMT) {
				itemsToPush = append(itemsToPush, item)
			}
		}

		pulledCh := make(chan []stremio.LibraryItem, 1)
		pushErrCh := make(chan error, 1)
		pullErrCh := make(chan error, 1)

		go func() {
			if len(idsToPull) == 0 {
				pulledCh <- nil
				return
			}
			items, err := c.api.DatastoreGet(fctx, authKey, "libraryItem", idsToPull, false)
			if err != nil {
				pullErrCh <- err
				return
			}
			pulledCh <- items
		}()
		go func() {
			if len(itemsToPush) == 0 {
				pushErrCh <- nil
				return
			}
			pushErrCh <- c.api.DatastorePut(fctx, authKey, "libraryItem", itemsToPush)
		}()

		var pulled []stremio.LibraryItem
		select {
		case pulled = <-pulledCh:
		case err := <-pullErrCh:
			return internalLibrarySyncResult{err: err}
		}
		if err := <-pushErrCh; err != nil {
			return internalLibrarySyncResult{err: err}
		}

		return internalLibrarySyncResult{pulled: pulled}
	}

	return effect.Future1(future)
}

// completeLibrarySync implements sync step 4's merge: pulled items are
// merged into the bucket per-id with max(mtime) winning.
func (c *Ctx) completeLibrarySync(m internalLibrarySyncResult) effect.Effects {
	if m.err != nil {
		return effect.Msg1(EventError{Err: &Error{Kind: ErrAPI, Err: m.err}, Source: "SyncLibraryWithAPI"})
	}
	if len(m.pulled) == 0 {
		return effect.None
	}
	for _, item := range m.pulled {
		c.insertLibraryItem(item)
	}
	return effect.SequentialFuture1("library", c.flushLibraryFuture())
}
