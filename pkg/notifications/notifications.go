// Package notifications implements the new-episode discovery algorithm:
// select the library items due for a check, plan a lastVideosIds catalog
// request across every addon that declares support for it, and reduce
// the responses into a NotificationsBucket.
package notifications

import (
	"context"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/aggrecore/core/pkg/addon"
	"github.com/aggrecore/core/pkg/stremio"
)

// MaxItems bounds how many library items are checked per pull
// (NOTIFICATION_ITEMS_COUNT).
const MaxItems = 100

const extraLastVideosIDs = "lastVideosIds"

// Plan implements steps 2-3: select up to MaxItems should-pull-notify
// items ordered by descending mtime, and build the AllCatalogs plan for
// their ids. Only catalogs declaring lastVideosIds as a supported extra
// are included, enforced by addon.Plan's CatalogSupportsExtra check.
func Plan(library stremio.LibraryBucket, addons []stremio.Descriptor) (ids []string, requests []stremio.ResourceRequest) {
	items := make([]stremio.LibraryItem, 0, len(library.Items))
	for _, item := range library.Items {
		if item.ShouldPullNotifications() {
			items = append(items, item)
		}
	}
	sort.Slice(items, func(i, j int) bool { return items[i].MTime.After(items[j].MTime) })
	if len(items) > MaxItems {
		items = items[:MaxItems]
	}

	ids = make([]string, len(items))
	for i, item := range items {
		ids[i] = item.ID
	}

	req := addon.AggrRequest{
		Kind:  addon.AggrAllCatalogs,
		Extra: []stremio.ExtraValue{{Name: extraLastVideosIDs, Value: strings.Join(ids, ",")}},
	}
	return ids, addon.Plan(addons, req)
}

// Engine runs the pull end to end against an addon.Interface factory,
// generalized from cinemata.Client's "fetch metadata for an id set"
// shape to a catalog-of-many-ids fetch.
type Engine struct {
	logger *zap.Logger
}

func NewEngine(logger *zap.Logger) *Engine {
	return &Engine{logger: logger}
}

// Pull executes Plan, fans the resulting requests out via
// addon.ExecutePlan, and reduces the responses into a NotificationsBucket
// per steps 4-5. changed reports whether the resulting bucket differs
// from previous, so callers only persist and emit on an actual change.
func (e *Engine) Pull(ctx context.Context, uid string, library stremio.LibraryBucket, addons []stremio.Descriptor, previous stremio.NotificationsBucket, now time.Time, newInterface func(transportURL string) addon.Interface) (stremio.NotificationsBucket, bool, error) {
	ids, plan := Plan(library, addons)
	if len(ids) == 0 {
		empty := stremio.NewNotificationsBucket(uid, now)
		return empty, !notificationsEqual(empty, previous), nil
	}

	results, err := addon.ExecutePlan(ctx, plan, newInterface)
	if err != nil {
		e.logger.Warn("notifications: some catalog requests failed", zap.Error(err))
	}

	bucket := Reduce(uid, now, ids, library, results)
	return bucket, !notificationsEqual(bucket, previous), nil
}

// Reduce implements step 4: for each requested id, find the first ready
// catalog result (in addon/plan order) carrying a matching meta item, and
// keep the videos released after the item was last watched and not after
// now.
func Reduce(uid string, now time.Time, ids []string, library stremio.LibraryBucket, results []addon.PlanResult) stremio.NotificationsBucket {
	bucket := stremio.NewNotificationsBucket(uid, now)

	for _, id := range ids {
		libraryItem, ok := library.Items[id]
		if !ok {
			continue
		}

		meta, found := firstMatchingMeta(id, results)
		if !found {
			continue
		}

		videos := eligibleVideos(libraryItem, meta.Videos, now)
		if len(videos) == 0 {
			continue
		}
		bucket.Items[id] = videos
	}

	return bucket
}

// firstMatchingMeta scans results in order (addon-order preference is
// the tie-break) and returns the first MetaItem whose id matches.
func firstMatchingMeta(id string, results []addon.PlanResult) (stremio.MetaItem, bool) {
	for _, r := range results {
		if r.Err != nil || r.Response.Kind != stremio.ResponseKindMetasDetailed {
			continue
		}
		for _, meta := range r.Response.MetasDetailed {
			if meta.ID == id {
				return meta, true
			}
		}
	}
	return stremio.MetaItem{}, false
}

// eligibleVideos keeps videos released after the item's last watched
// time and not after now, deduplicating by video id with first-occurrence
// preference.
func eligibleVideos(item stremio.LibraryItem, videos []stremio.Video, now time.Time) map[string]stremio.NotificationItem {
	var lastWatched time.Time
	if item.State.LastWatched != nil {
		lastWatched = *item.State.LastWatched
	}

	out := make(map[string]stremio.NotificationItem)
	for _, v := range videos {
		if _, seen := out[v.ID]; seen {
			continue
		}
		released, ok := parseReleased(v.Released)
		if !ok {
			continue
		}
		if !released.After(lastWatched) || released.After(now) {
			continue
		}
		out[v.ID] = stremio.NotificationItem{MetaID: item.ID, VideoID: v.ID, VideoReleased: released}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

func parseReleased(s string) (time.Time, bool) {
	if s == "" {
		return time.Time{}, false
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// notificationsEqual compares two buckets by their meta->video-id sets,
// ignoring CreatedAt (which always advances), so callers can detect a
// no-op pull and skip persisting/emitting.
func notificationsEqual(a, b stremio.NotificationsBucket) bool {
	if len(a.Items) != len(b.Items) {
		return false
	}
	for metaID, aVideos := range a.Items {
		bVideos, ok := b.Items[metaID]
		if !ok || len(aVideos) != len(bVideos) {
			return false
		}
		for videoID := range aVideos {
			if _, ok := bVideos[videoID]; !ok {
				return false
			}
		}
	}
	return true
}

// DismissItem removes a meta entry entirely.
func DismissItem(bucket stremio.NotificationsBucket, metaID string) stremio.NotificationsBucket {
	delete(bucket.Items, metaID)
	return bucket
}
