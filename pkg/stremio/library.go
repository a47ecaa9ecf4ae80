package stremio

import "time"

// LibraryItemState tracks playback progress and watch counters for one
// library item.
type LibraryItemState struct {
	LastWatched         *time.Time `json:"lastWatched,omitempty"`
	TimeWatched         int64      `json:"timeWatched"`
	TimeOffset          int64      `json:"timeOffset"`
	OverallTimeWatched  int64      `json:"overallTimeWatched"`
	TimesWatched        int        `json:"timesWatched"`
	FlaggedWatched      int        `json:"flaggedWatched"`
	Duration            int64      `json:"duration"`
	VideoID             string     `json:"video_id,omitempty"`
	Watched             string     `json:"watched,omitempty"` // encoded WatchedBitfield
	LastVideoReleased   *time.Time `json:"lastVideoReleased,omitempty"`
	NotificationsDisabled bool     `json:"notificationsDisabled,omitempty"`
}

// IsWatched reports whether the item has been watched:
// times_watched > 0 OR flagged_watched == 1.
func (s LibraryItemState) IsWatched() bool {
	return s.TimesWatched > 0 || s.FlaggedWatched == 1
}

// LibraryItemBehaviorHints carries the default_video_id hint used by the
// notification-eligibility check.
type LibraryItemBehaviorHints struct {
	DefaultVideoID string `json:"defaultVideoId,omitempty"`
}

// LibraryItem is a user's bookmark/progress record for a single meta id.
type LibraryItem struct {
	ID          string `json:"_id"`
	Name        string `json:"name"`
	Type        string `json:"type"`
	Poster      string `json:"poster,omitempty"`
	PosterShape string `json:"posterShape,omitempty"`
	Removed     bool   `json:"removed"`
	Temp        bool   `json:"temp"`
	CTime       *time.Time `json:"ctime,omitempty"`
	MTime       time.Time  `json:"mtime"`
	State       LibraryItemState `json:"state"`
	BehaviorHints LibraryItemBehaviorHints `json:"behaviorHints,omitempty"`
}

// InContinueWatching reports whether the item belongs in the continue-watching
// shelf: type != "other" AND (not removed OR temp) AND time_offset > 0.
func (li LibraryItem) InContinueWatching() bool {
	if li.Type == "other" {
		return false
	}
	if li.Removed && !li.Temp {
		return false
	}
	return li.State.TimeOffset > 0
}

// ShouldPullNotifications reports whether the item qualifies for the
// notifications engine.
func (li LibraryItem) ShouldPullNotifications() bool {
	if li.State.NotificationsDisabled {
		return false
	}
	if li.Type == "other" || li.Type == "movie" {
		return false
	}
	if li.BehaviorHints.DefaultVideoID != "" {
		return false
	}
	if li.Removed || li.Temp {
		return false
	}
	return true
}

// ShouldPush reports whether the item is eligible to be pushed to the
// remote datastore during library sync: type != "other" AND (not removed
// OR mtime is within the last year).
func (li LibraryItem) ShouldPush(now time.Time) bool {
	if li.Type == "other" {
		return false
	}
	if !li.Removed {
		return true
	}
	return now.Sub(li.MTime) <= 365*24*time.Hour
}

// LibraryBucket is the in-memory collection of library items for one
// user (or the anonymous/local user when UID is empty).
type LibraryBucket struct {
	UID   string                  `json:"uid,omitempty"`
	Items map[string]LibraryItem `json:"items"`
}

// NewLibraryBucket returns an empty bucket for the given uid ("" for the
// local/unauthenticated user).
func NewLibraryBucket(uid string) LibraryBucket {
	return LibraryBucket{UID: uid, Items: map[string]LibraryItem{}}
}
