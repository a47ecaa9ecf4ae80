package ctx

import "github.com/aggrecore/core/pkg/stremio"

// AuthRequest is the login/register request carried through the
// authentication sequence and compared against Ctx.authRequest to detect
// a superseding Authenticate call.
type AuthRequest struct {
	Method   string // "login" or "register"
	Email    string
	Password string
}

// ActionAuthenticate starts the authentication sequence.
type ActionAuthenticate struct {
	Request AuthRequest
}

// ActionLogout fires-and-forgets POST /api/logout and clears local state
// regardless of its outcome.
type ActionLogout struct{}

// ActionInstallAddon upserts an addon by TransportURL, preserving order.
type ActionInstallAddon struct {
	Descriptor stremio.Descriptor
}

// ActionUninstallAddon removes an addon by TransportURL; protected
// addons are refused with CtxError{Kind: ErrAccessDenied}.
type ActionUninstallAddon struct {
	TransportURL string
}

// ActionAddToLibrary upserts a LibraryItem (e.g. from a user bookmarking
// a meta item not yet in the library).
type ActionAddToLibrary struct {
	Item stremio.LibraryItem
}

// ActionRemoveFromLibrary marks a library item removed (soft delete,
// still eligible for push-to-server within the one-year window).
type ActionRemoveFromLibrary struct {
	ID string
}

// ActionRewindLibraryItem resets a library item's watch progress.
type ActionRewindLibraryItem struct {
	ID string
}

// ActionToggleLibraryItemNotifications flips
// state.notifications_disabled for a library item.
type ActionToggleLibraryItemNotifications struct {
	ID string
}

// ActionPlayerProgress is how pkg/player reports TimeChanged/Ended back
// into Ctx's library update path. VideoIndex/VideoCount locate the
// playing video within its meta's ordered video list, which pkg/player
// knows (it holds the loaded MetaItem) and pkg/ctx does not; they're
// what WatchedBitfield needs to flag the right bit.
type ActionPlayerProgress struct {
	ID         string
	VideoID    string
	VideoIndex int
	VideoCount int
	TimeOffset int64
	Duration   int64
	Ended      bool
}

// ActionSyncLibraryWithAPI triggers the library sync algorithm.
type ActionSyncLibraryWithAPI struct{}

// ActionApplyNotifications replaces the notifications bucket with one
// computed outside Update, by notifications.Engine.Pull, run from a
// scheduler goroutine rather than from inside the dispatch loop, since
// Pull needs the current library/addons snapshot plus a live fetch. The
// scheduler dispatches the result back in through this action instead of
// writing Ctx.Notifications directly, keeping Update as the only place
// that ever mutates Ctx.
type ActionApplyNotifications struct {
	Bucket stremio.NotificationsBucket
}

// InternalStreamLoaded is emitted by pkg/player when a player selection
// resolves against a loaded meta. MetaID/VideoID identify the bucket
// key; BingeGroup is the incoming stream's carried binge group token
// (empty if it has none).
type InternalStreamLoaded struct {
	MetaID             string
	VideoID            string
	Type               string
	Stream             stremio.Stream
	MetaTransportURL   string
	StreamTransportURL string
	BingeGroup         string
}

// internalCtxAuthResult is what the authenticate future posts back.
type internalCtxAuthResult struct {
	request AuthRequest
	auth    *stremio.Auth
	addons  []stremio.Descriptor
	items   []stremio.LibraryItem
	err     error
}

// internalLibrarySyncResult is what the sync future posts back.
type internalLibrarySyncResult struct {
	pulled []stremio.LibraryItem
	err    error
}

// EventUserAuthenticated is emitted on a successful Authenticate.
type EventUserAuthenticated struct {
	Request AuthRequest
}

// EventUserLoggedOut is emitted after Logout clears local state.
type EventUserLoggedOut struct {
	UID string
}

// EventError wraps a failure alongside the event that would have fired
// on success.
type EventError struct {
	Err    error
	Source string
}
