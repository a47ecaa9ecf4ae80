package env

// Storage keys. Every bucket the core persists lives under one of these
// whichever uid owns it; the owning uid is stored inside the bucket.
const (
	KeyProfile          = "profile"
	KeyLibrary          = "library"
	KeyLibraryRecent    = "library_recent"
	KeyStreams          = "streams"
	KeySearchHistory    = "search_history"
	KeyNotifications    = "notifications"
	KeyCalendar         = "calendar"
	KeyDismissedEvents  = "dismissed_events"
	KeySchemaVersion    = "schema_version"
)

// CurrentSchemaVersion is the bucket schema version written by this
// build. Stored buckets tagged with an older version are run through the
// migrate chain before being handed to pkg/ctx.
const CurrentSchemaVersion = 14
