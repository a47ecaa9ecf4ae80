// Package ctx implements the Ctx sub-model: Profile plus all Buckets
// (Library, Streams, Notifications), and the authentication, addon
// management, library update, and library sync algorithms. Ctx is the
// only package whose exported API hands back mutable bucket state;
// every other feature model treats a *Ctx as a read-only borrow.
package ctx

import (
	"time"

	"go.uber.org/zap"

	"github.com/aggrecore/core/pkg/api"
	"github.com/aggrecore/core/pkg/env"
	"github.com/aggrecore/core/pkg/stremio"
)

// Status is Ctx's own small state machine: Ready, or Loading while an
// Authenticate request is in flight.
type Status int

const (
	StatusReady Status = iota
	StatusLoading
)

// Ctx composes the user's Profile and every Bucket. It is the sole
// owner of this mutable state; sub-models borrow it read-only.
type Ctx struct {
	Profile stremio.Profile

	Library       stremio.LibraryBucket
	LibraryRecent stremio.LibraryBucket // two-bucket recent window

	Streams       stremio.StreamsBucket
	Notifications stremio.NotificationsBucket

	Status      Status
	authRequest *AuthRequest // set while Status == StatusLoading

	api    *api.Client
	env    env.Env
	logger *zap.Logger
}

// New returns a fresh, unauthenticated Ctx with empty buckets, matching
// the state a new profile starts from.
func New(e env.Env, logger *zap.Logger) *Ctx {
	return &Ctx{
		Profile:       stremio.Profile{Settings: stremio.DefaultSettings()},
		Library:       stremio.NewLibraryBucket(""),
		LibraryRecent: stremio.NewLibraryBucket(""),
		Streams:       stremio.NewStreamsBucket(""),
		Notifications: stremio.NewNotificationsBucket("", time.Time{}),
		api:           api.NewClient(e),
		env:           e,
		logger:        logger,
	}
}

// recentWindowSize bounds the "recent" library bucket in the two-bucket
// persistence design (default 200).
const recentWindowSize = 200

// mergedLibraryItem returns whichever of a, b has the greater mtime, the
// merge-on-load rule shared by two-bucket library persistence and
// library sync's pulled-item merge. On equal mtimes b, the incoming item,
// wins, so a mutation stamped within the same clock tick is not dropped.
func mergedLibraryItem(a, b stremio.LibraryItem) stremio.LibraryItem {
	if a.MTime.After(b.MTime) {
		return a
	}
	return b
}
