// Package runtime composes every sub-model into a single root and drives
// the effect/dispatch loop: a model update is pure (Root.Update never
// touches the network or disk), the Effects it returns are what the
// Runtime actually executes.
package runtime

import (
	"go.uber.org/zap"

	"github.com/aggrecore/core/pkg/catalogs"
	"github.com/aggrecore/core/pkg/ctx"
	"github.com/aggrecore/core/pkg/effect"
	"github.com/aggrecore/core/pkg/env"
	"github.com/aggrecore/core/pkg/link"
	"github.com/aggrecore/core/pkg/player"
	"github.com/aggrecore/core/pkg/search"
	"github.com/aggrecore/core/pkg/streamingserver"
)

// Root is a plain struct of sub-models, a flat config-struct style
// rather than a reflection-walked field registry.
// Every field is addressable directly by code that already holds a
// *Root; FieldID below exists only for the Subscribe API.
type Root struct {
	Ctx             *ctx.Ctx
	Player          *player.Player
	Link            *link.State
	Search          *search.State
	StreamingServer *streamingserver.State

	CatalogsWithExtra  *catalogs.CatalogsWithExtra
	CatalogWithFilters *catalogs.CatalogWithFilters
	LibraryWithFilters *catalogs.LibraryWithFilters
	LibraryByType      *catalogs.LibraryByType
	MetaDetails        *catalogs.MetaDetails
	AddonDetails       *catalogs.AddonDetails
}

// NewRoot builds a Root with every sub-model freshly initialized against
// the same Env and logger: the client-side core.
func NewRoot(e env.Env, logger *zap.Logger) *Root {
	return &Root{
		Ctx:                ctx.New(e, logger),
		Player:             player.New(e, logger),
		Link:               link.New(e, logger),
		Search:             search.NewState(e, logger),
		StreamingServer:    streamingserver.New(e, logger),
		CatalogsWithExtra:  catalogs.NewCatalogsWithExtra(e, logger),
		CatalogWithFilters: catalogs.NewCatalogWithFilters(e, logger),
		LibraryWithFilters: &catalogs.LibraryWithFilters{},
		LibraryByType:      &catalogs.LibraryByType{},
		MetaDetails:        catalogs.NewMetaDetails(e, logger),
		AddonDetails:       catalogs.NewAddonDetails(e, logger),
	}
}

// Update routes msg to every sub-model capable of reacting to it. Each
// sub-model's own Update type-switches on msg and returns effect.None
// for anything it doesn't own, so handing the same msg to all of them is
// safe and is what lets e.g. Player's ActionEnded produce a
// ctx.ActionPlayerProgress effect that Ctx itself then reacts to once
// the Runtime re-dispatches it. No sub-model holds a reference to
// another; Root is the only thing that sees them all.
func (r *Root) Update(msg effect.Msg) effect.Effects {
	all := effect.Merge(
		r.Ctx.Update(msg),
		r.Player.Update(msg),
		r.Link.Update(msg),
		r.Search.Update(msg),
		r.StreamingServer.Update(msg),
		r.CatalogsWithExtra.Update(msg),
		r.CatalogWithFilters.Update(msg),
		r.MetaDetails.Update(msg),
		r.AddonDetails.Update(msg),
	)
	r.recomputeLibraryViews()
	return all
}

// recomputeLibraryViews refreshes the two pure library projections after
// every dispatch. They hold no Loadable state and no stale-result logic
// to protect, so recomputing unconditionally is cheap and correct; the
// alternative (recomputing only on library-changing messages) would need
// its own message allowlist that drifts every time a new library action
// is added.
func (r *Root) recomputeLibraryViews() {
	r.LibraryWithFilters.Recompute(r.Ctx.Library)
	r.LibraryByType.Recompute(r.Ctx.Library)
}

// FieldID names one Root field for Runtime.Subscribe, the small enum
// SPEC_FULL.md's design notes call for in place of reflection-based
// field walking.
type FieldID int

const (
	FieldCtx FieldID = iota
	FieldPlayer
	FieldLink
	FieldSearch
	FieldStreamingServer
	FieldCatalogsWithExtra
	FieldCatalogWithFilters
	FieldLibraryWithFilters
	FieldLibraryByType
	FieldMetaDetails
	FieldAddonDetails
)

// String renders a FieldID for logging, trading an explicit switch for
// iota-array cuteness.
func (f FieldID) String() string {
	switch f {
	case FieldCtx:
		return "ctx"
	case FieldPlayer:
		return "player"
	case FieldLink:
		return "link"
	case FieldSearch:
		return "search"
	case FieldStreamingServer:
		return "streamingserver"
	case FieldCatalogsWithExtra:
		return "catalogs_with_extra"
	case FieldCatalogWithFilters:
		return "catalog_with_filters"
	case FieldLibraryWithFilters:
		return "library_with_filters"
	case FieldLibraryByType:
		return "library_by_type"
	case FieldMetaDetails:
		return "meta_details"
	case FieldAddonDetails:
		return "addon_details"
	default:
		return "unknown"
	}
}
