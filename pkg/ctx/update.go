package ctx

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/aggrecore/core/pkg/effect"
)

// Update is Ctx's entire mutation surface: a type switch over the
// Action*/internal* messages declared in msgs.go. No I/O happens here:
// every side effect is returned as a effect.Future for the runtime to
// carry out. Update never spawns a goroutine of its own.
func (c *Ctx) Update(msg effect.Msg) effect.Effects {
	switch m := msg.(type) {
	case ActionAuthenticate:
		return c.authenticate(m)
	case internalCtxAuthResult:
		return c.completeAuthenticate(m)
	case ActionLogout:
		return c.logout()

	case ActionInstallAddon:
		return c.installAddon(m)
	case ActionUninstallAddon:
		return c.uninstallAddon(m)

	case ActionAddToLibrary:
		return c.addToLibrary(m)
	case ActionRemoveFromLibrary:
		return c.removeFromLibrary(m)
	case ActionRewindLibraryItem:
		return c.rewindLibraryItem(m)
	case ActionToggleLibraryItemNotifications:
		return c.toggleLibraryItemNotifications(m)
	case ActionPlayerProgress:
		return c.applyPlayerProgress(m)

	case ActionSyncLibraryWithAPI:
		return c.syncLibraryWithAPI()
	case internalLibrarySyncResult:
		return c.completeLibrarySync(m)

	case ActionApplyNotifications:
		return c.applyNotifications(m)

	case InternalStreamLoaded:
		return c.streamLoaded(m)

	default:
		c.logger.Debug("ctx: unhandled message", zap.String("type", fmt.Sprintf("%T", msg)))
		return effect.None
	}
}
