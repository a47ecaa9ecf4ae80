package ctx

import (
	"github.com/aggrecore/core/pkg/effect"
)

// installAddon upserts an addon by TransportURL, preserving install
// order (a reinstall updates the existing entry in place rather than
// moving it to the end).
func (c *Ctx) installAddon(m ActionInstallAddon) effect.Effects {
	for i, d := range c.Profile.Addons {
		if d.TransportURL == m.Descriptor.TransportURL {
			c.Profile.Addons[i] = m.Descriptor
			return c.flushAddonsEffects()
		}
	}
	c.Profile.Addons = append(c.Profile.Addons, m.Descriptor)
	return c.flushAddonsEffects()
}

// uninstallAddon removes an addon by TransportURL. Protected addons
// (Flags.Protected) refuse removal with ErrAccessDenied.
func (c *Ctx) uninstallAddon(m ActionUninstallAddon) effect.Effects {
	for i, d := range c.Profile.Addons {
		if d.TransportURL != m.TransportURL {
			continue
		}
		if d.Flags.Protected {
			return effect.Msg1(EventError{
				Err:    &Error{Kind: ErrAccessDenied},
				Source: "UninstallAddon",
			})
		}
		c.Profile.Addons = append(c.Profile.Addons[:i], c.Profile.Addons[i+1:]...)
		return c.flushAddonsEffects()
	}
	return effect.None
}

func (c *Ctx) flushAddonsEffects() effect.Effects {
	return effect.SequentialFuture1("profile", c.flushProfileFuture())
}
