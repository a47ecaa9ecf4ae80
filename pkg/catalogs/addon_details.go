package catalogs

import (
	"context"

	"go.uber.org/zap"

	"github.com/aggrecore/core/pkg/addon"
	"github.com/aggrecore/core/pkg/effect"
	"github.com/aggrecore/core/pkg/env"
	"github.com/aggrecore/core/pkg/loadable"
	"github.com/aggrecore/core/pkg/stremio"
)

// AddonDetails shows one addon's manifest: for an installed addon it
// serves the Descriptor already held in Profile (no fetch), for a
// not-yet-installed transport URL (e.g. previewing a community addon
// from a catalog link) it fetches GET {base}/manifest.json.
type AddonDetails struct {
	TransportURL string
	Manifest     loadable.Loadable[stremio.Manifest]

	env    env.Env
	logger *zap.Logger
}

func NewAddonDetails(e env.Env, logger *zap.Logger) *AddonDetails {
	return &AddonDetails{env: e, logger: logger}
}

// ActionLoadInstalledAddon serves an already-installed addon's manifest
// synchronously, no network involved.
type ActionLoadInstalledAddon struct {
	Descriptor stremio.Descriptor
}

// ActionLoadRemoteAddon fetches the manifest of an addon not (yet)
// installed, identified only by its transport URL.
type ActionLoadRemoteAddon struct {
	TransportURL string
}

type internalAddonManifestResult struct {
	transportURL string
	manifest     stremio.Manifest
	err          error
}

func (a *AddonDetails) Update(msg effect.Msg) effect.Effects {
	switch m := msg.(type) {
	case ActionLoadInstalledAddon:
		a.TransportURL = m.Descriptor.TransportURL
		a.Manifest = loadable.Ready(m.Descriptor.Manifest)
		return effect.None
	case ActionLoadRemoteAddon:
		return a.loadRemote(m.TransportURL)
	case internalAddonManifestResult:
		return a.completeRemote(m)
	default:
		return effect.None
	}
}

func (a *AddonDetails) loadRemote(transportURL string) effect.Effects {
	a.TransportURL = transportURL
	a.Manifest = loadable.Loading[stremio.Manifest]()
	return effect.Future1(func(ctx context.Context) effect.Msg {
		manifest, err := addon.NewInterface(a.env, transportURL).Manifest(ctx)
		return internalAddonManifestResult{transportURL: transportURL, manifest: manifest, err: err}
	})
}

func (a *AddonDetails) completeRemote(m internalAddonManifestResult) effect.Effects {
	if a.Manifest.State != loadable.StateLoading || a.TransportURL != m.transportURL {
		return effect.None
	}
	if m.err != nil {
		a.Manifest = loadable.Err[stremio.Manifest](m.err)
		return effect.None
	}
	a.Manifest = loadable.Ready(m.manifest)
	return effect.None
}
