package ctx

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aggrecore/core/pkg/stremio"
)

func TestInstallAddonAppendsThenUpdatesInPlace(t *testing.T) {
	c, _ := newTestCtx(t)

	c.Update(ActionInstallAddon{Descriptor: stremio.Descriptor{TransportURL: "https://a.example/manifest.json"}})
	c.Update(ActionInstallAddon{Descriptor: stremio.Descriptor{TransportURL: "https://b.example/manifest.json"}})
	require.Len(t, c.Profile.Addons, 2)

	updated := stremio.Descriptor{TransportURL: "https://a.example/manifest.json", Manifest: stremio.Manifest{Name: "updated"}}
	c.Update(ActionInstallAddon{Descriptor: updated})

	require.Len(t, c.Profile.Addons, 2)
	assert.Equal(t, "updated", c.Profile.Addons[0].Manifest.Name)
	assert.Equal(t, "https://b.example/manifest.json", c.Profile.Addons[1].TransportURL)
}

func TestUninstallAddonRemovesByTransportURL(t *testing.T) {
	c, _ := newTestCtx(t)
	c.Profile.Addons = []stremio.Descriptor{
		{TransportURL: "https://a.example/manifest.json"},
		{TransportURL: "https://b.example/manifest.json"},
	}

	c.Update(ActionUninstallAddon{TransportURL: "https://a.example/manifest.json"})

	require.Len(t, c.Profile.Addons, 1)
	assert.Equal(t, "https://b.example/manifest.json", c.Profile.Addons[0].TransportURL)
}

func TestUninstallProtectedAddonIsRefused(t *testing.T) {
	c, _ := newTestCtx(t)
	c.Profile.Addons = []stremio.Descriptor{
		{TransportURL: "https://a.example/manifest.json", Flags: stremio.DescriptorFlags{Protected: true}},
	}

	eff := c.Update(ActionUninstallAddon{TransportURL: "https://a.example/manifest.json"})

	require.Len(t, c.Profile.Addons, 1)
	require.Len(t, eff.Msgs, 1)
	evt, ok := eff.Msgs[0].(EventError)
	require.True(t, ok)
	ctxErr, ok := evt.Err.(*Error)
	require.True(t, ok)
	assert.Equal(t, ErrAccessDenied, ctxErr.Kind)
}
