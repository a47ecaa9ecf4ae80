package main

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/aggrecore/core/pkg/env"
	"github.com/aggrecore/core/pkg/runtime"
	"github.com/aggrecore/core/pkg/stremio"
)

func TestBootstrapLeavesFreshProfileEmptyWithoutBundledFixture(t *testing.T) {
	m := env.NewMemory(time.Now())
	root := runtime.NewRoot(m, zap.NewNop())

	err := bootstrap(context.Background(), m, root, zap.NewNop())
	require.NoError(t, err)

	// No pkger-bundled asset is available outside a `pkger` build, so a
	// fresh profile's addon list stays empty rather than panicking.
	assert.Empty(t, root.Ctx.Profile.Addons)

	raw, found, err := m.GetStorage(context.Background(), env.KeySchemaVersion)
	require.NoError(t, err)
	require.True(t, found)
	var version int
	require.NoError(t, json.Unmarshal(raw, &version))
	assert.Equal(t, env.CurrentSchemaVersion, version)
}

func TestBootstrapLoadsPersistedBuckets(t *testing.T) {
	m := env.NewMemory(time.Now())
	library := stremio.LibraryBucket{Items: map[string]stremio.LibraryItem{
		"tt1": {ID: "tt1"},
	}}
	data, err := json.Marshal(library)
	require.NoError(t, err)
	require.NoError(t, m.SetStorage(context.Background(), env.KeyLibrary, data))

	root := runtime.NewRoot(m, zap.NewNop())
	require.NoError(t, bootstrap(context.Background(), m, root, zap.NewNop()))

	assert.Contains(t, root.Ctx.Library.Items, "tt1")
}
