package main

import (
	"context"
	"encoding/json"

	"go.uber.org/zap"

	"github.com/aggrecore/core/pkg/env"
	"github.com/aggrecore/core/pkg/runtime"
)

// bootstrap hydrates a freshly constructed Root from persisted storage,
// the step cmd/deflix-stremio's initStores/initCaches pair performs for
// its BadgerDB-backed caches, generalized here from "load a gob blob of
// cache items" to "load one JSON bucket per storage key, migrating it to
// the current schema version first."
func bootstrap(ctx context.Context, e env.Env, root *runtime.Root, logger *zap.Logger) error {
	schemaVersion := env.CurrentSchemaVersion
	if raw, found, err := loadBucket(ctx, e, env.KeySchemaVersion); err != nil {
		return err
	} else if found {
		if err := json.Unmarshal(raw, &schemaVersion); err != nil {
			return err
		}
	}

	if err := loadAndMigrate(ctx, e, env.KeyProfile, schemaVersion, &root.Ctx.Profile); err != nil {
		return err
	}
	if err := loadAndMigrate(ctx, e, env.KeyLibrary, schemaVersion, &root.Ctx.Library); err != nil {
		return err
	}
	if err := loadAndMigrate(ctx, e, env.KeyLibraryRecent, schemaVersion, &root.Ctx.LibraryRecent); err != nil {
		return err
	}
	if err := loadAndMigrate(ctx, e, env.KeyStreams, schemaVersion, &root.Ctx.Streams); err != nil {
		return err
	}
	if err := loadAndMigrate(ctx, e, env.KeyNotifications, schemaVersion, &root.Ctx.Notifications); err != nil {
		return err
	}

	if len(root.Ctx.Profile.Addons) == 0 {
		logger.Info("aggrecored: fresh profile, seeding default addons")
		root.Ctx.Profile.Addons = loadDefaultAddons(logger)
	}

	return e.SetStorage(ctx, env.KeySchemaVersion, mustMarshal(env.CurrentSchemaVersion))
}

func loadBucket(ctx context.Context, e env.Env, key string) ([]byte, bool, error) {
	raw, found, err := e.GetStorage(ctx, key)
	if err != nil {
		return nil, false, err
	}
	return raw, found, nil
}

// loadAndMigrate loads key, runs it through env.Migrate if it predates
// the current schema version, and unmarshals the result into out. A
// missing key leaves out at its zero value, matching a brand new
// profile.
func loadAndMigrate(ctx context.Context, e env.Env, key string, schemaVersion int, out interface{}) error {
	raw, found, err := loadBucket(ctx, e, key)
	if err != nil {
		return err
	}
	if !found {
		return nil
	}
	if schemaVersion < env.CurrentSchemaVersion {
		raw, err = env.Migrate(raw, schemaVersion)
		if err != nil {
			return err
		}
	}
	return json.Unmarshal(raw, out)
}

func mustMarshal(v interface{}) []byte {
	data, err := json.Marshal(v)
	if err != nil {
		panic(err)
	}
	return data
}
