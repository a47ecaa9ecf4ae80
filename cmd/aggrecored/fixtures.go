package main

import (
	"encoding/json"
	"io"

	"github.com/markbates/pkger"
	"go.uber.org/zap"

	"github.com/aggrecore/core/pkg/stremio"
)

// defaultFixturesDir is bundled into the binary by the `pkger` CLI at
// build time (`pkger -include github.com/aggrecore/core/cmd/aggrecored:/fixtures`),
// the same "embed a directory, open files from it at runtime" shape
// cmd/deflix-stremio/main.go uses for its web/configure assets.
const defaultFixturesDir = "/fixtures"

// loadDefaultAddons reads the bundled default-addons.json fixture, the
// small set of community addons (Cinemeta foremost) a brand new profile
// should start with, so a fresh install isn't an empty catalog list.
func loadDefaultAddons(logger *zap.Logger) []stremio.Descriptor {
	dir := pkger.Dir(defaultFixturesDir)
	f, err := dir.Open("/default-addons.json")
	if err != nil {
		logger.Warn("aggrecored: no bundled default-addons.json, starting with an empty addon list", zap.Error(err))
		return nil
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		logger.Warn("aggrecored: could not read bundled default-addons.json", zap.Error(err))
		return nil
	}

	var addons []stremio.Descriptor
	if err := json.Unmarshal(data, &addons); err != nil {
		logger.Warn("aggrecored: could not decode bundled default-addons.json", zap.Error(err))
		return nil
	}
	return addons
}
