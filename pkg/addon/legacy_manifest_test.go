package addon

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSynthesizeManifestSortsTimesTypes(t *testing.T) {
	lm := legacyManifest{
		ID:         "org.test",
		Types:      []string{"movie", "series"},
		Sorts:      []string{"popular", "year"},
		IDProperty: "imdb_id",
	}
	manifest := synthesizeManifest(lm, []string{"meta.find", "stream.find"})

	assert.Len(t, manifest.Catalogs, 4, "2 types x 2 sorts")
	assert.Equal(t, []string{"tt"}, manifest.IDprefixes)

	var names []string
	for _, r := range manifest.Resources {
		names = append(names, r.Name)
	}
	assert.ElementsMatch(t, []string{"catalog", "stream"}, names)
}

func TestSynthesizeManifestNoSortsYieldsTopCatalog(t *testing.T) {
	lm := legacyManifest{Types: []string{"movie"}, IDProperty: "yt_id"}
	manifest := synthesizeManifest(lm, nil)

	assert.Equal(t, []string{"UC"}, manifest.IDprefixes)
	assert.Len(t, manifest.Catalogs, 1)
	assert.Equal(t, "top", manifest.Catalogs[0].ID)
}

func TestIDPrefixForUnknownProperty(t *testing.T) {
	assert.Equal(t, "customProp:", idPrefixFor("customProp"))
}
