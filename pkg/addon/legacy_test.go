package addon

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aggrecore/core/pkg/env"
	"github.com/aggrecore/core/pkg/stremio"
)

func TestNewInterfaceSelectsLegacyByMarker(t *testing.T) {
	m := NewMemoryEnv()
	assert.IsType(t, &Legacy{}, NewInterface(m, "https://legacy.example/stremio/v1"))
	assert.IsType(t, &Modern{}, NewInterface(m, "https://modern.example/manifest.json"))
}

// NewMemoryEnv is a tiny local helper so addon tests don't need to import
// env's Memory constructor signature directly.
func NewMemoryEnv() env.Env {
	return env.NewMemory(nowForTests())
}

func TestBuildLegacyRequestStreamFind(t *testing.T) {
	var capturedURL string
	m := env.NewMemory(nowForTests())
	m.FetchFn = func(_ context.Context, req env.Request) (int, []byte, error) {
		capturedURL = req.URL
		return 200, []byte(`{"jsonrpc":"2.0","id":1,"result":[]}`), nil
	}

	l := &Legacy{env: m, base: "https://legacy"}
	path := stremio.ResourcePath{Resource: "stream", Type: "series", ID: "tt0386676:5:1"}
	_, err := l.Resource(context.Background(), path)
	require.NoError(t, err)

	require.Contains(t, capturedURL, "https://legacy/q.json?b=")
	encoded := capturedURL[len("https://legacy/q.json?b="):]
	decoded, err := base64.StdEncoding.DecodeString(encoded)
	require.NoError(t, err)

	var envelope map[string]interface{}
	require.NoError(t, json.Unmarshal(decoded, &envelope))
	assert.Equal(t, "stream.find", envelope["method"])

	params, ok := envelope["params"].([]interface{})
	require.True(t, ok)
	require.Len(t, params, 2)
	assert.Nil(t, params[0])

	query := params[1].(map[string]interface{})["query"].(map[string]interface{})
	assert.Equal(t, "tt0386676", query["imdb_id"])
	assert.EqualValues(t, 5, query["season"])
	assert.EqualValues(t, 1, query["episode"])
	assert.Equal(t, "series", query["type"])
}

func TestLegacyErrorPropagatesAsJSONRPC(t *testing.T) {
	m := env.NewMemory(nowForTests())
	m.FetchFn = func(_ context.Context, req env.Request) (int, []byte, error) {
		return 200, []byte(`{"jsonrpc":"2.0","id":1,"error":{"code":2,"message":"not found"}}`), nil
	}
	l := &Legacy{env: m, base: "https://legacy"}
	_, err := l.Resource(context.Background(), stremio.ResourcePath{Resource: "meta", Type: "movie", ID: "tt1"})
	require.Error(t, err)
	addonErr, ok := err.(*Error)
	require.True(t, ok)
	assert.Equal(t, ErrJSONRPC, addonErr.Kind)
	assert.Equal(t, 2, addonErr.Code)
}

func TestLegacyMethodAndParamsCatalogSortUsesCatalogID(t *testing.T) {
	_, params, err := legacyMethodAndParams(stremio.ResourcePath{Resource: "catalog", Type: "movie", ID: "year"})
	require.NoError(t, err)
	assert.JSONEq(t, `{"year":-1,"popularity":-1}`, string(params["sort"].(json.RawMessage)))
	assert.Equal(t, 0, params["skip"])
}

func TestLegacyMethodAndParamsCatalogSortDuplicatesWhenIDIsPopularity(t *testing.T) {
	_, params, err := legacyMethodAndParams(stremio.ResourcePath{Resource: "catalog", Type: "movie", ID: "popularity"})
	require.NoError(t, err)
	assert.Equal(t, `{"popularity":-1,"popularity":-1}`, string(params["sort"].(json.RawMessage)))
}

func TestLegacyMethodAndParamsCatalogTopSortIsNull(t *testing.T) {
	_, params, err := legacyMethodAndParams(stremio.ResourcePath{Resource: "catalog", Type: "movie", ID: "top"})
	require.NoError(t, err)
	assert.Nil(t, params["sort"])
}

func TestLegacyMethodAndParamsCatalogSkipParsed(t *testing.T) {
	path := stremio.ResourcePath{Resource: "catalog", Type: "movie", ID: "year", Extra: []stremio.ExtraValue{{Name: "skip", Value: "20"}}}
	_, params, err := legacyMethodAndParams(path)
	require.NoError(t, err)
	assert.Equal(t, 20, params["skip"])
}

func TestIDToQueryVariants(t *testing.T) {
	assert.Equal(t, map[string]interface{}{"imdb_id": "tt0386676", "season": 5, "episode": 1}, idToQuery("tt0386676:5:1"))
	assert.Equal(t, map[string]interface{}{"imdb_id": "tt0386676"}, idToQuery("tt0386676"))
	assert.Equal(t, map[string]interface{}{"yt_id": "UCabc", "video_id": "xyz"}, idToQuery("UCabc:xyz"))
	assert.Equal(t, map[string]interface{}{"itemHash": "itemHash:foo"}, idToQuery("itemHash:foo"))
}
