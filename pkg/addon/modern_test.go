package addon

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aggrecore/core/pkg/env"
)

func TestModernResourceBuildsExtraPath(t *testing.T) {
	var capturedURL string
	m := env.NewMemory(nowForTests())
	m.FetchFn = func(_ context.Context, req env.Request) (int, []byte, error) {
		capturedURL = req.URL
		return 200, []byte(`{"metas":[]}`), nil
	}

	mod := &Modern{env: m, base: "https://modern"}
	_, err := mod.Resource(context.Background(), resourcePathWithExtra())
	require.NoError(t, err)
	assert.Equal(t, "https://modern/catalog/movie/top/genre=Action&skip=20.json", capturedURL)
}
