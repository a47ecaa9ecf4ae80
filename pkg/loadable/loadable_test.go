package loadable

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aggrecore/core/pkg/stremio"
)

func req(extra string) stremio.ResourceRequest {
	return stremio.ResourceRequest{
		Base: "https://addon",
		Path: stremio.ResourcePath{Resource: "catalog", Type: "movie", ID: "top", Extra: []stremio.ExtraValue{{Name: "skip", Value: extra}}},
	}
}

func TestCellRequestedSetsLoadingOnChange(t *testing.T) {
	var c Cell[[]string]
	assert.True(t, c.Requested(req("0")))
	assert.Equal(t, StateLoading, c.Content.State)

	assert.False(t, c.Requested(req("0")), "same request against a Loading cell should not re-fetch")
}

func TestCellCompletedRejectsStaleRequest(t *testing.T) {
	var c Cell[[]string]
	c.Requested(req("0"))

	accepted := c.Completed(req("1"), nil, false, nil)
	assert.False(t, accepted, "completion for a different request than the cell's current one is stale")
	assert.Equal(t, StateLoading, c.Content.State)

	accepted = c.Completed(req("0"), []string{"a"}, false, nil)
	assert.True(t, accepted)
	assert.Equal(t, StateReady, c.Content.State)
	assert.Equal(t, []string{"a"}, c.Content.Value)
}

func TestCellCompletedEmptyBecomesErrEmptyContent(t *testing.T) {
	var c Cell[[]string]
	c.Requested(req("0"))
	c.Completed(req("0"), nil, true, nil)
	assert.Equal(t, StateErr, c.Content.State)
	assert.True(t, errors.Is(c.Content.Err, ErrEmptyContent))
}

func TestCollectionPlanDedupsUnlessForced(t *testing.T) {
	col := NewCollection[[]string]()
	plan := []stremio.ResourceRequest{req("0")}

	toFetch := col.Plan(plan, false)
	assert.Len(t, toFetch, 1)

	require.True(t, col.Complete(req("0"), []string{"x"}, false, nil))

	toFetch = col.Plan(plan, false)
	assert.Empty(t, toFetch, "already-Ready cell should not be re-planned without force")

	toFetch = col.Plan(plan, true)
	assert.Len(t, toFetch, 1, "force=true re-plans even a Ready cell")
}
