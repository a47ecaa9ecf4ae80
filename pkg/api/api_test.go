package api

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aggrecore/core/pkg/env"
)

func TestLoginDecodesResultEnvelope(t *testing.T) {
	m := env.NewMemory(time.Now())
	m.FetchFn = func(_ context.Context, req env.Request) (int, []byte, error) {
		assert.Equal(t, "POST", req.Method)
		assert.Contains(t, req.URL, "/api/login")
		return 200, []byte(`{"result":{"key":"k1","user":{"id":"u1","email":"a@b.com"}}}`), nil
	}
	c := NewClient(m)
	out, err := c.Login(context.Background(), "a@b.com", "secret")
	require.NoError(t, err)
	assert.Equal(t, "k1", out.Key)
	assert.Equal(t, "u1", out.User.ID)
}

func TestLoginPropagatesAPIError(t *testing.T) {
	m := env.NewMemory(time.Now())
	m.FetchFn = func(_ context.Context, req env.Request) (int, []byte, error) {
		return 200, []byte(`{"error":{"code":1,"message":"invalid credentials"}}`), nil
	}
	c := NewClient(m)
	_, err := c.Login(context.Background(), "a@b.com", "wrong")
	require.Error(t, err)
	apiErr, ok := err.(*Error)
	require.True(t, ok)
	assert.Equal(t, 1, apiErr.Code)
}

func TestDatastoreMetaParsesPairs(t *testing.T) {
	m := env.NewMemory(time.Now())
	m.FetchFn = func(_ context.Context, req env.Request) (int, []byte, error) {
		return 200, []byte(`{"result":[["tt1","2026-01-01T00:00:00Z"],["tt2","2026-01-02T00:00:00Z"]]}`), nil
	}
	c := NewClient(m)
	entries, err := c.DatastoreMeta(context.Background(), "k1", "libraryItem")
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "tt1", entries[0].ID)
}

func TestDataExportBuildsDownloadURL(t *testing.T) {
	m := env.NewMemory(time.Now())
	m.FetchFn = func(_ context.Context, req env.Request) (int, []byte, error) {
		return 200, []byte(`{"result":{"exportId":"exp1"}}`), nil
	}
	c := NewClient(m)
	url, err := c.DataExport(context.Background(), "k1")
	require.NoError(t, err)
	assert.Equal(t, DefaultBaseURL+"/data-export/exp1/export.json", url)
}
