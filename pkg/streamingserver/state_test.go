package streamingserver

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/aggrecore/core/pkg/effect"
	"github.com/aggrecore/core/pkg/env"
	"github.com/aggrecore/core/pkg/loadable"
)

func runFuture(t *testing.T, eff effect.Effects) effect.Msg {
	t.Helper()
	require.Len(t, eff.Futures, 1)
	return eff.Futures[0](context.Background())
}

func TestLoadFetchesSettingsAndBecomesReady(t *testing.T) {
	mem := env.NewMemory(time.Now())
	mem.FetchFn = func(_ context.Context, req env.Request) (int, []byte, error) {
		if req.Method == "GET" && req.URL == "http://127.0.0.1:11470/settings" {
			return 200, []byte(`{"serverVersion":"0.11.0","btMaxConnections":50}`), nil
		}
		return 404, nil, nil
	}

	s := New(mem, zap.NewNop())
	eff := s.load("http://127.0.0.1:11470")
	assert.Equal(t, loadable.StateLoading, s.Value.State)

	msg := runFuture(t, eff)
	s.Update(msg)

	require.Equal(t, loadable.StateReady, s.Value.State)
	assert.Equal(t, "0.11.0", s.Value.Value.Settings.ServerVersion)
	assert.Equal(t, 50, s.Value.Value.Settings.BtMaxConnections)
}

func TestLoadFailurePutsValueInErrState(t *testing.T) {
	mem := env.NewMemory(time.Now())
	mem.FetchFn = func(_ context.Context, _ env.Request) (int, []byte, error) {
		return 500, nil, nil
	}

	s := New(mem, zap.NewNop())
	eff := s.Update(ActionLoad{URL: "http://127.0.0.1:11470"})
	msg := runFuture(t, eff)
	s.Update(msg)

	require.Equal(t, loadable.StateErr, s.Value.State)
}

func TestStaleReloadResultForSupersededURLIsDiscarded(t *testing.T) {
	mem := env.NewMemory(time.Now())
	s := New(mem, zap.NewNop())
	s.Update(ActionLoad{URL: "http://old:11470"})
	s.Update(ActionLoad{URL: "http://new:11470"})

	eff := s.Update(internalReloadResult{url: "http://old:11470", loaded: Loaded{Settings: Settings{ServerVersion: "stale"}}})
	assert.Equal(t, effect.None, eff)
	assert.Equal(t, loadable.StateLoading, s.Value.State)
	assert.Equal(t, "http://new:11470", s.URL)
}

func TestUpdateSettingsIgnoredWhenNotReady(t *testing.T) {
	mem := env.NewMemory(time.Now())
	s := New(mem, zap.NewNop())
	eff := s.Update(ActionUpdateSettings{Settings: Settings{ServerVersion: "1"}})
	assert.Equal(t, effect.None, eff)
}

func TestUpdateSettingsPostsThenReloads(t *testing.T) {
	mem := env.NewMemory(time.Now())
	var postedBody string
	mem.FetchFn = func(_ context.Context, req env.Request) (int, []byte, error) {
		switch {
		case req.Method == "POST" && req.URL == "http://127.0.0.1:11470/settings":
			buf := make([]byte, 0)
			if req.Body != nil {
				b := make([]byte, 1024)
				n, _ := req.Body.Read(b)
				buf = b[:n]
			}
			postedBody = string(buf)
			return 200, nil, nil
		case req.Method == "GET" && req.URL == "http://127.0.0.1:11470/settings":
			return 200, []byte(`{"serverVersion":"0.11.1"}`), nil
		}
		return 404, nil, nil
	}

	s := New(mem, zap.NewNop())
	s.Value = loadable.Ready(Loaded{Settings: Settings{ServerVersion: "0.11.0"}})
	s.URL = "http://127.0.0.1:11470"

	eff := s.Update(ActionUpdateSettings{Settings: Settings{ServerVersion: "0.11.1"}})
	msg := runFuture(t, eff)
	s.Update(msg)

	assert.Contains(t, postedBody, "0.11.1")
	assert.Equal(t, "0.11.1", s.Value.Value.Settings.ServerVersion)
}
