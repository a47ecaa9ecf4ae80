package streamingserver

import (
	"context"

	"go.uber.org/zap"

	"github.com/aggrecore/core/pkg/effect"
	"github.com/aggrecore/core/pkg/env"
	"github.com/aggrecore/core/pkg/loadable"
)

// Loaded pairs the settings the server reports with the base URL they
// were loaded from (the ActionLoad URL; the server's response does not
// supply it), mirroring StreamingServerLoadable::Ready's
// {settings, base_url} pair.
type Loaded struct {
	Settings Settings
	BaseURL  string
}

// ActionLoad (re)loads settings from url. Re-issued whenever
// settings.streaming_server_url changes in Ctx's Profile, since State
// holds no back-reference to Ctx: the runtime carries the URL across.
type ActionLoad struct {
	URL string
}

// ActionUpdateSettings pushes new settings to the server the State is
// currently Ready against, then reloads to confirm what stuck.
type ActionUpdateSettings struct {
	Settings Settings
}

type internalReloadResult struct {
	url    string
	loaded Loaded
	err    error
}

// State is the client-side StreamingServerLoadable: a Loadable[Loaded]
// keyed by the URL it was last asked to load, so a reply for a
// superseded URL is discarded on arrival.
type State struct {
	URL   string
	Value loadable.Loadable[Loaded]

	env    env.Env
	logger *zap.Logger
}

func New(e env.Env, logger *zap.Logger) *State {
	return &State{env: e, logger: logger}
}

func (s *State) Update(msg effect.Msg) effect.Effects {
	switch m := msg.(type) {
	case ActionLoad:
		return s.load(m.URL)
	case ActionUpdateSettings:
		return s.updateSettings(m.Settings)
	case internalReloadResult:
		return s.completeReload(m)
	default:
		return effect.None
	}
}

func (s *State) load(url string) effect.Effects {
	s.URL = url
	s.Value = loadable.Loading[Loaded]()
	return effect.Future1(s.reloadFuture(url))
}

func (s *State) updateSettings(settings Settings) effect.Effects {
	if s.Value.State != loadable.StateReady {
		return effect.None
	}
	url := s.URL
	s.Value = loadable.Loading[Loaded]()
	return effect.Future1(func(ctx context.Context) effect.Msg {
		client := NewClient(s.env, url)
		if err := client.SetSettings(ctx, settings); err != nil {
			return internalReloadResult{url: url, err: err}
		}
		return loadSync(ctx, client, url)
	})
}

func (s *State) reloadFuture(url string) effect.Future {
	return func(ctx context.Context) effect.Msg {
		client := NewClient(s.env, url)
		return loadSync(ctx, client, url)
	}
}

func loadSync(ctx context.Context, client *Client, url string) effect.Msg {
	settings, err := client.GetSettings(ctx)
	if err != nil {
		return internalReloadResult{url: url, err: err}
	}
	return internalReloadResult{url: url, loaded: Loaded{Settings: settings, BaseURL: client.baseURL}}
}

func (s *State) completeReload(m internalReloadResult) effect.Effects {
	if s.Value.State != loadable.StateLoading || s.URL != m.url {
		return effect.None
	}
	if m.err != nil {
		s.Value = loadable.Err[Loaded](m.err)
		s.logger.Warn("streamingserver: reload failed", zap.String("url", m.url), zap.Error(m.err))
		return effect.None
	}
	s.Value = loadable.Ready(m.loaded)
	return effect.None
}
