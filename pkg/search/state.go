package search

import (
	"context"

	"go.uber.org/zap"

	"github.com/aggrecore/core/pkg/effect"
	"github.com/aggrecore/core/pkg/env"
)

// ActionRefresh re-fetches the feed and rebuilds the index, issued on
// init and periodically by the runtime's scheduler.
type ActionRefresh struct{}

type internalRefreshResult struct {
	items []Item
	err   error
}

// State is LocalSearch's Update-compatible wrapper around Engine, the
// same split the rest of the sub-models use: a pure-ish struct reacting
// to messages, with the actual fetch deferred to a effect.Future.
type State struct {
	engine *Engine
	logger *zap.Logger
}

func NewState(e env.Env, logger *zap.Logger) *State {
	return &State{engine: NewEngine(e, DefaultIndexOptions()), logger: logger}
}

func (s *State) Update(msg effect.Msg) effect.Effects {
	switch m := msg.(type) {
	case ActionRefresh:
		return effect.Future1(func(ctx context.Context) effect.Msg {
			items, err := s.engine.client.FetchItems(ctx)
			return internalRefreshResult{items: items, err: err}
		})
	case internalRefreshResult:
		if m.err != nil {
			s.logger.Warn("search: feed refresh failed", zap.Error(m.err))
			return effect.None
		}
		s.engine.current.Store(BuildIndex(m.items, s.engine.opts))
		return effect.None
	default:
		return effect.None
	}
}

// Autocomplete serves a query against the engine's current index.
func (s *State) Autocomplete(query string, limit int) []Result {
	return s.engine.Autocomplete(query, limit)
}
