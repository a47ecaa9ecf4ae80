package search

import (
	"context"
	"sync/atomic"

	"github.com/aggrecore/core/pkg/env"
)

// Engine holds the current Index behind an atomic pointer so a refresh
// in flight never blocks or corrupts a concurrent Autocomplete call:
// readers always see either the previous index or the freshly built one.
type Engine struct {
	client  *Client
	opts    IndexOptions
	current atomic.Pointer[Index]
}

func NewEngine(e env.Env, opts IndexOptions) *Engine {
	return &Engine{client: NewClient(e), opts: opts}
}

// Refresh fetches the feed and atomically swaps in a newly built index.
func (e *Engine) Refresh(ctx context.Context) error {
	items, err := e.client.FetchItems(ctx)
	if err != nil {
		return err
	}
	e.current.Store(BuildIndex(items, e.opts))
	return nil
}

// Autocomplete serves a query against whatever index is current, or nil
// if no refresh has ever completed.
func (e *Engine) Autocomplete(query string, limit int) []Result {
	idx := e.current.Load()
	if idx == nil {
		return nil
	}
	return idx.Autocomplete(query, limit)
}
