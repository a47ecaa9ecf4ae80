// Package loadable implements the generic "request -> loading -> result"
// cell shared by catalogs, meta, streams, and subtitles: a ResourceLoadable
// cell holds at most one outstanding request and transitions through
// None/Loading/Ready/Err as fetches complete, rejecting stale completions.
package loadable

import (
	"errors"

	"github.com/aggrecore/core/pkg/stremio"
)

// State discriminates the Loadable[T] tagged union.
type State int

const (
	StateNone State = iota
	StateLoading
	StateReady
	StateErr
)

// ErrEmptyContent is the error a Ready transition is replaced with when
// the fetched result has zero items.
var ErrEmptyContent = errors.New("loadable: empty content")

// Loadable[T] is the four-state result of one resource fetch.
type Loadable[T any] struct {
	State State
	Value T
	Err   error
}

func None[T any]() Loadable[T] { return Loadable[T]{State: StateNone} }

func Loading[T any]() Loadable[T] { return Loadable[T]{State: StateLoading} }

func Ready[T any](v T) Loadable[T] { return Loadable[T]{State: StateReady, Value: v} }

func Err[T any](err error) Loadable[T] { return Loadable[T]{State: StateErr, Err: err} }

// Cell wraps a single in-flight/resolved resource fetch: the request it
// was last issued for, and the Loadable content of that request.
type Cell[T any] struct {
	Request stremio.ResourceRequest
	Content Loadable[T]
}

// requestsEqual compares two ResourceRequests by value: same base and
// same resource path fields (including extras, order-sensitive: two
// requests with the same extras in different order are different
// requests, matching how they'd produce different cache/dedup keys).
func requestsEqual(a, b stremio.ResourceRequest) bool {
	if a.Base != b.Base || a.Path.Resource != b.Path.Resource || a.Path.Type != b.Path.Type || a.Path.ID != b.Path.ID {
		return false
	}
	if len(a.Path.Extra) != len(b.Path.Extra) {
		return false
	}
	for i := range a.Path.Extra {
		if a.Path.Extra[i] != b.Path.Extra[i] {
			return false
		}
	}
	return true
}

// Requested implements the ResourceRequested(r) transition: if r differs
// from the cell's current request, or the cell has never been populated,
// the cell moves to Loading for r and the caller should issue a fetch
// effect. It reports whether a fetch should actually be issued.
func (c *Cell[T]) Requested(r stremio.ResourceRequest) (shouldFetch bool) {
	if !requestsEqual(r, c.Request) || c.Content.State == StateNone {
		c.Request = r
		c.Content = Loading[T]()
		return true
	}
	return false
}

// Completed implements the ResourceRequestResult(r, result) transition:
// accepted only if r matches the cell's current request and the cell is
// Loading, otherwise the completion is a stale arrival and is discarded.
// A nil err with an empty result converts to ErrEmptyContent.
func (c *Cell[T]) Completed(r stremio.ResourceRequest, value T, empty bool, err error) (accepted bool) {
	if !requestsEqual(r, c.Request) || c.Content.State != StateLoading {
		return false
	}
	switch {
	case err != nil:
		c.Content = Err[T](err)
	case empty:
		c.Content = Err[T](ErrEmptyContent)
	default:
		c.Content = Ready[T](value)
	}
	return true
}
