package loadable

import (
	"time"

	gocache "github.com/patrickmn/go-cache"

	"github.com/aggrecore/core/pkg/stremio"
)

// cellKey identifies a Cell within a Collection, independent of its
// current request (a collection is keyed by the *planned* request slot
// order would be awkward across re-plans, so cells are keyed by the
// addon base + path shape that stays stable across repeated plans of
// "the same logical thing").
func cellKey(r stremio.ResourceRequest) string {
	return r.Base + "|" + r.Path.Resource + "|" + r.Path.Type + "|" + r.Path.ID + "|" + r.Path.EncodeExtra()
}

// Collection applies the ResourceLoadable protocol across every request
// in a plan at once, grounded on the go-cache-backed dedup caches
// (cache.go), repurposed here from "cache a completed value" to
// "suppress a duplicate in-flight fetch for a request already Loading".
type Collection[T any] struct {
	cells map[string]*Cell[T]

	// inFlight guards against issuing a second fetch for a request that
	// is already Loading, mirroring the go-cache TTL guard pattern
	// (patrickmn/go-cache) but storing presence, not a value.
	inFlight *gocache.Cache
}

func NewCollection[T any]() *Collection[T] {
	return &Collection[T]{
		cells:    map[string]*Cell[T]{},
		inFlight: gocache.New(5*time.Minute, 10*time.Minute),
	}
}

// Plan applies ResourceRequested to every request in plan. Existing
// non-None cells for a request already represented in the collection are
// left untouched unless force is true. Returns the subset of requests
// that actually need a fetch issued.
func (c *Collection[T]) Plan(plan []stremio.ResourceRequest, force bool) []stremio.ResourceRequest {
	var toFetch []stremio.ResourceRequest
	for _, r := range plan {
		key := cellKey(r)
		cell, ok := c.cells[key]
		if !ok {
			cell = &Cell[T]{}
			c.cells[key] = cell
		}

		if !force && ok && cell.Content.State != StateNone {
			continue
		}

		if _, inFlight := c.inFlight.Get(key); inFlight && !force {
			continue
		}

		if cell.Requested(r) || force {
			cell.Request = r
			cell.Content = Loading[T]()
			c.inFlight.SetDefault(key, true)
			toFetch = append(toFetch, r)
		}
	}
	return toFetch
}

// Complete applies ResourceRequestResult for the request's cell.
func (c *Collection[T]) Complete(r stremio.ResourceRequest, value T, empty bool, err error) bool {
	key := cellKey(r)
	cell, ok := c.cells[key]
	if !ok {
		return false
	}
	c.inFlight.Delete(key)
	return cell.Completed(r, value, empty, err)
}

// Get returns the cell for r, if any request for it has ever been
// planned.
func (c *Collection[T]) Get(r stremio.ResourceRequest) (Loadable[T], bool) {
	cell, ok := c.cells[cellKey(r)]
	if !ok {
		return Loadable[T]{}, false
	}
	return cell.Content, true
}

// All returns every cell currently tracked by the collection, for
// callers that need to render/aggregate the whole plan's state.
func (c *Collection[T]) All() map[string]*Cell[T] {
	return c.cells
}
