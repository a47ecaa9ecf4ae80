package addon

import (
	"context"

	"go.uber.org/multierr"

	"github.com/aggrecore/core/pkg/stremio"
)

// AggrRequestKind discriminates the three AggrRequest arms.
type AggrRequestKind int

const (
	AggrAllCatalogs AggrRequestKind = iota
	AggrAllOfResource
	AggrFromAddon
)

// AggrRequest is a request across the installed addon set, or a
// singleton against one named addon.
type AggrRequest struct {
	Kind AggrRequestKind

	// AllCatalogs
	Extra []stremio.ExtraValue
	Type  string // optional filter, "" means any type

	// AllOfResource / FromAddon
	Path stremio.ResourcePath

	// FromAddon
	TransportURL string
}

// Plan computes the ordered list of concrete ResourceRequests that
// satisfy req against the installed addon set. It is a pure function:
// no network access, no side effects.
func Plan(installed []stremio.Descriptor, req AggrRequest) []stremio.ResourceRequest {
	switch req.Kind {
	case AggrAllCatalogs:
		return planAllCatalogs(installed, req)
	case AggrAllOfResource:
		return planAllOfResource(installed, req)
	case AggrFromAddon:
		for _, d := range installed {
			if d.TransportURL == req.TransportURL {
				return []stremio.ResourceRequest{{Base: d.TransportURL, Path: req.Path}}
			}
		}
		return nil
	default:
		return nil
	}
}

// planAllCatalogs emits one request per (addon, catalog) pair where the
// catalog's type matches (or req.Type is empty) and every extra
// requirement is satisfiable, in addon-install order then manifest
// catalog order.
func planAllCatalogs(installed []stremio.Descriptor, req AggrRequest) []stremio.ResourceRequest {
	provided := extraMap(req.Extra)

	var out []stremio.ResourceRequest
	for _, d := range installed {
		for _, cat := range d.Manifest.Catalogs {
			if req.Type != "" && cat.Type != req.Type {
				continue
			}
			if !cat.CatalogSupportsExtra(provided) {
				continue
			}
			out = append(out, stremio.ResourceRequest{
				Base: d.TransportURL,
				Path: stremio.ResourcePath{
					Resource: "catalog",
					Type:     cat.Type,
					ID:       cat.ID,
					Extra:    req.Extra,
				},
			})
		}
	}
	return out
}

// planAllOfResource emits one request per addon whose manifest supports
// req.Path, in addon-install order.
func planAllOfResource(installed []stremio.Descriptor, req AggrRequest) []stremio.ResourceRequest {
	var out []stremio.ResourceRequest
	for _, d := range installed {
		if !d.Manifest.SupportsPath(req.Path) {
			continue
		}
		out = append(out, stremio.ResourceRequest{Base: d.TransportURL, Path: req.Path})
	}
	return out
}

func extraMap(extra []stremio.ExtraValue) map[string]string {
	m := make(map[string]string, len(extra))
	for _, e := range extra {
		m[e.Name] = e.Value
	}
	return m
}

// PlanResult pairs a ResourceRequest with the outcome of fetching it.
type PlanResult struct {
	Request  stremio.ResourceRequest
	Response stremio.ResourceResponse
	Err      error
}

// ExecutePlan fetches every request in plan concurrently, one goroutine
// per request, combining per-request failures with multierr.Combine
// while still returning every individual outcome keyed by request.
// Generalized from imdb2torrent.Client.FindMagnets' one-goroutine-per-source
// fan-out, adapted so each outcome lands in its own slot instead of
// being flattened into one combined result slice.
func ExecutePlan(ctx context.Context, plan []stremio.ResourceRequest, newInterface func(transportURL string) Interface) ([]PlanResult, error) {
	results := make([]PlanResult, len(plan))
	errs := make(chan error, len(plan))
	done := make(chan int, len(plan))

	for i, req := range plan {
		go func(i int, req stremio.ResourceRequest) {
			iface := newInterface(req.Base)
			resp, err := iface.Resource(ctx, req.Path)
			results[i] = PlanResult{Request: req, Response: resp, Err: err}
			if err != nil {
				errs <- err
			}
			done <- i
		}(i, req)
	}

	var combined error
	for range plan {
		<-done
	}
	close(errs)
	for err := range errs {
		combined = multierr.Append(combined, err)
	}
	return results, combined
}
