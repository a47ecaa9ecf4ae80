// Package addon implements the two addon transport wire formats (modern
// HTTP and legacy base64-JSON-RPC) behind a single Interface, plus the
// pure resource-request planner that multiplexes requests across the
// installed addon set.
package addon

import (
	"context"
	"strings"

	"github.com/aggrecore/core/pkg/env"
	"github.com/aggrecore/core/pkg/stremio"
)

// legacyMarker is the literal transport-URL segment that selects the
// legacy JSON-RPC transport over the modern REST-ish one.
const legacyMarker = "/stremio/v1"

// Interface is the capability an installed addon exposes: fetch its
// manifest, or resolve one resource path.
type Interface interface {
	Manifest(ctx context.Context) (stremio.Manifest, error)
	Resource(ctx context.Context, path stremio.ResourcePath) (stremio.ResourceResponse, error)
}

// NewInterface dispatches on the transport URL, preferring concrete
// constructors over an interface hierarchy: no base "addon transport"
// type, just two structs satisfying Interface.
func NewInterface(e env.Env, transportURL string) Interface {
	if strings.Contains(transportURL, legacyMarker) {
		return &Legacy{env: e, base: strings.TrimSuffix(transportURL, "/")}
	}
	return &Modern{env: e, base: strings.TrimSuffix(transportURL, "/")}
}

// ErrorKind discriminates addon-transport failures.
type ErrorKind int

const (
	ErrUnknown ErrorKind = iota
	ErrTransport
	ErrJSONRPC
	ErrUnsupportedResource
	ErrUnsupportedRequest
)

// Error is a typed, inspectable addon transport failure.
type Error struct {
	Kind ErrorKind
	// Code/Message are populated for ErrJSONRPC, from the legacy
	// envelope's error object.
	Code    int
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	switch e.Kind {
	case ErrUnsupportedResource:
		return "addon: unsupported resource"
	case ErrUnsupportedRequest:
		return "addon: unsupported request for this addon"
	default:
		return "addon: transport error"
	}
}

func (e *Error) Unwrap() error { return e.Err }
