// Package env defines the host contract the rest of the module runs
// against: fetching addon/API resources over the network, persisting
// buckets, scheduling work, and reporting analytics. Every feature
// package depends only on this interface, never on a concrete host.
package env

import (
	"context"
	"io"
	"net/http"
	"time"
)

// Request describes a single outbound HTTP call an Env should perform on
// behalf of the addon/API/streaming-server transports.
type Request struct {
	Method  string
	URL     string
	Headers map[string]string
	Body    io.Reader
}

// Env is the host adapter contract. Everything that touches the outside
// world (network, disk, wall clock, the analytics sink) goes through it,
// so that pkg/ctx, pkg/addon, and friends stay pure and testable against
// env.Memory.
type Env interface {
	// Fetch performs an HTTP request and returns the raw response body
	// plus status code. Implementations apply their own timeout,
	// rate-limiting, and proxying policy.
	Fetch(ctx context.Context, req Request) (status int, body []byte, err error)

	// GetStorage loads the raw JSON bytes stored under key, or
	// (nil, false, nil) if the key has never been set.
	GetStorage(ctx context.Context, key string) (value []byte, found bool, err error)

	// SetStorage persists value under key. A nil value deletes the key.
	SetStorage(ctx context.Context, key string, value []byte) error

	// Now returns the current time. Tests substitute a fixed clock via
	// env.Memory so scenarios are reproducible.
	Now() time.Time

	// ExecConcurrent schedules task to run without ordering guarantees
	// relative to other ExecConcurrent/ExecSequential tasks.
	ExecConcurrent(task func(context.Context) error)

	// ExecSequential schedules task to run after every other
	// ExecSequential task previously scheduled under the same key has
	// completed, preserving issue order for same-bucket storage writes.
	ExecSequential(key string, task func(context.Context) error)

	// FlushAnalytics forwards a named event with arbitrary properties to
	// the host's analytics sink. Best-effort: implementations log and
	// swallow delivery failures rather than propagating them.
	FlushAnalytics(ctx context.Context, event string, props map[string]interface{})
}

// Error is a typed, inspectable Env failure: a concrete error value
// rather than an ad hoc string.
type Error struct {
	Kind    ErrorKind
	Message string
	Err     error
}

type ErrorKind int

const (
	ErrUnknown ErrorKind = iota
	ErrNetwork
	ErrStorage
	ErrTimeout
)

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// defaultHTTPTimeout is the per-request timeout env.HTTP applies when the
// caller's context carries no earlier deadline.
const defaultHTTPTimeout = 30 * time.Second

// newHTTPClient is a package-level hook tests can swap; the real HTTP Env
// calls it once at construction.
var newHTTPClient = func(transport http.RoundTripper, timeout time.Duration) *http.Client {
	return &http.Client{Transport: transport, Timeout: timeout}
}
