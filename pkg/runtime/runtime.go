package runtime

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/aggrecore/core/pkg/effect"
	"github.com/aggrecore/core/pkg/env"
)

// DefaultQueueCapacity is the dispatch queue's default bound: once full,
// Dispatch drops the message rather than blocking the caller or growing
// unbounded.
const DefaultQueueCapacity = 1000

type queuedMsg struct {
	msg     effect.Msg
	traceID string
}

// Runtime is the single dispatcher: Dispatch enqueues a message, the
// loop started by Run pulls it off, calls
// Root.Update exactly once (so Update never re-enters itself), runs the
// returned Futures through Env.ExecConcurrent/ExecSequential, and
// re-dispatches whatever Msg each Future resolves to.
type Runtime struct {
	root    *Root
	env     env.Env
	logger  *zap.Logger
	queue   chan queuedMsg
	metrics *metrics

	subsMu sync.Mutex
	subs   map[FieldID][]func(*Root)
}

// Option configures a Runtime at construction.
type Option func(*Runtime)

// WithQueueCapacity overrides DefaultQueueCapacity.
func WithQueueCapacity(n int) Option {
	return func(r *Runtime) { r.queue = make(chan queuedMsg, n) }
}

// New builds a Runtime around root, ready for Run to be started.
func New(root *Root, e env.Env, logger *zap.Logger, opts ...Option) *Runtime {
	r := &Runtime{
		root:    root,
		env:     e,
		logger:  logger,
		queue:   make(chan queuedMsg, DefaultQueueCapacity),
		metrics: newMetrics(),
		subs:    make(map[FieldID][]func(*Root)),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Root returns the underlying model, for read-only inspection by the UI
// layer (HTTP handlers, websocket pushers) between dispatches.
func (r *Runtime) Root() *Root { return r.root }

// Subscribe registers fn to be called, with the current Root, after
// every dispatch settles. field is accepted (and carried into the
// registration) for callers that want to key their own subscriber maps
// by it, but the Runtime itself calls every subscriber on every
// dispatch rather than diffing which fields actually changed. Root has
// no reflection-based change tracker; concrete code over a generic
// field-walker is the preference throughout this codebase, and subscribers are
// expected to be cheap (typically: re-serialize one struct and compare
// to the last JSON sent over a websocket).
func (r *Runtime) Subscribe(field FieldID, fn func(*Root)) {
	r.subsMu.Lock()
	defer r.subsMu.Unlock()
	r.subs[field] = append(r.subs[field], fn)
}

func (r *Runtime) notifySubscribers() {
	r.subsMu.Lock()
	snapshot := make([]func(*Root), 0)
	for _, fns := range r.subs {
		snapshot = append(snapshot, fns...)
	}
	r.subsMu.Unlock()
	for _, fn := range snapshot {
		fn(r.root)
	}
}

// Dispatch enqueues msg for processing by the loop Run drives. It
// returns the trace ID assigned to this dispatch (useful for log
// correlation from a calling HTTP handler) and whether the message was
// accepted; a false return means the queue was full and msg was
// dropped.
func (r *Runtime) Dispatch(msg effect.Msg) (traceID string, accepted bool) {
	traceID = uuid.NewString()
	item := queuedMsg{msg: msg, traceID: traceID}
	select {
	case r.queue <- item:
		r.metrics.queueDepth.Set(float64(len(r.queue)))
		return traceID, true
	default:
		r.metrics.droppedTotal.Inc()
		r.logger.Warn("runtime: dispatch queue full, dropping message",
			zap.String("trace_id", traceID), zap.String("msg_type", fmt.Sprintf("%T", msg)))
		return traceID, false
	}
}

// Run drains the dispatch queue until ctx is canceled. It is meant to be
// started once, in its own goroutine, by the owning binary.
func (r *Runtime) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case item := <-r.queue:
			r.metrics.queueDepth.Set(float64(len(r.queue)))
			r.process(ctx, item)
		}
	}
}

func (r *Runtime) process(ctx context.Context, item queuedMsg) {
	logger := r.logger.With(zap.String("trace_id", item.traceID))

	start := time.Now()
	eff := r.root.Update(item.msg)
	r.metrics.dispatchDuration.Observe(time.Since(start).Seconds())
	r.metrics.dispatchTotal.WithLabelValues(fmt.Sprintf("%T", item.msg)).Inc()
	r.metrics.effectsTotal.WithLabelValues("msgs").Add(float64(len(eff.Msgs)))
	r.metrics.effectsTotal.WithLabelValues("futures").Add(float64(len(eff.Futures)))

	for _, m := range eff.Msgs {
		r.reDispatch(logger, item.traceID, m)
	}
	for _, fut := range eff.Futures {
		r.scheduleFuture(logger, item.traceID, eff.SequentialKey, fut)
	}

	r.notifySubscribers()
}

// reDispatch re-enters the queue for a Msg a sub-model produced
// synchronously (e.g. Player emitting ctx.ActionPlayerProgress).
// Re-queuing rather than calling Update directly keeps the "Update never
// re-enters itself" invariant: the current process() call is still
// unwinding its own Futures when this runs.
func (r *Runtime) reDispatch(logger *zap.Logger, parentTraceID string, msg effect.Msg) {
	if _, accepted := r.Dispatch(msg); !accepted {
		logger.Warn("runtime: could not re-dispatch synchronous effect message",
			zap.String("parent_trace_id", parentTraceID), zap.String("msg_type", fmt.Sprintf("%T", msg)))
	}
}

func (r *Runtime) scheduleFuture(logger *zap.Logger, traceID, sequentialKey string, fut effect.Future) {
	task := func(ctx context.Context) error {
		msg := fut(ctx)
		if msg == nil {
			return nil
		}
		if _, accepted := r.Dispatch(msg); !accepted {
			logger.Warn("runtime: could not dispatch future result",
				zap.String("msg_type", fmt.Sprintf("%T", msg)))
		}
		return nil
	}
	if sequentialKey != "" {
		r.env.ExecSequential(sequentialKey, task)
		return
	}
	r.env.ExecConcurrent(task)
}
