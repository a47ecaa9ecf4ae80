// Package effect defines the data-only effect/message vocabulary every
// sub-model's Update function returns, per the "effects as data" design:
// Update functions never perform I/O themselves, they describe what
// should happen and the runtime carries it out.
package effect

import "context"

// Msg is any action or event value threaded through Update. Concrete
// message types live in the package that owns the state they mutate
// (pkg/ctx, pkg/player, ...); this package only carries them structurally.
type Msg interface{}

// Future is a deferred unit of work the runtime executes via
// Env.ExecConcurrent/ExecSequential. It returns the Msg to re-dispatch
// once the work completes (typically an Internal::*Result message).
type Future func(ctx context.Context) Msg

// Effects is what an Update call returns: zero or more messages to
// re-dispatch immediately (e.g. a sub-model reacting to another
// sub-model's transition) and zero or more Futures to schedule.
type Effects struct {
	Msgs    []Msg
	Futures []Future

	// SequentialKey, when non-empty, routes every Future in this Effects
	// value through Env.ExecSequential(SequentialKey, ...) instead of
	// ExecConcurrent, preserving issue order for same-bucket storage
	// writes.
	SequentialKey string
}

// None is the zero-value Effects: no messages, no futures.
var None = Effects{}

// Msg1 is a convenience constructor for a single re-dispatched message.
func Msg1(m Msg) Effects { return Effects{Msgs: []Msg{m}} }

// Future1 is a convenience constructor for a single concurrent future.
func Future1(f Future) Effects { return Effects{Futures: []Future{f}} }

// SequentialFuture1 is a convenience constructor for a single future that
// must run after prior futures sharing key have completed.
func SequentialFuture1(key string, f Future) Effects {
	return Effects{Futures: []Future{f}, SequentialKey: key}
}

// Merge combines effects in order, concatenating Msgs/Futures. The
// SequentialKey of the first non-empty-key argument wins; mixing two
// different non-empty keys in one Merge is a caller error and keeps the
// first.
func Merge(all ...Effects) Effects {
	var out Effects
	for _, e := range all {
		out.Msgs = append(out.Msgs, e.Msgs...)
		out.Futures = append(out.Futures, e.Futures...)
		if out.SequentialKey == "" {
			out.SequentialKey = e.SequentialKey
		}
	}
	return out
}
