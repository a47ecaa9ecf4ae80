package ctx

import (
	"context"
	"encoding/json"

	"github.com/aggrecore/core/pkg/effect"
	"github.com/aggrecore/core/pkg/env"
)

// flushProfileFuture snapshots the profile at call time (Update is
// atomic, so this is always a consistent snapshot of what Update just
// produced) and returns a Future that persists it under env.KeyProfile.
func (c *Ctx) flushProfileFuture() effect.Future {
	snapshot := c.Profile
	return func(fctx context.Context) effect.Msg {
		data, err := json.Marshal(snapshot)
		if err != nil {
			return EventError{Err: err, Source: "flushProfile"}
		}
		if err := c.env.SetStorage(fctx, env.KeyProfile, data); err != nil {
			return EventError{Err: err, Source: "flushProfile"}
		}
		return nil
	}
}

// flushLibraryFuture snapshots both library buckets and persists them
// under their respective keys. The recent bucket only strictly needs a
// write when every changed id stays inside the recent window; this
// flush always writes both keys, a superset of that optimization.
func (c *Ctx) flushLibraryFuture() effect.Future {
	recent := c.LibraryRecent
	archive := c.Library
	return func(fctx context.Context) effect.Msg {
		if data, err := json.Marshal(recent); err == nil {
			_ = c.env.SetStorage(fctx, env.KeyLibraryRecent, data)
		} else {
			return EventError{Err: err, Source: "flushLibrary"}
		}
		if data, err := json.Marshal(archive); err == nil {
			_ = c.env.SetStorage(fctx, env.KeyLibrary, data)
		} else {
			return EventError{Err: err, Source: "flushLibrary"}
		}
		return nil
	}
}

func (c *Ctx) flushStreamsFuture() effect.Future {
	snapshot := c.Streams
	return func(fctx context.Context) effect.Msg {
		data, err := json.Marshal(snapshot)
		if err != nil {
			return EventError{Err: err, Source: "flushStreams"}
		}
		if err := c.env.SetStorage(fctx, env.KeyStreams, data); err != nil {
			return EventError{Err: err, Source: "flushStreams"}
		}
		return nil
	}
}

func (c *Ctx) flushNotificationsFuture() effect.Future {
	snapshot := c.Notifications
	return func(fctx context.Context) effect.Msg {
		data, err := json.Marshal(snapshot)
		if err != nil {
			return EventError{Err: err, Source: "flushNotifications"}
		}
		if err := c.env.SetStorage(fctx, env.KeyNotifications, data); err != nil {
			return EventError{Err: err, Source: "flushNotifications"}
		}
		return nil
	}
}

// applyNotifications installs a bucket computed by notifications.Engine
// and flushes it, the same one-field-then-flush shape every other
// Action* handler in this package follows.
func (c *Ctx) applyNotifications(m ActionApplyNotifications) effect.Effects {
	c.Notifications = m.Bucket
	return effect.Future1(c.flushNotificationsFuture())
}
