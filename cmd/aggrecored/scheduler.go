package main

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/aggrecore/core/pkg/addon"
	"github.com/aggrecore/core/pkg/ctx"
	"github.com/aggrecore/core/pkg/env"
	"github.com/aggrecore/core/pkg/notifications"
	"github.com/aggrecore/core/pkg/runtime"
)

// scheduler runs the periodic work the client side leaves to a
// long-running host: pulling new-episode notifications and pushing any
// pending library changes to the server. cmd/deflix-stremio/main.go
// starts its cache-purge goroutines the same way, a bare
// `go func() { for { ... }; time.Sleep(...) } }()`, but here the interval
// is driven by robfig/cron instead, since aggrecored has more than one
// job and a cron.Cron gives each its own schedule and Stop() hook for free.
type scheduler struct {
	cron    *cron.Cron
	engine  *notifications.Engine
	env     env.Env
	runtime *runtime.Runtime
	logger  *zap.Logger
}

func newScheduler(e env.Env, rt *runtime.Runtime, logger *zap.Logger) *scheduler {
	return &scheduler{
		cron:    cron.New(),
		engine:  notifications.NewEngine(logger),
		env:     e,
		runtime: rt,
		logger:  logger,
	}
}

// Start registers the notifications-pull and library-sync jobs to run
// every interval and returns immediately; cron.Cron runs its own
// goroutine. Neither job ever touches runtime.Root directly: each
// computes its result on the cron goroutine and threads it back through
// Runtime.Dispatch, so the dispatch loop remains the only writer of Root.
func (s *scheduler) Start(interval time.Duration) error {
	spec := "@every " + interval.String()
	if _, err := s.cron.AddFunc(spec, s.pullNotifications); err != nil {
		return err
	}
	if _, err := s.cron.AddFunc(spec, s.syncLibrary); err != nil {
		return err
	}
	s.cron.Start()
	return nil
}

func (s *scheduler) Stop() {
	s.cron.Stop()
}

func (s *scheduler) pullNotifications() {
	root := s.runtime.Root()
	fetchCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	newInterface := func(transportURL string) addon.Interface { return addon.NewInterface(s.env, transportURL) }

	bucket, changed, err := s.engine.Pull(
		fetchCtx,
		root.Ctx.Profile.UID(),
		root.Ctx.Library,
		root.Ctx.Profile.Addons,
		root.Ctx.Notifications,
		s.env.Now(),
		newInterface,
	)
	if err != nil {
		s.logger.Warn("aggrecored: notifications pull failed", zap.Error(err))
		return
	}
	if !changed {
		return
	}
	if _, accepted := s.runtime.Dispatch(ctx.ActionApplyNotifications{Bucket: bucket}); !accepted {
		s.logger.Warn("aggrecored: dropped ActionApplyNotifications, dispatch queue was full")
	}
}

func (s *scheduler) syncLibrary() {
	if _, accepted := s.runtime.Dispatch(ctx.ActionSyncLibraryWithAPI{}); !accepted {
		s.logger.Warn("aggrecored: dropped ActionSyncLibraryWithAPI, dispatch queue was full")
	}
}
