package runtime

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/aggrecore/core/pkg/env"
	"github.com/aggrecore/core/pkg/player"
)

func newTestRuntime(t *testing.T, opts ...Option) (*Runtime, *env.Memory) {
	t.Helper()
	mem := env.NewMemory(time.Now())
	root := NewRoot(mem, zap.NewNop())
	return New(root, mem, zap.NewNop(), opts...), mem
}

func TestDispatchRunsUpdateAndNotifiesSubscribers(t *testing.T) {
	rt, _ := newTestRuntime(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go rt.Run(ctx)

	notified := make(chan struct{}, 1)
	rt.Subscribe(FieldPlayer, func(root *Root) {
		select {
		case notified <- struct{}{}:
		default:
		}
	})

	_, accepted := rt.Dispatch(player.ActionUnload{})
	require.True(t, accepted)

	select {
	case <-notified:
	case <-time.After(time.Second):
		t.Fatal("subscriber was never notified")
	}
}

func TestDispatchDropsWhenQueueFull(t *testing.T) {
	rt, _ := newTestRuntime(t, WithQueueCapacity(1))
	// No Run loop draining, so the first Dispatch fills the only slot.
	_, first := rt.Dispatch(player.ActionUnload{})
	require.True(t, first)

	_, second := rt.Dispatch(player.ActionUnload{})
	assert.False(t, second)
}

func TestRootUpdateRecomputesLibraryViews(t *testing.T) {
	mem := env.NewMemory(time.Now())
	root := NewRoot(mem, zap.NewNop())

	root.Update(player.ActionUnload{})

	assert.NotNil(t, root.LibraryWithFilters.Items)
	assert.NotNil(t, root.LibraryByType.Types)
}

func TestUnknownFieldIDStringsDoNotPanic(t *testing.T) {
	assert.Equal(t, "unknown", FieldID(999).String())
	assert.Equal(t, "ctx", FieldCtx.String())
}
