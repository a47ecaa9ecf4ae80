package env

import (
	"context"
	"sync"
	"time"
)

// FetchFunc lets a Memory test double script responses for specific
// requests instead of always erroring.
type FetchFunc func(ctx context.Context, req Request) (int, []byte, error)

// Memory is an in-memory Env for tests: storage is a map, the clock is
// fixed (or advanceable), and every fetch and analytics event is
// recorded for assertions,
// mirroring the fake caches used throughout this codebase's *_test.go files.
type Memory struct {
	mu sync.Mutex

	storage map[string][]byte
	clock   time.Time

	Fetches []Request
	Events  []AnalyticsEvent

	FetchFn FetchFunc
}

type AnalyticsEvent struct {
	Name  string
	Props map[string]interface{}
}

// NewMemory returns a Memory Env with its clock set to now.
func NewMemory(now time.Time) *Memory {
	return &Memory{storage: map[string][]byte{}, clock: now}
}

func (m *Memory) Fetch(ctx context.Context, req Request) (int, []byte, error) {
	m.mu.Lock()
	m.Fetches = append(m.Fetches, req)
	fn := m.FetchFn
	m.mu.Unlock()
	if fn != nil {
		return fn(ctx, req)
	}
	return 0, nil, &Error{Kind: ErrNetwork, Message: "env.Memory: no FetchFn configured"}
}

func (m *Memory) GetStorage(_ context.Context, key string) ([]byte, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.storage[key]
	if !ok {
		return nil, false, nil
	}
	cp := make([]byte, len(v))
	copy(cp, v)
	return cp, true, nil
}

func (m *Memory) SetStorage(_ context.Context, key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if value == nil {
		delete(m.storage, key)
		return nil
	}
	cp := make([]byte, len(value))
	copy(cp, value)
	m.storage[key] = cp
	return nil
}

func (m *Memory) Now() time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.clock
}

// Advance moves the fixed clock forward, for tests exercising
// mtime-dependent rules (library sync, notification release windows).
func (m *Memory) Advance(d time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.clock = m.clock.Add(d)
}

func (m *Memory) ExecConcurrent(task func(context.Context) error) {
	go func() { _ = task(context.Background()) }()
}

func (m *Memory) ExecSequential(_ string, task func(context.Context) error) {
	_ = task(context.Background())
}

func (m *Memory) FlushAnalytics(_ context.Context, event string, props map[string]interface{}) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Events = append(m.Events, AnalyticsEvent{Name: event, Props: props})
}

var _ Env = (*Memory)(nil)
