package sim

import (
	"context"
	"sync"
	"time"
)

// TickManager runs a periodic fixed-step tick for each registered world.
// Callbacks run sequentially on the manager's goroutine and receive the
// configured interval as their step.
//
// Invariant: all callbacks are invoked at most once per tick interval.
type TickManager struct {
	interval time.Duration
	mu       sync.Mutex
	ticks    map[string]func(dt time.Duration)
}

// NewTickManager returns a manager that fires ticks every interval.
//
// Precondition: interval must be > 0.
func NewTickManager(interval time.Duration) *TickManager {
	if interval <= 0 {
		panic("sim.NewTickManager: interval must be > 0")
	}
	return &TickManager{
		interval: interval,
		ticks:    make(map[string]func(time.Duration)),
	}
}

// Interval returns the tick period.
func (m *TickManager) Interval() time.Duration { return m.interval }

// RegisterTick registers a callback for worldID. Replaces any existing callback.
func (m *TickManager) RegisterTick(worldID string, fn func(dt time.Duration)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ticks[worldID] = fn
}

// Unregister removes the tick callback for worldID. Safe to call from a callback.
func (m *TickManager) Unregister(worldID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.ticks, worldID)
}

// Len returns the number of registered callbacks.
func (m *TickManager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.ticks)
}

// Start begins the tick loop. Runs until ctx is cancelled.
//
// Postcondition: all registered tick callbacks are invoked once per interval.
func (m *TickManager) Start(ctx context.Context) {
	go func() {
		ticker := time.NewTicker(m.interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				m.mu.Lock()
				callbacks := make([]func(time.Duration), 0, len(m.ticks))
				for _, fn := range m.ticks {
					callbacks = append(callbacks, fn)
				}
				m.mu.Unlock()
				for _, fn := range callbacks {
					fn(m.interval)
				}
			}
		}
	}()
}

// Drive registers w and ticks it until the duel is over, ctx is cancelled,
// or a tick fails. done receives the tick error, or nil, exactly once.
func (m *TickManager) Drive(ctx context.Context, w *World) <-chan error {
	done := make(chan error, 1)
	stop := make(chan struct{})
	var once sync.Once
	finish := func(err error) {
		once.Do(func() {
			m.Unregister(w.ID())
			close(stop)
			done <- err
		})
	}
	m.RegisterTick(w.ID(), func(dt time.Duration) {
		over, err := w.Tick(dt)
		if err != nil || over {
			finish(err)
		}
	})
	go func() {
		select {
		case <-ctx.Done():
			finish(ctx.Err())
		case <-stop:
		}
	}()
	return done
}
