package sim_test

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cory-johannsen/motioncombat/internal/sim"
)

func TestTickManager_StartsAndStops(t *testing.T) {
	tm := sim.NewTickManager(50 * time.Millisecond)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	tm.Start(ctx)
	time.Sleep(120 * time.Millisecond)
	cancel()
	// Should not block or panic after cancel
}

func TestTickManager_PanicsOnNonPositiveInterval(t *testing.T) {
	assert.Panics(t, func() { sim.NewTickManager(0) })
}

func TestTickManager_TickCallbackInvokedWithInterval(t *testing.T) {
	tm := sim.NewTickManager(20 * time.Millisecond)
	called := make(chan time.Duration, 1)
	tm.RegisterTick("w1", func(dt time.Duration) {
		select {
		case called <- dt:
		default:
		}
	})
	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()
	tm.Start(ctx)
	select {
	case dt := <-called:
		assert.Equal(t, 20*time.Millisecond, dt)
	case <-ctx.Done():
		t.Fatal("tick callback not invoked within timeout")
	}
}

func TestTickManager_UnregisterStopsCallback(t *testing.T) {
	tm := sim.NewTickManager(20 * time.Millisecond)
	var count atomic.Int64
	tm.RegisterTick("w1", func(time.Duration) { count.Add(1) })
	require.Equal(t, 1, tm.Len())
	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()
	tm.Start(ctx)
	time.Sleep(60 * time.Millisecond)
	tm.Unregister("w1")
	countAfterUnregister := count.Load()
	time.Sleep(60 * time.Millisecond)
	if count.Load() > countAfterUnregister+1 {
		t.Fatalf("tick continued after unregister: before=%d after=%d", countAfterUnregister, count.Load())
	}
	assert.Equal(t, 0, tm.Len())
}
