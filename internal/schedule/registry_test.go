package schedule

import (
	"sync/atomic"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistry_ScheduleIsIdempotentPerOwner(t *testing.T) {
	r := NewRegistry(zerolog.Nop())
	defer r.Cancel(1)

	r.Schedule(1, "0 9 * * *", "UTC", func() {})
	first := r.entries[1]
	require.NotNil(t, first)

	r.Schedule(1, "0 10 * * *", "UTC", func() {})
	second := r.entries[1]

	assert.Len(t, r.ListActive(), 1)
	assert.NotSame(t, first, second)
	assert.True(t, first.cancelled, "replaced entry must be cancelled")
	assert.Equal(t, "0 10 * * *", second.expr)
}

func TestRegistry_CancelIsIdempotent(t *testing.T) {
	r := NewRegistry(zerolog.Nop())

	// Cancelling an unknown owner is a no-op.
	r.Cancel(42)

	r.Schedule(7, "0 9 * * *", "UTC", func() {})
	r.Cancel(7)
	r.Cancel(7)

	assert.Empty(t, r.ListActive())
}

func TestRegistry_InvalidExpressionSkipsRegistration(t *testing.T) {
	r := NewRegistry(zerolog.Nop())

	r.Schedule(3, "not a cron", "UTC", func() {
		t.Fatal("invalid expression must never fire")
	})

	assert.Empty(t, r.ListActive())
}

func TestRegistry_FireRunsHandlerAndRearms(t *testing.T) {
	r := NewRegistry(zerolog.Nop())
	defer r.Cancel(1)

	var fired atomic.Int32
	r.Schedule(1, "*/5 * * * *", "UTC", func() {
		fired.Add(1)
	})

	e := r.entries[1]
	require.NotNil(t, e)
	// Stop the pending timer so only the manual fire runs.
	e.timer.Stop()

	e.fire()

	assert.Equal(t, int32(1), fired.Load())
	e.mu.Lock()
	rearmed := e.timer != nil && !e.cancelled
	e.timer.Stop()
	e.mu.Unlock()
	assert.True(t, rearmed, "fire must arm the next trigger")
}

func TestRegistry_NoFireAfterCancel(t *testing.T) {
	r := NewRegistry(zerolog.Nop())

	var fired atomic.Int32
	r.Schedule(1, "*/5 * * * *", "UTC", func() {
		fired.Add(1)
	})

	e := r.entries[1]
	r.Cancel(1)

	// Even if the timer callback was already in flight at cancel time,
	// the cancelled flag stops the handler from running.
	e.fire()

	assert.Equal(t, int32(0), fired.Load())
	assert.Empty(t, r.ListActive())
}
