package schedule

import (
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Registry owns the live triggers, one per schedule owner. Entries are
// destroyed and recreated on every update, never mutated in place, so a
// stale closure can never fire with old parameters.
type Registry struct {
	mu      sync.Mutex
	entries map[uint]*entry
	log     zerolog.Logger
	now     func() time.Time
}

type entry struct {
	reg      *Registry
	ownerID  uint
	expr     string
	timezone string
	onFire   func()

	mu        sync.Mutex
	timer     *time.Timer
	cancelled bool
}

func NewRegistry(log zerolog.Logger) *Registry {
	return &Registry{
		entries: make(map[uint]*entry),
		log:     log.With().Str("component", "schedule-registry").Logger(),
		now:     time.Now,
	}
}

// Schedule registers a recurring trigger for ownerID, cancelling any
// existing one first. Invalid expressions are logged and skipped; the
// schedule stays un-triggered until corrected.
func (r *Registry) Schedule(ownerID uint, expr, timezone string, onFire func()) {
	r.Cancel(ownerID)

	if err := Validate(expr); err != nil {
		r.log.Warn().
			Uint("owner_id", ownerID).
			Str("expr", expr).
			Err(err).
			Msg("skipping registration of invalid schedule expression")
		return
	}

	e := &entry{
		reg:      r,
		ownerID:  ownerID,
		expr:     expr,
		timezone: timezone,
		onFire:   onFire,
	}

	r.mu.Lock()
	r.entries[ownerID] = e
	r.mu.Unlock()

	e.arm()
	r.log.Debug().
		Uint("owner_id", ownerID).
		Str("expr", expr).
		Str("timezone", timezone).
		Msg("trigger registered")
}

// Cancel removes the trigger for ownerID. Idempotent; an in-flight handler
// runs to completion but no future fire happens after Cancel returns.
func (r *Registry) Cancel(ownerID uint) {
	r.mu.Lock()
	e := r.entries[ownerID]
	delete(r.entries, ownerID)
	r.mu.Unlock()

	if e == nil {
		return
	}
	e.mu.Lock()
	e.cancelled = true
	if e.timer != nil {
		e.timer.Stop()
	}
	e.mu.Unlock()
}

// ListActive returns the owner ids with a live trigger.
func (r *Registry) ListActive() []uint {
	r.mu.Lock()
	defer r.mu.Unlock()
	ids := make([]uint, 0, len(r.entries))
	for id := range r.entries {
		ids = append(ids, id)
	}
	return ids
}

func (e *entry) arm() {
	now := e.reg.now()
	next := NextExecutionOrFallback(e.expr, e.timezone, now)
	wait := next.Sub(now)
	if wait < 0 {
		wait = time.Minute
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.cancelled {
		return
	}
	e.timer = time.AfterFunc(wait, e.fire)
}

// fire rearms before running the handler so a slow run does not delay the
// next scheduled instant. Distinct jobs never serialize against each other.
func (e *entry) fire() {
	e.mu.Lock()
	if e.cancelled {
		e.mu.Unlock()
		return
	}
	e.mu.Unlock()

	e.arm()
	e.onFire()
}
