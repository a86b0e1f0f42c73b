// Package throttle implements the cooldown gate: a per-action throttle that
// enforces a minimum spacing between successive runs of the same action.
//
// The gate is backed by golang.org/x/time/rate limiters (one per action key,
// refill period = cooldown interval, burst 1), created on demand and stored
// in a mutex-guarded map. The check-and-record step is a single reservation
// on the limiter, so two interleaved callers can never both pass the check
// inside one interval.
package throttle

import (
	"fmt"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// ThrottledError reports a gate rejection. Remaining is how long the caller
// would have to wait before the action is allowed again; it is always
// positive.
type ThrottledError struct {
	Action    string
	Remaining time.Duration
}

// Error implements the error interface.
func (e *ThrottledError) Error() string {
	return fmt.Sprintf("action %q throttled for another %s", e.Action, e.Remaining)
}

// Gate throttles named actions to at most one run per interval. The zero
// value is not usable; construct with NewGate. Gate is safe for concurrent
// use.
type Gate struct {
	interval time.Duration

	mu      sync.Mutex
	actions map[string]*rate.Limiter
}

// NewGate returns a Gate enforcing the given minimum spacing between runs
// of each action key. An interval <= 0 disables throttling entirely (every
// TryRun succeeds).
func NewGate(interval time.Duration) *Gate {
	return &Gate{
		interval: interval,
		actions:  make(map[string]*rate.Limiter),
	}
}

// Interval returns the configured cooldown spacing.
func (g *Gate) Interval() time.Duration { return g.interval }

// TryRun reports whether action may run now. On success the run is recorded
// and nil is returned; the next attempt within the interval fails. On
// rejection it returns a *ThrottledError carrying the remaining wait.
func (g *Gate) TryRun(action string) error {
	return g.TryRunAt(action, time.Now())
}

// TryRunAt is TryRun with an explicit clock instant, for deterministic tests.
func (g *Gate) TryRunAt(action string, now time.Time) error {
	if g.interval <= 0 {
		return nil
	}

	lim := g.limiter(action)

	// A reservation atomically checks and consumes the token; when the token
	// is not yet available the reservation is cancelled so the refill clock
	// keeps counting from the last successful run.
	r := lim.ReserveN(now, 1)
	if delay := r.DelayFrom(now); delay > 0 {
		r.CancelAt(now)
		return &ThrottledError{Action: action, Remaining: delay}
	}
	return nil
}

// limiter returns the per-action limiter, creating it on first use. A fresh
// limiter starts with a full token, so the first run of every action is
// always allowed.
func (g *Gate) limiter(action string) *rate.Limiter {
	g.mu.Lock()
	defer g.mu.Unlock()
	if lim, ok := g.actions[action]; ok {
		return lim
	}
	lim := rate.NewLimiter(rate.Every(g.interval), 1)
	g.actions[action] = lim
	return lim
}
