package navigator

import (
	"sync"
	"time"
)

// Debouncer holds back a search until typing has been quiet for a fixed
// period. Only the most recently scheduled call ever runs.
type Debouncer struct {
	quiet time.Duration

	mu    sync.Mutex
	timer *time.Timer
	seq   uint64
}

// NewDebouncer creates a debouncer with the given quiet period.
func NewDebouncer(quiet time.Duration) *Debouncer {
	return &Debouncer{quiet: quiet}
}

// Debounce schedules fn after the quiet period. It reports whether a call
// that was still waiting got replaced.
func (d *Debouncer) Debounce(fn func()) (replaced bool) {
	d.mu.Lock()
	defer d.mu.Unlock()

	replaced = d.stopLocked()
	seq := d.seq
	d.timer = time.AfterFunc(d.quiet, func() {
		d.mu.Lock()
		if seq != d.seq {
			d.mu.Unlock()
			return
		}
		d.timer = nil
		d.mu.Unlock()
		fn()
	})
	return replaced
}

// Pending reports whether a call is waiting to run.
func (d *Debouncer) Pending() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.timer != nil
}

// Cancel drops the waiting call, if any, and reports whether there was one.
// A call that already started runs to completion.
func (d *Debouncer) Cancel() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.stopLocked()
}

// Flush drops the waiting call and runs fn on the caller's goroutine.
func (d *Debouncer) Flush(fn func()) {
	d.Cancel()
	fn()
}

// stopLocked invalidates the scheduled call. A timer that fired but has not
// yet taken the lock sees the new seq and returns without running.
func (d *Debouncer) stopLocked() bool {
	d.seq++
	if d.timer == nil {
		return false
	}
	d.timer.Stop()
	d.timer = nil
	return true
}
