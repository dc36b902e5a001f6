package coordinator

import (
	"sync"
	"time"
)

// Deadline broadcasts a single shared termination event once the global
// clock reaches its limit, or once something calls TriggerNow (spec.md
// §3 GlobalClock). Grounded on emergency/controller.go's stopCh/OnStop
// shape, with the file-poll/signal-watch goroutines replaced by one
// deadline timer: there is no external stop file or OS signal in this
// domain, only the coordinator's own wall-clock budget.
type Deadline struct {
	at time.Time

	mu        sync.Mutex
	triggered bool
	stopCh    chan struct{}
	callbacks []func()
}

// NewDeadline returns a Deadline firing at t0.Add(budget).
func NewDeadline(t0 time.Time, budget time.Duration) *Deadline {
	return &Deadline{
		at:     t0.Add(budget),
		stopCh: make(chan struct{}),
	}
}

// At returns the absolute deadline time.
func (d *Deadline) At() time.Time { return d.at }

// Remaining returns the time left until the deadline, or zero if passed.
func (d *Deadline) Remaining() time.Duration {
	r := time.Until(d.at)
	if r < 0 {
		return 0
	}
	return r
}

// Reached reports whether the deadline has passed.
func (d *Deadline) Reached() bool {
	return !time.Now().Before(d.at)
}

// Watch starts a goroutine that fires Trigger once the deadline passes.
// Safe to call once per Deadline.
func (d *Deadline) Watch() {
	go func() {
		timer := time.NewTimer(d.Remaining())
		defer timer.Stop()
		<-timer.C
		d.Trigger()
	}()
}

// Trigger fires the deadline immediately (idempotent) and runs every
// registered callback, same semantics as the teacher's triggerStop.
func (d *Deadline) Trigger() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.triggered {
		return
	}
	d.triggered = true
	close(d.stopCh)
	for _, cb := range d.callbacks {
		cb()
	}
}

// Done returns a channel closed once the deadline has been triggered.
func (d *Deadline) Done() <-chan struct{} {
	return d.stopCh
}

// OnTrigger registers a callback to run when the deadline fires. If the
// deadline already fired, the callback runs immediately.
func (d *Deadline) OnTrigger(cb func()) {
	d.mu.Lock()
	if d.triggered {
		d.mu.Unlock()
		cb()
		return
	}
	d.callbacks = append(d.callbacks, cb)
	d.mu.Unlock()
}
