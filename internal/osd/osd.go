// Package osd reports committed state changes back to the user as transient
// desktop notifications. Show never blocks the caller, and a toggle arriving
// while the previous notification is still visible replaces it instead of
// queuing.
package osd

import (
	"log"
	"time"

	"padctl/internal/touchpad"
)

// Notifier posts a single transient notification. Platform-specific.
type Notifier interface {
	Notify(change touchpad.StateChange, timeout time.Duration) error
}

type Dispatcher struct {
	notifier Notifier
	duration time.Duration

	// pending holds at most the latest undelivered event.
	pending chan touchpad.StateChange
	done    chan struct{}
}

// NewDispatcher builds a dispatcher backed by the platform notifier.
func NewDispatcher(duration time.Duration) *Dispatcher {
	return newDispatcherWith(newNotifier(), duration)
}

func newDispatcherWith(n Notifier, duration time.Duration) *Dispatcher {
	return &Dispatcher{
		notifier: n,
		duration: duration,
		pending:  make(chan touchpad.StateChange, 1),
		done:     make(chan struct{}),
	}
}

// Start launches the delivery loop.
func (d *Dispatcher) Start() {
	go d.loop()
}

func (d *Dispatcher) Stop() {
	close(d.done)
}

// Show hands the event to the delivery loop and returns immediately. If an
// event is already waiting it is replaced; only the latest state matters to
// the user.
func (d *Dispatcher) Show(ev touchpad.StateChange) {
	for {
		select {
		case d.pending <- ev:
			return
		default:
		}
		select {
		case <-d.pending:
		default:
		}
	}
}

func (d *Dispatcher) loop() {
	for {
		select {
		case ev := <-d.pending:
			if err := d.notifier.Notify(ev, d.duration); err != nil {
				log.Printf("[OSD] notify failed: %v", err)
			}
		case <-d.done:
			return
		}
	}
}

func title(ev touchpad.StateChange) string {
	if ev.State == touchpad.Enabled {
		return "Touchpad enabled"
	}
	return "Touchpad disabled"
}

func body(ev touchpad.StateChange) string {
	if ev.Emulated {
		return "Pointer movement suppressed in software"
	}
	return "via " + string(ev.Source)
}
