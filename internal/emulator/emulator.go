// Package emulator is the software fallback for platforms where the
// touchpad cannot be disabled at the hardware level. While suppression is
// on, pointer movement is undone by pinning the cursor to the position it
// held when suppression started. Click events always pass through: the
// observation hook is read-only and cannot swallow them. With suppression
// off it is a transparent pass-through.
//
// This is a best-effort analogue of hardware disablement: a second pointing
// device sharing the pointer is pinned too. Callers learn that emulation is
// in effect through the capability report.
package emulator

import (
	"sync"

	"github.com/go-vgo/robotgo"
	hook "github.com/robotn/gohook"
)

type Emulator struct {
	mu         sync.Mutex
	active     bool
	pinX, pinY int
	started    bool

	// Injectable for tests; default to robotgo.
	locate func() (int, int)
	move   func(x, y int)
}

func New() *Emulator {
	return &Emulator{
		locate: robotgo.Location,
		move:   robotgo.Move,
	}
}

// Start hooks the global pointer event stream. Must be called once; events
// are ignored until Suppress(true).
func (e *Emulator) Start() error {
	e.mu.Lock()
	if e.started {
		e.mu.Unlock()
		return nil
	}
	e.started = true
	e.mu.Unlock()

	events := hook.Start()
	go e.loop(events)
	return nil
}

// Stop tears the hook down. The event channel closing ends the loop.
func (e *Emulator) Stop() {
	e.mu.Lock()
	started := e.started
	e.started = false
	e.active = false
	e.mu.Unlock()
	if started {
		hook.End()
	}
}

// Suppress turns movement suppression on or off. Turning it on records the
// current pointer position as the pin point.
func (e *Emulator) Suppress(on bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if on == e.active {
		return
	}
	e.active = on
	if on {
		e.pinX, e.pinY = e.locate()
	}
}

// Active reports whether movement is currently being suppressed.
func (e *Emulator) Active() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.active
}

func (e *Emulator) loop(events <-chan hook.Event) {
	for ev := range events {
		switch ev.Kind {
		case hook.MouseMove, hook.MouseDrag:
			e.handleMove()
		}
	}
}

// handleMove snaps the pointer back to the pin point. The hook cannot
// discard the event before the OS applies it, so the deltas are undone
// immediately after the fact instead.
func (e *Emulator) handleMove() {
	e.mu.Lock()
	active := e.active
	x, y := e.pinX, e.pinY
	e.mu.Unlock()
	if !active {
		return
	}
	e.move(x, y)
}
