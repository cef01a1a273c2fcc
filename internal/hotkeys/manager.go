// Package hotkeys registers the global toggle combination with the OS and
// converts matching key events into toggle requests. Listening is driven by
// the OS delivery mechanism; there is no polling loop.
package hotkeys

import (
	"fmt"

	"golang.design/x/hotkey"

	"padctl/internal/touchpad"
)

// EventHandler receives the converted toggle requests.
type EventHandler interface {
	OnToggle()
}

// registration is the OS-claimed combination handle. *hotkey.Hotkey
// satisfies it; tests substitute a fake to exercise the failure path.
type registration interface {
	Register() error
	Unregister() error
	Keydown() <-chan hotkey.Event
}

type Manager struct {
	handler EventHandler
	binding Binding
	newReg  func(mods []hotkey.Modifier, key hotkey.Key) registration

	reg     registration
	keydown <-chan hotkey.Event
	done    chan struct{}
}

// NewManager parses the binding string ("ctrl+alt+f7") without touching the
// OS; registration happens in Start.
func NewManager(handler EventHandler, spec string) (*Manager, error) {
	return newManagerWith(handler, spec, func(mods []hotkey.Modifier, key hotkey.Key) registration {
		return hotkey.New(mods, key)
	})
}

func newManagerWith(handler EventHandler, spec string, newReg func([]hotkey.Modifier, hotkey.Key) registration) (*Manager, error) {
	binding, err := ParseBinding(spec)
	if err != nil {
		return nil, err
	}
	return &Manager{
		handler: handler,
		binding: binding,
		newReg:  newReg,
		done:    make(chan struct{}),
	}, nil
}

// Start claims the combination. A failure (typically: already claimed by
// another application) is reported as hotkey_unavailable and leaves the
// process fully functional through its other triggers. The keydown channel
// is captured here, before Listen can run, and never re-read afterwards.
func (m *Manager) Start() error {
	reg := m.newReg(m.binding.Mods, m.binding.Key)
	if err := reg.Register(); err != nil {
		return &touchpad.ControlError{
			Kind:    touchpad.ErrHotkeyUnavailable,
			Message: fmt.Sprintf("register %s: %v", m.binding.Display(), err),
		}
	}
	m.reg = reg
	m.keydown = reg.Keydown()
	return nil
}

// Listen blocks converting key events until Stop. Call on its own goroutine,
// only after a successful Start.
func (m *Manager) Listen() {
	keydown := m.keydown
	if keydown == nil {
		return
	}
	for {
		select {
		case <-keydown:
			if m.handler != nil {
				m.handler.OnToggle()
			}
		case <-m.done:
			return
		}
	}
}

// Stop ends Listen and releases the OS registration. Safe after a failed
// Start and safe to call more than once.
func (m *Manager) Stop() {
	select {
	case <-m.done:
		return
	default:
	}
	close(m.done)
	if m.reg != nil {
		m.reg.Unregister()
	}
}

// GetHotkeyDisplay returns the normalized combination for user-facing output.
func (m *Manager) GetHotkeyDisplay() string {
	return m.binding.Display()
}
