package hotkeys

import (
	"errors"
	"sync"
	"testing"
	"time"

	"golang.design/x/hotkey"

	"padctl/internal/touchpad"
)

type fakeRegistration struct {
	registerErr  error
	keydown      chan hotkey.Event
	mu           sync.Mutex
	unregistered int
}

func (f *fakeRegistration) Register() error { return f.registerErr }

func (f *fakeRegistration) Unregister() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.unregistered++
	return nil
}

func (f *fakeRegistration) Keydown() <-chan hotkey.Event { return f.keydown }

func (f *fakeRegistration) unregisterCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.unregistered
}

type stubBackend struct{}

func (stubBackend) Probe() touchpad.CapabilityReport {
	return touchpad.CapabilityReport{SupportsDirectControl: true}
}
func (stubBackend) SetEnabled(bool) error { return nil }

type stubSuppressor struct{}

func (stubSuppressor) Suppress(bool) {}
func (stubSuppressor) Active() bool  { return false }

type countingHandler struct {
	mu      sync.Mutex
	toggles int
}

func (h *countingHandler) OnToggle() {
	h.mu.Lock()
	h.toggles++
	h.mu.Unlock()
}

func (h *countingHandler) count() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.toggles
}

func newFakeManager(t *testing.T, handler EventHandler, reg *fakeRegistration) *Manager {
	t.Helper()
	m, err := newManagerWith(handler, "ctrl+alt+f7", func([]hotkey.Modifier, hotkey.Key) registration {
		return reg
	})
	if err != nil {
		t.Fatalf("newManagerWith: %v", err)
	}
	return m
}

func TestStartReportsClaimedCombination(t *testing.T) {
	reg := &fakeRegistration{registerErr: errors.New("already grabbed")}
	m := newFakeManager(t, &countingHandler{}, reg)

	err := m.Start()
	if err == nil {
		t.Fatal("Start should fail when the OS rejects the registration")
	}

	var ce *touchpad.ControlError
	if !errors.As(err, &ce) {
		t.Fatalf("error type = %T, want *touchpad.ControlError", err)
	}
	if ce.Kind != touchpad.ErrHotkeyUnavailable {
		t.Errorf("kind = %q, want %q", ce.Kind, touchpad.ErrHotkeyUnavailable)
	}

	// The failure must degrade gracefully: Listen is a no-op and Stop does
	// not touch the never-claimed registration.
	listenDone := make(chan struct{})
	go func() {
		m.Listen()
		close(listenDone)
	}()
	select {
	case <-listenDone:
	case <-time.After(time.Second):
		t.Fatal("Listen should return immediately after a failed Start")
	}
	m.Stop()
	if reg.unregisterCount() != 0 {
		t.Error("failed registration must not be unregistered")
	}

	// The other trigger paths keep working: a state manager with no hotkey
	// registered still serves toggles.
	sm := touchpad.NewManager(stubBackend{}, stubSuppressor{}, touchpad.Options{})
	sm.Start()
	defer sm.Stop()
	res, terr := sm.Toggle(touchpad.SourceTray)
	if terr != nil {
		t.Fatalf("toggle without hotkey: %v", terr)
	}
	if res.State != touchpad.Disabled {
		t.Errorf("state = %v, want Disabled", res.State)
	}
}

func TestKeydownEventsBecomeToggles(t *testing.T) {
	reg := &fakeRegistration{keydown: make(chan hotkey.Event)}
	handler := &countingHandler{}
	m := newFakeManager(t, handler, reg)

	if err := m.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	go m.Listen()
	defer m.Stop()

	for i := 0; i < 3; i++ {
		reg.keydown <- hotkey.Event{}
	}

	deadline := time.Now().Add(time.Second)
	for handler.count() < 3 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	if got := handler.count(); got != 3 {
		t.Errorf("toggles = %d, want 3", got)
	}
}

func TestStopEndsListenAndReleasesRegistration(t *testing.T) {
	reg := &fakeRegistration{keydown: make(chan hotkey.Event)}
	m := newFakeManager(t, &countingHandler{}, reg)

	if err := m.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}

	listenDone := make(chan struct{})
	go func() {
		m.Listen()
		close(listenDone)
	}()

	m.Stop()
	select {
	case <-listenDone:
	case <-time.After(time.Second):
		t.Fatal("Listen did not return after Stop")
	}
	if reg.unregisterCount() != 1 {
		t.Errorf("unregister calls = %d, want 1", reg.unregisterCount())
	}

	// Second Stop is a no-op.
	m.Stop()
	if reg.unregisterCount() != 1 {
		t.Error("Stop must be idempotent")
	}
}
