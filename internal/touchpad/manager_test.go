package touchpad

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeBackend struct {
	mu       sync.Mutex
	report   CapabilityReport
	setErr   error
	setDelay time.Duration
	calls    []bool
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{report: CapabilityReport{SupportsDirectControl: true}}
}

func (f *fakeBackend) Probe() CapabilityReport {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.report
}

func (f *fakeBackend) SetEnabled(enabled bool) error {
	f.mu.Lock()
	delay := f.setDelay
	err := f.setErr
	f.calls = append(f.calls, enabled)
	f.mu.Unlock()
	if delay > 0 {
		time.Sleep(delay)
	}
	return err
}

func (f *fakeBackend) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

func (f *fakeBackend) setReport(r CapabilityReport) {
	f.mu.Lock()
	f.report = r
	f.mu.Unlock()
}

type fakeSuppressor struct {
	mu     sync.Mutex
	active bool
	calls  []bool
}

func (f *fakeSuppressor) Suppress(on bool) {
	f.mu.Lock()
	f.active = on
	f.calls = append(f.calls, on)
	f.mu.Unlock()
}

func (f *fakeSuppressor) Active() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.active
}

func (f *fakeSuppressor) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

func newTestManager(t *testing.T, backend Backend, emu Suppressor, opts Options) *Manager {
	t.Helper()
	m := NewManager(backend, emu, opts)
	m.Start()
	t.Cleanup(m.Stop)
	return m
}

func TestToggleFlipsState(t *testing.T) {
	backend := newFakeBackend()
	m := newTestManager(t, backend, &fakeSuppressor{}, Options{})

	require.Equal(t, Enabled, m.CurrentState())

	res, err := m.Toggle(SourceOther)
	require.NoError(t, err)
	assert.Equal(t, Disabled, res.State)
	assert.False(t, res.Emulated, "direct-control transition must not report emulation")
	assert.Equal(t, Disabled, m.CurrentState())

	res, err = m.Toggle(SourceOther)
	require.NoError(t, err)
	assert.Equal(t, Enabled, res.State)
	assert.Equal(t, []bool{false, true}, backend.calls)
}

func TestConcurrentTogglesFormSingleChain(t *testing.T) {
	for _, n := range []int{7, 8} {
		backend := newFakeBackend()
		m := newTestManager(t, backend, &fakeSuppressor{}, Options{})

		var evMu sync.Mutex
		var events []State
		m.OnStateChange(func(ev StateChange) {
			evMu.Lock()
			events = append(events, ev.State)
			evMu.Unlock()
		})

		start := m.CurrentState()
		var wg sync.WaitGroup
		for i := 0; i < n; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_, err := m.Toggle(SourceOther)
				assert.NoError(t, err)
			}()
		}
		wg.Wait()

		want := start
		if n%2 == 1 {
			want = start.Opposite()
		}
		assert.Equal(t, want, m.CurrentState(), "final state after %d toggles", n)

		// Every committed transition flips the previous one; no two
		// requests succeeded against the same pre-state.
		evMu.Lock()
		require.Len(t, events, n)
		prev := start
		for i, s := range events {
			assert.Equal(t, prev.Opposite(), s, "event %d", i)
			prev = s
		}
		evMu.Unlock()
	}
}

func TestBackendFailureLeavesStateUntouched(t *testing.T) {
	backend := newFakeBackend()
	backend.setErr = &BackendError{Kind: ErrBackendFailed, Message: "device busy"}
	m := newTestManager(t, backend, &fakeSuppressor{}, Options{})

	fired := false
	m.OnStateChange(func(StateChange) { fired = true })

	_, err := m.Toggle(SourceTray)
	require.Error(t, err)

	var ce *ControlError
	require.True(t, errors.As(err, &ce))
	assert.Equal(t, ErrBackendFailed, ce.Kind)
	assert.Contains(t, ce.Message, "device busy")
	assert.Equal(t, Enabled, m.CurrentState())
	assert.False(t, fired, "failed transition must not notify")
}

func TestSetSameStateIsNoOp(t *testing.T) {
	backend := newFakeBackend()
	m := newTestManager(t, backend, &fakeSuppressor{}, Options{})

	events := 0
	m.OnStateChange(func(StateChange) { events++ })

	res, err := m.Set(Enabled, SourceIPC)
	require.NoError(t, err)
	assert.Equal(t, Enabled, res.State)
	assert.Zero(t, backend.callCount())
	assert.Zero(t, events)

	res, err = m.Set(Disabled, SourceIPC)
	require.NoError(t, err)
	assert.Equal(t, Disabled, res.State)

	// Second identical request succeeds without re-driving the hardware.
	res, err = m.Set(Disabled, SourceIPC)
	require.NoError(t, err)
	assert.Equal(t, Disabled, res.State)
	assert.Equal(t, 1, backend.callCount())
	assert.Equal(t, 1, events)
}

func TestEmulatorCarriesTogglesWithoutDirectControl(t *testing.T) {
	backend := newFakeBackend()
	backend.setReport(CapabilityReport{Detail: "device_not_found: no touchpad"})
	emu := &fakeSuppressor{}
	m := newTestManager(t, backend, emu, Options{})

	var last StateChange
	m.OnStateChange(func(ev StateChange) { last = ev })

	res, err := m.Toggle(SourceHotkey)
	require.NoError(t, err)
	assert.Equal(t, Disabled, res.State)
	assert.True(t, res.Emulated, "caller must see that the transition was emulated")
	assert.True(t, emu.Active(), "disable must suppress pointer movement")
	assert.Zero(t, backend.callCount(), "backend must never be invoked")
	assert.True(t, last.Emulated)
	assert.Equal(t, SourceHotkey, last.Source)

	res, err = m.Toggle(SourceHotkey)
	require.NoError(t, err)
	assert.Equal(t, Enabled, res.State)
	assert.True(t, res.Emulated)
	assert.False(t, emu.Active())
	assert.Zero(t, backend.callCount())
}

func TestPermissionDeniedWithoutFallbackPolicy(t *testing.T) {
	backend := newFakeBackend()
	backend.setReport(CapabilityReport{
		SupportsDirectControl: true,
		RequiresPermission:    true,
	})
	m := newTestManager(t, backend, &fakeSuppressor{}, Options{EmulateOnPermissionDenied: false})

	_, err := m.Toggle(SourceTray)
	require.Error(t, err)

	var ce *ControlError
	require.True(t, errors.As(err, &ce))
	assert.Equal(t, ErrPermissionDenied, ce.Kind)
	assert.True(t, ce.CanPrompt)
	assert.Equal(t, Enabled, m.CurrentState())
	assert.Zero(t, backend.callCount())
}

func TestPermissionRevokedMidSessionFallsBackToEmulation(t *testing.T) {
	backend := newFakeBackend()
	backend.setReport(CapabilityReport{
		SupportsDirectControl: true,
		RequiresPermission:    true,
		PermissionGranted:     true,
	})
	emu := &fakeSuppressor{}
	m := newTestManager(t, backend, emu, Options{EmulateOnPermissionDenied: true})

	_, err := m.Toggle(SourceHotkey)
	require.NoError(t, err)
	assert.Equal(t, 1, backend.callCount())

	// Permission revoked outside the process; the next transition must
	// observe it through the re-probe and route to the emulator.
	backend.setReport(CapabilityReport{
		SupportsDirectControl: true,
		RequiresPermission:    true,
		PermissionGranted:     false,
	})

	res, err := m.Toggle(SourceHotkey)
	require.NoError(t, err)
	assert.Equal(t, Enabled, res.State)
	assert.True(t, res.Emulated)
	assert.Equal(t, 1, backend.callCount())
	assert.Equal(t, 1, emu.callCount())
	assert.False(t, m.Capabilities().PermissionGranted)
}

func TestBackendTimeoutReportedAndLateResultDiscarded(t *testing.T) {
	backend := newFakeBackend()
	backend.setDelay = 200 * time.Millisecond
	m := newTestManager(t, backend, &fakeSuppressor{}, Options{BackendTimeout: 20 * time.Millisecond})

	_, err := m.Toggle(SourceOther)
	require.Error(t, err)

	var ce *ControlError
	require.True(t, errors.As(err, &ce))
	assert.Equal(t, ErrBackendFailed, ce.Kind)
	assert.Contains(t, ce.Message, "timed out")
	assert.Equal(t, Enabled, m.CurrentState())

	// The stray OS call completing later must not flip anything.
	time.Sleep(250 * time.Millisecond)
	assert.Equal(t, Enabled, m.CurrentState())
}

func TestRefreshRecomputesCapabilities(t *testing.T) {
	backend := newFakeBackend()
	backend.setReport(CapabilityReport{Detail: "display_unavailable: no X display"})
	m := newTestManager(t, backend, &fakeSuppressor{}, Options{})

	assert.False(t, m.Capabilities().SupportsDirectControl)

	backend.setReport(CapabilityReport{SupportsDirectControl: true})
	caps := m.Refresh()
	assert.True(t, caps.SupportsDirectControl)
	assert.True(t, m.Capabilities().SupportsDirectControl)
}

func TestStoppedManagerRejectsRequests(t *testing.T) {
	backend := newFakeBackend()
	m := NewManager(backend, &fakeSuppressor{}, Options{})
	m.Start()
	m.Stop()

	_, err := m.Toggle(SourceOther)
	require.Error(t, err)
	assert.Equal(t, ErrClosed, KindOf(err))
}
