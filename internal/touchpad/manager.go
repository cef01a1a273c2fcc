package touchpad

import (
	"fmt"
	"log"
	"sync"
	"time"
)

// Suppressor is the mouse-emulation fallback contract. When direct hardware
// control is unavailable or unauthorized, the Manager suppresses pointer
// movement in software instead of silently dropping the toggle.
type Suppressor interface {
	Suppress(on bool)
	Active() bool
}

// Options tunes Manager behavior; zero values get defaults.
type Options struct {
	// EmulateOnPermissionDenied keeps toggles functional through the
	// emulator when the OS permission is missing instead of hard-failing.
	EmulateOnPermissionDenied bool

	// BackendTimeout bounds a single SetEnabled call. A call that outlives
	// it is reported as backend_failed and its late result discarded.
	BackendTimeout time.Duration
}

const defaultBackendTimeout = 2 * time.Second

// Manager is the single authority for the touchpad state. All mutations go
// through one worker goroutine, so concurrent requests from the hotkey,
// tray, IPC and bridge serialize into a single valid transition chain; reads
// never observe a torn state.
type Manager struct {
	backend Backend
	emu     Suppressor
	opts    Options

	mu    sync.RWMutex
	state State
	caps  CapabilityReport

	reqCh chan *request
	done  chan struct{}
	wg    sync.WaitGroup

	subMu sync.Mutex
	subs  []func(StateChange)
}

type request struct {
	// desired is nil for a toggle: the target is computed from the current
	// state at execution time, not at enqueue time, which is what keeps a
	// burst of N concurrent toggles equivalent to N sequential ones.
	desired *State
	source  Source
	reply   chan result
}

type result struct {
	state    State
	emulated bool
	err      error
}

// NewManager probes the backend once and assumes the hardware starts
// enabled; persisted state from previous runs is deliberately not trusted.
func NewManager(backend Backend, emu Suppressor, opts Options) *Manager {
	if opts.BackendTimeout <= 0 {
		opts.BackendTimeout = defaultBackendTimeout
	}
	m := &Manager{
		backend: backend,
		emu:     emu,
		opts:    opts,
		state:   Enabled,
		caps:    backend.Probe(),
		reqCh:   make(chan *request, 16),
		done:    make(chan struct{}),
	}
	return m
}

// Start launches the transition worker.
func (m *Manager) Start() {
	m.wg.Add(1)
	go m.run()
}

// Stop drains nothing: pending requests fail with ErrClosed.
func (m *Manager) Stop() {
	close(m.done)
	m.wg.Wait()
}

// CurrentState is a non-blocking read; it observes either the pre- or
// post-transition value of any in-flight request, never an intermediate one.
func (m *Manager) CurrentState() State {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.state
}

// Capabilities returns the cached probe result.
func (m *Manager) Capabilities() CapabilityReport {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.caps
}

// Refresh re-probes the backend, e.g. after the user granted a permission
// or plugged the device back in, and returns the fresh report.
func (m *Manager) Refresh() CapabilityReport {
	caps := m.backend.Probe()
	m.mu.Lock()
	m.caps = caps
	m.mu.Unlock()
	return caps
}

// OnStateChange registers a subscriber invoked after every committed
// transition. Subscribers run on the worker goroutine and must not block.
func (m *Manager) OnStateChange(fn func(StateChange)) {
	m.subMu.Lock()
	m.subs = append(m.subs, fn)
	m.subMu.Unlock()
}

// Toggle flips the state. The returned StateChange reports the committed
// state and whether this particular transition went through the emulator.
func (m *Manager) Toggle(source Source) (StateChange, error) {
	return m.submit(&request{source: source})
}

// Set drives the state to desired. Setting the current state is a no-op
// success and emits no event.
func (m *Manager) Set(desired State, source Source) (StateChange, error) {
	return m.submit(&request{desired: &desired, source: source})
}

func (m *Manager) submit(req *request) (StateChange, error) {
	req.reply = make(chan result, 1)
	select {
	case m.reqCh <- req:
	case <-m.done:
		return StateChange{State: m.CurrentState(), Source: req.source},
			&ControlError{Kind: ErrClosed, Message: "state manager stopped"}
	}
	select {
	case res := <-req.reply:
		return StateChange{State: res.state, Source: req.source, Emulated: res.emulated}, res.err
	case <-m.done:
		return StateChange{State: m.CurrentState(), Source: req.source},
			&ControlError{Kind: ErrClosed, Message: "state manager stopped"}
	}
}

func (m *Manager) run() {
	defer m.wg.Done()
	for {
		select {
		case req := <-m.reqCh:
			req.reply <- m.execute(req)
		case <-m.done:
			return
		}
	}
}

// execute performs exactly one transition. Runs only on the worker.
func (m *Manager) execute(req *request) result {
	m.mu.RLock()
	cur := m.state
	caps := m.caps
	m.mu.RUnlock()

	// Permission state lives outside this process; re-check it before
	// every gated transition instead of trusting a stale report.
	if caps.RequiresPermission && caps.SupportsDirectControl {
		caps = m.Refresh()
	}

	desired := cur.Opposite()
	if req.desired != nil {
		desired = *req.desired
		if desired == cur {
			return result{state: cur}
		}
	}

	emulate, routeErr := m.route(caps)
	if routeErr != nil {
		return result{state: cur, err: routeErr}
	}

	start := time.Now()
	if emulate {
		m.emu.Suppress(desired == Disabled)
	} else {
		if err := m.callBackend(desired == Enabled); err != nil {
			return result{state: cur, err: &ControlError{
				Kind:    KindOf(err),
				Message: err.Error(),
			}}
		}
		// The hardware now holds the state; any lingering software
		// suppression from an earlier fallback must not shadow it.
		if m.emu.Active() {
			m.emu.Suppress(false)
		}
	}

	m.mu.Lock()
	m.state = desired
	m.mu.Unlock()

	m.emit(StateChange{
		State:    desired,
		Source:   req.source,
		Emulated: emulate,
		At:       time.Now(),
		Latency:  time.Since(start),
	})
	return result{state: desired, emulated: emulate}
}

// route decides between the backend and the emulator for this transition.
func (m *Manager) route(caps CapabilityReport) (emulate bool, err error) {
	if !caps.SupportsDirectControl {
		return true, nil
	}
	if caps.RequiresPermission && !caps.PermissionGranted {
		if m.opts.EmulateOnPermissionDenied {
			return true, nil
		}
		return false, &ControlError{
			Kind:      ErrPermissionDenied,
			Message:   "input control permission not granted",
			CanPrompt: true,
		}
	}
	return false, nil
}

// callBackend runs SetEnabled off the worker so a hung driver call cannot
// wedge the queue past the timeout. The call itself is not cancellable; a
// late completion lands in the buffered channel and is discarded.
func (m *Manager) callBackend(enabled bool) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- m.backend.SetEnabled(enabled)
	}()

	select {
	case err := <-errCh:
		return err
	case <-time.After(m.opts.BackendTimeout):
		return &BackendError{
			Kind:    ErrBackendFailed,
			Message: fmt.Sprintf("backend call timed out after %v", m.opts.BackendTimeout),
		}
	}
}

func (m *Manager) emit(ev StateChange) {
	m.subMu.Lock()
	subs := make([]func(StateChange), len(m.subs))
	copy(subs, m.subs)
	m.subMu.Unlock()

	for _, fn := range subs {
		func() {
			defer func() {
				if r := recover(); r != nil {
					log.Printf("[STATE] subscriber panic: %v", r)
				}
			}()
			fn(ev)
		}()
	}
}
