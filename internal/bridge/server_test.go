package bridge

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"padctl/internal/touchpad"
)

type stubBackend struct {
	mu      sync.Mutex
	enabled bool
}

func (b *stubBackend) Probe() touchpad.CapabilityReport {
	return touchpad.CapabilityReport{SupportsDirectControl: true, PermissionGranted: true}
}

func (b *stubBackend) SetEnabled(enabled bool) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.enabled = enabled
	return nil
}

type stubSuppressor struct{ active bool }

func (s *stubSuppressor) Suppress(active bool) { s.active = active }
func (s *stubSuppressor) Active() bool         { return s.active }

func dialTestBridge(t *testing.T) (*websocket.Conn, *touchpad.Manager) {
	t.Helper()

	manager := touchpad.NewManager(&stubBackend{}, &stubSuppressor{}, touchpad.Options{})
	manager.Start()
	t.Cleanup(manager.Stop)

	srv := NewServer(manager)
	ts := httptest.NewServer(http.HandlerFunc(srv.handleWS))
	t.Cleanup(ts.Close)

	wsURL := "ws" + strings.TrimPrefix(ts.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { conn.Close() })

	return conn, manager
}

func readEvent(t *testing.T, conn *websocket.Conn) Event {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var ev Event
	if err := conn.ReadJSON(&ev); err != nil {
		t.Fatalf("read event: %v", err)
	}
	return ev
}

func TestClientReceivesStateOnConnect(t *testing.T) {
	conn, _ := dialTestBridge(t)

	ev := readEvent(t, conn)
	if ev.Type != "state" {
		t.Fatalf("first event type = %q, want state", ev.Type)
	}
	if ev.State != "enabled" {
		t.Errorf("initial state = %q, want enabled", ev.State)
	}
	if ev.Capabilities == nil {
		t.Error("initial state event should carry capabilities")
	}
}

func TestToggleCommandRepliesAndBroadcasts(t *testing.T) {
	conn, manager := dialTestBridge(t)
	readEvent(t, conn) // initial state

	if err := conn.WriteJSON(Command{Command: "toggle"}); err != nil {
		t.Fatalf("write: %v", err)
	}

	// The state broadcast and the command result race; collect both.
	sawResult, sawBroadcast := false, false
	for i := 0; i < 2; i++ {
		ev := readEvent(t, conn)
		switch ev.Type {
		case "result":
			sawResult = true
			if ev.State != "disabled" {
				t.Errorf("result state = %q, want disabled", ev.State)
			}
		case "state":
			sawBroadcast = true
			if ev.State != "disabled" {
				t.Errorf("broadcast state = %q, want disabled", ev.State)
			}
			if ev.Source != string(touchpad.SourceBridge) {
				t.Errorf("broadcast source = %q, want %q", ev.Source, touchpad.SourceBridge)
			}
		}
	}
	if !sawResult || !sawBroadcast {
		t.Errorf("got result=%v broadcast=%v, want both", sawResult, sawBroadcast)
	}
	if manager.CurrentState() != touchpad.Disabled {
		t.Errorf("manager state = %v, want Disabled", manager.CurrentState())
	}
}

func TestExternalChangeReachesAllClients(t *testing.T) {
	conn, manager := dialTestBridge(t)
	readEvent(t, conn) // initial state

	if _, err := manager.Set(touchpad.Disabled, touchpad.SourceHotkey); err != nil {
		t.Fatalf("set: %v", err)
	}

	ev := readEvent(t, conn)
	if ev.Type != "state" || ev.State != "disabled" {
		t.Errorf("got %+v, want state/disabled broadcast", ev)
	}
}

func TestUnknownCommandReturnsError(t *testing.T) {
	conn, _ := dialTestBridge(t)
	readEvent(t, conn)

	if err := conn.WriteJSON(Command{Command: "levitate"}); err != nil {
		t.Fatalf("write: %v", err)
	}
	ev := readEvent(t, conn)
	if ev.Type != "result" || ev.ErrorKind == "" {
		t.Errorf("got %+v, want result with error kind", ev)
	}
}

func TestStalledClientDoesNotBlockTransitions(t *testing.T) {
	conn, manager := dialTestBridge(t)
	_ = conn // connected, but this client never reads

	// Far more events than the per-client queue and the socket buffers can
	// absorb; must still complete promptly because fanout only enqueues.
	finished := make(chan struct{})
	go func() {
		defer close(finished)
		for i := 0; i < 5000; i++ {
			if _, err := manager.Toggle(touchpad.SourceOther); err != nil {
				t.Errorf("toggle %d: %v", i, err)
				return
			}
		}
	}()

	select {
	case <-finished:
	case <-time.After(10 * time.Second):
		t.Fatal("transitions blocked behind an unread bridge client")
	}
}

func TestSlowClientLosesOldEventsNotNewest(t *testing.T) {
	conn, manager := dialTestBridge(t)
	readEvent(t, conn) // initial state

	// Overflow the client's queue while it is not reading, then drain: the
	// surviving events must end on the final state, with nothing newer lost.
	for i := 0; i < 3*sendBuffer; i++ {
		if _, err := manager.Toggle(touchpad.SourceOther); err != nil {
			t.Fatalf("toggle: %v", err)
		}
	}
	final := manager.CurrentState().String()

	var last Event
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	for {
		var ev Event
		if err := conn.ReadJSON(&ev); err != nil {
			break // queue drained; deadline ends the read
		}
		last = ev
	}
	if last.Type != "state" || last.State != final {
		t.Errorf("last delivered event = %+v, want state %q", last, final)
	}
}

func TestStartRejectsNonLoopbackAddr(t *testing.T) {
	manager := touchpad.NewManager(&stubBackend{}, &stubSuppressor{}, touchpad.Options{})
	srv := NewServer(manager)
	if err := srv.Start("0.0.0.0:7717"); err == nil {
		srv.Stop()
		t.Error("binding a non-loopback address should fail")
	}
}
