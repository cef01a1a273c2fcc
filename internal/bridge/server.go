// Package bridge exposes touchpad state to local UI frontends over a
// loopback WebSocket. Connected clients receive a state event on connect and
// on every change, and can send the same commands the CLI uses.
package bridge

import (
	"fmt"
	"log"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"padctl/internal/touchpad"
)

const (
	// sendBuffer bounds the per-client outbound queue; a client that stops
	// reading loses old events, never the sender's time.
	sendBuffer   = 16
	writeTimeout = 5 * time.Second
)

// Command is a request from a frontend client.
type Command struct {
	Command string `json:"command"`         // "status" | "toggle" | "set" | "refresh"
	State   string `json:"state,omitempty"` // for "set"
}

// Event is pushed to frontend clients. Type is "state" for broadcasts and
// "result" for replies to a command from that client.
type Event struct {
	Type         string                     `json:"type"`
	State        string                     `json:"state,omitempty"`
	Emulated     bool                       `json:"emulated,omitempty"`
	Source       string                     `json:"source,omitempty"`
	Capabilities *touchpad.CapabilityReport `json:"capabilities,omitempty"`
	ErrorKind    string                     `json:"error_kind,omitempty"`
	Error        string                     `json:"error,omitempty"`
}

// client owns one connection. All writes happen on its writeLoop goroutine;
// producers only enqueue, so a stalled peer can never block a state
// transition mid-fanout.
type client struct {
	conn   *websocket.Conn
	sendCh chan Event
	done   chan struct{}
	once   sync.Once
}

func newClient(conn *websocket.Conn) *client {
	return &client{
		conn:   conn,
		sendCh: make(chan Event, sendBuffer),
		done:   make(chan struct{}),
	}
}

func (c *client) close() {
	c.once.Do(func() {
		close(c.done)
		c.conn.Close()
	})
}

// enqueue hands an event to the writer without blocking. With the queue
// full, the oldest event is discarded: a later state event supersedes it.
func (c *client) enqueue(ev Event) {
	for {
		select {
		case c.sendCh <- ev:
			return
		case <-c.done:
			return
		default:
		}
		select {
		case <-c.sendCh:
		default:
		}
	}
}

type Server struct {
	manager  *touchpad.Manager
	upgrader websocket.Upgrader

	mu      sync.Mutex
	clients map[*client]struct{}

	httpSrv *http.Server
}

func NewServer(manager *touchpad.Manager) *Server {
	s := &Server{
		manager: manager,
		clients: make(map[*client]struct{}),
		upgrader: websocket.Upgrader{
			// Loopback-only service; the listener address is the guard.
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
	manager.OnStateChange(s.broadcast)
	return s
}

// Start binds addr and serves until Stop. Returns once the listener is
// bound; serving continues on a background goroutine.
func (s *Server) Start(addr string) error {
	host, _, err := net.SplitHostPort(addr)
	if err != nil {
		return fmt.Errorf("bridge addr %q: %w", addr, err)
	}
	if ip := net.ParseIP(host); ip == nil || !ip.IsLoopback() {
		return fmt.Errorf("bridge addr %q must be a loopback address", addr)
	}

	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("bridge listen %s: %w", addr, err)
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.handleWS)
	s.httpSrv = &http.Server{Handler: mux}

	go func() {
		if err := s.httpSrv.Serve(ln); err != nil && err != http.ErrServerClosed {
			log.Printf("[BRIDGE] serve: %v", err)
		}
	}()
	log.Printf("[BRIDGE] listening on ws://%s/ws", addr)
	return nil
}

func (s *Server) Stop() {
	if s.httpSrv != nil {
		s.httpSrv.Close()
	}
	s.mu.Lock()
	clients := make([]*client, 0, len(s.clients))
	for c := range s.clients {
		clients = append(clients, c)
	}
	s.clients = make(map[*client]struct{})
	s.mu.Unlock()
	for _, c := range clients {
		c.close()
	}
}

func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("[BRIDGE] upgrade: %v", err)
		return
	}
	c := newClient(conn)

	s.mu.Lock()
	s.clients[c] = struct{}{}
	s.mu.Unlock()

	// Fresh clients get the current state right away so the UI never renders
	// a guess.
	caps := s.manager.Capabilities()
	c.enqueue(Event{
		Type:         "state",
		State:        s.manager.CurrentState().String(),
		Capabilities: &caps,
	})

	go s.writeLoop(c)
	go s.readLoop(c)
}

func (s *Server) dropClient(c *client) {
	s.mu.Lock()
	delete(s.clients, c)
	s.mu.Unlock()
	c.close()
}

func (s *Server) writeLoop(c *client) {
	defer s.dropClient(c)
	for {
		select {
		case ev := <-c.sendCh:
			c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if err := c.conn.WriteJSON(ev); err != nil {
				log.Printf("[BRIDGE] write failed, dropping client: %v", err)
				return
			}
		case <-c.done:
			return
		}
	}
}

func (s *Server) readLoop(c *client) {
	defer s.dropClient(c)

	for {
		var cmd Command
		if err := c.conn.ReadJSON(&cmd); err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				log.Printf("[BRIDGE] read: %v", err)
			}
			return
		}
		c.enqueue(s.handleCommand(cmd))
	}
}

func (s *Server) handleCommand(cmd Command) Event {
	switch cmd.Command {
	case "status", "current":
		caps := s.manager.Capabilities()
		return Event{
			Type:         "result",
			State:        s.manager.CurrentState().String(),
			Capabilities: &caps,
		}

	case "toggle":
		res, err := s.manager.Toggle(touchpad.SourceBridge)
		return resultEvent(res, err)

	case "set":
		desired, ok := touchpad.ParseState(cmd.State)
		if !ok {
			return Event{
				Type:      "result",
				ErrorKind: string(touchpad.ErrBackendFailed),
				Error:     fmt.Sprintf("invalid state %q", cmd.State),
			}
		}
		res, err := s.manager.Set(desired, touchpad.SourceBridge)
		return resultEvent(res, err)

	case "refresh":
		caps := s.manager.Refresh()
		return Event{
			Type:         "result",
			State:        s.manager.CurrentState().String(),
			Capabilities: &caps,
		}

	default:
		return Event{
			Type:      "result",
			ErrorKind: string(touchpad.ErrBackendFailed),
			Error:     fmt.Sprintf("unknown command: %q", cmd.Command),
		}
	}
}

func resultEvent(res touchpad.StateChange, err error) Event {
	if err != nil {
		return Event{
			Type:      "result",
			State:     res.State.String(),
			ErrorKind: string(touchpad.KindOf(err)),
			Error:     err.Error(),
		}
	}
	return Event{
		Type:     "result",
		State:    res.State.String(),
		Emulated: res.Emulated,
	}
}

func (s *Server) broadcast(ev touchpad.StateChange) {
	out := Event{
		Type:     "state",
		State:    ev.State.String(),
		Emulated: ev.Emulated,
		Source:   string(ev.Source),
	}

	s.mu.Lock()
	targets := make([]*client, 0, len(s.clients))
	for c := range s.clients {
		targets = append(targets, c)
	}
	s.mu.Unlock()

	// Runs on the manager's transition worker: enqueue only, never write.
	for _, c := range targets {
		c.enqueue(out)
	}
}
