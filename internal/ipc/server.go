package ipc

import (
	"encoding/json"
	"fmt"
	"log"
	"net"
	"os"

	"padctl/internal/touchpad"
)

type Server struct {
	manager *touchpad.Manager
	ln      net.Listener
	path    string
}

// NewServer binds the unix socket, replacing a stale one from a previous
// run.
func NewServer(manager *touchpad.Manager, path string) (*Server, error) {
	os.Remove(path)
	ln, err := net.Listen("unix", path)
	if err != nil {
		return nil, fmt.Errorf("listen %s: %w", path, err)
	}
	os.Chmod(path, 0700)
	return &Server{manager: manager, ln: ln, path: path}, nil
}

// Serve accepts connections until Close. Call on its own goroutine.
func (s *Server) Serve() {
	for {
		conn, err := s.ln.Accept()
		if err != nil {
			// Listener closed by shutdown.
			return
		}
		go s.handleConn(conn)
	}
}

func (s *Server) Close() {
	s.ln.Close()
	os.Remove(s.path)
}

func (s *Server) handleConn(conn net.Conn) {
	defer conn.Close()

	var req Request
	if err := json.NewDecoder(conn).Decode(&req); err != nil {
		json.NewEncoder(conn).Encode(Response{
			ErrorKind: string(touchpad.ErrBackendFailed),
			Error:     "invalid request: " + err.Error(),
		})
		return
	}

	resp := s.handleRequest(req)
	if err := json.NewEncoder(conn).Encode(resp); err != nil {
		log.Printf("[IPC] write response: %v", err)
	}
}

func (s *Server) handleRequest(req Request) Response {
	switch req.Command {
	case CmdStatus:
		caps := s.manager.Capabilities()
		return Response{
			State:        s.manager.CurrentState().String(),
			Capabilities: &caps,
		}

	case CmdToggle:
		res, err := s.manager.Toggle(touchpad.SourceIPC)
		return transitionResponse(res, err)

	case CmdSet:
		desired, ok := touchpad.ParseState(req.State)
		if !ok {
			return Response{
				ErrorKind: string(touchpad.ErrBackendFailed),
				Error:     fmt.Sprintf("invalid state %q (want enabled|disabled)", req.State),
			}
		}
		res, err := s.manager.Set(desired, touchpad.SourceIPC)
		return transitionResponse(res, err)

	case CmdRefresh:
		caps := s.manager.Refresh()
		return Response{
			State:        s.manager.CurrentState().String(),
			Capabilities: &caps,
		}

	default:
		return Response{
			ErrorKind: string(touchpad.ErrBackendFailed),
			Error:     fmt.Sprintf("unknown command: %q", req.Command),
		}
	}
}

func transitionResponse(res touchpad.StateChange, err error) Response {
	if err != nil {
		return Response{
			State:     res.State.String(),
			ErrorKind: string(touchpad.KindOf(err)),
			Error:     err.Error(),
		}
	}
	return Response{
		State:    res.State.String(),
		Emulated: res.Emulated,
	}
}
