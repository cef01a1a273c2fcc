// Package ipc is the unix-socket command surface between the padctl CLI and
// the running daemon. One JSON request, one JSON response per connection.
package ipc

import (
	"os"
	"path/filepath"

	"padctl/internal/touchpad"
)

const (
	CmdStatus  = "status"
	CmdToggle  = "toggle"
	CmdSet     = "set"
	CmdRefresh = "refresh"
)

// Request is sent from the CLI client to the daemon.
type Request struct {
	Command string `json:"command"`         // "status" | "toggle" | "set" | "refresh"
	State   string `json:"state,omitempty"` // "enabled" | "disabled", for "set"
}

// Response is sent from the daemon back to the client. ErrorKind carries the
// stable error string; Error the human-readable diagnostic.
type Response struct {
	State        string                     `json:"state,omitempty"`
	Emulated     bool                       `json:"emulated,omitempty"`
	Capabilities *touchpad.CapabilityReport `json:"capabilities,omitempty"`
	ErrorKind    string                     `json:"error_kind,omitempty"`
	Error        string                     `json:"error,omitempty"`
}

// SocketPath resolves the daemon socket location.
func SocketPath() string {
	dir := os.Getenv("XDG_RUNTIME_DIR")
	if dir == "" {
		dir = "/tmp"
	}
	return filepath.Join(dir, "padctl.sock")
}
