package touchpad

import "time"

// State is the canonical enabled/disabled state of the touchpad. There is
// exactly one instance per process, owned by the Manager; every other
// component reads it through CurrentState or a state-change subscription.
type State int

const (
	Disabled State = iota
	Enabled
)

func (s State) String() string {
	if s == Enabled {
		return "enabled"
	}
	return "disabled"
}

// Opposite returns the state a toggle transitions into.
func (s State) Opposite() State {
	if s == Enabled {
		return Disabled
	}
	return Enabled
}

// ParseState converts the wire form ("enabled"/"disabled") back to a State.
func ParseState(s string) (State, bool) {
	switch s {
	case "enabled":
		return Enabled, true
	case "disabled":
		return Disabled, true
	}
	return Disabled, false
}

// Source identifies which trigger issued a request. Diagnostic only; it
// never affects the outcome of a transition.
type Source string

const (
	SourceHotkey Source = "hotkey"
	SourceTray   Source = "tray"
	SourceIPC    Source = "ipc"
	SourceBridge Source = "bridge"
	SourceOther  Source = "other"
)

// StateChange is emitted once per committed transition and consumed by the
// OSD, tray, bridge and metrics subscribers. Never persisted.
type StateChange struct {
	State    State
	Source   Source
	Emulated bool
	At       time.Time

	// Latency is how long the backend call or emulator handoff took.
	Latency time.Duration
}
