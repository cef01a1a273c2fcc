package touchpad

import "fmt"

// ErrorKind is a stable string identifying a failure class. The same strings
// travel over the IPC and bridge surfaces, so they must not change.
type ErrorKind string

const (
	// ErrBackendFailed covers driver/API call failures and timeouts. The
	// recorded state is left untouched; retried only on the next explicit
	// user action.
	ErrBackendFailed ErrorKind = "backend_failed"

	// ErrPermissionDenied means the OS permission gating direct control is
	// not granted. Recoverable through the emulation fallback.
	ErrPermissionDenied ErrorKind = "permission_denied"

	// ErrAccessDenied means the process lacks rights to the device node.
	ErrAccessDenied ErrorKind = "access_denied"

	// ErrHotkeyUnavailable means the key combination is already claimed.
	// Non-fatal: only the hotkey path is disabled.
	ErrHotkeyUnavailable ErrorKind = "hotkey_unavailable"

	// ErrDeviceNotFound and ErrDisplayUnavailable are detected at probe
	// time and force emulation-only mode until the next probe.
	ErrDeviceNotFound     ErrorKind = "device_not_found"
	ErrDisplayUnavailable ErrorKind = "display_unavailable"

	// ErrClosed is returned for requests issued after the manager stopped.
	ErrClosed ErrorKind = "closed"
)

// ControlError is the structured error returned by Manager operations.
type ControlError struct {
	Kind    ErrorKind
	Message string

	// CanPrompt marks permission errors the tray/UI can resolve by
	// opening the OS permission pane.
	CanPrompt bool
}

func (e *ControlError) Error() string {
	if e.Message == "" {
		return string(e.Kind)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// KindOf extracts the stable kind from an error, defaulting to
// backend_failed for anything that is not a ControlError.
func KindOf(err error) ErrorKind {
	if err == nil {
		return ""
	}
	if ce, ok := err.(*ControlError); ok {
		return ce.Kind
	}
	if be, ok := err.(*BackendError); ok {
		return be.Kind
	}
	return ErrBackendFailed
}
