package touchpad

import "fmt"

// CapabilityReport is the per-session assessment of whether direct hardware
// control is available and authorized. Produced by Probe at startup and
// recomputed on refresh; the Manager owns the only cached copy.
type CapabilityReport struct {
	// SupportsDirectControl is false when the platform exposes no usable
	// control primitive (no device, no display, unsupported OS). All
	// transitions then route through the mouse emulator.
	SupportsDirectControl bool `json:"supports_direct_control"`

	// RequiresPermission is true on platforms that gate input control
	// behind an OS permission (macOS Accessibility).
	RequiresPermission bool `json:"requires_permission"`

	// PermissionGranted reflects the live permission state as of the last
	// probe. It can change outside this process at any time.
	PermissionGranted bool `json:"permission_granted"`

	// Detail carries a human-readable reason when direct control is
	// unavailable, e.g. the probe-time error.
	Detail string `json:"detail,omitempty"`
}

// Usable reports whether the backend may be called right now.
func (c CapabilityReport) Usable() bool {
	if !c.SupportsDirectControl {
		return false
	}
	if c.RequiresPermission && !c.PermissionGranted {
		return false
	}
	return true
}

// Backend is the uniform contract over the platform-specific touchpad
// control mechanism. One variant per OS, selected at build time.
//
// SetEnabled must be idempotent: applying the current state succeeds
// trivially. Calls may block on OS/driver I/O; the Manager bounds them with
// a timeout on its worker.
type Backend interface {
	Probe() CapabilityReport
	SetEnabled(enabled bool) error
}

// BackendError is returned by Backend.SetEnabled with a stable kind plus
// the platform's diagnostic text.
type BackendError struct {
	Kind    ErrorKind
	Message string
}

func (e *BackendError) Error() string {
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}
