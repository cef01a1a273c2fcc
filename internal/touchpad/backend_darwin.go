//go:build darwin && cgo

package touchpad

/*
#cgo LDFLAGS: -framework ApplicationServices
#include <ApplicationServices/ApplicationServices.h>

int processTrusted() {
    return AXIsProcessTrusted() ? 1 : 0;
}
*/
import "C"

import (
	"fmt"
	"os/exec"
	"strings"
	"sync"
)

// macOS exposes no public API to disable the built-in trackpad outright; the
// closest supported switch is the "Ignore built-in trackpad when mouse or
// wireless trackpad is present" accessibility setting, driven here through
// System Events. That requires the Accessibility permission, which the user
// can grant or revoke at any time, so Probe re-checks it on every call.
type darwinBackend struct {
	mu          sync.Mutex
	lastApplied *bool
	runScript   func(enabled bool) error
}

// NewBackend returns the macOS touchpad backend.
func NewBackend() Backend {
	return &darwinBackend{runScript: runTrackpadScript}
}

func (b *darwinBackend) Probe() CapabilityReport {
	// A probe means the caller wants to re-sync with reality (refresh, or a
	// permission change was observed), so the cached setting is no longer
	// trustworthy: the user may have flipped it in System Settings.
	b.mu.Lock()
	b.lastApplied = nil
	b.mu.Unlock()

	return CapabilityReport{
		SupportsDirectControl: true,
		RequiresPermission:    true,
		PermissionGranted:     int(C.processTrusted()) == 1,
	}
}

func (b *darwinBackend) SetEnabled(enabled bool) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	// Re-applying the current value is a no-op success; the System Events
	// round trip is slow enough to be worth skipping.
	if b.lastApplied != nil && *b.lastApplied == enabled {
		return nil
	}

	if err := b.runScript(enabled); err != nil {
		return err
	}
	v := enabled
	b.lastApplied = &v
	return nil
}

func runTrackpadScript(enabled bool) error {
	// "Ignore built-in trackpad" inverts the sense: checking it disables
	// the touchpad.
	ignore := "true"
	if enabled {
		ignore = "false"
	}
	script := fmt.Sprintf(`tell application "System Events" to set ignore built-in trackpad of universal access preferences to %s`, ignore)

	out, err := exec.Command("osascript", "-e", script).CombinedOutput()
	if err != nil {
		msg := strings.TrimSpace(string(out))
		if strings.Contains(msg, "not allowed assistive access") || strings.Contains(msg, "-1719") {
			return &BackendError{Kind: ErrPermissionDenied, Message: msg}
		}
		return &BackendError{
			Kind:    ErrBackendFailed,
			Message: fmt.Sprintf("osascript: %v: %s", err, msg),
		}
	}
	return nil
}
