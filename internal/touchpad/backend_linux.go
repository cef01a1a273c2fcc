//go:build linux

package touchpad

import (
	"fmt"
	"os"
	"os/exec"
	"strings"
	"sync"
)

// x11Backend toggles the input device's "Device Enabled" property through
// the XInput extension, shelling out to xinput the same way a user would.
// Wayland-only and headless sessions are caught at probe time so the Manager
// falls back to emulation instead of failing on the first toggle.
type x11Backend struct {
	mu       sync.Mutex
	deviceID string
}

// NewBackend returns the Linux/X11 touchpad backend.
func NewBackend() Backend {
	return &x11Backend{}
}

func (b *x11Backend) Probe() CapabilityReport {
	if os.Getenv("DISPLAY") == "" {
		return CapabilityReport{
			Detail: fmt.Sprintf("%s: no X display (headless or Wayland-only session)", ErrDisplayUnavailable),
		}
	}
	if _, err := exec.LookPath("xinput"); err != nil {
		return CapabilityReport{
			Detail: fmt.Sprintf("%s: xinput not installed", ErrDisplayUnavailable),
		}
	}

	id, err := findTouchpadDevice()
	if err != nil {
		return CapabilityReport{Detail: err.Error()}
	}

	b.mu.Lock()
	b.deviceID = id
	b.mu.Unlock()

	return CapabilityReport{SupportsDirectControl: true}
}

func (b *x11Backend) SetEnabled(enabled bool) error {
	b.mu.Lock()
	id := b.deviceID
	b.mu.Unlock()

	if id == "" {
		return &BackendError{Kind: ErrDeviceNotFound, Message: "no touchpad device resolved; probe first"}
	}

	// xinput enable/disable is idempotent at the server level: applying the
	// current value succeeds without touching the device.
	verb := "disable"
	if enabled {
		verb = "enable"
	}
	out, err := exec.Command("xinput", verb, id).CombinedOutput()
	if err != nil {
		return &BackendError{
			Kind:    ErrBackendFailed,
			Message: fmt.Sprintf("xinput %s %s: %v: %s", verb, id, err, strings.TrimSpace(string(out))),
		}
	}
	return nil
}

// findTouchpadDevice scans `xinput list` for the built-in pointing device
// and returns its numeric id.
func findTouchpadDevice() (string, error) {
	listing, err := exec.Command("xinput", "--list").Output()
	if err != nil {
		return "", fmt.Errorf("%s: xinput --list: %v", ErrDisplayUnavailable, err)
	}

	for _, line := range strings.Split(string(listing), "\n") {
		lower := strings.ToLower(line)
		if !strings.Contains(lower, "touchpad") && !strings.Contains(lower, "trackpoint") {
			continue
		}
		if id := parseDeviceID(line); id != "" {
			return id, nil
		}
	}
	return "", fmt.Errorf("%s: no touchpad in xinput device list", ErrDeviceNotFound)
}

func parseDeviceID(line string) string {
	for _, field := range strings.Fields(line) {
		if strings.HasPrefix(field, "id=") {
			return strings.TrimPrefix(field, "id=")
		}
	}
	return ""
}
