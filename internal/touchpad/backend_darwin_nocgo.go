//go:build darwin && !cgo

package touchpad

import "fmt"

// Without cgo there is no way to query AXIsProcessTrusted, so direct control
// is reported unavailable and every transition runs through the emulator.
type darwinNocgoBackend struct{}

// NewBackend returns the macOS backend for cgo-disabled builds.
func NewBackend() Backend {
	return &darwinNocgoBackend{}
}

func (b *darwinNocgoBackend) Probe() CapabilityReport {
	return CapabilityReport{
		RequiresPermission: true,
		Detail:             "built without cgo; accessibility permission state unavailable",
	}
}

func (b *darwinNocgoBackend) SetEnabled(enabled bool) error {
	return &BackendError{
		Kind:    ErrBackendFailed,
		Message: fmt.Sprintf("direct control unavailable without cgo (requested %v)", enabled),
	}
}
