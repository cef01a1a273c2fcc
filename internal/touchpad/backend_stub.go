//go:build !linux && !windows && !darwin

package touchpad

import "fmt"

type stubBackend struct{}

// NewBackend returns a backend for platforms with no direct control
// mechanism; the Manager runs emulation-only.
func NewBackend() Backend {
	return &stubBackend{}
}

func (b *stubBackend) Probe() CapabilityReport {
	return CapabilityReport{Detail: "no direct touchpad control on this platform"}
}

func (b *stubBackend) SetEnabled(enabled bool) error {
	return &BackendError{
		Kind:    ErrBackendFailed,
		Message: fmt.Sprintf("unsupported platform (requested %v)", enabled),
	}
}
