//go:build windows

package touchpad

import (
	"errors"
	"fmt"

	"golang.org/x/sys/windows"
	"golang.org/x/sys/windows/registry"
)

// ptpStatusKey is where the Precision Touchpad driver publishes its
// enabled flag. Writing it is what the Settings app does; the driver picks
// the change up immediately.
const ptpStatusKey = `SOFTWARE\Microsoft\Windows\CurrentVersion\PrecisionTouchPad\Status`

type windowsBackend struct{}

// NewBackend returns the Windows touchpad backend.
func NewBackend() Backend {
	return &windowsBackend{}
}

func (b *windowsBackend) Probe() CapabilityReport {
	k, err := registry.OpenKey(registry.CURRENT_USER, ptpStatusKey, registry.QUERY_VALUE)
	if err != nil {
		if errors.Is(err, registry.ErrNotExist) {
			return CapabilityReport{
				Detail: fmt.Sprintf("%s: no Precision Touchpad driver status key", ErrDeviceNotFound),
			}
		}
		return CapabilityReport{
			Detail: fmt.Sprintf("%s: open %s: %v", ErrDeviceNotFound, ptpStatusKey, err),
		}
	}
	k.Close()
	return CapabilityReport{SupportsDirectControl: true}
}

func (b *windowsBackend) SetEnabled(enabled bool) error {
	k, err := registry.OpenKey(registry.CURRENT_USER, ptpStatusKey, registry.QUERY_VALUE|registry.SET_VALUE)
	if err != nil {
		return wrapRegistryErr("open", err)
	}
	defer k.Close()

	var value uint32
	if enabled {
		value = 1
	}

	// Skip the write when the driver already holds the requested value;
	// SetEnabled must succeed trivially when nothing changes.
	if current, _, err := k.GetIntegerValue("Enabled"); err == nil && uint32(current) == value {
		return nil
	}

	if err := k.SetDWordValue("Enabled", value); err != nil {
		return wrapRegistryErr("write", err)
	}
	return nil
}

func wrapRegistryErr(op string, err error) error {
	kind := ErrBackendFailed
	if errors.Is(err, windows.ERROR_ACCESS_DENIED) {
		kind = ErrAccessDenied
	}
	return &BackendError{
		Kind:    kind,
		Message: fmt.Sprintf("registry %s %s: %v", op, ptpStatusKey, err),
	}
}
