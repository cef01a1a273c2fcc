//go:build !linux

package osd

import (
	"time"

	"github.com/gen2brain/beeep"

	"padctl/internal/touchpad"
)

// beeepNotifier posts through the native notification center. Replacement of
// a still-visible notification is handled upstream by the dispatcher's
// latest-wins queue; the center's own coalescing does the rest.
type beeepNotifier struct{}

func newNotifier() Notifier {
	return &beeepNotifier{}
}

func (beeepNotifier) Notify(ev touchpad.StateChange, _ time.Duration) error {
	return beeep.Notify(title(ev), body(ev), "")
}
