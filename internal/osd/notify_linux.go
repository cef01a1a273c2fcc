//go:build linux

package osd

import (
	"fmt"
	"sync"
	"time"

	"github.com/godbus/dbus/v5"
	"github.com/gen2brain/beeep"

	"padctl/internal/touchpad"
)

const (
	notifyService = "org.freedesktop.Notifications"
	notifyPath    = "/org/freedesktop/Notifications"
	notifyMethod  = "org.freedesktop.Notifications.Notify"
)

// dbusNotifier talks to the freedesktop notification daemon directly so it
// can reuse the server-assigned id: passing it back as replaces_id swaps the
// visible bubble in place instead of stacking a new one per toggle.
type dbusNotifier struct {
	mu     sync.Mutex
	conn   *dbus.Conn
	lastID uint32
}

func newNotifier() Notifier {
	return &dbusNotifier{}
}

func (n *dbusNotifier) Notify(ev touchpad.StateChange, timeout time.Duration) error {
	n.mu.Lock()
	defer n.mu.Unlock()

	if n.conn == nil {
		conn, err := dbus.SessionBus()
		if err != nil {
			// No session bus (e.g. stripped-down session): degrade to
			// beeep's best effort rather than losing the feedback.
			if berr := beeep.Notify(title(ev), body(ev), ""); berr != nil {
				return fmt.Errorf("session bus: %v; beeep: %v", err, berr)
			}
			return nil
		}
		n.conn = conn
	}

	obj := n.conn.Object(notifyService, notifyPath)
	call := obj.Call(notifyMethod, 0,
		"padctl",          // app_name
		n.lastID,          // replaces_id: restart the visible overlay
		"input-touchpad",  // icon
		title(ev),
		body(ev),
		[]string{},                   // actions
		map[string]dbus.Variant{},    // hints
		int32(timeout.Milliseconds()), // expire_timeout
	)
	if call.Err != nil {
		return fmt.Errorf("notify call: %w", call.Err)
	}
	return call.Store(&n.lastID)
}
