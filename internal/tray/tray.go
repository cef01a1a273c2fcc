// Package tray keeps the system tray icon and menu in sync with the
// touchpad state and forwards menu clicks as toggle requests.
package tray

import (
	"log"

	"github.com/getlantern/systray"

	"padctl/internal/touchpad"
)

type Controller struct {
	manager *touchpad.Manager
	onQuit  func()

	mStatus  *systray.MenuItem
	mToggle  *systray.MenuItem
	mEnable  *systray.MenuItem
	mDisable *systray.MenuItem
	mRefresh *systray.MenuItem
	mQuit    *systray.MenuItem
}

func New(manager *touchpad.Manager, onQuit func()) *Controller {
	return &Controller{manager: manager, onQuit: onQuit}
}

// Run enters the systray event loop. Blocks until Quit; call from the main
// goroutine.
func (c *Controller) Run() {
	systray.Run(c.onReady, c.onExit)
}

// Quit ends the tray loop; safe to call from any goroutine.
func (c *Controller) Quit() {
	systray.Quit()
}

func (c *Controller) onReady() {
	systray.SetTitle("TP")
	systray.SetTooltip("padctl — touchpad control")

	c.mStatus = systray.AddMenuItem("Touchpad: enabled", "Current state")
	c.mStatus.Disable()
	systray.AddSeparator()
	c.mToggle = systray.AddMenuItem("Toggle", "Toggle the touchpad")
	c.mEnable = systray.AddMenuItem("Enable", "Enable the touchpad")
	c.mDisable = systray.AddMenuItem("Disable", "Disable the touchpad")
	systray.AddSeparator()
	c.mRefresh = systray.AddMenuItem("Re-probe hardware", "Re-check device and permission state")
	systray.AddSeparator()
	c.mQuit = systray.AddMenuItem("Quit", "Quit padctl")

	c.refresh(c.manager.CurrentState(), false)
	c.manager.OnStateChange(func(ev touchpad.StateChange) {
		c.refresh(ev.State, ev.Emulated)
	})

	go c.clickLoop()
}

func (c *Controller) onExit() {
	if c.onQuit != nil {
		c.onQuit()
	}
}

func (c *Controller) clickLoop() {
	for {
		select {
		case <-c.mToggle.ClickedCh:
			c.request(func() (touchpad.StateChange, error) {
				return c.manager.Toggle(touchpad.SourceTray)
			})
		case <-c.mEnable.ClickedCh:
			c.request(func() (touchpad.StateChange, error) {
				return c.manager.Set(touchpad.Enabled, touchpad.SourceTray)
			})
		case <-c.mDisable.ClickedCh:
			c.request(func() (touchpad.StateChange, error) {
				return c.manager.Set(touchpad.Disabled, touchpad.SourceTray)
			})
		case <-c.mRefresh.ClickedCh:
			caps := c.manager.Refresh()
			log.Printf("[TRAY] re-probe: direct=%v permission=%v detail=%q",
				caps.SupportsDirectControl, caps.PermissionGranted, caps.Detail)
		case <-c.mQuit.ClickedCh:
			systray.Quit()
			return
		}
	}
}

func (c *Controller) request(op func() (touchpad.StateChange, error)) {
	if _, err := op(); err != nil {
		log.Printf("[TRAY] request failed: %v", err)
		if ce, ok := err.(*touchpad.ControlError); ok && ce.CanPrompt {
			c.mStatus.SetTitle("Touchpad: permission needed")
		}
	}
}

func (c *Controller) refresh(state touchpad.State, emulated bool) {
	label := "Touchpad: " + state.String()
	if emulated {
		label += " (emulated)"
	}
	if c.mStatus != nil {
		c.mStatus.SetTitle(label)
	}
	if state == touchpad.Enabled {
		systray.SetTitle("TP")
	} else {
		systray.SetTitle("TP·off")
	}
}
