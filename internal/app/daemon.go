package app

import (
	"fmt"
	"log"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"padctl/internal/audio"
	"padctl/internal/bridge"
	"padctl/internal/config"
	"padctl/internal/emulator"
	"padctl/internal/hotkeys"
	"padctl/internal/ipc"
	"padctl/internal/metrics"
	"padctl/internal/osd"
	"padctl/internal/terminal"
	"padctl/internal/touchpad"
	"padctl/internal/tray"
)

type Daemon struct {
	config          *config.Config
	manager         *touchpad.Manager
	emulator        *emulator.Emulator
	hotkeyManager   *hotkeys.Manager
	osdDispatcher   *osd.Dispatcher
	trayController  *tray.Controller
	ipcServer       *ipc.Server
	bridgeServer    *bridge.Server
	metricsManager  *metrics.MetricsManager
	terminalControl *terminal.Control

	// toggleCh hands committed transitions to the recording goroutine so
	// metrics file writes and terminal output never run on the manager's
	// transition worker.
	toggleCh chan touchpad.StateChange
	recordWg sync.WaitGroup

	hotkeyActive  bool
	isFirstToggle bool
}

func NewDaemon() *Daemon {
	return &Daemon{
		toggleCh:      make(chan touchpad.StateChange, 64),
		isFirstToggle: true,
	}
}

func (d *Daemon) Initialize() error {
	// Load configuration
	var err error
	d.config, err = config.LoadConfig()
	if err != nil {
		log.Printf("[INIT] config load failed, using defaults: %v", err)
		d.config = config.DefaultConfig()
	}

	// Initialize mouse emulator (the no-direct-control fallback)
	d.emulator = emulator.New()

	// Initialize state manager over the platform backend
	d.manager = touchpad.NewManager(touchpad.NewBackend(), d.emulator, touchpad.Options{
		EmulateOnPermissionDenied: d.config.EmulateOnPermissionDenied,
		BackendTimeout:            d.config.BackendTimeout(),
	})

	// Initialize hotkey manager
	d.hotkeyManager, err = hotkeys.NewManager(d, d.config.Hotkey)
	if err != nil {
		return fmt.Errorf("failed to parse hotkey %q: %v", d.config.Hotkey, err)
	}

	// Initialize OSD notifications
	d.osdDispatcher = osd.NewDispatcher(d.config.NotificationDuration())

	// Initialize metrics manager
	metricsDir, err := config.GetMetricsDir()
	if err != nil {
		return fmt.Errorf("failed to get metrics directory: %v", err)
	}
	d.metricsManager, err = metrics.NewMetricsManager(metricsDir)
	if err != nil {
		return fmt.Errorf("failed to initialize metrics manager: %v", err)
	}

	// Initialize terminal control
	d.terminalControl = terminal.NewControl()

	// Initialize IPC server
	d.ipcServer, err = ipc.NewServer(d.manager, d.config.ResolveSocketPath())
	if err != nil {
		return fmt.Errorf("failed to bind control socket: %v", err)
	}

	// Initialize frontend bridge
	if d.config.BridgeAddr != "" {
		d.bridgeServer = bridge.NewServer(d.manager)
	}

	// Initialize PortAudio for toggle feedback tones
	if d.config.SoundFeedback {
		if err := audio.Initialize(); err != nil {
			log.Printf("[INIT] audio unavailable, feedback tones disabled: %v", err)
			d.config.SoundFeedback = false
		}
	}

	d.manager.OnStateChange(d.handleStateChange)

	return nil
}

func (d *Daemon) Run() error {
	d.manager.Start()
	d.recordWg.Add(1)
	go d.recordLoop()
	if err := d.emulator.Start(); err != nil {
		return fmt.Errorf("failed to start pointer hook: %v", err)
	}
	d.osdDispatcher.Start()
	go d.ipcServer.Serve()

	if d.bridgeServer != nil {
		if err := d.bridgeServer.Start(d.config.BridgeAddr); err != nil {
			log.Printf("[BRIDGE] disabled: %v", err)
			d.bridgeServer = nil
		}
	}

	// A claimed hotkey is not fatal; tray and IPC keep working.
	if err := d.hotkeyManager.Start(); err != nil {
		log.Printf("[HOTKEY] unavailable: %v", err)
	} else {
		d.hotkeyActive = true
		go d.hotkeyManager.Listen()
	}

	// Setup graceful shutdown
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)

	d.trayController = tray.New(d.manager, nil)

	fmt.Println("🖱️  padctl - Touchpad Control Daemon Started")
	if d.hotkeyActive {
		fmt.Printf("📋 Press %s to toggle the touchpad\n", d.hotkeyManager.GetHotkeyDisplay())
	} else {
		fmt.Println("📋 Hotkey unavailable; use the tray menu or 'padctl toggle'")
	}
	caps := d.manager.Capabilities()
	if !caps.Usable() {
		fmt.Printf("⚠️  Direct control unavailable (%s); toggles use pointer emulation\n", caps.Detail)
	}
	fmt.Println("🛑 Press Ctrl+C to exit")
	fmt.Println()

	go func() {
		<-c
		fmt.Println("\n🛑 Shutting down...")
		d.trayController.Quit()
	}()

	// Blocks until the tray loop ends, from the signal above or the
	// tray's own Quit item.
	d.trayController.Run()

	d.Cleanup()
	return nil
}

func (d *Daemon) Cleanup() {
	if d.hotkeyActive {
		d.hotkeyManager.Stop()
	}

	if d.bridgeServer != nil {
		d.bridgeServer.Stop()
	}

	if d.ipcServer != nil {
		d.ipcServer.Close()
	}

	if d.osdDispatcher != nil {
		d.osdDispatcher.Stop()
	}

	// Stop the manager before the emulator so no in-flight toggle can
	// reach a stopped hook. After Stop no subscriber fires, so the record
	// channel can be closed and drained.
	if d.manager != nil {
		d.manager.Stop()
	}
	close(d.toggleCh)
	d.recordWg.Wait()

	if d.emulator != nil {
		d.emulator.Stop()
	}

	if d.config.SoundFeedback {
		audio.Terminate()
	}
}

// OnToggle implements hotkeys.EventHandler
func (d *Daemon) OnToggle() {
	// Keep the OS event callback fast; the toggle runs on the manager's
	// worker.
	go func() {
		if _, err := d.manager.Toggle(touchpad.SourceHotkey); err != nil {
			log.Printf("[HOTKEY] toggle failed: %v", err)
		}
	}()
}

// handleStateChange fans a committed transition out to OSD, metrics, sound
// and the terminal readout. It runs on the manager's transition worker, so
// everything here must hand off without blocking; bridge clients are
// notified by the bridge's own subscription.
func (d *Daemon) handleStateChange(ev touchpad.StateChange) {
	d.osdDispatcher.Show(ev)

	if d.config.SoundFeedback {
		go audio.PlayToggle(ev.State == touchpad.Enabled)
	}

	select {
	case d.toggleCh <- ev:
	default:
		log.Printf("[METRICS] record queue full, dropping toggle record")
	}
}

func (d *Daemon) recordLoop() {
	defer d.recordWg.Done()
	for ev := range d.toggleCh {
		d.displayToggle(ev)
	}
}

func (d *Daemon) displayToggle(ev touchpad.StateChange) {
	record, err := d.metricsManager.RecordToggle(ev)
	if err != nil {
		log.Printf("[METRICS] record failed: %v", err)
		return
	}

	todayMetrics, err := d.metricsManager.GetTodayMetrics()
	if err != nil {
		todayMetrics = nil
	}

	formatter := metrics.NewStatsFormatter()
	lines := formatter.FormatToggleLines(record, todayMetrics)

	d.terminalControl.UpdateInPlace(lines, d.isFirstToggle)
	d.isFirstToggle = false
}
