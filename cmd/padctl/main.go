package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"padctl/internal/app"
	"padctl/internal/config"
	"padctl/internal/ipc"
	"padctl/internal/metrics"
	"padctl/internal/version"
)

func main() {
	var (
		showConfig  = flag.Bool("show-config", false, "Show current configuration location")
		initConfig  = flag.Bool("init-config", false, "Write a default config file for editing")
		showVersion = flag.Bool("version", false, "Show current version")
		showStats   = flag.Bool("stats", false, "Show toggle usage statistics")
		resetStats  = flag.Bool("reset-stats", false, "Clear all usage statistics")
	)
	flag.Parse()

	if *showVersion {
		handleShowVersion()
		return
	}

	if *showConfig {
		handleShowConfig()
		return
	}

	if *initConfig {
		handleInitConfig()
		return
	}

	if *showStats {
		handleShowStats()
		return
	}

	if *resetStats {
		handleResetStats()
		return
	}

	switch cmd := flag.Arg(0); cmd {
	case "", "daemon":
		runDaemon()
	case "status":
		handleClient(ipc.Request{Command: ipc.CmdStatus})
	case "toggle":
		handleClient(ipc.Request{Command: ipc.CmdToggle})
	case "enable":
		handleClient(ipc.Request{Command: ipc.CmdSet, State: "enabled"})
	case "disable":
		handleClient(ipc.Request{Command: ipc.CmdSet, State: "disabled"})
	case "refresh":
		handleClient(ipc.Request{Command: ipc.CmdRefresh})
	default:
		fmt.Printf("❌ Unknown command: %s\n", cmd)
		fmt.Println("💡 Commands: daemon (default), status, toggle, enable, disable, refresh")
		os.Exit(1)
	}
}

func runDaemon() {
	isValid, newVersion := version.CheckVersion()
	if !isValid {
		fmt.Printf(`The newest version of padctl is %v but the installed version on your system is %v.

%v

To get the latest features and likely bugfixes, please install the latest version by running 'go install padctl/cmd/padctl@main'.`+"\n\n", newVersion, version.VERSION, version.UPDATE_MESSAGE)
	}

	daemon := app.NewDaemon()
	if err := daemon.Initialize(); err != nil {
		log.Fatalf("Failed to initialize daemon: %v", err)
	}

	if err := daemon.Run(); err != nil {
		log.Fatalf("Daemon error: %v", err)
	}
}

func handleClient(req ipc.Request) {
	cfg, err := config.LoadConfig()
	if err != nil {
		cfg = config.DefaultConfig()
	}

	resp, err := ipc.Call(cfg.ResolveSocketPath(), req)
	if err != nil {
		fmt.Printf("❌ %v\n", err)
		os.Exit(1)
	}

	stateLine := fmt.Sprintf("🖱️  Touchpad: %s", resp.State)
	if resp.Emulated {
		stateLine += " (emulated)"
	}
	fmt.Println(stateLine)

	if resp.Capabilities != nil {
		caps := resp.Capabilities
		fmt.Printf("   Direct control: %v\n", caps.SupportsDirectControl)
		if caps.RequiresPermission {
			fmt.Printf("   Permission granted: %v\n", caps.PermissionGranted)
		}
		if caps.Detail != "" {
			fmt.Printf("   Detail: %s\n", caps.Detail)
		}
	}
}

func handleShowConfig() {
	configPath, err := config.GetConfigPath()
	if err != nil {
		fmt.Printf("❌ Error getting config path: %v\n", err)
		os.Exit(1)
	}

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		fmt.Println("📝 Config file does not exist yet")
	} else {
		fmt.Printf("📁 Config file location: %s\n", configPath)
		fmt.Println()
		fmt.Println("📋 Config file contents:")

		content, err := os.ReadFile(configPath)
		if err != nil {
			fmt.Printf("❌ Error reading config file: %v\n", err)
			return
		}

		fmt.Println(string(content))
	}
}

func handleInitConfig() {
	configPath, err := config.GetConfigPath()
	if err != nil {
		fmt.Printf("❌ Error getting config path: %v\n", err)
		os.Exit(1)
	}

	if _, err := os.Stat(configPath); err == nil {
		fmt.Printf("📁 Config file already exists: %s\n", configPath)
		return
	}

	if err := config.SaveConfig(config.DefaultConfig()); err != nil {
		fmt.Printf("❌ Error writing config file: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("✅ Default config written to %s\n", configPath)
}

func handleShowVersion() {
	fmt.Printf("padctl (Touchpad Control) %s\n", version.VERSION)
}

func handleShowStats() {
	metricsDir, err := config.GetMetricsDir()
	if err != nil {
		fmt.Printf("❌ Error getting metrics directory: %v\n", err)
		os.Exit(1)
	}

	metricsManager, err := metrics.NewMetricsManager(metricsDir)
	if err != nil {
		fmt.Printf("❌ Error initializing metrics: %v\n", err)
		os.Exit(1)
	}

	totalMetrics, err := metricsManager.GetTotalMetrics()
	if err != nil {
		fmt.Printf("❌ Error getting total metrics: %v\n", err)
		os.Exit(1)
	}

	recentDays, err := metricsManager.GetRecentDays(7)
	if err != nil {
		fmt.Printf("⚠️  Warning: Failed to get recent metrics: %v\n", err)
	}

	formatter := metrics.NewStatsFormatter()

	fmt.Println(formatter.FormatTotalStats(totalMetrics))
	fmt.Println()

	if len(recentDays) > 0 {
		fmt.Println(formatter.FormatRecentDays(recentDays))
	}
}

func handleResetStats() {
	metricsDir, err := config.GetMetricsDir()
	if err != nil {
		fmt.Printf("❌ Error getting metrics directory: %v\n", err)
		os.Exit(1)
	}

	metricsManager, err := metrics.NewMetricsManager(metricsDir)
	if err != nil {
		fmt.Printf("❌ Error initializing metrics: %v\n", err)
		os.Exit(1)
	}

	if err := metricsManager.ClearAllMetrics(); err != nil {
		fmt.Printf("❌ Error clearing metrics: %v\n", err)
		os.Exit(1)
	}

	fmt.Println("🗑️  All usage statistics have been cleared")
}
