package config

import (
	"encoding/json"
	"os"
	"os/user"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"padctl/internal/ipc"
)

const (
	configFileName = "config.json"
	configDirName  = "padctl"
	metricsSubDir  = "metrics"

	envPrefix = "PADCTL_"
)

// Config represents the application configuration
type Config struct {
	Hotkey                    string `json:"hotkey"`
	EmulateOnPermissionDenied bool   `json:"emulate_on_permission_denied"`
	NotificationDurationMs    int    `json:"notification_duration_ms"`
	SoundFeedback             bool   `json:"sound_feedback"`
	BackendTimeoutMs          int    `json:"backend_timeout_ms"`
	BridgeAddr                string `json:"bridge_addr"`
	SocketPath                string `json:"socket_path,omitempty"`
}

func DefaultConfig() *Config {
	return &Config{
		Hotkey:                    "ctrl+alt+f7",
		EmulateOnPermissionDenied: true,
		NotificationDurationMs:    1500,
		SoundFeedback:             true,
		BackendTimeoutMs:          2000,
		BridgeAddr:                "127.0.0.1:7717",
	}
}

func (c *Config) NotificationDuration() time.Duration {
	return time.Duration(c.NotificationDurationMs) * time.Millisecond
}

func (c *Config) BackendTimeout() time.Duration {
	return time.Duration(c.BackendTimeoutMs) * time.Millisecond
}

// ResolveSocketPath picks the configured socket path or the runtime default.
func (c *Config) ResolveSocketPath() string {
	if c.SocketPath != "" {
		return c.SocketPath
	}
	return ipc.SocketPath()
}

// getConfigDir returns the user's config directory for padctl
func getConfigDir() (string, error) {
	usr, err := user.Current()
	if err != nil {
		return "", err
	}

	configDir := filepath.Join(usr.HomeDir, ".config", configDirName)
	return configDir, nil
}

// getConfigPath returns the full path to the config file
func getConfigPath() (string, error) {
	configDir, err := getConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, configFileName), nil
}

// LoadConfig loads configuration with fallback priority: defaults, then the
// config file, then a .env file, then PADCTL_* environment variables.
func LoadConfig() (*Config, error) {
	config := DefaultConfig()

	configPath, err := getConfigPath()
	if err != nil {
		return nil, err
	}
	if err := readConfigFile(configPath, config); err != nil {
		return nil, err
	}

	// .env is a development convenience; absence is not an error.
	godotenv.Load()
	applyEnv(config)

	return config, nil
}

// readConfigFile unmarshals the file over the values already in config, so
// missing keys keep their defaults.
func readConfigFile(path string, config *Config) error {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	return json.Unmarshal(data, config)
}

// applyEnv overrides config fields from PADCTL_* variables.
func applyEnv(config *Config) {
	if v := os.Getenv(envPrefix + "HOTKEY"); v != "" {
		config.Hotkey = v
	}
	if v := os.Getenv(envPrefix + "BRIDGE_ADDR"); v != "" {
		config.BridgeAddr = v
	}
	if v := os.Getenv(envPrefix + "SOCKET_PATH"); v != "" {
		config.SocketPath = v
	}
	if v, ok := envBool(envPrefix + "EMULATE_ON_PERMISSION_DENIED"); ok {
		config.EmulateOnPermissionDenied = v
	}
	if v, ok := envBool(envPrefix + "SOUND_FEEDBACK"); ok {
		config.SoundFeedback = v
	}
	if v, ok := envInt(envPrefix + "NOTIFICATION_DURATION_MS"); ok {
		config.NotificationDurationMs = v
	}
	if v, ok := envInt(envPrefix + "BACKEND_TIMEOUT_MS"); ok {
		config.BackendTimeoutMs = v
	}
}

func envBool(key string) (bool, bool) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return false, false
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, false
	}
	return b, true
}

func envInt(key string) (int, bool) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return 0, false
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, false
	}
	return n, true
}

// SaveConfig saves configuration to file
func SaveConfig(config *Config) error {
	configDir, err := getConfigDir()
	if err != nil {
		return err
	}

	// Create config directory if it doesn't exist
	if err := os.MkdirAll(configDir, 0755); err != nil {
		return err
	}

	configPath, err := getConfigPath()
	if err != nil {
		return err
	}

	data, err := json.MarshalIndent(config, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(configPath, data, 0600)
}

// GetConfigPath returns the full path to the config file (exported for CLI commands)
func GetConfigPath() (string, error) {
	return getConfigPath()
}

// GetMetricsDir returns the metrics directory path
func GetMetricsDir() (string, error) {
	configDir, err := getConfigDir()
	if err != nil {
		return "", err
	}

	return filepath.Join(configDir, metricsSubDir), nil
}
