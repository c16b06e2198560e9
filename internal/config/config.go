// Package config handles configuration loading and validation for expandd.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/BurntSushi/toml"
)

// Config holds the complete daemon configuration.
type Config struct {
	// Engine configuration for the expansion hot path.
	Engine EngineConfig `toml:"engine" json:"engine"`

	// Heartbeat configuration for the liveness task.
	Heartbeat HeartbeatConfig `toml:"heartbeat" json:"heartbeat"`

	// Rules configuration for the rules document on disk.
	Rules RulesConfig `toml:"rules" json:"rules"`

	// Storage configuration for rule persistence.
	Storage StorageConfig `toml:"storage" json:"storage"`

	// IPC configuration for the control socket.
	IPC IPCConfig `toml:"ipc" json:"ipc"`

	// Logging configuration.
	Logging LoggingConfig `toml:"logging" json:"logging"`
}

// EngineConfig holds expansion engine settings.
type EngineConfig struct {
	// Verbose enables per-keystroke logging.
	Verbose bool `toml:"verbose" json:"verbose"`

	// DryRun logs intended expansions instead of injecting them.
	// Defaults to true; injection must be opted into.
	DryRun bool `toml:"dry_run" json:"dry_run"`

	// BufferCap is the rolling-buffer capacity in runes.
	BufferCap int `toml:"buffer_cap" json:"buffer_cap"`

	// SettleMs is the delay after a synthetic sequence before the
	// reentrancy guard is released, in milliseconds.
	SettleMs int `toml:"settle_ms" json:"settle_ms"`
}

// HeartbeatConfig holds liveness heartbeat settings.
type HeartbeatConfig struct {
	// IntervalSec is the heartbeat period in seconds.
	IntervalSec int `toml:"interval_sec" json:"interval_sec"`

	// Cycles is how many heartbeats to emit before the task exits.
	Cycles int `toml:"cycles" json:"cycles"`
}

// RulesConfig holds the on-disk rules document settings.
type RulesConfig struct {
	// Path is the rules document to load and watch. Empty disables the
	// file watcher; rules then come from the database and the control
	// surface only.
	Path string `toml:"path" json:"path"`

	// DebounceMs is how long the file must be quiet before a reload.
	DebounceMs int `toml:"debounce_ms" json:"debounce_ms"`
}

// StorageConfig holds rule persistence settings.
type StorageConfig struct {
	// Path is the SQLite database file for the persisted rule set.
	Path string `toml:"path" json:"path"`
}

// IPCConfig holds control socket settings.
type IPCConfig struct {
	// Enabled determines whether the IPC server is started.
	Enabled bool `toml:"enabled" json:"enabled"`

	// SocketPath is the path to the Unix socket.
	SocketPath string `toml:"socket_path" json:"socket_path"`

	// TimeoutSec is the per-connection read/write timeout.
	TimeoutSec int `toml:"timeout_sec" json:"timeout_sec"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	// Level is the log level: "debug", "info", "warn", "error".
	Level string `toml:"level" json:"level"`

	// Format is the log format: "text" or "json".
	Format string `toml:"format" json:"format"`

	// Output is the log output: "stdout", "stderr", or "file".
	Output string `toml:"output" json:"output"`

	// FilePath is the path to the log file (when Output is "file").
	FilePath string `toml:"file_path" json:"file_path"`

	// RingLines is how many recent lines the diagnostics ring retains.
	RingLines int `toml:"ring_lines" json:"ring_lines"`
}

// DefaultConfig returns a configuration with sensible defaults.
func DefaultConfig() *Config {
	dataDir := PlatformDataDir()

	return &Config{
		Engine: EngineConfig{
			Verbose:   false,
			DryRun:    true,
			BufferCap: 128,
			SettleMs:  10,
		},
		Heartbeat: HeartbeatConfig{
			IntervalSec: 3,
			Cycles:      10,
		},
		Rules: RulesConfig{
			Path:       "",
			DebounceMs: 250,
		},
		Storage: StorageConfig{
			Path: filepath.Join(dataDir, "rules.db"),
		},
		IPC: IPCConfig{
			Enabled:    true,
			SocketPath: DefaultSocketPath(),
			TimeoutSec: 30,
		},
		Logging: LoggingConfig{
			Level:     "info",
			Format:    "text",
			Output:    "stderr",
			FilePath:  filepath.Join(PlatformLogDir(), "expandd.log"),
			RingLines: 1000,
		},
	}
}

// ConfigPath returns the default configuration file path.
func ConfigPath() string {
	return filepath.Join(PlatformConfigDir(), "config.toml")
}

// Load reads configuration from the specified path. A missing file returns
// defaults; a present but malformed file is an error.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	if path == "" {
		path = ConfigPath()
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			cfg.ApplyEnvOverrides()
			return cfg, nil
		}
		return nil, fmt.Errorf("read config file: %w", err)
	}

	if _, err := toml.Decode(string(data), cfg); err != nil {
		return nil, fmt.Errorf("decode TOML: %w", err)
	}

	cfg.ApplyEnvOverrides()
	return cfg, nil
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	return ValidateConfig(c)
}

// EnsureDirectories creates the directories the daemon writes into.
func (c *Config) EnsureDirectories() error {
	dirs := []string{
		filepath.Dir(c.Storage.Path),
		filepath.Dir(c.IPC.SocketPath),
	}
	if c.Logging.Output == "file" {
		dirs = append(dirs, filepath.Dir(c.Logging.FilePath))
	}

	for _, dir := range dirs {
		if dir == "" || dir == "." {
			continue
		}
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return fmt.Errorf("create directory %s: %w", dir, err)
		}
	}
	return nil
}

// ApplyEnvOverrides applies environment variable overrides. Variables are
// prefixed with EXPANDD_ and use underscores.
func (c *Config) ApplyEnvOverrides() {
	if v := os.Getenv("EXPANDD_RULES_PATH"); v != "" {
		c.Rules.Path = v
	}
	if v := os.Getenv("EXPANDD_STORAGE_PATH"); v != "" {
		c.Storage.Path = v
	}
	if v := os.Getenv("EXPANDD_SOCKET_PATH"); v != "" {
		c.IPC.SocketPath = v
	}
	if v := os.Getenv("EXPANDD_LOG_LEVEL"); v != "" {
		c.Logging.Level = v
	}
	if v := os.Getenv("EXPANDD_LOG_PATH"); v != "" {
		c.Logging.FilePath = v
	}
	if v := os.Getenv("EXPANDD_DRY_RUN"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			c.Engine.DryRun = b
		}
	}
}

// SaveConfig writes the configuration to path as TOML.
func SaveConfig(c *Config, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o600)
	if err != nil {
		return fmt.Errorf("create config file: %w", err)
	}
	defer f.Close()

	if err := toml.NewEncoder(f).Encode(c); err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	return nil
}
