package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	if cfg == nil {
		t.Fatal("DefaultConfig returned nil")
	}

	if !cfg.Engine.DryRun {
		t.Error("dry-run must default to on")
	}
	if cfg.Engine.BufferCap != 128 {
		t.Errorf("expected buffer cap 128, got %d", cfg.Engine.BufferCap)
	}
	if cfg.Engine.SettleMs != 10 {
		t.Errorf("expected settle 10ms, got %d", cfg.Engine.SettleMs)
	}
	if cfg.Heartbeat.IntervalSec != 3 || cfg.Heartbeat.Cycles != 10 {
		t.Errorf("unexpected heartbeat defaults: %+v", cfg.Heartbeat)
	}
	if !cfg.IPC.Enabled {
		t.Error("IPC should default to enabled")
	}
	if !strings.Contains(cfg.Storage.Path, "expandd") {
		t.Errorf("storage path should live under the expandd dir: %s", cfg.Storage.Path)
	}

	if err := cfg.Validate(); err != nil {
		t.Errorf("default config must validate: %v", err)
	}
}

func TestConfigPath(t *testing.T) {
	path := ConfigPath()
	if !strings.HasSuffix(path, "config.toml") {
		t.Errorf("expected path ending with config.toml, got %s", path)
	}
}

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "no-such-config.toml"))
	if err != nil {
		t.Fatalf("Load with missing file: %v", err)
	}
	if !cfg.Engine.DryRun {
		t.Error("missing file should yield defaults")
	}
}

func TestLoadTOML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	doc := `
[engine]
verbose = true
dry_run = false
buffer_cap = 64
settle_ms = 25

[rules]
path = "/tmp/rules.yaml"
debounce_ms = 500

[ipc]
enabled = false

[logging]
level = "debug"
format = "json"
`
	if err := os.WriteFile(path, []byte(doc), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !cfg.Engine.Verbose || cfg.Engine.DryRun {
		t.Errorf("engine flags not applied: %+v", cfg.Engine)
	}
	if cfg.Engine.BufferCap != 64 || cfg.Engine.SettleMs != 25 {
		t.Errorf("engine numbers not applied: %+v", cfg.Engine)
	}
	if cfg.Rules.Path != "/tmp/rules.yaml" || cfg.Rules.DebounceMs != 500 {
		t.Errorf("rules section not applied: %+v", cfg.Rules)
	}
	if cfg.IPC.Enabled {
		t.Error("ipc.enabled = false not applied")
	}
	if cfg.Logging.Level != "debug" || cfg.Logging.Format != "json" {
		t.Errorf("logging section not applied: %+v", cfg.Logging)
	}

	// Untouched sections keep defaults.
	if cfg.Heartbeat.Cycles != 10 {
		t.Errorf("heartbeat default lost: %+v", cfg.Heartbeat)
	}
}

func TestLoadMalformedTOML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte("engine = [broken"), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Error("malformed TOML should fail to load")
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("EXPANDD_SOCKET_PATH", "/tmp/override.sock")
	t.Setenv("EXPANDD_LOG_LEVEL", "warn")
	t.Setenv("EXPANDD_DRY_RUN", "false")

	cfg := DefaultConfig()
	cfg.ApplyEnvOverrides()

	if cfg.IPC.SocketPath != "/tmp/override.sock" {
		t.Errorf("socket path override not applied: %s", cfg.IPC.SocketPath)
	}
	if cfg.Logging.Level != "warn" {
		t.Errorf("log level override not applied: %s", cfg.Logging.Level)
	}
	if cfg.Engine.DryRun {
		t.Error("dry-run override not applied")
	}
}

func TestValidateCollectsAllErrors(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Engine.BufferCap = -1
	cfg.Rules.Path = "/tmp/rules.txt"
	cfg.Logging.Level = "loud"
	cfg.Storage.Path = ""

	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected validation errors")
	}
	verrs, ok := err.(ValidationErrors)
	if !ok {
		t.Fatalf("expected ValidationErrors, got %T", err)
	}
	if len(verrs) != 4 {
		t.Errorf("expected 4 errors, got %d: %v", len(verrs), verrs)
	}
}

func TestValidateSocketRequiredOnlyWhenEnabled(t *testing.T) {
	cfg := DefaultConfig()
	cfg.IPC.Enabled = false
	cfg.IPC.SocketPath = ""
	if err := cfg.Validate(); err != nil {
		t.Errorf("disabled IPC should not require a socket path: %v", err)
	}
}

func TestSaveAndReload(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", "config.toml")

	cfg := DefaultConfig()
	cfg.Engine.Verbose = true
	cfg.Rules.Path = "/tmp/rules.json"
	if err := SaveConfig(cfg, path); err != nil {
		t.Fatalf("SaveConfig: %v", err)
	}

	got, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !got.Engine.Verbose || got.Rules.Path != "/tmp/rules.json" {
		t.Errorf("round trip lost values: %+v", got)
	}
}
