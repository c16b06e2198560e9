// Package config handles configuration loading and validation for expandd.
package config

import (
	"os"
	"path/filepath"
	"runtime"
	"strconv"
)

// PlatformDataDir returns the platform-specific data directory.
//
// Platform paths:
//   - macOS: ~/Library/Application Support/expandd/
//   - Linux: ~/.local/share/expandd/
//
// Falls back to ~/.expandd if platform detection fails.
func PlatformDataDir() string {
	if envDir := os.Getenv("EXPANDD_DATA_DIR"); envDir != "" {
		return envDir
	}
	switch runtime.GOOS {
	case "darwin":
		return macOSDataDir()
	case "linux":
		return linuxDataDir()
	default:
		return fallbackDataDir()
	}
}

// PlatformConfigDir returns the platform-specific config directory.
//
// Platform paths:
//   - macOS: ~/Library/Application Support/expandd/
//   - Linux: ~/.config/expandd/
func PlatformConfigDir() string {
	switch runtime.GOOS {
	case "darwin":
		return macOSDataDir() // macOS uses the same dir for config and data
	case "linux":
		return linuxConfigDir()
	default:
		return fallbackDataDir()
	}
}

// PlatformLogDir returns the platform-specific log directory.
//
// Platform paths:
//   - macOS: ~/Library/Logs/expandd/
//   - Linux: ~/.local/share/expandd/logs/
func PlatformLogDir() string {
	switch runtime.GOOS {
	case "darwin":
		return macOSLogDir()
	case "linux":
		return filepath.Join(linuxDataDir(), "logs")
	default:
		return filepath.Join(fallbackDataDir(), "logs")
	}
}

// PlatformRuntimeDir returns the platform-specific runtime directory for the
// control socket.
//
// Platform paths:
//   - macOS: /tmp/expandd-$UID/
//   - Linux: $XDG_RUNTIME_DIR/expandd/ or /tmp/expandd-$UID/
func PlatformRuntimeDir() string {
	switch runtime.GOOS {
	case "linux":
		return linuxRuntimeDir()
	default:
		return filepath.Join("/tmp", "expandd-"+userID())
	}
}

// DefaultSocketPath returns the default control socket path.
func DefaultSocketPath() string {
	return filepath.Join(PlatformRuntimeDir(), "expandd.sock")
}

// macOS-specific paths

func macOSDataDir() string {
	home := os.Getenv("HOME")
	if home == "" {
		home, _ = os.UserHomeDir()
	}
	return filepath.Join(home, "Library", "Application Support", "expandd")
}

func macOSLogDir() string {
	home := os.Getenv("HOME")
	if home == "" {
		home, _ = os.UserHomeDir()
	}
	return filepath.Join(home, "Library", "Logs", "expandd")
}

// Linux-specific paths following the XDG Base Directory Specification

func linuxDataDir() string {
	if xdgData := os.Getenv("XDG_DATA_HOME"); xdgData != "" {
		return filepath.Join(xdgData, "expandd")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".local", "share", "expandd")
}

func linuxConfigDir() string {
	if xdgConfig := os.Getenv("XDG_CONFIG_HOME"); xdgConfig != "" {
		return filepath.Join(xdgConfig, "expandd")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "expandd")
}

func linuxRuntimeDir() string {
	if xdgRuntime := os.Getenv("XDG_RUNTIME_DIR"); xdgRuntime != "" {
		return filepath.Join(xdgRuntime, "expandd")
	}
	return filepath.Join("/tmp", "expandd-"+userID())
}

// Fallback path

func fallbackDataDir() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".expandd")
}

func userID() string {
	return strconv.Itoa(os.Getuid())
}
