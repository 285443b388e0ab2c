package config

import (
	"os"
	"path/filepath"
	"runtime"
)

// Dir returns the shiplog configuration directory.
//
// Resolution:
//   - $SHIPLOG_CONFIG_HOME if set (explicit override)
//   - $XDG_CONFIG_HOME/shiplog if set (respects XDG on any platform)
//   - %AppData%/shiplog on Windows
//   - ~/.config/shiplog on macOS and Linux
func Dir() string {
	// Explicit override
	if dir := os.Getenv("SHIPLOG_CONFIG_HOME"); dir != "" {
		return dir
	}

	// XDG override (works on any platform)
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "shiplog")
	}

	// Windows: use AppData
	if runtime.GOOS == "windows" {
		if appData := os.Getenv("APPDATA"); appData != "" {
			return filepath.Join(appData, "shiplog")
		}
	}

	// macOS and Linux: ~/.config/shiplog
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "shiplog")
}
