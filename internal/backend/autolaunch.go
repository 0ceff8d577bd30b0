package backend

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
)

// AutoLaunch manages launching the application at login. Linux uses an
// XDG autostart desktop entry, macOS a LaunchAgents plist. Everything
// else reports ErrPlatformUnsupported and the shell shows the toggle
// disabled.
type AutoLaunch struct {
	// AppName labels the login item.
	AppName string

	// ExecPath is the command run at login.
	ExecPath string

	// goos overrides runtime.GOOS in tests.
	goos string

	// homeDir overrides the user home directory in tests.
	homeDir string
}

// NewAutoLaunch creates an AutoLaunch for the running executable.
func NewAutoLaunch() (*AutoLaunch, error) {
	exe, err := os.Executable()
	if err != nil {
		return nil, fmt.Errorf("locating own executable: %w", err)
	}
	return &AutoLaunch{AppName: "Antigravity Manager", ExecPath: exe}, nil
}

// Enabled reports whether the login item is present.
func (a *AutoLaunch) Enabled() (bool, error) {
	path, err := a.entryPath()
	if err != nil {
		return false, err
	}
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, fmt.Errorf("querying auto-launch: %w", err)
	}
	return true, nil
}

// Enable installs the login item. Idempotent.
func (a *AutoLaunch) Enable() error {
	path, err := a.entryPath()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating auto-launch directory: %w", err)
	}
	if err := os.WriteFile(path, []byte(a.entryContent()), 0o644); err != nil {
		return fmt.Errorf("installing auto-launch entry: %w", err)
	}
	return nil
}

// Disable removes the login item. Removing an absent item succeeds.
func (a *AutoLaunch) Disable() error {
	path, err := a.entryPath()
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("removing auto-launch entry: %w", err)
	}
	return nil
}

func (a *AutoLaunch) platform() string {
	if a.goos != "" {
		return a.goos
	}
	return runtime.GOOS
}

func (a *AutoLaunch) home() (string, error) {
	if a.homeDir != "" {
		return a.homeDir, nil
	}
	return os.UserHomeDir()
}

// entryPath returns where the login item lives on this platform.
func (a *AutoLaunch) entryPath() (string, error) {
	home, err := a.home()
	if err != nil {
		return "", fmt.Errorf("resolving home directory: %w", err)
	}
	switch a.platform() {
	case "linux":
		return filepath.Join(home, ".config", "autostart", "antigravity-manager.desktop"), nil
	case "darwin":
		return filepath.Join(home, "Library", "LaunchAgents", "com.antigravity.manager.plist"), nil
	default:
		return "", ErrPlatformUnsupported
	}
}

func (a *AutoLaunch) entryContent() string {
	switch a.platform() {
	case "linux":
		return fmt.Sprintf(`[Desktop Entry]
Type=Application
Name=%s
Exec=%s
X-GNOME-Autostart-enabled=true
`, a.AppName, a.ExecPath)
	case "darwin":
		return fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<!DOCTYPE plist PUBLIC "-//Apple//DTD PLIST 1.0//EN" "http://www.apple.com/DTDs/PropertyList-1.0.dtd">
<plist version="1.0">
<dict>
	<key>Label</key>
	<string>com.antigravity.manager</string>
	<key>ProgramArguments</key>
	<array>
		<string>%s</string>
	</array>
	<key>RunAtLoad</key>
	<true/>
</dict>
</plist>
`, a.ExecPath)
	default:
		return ""
	}
}
