package backend

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
)

// ExecutableName is the companion Antigravity binary the proxy launches.
const ExecutableName = "antigravity"

// Detector locates the companion executable and its launch arguments.
type Detector struct {
	// ConfiguredPath is the user-set override from the settings UI.
	ConfiguredPath string

	// lookPath overrides exec.LookPath in tests.
	lookPath func(string) (string, error)

	// extraDirs prepends candidate directories in tests.
	extraDirs []string
}

// DetectExecutable returns the path to the companion executable. The
// configured override wins unless bypassConfig is set; then PATH, then
// the well-known install locations. Returns ErrNotFound when nothing
// matches.
func (d *Detector) DetectExecutable(bypassConfig bool) (string, error) {
	if !bypassConfig && d.ConfiguredPath != "" {
		if isExecutableFile(d.ConfiguredPath) {
			return d.ConfiguredPath, nil
		}
		return "", fmt.Errorf("configured path %s: %w", d.ConfiguredPath, ErrNotFound)
	}

	lookPath := d.lookPath
	if lookPath == nil {
		lookPath = exec.LookPath
	}
	if path, err := lookPath(executableFileName()); err == nil {
		return path, nil
	}

	for _, dir := range append(append([]string{}, d.extraDirs...), wellKnownDirs()...) {
		candidate := filepath.Join(dir, executableFileName())
		if isExecutableFile(candidate) {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("executable %s: %w", ExecutableName, ErrNotFound)
}

// DetectLaunchArgs returns the arguments the companion executable is
// started with. The order is significant.
func (d *Detector) DetectLaunchArgs() ([]string, error) {
	if _, err := d.DetectExecutable(false); err != nil {
		return nil, err
	}
	return []string{"--serve", "--no-sandbox"}, nil
}

func executableFileName() string {
	if runtime.GOOS == "windows" {
		return ExecutableName + ".exe"
	}
	return ExecutableName
}

// wellKnownDirs lists install locations checked after PATH.
func wellKnownDirs() []string {
	home, _ := os.UserHomeDir()
	switch runtime.GOOS {
	case "darwin":
		return []string{
			"/Applications/Antigravity.app/Contents/MacOS",
			filepath.Join(home, "Applications", "Antigravity.app", "Contents", "MacOS"),
			"/usr/local/bin",
		}
	case "windows":
		return []string{
			filepath.Join(os.Getenv("LOCALAPPDATA"), "Programs", "Antigravity"),
			filepath.Join(os.Getenv("ProgramFiles"), "Antigravity"),
		}
	default:
		return []string{
			"/usr/local/bin",
			"/usr/bin",
			"/opt/antigravity",
			filepath.Join(home, ".local", "bin"),
		}
	}
}

func isExecutableFile(path string) bool {
	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		return false
	}
	if runtime.GOOS == "windows" {
		return true
	}
	return info.Mode()&0o111 != 0
}
