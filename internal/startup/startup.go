// Package startup registers the soundboard to launch at login.
package startup

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
)

const (
	appName  = "GopherSoundboard"
	appLabel = "com.pixpmusic.gopher-soundboard"
)

// Entry is the command launched at login
type Entry struct {
	Exec string
	Args []string
}

// CurrentEntry launches this executable with args
func CurrentEntry(args ...string) (Entry, error) {
	exe, err := os.Executable()
	if err != nil {
		return Entry{}, fmt.Errorf("locate executable: %w", err)
	}
	return Entry{Exec: exe, Args: args}, nil
}

// Apply enables or disables launch at login to match enabled
func Apply(enabled bool, e Entry) error {
	if enabled {
		return Enable(e)
	}
	return Disable()
}

// Enable registers e to launch at login
func Enable(e Entry) error {
	switch runtime.GOOS {
	case "darwin":
		return writeFile(macPlistPath(), macPlist(e))
	case "linux":
		return writeFile(linuxDesktopPath(), linuxDesktop(e))
	case "windows":
		return enableWindows(e)
	default:
		return fmt.Errorf("unsupported platform: %s", runtime.GOOS)
	}
}

// Disable removes the login entry. Disabling twice is not an error.
func Disable() error {
	switch runtime.GOOS {
	case "darwin":
		return removeFile(macPlistPath())
	case "linux":
		return removeFile(linuxDesktopPath())
	case "windows":
		return disableWindows()
	default:
		return fmt.Errorf("unsupported platform: %s", runtime.GOOS)
	}
}

// IsEnabled reports whether a login entry exists
func IsEnabled() bool {
	switch runtime.GOOS {
	case "darwin":
		return exists(macPlistPath())
	case "linux":
		return exists(linuxDesktopPath())
	case "windows":
		return exec.Command("reg", "query", windowsRunKey, "/v", appName).Run() == nil
	default:
		return false
	}
}

func writeFile(path, content string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create %s: %w", filepath.Dir(path), err)
	}
	return os.WriteFile(path, []byte(content), 0644)
}

func removeFile(path string) error {
	err := os.Remove(path)
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

func exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// --- macOS ---

func macPlistPath() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, "Library", "LaunchAgents", appLabel+".plist")
}

func macPlist(e Entry) string {
	var args strings.Builder
	for _, a := range append([]string{e.Exec}, e.Args...) {
		fmt.Fprintf(&args, "        <string>%s</string>\n", xmlEscape(a))
	}
	return fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<!DOCTYPE plist PUBLIC "-//Apple//DTD PLIST 1.0//EN" "http://www.apple.com/DTDs/PropertyList-1.0.dtd">
<plist version="1.0">
<dict>
    <key>Label</key>
    <string>%s</string>
    <key>ProgramArguments</key>
    <array>
%s    </array>
    <key>RunAtLoad</key>
    <true/>
</dict>
</plist>
`, appLabel, args.String())
}

var xmlReplacer = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;")

func xmlEscape(s string) string {
	return xmlReplacer.Replace(s)
}

// --- Linux ---

func linuxDesktopPath() string {
	configHome := os.Getenv("XDG_CONFIG_HOME")
	if configHome == "" {
		home, _ := os.UserHomeDir()
		configHome = filepath.Join(home, ".config")
	}
	return filepath.Join(configHome, "autostart", "gopher-soundboard.desktop")
}

func linuxDesktop(e Entry) string {
	return fmt.Sprintf(`[Desktop Entry]
Type=Application
Name=%s
Exec=%s
Hidden=false
NoDisplay=false
X-GNOME-Autostart-enabled=true
`, appName, commandLine(e))
}

// commandLine quotes arguments containing spaces
func commandLine(e Entry) string {
	parts := make([]string, 0, len(e.Args)+1)
	for _, a := range append([]string{e.Exec}, e.Args...) {
		if strings.ContainsAny(a, " \t") {
			a = `"` + a + `"`
		}
		parts = append(parts, a)
	}
	return strings.Join(parts, " ")
}

// --- Windows ---

const windowsRunKey = `HKCU\Software\Microsoft\Windows\CurrentVersion\Run`

func enableWindows(e Entry) error {
	cmd := exec.Command("reg", "add", windowsRunKey,
		"/v", appName,
		"/t", "REG_SZ",
		"/d", commandLine(e),
		"/f")
	if out, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("reg add: %w: %s", err, strings.TrimSpace(string(out)))
	}
	return nil
}

func disableWindows() error {
	cmd := exec.Command("reg", "delete", windowsRunKey, "/v", appName, "/f")
	out, err := cmd.CombinedOutput()
	// A missing value means already disabled
	if err != nil && !strings.Contains(string(out), "unable to find") {
		return fmt.Errorf("reg delete: %w", err)
	}
	return nil
}
