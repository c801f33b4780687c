package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	appDirName = "gopher-soundboard"

	settingsFile   = "settings.yaml"
	controllerFile = "controller.yaml"

	// DefaultInterval is the cadence of both the input poll and the heartbeat.
	DefaultInterval = 100 * time.Millisecond
)

// Settings holds application preferences that are not part of a sound bank
type Settings struct {
	OpenAtStartup     bool          `yaml:"open_at_startup"`
	SoundBank         string        `yaml:"sound_bank,omitempty"`         // Last used sound bank file
	PollInterval      time.Duration `yaml:"poll_interval,omitempty"`      // Input poll cadence
	HeartbeatInterval time.Duration `yaml:"heartbeat_interval,omitempty"` // Tick cadence
}

// Dir returns the platform-appropriate config directory
func Dir() (string, error) {
	configHome, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configHome, appDirName), nil
}

// SettingsPath returns the full path to the settings file
func SettingsPath() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, settingsFile), nil
}

// ControllerPath returns the default location of the controller mapping
func ControllerPath() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, controllerFile), nil
}

// LoadSettings reads the settings from disk, returning defaults if not found
func LoadSettings() (*Settings, error) {
	path, err := SettingsPath()
	if err != nil {
		return nil, err
	}
	return loadSettingsFrom(path)
}

func loadSettingsFrom(path string) (*Settings, error) {
	var s Settings
	found, err := readYAML(path, &s)
	if err != nil {
		return nil, err
	}
	if !found {
		s = Settings{}
	}
	s.applyDefaults()
	return &s, nil
}

func (s *Settings) applyDefaults() {
	if s.PollInterval <= 0 {
		s.PollInterval = DefaultInterval
	}
	if s.HeartbeatInterval <= 0 {
		s.HeartbeatInterval = DefaultInterval
	}
}

// Save writes the settings to disk
func (s *Settings) Save() error {
	path, err := SettingsPath()
	if err != nil {
		return err
	}
	return writeYAML(path, s)
}

// readYAML decodes the file at path into v. found is false when the file
// does not exist, in which case v is left untouched.
func readYAML(path string, v any) (found bool, err error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if err := yaml.Unmarshal(data, v); err != nil {
		return true, fmt.Errorf("parse %s: %w", path, err)
	}
	return true, nil
}

func writeYAML(path string, v any) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}

	data, err := yaml.Marshal(v)
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}
