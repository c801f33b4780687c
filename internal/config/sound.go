package config

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/google/uuid"
)

// PlayMode selects how a pad reacts to repeated hits
type PlayMode string

const (
	ModeLayer PlayMode = "play_and_layer" // Every hit starts another overlapping voice
	ModePause PlayMode = "play_and_pause" // Hits toggle pause, the sound loops
	ModeStop  PlayMode = "play_and_stop"  // Hits toggle stop, the sound loops
)

// Valid reports whether m is a known play mode
func (m PlayMode) Valid() bool {
	switch m {
	case ModeLayer, ModePause, ModeStop:
		return true
	}
	return false
}

// FileSelect picks which file of a pad plays next
type FileSelect string

const (
	SelectSequence FileSelect = "sequence"
	SelectRandom   FileSelect = "random"
)

// Valid reports whether f is a known file selection policy
func (f FileSelect) Valid() bool {
	return f == SelectSequence || f == SelectRandom
}

// SoundEntry describes one pad of the sound bank
type SoundEntry struct {
	ID         string     `yaml:"id"`
	Text       string     `yaml:"text"`
	X          int        `yaml:"x"`
	Y          int        `yaml:"y"`
	Files      []string   `yaml:"files"`
	FileSelect FileSelect `yaml:"file_select"`
	Mode       PlayMode   `yaml:"mode"`
}

// NewSoundEntry creates a layered, sequential entry at (x, y) with a generated ID
func NewSoundEntry(x, y int) SoundEntry {
	return SoundEntry{
		ID:         uuid.New().String(),
		Text:       "New Sound",
		X:          x,
		Y:          y,
		Files:      []string{},
		FileSelect: SelectSequence,
		Mode:       ModeLayer,
	}
}

// SoundConfig is a complete sound bank
type SoundConfig struct {
	Sounds []SoundEntry `yaml:"sounds"`

	// Dir is the directory relative file paths are resolved against
	Dir string `yaml:"-"`
}

// LoadSoundConfig reads the sound bank at path, fills in defaults and
// validates it. An empty path yields an empty bank.
func LoadSoundConfig(path string) (*SoundConfig, error) {
	if path == "" {
		return &SoundConfig{Sounds: []SoundEntry{}}, nil
	}

	var cfg SoundConfig
	found, err := readYAML(path, &cfg)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, fmt.Errorf("sound bank %s not found", path)
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}
	cfg.Dir = filepath.Dir(abs)
	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid sound bank %s: %w", path, err)
	}
	return &cfg, nil
}

// Save writes the sound bank, including any defaults filled in on load
func (c *SoundConfig) Save(path string) error {
	return writeYAML(path, c)
}

func (c *SoundConfig) applyDefaults() {
	if c.Sounds == nil {
		c.Sounds = []SoundEntry{}
	}
	for i := range c.Sounds {
		s := &c.Sounds[i]
		if s.ID == "" {
			s.ID = uuid.New().String()
		}
		if s.FileSelect == "" {
			s.FileSelect = SelectSequence
		}
		if s.Mode == "" {
			s.Mode = ModeLayer
		}
	}
}

// Validate checks enums, file lists and that each coordinate is used once
func (c *SoundConfig) Validate() error {
	var errs []error
	coords := make(map[[2]int]string)
	for _, s := range c.Sounds {
		name := fmt.Sprintf("sound %q at (%d,%d)", s.Text, s.X, s.Y)
		if len(s.Files) == 0 {
			errs = append(errs, fmt.Errorf("%s: no files", name))
		}
		if !s.Mode.Valid() {
			errs = append(errs, fmt.Errorf("%s: unknown mode %q", name, s.Mode))
		}
		if !s.FileSelect.Valid() {
			errs = append(errs, fmt.Errorf("%s: unknown file_select %q", name, s.FileSelect))
		}
		xy := [2]int{s.X, s.Y}
		if prev, ok := coords[xy]; ok {
			errs = append(errs, fmt.Errorf("%s: coordinate already used by %q", name, prev))
			continue
		}
		coords[xy] = s.Text
	}
	return errors.Join(errs...)
}

// ResolvePath returns file as an absolute path, relative to the bank directory
func (c *SoundConfig) ResolvePath(file string) string {
	if filepath.IsAbs(file) || c.Dir == "" {
		return file
	}
	return filepath.Join(c.Dir, file)
}

// Find returns the entry at (x, y), or nil if the pad is unassigned
func (c *SoundConfig) Find(x, y int) *SoundEntry {
	for i := range c.Sounds {
		if c.Sounds[i].X == x && c.Sounds[i].Y == y {
			return &c.Sounds[i]
		}
	}
	return nil
}
