package config

import (
	"errors"
	"fmt"
)

// MaxIDCode is the largest id a MIDI data byte can carry
const MaxIDCode = 127

// Endpoint is a controller element addressed only by its id code
type Endpoint struct {
	IDCode int `yaml:"id_code"`
}

// KeyConfig binds a key id code to a position in the pad grid
type KeyConfig struct {
	IDCode int `yaml:"id_code"`
	X      int `yaml:"x"`
	Y      int `yaml:"y"`
}

// ChannelConfig binds a fader/knob id code to a grid column
type ChannelConfig struct {
	IDCode int `yaml:"id_code"`
	X      int `yaml:"x"`
}

// DeviceConfig names the MIDI ports of the controller
type DeviceConfig struct {
	InPort  string `yaml:"input_port"`
	OutPort string `yaml:"output_port"`
}

// ControllerConfig describes everything needed to talk to the controller
type ControllerConfig struct {
	Keys          []KeyConfig     `yaml:"keys"`
	Channels      []ChannelConfig `yaml:"channels"`
	MasterChannel Endpoint        `yaml:"master_channel"`
	MasterStop    Endpoint        `yaml:"master_stop"`
	Device        DeviceConfig    `yaml:"device"`
}

// DefaultControllerConfig returns the layout of an AKAI APC mini:
// an 8x8 key grid numbered from the bottom left, one fader per column,
// the master fader and the "stop all clips" key.
func DefaultControllerConfig() *ControllerConfig {
	cfg := &ControllerConfig{
		Keys:          make([]KeyConfig, 0, 64),
		Channels:      make([]ChannelConfig, 0, 8),
		MasterChannel: Endpoint{IDCode: 56},
		MasterStop:    Endpoint{IDCode: 119},
		Device: DeviceConfig{
			InPort:  "APC MINI",
			OutPort: "APC MINI",
		},
	}
	for id := 0; id < 64; id++ {
		cfg.Keys = append(cfg.Keys, KeyConfig{IDCode: id, X: id % 8, Y: id / 8})
	}
	for col := 0; col < 8; col++ {
		cfg.Channels = append(cfg.Channels, ChannelConfig{IDCode: 48 + col, X: col})
	}
	return cfg
}

// LoadControllerConfig reads the controller mapping at path. An empty path
// means the default location. A missing file yields DefaultControllerConfig.
func LoadControllerConfig(path string) (*ControllerConfig, error) {
	if path == "" {
		p, err := ControllerPath()
		if err != nil {
			return nil, err
		}
		path = p
	}

	var cfg ControllerConfig
	found, err := readYAML(path, &cfg)
	if err != nil {
		return nil, err
	}
	if !found {
		return DefaultControllerConfig(), nil
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid controller config %s: %w", path, err)
	}
	return &cfg, nil
}

// Save writes the controller mapping to path
func (c *ControllerConfig) Save(path string) error {
	return writeYAML(path, c)
}

// Validate checks that every id code is in range and used once, and that
// no two keys share a coordinate. Keys and the master stop are notes,
// channels and the master channel are controls; the two id spaces are
// checked separately.
func (c *ControllerConfig) Validate() error {
	var errs []error
	newClaim := func(space string) func(id int, what string) {
		seen := make(map[int]string)
		return func(id int, what string) {
			if id < 0 || id > MaxIDCode {
				errs = append(errs, fmt.Errorf("%s: id code %d out of range 0-%d", what, id, MaxIDCode))
				return
			}
			if prev, ok := seen[id]; ok {
				errs = append(errs, fmt.Errorf("%s: %s id code %d already used by %s", what, space, id, prev))
				return
			}
			seen[id] = what
		}
	}
	note, control := newClaim("note"), newClaim("control")

	note(c.MasterStop.IDCode, "master stop")
	control(c.MasterChannel.IDCode, "master channel")

	coords := make(map[[2]int]int)
	for _, k := range c.Keys {
		note(k.IDCode, fmt.Sprintf("key (%d,%d)", k.X, k.Y))
		xy := [2]int{k.X, k.Y}
		if prev, ok := coords[xy]; ok {
			errs = append(errs, fmt.Errorf("key %d: coordinate (%d,%d) already bound to key %d", k.IDCode, k.X, k.Y, prev))
			continue
		}
		coords[xy] = k.IDCode
	}

	for _, ch := range c.Channels {
		control(ch.IDCode, fmt.Sprintf("channel %d", ch.X))
	}

	return errors.Join(errs...)
}
