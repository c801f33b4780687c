package controller

import (
	"github.com/PixPMusic/gopher-soundboard/internal/config"
	"github.com/PixPMusic/gopher-soundboard/internal/sound"
)

// Mapping is the bidirectional lookup between controller id codes and grid
// addresses. It is built once and never modified.
type Mapping struct {
	keys     map[uint8]sound.Coord
	keyIDs   map[sound.Coord]uint8
	channels map[uint8]int

	masterChannel uint8
	masterStop    uint8
}

// NewMapping builds the lookup tables from a validated controller config
func NewMapping(cfg *config.ControllerConfig) *Mapping {
	m := &Mapping{
		keys:          make(map[uint8]sound.Coord, len(cfg.Keys)),
		keyIDs:        make(map[sound.Coord]uint8, len(cfg.Keys)),
		channels:      make(map[uint8]int, len(cfg.Channels)),
		masterChannel: uint8(cfg.MasterChannel.IDCode),
		masterStop:    uint8(cfg.MasterStop.IDCode),
	}
	for _, k := range cfg.Keys {
		xy := sound.Coord{X: k.X, Y: k.Y}
		m.keys[uint8(k.IDCode)] = xy
		m.keyIDs[xy] = uint8(k.IDCode)
	}
	for _, ch := range cfg.Channels {
		m.channels[uint8(ch.IDCode)] = ch.X
	}
	return m
}

// Key resolves a key id code to its grid position
func (m *Mapping) Key(id uint8) (sound.Coord, bool) {
	xy, ok := m.keys[id]
	return xy, ok
}

// KeyID resolves a grid position back to its key id code
func (m *Mapping) KeyID(x, y int) (uint8, bool) {
	id, ok := m.keyIDs[sound.Coord{X: x, Y: y}]
	return id, ok
}

// Channel resolves a control id code to its column
func (m *Mapping) Channel(id uint8) (int, bool) {
	x, ok := m.channels[id]
	return x, ok
}

// IsMasterStop reports whether id is the stop-all key
func (m *Mapping) IsMasterStop(id uint8) bool {
	return id == m.masterStop
}

// IsMasterChannel reports whether id is the master volume control
func (m *Mapping) IsMasterChannel(id uint8) bool {
	return id == m.masterChannel
}
