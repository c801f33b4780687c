package sound

import (
	"maps"
	"slices"

	"github.com/PixPMusic/gopher-soundboard/internal/config"
	"go.uber.org/zap"
)

// ChangeHandler is notified after a pad's visible state may have changed
type ChangeHandler func(p *Pad)

// Manager owns every pad of the current sound bank together with the
// column and master gains. It is not safe for concurrent use: callers
// drive it from a single goroutine.
type Manager struct {
	log    *zap.Logger
	loader Loader

	pads    map[int]map[int]*Pad // [x][y]
	volumes map[int]float64      // column gain
	master  float64

	onChange ChangeHandler
}

// NewManager builds the pads of cfg, loading their assets through loader
func NewManager(cfg *config.SoundConfig, loader Loader, log *zap.Logger) *Manager {
	if log == nil {
		log = zap.NewNop()
	}
	m := &Manager{
		log:     log,
		loader:  loader,
		pads:    make(map[int]map[int]*Pad),
		volumes: make(map[int]float64),
		master:  1.0,
	}
	m.build(cfg)
	return m
}

// SetChangeHandler registers the single change observer, replacing any previous one
func (m *Manager) SetChangeHandler(handler ChangeHandler) {
	m.onChange = handler
}

func (m *Manager) notify(p *Pad) {
	if m.onChange != nil {
		m.onChange(p)
	}
}

// Reload stops every current pad, then discards the pads and rebuilds them
// from cfg. Column gains survive for columns present in both banks.
func (m *Manager) Reload(cfg *config.SoundConfig) {
	for _, p := range m.Pads() {
		p.Stop()
	}
	m.build(cfg)
}

func (m *Manager) build(cfg *config.SoundConfig) {
	old := m.volumes
	m.pads = make(map[int]map[int]*Pad)
	m.volumes = make(map[int]float64)

	for _, entry := range cfg.Sounds {
		pad := m.loadPad(cfg, entry)
		if pad == nil {
			continue
		}
		col, ok := m.pads[entry.X]
		if !ok {
			col = make(map[int]*Pad)
			m.pads[entry.X] = col
			gain, known := old[entry.X]
			if !known {
				gain = 1.0
			}
			m.volumes[entry.X] = gain
		}
		col[entry.Y] = pad
	}

	for x := range m.volumes {
		m.applyVolume(x)
	}
	m.log.Info("sound bank built", zap.Int("pads", m.count()), zap.Int("columns", len(m.volumes)))
}

func (m *Manager) loadPad(cfg *config.SoundConfig, entry config.SoundEntry) *Pad {
	sounds := make([]Sound, 0, len(entry.Files))
	for _, file := range entry.Files {
		path := cfg.ResolvePath(file)
		s, err := m.loader.Load(path)
		if err != nil {
			m.log.Warn("skipping sound file", zap.String("pad", entry.Text), zap.String("file", path), zap.Error(err))
			continue
		}
		sounds = append(sounds, s)
	}
	if len(sounds) == 0 {
		m.log.Warn("pad has no playable files", zap.String("pad", entry.Text), zap.Int("x", entry.X), zap.Int("y", entry.Y))
		return nil
	}
	return newPad(entry, sounds)
}

func (m *Manager) count() int {
	n := 0
	for _, col := range m.pads {
		n += len(col)
	}
	return n
}

// Pad returns the pad at (x, y), or nil if none is configured there
func (m *Manager) Pad(x, y int) *Pad {
	return m.pads[x][y]
}

// Pads returns every pad ordered by column, then row
func (m *Manager) Pads() []*Pad {
	pads := make([]*Pad, 0, m.count())
	for _, x := range slices.Sorted(maps.Keys(m.pads)) {
		col := m.pads[x]
		for _, y := range slices.Sorted(maps.Keys(col)) {
			pads = append(pads, col[y])
		}
	}
	return pads
}

// HitNote presses the pad at (x, y). Unconfigured coordinates are ignored.
func (m *Manager) HitNote(x, y int) {
	p := m.Pad(x, y)
	if p == nil {
		return
	}
	p.Hit()
	m.notify(p)
}

// Tick advances every pad by one heartbeat
func (m *Manager) Tick() {
	for _, p := range m.Pads() {
		if p.Tick() {
			m.notify(p)
		}
	}
}

// Stop fades out every pad
func (m *Manager) Stop() {
	for _, p := range m.Pads() {
		p.Stop()
		m.notify(p)
	}
}

// Snapshot returns the state of every pad
func (m *Manager) Snapshot() map[Coord]State {
	states := make(map[Coord]State, m.count())
	for _, col := range m.pads {
		for _, p := range col {
			states[p.Coord()] = p.State()
		}
	}
	return states
}

// SetVolume stores the gain of column x and applies it to the column's pads.
// Columns without pads are ignored.
func (m *Manager) SetVolume(x int, gain float64) {
	if _, ok := m.volumes[x]; !ok {
		return
	}
	m.volumes[x] = gain
	m.applyVolume(x)
}

// Volume returns the stored gain of column x
func (m *Manager) Volume(x int) (float64, bool) {
	gain, ok := m.volumes[x]
	return gain, ok
}

// SetMasterVolume stores the master gain and reapplies every column
func (m *Manager) SetMasterVolume(gain float64) {
	m.master = gain
	for x := range m.volumes {
		m.applyVolume(x)
	}
}

// MasterVolume returns the master gain
func (m *Manager) MasterVolume() float64 {
	return m.master
}

func (m *Manager) applyVolume(x int) {
	effective := m.volumes[x] * m.master
	for _, p := range m.pads[x] {
		p.SetVolume(effective)
	}
}
