package sound

import (
	"math/rand/v2"

	"github.com/PixPMusic/gopher-soundboard/internal/config"
)

// Pad is the playback state machine of one configured pad.
//
// Idle: no voices. Playing: at least one voice, not paused. Paused: only in
// ModePause. Layer pads hold any number of voices, the toggle modes at most one.
type Pad struct {
	entry  config.SoundEntry
	sounds []Sound

	voices []Voice
	paused bool
	cursor int

	intn func(n int) int
}

func newPad(entry config.SoundEntry, sounds []Sound) *Pad {
	return &Pad{
		entry:  entry,
		sounds: sounds,
		// First sequential start plays file 0
		cursor: len(sounds) - 1,
		intn:   rand.IntN,
	}
}

// Coord returns the grid position of the pad
func (p *Pad) Coord() Coord {
	return Coord{X: p.entry.X, Y: p.entry.Y}
}

// Label returns the display text of the pad
func (p *Pad) Label() string {
	return p.entry.Text
}

// Mode returns the play mode of the pad
func (p *Pad) Mode() config.PlayMode {
	return p.entry.Mode
}

func (p *Pad) playing() bool {
	return len(p.voices) > 0
}

// Hit applies one key press according to the pad's play mode
func (p *Pad) Hit() {
	switch p.entry.Mode {
	case config.ModeLayer:
		p.start()
	case config.ModePause:
		if p.playing() {
			p.togglePause()
		} else {
			p.start()
		}
	case config.ModeStop:
		if p.playing() {
			p.Stop()
		} else {
			p.start()
		}
	}
}

// Tick advances the pad by one heartbeat. It returns true when the pad's
// visible state changed, which only happens when a layer pad runs out of voices.
func (p *Pad) Tick() bool {
	if !p.playing() {
		return false
	}

	switch p.entry.Mode {
	case config.ModeLayer:
		busy := p.voices[:0]
		for _, v := range p.voices {
			if v.Busy() {
				busy = append(busy, v)
			}
		}
		clear(p.voices[len(busy):])
		p.voices = busy
		return !p.playing()
	case config.ModePause:
		if !p.paused && !p.voices[0].Busy() {
			p.start()
		}
	case config.ModeStop:
		if !p.voices[0].Busy() {
			p.start()
		}
	}
	return false
}

// Stop fades out every voice of the pad, whatever its mode
func (p *Pad) Stop() {
	for _, v := range p.voices {
		v.FadeOut(FadeOut)
	}
	clear(p.voices)
	p.voices = p.voices[:0]
	p.paused = false
}

// SetVolume applies gain to every asset of the pad
func (p *Pad) SetVolume(gain float64) {
	for _, s := range p.sounds {
		s.SetVolume(gain)
	}
}

// State returns a snapshot of the pad
func (p *Pad) State() State {
	return State{
		Playing: p.playing(),
		Paused:  p.paused,
		Mode:    p.entry.Mode,
	}
}

func (p *Pad) start() {
	sound := p.next()
	if p.entry.Mode != config.ModeLayer {
		p.Stop()
	}
	p.voices = append(p.voices, sound.Play())
	p.paused = false
}

// next advances the file cursor and returns the asset to play
func (p *Pad) next() Sound {
	switch p.entry.FileSelect {
	case config.SelectRandom:
		p.cursor = p.intn(len(p.sounds))
	default:
		p.cursor = (p.cursor + 1) % len(p.sounds)
	}
	return p.sounds[p.cursor]
}

func (p *Pad) togglePause() {
	if p.paused {
		for _, v := range p.voices {
			v.Resume()
		}
		p.paused = false
		return
	}
	for _, v := range p.voices {
		v.Pause()
	}
	p.paused = true
}
