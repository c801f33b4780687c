package sound

import (
	"fmt"
	"time"
)

type fakeVoice struct {
	busy   bool
	paused bool
	faded  time.Duration
}

func (v *fakeVoice) Busy() bool { return v.busy }
func (v *fakeVoice) Pause()     { v.paused = true }
func (v *fakeVoice) Resume()    { v.paused = false }

func (v *fakeVoice) FadeOut(d time.Duration) {
	v.faded = d
	v.busy = false
}

type fakeSound struct {
	path   string
	gain   float64
	voices []*fakeVoice
}

func (s *fakeSound) Play() Voice {
	v := &fakeVoice{busy: true}
	s.voices = append(s.voices, v)
	return v
}

func (s *fakeSound) SetVolume(gain float64) { s.gain = gain }

// finish ends every voice of the sound as if it had played to the end
func (s *fakeSound) finish() {
	for _, v := range s.voices {
		v.busy = false
	}
}

type fakeLoader struct {
	sounds map[string]*fakeSound
	broken map[string]bool
}

func newFakeLoader() *fakeLoader {
	return &fakeLoader{sounds: make(map[string]*fakeSound), broken: make(map[string]bool)}
}

func (l *fakeLoader) Load(path string) (Sound, error) {
	if l.broken[path] {
		return nil, fmt.Errorf("cannot decode %s", path)
	}
	s := &fakeSound{path: path, gain: 1.0}
	l.sounds[path] = s
	return s, nil
}
