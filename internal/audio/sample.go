package audio

import (
	"math"
	"sync"
	"sync/atomic"
	"time"

	"github.com/faiface/beep"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/PixPMusic/gopher-soundboard/internal/sound"
)

// Sample is a decoded file held in memory. Its gain is shared by all of its
// voices and read on every mixer pass.
type Sample struct {
	player *Player
	name   string
	buf    *beep.Buffer
	gain   atomic.Uint64 // math.Float64bits
}

func newSample(p *Player, name string, buf *beep.Buffer) *Sample {
	s := &Sample{player: p, name: name, buf: buf}
	s.SetVolume(1.0)
	return s
}

// SetVolume sets the linear gain, clamped to [0, 1]
func (s *Sample) SetVolume(gain float64) {
	gain = max(0, min(1, gain))
	s.gain.Store(math.Float64bits(gain))
}

// Volume returns the current linear gain
func (s *Sample) Volume() float64 {
	return math.Float64frombits(s.gain.Load())
}

// Play starts a new voice from the beginning of the sample
func (s *Sample) Play() sound.Voice {
	v := newVoice(s, s.buf.Streamer(0, s.buf.Len()), s.player.rate, s.player.lock)
	s.player.log.Debug("voice started", zap.String("sample", s.name), zap.String("voice", v.id))
	s.player.play(v)
	return v
}

// voice is one playback of a Sample as a beep.Streamer. Pause state and
// fade progress are written under the speaker lock.
type voice struct {
	id     string
	sample *Sample
	rate   beep.SampleRate
	lock   sync.Locker

	ctrl      *beep.Ctrl
	fadeTotal int
	fadeLeft  int

	done atomic.Bool
}

func newVoice(s *Sample, src beep.Streamer, rate beep.SampleRate, lock sync.Locker) *voice {
	return &voice{
		id:     uuid.New().String(),
		sample: s,
		rate:   rate,
		lock:   lock,
		ctrl:   &beep.Ctrl{Streamer: src},
	}
}

func (v *voice) Stream(samples [][2]float64) (n int, ok bool) {
	if v.done.Load() {
		return 0, false
	}

	n, ok = v.ctrl.Stream(samples)
	gain := v.sample.Volume()
	for i := 0; i < n; i++ {
		g := gain
		if v.fadeTotal > 0 {
			if v.fadeLeft <= 0 {
				v.done.Store(true)
				return i, i > 0
			}
			g *= float64(v.fadeLeft) / float64(v.fadeTotal)
			v.fadeLeft--
		}
		samples[i][0] *= g
		samples[i][1] *= g
	}
	if !ok {
		v.done.Store(true)
	}
	return n, ok
}

func (v *voice) Err() error {
	return v.ctrl.Err()
}

// Busy reports whether the voice is still audible or waiting to resume
func (v *voice) Busy() bool {
	return !v.done.Load()
}

func (v *voice) Pause() {
	v.lock.Lock()
	v.ctrl.Paused = true
	v.lock.Unlock()
}

func (v *voice) Resume() {
	v.lock.Lock()
	v.ctrl.Paused = false
	v.lock.Unlock()
}

// FadeOut ramps the voice down to silence over d and then ends it
func (v *voice) FadeOut(d time.Duration) {
	v.lock.Lock()
	defer v.lock.Unlock()

	if v.fadeTotal > 0 || v.done.Load() {
		return
	}
	v.fadeTotal = v.rate.N(d)
	v.fadeLeft = v.fadeTotal
	if v.fadeTotal <= 0 {
		v.done.Store(true)
	}
}
