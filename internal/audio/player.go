// Package audio plays sound bank samples through the system speaker using beep.
package audio

import (
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/faiface/beep"
	"github.com/faiface/beep/mp3"
	"github.com/faiface/beep/speaker"
	"github.com/faiface/beep/wav"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/PixPMusic/gopher-soundboard/internal/sound"
)

const (
	// SampleRate is the mixer rate every sample is resampled to
	SampleRate beep.SampleRate = 44100

	resampleQuality = 4
)

// Player owns the speaker and loads samples for it
type Player struct {
	log  *zap.Logger
	rate beep.SampleRate

	lock  sync.Locker
	play  func(s ...beep.Streamer)
	close func()
}

// NewPlayer initialises the speaker with a 100ms buffer
func NewPlayer(log *zap.Logger) (*Player, error) {
	if log == nil {
		log = zap.NewNop()
	}
	if err := speaker.Init(SampleRate, SampleRate.N(time.Second/10)); err != nil {
		return nil, errors.Wrap(err, "init speaker")
	}
	return &Player{
		log:   log,
		rate:  SampleRate,
		lock:  speakerLock{},
		play:  speaker.Play,
		close: speaker.Close,
	}, nil
}

// Close stops every voice and releases the audio device
func (p *Player) Close() {
	if p.close != nil {
		p.close()
	}
}

// Load decodes a wav or mp3 file into memory, resampled to the mixer rate
func (p *Player) Load(path string) (sound.Sound, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "open %s", path)
	}

	streamer, format, err := decode(f, path)
	if err != nil {
		f.Close()
		return nil, err
	}
	defer streamer.Close()

	var s beep.Streamer = streamer
	if format.SampleRate != p.rate {
		s = beep.Resample(resampleQuality, format.SampleRate, p.rate, streamer)
	}

	buf := beep.NewBuffer(beep.Format{SampleRate: p.rate, NumChannels: 2, Precision: 2})
	buf.Append(s)
	if err := streamer.Err(); err != nil {
		return nil, errors.Wrapf(err, "decode %s", path)
	}
	if buf.Len() == 0 {
		return nil, errors.Errorf("%s contains no audio", path)
	}

	p.log.Debug("sample loaded",
		zap.String("file", path),
		zap.Duration("length", p.rate.D(buf.Len())),
		zap.Int("source_rate", int(format.SampleRate)),
	)
	return newSample(p, filepath.Base(path), buf), nil
}

func decode(f *os.File, path string) (beep.StreamSeekCloser, beep.Format, error) {
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".wav":
		s, format, err := wav.Decode(f)
		return s, format, errors.Wrapf(err, "decode %s", path)
	case ".mp3":
		s, format, err := mp3.Decode(f)
		return s, format, errors.Wrapf(err, "decode %s", path)
	default:
		return nil, beep.Format{}, errors.Errorf("unsupported audio format %q", ext)
	}
}

// speakerLock guards state read by the speaker's mixing goroutine
type speakerLock struct{}

func (speakerLock) Lock()   { speaker.Lock() }
func (speakerLock) Unlock() { speaker.Unlock() }
