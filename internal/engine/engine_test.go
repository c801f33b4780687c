package engine

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/PixPMusic/gopher-soundboard/internal/config"
	"github.com/PixPMusic/gopher-soundboard/internal/controller"
	"github.com/PixPMusic/gopher-soundboard/internal/midi"
	"github.com/PixPMusic/gopher-soundboard/internal/sound"
)

type fakeInput struct {
	mu      sync.Mutex
	pending []midi.Message
}

func (f *fakeInput) push(msgs ...midi.Message) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.pending = append(f.pending, msgs...)
}

func (f *fakeInput) Poll() []midi.Message {
	f.mu.Lock()
	defer f.mu.Unlock()
	msgs := f.pending
	f.pending = nil
	return msgs
}

type fakeOutput struct {
	mu   sync.Mutex
	sent []midi.Message
}

func (f *fakeOutput) Send(status, data1, data2 uint8) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, midi.Message{Status: status, Data1: data1, Data2: data2})
	return nil
}

// last returns the most recent feedback sent for key id
func (f *fakeOutput) last(id uint8) (midi.Message, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := len(f.sent) - 1; i >= 0; i-- {
		if f.sent[i].Data1 == id {
			return f.sent[i], true
		}
	}
	return midi.Message{}, false
}

type fakeVoice struct {
	mu     sync.Mutex
	busy   bool
	faded  bool
	paused bool
}

func (v *fakeVoice) Busy() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.busy
}

func (v *fakeVoice) Pause()  { v.mu.Lock(); v.paused = true; v.mu.Unlock() }
func (v *fakeVoice) Resume() { v.mu.Lock(); v.paused = false; v.mu.Unlock() }

func (v *fakeVoice) FadeOut(time.Duration) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.faded = true
	v.busy = false
}

func (v *fakeVoice) finish() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.busy = false
}

type fakeSound struct {
	mu     sync.Mutex
	gain   float64
	voices []*fakeVoice
}

func (s *fakeSound) Play() sound.Voice {
	s.mu.Lock()
	defer s.mu.Unlock()
	v := &fakeVoice{busy: true}
	s.voices = append(s.voices, v)
	return v
}

func (s *fakeSound) SetVolume(gain float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.gain = gain
}

func (s *fakeSound) volume() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.gain
}

func (s *fakeSound) allVoices() []*fakeVoice {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]*fakeVoice(nil), s.voices...)
}

type fakeLoader struct {
	mu     sync.Mutex
	sounds map[string]*fakeSound
}

func (l *fakeLoader) Load(path string) (sound.Sound, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	s := &fakeSound{gain: 1}
	l.sounds[path] = s
	return s, nil
}

func (l *fakeLoader) get(path string) *fakeSound {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.sounds[path]
}

func bank(entries ...config.SoundEntry) *config.SoundConfig {
	return &config.SoundConfig{Sounds: entries}
}

func pad(file string, x, y int, mode config.PlayMode) config.SoundEntry {
	return config.SoundEntry{Text: file, X: x, Y: y, Files: []string{file}, FileSelect: config.SelectSequence, Mode: mode}
}

type harness struct {
	in     *fakeInput
	out    *fakeOutput
	loader *fakeLoader
	engine *Engine
}

func newHarness(cfg *config.SoundConfig) *harness {
	h := &harness{
		in:     &fakeInput{},
		out:    &fakeOutput{},
		loader: &fakeLoader{sounds: make(map[string]*fakeSound)},
	}
	tr := controller.NewTranslator(config.DefaultControllerConfig(), h.in, h.out, nil)
	sounds := sound.NewManager(cfg, h.loader, nil)
	h.engine = New(tr, sounds, Options{PollInterval: 2 * time.Millisecond, HeartbeatInterval: 2 * time.Millisecond}, nil)
	return h
}

// APC mini key id of (x, y)
func keyID(x, y int) uint8 {
	return uint8(x + 8*y)
}

func TestEventsDriveSoundsAndFeedback(t *testing.T) {
	h := newHarness(bank(
		pad("drums.wav", 2, 3, config.ModeStop),
		pad("music.wav", 1, 0, config.ModePause),
	))

	h.engine.handleEvent(controller.KeyHit{X: 2, Y: 3})
	msg, ok := h.out.last(keyID(2, 3))
	require.True(t, ok)
	assert.Equal(t, midi.Message{Status: 0x94, Data1: keyID(2, 3), Data2: 21}, msg)

	h.engine.handleEvent(controller.KeyHit{X: 1, Y: 0})
	h.engine.handleEvent(controller.KeyHit{X: 1, Y: 0})
	msg, _ = h.out.last(keyID(1, 0))
	assert.Equal(t, midi.Message{Status: 0x90, Data1: keyID(1, 0), Data2: 45}, msg)

	h.engine.handleEvent(controller.MasterStop{})
	msg, _ = h.out.last(keyID(2, 3))
	assert.Equal(t, uint8(0), msg.Data2)
	msg, _ = h.out.last(keyID(1, 0))
	assert.Equal(t, uint8(0), msg.Data2)
	assert.True(t, h.loader.get("drums.wav").allVoices()[0].faded)
}

func TestVolumeEvents(t *testing.T) {
	h := newHarness(bank(
		pad("a.wav", 1, 0, config.ModeLayer),
		pad("b.wav", 2, 0, config.ModeLayer),
	))

	h.engine.handleEvent(controller.MasterVolume{Value: 127})
	h.engine.handleEvent(controller.SetVolume{X: 1, Value: 0})
	assert.Equal(t, 0.0, h.loader.get("a.wav").volume())
	assert.Equal(t, 1.0, h.loader.get("b.wav").volume())

	h.engine.handleEvent(controller.SetVolume{X: 7, Value: 10})
	assert.Equal(t, 1.0, h.loader.get("b.wav").volume())
}

func TestRunPollsAndTicks(t *testing.T) {
	h := newHarness(bank(pad("horn.wav", 0, 0, config.ModeLayer)))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- h.engine.Run(ctx) }()

	h.in.push(midi.Message{Status: 0x90, Data1: keyID(0, 0), Data2: 127})
	assert.Eventually(t, func() bool {
		msg, ok := h.out.last(keyID(0, 0))
		return ok && msg.Data2 == 5
	}, time.Second, time.Millisecond)

	for _, v := range h.loader.get("horn.wav").allVoices() {
		v.finish()
	}
	assert.Eventually(t, func() bool {
		msg, ok := h.out.last(keyID(0, 0))
		return ok && msg.Data2 == 0
	}, time.Second, time.Millisecond, "heartbeat notices the finished voice")

	cancel()
	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(time.Second):
		t.Fatal("Run did not return after cancel")
	}
}

func TestRunWithoutTransport(t *testing.T) {
	loader := &fakeLoader{sounds: make(map[string]*fakeSound)}
	tr := controller.NewTranslator(config.DefaultControllerConfig(), nil, nil, nil)
	e := New(tr, sound.NewManager(bank(pad("a.wav", 0, 0, config.ModeStop)), loader, nil), Options{}, nil)

	ctx, cancel := context.WithTimeout(context.Background(), 250*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, e.Run(ctx), context.DeadlineExceeded)
}

func TestReloadAtSafeBoundary(t *testing.T) {
	h := newHarness(bank(
		pad("music.wav", 2, 3, config.ModeStop),
		pad("horn.wav", 0, 0, config.ModeLayer),
	))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go h.engine.Run(ctx)

	h.in.push(midi.Message{Status: 0x90, Data1: keyID(2, 3), Data2: 127})
	assert.Eventually(t, func() bool {
		msg, ok := h.out.last(keyID(2, 3))
		return ok && msg.Data2 == 21
	}, time.Second, time.Millisecond)
	music := h.loader.get("music.wav")

	h.engine.RequestReload(bank(
		pad("horn.wav", 0, 0, config.ModeLayer),
		pad("bell.wav", 5, 5, config.ModeStop),
	))

	assert.Eventually(t, func() bool {
		msg, ok := h.out.last(keyID(2, 3))
		return ok && msg.Data2 == 0 && h.loader.get("bell.wav") != nil
	}, time.Second, time.Millisecond, "removed pad is cleared on the controller")
	assert.True(t, music.allVoices()[0].faded, "removed pad faded out")

	h.in.push(midi.Message{Status: 0x90, Data1: keyID(5, 5), Data2: 127})
	assert.Eventually(t, func() bool {
		msg, ok := h.out.last(keyID(5, 5))
		return ok && msg.Data2 == 21
	}, time.Second, time.Millisecond)
}

func TestRequestReloadKeepsLatest(t *testing.T) {
	h := newHarness(bank())

	first := bank(pad("a.wav", 0, 0, config.ModeLayer))
	second := bank(pad("b.wav", 1, 0, config.ModeLayer))
	h.engine.RequestReload(first)
	h.engine.RequestReload(second)

	require.Len(t, h.engine.reloads, 1)
	assert.Same(t, second, <-h.engine.reloads)
}

func TestRequestStop(t *testing.T) {
	h := newHarness(bank(pad("drums.wav", 0, 0, config.ModeStop)))
	h.engine.handleEvent(controller.KeyHit{X: 0, Y: 0})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go h.engine.Run(ctx)

	h.engine.RequestStop()
	h.engine.RequestStop()
	assert.Eventually(t, func() bool {
		return h.loader.get("drums.wav").allVoices()[0].faded
	}, time.Second, time.Millisecond)
}

func TestWatchBankReloadsOnWrite(t *testing.T) {
	settleDelay = 10 * time.Millisecond
	dir := t.TempDir()
	path := filepath.Join(dir, "bank.yaml")
	require.NoError(t, os.WriteFile(path, []byte("sounds: []\n"), 0644))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	changes := make(chan *config.SoundConfig, 4)
	go WatchBank(ctx, path, nil, func(cfg *config.SoundConfig) { changes <- cfg })
	// Give the watcher time to register
	time.Sleep(100 * time.Millisecond)

	require.NoError(t, os.WriteFile(path, []byte("sounds:\n  - {text: broken, x: 0, y: 0, files: []}\n"), 0644))
	select {
	case <-changes:
		t.Fatal("invalid bank must not be delivered")
	case <-time.After(200 * time.Millisecond):
	}

	require.NoError(t, os.WriteFile(path, []byte("sounds:\n  - {text: horn, x: 1, y: 2, files: [horn.wav]}\n"), 0644))
	select {
	case cfg := <-changes:
		require.Len(t, cfg.Sounds, 1)
		assert.Equal(t, "horn", cfg.Sounds[0].Text)
		assert.Equal(t, config.ModeLayer, cfg.Sounds[0].Mode)
	case <-time.After(2 * time.Second):
		t.Fatal("bank change not delivered")
	}
}
