// Package engine runs the soundboard: it polls the controller, ticks the
// pads and keeps the controller LEDs in sync with playback.
package engine

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/PixPMusic/gopher-soundboard/internal/config"
	"github.com/PixPMusic/gopher-soundboard/internal/controller"
	"github.com/PixPMusic/gopher-soundboard/internal/sound"
)

// Options sets the cadence of the two periodic tasks
type Options struct {
	PollInterval      time.Duration
	HeartbeatInterval time.Duration
}

// Engine connects a controller translator to a sound manager.
//
// All pad and volume state is owned by the goroutine running Run. The poll
// task and the heartbeat task are scheduled from that goroutine and each
// runs to completion before the next one starts, so the state needs no
// locks. Other goroutines talk to the engine only through the Request
// methods, which are applied between task runs.
type Engine struct {
	log        *zap.Logger
	translator *controller.Translator
	sounds     *sound.Manager
	opts       Options

	reloads chan *config.SoundConfig
	stops   chan struct{}
}

// New wires translator events into sounds and sound changes back into
// controller feedback.
func New(translator *controller.Translator, sounds *sound.Manager, opts Options, log *zap.Logger) *Engine {
	if log == nil {
		log = zap.NewNop()
	}
	if opts.PollInterval <= 0 {
		opts.PollInterval = config.DefaultInterval
	}
	if opts.HeartbeatInterval <= 0 {
		opts.HeartbeatInterval = config.DefaultInterval
	}

	e := &Engine{
		log:        log,
		translator: translator,
		sounds:     sounds,
		opts:       opts,
		reloads:    make(chan *config.SoundConfig, 1),
		stops:      make(chan struct{}, 1),
	}
	translator.SetEventHandler(e.handleEvent)
	sounds.SetChangeHandler(e.handleChange)
	return e
}

// Run schedules the poll and heartbeat tasks until ctx is done
func (e *Engine) Run(ctx context.Context) error {
	poll := time.NewTicker(e.opts.PollInterval)
	defer poll.Stop()
	heartbeat := time.NewTicker(e.opts.HeartbeatInterval)
	defer heartbeat.Stop()

	e.syncFeedback()
	e.log.Info("engine running",
		zap.Duration("poll", e.opts.PollInterval),
		zap.Duration("heartbeat", e.opts.HeartbeatInterval),
	)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-poll.C:
			e.translator.Poll()
		case <-heartbeat.C:
			e.sounds.Tick()
		case cfg := <-e.reloads:
			e.reload(cfg)
		case <-e.stops:
			e.sounds.Stop()
		}
	}
}

// RequestReload schedules a sound bank reload. Only the most recent
// pending request is kept. Safe to call from any goroutine.
func (e *Engine) RequestReload(cfg *config.SoundConfig) {
	for {
		select {
		case e.reloads <- cfg:
			return
		default:
		}
		select {
		case <-e.reloads:
		default:
		}
	}
}

// RequestStop schedules a stop of every pad. Safe to call from any goroutine.
func (e *Engine) RequestStop() {
	select {
	case e.stops <- struct{}{}:
	default:
	}
}

func (e *Engine) handleEvent(ev controller.Event) {
	switch ev := ev.(type) {
	case controller.KeyHit:
		e.sounds.HitNote(ev.X, ev.Y)
	case controller.MasterStop:
		e.sounds.Stop()
	case controller.SetVolume:
		e.sounds.SetVolume(ev.X, controller.Gain(ev.Value))
	case controller.MasterVolume:
		e.sounds.SetMasterVolume(controller.Gain(ev.Value))
	}
}

func (e *Engine) handleChange(p *sound.Pad) {
	xy := p.Coord()
	e.translator.SetState(xy.X, xy.Y, p.State())
}

func (e *Engine) reload(cfg *config.SoundConfig) {
	before := e.sounds.Snapshot()
	e.sounds.Reload(cfg)
	after := e.sounds.Snapshot()

	for xy := range before {
		if _, ok := after[xy]; !ok {
			e.translator.Clear(xy.X, xy.Y)
		}
	}
	e.syncFeedback()
	e.log.Info("sound bank reloaded", zap.Int("pads", len(after)))
}

// syncFeedback sends the current state of every pad to the controller
func (e *Engine) syncFeedback() {
	for _, p := range e.sounds.Pads() {
		e.handleChange(p)
	}
}
