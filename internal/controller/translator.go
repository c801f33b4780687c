// Package controller translates raw controller messages into domain events
// and pad states back into LED feedback.
package controller

import (
	"github.com/PixPMusic/gopher-soundboard/internal/config"
	"github.com/PixPMusic/gopher-soundboard/internal/midi"
	"github.com/PixPMusic/gopher-soundboard/internal/sound"
	"go.uber.org/zap"
)

// Feedback command bytes
const (
	CommandPaused  uint8 = 0x90
	CommandPlaying uint8 = 0x94
)

// Feedback colors per play mode
const (
	ColorOff   uint8 = 0
	ColorLayer uint8 = 5  // red
	ColorPause uint8 = 45 // blue
	ColorStop  uint8 = 21 // green
)

var modeColors = map[config.PlayMode]uint8{
	config.ModeLayer: ColorLayer,
	config.ModePause: ColorPause,
	config.ModeStop:  ColorStop,
}

// Input is the receiving side of the controller transport
type Input interface {
	Poll() []midi.Message
}

// Output is the sending side of the controller transport
type Output interface {
	Send(status, data1, data2 uint8) error
}

// EventHandler receives decoded events
type EventHandler func(Event)

// Translator decodes controller input and encodes pad feedback. Input and
// output are optional; a nil one disables that direction.
type Translator struct {
	log     *zap.Logger
	mapping *Mapping
	in      Input
	out     Output
	handler EventHandler
}

// NewTranslator creates a translator for the given controller config.
// in and out may be nil when the transport could not be opened.
func NewTranslator(cfg *config.ControllerConfig, in Input, out Output, log *zap.Logger) *Translator {
	if log == nil {
		log = zap.NewNop()
	}
	return &Translator{
		log:     log,
		mapping: NewMapping(cfg),
		in:      in,
		out:     out,
	}
}

// Available reports which transport directions are usable
func (t *Translator) Available() (input, output bool) {
	return t.in != nil, t.out != nil
}

// Mapping returns the id lookup tables
func (t *Translator) Mapping() *Mapping {
	return t.mapping
}

// SetEventHandler registers the single event handler, replacing any previous one
func (t *Translator) SetEventHandler(handler EventHandler) {
	t.handler = handler
}

// Poll reads every pending message and dispatches the decoded events.
// Without an input it does nothing.
func (t *Translator) Poll() {
	if t.in == nil {
		return
	}
	for _, msg := range t.in.Poll() {
		ev, ok := t.Decode(msg)
		if !ok || t.handler == nil {
			continue
		}
		t.log.Debug("event", zap.Stringer("event", ev))
		t.handler(ev)
	}
}

// Decode turns a raw message into a domain event. Unmapped ids, key
// releases and other message kinds yield ok == false.
func (t *Translator) Decode(msg midi.Message) (Event, bool) {
	switch msg.Kind() {
	case midi.KindNoteOn:
		if t.mapping.IsMasterStop(msg.Data1) {
			return MasterStop{}, true
		}
		if xy, ok := t.mapping.Key(msg.Data1); ok {
			return KeyHit{X: xy.X, Y: xy.Y}, true
		}
	case midi.KindNoteOff:
		// Key release has no meaning yet
	case midi.KindControlChange:
		if t.mapping.IsMasterChannel(msg.Data1) {
			return MasterVolume{Value: msg.Data2}, true
		}
		if x, ok := t.mapping.Channel(msg.Data1); ok {
			return SetVolume{X: x, Value: msg.Data2}, true
		}
	}
	return nil, false
}

// Encode returns the feedback message for a pad state at (x, y).
// ok is false when the position has no key.
func (t *Translator) Encode(x, y int, state sound.State) (msg midi.Message, ok bool) {
	id, ok := t.mapping.KeyID(x, y)
	if !ok {
		return midi.Message{}, false
	}

	color := modeColors[state.Mode]
	if !state.Playing {
		color = ColorOff
	}
	cmd := CommandPlaying
	if state.Paused {
		cmd = CommandPaused
	}
	return midi.Message{Status: cmd, Data1: id, Data2: color}, true
}

// SetState lights the key at (x, y) to reflect state. Best effort: unmapped
// positions, a missing output and send errors are all swallowed.
func (t *Translator) SetState(x, y int, state sound.State) {
	if t.out == nil {
		return
	}
	msg, ok := t.Encode(x, y, state)
	if !ok {
		return
	}
	if err := t.out.Send(msg.Status, msg.Data1, msg.Data2); err != nil {
		t.log.Debug("feedback send failed", zap.Int("x", x), zap.Int("y", y), zap.Error(err))
	}
}

// Clear turns off the key at (x, y)
func (t *Translator) Clear(x, y int) {
	t.SetState(x, y, sound.State{})
}
