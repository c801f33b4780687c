package midi

import (
	"fmt"
	"sync"

	"gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/drivers"
	"go.uber.org/zap"
)

// inputBuffer bounds how many messages may queue between two polls
const inputBuffer = 300

// Port is an opened controller connection. Either direction may be absent
// when the port could not be opened; the Port is still usable and simply
// reports nothing / discards writes in that direction.
type Port struct {
	log *zap.Logger

	in     drivers.In
	out    drivers.Out
	send   func(midi.Message) error
	stop   func()
	events chan Message

	closeOnce sync.Once
}

// Open connects to the named input and output ports. Failures are logged
// and leave that direction unavailable; Open itself never fails.
func (m *Manager) Open(inName, outName string, log *zap.Logger) *Port {
	if log == nil {
		log = zap.NewNop()
	}
	p := &Port{
		log:    log,
		events: make(chan Message, inputBuffer),
	}

	if err := p.openInput(m, inName); err != nil {
		log.Warn("MIDI input unavailable", zap.String("port", inName), zap.Error(err))
	}
	if err := p.openOutput(m, outName); err != nil {
		log.Warn("MIDI output unavailable", zap.String("port", outName), zap.Error(err))
	}
	return p
}

func (p *Port) openInput(m *Manager, name string) error {
	if name == "" {
		return fmt.Errorf("no input port configured")
	}
	in, err := m.GetInPort(name)
	if err != nil {
		return err
	}

	stop, err := midi.ListenTo(in, func(msg midi.Message, timestampms int32) {
		raw, ok := FromBytes(msg.Bytes())
		if !ok {
			return
		}
		select {
		case p.events <- raw:
		default:
			// Poller fell behind, drop
		}
	})
	if err != nil {
		return fmt.Errorf("failed to start listening: %w", err)
	}

	p.in = in
	p.stop = stop
	return nil
}

func (p *Port) openOutput(m *Manager, name string) error {
	if name == "" {
		return fmt.Errorf("no output port configured")
	}
	out, err := m.GetOutPort(name)
	if err != nil {
		return err
	}

	send, err := midi.SendTo(out)
	if err != nil {
		return fmt.Errorf("failed to create sender: %w", err)
	}

	p.out = out
	p.send = send
	return nil
}

// Available reports which directions of the port are open
func (p *Port) Available() (input, output bool) {
	return p.stop != nil, p.send != nil
}

// Poll returns every message received since the previous call without blocking
func (p *Port) Poll() []Message {
	var msgs []Message
	for {
		select {
		case msg := <-p.events:
			msgs = append(msgs, msg)
		default:
			return msgs
		}
	}
}

// Send writes a raw 3-byte message to the output port
func (p *Port) Send(status, data1, data2 uint8) error {
	if p.send == nil {
		return fmt.Errorf("output port not open")
	}
	return p.send(midi.Message{status, data1, data2})
}

// Close stops listening and closes both directions. Safe to call twice.
func (p *Port) Close() error {
	var err error
	p.closeOnce.Do(func() {
		if p.stop != nil {
			p.stop()
		}
		if p.in != nil {
			if cerr := p.in.Close(); cerr != nil {
				err = fmt.Errorf("close input: %w", cerr)
			}
		}
		if p.out != nil {
			if cerr := p.out.Close(); cerr != nil && err == nil {
				err = fmt.Errorf("close output: %w", cerr)
			}
		}
	})
	return err
}
