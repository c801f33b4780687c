package controller

import "fmt"

// Event is a domain event decoded from controller input
type Event interface {
	fmt.Stringer
	isEvent()
}

// KeyHit is a key press on the pad at (X, Y)
type KeyHit struct {
	X, Y int
}

// MasterStop is a press of the stop-all key
type MasterStop struct{}

// SetVolume is a new value (0-127) of the control bound to column X
type SetVolume struct {
	X     int
	Value uint8
}

// MasterVolume is a new value (0-127) of the master volume control
type MasterVolume struct {
	Value uint8
}

func (KeyHit) isEvent()       {}
func (MasterStop) isEvent()   {}
func (SetVolume) isEvent()    {}
func (MasterVolume) isEvent() {}

func (e KeyHit) String() string       { return fmt.Sprintf("key hit (%d,%d)", e.X, e.Y) }
func (MasterStop) String() string     { return "master stop" }
func (e SetVolume) String() string    { return fmt.Sprintf("volume column %d = %d", e.X, e.Value) }
func (e MasterVolume) String() string { return fmt.Sprintf("master volume = %d", e.Value) }

// Gain converts a 7-bit control value to a gain in [0, 1]
func Gain(value uint8) float64 {
	if value > 127 {
		value = 127
	}
	return float64(value) / 127.0
}
