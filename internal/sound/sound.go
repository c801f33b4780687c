// Package sound holds the playback side of the soundboard: one state
// machine per configured pad and the manager that routes hits, volume and
// heartbeat ticks to them.
package sound

import (
	"time"

	"github.com/PixPMusic/gopher-soundboard/internal/config"
)

// FadeOut is how long a stopped voice takes to fall silent
const FadeOut = 200 * time.Millisecond

// Sound is one loaded audio asset of a pad
type Sound interface {
	// Play starts a new voice of the asset
	Play() Voice

	// SetVolume sets the gain of the asset, including voices already playing
	SetVolume(gain float64)
}

// Voice is one in-flight playback of a Sound
type Voice interface {
	// Busy is true until the voice has played to the end or faded out
	Busy() bool
	Pause()
	Resume()
	FadeOut(d time.Duration)
}

// Loader turns a file path into a playable asset
type Loader interface {
	Load(path string) (Sound, error)
}

// Coord addresses a pad in the grid
type Coord struct {
	X, Y int
}

// State is a read-only snapshot of a pad, used to drive controller feedback
type State struct {
	Playing bool
	Paused  bool
	Mode    config.PlayMode
}
