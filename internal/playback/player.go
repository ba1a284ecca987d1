package playback

// Player is the external playback primitive the actuator drives. Concrete
// implementations live outside this module (a browser video element bridge,
// a test fake); the actuator only relies on this contract.
type Player interface {
	Play() error
	Pause() error
	// Paused reads the canonical playback flag.
	Paused() (bool, error)
	CurrentTime() (float64, error)
	Duration() (float64, error)
}

/// MediaController is an optional capability: direct manipulation of the
// underlying media primitive, bypassing the player handle.
type MediaController interface {
	SetMediaPaused(paused bool) error
}

/// InputSynthesizer is an optional capability: a synthesized user input
// (e.g. a key press) toggling playback, used as the last-resort strategy.
type InputSynthesizer interface {
	PressPlayPause() error
}

// Snapshot is the cached view of player state. It is owned by the Actuator
// and refreshed after each verified actuation; every other component reads
// this copy instead of touching the player.
type Snapshot struct {
	Playing     bool
	CurrentTime float64
	Duration    float64
}
