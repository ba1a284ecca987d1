package testsupport

import (
	"errors"
	"sync"
)

// FakePlayer is a scriptable playback primitive. Each actuation surface can
// be failed independently so actuator fallback order is observable.
type FakePlayer struct {
	mu       sync.Mutex
	paused   bool
	current  float64
	duration float64

	failHandle    bool
	ignoreHandle  bool
	failFlag      bool
	failMedia     bool
	failSynthetic bool

	handleCalls    int
	mediaCalls     int
	syntheticCalls int
}

// NewFakePlayer returns a playing fake player with the given duration.
func NewFakePlayer(duration float64) *FakePlayer {
	return &FakePlayer{duration: duration}
}

func (p *FakePlayer) Play() error  { return p.handle(false) }
func (p *FakePlayer) Pause() error { return p.handle(true) }

func (p *FakePlayer) handle(paused bool) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.handleCalls++
	if p.failHandle {
		return errors.New("player handle unavailable")
	}
	if p.ignoreHandle {
		return nil
	}
	p.paused = paused
	return nil
}

func (p *FakePlayer) Paused() (bool, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.failFlag {
		return false, errors.New("playback flag unreadable")
	}
	return p.paused, nil
}

func (p *FakePlayer) CurrentTime() (float64, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.current, nil
}

func (p *FakePlayer) Duration() (float64, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.duration, nil
}

func (p *FakePlayer) SetMediaPaused(paused bool) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.mediaCalls++
	if p.failMedia {
		return errors.New("media primitive unavailable")
	}
	p.paused = paused
	return nil
}

func (p *FakePlayer) PressPlayPause() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.syntheticCalls++
	if p.failSynthetic {
		return errors.New("synthetic input rejected")
	}
	p.paused = !p.paused
	return nil
}

// SetPaused scripts the underlying state directly, bypassing call counters.
func (p *FakePlayer) SetPaused(paused bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.paused = paused
}

// SetCurrentTime scripts the playhead position.
func (p *FakePlayer) SetCurrentTime(seconds float64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.current = seconds
}

// FailHandle makes Play/Pause return errors.
func (p *FakePlayer) FailHandle(fail bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.failHandle = fail
}

// IgnoreHandle makes Play/Pause succeed without changing state, simulating a
// player whose handle silently drops commands.
func (p *FakePlayer) IgnoreHandle(ignore bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.ignoreHandle = ignore
}

// FailFlag makes Paused return errors.
func (p *FakePlayer) FailFlag(fail bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.failFlag = fail
}

// FailMedia makes SetMediaPaused return errors.
func (p *FakePlayer) FailMedia(fail bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.failMedia = fail
}

// FailSynthetic makes PressPlayPause return errors.
func (p *FakePlayer) FailSynthetic(fail bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.failSynthetic = fail
}

// FailEverything fails all four actuation surfaces at once.
func (p *FakePlayer) FailEverything() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.failHandle = true
	p.failFlag = true
	p.failMedia = true
	p.failSynthetic = true
}

// Calls reports how many times each actuation surface was touched.
func (p *FakePlayer) Calls() (handle, media, synthetic int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.handleCalls, p.mediaCalls, p.syntheticCalls
}

// HandleOnlyPlayer narrows a FakePlayer to the bare Player contract so
// capability assertions for the media and synthetic-input strategies fail.
type HandleOnlyPlayer struct {
	inner *FakePlayer
}

// NewHandleOnlyPlayer wraps a fake player, hiding its optional capabilities.
func NewHandleOnlyPlayer(p *FakePlayer) HandleOnlyPlayer {
	return HandleOnlyPlayer{inner: p}
}

func (p HandleOnlyPlayer) Play() error                  { return p.inner.Play() }
func (p HandleOnlyPlayer) Pause() error                 { return p.inner.Pause() }
func (p HandleOnlyPlayer) Paused() (bool, error)        { return p.inner.Paused() }
func (p HandleOnlyPlayer) CurrentTime() (float64, error) { return p.inner.CurrentTime() }
func (p HandleOnlyPlayer) Duration() (float64, error)   { return p.inner.Duration() }
