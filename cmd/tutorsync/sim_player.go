package main

import (
	"errors"
	"sync"
)

// simPlayer is the playback primitive used by the simulate command. All four
// actuation surfaces are present; the script can disable them individually to
// demonstrate the actuator's fallback and fail-open behavior.
type simPlayer struct {
	mu       sync.Mutex
	paused   bool
	current  float64
	duration float64

	failHandle    bool
	failMedia     bool
	failSynthetic bool
}

func newSimPlayer(duration float64) *simPlayer {
	return &simPlayer{duration: duration}
}

func (p *simPlayer) Play() error  { return p.setPaused(false) }
func (p *simPlayer) Pause() error { return p.setPaused(true) }

func (p *simPlayer) setPaused(paused bool) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.failHandle {
		return errors.New("player handle disabled by script")
	}
	p.paused = paused
	return nil
}

func (p *simPlayer) Paused() (bool, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.paused, nil
}

func (p *simPlayer) CurrentTime() (float64, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.current, nil
}

func (p *simPlayer) Duration() (float64, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.duration, nil
}

func (p *simPlayer) SetMediaPaused(paused bool) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.failMedia {
		return errors.New("media primitive disabled by script")
	}
	p.paused = paused
	return nil
}

func (p *simPlayer) PressPlayPause() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.failSynthetic {
		return errors.New("synthetic input disabled by script")
	}
	p.paused = !p.paused
	return nil
}

func (p *simPlayer) seek(seconds float64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.current = seconds
}

func (p *simPlayer) scriptPause(seconds float64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.paused = true
	p.current = seconds
}

func (p *simPlayer) disable(surface string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	switch surface {
	case "handle":
		p.failHandle = true
	case "media":
		p.failMedia = true
	case "synthetic":
		p.failSynthetic = true
	case "all":
		p.failHandle = true
		p.failMedia = true
		p.failSynthetic = true
	default:
		return false
	}
	return true
}
