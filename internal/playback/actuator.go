package playback

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"tutorsync/internal/config"
	"tutorsync/internal/logging"
)

// Actuator performs multi-method verified pause and play actuation and owns
// the cached playback Snapshot.
type Actuator struct {
	player Player
	logger *slog.Logger

	pollCount      int
	pollInterval   time.Duration
	mediaFallback  bool
	syntheticInput bool
	sleep          func(context.Context, time.Duration) error

	mu       sync.RWMutex
	snapshot Snapshot
}

// Option customizes the actuator.
type Option func(*Actuator)

// WithSleeper overrides how verification waits are performed (useful for tests).
func WithSleeper(sleep func(context.Context, time.Duration) error) Option {
	return func(a *Actuator) {
		if sleep != nil {
			a.sleep = sleep
		}
	}
}

// New constructs an actuator for the supplied player.
func New(player Player, cfg config.Actuation, logger *slog.Logger, opts ...Option) *Actuator {
	a := &Actuator{
		player:         player,
		logger:         logging.NewComponentLogger(logger, "actuator"),
		pollCount:      cfg.VerifyPollCount,
		pollInterval:   time.Duration(cfg.VerifyPollIntervalMS) * time.Millisecond,
		mediaFallback:  cfg.MediaFallback,
		syntheticInput: cfg.SyntheticInput,
		sleep:          sleepCtx,
	}
	if a.pollCount <= 0 {
		a.pollCount = 10
	}
	if a.pollInterval <= 0 {
		a.pollInterval = 20 * time.Millisecond
	}
	for _, opt := range opts {
		opt(a)
	}
	a.Refresh()
	return a
}

// strategy is one statically declared actuation method. The ordered list
// below is tried in sequence until one attempt verifies.
type strategy struct {
	name    string
	enabled func(*Actuator) bool
	apply   func(*Actuator, bool) error
}

var strategies = []strategy{
	{
		name:    "player_handle",
		enabled: func(*Actuator) bool { return true },
		apply:   (*Actuator).applyDirect,
	},
	{
		name:    "flag_reassert",
		enabled: func(*Actuator) bool { return true },
		apply:   (*Actuator).applyReassert,
	},
	{
		name: "media_primitive",
		enabled: func(a *Actuator) bool {
			_, ok := a.player.(MediaController)
			return ok && a.mediaFallback
		},
		apply: (*Actuator).applyMedia,
	},
	{
		name: "synthetic_input",
		enabled: func(a *Actuator) bool {
			_, ok := a.player.(InputSynthesizer)
			return ok && a.syntheticInput
		},
		apply: (*Actuator).applySyntheticInput,
	},
}

// Pause drives the player into a paused state, confirmed by agreement of the
// player-reported flag with the issued command. Returns an ActuationError
// when no strategy could be verified; callers fail open.
func (a *Actuator) Pause(ctx context.Context) error {
	return a.actuate(ctx, "pause", true)
}

// Play is the symmetric contract: verified resume.
func (a *Actuator) Play(ctx context.Context) error {
	return a.actuate(ctx, "play", false)
}

// IsPaused reads the cached snapshot.
func (a *Actuator) IsPaused() bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return !a.snapshot.Playing
}

// CurrentTime reads the cached snapshot.
func (a *Actuator) CurrentTime() float64 {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.snapshot.CurrentTime
}

// Snapshot returns the cached playback snapshot.
func (a *Actuator) Snapshot() Snapshot {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.snapshot
}

// Refresh re-reads the player into the cached snapshot. Used at session start
// and when the UI reports a state change this system did not command (e.g. a
// manual pause on the player controls). Read failures keep the cached values.
func (a *Actuator) Refresh() Snapshot {
	a.mu.Lock()
	defer a.mu.Unlock()
	if paused, err := a.player.Paused(); err == nil {
		a.snapshot.Playing = !paused
	}
	if current, err := a.player.CurrentTime(); err == nil {
		a.snapshot.CurrentTime = current
	}
	if duration, err := a.player.Duration(); err == nil {
		a.snapshot.Duration = duration
	}
	return a.snapshot
}

func (a *Actuator) actuate(ctx context.Context, op string, wantPaused bool) error {
	tried := make([]string, 0, len(strategies))
	var lastErr error

	for _, s := range strategies {
		if !s.enabled(a) {
			continue
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		tried = append(tried, s.name)

		if err := s.apply(a, wantPaused); err != nil {
			lastErr = err
			a.logger.Debug("actuation attempt failed",
				logging.String("strategy", s.name),
				logging.String("op", op),
				logging.Error(err),
			)
			continue
		}
		if a.verify(ctx, wantPaused) {
			a.Refresh()
			a.logger.Debug("actuation verified",
				logging.String("strategy", s.name),
				logging.String("op", op),
			)
			return nil
		}
		a.logger.Debug("actuation attempt unverified",
			logging.String("strategy", s.name),
			logging.String("op", op),
		)
	}

	err := &ActuationError{Op: op, Tried: tried, Cause: lastErr}
	a.logger.Warn("actuation exhausted all strategies",
		logging.String("op", op),
		logging.String(logging.FieldEventType, "actuation_failed"),
		logging.Error(err),
	)
	return err
}

// verify polls the canonical playback flag for agreement with the expected
// outcome of the command just issued. Bounded: pollCount polls with
// pollInterval between them.
func (a *Actuator) verify(ctx context.Context, wantPaused bool) bool {
	for i := 0; i < a.pollCount; i++ {
		if paused, err := a.player.Paused(); err == nil && paused == wantPaused {
			return true
		}
		if err := a.sleep(ctx, a.pollInterval); err != nil {
			return false
		}
	}
	return false
}

func (a *Actuator) applyDirect(wantPaused bool) error {
	if wantPaused {
		return a.player.Pause()
	}
	return a.player.Play()
}

// applyReassert consults the canonical flag source first and only reissues
// the command when the flag disagrees with the target state.
func (a *Actuator) applyReassert(wantPaused bool) error {
	paused, err := a.player.Paused()
	if err != nil {
		return err
	}
	if paused == wantPaused {
		return nil
	}
	return a.applyDirect(wantPaused)
}

func (a *Actuator) applyMedia(wantPaused bool) error {
	return a.player.(MediaController).SetMediaPaused(wantPaused)
}

func (a *Actuator) applySyntheticInput(wantPaused bool) error {
	paused, err := a.player.Paused()
	if err == nil && paused == wantPaused {
		return nil
	}
	return a.player.(InputSynthesizer).PressPlayPause()
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
