package command

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"tutorsync/internal/config"
	"tutorsync/internal/logging"
)

// Handler executes one command. Returning an error triggers the retry path;
// a nil return marks the command done.
type Handler func(ctx context.Context, cmd *Command) error

// DeadLetterHook observes commands that exhausted their retry budget.
type DeadLetterHook func(cmd *Command, err error)

// Queue drains commands strictly one at a time. Enqueue never blocks on
// execution; a single drain goroutine is active at most (re-entrancy guard),
// and a stabilization delay separates consecutive executions so dependent
// observers settle before the next command is evaluated.
type Queue struct {
	handler Handler
	logger  *slog.Logger

	maxAttempts   int
	baseDelay     time.Duration
	maxDelay      time.Duration
	stabilization time.Duration

	sleep func(context.Context, time.Duration) error

	ctx    context.Context
	cancel context.CancelFunc

	mu           sync.Mutex
	items        []*Command
	draining     bool
	closed       bool
	idleCh       chan struct{}
	deadLettered []*Command
	onDeadLetter DeadLetterHook
}

// Option customizes queue behavior.
type Option func(*Queue)

// WithSleeper overrides how back-off and stabilization waits are performed.
func WithSleeper(sleep func(context.Context, time.Duration) error) Option {
	return func(q *Queue) {
		if sleep != nil {
			q.sleep = sleep
		}
	}
}

// WithDeadLetterHook registers a callback invoked when a command is
// dead-lettered. The hook runs on the drain goroutine.
func WithDeadLetterHook(hook DeadLetterHook) Option {
	return func(q *Queue) {
		q.onDeadLetter = hook
	}
}

// NewQueue constructs a stopped-idle queue executing commands with handler.
func NewQueue(cfg config.Queue, handler Handler, logger *slog.Logger, opts ...Option) *Queue {
	ctx, cancel := context.WithCancel(context.Background())
	idle := make(chan struct{})
	close(idle)

	q := &Queue{
		handler:       handler,
		logger:        logging.NewComponentLogger(logger, "queue"),
		maxAttempts:   cfg.MaxAttempts,
		baseDelay:     time.Duration(cfg.RetryBaseDelayMS) * time.Millisecond,
		maxDelay:      time.Duration(cfg.RetryMaxDelayMS) * time.Millisecond,
		stabilization: time.Duration(cfg.StabilizationDelayMS) * time.Millisecond,
		sleep:         sleepCtx,
		ctx:           ctx,
		cancel:        cancel,
		idleCh:        idle,
	}
	if q.maxAttempts <= 0 {
		q.maxAttempts = 1
	}
	if q.baseDelay <= 0 {
		q.baseDelay = time.Millisecond
	}
	if q.maxDelay < q.baseDelay {
		q.maxDelay = q.baseDelay
	}
	for _, opt := range opts {
		opt(q)
	}
	return q
}

// Enqueue creates a pending command and appends it, triggering a drain cycle
// when none is active. It never waits for execution.
func (q *Queue) Enqueue(kind Kind, payload Payload) *Command {
	cmd := New(kind, payload, q.maxAttempts)
	q.EnqueueCommand(cmd)
	return cmd
}

// EnqueueCommand appends an existing command and triggers draining.
func (q *Queue) EnqueueCommand(cmd *Command) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		cmd.Status = StatusFailed
		return
	}
	q.items = append(q.items, cmd)
	if !q.draining {
		q.draining = true
		q.idleCh = make(chan struct{})
		go q.drain()
	}
}

// WaitIdle blocks until the queue has fully drained or ctx is done.
func (q *Queue) WaitIdle(ctx context.Context) error {
	q.mu.Lock()
	ch := q.idleCh
	q.mu.Unlock()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-ch:
		return nil
	}
}

// Pending reports how many commands are waiting or running.
func (q *Queue) Pending() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	n := len(q.items)
	if q.draining {
		n++
	}
	return n
}

// DeadLetters returns the commands that exhausted their retry budget since
// the last reset.
func (q *Queue) DeadLetters() []*Command {
	q.mu.Lock()
	defer q.mu.Unlock()
	cp := make([]*Command, len(q.deadLettered))
	copy(cp, q.deadLettered)
	return cp
}

// Reset atomically discards all pending commands and the dead-letter record.
// A command already running completes; it is not interrupted.
func (q *Queue) Reset() {
	q.mu.Lock()
	defer q.mu.Unlock()
	for _, cmd := range q.items {
		cmd.Status = StatusFailed
	}
	q.items = nil
	q.deadLettered = nil
}

// Close stops the queue permanently, aborting in-flight waits.
func (q *Queue) Close() {
	q.mu.Lock()
	q.closed = true
	for _, cmd := range q.items {
		cmd.Status = StatusFailed
	}
	q.items = nil
	q.mu.Unlock()
	q.cancel()
}

func (q *Queue) drain() {
	for {
		q.mu.Lock()
		if q.closed || len(q.items) == 0 {
			q.draining = false
			close(q.idleCh)
			q.mu.Unlock()
			return
		}
		cmd := q.items[0]
		q.items = q.items[1:]
		cmd.Status = StatusRunning
		q.mu.Unlock()

		q.execute(cmd)

		if err := q.sleep(q.ctx, q.stabilization); err != nil {
			q.finishDrain()
			return
		}
	}
}

func (q *Queue) finishDrain() {
	q.mu.Lock()
	q.draining = false
	close(q.idleCh)
	q.mu.Unlock()
}

func (q *Queue) execute(cmd *Command) {
	cmd.Attempts++
	ctx := logging.WithCommand(q.ctx, cmd.ID, string(cmd.Kind))
	logger := logging.WithContext(ctx, q.logger)

	err := q.handler(ctx, cmd)
	if err == nil {
		cmd.Status = StatusDone
		logger.Debug("command done", logging.Int("attempts", cmd.Attempts))
		return
	}
	cmd.LastErr = err

	if q.ctx.Err() != nil {
		cmd.Status = StatusFailed
		return
	}

	if cmd.Attempts < cmd.MaxAttempts {
		delay := q.backoff(cmd.Attempts)
		logger.Warn("command failed, retrying",
			logging.Int("attempts", cmd.Attempts),
			logging.Int("max_attempts", cmd.MaxAttempts),
			logging.Duration("backoff", delay),
			logging.Error(err),
		)
		if sleepErr := q.sleep(q.ctx, delay); sleepErr != nil {
			cmd.Status = StatusFailed
			return
		}
		// Requeue at the front so the retried command keeps its ordering
		// relative to commands that have not run yet.
		cmd.Status = StatusPending
		q.mu.Lock()
		q.items = append([]*Command{cmd}, q.items...)
		q.mu.Unlock()
		return
	}

	cmd.Status = StatusFailed
	logger.Error("command dead-lettered",
		logging.String(logging.FieldEventType, "command_dead_lettered"),
		logging.Int("attempts", cmd.Attempts),
		logging.Error(err),
	)
	q.mu.Lock()
	q.deadLettered = append(q.deadLettered, cmd)
	hook := q.onDeadLetter
	q.mu.Unlock()
	if hook != nil {
		hook(cmd, err)
	}
}

// backoff doubles the base delay per attempt, capped at the configured max.
func (q *Queue) backoff(attempts int) time.Duration {
	delay := q.baseDelay
	for i := 1; i < attempts; i++ {
		delay *= 2
		if delay >= q.maxDelay {
			return q.maxDelay
		}
	}
	if delay > q.maxDelay {
		return q.maxDelay
	}
	return delay
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
			return nil
		}
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
