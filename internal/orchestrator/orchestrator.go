package orchestrator

import (
	"context"
	"log/slog"
	"sync"

	"tutorsync/internal/agent"
	"tutorsync/internal/command"
	"tutorsync/internal/config"
	"tutorsync/internal/journal"
	"tutorsync/internal/logging"
	"tutorsync/internal/message"
	"tutorsync/internal/notifications"
	"tutorsync/internal/playback"
)

// Orchestrator owns the video actuator, the command queue, and the message
// list, and is the single writer of the published Context. UI layers only
// dispatch intents and subscribe; no caller mutates messages or playback
// flags directly.
type Orchestrator struct {
	actuator *playback.Actuator
	queue    *command.Queue
	content  agent.ContentService
	notifier notifications.Service
	recorder journal.Recorder
	logger   *slog.Logger

	sessionID    string
	courseTitle  string
	lectureTitle string

	mu            sync.RWMutex
	current       *Context
	messages      []message.Message
	lastErr       error
	transitioning bool
	observers     map[int]func(*Context)
	nextObserver  int
}

// Option configures optional orchestrator collaborators.
type Option func(*Orchestrator)

// WithNotifier attaches a notification service for session-level events.
func WithNotifier(notifier notifications.Service) Option {
	return func(o *Orchestrator) {
		if notifier != nil {
			o.notifier = notifier
		}
	}
}

// WithRecorder attaches a session journal recorder. Recording failures are
// logged and swallowed; they never fail the command that triggered them.
func WithRecorder(recorder journal.Recorder, sessionID string) Option {
	return func(o *Orchestrator) {
		o.recorder = recorder
		o.sessionID = sessionID
	}
}

// WithLecture labels the session for content generation and notifications.
func WithLecture(courseTitle, lectureTitle string) Option {
	return func(o *Orchestrator) {
		o.courseTitle = courseTitle
		o.lectureTitle = lectureTitle
	}
}

// New constructs an orchestrator for one playback session.
func New(cfg *config.Config, player playback.Player, content agent.ContentService, logger *slog.Logger, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		content:   content,
		notifier:  notifications.NewService(cfg),
		logger:    logging.NewComponentLogger(logger, "orchestrator"),
		observers: make(map[int]func(*Context)),
	}
	for _, opt := range opts {
		opt(o)
	}

	o.actuator = playback.New(player, cfg.Actuation, logger)
	o.queue = command.NewQueue(cfg.Queue, o.handle, logger, command.WithDeadLetterHook(o.onDeadLetter))
	o.current = o.buildContext()
	return o
}

// ManualPause reports a pause the learner performed on the player controls,
// outside this system. atTime is the playback position the caller observed.
func (o *Orchestrator) ManualPause(atTime float64) {
	o.dispatch(command.KindManualPause, command.Payload{AtTime: atTime})
}

// AgentButton requests an agent prompt of the given type. When playback is
// running the handler pauses it first; the prompt appears either way.
func (o *Orchestrator) AgentButton(agentType message.AgentType) {
	o.dispatch(command.KindShowAgent, command.Payload{AgentType: agentType})
}

// RequestPause asks this system to pause playback, with verification.
func (o *Orchestrator) RequestPause() {
	o.dispatch(command.KindRequestPause, command.Payload{})
}

// VideoResumed reports that playback resumed. Any still-unactivated prompt
// pair is removed before the resume is reasserted through the actuator.
func (o *Orchestrator) VideoResumed() {
	o.dispatch(command.KindRequestResume, command.Payload{})
}

// VideoEnded reports natural end of playback. Treated identically to a
// resume: the pending prompt pair, if any, is removed.
func (o *Orchestrator) VideoEnded() {
	o.dispatch(command.KindRequestResume, command.Payload{})
}

// Accept activates the identified prompt and requests a generated response.
func (o *Orchestrator) Accept(promptID string) {
	o.dispatch(command.KindAcceptAgent, command.Payload{TargetID: promptID})
}

// Reject declines the identified prompt. The conversation keeps the system
// notice; no response is generated.
func (o *Orchestrator) Reject(promptID string) {
	o.dispatch(command.KindRejectAgent, command.Payload{TargetID: promptID})
}

// dispatch enqueues and returns immediately so UI callbacks never block on
// actuation or content generation.
func (o *Orchestrator) dispatch(kind command.Kind, payload command.Payload) {
	cmd := o.queue.Enqueue(kind, payload)
	o.logger.Debug("dispatched",
		logging.String(logging.FieldCommandID, cmd.ID),
		logging.String(logging.FieldCommandKind, string(cmd.Kind)),
	)
}

// Subscribe registers an observer for published contexts and returns its
// unsubscribe function. Observers run on the queue's drain goroutine and
// should return quickly.
func (o *Orchestrator) Subscribe(fn func(*Context)) (unsubscribe func()) {
	o.mu.Lock()
	id := o.nextObserver
	o.nextObserver++
	o.observers[id] = fn
	o.mu.Unlock()
	return func() {
		o.mu.Lock()
		delete(o.observers, id)
		o.mu.Unlock()
	}
}

// GetContext returns the current published context.
func (o *Orchestrator) GetContext() *Context {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.current
}

// WaitIdle blocks until the queue has fully drained or ctx is done.
func (o *Orchestrator) WaitIdle(ctx context.Context) error {
	return o.queue.WaitIdle(ctx)
}

// Pending reports how many commands are waiting or running.
func (o *Orchestrator) Pending() int {
	return o.queue.Pending()
}

// DeadLetters returns the commands that exhausted their retry budget since
// the last reset.
func (o *Orchestrator) DeadLetters() []*command.Command {
	return o.queue.DeadLetters()
}

// Reset discards the pending queue, the dead-letter record, and the entire
// message list atomically. This is the designated recovery path when the
// consumer wants a fresh start.
func (o *Orchestrator) Reset() {
	o.queue.Reset()
	o.mu.Lock()
	o.messages = nil
	o.lastErr = nil
	o.transitioning = false
	o.mu.Unlock()
	o.actuator.Refresh()
	o.publish(context.Background())
	o.logger.Info("session reset", logging.String(logging.FieldEventType, "session_reset"))
}

// Close stops the queue permanently.
func (o *Orchestrator) Close() {
	o.queue.Close()
}

// publish replaces the observable context wholesale and fans it out. The
// message operations never mutate their inputs, so the new context can share
// the message slice without copying.
func (o *Orchestrator) publish(ctx context.Context) {
	o.mu.Lock()
	next := o.buildContext()
	o.current = next
	observers := make([]func(*Context), 0, len(o.observers))
	for _, fn := range o.observers {
		observers = append(observers, fn)
	}
	o.mu.Unlock()

	for _, fn := range observers {
		fn(next)
	}
	o.recordTransition(ctx, next)
}

// buildContext derives the agent dimension from the message list. Callers
// hold o.mu or have exclusive access during construction.
func (o *Orchestrator) buildContext() *Context {
	snapshot := o.actuator.Snapshot()
	state := StatePaused
	if snapshot.Playing {
		state = StatePlaying
	}
	if o.transitioning {
		state = StateTransitioning
	}
	next := &Context{
		Playback: snapshot,
		State:    state,
		Messages: o.messages,
		LastErr:  o.lastErr,
	}
	if prompt, ok := message.Unactivated(o.messages); ok {
		next.ActiveAgentType = prompt.AgentType
		next.CurrentUnactivatedID = prompt.ID
	}
	return next
}

func (o *Orchestrator) videoContext(pausedAt float64) agent.VideoContext {
	return agent.VideoContext{
		CourseTitle:  o.courseTitle,
		LectureTitle: o.lectureTitle,
		PausedAt:     pausedAt,
		Duration:     o.actuator.Snapshot().Duration,
	}
}

func (o *Orchestrator) recordTransition(ctx context.Context, snapshot *Context) {
	if o.recorder == nil {
		return
	}
	rec := journal.TransitionRecord{
		SessionID:     o.sessionID,
		PlaybackState: string(snapshot.State),
		MessageCount:  len(snapshot.Messages),
		UnactivatedID: snapshot.CurrentUnactivatedID,
	}
	if snapshot.LastErr != nil {
		rec.LastError = snapshot.LastErr.Error()
	}
	if err := o.recorder.RecordTransition(ctx, rec); err != nil {
		o.logger.Warn("journal transition write failed", logging.Error(err))
	}
}

func (o *Orchestrator) recordCommand(ctx context.Context, cmd *command.Command, execErr error) {
	if o.recorder == nil {
		return
	}
	status := "done"
	if execErr != nil {
		status = "retrying"
		if cmd.Attempts >= cmd.MaxAttempts {
			status = "failed"
		}
	}
	rec := journal.CommandRecord{
		SessionID: o.sessionID,
		CommandID: cmd.ID,
		Kind:      string(cmd.Kind),
		Attempts:  cmd.Attempts,
		Status:    status,
	}
	if execErr != nil {
		rec.Error = execErr.Error()
	}
	if err := o.recorder.RecordCommand(ctx, rec); err != nil {
		o.logger.Warn("journal command write failed", logging.Error(err))
	}
}
