package orchestrator

import (
	"context"
	"fmt"
	"time"

	"tutorsync/internal/command"
	"tutorsync/internal/logging"
	"tutorsync/internal/message"
	"tutorsync/internal/playback"
)

// handle executes one queued command. Returning an error hands the command
// back to the queue's retry path; every error is terminal at the queue
// boundary and never escapes past the orchestrator.
func (o *Orchestrator) handle(ctx context.Context, cmd *command.Command) error {
	var err error
	switch cmd.Kind {
	case command.KindManualPause:
		err = o.handleManualPause(ctx, cmd)
	case command.KindShowAgent:
		err = o.handleShowAgent(ctx, cmd)
	case command.KindRequestPause:
		err = o.handleRequestPause(ctx)
	case command.KindRequestResume:
		err = o.handleRequestResume(ctx)
	case command.KindAcceptAgent:
		err = o.handleAccept(ctx, cmd)
	case command.KindRejectAgent:
		err = o.handleReject(ctx, cmd)
	default:
		err = fmt.Errorf("unknown command kind %q", cmd.Kind)
	}
	o.recordCommand(ctx, cmd, err)
	return err
}

// handleManualPause reacts to a pause the learner performed on the player
// controls. Playback is already paused; this system only syncs its snapshot
// and offers a hint prompt at the reported position.
func (o *Orchestrator) handleManualPause(ctx context.Context, cmd *command.Command) error {
	o.actuator.Refresh()
	o.appendPrompt(ctx, message.AgentHint, cmd.Payload.AtTime)
	return nil
}

// handleShowAgent pauses playback if needed and appends the requested prompt
// pair. An unverifiable pause fails open: the prompt still appears, with the
// actuation error recorded in the context.
func (o *Orchestrator) handleShowAgent(ctx context.Context, cmd *command.Command) error {
	if !o.actuator.IsPaused() {
		o.setTransitioning(ctx, true)
		err := o.actuator.Pause(ctx)
		o.setTransitioning(ctx, false)
		if err != nil {
			if !playback.IsActuationError(err) {
				return err
			}
			o.mu.Lock()
			o.lastErr = err
			o.mu.Unlock()
			o.notifyActuationFailed(ctx, "pause", err)
		}
	}
	o.appendPrompt(ctx, cmd.Payload.AgentType, o.actuator.CurrentTime())
	return nil
}

// handleRequestPause is the verified pause path. Failures are returned so
// the queue retries with back-off; exhaustion dead-letters the command and
// surfaces a CommandExhaustedError through the context.
func (o *Orchestrator) handleRequestPause(ctx context.Context) error {
	o.setTransitioning(ctx, true)
	err := o.actuator.Pause(ctx)
	o.setTransitioning(ctx, false)
	return err
}

// handleRequestResume removes a still-unactivated prompt pair, then reasserts
// play through the actuator. Removal is idempotent, so a retried resume does
// not touch the messages again.
func (o *Orchestrator) handleRequestResume(ctx context.Context) error {
	o.mu.Lock()
	messages, removed := message.RemoveIfUnactivated(o.messages)
	o.messages = messages
	o.mu.Unlock()
	if removed {
		o.publish(ctx)
	}

	o.setTransitioning(ctx, true)
	err := o.actuator.Play(ctx)
	o.setTransitioning(ctx, false)
	return err
}

func (o *Orchestrator) handleAccept(ctx context.Context, cmd *command.Command) error {
	prompt, ok := o.unactivatedPrompt(cmd.Payload.TargetID)
	if !ok {
		o.logger.Debug("accept ignored",
			logging.Error(&StaleTargetError{PromptID: cmd.Payload.TargetID}),
		)
		return nil
	}

	pausedAt := o.actuator.CurrentTime()
	responseText, err := o.content.GenerateResponse(ctx, prompt.AgentType, o.videoContext(pausedAt))
	if err != nil {
		contentErr := &ContentServiceError{AgentType: prompt.AgentType, Cause: err}
		o.mu.Lock()
		o.messages = message.AppendPermanent(
			o.messages,
			message.KindSystem,
			prompt.AgentType,
			fmt.Sprintf("Could not generate a %s response: %v", prompt.AgentType, err),
			time.Now().UTC(),
		)
		o.lastErr = contentErr
		o.mu.Unlock()
		o.logger.Error("content generation failed",
			logging.String(logging.FieldAgentType, string(prompt.AgentType)),
			logging.String(logging.FieldEventType, "content_service_error"),
			logging.Error(err),
		)
		if o.notifier != nil {
			_ = o.notifier.NotifyContentServiceError(ctx, string(prompt.AgentType), err)
		}
		o.publish(ctx)
		return nil
	}

	o.mu.Lock()
	messages, accepted := message.Accept(o.messages, prompt.ID, responseText, time.Now().UTC())
	if !accepted {
		// The prompt was superseded while the response was generating. The
		// answer is still worth keeping, appended permanent at the end.
		messages = message.AppendPermanent(messages, message.KindAIResponse, prompt.AgentType, responseText, time.Now().UTC())
	}
	o.messages = messages
	o.mu.Unlock()
	o.publish(ctx)
	return nil
}

func (o *Orchestrator) handleReject(ctx context.Context, cmd *command.Command) error {
	o.mu.Lock()
	messages, ok := message.Reject(o.messages, cmd.Payload.TargetID)
	o.messages = messages
	o.mu.Unlock()
	if !ok {
		o.logger.Debug("reject ignored",
			logging.Error(&StaleTargetError{PromptID: cmd.Payload.TargetID}),
		)
		return nil
	}
	o.publish(ctx)
	return nil
}

// appendPrompt clears any previous unactivated pair and appends the new one.
func (o *Orchestrator) appendPrompt(ctx context.Context, agentType message.AgentType, atTime float64) {
	promptText := o.content.PromptText(agentType, o.videoContext(atTime))
	o.mu.Lock()
	o.messages, _ = message.AppendPrompt(o.messages, agentType, atTime, promptText, time.Now().UTC())
	o.mu.Unlock()
	o.publish(ctx)
}

func (o *Orchestrator) unactivatedPrompt(promptID string) (message.Message, bool) {
	o.mu.RLock()
	defer o.mu.RUnlock()
	prompt, ok := message.Unactivated(o.messages)
	if !ok || prompt.ID != promptID {
		return message.Message{}, false
	}
	return prompt, true
}

// setTransitioning toggles the transitioning playback state and publishes
// the change so observers see pause and resume commands in flight.
func (o *Orchestrator) setTransitioning(ctx context.Context, on bool) {
	o.mu.Lock()
	o.transitioning = on
	o.mu.Unlock()
	o.publish(ctx)
}

func (o *Orchestrator) notifyActuationFailed(ctx context.Context, op string, err error) {
	if o.notifier == nil {
		return
	}
	_ = o.notifier.NotifyActuationFailed(ctx, op, err)
}

// onDeadLetter runs on the drain goroutine when a command exhausts its retry
// budget. The queue proceeds to the next command; the exhaustion is recorded
// in the context and pushed to the notifier.
func (o *Orchestrator) onDeadLetter(cmd *command.Command, err error) {
	exhausted := &CommandExhaustedError{
		CommandID: cmd.ID,
		Kind:      cmd.Kind,
		Attempts:  cmd.Attempts,
		Cause:     err,
	}
	o.mu.Lock()
	o.lastErr = exhausted
	o.mu.Unlock()
	o.logger.Error("command exhausted",
		logging.String(logging.FieldCommandID, cmd.ID),
		logging.String(logging.FieldCommandKind, string(cmd.Kind)),
		logging.Int("attempts", cmd.Attempts),
		logging.Error(err),
	)
	if o.notifier != nil {
		_ = o.notifier.NotifyCommandDeadLettered(context.Background(), string(cmd.Kind), cmd.Attempts, err)
	}
	o.publish(context.Background())
}
