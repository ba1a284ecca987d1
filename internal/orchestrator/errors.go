package orchestrator

import (
	"fmt"

	"tutorsync/internal/command"
	"tutorsync/internal/message"
)

// CommandExhaustedError records a command that failed repeatedly and was
// dead-lettered. The queue proceeds to the next command; the originating UI
// action silently does not complete.
type CommandExhaustedError struct {
	CommandID string
	Kind      command.Kind
	Attempts  int
	Cause     error
}

func (e *CommandExhaustedError) Error() string {
	return fmt.Sprintf("command %s (%s) gave up after %d attempts: %v", e.Kind, e.CommandID, e.Attempts, e.Cause)
}

func (e *CommandExhaustedError) Unwrap() error { return e.Cause }

// StaleTargetError marks an accept or reject whose prompt is no longer
// unactivated, already superseded by a later agent request. Expected under
// rapid interaction; logged, never surfaced to the user.
type StaleTargetError struct {
	PromptID string
}

func (e *StaleTargetError) Error() string {
	return fmt.Sprintf("prompt %s is no longer unactivated", e.PromptID)
}

// ContentServiceError wraps a failed response generation after acceptance.
// It becomes a permanent chat message, never removed, never retried
// automatically.
type ContentServiceError struct {
	AgentType message.AgentType
	Cause     error
}

func (e *ContentServiceError) Error() string {
	return fmt.Sprintf("content generation failed for %s: %v", e.AgentType, e.Cause)
}

func (e *ContentServiceError) Unwrap() error { return e.Cause }
