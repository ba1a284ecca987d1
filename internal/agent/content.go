package agent

import (
	"context"

	"tutorsync/internal/message"
)

// VideoContext describes where in the lecture an interaction happened. It is
// the only video state the content service ever sees.
type VideoContext struct {
	CourseTitle  string
	LectureTitle string
	PausedAt     float64
	Duration     float64
}

// ContentService produces the chat-visible text for agent interactions.
// PromptText is consulted when an agent prompt is appended; GenerateResponse
// runs after the learner accepts a prompt. Implementations may be remote;
// failures from GenerateResponse surface as permanent error messages in the
// transcript, never as silently dropped accepts.
type ContentService interface {
	PromptText(agentType message.AgentType, videoCtx VideoContext) string
	GenerateResponse(ctx context.Context, agentType message.AgentType, videoCtx VideoContext) (string, error)
}
