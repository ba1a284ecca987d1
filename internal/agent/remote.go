package agent

import (
	"context"
	"fmt"
	"log/slog"

	"tutorsync/internal/agent/llm"
	"tutorsync/internal/config"
	"tutorsync/internal/logging"
	"tutorsync/internal/message"
)

var systemPrompts = map[message.AgentType]string{
	message.AgentHint:    "You are a tutoring assistant. Give one concise hint about the lecture segment the learner paused on. Never reveal full solutions.",
	message.AgentQuiz:    "You are a tutoring assistant. Write one short quiz question covering the lecture content up to the paused position.",
	message.AgentReflect: "You are a tutoring assistant. Pose one open reflection question connecting the paused lecture segment to prior knowledge.",
	message.AgentPath:    "You are a tutoring assistant. Suggest a short, ordered learning path from the learner's current position in the course.",
}

// RemoteService generates responses through a chat-completion API. Prompt
// text stays local (templates) so prompts render instantly; only accepted
// prompts pay the network round trip.
type RemoteService struct {
	client    *llm.Client
	templates TemplateService
	logger    *slog.Logger
}

// NewRemoteService wraps an llm client as a ContentService.
func NewRemoteService(client *llm.Client, logger *slog.Logger) *RemoteService {
	return &RemoteService{
		client: client,
		logger: logging.NewComponentLogger(logger, "agent"),
	}
}

func (s *RemoteService) PromptText(agentType message.AgentType, videoCtx VideoContext) string {
	return s.templates.PromptText(agentType, videoCtx)
}

func (s *RemoteService) GenerateResponse(ctx context.Context, agentType message.AgentType, videoCtx VideoContext) (string, error) {
	system, ok := systemPrompts[agentType]
	if !ok {
		system = systemPrompts[message.AgentHint]
	}
	user := fmt.Sprintf(
		"Course: %s\nLecture: %s\nPaused at: %s of %s",
		orUnknown(videoCtx.CourseTitle),
		orUnknown(videoCtx.LectureTitle),
		message.FormatTimestamp(videoCtx.PausedAt),
		message.FormatTimestamp(videoCtx.Duration),
	)
	content, err := s.client.Complete(ctx, system, user)
	if err != nil {
		s.logger.Warn("content generation failed",
			logging.String(logging.FieldAgentType, string(agentType)),
			logging.Error(err),
		)
		return "", fmt.Errorf("generate %s response: %w", agentType, err)
	}
	return content, nil
}

func orUnknown(value string) string {
	if value == "" {
		return "(unknown)"
	}
	return value
}

// NewFromConfig selects the content backend configured in cfg.
func NewFromConfig(cfg *config.Config, logger *slog.Logger) ContentService {
	settings := cfg.GetAgent()
	if settings.Provider != "llm" {
		return NewTemplateService()
	}
	client := llm.NewClient(llm.Config{
		APIKey:         settings.APIKey,
		BaseURL:        settings.BaseURL,
		Model:          settings.Model,
		Referer:        settings.Referer,
		Title:          settings.Title,
		TimeoutSeconds: settings.TimeoutSeconds,
	})
	return NewRemoteService(client, logger)
}
