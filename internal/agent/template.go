package agent

import (
	"context"
	"fmt"

	"tutorsync/internal/message"
)

var promptTemplates = map[message.AgentType]string{
	message.AgentHint:    "Looks like a tricky spot. Want a hint about what you just watched?",
	message.AgentQuiz:    "Want a quick quiz to check your understanding so far?",
	message.AgentReflect: "Good moment to pause. Want a reflection question on this section?",
	message.AgentPath:    "Want a suggested learning path based on where you are?",
}

var responseTemplates = map[message.AgentType]string{
	message.AgentHint:    "Hint: rewatch the segment leading up to %s and focus on the term the lecturer emphasizes there.",
	message.AgentQuiz:    "Quiz: in one sentence, summarize the main idea covered up to %s.",
	message.AgentReflect: "Reflection: how does the material up to %s connect to what you already knew?",
	message.AgentPath:    "Suggested path: finish this lecture, then revisit the sections before %s that felt fastest.",
}

// TemplateService is the offline content backend: deterministic text per
// agent type, parameterized only by the paused-at timestamp.
type TemplateService struct{}

// NewTemplateService returns the deterministic template backend.
func NewTemplateService() TemplateService {
	return TemplateService{}
}

func (TemplateService) PromptText(agentType message.AgentType, _ VideoContext) string {
	if text, ok := promptTemplates[agentType]; ok {
		return text
	}
	return fmt.Sprintf("Want %s assistance?", agentType)
}

func (TemplateService) GenerateResponse(_ context.Context, agentType message.AgentType, videoCtx VideoContext) (string, error) {
	at := message.FormatTimestamp(videoCtx.PausedAt)
	if tmpl, ok := responseTemplates[agentType]; ok {
		return fmt.Sprintf(tmpl, at), nil
	}
	return fmt.Sprintf("Assistance for %s at %s.", agentType, at), nil
}
