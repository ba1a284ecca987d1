package message

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Kind identifies what a message represents in the transcript.
type Kind string

const (
	KindSystem      Kind = "system"
	KindAgentPrompt Kind = "agent-prompt"
	KindAIResponse  Kind = "ai-response"
)

// Lifecycle is the removal-governing state of a message.
type Lifecycle string

const (
	LifecycleUnactivated Lifecycle = "unactivated"
	LifecycleActivated   Lifecycle = "activated"
	LifecycleRejected    Lifecycle = "rejected"
	LifecyclePermanent   Lifecycle = "permanent"
)

// AgentType identifies the tutoring interaction a prompt offers.
type AgentType string

const (
	AgentHint    AgentType = "hint"
	AgentQuiz    AgentType = "quiz"
	AgentReflect AgentType = "reflect"
	AgentPath    AgentType = "path"
)

var allAgentTypes = []AgentType{AgentHint, AgentQuiz, AgentReflect, AgentPath}

var agentTypeSet = func() map[AgentType]struct{} {
	set := make(map[AgentType]struct{}, len(allAgentTypes))
	for _, at := range allAgentTypes {
		set[at] = struct{}{}
	}
	return set
}()

// AllAgentTypes returns the ordered list of known agent types.
func AllAgentTypes() []AgentType {
	cp := make([]AgentType, len(allAgentTypes))
	copy(cp, allAgentTypes)
	return cp
}

// ParseAgentType converts a string into a known AgentType.
func ParseAgentType(value string) (AgentType, bool) {
	normalized := AgentType(strings.ToLower(strings.TrimSpace(value)))
	if normalized == "" {
		return "", false
	}
	_, ok := agentTypeSet[normalized]
	return normalized, ok
}

// Message is a unit of chat-visible content.
type Message struct {
	ID              string
	Kind            Kind
	AgentType       AgentType
	Lifecycle       Lifecycle
	Text            string
	CreatedAt       time.Time
	LinkedMessageID string
}

// IsRemovable reports whether the lifecycle still allows removal.
func (m Message) IsRemovable() bool {
	return m.Lifecycle == LifecycleUnactivated
}

// IsPersistent reports whether the message survives every operation short of
// a full session reset.
func (m Message) IsPersistent() bool {
	switch m.Lifecycle {
	case LifecycleActivated, LifecycleRejected, LifecyclePermanent:
		return true
	default:
		return false
	}
}

func newID() string {
	return uuid.NewString()
}
