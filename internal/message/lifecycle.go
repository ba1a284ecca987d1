package message

import (
	"fmt"
	"time"
)

// Pair identifies a freshly appended prompt and its linked system notice.
type Pair struct {
	PromptID string
	SystemID string
}

// Unactivated returns the current unactivated agent prompt, if any.
func Unactivated(messages []Message) (Message, bool) {
	for _, m := range messages {
		if m.Kind == KindAgentPrompt && m.Lifecycle == LifecycleUnactivated {
			return m, true
		}
	}
	return Message{}, false
}

// ClearUnactivated removes the single unactivated agent prompt and its linked
// unactivated system notice. When nothing is unactivated it returns the input
// slice unchanged with changed=false so callers can skip a redundant snapshot.
func ClearUnactivated(messages []Message) (out []Message, changed bool) {
	prompt, ok := Unactivated(messages)
	if !ok {
		return messages, false
	}
	out = make([]Message, 0, len(messages))
	for _, m := range messages {
		if m.ID == prompt.ID {
			continue
		}
		if m.ID == prompt.LinkedMessageID && m.Lifecycle == LifecycleUnactivated {
			continue
		}
		out = append(out, m)
	}
	return out, true
}

// AppendPrompt appends a system notice ("Paused at m:ss") and an agent prompt
// with the supplied text, both unactivated and linked to each other. Any
// previous unactivated pair is cleared first, so the result always contains
// exactly one unactivated pair.
func AppendPrompt(messages []Message, agentType AgentType, atTime float64, promptText string, now time.Time) ([]Message, Pair) {
	cleared, _ := ClearUnactivated(messages)

	systemID := newID()
	promptID := newID()

	out := make([]Message, 0, len(cleared)+2)
	out = append(out, cleared...)
	out = append(out, Message{
		ID:              systemID,
		Kind:            KindSystem,
		Lifecycle:       LifecycleUnactivated,
		Text:            fmt.Sprintf("Paused at %s", FormatTimestamp(atTime)),
		CreatedAt:       now,
		LinkedMessageID: promptID,
	})
	out = append(out, Message{
		ID:              promptID,
		Kind:            KindAgentPrompt,
		AgentType:       agentType,
		Lifecycle:       LifecycleUnactivated,
		Text:            promptText,
		CreatedAt:       now,
		LinkedMessageID: systemID,
	})
	return out, Pair{PromptID: promptID, SystemID: systemID}
}

// Accept activates the identified prompt, promotes its linked system notice
// to permanent, and appends a permanent AI response carrying responseText.
// It reports ok=false without touching the list when the prompt no longer
// exists or is no longer unactivated.
func Accept(messages []Message, promptID, responseText string, now time.Time) (out []Message, ok bool) {
	idx, prompt, found := unactivatedPromptByID(messages, promptID)
	if !found {
		return messages, false
	}

	out = make([]Message, len(messages), len(messages)+1)
	copy(out, messages)
	out[idx].Lifecycle = LifecycleActivated
	promoteLinked(out, prompt.LinkedMessageID)
	out = append(out, Message{
		ID:        newID(),
		Kind:      KindAIResponse,
		AgentType: prompt.AgentType,
		Lifecycle: LifecyclePermanent,
		Text:      responseText,
		CreatedAt: now,
	})
	return out, true
}

// Reject marks the identified prompt rejected and promotes its linked system
// notice to permanent. No response message is appended. Stale targets are
// reported with ok=false and leave the list untouched.
func Reject(messages []Message, promptID string) (out []Message, ok bool) {
	idx, prompt, found := unactivatedPromptByID(messages, promptID)
	if !found {
		return messages, false
	}

	out = make([]Message, len(messages))
	copy(out, messages)
	out[idx].Lifecycle = LifecycleRejected
	promoteLinked(out, prompt.LinkedMessageID)
	return out, true
}

// AppendPermanent appends a message that no later operation may remove.
// Used for AI responses resolving after their prompt was superseded and for
// content service failure notices.
func AppendPermanent(messages []Message, kind Kind, agentType AgentType, text string, now time.Time) []Message {
	out := make([]Message, len(messages), len(messages)+1)
	copy(out, messages)
	return append(out, Message{
		ID:        newID(),
		Kind:      kind,
		AgentType: agentType,
		Lifecycle: LifecyclePermanent,
		Text:      text,
		CreatedAt: now,
	})
}

// RemoveIfUnactivated keeps every message whose lifecycle is no longer
// unactivated. Used when playback resumes while a prompt is still pending.
func RemoveIfUnactivated(messages []Message) (out []Message, removed bool) {
	for _, m := range messages {
		if m.Lifecycle == LifecycleUnactivated {
			removed = true
			break
		}
	}
	if !removed {
		return messages, false
	}
	out = make([]Message, 0, len(messages))
	for _, m := range messages {
		if m.Lifecycle == LifecycleUnactivated {
			continue
		}
		out = append(out, m)
	}
	return out, true
}

func unactivatedPromptByID(messages []Message, promptID string) (int, Message, bool) {
	for i, m := range messages {
		if m.ID == promptID && m.Kind == KindAgentPrompt && m.Lifecycle == LifecycleUnactivated {
			return i, m, true
		}
	}
	return -1, Message{}, false
}

func promoteLinked(messages []Message, linkedID string) {
	if linkedID == "" {
		return
	}
	for i := range messages {
		if messages[i].ID == linkedID && messages[i].Kind == KindSystem {
			messages[i].Lifecycle = LifecyclePermanent
			return
		}
	}
}
