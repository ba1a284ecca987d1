package message

import (
	"testing"
	"time"
)

var testNow = time.Date(2026, 3, 14, 9, 26, 53, 0, time.UTC)

func countUnactivated(messages []Message) int {
	n := 0
	for _, m := range messages {
		if m.Lifecycle == LifecycleUnactivated {
			n++
		}
	}
	return n
}

func TestAppendPromptCreatesLinkedPair(t *testing.T) {
	messages, pair := AppendPrompt(nil, AgentHint, 150, "Want a hint?", testNow)

	if len(messages) != 2 {
		t.Fatalf("len = %d, want 2", len(messages))
	}
	system, prompt := messages[0], messages[1]
	if system.Kind != KindSystem || system.Lifecycle != LifecycleUnactivated {
		t.Errorf("system message = %+v", system)
	}
	if system.Text != "Paused at 2:30" {
		t.Errorf("system text = %q, want 'Paused at 2:30'", system.Text)
	}
	if prompt.Kind != KindAgentPrompt || prompt.AgentType != AgentHint {
		t.Errorf("prompt message = %+v", prompt)
	}
	if prompt.LinkedMessageID != system.ID || system.LinkedMessageID != prompt.ID {
		t.Error("pair is not cross-linked")
	}
	if pair.PromptID != prompt.ID || pair.SystemID != system.ID {
		t.Errorf("pair ids do not match appended messages: %+v", pair)
	}
}

func TestAppendPromptSupersedesPreviousPair(t *testing.T) {
	messages, _ := AppendPrompt(nil, AgentQuiz, 10, "Quiz?", testNow)
	messages, pair := AppendPrompt(messages, AgentReflect, 12, "Reflect?", testNow)

	if countUnactivated(messages) != 2 {
		t.Fatalf("unactivated count = %d, want 2 (one pair)", countUnactivated(messages))
	}
	prompt, ok := Unactivated(messages)
	if !ok {
		t.Fatal("no unactivated prompt after append")
	}
	if prompt.AgentType != AgentReflect || prompt.ID != pair.PromptID {
		t.Errorf("surviving prompt = %+v, want reflect %s", prompt, pair.PromptID)
	}
	for _, m := range messages {
		if m.AgentType == AgentQuiz {
			t.Errorf("quiz message survived supersession: %+v", m)
		}
	}
}

func TestClearUnactivatedIsDetectableNoop(t *testing.T) {
	messages, _ := AppendPrompt(nil, AgentHint, 5, "Hint?", testNow)

	cleared, changed := ClearUnactivated(messages)
	if !changed {
		t.Fatal("expected first clear to report a change")
	}
	if len(cleared) != 0 {
		t.Fatalf("len after clear = %d, want 0", len(cleared))
	}

	again, changed := ClearUnactivated(cleared)
	if changed {
		t.Error("second clear reported a change")
	}
	if len(again) != len(cleared) {
		t.Error("second clear altered the list")
	}
}

func TestClearUnactivatedRemovesBothOrNeither(t *testing.T) {
	messages, _ := AppendPrompt(nil, AgentPath, 33, "Path?", testNow)
	messages, ok := Accept(messages, mustUnactivated(t, messages).ID, "Here is a path.", testNow)
	if !ok {
		t.Fatal("accept failed")
	}
	messages, more := AppendPrompt(messages, AgentHint, 40, "Hint?", testNow)

	cleared, changed := ClearUnactivated(messages)
	if !changed {
		t.Fatal("expected clear to remove the pending pair")
	}
	for _, m := range cleared {
		if m.ID == more.PromptID || m.ID == more.SystemID {
			t.Errorf("half of the unactivated pair survived: %+v", m)
		}
	}
	// The accepted conversation is untouched.
	if len(cleared) != 3 {
		t.Fatalf("len = %d, want 3 (prompt, system, response)", len(cleared))
	}
}

func TestAcceptActivatesAndAppendsResponse(t *testing.T) {
	messages, pair := AppendPrompt(nil, AgentQuiz, 90, "Quiz?", testNow)

	messages, ok := Accept(messages, pair.PromptID, "Q1: what did you just watch?", testNow)
	if !ok {
		t.Fatal("accept reported stale target")
	}
	if len(messages) != 3 {
		t.Fatalf("len = %d, want 3", len(messages))
	}
	byID := indexByID(messages)
	if got := byID[pair.PromptID].Lifecycle; got != LifecycleActivated {
		t.Errorf("prompt lifecycle = %s, want activated", got)
	}
	if got := byID[pair.SystemID].Lifecycle; got != LifecyclePermanent {
		t.Errorf("system lifecycle = %s, want permanent", got)
	}
	response := messages[len(messages)-1]
	if response.Kind != KindAIResponse || response.Lifecycle != LifecyclePermanent {
		t.Errorf("response = %+v", response)
	}
	if response.AgentType != AgentQuiz {
		t.Errorf("response agent type = %s, want quiz", response.AgentType)
	}
}

func TestAcceptStaleTargetIsNoop(t *testing.T) {
	messages, pair := AppendPrompt(nil, AgentQuiz, 90, "Quiz?", testNow)
	messages, _ = AppendPrompt(messages, AgentReflect, 95, "Reflect?", testNow)

	out, ok := Accept(messages, pair.PromptID, "late response", testNow)
	if ok {
		t.Fatal("accept of a superseded prompt must report ok=false")
	}
	if len(out) != len(messages) {
		t.Errorf("stale accept mutated the list: %d -> %d", len(messages), len(out))
	}
}

func TestRejectMarksRejectedWithoutResponse(t *testing.T) {
	messages, pair := AppendPrompt(nil, AgentReflect, 60, "Reflect?", testNow)

	messages, ok := Reject(messages, pair.PromptID)
	if !ok {
		t.Fatal("reject reported stale target")
	}
	if len(messages) != 2 {
		t.Fatalf("len = %d, want 2 (no response appended)", len(messages))
	}
	byID := indexByID(messages)
	if got := byID[pair.PromptID].Lifecycle; got != LifecycleRejected {
		t.Errorf("prompt lifecycle = %s, want rejected", got)
	}
	if got := byID[pair.SystemID].Lifecycle; got != LifecyclePermanent {
		t.Errorf("system lifecycle = %s, want permanent", got)
	}
}

func TestRemoveIfUnactivatedKeepsPersistentMessages(t *testing.T) {
	messages, pair := AppendPrompt(nil, AgentQuiz, 20, "Quiz?", testNow)
	messages, _ = Accept(messages, pair.PromptID, "answer", testNow)
	messages, _ = AppendPrompt(messages, AgentHint, 25, "Hint?", testNow)

	out, removed := RemoveIfUnactivated(messages)
	if !removed {
		t.Fatal("expected pending pair to be removed")
	}
	if len(out) != 3 {
		t.Fatalf("len = %d, want 3", len(out))
	}
	for _, m := range out {
		if !m.IsPersistent() {
			t.Errorf("non-persistent message survived: %+v", m)
		}
	}

	again, removed := RemoveIfUnactivated(out)
	if removed {
		t.Error("second removal reported a change")
	}
	if len(again) != len(out) {
		t.Error("second removal altered the list")
	}
}

func TestParseAgentType(t *testing.T) {
	tests := []struct {
		in   string
		want AgentType
		ok   bool
	}{
		{"hint", AgentHint, true},
		{" Quiz ", AgentQuiz, true},
		{"REFLECT", AgentReflect, true},
		{"path", AgentPath, true},
		{"", "", false},
		{"oracle", "", false},
	}
	for _, tt := range tests {
		got, ok := ParseAgentType(tt.in)
		if got != tt.want || ok != tt.ok {
			t.Errorf("ParseAgentType(%q) = (%q, %v), want (%q, %v)", tt.in, got, ok, tt.want, tt.ok)
		}
	}
}

func TestFormatTimestamp(t *testing.T) {
	tests := []struct {
		seconds float64
		want    string
	}{
		{0, "0:00"},
		{-3, "0:00"},
		{9, "0:09"},
		{150, "2:30"},
		{3599, "59:59"},
		{3600, "1:00:00"},
		{3723.9, "1:02:03"},
	}
	for _, tt := range tests {
		if got := FormatTimestamp(tt.seconds); got != tt.want {
			t.Errorf("FormatTimestamp(%v) = %q, want %q", tt.seconds, got, tt.want)
		}
	}
}

func mustUnactivated(t *testing.T, messages []Message) Message {
	t.Helper()
	m, ok := Unactivated(messages)
	if !ok {
		t.Fatal("no unactivated prompt present")
	}
	return m
}

func indexByID(messages []Message) map[string]Message {
	byID := make(map[string]Message, len(messages))
	for _, m := range messages {
		byID[m.ID] = m
	}
	return byID
}
