package orchestrator_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"tutorsync/internal/agent"
	"tutorsync/internal/logging"
	"tutorsync/internal/message"
	"tutorsync/internal/orchestrator"
	"tutorsync/internal/playback"
	"tutorsync/internal/testsupport"
)

func newTestOrchestrator(t *testing.T, player *testsupport.FakePlayer, opts ...orchestrator.Option) *orchestrator.Orchestrator {
	t.Helper()
	cfg := testsupport.NewConfig(t)
	o := orchestrator.New(cfg, player, agent.NewTemplateService(), logging.NewNop(), opts...)
	t.Cleanup(o.Close)
	return o
}

func drain(t *testing.T, o *orchestrator.Orchestrator) *orchestrator.Context {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := o.WaitIdle(ctx); err != nil {
		t.Fatalf("WaitIdle: %v", err)
	}
	return o.GetContext()
}

func countByLifecycle(messages []message.Message, lc message.Lifecycle) int {
	n := 0
	for _, m := range messages {
		if m.Lifecycle == lc {
			n++
		}
	}
	return n
}

func TestManualPauseAppendsHintPair(t *testing.T) {
	player := testsupport.NewFakePlayer(600)
	player.SetPaused(true)
	o := newTestOrchestrator(t, player)

	o.ManualPause(150)
	ctx := drain(t, o)

	if len(ctx.Messages) != 2 {
		t.Fatalf("messages = %d, want 2", len(ctx.Messages))
	}
	system, prompt := ctx.Messages[0], ctx.Messages[1]
	if system.Kind != message.KindSystem || system.Text != "Paused at 2:30" {
		t.Errorf("system = %s %q", system.Kind, system.Text)
	}
	if prompt.Kind != message.KindAgentPrompt || prompt.AgentType != message.AgentHint {
		t.Errorf("prompt = %s %s", prompt.Kind, prompt.AgentType)
	}
	if system.Lifecycle != message.LifecycleUnactivated || prompt.Lifecycle != message.LifecycleUnactivated {
		t.Errorf("lifecycles = %s, %s", system.Lifecycle, prompt.Lifecycle)
	}
	if system.LinkedMessageID != prompt.ID || prompt.LinkedMessageID != system.ID {
		t.Error("pair is not cross-linked")
	}
	if ctx.CurrentUnactivatedID != prompt.ID {
		t.Errorf("unactivated id = %q, want %q", ctx.CurrentUnactivatedID, prompt.ID)
	}
	if ctx.ActiveAgentType != message.AgentHint {
		t.Errorf("active agent type = %s", ctx.ActiveAgentType)
	}
	if ctx.State != orchestrator.StatePaused {
		t.Errorf("state = %s", ctx.State)
	}
}

func TestAcceptActivatesPairAndAppendsResponse(t *testing.T) {
	player := testsupport.NewFakePlayer(600)
	player.SetPaused(true)
	o := newTestOrchestrator(t, player)

	o.ManualPause(150)
	ctx := drain(t, o)

	o.Accept(ctx.CurrentUnactivatedID)
	ctx = drain(t, o)

	if len(ctx.Messages) != 3 {
		t.Fatalf("messages = %d, want 3", len(ctx.Messages))
	}
	if got := ctx.Messages[0].Lifecycle; got != message.LifecyclePermanent {
		t.Errorf("system lifecycle = %s", got)
	}
	if got := ctx.Messages[1].Lifecycle; got != message.LifecycleActivated {
		t.Errorf("prompt lifecycle = %s", got)
	}
	response := ctx.Messages[2]
	if response.Kind != message.KindAIResponse || response.Lifecycle != message.LifecyclePermanent {
		t.Errorf("response = %s %s", response.Kind, response.Lifecycle)
	}
	if response.AgentType != message.AgentHint {
		t.Errorf("response agent type = %s", response.AgentType)
	}
	if ctx.CurrentUnactivatedID != "" {
		t.Errorf("unactivated id = %q, want empty", ctx.CurrentUnactivatedID)
	}
}

func TestResumeRemovesUnactivatedPair(t *testing.T) {
	player := testsupport.NewFakePlayer(600)
	player.SetPaused(true)
	o := newTestOrchestrator(t, player)

	o.ManualPause(150)
	drain(t, o)

	o.VideoResumed()
	ctx := drain(t, o)

	if len(ctx.Messages) != 0 {
		t.Fatalf("messages = %d, want 0", len(ctx.Messages))
	}
	if ctx.State != orchestrator.StatePlaying {
		t.Errorf("state = %s", ctx.State)
	}
}

func TestRapidAgentButtonsLastRequestWins(t *testing.T) {
	player := testsupport.NewFakePlayer(600)
	player.SetPaused(true)
	o := newTestOrchestrator(t, player)

	o.AgentButton(message.AgentQuiz)
	o.AgentButton(message.AgentReflect)
	ctx := drain(t, o)

	if len(ctx.Messages) != 2 {
		t.Fatalf("messages = %d, want 2", len(ctx.Messages))
	}
	for _, m := range ctx.Messages {
		if m.AgentType == message.AgentQuiz {
			t.Errorf("quiz message survived: %+v", m)
		}
	}
	if ctx.ActiveAgentType != message.AgentReflect {
		t.Errorf("active agent type = %s", ctx.ActiveAgentType)
	}
	if got := countByLifecycle(ctx.Messages, message.LifecycleUnactivated); got != 2 {
		t.Errorf("unactivated messages = %d, want 2", got)
	}
}

func TestAcceptedConversationSurvivesNextPrompt(t *testing.T) {
	player := testsupport.NewFakePlayer(600)
	player.SetPaused(true)
	o := newTestOrchestrator(t, player)

	o.AgentButton(message.AgentQuiz)
	ctx := drain(t, o)
	o.Accept(ctx.CurrentUnactivatedID)
	drain(t, o)

	o.AgentButton(message.AgentReflect)
	ctx = drain(t, o)

	if len(ctx.Messages) != 5 {
		t.Fatalf("messages = %d, want 5", len(ctx.Messages))
	}
	// Quiz conversation intact, in order, ahead of the new pair.
	if ctx.Messages[0].Lifecycle != message.LifecyclePermanent {
		t.Errorf("quiz system lifecycle = %s", ctx.Messages[0].Lifecycle)
	}
	if ctx.Messages[1].Lifecycle != message.LifecycleActivated || ctx.Messages[1].AgentType != message.AgentQuiz {
		t.Errorf("quiz prompt = %s %s", ctx.Messages[1].Lifecycle, ctx.Messages[1].AgentType)
	}
	if ctx.Messages[2].Kind != message.KindAIResponse {
		t.Errorf("expected ai response third, got %s", ctx.Messages[2].Kind)
	}
	if ctx.Messages[4].AgentType != message.AgentReflect || ctx.Messages[4].Lifecycle != message.LifecycleUnactivated {
		t.Errorf("reflect prompt = %s %s", ctx.Messages[4].AgentType, ctx.Messages[4].Lifecycle)
	}
	if ctx.ActiveAgentType != message.AgentReflect {
		t.Errorf("active agent type = %s", ctx.ActiveAgentType)
	}
}

func TestStaleAcceptIsSilentNoop(t *testing.T) {
	player := testsupport.NewFakePlayer(600)
	player.SetPaused(true)
	o := newTestOrchestrator(t, player)

	o.AgentButton(message.AgentHint)
	ctx := drain(t, o)
	staleID := ctx.CurrentUnactivatedID

	o.AgentButton(message.AgentQuiz)
	drain(t, o)

	o.Accept(staleID)
	ctx = drain(t, o)

	if len(ctx.Messages) != 2 {
		t.Fatalf("messages = %d, want 2", len(ctx.Messages))
	}
	if ctx.ActiveAgentType != message.AgentQuiz {
		t.Errorf("active agent type = %s", ctx.ActiveAgentType)
	}
	if ctx.LastErr != nil {
		t.Errorf("stale accept surfaced error: %v", ctx.LastErr)
	}
}

func TestAgentButtonWhilePlayingPausesFirst(t *testing.T) {
	player := testsupport.NewFakePlayer(600)
	player.SetCurrentTime(90)
	o := newTestOrchestrator(t, player)

	o.AgentButton(message.AgentReflect)
	ctx := drain(t, o)

	if paused, _ := player.Paused(); !paused {
		t.Error("expected player paused")
	}
	if ctx.State != orchestrator.StatePaused {
		t.Errorf("state = %s", ctx.State)
	}
	if len(ctx.Messages) != 2 {
		t.Fatalf("messages = %d, want 2", len(ctx.Messages))
	}
	if !strings.Contains(ctx.Messages[0].Text, "1:30") {
		t.Errorf("system text = %q", ctx.Messages[0].Text)
	}
}

func TestAgentButtonFailsOpenWhenActuationExhausted(t *testing.T) {
	player := testsupport.NewFakePlayer(600)
	o := newTestOrchestrator(t, player)
	player.FailEverything()

	o.AgentButton(message.AgentHint)
	ctx := drain(t, o)

	if len(ctx.Messages) != 2 {
		t.Fatalf("messages = %d, want 2 despite actuation failure", len(ctx.Messages))
	}
	if ctx.CurrentUnactivatedID == "" {
		t.Error("expected an unactivated prompt")
	}
	if !playback.IsActuationError(ctx.LastErr) {
		t.Errorf("last error = %v, want actuation error", ctx.LastErr)
	}
}

func TestRequestPauseExhaustionDeadLetters(t *testing.T) {
	player := testsupport.NewFakePlayer(600)
	o := newTestOrchestrator(t, player)
	player.FailEverything()

	o.RequestPause()
	ctx := drain(t, o)

	var exhausted *orchestrator.CommandExhaustedError
	if !errors.As(ctx.LastErr, &exhausted) {
		t.Fatalf("last error = %v, want CommandExhaustedError", ctx.LastErr)
	}
	if exhausted.Attempts != 3 {
		t.Errorf("attempts = %d, want 3", exhausted.Attempts)
	}
	if !playback.IsActuationError(exhausted.Cause) {
		t.Errorf("cause = %v, want actuation error", exhausted.Cause)
	}
	if got := len(o.DeadLetters()); got != 1 {
		t.Errorf("dead letters = %d, want 1", got)
	}
}

func TestContentServiceFailureBecomesPermanentMessage(t *testing.T) {
	player := testsupport.NewFakePlayer(600)
	player.SetPaused(true)
	cfg := testsupport.NewConfig(t)
	o := orchestrator.New(cfg, player, failingContent{}, logging.NewNop())
	t.Cleanup(o.Close)

	o.ManualPause(30)
	ctx := drain(t, o)
	o.Accept(ctx.CurrentUnactivatedID)
	ctx = drain(t, o)

	if len(ctx.Messages) != 3 {
		t.Fatalf("messages = %d, want 3", len(ctx.Messages))
	}
	failure := ctx.Messages[2]
	if failure.Lifecycle != message.LifecyclePermanent {
		t.Errorf("failure lifecycle = %s", failure.Lifecycle)
	}
	if !strings.Contains(failure.Text, "Could not generate") {
		t.Errorf("failure text = %q", failure.Text)
	}
	// The prompt stays unactivated; the accept did not complete.
	if ctx.Messages[1].Lifecycle != message.LifecycleUnactivated {
		t.Errorf("prompt lifecycle = %s", ctx.Messages[1].Lifecycle)
	}
	var contentErr *orchestrator.ContentServiceError
	if !errors.As(ctx.LastErr, &contentErr) {
		t.Errorf("last error = %v, want ContentServiceError", ctx.LastErr)
	}
}

func TestSubscribePublishesFreshContexts(t *testing.T) {
	player := testsupport.NewFakePlayer(600)
	player.SetPaused(true)
	o := newTestOrchestrator(t, player)

	var seen []*orchestrator.Context
	unsubscribe := o.Subscribe(func(ctx *orchestrator.Context) {
		seen = append(seen, ctx)
	})

	o.ManualPause(30)
	drain(t, o)

	if len(seen) == 0 {
		t.Fatal("observer saw no contexts")
	}
	for i := 1; i < len(seen); i++ {
		if seen[i] == seen[i-1] {
			t.Error("published context was reused, want fresh value per transition")
		}
	}

	before := len(seen)
	unsubscribe()
	o.ManualPause(60)
	drain(t, o)
	if len(seen) != before {
		t.Error("observer still notified after unsubscribe")
	}
}

func TestResetDiscardsMessagesAndErrors(t *testing.T) {
	player := testsupport.NewFakePlayer(600)
	o := newTestOrchestrator(t, player)
	player.FailEverything()

	o.RequestPause()
	drain(t, o)
	player.FailFlag(false)

	o.Reset()
	ctx := o.GetContext()
	if len(ctx.Messages) != 0 {
		t.Errorf("messages = %d, want 0", len(ctx.Messages))
	}
	if ctx.LastErr != nil {
		t.Errorf("last error = %v, want nil", ctx.LastErr)
	}
	if got := len(o.DeadLetters()); got != 0 {
		t.Errorf("dead letters = %d, want 0", got)
	}
}

func TestVideoEndedRemovesPendingPrompt(t *testing.T) {
	player := testsupport.NewFakePlayer(600)
	player.SetPaused(true)
	o := newTestOrchestrator(t, player)

	o.AgentButton(message.AgentPath)
	drain(t, o)

	o.VideoEnded()
	ctx := drain(t, o)
	if len(ctx.Messages) != 0 {
		t.Fatalf("messages = %d, want 0", len(ctx.Messages))
	}
}

type failingContent struct{}

func (failingContent) PromptText(agentType message.AgentType, _ agent.VideoContext) string {
	return "Want " + string(agentType) + " assistance?"
}

func (failingContent) GenerateResponse(context.Context, message.AgentType, agent.VideoContext) (string, error) {
	return "", errors.New("model offline")
}
