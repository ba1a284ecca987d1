package notifications

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"tutorsync/internal/config"
)

const userAgent = "TutorSync-Go/0.1.0"

// Service defines the notification surface exposed to session components.
type Service interface {
	NotifySessionStarted(ctx context.Context, courseTitle, lectureTitle string) error
	NotifySessionCompleted(ctx context.Context, commands, deadLettered int, duration time.Duration) error
	NotifyCommandDeadLettered(ctx context.Context, kind string, attempts int, err error) error
	NotifyActuationFailed(ctx context.Context, op string, err error) error
	NotifyContentServiceError(ctx context.Context, agentType string, err error) error
	TestNotification(ctx context.Context) error
}

// NewService builds a notification service backed by ntfy when configured.
// When no ntfy topic is configured, a noop implementation is returned.
func NewService(cfg *config.Config) Service {
	topic := strings.TrimSpace(cfg.Notifications.NtfyTopic)
	if topic == "" {
		return noopService{}
	}

	timeout := time.Duration(cfg.Notifications.RequestTimeout) * time.Second
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	return &ntfyService{
		endpoint:    topic,
		client:      &http.Client{Timeout: timeout},
		sessions:    cfg.Notifications.Sessions,
		deadLetters: cfg.Notifications.DeadLetters,
		errors:      cfg.Notifications.Errors,
	}
}

type payload struct {
	title    string
	message  string
	tags     []string
	priority string
}

type ntfyService struct {
	endpoint    string
	client      *http.Client
	sessions    bool
	deadLetters bool
	errors      bool
}

func (n *ntfyService) NotifySessionStarted(ctx context.Context, courseTitle, lectureTitle string) error {
	if !n.sessions {
		return nil
	}
	courseTitle = strings.TrimSpace(courseTitle)
	lectureTitle = strings.TrimSpace(lectureTitle)
	if courseTitle == "" {
		courseTitle = "unknown course"
	}
	data := payload{
		title:   "TutorSync - Session Started",
		message: fmt.Sprintf("Session started: %s / %s", courseTitle, lectureTitle),
		tags:    []string{"tutorsync", "session", "started"},
	}
	return n.send(ctx, data)
}

func (n *ntfyService) NotifySessionCompleted(ctx context.Context, commands, deadLettered int, duration time.Duration) error {
	if !n.sessions {
		return nil
	}
	duration = duration.Round(time.Second)
	if duration < 0 {
		duration = 0
	}
	durationText := duration.String()
	if duration == 0 {
		durationText = "0s"
	}

	var title string
	var message string
	if deadLettered == 0 {
		title = "TutorSync - Session Complete"
		message = fmt.Sprintf("Session complete: %d commands in %s", commands, durationText)
	} else {
		title = "TutorSync - Session Complete (with errors)"
		message = fmt.Sprintf("Session complete: %d commands, %d dead-lettered in %s", commands, deadLettered, durationText)
	}

	data := payload{
		title:   title,
		message: message,
		tags:    []string{"tutorsync", "session", "completed"},
	}
	return n.send(ctx, data)
}

func (n *ntfyService) NotifyCommandDeadLettered(ctx context.Context, kind string, attempts int, err error) error {
	if !n.deadLetters {
		return nil
	}
	kind = strings.TrimSpace(kind)
	if kind == "" {
		kind = "unknown"
	}
	message := fmt.Sprintf("Command %s gave up after %d attempts", kind, attempts)
	if err != nil {
		message = fmt.Sprintf("%s: %s", message, strings.TrimSpace(err.Error()))
	}
	data := payload{
		title:    "TutorSync - Command Dead-Lettered",
		message:  message,
		tags:     []string{"tutorsync", "queue", "dead-letter"},
		priority: "high",
	}
	return n.send(ctx, data)
}

func (n *ntfyService) NotifyActuationFailed(ctx context.Context, op string, err error) error {
	if !n.errors {
		return nil
	}
	op = strings.TrimSpace(op)
	if op == "" {
		op = "actuation"
	}
	var builder strings.Builder
	builder.WriteString("Playback ")
	builder.WriteString(op)
	builder.WriteString(" could not be verified")
	if err != nil {
		builder.WriteString(": ")
		builder.WriteString(strings.TrimSpace(err.Error()))
	}
	data := payload{
		title:   "TutorSync - Actuation Failed",
		message: builder.String(),
		tags:    []string{"tutorsync", "playback", "alert"},
	}
	return n.send(ctx, data)
}

func (n *ntfyService) NotifyContentServiceError(ctx context.Context, agentType string, err error) error {
	if !n.errors {
		return nil
	}
	agentType = strings.TrimSpace(agentType)
	if agentType == "" {
		agentType = "unknown"
	}
	var builder strings.Builder
	builder.WriteString("Content generation failed for ")
	builder.WriteString(agentType)
	if err != nil {
		builder.WriteString(": ")
		builder.WriteString(strings.TrimSpace(err.Error()))
	}
	data := payload{
		title:    "TutorSync - Content Error",
		message:  builder.String(),
		tags:     []string{"tutorsync", "content", "alert"},
		priority: "high",
	}
	return n.send(ctx, data)
}

func (n *ntfyService) TestNotification(ctx context.Context) error {
	data := payload{
		title:    "TutorSync - Test",
		message:  "Notification system test",
		tags:     []string{"tutorsync", "test"},
		priority: "low",
	}
	return n.send(ctx, data)
}

func (n *ntfyService) send(ctx context.Context, data payload) error {
	if n == nil || n.client == nil {
		return nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.endpoint, strings.NewReader(data.message))
	if err != nil {
		return fmt.Errorf("build ntfy request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Content-Type", "text/plain; charset=utf-8")
	if data.title != "" {
		req.Header.Set("Title", data.title)
	}
	if len(data.tags) > 0 {
		req.Header.Set("Tags", strings.Join(data.tags, ","))
	}
	if data.priority != "" && data.priority != "default" {
		req.Header.Set("Priority", data.priority)
	}

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("send ntfy notification: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return fmt.Errorf("ntfy returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}

type noopService struct{}

func (noopService) NotifySessionStarted(context.Context, string, string) error             { return nil }
func (noopService) NotifySessionCompleted(context.Context, int, int, time.Duration) error  { return nil }
func (noopService) NotifyCommandDeadLettered(context.Context, string, int, error) error    { return nil }
func (noopService) NotifyActuationFailed(context.Context, string, error) error             { return nil }
func (noopService) NotifyContentServiceError(context.Context, string, error) error         { return nil }
func (noopService) TestNotification(context.Context) error                                 { return nil }
