package notifications_test

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"tutorsync/internal/config"
	"tutorsync/internal/notifications"
)

func TestNewServiceReturnsNoopWhenTopicMissing(t *testing.T) {
	cfg := config.Default()
	cfg.Notifications.NtfyTopic = ""
	svc := notifications.NewService(&cfg)
	if err := svc.NotifySessionStarted(context.Background(), "Operating Systems", "Scheduling"); err != nil {
		t.Fatalf("expected noop notifier to return nil, got %v", err)
	}
}

type captured struct {
	title    string
	tags     string
	priority string
	body     string
}

func newCapturingService(t *testing.T, out *[]captured) notifications.Service {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(r.Body)
		if err != nil {
			t.Errorf("read body: %v", err)
		}
		*out = append(*out, captured{
			title:    r.Header.Get("Title"),
			tags:     r.Header.Get("Tags"),
			priority: r.Header.Get("Priority"),
			body:     string(body),
		})
		w.WriteHeader(http.StatusOK)
	}))
	t.Cleanup(server.Close)

	cfg := config.Default()
	cfg.Notifications.NtfyTopic = server.URL
	cfg.Notifications.Sessions = true
	cfg.Notifications.DeadLetters = true
	cfg.Notifications.Errors = true
	return notifications.NewService(&cfg)
}

func TestNtfyServiceFormatsMessages(t *testing.T) {
	var got []captured
	svc := newCapturingService(t, &got)
	ctx := context.Background()

	if err := svc.NotifySessionStarted(ctx, "Operating Systems", "Scheduling"); err != nil {
		t.Fatalf("NotifySessionStarted: %v", err)
	}
	if err := svc.NotifySessionCompleted(ctx, 7, 0, 90*time.Second); err != nil {
		t.Fatalf("NotifySessionCompleted: %v", err)
	}
	if err := svc.NotifyCommandDeadLettered(ctx, "REQUEST_PAUSE", 3, errors.New("pause unverified")); err != nil {
		t.Fatalf("NotifyCommandDeadLettered: %v", err)
	}
	if err := svc.NotifyContentServiceError(ctx, "quiz", errors.New("model offline")); err != nil {
		t.Fatalf("NotifyContentServiceError: %v", err)
	}

	if len(got) != 4 {
		t.Fatalf("requests = %d, want 4", len(got))
	}
	if got[0].title != "TutorSync - Session Started" {
		t.Errorf("title = %q", got[0].title)
	}
	if !strings.Contains(got[0].body, "Operating Systems / Scheduling") {
		t.Errorf("body = %q", got[0].body)
	}
	if !strings.Contains(got[1].body, "7 commands in 1m30s") {
		t.Errorf("body = %q", got[1].body)
	}
	if got[2].priority != "high" {
		t.Errorf("dead-letter priority = %q", got[2].priority)
	}
	if !strings.Contains(got[2].body, "REQUEST_PAUSE gave up after 3 attempts") {
		t.Errorf("body = %q", got[2].body)
	}
	if !strings.Contains(got[3].body, "Content generation failed for quiz: model offline") {
		t.Errorf("body = %q", got[3].body)
	}
}

func TestNtfyServiceHonorsEventToggles(t *testing.T) {
	var got []captured
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = append(got, captured{title: r.Header.Get("Title")})
	}))
	defer server.Close()

	cfg := config.Default()
	cfg.Notifications.NtfyTopic = server.URL
	cfg.Notifications.Sessions = false
	cfg.Notifications.DeadLetters = false
	cfg.Notifications.Errors = false
	svc := notifications.NewService(&cfg)

	ctx := context.Background()
	if err := svc.NotifySessionStarted(ctx, "a", "b"); err != nil {
		t.Fatalf("NotifySessionStarted: %v", err)
	}
	if err := svc.NotifyCommandDeadLettered(ctx, "SHOW_AGENT", 3, nil); err != nil {
		t.Fatalf("NotifyCommandDeadLettered: %v", err)
	}
	if err := svc.NotifyActuationFailed(ctx, "pause", nil); err != nil {
		t.Fatalf("NotifyActuationFailed: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("expected no requests with toggles off, got %d", len(got))
	}

	// TestNotification ignores the toggles.
	if err := svc.TestNotification(ctx); err != nil {
		t.Fatalf("TestNotification: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("expected test notification to be sent, got %d requests", len(got))
	}
}

func TestNtfyServiceSurfacesHTTPFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "forbidden", http.StatusForbidden)
	}))
	defer server.Close()

	cfg := config.Default()
	cfg.Notifications.NtfyTopic = server.URL
	cfg.Notifications.Errors = true
	svc := notifications.NewService(&cfg)

	err := svc.NotifyActuationFailed(context.Background(), "pause", errors.New("unverified"))
	if err == nil {
		t.Fatal("expected error from non-2xx response")
	}
	if !strings.Contains(err.Error(), "ntfy returned 403") {
		t.Errorf("err = %v", err)
	}
}
