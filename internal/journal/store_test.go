package journal_test

import (
	"context"
	"errors"
	"testing"

	"tutorsync/internal/journal"
	"tutorsync/internal/testsupport"
)

func TestStoreRoundTrip(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store, err := journal.Open(cfg)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer store.Close()

	ctx := context.Background()
	session, err := store.StartSession(ctx, "Operating Systems", "Scheduling")
	if err != nil {
		t.Fatalf("StartSession: %v", err)
	}
	if session.ID == "" {
		t.Fatal("expected session id")
	}

	records := []journal.CommandRecord{
		{SessionID: session.ID, CommandID: "c1", Kind: "MANUAL_PAUSE", Attempts: 1, Status: "done"},
		{SessionID: session.ID, CommandID: "c2", Kind: "REQUEST_PAUSE", Attempts: 3, Status: "failed", Error: "pause unverified"},
	}
	for _, rec := range records {
		if err := store.RecordCommand(ctx, rec); err != nil {
			t.Fatalf("RecordCommand: %v", err)
		}
	}
	if err := store.RecordTransition(ctx, journal.TransitionRecord{
		SessionID:     session.ID,
		PlaybackState: "paused",
		MessageCount:  2,
		UnactivatedID: "m1",
	}); err != nil {
		t.Fatalf("RecordTransition: %v", err)
	}
	if err := store.EndSession(ctx, session.ID); err != nil {
		t.Fatalf("EndSession: %v", err)
	}

	sessions, err := store.Sessions(ctx)
	if err != nil {
		t.Fatalf("Sessions: %v", err)
	}
	if len(sessions) != 1 {
		t.Fatalf("sessions = %d, want 1", len(sessions))
	}
	if !sessions[0].Ended {
		t.Error("expected session to be marked ended")
	}
	if sessions[0].CourseTitle != "Operating Systems" {
		t.Errorf("course = %q", sessions[0].CourseTitle)
	}

	commands, err := store.Commands(ctx, session.ID)
	if err != nil {
		t.Fatalf("Commands: %v", err)
	}
	if len(commands) != 2 {
		t.Fatalf("commands = %d, want 2", len(commands))
	}
	if commands[0].Kind != "MANUAL_PAUSE" || commands[1].Kind != "REQUEST_PAUSE" {
		t.Errorf("command order = %s, %s", commands[0].Kind, commands[1].Kind)
	}
	if commands[1].Error != "pause unverified" {
		t.Errorf("command error = %q", commands[1].Error)
	}

	transitions, err := store.Transitions(ctx, session.ID)
	if err != nil {
		t.Fatalf("Transitions: %v", err)
	}
	if len(transitions) != 1 {
		t.Fatalf("transitions = %d, want 1", len(transitions))
	}
	if transitions[0].UnactivatedID != "m1" {
		t.Errorf("unactivated id = %q", transitions[0].UnactivatedID)
	}

	health, err := store.HealthSummary(ctx)
	if err != nil {
		t.Fatalf("HealthSummary: %v", err)
	}
	if health.Sessions != 1 || health.Commands != 2 || health.Transitions != 1 {
		t.Errorf("health = %+v", health)
	}
	if health.DeadLettered != 1 {
		t.Errorf("dead lettered = %d, want 1", health.DeadLettered)
	}
}

func TestOpenRejectsSecondHolder(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store, err := journal.Open(cfg)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer store.Close()

	if _, err := journal.Open(cfg); !errors.Is(err, journal.ErrLocked) {
		t.Fatalf("second Open err = %v, want ErrLocked", err)
	}
}

func TestOpenReusesExistingDatabase(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store, err := journal.Open(cfg)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	session, err := store.StartSession(context.Background(), "a", "b")
	if err != nil {
		t.Fatalf("StartSession: %v", err)
	}
	if err := store.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	reopened, err := journal.Open(cfg)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer reopened.Close()

	commands, err := reopened.Commands(context.Background(), session.ID)
	if err != nil {
		t.Fatalf("Commands: %v", err)
	}
	if len(commands) != 0 {
		t.Fatalf("commands = %d, want 0", len(commands))
	}
	sessions, err := reopened.Sessions(context.Background())
	if err != nil {
		t.Fatalf("Sessions: %v", err)
	}
	if len(sessions) != 1 {
		t.Fatalf("sessions = %d, want 1", len(sessions))
	}
}
