package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"tutorsync/internal/journal"
	"tutorsync/internal/textutil"
)

func newTranscriptCommand(ctx *commandContext) *cobra.Command {
	var exportDir string

	cmd := &cobra.Command{
		Use:   "transcript [session-id]",
		Short: "Show the journaled commands and transitions for a session",
		Long: "Transcript replays a journaled session from the local journal\n" +
			"database. Without a session id the most recent session is shown.",
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			store, err := journal.Open(cfg)
			if err != nil {
				return fmt.Errorf("open journal: %w", err)
			}
			defer store.Close()

			session, err := resolveSession(cmd, store, args)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			colorize := shouldColorize(out)
			titler := cases.Title(language.Und)

			for _, line := range renderSectionHeader("Session", colorize) {
				fmt.Fprintln(out, line)
			}
			fmt.Fprintf(out, "%s\n", session.ID)
			fmt.Fprintf(out, "Course:  %s\n", orPlaceholder(session.CourseTitle))
			fmt.Fprintf(out, "Lecture: %s\n", orPlaceholder(session.LectureTitle))
			fmt.Fprintf(out, "Started: %s\n", session.StartedAt.Format(time.RFC1123))
			if session.Ended {
				fmt.Fprintf(out, "Ended:   %s\n", session.EndedAt.Format(time.RFC1123))
			} else {
				fmt.Fprintln(out, "Ended:   still open")
			}
			fmt.Fprintln(out)

			commands, err := store.Commands(cmd.Context(), session.ID)
			if err != nil {
				return fmt.Errorf("load commands: %w", err)
			}
			for _, line := range renderSectionHeader("Commands", colorize) {
				fmt.Fprintln(out, line)
			}
			if len(commands) == 0 {
				fmt.Fprintln(out, "(none)")
			} else {
				rows := make([][]string, 0, len(commands))
				for _, rec := range commands {
					rows = append(rows, []string{
						rec.RecordedAt.Format("15:04:05"),
						commandLabel(titler, rec.Kind),
						fmt.Sprintf("%d", rec.Attempts),
						rec.Status,
						textutil.Truncate(rec.Error, 48),
					})
				}
				fmt.Fprintln(out, renderTable(
					[]string{"Time", "Command", "Attempts", "Status", "Error"},
					rows,
					[]columnAlignment{alignLeft, alignLeft, alignRight, alignLeft, alignLeft},
				))
			}
			fmt.Fprintln(out)

			transitions, err := store.Transitions(cmd.Context(), session.ID)
			if err != nil {
				return fmt.Errorf("load transitions: %w", err)
			}
			for _, line := range renderSectionHeader("Transitions", colorize) {
				fmt.Fprintln(out, line)
			}
			if len(transitions) == 0 {
				fmt.Fprintln(out, "(none)")
				return nil
			}
			rows := make([][]string, 0, len(transitions))
			for _, rec := range transitions {
				pending := "-"
				if rec.UnactivatedID != "" {
					pending = "yes"
				}
				rows = append(rows, []string{
					rec.RecordedAt.Format("15:04:05"),
					rec.PlaybackState,
					fmt.Sprintf("%d", rec.MessageCount),
					pending,
					textutil.Truncate(rec.LastError, 48),
				})
			}
			fmt.Fprintln(out, renderTable(
				[]string{"Time", "Playback", "Messages", "Pending Prompt", "Last Error"},
				rows,
				[]columnAlignment{alignLeft, alignLeft, alignRight, alignLeft, alignLeft},
			))

			if exportDir != "" {
				path, err := exportTranscript(exportDir, session, commands, transitions)
				if err != nil {
					return fmt.Errorf("export transcript: %w", err)
				}
				fmt.Fprintf(out, "\nExported to %s\n", path)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&exportDir, "export", "", "Write a plain-text copy of the transcript under this directory")
	return cmd
}

// exportTranscript writes a plain-text transcript file, grouped by course:
// <dir>/<course-token>/<lecture>-<session-prefix>.txt.
func exportTranscript(dir string, session *journal.Session, commands []journal.CommandRecord, transitions []journal.TransitionRecord) (string, error) {
	courseDir := filepath.Join(dir, textutil.SanitizeToken(session.CourseTitle))
	if err := os.MkdirAll(courseDir, 0o755); err != nil {
		return "", err
	}
	name := textutil.SanitizeFileName(session.LectureTitle)
	if name == "" {
		name = "session"
	}
	prefix := session.ID
	if len(prefix) > 8 {
		prefix = prefix[:8]
	}
	path := filepath.Join(courseDir, fmt.Sprintf("%s-%s.txt", name, prefix))

	var b strings.Builder
	fmt.Fprintf(&b, "Session %s\n", session.ID)
	fmt.Fprintf(&b, "Course:  %s\n", orPlaceholder(session.CourseTitle))
	fmt.Fprintf(&b, "Lecture: %s\n", orPlaceholder(session.LectureTitle))
	fmt.Fprintf(&b, "Started: %s\n\n", session.StartedAt.Format(time.RFC1123))
	fmt.Fprintln(&b, "Commands:")
	for _, rec := range commands {
		fmt.Fprintf(&b, "  %s %-14s attempts=%d status=%s", rec.RecordedAt.Format("15:04:05"), rec.Kind, rec.Attempts, rec.Status)
		if rec.Error != "" {
			fmt.Fprintf(&b, " error=%s", rec.Error)
		}
		fmt.Fprintln(&b)
	}
	fmt.Fprintln(&b, "\nTransitions:")
	for _, rec := range transitions {
		fmt.Fprintf(&b, "  %s %-13s messages=%d", rec.RecordedAt.Format("15:04:05"), rec.PlaybackState, rec.MessageCount)
		if rec.UnactivatedID != "" {
			fmt.Fprint(&b, " pending-prompt")
		}
		if rec.LastError != "" {
			fmt.Fprintf(&b, " error=%s", rec.LastError)
		}
		fmt.Fprintln(&b)
	}
	if err := os.WriteFile(path, []byte(b.String()), 0o644); err != nil {
		return "", err
	}
	return path, nil
}

func resolveSession(cmd *cobra.Command, store *journal.Store, args []string) (*journal.Session, error) {
	sessions, err := store.Sessions(cmd.Context())
	if err != nil {
		return nil, fmt.Errorf("load sessions: %w", err)
	}
	if len(sessions) == 0 {
		return nil, fmt.Errorf("journal has no sessions yet")
	}
	if len(args) == 0 {
		return &sessions[0], nil
	}
	want := strings.TrimSpace(args[0])
	for i := range sessions {
		if sessions[i].ID == want || strings.HasPrefix(sessions[i].ID, want) {
			return &sessions[i], nil
		}
	}
	return nil, fmt.Errorf("no session matches %q", want)
}

// commandLabel turns a wire kind like REQUEST_PAUSE into "Request Pause".
func commandLabel(titler cases.Caser, kind string) string {
	return titler.String(strings.ToLower(strings.ReplaceAll(kind, "_", " ")))
}

func orPlaceholder(value string) string {
	if strings.TrimSpace(value) == "" {
		return "(untitled)"
	}
	return value
}
