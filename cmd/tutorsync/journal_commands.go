package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"tutorsync/internal/journal"
	"tutorsync/internal/textutil"
)

func newJournalCommand(ctx *commandContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "journal",
		Short: "Inspect the local session journal",
	}
	cmd.AddCommand(newJournalListCommand(ctx))
	cmd.AddCommand(newJournalHealthCommand(ctx))
	return cmd
}

func newJournalListCommand(ctx *commandContext) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List journaled sessions, newest first",
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

			sessions, err := store.Sessions(cmd.Context())
			if err != nil {
				return fmt.Errorf("load sessions: %w", err)
			}
			out := cmd.OutOrStdout()
			if len(sessions) == 0 {
				fmt.Fprintln(out, "Journal has no sessions yet.")
				return nil
			}
			if limit > 0 && len(sessions) > limit {
				sessions = sessions[:limit]
			}
			rows := make([][]string, 0, len(sessions))
			for _, session := range sessions {
				ended := "open"
				if session.Ended {
					ended = session.EndedAt.Format(time.RFC3339)
				}
				rows = append(rows, []string{
					session.ID,
					textutil.Truncate(session.CourseTitle, 32),
					textutil.Truncate(session.LectureTitle, 32),
					session.StartedAt.Format(time.RFC3339),
					ended,
				})
			}
			fmt.Fprintln(out, renderTable(
				[]string{"Session", "Course", "Lecture", "Started", "Ended"},
				rows,
				[]columnAlignment{alignLeft, alignLeft, alignLeft, alignLeft, alignLeft},
			))
			return nil
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 20, "Maximum number of sessions to show (0 for all)")
	return cmd
}

func newJournalHealthCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Show journal database totals",
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

			health, err := store.HealthSummary(cmd.Context())
			if err != nil {
				return fmt.Errorf("summarize journal: %w", err)
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Database:     %s\n", health.Path)
			fmt.Fprintf(out, "Sessions:     %d\n", health.Sessions)
			fmt.Fprintf(out, "Commands:     %d\n", health.Commands)
			fmt.Fprintf(out, "Transitions:  %d\n", health.Transitions)
			fmt.Fprintf(out, "Dead letters: %d\n", health.DeadLettered)
			return nil
		},
	}
}
