package main

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"tutorsync/internal/agent"
	"tutorsync/internal/journal"
	"tutorsync/internal/logging"
	"tutorsync/internal/message"
	"tutorsync/internal/notifications"
	"tutorsync/internal/orchestrator"
	"tutorsync/internal/textutil"
)

func newSimulateCommand(ctx *commandContext) *cobra.Command {
	var scriptPath string
	var courseTitle string
	var lectureTitle string
	var duration float64
	var noJournal bool

	cmd := &cobra.Command{
		Use:   "simulate",
		Short: "Run a scripted session against a simulated player",
		Long: "Simulate drives the orchestrator with a script of play/pause/button\n" +
			"events against an in-memory player and prints the resulting transcript.\n" +
			"Without --script a small demo session is used.",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			steps, err := loadScript(scriptPath)
			if err != nil {
				return err
			}

			logger, err := logging.NewFromConfig(cfg)
			if err != nil {
				return fmt.Errorf("initialize logging: %w", err)
			}

			player := newSimPlayer(duration)
			content := agent.NewFromConfig(cfg, logger)
			notifier := notifications.NewService(cfg)

			opts := []orchestrator.Option{
				orchestrator.WithLecture(courseTitle, lectureTitle),
				orchestrator.WithNotifier(notifier),
			}

			var store *journal.Store
			var session *journal.Session
			if cfg.Journal.Enabled && !noJournal {
				store, err = journal.Open(cfg)
				if err != nil {
					return fmt.Errorf("open journal: %w", err)
				}
				defer store.Close()
				session, err = store.StartSession(cmd.Context(), courseTitle, lectureTitle)
				if err != nil {
					return fmt.Errorf("start journal session: %w", err)
				}
				opts = append(opts, orchestrator.WithRecorder(store, session.ID))
			}

			o := orchestrator.New(cfg, player, content, logger, opts...)
			defer o.Close()

			out := cmd.OutOrStdout()
			started := time.Now()
			_ = notifier.NotifySessionStarted(cmd.Context(), courseTitle, lectureTitle)

			dispatched, err := runScript(cmd, o, player, steps, out)
			if err != nil {
				return err
			}

			if err := o.WaitIdle(cmd.Context()); err != nil {
				return fmt.Errorf("drain queue: %w", err)
			}

			final := o.GetContext()
			printTranscript(out, final)
			printSessionSummary(out, o, final)

			deadLetters := len(o.DeadLetters())
			_ = notifier.NotifySessionCompleted(cmd.Context(), dispatched, deadLetters, time.Since(started))
			if session != nil {
				if err := store.EndSession(cmd.Context(), session.ID); err != nil {
					return fmt.Errorf("end journal session: %w", err)
				}
				fmt.Fprintf(out, "Journaled as session %s\n", session.ID)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&scriptPath, "script", "s", "", "Path to a session script (defaults to a demo session)")
	cmd.Flags().StringVar(&courseTitle, "course", "Sample Course", "Course title for the session")
	cmd.Flags().StringVar(&lectureTitle, "lecture", "Sample Lecture", "Lecture title for the session")
	cmd.Flags().Float64Var(&duration, "duration", 600, "Simulated video duration in seconds")
	cmd.Flags().BoolVar(&noJournal, "no-journal", false, "Skip journaling this session")
	return cmd
}

func loadScript(path string) ([]scriptStep, error) {
	if strings.TrimSpace(path) == "" {
		return parseScript(strings.NewReader(defaultScript))
	}
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open script: %w", err)
	}
	defer file.Close()
	steps, err := parseScript(file)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return steps, nil
}

// runScript applies steps one at a time, draining the queue between steps so
// the printed event log matches execution order. Returns how many intents
// were dispatched.
func runScript(cmd *cobra.Command, o *orchestrator.Orchestrator, player *simPlayer, steps []scriptStep, out io.Writer) (int, error) {
	dispatched := 0
	for _, step := range steps {
		switch step.op {
		case "pause":
			player.scriptPause(step.value)
			o.ManualPause(step.value)
			dispatched++
			fmt.Fprintf(out, "-> manual pause at %s\n", message.FormatTimestamp(step.value))
		case "seek":
			player.seek(step.value)
			fmt.Fprintf(out, "-> seek to %s\n", message.FormatTimestamp(step.value))
			continue
		case "button":
			o.AgentButton(step.agent)
			dispatched++
			fmt.Fprintf(out, "-> %s button\n", step.agent)
		case "request-pause":
			o.RequestPause()
			dispatched++
			fmt.Fprintln(out, "-> request pause")
		case "accept", "reject":
			target := o.GetContext().CurrentUnactivatedID
			if target == "" {
				fmt.Fprintf(out, "-> %s skipped: no pending prompt\n", step.op)
				continue
			}
			if step.op == "accept" {
				o.Accept(target)
			} else {
				o.Reject(target)
			}
			dispatched++
			fmt.Fprintf(out, "-> %s prompt\n", step.op)
		case "resume":
			o.VideoResumed()
			dispatched++
			fmt.Fprintln(out, "-> video resumed")
		case "end":
			o.VideoEnded()
			dispatched++
			fmt.Fprintln(out, "-> video ended")
		case "disable":
			if !player.disable(step.text) {
				return dispatched, fmt.Errorf("line %d: unknown surface %q", step.line, step.text)
			}
			fmt.Fprintf(out, "-> disabled %s actuation\n", step.text)
			continue
		}

		if err := o.WaitIdle(cmd.Context()); err != nil {
			return dispatched, fmt.Errorf("drain queue: %w", err)
		}
	}
	return dispatched, nil
}

func printTranscript(out io.Writer, ctx *orchestrator.Context) {
	for _, line := range renderSectionHeader("Transcript", shouldColorize(out)) {
		fmt.Fprintln(out, line)
	}
	if len(ctx.Messages) == 0 {
		fmt.Fprintln(out, "(no messages)")
		return
	}
	rows := make([][]string, 0, len(ctx.Messages))
	for i, m := range ctx.Messages {
		rows = append(rows, []string{
			fmt.Sprintf("%d", i+1),
			string(m.Kind),
			string(m.AgentType),
			string(m.Lifecycle),
			textutil.Truncate(m.Text, 60),
		})
	}
	fmt.Fprintln(out, renderTable(
		[]string{"#", "Kind", "Agent", "Lifecycle", "Text"},
		rows,
		[]columnAlignment{alignRight, alignLeft, alignLeft, alignLeft, alignLeft},
	))
}

func printSessionSummary(out io.Writer, o *orchestrator.Orchestrator, ctx *orchestrator.Context) {
	fmt.Fprintf(out, "Playback: %s at %s\n", ctx.State, message.FormatTimestamp(ctx.Playback.CurrentTime))
	if ctx.LastErr != nil {
		fmt.Fprintf(out, "Last error: %v\n", ctx.LastErr)
	}
	if deadLetters := o.DeadLetters(); len(deadLetters) > 0 {
		for _, dead := range deadLetters {
			fmt.Fprintf(out, "Dead-lettered: %s after %d attempts (%v)\n", dead.Kind, dead.Attempts, dead.LastErr)
		}
	}
}
