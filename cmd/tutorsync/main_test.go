package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pelletier/go-toml/v2"

	"tutorsync/internal/config"
)

func writeCLIConfig(t *testing.T) string {
	t.Helper()

	base := t.TempDir()
	cfg := config.Default()
	cfg.Paths.LogDir = filepath.Join(base, "logs")
	cfg.Paths.JournalDir = filepath.Join(base, "journal")
	cfg.Logging.Level = "error"
	cfg.Queue.RetryBaseDelayMS = 1
	cfg.Queue.RetryMaxDelayMS = 2
	cfg.Queue.StabilizationDelayMS = 0
	cfg.Actuation.VerifyPollCount = 2
	cfg.Actuation.VerifyPollIntervalMS = 1

	data, err := toml.Marshal(cfg)
	if err != nil {
		t.Fatalf("marshal config: %v", err)
	}
	path := filepath.Join(base, "config.toml")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()

	var out bytes.Buffer
	cmd := newRootCommand()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestConfigInitCommand(t *testing.T) {
	target := filepath.Join(t.TempDir(), "nested", "config.toml")

	output, err := runCLI(t, "config", "init", "--path", target)
	if err != nil {
		t.Fatalf("config init: %v", err)
	}
	if !strings.Contains(output, target) {
		t.Fatalf("expected output to mention %s, got %q", target, output)
	}
	if _, err := os.Stat(target); err != nil {
		t.Fatalf("expected sample config on disk: %v", err)
	}

	if _, err := runCLI(t, "config", "init", "--path", target); err == nil {
		t.Fatal("expected second init without --overwrite to fail")
	}
	if _, err := runCLI(t, "config", "init", "--path", target, "--overwrite"); err != nil {
		t.Fatalf("config init --overwrite: %v", err)
	}
}

func TestSimulateRunsDefaultScript(t *testing.T) {
	configPath := writeCLIConfig(t)

	output, err := runCLI(t, "--config", configPath, "simulate",
		"--course", "Intro to Signals", "--lecture", "Sampling")
	if err != nil {
		t.Fatalf("simulate: %v\noutput:\n%s", err, output)
	}
	if !strings.Contains(output, "Transcript") {
		t.Fatalf("expected transcript section, got:\n%s", output)
	}
	if !strings.Contains(output, "ai-response") {
		t.Fatalf("expected an accepted response in the transcript, got:\n%s", output)
	}
	if !strings.Contains(output, "Journaled as session") {
		t.Fatalf("expected journaled session id, got:\n%s", output)
	}
}

func TestSimulateWithCustomScript(t *testing.T) {
	configPath := writeCLIConfig(t)
	scriptPath := filepath.Join(t.TempDir(), "session.txt")
	script := strings.Join([]string{
		"# short session",
		"pause 90",
		"button quiz",
		"accept",
		"resume",
	}, "\n")
	if err := os.WriteFile(scriptPath, []byte(script), 0o644); err != nil {
		t.Fatalf("write script: %v", err)
	}

	output, err := runCLI(t, "--config", configPath, "simulate",
		"--script", scriptPath, "--no-journal")
	if err != nil {
		t.Fatalf("simulate: %v\noutput:\n%s", err, output)
	}
	if !strings.Contains(output, "1:30") {
		t.Fatalf("expected pause timestamp in output, got:\n%s", output)
	}
	if !strings.Contains(output, "quiz") {
		t.Fatalf("expected quiz prompt in transcript, got:\n%s", output)
	}
	if strings.Contains(output, "Journaled as session") {
		t.Fatalf("expected --no-journal to skip journaling, got:\n%s", output)
	}
}

func TestJournalAndTranscriptCommands(t *testing.T) {
	configPath := writeCLIConfig(t)

	if output, err := runCLI(t, "--config", configPath, "simulate",
		"--course", "Linear Algebra", "--lecture", "Eigenvectors"); err != nil {
		t.Fatalf("simulate: %v\noutput:\n%s", err, output)
	}

	listOutput, err := runCLI(t, "--config", configPath, "journal", "list")
	if err != nil {
		t.Fatalf("journal list: %v", err)
	}
	if !strings.Contains(listOutput, "Linear Algebra") {
		t.Fatalf("expected session in journal list, got:\n%s", listOutput)
	}

	healthOutput, err := runCLI(t, "--config", configPath, "journal", "health")
	if err != nil {
		t.Fatalf("journal health: %v", err)
	}
	if !strings.Contains(healthOutput, "Sessions:     1") {
		t.Fatalf("expected one session in health summary, got:\n%s", healthOutput)
	}

	transcriptOutput, err := runCLI(t, "--config", configPath, "transcript")
	if err != nil {
		t.Fatalf("transcript: %v", err)
	}
	if !strings.Contains(transcriptOutput, "Eigenvectors") {
		t.Fatalf("expected lecture title, got:\n%s", transcriptOutput)
	}
	if !strings.Contains(transcriptOutput, "Manual Pause") {
		t.Fatalf("expected humanized command labels, got:\n%s", transcriptOutput)
	}

	exportDir := t.TempDir()
	if _, err := runCLI(t, "--config", configPath, "transcript", "--export", exportDir); err != nil {
		t.Fatalf("transcript --export: %v", err)
	}
	exported, err := filepath.Glob(filepath.Join(exportDir, "linear_algebra", "Eigenvectors-*.txt"))
	if err != nil || len(exported) != 1 {
		t.Fatalf("expected one exported transcript, got %v (err %v)", exported, err)
	}
	data, err := os.ReadFile(exported[0])
	if err != nil {
		t.Fatalf("read export: %v", err)
	}
	if !strings.Contains(string(data), "MANUAL_PAUSE") {
		t.Fatalf("expected command records in export, got:\n%s", data)
	}
}

func TestTranscriptRejectsUnknownSession(t *testing.T) {
	configPath := writeCLIConfig(t)

	if output, err := runCLI(t, "--config", configPath, "simulate"); err != nil {
		t.Fatalf("simulate: %v\noutput:\n%s", err, output)
	}
	if _, err := runCLI(t, "--config", configPath, "transcript", "no-such-session"); err == nil {
		t.Fatal("expected unknown session id to fail")
	}
}
