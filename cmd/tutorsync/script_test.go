package main

import (
	"strings"
	"testing"

	"tutorsync/internal/message"
)

func TestParseScriptDefault(t *testing.T) {
	steps, err := parseScript(strings.NewReader(defaultScript))
	if err != nil {
		t.Fatalf("parseScript: %v", err)
	}
	if len(steps) != 10 {
		t.Fatalf("expected 10 steps, got %d", len(steps))
	}
	if steps[0].op != "pause" || steps[0].value != 150 {
		t.Fatalf("unexpected first step: %+v", steps[0])
	}
	if steps[1].op != "button" || steps[1].agent != message.AgentQuiz {
		t.Fatalf("unexpected second step: %+v", steps[1])
	}
	if steps[len(steps)-1].op != "end" {
		t.Fatalf("expected final step end, got %+v", steps[len(steps)-1])
	}
}

func TestParseScriptSkipsCommentsAndBlanks(t *testing.T) {
	input := "# header\n\n  pause 30\n# trailing\nresume\n"
	steps, err := parseScript(strings.NewReader(input))
	if err != nil {
		t.Fatalf("parseScript: %v", err)
	}
	if len(steps) != 2 {
		t.Fatalf("expected 2 steps, got %d", len(steps))
	}
	if steps[0].line != 3 {
		t.Fatalf("expected line number 3 for first step, got %d", steps[0].line)
	}
}

func TestParseScriptErrors(t *testing.T) {
	cases := []struct {
		name  string
		input string
		want  string
	}{
		{"unknown op", "rewind 30\n", "unknown operation"},
		{"missing position", "pause\n", "requires a position"},
		{"negative position", "seek -5\n", "invalid position"},
		{"bad agent type", "button essay\n", "unknown agent type"},
		{"extra argument", "resume now\n", "takes no arguments"},
		{"empty script", "# only comments\n", "no operations"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := parseScript(strings.NewReader(tc.input))
			if err == nil {
				t.Fatalf("expected error for %q", tc.input)
			}
			if !strings.Contains(err.Error(), tc.want) {
				t.Fatalf("expected %q in error, got %v", tc.want, err)
			}
		})
	}
}
