package main

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"tutorsync/internal/message"
)

// scriptStep is one parsed line of a simulate script.
type scriptStep struct {
	op    string
	text  string
	value float64
	agent message.AgentType
	line  int
}

// defaultScript is the demo session used when no script file is supplied.
const defaultScript = `# Demo session: manual pause, a superseded prompt, an accepted quiz.
pause 150
button quiz
button reflect
reject
seek 210
pause 210
button quiz
accept
resume
end
`

// parseScript reads a simulate script: one operation per line, with '#'
// comments and blank lines ignored.
//
//	pause <seconds>        manual pause at a position
//	seek <seconds>         move the playhead
//	button <agent-type>    press an agent button (hint|quiz|reflect|path)
//	request-pause          system-initiated verified pause
//	accept                 accept the current prompt
//	reject                 reject the current prompt
//	resume                 report playback resumed
//	end                    report natural end of playback
//	disable <surface>      break an actuation surface (handle|media|synthetic|all)
func parseScript(r io.Reader) ([]scriptStep, error) {
	var steps []scriptStep
	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fields := strings.Fields(line)
		step := scriptStep{op: fields[0], line: lineNo}

		switch step.op {
		case "pause", "seek":
			if len(fields) != 2 {
				return nil, fmt.Errorf("line %d: %s requires a position in seconds", lineNo, step.op)
			}
			seconds, err := strconv.ParseFloat(fields[1], 64)
			if err != nil || seconds < 0 {
				return nil, fmt.Errorf("line %d: invalid position %q", lineNo, fields[1])
			}
			step.value = seconds
		case "button":
			if len(fields) != 2 {
				return nil, fmt.Errorf("line %d: button requires an agent type", lineNo)
			}
			agentType, ok := message.ParseAgentType(fields[1])
			if !ok {
				return nil, fmt.Errorf("line %d: unknown agent type %q", lineNo, fields[1])
			}
			step.agent = agentType
		case "disable":
			if len(fields) != 2 {
				return nil, fmt.Errorf("line %d: disable requires a surface", lineNo)
			}
			step.text = fields[1]
		case "accept", "reject", "resume", "end", "request-pause":
			if len(fields) != 1 {
				return nil, fmt.Errorf("line %d: %s takes no arguments", lineNo, step.op)
			}
		default:
			return nil, fmt.Errorf("line %d: unknown operation %q", lineNo, step.op)
		}
		steps = append(steps, step)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read script: %w", err)
	}
	if len(steps) == 0 {
		return nil, fmt.Errorf("script contains no operations")
	}
	return steps, nil
}
