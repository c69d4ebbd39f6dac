// Package batch implements the batch session (spec.md §4.10/§6): a
// long-lived store+embedder handle driven from stdin, one command per
// line, JSONL on stdout, with `|` pipelines fanning a command's output
// names into a downstream command. Grounded on internal/composite's
// PhaseFunc/Result shape for the envelope fields, generalized from a
// fixed five-phase waterfall to an open-ended line-at-a-time session.
package batch

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"io"
	"strings"

	"github.com/jamie8johnson/cqs/internal/cqserr"
)

var errLineTooLong = errors.New("batch line exceeds 1MB limit")

// MaxFanOut caps how many upstream names a pipeline stage feeds into the
// next stage (spec.md §4.10: "cap fan-out at 50 names per stage").
const MaxFanOut = 50

// MaxLineBytes rejects oversized batch input (spec.md §7:
// "batch line > 1MB" -> ResourceExhausted).
const MaxLineBytes = 1 << 20

// Handler runs one command against args and returns a JSON-marshalable
// result plus the list of names it produced, for pipelining into the
// next stage. Handlers that don't produce names return a nil slice.
type Handler func(ctx context.Context, args []string) (data any, names []string, err error)

// Session holds the command registry for one batch run. The caller
// assembles Handlers once per process against its own store/embedder/
// graph/retrieval handles, then Run drains stdin until quit/exit or EOF.
type Session struct {
	Handlers map[string]Handler
}

// commandLine is the JSONL shape for one non-piped command.
type commandLine struct {
	Command string `json:"command"`
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
}

// pipelineEnvelope is the JSONL shape for one `|`-separated pipeline
// (spec.md §6: `{"pipeline", "stages", "results":[{"_input","data"}],
// "errors":[], "total_inputs", "truncated"}`).
type pipelineEnvelope struct {
	Pipeline    string           `json:"pipeline"`
	Stages      []string         `json:"stages"`
	Results     []pipelineResult `json:"results"`
	Errors      []string         `json:"errors"`
	TotalInputs int              `json:"total_inputs"`
	Truncated   bool             `json:"truncated"`
}

type pipelineResult struct {
	Input string `json:"_input"`
	Data  any    `json:"data,omitempty"`
}

// Run reads one command per line from r until quit/exit/EOF, writing one
// JSONL object per line to w.
func (s *Session) Run(ctx context.Context, r io.Reader, w io.Writer) error {
	reader := bufio.NewReader(r)
	enc := json.NewEncoder(w)

	for {
		raw, readErr := reader.ReadString('\n')
		if readErr != nil && readErr != io.EOF {
			return readErr
		}
		if readErr == io.EOF && raw == "" {
			return nil
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		line := strings.TrimSpace(raw)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if line == "quit" || line == "exit" {
			return nil
		}
		if len(line) > MaxLineBytes {
			_ = enc.Encode(commandLine{Error: cqserr.New(cqserr.ResourceExhausted, "batch.Run", errLineTooLong).Error()})
			continue
		}

		stages := splitPipeline(line)
		if len(stages) == 1 {
			_ = enc.Encode(s.runSingle(ctx, stages[0]))
		} else {
			_ = enc.Encode(s.runPipeline(ctx, line, stages))
		}
	}
}

func (s *Session) runSingle(ctx context.Context, line string) commandLine {
	name, args := parseCommand(line)
	h, ok := s.Handlers[name]
	if !ok {
		return commandLine{Command: name, Error: "unknown command: " + name}
	}
	data, _, err := h(ctx, args)
	if err != nil {
		return commandLine{Command: name, Error: err.Error()}
	}
	return commandLine{Command: name, Data: data}
}

// runPipeline feeds every name the first stage produced into the second
// stage, then every name the second stage produced into the third, and
// so on, capping fan-out at MaxFanOut per stage.
func (s *Session) runPipeline(ctx context.Context, raw string, stages []string) pipelineEnvelope {
	env := pipelineEnvelope{Pipeline: raw, Stages: stages}

	firstName, firstArgs := parseCommand(stages[0])
	firstHandler, ok := s.Handlers[firstName]
	if !ok {
		env.Errors = append(env.Errors, "unknown command: "+firstName)
		return env
	}
	_, names, err := firstHandler(ctx, firstArgs)
	if err != nil {
		env.Errors = append(env.Errors, err.Error())
		return env
	}

	env.TotalInputs = len(names)
	if len(names) > MaxFanOut {
		names = names[:MaxFanOut]
		env.Truncated = true
	}

	for _, n := range names {
		current := []string{n}
		var data any
		for _, stage := range stages[1:] {
			name, args := parseCommand(stage)
			h, ok := s.Handlers[name]
			if !ok {
				env.Errors = append(env.Errors, "unknown command: "+name)
				break
			}
			d, next, err := h(ctx, append(append([]string{}, args...), current...))
			if err != nil {
				env.Errors = append(env.Errors, err.Error())
				break
			}
			data = d
			if next != nil {
				current = next
			}
		}
		env.Results = append(env.Results, pipelineResult{Input: n, Data: data})
	}
	return env
}

// splitPipeline splits line on unquoted `|` characters (spec.md §4.10:
// "quoted pipe characters are not treated as separators").
func splitPipeline(line string) []string {
	var stages []string
	var cur strings.Builder
	inQuotes := false
	for _, r := range line {
		switch {
		case r == '"':
			inQuotes = !inQuotes
			cur.WriteRune(r)
		case r == '|' && !inQuotes:
			stages = append(stages, strings.TrimSpace(cur.String()))
			cur.Reset()
		default:
			cur.WriteRune(r)
		}
	}
	stages = append(stages, strings.TrimSpace(cur.String()))
	return stages
}

// parseCommand splits a stage into its command name and whitespace-
// separated, quote-aware arguments.
func parseCommand(stage string) (string, []string) {
	fields := tokenize(stage)
	if len(fields) == 0 {
		return "", nil
	}
	return fields[0], fields[1:]
}

func tokenize(s string) []string {
	var fields []string
	var cur strings.Builder
	inQuotes := false
	flush := func() {
		if cur.Len() > 0 {
			fields = append(fields, cur.String())
			cur.Reset()
		}
	}
	for _, r := range s {
		switch {
		case r == '"':
			inQuotes = !inQuotes
		case r == ' ' && !inQuotes:
			flush()
		default:
			cur.WriteRune(r)
		}
	}
	flush()
	return fields
}
