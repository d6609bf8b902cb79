package contract

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// NoToolsExecuted is the summary of a request whose plan was empty.
const NoToolsExecuted = "No tools executed."

type PlanStep struct {
	Tool  string         `json:"tool"`
	Args  map[string]any `json:"args,omitempty"`
	Label string         `json:"label,omitempty"`
}

// DisplayLabel is the label recorded in the execution log.
func (s PlanStep) DisplayLabel() string {
	if l := strings.TrimSpace(s.Label); l != "" {
		return l
	}
	return s.Tool
}

type Plan []PlanStep

type StepStatus string

const (
	StepPending   StepStatus = "pending"
	StepRunning   StepStatus = "running"
	StepSucceeded StepStatus = "succeeded"
	StepFailed    StepStatus = "failed"
)

type StepResult struct {
	Tool     string        `json:"tool"`
	Label    string        `json:"label"`
	Status   StepStatus    `json:"status"`
	Output   any           `json:"output,omitempty"`
	Err      error         `json:"-"`
	Fallback bool          `json:"fallback,omitempty"`
	Duration time.Duration `json:"duration"`
}

func (r StepResult) Failed() bool {
	return r.Status == StepFailed
}

// String renders the slot for the textual summary.
func (r StepResult) String() string {
	switch r.Status {
	case StepFailed:
		if r.Err == nil {
			return "error: unknown failure"
		}
		return "error: " + r.Err.Error()
	case StepPending, StepRunning:
		return "skipped: " + r.Label
	}

	switch v := r.Output.(type) {
	case nil:
		return ""
	case string:
		return v
	case fmt.Stringer:
		return v.String()
	default:
		raw, err := json.Marshal(v)
		if err != nil {
			return fmt.Sprint(v)
		}
		return string(raw)
	}
}

type LogEntry struct {
	RequestID string        `json:"request_id"`
	Label     string        `json:"label"`
	Duration  time.Duration `json:"duration"`
	Failed    bool          `json:"failed,omitempty"`
}

func (e LogEntry) DurationSeconds() float64 {
	return e.Duration.Seconds()
}

type ExecutionResult struct {
	RequestID string       `json:"request_id"`
	Results   []StepResult `json:"results"`
	Summary   string       `json:"summary"`
	Log       []LogEntry   `json:"log"`
}

// Summarize joins the rendered results, one per line, or returns the
// NoToolsExecuted sentinel.
func Summarize(results []StepResult) string {
	if len(results) == 0 {
		return NoToolsExecuted
	}
	lines := make([]string, 0, len(results))
	for _, r := range results {
		lines = append(lines, r.String())
	}
	return strings.Join(lines, "\n")
}

type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

func SystemMessage(content string) Message {
	return Message{Role: "system", Content: content}
}

func UserMessage(content string) Message {
	return Message{Role: "user", Content: content}
}
