package orchestratornode

import (
	"errors"
	"strings"
	"time"

	contractx "github.com/tanpawarit/demo-agent/agent/contract"
	executorx "github.com/tanpawarit/demo-agent/agent/executor"
	statex "github.com/tanpawarit/demo-agent/agent/state"
)

var (
	ErrInvalidMessage = errors.New("message is empty")
	ErrInvalidSession = statex.ErrInvalidSession
)

type GraphInput struct {
	SessionID string
	Text      string
	Options   executorx.Options
	Observer  func(contractx.LogEntry)
}

type GraphOutput struct {
	RequestID string
	Reply     string
	Result    contractx.ExecutionResult
	Err       error
}

// GraphState travels through every node of one request. It is never shared
// between requests.
type GraphState struct {
	RequestID string
	SessionID string
	Text      string
	Now       time.Time
	Options   executorx.Options

	Log     *executorx.Log
	Plan    contractx.Plan
	Result  contractx.ExecutionResult
	ExecErr error
}

func ValidateRequest(in GraphInput, nowFn func() time.Time, newID func() string) (*GraphState, error) {
	sessionID := strings.TrimSpace(in.SessionID)
	if sessionID == "" {
		return nil, ErrInvalidSession
	}

	text := strings.TrimSpace(in.Text)
	if text == "" {
		return nil, ErrInvalidMessage
	}

	requestID := newID()
	lg := executorx.NewLog(requestID)
	if in.Observer != nil {
		lg.Observe(in.Observer)
	}

	return &GraphState{
		RequestID: requestID,
		SessionID: sessionID,
		Text:      text,
		Now:       nowFn().UTC(),
		Options:   in.Options,
		Log:       lg,
	}, nil
}
