package orchestrator

import (
	"context"
	"errors"
	"time"

	"github.com/cloudwego/eino/compose"
	"github.com/google/uuid"

	contractx "github.com/tanpawarit/demo-agent/agent/contract"
	executorx "github.com/tanpawarit/demo-agent/agent/executor"
	nodex "github.com/tanpawarit/demo-agent/agent/nodes/orchestrator"
	statex "github.com/tanpawarit/demo-agent/agent/state"
)

var (
	ErrInvalidMessage = nodex.ErrInvalidMessage
	ErrInvalidSession = nodex.ErrInvalidSession
)

type Config struct {
	Mode        executorx.Mode
	FailFast    bool
	StepTimeout time.Duration
}

func (c Config) options() executorx.Options {
	return executorx.Options{
		Mode:        c.Mode,
		FailFast:    c.FailFast,
		StepTimeout: c.StepTimeout,
	}
}

// Response is the outcome of one request. Result.Log holds only the entries
// produced by that request.
type Response struct {
	RequestID string
	Reply     string
	Result    contractx.ExecutionResult
}

type RequestOption func(*nodex.GraphInput)

// WithObserver streams log entries of the request while it runs.
func WithObserver(fn func(contractx.LogEntry)) RequestOption {
	return func(in *nodex.GraphInput) { in.Observer = fn }
}

func WithMode(mode executorx.Mode) RequestOption {
	return func(in *nodex.GraphInput) { in.Options.Mode = mode }
}

func WithFailFast(enabled bool) RequestOption {
	return func(in *nodex.GraphInput) { in.Options.FailFast = enabled }
}

type Orchestrator struct {
	planner  contractx.Planner
	executor *executorx.Executor
	sessions *statex.Manager
	defaults executorx.Options

	graphRunner compose.Runnable[nodex.GraphInput, nodex.GraphOutput]

	now   func() time.Time
	newID func() string
}

func New(
	planner contractx.Planner,
	executor *executorx.Executor,
	sessions *statex.Manager,
	cfg Config,
) (*Orchestrator, error) {
	if planner == nil {
		return nil, errors.New("planner is required")
	}
	if executor == nil {
		return nil, errors.New("executor is required")
	}
	if sessions == nil {
		sessions = statex.NewManager()
	}

	o := &Orchestrator{
		planner:  planner,
		executor: executor,
		sessions: sessions,
		defaults: cfg.options(),
		now:      time.Now,
		newID:    uuid.NewString,
	}

	graphRunner, err := o.compileHandleMessageGraph(context.Background())
	if err != nil {
		return nil, err
	}
	o.graphRunner = graphRunner

	return o, nil
}

func (o *Orchestrator) Sessions() *statex.Manager {
	return o.sessions
}

// HandleMessage plans and executes one request. A fail-fast abort returns the
// partial Response together with a *contract.StepError.
func (o *Orchestrator) HandleMessage(ctx context.Context, sessionID string, text string, opts ...RequestOption) (Response, error) {
	in := nodex.GraphInput{
		SessionID: sessionID,
		Text:      text,
		Options:   o.defaults,
	}
	for _, opt := range opts {
		opt(&in)
	}

	out, err := o.graphRunner.Invoke(ctx, in)
	if err != nil {
		return Response{}, err
	}
	return Response{
		RequestID: out.RequestID,
		Reply:     out.Reply,
		Result:    out.Result,
	}, out.Err
}
