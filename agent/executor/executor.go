package executor

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/sourcegraph/conc"

	contractx "github.com/tanpawarit/demo-agent/agent/contract"
	toolx "github.com/tanpawarit/demo-agent/agent/tool"
	logx "github.com/tanpawarit/demo-agent/pkg/logger"
)

type Mode int

const (
	Sequential Mode = iota
	Parallel
)

func (m Mode) String() string {
	if m == Parallel {
		return "parallel"
	}
	return "sequential"
}

// FallbackPolicy decides when a long-running tool's fallback replaces a
// failure. OnAbsent covers a backend that is not configured at all; OnFailure
// covers a configured backend whose call failed or could not be reached.
type FallbackPolicy struct {
	OnAbsent  bool
	OnFailure bool
}

func DefaultFallbackPolicy() FallbackPolicy {
	return FallbackPolicy{OnAbsent: true, OnFailure: true}
}

// Applies reports whether a tool failure with err should be replaced by the
// tool's fallback.
func (p FallbackPolicy) Applies(err error) bool {
	switch {
	case errors.Is(err, contractx.ErrBackendAbsent):
		return p.OnAbsent
	case errors.Is(err, contractx.ErrBackendFailed), errors.Is(err, contractx.ErrRemoteUnavailable):
		return p.OnFailure
	default:
		return false
	}
}

type Options struct {
	Mode        Mode
	FailFast    bool
	StepTimeout time.Duration
}

// Option customizes Executor.
type Option func(*Executor)

func WithProxy(p *toolx.Proxy) Option {
	return func(e *Executor) {
		if p != nil {
			e.proxy = p
		}
	}
}

func WithFallbackPolicy(p FallbackPolicy) Option {
	return func(e *Executor) {
		e.fallback = p
	}
}

// Executor runs plans against a Registry.
type Executor struct {
	registry *toolx.Registry
	proxy    *toolx.Proxy
	fallback FallbackPolicy
	logger   zerolog.Logger
}

func New(registry *toolx.Registry, opts ...Option) (*Executor, error) {
	if registry == nil {
		return nil, errors.New("tool registry is required")
	}
	e := &Executor{
		registry: registry,
		fallback: DefaultFallbackPolicy(),
		logger:   logx.Component("executor"),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(e)
		}
	}
	if e.proxy == nil {
		e.proxy = toolx.NewProxy()
	}
	return e, nil
}

// Execute runs plan and appends one entry per executed step to lg. In
// Sequential mode steps run in order; in Parallel mode all steps start at
// once and the call returns after every one has finished. Step failures are
// kept in their result slot. With FailFast the first failure is returned as a
// *contract.StepError carrying the partial result.
func (e *Executor) Execute(ctx context.Context, plan contractx.Plan, lg *Log, opts Options) (contractx.ExecutionResult, error) {
	if lg == nil {
		lg = NewLog(uuid.NewString())
	}
	mark := lg.Len()

	if len(plan) == 0 {
		return contractx.ExecutionResult{
			RequestID: lg.RequestID(),
			Results:   []contractx.StepResult{},
			Summary:   contractx.NoToolsExecuted,
			Log:       lg.Since(mark),
		}, nil
	}

	e.logger.Info().
		Str("request_id", lg.RequestID()).
		Str("mode", opts.Mode.String()).
		Int("steps", len(plan)).
		Bool("fail_fast", opts.FailFast).
		Msg("executing plan")

	var (
		results []contractx.StepResult
		failed  = -1
	)
	if opts.Mode == Parallel {
		results, failed = e.runBatch(ctx, plan, lg, opts)
	} else {
		results, failed = e.runSequential(ctx, plan, lg, opts)
	}

	out := e.assemble(lg, mark, results)
	if opts.FailFast && failed >= 0 {
		return out, &contractx.StepError{
			Index:   failed,
			Tool:    plan[failed].Tool,
			Err:     results[failed].Err,
			Partial: out,
		}
	}
	return out, nil
}

// ExecuteStages runs stages one after another; the steps inside a stage run
// as a parallel batch. Results are flattened in submission order.
func (e *Executor) ExecuteStages(ctx context.Context, stages []contractx.Plan, lg *Log, opts Options) (contractx.ExecutionResult, error) {
	if lg == nil {
		lg = NewLog(uuid.NewString())
	}
	mark := lg.Len()

	var flat contractx.Plan
	for _, stage := range stages {
		flat = append(flat, stage...)
	}
	if len(flat) == 0 {
		return e.Execute(ctx, nil, lg, opts)
	}

	results := pendingResults(flat)
	offset := 0
	for _, stage := range stages {
		stageResults, failed := e.runBatch(ctx, stage, lg, opts)
		copy(results[offset:], stageResults)
		if opts.FailFast && failed >= 0 {
			idx := offset + failed
			out := e.assemble(lg, mark, results)
			return out, &contractx.StepError{
				Index:   idx,
				Tool:    flat[idx].Tool,
				Err:     results[idx].Err,
				Partial: out,
			}
		}
		offset += len(stage)
	}

	return e.assemble(lg, mark, results), nil
}

func (e *Executor) runSequential(ctx context.Context, plan contractx.Plan, lg *Log, opts Options) ([]contractx.StepResult, int) {
	results := pendingResults(plan)
	firstFailed := -1
	for i, step := range plan {
		results[i] = e.runStep(ctx, step, lg, opts)
		if results[i].Failed() && firstFailed < 0 {
			firstFailed = i
			if opts.FailFast {
				e.logger.Warn().
					Str("request_id", lg.RequestID()).
					Str("tool", step.Tool).
					Int("skipped", len(plan)-i-1).
					Msg("fail-fast: aborting remaining steps")
				break
			}
		}
	}
	return results, firstFailed
}

func (e *Executor) runBatch(ctx context.Context, batch contractx.Plan, lg *Log, opts Options) ([]contractx.StepResult, int) {
	results := pendingResults(batch)
	if len(batch) == 1 {
		results[0] = e.runStep(ctx, batch[0], lg, opts)
	} else {
		var wg conc.WaitGroup
		for i, step := range batch {
			wg.Go(func() {
				results[i] = e.runStep(ctx, step, lg, opts)
			})
		}
		wg.Wait()
	}

	for i := range results {
		if results[i].Failed() {
			return results, i
		}
	}
	return results, -1
}

func (e *Executor) runStep(ctx context.Context, step contractx.PlanStep, lg *Log, opts Options) contractx.StepResult {
	res := contractx.StepResult{
		Tool:   step.Tool,
		Label:  step.DisplayLabel(),
		Status: contractx.StepRunning,
	}

	e.logger.Debug().
		Str("request_id", lg.RequestID()).
		Str("tool", step.Tool).
		Msg("step started")

	start := time.Now()
	out, usedFallback, err := e.invoke(ctx, step, opts)
	res.Duration = time.Since(start)

	if err != nil {
		res.Status = contractx.StepFailed
		res.Err = err
	} else {
		res.Status = contractx.StepSucceeded
		res.Output = out
		res.Fallback = usedFallback
	}
	lg.Append(res.Label, res.Duration, res.Failed())

	event := e.logger.Debug()
	if err != nil {
		event = e.logger.Warn().Err(err)
	}
	event.
		Str("request_id", lg.RequestID()).
		Str("tool", step.Tool).
		Str("status", string(res.Status)).
		Bool("fallback", usedFallback).
		Dur("duration", res.Duration).
		Msg("step finished")

	return res
}

func (e *Executor) invoke(ctx context.Context, step contractx.PlanStep, opts Options) (any, bool, error) {
	desc, err := e.registry.Resolve(step.Tool)
	if err != nil {
		return nil, false, err
	}
	if err := e.registry.ValidateArgs(desc.Name, step.Args); err != nil {
		return nil, false, err
	}

	callCtx := ctx
	if opts.StepTimeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, opts.StepTimeout)
		defer cancel()
	}

	out, err := safeCall(callCtx, e.proxy, desc, step.Args)
	if err == nil {
		return out, false, nil
	}
	if desc.Fallback != nil && e.fallback.Applies(err) {
		e.logger.Warn().Err(err).Str("tool", desc.Name).Msg("reasoning backend unavailable, using fallback")
		return desc.Fallback(step.Args), true, nil
	}
	return nil, false, err
}

func safeCall(ctx context.Context, p *toolx.Proxy, d toolx.Descriptor, args map[string]any) (out any, err error) {
	defer func() {
		if r := recover(); r != nil {
			out = nil
			err = fmt.Errorf("tool %s panicked: %v", d.Name, r)
		}
	}()
	if args == nil {
		args = map[string]any{}
	}
	return toolx.Call(ctx, p, d, args)
}

func (e *Executor) assemble(lg *Log, mark int, results []contractx.StepResult) contractx.ExecutionResult {
	return contractx.ExecutionResult{
		RequestID: lg.RequestID(),
		Results:   results,
		Summary:   contractx.Summarize(results),
		Log:       lg.Since(mark),
	}
}

func pendingResults(plan contractx.Plan) []contractx.StepResult {
	results := make([]contractx.StepResult, len(plan))
	for i, step := range plan {
		results[i] = contractx.StepResult{
			Tool:   step.Tool,
			Label:  step.DisplayLabel(),
			Status: contractx.StepPending,
		}
	}
	return results
}
