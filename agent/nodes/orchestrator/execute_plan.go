package orchestratornode

import (
	"context"
	"errors"
	"fmt"

	contractx "github.com/tanpawarit/demo-agent/agent/contract"
	executorx "github.com/tanpawarit/demo-agent/agent/executor"
)

// ExecutePlan runs the plan. A fail-fast abort is kept on the state instead of
// failing the graph, so the partial result still reaches the caller.
func ExecutePlan(
	ctx context.Context,
	in *GraphState,
	exec *executorx.Executor,
) (*GraphState, error) {
	if in == nil || in.Log == nil {
		return nil, fmt.Errorf("%w: graph state is nil", contractx.ErrValidation)
	}

	result, err := exec.Execute(ctx, in.Plan, in.Log, in.Options)
	if err != nil {
		var stepErr *contractx.StepError
		if !errors.As(err, &stepErr) {
			return nil, err
		}
		in.ExecErr = err
	}

	in.Result = result
	return in, nil
}
