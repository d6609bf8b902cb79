package orchestratornode

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	contractx "github.com/tanpawarit/demo-agent/agent/contract"
)

func BuildPlan(
	ctx context.Context,
	in *GraphState,
	planner contractx.Planner,
) (*GraphState, error) {
	if in == nil {
		return nil, fmt.Errorf("%w: graph state is nil", contractx.ErrValidation)
	}

	plan, err := planner.Plan(ctx, in.Text)
	if err != nil {
		return nil, err
	}

	tools := make([]string, 0, len(plan))
	for _, step := range plan {
		tools = append(tools, step.Tool)
	}
	log.Info().
		Str("request_id", in.RequestID).
		Strs("tools", tools).
		Msg("plan built")

	in.Plan = plan
	return in, nil
}
