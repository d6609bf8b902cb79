package planner

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	einomodel "github.com/cloudwego/eino/components/model"
	einoprompt "github.com/cloudwego/eino/components/prompt"
	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/schema"

	contractx "github.com/tanpawarit/demo-agent/agent/contract"
)

// Model plans by letting a tool-calling chat model pick tools from the
// registry catalog.
type Model struct {
	runner  compose.Runnable[map[string]any, *schema.Message]
	allowed map[string]struct{}
}

var _ contractx.Planner = (*Model)(nil)

func NewModel(
	ctx context.Context,
	chatModel einomodel.ToolCallingChatModel,
	tools []*schema.ToolInfo,
	systemPrompt string,
) (*Model, error) {
	if chatModel == nil {
		return nil, fmt.Errorf("%w: chat model is required", contractx.ErrValidation)
	}
	if len(tools) == 0 {
		return nil, fmt.Errorf("%w: tool catalog is empty", contractx.ErrValidation)
	}

	toolModel, err := chatModel.WithTools(tools)
	if err != nil {
		return nil, fmt.Errorf("%w: bind tools for planner: %v", contractx.ErrModelInvoke, err)
	}
	// The request is rendered into the user turn; the bound model answers with
	// tool calls that Plan decodes.
	runner, err := compose.NewChain[map[string]any, *schema.Message]().
		AppendChatTemplate(einoprompt.FromMessages(schema.FString,
			schema.SystemMessage(systemPrompt),
			schema.UserMessage("{input}"),
		)).
		AppendChatModel(toolModel).
		Compile(ctx, compose.WithGraphName("planner.tool_selection"))
	if err != nil {
		return nil, fmt.Errorf("%w: compile planner chain: %v", contractx.ErrModelInvoke, err)
	}

	allowed := make(map[string]struct{}, len(tools))
	for _, t := range tools {
		if t == nil || strings.TrimSpace(t.Name) == "" {
			continue
		}
		allowed[t.Name] = struct{}{}
	}

	return &Model{runner: runner, allowed: allowed}, nil
}

func (m *Model) Plan(ctx context.Context, request string) (contractx.Plan, error) {
	if strings.TrimSpace(request) == "" {
		return nil, fmt.Errorf("%w: request is empty", contractx.ErrValidation)
	}

	msg, err := m.runner.Invoke(ctx, map[string]any{
		"input": request,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: planner invoke: %v", contractx.ErrModelInvoke, err)
	}
	if msg == nil {
		return nil, fmt.Errorf("%w: empty planner response", contractx.ErrSchemaViolation)
	}

	plan, err := toPlanSteps(msg.ToolCalls)
	if err != nil {
		return nil, err
	}
	for _, step := range plan {
		if _, ok := m.allowed[step.Tool]; !ok {
			return nil, fmt.Errorf("%w: tool=%s is not in the catalog", contractx.ErrSchemaViolation, step.Tool)
		}
	}
	return plan, nil
}

func toPlanSteps(calls []schema.ToolCall) (contractx.Plan, error) {
	plan := make(contractx.Plan, 0, len(calls))
	for _, call := range calls {
		name := strings.TrimSpace(call.Function.Name)
		if name == "" {
			return nil, fmt.Errorf("%w: tool call name is empty", contractx.ErrSchemaViolation)
		}

		args := map[string]any{}
		if raw := strings.TrimSpace(call.Function.Arguments); raw != "" {
			if err := json.Unmarshal([]byte(raw), &args); err != nil {
				return nil, fmt.Errorf("%w: invalid tool args for tool=%s: %v", contractx.ErrSchemaViolation, name, err)
			}
		}

		plan = append(plan, contractx.PlanStep{Tool: name, Args: args})
	}
	return plan, nil
}
