package tool

import (
	"context"
	"errors"
	"fmt"
	"strings"

	contractx "github.com/tanpawarit/demo-agent/agent/contract"
)

const defaultResearchModel = "o3"

// ResearchFallback is the placeholder returned when the reasoning backend
// cannot be reached.
func ResearchFallback(query string) string {
	return fmt.Sprintf("research result for: %s", query)
}

// DeepResearchTool asks the reasoning backend to investigate a query. A nil
// reasoner reports contract.ErrBackendAbsent so the executor can fall back.
func DeepResearchTool(r contractx.Reasoner, model string, systemPrompt string) Descriptor {
	model = strings.TrimSpace(model)
	if model == "" {
		model = defaultResearchModel
	}

	d := NewLocal(ToolDeepResearch, "Perform an in-depth research task using a long running model.",
		func(ctx context.Context, args map[string]any) (any, error) {
			query, err := stringArg(args, "query")
			if err != nil {
				return nil, err
			}
			if r == nil {
				return nil, &contractx.BackendError{Cause: contractx.BackendAbsent}
			}

			msgs := make([]contractx.Message, 0, 2)
			if p := strings.TrimSpace(systemPrompt); p != "" {
				msgs = append(msgs, contractx.SystemMessage(p))
			}
			msgs = append(msgs, contractx.UserMessage(query))
			return complete(ctx, r, model, msgs)
		},
		Parameter{Name: "query", Type: "string", Description: "Research question", Required: true},
	)

	return d.WithFallback(func(args map[string]any) any {
		query, _ := args["query"].(string)
		return ResearchFallback(query)
	})
}

// complete treats every failure of the reasoner, panics included, as a failed
// backend call.
func complete(ctx context.Context, r contractx.Reasoner, model string, msgs []contractx.Message) (out string, err error) {
	defer func() {
		if p := recover(); p != nil {
			out = ""
			err = &contractx.BackendError{Cause: contractx.BackendCallFailed, Err: fmt.Errorf("reasoner panicked: %v", p)}
		}
	}()

	out, err = r.Complete(ctx, model, msgs)
	if err == nil {
		return out, nil
	}
	var be *contractx.BackendError
	if errors.As(err, &be) {
		return "", err
	}
	return "", &contractx.BackendError{Cause: contractx.BackendCallFailed, Err: err}
}
