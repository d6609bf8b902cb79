package contract

import "context"

// Planner maps a request to an ordered list of tool invocations.
type Planner interface {
	Plan(ctx context.Context, request string) (Plan, error)
}

// Reasoner is the narrow surface of a chat-completion backend.
type Reasoner interface {
	Complete(ctx context.Context, model string, messages []Message) (string, error)
}
