package tool

import (
	"context"
	"fmt"
	"strings"
	"time"
)

const defaultProcedureDelay = 100 * time.Millisecond

// StatelessTaskTool upper-cases text.
func StatelessTaskTool() Descriptor {
	return NewLocal(ToolStatelessTask, "Convert text to uppercase. Use for quick, stateless transformations.",
		func(_ context.Context, args map[string]any) (any, error) {
			text, err := stringArg(args, "text")
			if err != nil {
				return nil, err
			}
			return strings.ToUpper(text), nil
		},
		Parameter{Name: "text", Type: "string", Description: "Text to transform", Required: true},
	)
}

// StatefulTaskTool returns the object with value upper-cased when it equals
// "example"; any other value is left alone.
func StatefulTaskTool() Descriptor {
	return NewLocal(ToolStatefulTask, "Retrieve and modify an object when its value is 'example'.",
		func(_ context.Context, args map[string]any) (any, error) {
			id, err := stringArg(args, "id")
			if err != nil {
				return nil, err
			}
			value, err := stringArg(args, "value")
			if err != nil {
				return nil, err
			}
			if value == "example" {
				value = strings.ToUpper(value)
			}
			return map[string]any{"id": id, "value": value}, nil
		},
		Parameter{Name: "id", Type: "string", Description: "Object identifier", Required: true},
		Parameter{Name: "value", Type: "string", Description: "Current object value", Required: true},
	)
}

// ProceduralTaskTool simulates a slow procedure.
func ProceduralTaskTool(delay time.Duration) Descriptor {
	if delay <= 0 {
		delay = defaultProcedureDelay
	}
	return NewLocal(ToolProceduralTask, "Run a small procedure described by detail.",
		func(ctx context.Context, args map[string]any) (any, error) {
			detail, err := stringArg(args, "detail")
			if err != nil {
				return nil, err
			}
			timer := time.NewTimer(delay)
			defer timer.Stop()
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-timer.C:
			}
			return fmt.Sprintf("completed: %s", detail), nil
		},
		Parameter{Name: "detail", Type: "string", Description: "What the procedure should do", Required: true},
	)
}
