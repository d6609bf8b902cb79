package tool

import (
	"context"
	"fmt"

	promptx "github.com/tanpawarit/demo-agent/agent/prompt"
)

func GreetTool() Descriptor {
	return NewLocal(ToolGreet, "Greet a person by name.",
		func(_ context.Context, args map[string]any) (any, error) {
			name, err := stringArg(args, "name")
			if err != nil {
				return nil, err
			}
			return fmt.Sprintf("Hello, %s!", name), nil
		},
		Parameter{Name: "name", Type: "string", Description: "Person to greet", Required: true},
	)
}

// BuildBetterPromptTool renders a structured greeting prompt.
func BuildBetterPromptTool() Descriptor {
	tones := promptx.Tones()
	enum := make([]string, 0, len(tones))
	for _, t := range tones {
		enum = append(enum, string(t))
	}

	return NewLocal(ToolBuildBetterPrompt, "Provide a structured prompt that follows recommended prompt engineering practices.",
		func(_ context.Context, args map[string]any) (any, error) {
			name, err := stringArg(args, "name")
			if err != nil {
				return nil, err
			}
			rawTone, err := optionalStringArg(args, "tone")
			if err != nil {
				return nil, err
			}
			if rawTone == "" {
				rawTone = string(promptx.ToneFriendly)
			}
			tone, err := promptx.ParseTone(rawTone)
			if err != nil {
				return nil, err
			}
			return promptx.Greeting(name, tone).Render(), nil
		},
		Parameter{Name: "name", Type: "string", Description: "Person to greet", Required: true},
		Parameter{Name: "tone", Type: "string", Description: "Desired tone", Enum: enum},
	)
}
