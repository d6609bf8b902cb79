package tool

import (
	"fmt"
	"strings"
	"time"

	contractx "github.com/tanpawarit/demo-agent/agent/contract"
)

const (
	ToolCleanText          = "clean_text"
	ToolUpdateTicketStatus = "update_ticket_status"
	ToolDeepResearch       = "deep_research"
	ToolStatelessTask      = "stateless_task"
	ToolStatefulTask       = "stateful_task"
	ToolProceduralTask     = "procedural_task"
	ToolGreet              = "greet"
	ToolBuildBetterPrompt  = "build_better_prompt"
)

// Deps carries the collaborators the default tools call out to.
type Deps struct {
	Proxy          *Proxy
	TicketBaseURL  string
	Reasoner       contractx.Reasoner
	ResearchModel  string
	ResearchPrompt string
	ProcedureDelay time.Duration
}

// RegisterDefaults installs the built-in tool set into reg.
func RegisterDefaults(reg *Registry, deps Deps) error {
	if deps.Proxy == nil {
		deps.Proxy = NewProxy()
	}

	defs := []Descriptor{
		CleanTextTool(NewRedactor()),
		UpdateTicketStatusTool(deps.Proxy, deps.TicketBaseURL),
		DeepResearchTool(deps.Reasoner, deps.ResearchModel, deps.ResearchPrompt),
		StatelessTaskTool(),
		StatefulTaskTool(),
		ProceduralTaskTool(deps.ProcedureDelay),
		MathEvaluateTool(),
		GreetTool(),
		BuildBetterPromptTool(),
	}
	for _, d := range defs {
		if err := reg.Register(d); err != nil {
			return fmt.Errorf("register %s: %w", d.Name, err)
		}
	}
	return nil
}

func stringArg(args map[string]any, name string) (string, error) {
	raw, ok := args[name]
	if !ok {
		return "", fmt.Errorf("%w: %s is required", contractx.ErrInvalidArguments, name)
	}
	s, ok := raw.(string)
	if !ok {
		return "", fmt.Errorf("%w: %s must be a string, got %T", contractx.ErrInvalidArguments, name, raw)
	}
	return s, nil
}

func optionalStringArg(args map[string]any, name string) (string, error) {
	if _, ok := args[name]; !ok {
		return "", nil
	}
	s, err := stringArg(args, name)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(s), nil
}
