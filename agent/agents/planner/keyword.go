package planner

import (
	"context"
	"strings"

	contractx "github.com/tanpawarit/demo-agent/agent/contract"
	toolx "github.com/tanpawarit/demo-agent/agent/tool"
)

// Trigger appends one step when Keyword occurs in the request. Matching is
// case-sensitive unless FoldCase is set.
type Trigger struct {
	Keyword  string
	FoldCase bool
	Build    func(request string) contractx.PlanStep
}

func (t Trigger) matches(request string) bool {
	if t.FoldCase {
		return strings.Contains(strings.ToLower(request), strings.ToLower(t.Keyword))
	}
	return strings.Contains(request, t.Keyword)
}

// DefaultTriggers is the reference policy, in priority order.
func DefaultTriggers() []Trigger {
	return []Trigger{
		{
			Keyword: "clean",
			Build: func(request string) contractx.PlanStep {
				return contractx.PlanStep{Tool: toolx.ToolCleanText, Args: map[string]any{"text": request}}
			},
		},
		{
			Keyword: "ticket",
			Build: func(string) contractx.PlanStep {
				return contractx.PlanStep{
					Tool: toolx.ToolUpdateTicketStatus,
					Args: map[string]any{"ticket_id": "1", "status": "in_progress"},
				}
			},
		},
		{
			Keyword: "research",
			Build: func(request string) contractx.PlanStep {
				return contractx.PlanStep{Tool: toolx.ToolDeepResearch, Args: map[string]any{"query": request}}
			},
		},
	}
}

// Keyword is a deterministic planner: it checks triggers in their fixed order
// and emits one step per matching trigger.
type Keyword struct {
	triggers []Trigger
}

var _ contractx.Planner = (*Keyword)(nil)

func NewKeyword(triggers ...Trigger) *Keyword {
	if len(triggers) == 0 {
		triggers = DefaultTriggers()
	}
	return &Keyword{triggers: triggers}
}

func (k *Keyword) Plan(_ context.Context, request string) (contractx.Plan, error) {
	plan := contractx.Plan{}
	for _, t := range k.triggers {
		if strings.TrimSpace(t.Keyword) == "" || t.Build == nil {
			continue
		}
		if t.matches(request) {
			plan = append(plan, t.Build(request))
		}
	}
	return plan, nil
}
