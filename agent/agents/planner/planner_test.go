package planner

import (
	"context"
	"errors"
	"testing"

	einomodel "github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"

	contractx "github.com/tanpawarit/demo-agent/agent/contract"
	toolx "github.com/tanpawarit/demo-agent/agent/tool"
)

type fakeToolCallingModel struct {
	responses []*schema.Message
	err       error
	idx       int
	bound     []*schema.ToolInfo
	lastInput []*schema.Message
}

func (f *fakeToolCallingModel) Generate(ctx context.Context, input []*schema.Message, opts ...einomodel.Option) (*schema.Message, error) {
	f.lastInput = input
	if f.err != nil {
		return nil, f.err
	}
	if f.idx >= len(f.responses) {
		return nil, errors.New("no fake response left")
	}
	msg := f.responses[f.idx]
	f.idx++
	return msg, nil
}

func (f *fakeToolCallingModel) Stream(ctx context.Context, input []*schema.Message, opts ...einomodel.Option) (*schema.StreamReader[*schema.Message], error) {
	return nil, errors.New("stream not implemented in fake model")
}

func (f *fakeToolCallingModel) WithTools(tools []*schema.ToolInfo) (einomodel.ToolCallingChatModel, error) {
	f.bound = tools
	return f, nil
}

func toolCall(name, args string) schema.ToolCall {
	return schema.ToolCall{
		ID:       name,
		Function: schema.FunctionCall{Name: name, Arguments: args},
	}
}

func defaultCatalog(t *testing.T) []*schema.ToolInfo {
	t.Helper()
	reg := toolx.NewRegistry()
	if err := toolx.RegisterDefaults(reg, toolx.Deps{}); err != nil {
		t.Fatalf("RegisterDefaults() error = %v", err)
	}
	return reg.ToolInfos()
}

func tools(plan contractx.Plan) []string {
	out := make([]string, 0, len(plan))
	for _, s := range plan {
		out = append(out, s.Tool)
	}
	return out
}

func TestKeywordPlanner(t *testing.T) {
	t.Parallel()

	k := NewKeyword()
	cases := []struct {
		name    string
		request string
		want    []string
	}{
		{name: "no trigger", request: "hello there", want: []string{}},
		{name: "single trigger", request: "please clean this", want: []string{toolx.ToolCleanText}},
		{name: "matching is case-sensitive", request: "Please CLEAN this Ticket", want: []string{}},
		{
			name:    "priority order, not input order",
			request: "research the ticket after you clean it",
			want:    []string{toolx.ToolCleanText, toolx.ToolUpdateTicketStatus, toolx.ToolDeepResearch},
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			plan, err := k.Plan(context.Background(), tc.request)
			if err != nil {
				t.Fatalf("Plan() error = %v", err)
			}
			if plan == nil {
				t.Fatal("plan should never be nil")
			}
			got := tools(plan)
			if len(got) != len(tc.want) {
				t.Fatalf("unexpected plan: %v", got)
			}
			for i := range got {
				if got[i] != tc.want[i] {
					t.Fatalf("unexpected plan: %v", got)
				}
			}
		})
	}
}

func TestKeywordTriggerFoldCase(t *testing.T) {
	t.Parallel()

	k := NewKeyword(Trigger{
		Keyword:  "clean",
		FoldCase: true,
		Build: func(request string) contractx.PlanStep {
			return contractx.PlanStep{Tool: toolx.ToolCleanText, Args: map[string]any{"text": request}}
		},
	})
	plan, err := k.Plan(context.Background(), "Please CLEAN this")
	if err != nil {
		t.Fatalf("Plan() error = %v", err)
	}
	if len(plan) != 1 || plan[0].Tool != toolx.ToolCleanText {
		t.Fatalf("unexpected plan: %v", tools(plan))
	}
}

func TestKeywordPlannerArguments(t *testing.T) {
	t.Parallel()

	plan, _ := NewKeyword().Plan(context.Background(), "ticket and research")
	if plan[0].Args["ticket_id"] != "1" || plan[0].Args["status"] != "in_progress" {
		t.Fatalf("unexpected ticket args: %v", plan[0].Args)
	}
	if plan[1].Args["query"] != "ticket and research" {
		t.Fatalf("unexpected research args: %v", plan[1].Args)
	}
}

func TestModelPlannerSuccess(t *testing.T) {
	t.Parallel()

	fake := &fakeToolCallingModel{
		responses: []*schema.Message{
			{
				Role: schema.Assistant,
				ToolCalls: []schema.ToolCall{
					toolCall(toolx.ToolCleanText, `{"text":"ssn 123-45-6789"}`),
					toolCall(toolx.ToolGreet, `{"name":"Ada"}`),
				},
			},
		},
	}
	catalog := defaultCatalog(t)

	m, err := NewModel(context.Background(), fake, catalog, "plan carefully")
	if err != nil {
		t.Fatalf("NewModel() error = %v", err)
	}
	if len(fake.bound) != len(catalog) {
		t.Fatalf("expected %d bound tools, got %d", len(catalog), len(fake.bound))
	}

	plan, err := m.Plan(context.Background(), "clean and greet")
	if err != nil {
		t.Fatalf("Plan() error = %v", err)
	}
	if got := tools(plan); len(got) != 2 || got[0] != toolx.ToolCleanText || got[1] != toolx.ToolGreet {
		t.Fatalf("unexpected plan: %v", got)
	}
	if plan[1].Args["name"] != "Ada" {
		t.Fatalf("unexpected args: %v", plan[1].Args)
	}

	if len(fake.lastInput) != 2 || fake.lastInput[0].Content != "plan carefully" || fake.lastInput[1].Content != "clean and greet" {
		t.Fatalf("unexpected prompt: %+v", fake.lastInput)
	}
}

func TestModelPlannerNoToolCalls(t *testing.T) {
	t.Parallel()

	fake := &fakeToolCallingModel{
		responses: []*schema.Message{{Role: schema.Assistant, Content: "nothing to do"}},
	}
	m, err := NewModel(context.Background(), fake, defaultCatalog(t), "p")
	if err != nil {
		t.Fatalf("NewModel() error = %v", err)
	}
	plan, err := m.Plan(context.Background(), "hi")
	if err != nil {
		t.Fatalf("Plan() error = %v", err)
	}
	if len(plan) != 0 {
		t.Fatalf("expected empty plan, got %v", plan)
	}
}

func TestModelPlannerRejectsBadOutput(t *testing.T) {
	t.Parallel()

	cases := map[string]*fakeToolCallingModel{
		"unknown tool": {responses: []*schema.Message{{
			Role:      schema.Assistant,
			ToolCalls: []schema.ToolCall{toolCall("rm_rf", `{}`)},
		}}},
		"broken arguments": {responses: []*schema.Message{{
			Role:      schema.Assistant,
			ToolCalls: []schema.ToolCall{toolCall(toolx.ToolGreet, `{"name":`)},
		}}},
	}
	for name, fake := range cases {
		t.Run(name, func(t *testing.T) {
			m, err := NewModel(context.Background(), fake, defaultCatalog(t), "p")
			if err != nil {
				t.Fatalf("NewModel() error = %v", err)
			}
			_, err = m.Plan(context.Background(), "do it")
			if !errors.Is(err, contractx.ErrSchemaViolation) {
				t.Fatalf("expected ErrSchemaViolation, got %v", err)
			}
		})
	}
}

func TestModelPlannerInvokeError(t *testing.T) {
	t.Parallel()

	m, err := NewModel(context.Background(), &fakeToolCallingModel{err: errors.New("rate limited")}, defaultCatalog(t), "p")
	if err != nil {
		t.Fatalf("NewModel() error = %v", err)
	}
	_, err = m.Plan(context.Background(), "do it")
	if !errors.Is(err, contractx.ErrModelInvoke) {
		t.Fatalf("expected ErrModelInvoke, got %v", err)
	}

	if _, err := NewModel(context.Background(), nil, defaultCatalog(t), "p"); !errors.Is(err, contractx.ErrValidation) {
		t.Fatalf("expected ErrValidation for nil model, got %v", err)
	}
}

func TestFallbackPlanner(t *testing.T) {
	t.Parallel()

	primary := &fakeToolCallingModel{err: errors.New("offline")}
	m, err := NewModel(context.Background(), primary, defaultCatalog(t), "p")
	if err != nil {
		t.Fatalf("NewModel() error = %v", err)
	}

	f := &Fallback{Primary: m, Secondary: NewKeyword()}
	plan, err := f.Plan(context.Background(), "clean this")
	if err != nil {
		t.Fatalf("Plan() error = %v", err)
	}
	if got := tools(plan); len(got) != 1 || got[0] != toolx.ToolCleanText {
		t.Fatalf("unexpected plan: %v", got)
	}

	if _, err := (&Fallback{}).Plan(context.Background(), "x"); err == nil {
		t.Fatal("expected error without planners")
	}
}
