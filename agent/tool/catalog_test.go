package tool

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	contractx "github.com/tanpawarit/demo-agent/agent/contract"
)

func call(t *testing.T, d Descriptor, args map[string]any) (any, error) {
	t.Helper()
	return Call(context.Background(), nil, d, args)
}

func TestRegisterDefaults(t *testing.T) {
	t.Parallel()

	reg := NewRegistry()
	if err := RegisterDefaults(reg, Deps{}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []string{
		ToolCleanText, ToolUpdateTicketStatus, ToolDeepResearch,
		ToolStatelessTask, ToolStatefulTask, ToolProceduralTask,
		ToolMathEvaluate, ToolGreet, ToolBuildBetterPrompt,
	}
	got := reg.Names()
	if strings.Join(got, ",") != strings.Join(want, ",") {
		t.Fatalf("unexpected tools: %v", got)
	}

	research, err := reg.Resolve(ToolDeepResearch)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !research.LongRunning || research.Fallback == nil {
		t.Fatal("deep_research should be long running with a fallback")
	}

	if err := RegisterDefaults(reg, Deps{}); !errors.Is(err, contractx.ErrDuplicateName) {
		t.Fatalf("expected ErrDuplicateName on second registration, got %v", err)
	}
}

func TestCleanTextIsIdempotent(t *testing.T) {
	t.Parallel()

	d := CleanTextTool(nil)
	in := "call 123-45-6789 or mail jane@example.com, card 4111 1111 1111 1111"
	once, err := call(t, d, map[string]any{"text": in})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if once != "call [REDACTED] or mail [REDACTED], card [REDACTED]" {
		t.Fatalf("unexpected output: %q", once)
	}
	twice, err := call(t, d, map[string]any{"text": once})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if twice != once {
		t.Fatalf("clean is not idempotent: %q != %q", twice, once)
	}
}

func TestRedactNewBoundary(t *testing.T) {
	t.Parallel()

	r := NewRedactor()
	once := r.Redact("contact a@b.com123-45-6789")
	if once != "contact [REDACTED][REDACTED]" {
		t.Fatalf("unexpected output: %q", once)
	}
	if twice := r.Redact(once); twice != once {
		t.Fatalf("redact is not idempotent: %q != %q", twice, once)
	}
}

func TestRedactorAddPattern(t *testing.T) {
	t.Parallel()

	r := NewRedactor()
	if err := r.AddPattern(`secret-\w+`); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := r.Redact("token secret-abc"); got != "token [REDACTED]" {
		t.Fatalf("unexpected output: %q", got)
	}
	if err := r.AddPattern(`(`); err == nil {
		t.Fatal("expected invalid pattern error")
	}
}

func TestStatelessAndStatefulTasks(t *testing.T) {
	t.Parallel()

	out, err := call(t, StatelessTaskTool(), map[string]any{"text": "hello"})
	if err != nil || out != "HELLO" {
		t.Fatalf("unexpected stateless result: %v, %v", out, err)
	}

	out, err = call(t, StatefulTaskTool(), map[string]any{"id": "1", "value": "example"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	obj := out.(map[string]any)
	if obj["id"] != "1" || obj["value"] != "EXAMPLE" {
		t.Fatalf("unexpected stateful result: %v", obj)
	}

	out, _ = call(t, StatefulTaskTool(), map[string]any{"id": "2", "value": "other"})
	if out.(map[string]any)["value"] != "other" {
		t.Fatalf("value should be unchanged: %v", out)
	}
}

func TestProceduralTaskHonorsContext(t *testing.T) {
	t.Parallel()

	d := ProceduralTaskTool(time.Millisecond)
	out, err := call(t, d, map[string]any{"detail": "sync"})
	if err != nil || out != "completed: sync" {
		t.Fatalf("unexpected result: %v, %v", out, err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = ProceduralTaskTool(time.Hour).Handler(ctx, map[string]any{"detail": "slow"})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestMathEvaluate(t *testing.T) {
	t.Parallel()

	out, err := call(t, MathEvaluateTool(), map[string]any{"expression": "2 + 3 * (4 - 1)"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	result, ok := out.(MathEvaluateOutput)
	if !ok {
		t.Fatalf("unexpected result type: %T", out)
	}
	if result.Result != 11 {
		t.Fatalf("unexpected result: %v", result.Result)
	}

	_, err = call(t, MathEvaluateTool(), map[string]any{"expression": "2 + abc"})
	if !errors.Is(err, contractx.ErrInvalidArguments) {
		t.Fatalf("expected ErrInvalidArguments, got %v", err)
	}
}

func TestEvaluateMathExpression(t *testing.T) {
	t.Parallel()

	cases := map[string]float64{
		"2 ^ 3 ^ 2":    512,
		"-2 ^ 2":       4,
		"10 - 4 - 3":   3,
		"7 % 4 * 2":    6,
		"-(1 + 2) * 3": -9,
		" 1.5 * 2 ":    3,
	}
	for expr, want := range cases {
		got, err := evaluateMathExpression(expr)
		if err != nil {
			t.Fatalf("%q: unexpected error: %v", expr, err)
		}
		if got != want {
			t.Fatalf("%q: got %v want %v", expr, got, want)
		}
	}

	for _, expr := range []string{"1 / 0", "5 % 0", "(1 + 2", "1 + 2)", "1 +", "1..2"} {
		if _, err := evaluateMathExpression(expr); err == nil {
			t.Fatalf("%q: expected error", expr)
		}
	}
}

func TestGreetAndBuildBetterPrompt(t *testing.T) {
	t.Parallel()

	out, err := call(t, GreetTool(), map[string]any{"name": "Ada"})
	if err != nil || out != "Hello, Ada!" {
		t.Fatalf("unexpected greet result: %v, %v", out, err)
	}

	out, err = call(t, BuildBetterPromptTool(), map[string]any{"name": "Ada"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	text := out.(string)
	if !strings.Contains(text, "Tone: friendly") || !strings.Contains(text, "The person's name is Ada.") {
		t.Fatalf("unexpected prompt: %q", text)
	}

	_, err = call(t, BuildBetterPromptTool(), map[string]any{"name": "Ada", "tone": "sarcastic"})
	if !errors.Is(err, contractx.ErrInvalidArguments) {
		t.Fatalf("expected ErrInvalidArguments, got %v", err)
	}
}

type fakeReasoner struct {
	reply    string
	err      error
	model    string
	messages []contractx.Message
}

func (f *fakeReasoner) Complete(_ context.Context, model string, messages []contractx.Message) (string, error) {
	f.model = model
	f.messages = messages
	return f.reply, f.err
}

func TestDeepResearch(t *testing.T) {
	t.Parallel()

	_, err := call(t, DeepResearchTool(nil, "", ""), map[string]any{"query": "go"})
	if !errors.Is(err, contractx.ErrBackendAbsent) {
		t.Fatalf("expected ErrBackendAbsent, got %v", err)
	}

	r := &fakeReasoner{reply: "findings"}
	d := DeepResearchTool(r, "", "be thorough")
	out, err := call(t, d, map[string]any{"query": "go"})
	if err != nil || out != "findings" {
		t.Fatalf("unexpected result: %v, %v", out, err)
	}
	if r.model != defaultResearchModel {
		t.Fatalf("unexpected model: %s", r.model)
	}
	if len(r.messages) != 2 || r.messages[0].Role != "system" || r.messages[1].Content != "go" {
		t.Fatalf("unexpected messages: %+v", r.messages)
	}

	if got := d.Fallback(map[string]any{"query": "go"}); got != "research result for: go" {
		t.Fatalf("unexpected fallback: %v", got)
	}
}

type panickingReasoner struct{}

func (panickingReasoner) Complete(context.Context, string, []contractx.Message) (string, error) {
	panic("backend crashed")
}

func TestDeepResearchClassifiesReasonerFailures(t *testing.T) {
	t.Parallel()

	_, err := call(t, DeepResearchTool(&fakeReasoner{err: errors.New("connection reset by peer")}, "", ""),
		map[string]any{"query": "go"})
	if !errors.Is(err, contractx.ErrBackendFailed) {
		t.Fatalf("expected ErrBackendFailed, got %v", err)
	}

	_, err = call(t, DeepResearchTool(panickingReasoner{}, "", ""), map[string]any{"query": "go"})
	if !errors.Is(err, contractx.ErrBackendFailed) {
		t.Fatalf("expected ErrBackendFailed for panic, got %v", err)
	}

	absent := &contractx.BackendError{Cause: contractx.BackendAbsent}
	_, err = call(t, DeepResearchTool(&fakeReasoner{err: absent}, "", ""), map[string]any{"query": "go"})
	if !errors.Is(err, contractx.ErrBackendAbsent) {
		t.Fatalf("expected classified error to pass through, got %v", err)
	}
}
