package llm

import (
	"context"
	"errors"
	"strings"

	openaisdk "github.com/openai/openai-go"

	contractx "github.com/tanpawarit/demo-agent/agent/contract"
)

// OpenAIReasoner implements contract.Reasoner over Chat Completions. A nil
// client means the backend is absent.
type OpenAIReasoner struct {
	client       *openaisdk.Client
	defaultModel string
}

var _ contractx.Reasoner = (*OpenAIReasoner)(nil)

func NewOpenAIReasoner(client *openaisdk.Client, defaultModel string) *OpenAIReasoner {
	return &OpenAIReasoner{
		client:       client,
		defaultModel: strings.TrimSpace(defaultModel),
	}
}

func (r *OpenAIReasoner) Complete(ctx context.Context, model string, messages []contractx.Message) (string, error) {
	if r == nil || r.client == nil {
		return "", &contractx.BackendError{Cause: contractx.BackendAbsent}
	}

	model = strings.TrimSpace(model)
	if model == "" {
		model = r.defaultModel
	}
	if model == "" {
		return "", &contractx.BackendError{Cause: contractx.BackendAbsent, Err: errors.New("no model configured")}
	}

	params := openaisdk.ChatCompletionNewParams{
		Model:    openaisdk.ChatModel(model),
		Messages: toChatMessages(messages),
	}

	resp, err := r.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return "", &contractx.BackendError{Cause: contractx.BackendCallFailed, Err: err}
	}
	if resp == nil || len(resp.Choices) == 0 {
		return "", &contractx.BackendError{Cause: contractx.BackendCallFailed, Err: errors.New("no response choices returned")}
	}

	content := strings.TrimSpace(resp.Choices[0].Message.Content)
	if content == "" {
		return "", &contractx.BackendError{Cause: contractx.BackendCallFailed, Err: errors.New("empty completion")}
	}
	return content, nil
}

func toChatMessages(messages []contractx.Message) []openaisdk.ChatCompletionMessageParamUnion {
	out := make([]openaisdk.ChatCompletionMessageParamUnion, 0, len(messages))
	for _, m := range messages {
		switch m.Role {
		case "system":
			out = append(out, openaisdk.SystemMessage(m.Content))
		case "assistant":
			out = append(out, openaisdk.AssistantMessage(m.Content))
		default:
			out = append(out, openaisdk.UserMessage(m.Content))
		}
	}
	return out
}
