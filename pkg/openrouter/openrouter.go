package openrouter

import (
	"context"
	"fmt"
	"strings"
	"time"

	openaimodel "github.com/cloudwego/eino-ext/components/model/openai"
	"github.com/cloudwego/eino/components/model"
	openaisdk "github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

// ChatModelFactory builds the tool-calling model used by the planner graph.
type ChatModelFactory interface {
	New(ctx context.Context) (model.ToolCallingChatModel, error)
}

var _ ChatModelFactory = (*Config)(nil)

// Models that reject reasoning output unless it is explicitly disabled.
var noReasoningModels = map[string]bool{
	"x-ai/grok-4.1-fast": true,
}

type Config struct {
	BaseURL            string        `envconfig:"BASE_URL" split_words:"true" default:"https://openrouter.ai/api/v1"`
	APIKey             string        `envconfig:"API_KEY" split_words:"true"`
	Model              string        `envconfig:"MODEL" split_words:"true" default:"openai/o3-mini"`
	MaxCompletionToken *int          `envconfig:"MAX_COMPLETION_TOKEN" split_words:"true" default:"2000"`
	Temperature        float32       `envconfig:"TEMPERATURE" split_words:"true" default:"0.5"`
	Timeout            time.Duration `envconfig:"TIMEOUT" split_words:"true" default:"30s"`
	MaxRetries         int           `envconfig:"MAX_RETRIES" split_words:"true" default:"2"`
	SiteURL            string        `envconfig:"SITE_URL" split_words:"true"`
	SiteName           string        `envconfig:"SITE_NAME" split_words:"true"`
}

// Configured reports whether an API key is present.
func (c *Config) Configured() bool {
	return c != nil && c.key() != ""
}

func (c *Config) key() string     { return strings.TrimSpace(c.APIKey) }
func (c *Config) baseURL() string { return strings.TrimRight(strings.TrimSpace(c.BaseURL), "/") }

// attribution returns the optional ranking headers OpenRouter reads.
func (c *Config) attribution() map[string]string {
	h := make(map[string]string, 2)
	if c.SiteURL != "" {
		h["HTTP-Referer"] = c.SiteURL
	}
	if c.SiteName != "" {
		h["X-Title"] = c.SiteName
	}
	return h
}

// New builds a tool-calling chat model for the planner graph.
func (c *Config) New(ctx context.Context) (model.ToolCallingChatModel, error) {
	if !c.Configured() {
		return nil, fmt.Errorf("openrouter: api key is required")
	}
	name := strings.TrimSpace(c.Model)
	temperature := c.Temperature

	conf := &openaimodel.ChatModelConfig{
		BaseURL:     c.baseURL(),
		APIKey:      c.key(),
		Model:       name,
		MaxTokens:   c.MaxCompletionToken,
		Temperature: &temperature,
		Timeout:     c.Timeout,
	}
	if noReasoningModels[name] {
		conf.ExtraFields = map[string]any{
			"reasoning": map[string]any{"exclude": true, "effort": "none"},
		}
	}

	m, err := openaimodel.NewChatModel(ctx, conf)
	if err != nil {
		return nil, fmt.Errorf("openrouter: create chat model: %w", err)
	}
	return m, nil
}

// NewClient returns an OpenAI SDK client pointed at OpenRouter, or nil when
// no API key is configured.
func NewClient(cfg Config) *openaisdk.Client {
	if !cfg.Configured() {
		return nil
	}

	opts := []option.RequestOption{
		option.WithAPIKey(cfg.key()),
		option.WithMaxRetries(max(cfg.MaxRetries, 0)),
	}
	if base := cfg.baseURL(); base != "" {
		opts = append(opts, option.WithBaseURL(base))
	}
	if cfg.Timeout > 0 {
		opts = append(opts, option.WithRequestTimeout(cfg.Timeout))
	}
	for k, v := range cfg.attribution() {
		opts = append(opts, option.WithHeader(k, v))
	}

	client := openaisdk.NewClient(opts...)
	return &client
}
