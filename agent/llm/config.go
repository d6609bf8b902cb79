package llm

import (
	"strings"
	"time"

	openrouterx "github.com/tanpawarit/demo-agent/pkg/openrouter"
)

type Role string

const (
	RolePlanner  Role = "planner"
	RoleResearch Role = "research"
)

type Config struct {
	BaseURL            string        `envconfig:"BASE_URL" split_words:"true" default:"https://openrouter.ai/api/v1"`
	APIKey             string        `envconfig:"API_KEY" split_words:"true"`
	Model              string        `envconfig:"MODEL" split_words:"true" default:"openai/o3-mini"`
	MaxCompletionToken int           `envconfig:"MAX_COMPLETION_TOKEN" split_words:"true" default:"2000"`
	Temperature        float32       `envconfig:"TEMPERATURE" split_words:"true" default:"0.5"`
	Timeout            time.Duration `envconfig:"TIMEOUT" split_words:"true" default:"60s"`
	MaxRetries         int           `envconfig:"MAX_RETRIES" split_words:"true" default:"2"`
	SiteURL            string        `envconfig:"SITE_URL" split_words:"true"`
	SiteName           string        `envconfig:"SITE_NAME" split_words:"true"`

	PlannerModel        string  `envconfig:"PLANNER_MODEL" split_words:"true"`
	ResearchModel       string  `envconfig:"RESEARCH_MODEL" split_words:"true"`
	PlannerTemperature  float32 `envconfig:"PLANNER_TEMPERATURE" split_words:"true" default:"-1"`
	ResearchTemperature float32 `envconfig:"RESEARCH_TEMPERATURE" split_words:"true" default:"-1"`
}

// Configured reports whether a backend key is present. Without one the
// research tool degrades to its fallback and the keyword planner is used.
func (c Config) Configured() bool {
	return strings.TrimSpace(c.APIKey) != ""
}

// ModelFor returns the model name for role, honoring per-role overrides.
func (c Config) ModelFor(role Role) string {
	switch role {
	case RolePlanner:
		if v := strings.TrimSpace(c.PlannerModel); v != "" {
			return v
		}
	case RoleResearch:
		if v := strings.TrimSpace(c.ResearchModel); v != "" {
			return v
		}
	}
	return strings.TrimSpace(c.Model)
}

func (c Config) OpenRouterFor(role Role) openrouterx.Config {
	temp := c.Temperature
	switch role {
	case RolePlanner:
		if c.PlannerTemperature >= 0 {
			temp = c.PlannerTemperature
		}
	case RoleResearch:
		if c.ResearchTemperature >= 0 {
			temp = c.ResearchTemperature
		}
	}

	maxCompletionToken := c.MaxCompletionToken
	return openrouterx.Config{
		BaseURL:            strings.TrimSpace(c.BaseURL),
		APIKey:             strings.TrimSpace(c.APIKey),
		Model:              c.ModelFor(role),
		MaxCompletionToken: &maxCompletionToken,
		Temperature:        temp,
		Timeout:            c.Timeout,
		MaxRetries:         c.MaxRetries,
		SiteURL:            strings.TrimSpace(c.SiteURL),
		SiteName:           strings.TrimSpace(c.SiteName),
	}
}
