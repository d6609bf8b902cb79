package prompt

import (
	_ "embed"
	"strings"
)

var (
	//go:embed template/planner.txt
	plannerRaw string

	//go:embed template/research.txt
	researchRaw string
)

// PromptSet holds loaded prompt content.
type PromptSet struct {
	Planner  string
	Research string
}

// LoadPromptSet returns a PromptSet with trimmed prompt strings.
func LoadPromptSet() PromptSet {
	return PromptSet{
		Planner:  strings.TrimSpace(plannerRaw),
		Research: strings.TrimSpace(researchRaw),
	}
}
