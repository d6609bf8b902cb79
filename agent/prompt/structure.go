package prompt

import (
	"fmt"
	"strings"

	contractx "github.com/tanpawarit/demo-agent/agent/contract"
)

type Tone string

const (
	ToneFormal       Tone = "formal"
	ToneInformal     Tone = "informal"
	ToneFriendly     Tone = "friendly"
	ToneProfessional Tone = "professional"
	ToneHumorous     Tone = "humorous"
	ToneSerious      Tone = "serious"
)

// Tones lists the accepted tones in declaration order.
func Tones() []Tone {
	return []Tone{ToneFormal, ToneInformal, ToneFriendly, ToneProfessional, ToneHumorous, ToneSerious}
}

func ParseTone(raw string) (Tone, error) {
	raw = strings.ToLower(strings.TrimSpace(raw))
	if raw == "" {
		return ToneProfessional, nil
	}
	for _, t := range Tones() {
		if string(t) == raw {
			return t, nil
		}
	}
	return "", fmt.Errorf("%w: unsupported tone %q", contractx.ErrInvalidArguments, raw)
}

// Structure is a prompt built from an objective, optional context, a tone and
// the notes collected while refining it.
type Structure struct {
	Objective       string
	Context         string
	Tone            Tone
	RefinementNotes []string
}

func (s Structure) Render() string {
	tone := s.Tone
	if tone == "" {
		tone = ToneProfessional
	}

	segments := []string{"Objective: " + s.Objective}
	if c := strings.TrimSpace(s.Context); c != "" {
		segments = append(segments, "Context: "+c)
	}
	segments = append(segments, "Tone: "+string(tone))
	if len(s.RefinementNotes) > 0 {
		segments = append(segments, "Refinement Notes:")
		for _, note := range s.RefinementNotes {
			segments = append(segments, "- "+note)
		}
	}
	return strings.Join(segments, "\n")
}

// Greeting builds the structured greeting prompt for name.
func Greeting(name string, tone Tone) Structure {
	return Structure{
		Objective: "Generate a concise greeting for the provided person.",
		Context:   fmt.Sprintf("The person's name is %s. Respond with a single sentence that greets them directly.", name),
		Tone:      tone,
		RefinementNotes: []string{
			"Start with this structure and adjust the context or tone based on the model's response.",
			"Keep iterating until the greeting matches the desired voice and clarity.",
		},
	}
}
