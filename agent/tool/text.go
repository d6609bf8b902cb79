package tool

import (
	"context"
	"regexp"
)

const redactedMarker = "[REDACTED]"

// Redactor strips private data from free text. A replacement can open a new
// word boundary for an earlier pattern, so Redact repeats the pass until the
// text is stable.
type Redactor struct {
	patterns []*regexp.Regexp
}

func NewRedactor() *Redactor {
	return &Redactor{
		patterns: []*regexp.Regexp{
			// US social security numbers
			regexp.MustCompile(`\b\d{3}-\d{2}-\d{4}\b`),
			// e-mail addresses
			regexp.MustCompile(`[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}`),
			// card numbers, grouped or not
			regexp.MustCompile(`\b(?:\d{4}[ -]?){3}\d{4}\b`),
		},
	}
}

func (r *Redactor) AddPattern(pattern string) error {
	re, err := regexp.Compile(pattern)
	if err != nil {
		return err
	}
	r.patterns = append(r.patterns, re)
	return nil
}

func (r *Redactor) Redact(s string) string {
	out := s
	// Bounded so a custom pattern matching the marker cannot spin forever.
	for range len(r.patterns) + 1 {
		next := out
		for _, p := range r.patterns {
			next = p.ReplaceAllString(next, redactedMarker)
		}
		if next == out {
			break
		}
		out = next
	}
	return out
}

func CleanTextTool(r *Redactor) Descriptor {
	if r == nil {
		r = NewRedactor()
	}
	return NewLocal(ToolCleanText, "Strip private information such as SSNs from text.",
		func(_ context.Context, args map[string]any) (any, error) {
			text, err := stringArg(args, "text")
			if err != nil {
				return nil, err
			}
			return r.Redact(text), nil
		},
		Parameter{Name: "text", Type: "string", Description: "Text to clean", Required: true},
	)
}
