package tool

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	contractx "github.com/tanpawarit/demo-agent/agent/contract"
)

// Kind is the closed set of invocation variants a descriptor can carry.
type Kind int

const (
	KindLocal Kind = iota + 1
	KindRemote
)

func (k Kind) String() string {
	switch k {
	case KindLocal:
		return "local"
	case KindRemote:
		return "remote"
	default:
		return "unknown"
	}
}

// Handler is the calling convention shared by every local tool.
type Handler func(ctx context.Context, args map[string]any) (any, error)

// Endpoint points at a remote tool. ResultKey names the wrapper field of
// "simple" tools ({"result": ...}); stateful tools leave it empty and return
// the object itself.
type Endpoint struct {
	URL       string
	ResultKey string
}

type Parameter struct {
	Name        string
	Type        string
	Description string
	Required    bool
	Enum        []string
}

// Descriptor is an immutable tool record. Build it with NewLocal or NewRemote.
type Descriptor struct {
	Name        string
	Description string
	Kind        Kind
	Handler     Handler
	Endpoint    Endpoint
	Parameters  []Parameter

	// LongRunning marks model-backed tools; Fallback produces the substitute
	// result used when the backend is unreachable.
	LongRunning bool
	Fallback    func(args map[string]any) any
}

func NewLocal(name, description string, handler Handler, params ...Parameter) Descriptor {
	return Descriptor{
		Name:        strings.TrimSpace(name),
		Description: description,
		Kind:        KindLocal,
		Handler:     handler,
		Parameters:  params,
	}
}

func NewRemote(name, description string, endpoint Endpoint, params ...Parameter) Descriptor {
	return Descriptor{
		Name:        strings.TrimSpace(name),
		Description: description,
		Kind:        KindRemote,
		Endpoint:    endpoint,
		Parameters:  params,
	}
}

// WithFallback returns a long-running copy of d that degrades to fn.
func (d Descriptor) WithFallback(fn func(args map[string]any) any) Descriptor {
	d.LongRunning = true
	d.Fallback = fn
	return d
}

var validParamTypes = map[string]bool{
	"string": true, "number": true, "integer": true,
	"boolean": true, "object": true, "array": true,
}

func (d Descriptor) validate() error {
	if d.Name == "" {
		return fmt.Errorf("%w: tool name is empty", contractx.ErrValidation)
	}
	switch d.Kind {
	case KindLocal:
		if d.Handler == nil {
			return fmt.Errorf("%w: local tool=%s has no handler", contractx.ErrValidation, d.Name)
		}
		if d.Endpoint.URL != "" {
			return fmt.Errorf("%w: local tool=%s must not carry an endpoint", contractx.ErrValidation, d.Name)
		}
	case KindRemote:
		if d.Handler != nil {
			return fmt.Errorf("%w: remote tool=%s must not carry a handler", contractx.ErrValidation, d.Name)
		}
		if _, err := url.ParseRequestURI(d.Endpoint.URL); err != nil {
			return fmt.Errorf("%w: remote tool=%s endpoint: %v", contractx.ErrValidation, d.Name, err)
		}
	default:
		return fmt.Errorf("%w: tool=%s has no invocation kind", contractx.ErrValidation, d.Name)
	}

	seen := make(map[string]struct{}, len(d.Parameters))
	for _, p := range d.Parameters {
		if strings.TrimSpace(p.Name) == "" {
			return fmt.Errorf("%w: tool=%s has a parameter without name", contractx.ErrValidation, d.Name)
		}
		if !validParamTypes[p.Type] {
			return fmt.Errorf("%w: tool=%s parameter=%s has invalid type %q", contractx.ErrValidation, d.Name, p.Name, p.Type)
		}
		if _, dup := seen[p.Name]; dup {
			return fmt.Errorf("%w: tool=%s declares parameter=%s twice", contractx.ErrValidation, d.Name, p.Name)
		}
		seen[p.Name] = struct{}{}
	}
	return nil
}
