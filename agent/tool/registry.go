package tool

import (
	"fmt"
	"strings"
	"sync"

	"github.com/cloudwego/eino/schema"
	"github.com/rs/zerolog/log"
	"github.com/xeipuuv/gojsonschema"

	contractx "github.com/tanpawarit/demo-agent/agent/contract"
)

// Registry maps tool names to descriptors. It is filled at startup and only
// read afterwards, so it can be shared by concurrent requests.
type Registry struct {
	mu      sync.RWMutex
	tools   map[string]Descriptor
	schemas map[string]*gojsonschema.Schema
	order   []string
}

func NewRegistry() *Registry {
	return &Registry{
		tools:   make(map[string]Descriptor),
		schemas: make(map[string]*gojsonschema.Schema),
	}
}

func (r *Registry) Register(d Descriptor) error {
	if err := d.validate(); err != nil {
		return err
	}

	compiled, err := compileSchema(d.Parameters)
	if err != nil {
		return fmt.Errorf("%w: compile schema for tool=%s: %v", contractx.ErrValidation, d.Name, err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.tools[d.Name]; exists {
		return fmt.Errorf("%w: %s", contractx.ErrDuplicateName, d.Name)
	}

	d.Parameters = append([]Parameter(nil), d.Parameters...)
	r.tools[d.Name] = d
	r.schemas[d.Name] = compiled
	r.order = append(r.order, d.Name)

	log.Debug().Str("tool", d.Name).Str("kind", d.Kind.String()).Msg("tool registered")
	return nil
}

func (r *Registry) MustRegister(d Descriptor) {
	if err := r.Register(d); err != nil {
		panic(err)
	}
}

func (r *Registry) Resolve(name string) (Descriptor, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	d, ok := r.tools[strings.TrimSpace(name)]
	if !ok {
		return Descriptor{}, fmt.Errorf("%w: %s", contractx.ErrUnknownTool, name)
	}
	return d, nil
}

// ValidateArgs checks args against the tool's declared parameters. Tools
// without parameters accept anything.
func (r *Registry) ValidateArgs(name string, args map[string]any) error {
	r.mu.RLock()
	compiled, ok := r.schemas[name]
	_, known := r.tools[name]
	r.mu.RUnlock()

	if !known {
		return fmt.Errorf("%w: %s", contractx.ErrUnknownTool, name)
	}
	if !ok || compiled == nil {
		return nil
	}
	if args == nil {
		args = map[string]any{}
	}

	result, err := compiled.Validate(gojsonschema.NewGoLoader(args))
	if err != nil {
		return fmt.Errorf("%w: tool=%s: %v", contractx.ErrInvalidArguments, name, err)
	}
	if !result.Valid() {
		problems := make([]string, 0, len(result.Errors()))
		for _, e := range result.Errors() {
			problems = append(problems, e.String())
		}
		return fmt.Errorf("%w: tool=%s: %s", contractx.ErrInvalidArguments, name, strings.Join(problems, "; "))
	}
	return nil
}

// Names lists tools in registration order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]string(nil), r.order...)
}

func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.order)
}

// ToolInfos exports the catalog for tool-calling chat models.
func (r *Registry) ToolInfos() []*schema.ToolInfo {
	r.mu.RLock()
	defer r.mu.RUnlock()

	infos := make([]*schema.ToolInfo, 0, len(r.order))
	for _, name := range r.order {
		d := r.tools[name]
		info := &schema.ToolInfo{
			Name: d.Name,
			Desc: d.Description,
		}
		if len(d.Parameters) > 0 {
			params := make(map[string]*schema.ParameterInfo, len(d.Parameters))
			for _, p := range d.Parameters {
				params[p.Name] = &schema.ParameterInfo{
					Type:     schema.DataType(p.Type),
					Desc:     p.Description,
					Required: p.Required,
					Enum:     p.Enum,
				}
			}
			info.ParamsOneOf = schema.NewParamsOneOfByParams(params)
		}
		infos = append(infos, info)
	}
	return infos
}

func compileSchema(params []Parameter) (*gojsonschema.Schema, error) {
	if len(params) == 0 {
		return nil, nil
	}

	properties := make(map[string]any, len(params))
	required := make([]string, 0, len(params))
	for _, p := range params {
		prop := map[string]any{
			"type":        p.Type,
			"description": p.Description,
		}
		if len(p.Enum) > 0 {
			enum := make([]any, 0, len(p.Enum))
			for _, v := range p.Enum {
				enum = append(enum, v)
			}
			prop["enum"] = enum
		}
		properties[p.Name] = prop
		if p.Required {
			required = append(required, p.Name)
		}
	}

	schemaMap := map[string]any{
		"type":                 "object",
		"additionalProperties": false,
		"properties":           properties,
	}
	if len(required) > 0 {
		schemaMap["required"] = required
	}

	return gojsonschema.NewSchema(gojsonschema.NewGoLoader(schemaMap))
}
