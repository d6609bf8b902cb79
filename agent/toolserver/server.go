// Package toolserver hosts registry tools over HTTP so that another agent can
// register them as remote tools.
package toolserver

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strings"

	"github.com/rs/zerolog/log"

	contractx "github.com/tanpawarit/demo-agent/agent/contract"
	executorx "github.com/tanpawarit/demo-agent/agent/executor"
	toolx "github.com/tanpawarit/demo-agent/agent/tool"
)

const (
	maxRequestBodyBytes = 1 << 20
	resultKey           = "result"
)

type Server struct {
	registry *toolx.Registry
	proxy    *toolx.Proxy
	fallback executorx.FallbackPolicy
	mux      *http.ServeMux
}

type Option func(*Server)

// WithFallbackPolicy controls when a long-running tool answers with its
// fallback instead of an error.
func WithFallbackPolicy(p executorx.FallbackPolicy) Option {
	return func(s *Server) {
		s.fallback = p
	}
}

// New exposes every tool of reg as POST /{tool}. GET /tools lists them.
func New(reg *toolx.Registry, proxy *toolx.Proxy, opts ...Option) *Server {
	if proxy == nil {
		proxy = toolx.NewProxy()
	}
	s := &Server{
		registry: reg,
		proxy:    proxy,
		fallback: executorx.DefaultFallbackPolicy(),
		mux:      http.NewServeMux(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.mux.HandleFunc("GET /tools", s.handleList)
	s.mux.HandleFunc("POST /{tool}", s.handleCall)
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

// Endpoint returns the remote endpoint a client should use for a tool served
// at baseURL. Object results come back bare; everything else is wrapped.
func Endpoint(baseURL string, d toolx.Descriptor, objectResult bool) toolx.Endpoint {
	ep := toolx.Endpoint{URL: strings.TrimRight(baseURL, "/") + "/" + d.Name}
	if !objectResult {
		ep.ResultKey = resultKey
	}
	return ep
}

type toolListing struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	LongRunning bool   `json:"long_running,omitempty"`
}

func (s *Server) handleList(w http.ResponseWriter, _ *http.Request) {
	names := s.registry.Names()
	sort.Strings(names)
	out := make([]toolListing, 0, len(names))
	for _, name := range names {
		d, err := s.registry.Resolve(name)
		if err != nil {
			continue
		}
		out = append(out, toolListing{Name: d.Name, Description: d.Description, LongRunning: d.LongRunning})
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleCall(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("tool")
	desc, err := s.registry.Resolve(name)
	if err != nil {
		writeError(w, http.StatusNotFound, err)
		return
	}

	args, err := readArgs(r)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, err)
		return
	}
	if err := s.registry.ValidateArgs(name, args); err != nil {
		writeError(w, http.StatusUnprocessableEntity, err)
		return
	}

	out, err := toolx.Call(r.Context(), s.proxy, desc, args)
	if err != nil && desc.Fallback != nil && s.fallback.Applies(err) {
		log.Warn().Err(err).Str("tool", name).Msg("serving tool fallback")
		out, err = desc.Fallback(args), nil
	}
	switch {
	case errors.Is(err, contractx.ErrInvalidArguments):
		writeError(w, http.StatusUnprocessableEntity, err)
		return
	case err != nil:
		log.Warn().Err(err).Str("tool", name).Msg("served tool failed")
		writeError(w, http.StatusInternalServerError, err)
		return
	}

	if obj, ok := out.(map[string]any); ok {
		writeJSON(w, http.StatusOK, obj)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{resultKey: out})
}

// readArgs merges query parameters with a JSON object body. Body fields win.
func readArgs(r *http.Request) (map[string]any, error) {
	args := make(map[string]any)
	for k, v := range r.URL.Query() {
		if len(v) > 0 {
			args[k] = v[0]
		}
	}

	raw, err := io.ReadAll(io.LimitReader(r.Body, maxRequestBodyBytes))
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(string(raw)) == "" {
		return args, nil
	}

	var body map[string]any
	if err := json.Unmarshal(raw, &body); err != nil {
		return nil, fmt.Errorf("%w: body must be a JSON object", contractx.ErrInvalidArguments)
	}
	for k, v := range body {
		args[k] = v
	}
	return args, nil
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
