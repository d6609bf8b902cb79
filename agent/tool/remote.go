package tool

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	contractx "github.com/tanpawarit/demo-agent/agent/contract"
)

const (
	defaultRemoteTimeout = 10 * time.Second
	maxRemoteBodyBytes   = 2 << 20
)

// ProxyOption customizes Proxy.
type ProxyOption func(*Proxy)

func WithTimeout(timeout time.Duration) ProxyOption {
	return func(p *Proxy) {
		if timeout > 0 {
			p.timeout = timeout
		}
	}
}

func WithHTTPClient(client *http.Client) ProxyOption {
	return func(p *Proxy) {
		if client != nil {
			p.httpClient = client
		}
	}
}

// Proxy gives remote HTTP tools the same calling convention as local ones.
// Keep-alives are disabled, so every call opens and closes its own connection.
type Proxy struct {
	httpClient *http.Client
	timeout    time.Duration
}

func NewProxy(opts ...ProxyOption) *Proxy {
	p := &Proxy{
		httpClient: &http.Client{
			Transport: &http.Transport{
				Proxy:             http.ProxyFromEnvironment,
				DisableKeepAlives: true,
			},
		},
		timeout: defaultRemoteTimeout,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(p)
		}
	}
	return p
}

// Invoke POSTs payload as JSON to endpoint and returns the decoded body
// unchanged. Non-2xx answers yield *contract.RemoteToolError; transport
// failures and timeouts yield contract.ErrRemoteUnavailable.
func (p *Proxy) Invoke(ctx context.Context, endpoint string, payload map[string]any) (any, error) {
	if payload == nil {
		payload = map[string]any{}
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("%w: marshal payload: %v", contractx.ErrInvalidArguments, err)
	}

	callCtx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(callCtx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("%w: build request: %v", contractx.ErrRemoteUnavailable, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := p.httpClient.Do(req)
	if err != nil {
		log.Warn().Err(err).Str("endpoint", endpoint).Dur("elapsed", time.Since(start)).Msg("remote tool unreachable")
		return nil, fmt.Errorf("%w: %s: %v", contractx.ErrRemoteUnavailable, endpoint, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxRemoteBodyBytes))
	if err != nil {
		log.Warn().Err(err).Str("endpoint", endpoint).Msg("remote tool response truncated")
		return nil, fmt.Errorf("%w: %s: read body: %v", contractx.ErrRemoteUnavailable, endpoint, err)
	}

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return nil, &contractx.RemoteToolError{
			StatusCode: resp.StatusCode,
			Body:       strings.TrimSpace(string(raw)),
		}
	}

	if len(bytes.TrimSpace(raw)) == 0 {
		return nil, nil
	}

	var out any
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("decode remote response: %w", err)
	}
	return out, nil
}

// invokeEndpoint calls a remote descriptor and unwraps the simple-tool
// wrapper when the endpoint declares one.
func (p *Proxy) invokeEndpoint(ctx context.Context, ep Endpoint, args map[string]any) (any, error) {
	out, err := p.Invoke(ctx, ep.URL, args)
	if err != nil {
		return nil, err
	}
	if ep.ResultKey == "" {
		return out, nil
	}
	obj, ok := out.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("%w: expected object with key %q, got %T", contractx.ErrSchemaViolation, ep.ResultKey, out)
	}
	v, ok := obj[ep.ResultKey]
	if !ok {
		return nil, fmt.Errorf("%w: response has no key %q", contractx.ErrSchemaViolation, ep.ResultKey)
	}
	return v, nil
}

// Call dispatches d by kind: local handlers run in-process, remote endpoints
// go through p. It performs no argument validation.
func Call(ctx context.Context, p *Proxy, d Descriptor, args map[string]any) (any, error) {
	switch d.Kind {
	case KindLocal:
		return d.Handler(ctx, args)
	case KindRemote:
		if p == nil {
			return nil, fmt.Errorf("%w: no proxy configured for tool=%s", contractx.ErrRemoteUnavailable, d.Name)
		}
		return p.invokeEndpoint(ctx, d.Endpoint, args)
	default:
		return nil, fmt.Errorf("%w: tool=%s has kind %s", contractx.ErrValidation, d.Name, d.Kind)
	}
}
