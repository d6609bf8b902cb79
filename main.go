package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	orchestratorx "github.com/tanpawarit/demo-agent/agent/agents/orchestrator"
	plannerx "github.com/tanpawarit/demo-agent/agent/agents/planner"
	contractx "github.com/tanpawarit/demo-agent/agent/contract"
	executorx "github.com/tanpawarit/demo-agent/agent/executor"
	llmx "github.com/tanpawarit/demo-agent/agent/llm"
	promptx "github.com/tanpawarit/demo-agent/agent/prompt"
	statex "github.com/tanpawarit/demo-agent/agent/state"
	ticketx "github.com/tanpawarit/demo-agent/agent/ticket"
	toolx "github.com/tanpawarit/demo-agent/agent/tool"
	toolserverx "github.com/tanpawarit/demo-agent/agent/toolserver"
	configx "github.com/tanpawarit/demo-agent/pkg/config"
	httpserverx "github.com/tanpawarit/demo-agent/pkg/httpserver"
	logx "github.com/tanpawarit/demo-agent/pkg/logger"
	openrouterx "github.com/tanpawarit/demo-agent/pkg/openrouter"
	qstashx "github.com/tanpawarit/demo-agent/pkg/qstash"
)

type AppConfig struct {
	Parallel       bool          `split_words:"true" default:"false"`
	FailFast       bool          `split_words:"true" default:"false"`
	StepTimeout    time.Duration `split_words:"true" default:"0s"`
	RemoteTimeout  time.Duration `split_words:"true" default:"10s"`
	TicketBaseURL  string        `envconfig:"TICKET_BASE_URL" default:"http://127.0.0.1:8001"`
	ToolsAddr      string        `split_words:"true" default:"127.0.0.1:8000"`
	SessionID      string        `split_words:"true" default:"cli"`
	FallbackAbsent bool          `split_words:"true" default:"true"`
	FallbackFailed bool          `split_words:"true" default:"true"`
}

func (c AppConfig) fallbackPolicy() executorx.FallbackPolicy {
	return executorx.FallbackPolicy{OnAbsent: c.FallbackAbsent, OnFailure: c.FallbackFailed}
}

func (c AppConfig) orchestratorConfig() orchestratorx.Config {
	mode := executorx.Sequential
	if c.Parallel {
		mode = executorx.Parallel
	}
	return orchestratorx.Config{Mode: mode, FailFast: c.FailFast, StepTimeout: c.StepTimeout}
}

func main() {
	mode := flag.String("mode", "chat", "chat | tickets | tools")

	logx.Init(*configx.MustNew[logx.Config]("LOG"))
	appCfg := configx.MustNew[AppConfig]("AGENT")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var err error
	switch *mode {
	case "chat":
		err = runChat(ctx, *appCfg, os.Stdin, os.Stdout)
	case "tickets":
		err = runTickets(ctx)
	case "tools":
		err = runTools(ctx, *appCfg)
	default:
		err = fmt.Errorf("unknown mode %q", *mode)
	}
	if err != nil && !errors.Is(err, context.Canceled) {
		log.Fatal().Err(err).Str("mode", *mode).Msg("exited with error")
	}
}

func buildRegistry(appCfg AppConfig, llmCfg llmx.Config, prompts promptx.PromptSet) (*toolx.Registry, *toolx.Proxy) {
	proxy := toolx.NewProxy(toolx.WithTimeout(appCfg.RemoteTimeout))

	var reasoner contractx.Reasoner
	if client := openrouterx.NewClient(llmCfg.OpenRouterFor(llmx.RoleResearch)); client != nil {
		reasoner = llmx.NewOpenAIReasoner(client, llmCfg.ModelFor(llmx.RoleResearch))
	} else {
		log.Warn().Msg("no LLM api key, deep_research will use its fallback")
	}

	reg := toolx.NewRegistry()
	if err := toolx.RegisterDefaults(reg, toolx.Deps{
		Proxy:          proxy,
		TicketBaseURL:  appCfg.TicketBaseURL,
		Reasoner:       reasoner,
		ResearchModel:  llmCfg.ModelFor(llmx.RoleResearch),
		ResearchPrompt: prompts.Research,
	}); err != nil {
		panic(err)
	}
	return reg, proxy
}

func buildPlanner(ctx context.Context, llmCfg llmx.Config, reg *toolx.Registry, prompts promptx.PromptSet) contractx.Planner {
	keyword := plannerx.NewKeyword()
	if !llmCfg.Configured() {
		return keyword
	}

	orCfg := llmCfg.OpenRouterFor(llmx.RolePlanner)
	chatModel, err := orCfg.New(ctx)
	if err != nil {
		log.Warn().Err(err).Msg("planner model unavailable, using keyword planner")
		return keyword
	}
	model, err := plannerx.NewModel(ctx, chatModel, reg.ToolInfos(), prompts.Planner)
	if err != nil {
		log.Warn().Err(err).Msg("planner graph unavailable, using keyword planner")
		return keyword
	}
	return &plannerx.Fallback{Primary: model, Secondary: keyword}
}

func runChat(ctx context.Context, appCfg AppConfig, in io.Reader, out io.Writer) error {
	llmCfg := configx.MustNew[llmx.Config]("LLM")
	prompts := promptx.LoadPromptSet()

	reg, proxy := buildRegistry(appCfg, *llmCfg, prompts)
	exec, err := executorx.New(reg,
		executorx.WithProxy(proxy),
		executorx.WithFallbackPolicy(appCfg.fallbackPolicy()),
	)
	if err != nil {
		return err
	}

	orch, err := orchestratorx.New(buildPlanner(ctx, *llmCfg, reg, prompts), exec, statex.NewManager(), appCfg.orchestratorConfig())
	if err != nil {
		return err
	}

	fmt.Fprintln(out, "Tool orchestration demo. Type a request, or 'exit' to quit.")
	scanner := bufio.NewScanner(in)
	for {
		fmt.Fprint(out, "> ")
		if !scanner.Scan() {
			return scanner.Err()
		}
		text := strings.TrimSpace(scanner.Text())
		if text == "" {
			continue
		}
		if text == "exit" || text == "quit" {
			return nil
		}

		resp, err := orch.HandleMessage(ctx, appCfg.SessionID, text)
		var stepErr *contractx.StepError
		if err != nil && !errors.As(err, &stepErr) {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			fmt.Fprintf(out, "error: %v\n", err)
			continue
		}

		fmt.Fprintln(out, resp.Reply)
		if len(resp.Result.Log) > 0 {
			fmt.Fprintln(out, "--- log ---")
			fmt.Fprintln(out, executorx.Format(resp.Result.Log))
		}
		if stepErr != nil {
			fmt.Fprintf(out, "aborted at step %d (%s)\n", stepErr.Index+1, stepErr.Tool)
		}
	}
}

func runTickets(ctx context.Context) error {
	ticketCfg := configx.MustNew[ticketx.Config]("TICKET")
	upstashCfg := configx.MustNew[ticketx.UpstashConfig]("UPSTASH_REDIS")

	store, err := ticketx.OpenStore(ctx, *ticketCfg, *upstashCfg)
	if err != nil {
		return err
	}
	if c, ok := store.(io.Closer); ok {
		defer c.Close()
	}

	var opts []ticketx.ServerOption
	if ticketCfg.StrictNotFound {
		opts = append(opts, ticketx.WithNotFoundStatus(http.StatusNotFound))
	}
	qstashCfg := configx.MustNew[qstashx.Config]("QSTASH")
	if qstashCfg.Configured() && ticketCfg.NotifyWebhook != "" {
		opts = append(opts, ticketx.WithNotifier(
			ticketx.NewQStashNotifier(qstashx.MustNew(*qstashCfg), ticketCfg.NotifyWebhook),
		))
	}

	log.Info().Str("backend", string(ticketCfg.Backend)).Msg("ticket store ready")
	return httpserverx.Serve(ctx, ticketCfg.Addr, ticketx.NewServer(store, opts...))
}

func runTools(ctx context.Context, appCfg AppConfig) error {
	llmCfg := configx.MustNew[llmx.Config]("LLM")
	reg, proxy := buildRegistry(appCfg, *llmCfg, promptx.LoadPromptSet())
	return httpserverx.Serve(ctx, appCfg.ToolsAddr, toolserverx.New(reg, proxy,
		toolserverx.WithFallbackPolicy(appCfg.fallbackPolicy()),
	))
}
