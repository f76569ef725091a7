package main

import (
	"context"
	"os/signal"
	"strings"
	"syscall"

	"github.com/rs/zerolog/log"

	"github.com/crm-online-boutique/crm-concierge/agent/agents/supervisor"
	"github.com/crm-online-boutique/crm-concierge/agent/agents/worker"
	contractx "github.com/crm-online-boutique/crm-concierge/agent/contract"
	llmx "github.com/crm-online-boutique/crm-concierge/agent/llm"
	plannerx "github.com/crm-online-boutique/crm-concierge/agent/planner"
	promptx "github.com/crm-online-boutique/crm-concierge/agent/prompt"
	runnerx "github.com/crm-online-boutique/crm-concierge/agent/runner"
	statex "github.com/crm-online-boutique/crm-concierge/agent/state"
	toolx "github.com/crm-online-boutique/crm-concierge/agent/tool"
	"github.com/crm-online-boutique/crm-concierge/crm"
	"github.com/crm-online-boutique/crm-concierge/gateway"
	"github.com/crm-online-boutique/crm-concierge/httpapi"
	auditx "github.com/crm-online-boutique/crm-concierge/pkg/audit"
	configx "github.com/crm-online-boutique/crm-concierge/pkg/config"
	_ "github.com/crm-online-boutique/crm-concierge/pkg/logger/autoload"
	openrouterx "github.com/crm-online-boutique/crm-concierge/pkg/openrouter"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	crmStore := buildCRMStore()
	sessionStore := buildSessionStore()

	gw, err := gateway.New(crmStore)
	if err != nil {
		log.Fatal().Err(err).Msg("build tool gateway")
	}
	gwCfg := configx.MustNew[gateway.Config]("GATEWAY")
	sse := gw.SSEServer(gwCfg.BaseURL)
	go func() {
		log.Info().Str("addr", gwCfg.Addr).Msg("tool gateway listening")
		if err := sse.Start(gwCfg.Addr); err != nil {
			log.Error().Err(err).Msg("tool gateway stopped")
			stop()
		}
	}()
	defer func() {
		if err := sse.Shutdown(context.Background()); err != nil {
			log.Warn().Err(err).Msg("tool gateway shutdown")
		}
	}()

	invoker := toolx.NewMCPInvoker(*configx.MustNew[toolx.InvokerConfig]("MCP"))
	supPlanner, workerPlanner := buildPlanners(ctx)

	workerAgent, err := worker.New(workerPlanner, invoker)
	if err != nil {
		log.Fatal().Err(err).Msg("build worker agent")
	}
	supAgent, err := supervisor.New(supPlanner, workerAgent)
	if err != nil {
		log.Fatal().Err(err).Msg("build supervisor agent")
	}

	publisher, err := auditx.FromConfig(*configx.MustNew[auditx.Config]("AUDIT"))
	if err != nil {
		log.Fatal().Err(err).Msg("build audit publisher")
	}

	sessions, err := runnerx.New(sessionStore, supAgent, publisher, *configx.MustNew[runnerx.Config]("RUNNER"))
	if err != nil {
		log.Fatal().Err(err).Msg("build session runner")
	}

	api, err := httpapi.New(sessions, *configx.MustNew[httpapi.Config]("HTTP"))
	if err != nil {
		log.Fatal().Err(err).Msg("build http api")
	}
	if err := api.Run(ctx); err != nil {
		log.Fatal().Err(err).Msg("http api stopped")
	}
}

// buildCRMStore prefers Postgres when a DSN is configured and otherwise
// falls back to the seeded in-memory dataset for local runs.
func buildCRMStore() crm.Store {
	cfg := configx.MustNew[crm.PostgresConfig]("CRM_DB")
	if strings.TrimSpace(cfg.DSN) == "" {
		log.Info().Msg("crm store: using seeded in-memory dataset")
		return crm.NewSeededStore()
	}

	store, err := crm.NewPostgresStore(*cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("crm store: connect postgres")
	}
	log.Info().Msg("crm store: using postgres")
	return store
}

func buildSessionStore() statex.Store {
	cfg := configx.MustNew[statex.RedisConfig]("REDIS")
	if strings.TrimSpace(cfg.URL) == "" {
		log.Info().Msg("session store: using in-memory store")
		return statex.NewMemoryStore()
	}

	store, err := statex.NewRedisStore(*cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("session store: connect redis")
	}
	log.Info().Msg("session store: using redis")
	return store
}

// buildPlanners wires model-backed planning when an OpenRouter key is
// present; otherwise both agents run on the deterministic rule planners.
func buildPlanners(ctx context.Context) (contractx.Planner, contractx.ToolPlanner) {
	cfg := configx.MustNew[llmx.Config]("OPENROUTER")
	if !cfg.Enabled() {
		log.Info().Msg("planners: using deterministic rules")
		return plannerx.RulePlanner{}, plannerx.RuleToolPlanner{}
	}
	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("planners: invalid openrouter config")
	}

	// The raw SDK client doubles as an eager credential check.
	if openrouterx.NewClient(cfg.OpenRouterFor(contractx.AgentTypeSupervisor)) == nil {
		log.Fatal().Msg("planners: openrouter client init failed")
	}

	prompts := promptx.LoadPromptSet()

	supModel, err := cfg.OpenRouterFor(contractx.AgentTypeSupervisor).New(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("planners: build supervisor model")
	}
	supPlanner, err := llmx.NewPlanner(ctx, supModel, prompts.Supervisor)
	if err != nil {
		log.Fatal().Err(err).Msg("planners: build supervisor planner")
	}

	workerModel, err := cfg.OpenRouterFor(contractx.AgentTypeWorker).New(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("planners: build worker model")
	}
	workerPlanner, err := llmx.NewToolPlanner(ctx, workerModel, prompts.Worker)
	if err != nil {
		log.Fatal().Err(err).Msg("planners: build worker tool planner")
	}

	log.Info().Msg("planners: using openrouter models")
	return supPlanner, workerPlanner
}
