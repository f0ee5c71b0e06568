package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strconv"

	"github.com/kadai-ai/kadai/common/id"
	"github.com/kadai-ai/kadai/common/llm"
	"github.com/kadai-ai/kadai/common/logger"
	"github.com/kadai-ai/kadai/common/otel"
	"github.com/kadai-ai/kadai/core/config"
	"github.com/kadai-ai/kadai/internal/browser"
	"github.com/kadai-ai/kadai/internal/browser/fake"
	"github.com/kadai-ai/kadai/internal/dailyops"
	"github.com/kadai-ai/kadai/internal/dispatcher"
	"github.com/kadai-ai/kadai/internal/graph"
	"github.com/kadai-ai/kadai/internal/graph/arangostore"
	"github.com/kadai-ai/kadai/internal/memory"
	"github.com/kadai-ai/kadai/internal/memory/typesensestore"
	"github.com/kadai-ai/kadai/internal/safety"
	"github.com/kadai-ai/kadai/internal/skills"
	"github.com/kadai-ai/kadai/internal/speech"
	"github.com/kadai-ai/kadai/internal/thread"
	"github.com/kadai-ai/kadai/internal/wakeword"
)

// app bundles the process-lifetime collaborators every subcommand needs.
// Construction order follows cmd/relay/main.go: otel before logger (the
// logger's production handler reads back the otel provider), then the
// snowflake id generator, then everything domain-specific.
type app struct {
	cfg       config.Config
	telemetry *otel.Telemetry
	dispatch  *dispatcher.Dispatcher
}

func bootstrap(ctx context.Context) (*app, error) {
	cfg := config.Load()

	telemetry, err := otel.Setup(ctx, cfg.OTel)
	if err != nil {
		os.Stderr.WriteString("failed to initialize otel: " + err.Error() + "\n")
		return nil, err
	}

	logger.Setup(cfg)

	if telemetry != nil {
		slog.Info("otel initialized", "endpoint", cfg.OTel.Endpoint)
	} else {
		slog.Info("otel disabled (no endpoint configured)")
	}
	slog.Info("kadai starting", "env", cfg.Env)

	if err := id.Init(1); err != nil {
		return nil, fmt.Errorf("init snowflake id generator: %w", err)
	}
	idGen := func() string { return strconv.FormatInt(id.New(), 10) }

	var textClient llm.AgentClient
	var visionClient llm.VisionClient
	if cfg.LLM.APIKey != "" {
		textClient, err = llm.NewAgentClient(llm.Config{APIKey: cfg.LLM.APIKey, BaseURL: cfg.LLM.BaseURL, Model: cfg.LLMModel})
		if err != nil {
			return nil, fmt.Errorf("init text LLM client: %w", err)
		}
		visionClient, err = llm.NewVisionClient(llm.Config{APIKey: cfg.LLM.APIKey, BaseURL: cfg.LLM.BaseURL, Model: cfg.VisionModel})
		if err != nil {
			return nil, fmt.Errorf("init vision LLM client: %w", err)
		}
	} else {
		slog.Warn("OPENAI_API_KEY not set: router, free_form, repo_query and all vision-action skills will be unreachable")
	}

	// The browser driver implementation is an external collaborator this
	// core only declares a contract for (spec.md §1 Non-goals). Until a
	// real Driver is wired in, every browser-backed skill runs against
	// the recording fake, which lets the DAG/playbook/vision-action
	// machinery execute end to end without a live browser.
	factory := browser.Factory(func(ctx context.Context, opts browser.Options) (browser.Driver, error) {
		return fake.New(), nil
	})

	// Both persistent backends are optional: unset their env config and
	// bootstrap falls back to internal/memory's and internal/graph's
	// in-process defaults, which is the right choice for a single
	// developer machine with nothing else running.
	var mem memory.Store
	if cfg.Typesense.Enabled() {
		mem, err = typesensestore.New(ctx, typesensestore.Config{
			ServerURL: cfg.Typesense.ServerURL,
			APIKey:    cfg.Typesense.APIKey,
		}, idGen)
		if err != nil {
			return nil, fmt.Errorf("init typesense memory store: %w", err)
		}
		slog.Info("memory store backed by typesense", "server", cfg.Typesense.ServerURL)
	} else {
		mem = memory.New(idGen, nil)
	}

	var g graph.Graph
	if cfg.ArangoDB.Enabled() {
		g, err = arangostore.New(ctx, arangostore.Config{
			URL:      cfg.ArangoDB.URL,
			Username: cfg.ArangoDB.Username,
			Password: cfg.ArangoDB.Password,
			Database: cfg.ArangoDB.Database,
		})
		if err != nil {
			return nil, fmt.Errorf("init arangodb knowledge graph: %w", err)
		}
		slog.Info("knowledge graph backed by arangodb", "url", cfg.ArangoDB.URL, "database", cfg.ArangoDB.Database)
	} else {
		g = graph.New()
	}

	registry := buildSkillRegistry(cfg, textClient, visionClient, factory, mem)

	gate, err := safety.New(safety.DefaultPatterns, safety.DefaultConfirmToken)
	if err != nil {
		return nil, fmt.Errorf("compile safety patterns: %w", err)
	}

	var router llm.AgentClient
	if cfg.UseRouter {
		router = textClient
	}

	d := dispatcher.New(registry, gate, router, mem, thread.New(idGen), g, idGen)
	d.ConcurrencyLimit = cfg.ConcurrencyLimit

	return &app{cfg: cfg, telemetry: telemetry, dispatch: d}, nil
}

// buildSkillRegistry wires every skill to the shared memory store so
// daily_ops writes and repo_query reads see the same records the
// dispatcher's own write-back produces.
func buildSkillRegistry(cfg config.Config, textClient llm.AgentClient, visionClient llm.VisionClient, factory browser.Factory, mem memory.Store) *skills.Registry {
	reg := skills.NewRegistry()
	reg.Register(skills.NewCalendarSkill(factory))
	reg.Register(skills.NewMailSkill(factory))
	reg.Register(skills.NewDriveSkill(factory))
	reg.Register(skills.NewLookupSkill(factory, visionClient))
	reg.Register(skills.NewResearchSkill(factory, visionClient))
	reg.Register(skills.NewGenericBrowserSkill(factory, visionClient))
	reg.Register(skills.NewFreeFormSkill(textClient))

	collectors := []dailyops.Collector{
		&dailyops.TodoCollector{Dir: cfg.Home},
		&dailyops.LogTailCollector{Path: cfg.Home + "/logs/kadai.log", Lines: 50},
		&dailyops.SystemEventsCollector{},
		&dailyops.ClusterStatusCollector{},
	}
	reg.Register(skills.NewDailyOpsSkill(collectors, textClient, mem))
	reg.Register(skills.NewRepoQuerySkill(mem, textClient))

	return reg
}

// speechCollaborators resolves the ASR/TTS/wake-word engines the voice
// frontend needs. All three are external collaborators this core only
// declares contracts for (spec.md §1 Non-goals); a real build links a
// concrete implementation in behind these interfaces. Without one, voice
// mode has nothing to capture audio with, so it fails fast with a clear
// message rather than silently doing nothing. This build ignores bargeIn
// and returns that error whatever its value.
func (a *app) speechCollaborators(bargeIn bool) (speech.ASR, speech.TTS, wakeword.Detector, error) {
	return nil, nil, nil, fmt.Errorf("no ASR/TTS engine is linked into this build; voice mode needs a speech.ASR and speech.TTS implementation wired in by the embedding application")
}

func (a *app) shutdown(ctx context.Context) {
	if a.telemetry != nil {
		if err := a.telemetry.Shutdown(ctx); err != nil {
			slog.ErrorContext(ctx, "otel shutdown error", "error", err)
		}
	}
}
