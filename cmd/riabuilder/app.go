package main

import (
	"fmt"

	"riabuilder/internal/assistant"
	"riabuilder/internal/config"
	"riabuilder/internal/gemini"
	"riabuilder/internal/logging"
	"riabuilder/internal/store"
	"riabuilder/internal/tools"
	"riabuilder/internal/tools/boardtools"
	"riabuilder/internal/tools/doctools"
	"riabuilder/internal/tools/drivetools"
	"riabuilder/internal/tools/researchtools"
	"riabuilder/internal/tools/slacktools"
)

// app holds the wired runtime: config, store, tool catalogue, and the
// orchestrator.
type app struct {
	cfg      config.Config
	store    *store.LocalStore
	registry *tools.Registry
	orch     *assistant.Orchestrator
}

// buildApp loads configuration and wires every component. Flags win
// over config file and environment.
func buildApp(opts ...assistant.Option) (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if dataDir != "" {
		cfg.DataDir = dataDir
	}
	if addr != "" {
		cfg.Addr = addr
	}

	if err := logging.Initialize(cfg.DataDir); err != nil {
		return nil, fmt.Errorf("initialize logging: %w", err)
	}
	logging.Boot("riabuilder %s starting, data dir %s", version, cfg.DataDir)

	st, err := store.NewLocalStore(cfg.DatabasePath())
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}

	client := gemini.NewClient(gemini.Config{
		APIKey:  cfg.Model.APIKey,
		BaseURL: cfg.Model.BaseURL,
		Model:   cfg.Model.Model,
		Timeout: cfg.ModelTimeout(),
	})

	registry := tools.NewRegistry()
	boardtools.Register(registry, st)
	doctools.Register(registry, st, st)
	slacktools.Register(registry, slacktools.NewClient(cfg.Integrations.SlackSendURL))
	researchtools.Register(registry, researchtools.NewClient(cfg.Integrations.WebResearchURL))
	drivetools.Register(registry, drivetools.NewClient(drivetools.ClientConfig{
		AccessToken:  cfg.Integrations.GoogleAccessToken,
		DriveBaseURL: cfg.Integrations.DriveBaseURL,
		DocsBaseURL:  cfg.Integrations.DocsBaseURL,
	}))
	logging.Boot("tool catalogue ready: %d tools", registry.Count())

	orch := assistant.New(client, registry, st, opts...)

	return &app{cfg: cfg, store: st, registry: registry, orch: orch}, nil
}

func (a *app) Close() {
	if err := a.store.Close(); err != nil {
		logging.Store("close failed: %v", err)
	}
	logging.CloseAll()
}
