package cmd

import (
	"fmt"

	"github.com/selfai-agent/selfai/pkg/config"
	"github.com/selfai-agent/selfai/pkg/dispatch"
	"github.com/selfai-agent/selfai/pkg/memory"
	"github.com/selfai-agent/selfai/pkg/merge"
	"github.com/selfai-agent/selfai/pkg/pipeline"
	"github.com/selfai-agent/selfai/pkg/planner"
	"github.com/selfai-agent/selfai/pkg/providers"
	"github.com/selfai-agent/selfai/pkg/selfmod"
	"github.com/selfai-agent/selfai/pkg/tools"
	"github.com/selfai-agent/selfai/pkg/utils"
)

// app holds the wired application components shared by the commands.
type app struct {
	cfg      *config.Config
	logger   *utils.Logger
	chain    *providers.Chain
	registry *tools.Registry
	mem      *memory.Store
	pipe     *pipeline.Pipeline
	runner   *selfmod.Runner
	persona  config.Persona
}

// newApp loads configuration and wires every component. workDir is the
// root the tool registry and the self-modification gate operate on.
func newApp(workDir string) (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	logger := utils.GetLogger(cfg.SkipPrompt)

	backends, err := providers.NewAll(cfg.Backends)
	if err != nil {
		return nil, err
	}
	chain := providers.NewChain(backends, logger)
	registry := tools.NewRegistry(workDir)
	mem := memory.NewStore(cfg.MemoryDir)

	personas, err := config.LoadPersonas()
	if err != nil {
		return nil, err
	}
	persona := config.FindPersona(personas, cfg.ActivePersona)

	generator := planner.NewGenerator(chain, cfg.Identity, registry.Names(), logger)
	dispatcher := dispatch.NewDispatcher(chain, registry, mem, dispatch.Options{
		Identity:     cfg.Identity,
		Persona:      persona,
		Category:     cfg.ActiveCategory,
		MemoryWindow: cfg.MemoryWindow,
	}, logger)
	merger := merge.NewMerger(chain, mem, cfg.Identity, cfg.ActiveCategory, logger)
	plans := planner.NewStore(cfg.PlansDir)

	gate := selfmod.NewGate(cfg.Safety, logger, nil)
	runner := selfmod.NewRunner(gate, cfg.SelfModCommand, logger)

	return &app{
		cfg:      cfg,
		logger:   logger,
		chain:    chain,
		registry: registry,
		mem:      mem,
		pipe:     pipeline.New(generator, dispatcher, merger, plans, logger),
		runner:   runner,
		persona:  persona,
	}, nil
}
