package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	tea "charm.land/bubbletea/v2"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/xonecas/symb/internal/agent"
	"github.com/xonecas/symb/internal/config"
	"github.com/xonecas/symb/internal/permission"
	"github.com/xonecas/symb/internal/promptenv"
	"github.com/xonecas/symb/internal/provider"
	"github.com/xonecas/symb/internal/tools"
	"github.com/xonecas/symb/internal/tools/toolkit"
	"github.com/xonecas/symb/internal/tui"
	"github.com/xonecas/symb/internal/ui"
)

func main() {
	if err := setupFileLogging(); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: failed to setup logging: %v\n", err)
	}

	flagConfig := flag.String("config", "", "path to symb.toml")
	flagProvider := flag.String("provider", "", "provider name (overrides config default_provider)")
	flagModel := flag.String("model", "", "model id (overrides config/provider default)")
	flag.Parse()

	cfg, err := config.Load(*flagConfig)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}
	creds, err := config.LoadCredentials()
	if err != nil {
		log.Warn().Err(err).Msg("failed to load credentials file, continuing with environment only")
		creds = &config.Credentials{}
	}

	providerName := *flagProvider
	if providerName == "" {
		providerName = cfg.DefaultProvider
	}
	if providerName == "" {
		log.Fatal().Msg("no provider specified: pass -provider or set default_provider in config")
	}

	registry := buildProviderRegistry()

	app, err := newApplication(cfg, creds, registry, providerName, *flagModel)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize agent")
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	go app.runner.Run(ctx)

	program := tui.New(app.runner.Events, "vulcan")
	teaProgram := tea.NewProgram(program)
	if _, err := teaProgram.Run(); err != nil {
		log.Fatal().Err(err).Msg("tui exited with error")
	}
}

// application bundles the composed agent runner.
type application struct {
	runner *ui.Runner
}

func newApplication(cfg *config.Config, creds *config.Credentials, registry *provider.Registry, providerName, modelOverride string) (*application, error) {
	workingDir, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("getwd: %w", err)
	}

	permDir := permission.DefaultConfigDir("")
	if dataDir, err := config.DataDir(); err == nil {
		permDir = permission.DefaultConfigDir(dataDir)
	}
	permConfigPath := permission.DefaultConfigFile(permDir)

	toolCtx, err := toolkit.NewContext()
	if err != nil {
		return nil, fmt.Errorf("tool context: %w", err)
	}
	toolCtx.DefaultTimeoutMS = int64(cfg.Tools.DefaultTimeoutMSOrDefault())
	toolCtx.MaxOutputSize = cfg.Tools.MaxOutputSizeOrDefault()

	toolRegistry := tools.NewRegistry()
	tools.RegisterBuiltins(toolRegistry)
	emitter := tools.NewEmitter()
	engine := tools.NewEngine(toolRegistry, emitter)

	runnerEvents := make(chan ui.AppEvent, 64)
	permUI := ui.NewChannelPermissionUI(runnerEvents)
	permManager, err := permission.NewManager(workingDir, permConfigPath, permUI, time.Now())
	if err != nil {
		return nil, fmt.Errorf("permission manager: %w", err)
	}

	executor := tools.NewExecutor(toolRegistry, engine, permManager)

	sw := &modelSwitcher{
		cfg:      cfg,
		creds:    creds,
		registry: registry,
		executor: executor,
		toolCtx:  toolCtx,
		toolReg:  toolRegistry,
	}

	loop, systemPrompt, resolvedProvider, model, err := sw.build(providerName, modelOverride)
	if err != nil {
		return nil, err
	}

	mem := agent.NewMemory(systemPrompt)
	runner := ui.NewRunner(loop, mem, sw)
	runner.Events = runnerEvents

	log.Info().Str("provider", resolvedProvider).Str("model", model).Msg("agent ready")

	return &application{runner: runner}, nil
}

// modelSwitcher implements ui.ModelSwitcher: it rebuilds the Provider and
// agent.Loop against a model-catalog entry (here, a "<provider>/<model>"
// pair resolved from config + environment) and regenerates the system
// prompt for the new provider's wire family. Grounded on
// original_source's model-switch flow (spec.md §4.8), adapted from the
// teacher's direct provider.Create call in cmd/symb/main.go.
type modelSwitcher struct {
	cfg      *config.Config
	creds    *config.Credentials
	registry *provider.Registry
	executor *tools.Executor
	toolCtx  toolkit.Context
	toolReg  *tools.Registry
}

func (s *modelSwitcher) build(providerName, modelOverride string) (loop *agent.Loop, systemPrompt, resolvedProvider, model string, err error) {
	pc := s.cfg.Providers[providerName]

	model = modelOverride
	if model == "" {
		model = pc.Model
	}
	if model == "" {
		return nil, "", "", "", fmt.Errorf("no model configured for provider %q: pass -model or set providers.%s.model", providerName, providerName)
	}

	apiKey := s.cfg.ResolveAPIKey(providerName, s.creds)
	if apiKey == "" {
		if envVar, ok := config.APIKeyEnvVar(providerName); ok {
			return nil, "", "", "", fmt.Errorf("provider %q: missing API key, set %s", providerName, envVar)
		}
		return nil, "", "", "", fmt.Errorf("provider %q: missing API key", providerName)
	}

	opts := provider.Options{
		APIKey:       apiKey,
		BaseURL:      pc.BaseURL,
		Model:        model,
		ExtraHeaders: pc.ExtraHeaders,
		Capabilities: provider.Capabilities{
			Vision:            pc.Vision,
			Tools:             pc.Tools,
			Streaming:         pc.Streaming,
			ParallelToolCalls: pc.ParallelTool,
			JSONMode:          pc.JSONMode,
		},
	}

	llm, err := s.registry.Build(providerName, opts)
	if err != nil {
		return nil, "", "", "", fmt.Errorf("build provider %q: %w", providerName, err)
	}

	loop = agent.New(agent.Options{
		LLM:      llm,
		Registry: s.toolReg,
		Executor: s.executor,
		ToolCtx:  s.toolCtx,
		Log:      log.Logger,
	})

	family := promptFamily(providerName)
	systemPrompt = promptenv.Build(family, promptenv.Collect(), model, model)

	return loop, systemPrompt, providerName, model, nil
}

// Switch implements ui.ModelSwitcher. modelName is "<provider>/<model>";
// a bare model name reuses the currently configured default provider.
func (s *modelSwitcher) Switch(modelName string) (*agent.Loop, string, string, error) {
	providerName, model := splitModelName(modelName, s.cfg.DefaultProvider)
	loop, systemPrompt, resolvedProvider, _, err := s.build(providerName, model)
	if err != nil {
		return nil, "", "", err
	}
	return loop, resolvedProvider, systemPrompt, nil
}

func splitModelName(modelName, defaultProvider string) (providerName, model string) {
	for i := 0; i < len(modelName); i++ {
		if modelName[i] == '/' {
			return modelName[:i], modelName[i+1:]
		}
	}
	return defaultProvider, modelName
}

// promptFamily maps a provider name to the system-prompt template family
// spec.md §4.7 keys off of.
func promptFamily(providerName string) promptenv.Family {
	switch providerName {
	case "anthropic":
		return promptenv.FamilyMessages
	case "gemini":
		return promptenv.FamilyFunctionCall
	default:
		return promptenv.FamilyChatCompletion
	}
}

// buildProviderRegistry registers every wire-family factory the module
// ships, keyed by the provider name that selects it.
func buildProviderRegistry() *provider.Registry {
	reg := provider.NewRegistry()
	reg.Register("anthropic", func(opts provider.Options) (provider.Provider, error) {
		return provider.NewAnthropicProvider(opts, log.Logger), nil
	})
	reg.Register("gemini", func(opts provider.Options) (provider.Provider, error) {
		return provider.NewGeminiProvider(opts, log.Logger), nil
	})
	reg.Register("openai-responses", func(opts provider.Options) (provider.Provider, error) {
		return provider.NewResponsesProvider(opts, log.Logger), nil
	})
	reg.Register("zen", func(opts provider.Options) (provider.Provider, error) {
		return provider.NewZenProvider("zen", opts, log.Logger)
	})

	for name := range compatProviders {
		name := name
		reg.Register(name, func(opts provider.Options) (provider.Provider, error) {
			cfg := provider.NewOpenAICompatConfig(name)
			return provider.NewOpenAICompatProvider(opts, cfg, log.Logger), nil
		})
	}
	return reg
}

// compatProviders lists the chat-completion-compatible providers this
// module registers out of the box. A provider name that is not listed here
// and not registered above has no factory, so registry.Build fails for it.
var compatProviders = map[string]struct{}{
	"openai":     {},
	"openrouter": {},
	"together":   {},
	"groq":       {},
	"fireworks":  {},
}

func setupFileLogging() error {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix

	dataDir, err := config.DataDir()
	if err != nil {
		return err
	}

	logDir := filepath.Join(dataDir, "logs")
	if err := os.MkdirAll(logDir, 0o750); err != nil {
		return err
	}

	logFile := filepath.Join(logDir, "symb.log")
	file, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return err
	}

	log.Logger = log.Output(file)
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	return nil
}
