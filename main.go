package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"voicecoach/agent"
	"voicecoach/bridge"
	"voicecoach/catalog"
	"voicecoach/config"
	"voicecoach/console"
	"voicecoach/core"
	"voicecoach/mcpserver"
	"voicecoach/metrics"
	"voicecoach/services/openai/llm"
	"voicecoach/sessionlog"
	"voicecoach/tutor"
	"voicecoach/voice"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
)

const (
	modeConsole = "console"
	modeBridge  = "bridge"
	modeMCP     = "mcp"
)

func main() {
	var (
		configPath string
		envFile    string
		mode       string
		persona    string
		helpEnv    bool
	)
	pflag.StringVarP(&configPath, "config", "c", "", "JSON or YAML settings file (optional)")
	pflag.StringVar(&envFile, "env-file", ".env.local", "dotenv file loaded before reading the environment")
	pflag.StringVarP(&mode, "mode", "m", modeConsole, "how to run the agent: console, bridge or mcp")
	pflag.StringVarP(&persona, "persona", "p", "", "tutor or wellness (overrides AGENT_PERSONA)")
	pflag.BoolVar(&helpEnv, "help-env", false, "list the environment variables and exit")
	pflag.Parse()

	if helpEnv {
		fmt.Println(config.Usage())
		return
	}

	if err := godotenv.Load(envFile); err != nil {
		fmt.Fprintf(os.Stderr, "no %s file loaded: %v\n", envFile, err)
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	if persona != "" {
		cfg.Persona = persona
		if err := cfg.Validate(); err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(2)
		}
	}

	// stdout belongs to the conversation in console and mcp modes.
	var logOut io.Writer = os.Stdout
	if mode != modeBridge {
		logOut = os.Stderr
	}
	logger := core.NewConsoleLogger(logOut, cfg.Log.Level)
	core.SetLogger(*logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	deps := agent.Dependencies{
		Catalog: catalog.Load(cfg.Catalog.Path, logger),
		Store:   sessionlog.NewStore(cfg.Wellness.LogPath, logger),
		Logger:  logger,
	}

	switch mode {
	case modeConsole:
		err = runConsole(ctx, cfg, deps)
	case modeBridge:
		err = runBridge(ctx, cfg, deps)
	case modeMCP:
		err = runMCP(ctx, cfg, deps)
	default:
		err = fmt.Errorf("unknown mode %q (want console, bridge or mcp)", mode)
	}
	if err != nil && !errors.Is(err, context.Canceled) {
		logger.With(map[string]any{"error": err}).Error("exiting")
		os.Exit(1)
	}
	logger.Info("Shutting down...")
}

// sessionLogger tees to a JSONL file under the configured session directory.
// The returned func closes the file.
func sessionLogger(cfg *config.Config, base *core.Logger) (*core.Logger, func()) {
	id := uuid.NewString()
	logger := base.With(map[string]any{"session_id": id})
	if cfg.Log.SessionDir == "" {
		return logger, func() {}
	}
	w, err := core.NewSessionLogWriter(cfg.Log.SessionDir, id, cfg.Persona)
	if err != nil {
		base.With(map[string]any{"error": err}).Warn("session log disabled")
		return logger, func() {}
	}
	return core.NewSessionLogger(base, w).With(map[string]any{"session_id": id}), w.Close
}

func runConsole(ctx context.Context, cfg *config.Config, deps agent.Dependencies) error {
	logger, closeLog := sessionLogger(cfg, deps.Logger)
	defer closeLog()
	deps.Logger = logger
	deps.Voice = voice.NewStatic(tutor.InitialVoice(), logger)

	a, err := agent.New(cfg.PersonaValue(), deps)
	if err != nil {
		return err
	}

	svc := llm.NewOpenAILLMService(llm.Config{
		APIKey:        cfg.OpenAI.APIKey,
		BaseURL:       cfg.OpenAI.BaseURL,
		Model:         cfg.OpenAI.Model,
		MaxTokens:     cfg.OpenAI.MaxTokens,
		Temperature:   cfg.OpenAI.Temperature,
		MaxToolRounds: cfg.OpenAI.MaxToolRounds,
	}, logger)
	if err := svc.Init(ctx); err != nil {
		return err
	}

	collector := metrics.NewUsageCollector(nil)
	svc.OnMetrics(func(s metrics.Sample) {
		metrics.Log(logger, s)
		collector.Collect(s)
	})
	defer collector.LogSummary(logger)

	return console.New(a, svc, os.Stdin, os.Stdout, logger).Run(ctx)
}

func runBridge(ctx context.Context, cfg *config.Config, deps agent.Dependencies) error {
	prom := metrics.NewPrometheus(cfg.Bridge.MetricsNamespace)
	srv := bridge.NewServer(bridge.Config{
		Persona:       cfg.PersonaValue(),
		Deps:          deps,
		SessionLogDir: cfg.Log.SessionDir,
		Prometheus:    prom,
	}, deps.Logger)
	defer srv.Collector().LogSummary(deps.Logger)

	if cfg.LiveKitEnabled() {
		deps.Logger.Info("mint room tokens with: go run ./cmd/token --persona " + cfg.Persona)
	}
	return srv.ListenAndServe(ctx, cfg.Bridge.Addr)
}

func runMCP(ctx context.Context, cfg *config.Config, deps agent.Dependencies) error {
	logger, closeLog := sessionLogger(cfg, deps.Logger)
	defer closeLog()
	deps.Logger = logger
	deps.Voice = voice.NewStatic(tutor.InitialVoice(), logger)

	a, err := agent.New(cfg.PersonaValue(), deps)
	if err != nil {
		return err
	}
	return mcpserver.Run(ctx, a, logger)
}
