package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"doppel-ai/internal/adapter/channel"
	"doppel-ai/internal/adapter/llm"
	"doppel-ai/internal/adapter/notify"
	"doppel-ai/internal/adapter/persona"
	"doppel-ai/internal/adapter/record"
	"doppel-ai/internal/adapter/tool"
	"doppel-ai/internal/domain"
	"doppel-ai/internal/infra/config"
	"doppel-ai/internal/infra/envfile"
	"doppel-ai/internal/infra/logger"
	"doppel-ai/internal/infra/tracer"
	"doppel-ai/internal/usecase"
	"doppel-ai/internal/usecase/digest"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// 1. Flags and .env
	configFlag := flag.String("config", "", "path to config file")
	consoleFlag := flag.Bool("console", false, "run the interactive console channel instead of configured channels")
	flag.Parse()

	envfile.Load()

	// 2. Config
	cfg, err := config.Load(configPath(*configFlag))
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}

	// 3. Logger & Tracer
	log, logCloser, err := logger.New(cfg.Logger)
	if err != nil {
		return fmt.Errorf("logger: %w", err)
	}
	defer logCloser()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	tracerShutdown, err := tracer.Setup(ctx, cfg.Tracer)
	if err != nil {
		return fmt.Errorf("tracer: %w", err)
	}
	defer tracerShutdown(context.Background())

	// 4. Persona
	personaStore := persona.NewStore(cfg.Persona, log)
	p, err := personaStore.Load()
	if err != nil {
		return fmt.Errorf("persona: %w", err)
	}

	// 5. Notifier: Pushover when credentials exist, otherwise log-only
	var notifier domain.Notifier
	if po := cfg.Notifier.Pushover; po.Token != "" && po.User != "" {
		var opts []notify.PushoverOption
		if po.Timeout > 0 {
			opts = append(opts, notify.WithPushoverTimeout(po.Timeout))
		}
		notifier = notify.NewPushoverNotifier(po.Token, po.User, log, opts...)
		log.Info("pushover notifier configured")
	} else {
		notifier = notify.NewLogNotifier(log)
		log.Warn("pushover credentials missing, alerts go to the log")
	}

	// 6. Recorder
	var recorder domain.Recorder
	switch cfg.Recorder.Backend {
	case "sqlite":
		store, err := record.NewSQLiteRecorder(cfg.Recorder.Path)
		if err != nil {
			return fmt.Errorf("recorder: %w", err)
		}
		defer store.Close()
		recorder = store
	default:
		recorder = record.NewNoopRecorder()
	}

	// 7. Tools
	registry := tool.NewRegistry(log)
	if err := registry.Register(tool.NewUserDetailsTool(notifier, recorder, log)); err != nil {
		return fmt.Errorf("tools: %w", err)
	}
	if err := registry.Register(tool.NewUnknownQuestionTool(notifier, recorder, log)); err != nil {
		return fmt.Errorf("tools: %w", err)
	}

	// 8. LLM provider, optionally behind a circuit breaker
	var provider domain.LLMProvider = llm.NewOpenAIProvider(cfg.LLM, log)
	if cfg.LLM.CircuitBreaker.Enabled {
		provider = llm.NewCircuitBreakerProvider(provider, cfg.LLM.CircuitBreaker, log)
	}

	// 9. Turn handler
	turns := usecase.NewTurnHandler(usecase.TurnHandlerDeps{
		LLM:             provider,
		Tools:           registry,
		Prompt:          usecase.NewPromptBuilder(),
		Persona:         p,
		Logger:          log,
		Model:           cfg.LLM.Model,
		MaxTokens:       cfg.LLM.MaxTokens,
		Temperature:     cfg.LLM.Temperature,
		ValidateHistory: cfg.Conversation.ValidateHistory,
	})

	// 10. Daily digest
	if cfg.Digest.Enabled {
		job, err := digest.New(cfg.Digest.Schedule, recorder, notifier, log)
		if err != nil {
			return fmt.Errorf("digest: %w", err)
		}
		job.Start(ctx)
		defer job.Stop()
	}

	// 11. Channels
	channels, consoleDone, err := buildChannels(cfg, p, *consoleFlag, log)
	if err != nil {
		return err
	}
	for _, ch := range channels {
		if err := ch.Start(ctx, turns.HandleInbound); err != nil {
			return fmt.Errorf("channel %s: %w", ch.Name(), err)
		}
	}

	// 12. Wait for shutdown: signal, or console exit when interactive
	if consoleDone != nil {
		select {
		case <-ctx.Done():
		case <-consoleDone:
		}
	} else {
		<-ctx.Done()
	}
	log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	for _, ch := range channels {
		if err := ch.Stop(shutdownCtx); err != nil {
			log.Error("channel stop failed", "channel", ch.Name(), "error", err)
		}
	}

	return nil
}

// buildChannels assembles the channel set: the console when forced by flag
// or configured, plus any HTTP channels.
func buildChannels(cfg *config.Config, p domain.Persona, forceConsole bool, log *slog.Logger) ([]domain.Channel, <-chan struct{}, error) {
	if forceConsole {
		c := channel.NewConsoleChannel(p.Name, log)
		return []domain.Channel{c}, c.Done(), nil
	}

	var channels []domain.Channel
	var consoleDone <-chan struct{}
	for _, cc := range cfg.Channels {
		switch cc.Type {
		case "http":
			httpCfg := config.HTTPChannelConfig{}
			if cc.HTTP != nil {
				httpCfg = *cc.HTTP
			}
			if httpCfg.Web.Title == "" {
				httpCfg.Web.Title = fmt.Sprintf("Chat with %s's AI", p.Name)
			}
			channels = append(channels, channel.NewHTTPChannel(httpCfg, log))
		case "console":
			c := channel.NewConsoleChannel(p.Name, log)
			channels = append(channels, c)
			consoleDone = c.Done()
		default:
			return nil, nil, fmt.Errorf("unknown channel type %q", cc.Type)
		}
	}
	if len(channels) == 0 {
		return nil, nil, fmt.Errorf("no channels configured")
	}
	return channels, consoleDone, nil
}

// configPath resolves the config file location: --config flag, then
// DOPPEL_CONFIG, then ./config.yaml.
func configPath(flagValue string) string {
	if flagValue != "" {
		return flagValue
	}
	if v := os.Getenv("DOPPEL_CONFIG"); v != "" {
		return v
	}
	return "config.yaml"
}
