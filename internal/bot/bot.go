package bot

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"net"
	"net/http"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// Bot manages the interactions server lifecycle and module coordination.
type Bot struct {
	config   *Config
	logger   *zap.Logger
	modules  []Module
	handlers map[string]InteractionHandler

	httpClient *http.Client
	tasks      *TaskGroup
	server     *http.Server
	serverDone chan struct{}
}

// NewBot creates a new Bot instance with the given configuration.
func NewBot(cfg *Config, logger *zap.Logger) *Bot {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Bot{
		config:     cfg,
		logger:     logger,
		modules:    make([]Module, 0),
		handlers:   make(map[string]InteractionHandler),
		httpClient: &http.Client{Timeout: 15 * time.Second},
	}
}

// LoadModules loads modules from the global registry.
func (b *Bot) LoadModules() {
	b.modules = Modules()
}

// Prepare loads module configuration, initializes modules and builds the
// command handler map.
func (b *Bot) Prepare() error {
	if err := b.loadModuleConfigs(); err != nil {
		return fmt.Errorf("failed to load module config: %w", err)
	}
	if err := b.initModules(); err != nil {
		return fmt.Errorf("failed to initialize modules: %w", err)
	}
	b.buildHandlerMap()
	return nil
}

// Start initializes the modules and starts serving interactions.
func (b *Bot) Start() error {
	verifier, err := NewVerifier(b.config.PublicKey)
	if err != nil {
		return err
	}

	if err := b.Prepare(); err != nil {
		return err
	}

	b.tasks = NewTaskGroup(b.config.TaskTimeout, b.logger)
	delivery := NewDelivery(b.config.APIBaseURL, b.httpClient, b.config.Followup, b.logger)
	router := NewRouter(verifier, b.handlers, delivery, b.tasks, b.logger, RouterOptions{
		Path:          b.config.InteractionsPath,
		ApplicationID: b.config.ApplicationID,
		AckBudget:     b.config.AckBudget,
	})

	listener, err := net.Listen("tcp", b.config.HTTPAddr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", b.config.HTTPAddr, err)
	}

	b.server = &http.Server{
		Handler:           b.newMux(router),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	b.serverDone = make(chan struct{})

	go func() {
		defer close(b.serverDone)
		if err := b.server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			b.logger.Error("HTTP server error", zap.Error(err))
		}
	}()

	b.logger.Info("started interactions server",
		zap.String("addr", listener.Addr().String()),
		zap.String("path", b.config.InteractionsPath),
		zap.Int("commands", len(b.handlers)),
	)

	return nil
}

// Stop stops accepting requests, waits for background deliveries and
// shuts the modules down. Deliveries still running when ctx is done are
// abandoned.
func (b *Bot) Stop(ctx context.Context) error {
	var errs []error

	if b.server != nil {
		if err := b.server.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("failed to shutdown HTTP server: %w", err))
		}
		<-b.serverDone
	}

	if b.tasks != nil {
		if err := b.tasks.Wait(ctx); err != nil {
			errs = append(errs, fmt.Errorf("failed to drain background tasks: %w", err))
		}
	}

	for _, mod := range b.modules {
		if err := mod.Shutdown(); err != nil {
			b.logger.Warn("failed to shutdown module", zap.String("module", mod.Name()), zap.Error(err))
		}
	}

	return errors.Join(errs...)
}

// Commands gathers all commands from loaded modules.
func (b *Bot) Commands() []*discordgo.ApplicationCommand {
	var commands []*discordgo.ApplicationCommand
	for _, mod := range b.modules {
		commands = append(commands, mod.Commands()...)
	}
	return commands
}

func (b *Bot) newMux(router http.Handler) *http.ServeMux {
	mux := http.NewServeMux()
	mux.Handle("/", panicRecoveryMiddleware(b.logger, metricsMiddleware("interactions", router)))
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = w.Write([]byte("ok"))
	})
	mux.Handle("GET /metrics", promhttp.Handler())
	return mux
}

// loadModuleConfigs calls LoadConfig on every ConfigurableModule.
func (b *Bot) loadModuleConfigs() error {
	for _, mod := range b.modules {
		cm, ok := mod.(ConfigurableModule)
		if !ok {
			continue
		}
		if err := cm.LoadConfig(); err != nil {
			return fmt.Errorf("%s: %w", mod.Name(), err)
		}
	}
	return nil
}

// initModules initializes all loaded modules.
func (b *Bot) initModules() error {
	deps := ModuleDependencies{
		Logger:     b.logger,
		HTTPClient: b.httpClient,
	}

	for _, mod := range b.modules {
		if err := mod.Init(deps); err != nil {
			return fmt.Errorf("failed to initialize %s module: %w", mod.Name(), err)
		}
		b.logger.Debug("initialized module", zap.String("module", mod.Name()))
	}

	moduleNames := make([]string, len(b.modules))
	for i, mod := range b.modules {
		moduleNames[i] = mod.Name()
	}
	b.logger.Info("initialized modules", zap.Strings("modules", moduleNames))

	return nil
}

// buildHandlerMap builds the command name to handler mapping.
func (b *Bot) buildHandlerMap() {
	for _, mod := range b.modules {
		maps.Copy(b.handlers, mod.CommandHandlers())
	}
}
