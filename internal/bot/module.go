package bot

import (
	"context"
	"net/http"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"
)

// InteractionHandler handles an application command. It runs in the
// background; the first message passed to r.Respond becomes the reply.
type InteractionHandler func(
	ctx context.Context,
	i *discordgo.Interaction,
	opts Options,
	r Responder,
) error

// ModuleDependencies provides dependencies that modules may need during initialization.
type ModuleDependencies struct {
	Logger     *zap.Logger
	HTTPClient *http.Client
}

// Module defines the interface that all bot modules must implement.
type Module interface {
	// Name returns the unique identifier for this module.
	Name() string

	// Commands returns the slash commands that this module provides.
	Commands() []*discordgo.ApplicationCommand

	// CommandHandlers returns a map of command names to their handlers.
	CommandHandlers() map[string]InteractionHandler

	// Init initializes the module with the provided dependencies.
	Init(deps ModuleDependencies) error

	// Shutdown gracefully shuts down the module.
	Shutdown() error
}

// ConfigurableModule is an optional interface for modules that need configuration.
// Modules implementing this interface will have LoadConfig called before Init.
type ConfigurableModule interface {
	// LoadConfig loads and validates module-specific configuration.
	// Should return an error if required configuration is missing or invalid.
	LoadConfig() error
}
