package catalog

import (
	"errors"

	"github.com/bwmarrin/discordgo"
	"github.com/caarlos0/env/v11"
	"github.com/sglre6355/guildassistant/internal/bot"
	"github.com/sglre6355/guildassistant/internal/modules/catalog/application/usecases"
	"github.com/sglre6355/guildassistant/internal/modules/catalog/infrastructure"
	"github.com/sglre6355/guildassistant/internal/modules/catalog/presentation"
	"go.uber.org/zap"
)

func init() {
	bot.Register(&CatalogModule{})
}

// Compile-time interface checks.
var _ bot.ConfigurableModule = (*CatalogModule)(nil)

// CatalogModule serves the /perso, /boss and /recherche commands.
type CatalogModule struct {
	config          *Config
	index           *usecases.IndexCache
	commandHandlers *presentation.CommandHandlers
}

// Name returns the module name.
func (m *CatalogModule) Name() string {
	return "catalog"
}

// Commands returns the slash commands for this module.
func (m *CatalogModule) Commands() []*discordgo.ApplicationCommand {
	return presentation.Commands()
}

// CommandHandlers returns the command handlers for this module.
func (m *CatalogModule) CommandHandlers() map[string]bot.InteractionHandler {
	return map[string]bot.InteractionHandler{
		presentation.CommandPerso:     m.commandHandlers.HandlePerso,
		presentation.CommandBoss:      m.commandHandlers.HandleBoss,
		presentation.CommandRecherche: m.commandHandlers.HandleRecherche,
	}
}

// LoadConfig loads module-specific configuration from environment variables.
func (m *CatalogModule) LoadConfig() error {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return err
	}
	m.config = cfg
	return nil
}

// Init initializes the module.
func (m *CatalogModule) Init(deps bot.ModuleDependencies) error {
	if m.config == nil {
		return errors.New("catalog module initialized without config")
	}

	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	logger = logger.Named(m.Name())

	client := infrastructure.NewClient(
		m.config.BaseURL,
		infrastructure.WithHTTPClient(deps.HTTPClient),
		infrastructure.WithTimeout(m.config.HTTPTimeout),
	)

	m.index = usecases.NewIndexCache(client, m.config.IndexTTL)
	lookup := usecases.NewLookupService(m.index, client, m.config.SuggestionLimit)
	m.commandHandlers = presentation.NewCommandHandlers(lookup, logger)

	logger.Debug("configured catalog source",
		zap.String("base_url", m.config.BaseURL),
		zap.Duration("index_ttl", m.config.IndexTTL),
	)

	return nil
}

// Shutdown cleans up module resources.
func (m *CatalogModule) Shutdown() error {
	if m.index != nil {
		m.index.Invalidate()
	}
	return nil
}
