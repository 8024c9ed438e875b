package presentation

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/bwmarrin/discordgo"
	"github.com/sglre6355/guildassistant/internal/bot"
	"github.com/sglre6355/guildassistant/internal/modules/catalog/application/usecases"
	"github.com/sglre6355/guildassistant/internal/modules/catalog/domain"
	"go.uber.org/zap"
)

// Embed colors.
const (
	colorNotice = domain.EmbedColor
	colorError  = 0xE74C3C
)

// CommandHandlers holds the catalog command handlers.
type CommandHandlers struct {
	lookup *usecases.LookupService
	logger *zap.Logger
}

// NewCommandHandlers creates new CommandHandlers.
func NewCommandHandlers(lookup *usecases.LookupService, logger *zap.Logger) *CommandHandlers {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CommandHandlers{
		lookup: lookup,
		logger: logger,
	}
}

// HandlePerso handles the /perso command.
func (h *CommandHandlers) HandlePerso(
	ctx context.Context,
	_ *discordgo.Interaction,
	opts bot.Options,
	r bot.Responder,
) error {
	return h.handleLookup(ctx, opts, r, domain.EntityCharacter)
}

// HandleBoss handles the /boss command.
func (h *CommandHandlers) HandleBoss(
	ctx context.Context,
	_ *discordgo.Interaction,
	opts bot.Options,
	r bot.Responder,
) error {
	return h.handleLookup(ctx, opts, r, domain.EntityBoss)
}

// HandleRecherche handles the /recherche command.
func (h *CommandHandlers) HandleRecherche(
	ctx context.Context,
	_ *discordgo.Interaction,
	opts bot.Options,
	r bot.Responder,
) error {
	output, err := h.lookup.Search(ctx, usecases.SearchInput{
		Text: opts.String(optionText),
		Game: opts.String(optionGame),
	})
	if errors.Is(err, usecases.ErrMissingQuery) {
		return respondMissing(ctx, r, optionText)
	}
	if err != nil {
		return err
	}

	return r.Respond(ctx, resultsMessage(output.Items, true))
}

func (h *CommandHandlers) handleLookup(
	ctx context.Context,
	opts bot.Options,
	r bot.Responder,
	entityType domain.EntityType,
) error {
	output, err := h.lookup.Lookup(ctx, usecases.LookupInput{
		Query: opts.String(optionName),
		Game:  opts.String(optionGame),
		Type:  entityType,
	})
	switch {
	case errors.Is(err, usecases.ErrMissingQuery):
		return respondMissing(ctx, r, optionName)
	case errors.Is(err, usecases.ErrNoMatch):
		return r.Respond(ctx, resultsMessage(output.Suggestions, false))
	case errors.Is(err, usecases.ErrEmptyContent):
		return respondError(ctx, r, "Aucun embed trouvé.")
	case err != nil:
		return err
	}

	if err := r.Respond(ctx, batchMessage(output.Batches[0])); err != nil {
		return err
	}

	rest := make([]*bot.Message, 0, len(output.Batches)-1)
	for _, b := range output.Batches[1:] {
		rest = append(rest, batchMessage(b))
	}
	if len(rest) == 0 {
		return nil
	}

	// The primary message is out; a failed follow-up cannot be reported to
	// the user anymore.
	if err := r.Followup(ctx, rest...); err != nil {
		h.logger.Warn("failed to deliver follow-ups",
			zap.String("type", string(entityType)),
			zap.String("slug", output.Item.Slug),
			zap.Error(err),
		)
	}
	return nil
}

func batchMessage(b domain.MessageBatch) *bot.Message {
	return &bot.Message{Embeds: b.Embeds}
}

// resultsMessage lists items as bullet lines. withDetails adds the entity
// type and game, used when results mix types.
func resultsMessage(items []domain.CatalogItem, withDetails bool) *bot.Message {
	lines := make([]string, 0, len(items))
	for _, it := range items {
		line := "• " + it.Name
		if withDetails {
			line += fmt.Sprintf(" (%s · %s)", it.Type.Label(), it.Game)
		}
		lines = append(lines, line)
	}

	description := strings.Join(lines, "\n")
	if description == "" {
		description = "Aucun résultat."
	}

	return bot.EmbedMessage(&discordgo.MessageEmbed{
		Title:       "Résultats",
		Description: description,
		Color:       colorNotice,
	})
}

func respondMissing(ctx context.Context, r bot.Responder, option string) error {
	return r.Respond(ctx, bot.TextMessage(fmt.Sprintf("Paramètre manquant : `%s`.", option)))
}

func respondError(ctx context.Context, r bot.Responder, message string) error {
	return r.Respond(ctx, bot.EmbedMessage(&discordgo.MessageEmbed{
		Title:       "Erreur",
		Description: message,
		Color:       colorError,
	}))
}
