package bot

import (
	"fmt"

	"github.com/bwmarrin/discordgo"
	"github.com/disgoorg/snowflake/v2"
)

// CommandRegistrar is the part of a discordgo session that publishes
// application commands.
type CommandRegistrar interface {
	ApplicationCommandBulkOverwrite(
		appID string,
		guildID string,
		commands []*discordgo.ApplicationCommand,
		options ...discordgo.RequestOption,
	) ([]*discordgo.ApplicationCommand, error)
}

// RegisterCommands replaces the application's commands with commands.
// A zero guildID registers them globally; otherwise they are scoped to
// that guild and show up immediately.
func RegisterCommands(
	r CommandRegistrar,
	appID, guildID snowflake.ID,
	commands []*discordgo.ApplicationCommand,
) ([]*discordgo.ApplicationCommand, error) {
	if appID == 0 {
		return nil, fmt.Errorf("missing application ID")
	}

	var guild string
	if guildID != 0 {
		guild = guildID.String()
	}

	created, err := r.ApplicationCommandBulkOverwrite(appID.String(), guild, commands)
	if err != nil {
		return nil, fmt.Errorf("failed to register %d commands: %w", len(commands), err)
	}
	return created, nil
}
