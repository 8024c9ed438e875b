// Command register publishes the slash commands of every loaded module.
package main

import (
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"os"

	"github.com/bwmarrin/discordgo"
	"github.com/disgoorg/snowflake/v2"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/sglre6355/guildassistant/internal/bot"
	_ "github.com/sglre6355/guildassistant/internal/modules/catalog"
)

func main() {
	guild := flag.String("guild", "", "guild ID to register in (overrides DISCORD_GUILD_ID, empty for global)")
	dryRun := flag.Bool("dry-run", false, "print the commands instead of registering them")
	flag.Parse()

	if err := run(*guild, *dryRun); err != nil {
		fmt.Fprintf(os.Stderr, "register: %v\n", err)
		os.Exit(1)
	}
}

func run(guild string, dryRun bool) error {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to load .env: %w", err)
	}

	logger, err := bot.NewLogger(os.Getenv("LOG_LEVEL"), os.Getenv("LOG_FORMAT"))
	if err != nil {
		return fmt.Errorf("failed to build logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	b := bot.NewBot(nil, logger)
	b.LoadModules()
	commands := b.Commands()

	if dryRun {
		for _, cmd := range commands {
			logger.Info("command", zap.String("name", cmd.Name), zap.String("description", cmd.Description))
		}
		return nil
	}

	cfg, err := bot.LoadRegisterConfig()
	if err != nil {
		return err
	}

	guildID := cfg.GuildID
	if guild != "" {
		if guildID, err = snowflake.Parse(guild); err != nil {
			return fmt.Errorf("invalid guild ID %q: %w", guild, err)
		}
	}

	session, err := discordgo.New("Bot " + cfg.BotToken)
	if err != nil {
		return fmt.Errorf("failed to create session: %w", err)
	}

	created, err := bot.RegisterCommands(session, cfg.ApplicationID, guildID, commands)
	if err != nil {
		return err
	}

	scope := "global"
	if guildID != 0 {
		scope = guildID.String()
	}
	logger.Info("registered commands", zap.Int("count", len(created)), zap.String("scope", scope))
	return nil
}
