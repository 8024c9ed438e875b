package presentation

import "github.com/bwmarrin/discordgo"

// Command names.
const (
	CommandPerso     = "perso"
	CommandBoss      = "boss"
	CommandRecherche = "recherche"
)

// Option names.
const (
	optionName = "nom"
	optionGame = "jeu"
	optionText = "texte"
)

// Commands returns the slash commands served by the catalog module.
func Commands() []*discordgo.ApplicationCommand {
	return []*discordgo.ApplicationCommand{
		{
			Name:        CommandPerso,
			Description: "Affiche la fiche d'un personnage",
			Options: []*discordgo.ApplicationCommandOption{
				nameOption("Nom du personnage"),
				gameOption(),
			},
		},
		{
			Name:        CommandBoss,
			Description: "Affiche la fiche d'un boss",
			Options: []*discordgo.ApplicationCommandOption{
				nameOption("Nom du boss"),
				gameOption(),
			},
		},
		{
			Name:        CommandRecherche,
			Description: "Recherche dans la base",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionString,
					Name:        optionText,
					Description: "Texte à rechercher",
					Required:    true,
				},
				gameOption(),
			},
		},
	}
}

func nameOption(description string) *discordgo.ApplicationCommandOption {
	return &discordgo.ApplicationCommandOption{
		Type:        discordgo.ApplicationCommandOptionString,
		Name:        optionName,
		Description: description,
		Required:    true,
	}
}

func gameOption() *discordgo.ApplicationCommandOption {
	return &discordgo.ApplicationCommandOption{
		Type:        discordgo.ApplicationCommandOptionString,
		Name:        optionGame,
		Description: "Jeu (ex: 7dso)",
		Required:    false,
	}
}
