package bot

import (
	"fmt"
	"maps"

	"github.com/bwmarrin/discordgo"
)

// Options is a flat view of a command's options, keyed by option name.
type Options map[string]any

// FlattenOptions merges nested sub-command and sub-command group options
// into one map. When a name repeats, the last value wins.
func FlattenOptions(opts []*discordgo.ApplicationCommandInteractionDataOption) Options {
	out := make(Options, len(opts))
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		switch opt.Type {
		case discordgo.ApplicationCommandOptionSubCommand,
			discordgo.ApplicationCommandOptionSubCommandGroup:
			maps.Copy(out, FlattenOptions(opt.Options))
		default:
			out[opt.Name] = opt.Value
		}
	}
	return out
}

// String returns the named option as a string, or "" when absent.
func (o Options) String(name string) string {
	switch v := o[name].(type) {
	case nil:
		return ""
	case string:
		return v
	default:
		return fmt.Sprint(v)
	}
}

// Has reports whether the named option was sent.
func (o Options) Has(name string) bool {
	_, ok := o[name]
	return ok
}
