package domain

import (
	"encoding/json"
	"strings"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
)

// MaxEmbedsPerMessage is Discord's hard limit of embeds per message.
const MaxEmbedsPerMessage = 10

// EmbedColor is the house color forced on every embed.
const EmbedColor = 0xF2C94C

// MessageBatch is the content of one Discord message.
type MessageBatch struct {
	Embeds []json.RawMessage
}

// NormalizePayload turns an entity document into sanitized message batches.
//
// Three shapes are accepted, tried in this order and never mixed:
//
//	{"messages": [{"embeds": [...]}, ...]}
//	{"embeds": [...]}
//	[...]
//
// Anything else, including invalid JSON, yields no batches.
func NormalizePayload(doc []byte) []MessageBatch {
	if !gjson.ValidBytes(doc) {
		return nil
	}
	root := gjson.ParseBytes(doc)

	if root.IsObject() {
		if messages := root.Get("messages"); messages.IsArray() {
			var batches []MessageBatch
			messages.ForEach(func(_, msg gjson.Result) bool {
				if embeds := msg.Get("embeds"); msg.IsObject() && embeds.IsArray() {
					batches = append(batches, chunkEmbeds(embeds.Array())...)
				}
				return true
			})
			return batches
		}
		if embeds := root.Get("embeds"); embeds.IsArray() {
			return chunkEmbeds(embeds.Array())
		}
		return nil
	}

	if root.IsArray() {
		return chunkEmbeds(root.Array())
	}
	return nil
}

func chunkEmbeds(embeds []gjson.Result) []MessageBatch {
	if len(embeds) == 0 {
		return nil
	}

	batches := make([]MessageBatch, 0, (len(embeds)+MaxEmbedsPerMessage-1)/MaxEmbedsPerMessage)
	for start := 0; start < len(embeds); start += MaxEmbedsPerMessage {
		end := min(start+MaxEmbedsPerMessage, len(embeds))
		batch := MessageBatch{Embeds: make([]json.RawMessage, 0, end-start)}
		for _, e := range embeds[start:end] {
			batch.Embeds = append(batch.Embeds, SanitizeEmbed(json.RawMessage(e.Raw)))
		}
		batches = append(batches, batch)
	}
	return batches
}

// SanitizeEmbed applies the house style to one embed: the title link is
// removed, image references are made absolute or dropped, and the color is
// forced to EmbedColor. Non-object values are returned unchanged.
func SanitizeEmbed(raw json.RawMessage) json.RawMessage {
	if !gjson.ValidBytes(raw) {
		return raw
	}
	embed := gjson.ParseBytes(raw)
	if !embed.IsObject() {
		return raw
	}

	out := embed.Raw
	out = deleteKey(out, "url")

	// An image object without a usable url is rejected by Discord, so the
	// whole object goes; the author block stays without its icon.
	out = fixURL(out, "thumbnail.url", "thumbnail")
	out = fixURL(out, "image.url", "image")
	out = fixURL(out, "author.icon_url", "author.icon_url")

	if colored, err := sjson.Set(out, "color", EmbedColor); err == nil {
		out = colored
	}
	return json.RawMessage(out)
}

func fixURL(embed, path, dropPath string) string {
	v := gjson.Get(embed, path)
	if !v.Exists() {
		return embed
	}

	if v.Type == gjson.String {
		if u := NormalizeHTTPURL(v.Str); u != "" {
			if u == v.Str {
				return embed
			}
			if fixed, err := sjson.Set(embed, path, u); err == nil {
				return fixed
			}
			return embed
		}
	}
	return deleteKey(embed, dropPath)
}

func deleteKey(embed, path string) string {
	if !gjson.Get(embed, path).Exists() {
		return embed
	}
	if out, err := sjson.Delete(embed, path); err == nil {
		return out
	}
	return embed
}

// NormalizeHTTPURL returns u as an absolute http(s) URL, or "" when it
// cannot be used. Protocol-relative URLs get the https scheme.
func NormalizeHTTPURL(u string) string {
	u = strings.TrimSpace(u)
	switch {
	case strings.HasPrefix(u, "//") && len(u) > 2:
		return "https:" + u
	case hasPrefixFold(u, "https://") && len(u) > len("https://"):
		return u
	case hasPrefixFold(u, "http://") && len(u) > len("http://"):
		return u
	default:
		return ""
	}
}

func hasPrefixFold(s, prefix string) bool {
	return len(s) >= len(prefix) && strings.EqualFold(s[:len(prefix)], prefix)
}
