package catalog

import "time"

// Config holds the catalog module configuration.
type Config struct {
	BaseURL         string        `env:"CATALOG_BASE_URL,notEmpty"`
	IndexTTL        time.Duration `env:"CATALOG_INDEX_TTL"        envDefault:"5m"`
	SuggestionLimit int           `env:"CATALOG_SUGGESTION_LIMIT" envDefault:"10"`
	HTTPTimeout     time.Duration `env:"CATALOG_HTTP_TIMEOUT"     envDefault:"10s"`
}
