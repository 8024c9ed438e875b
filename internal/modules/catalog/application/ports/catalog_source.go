package ports

import (
	"context"

	"github.com/sglre6355/guildassistant/internal/modules/catalog/domain"
)

// CatalogSource defines access to the published catalog.
type CatalogSource interface {
	// FetchIndex downloads the whole index.
	FetchIndex(ctx context.Context) (*domain.CatalogIndex, error)

	// FetchDocument downloads the embed document at path, relative to the
	// catalog root. The returned bytes are valid JSON.
	FetchDocument(ctx context.Context, path string) ([]byte, error)
}
