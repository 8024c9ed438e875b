package usecases

import (
	"context"
	"fmt"

	"github.com/sglre6355/guildassistant/internal/modules/catalog/application/ports"
	"github.com/sglre6355/guildassistant/internal/modules/catalog/domain"
)

// DefaultSuggestionLimit bounds suggestion and search lists.
const DefaultSuggestionLimit = 10

// LookupInput contains the input for the Lookup use case.
type LookupInput struct {
	Query string
	Game  string
	Type  domain.EntityType
}

// LookupOutput contains the result of the Lookup use case.
// Suggestions is only set alongside ErrNoMatch.
type LookupOutput struct {
	Item        *domain.CatalogItem
	Batches     []domain.MessageBatch
	Suggestions []domain.CatalogItem
}

// SearchInput contains the input for the Search use case.
type SearchInput struct {
	Text  string
	Game  string
	Limit int
}

// SearchOutput contains the result of the Search use case.
type SearchOutput struct {
	Items []domain.CatalogItem
}

// LookupService resolves queries against the catalog.
type LookupService struct {
	index           *IndexCache
	source          ports.CatalogSource
	suggestionLimit int
}

// NewLookupService creates a new LookupService.
func NewLookupService(index *IndexCache, source ports.CatalogSource, suggestionLimit int) *LookupService {
	if suggestionLimit <= 0 {
		suggestionLimit = DefaultSuggestionLimit
	}
	return &LookupService{
		index:           index,
		source:          source,
		suggestionLimit: suggestionLimit,
	}
}

// Lookup resolves the query to one entry and loads its message batches.
//
// Returns ErrMissingQuery for an empty query, ErrNoMatch (with ranked
// suggestions in the output) when nothing matches, and ErrEmptyContent when
// the entry's document has no embeds.
func (s *LookupService) Lookup(ctx context.Context, input LookupInput) (*LookupOutput, error) {
	if domain.NormalizeQuery(input.Query) == "" {
		return nil, ErrMissingQuery
	}

	idx, err := s.index.Get(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load catalog index: %w", err)
	}

	items := domain.FilterItems(idx.Items, input.Type, input.Game)

	pick := domain.Resolve(items, input.Query)
	if pick == nil {
		return &LookupOutput{
			Suggestions: domain.Rank(items, input.Query, s.suggestionLimit),
		}, ErrNoMatch
	}

	doc, err := s.source.FetchDocument(ctx, pick.EmbedsPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load %q: %w", pick.Slug, err)
	}

	batches := domain.NormalizePayload(doc)
	if len(batches) == 0 {
		return &LookupOutput{Item: pick}, ErrEmptyContent
	}

	return &LookupOutput{
		Item:    pick,
		Batches: batches,
	}, nil
}

// Search ranks catalog entries of every type against free text.
func (s *LookupService) Search(ctx context.Context, input SearchInput) (*SearchOutput, error) {
	if domain.NormalizeQuery(input.Text) == "" {
		return nil, ErrMissingQuery
	}

	idx, err := s.index.Get(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load catalog index: %w", err)
	}

	limit := input.Limit
	if limit <= 0 {
		limit = s.suggestionLimit
	}

	items := domain.FilterItems(idx.Items, "", input.Game)
	return &SearchOutput{
		Items: domain.Rank(items, input.Text, limit),
	}, nil
}
