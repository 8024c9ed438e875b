package domain

import (
	"slices"
	"strings"
)

// Rank scores.
const (
	scoreExact        = 100
	scoreNameContains = 50
	scoreSlugContains = 40
)

// FilterItems returns a new slice with the items of the given type and game;
// items itself is never aliased. An empty entityType or game disables that
// filter. Games are compared in normalized form so "7DSO" matches "7dso".
func FilterItems(items []CatalogItem, entityType EntityType, game string) []CatalogItem {
	game = NormalizeQuery(game)
	if entityType == "" && game == "" {
		return slices.Clone(items)
	}

	out := make([]CatalogItem, 0, len(items))
	for _, it := range items {
		if entityType != "" && it.Type != entityType {
			continue
		}
		if game != "" && NormalizeQuery(it.Game) != game {
			continue
		}
		out = append(out, it)
	}
	return out
}

// Resolve returns the best match for query, or nil.
//
// Tiers are tried in order and the first hit wins: exact slug, exact name,
// then the first name containing the query. Within a tier the earliest item
// in index order wins.
func Resolve(items []CatalogItem, query string) *CatalogItem {
	q := NormalizeQuery(query)
	if q == "" {
		return nil
	}

	names := make([]string, len(items))
	for i := range items {
		if NormalizeQuery(items[i].Slug) == q {
			return &items[i]
		}
		names[i] = NormalizeQuery(items[i].Name)
	}
	for i := range items {
		if names[i] == q {
			return &items[i]
		}
	}
	for i := range items {
		if strings.Contains(names[i], q) {
			return &items[i]
		}
	}
	return nil
}

// Rank returns up to limit items related to query, best first.
// Ties keep index order. A non-positive limit means no limit.
func Rank(items []CatalogItem, query string, limit int) []CatalogItem {
	q := NormalizeQuery(query)
	if q == "" {
		return nil
	}

	type scored struct {
		item  CatalogItem
		score int
	}
	candidates := make([]scored, 0)
	for _, it := range items {
		if s := score(it, q); s > 0 {
			candidates = append(candidates, scored{item: it, score: s})
		}
	}

	slices.SortStableFunc(candidates, func(a, b scored) int {
		return b.score - a.score
	})

	if limit > 0 && len(candidates) > limit {
		candidates = candidates[:limit]
	}

	out := make([]CatalogItem, len(candidates))
	for i, c := range candidates {
		out[i] = c.item
	}
	return out
}

func score(it CatalogItem, q string) int {
	name := NormalizeQuery(it.Name)
	slug := NormalizeQuery(it.Slug)

	switch {
	case slug == q || name == q:
		return scoreExact
	case strings.Contains(name, q):
		return scoreNameContains
	case strings.Contains(slug, q):
		return scoreSlugContains
	default:
		return 0
	}
}
