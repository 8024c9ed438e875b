package domain

// EntityType classifies a catalog entry.
type EntityType string

const (
	// EntityCharacter is a playable character sheet.
	EntityCharacter EntityType = "character"
	// EntityBoss is a boss sheet.
	EntityBoss EntityType = "boss"
)

// Label returns the French label shown to users.
func (t EntityType) Label() string {
	switch t {
	case EntityCharacter:
		return "perso"
	case EntityBoss:
		return "boss"
	default:
		return string(t)
	}
}

// CatalogItem is one entry of the published index.
type CatalogItem struct {
	Name       string     `json:"name"`
	Slug       string     `json:"slug"`
	Game       string     `json:"game"`
	Type       EntityType `json:"type"`
	EmbedsPath string     `json:"embeds_path"`
}

// CatalogIndex is the whole published index, in publication order.
// It is never mutated once built; a refresh replaces it.
type CatalogIndex struct {
	Items []CatalogItem `json:"items"`
}

// Len returns the number of indexed items.
func (idx *CatalogIndex) Len() int {
	if idx == nil {
		return 0
	}
	return len(idx.Items)
}
