package usecases

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/sglre6355/guildassistant/internal/modules/catalog/domain"
)

func embedsDoc(n int) []byte {
	parts := make([]string, n)
	for i := range parts {
		parts[i] = fmt.Sprintf(`{"title":"e%d","url":"https://wiki.example/%d"}`, i+1, i+1)
	}
	return []byte(`{"embeds":[` + strings.Join(parts, ",") + `]}`)
}

func newTestLookup(source *fakeSource) *LookupService {
	return NewLookupService(NewIndexCache(source, 0), source, 10)
}

func testSource() *fakeSource {
	return &fakeSource{
		index: testIndex(),
		documents: map[string][]byte{
			"7dso/character/meliodas.json":            embedsDoc(12),
			"7dso/character/demon_king_meliodas.json": embedsDoc(1),
			"7dso/boss/red_demon.json":                embedsDoc(3),
			"genshin/character/diluc.json":            embedsDoc(2),
			"7dso/character/empty.json":               []byte(`{"embeds":[]}`),
		},
	}
}

func TestLookupService_Lookup(t *testing.T) {
	tests := []struct {
		name        string
		input       LookupInput
		wantSlug    string
		wantBatches []int
	}{
		{
			name:        "exact slug",
			input:       LookupInput{Query: "meliodas", Type: domain.EntityCharacter},
			wantSlug:    "meliodas",
			wantBatches: []int{10, 2},
		},
		{
			name:        "name contains",
			input:       LookupInput{Query: "king", Type: domain.EntityCharacter},
			wantSlug:    "demon_king_meliodas",
			wantBatches: []int{1},
		},
		{
			name:        "boss type",
			input:       LookupInput{Query: "Red Démon", Type: domain.EntityBoss},
			wantSlug:    "red_demon",
			wantBatches: []int{3},
		},
		{
			name:        "game filter",
			input:       LookupInput{Query: "diluc", Game: "genshin", Type: domain.EntityCharacter},
			wantSlug:    "diluc",
			wantBatches: []int{2},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := newTestLookup(testSource())

			out, err := svc.Lookup(context.Background(), tt.input)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if out.Item == nil || out.Item.Slug != tt.wantSlug {
				t.Fatalf("expected %q, got %+v", tt.wantSlug, out.Item)
			}
			if len(out.Batches) != len(tt.wantBatches) {
				t.Fatalf("expected %d batches, got %d", len(tt.wantBatches), len(out.Batches))
			}
			for i, n := range tt.wantBatches {
				if got := len(out.Batches[i].Embeds); got != n {
					t.Errorf("batch %d has %d embeds, expected %d", i, got, n)
				}
			}
		})
	}
}

func TestLookupService_Lookup_MissingQuery(t *testing.T) {
	source := testSource()
	svc := newTestLookup(source)

	for _, q := range []string{"", "   ", "?!"} {
		_, err := svc.Lookup(context.Background(), LookupInput{Query: q, Type: domain.EntityCharacter})
		if !errors.Is(err, ErrMissingQuery) {
			t.Errorf("query %q: expected ErrMissingQuery, got %v", q, err)
		}
	}
	if got := source.indexCalls.Load(); got != 0 {
		t.Errorf("expected no index fetch, got %d", got)
	}
}

func TestLookupService_Lookup_NoMatchReturnsSuggestions(t *testing.T) {
	source := testSource()
	svc := newTestLookup(source)

	out, err := svc.Lookup(context.Background(), LookupInput{Query: "demon", Type: domain.EntityBoss, Game: "genshin"})
	if !errors.Is(err, ErrNoMatch) {
		t.Fatalf("expected ErrNoMatch, got %v", err)
	}
	if len(out.Suggestions) != 0 {
		t.Errorf("expected no suggestions, got %v", out.Suggestions)
	}

	// Slug-only hits never resolve but are suggested.
	source.index.Items = append(source.index.Items, domain.CatalogItem{
		Name: "Escanor", Slug: "lion_of_pride", Game: "7dso", Type: domain.EntityCharacter,
	})
	svc = newTestLookup(source)

	out, err = svc.Lookup(context.Background(), LookupInput{Query: "pride", Type: domain.EntityCharacter})
	if !errors.Is(err, ErrNoMatch) {
		t.Fatalf("expected ErrNoMatch, got %v", err)
	}
	if len(out.Suggestions) != 1 || out.Suggestions[0].Slug != "lion_of_pride" {
		t.Errorf("expected lion_of_pride suggestion, got %v", out.Suggestions)
	}
	if got := source.docCalls.Load(); got != 0 {
		t.Errorf("expected no document fetch, got %d", got)
	}
}

func TestLookupService_Lookup_TypeFilterExcludesOtherTypes(t *testing.T) {
	svc := newTestLookup(testSource())

	_, err := svc.Lookup(context.Background(), LookupInput{Query: "red demon", Type: domain.EntityCharacter})
	if !errors.Is(err, ErrNoMatch) {
		t.Fatalf("expected ErrNoMatch, got %v", err)
	}
}

func TestLookupService_Lookup_EmptyContent(t *testing.T) {
	svc := newTestLookup(testSource())

	out, err := svc.Lookup(context.Background(), LookupInput{Query: "empty", Type: domain.EntityCharacter})
	if !errors.Is(err, ErrEmptyContent) {
		t.Fatalf("expected ErrEmptyContent, got %v", err)
	}
	if out.Item == nil || out.Item.Slug != "empty" {
		t.Errorf("expected resolved item, got %+v", out.Item)
	}
}

func TestLookupService_Lookup_SourceErrors(t *testing.T) {
	t.Run("index", func(t *testing.T) {
		source := testSource()
		source.indexErr = errSourceDown

		_, err := newTestLookup(source).Lookup(context.Background(), LookupInput{Query: "meliodas"})
		if !errors.Is(err, errSourceDown) {
			t.Errorf("expected errSourceDown, got %v", err)
		}
	})

	t.Run("document", func(t *testing.T) {
		source := testSource()
		source.docErr = errSourceDown

		_, err := newTestLookup(source).Lookup(context.Background(), LookupInput{Query: "meliodas"})
		if !errors.Is(err, errSourceDown) {
			t.Errorf("expected errSourceDown, got %v", err)
		}
	})
}

func TestLookupService_Search(t *testing.T) {
	svc := newTestLookup(testSource())

	out, err := svc.Search(context.Background(), SearchInput{Text: "demon"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := []string{"demon_king_meliodas", "red_demon"}
	if len(out.Items) != len(want) {
		t.Fatalf("expected %d items, got %d", len(want), len(out.Items))
	}
	for i, slug := range want {
		if out.Items[i].Slug != slug {
			t.Errorf("item %d = %q, expected %q", i, out.Items[i].Slug, slug)
		}
	}
}

func TestLookupService_Search_LimitAndGame(t *testing.T) {
	svc := newTestLookup(testSource())

	out, err := svc.Search(context.Background(), SearchInput{Text: "e", Limit: 2})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(out.Items) != 2 {
		t.Errorf("expected 2 items, got %d", len(out.Items))
	}

	out, err = svc.Search(context.Background(), SearchInput{Text: "i", Game: "GENSHIN"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(out.Items) != 1 || out.Items[0].Slug != "diluc" {
		t.Errorf("expected only diluc, got %v", out.Items)
	}
}

func TestLookupService_Search_MissingText(t *testing.T) {
	svc := newTestLookup(testSource())

	if _, err := svc.Search(context.Background(), SearchInput{Text: " "}); !errors.Is(err, ErrMissingQuery) {
		t.Errorf("expected ErrMissingQuery, got %v", err)
	}
}

func TestLookupService_Lookup_ItemDoesNotAliasCachedIndex(t *testing.T) {
	source := testSource()
	cache := NewIndexCache(source, 0)
	svc := NewLookupService(cache, source, 10)

	out, err := svc.Lookup(context.Background(), LookupInput{Query: "meliodas"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	out.Item.Name = "changed"

	idx, err := cache.Get(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if idx.Items[0].Name != "Meliodas" {
		t.Errorf("expected cached index untouched, got %q", idx.Items[0].Name)
	}
}
