package usecases

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/sglre6355/guildassistant/internal/modules/catalog/domain"
)

var errSourceDown = errors.New("source down")

type fakeSource struct {
	mu        sync.Mutex
	index     *domain.CatalogIndex
	indexErr  error
	documents map[string][]byte
	docErr    error

	indexCalls atomic.Int32
	docCalls   atomic.Int32

	// gate, when set, blocks FetchIndex until closed.
	gate chan struct{}
}

func (s *fakeSource) FetchIndex(ctx context.Context) (*domain.CatalogIndex, error) {
	s.indexCalls.Add(1)
	if s.gate != nil {
		select {
		case <-s.gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.indexErr != nil {
		return nil, s.indexErr
	}
	return s.index, nil
}

func (s *fakeSource) FetchDocument(_ context.Context, path string) ([]byte, error) {
	s.docCalls.Add(1)

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.docErr != nil {
		return nil, s.docErr
	}
	doc, ok := s.documents[path]
	if !ok {
		return nil, errors.New("not found: " + path)
	}
	return doc, nil
}

func (s *fakeSource) setIndexErr(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.indexErr = err
}

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func testIndex() *domain.CatalogIndex {
	return &domain.CatalogIndex{Items: []domain.CatalogItem{
		{Name: "Meliodas", Slug: "meliodas", Game: "7dso", Type: domain.EntityCharacter, EmbedsPath: "7dso/character/meliodas.json"},
		{Name: "Demon King Meliodas", Slug: "demon_king_meliodas", Game: "7dso", Type: domain.EntityCharacter, EmbedsPath: "7dso/character/demon_king_meliodas.json"},
		{Name: "Red Demon", Slug: "red_demon", Game: "7dso", Type: domain.EntityBoss, EmbedsPath: "7dso/boss/red_demon.json"},
		{Name: "Diluc", Slug: "diluc", Game: "Genshin", Type: domain.EntityCharacter, EmbedsPath: "genshin/character/diluc.json"},
		{Name: "Empty", Slug: "empty", Game: "7dso", Type: domain.EntityCharacter, EmbedsPath: "7dso/character/empty.json"},
	}}
}
