package store

import (
	"context"
	"sort"
	"sync"

	"github.com/komyg/rm-shop-v2/internal/domain"
)

// MemoryStore implements Store with in-memory storage. The cart record is
// created zero-valued at construction and lives for the store's lifetime.
type MemoryStore struct {
	mu         sync.RWMutex
	characters map[string]*domain.Character // characterID -> record
	cart       *domain.ShoppingCart

	subMu       sync.RWMutex
	subscribers []func(Event)
}

// NewMemoryStore creates a new in-memory store holding an empty cart.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		characters: make(map[string]*domain.Character),
		cart:       domain.NewShoppingCart(),
	}
}

// GetCharacter returns a copy of the character with the given id.
func (s *MemoryStore) GetCharacter(_ context.Context, id string) (*domain.Character, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ch, exists := s.characters[id]
	if !exists {
		return nil, ErrCharacterNotFound
	}
	copied := *ch
	return &copied, nil
}

// PutCharacter inserts or replaces a character record and notifies
// subscribers.
func (s *MemoryStore) PutCharacter(_ context.Context, ch *domain.Character) error {
	s.mu.Lock()
	copied := *ch
	s.characters[ch.ID] = &copied
	s.mu.Unlock()

	s.notify(Event{Kind: KindCharacter, ID: ch.ID})
	return nil
}

// ListCharacters returns copies of all character records, ordered by id.
func (s *MemoryStore) ListCharacters(_ context.Context) ([]*domain.Character, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*domain.Character, 0, len(s.characters))
	for _, ch := range s.characters {
		copied := *ch
		result = append(result, &copied)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

// GetCart returns a copy of the session's cart.
func (s *MemoryStore) GetCart(_ context.Context) (*domain.ShoppingCart, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.cart == nil {
		return nil, ErrCartNotFound
	}
	copied := *s.cart
	return &copied, nil
}

// PutCart replaces the session's cart and notifies subscribers.
func (s *MemoryStore) PutCart(_ context.Context, cart *domain.ShoppingCart) error {
	s.mu.Lock()
	copied := *cart
	s.cart = &copied
	s.mu.Unlock()

	s.notify(Event{Kind: KindCart, ID: cart.ID})
	return nil
}

// Subscribe registers a callback for committed writes.
func (s *MemoryStore) Subscribe(fn func(Event)) {
	s.subMu.Lock()
	defer s.subMu.Unlock()
	s.subscribers = append(s.subscribers, fn)
}

// notify runs outside the data mutex so subscribers can read the store.
func (s *MemoryStore) notify(ev Event) {
	s.subMu.RLock()
	subs := s.subscribers
	s.subMu.RUnlock()

	for _, fn := range subs {
		fn(ev)
	}
}
