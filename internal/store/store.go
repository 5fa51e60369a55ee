package store

import (
	"context"
	"errors"

	"github.com/komyg/rm-shop-v2/internal/domain"
)

// Common errors returned by the store
var (
	ErrCharacterNotFound = errors.New("character not found")
	ErrCartNotFound      = errors.New("cart not found")
)

// RecordKind tags which record type a store event refers to.
type RecordKind string

const (
	KindCharacter RecordKind = "character"
	KindCart      RecordKind = "cart"
)

// Event describes a committed write. Subscribers receive one event per write,
// after the write is visible to readers.
type Event struct {
	Kind RecordKind
	ID   string
}

// Store defines keyed access to character records and the singleton cart.
// Implementations must report a missing record distinctly from a record that
// exists with zero values.
type Store interface {
	// GetCharacter returns the character with the given id, or
	// ErrCharacterNotFound.
	GetCharacter(ctx context.Context, id string) (*domain.Character, error)

	// PutCharacter inserts or replaces a character record.
	PutCharacter(ctx context.Context, ch *domain.Character) error

	// ListCharacters returns all character records in the store.
	ListCharacters(ctx context.Context) ([]*domain.Character, error)

	// GetCart returns the session's cart, or ErrCartNotFound.
	GetCart(ctx context.Context) (*domain.ShoppingCart, error)

	// PutCart replaces the session's cart.
	PutCart(ctx context.Context, cart *domain.ShoppingCart) error

	// Subscribe registers a callback invoked synchronously after every
	// committed write.
	Subscribe(fn func(Event))
}
