package store

import (
	"context"
	"testing"

	"github.com/komyg/rm-shop-v2/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStore_PutCharacter_And_GetCharacter(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	require.NoError(t, s.PutCharacter(ctx, &domain.Character{ID: "1", Name: "Rick Sanchez"}))

	ch, err := s.GetCharacter(ctx, "1")
	require.NoError(t, err)
	assert.Equal(t, "Rick Sanchez", ch.Name)
	assert.Equal(t, 0, ch.ChosenQuantity)
}

func TestMemoryStore_GetCharacter_NotFound(t *testing.T) {
	s := NewMemoryStore()

	ch, err := s.GetCharacter(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrCharacterNotFound)
	assert.Nil(t, ch)
}

func TestMemoryStore_GetCharacter_ReturnsCopy(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	require.NoError(t, s.PutCharacter(ctx, &domain.Character{ID: "1", Name: "Rick Sanchez"}))

	ch, err := s.GetCharacter(ctx, "1")
	require.NoError(t, err)
	ch.ChosenQuantity = 42 // mutating the copy must not touch the store

	again, err := s.GetCharacter(ctx, "1")
	require.NoError(t, err)
	assert.Equal(t, 0, again.ChosenQuantity)
}

func TestMemoryStore_ListCharacters_OrderedByID(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	require.NoError(t, s.PutCharacter(ctx, &domain.Character{ID: "2", Name: "Morty Smith"}))
	require.NoError(t, s.PutCharacter(ctx, &domain.Character{ID: "1", Name: "Rick Sanchez"}))

	chars, err := s.ListCharacters(ctx)
	require.NoError(t, err)
	require.Len(t, chars, 2)
	assert.Equal(t, "1", chars[0].ID)
	assert.Equal(t, "2", chars[1].ID)
}

func TestMemoryStore_CartExistsZeroValuedAtStart(t *testing.T) {
	s := NewMemoryStore()

	cart, err := s.GetCart(context.Background())
	require.NoError(t, err)
	assert.Equal(t, domain.CartID, cart.ID)
	assert.Equal(t, 0, cart.TotalPrice)
	assert.Equal(t, 0, cart.NumActionFigures)
}

func TestMemoryStore_PutCart(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	cart, err := s.GetCart(ctx)
	require.NoError(t, err)
	cart.Add(10)
	require.NoError(t, s.PutCart(ctx, cart))

	got, err := s.GetCart(ctx)
	require.NoError(t, err)
	assert.Equal(t, 10, got.TotalPrice)
	assert.Equal(t, 1, got.NumActionFigures)
}

func TestMemoryStore_Subscribe_NotifiedPerWrite(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	var events []Event
	s.Subscribe(func(ev Event) { events = append(events, ev) })

	require.NoError(t, s.PutCharacter(ctx, &domain.Character{ID: "1", Name: "Rick Sanchez"}))
	cart, _ := s.GetCart(ctx)
	require.NoError(t, s.PutCart(ctx, cart))

	require.Len(t, events, 2)
	assert.Equal(t, Event{Kind: KindCharacter, ID: "1"}, events[0])
	assert.Equal(t, Event{Kind: KindCart, ID: domain.CartID}, events[1])
}

func TestMemoryStore_Subscribe_CanReadStoreFromCallback(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	var seen int
	s.Subscribe(func(ev Event) {
		// The write must already be visible to a reader.
		ch, err := s.GetCharacter(ctx, ev.ID)
		require.NoError(t, err)
		seen = ch.ChosenQuantity
	})

	require.NoError(t, s.PutCharacter(ctx, &domain.Character{ID: "1", ChosenQuantity: 3}))
	assert.Equal(t, 3, seen)
}
