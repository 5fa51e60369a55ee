package resolver

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"sync/atomic"
	"time"

	"github.com/komyg/rm-shop-v2/internal/cache"
	"github.com/komyg/rm-shop-v2/internal/domain"
	"github.com/komyg/rm-shop-v2/internal/pricing"
	"github.com/komyg/rm-shop-v2/internal/store"
	"golang.org/x/sync/singleflight"
)

// CharacterSource fetches raw character records from the external API.
type CharacterSource interface {
	FetchCharacter(ctx context.Context, id string) (*domain.Character, error)
}

// Resolver executes the shop's read and mutation operations against an
// injected store. Mutations run one at a time: each one is a multi-step
// read-modify-write over two records, and interleaving two of them would
// lose updates. Cart reads go through the snapshot cache; the cache is
// invalidated whenever the store reports a cart write. Character reads that
// miss the store fall back to the external source when one is configured.
type Resolver struct {
	store     store.Store
	cache     cache.SnapshotCache
	source    CharacterSource // may be nil, then misses stay misses
	sessionID string

	// mu serializes mutations and snapshot refills. gen counts cart
	// writes; snapshot flights are keyed by it so a flight begun before a
	// mutation is never handed to a reader arriving after it.
	mu  sync.Mutex
	gen atomic.Uint64

	sfg singleflight.Group // Prevents cache stampede on cart reads
}

func New(st store.Store, c cache.SnapshotCache, src CharacterSource, sessionID string) *Resolver {
	r := &Resolver{
		store:     st,
		cache:     c,
		source:    src,
		sessionID: sessionID,
	}
	st.Subscribe(r.onStoreEvent)
	return r
}

// onStoreEvent drops the cart snapshot after every cart write.
func (r *Resolver) onStoreEvent(ev store.Event) {
	if ev.Kind != store.KindCart {
		return
	}
	r.gen.Add(1)
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := r.cache.Delete(ctx, r.sessionID); err != nil {
		log.Printf("cache invalidate error: %v", err)
	}
}

// Character returns the full character record with derived fields applied.
// On a store miss the record is fetched from the external source, augmented
// with default local fields and stored.
func (r *Resolver) Character(ctx context.Context, id string) (*domain.Character, error) {
	ch, err := r.store.GetCharacter(ctx, id)
	if err == nil {
		resolveFields(ch)
		return ch, nil
	}
	if !errors.Is(err, store.ErrCharacterNotFound) || r.source == nil {
		return nil, err
	}

	fetched, errFetch := r.source.FetchCharacter(ctx, id)
	if errFetch != nil {
		return nil, errFetch
	}

	// First read of an external record: local fields start at their
	// defaults (chosen quantity zero).
	fetched.ChosenQuantity = 0
	if errPut := r.store.PutCharacter(ctx, fetched); errPut != nil {
		return nil, errPut
	}

	resolveFields(fetched)
	return fetched, nil
}

// Characters returns all character records with derived fields applied.
func (r *Resolver) Characters(ctx context.Context) ([]*domain.Character, error) {
	chars, err := r.store.ListCharacters(ctx)
	if err != nil {
		return nil, err
	}
	for _, ch := range chars {
		resolveFields(ch)
	}
	return chars, nil
}

// Cart returns the session's cart snapshot. Concurrent cache misses for the
// same write generation collapse into one store read; a reader arriving
// after a mutation keys a fresh flight.
func (r *Resolver) Cart(ctx context.Context) (*domain.ShoppingCart, error) {
	key := fmt.Sprintf("%s@%d", r.sessionID, r.gen.Load())
	v, err, _ := r.sfg.Do(key, func() (interface{}, error) {

		cart, err := r.cache.Get(ctx, r.sessionID)
		if err == nil {
			return cart, nil // snapshot is in cache
		}

		if !errors.Is(err, cache.ErrCacheMiss) {
			log.Printf("cache get error: %v", err) // log cache error but continue
		}

		// Refill under the mutation lock: the store read and the cache
		// set must not straddle a concurrent mutation's cart write and
		// invalidation, or the refill would resurrect a stale snapshot.
		r.mu.Lock()
		defer r.mu.Unlock()

		cart, errGet := r.store.GetCart(ctx)
		if errGet != nil {
			return nil, errGet
		}

		if errSet := r.cache.Set(ctx, r.sessionID, cart); errSet != nil {
			log.Printf("cache set error: %v", errSet)
		}

		return cart, nil
	})

	if err != nil {
		return nil, err
	}

	return v.(*domain.ShoppingCart), nil
}

// IncreaseChosenQuantity adds one unit of the character to the cart. There is
// no upper bound on the quantity.
func (r *Resolver) IncreaseChosenQuantity(ctx context.Context, characterID string) error {
	// The whole read-modify-write runs under one lock, the same way the
	// store would commit a single mutation.
	r.mu.Lock()
	defer r.mu.Unlock()

	ch, err := r.store.GetCharacter(ctx, characterID)
	if err != nil {
		return err
	}

	ch.ChosenQuantity++
	if errPut := r.store.PutCharacter(ctx, ch); errPut != nil {
		return errPut
	}

	// A missing cart leaves the character write applied; there is no
	// rollback.
	cart, errCart := r.store.GetCart(ctx)
	if errCart != nil {
		return errCart
	}

	cart.Add(pricing.UnitPrice(ch.Name))
	return r.store.PutCart(ctx, cart)
}

// DecreaseChosenQuantity removes one unit of the character from the cart.
// The quantity and both cart aggregates clamp at zero.
func (r *Resolver) DecreaseChosenQuantity(ctx context.Context, characterID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	ch, err := r.store.GetCharacter(ctx, characterID)
	if err != nil {
		return err
	}

	ch.ChosenQuantity = max(ch.ChosenQuantity-1, 0)
	if errPut := r.store.PutCharacter(ctx, ch); errPut != nil {
		return errPut
	}

	cart, errCart := r.store.GetCart(ctx)
	if errCart != nil {
		return errCart
	}

	cart.Remove(pricing.UnitPrice(ch.Name))
	return r.store.PutCart(ctx, cart)
}

// resolveFields computes the derived fields a raw record does not carry.
// UnitPrice is recomputed from the name on every read; a character that was
// never chosen reads as quantity zero (the record's zero value already says
// so, no lookup needed).
func resolveFields(ch *domain.Character) {
	ch.UnitPrice = pricing.UnitPrice(ch.Name)
}
