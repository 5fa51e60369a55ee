package http

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/komyg/rm-shop-v2/internal/domain"
	"github.com/komyg/rm-shop-v2/internal/source"
	"github.com/komyg/rm-shop-v2/internal/store"
)

// ShopResolver is the view-facing surface of the resolver layer.
type ShopResolver interface {
	Character(ctx context.Context, id string) (*domain.Character, error)
	Characters(ctx context.Context) ([]*domain.Character, error)
	Cart(ctx context.Context) (*domain.ShoppingCart, error)
	IncreaseChosenQuantity(ctx context.Context, characterID string) error
	DecreaseChosenQuantity(ctx context.Context, characterID string) error
}

type ShopHandler struct {
	resolver ShopResolver
	timeout  time.Duration
}

func NewShopHandler(resolver ShopResolver, timeout time.Duration) *ShopHandler {
	return &ShopHandler{
		resolver: resolver,
		timeout:  timeout,
	}
}

type MutationResponseDTO struct {
	Success   bool                 `json:"success"`
	Character *domain.Character    `json:"character,omitempty"`
	Cart      *domain.ShoppingCart `json:"cart,omitempty"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Details string `json:"details,omitempty"`
}

func (h *ShopHandler) GetCharacter(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	id := chi.URLParam(r, "character_id")
	if id == "" {
		respondError(w, http.StatusBadRequest, "invalid_character_id", "character_id must not be empty")
		return
	}

	ch, err := h.resolver.Character(ctx, id)
	if err != nil {
		handleResolverError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, ch)
}

func (h *ShopHandler) ListCharacters(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	chars, err := h.resolver.Characters(ctx)
	if err != nil {
		handleResolverError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, chars)
}

func (h *ShopHandler) GetCart(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	cart, err := h.resolver.Cart(ctx)
	if err != nil {
		handleResolverError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, cart)
}

func (h *ShopHandler) IncreaseChosenQuantity(w http.ResponseWriter, r *http.Request) {
	h.mutate(w, r, h.resolver.IncreaseChosenQuantity)
}

func (h *ShopHandler) DecreaseChosenQuantity(w http.ResponseWriter, r *http.Request) {
	h.mutate(w, r, h.resolver.DecreaseChosenQuantity)
}

// mutate runs one of the two quantity mutations and responds with the
// updated character and cart.
func (h *ShopHandler) mutate(w http.ResponseWriter, r *http.Request, op func(context.Context, string) error) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	id := chi.URLParam(r, "character_id")
	if id == "" {
		respondError(w, http.StatusBadRequest, "invalid_character_id", "character_id must not be empty")
		return
	}

	if err := op(ctx, id); err != nil {
		log.Printf("[%s] mutation failed for character %s: %v", getRequestID(r.Context()), id, err)
		handleResolverError(w, err)
		return
	}

	// Read back the updated records so the view re-renders from them.
	ch, err := h.resolver.Character(ctx, id)
	if err != nil {
		handleResolverError(w, err)
		return
	}
	cart, err := h.resolver.Cart(ctx)
	if err != nil {
		handleResolverError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, MutationResponseDTO{
		Success:   true,
		Character: ch,
		Cart:      cart,
	})
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Printf("failed to encode response: %v", err)
	}
}

func respondError(w http.ResponseWriter, status int, code, message string) {
	respondJSON(w, status, ErrorResponse{
		Error:   message,
		Code:    code,
		Details: "",
	})
}

// handleResolverError maps resolver errors to HTTP status codes. Both
// missing-record causes collapse to the same 404; the client only sees a
// single failure signal.
func handleResolverError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, store.ErrCharacterNotFound),
		errors.Is(err, store.ErrCartNotFound),
		errors.Is(err, source.ErrCharacterNotFound):
		respondError(w, http.StatusNotFound, "not_found", "referenced record not found")
	case errors.Is(err, source.ErrSourceUnavailable):
		respondError(w, http.StatusServiceUnavailable, "source_unavailable", "character source unavailable")
	case errors.Is(err, context.DeadlineExceeded):
		respondError(w, http.StatusGatewayTimeout, "timeout", "operation timed out")
	default:
		respondError(w, http.StatusInternalServerError, "internal_error", "internal server error")
	}
}
