package source

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/komyg/rm-shop-v2/internal/domain"
	"github.com/sony/gobreaker/v2"
	"golang.org/x/sync/singleflight"
)

// Common errors returned by the client
var (
	ErrCharacterNotFound = errors.New("character not found in source")
	ErrSourceUnavailable = errors.New("character source unavailable")
)

// Client fetches raw character records from the external character API.
// The remote is guarded by a circuit breaker; concurrent fetches of the same
// id collapse into one request.
type Client struct {
	baseURL string
	http    *http.Client
	cb      *gobreaker.CircuitBreaker[[]domain.Character]
	sfg     singleflight.Group
}

// NewClient creates a client for the character API rooted at baseURL
// (e.g. https://rickandmortyapi.com/api).
func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: timeout},
		cb: gobreaker.NewCircuitBreaker[[]domain.Character](gobreaker.Settings{
			Name:    "character-source",
			Timeout: 30 * time.Second,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				return counts.ConsecutiveFailures >= 5
			},
		}),
	}
}

// FetchCharacter returns the character with the given id, without local
// fields. Returns ErrCharacterNotFound for unknown ids and
// ErrSourceUnavailable when the remote cannot be reached or the breaker is
// open.
func (c *Client) FetchCharacter(ctx context.Context, id string) (*domain.Character, error) {
	v, err, _ := c.sfg.Do(id, func() (interface{}, error) {
		chars, errFetch := c.cb.Execute(func() ([]domain.Character, error) {
			return c.fetch(ctx, fmt.Sprintf("%s/character/%s", c.baseURL, id))
		})
		if errFetch != nil {
			return nil, breakerErr(errFetch)
		}
		if len(chars) == 0 {
			return nil, ErrCharacterNotFound
		}
		return &chars[0], nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*domain.Character), nil
}

// FetchPage returns one page of the character catalog, without local fields.
func (c *Client) FetchPage(ctx context.Context, page int) ([]domain.Character, error) {
	chars, err := c.cb.Execute(func() ([]domain.Character, error) {
		return c.fetch(ctx, fmt.Sprintf("%s/character?page=%d", c.baseURL, page))
	})
	if err != nil {
		return nil, breakerErr(err)
	}
	return chars, nil
}

// characterDTO mirrors the character API's JSON shape.
type characterDTO struct {
	ID      int    `json:"id"`
	Name    string `json:"name"`
	Species string `json:"species"`
	Origin  struct {
		Name string `json:"name"`
	} `json:"origin"`
	Location struct {
		Name string `json:"name"`
	} `json:"location"`
}

// pageDTO wraps the list endpoint's response.
type pageDTO struct {
	Results []characterDTO `json:"results"`
}

func (c *Client) fetch(ctx context.Context, url string) ([]domain.Character, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSourceUnavailable, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		// Not a remote failure, must not trip the breaker as one; the
		// empty result stands for "no such character".
		return nil, nil
	case resp.StatusCode != http.StatusOK:
		return nil, fmt.Errorf("%w: unexpected status %d", ErrSourceUnavailable, resp.StatusCode)
	}

	// The list endpoint wraps results, the by-id endpoint returns a single
	// object. Decode into raw JSON first to tell them apart.
	var raw json.RawMessage
	if errDecode := json.NewDecoder(resp.Body).Decode(&raw); errDecode != nil {
		return nil, fmt.Errorf("decode response: %w", errDecode)
	}

	var page pageDTO
	if err2 := json.Unmarshal(raw, &page); err2 == nil && page.Results != nil {
		return mapDTOs(page.Results), nil
	}

	var single characterDTO
	if err2 := json.Unmarshal(raw, &single); err2 != nil {
		return nil, fmt.Errorf("decode character: %w", err2)
	}
	return mapDTOs([]characterDTO{single}), nil
}

func mapDTOs(dtos []characterDTO) []domain.Character {
	chars := make([]domain.Character, 0, len(dtos))
	for _, d := range dtos {
		chars = append(chars, domain.Character{
			ID:       strconv.Itoa(d.ID),
			Name:     d.Name,
			Species:  d.Species,
			Origin:   d.Origin.Name,
			Location: d.Location.Name,
		})
	}
	return chars
}

// breakerErr folds breaker-open errors into the unavailable sentinel.
func breakerErr(err error) error {
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return fmt.Errorf("%w: %v", ErrSourceUnavailable, err)
	}
	return err
}
