package domain

// CartID is the identifier of the single cart record a session owns.
const CartID = "shopping-cart"

// ShoppingCart aggregates price and item count over all chosen characters.
// It exists for the whole session; an empty cart is zero-valued, never absent.
type ShoppingCart struct {
	ID               string `json:"id"`
	TotalPrice       int    `json:"total_price"`
	NumActionFigures int    `json:"num_action_figures"`
}

// NewShoppingCart returns the session's empty cart.
func NewShoppingCart() *ShoppingCart {
	return &ShoppingCart{ID: CartID}
}

// Add records one more figure at the given unit price.
func (c *ShoppingCart) Add(unitPrice int) {
	c.TotalPrice += unitPrice
	c.NumActionFigures++
}

// Remove records one fewer figure at the given unit price. Both aggregates
// clamp at zero and never go negative.
func (c *ShoppingCart) Remove(unitPrice int) {
	c.TotalPrice = max(c.TotalPrice-unitPrice, 0)
	c.NumActionFigures = max(c.NumActionFigures-1, 0)
}
