package domain

// Character is a catalog record received from the external character API,
// augmented with local-only shopping fields.
type Character struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Species  string `json:"species"`
	Origin   string `json:"origin"`
	Location string `json:"location"`

	// UnitPrice is derived from Name on every read; it is never stored
	// independently.
	UnitPrice int `json:"unit_price"`

	// ChosenQuantity is local-only and never negative. A character that has
	// not been touched reads as zero.
	ChosenQuantity int `json:"chosen_quantity"`
}
