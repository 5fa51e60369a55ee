package pricing

// DefaultPrice is what any character missing from the price table sells at.
const DefaultPrice = 5

// prices maps character names to their unit price.
var prices = map[string]int{
	"Rick Sanchez": 10,
	"Morty Smith":  10,
}

// UnitPrice returns the price of a single action figure of the named
// character. Total over all names; unmapped names sell at DefaultPrice.
func UnitPrice(name string) int {
	if price, ok := prices[name]; ok {
		return price
	}
	return DefaultPrice
}
