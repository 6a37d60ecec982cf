package cart

import "fmt"

// Product is what a caller offers to the cart. Price is in the smallest unit
// of the shop's currency.
type Product struct {
	ID    string
	Name  string
	Price int64
	Stock int
	Image string
}

// Item is one cart line. Quantity stays within [1, Stock].
type Item struct {
	ID       string `json:"id"`
	Name     string `json:"name,omitempty"`
	Price    int64  `json:"price"`
	Stock    int    `json:"stock"`
	Image    string `json:"image,omitempty"`
	Quantity int    `json:"quantity"`
}

// Subtotal is Price times Quantity.
func (i Item) Subtotal() int64 {
	return i.Price * int64(i.Quantity)
}

// Outcome tells the caller what a mutation did, including the cases where a
// quantity was silently held at the stock limit.
type Outcome int

const (
	OutcomeAdded       Outcome = iota // New line with quantity 1
	OutcomeIncremented                // Existing line grew by one
	OutcomeAtStock                    // Existing line already at stock, nothing changed
	OutcomeOutOfStock                 // Product has no stock, nothing changed
	OutcomeUpdated                    // Quantity set as requested
	OutcomeClamped                    // Quantity set to the stock limit instead
	OutcomeRemoved
	OutcomeNotFound
	OutcomeCleared
)

func (o Outcome) String() string {
	switch o {
	case OutcomeAdded:
		return "added"
	case OutcomeIncremented:
		return "incremented"
	case OutcomeAtStock:
		return "at stock limit"
	case OutcomeOutOfStock:
		return "out of stock"
	case OutcomeUpdated:
		return "updated"
	case OutcomeClamped:
		return "clamped to stock"
	case OutcomeRemoved:
		return "removed"
	case OutcomeNotFound:
		return "not found"
	case OutcomeCleared:
		return "cleared"
	default:
		return fmt.Sprintf("Outcome(%d)", int(o))
	}
}

// Changed reports whether the outcome modified the cart.
func (o Outcome) Changed() bool {
	switch o {
	case OutcomeAdded, OutcomeIncremented, OutcomeUpdated, OutcomeClamped, OutcomeRemoved, OutcomeCleared:
		return true
	}
	return false
}
