package sandwiches

import "errors"

// Sentinel errors shared by repositories and services.
var (
	ErrNotFound       = errors.New("sandwich not found")
	ErrUnknownTopping = errors.New("unknown topping")
)

// BreadTypes lists the bread types accepted for a sandwich.
var BreadTypes = []string{"oat", "rye", "wheat", "sourdough", "corn"}

// Topping is a catalog entry referenced by sandwiches.
type Topping struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// Sandwich represents a catalog product with its toppings.
type Sandwich struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	BreadType string    `json:"breadType"`
	Toppings  []Topping `json:"toppings,omitempty"`
}

// ValidBreadType checks a bread type string against the catalog.
func ValidBreadType(s string) bool {
	for _, b := range BreadTypes {
		if b == s {
			return true
		}
	}
	return false
}
