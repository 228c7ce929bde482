package orders

import "errors"

// Sentinel errors shared by repositories and services.
var (
	ErrNotFound  = errors.New("order not found")
	ErrForbidden = errors.New("order forbidden")
)

// Order represents a customer's sandwich order.
type Order struct {
	ID         int64       `json:"id"`
	Customer   string      `json:"customer"`
	SandwichID int64       `json:"sandwichId"`
	Status     OrderStatus `json:"status"`
}

// OwnedBy reports whether the order belongs to the given username.
func (order *Order) OwnedBy(username string) bool {
	return order.Customer == username
}
