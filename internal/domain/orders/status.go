package orders

import "errors"

// OrderStatus is a custom type that represents the current status of an order in its lifecycle.
type OrderStatus string

const (
	StatusReceived OrderStatus = "received"
	StatusInQueue  OrderStatus = "in_queue"
	StatusReady    OrderStatus = "ready"
	StatusFailed   OrderStatus = "failed"
)

// Allowed state transitions. A status never rolls back to an earlier
// state; any non-terminal state may still drop to 'failed'.
var allowed = map[OrderStatus]map[OrderStatus]bool{
	StatusReceived: {StatusInQueue: true, StatusFailed: true},
	StatusInQueue:  {StatusReady: true, StatusFailed: true},
	StatusReady:    {},
	StatusFailed:   {},
}

// ErrInvalidTransition marks an attempt to move an order against the state
// machine, most often a rollback from a terminal state.
var ErrInvalidTransition = errors.New("invalid order status transition")

// CanTransition checks if from->to is allowed.
func CanTransition(from, to OrderStatus) bool {
	nexts := allowed[from]
	return nexts != nil && nexts[to]
}

// IsTerminal reports whether a status absorbs all further transitions.
func (s OrderStatus) IsTerminal() bool {
	return s == StatusReady || s == StatusFailed
}
