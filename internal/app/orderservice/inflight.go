package orderservice

import (
	"sync"

	"github.com/SalonenTeemu/sandwich-store/internal/domain/orders"
)

// InflightList tracks orders handed to the producer but not yet resolved by
// a result, oldest first. It only backs two best-effort paths: attributing a
// malformed result to some pending order, and failing everything pending on
// teardown. Safe for concurrent use.
type InflightList struct {
	mu     sync.Mutex
	orders []orders.Order
}

// NewInflightList creates an empty list.
func NewInflightList() *InflightList {
	return &InflightList{}
}

// Append adds an order to the tail.
func (l *InflightList) Append(order orders.Order) {
	l.mu.Lock()
	l.orders = append(l.orders, order)
	l.mu.Unlock()
}

// Remove drops the entry with the given id. Reports whether it was present.
func (l *InflightList) Remove(orderID int64) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	for i := range l.orders {
		if l.orders[i].ID == orderID {
			l.orders = append(l.orders[:i], l.orders[i+1:]...)
			return true
		}
	}
	return false
}

// PopOldest removes and returns the head of the list.
func (l *InflightList) PopOldest() (orders.Order, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if len(l.orders) == 0 {
		return orders.Order{}, false
	}
	head := l.orders[0]
	l.orders = l.orders[1:]
	return head, true
}

// DrainAll removes and returns every pending order, oldest first.
func (l *InflightList) DrainAll() []orders.Order {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := l.orders
	l.orders = nil
	return out
}

// Len returns the number of pending orders.
func (l *InflightList) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.orders)
}
