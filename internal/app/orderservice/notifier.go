package orderservice

import (
	"sync"

	"github.com/SalonenTeemu/sandwich-store/internal/domain/orders"
	"github.com/SalonenTeemu/sandwich-store/internal/ports"
)

// Notifier is the in-process fan-out for terminal order status changes.
// Listeners are one-shot and keyed by order id, so the consumer resolves
// waiters directly instead of broadcasting to every registered callback.
// Nothing here is authoritative: a notification with no listener is lost,
// and the persisted status remains readable afterwards.
type Notifier struct {
	mu      sync.Mutex
	nextID  int64
	byOrder map[int64]map[int64]chan orders.Order
	orderOf map[int64]int64
}

// Compile-time interface check.
var _ ports.StatusNotifier = (*Notifier)(nil)

// NewNotifier creates an empty notifier.
func NewNotifier() *Notifier {
	return &Notifier{
		byOrder: make(map[int64]map[int64]chan orders.Order),
		orderOf: make(map[int64]int64),
	}
}

// Subscribe registers a one-shot listener for the given order id. The
// returned channel is buffered so Publish never blocks on a slow waiter.
func (n *Notifier) Subscribe(orderID int64) ports.Subscription {
	n.mu.Lock()
	defer n.mu.Unlock()

	n.nextID++
	id := n.nextID
	ch := make(chan orders.Order, 1)

	subs := n.byOrder[orderID]
	if subs == nil {
		subs = make(map[int64]chan orders.Order)
		n.byOrder[orderID] = subs
	}
	subs[id] = ch
	n.orderOf[id] = orderID

	return ports.Subscription{ID: id, C: ch}
}

// Unsubscribe removes a listener that has not fired. Safe to call after the
// listener has already been resolved.
func (n *Notifier) Unsubscribe(id int64) {
	n.mu.Lock()
	defer n.mu.Unlock()

	orderID, ok := n.orderOf[id]
	if !ok {
		return
	}
	delete(n.orderOf, id)
	if subs := n.byOrder[orderID]; subs != nil {
		delete(subs, id)
		if len(subs) == 0 {
			delete(n.byOrder, orderID)
		}
	}
}

// Publish resolves and discards every listener registered for the order.
func (n *Notifier) Publish(order orders.Order) {
	n.mu.Lock()
	subs := n.byOrder[order.ID]
	delete(n.byOrder, order.ID)
	for id := range subs {
		delete(n.orderOf, id)
	}
	n.mu.Unlock()

	for _, ch := range subs {
		ch <- order // buffered, one-shot: never blocks
	}
}
