package ports

import (
	"context"

	"github.com/SalonenTeemu/sandwich-store/internal/domain/orders"
	"github.com/SalonenTeemu/sandwich-store/internal/domain/sandwiches"
	"github.com/SalonenTeemu/sandwich-store/internal/domain/users"
)

// OrderService handles the /order flows: place -> hand off, read with authz.
type OrderService interface {
	// PlaceOrder validates the referenced sandwich, persists the order in
	// 'received' state, and hands it to the task producer.
	PlaceOrder(ctx context.Context, customer string, sandwichID int64) (*orders.Order, error)
	// GetOrder enforces the owner-or-admin rule.
	GetOrder(ctx context.Context, principal *users.User, id int64) (*orders.Order, error)
	// ListOrders returns all orders for admins, own orders otherwise.
	ListOrders(ctx context.Context, principal *users.User) ([]orders.Order, error)
}

// TaskPublisher publishes an order payload to the durable task queue.
// The returned channel reports the broker's publisher confirmation
// asynchronously; the publish call itself fails only on channel errors.
type TaskPublisher interface {
	PublishTask(ctx context.Context, body []byte) (confirmed <-chan bool, err error)
}

// ResultPublisher publishes a processing outcome to the durable result queue.
type ResultPublisher interface {
	PublishResult(ctx context.Context, body []byte) error
}

// Subscription is a one-shot registration against the status notifier.
type Subscription struct {
	ID int64
	C  <-chan orders.Order
}

// StatusNotifier is the in-process fan-out for terminal status changes.
type StatusNotifier interface {
	// Subscribe registers a one-shot listener for the given order id.
	Subscribe(orderID int64) Subscription
	// Unsubscribe removes a listener that has not fired (timeout, disconnect).
	Unsubscribe(id int64)
	// Publish resolves and discards every listener registered for the order.
	Publish(order orders.Order)
}

// UserService covers account registration, lookup, and maintenance.
type UserService interface {
	Register(ctx context.Context, username, email, password string) (*users.User, error)
	Login(ctx context.Context, username, password string) (*users.User, error)
	GetUser(ctx context.Context, principal *users.User, username string) (*users.User, error)
	ListUsers(ctx context.Context, principal *users.User) ([]users.User, error)
	UpdateUser(ctx context.Context, principal *users.User, username string, upd UserUpdate) (*users.User, error)
	DeleteUser(ctx context.Context, principal *users.User, username string) error
}

// UserUpdate carries the optional fields of a user edit.
type UserUpdate struct {
	Username *string
	Email    *string
	Password *string
	Role     *string
}

// SandwichService covers catalog CRUD.
type SandwichService interface {
	GetSandwich(ctx context.Context, id int64) (*sandwiches.Sandwich, error)
	ListSandwiches(ctx context.Context) ([]sandwiches.Sandwich, error)
	CreateSandwich(ctx context.Context, name, breadType string, toppingIDs []int64) (*sandwiches.Sandwich, error)
	UpdateSandwich(ctx context.Context, id int64, name, breadType string, toppingIDs []int64) (*sandwiches.Sandwich, error)
	DeleteSandwich(ctx context.Context, id int64) error
	ListToppings(ctx context.Context) ([]sandwiches.Topping, error)
}
