package ports

import (
	"context"

	"github.com/SalonenTeemu/sandwich-store/internal/domain/orders"
	"github.com/SalonenTeemu/sandwich-store/internal/domain/sandwiches"
	"github.com/SalonenTeemu/sandwich-store/internal/domain/users"
)

// UnitOfWork wraps a function in a DB transaction.
type UnitOfWork interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// OrderRepository persists orders. Create MUST insert in 'received' state.
type OrderRepository interface {
	Create(ctx context.Context, o *orders.Order) error
	GetByID(ctx context.Context, id int64) (*orders.Order, error)
	ListAll(ctx context.Context) ([]orders.Order, error)
	ListByCustomer(ctx context.Context, username string) ([]orders.Order, error)
	// SetStatus applies a non-terminal transition; a move the state machine
	// does not allow returns orders.ErrInvalidTransition.
	SetStatus(ctx context.Context, id int64, next orders.OrderStatus) error
	// ApplyTerminalStatus moves an order to 'ready' or 'failed' only when it
	// is still in a non-terminal state. Reports whether the update applied.
	ApplyTerminalStatus(ctx context.Context, id int64, next orders.OrderStatus) (applied bool, err error)
}

// UserRepository persists user accounts.
type UserRepository interface {
	Create(ctx context.Context, u *users.User) error
	GetByUsername(ctx context.Context, username string) (*users.User, error)
	// GetWithPassword also loads the password hash for login checks.
	GetWithPassword(ctx context.Context, username string) (*users.User, error)
	// FindExisting returns a user matching the username or the email, or
	// users.ErrNotFound when neither is taken.
	FindExisting(ctx context.Context, username, email string) (*users.User, error)
	ListAll(ctx context.Context) ([]users.User, error)
	Update(ctx context.Context, u *users.User) error
	Delete(ctx context.Context, username string) error
}

// SandwichRepository persists catalog products and their toppings.
type SandwichRepository interface {
	Create(ctx context.Context, s *sandwiches.Sandwich, toppingIDs []int64) error
	GetByID(ctx context.Context, id int64) (*sandwiches.Sandwich, error)
	ListAll(ctx context.Context) ([]sandwiches.Sandwich, error)
	Update(ctx context.Context, s *sandwiches.Sandwich, toppingIDs []int64) error
	Delete(ctx context.Context, id int64) error
	ListToppings(ctx context.Context) ([]sandwiches.Topping, error)
}
