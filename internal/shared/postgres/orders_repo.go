package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/SalonenTeemu/sandwich-store/internal/domain/orders"
	"github.com/SalonenTeemu/sandwich-store/internal/ports"
)

// OrdersRepo implements persistence for orders using pgx and SQL.
type OrdersRepo struct{}

// NewOrdersRepo constructs a new OrdersRepo.
func NewOrdersRepo() ports.OrderRepository {
	return &OrdersRepo{}
}

// Create inserts the order in 'received' state and fills in the assigned id.
func (r *OrdersRepo) Create(ctx context.Context, order *orders.Order) error {
	tx, err := MustTxFromContext(ctx)
	if err != nil {
		return err
	}

	var status string
	err = tx.QueryRow(ctx, `
		INSERT INTO orders (customer, sandwich_id, status)
		VALUES ($1, $2, 'received')
		RETURNING id, status
	`, order.Customer, order.SandwichID).Scan(&order.ID, &status)
	if err != nil {
		return err
	}
	order.Status = orders.OrderStatus(status)
	return nil
}

// GetByID retrieves an order by its id.
func (r *OrdersRepo) GetByID(ctx context.Context, id int64) (*orders.Order, error) {
	tx, err := MustTxFromContext(ctx)
	if err != nil {
		return nil, err
	}

	var order orders.Order
	err = tx.QueryRow(ctx, `
		SELECT id, customer, sandwich_id, status
		FROM orders
		WHERE id = $1
	`, id).Scan(&order.ID, &order.Customer, &order.SandwichID, &order.Status)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, orders.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &order, nil
}

// ListAll retrieves every order.
func (r *OrdersRepo) ListAll(ctx context.Context) ([]orders.Order, error) {
	return r.list(ctx, `
		SELECT id, customer, sandwich_id, status
		FROM orders
		ORDER BY id
	`)
}

// ListByCustomer retrieves the orders owned by a customer.
func (r *OrdersRepo) ListByCustomer(ctx context.Context, username string) ([]orders.Order, error) {
	return r.list(ctx, `
		SELECT id, customer, sandwich_id, status
		FROM orders
		WHERE customer = $1
		ORDER BY id
	`, username)
}

// SetStatus applies a non-terminal transition, refusing any move the state
// machine does not allow. A result may resolve the order before the producer
// marks it 'in_queue'; the guard keeps that terminal state from rolling back.
func (r *OrdersRepo) SetStatus(ctx context.Context, id int64, next orders.OrderStatus) error {
	tx, err := MustTxFromContext(ctx)
	if err != nil {
		return err
	}

	var current orders.OrderStatus
	err = tx.QueryRow(ctx, `
		SELECT status
		FROM orders
		WHERE id = $1
		FOR UPDATE
	`, id).Scan(&current)
	if errors.Is(err, pgx.ErrNoRows) {
		return orders.ErrNotFound
	}
	if err != nil {
		return err
	}
	if !orders.CanTransition(current, next) {
		return orders.ErrInvalidTransition
	}

	_, err = tx.Exec(ctx, `
		UPDATE orders
		SET status = $1
		WHERE id = $2
	`, next, id)
	return err
}

// ApplyTerminalStatus moves an order to a terminal state only when it is
// still non-terminal, so duplicate results are a no-op.
func (r *OrdersRepo) ApplyTerminalStatus(ctx context.Context, id int64, next orders.OrderStatus) (bool, error) {
	tx, err := MustTxFromContext(ctx)
	if err != nil {
		return false, err
	}

	var applied bool
	err = tx.QueryRow(ctx, `
		UPDATE orders
		SET status = $1
		WHERE id = $2 AND status NOT IN ('ready', 'failed')
		RETURNING true
	`, next, id).Scan(&applied)
	if errors.Is(err, pgx.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return applied, nil
}

func (r *OrdersRepo) list(ctx context.Context, query string, args ...any) ([]orders.Order, error) {
	tx, err := MustTxFromContext(ctx)
	if err != nil {
		return nil, err
	}

	rows, err := tx.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []orders.Order
	for rows.Next() {
		var order orders.Order
		if err := rows.Scan(&order.ID, &order.Customer, &order.SandwichID, &order.Status); err != nil {
			return nil, err
		}
		out = append(out, order)
	}
	return out, rows.Err()
}
