package orderservice

import (
	"context"
	"fmt"

	"github.com/SalonenTeemu/sandwich-store/internal/domain/orders"
	"github.com/SalonenTeemu/sandwich-store/internal/domain/users"
	"github.com/SalonenTeemu/sandwich-store/internal/ports"
	"github.com/SalonenTeemu/sandwich-store/internal/shared/logger"
)

// Service implements ports.OrderService.
type Service struct {
	uow        ports.UnitOfWork
	orders     ports.OrderRepository
	sandwiches ports.SandwichRepository
	producer   *Producer
	logger     *logger.Logger
}

// Compile-time interface check.
var _ ports.OrderService = (*Service)(nil)

// New creates a new OrderService with the required dependencies.
func New(uow ports.UnitOfWork, ordersRepo ports.OrderRepository, sandwichesRepo ports.SandwichRepository, producer *Producer, log *logger.Logger) *Service {
	return &Service{
		uow:        uow,
		orders:     ordersRepo,
		sandwiches: sandwichesRepo,
		producer:   producer,
		logger:     log,
	}
}

// PlaceOrder validates the referenced sandwich, persists the order in
// 'received' state, and hands it to the task producer. A failed hand-off
// leaves the order marked 'failed' and surfaces the error.
func (service *Service) PlaceOrder(ctx context.Context, customer string, sandwichID int64) (*orders.Order, error) {
	order := &orders.Order{
		Customer:   customer,
		SandwichID: sandwichID,
	}

	err := service.uow.WithinTx(ctx, func(txCtx context.Context) error {
		if _, err := service.sandwiches.GetByID(txCtx, sandwichID); err != nil {
			return err
		}
		return service.orders.Create(txCtx, order)
	})
	if err != nil {
		return nil, err
	}

	service.logger.Info(ctx, "order_created", "Order persisted as received", map[string]any{
		"order_id":    order.ID,
		"customer":    customer,
		"sandwich_id": sandwichID,
	})

	if err := service.producer.Submit(ctx, *order); err != nil {
		return nil, fmt.Errorf("submit order %d: %w", order.ID, err)
	}
	order.Status = orders.StatusInQueue
	return order, nil
}

// GetOrder fetches one order, enforcing the owner-or-admin rule.
func (service *Service) GetOrder(ctx context.Context, principal *users.User, id int64) (*orders.Order, error) {
	var order *orders.Order
	err := service.uow.WithinTx(ctx, func(txCtx context.Context) error {
		var err error
		order, err = service.orders.GetByID(txCtx, id)
		return err
	})
	if err != nil {
		return nil, err
	}

	if !principal.IsAdmin() && !order.OwnedBy(principal.Username) {
		return nil, orders.ErrForbidden
	}
	return order, nil
}

// ListOrders returns all orders for admins, own orders otherwise.
func (service *Service) ListOrders(ctx context.Context, principal *users.User) ([]orders.Order, error) {
	var out []orders.Order
	err := service.uow.WithinTx(ctx, func(txCtx context.Context) error {
		var err error
		if principal.IsAdmin() {
			out, err = service.orders.ListAll(txCtx)
		} else {
			out, err = service.orders.ListByCustomer(txCtx, principal.Username)
		}
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}
