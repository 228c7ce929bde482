package orderservice

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/SalonenTeemu/sandwich-store/internal/domain/orders"
	"github.com/SalonenTeemu/sandwich-store/internal/ports"
	"github.com/SalonenTeemu/sandwich-store/internal/shared/contracts"
	"github.com/SalonenTeemu/sandwich-store/internal/shared/logger"
	"github.com/SalonenTeemu/sandwich-store/internal/shared/telemetry"
)

// Producer hands newly placed orders to the durable task queue and records
// the status transitions on the submitting side.
type Producer struct {
	uow       ports.UnitOfWork
	repo      ports.OrderRepository
	publisher ports.TaskPublisher
	inflight  *InflightList
	logger    *logger.Logger
}

// NewProducer wires a Producer with its dependencies.
func NewProducer(uow ports.UnitOfWork, repo ports.OrderRepository, publisher ports.TaskPublisher, inflight *InflightList, log *logger.Logger) *Producer {
	return &Producer{
		uow:       uow,
		repo:      repo,
		publisher: publisher,
		inflight:  inflight,
		logger:    log,
	}
}

// Submit publishes an order that is already persisted in 'received' state.
// On a successful publish call the order is marked 'in_queue' synchronously;
// the broker confirmation is awaited in the background and only logged. A
// failing publish call marks the order 'failed' and returns the error.
func (p *Producer) Submit(ctx context.Context, order orders.Order) error {
	p.inflight.Append(order)
	telemetry.InFlightGauge.Set(float64(p.inflight.Len()))

	body, err := contracts.TaskBody(order)
	if err != nil {
		p.inflight.Remove(order.ID)
		telemetry.InFlightGauge.Set(float64(p.inflight.Len()))
		p.markStatus(ctx, order.ID, orders.StatusFailed)
		return fmt.Errorf("serialize order: %w", err)
	}

	confirmed, err := p.publisher.PublishTask(ctx, body)
	if err != nil {
		p.inflight.Remove(order.ID)
		telemetry.InFlightGauge.Set(float64(p.inflight.Len()))
		p.markStatus(ctx, order.ID, orders.StatusFailed)
		return fmt.Errorf("publish task: %w", err)
	}
	telemetry.TasksPublished.Inc()

	// confirmation outcome is informational only; the caller is not blocked
	go p.logConfirmation(context.WithoutCancel(ctx), order.ID, confirmed)

	if err := p.markStatus(ctx, order.ID, orders.StatusInQueue); err != nil {
		if errors.Is(err, orders.ErrInvalidTransition) {
			// a result already resolved the order; leave the terminal state
			p.logger.Debug(ctx, "task_resolved_early", "Order reached a terminal status before the in_queue mark", map[string]any{"order_id": order.ID})
			return nil
		}
		return fmt.Errorf("mark order in_queue: %w", err)
	}

	p.logger.Debug(ctx, "task_published", "Order handed to the task queue", map[string]any{"order_id": order.ID})
	return nil
}

// FailPending marks every unresolved order 'failed'. Called on teardown
// while the broker connection is being released.
func (p *Producer) FailPending(ctx context.Context) {
	pending := p.inflight.DrainAll()
	telemetry.InFlightGauge.Set(0)
	for _, order := range pending {
		if err := p.markStatus(ctx, order.ID, orders.StatusFailed); err != nil {
			if !errors.Is(err, orders.ErrInvalidTransition) {
				p.logger.Error(ctx, "teardown_fail_mark_failed", "Failed to mark pending order failed during teardown", err)
			}
			continue
		}
		p.logger.Info(ctx, "pending_order_failed", "Pending order marked failed during teardown", map[string]any{"order_id": order.ID})
	}
}

func (p *Producer) markStatus(ctx context.Context, orderID int64, next orders.OrderStatus) error {
	return p.uow.WithinTx(ctx, func(txCtx context.Context) error {
		return p.repo.SetStatus(txCtx, orderID, next)
	})
}

// logConfirmation waits for the broker's publisher confirmation and logs it.
func (p *Producer) logConfirmation(ctx context.Context, orderID int64, confirmed <-chan bool) {
	select {
	case ok := <-confirmed:
		if ok {
			telemetry.TasksConfirmed.Inc()
			p.logger.Debug(ctx, "task_confirmed", "Broker acked task publish", map[string]any{"order_id": orderID})
		} else {
			telemetry.TasksNacked.Inc()
			p.logger.Error(ctx, "task_nacked", "Broker nacked task publish", fmt.Errorf("order %d nacked", orderID))
		}
	case <-time.After(30 * time.Second):
		p.logger.Error(ctx, "task_confirm_timeout", "No broker confirmation received", fmt.Errorf("order %d unconfirmed", orderID))
	}
}
