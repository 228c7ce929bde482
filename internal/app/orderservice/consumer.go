package orderservice

import (
	"context"
	"errors"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/SalonenTeemu/sandwich-store/internal/domain/orders"
	"github.com/SalonenTeemu/sandwich-store/internal/ports"
	"github.com/SalonenTeemu/sandwich-store/internal/shared/contracts"
	"github.com/SalonenTeemu/sandwich-store/internal/shared/logger"
	"github.com/SalonenTeemu/sandwich-store/internal/shared/rabbitmq"
	"github.com/SalonenTeemu/sandwich-store/internal/shared/telemetry"
)

// Consumer drains the result queue one message at a time, applies terminal
// statuses to persisted orders, and raises in-process notifications.
type Consumer struct {
	uow      ports.UnitOfWork
	repo     ports.OrderRepository
	inflight *InflightList
	notifier ports.StatusNotifier
	logger   *logger.Logger
}

// NewConsumer wires a Consumer with its dependencies.
func NewConsumer(uow ports.UnitOfWork, repo ports.OrderRepository, inflight *InflightList, notifier ports.StatusNotifier, log *logger.Logger) *Consumer {
	return &Consumer{
		uow:      uow,
		repo:     repo,
		inflight: inflight,
		notifier: notifier,
		logger:   log,
	}
}

// Consume continuously (re)creates a prefetch-1 channel on the shared
// connection and reads the result queue until ctx is cancelled. Messages are
// acked on receipt: a lost result stalls one order, it never corrupts state.
func (c *Consumer) Consume(ctx context.Context, client *rabbitmq.Client) {
	const (
		retryBaseDelay = time.Second
		retryMaxDelay  = 30 * time.Second
	)

	backoff := retryBaseDelay
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		ch, err := client.NewConsumerChannel(ctx, 1)
		if err != nil {
			c.logger.Error(ctx, "rabbitmq_channel_open_failed", "Failed to open result consumer channel", err)
			if !sleepWithContext(ctx, backoff) {
				return
			}
			backoff = nextBackoff(backoff, retryMaxDelay)
			continue
		}
		backoff = retryBaseDelay

		deliveries, err := ch.Consume(client.ReadyQueue(), "", false, false, false, false, nil)
		if err != nil {
			_ = ch.Close()
			c.logger.Error(ctx, "rabbitmq_consume_failed", "Failed to start consuming results", err)
			if !sleepWithContext(ctx, backoff) {
				return
			}
			backoff = nextBackoff(backoff, retryMaxDelay)
			continue
		}

		closed := ch.NotifyClose(make(chan *amqp.Error, 1))

	consumption:
		for {
			select {
			case <-ctx.Done():
				_ = ch.Close()
				return

			case amqpErr := <-closed:
				if amqpErr != nil {
					c.logger.Error(ctx, "rabbitmq_channel_closed", "Result consumer channel closed", amqpErr)
				}
				break consumption

			case d, ok := <-deliveries:
				if !ok {
					break consumption
				}
				// ack before processing: results are not redelivered
				_ = d.Ack(false)
				c.HandleResult(ctx, d.Body)
			}
		}

		if !sleepWithContext(ctx, backoff) {
			return
		}
		backoff = nextBackoff(backoff, retryMaxDelay)
	}
}

// HandleResult applies one result message body. Malformed bodies fall back
// to failing the oldest pending order; well-formed ones apply the carried
// terminal status idempotently.
func (c *Consumer) HandleResult(ctx context.Context, body []byte) {
	order, status, err := contracts.DecodeResult(body)
	if err != nil {
		telemetry.ResultsMalformed.Inc()
		c.logger.Error(ctx, "result_malformed", "Unparsable result message; attributing via pending list", err)
		c.failOldestPending(ctx)
		return
	}

	next := orders.StatusFailed
	if status == contracts.ResultReady {
		next = orders.StatusReady
	}
	c.applyTerminal(ctx, order.ID, next)
}

// applyTerminal persists a terminal transition and, when it took effect,
// removes the order from the pending list and notifies waiters with the
// freshly fetched record.
func (c *Consumer) applyTerminal(ctx context.Context, orderID int64, next orders.OrderStatus) {
	var updated *orders.Order
	err := c.uow.WithinTx(ctx, func(txCtx context.Context) error {
		applied, err := c.repo.ApplyTerminalStatus(txCtx, orderID, next)
		if err != nil {
			return err
		}
		if !applied {
			return nil
		}
		updated, err = c.repo.GetByID(txCtx, orderID)
		return err
	})
	if err != nil {
		c.logger.Error(ctx, "result_apply_failed", "Failed to apply terminal status", err)
		return
	}

	if updated == nil {
		// duplicate result or unknown order id: nothing to change
		telemetry.ResultsDuplicate.Inc()
		c.logger.Debug(ctx, "result_duplicate", "Result ignored; order already terminal or unknown", map[string]any{"order_id": orderID, "status": next})
		c.inflight.Remove(orderID)
		telemetry.InFlightGauge.Set(float64(c.inflight.Len()))
		return
	}

	c.inflight.Remove(orderID)
	telemetry.InFlightGauge.Set(float64(c.inflight.Len()))
	telemetry.ResultsApplied.WithLabelValues(string(next)).Inc()

	c.logger.Info(ctx, "order_resolved", "Order reached a terminal status", map[string]any{"order_id": updated.ID, "status": updated.Status})
	c.notifier.Publish(*updated)
}

// failOldestPending attributes an unattributable failure to the oldest
// pending order. Best effort: with nothing pending the message is dropped.
func (c *Consumer) failOldestPending(ctx context.Context) {
	order, ok := c.inflight.PopOldest()
	if !ok {
		c.logger.Error(ctx, "result_unattributable", "Malformed result with no pending orders; dropping", errors.New("pending list empty"))
		return
	}
	telemetry.InFlightGauge.Set(float64(c.inflight.Len()))
	c.logger.Info(ctx, "result_attributed", "Malformed result attributed to oldest pending order", map[string]any{"order_id": order.ID})
	c.applyTerminal(ctx, order.ID, orders.StatusFailed)
}

// sleepWithContext sleeps for d unless ctx is cancelled first.
func sleepWithContext(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}

// nextBackoff doubles the delay up to max.
func nextBackoff(cur, max time.Duration) time.Duration {
	next := cur * 2
	if next > max {
		return max
	}
	return next
}
