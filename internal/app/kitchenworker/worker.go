package kitchenworker

import (
	"context"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/SalonenTeemu/sandwich-store/internal/shared/logger"
	"github.com/SalonenTeemu/sandwich-store/internal/shared/rabbitmq"
)

// Worker consumes the task queue one message at a time and feeds each
// delivery through the Processor.
type Worker struct {
	client    *rabbitmq.Client
	processor *Processor
	logger    *logger.Logger
	taskQueue string
}

func NewWorker(client *rabbitmq.Client, processor *Processor, log *logger.Logger, taskQueue string) *Worker {
	return &Worker{client: client, processor: processor, logger: log, taskQueue: taskQueue}
}

// Run consumes tasks until the context is cancelled, re-establishing the
// subscription with backoff whenever the channel drops.
func (w *Worker) Run(ctx context.Context) error {
	backoff := time.Second
	for {
		if err := w.consumeOnce(ctx); err != nil {
			w.logger.Error(ctx, "consume_interrupted", "Task subscription lost; retrying", err)
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if !sleepWithContext(ctx, backoff) {
			return ctx.Err()
		}
		backoff = nextBackoff(backoff)
	}
}

func (w *Worker) consumeOnce(ctx context.Context) error {
	ch, err := w.client.NewConsumerChannel(ctx, 1)
	if err != nil {
		return err
	}
	defer ch.Close()

	deliveries, err := ch.Consume(w.taskQueue, "", false, false, false, false, nil)
	if err != nil {
		return err
	}
	closed := ch.NotifyClose(make(chan *amqp.Error, 1))

	w.logger.Info(ctx, "worker_consuming", "Waiting for tasks", map[string]any{"queue": w.taskQueue})

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case chErr := <-closed:
			if chErr == nil {
				return nil
			}
			return chErr
		case d, ok := <-deliveries:
			if !ok {
				return nil
			}
			if err := w.processor.Process(ctx, d.Body); err != nil {
				// Leave the task for redelivery; the broker will hand it
				// back once the channel is usable again.
				w.logger.Error(ctx, "task_requeued", "Task left unacked for redelivery", err)
				_ = d.Nack(false, true)
				continue
			}
			if err := d.Ack(false); err != nil {
				return err
			}
		}
	}
}

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

func nextBackoff(d time.Duration) time.Duration {
	const max = 30 * time.Second
	d *= 2
	if d > max {
		return max
	}
	return d
}
