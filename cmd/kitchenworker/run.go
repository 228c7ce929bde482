package kitchenworker

import (
	"context"
	"time"

	worker "github.com/SalonenTeemu/sandwich-store/internal/app/kitchenworker"
	"github.com/SalonenTeemu/sandwich-store/internal/shared/config"
	"github.com/SalonenTeemu/sandwich-store/internal/shared/logger"
	"github.com/SalonenTeemu/sandwich-store/internal/shared/rabbitmq"
)

// Run wires the kitchen worker and blocks until ctx is cancelled. The broker
// is a hard startup requirement.
func Run(ctx context.Context, configPath string) error {
	log := logger.NewLogger("kitchen-worker")

	cfg, err := config.LoadFromFile(configPath)
	if err != nil {
		log.Error(ctx, "config_load_failed", "Failed to load configuration", err)
		return err
	}

	rabbit := rabbitmq.NewClient(cfg, log)
	if err := rabbit.Connect(ctx); err != nil {
		log.Error(ctx, "rabbitmq_connection_failed", "Failed to connect to RabbitMQ", err)
		return err
	}
	log.Info(ctx, "rabbitmq_connected", "Connected to RabbitMQ", nil)
	defer func() {
		shCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		rabbit.Close(shCtx)
	}()

	processor := worker.NewProcessor(rabbit, log)
	w := worker.NewWorker(rabbit, processor, log, rabbit.TaskQueue())

	log.Info(ctx, "service_started", "Kitchen worker started", map[string]any{"queue": rabbit.TaskQueue()})

	if err := w.Run(ctx); err != nil && ctx.Err() == nil {
		return err
	}
	log.Info(ctx, "service_stopped", "Kitchen worker shut down", nil)
	return nil
}
