package apiserver

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	api "github.com/SalonenTeemu/sandwich-store/internal/app/apiserver"
	"github.com/SalonenTeemu/sandwich-store/internal/app/orderservice"
	"github.com/SalonenTeemu/sandwich-store/internal/app/sandwichservice"
	"github.com/SalonenTeemu/sandwich-store/internal/app/userservice"
	"github.com/SalonenTeemu/sandwich-store/internal/shared/auth"
	"github.com/SalonenTeemu/sandwich-store/internal/shared/config"
	"github.com/SalonenTeemu/sandwich-store/internal/shared/logger"
	pg "github.com/SalonenTeemu/sandwich-store/internal/shared/postgres"
	"github.com/SalonenTeemu/sandwich-store/internal/shared/rabbitmq"
)

// Run wires the API server and blocks until ctx is cancelled or a terminal
// error occurs. Startup dependencies (Postgres, RabbitMQ) are hard
// requirements: failure to reach either aborts the process.
func Run(ctx context.Context, port int, configPath string) error {
	log := logger.NewLogger("api-server")

	cfg, err := config.LoadFromFile(configPath)
	if err != nil {
		log.Error(ctx, "config_load_failed", "Failed to load configuration", err)
		return err
	}
	if port > 0 {
		cfg.HTTP.Port = port
	}

	pool, err := pg.NewPool(ctx, cfg, log)
	if err != nil {
		log.Error(ctx, "db_connection_failed", "Failed to initialize Postgres pool", err)
		return err
	}
	defer pool.Close()
	log.Info(ctx, "db_connected", "Connected to PostgreSQL database", nil)

	if err := pg.Migrate(ctx, pool); err != nil {
		log.Error(ctx, "db_migration_failed", "Failed to run migrations", err)
		return err
	}

	rabbit := rabbitmq.NewClient(cfg, log)
	if err := rabbit.Connect(ctx); err != nil {
		log.Error(ctx, "rabbitmq_connection_failed", "Failed to connect to RabbitMQ", err)
		return err
	}
	log.Info(ctx, "rabbitmq_connected", "Connected to RabbitMQ", nil)

	uow := pg.NewUnitOfWork(pool)
	ordersRepo := pg.NewOrdersRepo()
	usersRepo := pg.NewUsersRepo()
	sandwichesRepo := pg.NewSandwichesRepo()

	inflight := orderservice.NewInflightList()
	notifier := orderservice.NewNotifier()

	producer := orderservice.NewProducer(uow, ordersRepo, rabbit, inflight, log)
	// anything still awaiting a result when the connection goes down is failed
	rabbit.RegisterCloseHook(producer.FailPending)

	consumer := orderservice.NewConsumer(uow, ordersRepo, inflight, notifier, log)
	go consumer.Consume(ctx, rabbit)

	tokens := auth.NewTokenIssuer(cfg.Auth.JWTSecret)

	router := api.NewRouter(cfg, api.Services{
		Orders:     orderservice.New(uow, ordersRepo, sandwichesRepo, producer, log),
		Users:      userservice.New(uow, usersRepo, log),
		Sandwiches: sandwichservice.New(uow, sandwichesRepo, log),
		Notifier:   notifier,
		Tokens:     tokens,
	}, log)

	// no WriteTimeout: the status long-wait holds responses open for up
	// to a minute
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTP.Port),
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       60 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	log.Info(ctx, "service_started",
		fmt.Sprintf("API server started on port %d", cfg.HTTP.Port),
		map[string]any{"port": cfg.HTTP.Port},
	)

	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
			return
		}
		errCh <- nil
	}()

	select {
	case <-ctx.Done():
		shCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shCtx)
		rabbit.Close(shCtx)
		log.Info(ctx, "service_stopped", "API server shut down", nil)
		return nil
	case err := <-errCh:
		shCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		rabbit.Close(shCtx)
		return err
	}
}
