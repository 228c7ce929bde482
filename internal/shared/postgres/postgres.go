package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/SalonenTeemu/sandwich-store/internal/shared/config"
	"github.com/SalonenTeemu/sandwich-store/internal/shared/logger"
)

// Pool sizing for the API server: gin handlers plus the result consumer
// share one pool, and every repository call runs inside a short transaction.
const (
	poolMaxConns    = 16
	poolIdleTimeout = 5 * time.Minute
	connectTimeout  = 5 * time.Second
)

// NewPool opens a pgxpool against cfg.Database and verifies it responds
// before handing it out. Sessions run on UTC.
func NewPool(ctx context.Context, cfg *config.Config, log *logger.Logger) (*pgxpool.Pool, error) {
	dsn := fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=prefer connect_timeout=%d",
		cfg.Database.Host, cfg.Database.Port,
		cfg.Database.User, cfg.Database.Password, cfg.Database.Name,
		int(connectTimeout.Seconds()),
	)

	pcfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse postgres config: %w", err)
	}
	pcfg.MaxConns = poolMaxConns
	pcfg.MaxConnIdleTime = poolIdleTimeout
	pcfg.AfterConnect = func(ctx context.Context, conn *pgx.Conn) error {
		_, err := conn.Exec(ctx, `SET TIME ZONE 'UTC'`)
		return err
	}

	pool, err := pgxpool.NewWithConfig(ctx, pcfg)
	if err != nil {
		return nil, fmt.Errorf("open postgres pool: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("postgres ping: %w", err)
	}

	log.Info(ctx, "db_connected", "Connected to PostgreSQL database", map[string]any{
		"host":     cfg.Database.Host,
		"database": cfg.Database.Name,
	})
	return pool, nil
}
