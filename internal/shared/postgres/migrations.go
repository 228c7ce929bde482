package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// migrations are applied in order at startup; every statement is idempotent.
var migrations = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id            BIGSERIAL PRIMARY KEY,
		username      TEXT NOT NULL UNIQUE,
		email         TEXT NOT NULL UNIQUE,
		role          TEXT NOT NULL DEFAULT 'customer' CHECK (role IN ('customer', 'admin')),
		password_hash TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS sandwiches (
		id         BIGSERIAL PRIMARY KEY,
		name       TEXT NOT NULL,
		bread_type TEXT NOT NULL CHECK (bread_type IN ('oat', 'rye', 'wheat', 'sourdough', 'corn'))
	)`,
	`CREATE TABLE IF NOT EXISTS toppings (
		id   BIGSERIAL PRIMARY KEY,
		name TEXT NOT NULL UNIQUE
	)`,
	`CREATE TABLE IF NOT EXISTS sandwiches_toppings (
		sandwich_id BIGINT NOT NULL REFERENCES sandwiches (id) ON DELETE CASCADE,
		topping_id  BIGINT NOT NULL REFERENCES toppings (id) ON DELETE CASCADE,
		PRIMARY KEY (sandwich_id, topping_id)
	)`,
	`CREATE TABLE IF NOT EXISTS orders (
		id          BIGSERIAL PRIMARY KEY,
		customer    TEXT NOT NULL REFERENCES users (username) ON DELETE CASCADE,
		sandwich_id BIGINT NOT NULL REFERENCES sandwiches (id),
		status      TEXT NOT NULL DEFAULT 'received'
			CHECK (status IN ('received', 'in_queue', 'ready', 'failed'))
	)`,
	`CREATE INDEX IF NOT EXISTS idx_orders_customer ON orders (customer)`,
	`INSERT INTO toppings (name) VALUES
		('Lettuce'), ('Tomato'), ('Cheese'), ('Onion'), ('Pickles'),
		('Mayonnaise'), ('Mustard'), ('Ketchup'), ('Ham'), ('Chicken')
	ON CONFLICT (name) DO NOTHING`,
}

// Migrate applies the schema and seeds the toppings catalog.
func Migrate(ctx context.Context, pool *pgxpool.Pool) error {
	for i, stmt := range migrations {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("migration %d: %w", i+1, err)
		}
	}
	return nil
}
