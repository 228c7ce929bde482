package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/SalonenTeemu/sandwich-store/internal/domain/sandwiches"
	"github.com/SalonenTeemu/sandwich-store/internal/ports"
)

// foreignKeyViolation is the Postgres error code for FK breaches.
const foreignKeyViolation = "23503"

// SandwichesRepo implements persistence for the catalog using pgx and SQL.
type SandwichesRepo struct{}

// NewSandwichesRepo constructs a new SandwichesRepo.
func NewSandwichesRepo() ports.SandwichRepository {
	return &SandwichesRepo{}
}

// Create inserts a sandwich and its topping relations.
func (r *SandwichesRepo) Create(ctx context.Context, s *sandwiches.Sandwich, toppingIDs []int64) error {
	tx, err := MustTxFromContext(ctx)
	if err != nil {
		return err
	}

	err = tx.QueryRow(ctx, `
		INSERT INTO sandwiches (name, bread_type)
		VALUES ($1, $2)
		RETURNING id
	`, s.Name, s.BreadType).Scan(&s.ID)
	if err != nil {
		return err
	}

	return r.insertToppings(ctx, tx, s.ID, toppingIDs)
}

// GetByID retrieves a sandwich with its toppings.
func (r *SandwichesRepo) GetByID(ctx context.Context, id int64) (*sandwiches.Sandwich, error) {
	tx, err := MustTxFromContext(ctx)
	if err != nil {
		return nil, err
	}

	var s sandwiches.Sandwich
	err = tx.QueryRow(ctx, `
		SELECT id, name, bread_type
		FROM sandwiches
		WHERE id = $1
	`, id).Scan(&s.ID, &s.Name, &s.BreadType)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, sandwiches.ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	rows, err := tx.Query(ctx, `
		SELECT t.id, t.name
		FROM toppings t
		JOIN sandwiches_toppings st ON st.topping_id = t.id
		WHERE st.sandwich_id = $1
		ORDER BY t.id
	`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var t sandwiches.Topping
		if err := rows.Scan(&t.ID, &t.Name); err != nil {
			return nil, err
		}
		s.Toppings = append(s.Toppings, t)
	}
	return &s, rows.Err()
}

// ListAll retrieves every sandwich with its toppings.
func (r *SandwichesRepo) ListAll(ctx context.Context) ([]sandwiches.Sandwich, error) {
	tx, err := MustTxFromContext(ctx)
	if err != nil {
		return nil, err
	}

	rows, err := tx.Query(ctx, `
		SELECT id, name, bread_type
		FROM sandwiches
		ORDER BY id
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []sandwiches.Sandwich
	for rows.Next() {
		var s sandwiches.Sandwich
		if err := rows.Scan(&s.ID, &s.Name, &s.BreadType); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	// attach toppings per sandwich
	for i := range out {
		trows, err := tx.Query(ctx, `
			SELECT t.id, t.name
			FROM toppings t
			JOIN sandwiches_toppings st ON st.topping_id = t.id
			WHERE st.sandwich_id = $1
			ORDER BY t.id
		`, out[i].ID)
		if err != nil {
			return nil, err
		}
		for trows.Next() {
			var t sandwiches.Topping
			if err := trows.Scan(&t.ID, &t.Name); err != nil {
				trows.Close()
				return nil, err
			}
			out[i].Toppings = append(out[i].Toppings, t)
		}
		if err := trows.Err(); err != nil {
			trows.Close()
			return nil, err
		}
		trows.Close()
	}
	return out, nil
}

// Update rewrites a sandwich and replaces its topping relations.
func (r *SandwichesRepo) Update(ctx context.Context, s *sandwiches.Sandwich, toppingIDs []int64) error {
	tx, err := MustTxFromContext(ctx)
	if err != nil {
		return err
	}

	tag, err := tx.Exec(ctx, `
		UPDATE sandwiches
		SET name = $1, bread_type = $2
		WHERE id = $3
	`, s.Name, s.BreadType, s.ID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return sandwiches.ErrNotFound
	}

	if _, err := tx.Exec(ctx, `DELETE FROM sandwiches_toppings WHERE sandwich_id = $1`, s.ID); err != nil {
		return err
	}
	return r.insertToppings(ctx, tx, s.ID, toppingIDs)
}

// Delete removes a sandwich; the join rows cascade.
func (r *SandwichesRepo) Delete(ctx context.Context, id int64) error {
	tx, err := MustTxFromContext(ctx)
	if err != nil {
		return err
	}

	tag, err := tx.Exec(ctx, `DELETE FROM sandwiches WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return sandwiches.ErrNotFound
	}
	return nil
}

// ListToppings retrieves the full toppings catalog.
func (r *SandwichesRepo) ListToppings(ctx context.Context) ([]sandwiches.Topping, error) {
	tx, err := MustTxFromContext(ctx)
	if err != nil {
		return nil, err
	}

	rows, err := tx.Query(ctx, `SELECT id, name FROM toppings ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []sandwiches.Topping
	for rows.Next() {
		var t sandwiches.Topping
		if err := rows.Scan(&t.ID, &t.Name); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func (r *SandwichesRepo) insertToppings(ctx context.Context, tx pgx.Tx, sandwichID int64, toppingIDs []int64) error {
	for _, tid := range toppingIDs {
		_, err := tx.Exec(ctx, `
			INSERT INTO sandwiches_toppings (sandwich_id, topping_id)
			VALUES ($1, $2)
			ON CONFLICT DO NOTHING
		`, sandwichID, tid)

		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == foreignKeyViolation {
			return sandwiches.ErrUnknownTopping
		}
		if err != nil {
			return err
		}
	}
	return nil
}
