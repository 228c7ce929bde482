package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/SalonenTeemu/sandwich-store/internal/domain/users"
	"github.com/SalonenTeemu/sandwich-store/internal/ports"
)

// uniqueViolation is the Postgres error code for unique constraint breaches.
const uniqueViolation = "23505"

// UsersRepo implements persistence for user accounts using pgx and SQL.
type UsersRepo struct{}

// NewUsersRepo constructs a new UsersRepo.
func NewUsersRepo() ports.UserRepository {
	return &UsersRepo{}
}

// Create inserts a user and fills in the assigned id.
func (r *UsersRepo) Create(ctx context.Context, u *users.User) error {
	tx, err := MustTxFromContext(ctx)
	if err != nil {
		return err
	}

	err = tx.QueryRow(ctx, `
		INSERT INTO users (username, email, role, password_hash)
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`, u.Username, u.Email, u.Role, u.PasswordHash).Scan(&u.ID)

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return users.ErrDuplicate
	}
	return err
}

// GetByUsername retrieves a user without the password hash.
func (r *UsersRepo) GetByUsername(ctx context.Context, username string) (*users.User, error) {
	tx, err := MustTxFromContext(ctx)
	if err != nil {
		return nil, err
	}

	var u users.User
	err = tx.QueryRow(ctx, `
		SELECT id, username, email, role
		FROM users
		WHERE username = $1
	`, username).Scan(&u.ID, &u.Username, &u.Email, &u.Role)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, users.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// GetWithPassword retrieves a user including the password hash for login.
func (r *UsersRepo) GetWithPassword(ctx context.Context, username string) (*users.User, error) {
	tx, err := MustTxFromContext(ctx)
	if err != nil {
		return nil, err
	}

	var u users.User
	err = tx.QueryRow(ctx, `
		SELECT id, username, email, role, password_hash
		FROM users
		WHERE username = $1
	`, username).Scan(&u.ID, &u.Username, &u.Email, &u.Role, &u.PasswordHash)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, users.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// FindExisting returns a user holding the username or the email.
func (r *UsersRepo) FindExisting(ctx context.Context, username, email string) (*users.User, error) {
	tx, err := MustTxFromContext(ctx)
	if err != nil {
		return nil, err
	}

	var u users.User
	err = tx.QueryRow(ctx, `
		SELECT id, username, email, role
		FROM users
		WHERE username = $1 OR email = $2
		LIMIT 1
	`, username, email).Scan(&u.ID, &u.Username, &u.Email, &u.Role)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, users.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// ListAll retrieves every user without password hashes.
func (r *UsersRepo) ListAll(ctx context.Context) ([]users.User, error) {
	tx, err := MustTxFromContext(ctx)
	if err != nil {
		return nil, err
	}

	rows, err := tx.Query(ctx, `
		SELECT id, username, email, role
		FROM users
		ORDER BY id
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []users.User
	for rows.Next() {
		var u users.User
		if err := rows.Scan(&u.ID, &u.Username, &u.Email, &u.Role); err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

// Update rewrites a user row by id, including the password hash.
func (r *UsersRepo) Update(ctx context.Context, u *users.User) error {
	tx, err := MustTxFromContext(ctx)
	if err != nil {
		return err
	}

	tag, err := tx.Exec(ctx, `
		UPDATE users
		SET username = $1, email = $2, role = $3, password_hash = $4
		WHERE id = $5
	`, u.Username, u.Email, u.Role, u.PasswordHash, u.ID)

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return users.ErrDuplicate
	}
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return users.ErrNotFound
	}
	return nil
}

// Delete removes a user by username.
func (r *UsersRepo) Delete(ctx context.Context, username string) error {
	tx, err := MustTxFromContext(ctx)
	if err != nil {
		return err
	}

	tag, err := tx.Exec(ctx, `DELETE FROM users WHERE username = $1`, username)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return users.ErrNotFound
	}
	return nil
}
