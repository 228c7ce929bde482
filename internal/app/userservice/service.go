package userservice

import (
	"context"
	"errors"
	"fmt"

	"github.com/SalonenTeemu/sandwich-store/internal/domain/users"
	"github.com/SalonenTeemu/sandwich-store/internal/ports"
	"github.com/SalonenTeemu/sandwich-store/internal/shared/auth"
	"github.com/SalonenTeemu/sandwich-store/internal/shared/logger"
)

// Service implements ports.UserService on top of the users repository.
type Service struct {
	uow    ports.UnitOfWork
	repo   ports.UserRepository
	logger *logger.Logger
}

func New(uow ports.UnitOfWork, repo ports.UserRepository, log *logger.Logger) *Service {
	return &Service{uow: uow, repo: repo, logger: log}
}

var _ ports.UserService = (*Service)(nil)

// Register creates a customer account. Username and email must both be free.
func (s *Service) Register(ctx context.Context, username, email, password string) (*users.User, error) {
	hash, err := auth.HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("hashing password: %w", err)
	}

	user := &users.User{
		Username:     username,
		Email:        email,
		PasswordHash: hash,
		Role:         users.RoleCustomer,
	}
	err = s.uow.WithinTx(ctx, func(txCtx context.Context) error {
		_, err := s.repo.FindExisting(txCtx, username, email)
		if err == nil {
			return users.ErrDuplicate
		}
		if !errors.Is(err, users.ErrNotFound) {
			return err
		}
		return s.repo.Create(txCtx, user)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info(ctx, "user_registered", "New user registered", map[string]any{"username": user.Username})
	return user, nil
}

// Login checks the credentials and returns the matching user. Unknown
// usernames and wrong passwords are indistinguishable to the caller.
func (s *Service) Login(ctx context.Context, username, password string) (*users.User, error) {
	var user *users.User
	err := s.uow.WithinTx(ctx, func(txCtx context.Context) error {
		var err error
		user, err = s.repo.GetWithPassword(txCtx, username)
		return err
	})
	if err != nil {
		return nil, err
	}
	if !auth.CheckPassword(password, user.PasswordHash) {
		return nil, users.ErrNotFound
	}
	return user, nil
}

// GetUser fetches one user. Customers may only fetch themselves.
func (s *Service) GetUser(ctx context.Context, principal *users.User, username string) (*users.User, error) {
	if !principal.IsAdmin() && principal.Username != username {
		return nil, users.ErrForbidden
	}
	var user *users.User
	err := s.uow.WithinTx(ctx, func(txCtx context.Context) error {
		var err error
		user, err = s.repo.GetByUsername(txCtx, username)
		return err
	})
	return user, err
}

// ListUsers returns every account. Admin only.
func (s *Service) ListUsers(ctx context.Context, principal *users.User) ([]users.User, error) {
	if !principal.IsAdmin() {
		return nil, users.ErrForbidden
	}
	var all []users.User
	err := s.uow.WithinTx(ctx, func(txCtx context.Context) error {
		var err error
		all, err = s.repo.ListAll(txCtx)
		return err
	})
	return all, err
}

// UpdateUser patches an account. Customers may update only their own
// username, email and password; changing a role requires admin.
func (s *Service) UpdateUser(ctx context.Context, principal *users.User, username string, upd ports.UserUpdate) (*users.User, error) {
	if !principal.IsAdmin() && principal.Username != username {
		return nil, users.ErrForbidden
	}
	if upd.Role != nil {
		if !principal.IsAdmin() {
			return nil, users.ErrForbidden
		}
		if !users.ValidRole(*upd.Role) {
			return nil, fmt.Errorf("unknown role %q", *upd.Role)
		}
	}

	var updated *users.User
	err := s.uow.WithinTx(ctx, func(txCtx context.Context) error {
		current, err := s.repo.GetWithPassword(txCtx, username)
		if err != nil {
			return err
		}
		if upd.Username != nil {
			current.Username = *upd.Username
		}
		if upd.Email != nil {
			current.Email = *upd.Email
		}
		if upd.Role != nil {
			current.Role = users.Role(*upd.Role)
		}
		if upd.Password != nil {
			hash, err := auth.HashPassword(*upd.Password)
			if err != nil {
				return fmt.Errorf("hashing password: %w", err)
			}
			current.PasswordHash = hash
		}
		if err := s.repo.Update(txCtx, current); err != nil {
			return err
		}
		updated = current
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info(ctx, "user_updated", "User updated", map[string]any{"username": updated.Username})
	return updated, nil
}

// DeleteUser removes an account. Customers may delete only themselves.
func (s *Service) DeleteUser(ctx context.Context, principal *users.User, username string) error {
	if !principal.IsAdmin() && principal.Username != username {
		return users.ErrForbidden
	}
	err := s.uow.WithinTx(ctx, func(txCtx context.Context) error {
		return s.repo.Delete(txCtx, username)
	})
	if err != nil {
		return err
	}
	s.logger.Info(ctx, "user_deleted", "User deleted", map[string]any{"username": username})
	return nil
}
