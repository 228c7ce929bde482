package sandwichservice

import (
	"context"
	"fmt"

	"github.com/SalonenTeemu/sandwich-store/internal/domain/sandwiches"
	"github.com/SalonenTeemu/sandwich-store/internal/ports"
	"github.com/SalonenTeemu/sandwich-store/internal/shared/logger"
)

// Service implements ports.SandwichService over the catalog repository.
type Service struct {
	uow    ports.UnitOfWork
	repo   ports.SandwichRepository
	logger *logger.Logger
}

func New(uow ports.UnitOfWork, repo ports.SandwichRepository, log *logger.Logger) *Service {
	return &Service{uow: uow, repo: repo, logger: log}
}

var _ ports.SandwichService = (*Service)(nil)

func (s *Service) GetSandwich(ctx context.Context, id int64) (*sandwiches.Sandwich, error) {
	var sw *sandwiches.Sandwich
	err := s.uow.WithinTx(ctx, func(txCtx context.Context) error {
		var err error
		sw, err = s.repo.GetByID(txCtx, id)
		return err
	})
	return sw, err
}

func (s *Service) ListSandwiches(ctx context.Context) ([]sandwiches.Sandwich, error) {
	var all []sandwiches.Sandwich
	err := s.uow.WithinTx(ctx, func(txCtx context.Context) error {
		var err error
		all, err = s.repo.ListAll(txCtx)
		return err
	})
	return all, err
}

// CreateSandwich adds a catalog entry. The bread type must be one of the
// known kinds and every topping id must exist.
func (s *Service) CreateSandwich(ctx context.Context, name, breadType string, toppingIDs []int64) (*sandwiches.Sandwich, error) {
	if !sandwiches.ValidBreadType(breadType) {
		return nil, fmt.Errorf("unknown bread type %q", breadType)
	}
	sw := &sandwiches.Sandwich{Name: name, BreadType: breadType}
	err := s.uow.WithinTx(ctx, func(txCtx context.Context) error {
		if err := s.repo.Create(txCtx, sw, toppingIDs); err != nil {
			return err
		}
		var err error
		sw, err = s.repo.GetByID(txCtx, sw.ID)
		return err
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info(ctx, "sandwich_created", "Catalog entry created", map[string]any{"sandwich_id": sw.ID, "name": sw.Name})
	return sw, nil
}

// UpdateSandwich replaces a catalog entry, toppings included.
func (s *Service) UpdateSandwich(ctx context.Context, id int64, name, breadType string, toppingIDs []int64) (*sandwiches.Sandwich, error) {
	if !sandwiches.ValidBreadType(breadType) {
		return nil, fmt.Errorf("unknown bread type %q", breadType)
	}
	var sw *sandwiches.Sandwich
	err := s.uow.WithinTx(ctx, func(txCtx context.Context) error {
		if _, err := s.repo.GetByID(txCtx, id); err != nil {
			return err
		}
		upd := &sandwiches.Sandwich{ID: id, Name: name, BreadType: breadType}
		if err := s.repo.Update(txCtx, upd, toppingIDs); err != nil {
			return err
		}
		var err error
		sw, err = s.repo.GetByID(txCtx, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info(ctx, "sandwich_updated", "Catalog entry updated", map[string]any{"sandwich_id": id})
	return sw, nil
}

func (s *Service) DeleteSandwich(ctx context.Context, id int64) error {
	err := s.uow.WithinTx(ctx, func(txCtx context.Context) error {
		return s.repo.Delete(txCtx, id)
	})
	if err != nil {
		return err
	}
	s.logger.Info(ctx, "sandwich_deleted", "Catalog entry deleted", map[string]any{"sandwich_id": id})
	return nil
}

func (s *Service) ListToppings(ctx context.Context) ([]sandwiches.Topping, error) {
	var all []sandwiches.Topping
	err := s.uow.WithinTx(ctx, func(txCtx context.Context) error {
		var err error
		all, err = s.repo.ListToppings(txCtx)
		return err
	})
	return all, err
}
