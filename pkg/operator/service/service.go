// Package service implements the operator registry: the admin-mutated set of
// accounts whose signatures count toward bridge request thresholds.
package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	apperrors "github.com/propchain-labs/bridge-coordinator/pkg/app/errors"
	"github.com/propchain-labs/bridge-coordinator/pkg/operator"
)

// Store is the narrow data-access interface for the operator registry.
type Store interface {
	Get(ctx context.Context, account string) (*operator.Operator, error)
	Upsert(ctx context.Context, op *operator.Operator) error
	List(ctx context.Context) ([]*operator.Operator, error)
	CountActive(ctx context.Context) (int, error)
}

// Registry exposes operator membership to the rest of the coordinator. The
// bridge service consumes it as an explicit dependency; it never reads
// registry state through any other path.
type Registry interface {
	IsActive(ctx context.Context, account string) (bool, error)
	ActiveCount(ctx context.Context) (int, error)
}

// Service is the admin-facing registry surface.
type Service interface {
	Registry
	Add(ctx context.Context, account string) (*operator.Operator, error)
	Remove(ctx context.Context, account string) error
	List(ctx context.Context) ([]*operator.Operator, error)
}

type registryService struct {
	store  Store
	logger *zap.Logger
	now    func() time.Time
}

// NewService creates the operator registry service.
func NewService(store Store, logger *zap.Logger) Service {
	return &registryService{
		store:  store,
		logger: logger,
		now:    time.Now,
	}
}

// Add registers the account as an active operator. Re-adding a removed
// operator reactivates it.
func (s *registryService) Add(ctx context.Context, account string) (*operator.Operator, error) {
	existing, err := s.store.Get(ctx, account)
	if err != nil && !errors.Is(err, operator.ErrNotFound) {
		return nil, fmt.Errorf("failed to look up operator: %w", err)
	}

	if existing != nil && existing.Active {
		return nil, apperrors.ConflictError(operator.ErrAlreadyActive, "operator already active")
	}

	op := &operator.Operator{
		Account: account,
		Active:  true,
		AddedAt: s.now(),
	}
	if err := s.store.Upsert(ctx, op); err != nil {
		return nil, fmt.Errorf("failed to save operator: %w", err)
	}

	s.logger.Info("Bridge operator added", zap.String("account", account))
	return op, nil
}

// Remove deactivates the operator. Signatures already cast stay valid for the
// requests they were cast on; future sign calls are rejected.
func (s *registryService) Remove(ctx context.Context, account string) error {
	op, err := s.store.Get(ctx, account)
	if err != nil {
		if errors.Is(err, operator.ErrNotFound) {
			return apperrors.ResourceNotFoundError(err, "operator not found")
		}
		return fmt.Errorf("failed to look up operator: %w", err)
	}

	if !op.Active {
		return apperrors.StateError(nil, "operator already removed")
	}

	removedAt := s.now()
	op.Active = false
	op.RemovedAt = &removedAt
	if err := s.store.Upsert(ctx, op); err != nil {
		return fmt.Errorf("failed to save operator: %w", err)
	}

	s.logger.Info("Bridge operator removed", zap.String("account", account))
	return nil
}

func (s *registryService) List(ctx context.Context) ([]*operator.Operator, error) {
	ops, err := s.store.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list operators: %w", err)
	}
	return ops, nil
}

func (s *registryService) IsActive(ctx context.Context, account string) (bool, error) {
	op, err := s.store.Get(ctx, account)
	if err != nil {
		if errors.Is(err, operator.ErrNotFound) {
			return false, nil
		}
		return false, fmt.Errorf("failed to look up operator: %w", err)
	}
	return op.Active, nil
}

func (s *registryService) ActiveCount(ctx context.Context) (int, error) {
	count, err := s.store.CountActive(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to count active operators: %w", err)
	}
	return count, nil
}
