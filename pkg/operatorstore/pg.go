// Package operatorstore provides the PostgreSQL implementation of the
// operator registry store.
package operatorstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/uptrace/bun"

	"github.com/propchain-labs/bridge-coordinator/pkg/operator"
)

type pgStore struct {
	db *bun.DB
}

// NewStore creates a new postgres implementation of the operator store
func NewStore(db *bun.DB) *pgStore {
	return &pgStore{db: db}
}

func (s *pgStore) Get(ctx context.Context, account string) (*operator.Operator, error) {
	dao := new(OperatorDao)
	err := s.db.NewSelect().
		Model(dao).
		Where("account = ?", account).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, operator.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get operator: %w", err)
	}
	return toOperator(dao), nil
}

func (s *pgStore) Upsert(ctx context.Context, op *operator.Operator) error {
	dao := toOperatorDao(op)
	_, err := s.db.NewInsert().
		Model(dao).
		On("CONFLICT (account) DO UPDATE").
		Set("active = EXCLUDED.active").
		Set("added_at = EXCLUDED.added_at").
		Set("removed_at = EXCLUDED.removed_at").
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to upsert operator: %w", err)
	}
	return nil
}

func (s *pgStore) List(ctx context.Context) ([]*operator.Operator, error) {
	var daos []OperatorDao
	err := s.db.NewSelect().
		Model(&daos).
		Order("added_at ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list operators: %w", err)
	}
	ops := make([]*operator.Operator, len(daos))
	for i := range daos {
		ops[i] = toOperator(&daos[i])
	}
	return ops, nil
}

func (s *pgStore) CountActive(ctx context.Context) (int, error) {
	count, err := s.db.NewSelect().
		Model((*OperatorDao)(nil)).
		Where("active = TRUE").
		Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to count active operators: %w", err)
	}
	return count, nil
}
