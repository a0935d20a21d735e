package service

import (
	"context"
	"sort"
	"sync"

	"github.com/propchain-labs/bridge-coordinator/pkg/operator"
)

// memStore is an in-memory Store for registry tests.
type memStore struct {
	mu        sync.Mutex
	operators map[string]*operator.Operator
	getErr    error
	upsertErr error
}

func newMemStore() *memStore {
	return &memStore{operators: make(map[string]*operator.Operator)}
}

func (m *memStore) Get(_ context.Context, account string) (*operator.Operator, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.getErr != nil {
		return nil, m.getErr
	}
	op, ok := m.operators[account]
	if !ok {
		return nil, operator.ErrNotFound
	}
	c := *op
	return &c, nil
}

func (m *memStore) Upsert(_ context.Context, op *operator.Operator) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.upsertErr != nil {
		return m.upsertErr
	}
	c := *op
	m.operators[op.Account] = &c
	return nil
}

func (m *memStore) List(_ context.Context) ([]*operator.Operator, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var ops []*operator.Operator
	for _, op := range m.operators {
		c := *op
		ops = append(ops, &c)
	}
	sort.Slice(ops, func(i, j int) bool { return ops[i].AddedAt.Before(ops[j].AddedAt) })
	return ops, nil
}

func (m *memStore) CountActive(_ context.Context) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, op := range m.operators {
		if op.Active {
			n++
		}
	}
	return n, nil
}
