package service

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/propchain-labs/bridge-coordinator/pkg/asset"
	"github.com/propchain-labs/bridge-coordinator/pkg/bridge"
)

// memStore is an in-memory Store for service tests. CreateLocked assigns IDs
// the way the real store does; the custody flip itself is covered by the
// ledger mock and the pg integration tests.
type memStore struct {
	mu        sync.Mutex
	nextID    uint64
	requests  map[uint64]*bridge.Request
	createErr error
}

func newMemStore() *memStore {
	return &memStore{requests: make(map[uint64]*bridge.Request)}
}

func (m *memStore) CreateLocked(_ context.Context, req *bridge.Request) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.createErr != nil {
		return m.createErr
	}
	m.nextID++
	req.ID = m.nextID
	m.requests[req.ID] = cloneRequest(req)
	return nil
}

func (m *memStore) Get(_ context.Context, id uint64) (*bridge.Request, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	req, ok := m.requests[id]
	if !ok {
		return nil, bridge.ErrRequestNotFound
	}
	return cloneRequest(req), nil
}

func (m *memStore) GetByTxHash(_ context.Context, txHash string) (*bridge.Request, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, req := range m.requests {
		if req.TxHash != "" && req.TxHash == txHash {
			return cloneRequest(req), nil
		}
	}
	return nil, bridge.ErrRequestNotFound
}

func (m *memStore) Update(_ context.Context, req *bridge.Request) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	stored, ok := m.requests[req.ID]
	if !ok {
		return bridge.ErrRequestNotFound
	}
	sigs := stored.Signatures
	m.requests[req.ID] = cloneRequest(req)
	m.requests[req.ID].Signatures = sigs
	return nil
}

func (m *memStore) AddSignature(_ context.Context, requestID uint64, sig bridge.Signature) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	req, ok := m.requests[requestID]
	if !ok {
		return 0, bridge.ErrRequestNotFound
	}
	if req.HasSigned(sig.Operator) {
		return 0, bridge.ErrAlreadySigned
	}
	req.Signatures = append(req.Signatures, sig)
	return req.ApprovalCount(), nil
}

func (m *memStore) TransitionStatus(_ context.Context, requestID uint64, to bridge.Status, from ...bridge.Status) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	req, ok := m.requests[requestID]
	if !ok {
		return bridge.ErrRequestNotFound
	}
	for _, st := range from {
		if req.Status == st {
			req.Status = to
			return nil
		}
	}
	return nil
}

func (m *memStore) ClearSignatures(_ context.Context, requestID uint64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if req, ok := m.requests[requestID]; ok {
		req.Signatures = nil
	}
	return nil
}

func (m *memStore) HistoryFor(_ context.Context, owner string) ([]uint64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var ids []uint64
	for id, req := range m.requests {
		if req.SourceOwner == owner {
			ids = append(ids, id)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids, nil
}

func (m *memStore) ListNonTerminal(_ context.Context) ([]*bridge.Request, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var ids []uint64
	for id, req := range m.requests {
		if !req.Status.Terminal() {
			ids = append(ids, id)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	reqs := make([]*bridge.Request, len(ids))
	for i, id := range ids {
		reqs[i] = cloneRequest(m.requests[id])
	}
	return reqs, nil
}

// status returns the persisted status, bypassing the service.
func (m *memStore) status(id uint64) bridge.Status {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.requests[id].Status
}

func cloneRequest(req *bridge.Request) *bridge.Request {
	c := *req
	c.Signatures = append([]bridge.Signature(nil), req.Signatures...)
	return &c
}

// racingStore wraps memStore to land another operator's approval after the
// caller has taken its snapshot, the interleaving two concurrent signers hit.
type racingStore struct {
	*memStore
	requestID uint64
	operator  string
	signedAt  time.Time
	injected  bool
}

func (r *racingStore) Get(ctx context.Context, id uint64) (*bridge.Request, error) {
	req, err := r.memStore.Get(ctx, id)
	if err != nil || r.injected || id != r.requestID {
		return req, err
	}
	r.injected = true
	sig := bridge.Signature{Operator: r.operator, Approve: true, SignedAt: r.signedAt}
	if _, err := r.memStore.AddSignature(ctx, id, sig); err != nil {
		return nil, err
	}
	return req, nil
}

// MockLedger is a mock implementation of asset.Ledger
type MockLedger struct {
	GetFunc            func(ctx context.Context, assetID uint64) (*asset.Asset, error)
	OwnerOfFunc        func(ctx context.Context, assetID uint64) (string, error)
	RegisterFunc       func(ctx context.Context, owner string, meta asset.Metadata) (uint64, error)
	UnlockFunc         func(ctx context.Context, assetID uint64, owner string) error
	ForwardFunc        func(ctx context.Context, assetID uint64) error
	MintEquivalentFunc func(ctx context.Context, requestID uint64, meta asset.Metadata, recipient, destinationChain string) (uint64, error)
	BurnEquivalentFunc func(ctx context.Context, destinationAssetID uint64, recipient string) error

	mintMu sync.Mutex
	minted map[uint64]uint64
}

func (m *MockLedger) Get(ctx context.Context, assetID uint64) (*asset.Asset, error) {
	if m.GetFunc != nil {
		return m.GetFunc(ctx, assetID)
	}
	return nil, asset.ErrNotFound
}

func (m *MockLedger) OwnerOf(ctx context.Context, assetID uint64) (string, error) {
	if m.OwnerOfFunc != nil {
		return m.OwnerOfFunc(ctx, assetID)
	}
	a, err := m.Get(ctx, assetID)
	if err != nil {
		return "", err
	}
	return a.Owner, nil
}

func (m *MockLedger) Register(ctx context.Context, owner string, meta asset.Metadata) (uint64, error) {
	if m.RegisterFunc != nil {
		return m.RegisterFunc(ctx, owner, meta)
	}
	return 1, nil
}

func (m *MockLedger) Unlock(ctx context.Context, assetID uint64, owner string) error {
	if m.UnlockFunc != nil {
		return m.UnlockFunc(ctx, assetID, owner)
	}
	return nil
}

func (m *MockLedger) Forward(ctx context.Context, assetID uint64) error {
	if m.ForwardFunc != nil {
		return m.ForwardFunc(ctx, assetID)
	}
	return nil
}

// MintEquivalent defaults to the idempotent contract: one destination asset
// per request ID, repeats return the first mint.
func (m *MockLedger) MintEquivalent(ctx context.Context, requestID uint64, meta asset.Metadata, recipient, destinationChain string) (uint64, error) {
	if m.MintEquivalentFunc != nil {
		return m.MintEquivalentFunc(ctx, requestID, meta, recipient, destinationChain)
	}
	m.mintMu.Lock()
	defer m.mintMu.Unlock()
	if m.minted == nil {
		m.minted = make(map[uint64]uint64)
	}
	if id, ok := m.minted[requestID]; ok {
		return id, nil
	}
	id := uint64(4000 + len(m.minted) + 1)
	m.minted[requestID] = id
	return id, nil
}

func (m *MockLedger) BurnEquivalent(ctx context.Context, destinationAssetID uint64, recipient string) error {
	if m.BurnEquivalentFunc != nil {
		return m.BurnEquivalentFunc(ctx, destinationAssetID, recipient)
	}
	return nil
}

// MockRegistry is a mock implementation of Registry
type MockRegistry struct {
	IsActiveFunc    func(ctx context.Context, account string) (bool, error)
	ActiveCountFunc func(ctx context.Context) (int, error)
}

func (m *MockRegistry) IsActive(ctx context.Context, account string) (bool, error) {
	if m.IsActiveFunc != nil {
		return m.IsActiveFunc(ctx, account)
	}
	return true, nil
}

func (m *MockRegistry) ActiveCount(ctx context.Context) (int, error) {
	if m.ActiveCountFunc != nil {
		return m.ActiveCountFunc(ctx)
	}
	return 5, nil
}

// MockChecker is a mock implementation of compliance.Checker
type MockChecker struct {
	IsCompliantFunc func(ctx context.Context, account string) (bool, error)
}

func (m *MockChecker) IsCompliant(ctx context.Context, account string) (bool, error) {
	if m.IsCompliantFunc != nil {
		return m.IsCompliantFunc(ctx, account)
	}
	return true, nil
}
