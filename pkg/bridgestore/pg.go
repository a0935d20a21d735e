// Package bridgestore provides the PostgreSQL implementation of the bridge
// request store. Request creation and the asset custody lock happen inside a
// single transaction, which is what makes the one-live-request-per-asset
// invariant structural rather than checked after the fact.
package bridgestore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/driver/pgdriver"

	"github.com/propchain-labs/bridge-coordinator/pkg/asset"
	"github.com/propchain-labs/bridge-coordinator/pkg/assetledger"
	"github.com/propchain-labs/bridge-coordinator/pkg/bridge"
)

const pgUniqueViolation = "23505"

type pgStore struct {
	db *bun.DB
}

// NewStore creates a new postgres implementation of the bridge request store.
func NewStore(db *bun.DB) *pgStore {
	return &pgStore{db: db}
}

// CreateLocked atomically locks the asset and inserts the request. Because a
// request only reaches a terminal state by releasing or forwarding the
// asset, "custody = unlocked" is equivalent to "no live request for this
// asset"; failing the guarded flip therefore rejects duplicates without a
// separate uniqueness check. On success req.ID carries the assigned ID.
func (s *pgStore) CreateLocked(ctx context.Context, req *bridge.Request) error {
	return s.db.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		if err := assetledger.LockCustody(ctx, tx, req.AssetID, req.SourceOwner); err != nil {
			if errors.Is(err, asset.ErrCustodyConflict) {
				return s.classifyLockFailure(ctx, tx, req)
			}
			return err
		}

		dao := toRequestDao(req)
		dao.ID = 0
		if _, err := tx.NewInsert().Model(dao).Exec(ctx); err != nil {
			return fmt.Errorf("failed to insert bridge request: %w", err)
		}
		req.ID = dao.ID
		return nil
	})
}

// classifyLockFailure turns a failed custody flip into the precondition error
// the protocol defines. Runs inside the creating transaction, which rolls
// back regardless.
func (s *pgStore) classifyLockFailure(ctx context.Context, tx bun.Tx, req *bridge.Request) error {
	dao := new(assetledger.AssetDao)
	err := tx.NewSelect().
		Model(dao).
		Where("id = ?", req.AssetID).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return bridge.ErrTokenNotFound
		}
		return fmt.Errorf("failed to inspect asset: %w", err)
	}
	if dao.Owner != req.SourceOwner {
		return bridge.ErrUnauthorized
	}
	if dao.Custody == string(asset.CustodyLocked) {
		return bridge.ErrDuplicateRequest
	}
	return fmt.Errorf("asset %d: %w", req.AssetID, asset.ErrCustodyConflict)
}

func (s *pgStore) Get(ctx context.Context, id uint64) (*bridge.Request, error) {
	dao := new(RequestDao)
	err := s.db.NewSelect().
		Model(dao).
		Where("id = ?", id).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, bridge.ErrRequestNotFound
		}
		return nil, fmt.Errorf("failed to get bridge request: %w", err)
	}

	sigs, err := s.signaturesFor(ctx, id)
	if err != nil {
		return nil, err
	}
	return toRequest(dao, sigs), nil
}

func (s *pgStore) GetByTxHash(ctx context.Context, txHash string) (*bridge.Request, error) {
	dao := new(RequestDao)
	err := s.db.NewSelect().
		Model(dao).
		Where("tx_hash = ?", txHash).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, bridge.ErrRequestNotFound
		}
		return nil, fmt.Errorf("failed to get bridge request by tx hash: %w", err)
	}

	sigs, err := s.signaturesFor(ctx, dao.ID)
	if err != nil {
		return nil, err
	}
	return toRequest(dao, sigs), nil
}

// Update persists the request's mutable fields. Signatures are written only
// through AddSignature and ClearSignatures.
func (s *pgStore) Update(ctx context.Context, req *bridge.Request) error {
	dao := toRequestDao(req)
	_, err := s.db.NewUpdate().
		Model(dao).
		Column("status", "created_at", "timeout_at", "receipt_id", "tx_hash", "destination_asset_id", "executed_at").
		WherePK().
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to update bridge request: %w", err)
	}
	return nil
}

// AddSignature appends the operator's decision and returns the approval count
// after the insert. Insert and count run in one transaction, so the returned
// count reflects every signature durably written so far; concurrent signers
// each see at least their own. A duplicate entry for the same (request,
// operator) pair returns bridge.ErrAlreadySigned.
func (s *pgStore) AddSignature(ctx context.Context, requestID uint64, sig bridge.Signature) (int, error) {
	approvals := 0
	err := s.db.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		dao := &SignatureDao{
			RequestID: requestID,
			Operator:  sig.Operator,
			Approve:   sig.Approve,
			SignedAt:  sig.SignedAt,
		}
		if _, err := tx.NewInsert().Model(dao).Exec(ctx); err != nil {
			var pgErr pgdriver.Error
			if errors.As(err, &pgErr) && pgErr.Field('C') == pgUniqueViolation {
				return bridge.ErrAlreadySigned
			}
			return fmt.Errorf("failed to add signature: %w", err)
		}

		count, err := tx.NewSelect().
			Model((*SignatureDao)(nil)).
			Where("request_id = ?", requestID).
			Where("approve = TRUE").
			Count(ctx)
		if err != nil {
			return fmt.Errorf("failed to count approvals: %w", err)
		}
		approvals = count
		return nil
	})
	if err != nil {
		return 0, err
	}
	return approvals, nil
}

// TransitionStatus moves the request to the given status only when its
// current status is one of from. Zero rows affected is not an error: it means
// a concurrent caller already moved the request past from, and the guard
// keeps this write from regressing it.
func (s *pgStore) TransitionStatus(ctx context.Context, requestID uint64, to bridge.Status, from ...bridge.Status) error {
	states := make([]string, len(from))
	for i, st := range from {
		states[i] = string(st)
	}
	_, err := s.db.NewUpdate().
		Model((*RequestDao)(nil)).
		Set("status = ?", string(to)).
		Where("id = ?", requestID).
		Where("status IN (?)", bun.In(states)).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to transition request status: %w", err)
	}
	return nil
}

func (s *pgStore) ClearSignatures(ctx context.Context, requestID uint64) error {
	_, err := s.db.NewDelete().
		Model((*SignatureDao)(nil)).
		Where("request_id = ?", requestID).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to clear signatures: %w", err)
	}
	return nil
}

// HistoryFor returns the owner's request IDs in insertion order.
func (s *pgStore) HistoryFor(ctx context.Context, owner string) ([]uint64, error) {
	var ids []uint64
	err := s.db.NewSelect().
		Model((*RequestDao)(nil)).
		Column("id").
		Where("source_owner = ?", owner).
		Order("id ASC").
		Scan(ctx, &ids)
	if err != nil {
		return nil, fmt.Errorf("failed to list bridge history: %w", err)
	}
	return ids, nil
}

// ListNonTerminal returns every request that can still transition, for the
// expiry sweeper.
func (s *pgStore) ListNonTerminal(ctx context.Context) ([]*bridge.Request, error) {
	var daos []RequestDao
	err := s.db.NewSelect().
		Model(&daos).
		Where("status IN (?)", bun.In([]string{
			string(bridge.StatusPending),
			string(bridge.StatusPartiallySigned),
			string(bridge.StatusApproved),
			string(bridge.StatusExpired),
		})).
		Order("id ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list non-terminal requests: %w", err)
	}

	reqs := make([]*bridge.Request, len(daos))
	for i := range daos {
		sigs, err := s.signaturesFor(ctx, daos[i].ID)
		if err != nil {
			return nil, err
		}
		reqs[i] = toRequest(&daos[i], sigs)
	}
	return reqs, nil
}

func (s *pgStore) signaturesFor(ctx context.Context, requestID uint64) ([]SignatureDao, error) {
	var sigs []SignatureDao
	err := s.db.NewSelect().
		Model(&sigs).
		Where("request_id = ?", requestID).
		Order("signed_at ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load signatures: %w", err)
	}
	return sigs, nil
}
