// Package assetledger provides the PostgreSQL implementation of the asset
// ledger adapter: the exclusive-ownership registry for bridged assets.
//
// Custody transitions are guarded UPDATEs with the expected owner and custody
// state in the WHERE clause, so a flip either applies exactly once or reports
// a conflict; it can never double-apply under concurrent calls.
package assetledger

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/uptrace/bun"

	"github.com/propchain-labs/bridge-coordinator/pkg/asset"
)

type pgLedger struct {
	db  *bun.DB
	now func() time.Time
}

// NewLedger creates a new postgres implementation of the asset ledger.
func NewLedger(db *bun.DB) *pgLedger {
	return &pgLedger{db: db, now: time.Now}
}

func (l *pgLedger) Get(ctx context.Context, assetID uint64) (*asset.Asset, error) {
	dao := new(AssetDao)
	err := l.db.NewSelect().
		Model(dao).
		Where("id = ?", assetID).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, asset.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get asset: %w", err)
	}
	return toAsset(dao), nil
}

func (l *pgLedger) OwnerOf(ctx context.Context, assetID uint64) (string, error) {
	var owner string
	err := l.db.NewSelect().
		Model((*AssetDao)(nil)).
		Column("owner").
		Where("id = ?", assetID).
		Scan(ctx, &owner)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", asset.ErrNotFound
		}
		return "", fmt.Errorf("failed to get asset owner: %w", err)
	}
	return owner, nil
}

// Register mints a new asset on the source ledger, owned by owner and
// unlocked. Used by deployment seeding and by admin tooling.
func (l *pgLedger) Register(ctx context.Context, owner string, meta asset.Metadata) (uint64, error) {
	dao := &AssetDao{
		Owner:        owner,
		Custody:      string(asset.CustodyUnlocked),
		Metadata:     meta,
		RegisteredAt: l.now(),
	}
	_, err := l.db.NewInsert().
		Model(dao).
		Exec(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to register asset: %w", err)
	}
	return dao.ID, nil
}

// LockCustody places the asset into bridge custody, guarded on the current
// owner and the unlocked state. The request store calls it with its own
// transaction so the lock and the request insert commit together.
func LockCustody(ctx context.Context, db bun.IDB, assetID uint64, owner string) error {
	return transition(ctx, db, assetID, owner, asset.CustodyUnlocked, asset.CustodyLocked)
}

func (l *pgLedger) Unlock(ctx context.Context, assetID uint64, owner string) error {
	return transition(ctx, l.db, assetID, owner, asset.CustodyLocked, asset.CustodyUnlocked)
}

func (l *pgLedger) Forward(ctx context.Context, assetID uint64) error {
	res, err := l.db.NewUpdate().
		Model((*AssetDao)(nil)).
		Set("custody = ?", string(asset.CustodyBridged)).
		Where("id = ?", assetID).
		Where("custody = ?", string(asset.CustodyLocked)).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to forward asset: %w", err)
	}
	return checkCustodyFlip(res, assetID)
}

// MintEquivalent records the destination-side mint, keyed by the bridge
// request ID. The upsert on request_id makes a retried execution return the
// already-minted asset instead of creating a second one.
func (l *pgLedger) MintEquivalent(ctx context.Context, requestID uint64, meta asset.Metadata, recipient, destinationChain string) (uint64, error) {
	dao := &BridgedAssetDao{
		RequestID:        requestID,
		DestinationChain: destinationChain,
		Recipient:        recipient,
		Metadata:         meta,
		MintedAt:         l.now(),
	}
	_, err := l.db.NewInsert().
		Model(dao).
		On("CONFLICT (request_id) DO UPDATE").
		Set("request_id = EXCLUDED.request_id").
		Returning("id").
		Exec(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to mint equivalent asset: %w", err)
	}
	return dao.ID, nil
}

// BurnEquivalent removes the destination-side record, guarded on the holder.
func (l *pgLedger) BurnEquivalent(ctx context.Context, destinationAssetID uint64, recipient string) error {
	res, err := l.db.NewDelete().
		Model((*BridgedAssetDao)(nil)).
		Where("id = ?", destinationAssetID).
		Where("recipient = ?", recipient).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to burn equivalent asset: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read burn result: %w", err)
	}
	if affected == 0 {
		return asset.ErrNotFound
	}
	return nil
}

// transition flips custody from to, guarded on the current owner and state.
func transition(ctx context.Context, db bun.IDB, assetID uint64, owner string, from, to asset.Custody) error {
	res, err := db.NewUpdate().
		Model((*AssetDao)(nil)).
		Set("custody = ?", string(to)).
		Where("id = ?", assetID).
		Where("owner = ?", owner).
		Where("custody = ?", string(from)).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to update asset custody: %w", err)
	}
	return checkCustodyFlip(res, assetID)
}

func checkCustodyFlip(res sql.Result, assetID uint64) error {
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read custody update result: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("asset %d: %w", assetID, asset.ErrCustodyConflict)
	}
	return nil
}
