// Package asset defines the bridged asset domain model and the ledger
// adapter contract the bridge coordinator depends on.
package asset

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

// Custody is the exclusive-ownership state of an asset on the source ledger.
type Custody string

const (
	// CustodyUnlocked means the owner holds the asset and may bridge it.
	CustodyUnlocked Custody = "unlocked"
	// CustodyLocked means a live bridge request holds the asset; no transfer
	// outside the bridge protocol is possible.
	CustodyLocked Custody = "locked"
	// CustodyBridged means the asset was forwarded to the destination ledger.
	CustodyBridged Custody = "bridged"
)

// Metadata is the descriptive record of a property-backed asset. The bridge
// snapshots it at request creation and reconstructs the asset identically on
// the destination ledger.
type Metadata struct {
	Location         string          `json:"location"`
	SizeSqft         uint64          `json:"size_sqft"`
	LegalDescription string          `json:"legal_description"`
	Valuation        decimal.Decimal `json:"valuation"`
	DocumentsURL     string          `json:"documents_url"`
}

// Asset is one uniquely-owned entry in the source ledger.
type Asset struct {
	ID           uint64
	Owner        string
	Custody      Custody
	Metadata     Metadata
	RegisteredAt time.Time
}

var (
	// ErrNotFound is returned when the asset does not exist on the ledger.
	ErrNotFound = errors.New("asset not found")
	// ErrCustodyConflict is returned when a lock or unlock does not match the
	// asset's current owner and custody state.
	ErrCustodyConflict = errors.New("asset custody conflict")
)

// Ledger is the asset ledger adapter consumed by the bridge. Every method is
// atomic and committed before it returns; the bridge relies on that to keep
// the per-asset lock flag consistent with request state.
//
// Locking an asset is not part of this contract: the lock must commit in the
// same transaction as the bridge request insert, so it belongs to the request
// store, not to the ledger adapter.
type Ledger interface {
	// Get returns the asset record.
	Get(ctx context.Context, assetID uint64) (*Asset, error)

	// OwnerOf returns the asset's current owner account.
	OwnerOf(ctx context.Context, assetID uint64) (string, error)

	// Register mints a new asset on the source ledger, owned by owner and
	// unlocked. Returns the assigned asset ID.
	Register(ctx context.Context, owner string, meta Metadata) (uint64, error)

	// Unlock returns custody to owner. Fails with ErrCustodyConflict unless
	// the asset is currently locked.
	Unlock(ctx context.Context, assetID uint64, owner string) error

	// Forward marks a locked asset as bridged off the source ledger. Called
	// only by the execution step, after the destination-side mint committed.
	Forward(ctx context.Context, assetID uint64) error

	// MintEquivalent credits an equivalent asset to recipient on the
	// destination ledger, reconstructed from the metadata snapshot. The mint
	// is keyed by the bridge request ID: a repeat call for the same request
	// returns the destination asset ID of the first mint instead of creating
	// a second asset.
	MintEquivalent(ctx context.Context, requestID uint64, meta Metadata, recipient, destinationChain string) (uint64, error)

	// BurnEquivalent removes a destination-side asset held by recipient.
	// Used by the return path when an asset bridges back to the source
	// ledger. Fails with ErrNotFound if recipient does not hold the asset.
	BurnEquivalent(ctx context.Context, destinationAssetID uint64, recipient string) error
}
