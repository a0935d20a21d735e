package assetledger

import (
	"time"

	"github.com/uptrace/bun"

	"github.com/propchain-labs/bridge-coordinator/pkg/asset"
)

// AssetDao is a data access object that maps directly to the 'assets' table
// in PostgreSQL: the source-side exclusive-ownership registry.
type AssetDao struct {
	bun.BaseModel `bun:"table:assets,alias:a"`
	ID            uint64         `bun:"id,pk,autoincrement"`
	Owner         string         `bun:"owner,notnull,type:varchar(42)"`
	Custody       string         `bun:"custody,notnull,type:varchar(16)"`
	Metadata      asset.Metadata `bun:"metadata,notnull,type:jsonb"`
	RegisteredAt  time.Time      `bun:"registered_at,notnull"`
}

// BridgedAssetDao maps to the 'bridged_assets' table: the destination-side
// mint record written by MintEquivalent. The unique request_id column is what
// makes execution idempotent: one bridge request can only ever own one row.
type BridgedAssetDao struct {
	bun.BaseModel    `bun:"table:bridged_assets,alias:ba"`
	ID               uint64         `bun:"id,pk,autoincrement"`
	RequestID        uint64         `bun:"request_id,notnull,unique"`
	DestinationChain string         `bun:"destination_chain,notnull,type:varchar(64)"`
	Recipient        string         `bun:"recipient,notnull,type:varchar(128)"`
	Metadata         asset.Metadata `bun:"metadata,notnull,type:jsonb"`
	MintedAt         time.Time      `bun:"minted_at,notnull"`
}

func toAsset(dao *AssetDao) *asset.Asset {
	return &asset.Asset{
		ID:           dao.ID,
		Owner:        dao.Owner,
		Custody:      asset.Custody(dao.Custody),
		Metadata:     dao.Metadata,
		RegisteredAt: dao.RegisteredAt,
	}
}
