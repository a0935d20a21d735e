package bridgestore

import (
	"time"

	"github.com/uptrace/bun"

	"github.com/propchain-labs/bridge-coordinator/pkg/asset"
	"github.com/propchain-labs/bridge-coordinator/pkg/bridge"
)

// RequestDao is a data access object that maps directly to the
// 'bridge_requests' table in PostgreSQL. Request IDs come from the serial
// primary key, which gives the monotone, never-reused assignment the
// protocol requires.
type RequestDao struct {
	bun.BaseModel      `bun:"table:bridge_requests,alias:br"`
	ID                 uint64         `bun:"id,pk,autoincrement"`
	AssetID            uint64         `bun:"asset_id,notnull"`
	SourceOwner        string         `bun:"source_owner,notnull,type:varchar(42)"`
	DestinationChain   string         `bun:"destination_chain,notnull,type:varchar(64)"`
	Recipient          string         `bun:"recipient,notnull,type:varchar(128)"`
	RequiredSignatures uint8          `bun:"required_signatures,notnull"`
	Status             string         `bun:"status,notnull,type:varchar(20)"`
	CreatedAt          time.Time      `bun:"created_at,notnull"`
	TimeoutAt          time.Time      `bun:"timeout_at,notnull"`
	MetadataSnapshot   asset.Metadata `bun:"metadata_snapshot,notnull,type:jsonb"`
	ReceiptID          *string        `bun:"receipt_id,type:varchar(36)"`
	TxHash             *string        `bun:"tx_hash,type:varchar(66)"`
	DestinationAssetID *uint64        `bun:"destination_asset_id"`
	ExecutedAt         *time.Time     `bun:"executed_at"`
}

// SignatureDao maps to the 'bridge_signatures' table. The (request_id,
// operator) unique constraint is what rejects a second submission by the
// same operator.
type SignatureDao struct {
	bun.BaseModel `bun:"table:bridge_signatures,alias:bs"`
	ID            int64     `bun:"id,pk,autoincrement"`
	RequestID     uint64    `bun:"request_id,notnull,unique:uq_bridge_signatures_request_operator"`
	Operator      string    `bun:"operator,notnull,type:varchar(42),unique:uq_bridge_signatures_request_operator"`
	Approve       bool      `bun:"approve,notnull"`
	SignedAt      time.Time `bun:"signed_at,notnull"`
}

func toRequestDao(req *bridge.Request) *RequestDao {
	dao := &RequestDao{
		ID:                 req.ID,
		AssetID:            req.AssetID,
		SourceOwner:        req.SourceOwner,
		DestinationChain:   req.DestinationChain,
		Recipient:          req.Recipient,
		RequiredSignatures: req.RequiredSignatures,
		Status:             string(req.Status),
		CreatedAt:          req.CreatedAt,
		TimeoutAt:          req.TimeoutAt,
		MetadataSnapshot:   req.MetadataSnapshot,
		ExecutedAt:         req.ExecutedAt,
	}

	if req.ReceiptID != "" {
		dao.ReceiptID = &req.ReceiptID
	}
	if req.TxHash != "" {
		dao.TxHash = &req.TxHash
	}
	if req.DestinationAssetID != 0 {
		dao.DestinationAssetID = &req.DestinationAssetID
	}

	return dao
}

func toRequest(dao *RequestDao, sigs []SignatureDao) *bridge.Request {
	req := &bridge.Request{
		ID:                 dao.ID,
		AssetID:            dao.AssetID,
		SourceOwner:        dao.SourceOwner,
		DestinationChain:   dao.DestinationChain,
		Recipient:          dao.Recipient,
		RequiredSignatures: dao.RequiredSignatures,
		Status:             bridge.Status(dao.Status),
		CreatedAt:          dao.CreatedAt,
		TimeoutAt:          dao.TimeoutAt,
		MetadataSnapshot:   dao.MetadataSnapshot,
		ExecutedAt:         dao.ExecutedAt,
	}

	if dao.ReceiptID != nil {
		req.ReceiptID = *dao.ReceiptID
	}
	if dao.TxHash != nil {
		req.TxHash = *dao.TxHash
	}
	if dao.DestinationAssetID != nil {
		req.DestinationAssetID = *dao.DestinationAssetID
	}

	req.Signatures = make([]bridge.Signature, len(sigs))
	for i, sig := range sigs {
		req.Signatures[i] = bridge.Signature{
			Operator: sig.Operator,
			Approve:  sig.Approve,
			SignedAt: sig.SignedAt,
		}
	}

	return req
}
