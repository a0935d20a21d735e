// Package bridge defines the domain model for cross-chain bridge requests.
//
// A bridge request is the two-phase commit record for moving a uniquely-owned
// asset to another chain: the asset is locked on the source ledger when the
// request is created, operators collect threshold approvals against it, and a
// single idempotent execution step mints the equivalent asset on the
// destination side.
package bridge

import (
	"errors"
	"time"

	"github.com/propchain-labs/bridge-coordinator/pkg/asset"
)

// Status represents the current state of a bridge request.
type Status string

const (
	StatusPending         Status = "pending"
	StatusPartiallySigned Status = "partially_signed"
	StatusApproved        Status = "approved"
	StatusExecuted        Status = "executed"
	StatusExpired         Status = "expired"
	StatusRecovered       Status = "recovered"
	StatusFailed          Status = "failed"
)

// Terminal reports whether no further transition is permitted from s.
func (s Status) Terminal() bool {
	switch s {
	case StatusExecuted, StatusRecovered, StatusFailed:
		return true
	}
	return false
}

// RecoveryAction selects how an expired request is resolved.
type RecoveryAction string

const (
	// RecoveryUnlockToken returns custody of the asset to the source owner.
	RecoveryUnlockToken RecoveryAction = "unlock_token"
	// RecoveryRetry clears collected signatures and restarts the timeout
	// window, keeping the same request ID.
	RecoveryRetry RecoveryAction = "retry"
)

// Signature is one operator's decision on a request. An operator gets exactly
// one entry per request; a second submission is rejected, not overwritten.
type Signature struct {
	Operator string
	Approve  bool
	SignedAt time.Time
}

// Request is one cross-chain transfer attempt. Requests are never deleted;
// terminal requests are retained for history and audit queries.
type Request struct {
	ID                 uint64
	AssetID            uint64
	SourceOwner        string
	DestinationChain   string
	Recipient          string
	RequiredSignatures uint8
	Signatures         []Signature
	CreatedAt          time.Time
	TimeoutAt          time.Time
	Status             Status

	// MetadataSnapshot is an immutable copy of the asset's descriptive
	// metadata taken at creation time, so the destination-side mint cannot
	// race with updates to the live asset record.
	MetadataSnapshot asset.Metadata

	// Execution receipt, populated on the Executed transition.
	ReceiptID          string
	TxHash             string
	DestinationAssetID uint64
	ExecutedAt         *time.Time
}

// ApprovalCount returns the number of distinct approving operators.
func (r *Request) ApprovalCount() int {
	n := 0
	for _, sig := range r.Signatures {
		if sig.Approve {
			n++
		}
	}
	return n
}

// HasSigned reports whether the operator already has an entry on the request.
func (r *Request) HasSigned(operator string) bool {
	for _, sig := range r.Signatures {
		if sig.Operator == operator {
			return true
		}
	}
	return false
}

// ExpiredAt reports whether the request's timeout window has elapsed at now.
func (r *Request) ExpiredAt(now time.Time) bool {
	return !now.Before(r.TimeoutAt)
}

// MonitorInfo is the read-only status snapshot served by the monitor endpoint.
type MonitorInfo struct {
	RequestID           uint64     `json:"request_id"`
	AssetID             uint64     `json:"asset_id"`
	SourceOwner         string     `json:"source_owner"`
	DestinationChain    string     `json:"destination_chain"`
	Recipient           string     `json:"recipient"`
	Status              Status     `json:"status"`
	SignaturesCollected int        `json:"signatures_collected"`
	SignaturesRequired  uint8      `json:"signatures_required"`
	Rejections          int        `json:"rejections"`
	CreatedAt           time.Time  `json:"created_at"`
	TimeoutAt           time.Time  `json:"timeout_at"`
	TxHash              string     `json:"tx_hash,omitzero"`
	DestinationAssetID  uint64     `json:"destination_asset_id,omitzero"`
	ExecutedAt          *time.Time `json:"executed_at,omitzero"`
}

// Receipt is the proof of a completed execution, keyed by its transaction
// hash. Served by the receipt verification endpoint.
type Receipt struct {
	RequestID          uint64    `json:"request_id"`
	AssetID            uint64    `json:"asset_id"`
	SourceOwner        string    `json:"source_owner"`
	DestinationChain   string    `json:"destination_chain"`
	Recipient          string    `json:"recipient"`
	DestinationAssetID uint64    `json:"destination_asset_id"`
	ReceiptID          string    `json:"receipt_id"`
	TxHash             string    `json:"tx_hash"`
	ExecutedAt         time.Time `json:"executed_at"`
}

// Domain errors, matching the failure modes of the on-chain protocol.
var (
	ErrTokenNotFound    = errors.New("token not found")
	ErrUnauthorized     = errors.New("unauthorized")
	ErrInvalidChain     = errors.New("destination chain not supported")
	ErrComplianceFailed = errors.New("compliance check failed")
	ErrBridgePaused     = errors.New("bridge is paused")
	ErrInsufficientSigs = errors.New("required signatures out of range")
	ErrRequestExpired   = errors.New("bridge request expired")
	ErrInvalidRequest   = errors.New("invalid bridge request")
	ErrAlreadySigned    = errors.New("operator already signed this request")
	ErrInvalidOperator  = errors.New("caller is not an active bridge operator")
	ErrDuplicateRequest = errors.New("asset already has a live bridge request")
	ErrRequestNotFound  = errors.New("bridge request not found")
	ErrInvalidRecovery  = errors.New("unknown recovery action")
)
