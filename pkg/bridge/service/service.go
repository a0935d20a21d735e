// Package service implements the bridge coordinator state machine: request
// creation with custody locking, threshold signature collection, idempotent
// execution, and recovery of expired requests.
package service

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/ethereum/go-ethereum/crypto"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/propchain-labs/bridge-coordinator/internal/metrics"
	apperrors "github.com/propchain-labs/bridge-coordinator/pkg/app/errors"
	"github.com/propchain-labs/bridge-coordinator/pkg/asset"
	"github.com/propchain-labs/bridge-coordinator/pkg/bridge"
	"github.com/propchain-labs/bridge-coordinator/pkg/compliance"
	"github.com/propchain-labs/bridge-coordinator/pkg/config"
	"github.com/propchain-labs/bridge-coordinator/pkg/fees"
)

// Store is the persistence interface the bridge service requires. CreateLocked
// must lock the asset and insert the request in one transaction; everything
// else is a plain read or write on the request record.
type Store interface {
	CreateLocked(ctx context.Context, req *bridge.Request) error
	Get(ctx context.Context, id uint64) (*bridge.Request, error)
	GetByTxHash(ctx context.Context, txHash string) (*bridge.Request, error)
	Update(ctx context.Context, req *bridge.Request) error
	AddSignature(ctx context.Context, requestID uint64, sig bridge.Signature) (int, error)
	TransitionStatus(ctx context.Context, requestID uint64, to bridge.Status, from ...bridge.Status) error
	ClearSignatures(ctx context.Context, requestID uint64) error
	HistoryFor(ctx context.Context, owner string) ([]uint64, error)
	ListNonTerminal(ctx context.Context) ([]*bridge.Request, error)
}

// Registry exposes operator membership checks.
type Registry interface {
	IsActive(ctx context.Context, account string) (bool, error)
	ActiveCount(ctx context.Context) (int, error)
}

// InitiateParams carries the caller-supplied fields of a new bridge request.
// SourceOwner is the authenticated caller, never taken from the payload.
type InitiateParams struct {
	AssetID            uint64
	SourceOwner        string
	DestinationChain   string
	Recipient          string
	RequiredSignatures uint8
	TimeoutBlocks      uint64
}

// ProtocolInfo is the public protocol configuration snapshot.
type ProtocolInfo struct {
	SupportedChains      []string `json:"supported_chains"`
	MinSignatures        int      `json:"min_signatures"`
	MaxSignatures        int      `json:"max_signatures"`
	DefaultTimeoutBlocks uint64   `json:"default_timeout_blocks"`
	GasLimitPerBridge    uint64   `json:"gas_limit_per_bridge"`
	Paused               bool     `json:"paused"`
}

// Service is the bridge coordinator surface consumed by the HTTP layer and
// the expiry sweeper.
type Service interface {
	RegisterAsset(ctx context.Context, owner string, meta asset.Metadata) (uint64, error)
	Initiate(ctx context.Context, params InitiateParams) (*bridge.Request, error)
	Sign(ctx context.Context, requestID uint64, operator string, approve bool) (*bridge.Request, error)
	Execute(ctx context.Context, requestID uint64) (*bridge.Request, error)
	Recover(ctx context.Context, requestID uint64, caller string, admin bool, action bridge.RecoveryAction) (*bridge.Request, error)
	BurnBridged(ctx context.Context, destinationAssetID uint64, caller string) error
	Monitor(ctx context.Context, requestID uint64) (*bridge.MonitorInfo, error)
	VerifyReceipt(ctx context.Context, txHash string) (*bridge.Receipt, error)
	History(ctx context.Context, owner string) ([]uint64, error)
	EstimateGas(ctx context.Context, assetID uint64, destinationChain string) (uint64, error)
	SweepExpired(ctx context.Context) (int, error)
	Info() ProtocolInfo
	SetPaused(paused bool)
}

type bridgeService struct {
	store     Store
	ledger    asset.Ledger
	operators Registry
	checker   compliance.Checker
	estimator *fees.Estimator
	cfg       *config.BridgeConfig
	logger    *zap.Logger
	paused    atomic.Bool
	now       func() time.Time
}

// NewService creates the bridge coordinator service. The initial pause state
// comes from configuration; admins can flip it at runtime.
func NewService(
	store Store,
	ledger asset.Ledger,
	operators Registry,
	checker compliance.Checker,
	estimator *fees.Estimator,
	cfg *config.BridgeConfig,
	logger *zap.Logger,
) Service {
	s := &bridgeService{
		store:     store,
		ledger:    ledger,
		operators: operators,
		checker:   checker,
		estimator: estimator,
		cfg:       cfg,
		logger:    logger,
		now:       time.Now,
	}
	s.paused.Store(cfg.EmergencyPause)
	return s
}

// Initiate creates a bridge request and locks the asset. The lock and the
// request insert commit in the same transaction, so an asset can never carry
// two live requests.
func (s *bridgeService) Initiate(ctx context.Context, params InitiateParams) (*bridge.Request, error) {
	if s.paused.Load() {
		return nil, apperrors.StateError(bridge.ErrBridgePaused, "bridge is paused")
	}

	if !s.chainSupported(params.DestinationChain) {
		return nil, apperrors.BadRequestError(bridge.ErrInvalidChain,
			fmt.Sprintf("destination chain %q is not supported", params.DestinationChain))
	}

	required := int(params.RequiredSignatures)
	if required < s.cfg.MinSignatures || required > s.cfg.MaxSignatures {
		return nil, apperrors.BadRequestError(bridge.ErrInsufficientSigs,
			fmt.Sprintf("required_signatures must be between %d and %d", s.cfg.MinSignatures, s.cfg.MaxSignatures))
	}
	active, err := s.operators.ActiveCount(ctx)
	if err != nil {
		return nil, apperrors.GeneralError(err)
	}
	if required > active {
		return nil, apperrors.BadRequestError(bridge.ErrInsufficientSigs,
			fmt.Sprintf("required_signatures %d exceeds the %d active operators", required, active))
	}

	compliant, err := s.checker.IsCompliant(ctx, params.SourceOwner)
	if err != nil {
		return nil, apperrors.DependencyError(err, "compliance check unavailable")
	}
	if !compliant {
		return nil, apperrors.ForbiddenError(bridge.ErrComplianceFailed, "account failed compliance check")
	}

	a, err := s.ledger.Get(ctx, params.AssetID)
	if err != nil {
		if errors.Is(err, asset.ErrNotFound) {
			return nil, apperrors.ResourceNotFoundError(bridge.ErrTokenNotFound, "asset not found")
		}
		return nil, apperrors.GeneralError(err)
	}
	if a.Owner != params.SourceOwner {
		return nil, apperrors.ForbiddenError(bridge.ErrUnauthorized, "caller does not own the asset")
	}

	now := s.now()
	req := &bridge.Request{
		AssetID:            params.AssetID,
		SourceOwner:        params.SourceOwner,
		DestinationChain:   params.DestinationChain,
		Recipient:          params.Recipient,
		RequiredSignatures: params.RequiredSignatures,
		CreatedAt:          now,
		TimeoutAt:          now.Add(s.cfg.Timeout(params.TimeoutBlocks)),
		Status:             bridge.StatusPending,
		MetadataSnapshot:   a.Metadata,
	}

	if err := s.store.CreateLocked(ctx, req); err != nil {
		switch {
		case errors.Is(err, bridge.ErrTokenNotFound):
			return nil, apperrors.ResourceNotFoundError(err, "asset not found")
		case errors.Is(err, bridge.ErrUnauthorized):
			return nil, apperrors.ForbiddenError(err, "caller does not own the asset")
		case errors.Is(err, bridge.ErrDuplicateRequest):
			return nil, apperrors.ConflictError(err, "asset already has a live bridge request")
		case errors.Is(err, asset.ErrCustodyConflict):
			return nil, apperrors.StateError(err, "asset is not available for bridging")
		}
		return nil, apperrors.GeneralError(err)
	}

	// Advisory only; the estimate never gates creation.
	gas := s.estimator.Estimate(a.Metadata)
	s.logger.Info("Bridge request created",
		zap.Uint64("request_id", req.ID),
		zap.Uint64("asset_id", req.AssetID),
		zap.String("destination_chain", req.DestinationChain),
		zap.Uint64("gas_estimate", gas),
		zap.Time("timeout_at", req.TimeoutAt))

	metrics.RequestsTotal.WithLabelValues(params.DestinationChain).Inc()
	metrics.PendingRequests.Inc()
	return req, nil
}

// RegisterAsset mints a new source-ledger asset for owner. Admin only; the
// ledger is the system of record for which properties may bridge at all.
func (s *bridgeService) RegisterAsset(ctx context.Context, owner string, meta asset.Metadata) (uint64, error) {
	id, err := s.ledger.Register(ctx, owner, meta)
	if err != nil {
		return 0, apperrors.GeneralError(err)
	}
	s.logger.Info("Asset registered",
		zap.Uint64("asset_id", id),
		zap.String("owner", owner))
	return id, nil
}

// Sign records an active operator's approval or rejection. Rejections are
// recorded but never block the request; only the approval count drives the
// threshold. Reaching the threshold moves the request to approved without
// executing it.
func (s *bridgeService) Sign(ctx context.Context, requestID uint64, op string, approve bool) (*bridge.Request, error) {
	req, err := s.load(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if req.Status.Terminal() {
		return nil, apperrors.StateError(bridge.ErrInvalidRequest,
			fmt.Sprintf("request is %s and no longer accepts signatures", req.Status))
	}
	// Expiry is checked before counting, for every live status. An approved
	// request past its window rejects signatures too; releasing the asset is
	// left to execute and the sweeper.
	if req.Status == bridge.StatusExpired || req.ExpiredAt(s.now()) {
		return nil, apperrors.StateError(bridge.ErrRequestExpired, "bridge request expired")
	}

	active, err := s.operators.IsActive(ctx, op)
	if err != nil {
		return nil, apperrors.GeneralError(err)
	}
	if !active {
		return nil, apperrors.ForbiddenError(bridge.ErrInvalidOperator, "caller is not an active bridge operator")
	}

	sig := bridge.Signature{Operator: op, Approve: approve, SignedAt: s.now()}
	approvals, err := s.store.AddSignature(ctx, requestID, sig)
	if err != nil {
		if errors.Is(err, bridge.ErrAlreadySigned) {
			return nil, apperrors.ConflictError(err, "operator already signed this request")
		}
		return nil, apperrors.GeneralError(err)
	}
	req.Signatures = append(req.Signatures, sig)

	decision := "reject"
	if approve {
		decision = "approve"
	}
	metrics.SignaturesTotal.WithLabelValues(decision).Inc()

	// The threshold is judged on the count the store returned with the
	// insert, not on the snapshot loaded above, so concurrent signers each
	// see the signatures that landed before theirs. The guarded transition
	// keeps a slower partially_signed write from regressing approved.
	if approvals >= int(req.RequiredSignatures) {
		err = s.store.TransitionStatus(ctx, requestID, bridge.StatusApproved,
			bridge.StatusPending, bridge.StatusPartiallySigned)
		if err != nil {
			return nil, apperrors.GeneralError(err)
		}
		req.Status = bridge.StatusApproved
	} else if req.Status == bridge.StatusPending {
		err = s.store.TransitionStatus(ctx, requestID, bridge.StatusPartiallySigned, bridge.StatusPending)
		if err != nil {
			return nil, apperrors.GeneralError(err)
		}
		req.Status = bridge.StatusPartiallySigned
	}

	s.logger.Info("Bridge request signed",
		zap.Uint64("request_id", requestID),
		zap.String("operator", op),
		zap.String("decision", decision),
		zap.Int("approvals", approvals),
		zap.String("status", string(req.Status)))
	return req, nil
}

// Execute completes an approved request: mint on the destination ledger,
// forward the source asset, record the receipt. Anyone may call it; approval
// already carries the authorization. A mint failure leaves the request
// approved and retryable. An approved request past its timeout fails instead,
// returning custody to the owner.
func (s *bridgeService) Execute(ctx context.Context, requestID uint64) (*bridge.Request, error) {
	req, err := s.load(ctx, requestID)
	if err != nil {
		return nil, err
	}
	switch req.Status {
	case bridge.StatusApproved:
	case bridge.StatusExpired:
		return nil, apperrors.StateError(bridge.ErrRequestExpired, "bridge request expired")
	default:
		return nil, apperrors.StateError(bridge.ErrInvalidRequest,
			fmt.Sprintf("request is %s, not approved", req.Status))
	}

	if req.ExpiredAt(s.now()) {
		if err := s.failTimedOut(ctx, req); err != nil {
			return nil, apperrors.GeneralError(err)
		}
		metrics.ExecutionsTotal.WithLabelValues("timeout").Inc()
		return nil, apperrors.StateError(bridge.ErrRequestExpired, "request timed out before execution")
	}

	destID, err := s.ledger.MintEquivalent(ctx, req.ID, req.MetadataSnapshot, req.Recipient, req.DestinationChain)
	if err != nil {
		metrics.ExecutionsTotal.WithLabelValues("mint_failed").Inc()
		return nil, apperrors.DependencyError(err, "destination mint failed")
	}
	if err := s.ledger.Forward(ctx, req.AssetID); err != nil {
		// The mint committed but the source asset is still locked. The
		// request stays approved; the mint is keyed by the request ID, so
		// the retried execute gets the same destination asset back and only
		// the forward runs again.
		metrics.ExecutionsTotal.WithLabelValues("forward_failed").Inc()
		return nil, apperrors.DependencyError(err, "source asset handoff failed")
	}

	executedAt := s.now()
	req.ReceiptID = uuid.New().String()
	req.TxHash = receiptHash(req, destID)
	req.DestinationAssetID = destID
	req.ExecutedAt = &executedAt
	req.Status = bridge.StatusExecuted
	if err := s.store.Update(ctx, req); err != nil {
		return nil, apperrors.GeneralError(err)
	}

	metrics.ExecutionsTotal.WithLabelValues("success").Inc()
	metrics.PendingRequests.Dec()
	s.logger.Info("Bridge request executed",
		zap.Uint64("request_id", requestID),
		zap.Uint64("asset_id", req.AssetID),
		zap.String("destination_chain", req.DestinationChain),
		zap.Uint64("destination_asset_id", destID),
		zap.String("tx_hash", req.TxHash))
	return req, nil
}

// Recover resolves an expired request. Only the source owner or an admin may
// call it. Unlocking returns the asset and terminates the request; retrying
// clears the collected signatures and restarts the timeout window on the same
// request ID.
func (s *bridgeService) Recover(ctx context.Context, requestID uint64, caller string, admin bool, action bridge.RecoveryAction) (*bridge.Request, error) {
	req, err := s.load(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if !admin && caller != req.SourceOwner {
		return nil, apperrors.ForbiddenError(bridge.ErrUnauthorized, "only the source owner or an admin may recover")
	}
	if req.Status != bridge.StatusExpired {
		return nil, apperrors.StateError(bridge.ErrInvalidRequest,
			fmt.Sprintf("request is %s, not expired", req.Status))
	}

	switch action {
	case bridge.RecoveryUnlockToken:
		if err := s.ledger.Unlock(ctx, req.AssetID, req.SourceOwner); err != nil {
			return nil, apperrors.GeneralError(err)
		}
		req.Status = bridge.StatusRecovered
		if err := s.store.Update(ctx, req); err != nil {
			return nil, apperrors.GeneralError(err)
		}
		metrics.PendingRequests.Dec()

	case bridge.RecoveryRetry:
		if err := s.store.ClearSignatures(ctx, requestID); err != nil {
			return nil, apperrors.GeneralError(err)
		}
		// Keep the window length the request was created with.
		window := req.TimeoutAt.Sub(req.CreatedAt)
		now := s.now()
		req.Signatures = nil
		req.CreatedAt = now
		req.TimeoutAt = now.Add(window)
		req.Status = bridge.StatusPending
		if err := s.store.Update(ctx, req); err != nil {
			return nil, apperrors.GeneralError(err)
		}

	default:
		return nil, apperrors.BadRequestError(bridge.ErrInvalidRecovery,
			fmt.Sprintf("unknown recovery action %q", action))
	}

	metrics.RecoveriesTotal.WithLabelValues(string(action)).Inc()
	s.logger.Info("Bridge request recovered",
		zap.Uint64("request_id", requestID),
		zap.String("action", string(action)),
		zap.String("status", string(req.Status)))
	return req, nil
}

// BurnBridged removes a destination-side asset held by caller: the first step
// of bridging a property back to its source ledger. The ledger guards the
// delete on the holder, so only the recipient of the mint can burn it.
func (s *bridgeService) BurnBridged(ctx context.Context, destinationAssetID uint64, caller string) error {
	if s.paused.Load() {
		return apperrors.StateError(bridge.ErrBridgePaused, "bridge is paused")
	}
	if err := s.ledger.BurnEquivalent(ctx, destinationAssetID, caller); err != nil {
		if errors.Is(err, asset.ErrNotFound) {
			return apperrors.ResourceNotFoundError(err, "caller does not hold this bridged asset")
		}
		return apperrors.GeneralError(err)
	}
	s.logger.Info("Bridged asset burned",
		zap.Uint64("destination_asset_id", destinationAssetID),
		zap.String("holder", caller))
	return nil
}

// Monitor returns the request's live status snapshot.
func (s *bridgeService) Monitor(ctx context.Context, requestID uint64) (*bridge.MonitorInfo, error) {
	req, err := s.load(ctx, requestID)
	if err != nil {
		return nil, err
	}

	rejections := 0
	for _, sig := range req.Signatures {
		if !sig.Approve {
			rejections++
		}
	}
	return &bridge.MonitorInfo{
		RequestID:           req.ID,
		AssetID:             req.AssetID,
		SourceOwner:         req.SourceOwner,
		DestinationChain:    req.DestinationChain,
		Recipient:           req.Recipient,
		Status:              req.Status,
		SignaturesCollected: req.ApprovalCount(),
		SignaturesRequired:  req.RequiredSignatures,
		Rejections:          rejections,
		CreatedAt:           req.CreatedAt,
		TimeoutAt:           req.TimeoutAt,
		TxHash:              req.TxHash,
		DestinationAssetID:  req.DestinationAssetID,
		ExecutedAt:          req.ExecutedAt,
	}, nil
}

// VerifyReceipt resolves an execution receipt by transaction hash. Only
// executed requests carry a hash, so a match proves the bridge completed.
func (s *bridgeService) VerifyReceipt(ctx context.Context, txHash string) (*bridge.Receipt, error) {
	req, err := s.store.GetByTxHash(ctx, txHash)
	if err != nil {
		if errors.Is(err, bridge.ErrRequestNotFound) {
			return nil, apperrors.ResourceNotFoundError(err, "no receipt for transaction hash")
		}
		return nil, apperrors.GeneralError(err)
	}
	if req.Status != bridge.StatusExecuted || req.ExecutedAt == nil {
		return nil, apperrors.ResourceNotFoundError(bridge.ErrRequestNotFound, "no receipt for transaction hash")
	}
	return &bridge.Receipt{
		RequestID:          req.ID,
		AssetID:            req.AssetID,
		SourceOwner:        req.SourceOwner,
		DestinationChain:   req.DestinationChain,
		Recipient:          req.Recipient,
		DestinationAssetID: req.DestinationAssetID,
		ReceiptID:          req.ReceiptID,
		TxHash:             req.TxHash,
		ExecutedAt:         *req.ExecutedAt,
	}, nil
}

// History returns the owner's request IDs, oldest first.
func (s *bridgeService) History(ctx context.Context, owner string) ([]uint64, error) {
	ids, err := s.store.HistoryFor(ctx, owner)
	if err != nil {
		return nil, apperrors.GeneralError(err)
	}
	return ids, nil
}

// EstimateGas returns the advisory gas cost of bridging the asset. The
// estimate never gates request creation.
func (s *bridgeService) EstimateGas(ctx context.Context, assetID uint64, destinationChain string) (uint64, error) {
	if !s.chainSupported(destinationChain) {
		return 0, apperrors.BadRequestError(bridge.ErrInvalidChain,
			fmt.Sprintf("destination chain %q is not supported", destinationChain))
	}
	a, err := s.ledger.Get(ctx, assetID)
	if err != nil {
		if errors.Is(err, asset.ErrNotFound) {
			return 0, apperrors.ResourceNotFoundError(bridge.ErrTokenNotFound, "asset not found")
		}
		return 0, apperrors.GeneralError(err)
	}

	gas := s.estimator.Estimate(a.Metadata)
	metrics.GasEstimate.WithLabelValues(destinationChain).Observe(float64(gas))
	return gas, nil
}

// SweepExpired scans live requests and persists expiry transitions the lazy
// path has not reached yet. Returns the number of requests transitioned.
func (s *bridgeService) SweepExpired(ctx context.Context) (int, error) {
	reqs, err := s.store.ListNonTerminal(ctx)
	if err != nil {
		return 0, err
	}

	now := s.now()
	swept := 0
	live := 0
	for _, req := range reqs {
		if req.Status == bridge.StatusExpired || !req.ExpiredAt(now) {
			live++
			continue
		}
		switch req.Status {
		case bridge.StatusPending, bridge.StatusPartiallySigned:
			if err := s.markExpired(ctx, req); err != nil {
				return swept, err
			}
			live++
		case bridge.StatusApproved:
			if err := s.failTimedOut(ctx, req); err != nil {
				return swept, err
			}
		}
		swept++
	}
	metrics.PendingRequests.Set(float64(live))
	return swept, nil
}

func (s *bridgeService) Info() ProtocolInfo {
	return ProtocolInfo{
		SupportedChains:      s.cfg.SupportedChains,
		MinSignatures:        s.cfg.MinSignatures,
		MaxSignatures:        s.cfg.MaxSignatures,
		DefaultTimeoutBlocks: s.cfg.DefaultTimeoutBlocks,
		GasLimitPerBridge:    s.cfg.GasLimitPerBridge,
		Paused:               s.paused.Load(),
	}
}

func (s *bridgeService) SetPaused(paused bool) {
	if s.paused.Swap(paused) != paused {
		s.logger.Warn("Bridge pause state changed", zap.Bool("paused", paused))
	}
}

// load fetches the request and persists a lazy expiry transition if the
// timeout elapsed since the last touch. Approved requests are exempt here;
// their timeout is handled at execution, where the asset can be released.
func (s *bridgeService) load(ctx context.Context, requestID uint64) (*bridge.Request, error) {
	req, err := s.store.Get(ctx, requestID)
	if err != nil {
		if errors.Is(err, bridge.ErrRequestNotFound) {
			return nil, apperrors.ResourceNotFoundError(err, "bridge request not found")
		}
		return nil, apperrors.GeneralError(err)
	}

	switch req.Status {
	case bridge.StatusPending, bridge.StatusPartiallySigned:
		if req.ExpiredAt(s.now()) {
			if err := s.markExpired(ctx, req); err != nil {
				return nil, apperrors.GeneralError(err)
			}
		}
	}
	return req, nil
}

func (s *bridgeService) markExpired(ctx context.Context, req *bridge.Request) error {
	req.Status = bridge.StatusExpired
	if err := s.store.Update(ctx, req); err != nil {
		return err
	}
	metrics.ExpiredRequests.Inc()
	s.logger.Info("Bridge request expired",
		zap.Uint64("request_id", req.ID),
		zap.Time("timeout_at", req.TimeoutAt))
	return nil
}

// failTimedOut terminates an approved request whose window closed without
// execution. Custody goes back to the owner here so the asset is never
// stranded in a terminal request.
func (s *bridgeService) failTimedOut(ctx context.Context, req *bridge.Request) error {
	if err := s.ledger.Unlock(ctx, req.AssetID, req.SourceOwner); err != nil {
		return fmt.Errorf("failed to release asset of timed-out request %d: %w", req.ID, err)
	}
	req.Status = bridge.StatusFailed
	if err := s.store.Update(ctx, req); err != nil {
		return err
	}
	metrics.ExpiredRequests.Inc()
	metrics.PendingRequests.Dec()
	s.logger.Warn("Approved bridge request timed out",
		zap.Uint64("request_id", req.ID),
		zap.Uint64("asset_id", req.AssetID))
	return nil
}

func (s *bridgeService) chainSupported(chain string) bool {
	for _, c := range s.cfg.SupportedChains {
		if c == chain {
			return true
		}
	}
	return false
}

// receiptHash derives the execution transaction hash from the immutable
// receipt fields.
func receiptHash(req *bridge.Request, destinationAssetID uint64) string {
	preimage := fmt.Sprintf("%d:%d:%s:%s:%d:%s",
		req.ID, req.AssetID, req.DestinationChain, req.Recipient, destinationAssetID, req.ReceiptID)
	return crypto.Keccak256Hash([]byte(preimage)).Hex()
}
