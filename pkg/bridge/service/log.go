package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/propchain-labs/bridge-coordinator/internal/metrics"
	apperrors "github.com/propchain-labs/bridge-coordinator/pkg/app/errors"
	"github.com/propchain-labs/bridge-coordinator/pkg/asset"
	"github.com/propchain-labs/bridge-coordinator/pkg/bridge"
)

const serviceName = "BridgeService"

func countError(err error) {
	var svcErr *apperrors.ServiceError
	if errors.As(err, &svcErr) {
		metrics.ErrorsTotal.WithLabelValues(serviceName, svcErr.Category.String()).Inc()
		return
	}
	metrics.ErrorsTotal.WithLabelValues(serviceName, "uncategorized").Inc()
}

// logService wraps Service with automatic logging of state-changing calls.
// Read-only methods pass through; they are high-volume and carry no decisions
// worth a log line.
type logService struct {
	svc    Service
	logger *zap.Logger
}

// NewLog creates a logging decorator for the bridge Service.
func NewLog(svc Service, logger *zap.Logger) Service {
	return &logService{
		svc:    svc,
		logger: logger,
	}
}

func (ls *logService) RegisterAsset(ctx context.Context, owner string, meta asset.Metadata) (id uint64, err error) {
	start := time.Now()

	defer func() {
		duration := time.Since(start)
		if err != nil {
			ls.logger.Error("RegisterAsset failed",
				zap.String("service", serviceName),
				zap.String("method", "RegisterAsset"),
				zap.String("owner", owner),
				zap.Duration("duration", duration),
				zap.Error(err),
			)
			countError(err)
		} else {
			ls.logger.Info("RegisterAsset completed",
				zap.String("service", serviceName),
				zap.String("method", "RegisterAsset"),
				zap.Uint64("asset_id", id),
				zap.String("owner", owner),
				zap.Duration("duration", duration),
			)
		}
	}()

	return ls.svc.RegisterAsset(ctx, owner, meta)
}

func (ls *logService) Initiate(ctx context.Context, params InitiateParams) (req *bridge.Request, err error) {
	start := time.Now()

	ls.logger.Info("Initiate started",
		zap.String("service", serviceName),
		zap.String("method", "Initiate"),
		zap.Uint64("asset_id", params.AssetID),
		zap.String("source_owner", params.SourceOwner),
		zap.String("destination_chain", params.DestinationChain),
		zap.Uint8("required_signatures", params.RequiredSignatures),
	)

	defer func() {
		duration := time.Since(start)
		if err != nil {
			ls.logger.Error("Initiate failed",
				zap.String("service", serviceName),
				zap.String("method", "Initiate"),
				zap.Uint64("asset_id", params.AssetID),
				zap.Duration("duration", duration),
				zap.Error(err),
			)
			countError(err)
		} else {
			ls.logger.Info("Initiate completed",
				zap.String("service", serviceName),
				zap.String("method", "Initiate"),
				zap.Uint64("request_id", req.ID),
				zap.Uint64("asset_id", req.AssetID),
				zap.Time("timeout_at", req.TimeoutAt),
				zap.Duration("duration", duration),
			)
		}
	}()

	return ls.svc.Initiate(ctx, params)
}

func (ls *logService) Sign(ctx context.Context, requestID uint64, operator string, approve bool) (req *bridge.Request, err error) {
	start := time.Now()

	defer func() {
		duration := time.Since(start)
		if err != nil {
			ls.logger.Error("Sign failed",
				zap.String("service", serviceName),
				zap.String("method", "Sign"),
				zap.Uint64("request_id", requestID),
				zap.String("operator", operator),
				zap.Duration("duration", duration),
				zap.Error(err),
			)
			countError(err)
		} else {
			ls.logger.Info("Sign completed",
				zap.String("service", serviceName),
				zap.String("method", "Sign"),
				zap.Uint64("request_id", requestID),
				zap.String("operator", operator),
				zap.Bool("approve", approve),
				zap.String("status", string(req.Status)),
				zap.Duration("duration", duration),
			)
		}
	}()

	return ls.svc.Sign(ctx, requestID, operator, approve)
}

func (ls *logService) Execute(ctx context.Context, requestID uint64) (req *bridge.Request, err error) {
	start := time.Now()

	ls.logger.Info("Execute started",
		zap.String("service", serviceName),
		zap.String("method", "Execute"),
		zap.Uint64("request_id", requestID),
	)

	defer func() {
		duration := time.Since(start)
		if err != nil {
			ls.logger.Error("Execute failed",
				zap.String("service", serviceName),
				zap.String("method", "Execute"),
				zap.Uint64("request_id", requestID),
				zap.Duration("duration", duration),
				zap.Error(err),
			)
			countError(err)
		} else {
			ls.logger.Info("Execute completed",
				zap.String("service", serviceName),
				zap.String("method", "Execute"),
				zap.Uint64("request_id", requestID),
				zap.Uint64("destination_asset_id", req.DestinationAssetID),
				zap.String("tx_hash", req.TxHash),
				zap.Duration("duration", duration),
			)
		}
	}()

	return ls.svc.Execute(ctx, requestID)
}

func (ls *logService) Recover(ctx context.Context, requestID uint64, caller string, admin bool, action bridge.RecoveryAction) (req *bridge.Request, err error) {
	start := time.Now()

	defer func() {
		duration := time.Since(start)
		if err != nil {
			ls.logger.Error("Recover failed",
				zap.String("service", serviceName),
				zap.String("method", "Recover"),
				zap.Uint64("request_id", requestID),
				zap.String("action", string(action)),
				zap.Duration("duration", duration),
				zap.Error(err),
			)
			countError(err)
		} else {
			ls.logger.Info("Recover completed",
				zap.String("service", serviceName),
				zap.String("method", "Recover"),
				zap.Uint64("request_id", requestID),
				zap.String("action", string(action)),
				zap.Bool("admin", admin),
				zap.String("status", string(req.Status)),
				zap.Duration("duration", duration),
			)
		}
	}()

	return ls.svc.Recover(ctx, requestID, caller, admin, action)
}

func (ls *logService) BurnBridged(ctx context.Context, destinationAssetID uint64, caller string) (err error) {
	start := time.Now()

	defer func() {
		duration := time.Since(start)
		if err != nil {
			ls.logger.Error("BurnBridged failed",
				zap.String("service", serviceName),
				zap.String("method", "BurnBridged"),
				zap.Uint64("destination_asset_id", destinationAssetID),
				zap.String("caller", caller),
				zap.Duration("duration", duration),
				zap.Error(err),
			)
			countError(err)
		} else {
			ls.logger.Info("BurnBridged completed",
				zap.String("service", serviceName),
				zap.String("method", "BurnBridged"),
				zap.Uint64("destination_asset_id", destinationAssetID),
				zap.String("caller", caller),
				zap.Duration("duration", duration),
			)
		}
	}()

	return ls.svc.BurnBridged(ctx, destinationAssetID, caller)
}

func (ls *logService) Monitor(ctx context.Context, requestID uint64) (*bridge.MonitorInfo, error) {
	return ls.svc.Monitor(ctx, requestID)
}

func (ls *logService) VerifyReceipt(ctx context.Context, txHash string) (*bridge.Receipt, error) {
	return ls.svc.VerifyReceipt(ctx, txHash)
}

func (ls *logService) History(ctx context.Context, owner string) ([]uint64, error) {
	return ls.svc.History(ctx, owner)
}

func (ls *logService) EstimateGas(ctx context.Context, assetID uint64, destinationChain string) (uint64, error) {
	return ls.svc.EstimateGas(ctx, assetID, destinationChain)
}

func (ls *logService) SweepExpired(ctx context.Context) (int, error) {
	return ls.svc.SweepExpired(ctx)
}

func (ls *logService) Info() ProtocolInfo {
	return ls.svc.Info()
}

func (ls *logService) SetPaused(paused bool) {
	ls.svc.SetPaused(paused)
}
