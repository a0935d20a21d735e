package service

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	apperrors "github.com/propchain-labs/bridge-coordinator/pkg/app/errors"
	apphttp "github.com/propchain-labs/bridge-coordinator/pkg/app/http"
	"github.com/propchain-labs/bridge-coordinator/pkg/asset"
	"github.com/propchain-labs/bridge-coordinator/pkg/auth"
	"github.com/propchain-labs/bridge-coordinator/pkg/bridge"
)

// HTTP wraps the Service to provide HTTP endpoints
type HTTP struct {
	service  Service
	admin    *auth.AdminVerifier
	validate *validator.Validate
	logger   *zap.Logger
}

// RegisterRoutes registers the bridge endpoints on the given chi router.
// Mutations authenticate the caller with an EIP-191 signature over a message
// supplied in the body; execute is deliberately open, and recover also
// accepts an admin bearer token for assisted recovery. Asset registration and
// the pause switch require the admin token.
func RegisterRoutes(r chi.Router, admin *auth.AdminVerifier, service Service, logger *zap.Logger) {
	h := &HTTP{
		service:  service,
		admin:    admin,
		validate: validator.New(),
		logger:   logger,
	}

	r.Route("/bridge", func(r chi.Router) {
		r.Post("/requests", apphttp.HandleError(h.initiate))
		r.Get("/requests/{id}", apphttp.HandleError(h.monitor))
		r.Post("/requests/{id}/signatures", apphttp.HandleError(h.sign))
		r.Post("/requests/{id}/execute", apphttp.HandleError(h.execute))
		r.Post("/requests/{id}/recover", apphttp.HandleError(h.recover))
		r.Get("/history/{owner}", apphttp.HandleError(h.history))
		r.Get("/estimate", apphttp.HandleError(h.estimate))
		r.Get("/config", apphttp.HandleError(h.info))

		r.Group(func(r chi.Router) {
			r.Use(admin.Middleware)
			r.Post("/pause", apphttp.HandleError(h.pause))
		})
	})

	r.Group(func(r chi.Router) {
		r.Use(admin.Middleware)
		r.Post("/assets", apphttp.HandleError(h.registerAsset))
	})
	r.Post("/bridged-assets/{id}/burn", apphttp.HandleError(h.burnBridged))
	r.Get("/receipts/{hash}", apphttp.HandleError(h.verifyReceipt))
}

type signedPayload struct {
	Message   string `json:"message" validate:"required"`
	Signature string `json:"signature" validate:"required"`
}

// caller recovers and normalizes the signer's address.
func (h *HTTP) caller(p signedPayload) (string, error) {
	addr, err := auth.VerifyEIP191Signature(p.Message, p.Signature)
	if err != nil {
		return "", apperrors.UnAuthorizedError(err, "invalid signature")
	}
	return auth.NormalizeAddress(addr.Hex()), nil
}

type initiateRequest struct {
	signedPayload
	AssetID            uint64 `json:"asset_id" validate:"required"`
	DestinationChain   string `json:"destination_chain" validate:"required"`
	Recipient          string `json:"recipient" validate:"required"`
	RequiredSignatures uint8  `json:"required_signatures" validate:"required"`
	TimeoutBlocks      uint64 `json:"timeout_blocks"`
}

type requestResponse struct {
	RequestID uint64        `json:"request_id"`
	Status    bridge.Status `json:"status"`
	TimeoutAt string        `json:"timeout_at"`
}

func (h *HTTP) initiate(w http.ResponseWriter, r *http.Request) error {
	var body initiateRequest
	if err := h.decode(r, &body); err != nil {
		return err
	}
	if !auth.ValidateEVMAddress(body.Recipient) {
		return apperrors.BadRequestError(nil, "invalid recipient address")
	}
	owner, err := h.caller(body.signedPayload)
	if err != nil {
		return err
	}

	req, err := h.service.Initiate(r.Context(), InitiateParams{
		AssetID:            body.AssetID,
		SourceOwner:        owner,
		DestinationChain:   body.DestinationChain,
		Recipient:          auth.NormalizeAddress(body.Recipient),
		RequiredSignatures: body.RequiredSignatures,
		TimeoutBlocks:      body.TimeoutBlocks,
	})
	if err != nil {
		return err
	}

	apphttp.WriteJSON(w, http.StatusCreated, requestResponse{
		RequestID: req.ID,
		Status:    req.Status,
		TimeoutAt: req.TimeoutAt.UTC().Format(time.RFC3339),
	})
	return nil
}

type signRequest struct {
	signedPayload
	Approve bool `json:"approve"`
}

type signResponse struct {
	RequestID           uint64        `json:"request_id"`
	Status              bridge.Status `json:"status"`
	SignaturesCollected int           `json:"signatures_collected"`
	SignaturesRequired  uint8         `json:"signatures_required"`
}

func (h *HTTP) sign(w http.ResponseWriter, r *http.Request) error {
	id, err := requestID(r)
	if err != nil {
		return err
	}
	var body signRequest
	if err := h.decode(r, &body); err != nil {
		return err
	}
	operator, err := h.caller(body.signedPayload)
	if err != nil {
		return err
	}

	req, err := h.service.Sign(r.Context(), id, operator, body.Approve)
	if err != nil {
		return err
	}

	apphttp.WriteJSON(w, http.StatusOK, signResponse{
		RequestID:           req.ID,
		Status:              req.Status,
		SignaturesCollected: req.ApprovalCount(),
		SignaturesRequired:  req.RequiredSignatures,
	})
	return nil
}

type executeResponse struct {
	RequestID          uint64        `json:"request_id"`
	Status             bridge.Status `json:"status"`
	ReceiptID          string        `json:"receipt_id"`
	TxHash             string        `json:"tx_hash"`
	DestinationAssetID uint64        `json:"destination_asset_id"`
}

func (h *HTTP) execute(w http.ResponseWriter, r *http.Request) error {
	id, err := requestID(r)
	if err != nil {
		return err
	}

	req, err := h.service.Execute(r.Context(), id)
	if err != nil {
		return err
	}

	apphttp.WriteJSON(w, http.StatusOK, executeResponse{
		RequestID:          req.ID,
		Status:             req.Status,
		ReceiptID:          req.ReceiptID,
		TxHash:             req.TxHash,
		DestinationAssetID: req.DestinationAssetID,
	})
	return nil
}

type recoverRequest struct {
	Action    string `json:"action" validate:"required"`
	Message   string `json:"message"`
	Signature string `json:"signature"`
}

func (h *HTTP) recover(w http.ResponseWriter, r *http.Request) error {
	id, err := requestID(r)
	if err != nil {
		return err
	}
	var body recoverRequest
	if err := h.decode(r, &body); err != nil {
		return err
	}

	// Admin bearer token or owner signature, in that order.
	caller := ""
	admin := false
	if token := bearerToken(r); token != "" {
		subject, err := h.admin.VerifyToken(token)
		if err != nil {
			return apperrors.UnAuthorizedError(err, "invalid admin token")
		}
		caller = subject
		admin = true
	} else {
		caller, err = h.caller(signedPayload{Message: body.Message, Signature: body.Signature})
		if err != nil {
			return err
		}
	}

	req, err := h.service.Recover(r.Context(), id, caller, admin, bridge.RecoveryAction(body.Action))
	if err != nil {
		return err
	}

	apphttp.WriteJSON(w, http.StatusOK, requestResponse{
		RequestID: req.ID,
		Status:    req.Status,
		TimeoutAt: req.TimeoutAt.UTC().Format(time.RFC3339),
	})
	return nil
}

func (h *HTTP) monitor(w http.ResponseWriter, r *http.Request) error {
	id, err := requestID(r)
	if err != nil {
		return err
	}

	info, err := h.service.Monitor(r.Context(), id)
	if err != nil {
		return err
	}
	apphttp.WriteJSON(w, http.StatusOK, info)
	return nil
}

type historyResponse struct {
	Owner      string   `json:"owner"`
	RequestIDs []uint64 `json:"request_ids"`
}

func (h *HTTP) history(w http.ResponseWriter, r *http.Request) error {
	owner := auth.NormalizeAddress(chi.URLParam(r, "owner"))
	if !auth.ValidateEVMAddress(owner) {
		return apperrors.BadRequestError(nil, "invalid owner address")
	}

	ids, err := h.service.History(r.Context(), owner)
	if err != nil {
		return err
	}
	apphttp.WriteJSON(w, http.StatusOK, historyResponse{Owner: owner, RequestIDs: ids})
	return nil
}

type estimateResponse struct {
	AssetID          uint64 `json:"asset_id"`
	DestinationChain string `json:"destination_chain"`
	EstimatedGas     uint64 `json:"estimated_gas"`
}

func (h *HTTP) estimate(w http.ResponseWriter, r *http.Request) error {
	assetID, err := strconv.ParseUint(r.URL.Query().Get("asset_id"), 10, 64)
	if err != nil {
		return apperrors.BadRequestError(err, "invalid asset_id")
	}
	chain := r.URL.Query().Get("destination_chain")
	if chain == "" {
		return apperrors.BadRequestError(nil, "destination_chain is required")
	}

	gas, err := h.service.EstimateGas(r.Context(), assetID, chain)
	if err != nil {
		return err
	}
	apphttp.WriteJSON(w, http.StatusOK, estimateResponse{
		AssetID:          assetID,
		DestinationChain: chain,
		EstimatedGas:     gas,
	})
	return nil
}

type registerAssetRequest struct {
	Owner    string         `json:"owner" validate:"required"`
	Metadata asset.Metadata `json:"metadata"`
}

type registerAssetResponse struct {
	AssetID uint64 `json:"asset_id"`
	Owner   string `json:"owner"`
}

func (h *HTTP) registerAsset(w http.ResponseWriter, r *http.Request) error {
	var body registerAssetRequest
	if err := h.decode(r, &body); err != nil {
		return err
	}
	if !auth.ValidateEVMAddress(body.Owner) {
		return apperrors.BadRequestError(nil, "invalid owner address")
	}
	owner := auth.NormalizeAddress(body.Owner)

	id, err := h.service.RegisterAsset(r.Context(), owner, body.Metadata)
	if err != nil {
		return err
	}
	apphttp.WriteJSON(w, http.StatusCreated, registerAssetResponse{AssetID: id, Owner: owner})
	return nil
}

func (h *HTTP) burnBridged(w http.ResponseWriter, r *http.Request) error {
	id, err := strconv.ParseUint(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		return apperrors.BadRequestError(err, "invalid bridged asset id")
	}
	var body signedPayload
	if err := h.decode(r, &body); err != nil {
		return err
	}
	caller, err := h.caller(body)
	if err != nil {
		return err
	}

	if err := h.service.BurnBridged(r.Context(), id, caller); err != nil {
		return err
	}
	apphttp.WriteJSON(w, http.StatusOK, map[string]any{
		"destination_asset_id": id,
		"burned":               true,
	})
	return nil
}

func (h *HTTP) verifyReceipt(w http.ResponseWriter, r *http.Request) error {
	hash := chi.URLParam(r, "hash")
	if !strings.HasPrefix(hash, "0x") {
		return apperrors.BadRequestError(nil, "invalid transaction hash")
	}

	receipt, err := h.service.VerifyReceipt(r.Context(), hash)
	if err != nil {
		return err
	}
	apphttp.WriteJSON(w, http.StatusOK, receipt)
	return nil
}

func (h *HTTP) info(w http.ResponseWriter, r *http.Request) error {
	apphttp.WriteJSON(w, http.StatusOK, h.service.Info())
	return nil
}

type pauseRequest struct {
	Paused bool `json:"paused"`
}

func (h *HTTP) pause(w http.ResponseWriter, r *http.Request) error {
	var body pauseRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		return apperrors.BadRequestError(err, "invalid JSON")
	}
	h.service.SetPaused(body.Paused)
	apphttp.WriteJSON(w, http.StatusOK, map[string]bool{"paused": body.Paused})
	return nil
}

func (h *HTTP) decode(r *http.Request, dst any) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return apperrors.BadRequestError(err, "invalid JSON")
	}
	if err := h.validate.Struct(dst); err != nil {
		return apperrors.BadRequestError(err, "invalid request: "+err.Error())
	}
	return nil
}

func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if !strings.HasPrefix(header, "Bearer ") {
		return ""
	}
	return strings.TrimPrefix(header, "Bearer ")
}

func requestID(r *http.Request) (uint64, error) {
	id, err := strconv.ParseUint(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		return 0, apperrors.BadRequestError(err, "invalid request id")
	}
	return id, nil
}
