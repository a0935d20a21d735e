package service

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	apperrors "github.com/propchain-labs/bridge-coordinator/pkg/app/errors"
	apphttp "github.com/propchain-labs/bridge-coordinator/pkg/app/http"
	"github.com/propchain-labs/bridge-coordinator/pkg/auth"
)

// HTTP wraps the Service to provide HTTP endpoints
type HTTP struct {
	service Service
	logger  *zap.Logger
}

// RegisterRoutes registers operator registry endpoints on the given chi
// router. Mutations require the admin middleware to be applied by the caller.
func RegisterRoutes(r chi.Router, admin *auth.AdminVerifier, service Service, logger *zap.Logger) {
	h := &HTTP{
		service: service,
		logger:  logger,
	}

	r.Get("/operators", apphttp.HandleError(h.list))
	r.Group(func(r chi.Router) {
		r.Use(admin.Middleware)
		r.Post("/operators/{account}", apphttp.HandleError(h.add))
		r.Delete("/operators/{account}", apphttp.HandleError(h.remove))
	})
}

func (h *HTTP) list(w http.ResponseWriter, r *http.Request) error {
	ops, err := h.service.List(r.Context())
	if err != nil {
		return err
	}
	apphttp.WriteJSON(w, http.StatusOK, ops)
	return nil
}

func (h *HTTP) add(w http.ResponseWriter, r *http.Request) error {
	account := auth.NormalizeAddress(chi.URLParam(r, "account"))
	if !auth.ValidateEVMAddress(account) {
		return apperrors.BadRequestError(nil, "invalid operator account address")
	}

	op, err := h.service.Add(r.Context(), account)
	if err != nil {
		return err
	}
	apphttp.WriteJSON(w, http.StatusCreated, op)
	return nil
}

func (h *HTTP) remove(w http.ResponseWriter, r *http.Request) error {
	account := auth.NormalizeAddress(chi.URLParam(r, "account"))
	if err := h.service.Remove(r.Context(), account); err != nil {
		return err
	}
	w.WriteHeader(http.StatusNoContent)
	return nil
}
