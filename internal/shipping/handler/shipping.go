package handler

import (
	"net/http"

	"stowaway/internal/shipping/service"
	httputil "stowaway/pkg/http"
	"stowaway/pkg/logger"
	"stowaway/pkg/model"

	"github.com/julienschmidt/httprouter"
)

type ShippingHandler struct {
	service service.ShippingService
	log     *logger.Logger
}

func NewShippingHandler(service service.ShippingService, log *logger.Logger) *ShippingHandler {
	return &ShippingHandler{
		service: service,
		log:     log,
	}
}

func (h *ShippingHandler) Estimate(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req model.ShippingEstimateRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		h.writeError(w, "Estimate", err)
		return
	}

	estimate, err := h.service.Estimate(r.Context(), &req)
	if err != nil {
		h.writeError(w, "Estimate", err)
		return
	}

	if err := httputil.WriteSuccess(w, estimate); err != nil {
		h.log.Error("failed to write success response", "handler", "Estimate", "operation", "WriteSuccess", "error", err)
	}
}

func (h *ShippingHandler) writeError(w http.ResponseWriter, handler string, err error) {
	if writeErr := httputil.WriteError(w, err); writeErr != nil {
		h.log.Error("failed to write error response", "handler", handler, "operation", "WriteError", "error", writeErr)
	}
}

func (h *ShippingHandler) RegisterRoutes(router *httprouter.Router) {
	router.POST("/api/v1/shipping/estimate", h.Estimate)
}
