package handler

import (
	"net/http"

	"stowaway/internal/reservations/service"
	httputil "stowaway/pkg/http"
	"stowaway/pkg/identity"
	"stowaway/pkg/logger"
	"stowaway/pkg/model"

	"github.com/julienschmidt/httprouter"
)

type ReservationHandler struct {
	service service.ReservationService
	log     *logger.Logger
}

func NewReservationHandler(service service.ReservationService, log *logger.Logger) *ReservationHandler {
	return &ReservationHandler{
		service: service,
		log:     log,
	}
}

func (h *ReservationHandler) Create(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	requester, err := identity.Require(r.Context())
	if err != nil {
		h.writeError(w, "Create", err)
		return
	}

	var req model.ReservationRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		h.writeError(w, "Create", err)
		return
	}

	reservation, err := h.service.Create(r.Context(), &req, requester)
	if err != nil {
		h.writeError(w, "Create", err)
		return
	}

	if err := httputil.WriteCreated(w, reservation); err != nil {
		h.log.Error("failed to write created response", "handler", "Create", "operation", "WriteCreated", "error", err)
	}
}

func (h *ReservationHandler) ListMine(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	requester, err := identity.Require(r.Context())
	if err != nil {
		h.writeError(w, "ListMine", err)
		return
	}

	reservations, err := h.service.ListMine(r.Context(), requester)
	if err != nil {
		h.writeError(w, "ListMine", err)
		return
	}

	if err := httputil.WriteList(w, reservations); err != nil {
		h.log.Error("failed to write list response", "handler", "ListMine", "operation", "WriteList", "error", err)
	}
}

func (h *ReservationHandler) ListAll(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	requester, err := identity.RequireAdmin(r.Context())
	if err != nil {
		h.writeError(w, "ListAll", err)
		return
	}

	reservations, err := h.service.ListAll(r.Context(), requester)
	if err != nil {
		h.writeError(w, "ListAll", err)
		return
	}

	if err := httputil.WriteList(w, reservations); err != nil {
		h.log.Error("failed to write list response", "handler", "ListAll", "operation", "WriteList", "error", err)
	}
}

func (h *ReservationHandler) GetByID(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	requester, err := identity.Require(r.Context())
	if err != nil {
		h.writeError(w, "GetByID", err)
		return
	}

	details, err := h.service.GetDetails(r.Context(), ps.ByName("id"), requester)
	if err != nil {
		h.writeError(w, "GetByID", err)
		return
	}

	if err := httputil.WriteSuccess(w, details); err != nil {
		h.log.Error("failed to write success response", "handler", "GetByID", "operation", "WriteSuccess", "error", err)
	}
}

func (h *ReservationHandler) Edit(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	requester, err := identity.Require(r.Context())
	if err != nil {
		h.writeError(w, "Edit", err)
		return
	}

	var req model.ReservationRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		h.writeError(w, "Edit", err)
		return
	}

	reservation, err := h.service.Edit(r.Context(), ps.ByName("id"), &req, requester)
	if err != nil {
		h.writeError(w, "Edit", err)
		return
	}

	if err := httputil.WriteSuccess(w, reservation); err != nil {
		h.log.Error("failed to write success response", "handler", "Edit", "operation", "WriteSuccess", "error", err)
	}
}

func (h *ReservationHandler) Cancel(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	requester, err := identity.Require(r.Context())
	if err != nil {
		h.writeError(w, "Cancel", err)
		return
	}

	if err := h.service.Cancel(r.Context(), ps.ByName("id"), requester); err != nil {
		h.writeError(w, "Cancel", err)
		return
	}

	httputil.WriteNoContent(w)
}

func (h *ReservationHandler) writeError(w http.ResponseWriter, handler string, err error) {
	if writeErr := httputil.WriteError(w, err); writeErr != nil {
		h.log.Error("failed to write error response", "handler", handler, "operation", "WriteError", "error", writeErr)
	}
}

func (h *ReservationHandler) RegisterRoutes(router *httprouter.Router) {
	router.POST("/api/v1/reservations", h.Create)
	router.GET("/api/v1/reservations", h.ListAll)
	router.GET("/api/v1/reservations/mine", h.ListMine)
	router.GET("/api/v1/reservations/id/:id", h.GetByID)
	router.PUT("/api/v1/reservations/id/:id", h.Edit)
	router.DELETE("/api/v1/reservations/id/:id", h.Cancel)
}
