package handler

import (
	"net/http"

	"stowaway/internal/units/service"
	httputil "stowaway/pkg/http"
	"stowaway/pkg/identity"
	"stowaway/pkg/logger"
	"stowaway/pkg/model"

	"github.com/julienschmidt/httprouter"
)

type StorageUnitHandler struct {
	service service.StorageUnitService
	log     *logger.Logger
}

func NewStorageUnitHandler(service service.StorageUnitService, log *logger.Logger) *StorageUnitHandler {
	return &StorageUnitHandler{
		service: service,
		log:     log,
	}
}

// List serves the public catalog. ?active=true narrows it to bookable units.
func (h *StorageUnitHandler) List(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	activeOnly, err := httputil.QueryBool(r, "active")
	if err != nil {
		h.writeError(w, "List", err)
		return
	}

	var units []*model.StorageUnit
	if activeOnly {
		units, err = h.service.ListActive(r.Context())
	} else {
		units, err = h.service.ListAll(r.Context())
	}
	if err != nil {
		h.writeError(w, "List", err)
		return
	}

	if err := httputil.WriteList(w, units); err != nil {
		h.log.Error("failed to write list response", "handler", "List", "operation", "WriteList", "error", err)
	}
}

func (h *StorageUnitHandler) GetByID(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	details, err := h.service.GetDetails(r.Context(), ps.ByName("id"), identity.FromContext(r.Context()))
	if err != nil {
		h.writeError(w, "GetByID", err)
		return
	}

	if err := httputil.WriteSuccess(w, details); err != nil {
		h.log.Error("failed to write success response", "handler", "GetByID", "operation", "WriteSuccess", "error", err)
	}
}

func (h *StorageUnitHandler) Create(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	requester, err := identity.RequireAdmin(r.Context())
	if err != nil {
		h.writeError(w, "Create", err)
		return
	}

	var input model.StorageUnitInput
	if err := httputil.DecodeJSON(r, &input); err != nil {
		h.writeError(w, "Create", err)
		return
	}

	unit, err := h.service.Create(r.Context(), &input, requester)
	if err != nil {
		h.writeError(w, "Create", err)
		return
	}

	if err := httputil.WriteCreated(w, unit); err != nil {
		h.log.Error("failed to write created response", "handler", "Create", "operation", "WriteCreated", "error", err)
	}
}

func (h *StorageUnitHandler) Update(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	requester, err := identity.RequireAdmin(r.Context())
	if err != nil {
		h.writeError(w, "Update", err)
		return
	}

	var input model.StorageUnitInput
	if err := httputil.DecodeJSON(r, &input); err != nil {
		h.writeError(w, "Update", err)
		return
	}

	unit, err := h.service.Update(r.Context(), ps.ByName("id"), &input, requester)
	if err != nil {
		h.writeError(w, "Update", err)
		return
	}

	if err := httputil.WriteSuccess(w, unit); err != nil {
		h.log.Error("failed to write success response", "handler", "Update", "operation", "WriteSuccess", "error", err)
	}
}

func (h *StorageUnitHandler) Delete(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	requester, err := identity.RequireAdmin(r.Context())
	if err != nil {
		h.writeError(w, "Delete", err)
		return
	}

	if err := h.service.Delete(r.Context(), ps.ByName("id"), requester); err != nil {
		h.writeError(w, "Delete", err)
		return
	}

	httputil.WriteNoContent(w)
}

func (h *StorageUnitHandler) writeError(w http.ResponseWriter, handler string, err error) {
	if writeErr := httputil.WriteError(w, err); writeErr != nil {
		h.log.Error("failed to write error response", "handler", handler, "operation", "WriteError", "error", writeErr)
	}
}

func (h *StorageUnitHandler) RegisterRoutes(router *httprouter.Router) {
	router.GET("/api/v1/units", h.List)
	router.GET("/api/v1/units/id/:id", h.GetByID)
	router.POST("/api/v1/units", h.Create)
	router.PUT("/api/v1/units/id/:id", h.Update)
	router.DELETE("/api/v1/units/id/:id", h.Delete)
}
