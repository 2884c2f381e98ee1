package handlers

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/Lixing-Zhang/shop-admin/backend/internal/models"
	"github.com/Lixing-Zhang/shop-admin/backend/internal/service"
	"github.com/Lixing-Zhang/shop-admin/backend/internal/validation"
)

// PackageHandler handles delivery package settings requests
type PackageHandler struct {
	service *service.PackageService
	logger  *slog.Logger
}

// NewPackageHandler creates a new package handler
func NewPackageHandler(service *service.PackageService, logger *slog.Logger) *PackageHandler {
	return &PackageHandler{
		service: service,
		logger:  logger,
	}
}

// Routes registers the package settings endpoints under r. write wraps
// endpoints that modify data.
func (h *PackageHandler) Routes(r chi.Router, write func(http.Handler) http.Handler) {
	r.Route("/package-settings", func(r chi.Router) {
		r.Get("/", h.List)
		r.Get("/{id}", h.Get)
		r.Group(func(r chi.Router) {
			r.Use(write)
			r.Post("/", h.Create)
			r.Put("/{id}", h.Update)
			r.Delete("/{id}", h.Delete)
		})
	})
}

// Create handles POST /api/package-settings
func (h *PackageHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req models.PackageSettingsInput
	if err := decodeJSON(w, r, &req); err != nil {
		h.logger.Warn("failed to decode package settings", "error", err)
		WriteError(w, http.StatusBadRequest, validation.MsgInvalidRequestBody, h.logger)
		return
	}

	settings, err := h.service.Create(r.Context(), req)
	if err != nil {
		WriteAppError(w, r, err, h.logger)
		return
	}

	WriteData(w, http.StatusCreated, settings, h.logger)
	h.logger.Info("package settings created", "id", settings.ID.Hex(), "ranges", len(settings.OrderValueRanges))
}

// List handles GET /api/package-settings
func (h *PackageHandler) List(w http.ResponseWriter, r *http.Request) {
	settings, err := h.service.List(r.Context())
	if err != nil {
		WriteAppError(w, r, err, h.logger)
		return
	}

	WriteData(w, http.StatusOK, settings, h.logger)
}

// Get handles GET /api/package-settings/{id}
func (h *PackageHandler) Get(w http.ResponseWriter, r *http.Request) {
	settings, err := h.service.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		WriteAppError(w, r, err, h.logger)
		return
	}

	WriteData(w, http.StatusOK, settings, h.logger)
}

// Update handles PUT /api/package-settings/{id}
// Only the fields present in the body are changed
func (h *PackageHandler) Update(w http.ResponseWriter, r *http.Request) {
	var patch models.PackageSettingsPatch
	if err := decodeJSON(w, r, &patch); err != nil {
		h.logger.Warn("failed to decode package settings update", "error", err)
		WriteError(w, http.StatusBadRequest, validation.MsgInvalidRequestBody, h.logger)
		return
	}

	settings, err := h.service.Update(r.Context(), chi.URLParam(r, "id"), patch)
	if err != nil {
		WriteAppError(w, r, err, h.logger)
		return
	}

	WriteData(w, http.StatusOK, settings, h.logger)
}

// Delete handles DELETE /api/package-settings/{id}
func (h *PackageHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.service.Delete(r.Context(), id); err != nil {
		WriteAppError(w, r, err, h.logger)
		return
	}

	WriteJSON(w, http.StatusOK, Envelope{Success: true, Message: "Settings deleted successfully"}, h.logger)
	h.logger.Info("package settings deleted", "id", id)
}
