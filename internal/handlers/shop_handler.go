package handlers

import (
	"log/slog"
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"

	"github.com/Lixing-Zhang/shop-admin/backend/internal/service"
	"github.com/Lixing-Zhang/shop-admin/backend/internal/upload"
)

// singleUploader saves one uploaded file from a multipart request
type singleUploader interface {
	Single(r *http.Request, field string) (*upload.File, url.Values, error)
}

// ShopHandler handles shop-related HTTP requests
type ShopHandler struct {
	service  *service.ShopService
	uploader singleUploader
	logger   *slog.Logger
}

// NewShopHandler creates a new shop handler
func NewShopHandler(service *service.ShopService, uploader singleUploader, logger *slog.Logger) *ShopHandler {
	return &ShopHandler{
		service:  service,
		uploader: uploader,
		logger:   logger,
	}
}

// Routes registers the shop endpoints under r. write wraps endpoints that
// modify data.
func (h *ShopHandler) Routes(r chi.Router, write func(http.Handler) http.Handler) {
	r.Get("/shops", h.ListShops)
	r.With(write).Post("/shops/{id}", h.UploadImage)
}

// ListShops handles GET /api/shops
// Returns the name and FSSAI number of every shop as a bare array
func (h *ShopHandler) ListShops(w http.ResponseWriter, r *http.Request) {
	shops, err := h.service.ListShops(r.Context())
	if err != nil {
		WriteAppError(w, r, err, h.logger)
		return
	}

	WriteJSON(w, http.StatusOK, shops, h.logger)
}

// UploadImage handles POST /api/shops/{id}
// The multipart "image" file is written before the shop is looked up
func (h *ShopHandler) UploadImage(w http.ResponseWriter, r *http.Request) {
	shopID := chi.URLParam(r, "id")

	file, _, err := h.uploader.Single(r, "image")
	if err != nil {
		WriteAppError(w, r, err, h.logger)
		return
	}

	shop, err := h.service.AttachImage(r.Context(), shopID, file)
	if err != nil {
		WriteAppError(w, r, err, h.logger)
		return
	}

	WriteJSON(w, http.StatusOK, shop, h.logger)
	h.logger.Info("shop image updated", "shopId", shopID, "imageUrl", shop.ImageURL)
}
