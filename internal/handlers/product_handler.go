package handlers

import (
	"log/slog"
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"

	"github.com/Lixing-Zhang/shop-admin/backend/internal/models"
	"github.com/Lixing-Zhang/shop-admin/backend/internal/service"
	"github.com/Lixing-Zhang/shop-admin/backend/internal/upload"
)

// MaxProductImages is the number of images a product may be created with
const MaxProductImages = 5

// multiUploader saves several uploaded files from a multipart request
type multiUploader interface {
	Multiple(r *http.Request, field string, limit int) ([]upload.File, url.Values, error)
}

// ProductHandler handles product-related HTTP requests
type ProductHandler struct {
	service  *service.ProductService
	uploader multiUploader
	logger   *slog.Logger
}

// NewProductHandler creates a new product handler
func NewProductHandler(service *service.ProductService, uploader multiUploader, logger *slog.Logger) *ProductHandler {
	return &ProductHandler{
		service:  service,
		uploader: uploader,
		logger:   logger,
	}
}

// Routes registers the product endpoints under r. write wraps endpoints
// that modify data.
func (h *ProductHandler) Routes(r chi.Router, write func(http.Handler) http.Handler) {
	r.Get("/products", h.ListProducts)
	r.With(write).Post("/products", h.CreateProduct)
}

// CreateProduct handles POST /api/products
// Accepts up to five "images" files plus the product form fields
func (h *ProductHandler) CreateProduct(w http.ResponseWriter, r *http.Request) {
	files, values, err := h.uploader.Multiple(r, "images", MaxProductImages)
	if err != nil {
		WriteAppError(w, r, err, h.logger)
		return
	}

	input := models.ProductInput{
		Name:                values.Get("name"),
		Description:         values.Get("description"),
		FoodPreference:      values.Get("foodPreference"),
		ServingSize:         values.Get("servingSize"),
		ServingPerContainer: values.Get("servingPerContainer"),
		PreparationTime:     values.Get("preparationTime"),
		InStock:             values.Get("inStock"),
		Notes:               values.Get("notes"),
	}

	product, err := h.service.Create(r.Context(), input, files)
	if err != nil {
		WriteAppError(w, r, err, h.logger)
		return
	}

	WriteData(w, http.StatusCreated, product, h.logger)
	h.logger.Info("product created", "productId", product.ID.Hex(), "images", len(product.Images))
}

// ListProducts handles GET /api/products
func (h *ProductHandler) ListProducts(w http.ResponseWriter, r *http.Request) {
	products, err := h.service.List(r.Context())
	if err != nil {
		WriteAppError(w, r, err, h.logger)
		return
	}

	WriteData(w, http.StatusOK, products, h.logger)
}
