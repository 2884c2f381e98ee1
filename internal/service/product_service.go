package service

import (
	"context"
	"log/slog"
	"strconv"
	"strings"

	"github.com/Lixing-Zhang/shop-admin/backend/internal/apperrors"
	"github.com/Lixing-Zhang/shop-admin/backend/internal/models"
	"github.com/Lixing-Zhang/shop-admin/backend/internal/repository"
	"github.com/Lixing-Zhang/shop-admin/backend/internal/upload"
	"github.com/Lixing-Zhang/shop-admin/backend/internal/validation"
)

// FileRemover deletes files written for a request
type FileRemover interface {
	Remove(files ...upload.File)
}

// ProductService handles business logic for products
type ProductService struct {
	repo    repository.ProductRepository
	remover FileRemover
	log     *slog.Logger
}

// NewProductService creates a new product service
func NewProductService(repo repository.ProductRepository, remover FileRemover, log *slog.Logger) *ProductService {
	return &ProductService{
		repo:    repo,
		remover: remover,
		log:     log,
	}
}

// Create stores a product whose images were saved as files. When anything
// fails every file of the request is removed.
func (s *ProductService) Create(ctx context.Context, in models.ProductInput, files []upload.File) (product *models.Product, err error) {
	defer func() {
		if err != nil && len(files) > 0 {
			s.log.Info("removing uploaded files of failed product", "count", len(files), "error", err)
			s.remover.Remove(files...)
		}
	}()

	in.Images = make([]string, 0, len(files))
	for _, f := range files {
		in.Images = append(in.Images, f.URL)
	}

	if err := validation.ProductCreate(in).Err(); err != nil {
		return nil, err
	}

	product, err = buildProduct(in)
	if err != nil {
		return nil, err
	}

	if err := s.repo.Create(ctx, product); err != nil {
		return nil, err
	}
	return product, nil
}

// List returns all products
func (s *ProductService) List(ctx context.Context) ([]models.Product, error) {
	return s.repo.List(ctx)
}

func buildProduct(in models.ProductInput) (*models.Product, error) {
	servings, err := strconv.Atoi(in.ServingPerContainer)
	if err != nil {
		return nil, apperrors.Validation("Servings per container must be a whole number")
	}
	prepTime, err := strconv.Atoi(in.PreparationTime)
	if err != nil {
		return nil, apperrors.Validation("Preparation time must be a whole number")
	}

	inStock := true
	if in.InStock != "" {
		inStock, err = strconv.ParseBool(in.InStock)
		if err != nil {
			return nil, apperrors.Validation("inStock must be true or false")
		}
	}

	return &models.Product{
		Name:           strings.TrimSpace(in.Name),
		Description:    in.Description,
		Images:         in.Images,
		InStock:        inStock,
		FoodPreference: in.FoodPreference,
		ServingInformation: models.ServingInformation{
			ServingSize:         in.ServingSize,
			ServingPerContainer: servings,
			PreparationTime:     prepTime,
		},
		Notes: strings.TrimSpace(in.Notes),
	}, nil
}
