package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/Lixing-Zhang/shop-admin/backend/internal/apperrors"
	"github.com/Lixing-Zhang/shop-admin/backend/internal/models"
	"github.com/Lixing-Zhang/shop-admin/backend/internal/repository"
	"github.com/Lixing-Zhang/shop-admin/backend/internal/upload"
	"github.com/Lixing-Zhang/shop-admin/backend/internal/validation"
)

const msgShopNotFound = "Shop not found"

// ShopService handles business logic for shop profiles
type ShopService struct {
	repo repository.ShopRepository
	log  *slog.Logger
}

// NewShopService creates a new shop service
func NewShopService(repo repository.ShopRepository, log *slog.Logger) *ShopService {
	return &ShopService{
		repo: repo,
		log:  log,
	}
}

// ListShops returns the name and FSSAI number of every shop
func (s *ShopService) ListShops(ctx context.Context) ([]models.ShopSummary, error) {
	return s.repo.ListSummaries(ctx)
}

// AttachImage points the shop's imageUrl at an uploaded file.
//
// The file is already on disk when this runs. If the shop does not exist the
// file is left where it is and no document references it.
func (s *ShopService) AttachImage(ctx context.Context, id string, file *upload.File) (*models.Shop, error) {
	shop, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrShopNotFound) {
			if file != nil {
				s.log.Warn("image uploaded for unknown shop", "shopId", id, "path", file.Path)
			}
			return nil, apperrors.NotFound(msgShopNotFound)
		}
		return nil, err
	}

	if file == nil {
		return nil, apperrors.Validation(validation.MsgShopImageRequired)
	}

	shop.ImageURL = file.URL
	if err := s.repo.Save(ctx, shop); err != nil {
		if errors.Is(err, repository.ErrShopNotFound) {
			return nil, apperrors.NotFound(msgShopNotFound)
		}
		return nil, fmt.Errorf("failed to attach image to shop %s: %w", id, err)
	}

	return shop, nil
}
