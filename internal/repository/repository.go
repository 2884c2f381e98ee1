package repository

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/Lixing-Zhang/shop-admin/backend/internal/models"
)

var (
	ErrShopNotFound    = errors.New("shop not found")
	ErrPackageNotFound = errors.New("package settings not found")
)

// ShopRepository defines the interface for shop data access
type ShopRepository interface {
	ListSummaries(ctx context.Context) ([]models.ShopSummary, error)
	GetByID(ctx context.Context, id string) (*models.Shop, error)
	Save(ctx context.Context, shop *models.Shop) error
}

// PackageRepository defines the interface for delivery package data access
type PackageRepository interface {
	Create(ctx context.Context, settings *models.PackageSettings) error
	List(ctx context.Context) ([]models.PackageSettings, error)
	GetByID(ctx context.Context, id string) (*models.PackageSettings, error)
	Update(ctx context.Context, id string, patch models.PackageSettingsPatch) (*models.PackageSettings, error)
	Delete(ctx context.Context, id string) error
}

// ProductRepository defines the interface for product data access
type ProductRepository interface {
	Create(ctx context.Context, product *models.Product) error
	List(ctx context.Context) ([]models.Product, error)
}

// parseID converts a hex document id. A malformed id can never match a
// document, so callers report it as not found.
func parseID(id string) (primitive.ObjectID, bool) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, false
	}
	return oid, true
}

// timestamp normalizes t to what a BSON datetime can hold, so a document
// read back compares equal to the one that was written.
func timestamp(t time.Time) time.Time {
	return t.UTC().Truncate(time.Millisecond)
}
