package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Lixing-Zhang/shop-admin/backend/internal/apperrors"
	"github.com/Lixing-Zhang/shop-admin/backend/internal/models"
	"github.com/Lixing-Zhang/shop-admin/backend/internal/repository"
	"github.com/Lixing-Zhang/shop-admin/backend/internal/upload"
	"github.com/Lixing-Zhang/shop-admin/backend/internal/validation"
	"github.com/Lixing-Zhang/shop-admin/backend/pkg/logger"
)

type recordingRemover struct {
	removed []upload.File
}

func (r *recordingRemover) Remove(files ...upload.File) {
	r.removed = append(r.removed, files...)
}

type failingProductRepo struct{}

func (failingProductRepo) Create(ctx context.Context, p *models.Product) error {
	return errors.New("write concern timeout")
}

func (failingProductRepo) List(ctx context.Context) ([]models.Product, error) {
	return nil, errors.New("write concern timeout")
}

func fp(v float64) *float64 { return &v }

func TestShopService_AttachImage(t *testing.T) {
	ctx := context.Background()
	repo := repository.NewInMemoryShopRepository()
	shops := repo.Seed(models.Shop{Name: "Spice Route", FssaiNumber: "10020042006181"})
	svc := NewShopService(repo, logger.New("error"))

	file := &upload.File{Filename: "1700000000000.png", URL: "/uploads/1700000000000.png"}

	shop, err := svc.AttachImage(ctx, shops[0].ID.Hex(), file)
	require.NoError(t, err)
	assert.Equal(t, "/uploads/1700000000000.png", shop.ImageURL)
	assert.Equal(t, "Spice Route", shop.Name)

	stored, err := repo.GetByID(ctx, shops[0].ID.Hex())
	require.NoError(t, err)
	assert.Equal(t, file.URL, stored.ImageURL)

	_, err = svc.AttachImage(ctx, "65a1b2c3d4e5f60718293a4b", file)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
	assert.Equal(t, "Shop not found", apperrors.Message(err))

	_, err = svc.AttachImage(ctx, shops[0].ID.Hex(), nil)
	assert.ErrorIs(t, err, apperrors.ErrValidation)
	assert.Equal(t, validation.MsgShopImageRequired, apperrors.Message(err))
}

func TestShopService_ListShops(t *testing.T) {
	repo := repository.NewInMemoryShopRepository(
		models.Shop{Name: "A", FssaiNumber: "1", ImageURL: "/uploads/a.png"},
		models.Shop{Name: "B", FssaiNumber: "2"},
	)
	svc := NewShopService(repo, logger.New("error"))

	shops, err := svc.ListShops(context.Background())
	require.NoError(t, err)
	require.Len(t, shops, 2)
	assert.Equal(t, "A", shops[0].Name)
	assert.Equal(t, "2", shops[1].FssaiNumber)
}

func TestPackageService_Lifecycle(t *testing.T) {
	ctx := context.Background()
	svc := NewPackageService(repository.NewInMemoryPackageRepository(), logger.New("error"))

	created, err := svc.Create(ctx, models.PackageSettingsInput{
		DeliveryTime:       fp(30),
		DeliveryRadius:     fp(5),
		FreeDeliveryRadius: fp(1),
		OrderValueRanges: []models.OrderValueRangeInput{
			{MinOrderValue: fp(0), MaxOrderValue: fp(250), DeliveryCharge: fp(25)},
		},
	})
	require.NoError(t, err)
	id := created.ID.Hex()

	got, err := svc.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, created.OrderValueRanges, got.OrderValueRanges)

	updated, err := svc.Update(ctx, id, models.PackageSettingsPatch{FreeDeliveryRadius: fp(3)})
	require.NoError(t, err)
	assert.Equal(t, float64(3), updated.FreeDeliveryRadius)

	_, err = svc.Update(ctx, id, models.PackageSettingsPatch{
		OrderValueRanges: []models.OrderValueRangeInput{{MinOrderValue: fp(10), MaxOrderValue: fp(10), DeliveryCharge: fp(0)}},
	})
	assert.ErrorIs(t, err, apperrors.ErrValidation)

	require.NoError(t, svc.Delete(ctx, id))
	err = svc.Delete(ctx, id)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
	assert.Equal(t, "Settings not found", apperrors.Message(err))

	_, err = svc.Get(ctx, id)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)

	_, err = svc.Update(ctx, id, models.PackageSettingsPatch{DeliveryTime: fp(1)})
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestPackageService_CreateRejectsInvalid(t *testing.T) {
	repo := repository.NewInMemoryPackageRepository()
	svc := NewPackageService(repo, logger.New("error"))

	_, err := svc.Create(context.Background(), models.PackageSettingsInput{
		DeliveryTime:       fp(0),
		DeliveryRadius:     fp(5),
		FreeDeliveryRadius: fp(1),
		OrderValueRanges:   []models.OrderValueRangeInput{},
	})
	assert.ErrorIs(t, err, apperrors.ErrValidation)
	assert.Equal(t, validation.MsgAllFieldsRequired, apperrors.Message(err))

	all, err := repo.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, all)
}

func productInput() models.ProductInput {
	return models.ProductInput{
		Name:                "  Chicken Biryani ",
		Description:         "Dum cooked rice",
		FoodPreference:      models.NonVegetarian,
		ServingSize:         "500g",
		ServingPerContainer: "2",
		PreparationTime:     "35",
		Notes:               " spicy ",
	}
}

func productFiles() []upload.File {
	return []upload.File{
		{Filename: "1-a.jpg", Path: "uploads/1-a.jpg", URL: "/uploads/1-a.jpg"},
		{Filename: "1-b.png", Path: "uploads/1-b.png", URL: "/uploads/1-b.png"},
	}
}

func TestProductService_Create(t *testing.T) {
	repo := repository.NewInMemoryProductRepository()
	remover := &recordingRemover{}
	svc := NewProductService(repo, remover, logger.New("error"))

	product, err := svc.Create(context.Background(), productInput(), productFiles())
	require.NoError(t, err)

	assert.Equal(t, "Chicken Biryani", product.Name)
	assert.Equal(t, "spicy", product.Notes)
	assert.Equal(t, []string{"/uploads/1-a.jpg", "/uploads/1-b.png"}, product.Images)
	assert.True(t, product.InStock)
	assert.Equal(t, 2, product.ServingInformation.ServingPerContainer)
	assert.Equal(t, 35, product.ServingInformation.PreparationTime)
	assert.False(t, product.CreatedAt.IsZero())
	assert.Empty(t, remover.removed)

	list, err := svc.List(context.Background())
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, *product, list[0])
}

func TestProductService_InStockFlag(t *testing.T) {
	svc := NewProductService(repository.NewInMemoryProductRepository(), &recordingRemover{}, logger.New("error"))

	in := productInput()
	in.InStock = "false"
	product, err := svc.Create(context.Background(), in, productFiles())
	require.NoError(t, err)
	assert.False(t, product.InStock)
}

func TestProductService_CreateFailuresRemoveFiles(t *testing.T) {
	tests := []struct {
		name    string
		repo    repository.ProductRepository
		mutate  func(in *models.ProductInput)
		wantErr error
	}{
		{"missing fields", repository.NewInMemoryProductRepository(), func(in *models.ProductInput) { in.Description = "" }, apperrors.ErrValidation},
		{"bad enum", repository.NewInMemoryProductRepository(), func(in *models.ProductInput) { in.FoodPreference = "Pescatarian" }, apperrors.ErrValidation},
		{"bad integer", repository.NewInMemoryProductRepository(), func(in *models.ProductInput) { in.PreparationTime = "soon" }, apperrors.ErrValidation},
		{"store failure", failingProductRepo{}, func(in *models.ProductInput) {}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			remover := &recordingRemover{}
			svc := NewProductService(tt.repo, remover, logger.New("error"))

			in := productInput()
			tt.mutate(&in)

			_, err := svc.Create(context.Background(), in, productFiles())
			require.Error(t, err)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			}
			assert.Equal(t, productFiles(), remover.removed)
		})
	}
}

func TestProductService_CreateWithoutImages(t *testing.T) {
	repo := repository.NewInMemoryProductRepository()
	remover := &recordingRemover{}
	svc := NewProductService(repo, remover, logger.New("error"))

	_, err := svc.Create(context.Background(), productInput(), nil)
	assert.ErrorIs(t, err, apperrors.ErrValidation)
	assert.Equal(t, validation.MsgImageRequired, apperrors.Message(err))
	assert.Empty(t, remover.removed)

	list, err := repo.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, list)
}
