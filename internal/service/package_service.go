package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/Lixing-Zhang/shop-admin/backend/internal/apperrors"
	"github.com/Lixing-Zhang/shop-admin/backend/internal/models"
	"github.com/Lixing-Zhang/shop-admin/backend/internal/repository"
	"github.com/Lixing-Zhang/shop-admin/backend/internal/validation"
)

const msgSettingsNotFound = "Settings not found"

// PackageService handles business logic for delivery package settings
type PackageService struct {
	repo repository.PackageRepository
	log  *slog.Logger
}

// NewPackageService creates a new package service
func NewPackageService(repo repository.PackageRepository, log *slog.Logger) *PackageService {
	return &PackageService{
		repo: repo,
		log:  log,
	}
}

// Create validates and stores new package settings
func (s *PackageService) Create(ctx context.Context, in models.PackageSettingsInput) (*models.PackageSettings, error) {
	if err := validation.PackageCreate(in).Err(); err != nil {
		return nil, err
	}

	settings := in.ToPackageSettings()
	if err := s.repo.Create(ctx, &settings); err != nil {
		return nil, err
	}
	return &settings, nil
}

// List returns all package settings
func (s *PackageService) List(ctx context.Context) ([]models.PackageSettings, error) {
	return s.repo.List(ctx)
}

// Get returns package settings by ID
func (s *PackageService) Get(ctx context.Context, id string) (*models.PackageSettings, error) {
	settings, err := s.repo.GetByID(ctx, id)
	return settings, translateNotFound(err)
}

// Update validates and applies the fields present in patch
func (s *PackageService) Update(ctx context.Context, id string, patch models.PackageSettingsPatch) (*models.PackageSettings, error) {
	if err := validation.PackageUpdate(patch).Err(); err != nil {
		return nil, err
	}

	settings, err := s.repo.Update(ctx, id, patch)
	return settings, translateNotFound(err)
}

// Delete removes package settings by ID
func (s *PackageService) Delete(ctx context.Context, id string) error {
	return translateNotFound(s.repo.Delete(ctx, id))
}

func translateNotFound(err error) error {
	if errors.Is(err, repository.ErrPackageNotFound) {
		return apperrors.NotFound(msgSettingsNotFound)
	}
	return err
}
