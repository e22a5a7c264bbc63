package usecase

import (
	"context"

	"github.com/iho/goppob/internal/domain"
)

// CatalogUseCase exposes the read-only service catalog and banners.
type CatalogUseCase struct {
	serviceRepo ServiceRepository
	bannerRepo  BannerRepository
}

// NewCatalogUseCase creates a new CatalogUseCase.
func NewCatalogUseCase(serviceRepo ServiceRepository, bannerRepo BannerRepository) *CatalogUseCase {
	return &CatalogUseCase{
		serviceRepo: serviceRepo,
		bannerRepo:  bannerRepo,
	}
}

// ListServices lists every payable service.
func (uc *CatalogUseCase) ListServices(ctx context.Context) ([]*domain.Service, error) {
	return uc.serviceRepo.List(ctx)
}

// ListBanners lists every banner.
func (uc *CatalogUseCase) ListBanners(ctx context.Context) ([]*domain.Banner, error) {
	return uc.bannerRepo.List(ctx)
}
