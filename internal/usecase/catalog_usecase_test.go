package usecase_test

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/mock/gomock"

	"github.com/iho/goppob/internal/domain"
	"github.com/iho/goppob/internal/usecase"
	"github.com/iho/goppob/internal/usecase/mocks"
)

func TestCatalogUseCase_ListServices(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	serviceRepo := mocks.NewMockServiceRepository(ctrl)
	serviceRepo.EXPECT().List(gomock.Any()).Return([]*domain.Service{
		{Code: "PULSA", Name: "Pulsa", Tariff: 40000},
		{Code: "PLN", Name: "Listrik", Tariff: 10000},
	}, nil)

	uc := usecase.NewCatalogUseCase(serviceRepo, mocks.NewMockBannerRepository(ctrl))

	services, err := uc.ListServices(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(services) != 2 {
		t.Errorf("expected 2 services, got %d", len(services))
	}
}

func TestCatalogUseCase_ListBanners(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	bannerRepo := mocks.NewMockBannerRepository(ctrl)
	bannerRepo.EXPECT().List(gomock.Any()).Return(nil, errors.New("db down"))

	uc := usecase.NewCatalogUseCase(mocks.NewMockServiceRepository(ctrl), bannerRepo)

	if _, err := uc.ListBanners(context.Background()); err == nil {
		t.Fatal("expected repository error to surface")
	}
}
