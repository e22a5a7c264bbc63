package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/iho/goppob/internal/domain"
	"github.com/iho/goppob/internal/infrastructure/postgres/generated"
)

// ServiceRepository implements usecase.ServiceRepository.
type ServiceRepository struct {
	queries *generated.Queries
}

// NewServiceRepository creates a new ServiceRepository.
func NewServiceRepository(pool *pgxpool.Pool) *ServiceRepository {
	return newServiceRepository(pool)
}

func newServiceRepository(db generated.DBTX) *ServiceRepository {
	return &ServiceRepository{queries: generated.New(db)}
}

// GetByCode retrieves a service by its code.
func (r *ServiceRepository) GetByCode(ctx context.Context, code string) (*domain.Service, error) {
	row, err := r.queries.GetServiceByCode(ctx, code)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrServiceNotFound
		}
		return nil, err
	}

	return rowToService(row), nil
}

// List returns every service, newest first.
func (r *ServiceRepository) List(ctx context.Context) ([]*domain.Service, error) {
	rows, err := r.queries.ListServices(ctx)
	if err != nil {
		return nil, err
	}

	services := make([]*domain.Service, 0, len(rows))
	for _, row := range rows {
		services = append(services, rowToService(row))
	}

	return services, nil
}

func rowToService(row generated.Service) *domain.Service {
	return &domain.Service{
		Code:      row.ServiceCode,
		Name:      row.ServiceName,
		Icon:      row.ServiceIcon,
		Tariff:    row.ServiceTariff,
		CreatedAt: row.CreatedAt.Time,
	}
}

// BannerRepository implements usecase.BannerRepository.
type BannerRepository struct {
	queries *generated.Queries
}

// NewBannerRepository creates a new BannerRepository.
func NewBannerRepository(pool *pgxpool.Pool) *BannerRepository {
	return newBannerRepository(pool)
}

func newBannerRepository(db generated.DBTX) *BannerRepository {
	return &BannerRepository{queries: generated.New(db)}
}

// List returns every banner, oldest first.
func (r *BannerRepository) List(ctx context.Context) ([]*domain.Banner, error) {
	rows, err := r.queries.ListBanners(ctx)
	if err != nil {
		return nil, err
	}

	banners := make([]*domain.Banner, 0, len(rows))
	for _, row := range rows {
		banners = append(banners, &domain.Banner{
			ID:          row.ID,
			Name:        row.BannerName,
			Image:       row.BannerImage,
			Description: row.Description,
			CreatedAt:   row.CreatedAt.Time,
		})
	}

	return banners, nil
}
