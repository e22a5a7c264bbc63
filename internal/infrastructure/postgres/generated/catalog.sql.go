package generated

import (
	"context"
)

const getServiceByCode = `-- name: GetServiceByCode :one
SELECT service_code, service_name, service_icon, service_tariff, created_at FROM services WHERE service_code = $1
`

func (q *Queries) GetServiceByCode(ctx context.Context, serviceCode string) (Service, error) {
	row := q.db.QueryRow(ctx, getServiceByCode, serviceCode)
	var i Service
	err := row.Scan(
		&i.ServiceCode,
		&i.ServiceName,
		&i.ServiceIcon,
		&i.ServiceTariff,
		&i.CreatedAt,
	)
	return i, err
}

const listBanners = `-- name: ListBanners :many
SELECT id, banner_name, banner_image, description, created_at FROM banners ORDER BY created_at ASC, id ASC
`

func (q *Queries) ListBanners(ctx context.Context) ([]Banner, error) {
	rows, err := q.db.Query(ctx, listBanners)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := []Banner{}
	for rows.Next() {
		var i Banner
		if err := rows.Scan(
			&i.ID,
			&i.BannerName,
			&i.BannerImage,
			&i.Description,
			&i.CreatedAt,
		); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const listServices = `-- name: ListServices :many
SELECT service_code, service_name, service_icon, service_tariff, created_at FROM services ORDER BY created_at DESC, service_code ASC
`

func (q *Queries) ListServices(ctx context.Context) ([]Service, error) {
	rows, err := q.db.Query(ctx, listServices)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := []Service{}
	for rows.Next() {
		var i Service
		if err := rows.Scan(
			&i.ServiceCode,
			&i.ServiceName,
			&i.ServiceIcon,
			&i.ServiceTariff,
			&i.CreatedAt,
		); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}
