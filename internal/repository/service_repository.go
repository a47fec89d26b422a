package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/exchange-service/internal/domain"
)

// ServiceRepository encapsulates servicio persistence. The exchange
// core only reads; writes serve the surrounding catalog CRUD.
type ServiceRepository interface {
	Create(ctx context.Context, service *domain.Service) error
	Update(ctx context.Context, service *domain.Service) error
	Delete(ctx context.Context, id string) error
	GetByID(ctx context.Context, id string) (*domain.Service, error)
	ListByProvider(ctx context.Context, providerID string) ([]domain.Service, error)
	List(ctx context.Context, limit, offset int) ([]domain.Service, error)
}

type serviceRepository struct {
	pool *pgxpool.Pool
}

// NewServiceRepository instantiates repository.
func NewServiceRepository(pool *pgxpool.Pool) ServiceRepository {
	return &serviceRepository{pool: pool}
}

func (r *serviceRepository) Create(ctx context.Context, service *domain.Service) error {
	const query = `
        INSERT INTO servicio (titulo, descripcion, creditos_hora, id_usuario)
        VALUES ($1,$2,$3,$4)
        RETURNING id, created_at`
	return r.pool.QueryRow(ctx, query,
		service.Title,
		service.Description,
		service.HourlyPrice,
		service.ProviderID,
	).Scan(&service.ID, &service.CreatedAt)
}

func (r *serviceRepository) Update(ctx context.Context, service *domain.Service) error {
	const query = `UPDATE servicio SET titulo=$1, descripcion=$2, creditos_hora=$3 WHERE id=$4`
	cmd, err := r.pool.Exec(ctx, query,
		service.Title,
		service.Description,
		service.HourlyPrice,
		service.ID,
	)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

// Delete removes a service; dependent exchanges cascade or null their
// counterpart reference per the schema's foreign keys.
func (r *serviceRepository) Delete(ctx context.Context, id string) error {
	cmd, err := r.pool.Exec(ctx, `DELETE FROM servicio WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *serviceRepository) GetByID(ctx context.Context, id string) (*domain.Service, error) {
	const query = `SELECT id, id_usuario, titulo, descripcion, creditos_hora, created_at FROM servicio WHERE id=$1`
	var service domain.Service
	if err := r.pool.QueryRow(ctx, query, id).Scan(
		&service.ID,
		&service.ProviderID,
		&service.Title,
		&service.Description,
		&service.HourlyPrice,
		&service.CreatedAt,
	); err != nil {
		return nil, err
	}
	return &service, nil
}

func (r *serviceRepository) ListByProvider(ctx context.Context, providerID string) ([]domain.Service, error) {
	const query = `SELECT id, id_usuario, titulo, descripcion, creditos_hora, created_at
        FROM servicio WHERE id_usuario=$1 ORDER BY created_at DESC`
	rows, err := r.pool.Query(ctx, query, providerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanServices(rows)
}

func (r *serviceRepository) List(ctx context.Context, limit, offset int) ([]domain.Service, error) {
	if limit <= 0 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	const query = `SELECT id, id_usuario, titulo, descripcion, creditos_hora, created_at
        FROM servicio ORDER BY created_at DESC LIMIT $1 OFFSET $2`
	rows, err := r.pool.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanServices(rows)
}

func scanServices(rows pgx.Rows) ([]domain.Service, error) {
	var result []domain.Service
	for rows.Next() {
		var service domain.Service
		if err := rows.Scan(
			&service.ID,
			&service.ProviderID,
			&service.Title,
			&service.Description,
			&service.HourlyPrice,
			&service.CreatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, service)
	}
	return result, rows.Err()
}
