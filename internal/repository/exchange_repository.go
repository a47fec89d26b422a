package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/exchange-service/internal/domain"
	"github.com/spec-kit/exchange-service/internal/persistence"
	apperrors "github.com/spec-kit/exchange-service/pkg/util"
)

// ExchangeRepository encapsulates intercambio persistence. Status
// transitions are compare-and-swap on estado: two concurrent
// transitions on the same row never both succeed.
type ExchangeRepository interface {
	Create(ctx context.Context, exchange *domain.Exchange) error
	GetByID(ctx context.Context, id string) (*domain.Exchange, error)
	ListForUser(ctx context.Context, userID string, limit, offset int) ([]domain.Exchange, error)
	UpdateStatus(ctx context.Context, id string, from, to domain.ExchangeStatus) error
	Confirm(ctx context.Context, id string, hours, agreedCredits int) error
	Complete(ctx context.Context, id string, settle func(pgx.Tx) error) error
}

type exchangeRepository struct {
	pool    *pgxpool.Pool
	retries int
}

// NewExchangeRepository instantiates repository.
func NewExchangeRepository(pool *pgxpool.Pool, retries int) ExchangeRepository {
	return &exchangeRepository{pool: pool, retries: retries}
}

const exchangeColumns = `id, id_servicio, id_solicitante, id_proveedor, id_servicio_contraparte,
               estado, horas, creditos_acordados, liquidado_en, fecha, actualizado_en`

func (r *exchangeRepository) Create(ctx context.Context, exchange *domain.Exchange) error {
	const query = `
        INSERT INTO intercambio (id_servicio, id_solicitante, id_proveedor, id_servicio_contraparte, estado, horas)
        VALUES ($1,$2,$3,$4,$5,$6)
        RETURNING id, fecha, actualizado_en`
	return r.pool.QueryRow(ctx, query,
		exchange.ServiceID,
		exchange.RequesterID,
		exchange.ProviderID,
		exchange.CounterpartServiceID,
		exchange.Status,
		exchange.Hours,
	).Scan(&exchange.ID, &exchange.CreatedAt, &exchange.UpdatedAt)
}

func (r *exchangeRepository) GetByID(ctx context.Context, id string) (*domain.Exchange, error) {
	query := `SELECT ` + exchangeColumns + ` FROM intercambio WHERE id=$1`
	var exchange domain.Exchange
	if err := r.pool.QueryRow(ctx, query, id).Scan(
		&exchange.ID,
		&exchange.ServiceID,
		&exchange.RequesterID,
		&exchange.ProviderID,
		&exchange.CounterpartServiceID,
		&exchange.Status,
		&exchange.Hours,
		&exchange.AgreedCredits,
		&exchange.SettledAt,
		&exchange.CreatedAt,
		&exchange.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &exchange, nil
}

func (r *exchangeRepository) ListForUser(ctx context.Context, userID string, limit, offset int) ([]domain.Exchange, error) {
	if limit <= 0 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	query := `SELECT ` + exchangeColumns + `
        FROM intercambio
        WHERE id_solicitante=$1 OR id_proveedor=$1
        ORDER BY actualizado_en DESC LIMIT $2 OFFSET $3`
	rows, err := r.pool.Query(ctx, query, userID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Exchange
	for rows.Next() {
		var exchange domain.Exchange
		if err := rows.Scan(
			&exchange.ID,
			&exchange.ServiceID,
			&exchange.RequesterID,
			&exchange.ProviderID,
			&exchange.CounterpartServiceID,
			&exchange.Status,
			&exchange.Hours,
			&exchange.AgreedCredits,
			&exchange.SettledAt,
			&exchange.CreatedAt,
			&exchange.UpdatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, exchange)
	}
	return result, rows.Err()
}

// UpdateStatus moves estado from one state to another. When the guard
// misses, the current row is re-read to report NotFound vs InvalidState.
func (r *exchangeRepository) UpdateStatus(ctx context.Context, id string, from, to domain.ExchangeStatus) error {
	cmd, err := r.pool.Exec(ctx,
		`UPDATE intercambio SET estado=$1, actualizado_en=NOW() WHERE id=$2 AND estado=$3`,
		to, id, from)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return r.statusMismatch(ctx, id, from)
	}
	return nil
}

// Confirm fixes the agreed hours and credit cost while moving a pending
// exchange to confirmado. The snapshot is immutable afterwards.
func (r *exchangeRepository) Confirm(ctx context.Context, id string, hours, agreedCredits int) error {
	cmd, err := r.pool.Exec(ctx,
		`UPDATE intercambio SET estado=$1, horas=$2, creditos_acordados=$3, actualizado_en=NOW()
         WHERE id=$4 AND estado=$5`,
		domain.ExchangeStatusConfirmed, hours, agreedCredits, id, domain.ExchangeStatusPending)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return r.statusMismatch(ctx, id, domain.ExchangeStatusPending)
	}
	return nil
}

// Complete moves en_progreso to completado and runs settle in the same
// serializable transaction, so the credit transfer happens exactly once
// and only together with the terminal transition. A settle failure
// rolls everything back and the exchange stays en_progreso.
func (r *exchangeRepository) Complete(ctx context.Context, id string, settle func(pgx.Tx) error) error {
	return persistence.WithSerializableTx(ctx, r.pool, r.retries, func(tx pgx.Tx) error {
		cmd, err := tx.Exec(ctx,
			`UPDATE intercambio SET estado=$1, liquidado_en=NOW(), actualizado_en=NOW()
             WHERE id=$2 AND estado=$3`,
			domain.ExchangeStatusCompleted, id, domain.ExchangeStatusInProgress)
		if err != nil {
			return err
		}
		if cmd.RowsAffected() == 0 {
			return r.statusMismatch(ctx, id, domain.ExchangeStatusInProgress)
		}
		return settle(tx)
	})
}

func (r *exchangeRepository) statusMismatch(ctx context.Context, id string, expected domain.ExchangeStatus) error {
	var current domain.ExchangeStatus
	err := r.pool.QueryRow(ctx, `SELECT estado FROM intercambio WHERE id=$1`, id).Scan(&current)
	if err == pgx.ErrNoRows {
		return apperrors.NewNotFound("exchange", map[string]any{"exchange_id": id})
	}
	if err != nil {
		return err
	}
	return apperrors.NewInvalidState("exchange is not in the required state", map[string]any{
		"exchange_id": id,
		"expected":    string(expected),
		"current":     string(current),
	})
}
