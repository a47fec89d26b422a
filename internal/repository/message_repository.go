package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/exchange-service/internal/domain"
)

// MessageRepository encapsulates the append-only mensaje_intercambio log.
type MessageRepository interface {
	Append(ctx context.Context, message *domain.ExchangeMessage) error
	ListByExchange(ctx context.Context, exchangeID string, limit, offset int) ([]domain.ExchangeMessage, error)
}

type messageRepository struct {
	pool *pgxpool.Pool
}

// NewMessageRepository instantiates repository.
func NewMessageRepository(pool *pgxpool.Pool) MessageRepository {
	return &messageRepository{pool: pool}
}

func (r *messageRepository) Append(ctx context.Context, message *domain.ExchangeMessage) error {
	const query = `
        INSERT INTO mensaje_intercambio (id_intercambio, id_autor, cuerpo)
        VALUES ($1,$2,$3)
        RETURNING id, fecha`
	return r.pool.QueryRow(ctx, query,
		message.ExchangeID,
		message.AuthorID,
		message.Body,
	).Scan(&message.ID, &message.CreatedAt)
}

func (r *messageRepository) ListByExchange(ctx context.Context, exchangeID string, limit, offset int) ([]domain.ExchangeMessage, error) {
	if limit <= 0 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	const query = `SELECT id, id_intercambio, id_autor, cuerpo, fecha
        FROM mensaje_intercambio WHERE id_intercambio=$1
        ORDER BY fecha ASC LIMIT $2 OFFSET $3`
	rows, err := r.pool.Query(ctx, query, exchangeID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.ExchangeMessage
	for rows.Next() {
		var message domain.ExchangeMessage
		if err := rows.Scan(
			&message.ID,
			&message.ExchangeID,
			&message.AuthorID,
			&message.Body,
			&message.CreatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, message)
	}
	return result, rows.Err()
}
