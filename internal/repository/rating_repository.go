package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/exchange-service/internal/domain"
	apperrors "github.com/spec-kit/exchange-service/pkg/util"
)

const uniqueViolation = "23505"

// RatingRepository encapsulates valoracion persistence. The
// (id_intercambio, id_autor) unique constraint is the data-layer guard
// for one rating per participant per exchange.
type RatingRepository interface {
	Create(ctx context.Context, rating *domain.Rating) error
	ExistsForAuthor(ctx context.Context, exchangeID, authorID string) (bool, error)
	ListByRecipient(ctx context.Context, recipientID string, limit, offset int) ([]domain.Rating, error)
	AggregateForRecipient(ctx context.Context, recipientID string) (*domain.Reputation, error)
}

type ratingRepository struct {
	pool *pgxpool.Pool
}

// NewRatingRepository instantiates repository.
func NewRatingRepository(pool *pgxpool.Pool) RatingRepository {
	return &ratingRepository{pool: pool}
}

func (r *ratingRepository) Create(ctx context.Context, rating *domain.Rating) error {
	const query = `
        INSERT INTO valoracion (id_intercambio, id_autor, id_receptor, puntuacion, comentario)
        VALUES ($1,$2,$3,$4,$5)
        RETURNING id, fecha`
	err := r.pool.QueryRow(ctx, query,
		rating.ExchangeID,
		rating.AuthorID,
		rating.RecipientID,
		rating.Score,
		rating.Comment,
	).Scan(&rating.ID, &rating.CreatedAt)

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return apperrors.NewConflict("rating already submitted for this exchange", map[string]any{
			"exchange_id": rating.ExchangeID,
			"author_id":   rating.AuthorID,
		})
	}
	return err
}

func (r *ratingRepository) ExistsForAuthor(ctx context.Context, exchangeID, authorID string) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM valoracion WHERE id_intercambio=$1 AND id_autor=$2)`,
		exchangeID, authorID).Scan(&exists)
	return exists, err
}

func (r *ratingRepository) ListByRecipient(ctx context.Context, recipientID string, limit, offset int) ([]domain.Rating, error) {
	if limit <= 0 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	const query = `SELECT id, id_intercambio, id_autor, id_receptor, puntuacion, comentario, fecha
        FROM valoracion WHERE id_receptor=$1 ORDER BY fecha DESC LIMIT $2 OFFSET $3`
	rows, err := r.pool.Query(ctx, query, recipientID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanRatings(rows)
}

// AggregateForRecipient computes the reputation on demand from rows;
// the cached projection is rebuilt from this, never the other way.
func (r *ratingRepository) AggregateForRecipient(ctx context.Context, recipientID string) (*domain.Reputation, error) {
	const query = `SELECT COUNT(*), COALESCE(AVG(puntuacion), 0)
        FROM valoracion WHERE id_receptor=$1`
	rep := &domain.Reputation{UserID: recipientID}
	if err := r.pool.QueryRow(ctx, query, recipientID).Scan(&rep.Count, &rep.Average); err != nil {
		return nil, err
	}
	return rep, nil
}

func scanRatings(rows pgx.Rows) ([]domain.Rating, error) {
	var result []domain.Rating
	for rows.Next() {
		var rating domain.Rating
		if err := rows.Scan(
			&rating.ID,
			&rating.ExchangeID,
			&rating.AuthorID,
			&rating.RecipientID,
			&rating.Score,
			&rating.Comment,
			&rating.CreatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, rating)
	}
	return result, rows.Err()
}
