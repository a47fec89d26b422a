package persistence

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	apperrors "github.com/spec-kit/exchange-service/pkg/util"
)

// SQLSTATE codes postgres raises when a serializable transaction must
// be retried by the client.
const (
	serializationFailure = "40001"
	deadlockDetected     = "40P01"
)

// WithSerializableTx runs fn inside a serializable transaction,
// retrying the whole read-validate-write cycle on serialization
// conflicts up to maxRetries times before surfacing CONFLICT.
func WithSerializableTx(ctx context.Context, pool *pgxpool.Pool, maxRetries int, fn func(pgx.Tx) error) error {
	if maxRetries < 0 {
		maxRetries = 0
	}

	var lastErr error
	for attempt := 0; attempt <= maxRetries; attempt++ {
		tx, err := pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.Serializable})
		if err != nil {
			return err
		}

		if err := fn(tx); err != nil {
			_ = tx.Rollback(ctx)
			if isSerializationError(err) {
				lastErr = err
				continue
			}
			return err
		}

		if err := tx.Commit(ctx); err != nil {
			if isSerializationError(err) {
				lastErr = err
				continue
			}
			return err
		}
		return nil
	}

	return apperrors.NewConflict("transaction retries exhausted", map[string]any{"cause": lastErr.Error()})
}

func isSerializationError(err error) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return false
	}
	return pgErr.Code == serializationFailure || pgErr.Code == deadlockDetected
}
