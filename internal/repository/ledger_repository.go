package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/exchange-service/internal/persistence"
	apperrors "github.com/spec-kit/exchange-service/pkg/util"
)

// LedgerRepository is the atomic debit/credit primitive over usuario
// balances. Transfers apply both legs or neither; no intermediate
// negative balance is ever observable outside the transaction.
type LedgerRepository interface {
	BalanceOf(ctx context.Context, userID string) (int, error)
	Transfer(ctx context.Context, from, to string, amount int) error
	TransferInTx(ctx context.Context, tx pgx.Tx, from, to string, amount int) error
}

type ledgerRepository struct {
	pool    *pgxpool.Pool
	retries int
}

// NewLedgerRepository instantiates repository.
func NewLedgerRepository(pool *pgxpool.Pool, retries int) LedgerRepository {
	return &ledgerRepository{pool: pool, retries: retries}
}

func (r *ledgerRepository) BalanceOf(ctx context.Context, userID string) (int, error) {
	var balance int
	err := r.pool.QueryRow(ctx, `SELECT creditos FROM usuario WHERE id=$1`, userID).Scan(&balance)
	if err == pgx.ErrNoRows {
		return 0, apperrors.NewNotFound("user", map[string]any{"user_id": userID})
	}
	return balance, err
}

// Transfer moves amount credits from one user to the other in a single
// serializable transaction.
func (r *ledgerRepository) Transfer(ctx context.Context, from, to string, amount int) error {
	return persistence.WithSerializableTx(ctx, r.pool, r.retries, func(tx pgx.Tx) error {
		return r.TransferInTx(ctx, tx, from, to, amount)
	})
}

// TransferInTx applies both legs of a transfer inside the caller's
// transaction. The debit is a conditional update so the creditos >= 0
// invariant holds without a read-then-write race.
func (r *ledgerRepository) TransferInTx(ctx context.Context, tx pgx.Tx, from, to string, amount int) error {
	if amount <= 0 {
		return apperrors.NewValidationError("transfer amount must be positive", map[string]any{"amount": amount})
	}

	cmd, err := tx.Exec(ctx,
		`UPDATE usuario SET creditos = creditos - $1, updated_at = NOW() WHERE id = $2 AND creditos >= $1`,
		amount, from)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		var exists bool
		if err := tx.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM usuario WHERE id=$1)`, from).Scan(&exists); err != nil {
			return err
		}
		if !exists {
			return apperrors.NewNotFound("user", map[string]any{"user_id": from})
		}
		return apperrors.NewInsufficientCredits(map[string]any{"user_id": from, "amount": amount})
	}

	cmd, err = tx.Exec(ctx,
		`UPDATE usuario SET creditos = creditos + $1, updated_at = NOW() WHERE id = $2`,
		amount, to)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return apperrors.NewNotFound("user", map[string]any{"user_id": to})
	}
	return nil
}
