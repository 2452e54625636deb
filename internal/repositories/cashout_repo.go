package repositories

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/tcollier/fieldhunt/internal/database"
	"github.com/tcollier/fieldhunt/internal/models"
)

type CashoutRepository struct {
	db *database.DB
}

func NewCashoutRepository(db *database.DB) *CashoutRepository {
	return &CashoutRepository{db: db}
}

func (r *CashoutRepository) Insert(ctx context.Context, token *models.CashoutToken) error {
	query := `
		INSERT INTO cashout_tokens (token, user_id, expires_at, used)
		VALUES ($1, $2, $3, FALSE)
	`

	_, err := r.db.Pool.Exec(ctx, query, token.Token, token.UserID, token.ExpiresAt)
	return database.MapPostgresError(err)
}

// PurgeStale deletes the user's own tokens that are already used or
// expired. Called opportunistically before issuing a new token.
func (r *CashoutRepository) PurgeStale(ctx context.Context, userID string, now time.Time) error {
	query := `DELETE FROM cashout_tokens WHERE user_id = $1 AND (used OR expires_at <= $2)`

	_, err := r.db.Pool.Exec(ctx, query, userID, now)
	return database.MapPostgresError(err)
}

func (r *CashoutRepository) Get(ctx context.Context, token string) (*models.CashoutToken, error) {
	query := `SELECT token, user_id, expires_at, used, used_at FROM cashout_tokens WHERE token = $1`

	var t models.CashoutToken
	err := r.db.Pool.QueryRow(ctx, query, token).Scan(
		&t.Token, &t.UserID, &t.ExpiresAt, &t.Used, &t.UsedAt,
	)
	if err != nil {
		return nil, database.MapPostgresError(err)
	}

	return &t, nil
}

// Redeem checks the token, debits the owner's balance, and marks the token
// used as one indivisible unit. The row lock on the token serializes
// concurrent redemptions: exactly one wins, the loser sees ErrTokenUsed.
//
// Returns the owner's new balance on success.
func (r *CashoutRepository) Redeem(ctx context.Context, token string, amount int, now time.Time) (int, error) {
	if amount < 0 {
		return 0, models.ErrInvalidAmount
	}

	var newBalance int

	err := r.db.WithTransaction(ctx, func(tx pgx.Tx) error {
		var t models.CashoutToken
		err := tx.QueryRow(ctx, `
			SELECT token, user_id, expires_at, used
			FROM cashout_tokens WHERE token = $1
			FOR UPDATE
		`, token).Scan(&t.Token, &t.UserID, &t.ExpiresAt, &t.Used)
		if err != nil {
			return database.MapPostgresError(err)
		}

		if t.Used {
			return models.ErrTokenUsed
		}
		if t.Expired(now) {
			return models.ErrTokenExpired
		}

		// Debit the token owner, not the redeeming admin. The balance
		// guard makes over-redemption affect zero rows.
		result, err := tx.Exec(ctx, `
			UPDATE users SET balance = balance - $1, updated_at = NOW()
			WHERE id = $2 AND balance >= $1
		`, amount, t.UserID)
		if err != nil {
			return database.MapPostgresError(err)
		}
		if result.RowsAffected() == 0 {
			return models.ErrInvalidAmount
		}

		if _, err := tx.Exec(ctx, `
			UPDATE cashout_tokens SET used = TRUE, used_at = $1 WHERE token = $2
		`, now, token); err != nil {
			return database.MapPostgresError(err)
		}

		return tx.QueryRow(ctx, `SELECT balance FROM users WHERE id = $1`, t.UserID).Scan(&newBalance)
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, models.ErrNotFound
		}
		return 0, err
	}

	return newBalance, nil
}

func (r *CashoutRepository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	result, err := r.db.Pool.Exec(ctx, `DELETE FROM cashout_tokens WHERE used OR expires_at <= $1`, now)
	if err != nil {
		return 0, database.MapPostgresError(err)
	}

	return result.RowsAffected(), nil
}
