package repositories

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/tcollier/fieldhunt/internal/database"
	"github.com/tcollier/fieldhunt/internal/models"
)

type SessionRepository struct {
	pool *pgxpool.Pool
}

func NewSessionRepository(db *database.DB) *SessionRepository {
	return &SessionRepository{pool: db.Pool}
}

func (r *SessionRepository) Insert(ctx context.Context, session *models.Session) error {
	query := `INSERT INTO sessions (token, user_id, expires_at) VALUES ($1, $2, $3)`

	_, err := r.pool.Exec(ctx, query, session.Token, session.UserID, session.ExpiresAt)
	return database.MapPostgresError(err)
}

// Resolve returns the owning user id only when the session row exists and
// its expiry is strictly in the future. Expired rows are not purged on
// read; the background sweeper handles them eventually.
func (r *SessionRepository) Resolve(ctx context.Context, token string, now time.Time) (string, error) {
	query := `SELECT user_id FROM sessions WHERE token = $1 AND expires_at > $2`

	var userID string
	if err := r.pool.QueryRow(ctx, query, token, now).Scan(&userID); err != nil {
		return "", database.MapPostgresError(err)
	}

	return userID, nil
}

// Delete is idempotent; deleting an unknown token is a no-op success.
func (r *SessionRepository) Delete(ctx context.Context, token string) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM sessions WHERE token = $1`, token)
	return database.MapPostgresError(err)
}

func (r *SessionRepository) DeleteByUser(ctx context.Context, userID string) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM sessions WHERE user_id = $1`, userID)
	return database.MapPostgresError(err)
}

func (r *SessionRepository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	result, err := r.pool.Exec(ctx, `DELETE FROM sessions WHERE expires_at <= $1`, now)
	if err != nil {
		return 0, database.MapPostgresError(err)
	}

	return result.RowsAffected(), nil
}
