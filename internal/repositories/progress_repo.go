package repositories

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/tcollier/fieldhunt/internal/database"
	"github.com/tcollier/fieldhunt/internal/models"
)

type ProgressRepository struct {
	db *database.DB
}

func NewProgressRepository(db *database.DB) *ProgressRepository {
	return &ProgressRepository{db: db}
}

// InsertFound records that the user scanned the item. The unique pair
// constraint is the concurrency control: a racing duplicate insert affects
// zero rows and is reported as inserted=false, never as an error.
func (r *ProgressRepository) InsertFound(ctx context.Context, userID string, itemID int64) (bool, error) {
	query := `
		INSERT INTO found_records (user_id, item_id)
		VALUES ($1, $2)
		ON CONFLICT (user_id, item_id) DO NOTHING
	`

	result, err := r.db.Pool.Exec(ctx, query, userID, itemID)
	if err != nil {
		return false, database.MapPostgresError(err)
	}

	return result.RowsAffected() > 0, nil
}

// InsertUnlock records the unlock and, only when this is the first insert
// for the pair, credits the user's balance by exactly 1. Both writes happen
// in one transaction so a race between identical attempts grants at most
// one reward.
//
// A found record is upserted alongside: unlocking without a prior scan is
// allowed, but the state machine never shows unlocked-but-not-found.
func (r *ProgressRepository) InsertUnlock(ctx context.Context, userID string, itemID int64) (inserted bool, err error) {
	err = r.db.WithTransaction(ctx, func(tx pgx.Tx) error {
		result, err := tx.Exec(ctx, `
			INSERT INTO unlock_records (user_id, item_id)
			VALUES ($1, $2)
			ON CONFLICT (user_id, item_id) DO NOTHING
		`, userID, itemID)
		if err != nil {
			return database.MapPostgresError(err)
		}

		inserted = result.RowsAffected() > 0
		if !inserted {
			return nil
		}

		if _, err := tx.Exec(ctx, `
			INSERT INTO found_records (user_id, item_id)
			VALUES ($1, $2)
			ON CONFLICT (user_id, item_id) DO NOTHING
		`, userID, itemID); err != nil {
			return database.MapPostgresError(err)
		}

		if _, err := tx.Exec(ctx, `
			UPDATE users SET balance = balance + 1, updated_at = NOW() WHERE id = $1
		`, userID); err != nil {
			return database.MapPostgresError(err)
		}

		return nil
	})
	if err != nil {
		return false, err
	}

	return inserted, nil
}

// ListStates returns every catalog item annotated with the user's found and
// unlocked status, in stable id order.
func (r *ProgressRepository) ListStates(ctx context.Context, userID string) ([]*models.ItemState, error) {
	query := `
		SELECT e.id, e.title, e.scan_code, e.keyword, e.hint, e.filename, e.bonus,
		       f.user_id IS NOT NULL AS found,
		       u.user_id IS NOT NULL AS unlocked
		FROM evidence_items e
		LEFT JOIN found_records f ON f.item_id = e.id AND f.user_id = $1
		LEFT JOIN unlock_records u ON u.item_id = e.id AND u.user_id = $1
		ORDER BY e.id
	`

	rows, err := r.db.Pool.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query item states: %w", err)
	}
	defer rows.Close()

	states := make([]*models.ItemState, 0)

	for rows.Next() {
		var st models.ItemState
		err := rows.Scan(
			&st.Item.ID, &st.Item.Title, &st.Item.ScanCode,
			&st.Item.Keyword, &st.Item.Hint, &st.Item.Filename, &st.Item.Bonus,
			&st.Found, &st.Unlocked,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan item state: %w", err)
		}
		states = append(states, &st)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return states, nil
}

// ResetUser wipes the user's found and unlock records and cash-out tokens,
// zeroes the balance, and clears the seen-intro flag, returning every item
// to the unknown state for that user.
func (r *ProgressRepository) ResetUser(ctx context.Context, userID string) error {
	return r.db.WithTransaction(ctx, func(tx pgx.Tx) error {
		for _, query := range []string{
			`DELETE FROM found_records WHERE user_id = $1`,
			`DELETE FROM unlock_records WHERE user_id = $1`,
			`DELETE FROM cashout_tokens WHERE user_id = $1`,
			`UPDATE users SET balance = 0, seen_intro = FALSE, updated_at = NOW() WHERE id = $1`,
		} {
			if _, err := tx.Exec(ctx, query, userID); err != nil {
				return database.MapPostgresError(err)
			}
		}
		return nil
	})
}

// CountFound is used by tests and the admin console; it counts found
// records for a pair regardless of unlock state.
func (r *ProgressRepository) CountFound(ctx context.Context, userID string, itemID int64) (int, error) {
	var count int
	err := r.db.Pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM found_records WHERE user_id = $1 AND item_id = $2`,
		userID, itemID,
	).Scan(&count)
	if err != nil {
		return 0, database.MapPostgresError(err)
	}
	return count, nil
}
