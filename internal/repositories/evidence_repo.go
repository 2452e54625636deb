package repositories

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/tcollier/fieldhunt/internal/database"
	"github.com/tcollier/fieldhunt/internal/models"
)

type EvidenceRepository struct {
	pool *pgxpool.Pool
}

func NewEvidenceRepository(db *database.DB) *EvidenceRepository {
	return &EvidenceRepository{pool: db.Pool}
}

const evidenceColumns = "id, title, scan_code, keyword, hint, filename, bonus"

func scanEvidenceRow(scanner rowScanner) (*models.EvidenceItem, error) {
	var item models.EvidenceItem

	err := scanner.Scan(
		&item.ID, &item.Title, &item.ScanCode,
		&item.Keyword, &item.Hint, &item.Filename, &item.Bonus,
	)
	if err != nil {
		return nil, database.MapPostgresError(err)
	}

	return &item, nil
}

func scanEvidenceRows(rows pgx.Rows) ([]*models.EvidenceItem, error) {
	defer rows.Close()

	items := make([]*models.EvidenceItem, 0)

	for rows.Next() {
		item, err := scanEvidenceRow(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan evidence item: %w", err)
		}
		items = append(items, item)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return items, nil
}

func (r *EvidenceRepository) GetByID(ctx context.Context, id int64) (*models.EvidenceItem, error) {
	query := `SELECT ` + evidenceColumns + ` FROM evidence_items WHERE id = $1`

	return scanEvidenceRow(r.pool.QueryRow(ctx, query, id))
}

func (r *EvidenceRepository) GetByScanCode(ctx context.Context, scanCode string) (*models.EvidenceItem, error) {
	query := `SELECT ` + evidenceColumns + ` FROM evidence_items WHERE scan_code = $1`

	return scanEvidenceRow(r.pool.QueryRow(ctx, query, scanCode))
}

// All returns the catalog in stable id order.
func (r *EvidenceRepository) All(ctx context.Context) ([]*models.EvidenceItem, error) {
	query := `SELECT ` + evidenceColumns + ` FROM evidence_items ORDER BY id`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query evidence items: %w", err)
	}

	return scanEvidenceRows(rows)
}

func (r *EvidenceRepository) Create(ctx context.Context, item *models.EvidenceItem) (*models.EvidenceItem, error) {
	query := `
		INSERT INTO evidence_items (title, scan_code, keyword, hint, filename, bonus)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING ` + evidenceColumns

	return scanEvidenceRow(r.pool.QueryRow(ctx, query,
		item.Title, item.ScanCode, item.Keyword, item.Hint, item.Filename, item.Bonus,
	))
}

// Patch applies only the non-nil fields. A scan-code collision surfaces as
// ErrConflict via the unique constraint.
func (r *EvidenceRepository) Patch(ctx context.Context, id int64, patch models.EvidencePatch) (*models.EvidenceItem, error) {
	query := `
		UPDATE evidence_items SET
			title = COALESCE($1, title),
			scan_code = COALESCE($2, scan_code),
			keyword = COALESCE($3, keyword),
			hint = COALESCE($4, hint),
			filename = COALESCE($5, filename),
			bonus = COALESCE($6, bonus)
		WHERE id = $7
		RETURNING ` + evidenceColumns

	return scanEvidenceRow(r.pool.QueryRow(ctx, query,
		patch.Title, patch.ScanCode, patch.Keyword, patch.Hint, patch.Filename, patch.Bonus, id,
	))
}
