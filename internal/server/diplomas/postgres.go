package diplomas

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/pmorel/cv-backend/internal/common"
	"github.com/pmorel/cv-backend/internal/dbx"
)

// PostgresRepository implements Repository over a dbx.DBTX
// (*sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

// NewPostgresRepository constructs a repository bound to the given DBTX.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

const diplomaColumns = `id, title, title_fr, institution, institution_fr, year, category, pdf_url, created_at, updated_at`

func scanDiploma(row interface{ Scan(dest ...any) error }) (*Diploma, error) {
	var d Diploma
	err := row.Scan(
		&d.ID, &d.Title, &d.TitleFr, &d.Institution, &d.InstitutionFr,
		&d.Year, &d.Category, &d.PdfURL, &d.CreatedAt, &d.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

// List returns all diplomas in the fixed public order: category rank first,
// year descending within a category. The ordering lives in SQL so every
// caller sees the same contract.
func (r *PostgresRepository) List(ctx context.Context) ([]*Diploma, error) {
	query := `
		SELECT ` + diplomaColumns + ` FROM diplomas
		ORDER BY
			CASE category
				WHEN 'fitness' THEN 1
				WHEN 'medical' THEN 2
				WHEN 'military' THEN 3
				WHEN 'tech' THEN 4
				WHEN 'business' THEN 5
			END,
			year DESC
	`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to select diplomas: %w", err)
	}
	defer rows.Close()

	var result []*Diploma
	for rows.Next() {
		item, err := scanDiploma(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, id int64) (*Diploma, error) {
	query := `SELECT ` + diplomaColumns + ` FROM diplomas WHERE id = $1`

	d, err := scanDiploma(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("failed to select diploma: %w", err)
	}
	return d, nil
}

// Create inserts a row and returns it with the assigned id and timestamps.
// Business rules are validated upstream; the category CHECK constraint
// still guards this layer as defense in depth and surfaces as a raw error.
func (r *PostgresRepository) Create(ctx context.Context, in *CreateInput) (*Diploma, error) {
	query := `
		INSERT INTO diplomas (title, title_fr, institution, institution_fr, year, category, pdf_url)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING ` + diplomaColumns + `
	`
	d, err := scanDiploma(r.db.QueryRowContext(ctx, query,
		in.Title, in.TitleFr, in.Institution, in.InstitutionFr, in.Year, in.Category, in.PdfURL))
	if err != nil {
		return nil, fmt.Errorf("failed to insert diploma: %w", err)
	}
	return d, nil
}

// Update overwrites only the non-nil fields and refreshes updated_at.
func (r *PostgresRepository) Update(ctx context.Context, id int64, in *UpdateInput) (*Diploma, error) {
	query := `
		UPDATE diplomas
		SET
			title = COALESCE($2, title),
			title_fr = COALESCE($3, title_fr),
			institution = COALESCE($4, institution),
			institution_fr = COALESCE($5, institution_fr),
			year = COALESCE($6, year),
			category = COALESCE($7, category),
			pdf_url = COALESCE($8, pdf_url),
			updated_at = CURRENT_TIMESTAMP
		WHERE id = $1
		RETURNING ` + diplomaColumns + `
	`
	d, err := scanDiploma(r.db.QueryRowContext(ctx, query,
		id, in.Title, in.TitleFr, in.Institution, in.InstitutionFr, in.Year, in.Category, in.PdfURL))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("failed to update diploma: %w", err)
	}
	return d, nil
}

// Delete removes the row and reports whether one was removed.
func (r *PostgresRepository) Delete(ctx context.Context, id int64) (bool, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM diplomas WHERE id = $1`, id)
	if err != nil {
		return false, fmt.Errorf("failed to delete diploma: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected error: %w", err)
	}
	return n > 0, nil
}
