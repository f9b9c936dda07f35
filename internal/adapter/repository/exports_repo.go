package repository

import (
	"context"

	"dyd/internal/domain"

	"github.com/google/uuid"
)

const exportColumns = `id, user_id, cv_id, format, mode, template, pages, size, path, url, created_at`

func scanExport(row rowScanner) (*domain.Export, error) {
	var e domain.Export
	if err := row.Scan(&e.ID, &e.UserID, &e.CVID, &e.Format, &e.Mode, &e.Template, &e.Pages, &e.Size,
		&e.Path, &e.URL, &e.CreatedAt); err != nil {
		return nil, err
	}
	return &e, nil
}

func (r *Postgres) CreateExport(ctx context.Context, e *domain.Export) error {
	_, err := r.pool.Exec(ctx, `INSERT INTO cv_exports (`+exportColumns+`)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)`,
		e.ID, e.UserID, e.CVID, e.Format, e.Mode, e.Template, e.Pages, e.Size, e.Path, e.URL, e.CreatedAt)
	return err
}

func (r *Postgres) ListExports(ctx context.Context, userID, cvID uuid.UUID) ([]domain.Export, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+exportColumns+` FROM cv_exports
		WHERE user_id = $1 AND cv_id = $2 ORDER BY created_at DESC`, userID, cvID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []domain.Export{}
	for rows.Next() {
		e, err := scanExport(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *e)
	}
	return out, rows.Err()
}
