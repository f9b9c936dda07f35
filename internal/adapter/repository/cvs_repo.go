package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"dyd/internal/domain"

	"github.com/google/uuid"
)

const cvColumns = `id, user_id, title, data, created_at, updated_at`

func scanCV(row rowScanner) (*domain.CVRecord, error) {
	var (
		cv   domain.CVRecord
		data []byte
	)
	if err := row.Scan(&cv.ID, &cv.UserID, &cv.Title, &data, &cv.CreatedAt, &cv.UpdatedAt); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(data, &cv.Data); err != nil {
		return nil, fmt.Errorf("decode cv %s: %w", cv.ID, err)
	}
	return &cv, nil
}

func (r *Postgres) CreateCV(ctx context.Context, cv *domain.CVRecord) error {
	data, err := json.Marshal(cv.Data)
	if err != nil {
		return err
	}
	_, err = r.pool.Exec(ctx, `INSERT INTO cvs (`+cvColumns+`) VALUES ($1,$2,$3,$4,$5,$6)`,
		cv.ID, cv.UserID, cv.Title, data, cv.CreatedAt, cv.UpdatedAt)
	return err
}

func (r *Postgres) GetCV(ctx context.Context, id uuid.UUID) (*domain.CVRecord, error) {
	cv, err := scanCV(r.pool.QueryRow(ctx, `SELECT `+cvColumns+` FROM cvs WHERE id = $1`, id))
	return cv, notFound(err)
}

func (r *Postgres) ListCVs(ctx context.Context, userID uuid.UUID) ([]domain.CVRecord, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+cvColumns+` FROM cvs WHERE user_id = $1 ORDER BY updated_at DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []domain.CVRecord{}
	for rows.Next() {
		cv, err := scanCV(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *cv)
	}
	return out, rows.Err()
}

func (r *Postgres) UpdateCV(ctx context.Context, cv *domain.CVRecord) error {
	data, err := json.Marshal(cv.Data)
	if err != nil {
		return err
	}
	tag, err := r.pool.Exec(ctx, `UPDATE cvs SET title = $2, data = $3, updated_at = $4 WHERE id = $1`,
		cv.ID, cv.Title, data, cv.UpdatedAt)
	if err != nil {
		return err
	}
	return affected(tag.RowsAffected())
}

// DeleteCV leaves jobs and exports in place; board cards lose their link
// through ON DELETE SET NULL.
func (r *Postgres) DeleteCV(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM cvs WHERE id = $1`, id)
	if err != nil {
		return err
	}
	return affected(tag.RowsAffected())
}
