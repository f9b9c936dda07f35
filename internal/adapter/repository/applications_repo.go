package repository

import (
	"context"

	"dyd/internal/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v4"
)

const appColumns = `id, user_id, cv_id, company, role, url, notes, board_column, rank, applied_at, created_at, updated_at`

func scanApplication(row rowScanner) (*domain.Application, error) {
	var a domain.Application
	if err := row.Scan(&a.ID, &a.UserID, &a.CVID, &a.Company, &a.Role, &a.URL, &a.Notes, &a.Column, &a.Rank,
		&a.AppliedAt, &a.CreatedAt, &a.UpdatedAt); err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *Postgres) CreateApplication(ctx context.Context, a *domain.Application) error {
	_, err := r.pool.Exec(ctx, `INSERT INTO applications (`+appColumns+`)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)`,
		a.ID, a.UserID, a.CVID, a.Company, a.Role, a.URL, a.Notes, a.Column, a.Rank, a.AppliedAt, a.CreatedAt, a.UpdatedAt)
	return err
}

func (r *Postgres) GetApplication(ctx context.Context, id uuid.UUID) (*domain.Application, error) {
	a, err := scanApplication(r.pool.QueryRow(ctx, `SELECT `+appColumns+` FROM applications WHERE id = $1`, id))
	return a, notFound(err)
}

func (r *Postgres) ListApplications(ctx context.Context, userID uuid.UUID) ([]domain.Application, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+appColumns+` FROM applications WHERE user_id = $1
		ORDER BY board_column, rank, created_at`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []domain.Application{}
	for rows.Next() {
		a, err := scanApplication(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *a)
	}
	return out, rows.Err()
}

func (r *Postgres) UpdateApplication(ctx context.Context, a *domain.Application) error {
	tag, err := r.pool.Exec(ctx, `UPDATE applications SET cv_id = $2, company = $3, role = $4, url = $5, notes = $6,
		updated_at = $7 WHERE id = $1`, a.ID, a.CVID, a.Company, a.Role, a.URL, a.Notes, a.UpdatedAt)
	if err != nil {
		return err
	}
	return affected(tag.RowsAffected())
}

// SaveRanks writes every card in one batch inside a transaction.
func (r *Postgres) SaveRanks(ctx context.Context, apps []domain.Application) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	batch := &pgx.Batch{}
	for _, a := range apps {
		batch.Queue(`UPDATE applications SET board_column = $2, rank = $3, applied_at = $4,
			updated_at = GREATEST(updated_at, $5) WHERE id = $1`, a.ID, a.Column, a.Rank, a.AppliedAt, a.UpdatedAt)
	}
	br := tx.SendBatch(ctx, batch)
	for range apps {
		tag, err := br.Exec()
		if err != nil {
			br.Close()
			return err
		}
		if tag.RowsAffected() == 0 {
			br.Close()
			return domain.ErrNotFound
		}
	}
	if err := br.Close(); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func (r *Postgres) DeleteApplication(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM applications WHERE id = $1`, id)
	if err != nil {
		return err
	}
	return affected(tag.RowsAffected())
}
