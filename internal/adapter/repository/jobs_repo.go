package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"dyd/internal/domain"
	"dyd/internal/usecase"

	"github.com/google/uuid"
)

const jobColumns = `id, user_id, cv_id, kind, status, job_description, result, score, error, created_at, updated_at, completed_at`

const upsertJob = `INSERT INTO analysis_jobs (` + jobColumns + `)
	VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)
	ON CONFLICT (id) DO UPDATE SET status = EXCLUDED.status, job_description = EXCLUDED.job_description,
		result = EXCLUDED.result, score = EXCLUDED.score, error = EXCLUDED.error,
		updated_at = EXCLUDED.updated_at, completed_at = EXCLUDED.completed_at`

func scanJob(row rowScanner) (*domain.AnalysisJob, error) {
	var (
		j      domain.AnalysisJob
		result []byte
	)
	if err := row.Scan(&j.ID, &j.UserID, &j.CVID, &j.Kind, &j.Status, &j.JobDescription, &result, &j.Score,
		&j.Error, &j.CreatedAt, &j.UpdatedAt, &j.CompletedAt); err != nil {
		return nil, err
	}
	if len(result) > 0 {
		if err := json.Unmarshal(result, &j.Result); err != nil {
			return nil, fmt.Errorf("decode job %s result: %w", j.ID, err)
		}
	}
	return &j, nil
}

func jobArgs(j *domain.AnalysisJob) ([]interface{}, error) {
	var result []byte
	if j.Result != nil {
		b, err := json.Marshal(j.Result)
		if err != nil {
			return nil, err
		}
		result = b
	}
	return []interface{}{j.ID, j.UserID, j.CVID, j.Kind, j.Status, j.JobDescription, result, j.Score,
		j.Error, j.CreatedAt, j.UpdatedAt, j.CompletedAt}, nil
}

func (r *Postgres) SaveJob(ctx context.Context, j *domain.AnalysisJob) error {
	args, err := jobArgs(j)
	if err != nil {
		return err
	}
	_, err = r.pool.Exec(ctx, upsertJob, args...)
	return err
}

func (r *Postgres) GetJob(ctx context.Context, id uuid.UUID) (*domain.AnalysisJob, error) {
	j, err := scanJob(r.pool.QueryRow(ctx, `SELECT `+jobColumns+` FROM analysis_jobs WHERE id = $1`, id))
	return j, notFound(err)
}

func (r *Postgres) ListJobs(ctx context.Context, userID uuid.UUID) ([]domain.AnalysisJob, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+jobColumns+` FROM analysis_jobs WHERE user_id = $1 ORDER BY created_at DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []domain.AnalysisJob{}
	for rows.Next() {
		j, err := scanJob(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *j)
	}
	return out, rows.Err()
}

// UpdateJob locks the row for the duration of fn.
func (r *Postgres) UpdateJob(ctx context.Context, id uuid.UUID, fn func(*domain.AnalysisJob) error) (*domain.AnalysisJob, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	cur, err := scanJob(tx.QueryRow(ctx, `SELECT `+jobColumns+` FROM analysis_jobs WHERE id = $1 FOR UPDATE`, id))
	if err != nil {
		return nil, notFound(err)
	}
	next := *cur
	if err := fn(&next); err != nil {
		if errors.Is(err, usecase.ErrSkipUpdate) {
			return cur, nil
		}
		return nil, err
	}
	args, err := jobArgs(&next)
	if err != nil {
		return nil, err
	}
	if _, err := tx.Exec(ctx, upsertJob, args...); err != nil {
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return &next, nil
}
