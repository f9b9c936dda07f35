package repository

import (
	"errors"

	"dyd/internal/domain"
	"dyd/internal/usecase"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"
)

// Postgres implements the usecase repositories on a pgx pool.
type Postgres struct {
	pool *pgxpool.Pool
}

func NewPostgres(pool *pgxpool.Pool) *Postgres {
	return &Postgres{pool: pool}
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func notFound(err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.ErrNotFound
	}
	return err
}

func affected(n int64) error {
	if n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

var (
	_ usecase.CVRepo          = (*Postgres)(nil)
	_ usecase.JobsRepo        = (*Postgres)(nil)
	_ usecase.EntitlementRepo = (*Postgres)(nil)
	_ usecase.ApplicationRepo = (*Postgres)(nil)
	_ usecase.ExportRepo      = (*Postgres)(nil)
	_ usecase.DashboardReader = (*Postgres)(nil)
)
