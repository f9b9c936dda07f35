package migration

import (
	"context"
	"log/slog"

	"github.com/jackc/pgx/v4/pgxpool"
)

// RunMigrations creates the schema on startup. Every statement is idempotent.
func RunMigrations(ctx context.Context, pool *pgxpool.Pool) error {
	slog.Info("Starting database migrations")

	for _, m := range Migrations {
		if err := m.Up(ctx, pool); err != nil {
			slog.Error("Migration failed", "name", m.Name, "error", err)
			return err
		}
		slog.Info("Migration completed", "name", m.Name)
	}

	slog.Info("All migrations completed successfully")
	return nil
}

// Migration represents a database migration
type Migration struct {
	Name string
	Up   func(ctx context.Context, pool *pgxpool.Pool) error
}

func exec(query string) func(ctx context.Context, pool *pgxpool.Pool) error {
	return func(ctx context.Context, pool *pgxpool.Pool) error {
		_, err := pool.Exec(ctx, query)
		return err
	}
}

// Migrations run in order.
var Migrations = []Migration{
	{
		Name: "create_cvs",
		Up: exec(`
			CREATE TABLE IF NOT EXISTS cvs (
				id UUID PRIMARY KEY,
				user_id UUID NOT NULL,
				title TEXT NOT NULL DEFAULT '',
				data JSONB NOT NULL DEFAULT '{}'::jsonb,
				created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
				updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
			);
			CREATE INDEX IF NOT EXISTS cvs_user_idx ON cvs (user_id, updated_at DESC);`),
	},
	{
		Name: "create_analysis_jobs",
		Up: exec(`
			CREATE TABLE IF NOT EXISTS analysis_jobs (
				id UUID PRIMARY KEY,
				user_id UUID NOT NULL,
				cv_id UUID NOT NULL,
				kind TEXT NOT NULL,
				status TEXT NOT NULL,
				job_description TEXT NOT NULL DEFAULT '',
				result JSONB,
				score INTEGER,
				error TEXT NOT NULL DEFAULT '',
				created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
				updated_at TIMESTAMPTZ NOT NULL DEFAULT now(),
				completed_at TIMESTAMPTZ
			);
			CREATE INDEX IF NOT EXISTS analysis_jobs_user_idx ON analysis_jobs (user_id, created_at DESC);`),
	},
	{
		Name: "create_entitlements",
		Up: exec(`
			CREATE TABLE IF NOT EXISTS entitlements (
				user_id UUID PRIMARY KEY,
				customer_id TEXT NOT NULL DEFAULT '',
				credits INTEGER NOT NULL DEFAULT 0 CHECK (credits >= 0),
				subscription_active BOOLEAN NOT NULL DEFAULT false,
				updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
			);
			CREATE INDEX IF NOT EXISTS entitlements_customer_idx ON entitlements (customer_id);
			CREATE TABLE IF NOT EXISTS processed_events (
				id TEXT PRIMARY KEY,
				type TEXT NOT NULL,
				processed_at TIMESTAMPTZ NOT NULL DEFAULT now()
			);`),
	},
	{
		Name: "create_applications",
		Up: exec(`
			CREATE TABLE IF NOT EXISTS applications (
				id UUID PRIMARY KEY,
				user_id UUID NOT NULL,
				cv_id UUID REFERENCES cvs (id) ON DELETE SET NULL,
				company TEXT NOT NULL,
				role TEXT NOT NULL,
				url TEXT NOT NULL DEFAULT '',
				notes TEXT NOT NULL DEFAULT '',
				board_column TEXT NOT NULL,
				rank INTEGER NOT NULL DEFAULT 0,
				applied_at TIMESTAMPTZ,
				created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
				updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
			);
			CREATE INDEX IF NOT EXISTS applications_user_idx ON applications (user_id, board_column, rank);`),
	},
	{
		Name: "create_cv_exports",
		Up: exec(`
			CREATE TABLE IF NOT EXISTS cv_exports (
				id UUID PRIMARY KEY,
				user_id UUID NOT NULL,
				cv_id UUID NOT NULL,
				format TEXT NOT NULL,
				mode TEXT NOT NULL DEFAULT '',
				template TEXT NOT NULL DEFAULT '',
				pages INTEGER NOT NULL DEFAULT 0,
				size INTEGER NOT NULL DEFAULT 0,
				path TEXT NOT NULL,
				url TEXT NOT NULL,
				created_at TIMESTAMPTZ NOT NULL DEFAULT now()
			);
			CREATE INDEX IF NOT EXISTS cv_exports_cv_idx ON cv_exports (user_id, cv_id, created_at DESC);`),
	},
}
