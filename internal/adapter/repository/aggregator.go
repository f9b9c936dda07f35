package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"dyd/internal/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v4/pgxpool"
)

// queryJSON runs a SQL that returns a single json value and unmarshals it
// into out.
func queryJSON(ctx context.Context, pool *pgxpool.Pool, out interface{}, sql string, args ...interface{}) error {
	var raw []byte
	if err := pool.QueryRow(ctx, sql, args...).Scan(&raw); err != nil {
		return err
	}
	if len(raw) == 0 {
		return nil
	}
	return json.Unmarshal(raw, out)
}

const dashboardSQL = `SELECT json_build_object(
	'cvs', (SELECT count(*) FROM cvs WHERE user_id = $1),
	'analyses', (SELECT coalesce(json_object_agg(status, n), '{}')
		FROM (SELECT status, count(*) AS n FROM analysis_jobs WHERE user_id = $1 GROUP BY status) s),
	'latest_score', (SELECT score FROM analysis_jobs
		WHERE user_id = $1 AND status = 'completed' AND score IS NOT NULL
		ORDER BY completed_at DESC NULLS LAST LIMIT 1),
	'applications', (SELECT coalesce(json_object_agg(board_column, n), '{}')
		FROM (SELECT board_column, count(*) AS n FROM applications WHERE user_id = $1 GROUP BY board_column) a),
	'entitlement', (SELECT row_to_json(e) FROM entitlements e WHERE e.user_id = $1),
	'recent_exports', (SELECT coalesce(json_agg(x), '[]')
		FROM (SELECT * FROM cv_exports WHERE user_id = $1 ORDER BY created_at DESC LIMIT 5) x)
)`

// Dashboard collects the profile summary in one round trip.
func (r *Postgres) Dashboard(ctx context.Context, userID uuid.UUID) (*domain.Dashboard, error) {
	var d domain.Dashboard
	if err := queryJSON(ctx, r.pool, &d, dashboardSQL, userID); err != nil {
		return nil, fmt.Errorf("dashboard: %w", err)
	}
	return &d, nil
}
