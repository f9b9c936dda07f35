package repository

import (
	"context"

	"dyd/internal/domain"
	"dyd/internal/usecase"

	"github.com/google/uuid"
	"github.com/jackc/pgconn"
)

func (r *Postgres) GetEntitlement(ctx context.Context, userID uuid.UUID) (*domain.Entitlement, error) {
	var e domain.Entitlement
	err := r.pool.QueryRow(ctx, `SELECT user_id, customer_id, credits, subscription_active, updated_at
		FROM entitlements WHERE user_id = $1`, userID).
		Scan(&e.UserID, &e.CustomerID, &e.Credits, &e.SubscriptionActive, &e.UpdatedAt)
	if err != nil {
		return nil, notFound(err)
	}
	return &e, nil
}

// ConsumeCredit never takes credits below zero; the guard is in the UPDATE.
func (r *Postgres) ConsumeCredit(ctx context.Context, userID uuid.UUID) (bool, error) {
	e, err := r.GetEntitlement(ctx, userID)
	if err == domain.ErrNotFound {
		return false, domain.ErrPaymentRequired
	}
	if err != nil {
		return false, err
	}
	if e.SubscriptionActive {
		return false, nil
	}
	tag, err := r.pool.Exec(ctx, `UPDATE entitlements SET credits = credits - 1, updated_at = now()
		WHERE user_id = $1 AND credits > 0`, userID)
	if err != nil {
		return false, err
	}
	if tag.RowsAffected() == 0 {
		return false, domain.ErrPaymentRequired
	}
	return true, nil
}

func (r *Postgres) RefundCredit(ctx context.Context, userID uuid.UUID) error {
	return r.GrantCredits(ctx, userID, "", 1, false)
}

// execer is satisfied by both the pool and a transaction.
type execer interface {
	Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
}

type entitlementWriter struct {
	q execer
}

func (w entitlementWriter) GrantCredits(ctx context.Context, userID uuid.UUID, customerID string, credits int, subscription bool) error {
	_, err := w.q.Exec(ctx, `INSERT INTO entitlements (user_id, customer_id, credits, subscription_active, updated_at)
		VALUES ($1, $2, $3, $4, now())
		ON CONFLICT (user_id) DO UPDATE SET
			customer_id = CASE WHEN EXCLUDED.customer_id <> '' THEN EXCLUDED.customer_id ELSE entitlements.customer_id END,
			credits = entitlements.credits + EXCLUDED.credits,
			subscription_active = entitlements.subscription_active OR EXCLUDED.subscription_active,
			updated_at = now()`,
		userID, customerID, credits, subscription)
	return err
}

func (w entitlementWriter) DeactivateSubscription(ctx context.Context, customerID string) error {
	tag, err := w.q.Exec(ctx, `UPDATE entitlements SET subscription_active = false, updated_at = now()
		WHERE customer_id = $1`, customerID)
	if err != nil {
		return err
	}
	return affected(tag.RowsAffected())
}

func (r *Postgres) GrantCredits(ctx context.Context, userID uuid.UUID, customerID string, credits int, subscription bool) error {
	return entitlementWriter{r.pool}.GrantCredits(ctx, userID, customerID, credits, subscription)
}

func (r *Postgres) DeactivateSubscription(ctx context.Context, customerID string) error {
	return entitlementWriter{r.pool}.DeactivateSubscription(ctx, customerID)
}

func (r *Postgres) EventProcessed(ctx context.Context, eventID string) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM processed_events WHERE id = $1)`, eventID).Scan(&exists)
	return exists, err
}

// ApplyEvent inserts the processed_events row and runs apply in one
// transaction. A concurrent delivery blocks on the primary key until this one
// commits or rolls back.
func (r *Postgres) ApplyEvent(ctx context.Context, eventID, eventType string, apply func(usecase.EntitlementWriter) error) (bool, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return false, err
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	tag, err := tx.Exec(ctx, `INSERT INTO processed_events (id, type, processed_at) VALUES ($1, $2, now())
		ON CONFLICT (id) DO NOTHING`, eventID, eventType)
	if err != nil {
		return false, err
	}
	if tag.RowsAffected() == 0 {
		return false, nil
	}
	if err := apply(entitlementWriter{tx}); err != nil {
		return false, err
	}
	if err := tx.Commit(ctx); err != nil {
		return false, err
	}
	return true, nil
}
