package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"dyd/internal/domain"
	"dyd/internal/usecase"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryUpdateJob(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	job := &domain.AnalysisJob{ID: uuid.New(), UserID: uuid.New(), Status: domain.StatusPending, CreatedAt: time.Now()}
	require.NoError(t, m.SaveJob(ctx, job))

	got, err := m.UpdateJob(ctx, job.ID, func(j *domain.AnalysisJob) error {
		j.Status = domain.StatusProcessing
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, domain.StatusProcessing, got.Status)

	got, err = m.UpdateJob(ctx, job.ID, func(j *domain.AnalysisJob) error {
		j.Status = domain.StatusFailed
		return usecase.ErrSkipUpdate
	})
	require.NoError(t, err)
	assert.Equal(t, domain.StatusProcessing, got.Status)

	boom := errors.New("boom")
	_, err = m.UpdateJob(ctx, job.ID, func(j *domain.AnalysisJob) error {
		j.Status = domain.StatusFailed
		return boom
	})
	assert.ErrorIs(t, err, boom)
	stored, err := m.GetJob(ctx, job.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusProcessing, stored.Status)

	_, err = m.UpdateJob(ctx, uuid.New(), func(*domain.AnalysisJob) error { return nil })
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestMemoryCredits(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	user := uuid.New()

	_, err := m.ConsumeCredit(ctx, user)
	assert.ErrorIs(t, err, domain.ErrPaymentRequired)

	require.NoError(t, m.GrantCredits(ctx, user, "cus_1", 1, false))
	consumed, err := m.ConsumeCredit(ctx, user)
	require.NoError(t, err)
	assert.True(t, consumed)
	_, err = m.ConsumeCredit(ctx, user)
	assert.ErrorIs(t, err, domain.ErrPaymentRequired)

	require.NoError(t, m.RefundCredit(ctx, user))
	require.NoError(t, m.GrantCredits(ctx, user, "", 0, true))
	consumed, err = m.ConsumeCredit(ctx, user)
	require.NoError(t, err)
	assert.False(t, consumed, "subscriptions do not spend credits")

	e, err := m.GetEntitlement(ctx, user)
	require.NoError(t, err)
	assert.Equal(t, 1, e.Credits)
	assert.Equal(t, "cus_1", e.CustomerID)

	require.NoError(t, m.DeactivateSubscription(ctx, "cus_1"))
	assert.ErrorIs(t, m.DeactivateSubscription(ctx, "cus_unknown"), domain.ErrNotFound)
}

func TestMemoryApplyEvent(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	user := uuid.New()
	grant := func(w usecase.EntitlementWriter) error {
		return w.GrantCredits(ctx, user, "", 1, false)
	}

	boom := errors.New("boom")
	applied, err := m.ApplyEvent(ctx, "evt_1", "checkout.session.completed", func(usecase.EntitlementWriter) error { return boom })
	assert.ErrorIs(t, err, boom)
	assert.False(t, applied)
	done, err := m.EventProcessed(ctx, "evt_1")
	require.NoError(t, err)
	assert.False(t, done, "failed apply must release the claim")

	applied, err = m.ApplyEvent(ctx, "evt_1", "checkout.session.completed", grant)
	require.NoError(t, err)
	assert.True(t, applied)

	applied, err = m.ApplyEvent(ctx, "evt_1", "checkout.session.completed", grant)
	require.NoError(t, err)
	assert.False(t, applied)

	e, err := m.GetEntitlement(ctx, user)
	require.NoError(t, err)
	assert.Equal(t, 1, e.Credits)
}

func TestMemoryDeleteCVUnlinksCards(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	user := uuid.New()
	cv := &domain.CVRecord{ID: uuid.New(), UserID: user}
	require.NoError(t, m.CreateCV(ctx, cv))
	app := &domain.Application{ID: uuid.New(), UserID: user, CVID: &cv.ID, Column: domain.ColumnWishlist}
	require.NoError(t, m.CreateApplication(ctx, app))

	require.NoError(t, m.DeleteCV(ctx, cv.ID))
	got, err := m.GetApplication(ctx, app.ID)
	require.NoError(t, err)
	assert.Nil(t, got.CVID)
}
