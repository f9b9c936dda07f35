package usecase_test

import (
	"context"
	"strings"
	"testing"

	"dyd/internal/adapter/repository"
	"dyd/internal/domain"
	"dyd/internal/model"
	"dyd/internal/usecase"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCVServiceLifecycle(t *testing.T) {
	ctx := context.Background()
	svc := usecase.NewCVService(repository.NewMemory())
	user := uuid.New()

	rec, err := svc.Create(ctx, user, "", model.CV{Personal: model.Personal{Name: "Ada Lovelace"}})
	require.NoError(t, err)
	assert.Equal(t, "Ada Lovelace", rec.Title)

	steps, err := svc.Steps(ctx, user, rec.ID)
	require.NoError(t, err)
	assert.False(t, usecase.Complete(steps))

	updated, err := svc.Update(ctx, user, rec.ID, "Backend roles", completeCV())
	require.NoError(t, err)
	assert.Equal(t, "Backend roles", updated.Title)

	steps, err = svc.Steps(ctx, user, rec.ID)
	require.NoError(t, err)
	assert.True(t, usecase.Complete(steps))

	list, err := svc.List(ctx, user)
	require.NoError(t, err)
	assert.Len(t, list, 1)

	_, err = svc.Get(ctx, uuid.New(), rec.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.ErrorIs(t, svc.Delete(ctx, uuid.New(), rec.ID), domain.ErrNotFound)

	require.NoError(t, svc.Delete(ctx, user, rec.ID))
	_, err = svc.Get(ctx, user, rec.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestCVServiceRejectsInvalid(t *testing.T) {
	svc := usecase.NewCVService(repository.NewMemory())
	_, err := svc.Create(context.Background(), uuid.New(), "", model.CV{Personal: model.Personal{Name: strings.Repeat("x", 500)}})
	var verr *domain.ValidationError
	assert.ErrorAs(t, err, &verr)

	rec, err := svc.Create(context.Background(), uuid.New(), "", model.CV{})
	require.NoError(t, err)
	assert.Equal(t, "Untitled CV", rec.Title)
}

func TestCVServiceUpdateRejectsBlankEntry(t *testing.T) {
	ctx := context.Background()
	svc := usecase.NewCVService(repository.NewMemory())
	user := uuid.New()
	rec, err := svc.Create(ctx, user, "", completeCV())
	require.NoError(t, err)

	cv := completeCV()
	cv.Experience[0].Title = ""
	_, err = svc.Update(ctx, user, rec.ID, "", cv)
	var verr *domain.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Error(), "title")

	got, err := svc.Get(ctx, user, rec.ID)
	require.NoError(t, err)
	assert.Equal(t, "Programmer", got.Data.Experience[0].Title)
}
