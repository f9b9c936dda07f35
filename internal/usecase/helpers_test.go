package usecase_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"

	"dyd/internal/adapter/repository"
	"dyd/internal/domain"
	"dyd/internal/model"
	"dyd/internal/usecase"
	"dyd/pkg/automation"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func completeCV() model.CV {
	return model.CV{
		Personal:   model.Personal{Name: "Ada Lovelace", Email: "ada@example.com"},
		Summary:    "Mathematician and first programmer.",
		Experience: []model.Role{{Company: "Analytical Engines", Title: "Programmer", Start: "1842", Bullets: []string{"Wrote note G"}}},
		Education:  []model.Education{{School: "Home tutoring"}},
		Skills:     []string{"Mathematics", "Translation"},
	}
}

type fakeForwarder struct {
	mu   sync.Mutex
	reqs []automation.ForwardRequest
	err  error
	// onForward runs before returning, e.g. to simulate an early callback.
	onForward func(automation.ForwardRequest)
}

func (f *fakeForwarder) Forward(_ context.Context, req automation.ForwardRequest) error {
	f.mu.Lock()
	f.reqs = append(f.reqs, req)
	hook, err := f.onForward, f.err
	f.mu.Unlock()
	if hook != nil {
		hook(req)
	}
	return err
}

var errUnreachable = errors.New("connection refused")

func seedCV(t *testing.T, store *repository.Memory, userID uuid.UUID, cv model.CV) *domain.CVRecord {
	t.Helper()
	rec, err := usecase.NewCVService(store).Create(context.Background(), userID, "", cv)
	require.NoError(t, err)
	return rec
}

func grant(t *testing.T, store *repository.Memory, userID uuid.UUID, credits int) {
	t.Helper()
	require.NoError(t, store.GrantCredits(context.Background(), userID, "", credits, false))
}
