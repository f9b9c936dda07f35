package usecase

import (
	"context"
	"strings"
	"time"

	"dyd/internal/domain"
	"dyd/internal/model"

	"github.com/google/uuid"
)

// CVService stores wizard drafts.
type CVService struct {
	repo CVRepo
}

func NewCVService(repo CVRepo) *CVService {
	return &CVService{repo: repo}
}

// ownedCV loads a CV and hides it from anyone but its owner.
func ownedCV(ctx context.Context, repo CVRepo, userID, id uuid.UUID) (*domain.CVRecord, error) {
	rec, err := repo.GetCV(ctx, id)
	if err != nil {
		return nil, err
	}
	if rec.UserID != userID {
		return nil, domain.ErrNotFound
	}
	return rec, nil
}

func validateCV(cv model.CV) error {
	if err := model.Validate(cv); err != nil {
		return domain.NewValidationError(err.Error())
	}
	return nil
}

func titleFor(title string, cv model.CV) string {
	if t := strings.TrimSpace(title); t != "" {
		return t
	}
	if n := strings.TrimSpace(cv.Personal.Name); n != "" {
		return n
	}
	return "Untitled CV"
}

func (s *CVService) Create(ctx context.Context, userID uuid.UUID, title string, cv model.CV) (*domain.CVRecord, error) {
	if err := validateCV(cv); err != nil {
		return nil, err
	}
	now := time.Now()
	rec := &domain.CVRecord{
		ID:        uuid.New(),
		UserID:    userID,
		Title:     titleFor(title, cv),
		Data:      cv,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.repo.CreateCV(ctx, rec); err != nil {
		return nil, err
	}
	return rec, nil
}

func (s *CVService) Get(ctx context.Context, userID, id uuid.UUID) (*domain.CVRecord, error) {
	return ownedCV(ctx, s.repo, userID, id)
}

func (s *CVService) List(ctx context.Context, userID uuid.UUID) ([]domain.CVRecord, error) {
	return s.repo.ListCVs(ctx, userID)
}

func (s *CVService) Update(ctx context.Context, userID, id uuid.UUID, title string, cv model.CV) (*domain.CVRecord, error) {
	rec, err := ownedCV(ctx, s.repo, userID, id)
	if err != nil {
		return nil, err
	}
	if err := validateCV(cv); err != nil {
		return nil, err
	}
	if strings.TrimSpace(title) != "" {
		rec.Title = strings.TrimSpace(title)
	}
	rec.Data = cv
	rec.UpdatedAt = time.Now()
	if err := s.repo.UpdateCV(ctx, rec); err != nil {
		return nil, err
	}
	return rec, nil
}

func (s *CVService) Delete(ctx context.Context, userID, id uuid.UUID) error {
	if _, err := ownedCV(ctx, s.repo, userID, id); err != nil {
		return err
	}
	return s.repo.DeleteCV(ctx, id)
}

// Steps reports wizard completeness for a stored CV.
func (s *CVService) Steps(ctx context.Context, userID, id uuid.UUID) ([]StepResult, error) {
	rec, err := ownedCV(ctx, s.repo, userID, id)
	if err != nil {
		return nil, err
	}
	return ValidateWizard(rec.Data), nil
}
