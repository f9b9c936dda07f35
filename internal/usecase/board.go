package usecase

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"dyd/internal/domain"

	"github.com/google/uuid"
)

// BoardColumn is one Kanban column with its cards in rank order.
type BoardColumn struct {
	Column domain.Column        `json:"column"`
	Cards  []domain.Application `json:"cards"`
}

// ApplicationInput carries the editable fields of a card. Nil fields are
// left unchanged on update.
type ApplicationInput struct {
	Company *string        `json:"company"`
	Role    *string        `json:"role"`
	URL     *string        `json:"url"`
	Notes   *string        `json:"notes"`
	CVID    *uuid.UUID     `json:"cv_id"`
	Column  *domain.Column `json:"column"`
}

type BoardService struct {
	apps ApplicationRepo
	cvs  CVRepo
	now  func() time.Time
}

func NewBoardService(apps ApplicationRepo, cvs CVRepo) *BoardService {
	return &BoardService{apps: apps, cvs: cvs, now: time.Now}
}

func (s *BoardService) Board(ctx context.Context, userID uuid.UUID) ([]BoardColumn, error) {
	apps, err := s.apps.ListApplications(ctx, userID)
	if err != nil {
		return nil, err
	}
	return groupColumns(apps), nil
}

func groupColumns(apps []domain.Application) []BoardColumn {
	byCol := make(map[domain.Column][]domain.Application, len(domain.Columns))
	for _, a := range apps {
		byCol[a.Column] = append(byCol[a.Column], a)
	}
	out := make([]BoardColumn, 0, len(domain.Columns))
	for _, col := range domain.Columns {
		cards := byCol[col]
		sortCards(cards)
		if cards == nil {
			cards = []domain.Application{}
		}
		out = append(out, BoardColumn{Column: col, Cards: cards})
	}
	return out
}

func sortCards(cards []domain.Application) {
	sort.SliceStable(cards, func(i, j int) bool {
		if cards[i].Rank != cards[j].Rank {
			return cards[i].Rank < cards[j].Rank
		}
		return cards[i].CreatedAt.Before(cards[j].CreatedAt)
	})
}

func (s *BoardService) checkCV(ctx context.Context, userID uuid.UUID, cvID *uuid.UUID) error {
	if cvID == nil {
		return nil
	}
	if _, err := ownedCV(ctx, s.cvs, userID, *cvID); err != nil {
		if err == domain.ErrNotFound {
			return domain.NewValidationError("cv_id does not reference one of your CVs", "cv_id")
		}
		return err
	}
	return nil
}

func str(p *string) string {
	if p == nil {
		return ""
	}
	return strings.TrimSpace(*p)
}

// Create appends a card to the end of its column (wishlist by default).
func (s *BoardService) Create(ctx context.Context, userID uuid.UUID, in ApplicationInput) (*domain.Application, error) {
	col := domain.ColumnWishlist
	if in.Column != nil {
		col = *in.Column
	}
	if !col.Valid() {
		return nil, domain.NewValidationError(fmt.Sprintf("unknown column %q", col), "column")
	}
	company, role := str(in.Company), str(in.Role)
	var missing []string
	if company == "" {
		missing = append(missing, "company")
	}
	if role == "" {
		missing = append(missing, "role")
	}
	if len(missing) > 0 {
		return nil, domain.NewValidationError("company and role are required", missing...)
	}
	if err := s.checkCV(ctx, userID, in.CVID); err != nil {
		return nil, err
	}

	apps, err := s.apps.ListApplications(ctx, userID)
	if err != nil {
		return nil, err
	}
	rank := 0
	for _, a := range apps {
		if a.Column == col && a.Rank >= rank {
			rank = a.Rank + 1
		}
	}

	now := s.now()
	app := &domain.Application{
		ID:        uuid.New(),
		UserID:    userID,
		CVID:      in.CVID,
		Company:   company,
		Role:      role,
		URL:       str(in.URL),
		Notes:     str(in.Notes),
		Column:    col,
		Rank:      rank,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if col == domain.ColumnApplied {
		app.AppliedAt = &now
	}
	if err := s.apps.CreateApplication(ctx, app); err != nil {
		return nil, err
	}
	return app, nil
}

func (s *BoardService) owned(ctx context.Context, userID, id uuid.UUID) (*domain.Application, error) {
	app, err := s.apps.GetApplication(ctx, id)
	if err != nil {
		return nil, err
	}
	if app.UserID != userID {
		return nil, domain.ErrNotFound
	}
	return app, nil
}

// Update edits the card details. Column changes go through Move.
func (s *BoardService) Update(ctx context.Context, userID, id uuid.UUID, in ApplicationInput) (*domain.Application, error) {
	app, err := s.owned(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	if in.Company != nil {
		if app.Company = str(in.Company); app.Company == "" {
			return nil, domain.NewValidationError("company cannot be empty", "company")
		}
	}
	if in.Role != nil {
		if app.Role = str(in.Role); app.Role == "" {
			return nil, domain.NewValidationError("role cannot be empty", "role")
		}
	}
	if in.URL != nil {
		app.URL = str(in.URL)
	}
	if in.Notes != nil {
		app.Notes = str(in.Notes)
	}
	if in.CVID != nil {
		if *in.CVID == uuid.Nil {
			app.CVID = nil
		} else {
			if err := s.checkCV(ctx, userID, in.CVID); err != nil {
				return nil, err
			}
			app.CVID = in.CVID
		}
	}
	app.UpdatedAt = s.now()
	if err := s.apps.UpdateApplication(ctx, app); err != nil {
		return nil, err
	}
	return app, nil
}

// Move places the card at index in column and renumbers both affected
// columns from zero.
func (s *BoardService) Move(ctx context.Context, userID, id uuid.UUID, column domain.Column, index int) (*domain.Application, error) {
	if !column.Valid() {
		return nil, domain.NewValidationError(fmt.Sprintf("unknown column %q", column), "column")
	}
	app, err := s.owned(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	apps, err := s.apps.ListApplications(ctx, userID)
	if err != nil {
		return nil, err
	}

	from := app.Column
	var source, target []domain.Application
	for _, a := range apps {
		if a.ID == app.ID {
			continue
		}
		switch a.Column {
		case from:
			source = append(source, a)
		case column:
			target = append(target, a)
		}
	}
	if from == column {
		target = source
		source = nil
	}
	sortCards(source)
	sortCards(target)

	if index < 0 {
		index = 0
	}
	if index > len(target) {
		index = len(target)
	}
	now := s.now()
	app.Column = column
	app.UpdatedAt = now
	if column == domain.ColumnApplied && app.AppliedAt == nil {
		app.AppliedAt = &now
	}
	target = append(target, domain.Application{})
	copy(target[index+1:], target[index:])
	target[index] = *app

	changed := make([]domain.Application, 0, len(source)+len(target))
	for i := range source {
		source[i].Rank = i
		changed = append(changed, source[i])
	}
	for i := range target {
		target[i].Rank = i
		changed = append(changed, target[i])
	}
	if err := s.apps.SaveRanks(ctx, changed); err != nil {
		return nil, err
	}
	moved := target[index]
	return &moved, nil
}

func (s *BoardService) Delete(ctx context.Context, userID, id uuid.UUID) error {
	if _, err := s.owned(ctx, userID, id); err != nil {
		return err
	}
	return s.apps.DeleteApplication(ctx, id)
}
