package usecase

import (
	"context"

	"dyd/internal/domain"

	"github.com/google/uuid"
)

type DashboardService struct {
	reader DashboardReader
}

func NewDashboardService(reader DashboardReader) *DashboardService {
	return &DashboardService{reader: reader}
}

// Dashboard fills every status and column so the client can render zeros.
func (s *DashboardService) Dashboard(ctx context.Context, userID uuid.UUID) (*domain.Dashboard, error) {
	d, err := s.reader.Dashboard(ctx, userID)
	if err != nil {
		return nil, err
	}
	if d.Analyses == nil {
		d.Analyses = map[domain.JobStatus]int{}
	}
	for _, st := range []domain.JobStatus{domain.StatusPending, domain.StatusProcessing, domain.StatusCompleted, domain.StatusFailed} {
		if _, ok := d.Analyses[st]; !ok {
			d.Analyses[st] = 0
		}
	}
	if d.Applications == nil {
		d.Applications = map[domain.Column]int{}
	}
	for _, col := range domain.Columns {
		if _, ok := d.Applications[col]; !ok {
			d.Applications[col] = 0
		}
	}
	if d.RecentExports == nil {
		d.RecentExports = []domain.Export{}
	}
	return d, nil
}
