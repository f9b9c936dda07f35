package repository

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"dyd/internal/domain"
	"dyd/internal/usecase"

	"github.com/google/uuid"
)

const recentExports = 5

// Memory keeps every table in process. It backs tests and servers started
// without DATABASE_URL.
type Memory struct {
	mu      sync.Mutex
	cvs     map[uuid.UUID]domain.CVRecord
	jobs    map[uuid.UUID]domain.AnalysisJob
	ents    map[uuid.UUID]domain.Entitlement
	events  map[string]string
	apps    map[uuid.UUID]domain.Application
	exports []domain.Export
}

func NewMemory() *Memory {
	return &Memory{
		cvs:    map[uuid.UUID]domain.CVRecord{},
		jobs:   map[uuid.UUID]domain.AnalysisJob{},
		ents:   map[uuid.UUID]domain.Entitlement{},
		events: map[string]string{},
		apps:   map[uuid.UUID]domain.Application{},
	}
}

// CVs

func (m *Memory) CreateCV(_ context.Context, cv *domain.CVRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.cvs[cv.ID]; ok {
		return domain.ErrConflict
	}
	m.cvs[cv.ID] = *cv
	return nil
}

func (m *Memory) GetCV(_ context.Context, id uuid.UUID) (*domain.CVRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	cv, ok := m.cvs[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &cv, nil
}

func (m *Memory) ListCVs(_ context.Context, userID uuid.UUID) ([]domain.CVRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []domain.CVRecord{}
	for _, cv := range m.cvs {
		if cv.UserID == userID {
			out = append(out, cv)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UpdatedAt.After(out[j].UpdatedAt) })
	return out, nil
}

func (m *Memory) UpdateCV(_ context.Context, cv *domain.CVRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.cvs[cv.ID]; !ok {
		return domain.ErrNotFound
	}
	m.cvs[cv.ID] = *cv
	return nil
}

func (m *Memory) DeleteCV(_ context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.cvs[id]; !ok {
		return domain.ErrNotFound
	}
	delete(m.cvs, id)
	for aid, a := range m.apps {
		if a.CVID != nil && *a.CVID == id {
			a.CVID = nil
			m.apps[aid] = a
		}
	}
	return nil
}

// Analysis jobs

func (m *Memory) SaveJob(_ context.Context, j *domain.AnalysisJob) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.jobs[j.ID] = *j
	return nil
}

func (m *Memory) GetJob(_ context.Context, id uuid.UUID) (*domain.AnalysisJob, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	j, ok := m.jobs[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &j, nil
}

func (m *Memory) ListJobs(_ context.Context, userID uuid.UUID) ([]domain.AnalysisJob, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []domain.AnalysisJob{}
	for _, j := range m.jobs {
		if j.UserID == userID {
			out = append(out, j)
		}
	}
	sort.Slice(out, func(i, k int) bool { return out[i].CreatedAt.After(out[k].CreatedAt) })
	return out, nil
}

func (m *Memory) UpdateJob(_ context.Context, id uuid.UUID, fn func(*domain.AnalysisJob) error) (*domain.AnalysisJob, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	j, ok := m.jobs[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	next := j
	if err := fn(&next); err != nil {
		if errors.Is(err, usecase.ErrSkipUpdate) {
			return &j, nil
		}
		return nil, err
	}
	m.jobs[id] = next
	return &next, nil
}

// Entitlements

func (m *Memory) GetEntitlement(_ context.Context, userID uuid.UUID) (*domain.Entitlement, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.ents[userID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &e, nil
}

func (m *Memory) ConsumeCredit(_ context.Context, userID uuid.UUID) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.ents[userID]
	switch {
	case ok && e.SubscriptionActive:
		return false, nil
	case !ok || e.Credits <= 0:
		return false, domain.ErrPaymentRequired
	}
	e.Credits--
	e.UpdatedAt = time.Now()
	m.ents[userID] = e
	return true, nil
}

func (m *Memory) RefundCredit(_ context.Context, userID uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	e := m.ents[userID]
	e.UserID = userID
	e.Credits++
	e.UpdatedAt = time.Now()
	m.ents[userID] = e
	return nil
}

func (m *Memory) GrantCredits(_ context.Context, userID uuid.UUID, customerID string, credits int, subscription bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	e := m.ents[userID]
	e.UserID = userID
	if customerID != "" {
		e.CustomerID = customerID
	}
	e.Credits += credits
	if subscription {
		e.SubscriptionActive = true
	}
	e.UpdatedAt = time.Now()
	m.ents[userID] = e
	return nil
}

func (m *Memory) DeactivateSubscription(_ context.Context, customerID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for id, e := range m.ents {
		if e.CustomerID == customerID {
			e.SubscriptionActive = false
			e.UpdatedAt = time.Now()
			m.ents[id] = e
			return nil
		}
	}
	return domain.ErrNotFound
}

func (m *Memory) EventProcessed(_ context.Context, eventID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.events[eventID]
	return ok, nil
}

// ApplyEvent claims the event under the lock, so concurrent deliveries of one
// event apply it once.
func (m *Memory) ApplyEvent(_ context.Context, eventID, eventType string, apply func(usecase.EntitlementWriter) error) (bool, error) {
	m.mu.Lock()
	if _, ok := m.events[eventID]; ok {
		m.mu.Unlock()
		return false, nil
	}
	m.events[eventID] = eventType
	m.mu.Unlock()

	if err := apply(m); err != nil {
		m.mu.Lock()
		delete(m.events, eventID)
		m.mu.Unlock()
		return false, err
	}
	return true, nil
}

// Applications

func (m *Memory) CreateApplication(_ context.Context, a *domain.Application) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.apps[a.ID]; ok {
		return domain.ErrConflict
	}
	m.apps[a.ID] = *a
	return nil
}

func (m *Memory) GetApplication(_ context.Context, id uuid.UUID) (*domain.Application, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.apps[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &a, nil
}

func (m *Memory) ListApplications(_ context.Context, userID uuid.UUID) ([]domain.Application, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []domain.Application{}
	for _, a := range m.apps {
		if a.UserID == userID {
			out = append(out, a)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Column != out[j].Column {
			return out[i].Column < out[j].Column
		}
		return out[i].Rank < out[j].Rank
	})
	return out, nil
}

func (m *Memory) UpdateApplication(_ context.Context, a *domain.Application) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.apps[a.ID]; !ok {
		return domain.ErrNotFound
	}
	m.apps[a.ID] = *a
	return nil
}

func (m *Memory) SaveRanks(_ context.Context, apps []domain.Application) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, a := range apps {
		cur, ok := m.apps[a.ID]
		if !ok {
			return domain.ErrNotFound
		}
		cur.Column = a.Column
		cur.Rank = a.Rank
		cur.AppliedAt = a.AppliedAt
		if a.UpdatedAt.After(cur.UpdatedAt) {
			cur.UpdatedAt = a.UpdatedAt
		}
		m.apps[a.ID] = cur
	}
	return nil
}

func (m *Memory) DeleteApplication(_ context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.apps[id]; !ok {
		return domain.ErrNotFound
	}
	delete(m.apps, id)
	return nil
}

// Exports

func (m *Memory) CreateExport(_ context.Context, e *domain.Export) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.exports = append(m.exports, *e)
	return nil
}

func (m *Memory) ListExports(_ context.Context, userID, cvID uuid.UUID) ([]domain.Export, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []domain.Export{}
	for i := len(m.exports) - 1; i >= 0; i-- {
		e := m.exports[i]
		if e.UserID == userID && e.CVID == cvID {
			out = append(out, e)
		}
	}
	return out, nil
}

// Dashboard

func (m *Memory) Dashboard(_ context.Context, userID uuid.UUID) (*domain.Dashboard, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	d := &domain.Dashboard{
		Analyses:      map[domain.JobStatus]int{},
		Applications:  map[domain.Column]int{},
		RecentExports: []domain.Export{},
	}
	for _, cv := range m.cvs {
		if cv.UserID == userID {
			d.CVs++
		}
	}
	var latest time.Time
	for _, j := range m.jobs {
		if j.UserID != userID {
			continue
		}
		d.Analyses[j.Status]++
		if j.Status == domain.StatusCompleted && j.Score != nil && j.CompletedAt != nil && j.CompletedAt.After(latest) {
			latest = *j.CompletedAt
			s := *j.Score
			d.LatestScore = &s
		}
	}
	for _, a := range m.apps {
		if a.UserID == userID {
			d.Applications[a.Column]++
		}
	}
	if e, ok := m.ents[userID]; ok {
		d.Entitlement = &e
	}
	for i := len(m.exports) - 1; i >= 0 && len(d.RecentExports) < recentExports; i-- {
		if m.exports[i].UserID == userID {
			d.RecentExports = append(d.RecentExports, m.exports[i])
		}
	}
	return d, nil
}

var (
	_ usecase.CVRepo          = (*Memory)(nil)
	_ usecase.JobsRepo        = (*Memory)(nil)
	_ usecase.EntitlementRepo = (*Memory)(nil)
	_ usecase.ApplicationRepo = (*Memory)(nil)
	_ usecase.ExportRepo      = (*Memory)(nil)
	_ usecase.DashboardReader = (*Memory)(nil)
)
