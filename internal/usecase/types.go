package usecase

import (
	"context"
	"errors"

	"dyd/internal/domain"
	"dyd/pkg/automation"
	infra "dyd/pkg/infrastructure"

	"github.com/google/uuid"
)

// ErrSkipUpdate may be returned from an UpdateJob callback to leave the
// stored job untouched.
var ErrSkipUpdate = errors.New("skip update")

type CVRepo interface {
	CreateCV(ctx context.Context, cv *domain.CVRecord) error
	GetCV(ctx context.Context, id uuid.UUID) (*domain.CVRecord, error)
	ListCVs(ctx context.Context, userID uuid.UUID) ([]domain.CVRecord, error)
	UpdateCV(ctx context.Context, cv *domain.CVRecord) error
	DeleteCV(ctx context.Context, id uuid.UUID) error
}

type JobsRepo interface {
	SaveJob(ctx context.Context, j *domain.AnalysisJob) error
	GetJob(ctx context.Context, id uuid.UUID) (*domain.AnalysisJob, error)
	ListJobs(ctx context.Context, userID uuid.UUID) ([]domain.AnalysisJob, error)
	// UpdateJob applies fn to the stored job atomically and returns the
	// result. If fn returns ErrSkipUpdate the stored job is returned as is.
	UpdateJob(ctx context.Context, id uuid.UUID, fn func(*domain.AnalysisJob) error) (*domain.AnalysisJob, error)
}

type EntitlementRepo interface {
	GetEntitlement(ctx context.Context, userID uuid.UUID) (*domain.Entitlement, error)
	// ConsumeCredit takes one credit unless a subscription is active.
	// consumed reports whether a credit was actually taken.
	ConsumeCredit(ctx context.Context, userID uuid.UUID) (consumed bool, err error)
	RefundCredit(ctx context.Context, userID uuid.UUID) error
	EntitlementWriter
	EventProcessed(ctx context.Context, eventID string) (bool, error)
	// ApplyEvent claims eventID and runs apply against the same unit of
	// work. A failed apply releases the claim. applied is false when the
	// event was claimed before.
	ApplyEvent(ctx context.Context, eventID, eventType string, apply func(EntitlementWriter) error) (applied bool, err error)
}

// EntitlementWriter is what a payment event may change.
type EntitlementWriter interface {
	GrantCredits(ctx context.Context, userID uuid.UUID, customerID string, credits int, subscription bool) error
	DeactivateSubscription(ctx context.Context, customerID string) error
}

type ApplicationRepo interface {
	CreateApplication(ctx context.Context, a *domain.Application) error
	GetApplication(ctx context.Context, id uuid.UUID) (*domain.Application, error)
	ListApplications(ctx context.Context, userID uuid.UUID) ([]domain.Application, error)
	UpdateApplication(ctx context.Context, a *domain.Application) error
	// SaveRanks persists column, rank and applied_at of every given card.
	SaveRanks(ctx context.Context, apps []domain.Application) error
	DeleteApplication(ctx context.Context, id uuid.UUID) error
}

type ExportRepo interface {
	CreateExport(ctx context.Context, e *domain.Export) error
	ListExports(ctx context.Context, userID, cvID uuid.UUID) ([]domain.Export, error)
}

type DashboardReader interface {
	Dashboard(ctx context.Context, userID uuid.UUID) (*domain.Dashboard, error)
}

// Renderer is the headless browser.
type Renderer interface {
	RenderHTMLToPDF(ctx context.Context, html string) ([]byte, error)
	Capture(ctx context.Context, html string, width int) (*infra.Capture, error)
}

// ObjectStore keeps rendered files and returns a URL for them.
type ObjectStore interface {
	Put(ctx context.Context, path, contentType string, data []byte) (string, error)
}

// Forwarder hands a job to the automation platform.
type Forwarder interface {
	Forward(ctx context.Context, req automation.ForwardRequest) error
}
