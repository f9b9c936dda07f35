package domain

import (
	"time"

	"github.com/google/uuid"
)

// JobKind selects which automation scenario processes a job.
type JobKind string

const (
	KindAnalyze  JobKind = "analyze"
	KindGenerate JobKind = "generate"
	KindOptimize JobKind = "optimize"
)

func (k JobKind) Valid() bool {
	switch k {
	case KindAnalyze, KindGenerate, KindOptimize:
		return true
	}
	return false
}

type JobStatus string

const (
	StatusPending    JobStatus = "pending"
	StatusProcessing JobStatus = "processing"
	StatusCompleted  JobStatus = "completed"
	StatusFailed     JobStatus = "failed"
)

// Terminal reports whether no further callback can change the job.
func (s JobStatus) Terminal() bool {
	return s == StatusCompleted || s == StatusFailed
}

// AnalysisJob tracks one round trip through the automation platform.
type AnalysisJob struct {
	ID             uuid.UUID              `json:"id"`
	UserID         uuid.UUID              `json:"user_id"`
	CVID           uuid.UUID              `json:"cv_id"`
	Kind           JobKind                `json:"kind"`
	Status         JobStatus              `json:"status"`
	JobDescription string                 `json:"job_description,omitempty"`
	Result         map[string]interface{} `json:"result,omitempty"`
	Score          *int                   `json:"score,omitempty"`
	Error          string                 `json:"error,omitempty"`
	CreatedAt      time.Time              `json:"created_at"`
	UpdatedAt      time.Time              `json:"updated_at"`
	CompletedAt    *time.Time             `json:"completed_at,omitempty"`
}
