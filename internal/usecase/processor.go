package usecase

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"dyd/internal/domain"
	"dyd/pkg/automation"

	"github.com/google/uuid"
)

// AnalysisConfig tunes the relay.
type AnalysisConfig struct {
	CallbackURL  string
	Secret       string
	PollInterval time.Duration
	MaxWait      time.Duration
}

// Processor relays CV jobs to the automation platform and records the
// results it posts back.
type Processor struct {
	cvs  CVRepo
	jobs JobsRepo
	ents EntitlementRepo
	fwd  Forwarder
	cfg  AnalysisConfig
	log  *slog.Logger
	now  func() time.Time
}

func NewProcessor(cvs CVRepo, jobs JobsRepo, ents EntitlementRepo, fwd Forwarder, cfg AnalysisConfig, log *slog.Logger) *Processor {
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = 2 * time.Second
	}
	if cfg.MaxWait <= 0 {
		cfg.MaxWait = 90 * time.Second
	}
	return &Processor{cvs: cvs, jobs: jobs, ents: ents, fwd: fwd, cfg: cfg, log: log, now: time.Now}
}

type SubmitRequest struct {
	CVID           uuid.UUID      `json:"cv_id"`
	Kind           domain.JobKind `json:"kind"`
	JobDescription string         `json:"job_description,omitempty"`
}

// Submit validates the CV, takes a credit and forwards the job. A failed
// forward marks the job failed and gives the credit back.
func (p *Processor) Submit(ctx context.Context, userID uuid.UUID, req SubmitRequest) (*domain.AnalysisJob, error) {
	if req.Kind == "" {
		req.Kind = domain.KindAnalyze
	}
	if !req.Kind.Valid() {
		return nil, domain.NewValidationError(fmt.Sprintf("unknown kind %q", req.Kind), "kind")
	}
	req.JobDescription = strings.TrimSpace(req.JobDescription)

	rec, err := ownedCV(ctx, p.cvs, userID, req.CVID)
	if err != nil {
		return nil, err
	}
	if req.Kind == domain.KindOptimize && req.JobDescription == "" {
		if req.JobDescription = strings.TrimSpace(rec.Data.TargetJob); req.JobDescription == "" {
			return nil, domain.NewValidationError("job_description is required to optimize a cv", "job_description")
		}
	}
	if err := checkReady(rec.Data, req.Kind); err != nil {
		return nil, err
	}
	cv, err := json.Marshal(rec.Data)
	if err != nil {
		return nil, err
	}

	consumed, err := p.ents.ConsumeCredit(ctx, userID)
	if err != nil {
		return nil, err
	}

	now := p.now()
	job := &domain.AnalysisJob{
		ID:             uuid.New(),
		UserID:         userID,
		CVID:           rec.ID,
		Kind:           req.Kind,
		Status:         domain.StatusPending,
		JobDescription: req.JobDescription,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := p.jobs.SaveJob(ctx, job); err != nil {
		p.refund(ctx, userID, consumed)
		return nil, err
	}

	fwdErr := p.fwd.Forward(ctx, automation.ForwardRequest{
		JobID:          job.ID,
		UserID:         userID,
		Kind:           automation.Kind(job.Kind),
		CV:             cv,
		JobDescription: job.JobDescription,
		CallbackURL:    p.cfg.CallbackURL,
	})

	// The callback may already have landed, so only move forward from pending.
	updated, err := p.jobs.UpdateJob(ctx, job.ID, func(j *domain.AnalysisJob) error {
		if j.Status != domain.StatusPending {
			return ErrSkipUpdate
		}
		j.UpdatedAt = p.now()
		if fwdErr != nil {
			j.Status = domain.StatusFailed
			j.Error = "could not reach the automation platform"
			t := j.UpdatedAt
			j.CompletedAt = &t
			return nil
		}
		j.Status = domain.StatusProcessing
		return nil
	})
	if err != nil {
		return nil, err
	}

	if fwdErr != nil {
		p.log.Error("forward failed", "job_id", job.ID, "kind", job.Kind, "error", fwdErr)
		p.refund(ctx, userID, consumed)
		return updated, fmt.Errorf("forward job %s: %w", job.ID, fwdErr)
	}
	p.log.Info("job forwarded", "job_id", job.ID, "kind", job.Kind, "user_id", userID)
	return updated, nil
}

func (p *Processor) refund(ctx context.Context, userID uuid.UUID, consumed bool) {
	if !consumed {
		return
	}
	if err := p.ents.RefundCredit(ctx, userID); err != nil {
		p.log.Error("credit refund failed", "user_id", userID, "error", err)
	}
}

// Callback is what a scenario posts back when it finishes.
type Callback struct {
	JobID  uuid.UUID       `json:"job_id"`
	Status string          `json:"status"`
	Result json.RawMessage `json:"result"`
	Error  string          `json:"error,omitempty"`
}

// HandleCallback records a scenario result. Repeated callbacks for a job that
// already finished are ignored.
func (p *Processor) HandleCallback(ctx context.Context, secret string, cb Callback) (*domain.AnalysisJob, error) {
	if p.cfg.Secret == "" || subtle.ConstantTimeCompare([]byte(secret), []byte(p.cfg.Secret)) != 1 {
		return nil, domain.ErrUnauthorized
	}
	if cb.JobID == uuid.Nil {
		return nil, domain.NewValidationError("job_id is required", "job_id")
	}

	var (
		result   map[string]interface{}
		parseErr error
	)
	if !strings.EqualFold(cb.Status, string(domain.StatusFailed)) {
		result, parseErr = automation.ParseResult(cb.Result)
	}

	job, err := p.jobs.UpdateJob(ctx, cb.JobID, func(j *domain.AnalysisJob) error {
		if j.Status.Terminal() {
			return ErrSkipUpdate
		}
		now := p.now()
		j.UpdatedAt = now
		j.CompletedAt = &now
		switch {
		case strings.EqualFold(cb.Status, string(domain.StatusFailed)):
			j.Status = domain.StatusFailed
			j.Error = cb.Error
			if j.Error == "" {
				j.Error = "automation scenario failed"
			}
		case parseErr != nil:
			j.Status = domain.StatusFailed
			j.Error = "automation result was not valid JSON"
		default:
			j.Status = domain.StatusCompleted
			j.Result = result
			if s, ok := automation.Score(result); ok {
				j.Score = &s
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if parseErr != nil {
		p.log.Warn("unparseable automation result", "job_id", cb.JobID, "error", parseErr)
	}
	p.log.Info("callback recorded", "job_id", job.ID, "status", job.Status)
	return job, nil
}

func (p *Processor) Get(ctx context.Context, userID, id uuid.UUID) (*domain.AnalysisJob, error) {
	job, err := p.jobs.GetJob(ctx, id)
	if err != nil {
		return nil, err
	}
	if job.UserID != userID {
		return nil, domain.ErrNotFound
	}
	return job, nil
}

func (p *Processor) List(ctx context.Context, userID uuid.UUID) ([]domain.AnalysisJob, error) {
	return p.jobs.ListJobs(ctx, userID)
}

// Wait polls the job until it finishes or timeout elapses. On timeout it
// returns the last job it saw together with ErrWaitTimeout.
func (p *Processor) Wait(ctx context.Context, userID, id uuid.UUID, timeout time.Duration) (*domain.AnalysisJob, error) {
	if timeout <= 0 || timeout > p.cfg.MaxWait {
		timeout = p.cfg.MaxWait
	}
	wctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	ticker := time.NewTicker(p.cfg.PollInterval)
	defer ticker.Stop()

	var last *domain.AnalysisJob
	for {
		job, err := p.Get(wctx, userID, id)
		switch {
		case err == nil:
			if job.Status.Terminal() {
				return job, nil
			}
			last = job
		case wctx.Err() == nil:
			return nil, err
		}

		select {
		case <-wctx.Done():
			if ctx.Err() != nil {
				return last, ctx.Err()
			}
			return last, domain.ErrWaitTimeout
		case <-ticker.C:
		}
	}
}
