package domain

import (
	"time"

	"github.com/google/uuid"
)

type Plan string

const (
	PlanSingle Plan = "single"
	PlanPack   Plan = "pack"
	PlanPro    Plan = "pro"
)

// Credits granted by a one-off purchase of the plan.
func (p Plan) Credits() int {
	switch p {
	case PlanSingle:
		return 1
	case PlanPack:
		return 5
	}
	return 0
}

type Entitlement struct {
	UserID             uuid.UUID `json:"user_id"`
	CustomerID         string    `json:"customer_id,omitempty"`
	Credits            int       `json:"credits"`
	SubscriptionActive bool      `json:"subscription_active"`
	UpdatedAt          time.Time `json:"updated_at"`
}

// CanSubmit reports whether an analysis may be started.
func (e *Entitlement) CanSubmit() bool {
	if e == nil {
		return false
	}
	return e.SubscriptionActive || e.Credits > 0
}
