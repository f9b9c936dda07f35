package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"dyd/internal/domain"

	"github.com/google/uuid"
	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/webhook"
)

// PaymentService turns payment-provider events into entitlements.
type PaymentService struct {
	ents      EntitlementRepo
	secret    string
	tolerance time.Duration
	log       *slog.Logger
}

func NewPaymentService(ents EntitlementRepo, webhookSecret string, log *slog.Logger) *PaymentService {
	return &PaymentService{ents: ents, secret: webhookSecret, tolerance: 5 * time.Minute, log: log}
}

func (s *PaymentService) Entitlement(ctx context.Context, userID uuid.UUID) (*domain.Entitlement, error) {
	e, err := s.ents.GetEntitlement(ctx, userID)
	if err == domain.ErrNotFound {
		return &domain.Entitlement{UserID: userID}, nil
	}
	return e, err
}

// HandleStripeWebhook verifies and applies one event. Events are applied at
// most once per event ID.
func (s *PaymentService) HandleStripeWebhook(ctx context.Context, payload []byte, signature string) error {
	if s.secret == "" {
		return domain.ErrUnauthorized
	}
	event, err := webhook.ConstructEventWithOptions(payload, signature, s.secret, webhook.ConstructEventOptions{
		Tolerance:                s.tolerance,
		IgnoreAPIVersionMismatch: true,
	})
	if err != nil {
		s.log.Warn("stripe signature rejected", "error", err)
		return domain.ErrUnauthorized
	}

	applied, err := s.ents.ApplyEvent(ctx, event.ID, string(event.Type), func(w EntitlementWriter) error {
		switch event.Type {
		case "checkout.session.completed":
			return s.checkoutCompleted(ctx, w, event)
		case "customer.subscription.deleted":
			return s.subscriptionDeleted(ctx, w, event)
		}
		s.log.Debug("stripe event ignored", "event_id", event.ID, "type", string(event.Type))
		return nil
	})
	if err != nil {
		return err
	}
	if !applied {
		s.log.Info("stripe event already processed", "event_id", event.ID)
	}
	return nil
}

func (s *PaymentService) checkoutCompleted(ctx context.Context, w EntitlementWriter, event stripe.Event) error {
	var sess stripe.CheckoutSession
	if err := json.Unmarshal(event.Data.Raw, &sess); err != nil {
		return domain.NewValidationError(fmt.Sprintf("checkout session: %v", err))
	}
	userID, err := uuid.Parse(sess.ClientReferenceID)
	if err != nil {
		return domain.NewValidationError("checkout session has no valid client_reference_id", "client_reference_id")
	}

	plan := domain.Plan(sess.Metadata["plan"])
	if plan == "" && sess.Mode == stripe.CheckoutSessionModeSubscription {
		plan = domain.PlanPro
	}
	customerID := ""
	if sess.Customer != nil {
		customerID = sess.Customer.ID
	}

	switch plan {
	case domain.PlanSingle, domain.PlanPack:
		err = w.GrantCredits(ctx, userID, customerID, plan.Credits(), false)
	case domain.PlanPro:
		err = w.GrantCredits(ctx, userID, customerID, 0, true)
	default:
		return domain.NewValidationError(fmt.Sprintf("unknown plan %q", plan), "metadata.plan")
	}
	if err != nil {
		return err
	}
	s.log.Info("entitlement granted", "user_id", userID, "plan", plan, "event_id", event.ID)
	return nil
}

func (s *PaymentService) subscriptionDeleted(ctx context.Context, w EntitlementWriter, event stripe.Event) error {
	var sub stripe.Subscription
	if err := json.Unmarshal(event.Data.Raw, &sub); err != nil {
		return domain.NewValidationError(fmt.Sprintf("subscription: %v", err))
	}
	if sub.Customer == nil || sub.Customer.ID == "" {
		return domain.NewValidationError("subscription has no customer", "customer")
	}
	if err := w.DeactivateSubscription(ctx, sub.Customer.ID); err != nil && err != domain.ErrNotFound {
		return err
	}
	s.log.Info("subscription deactivated", "customer_id", sub.Customer.ID, "event_id", event.ID)
	return nil
}
