package usecase_test

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"dyd/internal/adapter/repository"
	"dyd/internal/domain"
	"dyd/internal/usecase"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const whsec = "whsec_test"

func signStripe(payload []byte, at time.Time) string {
	ts := at.Unix()
	mac := hmac.New(sha256.New, []byte(whsec))
	fmt.Fprintf(mac, "%d.%s", ts, payload)
	return fmt.Sprintf("t=%d,v1=%s", ts, hex.EncodeToString(mac.Sum(nil)))
}

func checkoutEvent(id string, user uuid.UUID, plan, mode string) []byte {
	return []byte(fmt.Sprintf(`{
		"id": %q,
		"object": "event",
		"type": "checkout.session.completed",
		"api_version": "2020-08-27",
		"data": {"object": {
			"id": "cs_test_1",
			"object": "checkout.session",
			"client_reference_id": %q,
			"customer": "cus_42",
			"mode": %q,
			"metadata": {"plan": %q}
		}}
	}`, id, user, mode, plan))
}

func TestStripeCheckoutGrantsPlans(t *testing.T) {
	tests := []struct {
		plan        string
		mode        string
		wantCredits int
		wantSub     bool
	}{
		{"single", "payment", 1, false},
		{"pack", "payment", 5, false},
		{"pro", "subscription", 0, true},
		{"", "subscription", 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.plan+"/"+tt.mode, func(t *testing.T) {
			ctx := context.Background()
			store := repository.NewMemory()
			svc := usecase.NewPaymentService(store, whsec, quietLogger())
			user := uuid.New()

			payload := checkoutEvent("evt_"+tt.plan+tt.mode, user, tt.plan, tt.mode)
			require.NoError(t, svc.HandleStripeWebhook(ctx, payload, signStripe(payload, time.Now())))

			ent, err := svc.Entitlement(ctx, user)
			require.NoError(t, err)
			assert.Equal(t, tt.wantCredits, ent.Credits)
			assert.Equal(t, tt.wantSub, ent.SubscriptionActive)
			assert.Equal(t, "cus_42", ent.CustomerID)
		})
	}
}

func TestStripeWebhookIdempotent(t *testing.T) {
	ctx := context.Background()
	store := repository.NewMemory()
	svc := usecase.NewPaymentService(store, whsec, quietLogger())
	user := uuid.New()

	payload := checkoutEvent("evt_dup", user, "pack", "payment")
	sig := signStripe(payload, time.Now())
	require.NoError(t, svc.HandleStripeWebhook(ctx, payload, sig))
	require.NoError(t, svc.HandleStripeWebhook(ctx, payload, sig))

	ent, err := svc.Entitlement(ctx, user)
	require.NoError(t, err)
	assert.Equal(t, 5, ent.Credits)
}

// slowGrants stalls every grant so that concurrent deliveries overlap.
type slowGrants struct {
	*repository.Memory
	fail error
}

func (s *slowGrants) ApplyEvent(ctx context.Context, id, typ string, apply func(usecase.EntitlementWriter) error) (bool, error) {
	return s.Memory.ApplyEvent(ctx, id, typ, func(w usecase.EntitlementWriter) error {
		return apply(slowWriter{EntitlementWriter: w, fail: s.fail})
	})
}

type slowWriter struct {
	usecase.EntitlementWriter
	fail error
}

func (w slowWriter) GrantCredits(ctx context.Context, userID uuid.UUID, customerID string, credits int, subscription bool) error {
	time.Sleep(20 * time.Millisecond)
	if w.fail != nil {
		return w.fail
	}
	return w.EntitlementWriter.GrantCredits(ctx, userID, customerID, credits, subscription)
}

func TestStripeWebhookConcurrentDeliveries(t *testing.T) {
	ctx := context.Background()
	store := &slowGrants{Memory: repository.NewMemory()}
	svc := usecase.NewPaymentService(store, whsec, quietLogger())
	user := uuid.New()

	payload := checkoutEvent("evt_race", user, "pack", "payment")
	sig := signStripe(payload, time.Now())

	const deliveries = 8
	start := make(chan struct{})
	errs := make(chan error, deliveries)
	var wg sync.WaitGroup
	for i := 0; i < deliveries; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			errs <- svc.HandleStripeWebhook(ctx, payload, sig)
		}()
	}
	close(start)
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	ent, err := svc.Entitlement(ctx, user)
	require.NoError(t, err)
	assert.Equal(t, 5, ent.Credits)
}

func TestStripeWebhookRetriesAfterFailure(t *testing.T) {
	ctx := context.Background()
	store := &slowGrants{Memory: repository.NewMemory(), fail: errors.New("db down")}
	svc := usecase.NewPaymentService(store, whsec, quietLogger())
	user := uuid.New()

	payload := checkoutEvent("evt_retry", user, "single", "payment")
	sig := signStripe(payload, time.Now())
	require.Error(t, svc.HandleStripeWebhook(ctx, payload, sig))

	done, err := store.EventProcessed(ctx, "evt_retry")
	require.NoError(t, err)
	assert.False(t, done)

	store.fail = nil
	require.NoError(t, svc.HandleStripeWebhook(ctx, payload, sig))
	ent, err := svc.Entitlement(ctx, user)
	require.NoError(t, err)
	assert.Equal(t, 1, ent.Credits)
}

func TestStripeWebhookRejectsBadSignatures(t *testing.T) {
	ctx := context.Background()
	svc := usecase.NewPaymentService(repository.NewMemory(), whsec, quietLogger())
	payload := checkoutEvent("evt_bad", uuid.New(), "single", "payment")

	tests := map[string]string{
		"garbage":  "nonsense",
		"tampered": signStripe([]byte(`{"id":"evt_other"}`), time.Now()),
		"stale":    signStripe(payload, time.Now().Add(-10*time.Minute)),
	}
	for name, sig := range tests {
		t.Run(name, func(t *testing.T) {
			assert.ErrorIs(t, svc.HandleStripeWebhook(ctx, payload, sig), domain.ErrUnauthorized)
		})
	}

	t.Run("no secret configured", func(t *testing.T) {
		open := usecase.NewPaymentService(repository.NewMemory(), "", quietLogger())
		assert.ErrorIs(t, open.HandleStripeWebhook(ctx, payload, signStripe(payload, time.Now())), domain.ErrUnauthorized)
	})
}

func TestStripeSubscriptionDeleted(t *testing.T) {
	ctx := context.Background()
	store := repository.NewMemory()
	svc := usecase.NewPaymentService(store, whsec, quietLogger())
	user := uuid.New()
	require.NoError(t, store.GrantCredits(ctx, user, "cus_42", 2, true))

	payload := []byte(`{
		"id": "evt_cancel",
		"object": "event",
		"type": "customer.subscription.deleted",
		"data": {"object": {"id": "sub_1", "object": "subscription", "customer": "cus_42"}}
	}`)
	require.NoError(t, svc.HandleStripeWebhook(ctx, payload, signStripe(payload, time.Now())))

	ent, err := svc.Entitlement(ctx, user)
	require.NoError(t, err)
	assert.False(t, ent.SubscriptionActive)
	assert.Equal(t, 2, ent.Credits)
}

func TestStripeIgnoresOtherEvents(t *testing.T) {
	ctx := context.Background()
	store := repository.NewMemory()
	svc := usecase.NewPaymentService(store, whsec, quietLogger())

	payload := []byte(`{"id": "evt_misc", "object": "event", "type": "invoice.paid", "data": {"object": {}}}`)
	require.NoError(t, svc.HandleStripeWebhook(ctx, payload, signStripe(payload, time.Now())))

	done, err := store.EventProcessed(ctx, "evt_misc")
	require.NoError(t, err)
	assert.True(t, done)
}

func TestStripeCheckoutUnknownUser(t *testing.T) {
	ctx := context.Background()
	svc := usecase.NewPaymentService(repository.NewMemory(), whsec, quietLogger())
	payload := []byte(`{
		"id": "evt_anon",
		"object": "event",
		"type": "checkout.session.completed",
		"data": {"object": {"id": "cs_1", "object": "checkout.session", "metadata": {"plan": "single"}}}
	}`)
	err := svc.HandleStripeWebhook(ctx, payload, signStripe(payload, time.Now()))
	var verr *domain.ValidationError
	assert.ErrorAs(t, err, &verr)
}

func TestEntitlementDefaultsToEmpty(t *testing.T) {
	svc := usecase.NewPaymentService(repository.NewMemory(), whsec, quietLogger())
	user := uuid.New()
	ent, err := svc.Entitlement(context.Background(), user)
	require.NoError(t, err)
	assert.Equal(t, user, ent.UserID)
	assert.False(t, ent.CanSubmit())
}
