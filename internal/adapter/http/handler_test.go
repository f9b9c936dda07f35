package http

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"dyd/internal/adapter/repository"
	"dyd/internal/domain"
	"dyd/internal/model"
	"dyd/internal/usecase"
	"dyd/pkg/automation"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	jwtSecret      = "jwt-test-secret"
	callbackSecret = "cb-secret"
)

type okForwarder struct{}

func (okForwarder) Forward(context.Context, automation.ForwardRequest) error { return nil }

type testEnv struct {
	app   *fiber.App
	store *repository.Memory
	user  uuid.UUID
	token string
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	store := repository.NewMemory()
	h := NewHandler(Services{
		CVs: usecase.NewCVService(store),
		Processor: usecase.NewProcessor(store, store, store, okForwarder{}, usecase.AnalysisConfig{
			Secret:       callbackSecret,
			PollInterval: 5 * time.Millisecond,
			MaxWait:      time.Second,
		}, log),
		Payments:  usecase.NewPaymentService(store, "whsec_test", log),
		Exports:   usecase.NewExportService(store, store, nil, nil, 0, log),
		Board:     usecase.NewBoardService(store, store),
		Dashboard: usecase.NewDashboardService(store),
	})
	app := fiber.New(fiber.Config{ErrorHandler: NewErrorHandler(log)})
	h.Register(app, NewAuthenticator(jwtSecret).Middleware())

	user := uuid.New()
	return &testEnv{app: app, store: store, user: user, token: signToken(t, user.String(), jwtSecret, time.Hour)}
}

func signToken(t *testing.T, sub, secret string, ttl time.Duration) string {
	t.Helper()
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		Email: "ada@example.com",
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   sub,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	})
	s, err := tok.SignedString([]byte(secret))
	require.NoError(t, err)
	return s
}

func (e *testEnv) do(t *testing.T, method, path string, body interface{}, headers ...string) (*http.Response, map[string]interface{}) {
	t.Helper()
	var r io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		r = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, r)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+e.token)
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	resp, err := e.app.Test(req, 5000)
	require.NoError(t, err)
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	out := map[string]interface{}{}
	if len(raw) > 0 && raw[0] == '{' {
		require.NoError(t, json.Unmarshal(raw, &out))
	}
	return resp, out
}

func fullCV() model.CV {
	return model.CV{
		Personal:   model.Personal{Name: "Ada Lovelace", Email: "ada@example.com"},
		Experience: []model.Role{{Company: "Analytical Engines", Title: "Programmer", Start: "1842", Bullets: []string{"Note G"}}},
		Education:  []model.Education{{School: "Home"}},
		Skills:     []string{"Mathematics"},
	}
}

func TestHealthzIsPublic(t *testing.T) {
	env := newTestEnv(t)
	env.token = ""
	resp, body := env.do(t, http.MethodGet, "/healthz", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "ok", body["status"])
}

func TestAuthRequired(t *testing.T) {
	env := newTestEnv(t)
	tests := map[string]string{
		"missing":      "",
		"wrong secret": signToken(t, env.user.String(), "other", time.Hour),
		"expired":      signToken(t, env.user.String(), jwtSecret, -time.Minute),
		"non-uuid sub": signToken(t, "service-role", jwtSecret, time.Hour),
		"not a jwt":    "abc.def.ghi",
	}
	for name, tok := range tests {
		t.Run(name, func(t *testing.T) {
			env.token = tok
			resp, body := env.do(t, http.MethodGet, "/api/cvs", nil)
			assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
			assert.NotEmpty(t, body["error"])
		})
	}
}

func TestCVRoutes(t *testing.T) {
	env := newTestEnv(t)

	resp, body := env.do(t, http.MethodPost, "/api/cvs", fiber.Map{"title": "Main", "data": fullCV()})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	id := body["id"].(string)

	resp, body = env.do(t, http.MethodGet, "/api/cvs/"+id+"/steps", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, false, body["complete"])

	resp, _ = env.do(t, http.MethodGet, "/api/cvs/not-a-uuid", nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, _ = env.do(t, http.MethodGet, "/api/cvs/"+uuid.NewString(), nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	bad := fullCV()
	bad.Template = "neon"
	resp, body = env.do(t, http.MethodPut, "/api/cvs/"+id, fiber.Map{"data": bad})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, body["error"], "template")

	resp, _ = env.do(t, http.MethodDelete, "/api/cvs/"+id, nil)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
}

func TestAnalysisFlow(t *testing.T) {
	env := newTestEnv(t)
	_, body := env.do(t, http.MethodPost, "/api/cvs", fiber.Map{"data": fullCV()})
	cvID := body["id"].(string)

	resp, body := env.do(t, http.MethodPost, "/api/analyses", fiber.Map{"cv_id": cvID, "kind": "analyze"})
	require.Equal(t, http.StatusPaymentRequired, resp.StatusCode)
	assert.NotEmpty(t, body["error"])

	require.NoError(t, env.store.GrantCredits(context.Background(), env.user, "", 1, false))
	resp, body = env.do(t, http.MethodPost, "/api/analyses", fiber.Map{"cv_id": cvID, "kind": "analyze"})
	require.Equal(t, http.StatusAccepted, resp.StatusCode)
	jobID := body["id"].(string)
	assert.Equal(t, "processing", body["status"])

	resp, body = env.do(t, http.MethodGet, "/api/analyses/"+jobID+"/wait?timeout=20ms", nil)
	assert.Equal(t, http.StatusAccepted, resp.StatusCode)
	assert.Equal(t, "processing", body["status"])

	resp, _ = env.do(t, http.MethodGet, "/api/analyses/"+jobID+"/wait?timeout=soon", nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	cb := fiber.Map{"job_id": jobID, "status": "completed", "result": fiber.Map{"score": 88}}
	resp, _ = env.do(t, http.MethodPost, "/webhooks/automation", cb, "X-Automation-Secret", "wrong")
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	resp, body = env.do(t, http.MethodPost, "/webhooks/automation", cb, "X-Automation-Secret", callbackSecret)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "completed", body["status"])

	resp, body = env.do(t, http.MethodGet, "/api/analyses/"+jobID+"/wait", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, float64(88), body["score"])

	resp, body = env.do(t, http.MethodGet, "/api/dashboard", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, float64(88), body["latest_score"])
}

func TestBoardRoutes(t *testing.T) {
	env := newTestEnv(t)

	resp, body := env.do(t, http.MethodPost, "/api/applications", fiber.Map{"company": "Acme", "role": "Engineer"})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	id := body["id"].(string)
	assert.Equal(t, string(domain.ColumnWishlist), body["column"])

	resp, body = env.do(t, http.MethodPost, "/api/applications/"+id+"/move", fiber.Map{"column": "interview", "index": 0})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "interview", body["column"])

	resp, body = env.do(t, http.MethodPatch, "/api/applications/"+id, fiber.Map{"notes": "panel on friday"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "panel on friday", body["notes"])

	resp, body = env.do(t, http.MethodGet, "/api/board", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	cols := body["columns"].([]interface{})
	require.Len(t, cols, len(domain.Columns))

	resp, _ = env.do(t, http.MethodPost, "/api/applications/"+id+"/move", fiber.Map{"column": "limbo"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, _ = env.do(t, http.MethodDelete, "/api/applications/"+id, nil)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
}

func TestStripeWebhookRejectsUnsigned(t *testing.T) {
	env := newTestEnv(t)
	env.token = ""
	resp, _ := env.do(t, http.MethodPost, "/webhooks/stripe", fiber.Map{"id": "evt_1"}, "Stripe-Signature", "t=1,v1=00")
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestEntitlementRoute(t *testing.T) {
	env := newTestEnv(t)
	resp, body := env.do(t, http.MethodGet, "/api/entitlement", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, float64(0), body["credits"])
	assert.Equal(t, false, body["subscription_active"])
}
