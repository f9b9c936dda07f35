package automation

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"
)

func TestForward(t *testing.T) {
	var got ForwardRequest
	var apiKey string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		apiKey = r.Header.Get("x-make-apikey")
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = w.Write([]byte("Accepted"))
	}))
	defer srv.Close()

	c := NewClient(map[Kind]string{Analyze: srv.URL}, WithAPIKey("secret"))
	req := ForwardRequest{
		JobID:       uuid.New(),
		Kind:        Analyze,
		CV:          json.RawMessage(`{"personal":{"name":"Ada"}}`),
		CallbackURL: "http://relay/webhooks/automation",
	}
	require.NoError(t, c.Forward(context.Background(), req))

	assert.Equal(t, "secret", apiKey)
	assert.Equal(t, req.JobID, got.JobID)
	assert.Equal(t, "Ada", gjson.GetBytes(got.CV, "personal.name").String())
	assert.Equal(t, Instructions(Analyze), got.Instructions)
}

func TestForwardRetriesServerErrors(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c := NewClient(map[Kind]string{Optimize: srv.URL}, WithRetryWait(time.Millisecond))
	require.NoError(t, c.Forward(context.Background(), ForwardRequest{Kind: Optimize}))
	assert.EqualValues(t, 3, atomic.LoadInt32(&calls))
}

func TestForwardGivesUp(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	c := NewClient(map[Kind]string{Analyze: srv.URL}, WithRetryWait(time.Millisecond))
	err := c.Forward(context.Background(), ForwardRequest{Kind: Analyze})
	require.Error(t, err)
	assert.EqualValues(t, 3, atomic.LoadInt32(&calls))
}

func TestForwardDoesNotRetryClientErrors(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusGone)
	}))
	defer srv.Close()

	c := NewClient(map[Kind]string{Analyze: srv.URL}, WithRetryWait(time.Millisecond))
	require.Error(t, c.Forward(context.Background(), ForwardRequest{Kind: Analyze}))
	assert.EqualValues(t, 1, atomic.LoadInt32(&calls))
}

func TestForwardUnknownScenario(t *testing.T) {
	c := NewClient(map[Kind]string{Analyze: "", Generate: "http://x"})
	assert.False(t, c.Supports(Analyze))
	assert.True(t, c.Supports(Generate))
	err := c.Forward(context.Background(), ForwardRequest{Kind: Analyze})
	assert.ErrorIs(t, err, ErrNoScenario)
}
