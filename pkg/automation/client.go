package automation

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/google/uuid"
)

var ErrNoScenario = errors.New("automation: no webhook configured for job kind")

// Client forwards wizard payloads to the automation platform's scenario
// webhooks. Results come back asynchronously through the callback URL.
type Client struct {
	http      *resty.Client
	scenarios map[Kind]string
	apiKey    string
}

// Option configures a Client.
type Option func(*Client)

// WithAPIKey sends key in the x-make-apikey header of every forward.
func WithAPIKey(key string) Option {
	return func(c *Client) { c.apiKey = key }
}

// WithRetryWait overrides the initial backoff between attempts.
func WithRetryWait(d time.Duration) Option {
	return func(c *Client) { c.http.SetRetryWaitTime(d).SetRetryMaxWaitTime(4 * d) }
}

// NewClient builds a client for the given kind -> webhook URL table.
func NewClient(scenarios map[Kind]string, opts ...Option) *Client {
	hc := resty.New().
		SetTimeout(30*time.Second).
		SetHeader("Content-Type", "application/json").
		SetRetryCount(2).
		SetRetryWaitTime(time.Second).
		SetRetryMaxWaitTime(4 * time.Second).
		AddRetryCondition(func(r *resty.Response, err error) bool {
			return err != nil || r.StatusCode() >= 500 || r.StatusCode() == 429
		})
	c := &Client{http: hc, scenarios: map[Kind]string{}}
	for k, v := range scenarios {
		if v != "" {
			c.scenarios[k] = v
		}
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Supports reports whether a webhook is configured for kind.
func (c *Client) Supports(kind Kind) bool {
	_, ok := c.scenarios[kind]
	return ok
}

// ForwardRequest is the body posted to a scenario webhook. CV is the CV
// document as the client stored it.
type ForwardRequest struct {
	JobID          uuid.UUID       `json:"job_id"`
	UserID         uuid.UUID       `json:"user_id"`
	Kind           Kind            `json:"kind"`
	CV             json.RawMessage `json:"cv"`
	JobDescription string          `json:"job_description,omitempty"`
	CallbackURL    string          `json:"callback_url"`
	Instructions   string          `json:"instructions"`
}

// Forward posts req to the scenario for req.Kind. It retries transport errors
// and 5xx/429 answers with exponential backoff (3 attempts in total).
func (c *Client) Forward(ctx context.Context, req ForwardRequest) error {
	url, ok := c.scenarios[req.Kind]
	if !ok {
		return fmt.Errorf("%w: %s", ErrNoScenario, req.Kind)
	}
	if req.Instructions == "" {
		req.Instructions = Instructions(req.Kind)
	}

	r := c.http.R().SetContext(ctx).SetBody(req)
	if c.apiKey != "" {
		r.SetHeader("x-make-apikey", c.apiKey)
	}
	resp, err := r.Post(url)
	if err != nil {
		return fmt.Errorf("automation: forward %s: %w", req.Kind, err)
	}
	if resp.IsError() {
		return fmt.Errorf("automation: forward %s: %s", req.Kind, resp.Status())
	}
	return nil
}
