package apiclient

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/valyala/fasthttp"

	"github.com/fastygo/powertimer/api/transport"
	"github.com/fastygo/powertimer/domain"
	"github.com/fastygo/powertimer/pkg/httpcontext"
	"github.com/fastygo/powertimer/pkg/logger"
	"github.com/fastygo/powertimer/repository"
)

// Doer is the subset of *fasthttp.Client used here.
type Doer interface {
	DoDeadline(req *fasthttp.Request, resp *fasthttp.Response, deadline time.Time) error
}

// Client talks to the powertimer HTTP API and turns error envelopes back into
// domain errors. It satisfies the reconciler's Store port.
type Client struct {
	base    string
	doer    Doer
	timeout time.Duration
}

func New(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Client{
		base:    strings.TrimRight(baseURL, "/"),
		doer:    &fasthttp.Client{Name: "timerctl", ReadTimeout: timeout, WriteTimeout: timeout},
		timeout: timeout,
	}
}

// WithDoer swaps the transport, e.g. for an in-memory listener.
func (c *Client) WithDoer(d Doer) *Client {
	c.doer = d
	return c
}

func (c *Client) ListTimers(ctx context.Context, filter repository.TimerFilter) ([]domain.Timer, error) {
	q := url.Values{}
	if filter.Status != "" {
		q.Set("status", string(filter.Status))
	}
	if filter.IncludeCompleted {
		q.Set("include_completed", "true")
	}
	if filter.Limit > 0 {
		q.Set("limit", strconv.Itoa(filter.Limit))
	}
	if filter.Offset > 0 {
		q.Set("offset", strconv.Itoa(filter.Offset))
	}
	var timers []domain.Timer
	err := c.do(ctx, fasthttp.MethodGet, "/api/v1/timers", q, nil, &timers)
	return timers, err
}

func (c *Client) GetTimer(ctx context.Context, id string) (*domain.Timer, error) {
	var timer domain.Timer
	if err := c.do(ctx, fasthttp.MethodGet, "/api/v1/timers/"+url.PathEscape(id), nil, nil, &timer); err != nil {
		return nil, err
	}
	return &timer, nil
}

func (c *Client) CreateTimer(ctx context.Context, req transport.CreateTimerRequest) (*domain.Timer, error) {
	var timer domain.Timer
	if err := c.do(ctx, fasthttp.MethodPost, "/api/v1/timers", nil, req, &timer); err != nil {
		return nil, err
	}
	return &timer, nil
}

func (c *Client) Patch(ctx context.Context, id string, patch domain.TimerPatch) (*domain.Timer, error) {
	body := transport.PatchTimerRequest{
		Name:             patch.Name,
		Status:           patch.Status,
		RemainingSeconds: patch.RemainingSeconds,
	}
	var timer domain.Timer
	if err := c.do(ctx, fasthttp.MethodPatch, "/api/v1/timers/"+url.PathEscape(id), nil, body, &timer); err != nil {
		return nil, err
	}
	return &timer, nil
}

func (c *Client) DeleteTimer(ctx context.Context, id string) error {
	return c.do(ctx, fasthttp.MethodDelete, "/api/v1/timers/"+url.PathEscape(id), nil, nil, nil)
}

func (c *Client) ListTemplates(ctx context.Context) ([]domain.Template, error) {
	var templates []domain.Template
	err := c.do(ctx, fasthttp.MethodGet, "/api/v1/templates", nil, nil, &templates)
	return templates, err
}

func (c *Client) InstantiateTemplate(ctx context.Context, templateID, name string) (*domain.Timer, error) {
	q := url.Values{}
	if name != "" {
		q.Set("name", name)
	}
	var timer domain.Timer
	path := "/api/v1/templates/" + url.PathEscape(templateID) + "/create-timer"
	if err := c.do(ctx, fasthttp.MethodPost, path, q, nil, &timer); err != nil {
		return nil, err
	}
	return &timer, nil
}

func (c *Client) SeedTemplates(ctx context.Context) (int, error) {
	var body struct {
		Created int `json:"created"`
	}
	err := c.do(ctx, fasthttp.MethodPost, "/api/v1/init-templates", nil, nil, &body)
	return body.Created, err
}

func (c *Client) Stats(ctx context.Context) (domain.StatsSnapshot, error) {
	var snapshot domain.StatsSnapshot
	err := c.do(ctx, fasthttp.MethodGet, "/api/v1/stats", nil, nil, &snapshot)
	return snapshot, err
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out interface{}) error {
	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	uri := c.base + path
	if len(query) > 0 {
		uri += "?" + query.Encode()
	}
	req.SetRequestURI(uri)
	req.Header.SetMethod(method)
	req.Header.Set(httpcontext.HeaderRequestID, requestID(ctx))
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return domain.WrapError(domain.ErrCodeInvalid, "encode request", err)
		}
		req.Header.SetContentType("application/json")
		req.SetBody(raw)
	}

	deadline, ok := ctx.Deadline()
	if !ok {
		deadline = time.Now().Add(c.timeout)
	}
	if err := ctx.Err(); err != nil {
		return domain.WrapError(domain.ErrCodeUnavailable, "request cancelled", err)
	}
	if err := c.doer.DoDeadline(req, resp, deadline); err != nil {
		return domain.WrapError(domain.ErrCodeUnavailable, fmt.Sprintf("%s %s", method, path), err)
	}

	return decode(resp, out)
}

func decode(resp *fasthttp.Response, out interface{}) error {
	var env transport.RawEnvelope
	if err := json.Unmarshal(resp.Body(), &env); err != nil {
		return domain.WrapError(domain.ErrCodeUnavailable,
			fmt.Sprintf("unexpected response (HTTP %d)", resp.StatusCode()), err)
	}

	if env.Status == transport.StatusError {
		return envelopeError(env)
	}
	if out == nil || len(env.Data) == 0 {
		return nil
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return domain.WrapError(domain.ErrCodeInternal, "decode response data", err)
	}
	return nil
}

func envelopeError(env transport.RawEnvelope) error {
	code := domain.ErrorCode(env.Code)
	if code == domain.ErrCodeInvalidTransition {
		tErr := &domain.TransitionError{}
		var current domain.Timer
		if len(env.Data) > 0 && json.Unmarshal(env.Data, &current) == nil && current.ID != "" {
			tErr.Current = &current
			tErr.From = current.Status
		}
		return tErr
	}
	switch code {
	case domain.ErrCodeNotFound, domain.ErrCodeInvalid, domain.ErrCodeConflict, domain.ErrCodeUnavailable:
	default:
		code = domain.ErrCodeInternal
	}
	return domain.NewError(code, env.Error)
}

func requestID(ctx context.Context) string {
	if id := logger.RequestIDFromContext(ctx); id != "" {
		return id
	}
	return uuid.NewString()
}
