// Package remote implements the typed HTTP client for the external
// records service: the JSON API that owns patients, exams and the
// extraction pipeline. The console never talks to it except through
// this client.
package remote

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/clinrec/console/pkg/breaker"
	"github.com/clinrec/console/pkg/errors"
	"github.com/clinrec/console/pkg/logger"
	"github.com/clinrec/console/pkg/metrics"
)

type Config struct {
	BaseURL     string
	Timeout     time.Duration
	MaxFailures int
	Cooldown    time.Duration
}

type Client struct {
	baseURL string
	http    *http.Client
	cb      *breaker.Breaker
	logger  *logger.Logger
	metrics *metrics.Metrics
}

// NewClient builds a records service client. metrics may be nil, in
// which case no instrumentation is recorded.
func NewClient(cfg Config, log *logger.Logger, m *metrics.Metrics) (*Client, error) {
	base := strings.TrimRight(cfg.BaseURL, "/")
	if base == "" {
		return nil, fmt.Errorf("records base URL is required")
	}
	if _, err := url.Parse(base); err != nil {
		return nil, fmt.Errorf("invalid records base URL: %w", err)
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	return &Client{
		baseURL: base,
		http:    &http.Client{Timeout: timeout},
		cb: breaker.New(breaker.Settings{
			Name:        "records-service",
			MaxFailures: cfg.MaxFailures,
			Cooldown:    cfg.Cooldown,
		}),
		logger:  log.WithComponent("remote"),
		metrics: m,
	}, nil
}

// envelope is the records service response contract: every payload
// carries success, failures carry a human-readable error.
type envelope struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

func (e envelope) ok() bool        { return e.Success }
func (e envelope) message() string { return e.Error }

type response interface {
	ok() bool
	message() string
}

// pageMeta is the pagination block on list responses.
type pageMeta struct {
	Page  int `json:"page"`
	Total int `json:"total"`
	Pages int `json:"pages"`
}

// do issues one request and decodes the envelope, translating failures
// into the console error taxonomy: transport errors stay retryable,
// success=false reasons are surfaced verbatim as domain rejections.
func (c *Client) do(ctx context.Context, op, method, path string, query url.Values, body io.Reader, contentType string, out response) error {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, u, body)
	if err != nil {
		return errors.Internal(fmt.Errorf("failed to build %s request: %w", op, err))
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	var resp *http.Response
	err = c.cb.Execute(func() error {
		var doErr error
		resp, doErr = c.http.Do(req)
		return doErr
	})
	c.observeLatency(op, time.Since(start))

	if err != nil {
		c.observe(op, "transport_error")
		c.countFailure(op, errors.KindTransport)
		c.logger.Warn("records service request failed",
			"operation", op, "error", err.Error())
		return errors.Transport("records service unreachable", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		c.observe(op, "read_error")
		c.countFailure(op, errors.KindTransport)
		return errors.Transport("failed to read records service response", err)
	}

	if err := json.Unmarshal(raw, out); err != nil {
		c.observe(op, fmt.Sprintf("%d", resp.StatusCode))
		if resp.StatusCode >= http.StatusInternalServerError {
			c.countFailure(op, errors.KindTransport)
			return errors.Transport(
				fmt.Sprintf("records service returned %d", resp.StatusCode), err)
		}
		c.countFailure(op, errors.KindInternal)
		return errors.Internal(fmt.Errorf("undecodable records service response: %w", err))
	}

	c.observe(op, fmt.Sprintf("%d", resp.StatusCode))

	if !out.ok() {
		msg := out.message()
		if msg == "" {
			msg = fmt.Sprintf("records service rejected the request (HTTP %d)", resp.StatusCode)
		}
		if resp.StatusCode == http.StatusNotFound {
			c.countFailure(op, errors.KindNotFound)
			return &errors.AppError{Kind: errors.KindNotFound, Message: msg}
		}
		c.countFailure(op, errors.KindDomain)
		return errors.Domain(msg)
	}

	return nil
}

func (c *Client) observe(op, status string) {
	if c.metrics != nil {
		c.metrics.RemoteRequests.WithLabelValues(op, status).Inc()
	}
}

func (c *Client) observeLatency(op string, d time.Duration) {
	if c.metrics != nil {
		c.metrics.RemoteLatency.WithLabelValues(op).Observe(d.Seconds())
	}
}

func (c *Client) countFailure(op string, kind errors.Kind) {
	if c.metrics != nil {
		c.metrics.RemoteFailures.WithLabelValues(op, kind.String()).Inc()
	}
}

func jsonBody(v interface{}) (io.Reader, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, errors.Internal(fmt.Errorf("failed to marshal request: %w", err))
	}
	return strings.NewReader(string(raw)), nil
}
