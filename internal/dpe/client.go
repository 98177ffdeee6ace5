// Package dpe fetches building energy-performance diagnostic records from the
// ADEME open-data endpoint.
//
// Limits are validated locally before any request is sent. Sort fields,
// selected columns and filters are validated by the server, which answers
// 400 for anything it does not know.
package dpe

import (
	"context"
	"errors"
	"net/url"
	"time"

	"go.uber.org/zap"
)

const (
	opFetch = "fetch"
	opProbe = "probe"
)

var errNoResponse = errors.New("transport returned no response")

// Client fetches DPE records. It holds no mutable state of its own and is
// safe for concurrent use when its Transport is.
type Client struct {
	cfg       Config
	transport Transport
	logger    *zap.Logger
	metrics   *Metrics
}

// Option configures a Client.
type Option func(*Client)

// WithLogger sets the client logger.
func WithLogger(l *zap.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithMetrics records request outcomes in m.
func WithMetrics(m *Metrics) Option {
	return func(c *Client) { c.metrics = m }
}

// New validates cfg and returns a Client sending requests through transport.
func New(cfg Config, transport Transport, opts ...Option) (*Client, error) {
	if transport == nil {
		return nil, errors.New("dpe: transport is required")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	c := &Client{
		cfg:       cfg,
		transport: transport,
		logger:    zap.NewNop(),
	}
	for _, o := range opts {
		if o != nil {
			o(c)
		}
	}
	return c, nil
}

// Config returns the client's configuration.
func (c *Client) Config() Config { return c.cfg }

// Fetch sends a single request built from opts and returns the decoded
// records. Every failure is a *ClassifiedError.
func (c *Client) Fetch(ctx context.Context, opts ...QueryOption) (*RecordTable, error) {
	spec, err := BuildQuery(c.cfg, opts...)
	if err != nil {
		c.metrics.count(opFetch, string(KindInvalidLimit))
		return nil, err
	}

	start := time.Now()
	resp, err := c.transport.Get(ctx, c.cfg.EndpointURL, spec.Values(), c.cfg.Timeout)
	elapsed := time.Since(start)
	if err == nil && resp == nil {
		err = errNoResponse
	}
	if err != nil {
		return nil, c.fail(classifyTransport(err), "", elapsed)
	}

	if resp.StatusCode != 200 {
		return nil, c.fail(classifyStatus(resp.StatusCode, resp.Body), resp.RequestID, elapsed)
	}

	table, err := decodeResults(resp.Body)
	if err != nil {
		return nil, c.fail(&ClassifiedError{
			Kind:       KindUnexpectedStatus,
			Detail:     "200 with undecodable body: " + err.Error(),
			StatusCode: resp.StatusCode,
			Cause:      err,
		}, resp.RequestID, elapsed)
	}

	c.metrics.observe(opFetch, "ok", elapsed)
	c.logger.Debug("fetched records",
		zap.Int("requested", spec.Limit),
		zap.Int("received", table.Len()),
		zap.String("sort", spec.SortParam()),
		zap.String("request_id", resp.RequestID),
	)
	return table, nil
}

// IsReachable sends a zero-size probe and reports whether the endpoint
// answered 200. It never returns an error.
func (c *Client) IsReachable(ctx context.Context) bool {
	params := url.Values{}
	params.Set("size", "0")

	start := time.Now()
	resp, err := c.transport.Get(ctx, c.cfg.EndpointURL, params, c.cfg.Timeout)
	elapsed := time.Since(start)
	if err == nil && resp == nil {
		err = errNoResponse
	}
	if err != nil {
		c.metrics.observe(opProbe, string(KindTransport), elapsed)
		c.logger.Debug("endpoint unreachable", zap.Error(err))
		return false
	}

	ok := resp.StatusCode == 200
	outcome := "ok"
	if !ok {
		outcome = string(classifyStatus(resp.StatusCode, nil).Kind)
	}
	c.metrics.observe(opProbe, outcome, elapsed)
	return ok
}

func (c *Client) fail(ce *ClassifiedError, requestID string, elapsed time.Duration) error {
	c.metrics.observe(opFetch, string(ce.Kind), elapsed)
	c.logger.Warn("fetch failed",
		zap.String("kind", string(ce.Kind)),
		zap.Int("status", ce.StatusCode),
		zap.String("request_id", requestID),
		zap.Error(ce),
	)
	return ce
}
