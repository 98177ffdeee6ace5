package dpe

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// RequestIDHeader carries the per-request identifier.
const RequestIDHeader = "X-Request-ID"

// DefaultMaxBodySize caps how much of a response body is read.
const DefaultMaxBodySize = 32 << 20

// Response is what the core needs back from a transport.
type Response struct {
	StatusCode int
	Body       []byte
	RequestID  string
}

// Transport sends one GET and returns the status and body. A returned error
// means no HTTP response was obtained. Implementations must not retry.
type Transport interface {
	Get(ctx context.Context, endpoint string, params url.Values, timeout time.Duration) (*Response, error)
}

// HTTPTransport implements Transport over net/http.
type HTTPTransport struct {
	client    *http.Client
	userAgent string
	limiter   *rate.Limiter
	logger    *zap.Logger
	maxBody   int64
}

// HTTPOption configures an HTTPTransport.
type HTTPOption func(*HTTPTransport)

// WithHTTPClient replaces the underlying *http.Client.
func WithHTTPClient(c *http.Client) HTTPOption {
	return func(t *HTTPTransport) { t.client = c }
}

// WithUserAgent sets the User-Agent header.
func WithUserAgent(ua string) HTTPOption {
	return func(t *HTTPTransport) { t.userAgent = ua }
}

// WithRateLimit paces outgoing requests to rps per second. A non-positive
// rps disables pacing.
func WithRateLimit(rps float64) HTTPOption {
	return func(t *HTTPTransport) {
		if rps <= 0 {
			t.limiter = nil
			return
		}
		t.limiter = rate.NewLimiter(rate.Limit(rps), 1)
	}
}

// WithMaxBodySize sets the largest response body accepted, in bytes.
func WithMaxBodySize(n int64) HTTPOption {
	return func(t *HTTPTransport) {
		if n > 0 {
			t.maxBody = n
		}
	}
}

// WithTransportLogger sets the logger used for request tracing.
func WithTransportLogger(l *zap.Logger) HTTPOption {
	return func(t *HTTPTransport) { t.logger = l }
}

// NewHTTPTransport creates a transport with a dedicated http.Client.
func NewHTTPTransport(opts ...HTTPOption) *HTTPTransport {
	t := &HTTPTransport{
		client:    &http.Client{},
		userAgent: "dpetools",
		logger:    zap.NewNop(),
		maxBody:   DefaultMaxBodySize,
	}
	for _, o := range opts {
		if o != nil {
			o(t)
		}
	}
	return t
}

// Get performs the request. The timeout covers pacing, the round trip and
// reading the body.
func (t *HTTPTransport) Get(ctx context.Context, endpoint string, params url.Values, timeout time.Duration) (*Response, error) {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	u, err := url.Parse(endpoint)
	if err != nil {
		return nil, fmt.Errorf("parse endpoint: %w", err)
	}
	q := u.Query()
	for k, vv := range params {
		for _, v := range vv {
			q.Add(k, v)
		}
	}
	u.RawQuery = q.Encode()

	if t.limiter != nil {
		if err := t.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("rate limit wait: %w", err)
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	reqID := uuid.NewString()
	req.Header.Set(RequestIDHeader, reqID)
	req.Header.Set("Accept", "application/json")
	if t.userAgent != "" {
		req.Header.Set("User-Agent", t.userAgent)
	}

	t.logger.Debug("sending request",
		zap.String("url", u.String()),
		zap.String("request_id", reqID),
	)

	resp, err := t.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, t.maxBody+1))
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	if int64(len(body)) > t.maxBody {
		return nil, fmt.Errorf("response body exceeds %d bytes", t.maxBody)
	}

	return &Response{StatusCode: resp.StatusCode, Body: body, RequestID: reqID}, nil
}
