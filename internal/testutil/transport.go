package testutil

import (
	"context"
	"net/url"
	"sync"
	"time"

	"github.com/HerbHall/dpetools/internal/dpe"
)

// Compile-time interface check.
var _ dpe.Transport = (*MockTransport)(nil)

// Call is one request seen by MockTransport.
type Call struct {
	Endpoint string
	Params   url.Values
	Timeout  time.Duration
}

// MockTransport is a thread-safe dpe.Transport that records every call and
// answers with a fixed response or error.
type MockTransport struct {
	mu    sync.Mutex
	calls []Call
	resp  *dpe.Response
	err   error
}

// NewMockTransport returns a transport answering status with body.
func NewMockTransport(status int, body string) *MockTransport {
	return &MockTransport{resp: &dpe.Response{StatusCode: status, Body: []byte(body)}}
}

// NewFailingTransport returns a transport whose every call fails with err.
func NewFailingTransport(err error) *MockTransport {
	return &MockTransport{err: err}
}

// NewEmptyTransport returns a transport that answers every call with a nil
// response and a nil error.
func NewEmptyTransport() *MockTransport {
	return &MockTransport{}
}

// Get records the call and returns the configured outcome.
func (m *MockTransport) Get(_ context.Context, endpoint string, params url.Values, timeout time.Duration) (*dpe.Response, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	cp := url.Values{}
	for k, vv := range params {
		cp[k] = append([]string(nil), vv...)
	}
	m.calls = append(m.calls, Call{Endpoint: endpoint, Params: cp, Timeout: timeout})

	if m.err != nil || m.resp == nil {
		return nil, m.err
	}
	out := *m.resp
	out.Body = append([]byte(nil), m.resp.Body...)
	return &out, nil
}

// Calls returns a copy of all recorded calls.
func (m *MockTransport) Calls() []Call {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Call, len(m.calls))
	copy(out, m.calls)
	return out
}
