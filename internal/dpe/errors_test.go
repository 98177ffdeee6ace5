package dpe

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"
	"testing"
)

func TestClassifyStatus(t *testing.T) {
	tests := []struct {
		name       string
		status     int
		body       string
		wantKind   ErrorKind
		wantDetail string
	}{
		{
			name:       "bad request keeps body verbatim",
			status:     400,
			body:       "Impossible de trier sur le champ foo\n",
			wantKind:   KindBadRequest,
			wantDetail: "Impossible de trier sur le champ foo\n",
		},
		{
			name:       "server error",
			status:     500,
			body:       "Internal Server Error",
			wantKind:   KindUnexpectedStatus,
			wantDetail: "failed to fetch data: 500 - Internal Server Error",
		},
		{
			name:       "not found",
			status:     404,
			body:       "",
			wantKind:   KindUnexpectedStatus,
			wantDetail: "failed to fetch data: 404 - ",
		},
		{
			name:       "rate limited",
			status:     429,
			body:       "slow down",
			wantKind:   KindUnexpectedStatus,
			wantDetail: "failed to fetch data: 429 - slow down",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ce := classifyStatus(tt.status, []byte(tt.body))
			if ce.Kind != tt.wantKind {
				t.Errorf("Kind = %q, want %q", ce.Kind, tt.wantKind)
			}
			if ce.Detail != tt.wantDetail {
				t.Errorf("Detail = %q, want %q", ce.Detail, tt.wantDetail)
			}
			if ce.StatusCode != tt.status {
				t.Errorf("StatusCode = %d, want %d", ce.StatusCode, tt.status)
			}
		})
	}
}

func TestClassifyTransport(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantPrefix string
	}{
		{"deadline", fmt.Errorf("get: %w", context.DeadlineExceeded), "request timed out"},
		{"cancelled", context.Canceled, "request cancelled"},
		{"dns", &net.DNSError{Err: "no such host", Name: "data.ademe.invalid", IsNotFound: true}, "host lookup failed"},
		{"dial", &net.OpError{Op: "dial", Net: "tcp", Err: errors.New("connection refused")}, "endpoint unreachable"},
		{"other", errors.New("connection reset by peer"), "request failed"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ce := classifyTransport(tt.err)
			if ce.Kind != KindTransport {
				t.Fatalf("Kind = %q, want %q", ce.Kind, KindTransport)
			}
			if !strings.HasPrefix(ce.Detail, tt.wantPrefix) {
				t.Errorf("Detail = %q, want prefix %q", ce.Detail, tt.wantPrefix)
			}
			if !strings.Contains(ce.Detail, tt.err.Error()) {
				t.Errorf("Detail = %q, should reference cause %q", ce.Detail, tt.err)
			}
			if !errors.Is(ce, tt.err) {
				t.Error("errors.Is(ce, cause) = false, want true")
			}
		})
	}
}

func TestClassifiedError_IsAndKindOf(t *testing.T) {
	err := fmt.Errorf("wrapped: %w", classifyStatus(400, []byte("bad")))

	if !errors.Is(err, ErrBadRequest) {
		t.Error("errors.Is(err, ErrBadRequest) = false, want true")
	}
	if errors.Is(err, ErrUnexpectedStatus) {
		t.Error("errors.Is(err, ErrUnexpectedStatus) = true, want false")
	}
	kind, ok := KindOf(err)
	if !ok || kind != KindBadRequest {
		t.Errorf("KindOf = %q, %v; want %q, true", kind, ok, KindBadRequest)
	}
	if _, ok := KindOf(errors.New("plain")); ok {
		t.Error("KindOf(plain) ok = true, want false")
	}
}

func TestInvalidLimitMessage(t *testing.T) {
	for _, v := range []any{0, -5, "2.5"} {
		err := newInvalidLimit(v)
		want := fmt.Sprintf("The limit must be a positive integer >= 1, got %v.", v)
		if err.Error() != want {
			t.Errorf("Error() = %q, want %q", err.Error(), want)
		}
		if !errors.Is(err, ErrInvalidLimit) {
			t.Errorf("errors.Is(%v, ErrInvalidLimit) = false", v)
		}
	}
}

func TestErrorKind_CallerFault(t *testing.T) {
	tests := map[ErrorKind]bool{
		KindInvalidLimit:     true,
		KindBadRequest:       true,
		KindUnexpectedStatus: false,
		KindTransport:        false,
	}
	for k, want := range tests {
		if got := k.CallerFault(); got != want {
			t.Errorf("%s.CallerFault() = %v, want %v", k, got, want)
		}
	}
}
