package dpe

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"
)

// ErrorKind categorizes a failed fetch.
type ErrorKind string

const (
	KindInvalidLimit     ErrorKind = "invalid_limit"
	KindBadRequest       ErrorKind = "bad_request"
	KindUnexpectedStatus ErrorKind = "unexpected_status"
	KindTransport        ErrorKind = "transport_error"
)

// CallerFault reports whether the kind points at a mistake in the caller's
// parameters rather than at the endpoint or the network.
func (k ErrorKind) CallerFault() bool {
	return k == KindInvalidLimit || k == KindBadRequest
}

// Sentinels for errors.Is matching against a *ClassifiedError.
var (
	ErrInvalidLimit     = errors.New("dpe: invalid limit")
	ErrBadRequest       = errors.New("dpe: bad request")
	ErrUnexpectedStatus = errors.New("dpe: unexpected status")
	ErrTransport        = errors.New("dpe: transport error")
)

var kindSentinels = map[ErrorKind]error{
	KindInvalidLimit:     ErrInvalidLimit,
	KindBadRequest:       ErrBadRequest,
	KindUnexpectedStatus: ErrUnexpectedStatus,
	KindTransport:        ErrTransport,
}

// ClassifiedError is the only error type returned by Client.Fetch.
type ClassifiedError struct {
	Kind   ErrorKind
	Detail string
	// StatusCode is zero for errors observed before or without a response.
	StatusCode int
	Cause      error
}

func (e *ClassifiedError) Error() string {
	if e.Kind == KindInvalidLimit {
		return e.Detail
	}
	return fmt.Sprintf("dpe: %s: %s", e.Kind, e.Detail)
}

func (e *ClassifiedError) Unwrap() error { return e.Cause }

// Is matches the sentinel for the error's kind.
func (e *ClassifiedError) Is(target error) bool {
	s, ok := kindSentinels[e.Kind]
	return ok && s == target
}

// KindOf returns the kind of a classified error anywhere in err's chain.
func KindOf(err error) (ErrorKind, bool) {
	var ce *ClassifiedError
	if errors.As(err, &ce) {
		return ce.Kind, true
	}
	return "", false
}

func newInvalidLimit(limit any) *ClassifiedError {
	return &ClassifiedError{
		Kind:   KindInvalidLimit,
		Detail: fmt.Sprintf("The limit must be a positive integer >= 1, got %v.", limit),
	}
}

// classifyStatus maps a non-200 response to its kind. The body of a 400 is
// kept verbatim: the server uses it for both bad sort fields and bad filters.
func classifyStatus(status int, body []byte) *ClassifiedError {
	text := string(body)
	if status == 400 {
		return &ClassifiedError{Kind: KindBadRequest, Detail: text, StatusCode: status}
	}
	return &ClassifiedError{
		Kind:       KindUnexpectedStatus,
		Detail:     fmt.Sprintf("failed to fetch data: %d - %s", status, strings.TrimSpace(text)),
		StatusCode: status,
	}
}

// classifyTransport wraps a failure of the transport itself.
func classifyTransport(err error) *ClassifiedError {
	var dnsErr *net.DNSError
	var opErr *net.OpError

	reason := "request failed"
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		reason = "request timed out"
	case errors.Is(err, context.Canceled):
		reason = "request cancelled"
	case errors.As(err, &dnsErr):
		reason = "host lookup failed"
	case errors.As(err, &opErr) && opErr.Op == "dial":
		reason = "endpoint unreachable"
	default:
		var ne net.Error
		if errors.As(err, &ne) && ne.Timeout() {
			reason = "request timed out"
		}
	}

	return &ClassifiedError{
		Kind:   KindTransport,
		Detail: fmt.Sprintf("%s: %v", reason, err),
		Cause:  err,
	}
}
