package http

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"strings"
)

// ErrorKind classifies a failed call
type ErrorKind int

const (
	// KindHTTPStatus is a response with a non-2xx status
	KindHTTPStatus ErrorKind = iota
	// KindTimeout is a call that exceeded its timeout
	KindTimeout
	// KindCanceled is a call abandoned because the caller's context ended
	KindCanceled
	// KindTransport is any other network or protocol failure
	KindTransport
)

func (k ErrorKind) String() string {
	switch k {
	case KindHTTPStatus:
		return "http_status"
	case KindTimeout:
		return "timeout"
	case KindCanceled:
		return "canceled"
	case KindTransport:
		return "transport"
	default:
		return "unknown"
	}
}

// CallError is returned by Client.Send for every call that did not produce a
// 2xx response.
type CallError struct {
	Kind       ErrorKind
	Method     string
	URL        string
	StatusCode int
	Reason     string
	Body       []byte
	Err        error
}

func (e *CallError) Error() string {
	switch e.Kind {
	case KindHTTPStatus:
		return fmt.Sprintf("%d - %s", e.StatusCode, e.Reason)
	case KindTimeout:
		return "Request timed out."
	case KindCanceled:
		return "request canceled"
	default:
		if e.Err != nil {
			return e.Err.Error()
		}
		return "transport error"
	}
}

func (e *CallError) Unwrap() error {
	return e.Err
}

// IsTimeout reports whether err is a CallError of kind KindTimeout
func IsTimeout(err error) bool {
	var callErr *CallError
	return errors.As(err, &callErr) && callErr.Kind == KindTimeout
}

// IsStatus reports whether err is a CallError carrying the given HTTP status
func IsStatus(err error, code int) bool {
	var callErr *CallError
	return errors.As(err, &callErr) && callErr.Kind == KindHTTPStatus && callErr.StatusCode == code
}

func statusError(req *Request, resp *Response) *CallError {
	return &CallError{
		Kind:       KindHTTPStatus,
		Method:     req.Method,
		URL:        req.URL,
		StatusCode: resp.StatusCode,
		Reason:     reasonPhrase(resp.StatusCode, resp.Status),
		Body:       resp.Body,
	}
}

// classify turns an error from the transport into a CallError. parent is the
// caller's context; a deadline hit on the per-call context is a timeout only
// when the caller has not given up itself.
func classify(parent context.Context, req *Request, err error) *CallError {
	callErr := &CallError{
		Kind:   KindTransport,
		Method: req.Method,
		URL:    req.URL,
		Err:    err,
	}

	if parent.Err() != nil {
		callErr.Kind = KindCanceled
		return callErr
	}

	var netErr net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
		callErr.Kind = KindTimeout
	}
	return callErr
}

// reasonPhrase extracts the reason from a status line like "404 Not Found"
func reasonPhrase(code int, status string) string {
	reason := strings.TrimSpace(strings.TrimPrefix(status, strconv.Itoa(code)))
	if reason == "" {
		reason = http.StatusText(code)
	}
	return reason
}
