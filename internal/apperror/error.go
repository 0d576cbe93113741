// Package apperror defines the application error model: a closed set
// of error kinds, each carrying a machine-readable code, an HTTP
// status, internal and user-facing messages, structured details, and
// request context. Errors render to a stable JSON envelope and are
// the only error type transports ever map.
package apperror

import (
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
)

// captureHook receives every constructed Error, best effort. Wired
// once at startup (logging, Sentry, metrics); a panicking or failing
// hook must never break error construction.
var captureHook atomic.Pointer[func(*Error)]

func SetCaptureHook(h func(*Error)) {
	captureHook.Store(&h)
}

type Error struct {
	Kind        Kind
	Code        string
	Status      int
	Message     string
	UserMessage string
	Details     map[string]any
	Context     *Context

	ExceptionID string
	Timestamp   time.Time

	cause error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error { return e.cause }

// New constructs an Error of the given kind. The exception id and
// timestamp are fixed here and never change afterwards. The capture
// hook fires once per construction; any failure inside it is
// discarded so that building an error can itself never fail.
func New(kind Kind, code, message string) *Error {
	e := &Error{
		Kind:        kind,
		Code:        code,
		Status:      kind.defaultStatus(),
		Message:     message,
		UserMessage: kind.defaultUserMessage(),
		ExceptionID: uuid.NewString(),
		Timestamp:   time.Now().UTC(),
	}
	e.capture()
	return e
}

func (e *Error) capture() {
	defer func() { _ = recover() }()
	if h := captureHook.Load(); h != nil && *h != nil {
		(*h)(e)
	}
}

func Validation(code, message string) *Error {
	return New(KindValidation, code, message)
}

func NotFound(code, message string) *Error {
	return New(KindNotFound, code, message)
}

func Authentication(code, message string) *Error {
	return New(KindAuthentication, code, message)
}

func Authorization(code, message string) *Error {
	return New(KindAuthorization, code, message)
}

func Conflict(code, message string) *Error {
	return New(KindConflict, code, message)
}

func RateLimit(code, message string) *Error {
	return New(KindRateLimit, code, message)
}

// Integration marks a failure in an external collaborator (email,
// payment, storage). The service name lands in the details map.
func Integration(service, code, message string) *Error {
	e := New(KindIntegration, code, message)
	return e.WithDetail("service", service)
}

// Internal wraps an unexpected error. The cause is kept for logs and
// never serialized.
func Internal(cause error) *Error {
	e := New(KindInternal, CodeInternalError, "unexpected internal error")
	e.cause = cause
	return e
}

func (e *Error) WithStatus(status int) *Error {
	e.Status = status
	return e
}

func (e *Error) WithUserMessage(msg string) *Error {
	e.UserMessage = msg
	return e
}

func (e *Error) WithCause(cause error) *Error {
	e.cause = cause
	return e
}

func (e *Error) WithDetail(key string, value any) *Error {
	if e.Details == nil {
		e.Details = make(map[string]any)
	}
	e.Details[key] = value
	return e
}

func (e *Error) WithDetails(details map[string]any) *Error {
	for k, v := range details {
		e.WithDetail(k, v)
	}
	return e
}

// WithContext merges ctx into the error's context, keeping existing
// fields unless overridden.
func (e *Error) WithContext(ctx Context) *Error {
	if e.Context == nil {
		merged := Context{}.merge(ctx)
		e.Context = &merged
		return e
	}
	merged := e.Context.merge(ctx)
	e.Context = &merged
	return e
}

// Envelope renders the wire form. Calling it twice on the same error
// yields identical output: the exception id and timestamp were fixed
// at construction.
func (e *Error) Envelope() map[string]any {
	body := map[string]any{
		"code":         e.Code,
		"message":      e.UserMessage,
		"type":         e.Kind.String(),
		"exception_id": e.ExceptionID,
		"timestamp":    e.Timestamp.Format(time.RFC3339Nano),
	}
	if len(e.Details) > 0 {
		body["details"] = e.Details
	}
	if e.Context != nil {
		if ctx := e.Context.envelope(); ctx != nil {
			body["context"] = ctx
		}
	}
	return map[string]any{"error": body}
}

// From returns err as an *Error, wrapping anything unrecognized as
// internal so transports only ever deal in app errors.
func From(err error) *Error {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr
	}
	return Internal(err)
}

// IsKind reports whether err is an app error of the given kind.
func IsKind(err error, kind Kind) bool {
	var appErr *Error
	return errors.As(err, &appErr) && appErr.Kind == kind
}
