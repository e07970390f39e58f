// Package errors builds error responses of the pms API.
//
// These are for requests pmsd can not understand at all.
// Failures of understood requests are reported in the envelope of each endpoint.
package errors

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
)

// ErrorMessage is the body of error responses.
//
// It marshals itself, so echo writes it as the response body as is.
type ErrorMessage struct {
	Reason string
	Advice string
	Cause  error
}

type wireMessage struct {
	Reason *string `json:"reason"`
	Advice string  `json:"advice,omitempty"`
}

var _ json.Marshaler = ErrorMessage{}

func (em ErrorMessage) MarshalJSON() ([]byte, error) {
	return json.Marshal(wireMessage{Reason: &em.Reason, Advice: em.Advice})
}

func (em *ErrorMessage) UnmarshalJSON(b []byte) error {
	w := wireMessage{}
	if err := json.Unmarshal(b, &w); err != nil {
		return err
	}
	if w.Reason == nil {
		return fmt.Errorf(`required field missing: "reason"`)
	}
	em.Reason = *w.Reason
	em.Advice = w.Advice
	return nil
}

func (em ErrorMessage) Error() string {
	lines := []string{em.Reason}
	if em.Advice != "" {
		lines = append(lines, em.Advice)
	}
	if em.Cause != nil {
		lines = append(lines, "caused by: "+em.Cause.Error())
	}
	return strings.Join(lines, "\n")
}

func (em ErrorMessage) Unwrap() error {
	return em.Cause
}

type Option func(*ErrorMessage) *ErrorMessage

func WithAdvice(advice string) Option {
	return func(em *ErrorMessage) *ErrorMessage {
		em.Advice = advice
		return em
	}
}

func WithCause(err error) Option {
	return func(em *ErrorMessage) *ErrorMessage {
		em.Cause = err
		return em
	}
}

// New returns HTTPError with ErrorMessage. The cause is kept as internal error.
func New(code int, reason string, opts ...Option) *echo.HTTPError {
	em := &ErrorMessage{Reason: reason}
	for _, opt := range opts {
		em = opt(em)
	}
	return echo.NewHTTPError(code, *em).SetInternal(*em)
}

func BadRequest(advice string, err error) *echo.HTTPError {
	return New(http.StatusBadRequest, "bad request", WithAdvice(advice), WithCause(err))
}

func UnsupportedMediaType(got string) *echo.HTTPError {
	return New(
		http.StatusUnsupportedMediaType, "unsupported content type",
		WithAdvice(fmt.Sprintf("request body should be %s, not %q", echo.MIMEApplicationJSON, got)),
	)
}

func ServiceUnavailable(advice string, err error) *echo.HTTPError {
	return New(http.StatusServiceUnavailable, "service unavailable", WithAdvice(advice), WithCause(err))
}

func InternalServerError(err error) *echo.HTTPError {
	return New(http.StatusInternalServerError, "unexpected error", WithCause(err))
}
