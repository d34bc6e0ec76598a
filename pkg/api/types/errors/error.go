package errors

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sort"
	"strings"

	"github.com/labstack/echo/v4"
)

// ErrorMessage is the body of error responses of the tree server.
type ErrorMessage struct {
	Reason string `json:"reason"`
	Advice string `json:"advice,omitempty"`
	Cause  error  `json:"-"`
}

func (em *ErrorMessage) UnmarshalJSON(bytes []byte) error {
	f := new(struct {
		Reason *string `json:"reason"`
		Advice *string `json:"advice,omitempty"`
	})
	if err := json.Unmarshal(bytes, f); err != nil {
		return err
	}

	if f.Reason == nil {
		return fmt.Errorf(`required field missing: "reason"`)
	}
	em.Reason = *f.Reason

	if f.Advice != nil {
		em.Advice = *f.Advice
	}
	return nil
}

// MarshalJSON writes reason and advice only.
//
// echo renders an error message as its Error() unless it is a json.Marshaler.
func (e ErrorMessage) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Reason string `json:"reason"`
		Advice string `json:"advice,omitempty"`
	}{Reason: e.Reason, Advice: e.Advice})
}

func (e ErrorMessage) Error() string {
	lines := []string{e.Reason}
	if e.Advice != "" {
		lines = append(lines, e.Advice)
	}
	if e.Cause != nil {
		lines = append(lines, fmt.Sprint(" caused by:", e.Cause.Error()))
	}
	return strings.Join(lines, "\n")
}

func (e ErrorMessage) Unwrap() error {
	return e.Cause
}

type ErrorMessageOption func(in *ErrorMessage) *ErrorMessage

func WithAdvice(advice string) ErrorMessageOption {
	return func(in *ErrorMessage) *ErrorMessage {
		if advice != "" {
			in.Advice = advice
		}
		return in
	}
}

func WithError(err error) ErrorMessageOption {
	return func(in *ErrorMessage) *ErrorMessage {
		if err != nil {
			in.Cause = err
		}
		return in
	}
}

func NewErrorMessage(code int, reason string, opts ...ErrorMessageOption) *echo.HTTPError {
	msg := ErrorMessage{Reason: reason}
	for _, opt := range opts {
		msg = *opt(&msg)
	}
	return echo.NewHTTPError(code, msg).SetInternal(msg)
}

func NotFound(reason string) *echo.HTTPError {
	return NewErrorMessage(http.StatusNotFound, reason)
}

func BadRequest(advice string, err error) *echo.HTTPError {
	return NewErrorMessage(
		http.StatusBadRequest,
		"bad request",
		WithAdvice(advice),
		WithError(err),
	)
}

func Conflict(reason string, options ...ErrorMessageOption) *echo.HTTPError {
	return NewErrorMessage(http.StatusConflict, reason, options...)
}

// BadGateway is for errors of the ChRIS backend behind the tree server.
func BadGateway(err error) *echo.HTTPError {
	return NewErrorMessage(
		http.StatusBadGateway,
		"ChRIS backend responded with error",
		WithError(err),
	)
}

func InternalServerError(err error) *echo.HTTPError {
	return NewErrorMessage(
		http.StatusInternalServerError,
		"unexpected error",
		WithError(err),
	)
}

// ChrisError is an error response of the ChRIS backend.
//
// ChRIS responds {"detail": "..."} for most errors,
// and {"field": ["message", ...], ...} for validation errors.
type ChrisError struct {
	Detail string
	Fields map[string][]string
}

func (ce *ChrisError) UnmarshalJSON(b []byte) error {
	raw := map[string]json.RawMessage{}
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	if len(raw) == 0 {
		return fmt.Errorf("empty error response")
	}

	*ce = ChrisError{}
	for k, v := range raw {
		if k == "detail" {
			if err := json.Unmarshal(v, &ce.Detail); err != nil {
				return fmt.Errorf(`"detail" is not a string: %w`, err)
			}
			continue
		}

		var msgs []string
		if err := json.Unmarshal(v, &msgs); err != nil {
			var msg string
			if err := json.Unmarshal(v, &msg); err != nil {
				return fmt.Errorf(`"%s" is not a message: %w`, k, err)
			}
			msgs = []string{msg}
		}
		if ce.Fields == nil {
			ce.Fields = map[string][]string{}
		}
		ce.Fields[k] = msgs
	}
	return nil
}

func (ce ChrisError) Error() string {
	lines := []string{}
	if ce.Detail != "" {
		lines = append(lines, ce.Detail)
	}

	keys := make([]string, 0, len(ce.Fields))
	for k := range ce.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		lines = append(lines, fmt.Sprintf("%s: %s", k, strings.Join(ce.Fields[k], " ")))
	}
	return strings.Join(lines, "\n")
}
