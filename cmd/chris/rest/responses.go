package rest

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	cerr "github.com/fnndsc/chrisctl/cmd/chris/errors"
	apierr "github.com/fnndsc/chrisctl/pkg/api/types/errors"
)

// ErrUnauthorized is wrapped by errors of requests rejected for authentication.
var ErrUnauthorized = errors.New("unauthorized")

// ErrNotFound is wrapped by errors of requests for missing resources.
var ErrNotFound = errors.New("not found")

type MessageFor map[StatusCodeRange]string

// unmarshal http response which has json content.
//
// args:
//   - resp: http response to be processed.
//   - v: value which response should be.
//   - messageFor: title of error message for HTTP status code range.
//
// return:
//
//	error if...
//	- can not read response body
//	- response body is not shaped of v
//	- status code is in 4xx or 5xx
func unmarshalJsonResponse[T any](resp *http.Response, v *T, messageFor MessageFor) error {
	if StatusCodeRangeOf(resp) <= Status2xx {
		if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
			message := fmt.Sprintf("unexpected error: %s (status code = %d)", err.Error(), resp.StatusCode)
			return cerr.NewCuiError(message, cerr.WithCause(err))
		}
		return nil
	}
	return errorResponse(resp, messageFor)
}

// read http response, and discard its payload.
func unmarshalResponseDiscardingPayload(resp *http.Response, messageFor MessageFor) error {
	if StatusCodeRangeOf(resp) <= Status2xx {
		io.Copy(io.Discard, resp.Body)
		return nil
	}
	return errorResponse(resp, messageFor)
}

func errorResponse(resp *http.Response, messageFor MessageFor) error {
	scr := StatusCodeRangeOf(resp)
	message, ok := messageFor[scr]
	if !ok {
		message = scr.String()
	}

	opts := []cerr.CuiErrorOption{}
	switch resp.StatusCode {
	case http.StatusUnauthorized:
		opts = append(
			opts,
			cerr.WithCause(ErrUnauthorized),
			cerr.WithAdvice("Your token may be expired. Try `chris init` again."),
		)
	case http.StatusNotFound:
		opts = append(opts, cerr.WithCause(ErrNotFound))
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return cerr.NewCuiError(
			fmt.Sprintf("%s\ncannot read server message: %s", message, err.Error()),
			append(opts, cerr.WithCause(err))...,
		)
	}

	detail := parseErrorMessage(body)
	return cerr.NewCuiError(
		message,
		append(opts, cerr.WithDetail(func(summary string) (string, error) {
			if detail == "" {
				return summary, nil
			}
			return summary + "\n" + detail, nil
		}))...,
	)
}

func jsonUnmarshal[T any](buf []byte) (*T, error) {
	ret := new(T)
	if err := json.Unmarshal(buf, ret); err != nil {
		return nil, err
	}
	return ret, nil
}

func parseErrorMessage(body []byte) string {
	if ce, err := jsonUnmarshal[apierr.ChrisError](body); err == nil {
		return ce.Error()
	}
	if em, err := jsonUnmarshal[apierr.ErrorMessage](body); err == nil {
		return em.Error()
	}
	return string(body)
}
