// Package errors builds errors to be shown to users of the command line.
package errors

import (
	"fmt"
	"strings"
)

type Verbose interface {
	Verbose() string
}

// CUIError is an error with a message for humans.
//
// Error() is the message to be shown always.
// Verbose() adds the chain of causes, for debugging.
type CUIError interface {
	error
	Verbose
}

type cuierror struct {
	summary     string
	advice      string
	printDetail func(summary string) (string, error)
	base        error
}

func (ce *cuierror) Unwrap() error {
	return ce.base
}

func (ce *cuierror) Error() string {
	message := ce.summary
	if ce.printDetail != nil {
		m, err := ce.printDetail(ce.summary)
		if err != nil {
			m = fmt.Sprintf(
				"%s\n(building detailed message causes error: %s)",
				ce.summary, err.Error(),
			)
		}
		message = m
	}
	if ce.advice != "" {
		message += "\n\n" + ce.advice
	}
	return message
}

func (ce *cuierror) Verbose() string {
	message := []string{ce.Error()}

	switch base := ce.base.(type) {
	case nil:
	case Verbose:
		message = append(message, "caused by: ", base.Verbose())
	default:
		message = append(message, "caused by: ", base.Error())
	}
	return strings.Join(message, "\n")
}

type CuiErrorOption func(cerr *cuierror) *cuierror

func NewCuiError(summary string, options ...CuiErrorOption) CUIError {
	err := &cuierror{summary: summary}
	for _, o := range options {
		err = o(err)
	}
	return err
}

// WithAdvice appends a hint to the message, telling users what to do next.
func WithAdvice(advice string) CuiErrorOption {
	return func(cerr *cuierror) *cuierror {
		cerr.advice = advice
		return cerr
	}
}

// WithDetail replaces how the message is built from its summary.
func WithDetail(printer func(summary string) (string, error)) CuiErrorOption {
	return func(cerr *cuierror) *cuierror {
		cerr.printDetail = printer
		return cerr
	}
}

func WithCause(err error) CuiErrorOption {
	return func(cerr *cuierror) *cuierror {
		cerr.base = err
		return cerr
	}
}
