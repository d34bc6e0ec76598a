// Package http sends requests to http.Handler in tests.
package http

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
)

type RequestOption func(req *http.Request) *http.Request

func WithContext(ctx context.Context) RequestOption {
	return func(req *http.Request) *http.Request {
		return req.WithContext(ctx)
	}
}

func WithHeader(key string, value string, values ...string) RequestOption {
	return func(req *http.Request) *http.Request {
		req.Header.Add(key, value)
		for _, v := range values {
			req.Header.Add(key, v)
		}
		return req
	}
}

// = WithHeader("Content-Type", ctyp)
func ContentType(ctyp string) RequestOption {
	return WithHeader("Content-Type", ctyp)
}

// Do sends a request to h, and returns the recorded response.
func Do(h http.Handler, method string, target string, body io.Reader, reqopts ...RequestOption) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, body)
	for _, opt := range reqopts {
		req = opt(req)
	}
	resp := httptest.NewRecorder()
	h.ServeHTTP(resp, req)
	return resp
}

func Get(h http.Handler, target string, reqopts ...RequestOption) *httptest.ResponseRecorder {
	return Do(h, http.MethodGet, target, nil, reqopts...)
}

// PostJSON sends body as "application/json".
func PostJSON(h http.Handler, target string, body string, reqopts ...RequestOption) *httptest.ResponseRecorder {
	return Do(
		h, http.MethodPost, target, strings.NewReader(body),
		append([]RequestOption{ContentType("application/json")}, reqopts...)...,
	)
}

func Delete(h http.Handler, target string, reqopts ...RequestOption) *httptest.ResponseRecorder {
	return Do(h, http.MethodDelete, target, nil, reqopts...)
}
