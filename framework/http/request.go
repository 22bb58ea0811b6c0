package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
)

// MaxBodyBytes caps request bodies read through Request.
const MaxBodyBytes = 8 << 20 // 8 MB

var (
	// ErrEmptyBody is returned by Bind when there is no body to decode.
	ErrEmptyBody = errors.New("empty request body")
	// ErrBodyTooLarge is returned once a body exceeds MaxBodyBytes.
	ErrBodyTooLarge = fmt.Errorf("request body exceeds %d bytes", MaxBodyBytes)
)

// Request wraps *http.Request with the input helpers storage handlers use.
type Request struct {
	raw *http.Request
}

// NewRequest wraps a standard *http.Request.
func NewRequest(r *http.Request) *Request {
	return &Request{raw: r}
}

// Body reads the whole body, up to MaxBodyBytes.
func (req *Request) Body() ([]byte, error) {
	if req.raw.Body == nil {
		return nil, nil
	}
	defer req.raw.Body.Close()
	body, err := io.ReadAll(io.LimitReader(req.raw.Body, MaxBodyBytes+1))
	if err != nil {
		return nil, err
	}
	if len(body) > MaxBodyBytes {
		return nil, ErrBodyTooLarge
	}
	return body, nil
}

// Bind decodes a JSON body into v.
func (req *Request) Bind(v any) error {
	body, err := req.Body()
	if err != nil {
		return err
	}
	if len(body) == 0 {
		return ErrEmptyBody
	}
	if err := json.Unmarshal(body, v); err != nil {
		return fmt.Errorf("decoding body: %w", err)
	}
	return nil
}

// Query returns a query-string value, or the first fallback when empty.
func (req *Request) Query(key string, fallback ...string) string {
	v := req.raw.URL.Query().Get(key)
	if v == "" && len(fallback) > 0 {
		return fallback[0]
	}
	return v
}

// QueryAll flattens the query string to its first value per key, the shape
// validation.Make takes.
func (req *Request) QueryAll() map[string]string {
	out := make(map[string]string)
	for k, v := range req.raw.URL.Query() {
		if len(v) > 0 {
			out[k] = v[0]
		}
	}
	return out
}

// RouteParam returns a chi URL parameter.
func (req *Request) RouteParam(key string) string {
	return chi.URLParam(req.raw, key)
}

// Context returns the request's context.
func (req *Request) Context() context.Context { return req.raw.Context() }

// ContentType returns the Content-Type header value.
func (req *Request) ContentType() string {
	return req.raw.Header.Get("Content-Type")
}
