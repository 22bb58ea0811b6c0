package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/km-arc/go-capability/framework/capability"
	"github.com/km-arc/go-capability/framework/container"
	"github.com/km-arc/go-capability/framework/validation"
)

// ── Response ─────────────────────────────────────────────────────────────────

// Response wraps http.ResponseWriter with JSON helpers.
type Response struct {
	w http.ResponseWriter
}

// NewResponse wraps a ResponseWriter.
func NewResponse(w http.ResponseWriter) *Response {
	return &Response{w: w}
}

// ── JSON responses ────────────────────────────────────────────────────────────

// JSON sends a JSON response.
//
//	res.JSON(http.StatusOK, map[string]any{"status": "ok"})
func (res *Response) JSON(status int, data any) {
	res.w.Header().Set("Content-Type", "application/json")
	res.w.WriteHeader(status)
	_ = json.NewEncoder(res.w).Encode(data)
}

// Success sends 200 JSON: {"data": v}
func (res *Response) Success(v any) {
	res.JSON(http.StatusOK, envelope{"data": v})
}

// Created sends 201 JSON: {"data": v}
func (res *Response) Created(v any) {
	res.JSON(http.StatusCreated, envelope{"data": v})
}

// NoContent sends 204 with no body.
func (res *Response) NoContent() {
	res.w.WriteHeader(http.StatusNoContent)
}

// Error sends a JSON error response.
//
//	res.Error(http.StatusNotFound, "instance not found")
func (res *Response) Error(status int, message string) {
	res.JSON(status, envelope{"message": message})
}

// NotFound sends 404.
func (res *Response) NotFound(message ...string) {
	res.Error(http.StatusNotFound, first(message, "Not found."))
}

// ServerError sends 500.
func (res *Response) ServerError(message ...string) {
	res.Error(http.StatusInternalServerError, first(message, "Server Error."))
}

// ValidationError sends 422 with the error bag.
func (res *Response) ValidationError(errors *validation.Errors) {
	res.JSON(http.StatusUnprocessableEntity, errors)
}

// Fail maps err onto a status code and sends it:
//
//	*validation.Errors                  → 422 with the bag
//	ErrEmptyBody, JSON syntax errors    → 400
//	*capability.UnknownPoolMemberError  → 400
//	*container.NotBoundError            → 404
//	ErrBodyTooLarge                     → 413
//	anything else                       → 500
func (res *Response) Fail(err error) {
	var (
		bag     *validation.Errors
		unknown *capability.UnknownPoolMemberError
		unbound *container.NotBoundError
		syntax  *json.SyntaxError
	)
	switch {
	case errors.As(err, &bag):
		res.ValidationError(bag)
	case errors.Is(err, ErrEmptyBody), errors.As(err, &syntax):
		res.Error(http.StatusBadRequest, err.Error())
	case errors.As(err, &unknown):
		res.Error(http.StatusBadRequest, err.Error())
	case errors.Is(err, ErrBodyTooLarge):
		res.Error(http.StatusRequestEntityTooLarge, err.Error())
	case errors.As(err, &unbound):
		res.NotFound(err.Error())
	default:
		res.ServerError(err.Error())
	}
}

// ── Helpers ──────────────────────────────────────────────────────────────────

type envelope map[string]any

func first(ss []string, fallback string) string {
	if len(ss) > 0 && ss[0] != "" {
		return ss[0]
	}
	return fallback
}
