package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/km-arc/go-gems/framework/container"
)

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
//	res.JSON(http.StatusOK, map[string]any{"message": "ok"})
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
//	res.Error(http.StatusNotFound, "Resource not found")
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

// Unprocessable sends 422 with a field → messages error bag:
//
//	{"errors": {"greeting": ["The greeting field is required."]}}
func (res *Response) Unprocessable(errs map[string][]string) {
	res.JSON(http.StatusUnprocessableEntity, envelope{"errors": errs})
}

// Composition reports a failed container resolution: 404 when a component
// is missing, 500 for anything else. The message names the component only.
func (res *Response) Composition(err error) {
	var ce *container.CompositionError
	switch {
	case errors.Is(err, container.ErrNotFound) && errors.As(err, &ce):
		res.NotFound("No component for [" + ce.Key + "].")
	case errors.As(err, &ce):
		res.ServerError("Could not compose [" + ce.Key + "].")
	default:
		res.ServerError()
	}
}

// ── Helpers ───────────────────────────────────────────────────────────────────

type envelope map[string]any

func first(ss []string, fallback string) string {
	if len(ss) > 0 && ss[0] != "" {
		return ss[0]
	}
	return fallback
}
