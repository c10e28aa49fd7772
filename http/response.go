package http

import (
	"encoding/json"
	"net/http"

	"github.com/vessel-go/framework/http/validation"
)

// Response wraps http.ResponseWriter with conventional JSON, error, and
// redirect helpers.
type Response struct {
	w http.ResponseWriter
}

// NewResponse wraps a ResponseWriter.
func NewResponse(w http.ResponseWriter) *Response {
	return &Response{w: w}
}

// Raw returns the underlying ResponseWriter.
func (res *Response) Raw() http.ResponseWriter { return res.w }

// ── JSON ─────────────────────────────────────────────────────────────────────

// JSON sends a JSON body with the given status.
func (res *Response) JSON(status int, data any) {
	res.w.Header().Set("Content-Type", "application/json")
	res.w.WriteHeader(status)
	_ = json.NewEncoder(res.w).Encode(data)
}

// Success sends 200 {"data": v}.
func (res *Response) Success(v any) {
	res.JSON(http.StatusOK, envelope{"data": v})
}

// Created sends 201 {"data": v}.
func (res *Response) Created(v any) {
	res.JSON(http.StatusCreated, envelope{"data": v})
}

// NoContent sends 204 with no body.
func (res *Response) NoContent() {
	res.w.WriteHeader(http.StatusNoContent)
}

// ── Errors ───────────────────────────────────────────────────────────────────

// Error sends a JSON error body: {"message": message}.
func (res *Response) Error(status int, message string) {
	res.JSON(status, envelope{"message": message})
}

// Unauthorized sends 401.
func (res *Response) Unauthorized(message ...string) {
	res.JSON(http.StatusUnauthorized, envelope{"message": first(message, "Unauthenticated.")})
}

// Forbidden sends 403.
func (res *Response) Forbidden(message ...string) {
	res.JSON(http.StatusForbidden, envelope{"message": first(message, "This action is unauthorized.")})
}

// NotFound sends 404.
func (res *Response) NotFound(message ...string) {
	res.JSON(http.StatusNotFound, envelope{"message": first(message, "Not found.")})
}

// ServerError sends 500.
func (res *Response) ServerError(message ...string) {
	res.JSON(http.StatusInternalServerError, envelope{"message": first(message, "Server Error.")})
}

// ValidationError sends 422 with the standard error bag:
// {"errors": {"field": ["msg"]}}.
func (res *Response) ValidationError(errors *validation.Errors) {
	res.JSON(http.StatusUnprocessableEntity, errors)
}

// ── Redirects ────────────────────────────────────────────────────────────────

// RedirectTo sends a 302 to url.
func (res *Response) RedirectTo(url string) {
	res.w.Header().Set("Location", url)
	res.w.WriteHeader(http.StatusFound)
}

// RedirectBack redirects to the Referer, or fallback when absent.
func (res *Response) RedirectBack(r *http.Request, fallback string) {
	ref := r.Referer()
	if ref == "" {
		ref = fallback
	}
	res.w.Header().Set("Location", ref)
	res.w.WriteHeader(http.StatusFound)
}

// ── Helpers ──────────────────────────────────────────────────────────────────

type envelope map[string]any

func first(ss []string, fallback string) string {
	if len(ss) > 0 && ss[0] != "" {
		return ss[0]
	}
	return fallback
}
