package http

import (
	"encoding/json"
	"net/http"

	"github.com/vessel-go/framework/http/validation"
)

// Responder is a response-capable result: a controller action returns one
// and the dispatch layer sends it to the client. Send performs the write to
// the output boundary.
type Responder interface {
	Send(w http.ResponseWriter) error
}

// JSON returns a Responder writing a JSON body with the given status.
func JSON(status int, data any) Responder {
	return jsonResult{status: status, data: data}
}

// OK returns 200 {"data": v}.
func OK(v any) Responder {
	return jsonResult{status: http.StatusOK, data: envelope{"data": v}}
}

// CreatedResult returns 201 {"data": v}.
func CreatedResult(v any) Responder {
	return jsonResult{status: http.StatusCreated, data: envelope{"data": v}}
}

// ErrorResult returns a JSON error body {"message": message}.
func ErrorResult(status int, message string) Responder {
	return jsonResult{status: status, data: envelope{"message": message}}
}

// Invalid returns 422 with the validation error bag.
func Invalid(errs *validation.Errors) Responder {
	return jsonResult{status: http.StatusUnprocessableEntity, data: errs}
}

// Text returns a plain-text Responder.
func Text(status int, body string) Responder {
	return textResult{status: status, body: body}
}

// Empty returns a body-less Responder with the given status.
func Empty(status int) Responder {
	return emptyResult{status: status}
}

// Redirect returns a Location redirect Responder.
func Redirect(status int, url string) Responder {
	return redirectResult{status: status, url: url}
}

// View returns a Responder rendering a template through engine.
func View(engine *ViewEngine, name string, data any) Responder {
	return viewResult{engine: engine, name: name, data: data}
}

// ── Implementations ──────────────────────────────────────────────────────────

type jsonResult struct {
	status int
	data   any
}

func (r jsonResult) Send(w http.ResponseWriter) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(r.status)
	return json.NewEncoder(w).Encode(r.data)
}

type textResult struct {
	status int
	body   string
}

func (r textResult) Send(w http.ResponseWriter) error {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(r.status)
	_, err := w.Write([]byte(r.body))
	return err
}

type emptyResult struct {
	status int
}

func (r emptyResult) Send(w http.ResponseWriter) error {
	w.WriteHeader(r.status)
	return nil
}

type redirectResult struct {
	status int
	url    string
}

func (r redirectResult) Send(w http.ResponseWriter) error {
	w.Header().Set("Location", r.url)
	w.WriteHeader(r.status)
	return nil
}

type viewResult struct {
	engine *ViewEngine
	name   string
	data   any
}

func (r viewResult) Send(w http.ResponseWriter) error {
	return r.engine.Render(w, r.name, r.data)
}
