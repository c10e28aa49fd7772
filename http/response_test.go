package http_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	vhttp "github.com/vessel-go/framework/http"
	"github.com/vessel-go/framework/http/validation"
)

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body %q: %v", w.Body.String(), err)
	}
	return body
}

func TestResponse_Success(t *testing.T) {
	w := httptest.NewRecorder()
	vhttp.NewResponse(w).Success(map[string]any{"id": 1})

	if w.Code != http.StatusOK {
		t.Errorf("status: got %d", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("content type: got %q", ct)
	}
	body := decode(t, w)
	if _, ok := body["data"]; !ok {
		t.Errorf("body should be wrapped in data: %v", body)
	}
}

func TestResponse_Created(t *testing.T) {
	w := httptest.NewRecorder()
	vhttp.NewResponse(w).Created("new")

	if w.Code != http.StatusCreated {
		t.Errorf("status: got %d", w.Code)
	}
}

func TestResponse_NoContent(t *testing.T) {
	w := httptest.NewRecorder()
	vhttp.NewResponse(w).NoContent()

	if w.Code != http.StatusNoContent {
		t.Errorf("status: got %d", w.Code)
	}
	if w.Body.Len() != 0 {
		t.Errorf("body should be empty, got %q", w.Body.String())
	}
}

func TestResponse_ErrorHelpers(t *testing.T) {
	cases := []struct {
		name    string
		send    func(res *vhttp.Response)
		status  int
		message string
	}{
		{"unauthorized default", func(r *vhttp.Response) { r.Unauthorized() }, 401, "Unauthenticated."},
		{"forbidden default", func(r *vhttp.Response) { r.Forbidden() }, 403, "This action is unauthorized."},
		{"not found default", func(r *vhttp.Response) { r.NotFound() }, 404, "Not found."},
		{"server error default", func(r *vhttp.Response) { r.ServerError() }, 500, "Server Error."},
		{"custom message", func(r *vhttp.Response) { r.Error(418, "teapot") }, 418, "teapot"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			tc.send(vhttp.NewResponse(w))

			if w.Code != tc.status {
				t.Errorf("status: got %d, want %d", w.Code, tc.status)
			}
			if got := decode(t, w)["message"]; got != tc.message {
				t.Errorf("message: got %q, want %q", got, tc.message)
			}
		})
	}
}

func TestResponse_ValidationError(t *testing.T) {
	v := validation.Make(map[string]string{}, validation.Rules{"email": "required"})
	if !v.Fails() {
		t.Fatal("expected validation failure")
	}

	w := httptest.NewRecorder()
	vhttp.NewResponse(w).ValidationError(v.Errors())

	if w.Code != http.StatusUnprocessableEntity {
		t.Errorf("status: got %d, want 422", w.Code)
	}
	body := decode(t, w)
	errs, ok := body["errors"].(map[string]any)
	if !ok {
		t.Fatalf("body should carry errors map: %v", body)
	}
	if _, ok := errs["email"]; !ok {
		t.Errorf("errors should name the failing field: %v", errs)
	}
}

func TestResponse_RedirectBack(t *testing.T) {
	r := httptest.NewRequest("GET", "/form", nil)
	r.Header.Set("Referer", "/previous")

	w := httptest.NewRecorder()
	vhttp.NewResponse(w).RedirectBack(r, "/home")

	if loc := w.Header().Get("Location"); loc != "/previous" {
		t.Errorf("Location: got %q", loc)
	}

	w = httptest.NewRecorder()
	vhttp.NewResponse(w).RedirectBack(httptest.NewRequest("GET", "/form", nil), "/home")
	if loc := w.Header().Get("Location"); loc != "/home" {
		t.Errorf("fallback Location: got %q", loc)
	}
}

func TestResponder_JSONAndText(t *testing.T) {
	w := httptest.NewRecorder()
	if err := vhttp.OK(map[string]any{"ok": true}).Send(w); err != nil {
		t.Fatalf("Send: %v", err)
	}
	if w.Code != http.StatusOK {
		t.Errorf("status: got %d", w.Code)
	}

	w = httptest.NewRecorder()
	if err := vhttp.Text(http.StatusAccepted, "queued").Send(w); err != nil {
		t.Fatalf("Send: %v", err)
	}
	if w.Code != http.StatusAccepted || w.Body.String() != "queued" {
		t.Errorf("text result: got %d %q", w.Code, w.Body.String())
	}
}

func TestResponder_ErrorAndEmpty(t *testing.T) {
	w := httptest.NewRecorder()
	vhttp.ErrorResult(http.StatusConflict, "taken").Send(w)
	if w.Code != http.StatusConflict || decode(t, w)["message"] != "taken" {
		t.Errorf("error result: got %d %v", w.Code, w.Body.String())
	}

	w = httptest.NewRecorder()
	vhttp.Empty(http.StatusNoContent).Send(w)
	if w.Code != http.StatusNoContent || w.Body.Len() != 0 {
		t.Errorf("empty result: got %d %q", w.Code, w.Body.String())
	}
}

func TestResponder_Redirect(t *testing.T) {
	w := httptest.NewRecorder()
	vhttp.Redirect(http.StatusFound, "/login").Send(w)

	if w.Code != http.StatusFound || w.Header().Get("Location") != "/login" {
		t.Errorf("redirect: got %d %q", w.Code, w.Header().Get("Location"))
	}
}
