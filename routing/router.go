// Package routing wraps chi with the route helpers the rest of the
// framework builds on.
package routing

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// Router wraps chi.Router with verb helpers, groups, and resource routes.
type Router struct {
	mux chi.Router
}

// New creates a Router with the default middleware stack (request logger,
// panic recoverer, RealIP).
func New() *Router {
	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RealIP)
	return &Router{mux: r}
}

// NewBare creates a Router without default middleware, for tests and
// embedded routers.
func NewBare() *Router {
	return &Router{mux: chi.NewRouter()}
}

// ── HTTP verbs ───────────────────────────────────────────────────────────────

func (r *Router) Get(pattern string, h http.HandlerFunc)     { r.mux.Get(pattern, h) }
func (r *Router) Post(pattern string, h http.HandlerFunc)    { r.mux.Post(pattern, h) }
func (r *Router) Put(pattern string, h http.HandlerFunc)     { r.mux.Put(pattern, h) }
func (r *Router) Patch(pattern string, h http.HandlerFunc)   { r.mux.Patch(pattern, h) }
func (r *Router) Delete(pattern string, h http.HandlerFunc)  { r.mux.Delete(pattern, h) }
func (r *Router) Options(pattern string, h http.HandlerFunc) { r.mux.Options(pattern, h) }

// Method registers a handler for an arbitrary HTTP method.
func (r *Router) Method(method, pattern string, h http.HandlerFunc) {
	r.mux.Method(method, pattern, h)
}

// Any registers a handler for all common HTTP methods.
func (r *Router) Any(pattern string, h http.HandlerFunc) {
	for _, m := range []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS", "HEAD"} {
		r.mux.Method(m, pattern, h)
	}
}

// ── Groups & prefixes ────────────────────────────────────────────────────────

// Group creates an inline group with its own middleware scope.
func (r *Router) Group(fn func(r *Router)) {
	r.mux.Group(func(mx chi.Router) {
		fn(&Router{mux: mx})
	})
}

// Prefix creates a sub-router mounted under a URL prefix.
func (r *Router) Prefix(pattern string, fn func(r *Router)) {
	r.mux.Route(pattern, func(mx chi.Router) {
		fn(&Router{mux: mx})
	})
}

// Middleware appends middleware to the router. Must be called before any
// route registration on the same router (chi constraint).
func (r *Router) Middleware(mw ...func(http.Handler) http.Handler) {
	r.mux.Use(mw...)
}

// ── Resource routes ──────────────────────────────────────────────────────────

// ResourceController is the conventional five-action controller shape.
type ResourceController interface {
	Index(w http.ResponseWriter, r *http.Request)
	Store(w http.ResponseWriter, r *http.Request)
	Show(w http.ResponseWriter, r *http.Request)
	Update(w http.ResponseWriter, r *http.Request)
	Destroy(w http.ResponseWriter, r *http.Request)
}

// Resource registers the standard RESTful routes for a controller:
//
//	GET    /photos       → Index
//	POST   /photos       → Store
//	GET    /photos/{id}  → Show
//	PUT    /photos/{id}  → Update   (PATCH too)
//	DELETE /photos/{id}  → Destroy
func (r *Router) Resource(pattern string, c ResourceController) {
	r.mux.Get(pattern, c.Index)
	r.mux.Post(pattern, c.Store)
	r.mux.Get(pattern+"/{id}", c.Show)
	r.mux.Put(pattern+"/{id}", c.Update)
	r.mux.Patch(pattern+"/{id}", c.Update)
	r.mux.Delete(pattern+"/{id}", c.Destroy)
}

// Static serves a directory under the given URL prefix.
func (r *Router) Static(prefix, dir string) {
	fs := http.StripPrefix(prefix, http.FileServer(http.Dir(dir)))
	r.mux.Get(prefix+"/*", func(w http.ResponseWriter, req *http.Request) {
		fs.ServeHTTP(w, req)
	})
}

// ── Matched route ────────────────────────────────────────────────────────────

// Route describes the currently matched route for a request: the method,
// the registered pattern, and the bound URL parameters.
type Route struct {
	Method  string
	Pattern string
	Params  map[string]string
}

// Current returns the matched route for an in-flight request. Outside a
// routed request the pattern and params are empty.
func Current(r *http.Request) Route {
	route := Route{Method: r.Method}
	rctx := chi.RouteContext(r.Context())
	if rctx == nil {
		return route
	}
	route.Pattern = rctx.RoutePattern()
	if n := len(rctx.URLParams.Keys); n > 0 {
		route.Params = make(map[string]string, n)
		for i, k := range rctx.URLParams.Keys {
			if k == "*" {
				continue
			}
			route.Params[k] = rctx.URLParams.Values[i]
		}
	}
	return route
}

// Param extracts a URL parameter from a routed request.
func Param(r *http.Request, key string) string {
	return chi.URLParam(r, key)
}

// ── Serve ────────────────────────────────────────────────────────────────────

// ServeHTTP implements http.Handler.
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	r.mux.ServeHTTP(w, req)
}

// Handler returns the underlying http.Handler.
func (r *Router) Handler() http.Handler {
	return r.mux
}
