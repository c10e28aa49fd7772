// Package http provides Vessel's request and response helpers.
//
// # Request
//
// Request wraps *http.Request with a fluent input API:
//
//	req := vhttp.NewRequest(r)
//
//	var payload struct {
//	    Name string `json:"name"`
//	}
//	if err := req.Bind(&payload); err != nil { ... }
//
//	name := req.Input("name", "default")
//	page := req.Query("page", "1")
//	id   := req.RouteParam("id")
//	tok  := req.BearerToken()
//
// # Response
//
// Response wraps http.ResponseWriter for handlers that write directly:
//
//	res := vhttp.NewResponse(w)
//	res.Success(data)             // 200 {"data": ...}
//	res.Error(400, "bad input")   // {"message": "bad input"}
//	res.ValidationError(errs)     // 422 {"errors": {...}}
//
// # Responder
//
// Controller actions dispatched through the application kernel return a
// Responder instead of writing themselves; the kernel sends it:
//
//	func show(req *vhttp.Request) vhttp.Responder {
//	    return vhttp.OK(map[string]any{"id": req.RouteParam("id")})
//	}
//
// # ViewEngine
//
//	engine := vhttp.NewViewEngine("./views", ".html")
//	engine.View(w, "home", map[string]any{"title": "Home"})
package http
