// Package http provides request and response helpers for handlers running
// behind a request-scoped container.
//
// # Request
//
// Request wraps *http.Request with a fluent API mirroring Laravel's
// Illuminate\Http\Request.
//
//	req := gohttp.NewRequest(r)
//
//	// Bind a JSON or form body into a struct (json tags for both)
//	var payload struct {
//	    Name string `json:"name"`
//	}
//	if err := req.Bind(&payload); err != nil { ... }
//
//	// Input retrieval (query string + POST body)
//	name  := req.Input("name", "default")
//	page  := req.Query("page", "1")
//
//	// Route params (requires Chi router), then query/form
//	id, ok := req.Param("id")
//
//	// Headers and auth
//	token := req.BearerToken()
//	val   := req.Header("X-Custom")
//
// # Attributes
//
// Attributes are per-request values set by middleware and read downstream.
//
//	r = gohttp.WithAttributes(r)          // or router.Middleware(gohttp.Attributes)
//	gohttp.SetAttribute(r, "tenant", "acme")
//	v, ok := gohttp.Attribute(r, "tenant")
//
// StringFromRequest resolves a string key against a request: attribute first,
// then route parameter, then query/form parameter.
//
//	v := gohttp.StringFromRequest("tenant").Provide(r)  // nil when absent
//
// # Response
//
//	res := gohttp.NewResponse(w)
//
//	res.JSON(200, data)           // raw JSON with status
//	res.Success(data)             // 200 {"data": ...}
//	res.Created(data)             // 201 {"data": ...}
//	res.NoContent()               // 204
//
//	res.Error(400, "bad input")   // {"message": "bad input"}
//	res.NotFound()                // 404 {"message": "Not found."}
//	res.ServerError()             // 500 {"message": "Server Error."}
//	res.Unprocessable(errs)       // 422 {"errors": {"field": ["msg"]}}
//	res.Composition(err)          // 404 / 500 for container errors
package http
