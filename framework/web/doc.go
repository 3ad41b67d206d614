// Package web scopes containers to HTTP traffic.
//
// A Listener owns the application container. For every request it finds or
// creates a session container (a child of the application, identified by a
// cookie) and builds a request container (a child of the session) holding
// the request itself:
//
//	application ← session ← request
//
// The request container is placed in the request context and disposed when
// the handler returns. Session containers are disposed when they expire or
// are invalidated, the application container when the listener is closed.
//
//	l := web.NewLateInstantiatingListener(app.Container,
//	    web.WithLogger(log),
//	    web.WithSessionScope(func(c *container.Container) {
//	        c.Singleton("cart", func(*container.Container) any { return &Cart{} })
//	    }),
//	)
//	router.Middleware(l.Middleware)
//	router.Get("/hello/{name}", web.Inject(func(h *HelloController, w http.ResponseWriter, r *http.Request) {
//	    h.ServeHTTP(w, r)
//	}))
//
// # Late instantiation
//
// A request container built by NewLateInstantiatingListener does not need
// its components registered up front. When a lookup misses everywhere:
//
//   - a concrete struct type outside the standard library is autowired on
//     the spot (see container.AddType);
//   - a string key is read from the request: its attributes first, then the
//     route parameters, then the query string and form body.
//
// Interfaces and standard-library types are never built this way.
package web
