package demo

import (
	"net/http"

	gohttp "github.com/km-arc/go-gems/framework/http"
)

// HelloController is never registered: the request scope autowires it.
// Name comes from the {name} route parameter, User from the attribute set by
// Authenticate.
type HelloController struct {
	Greeter Greeter  `inject:"greeter"`
	Visits  *Counter `inject:"visits"`
	Name    string   `inject:"name"`
	User    string   `inject:"user"`
}

func (h *HelloController) ServeHTTP(w http.ResponseWriter, _ *http.Request) {
	gohttp.NewResponse(w).Success(map[string]any{
		"message": h.Greeter.Greet(h.Name),
		"visits":  h.Visits.Inc(),
		"since":   h.Visits.Since,
		"user":    h.User,
	})
}
