package demo

import (
	"net/http"

	gohttp "github.com/km-arc/go-gems/framework/http"
)

// Guest is the "user" attribute of requests without a bearer token.
const Guest = "guest"

// Authenticate stores the caller's bearer token, or Guest, as the "user"
// request attribute, where the request scope finds it for `inject:"user"`
// fields. It must run inside the web listener, which installs the attribute
// store.
func Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user := gohttp.NewRequest(r).BearerToken()
		if user == "" {
			user = Guest
		}
		gohttp.SetAttribute(r, "user", user)
		next.ServeHTTP(w, r)
	})
}
