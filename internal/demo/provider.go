package demo

import (
	"net/http"
	"time"

	"github.com/km-arc/go-gems/framework/app"
	"github.com/km-arc/go-gems/framework/behaviors"
	"github.com/km-arc/go-gems/framework/config"
	"github.com/km-arc/go-gems/framework/container"
	gohttp "github.com/km-arc/go-gems/framework/http"
	"github.com/km-arc/go-gems/framework/routing"
	"github.com/km-arc/go-gems/framework/web"
)

// NewApplication returns the demo application: hot swapping for components
// registered with container.HotSwap, the Stamp decorator, a session-scoped
// "visits" counter and the demo routes.
func NewApplication(opts ...app.Option) *app.Application {
	base := []app.Option{
		app.WithBehaviors(
			behaviors.HotSwapping(behaviors.OptIn(), behaviors.WithProxy("greeter", NewGreeterProxy)),
			behaviors.Decorating(Stamp(time.Now)),
		),
		app.WithWebOptions(web.WithSessionScope(SessionScope)),
	}
	a := app.New(append(base, opts...)...)
	a.Register(&ServiceProvider{})
	return a
}

// SessionScope registers the components every session gets its own of.
func SessionScope(c *container.Container) {
	c.Singleton("visits", func(*container.Container) any { return &Counter{} })
}

// ServiceProvider registers the greeter and the demo routes.
//
// Bound abstracts:
//   - "greeter"  → Greeter (a GreeterProxy, hot-swappable)
type ServiceProvider struct {
	container.BaseProvider
}

func (p *ServiceProvider) Register(app *container.Container) {
	app.Singleton("greeter", func(*container.Container) any {
		return Greeting{Text: config.Get("GREETING", "Hello")}
	}, container.HotSwap)
}

func (p *ServiceProvider) Boot(app *container.Container) {
	router := container.Resolve[*routing.Router](app, "router")

	router.Get("/greet", func(w http.ResponseWriter, r *http.Request) {
		name := gohttp.NewRequest(r).Query("name", "world")
		greeter := container.Resolve[Greeter](app, "greeter")
		gohttp.NewResponse(w).Success(map[string]any{"message": greeter.Greet(name)})
	})

	router.Post("/greet/swap", func(w http.ResponseWriter, r *http.Request) {
		res := gohttp.NewResponse(w)
		req := gohttp.NewRequest(r)

		var in swapInput
		if err := req.Bind(&in); err != nil {
			res.Error(http.StatusBadRequest, "The request body is malformed.")
			return
		}
		text := req.Input("greeting", in.Greeting)
		if text == "" {
			res.Unprocessable(map[string][]string{"greeting": {"The greeting field is required."}})
			return
		}
		hs, ok := behaviors.HotSwappableFor(app, "greeter")
		if !ok {
			res.ServerError("The greeter is not hot-swappable.")
			return
		}
		previous, _ := hs.SwapRealInstance(Greeting{Text: text}).(Greeting)
		res.Success(map[string]any{"previous": previous.Text, "current": text})
	})

	router.Group(func(g *routing.Router) {
		g.Middleware(Authenticate)
		g.Get("/hello/{name}", web.Inject(func(h *HelloController, w http.ResponseWriter, r *http.Request) {
			h.ServeHTTP(w, r)
		}))
	})
}

// swapInput is the body of POST /greet/swap. The greeting may also come as a
// query parameter.
type swapInput struct {
	Greeting string `json:"greeting"`
}
