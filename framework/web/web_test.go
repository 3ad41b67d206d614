package web_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"reflect"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/km-arc/go-gems/framework/container"
	gohttp "github.com/km-arc/go-gems/framework/http"
	"github.com/km-arc/go-gems/framework/web"
)

// ── fixtures ──────────────────────────────────────────────────────────────────

type resource struct{ disposed int }

func (r *resource) Dispose() error {
	r.disposed++
	return nil
}

type Greeting struct {
	Name string `inject:"name"`
}

type HelloController struct {
	Greeting *Greeting     `inject:""`
	Request  *http.Request `inject:""`
}

func (h *HelloController) ServeHTTP(w http.ResponseWriter, _ *http.Request) {
	gohttp.NewResponse(w).Success(map[string]any{"message": "Hello, " + h.Greeting.Name})
}

type Greeter interface{ Greet() string }

// serve runs one request through l wrapped around h and returns the recorder.
func serve(l *web.Listener, h http.HandlerFunc, req *http.Request) *httptest.ResponseRecorder {
	rr := httptest.NewRecorder()
	l.Middleware(h).ServeHTTP(rr, req)
	return rr
}

func sessionCookie(t *testing.T, l *web.Listener, rr *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()
	for _, ck := range rr.Result().Cookies() {
		if ck.Name == l.CookieName() {
			return ck
		}
	}
	t.Fatalf("no %s cookie set", l.CookieName())
	return nil
}

// ── Request scope ─────────────────────────────────────────────────────────────

func TestMiddleware_RequestContainerHoldsRequest(t *testing.T) {
	l := web.New(container.New())
	var rc *container.Container
	var seen *http.Request

	serve(l, func(w http.ResponseWriter, r *http.Request) {
		rc = web.RequestContainer(r)
		require.NotNil(t, rc)
		seen = container.Resolve[*http.Request](rc, web.RequestKey)
		assert.Same(t, r, seen)
		assert.NotNil(t, container.Resolve[http.ResponseWriter](rc, web.ResponseWriterKey))
		assert.Same(t, r, container.Resolve[*gohttp.Request](rc, web.GoHTTPRequestKey).Raw())
	}, httptest.NewRequest(http.MethodGet, "/", nil))

	require.NotNil(t, seen)
	assert.Same(t, l.Container(), rc.Parent().Parent().Make("container"))
}

func TestMiddleware_DisposesRequestContainer(t *testing.T) {
	res := &resource{}
	l := web.New(container.New(), web.WithRequestScope(func(c *container.Container) {
		c.Singleton("resource", func(*container.Container) any { return res })
	}))

	serve(l, func(w http.ResponseWriter, r *http.Request) {
		_ = web.RequestContainer(r).Make("resource")
		assert.Zero(t, res.disposed)
	}, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, 1, res.disposed)
}

func TestMiddleware_RequestsDoNotShareScope(t *testing.T) {
	l := web.New(container.New(), web.WithRequestScope(func(c *container.Container) {
		c.Singleton("resource", func(*container.Container) any { return &resource{} })
	}))

	var got []any
	h := func(w http.ResponseWriter, r *http.Request) {
		got = append(got, web.RequestContainer(r).Make("resource"))
	}
	serve(l, h, httptest.NewRequest(http.MethodGet, "/", nil))
	serve(l, h, httptest.NewRequest(http.MethodGet, "/", nil))

	require.Len(t, got, 2)
	assert.NotSame(t, got[0], got[1])
}

func TestFromContext_Empty(t *testing.T) {
	_, ok := web.FromContext(context.Background())
	assert.False(t, ok)
	assert.Nil(t, web.RequestContainer(httptest.NewRequest(http.MethodGet, "/", nil)))
}

// ── Sessions ──────────────────────────────────────────────────────────────────

func newSessionListener(opts ...web.Option) *web.Listener {
	opts = append([]web.Option{web.WithSessionScope(func(c *container.Container) {
		c.Singleton("cart", func(*container.Container) any { return &resource{} })
	})}, opts...)
	return web.New(container.New(), opts...)
}

func TestSession_SurvivesAcrossRequestsWithCookie(t *testing.T) {
	l := newSessionListener(web.WithCookieName("sid"))
	var carts []any
	h := func(w http.ResponseWriter, r *http.Request) {
		carts = append(carts, web.RequestContainer(r).Make("cart"))
	}

	rr := serve(l, h, httptest.NewRequest(http.MethodGet, "/", nil))
	ck := sessionCookie(t, l, rr)
	assert.Equal(t, "sid", ck.Name)
	assert.True(t, ck.HttpOnly)

	again := httptest.NewRequest(http.MethodGet, "/", nil)
	again.AddCookie(ck)
	rr = serve(l, h, again)
	assert.Empty(t, rr.Result().Cookies(), "known session should not be re-issued")

	serve(l, h, httptest.NewRequest(http.MethodGet, "/", nil))

	require.Len(t, carts, 3)
	assert.Same(t, carts[0], carts[1])
	assert.NotSame(t, carts[0], carts[2])
	assert.Equal(t, 2, l.Sessions())

	sc, ok := l.SessionContainer(ck.Value)
	require.True(t, ok)
	assert.Equal(t, ck.Value, sc.Make(web.SessionIDKey))
}

func TestSession_UnknownCookieStartsNewSession(t *testing.T) {
	l := newSessionListener()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: l.CookieName(), Value: "forged"})

	rr := serve(l, func(http.ResponseWriter, *http.Request) {}, req)
	assert.NotEqual(t, "forged", sessionCookie(t, l, rr).Value)
}

func TestSession_SweepDisposesExpired(t *testing.T) {
	l := newSessionListener(web.WithSessionTTL(time.Minute))
	var cart *resource
	rr := serve(l, func(w http.ResponseWriter, r *http.Request) {
		cart = container.Resolve[*resource](web.RequestContainer(r), "cart")
	}, httptest.NewRequest(http.MethodGet, "/", nil))
	ck := sessionCookie(t, l, rr)

	assert.Zero(t, l.Sweep(time.Now()))
	assert.Equal(t, 1, l.Sweep(time.Now().Add(2*time.Minute)))
	assert.Equal(t, 1, cart.disposed)
	assert.Zero(t, l.Sessions())

	_, ok := l.SessionContainer(ck.Value)
	assert.False(t, ok)
}

func TestSession_Invalidate(t *testing.T) {
	l := newSessionListener()
	var cart *resource
	rr := serve(l, func(w http.ResponseWriter, r *http.Request) {
		cart = container.Resolve[*resource](web.RequestContainer(r), "cart")
	}, httptest.NewRequest(http.MethodGet, "/", nil))

	id := sessionCookie(t, l, rr).Value
	assert.True(t, l.Invalidate(id))
	assert.False(t, l.Invalidate(id))
	assert.Equal(t, 1, cart.disposed)
}

func TestListener_RunStopsWithContext(t *testing.T) {
	l := newSessionListener(web.WithSessionTTL(20 * time.Millisecond))
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	assert.ErrorIs(t, l.Run(ctx), context.DeadlineExceeded)
}

func TestListener_CloseDisposesEverything(t *testing.T) {
	app := container.New()
	service := &resource{}
	app.Singleton("service", func(*container.Container) any { return service })
	l := web.New(app, web.WithSessionScope(func(c *container.Container) {
		c.Singleton("cart", func(*container.Container) any { return &resource{} })
	}))

	var cart *resource
	serve(l, func(w http.ResponseWriter, r *http.Request) {
		rc := web.RequestContainer(r)
		cart = container.Resolve[*resource](rc, "cart")
		_ = rc.Make("service")
	}, httptest.NewRequest(http.MethodGet, "/", nil))

	require.NoError(t, l.Close())
	require.NoError(t, l.Close())
	assert.Equal(t, 1, cart.disposed)
	assert.Equal(t, 1, service.disposed)

	rr := serve(l, func(http.ResponseWriter, *http.Request) { t.Error("handler called after Close") },
		httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rr.Code)
}

// ── Late instantiation ────────────────────────────────────────────────────────

func TestLateInstantiation_BuildsConcreteTypes(t *testing.T) {
	l := web.NewLateInstantiatingListener(container.New())
	req := httptest.NewRequest(http.MethodGet, "/?name=Ann", nil)

	serve(l, func(w http.ResponseWriter, r *http.Request) {
		h, err := container.ResolveType[*HelloController](web.RequestContainer(r))
		require.NoError(t, err)
		assert.Equal(t, "Ann", h.Greeting.Name)
		assert.Same(t, r, h.Request)
	}, req)
}

func TestLateInstantiation_StringFromAttribute(t *testing.T) {
	l := web.NewLateInstantiatingListener(container.New())
	auth := func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gohttp.SetAttribute(r, "user", "bo")
			next.ServeHTTP(w, r)
		})
	}

	rr := httptest.NewRecorder()
	l.Middleware(auth(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "bo", web.RequestContainer(r).Make("user"))
	}))).ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))
}

func TestLateInstantiation_Declines(t *testing.T) {
	l := web.NewLateInstantiatingListener(container.New())

	serve(l, func(w http.ResponseWriter, r *http.Request) {
		rc := web.RequestContainer(r)

		_, err := rc.Get("absent")
		assert.ErrorIs(t, err, container.ErrNotFound, "string missing from the request")

		_, err = rc.MakeType(reflect.TypeOf((*Greeter)(nil)).Elem())
		assert.ErrorIs(t, err, container.ErrNotFound, "interface")

		_, err = rc.MakeType(reflect.TypeOf(time.Time{}))
		assert.ErrorIs(t, err, container.ErrNotFound, "standard library type")
	}, httptest.NewRequest(http.MethodGet, "/", nil))
}

func TestLateInstantiation_OnlyInRequestScope(t *testing.T) {
	app := container.New()
	l := web.NewLateInstantiatingListener(app)
	serve(l, func(http.ResponseWriter, *http.Request) {}, httptest.NewRequest(http.MethodGet, "/", nil))

	_, err := container.ResolveType[*Greeting](app)
	assert.ErrorIs(t, err, container.ErrNotFound)
}

func TestLateInstantiatingMonitor_WithoutRequest(t *testing.T) {
	c := container.New(container.WithMonitor(web.LateInstantiatingMonitor{}))

	_, err := c.Get("name")
	assert.ErrorIs(t, err, container.ErrNotFound)

	// Greeting needs "name", which only a request can supply.
	_, err = container.ResolveType[*Greeting](c)
	assert.ErrorIs(t, err, container.ErrNotFound)
}

type Loop struct {
	Next *Loop `inject:""`
}

type Counted struct {
	N int `inject:"count"`
}

func TestLateInstantiation_BuildFailuresPropagate(t *testing.T) {
	l := web.NewLateInstantiatingListener(container.New())
	req := httptest.NewRequest(http.MethodGet, "/?count=three", nil)

	serve(l, func(w http.ResponseWriter, r *http.Request) {
		rc := web.RequestContainer(r)

		_, err := container.ResolveType[*Loop](rc)
		require.ErrorIs(t, err, container.ErrCircular)
		assert.NotErrorIs(t, err, container.ErrNotFound)

		_, err = container.ResolveType[*Counted](rc)
		require.ErrorIs(t, err, container.ErrWrongType)
		assert.NotErrorIs(t, err, container.ErrNotFound)

		var ce *container.CompositionError
		require.ErrorAs(t, err, &ce)
		assert.Equal(t, container.KeyFor[Counted](), ce.Key)
	}, req)
}

func TestLateInstantiation_BuildFailureAnswers500(t *testing.T) {
	l := web.NewLateInstantiatingListener(container.New())
	h := l.Middleware(web.Inject(func(*Loop, http.ResponseWriter, *http.Request) {
		t.Error("handler must not run")
	}))

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusInternalServerError, rr.Code)
}

func TestLateInstantiation_ThroughChiRoute(t *testing.T) {
	l := web.NewLateInstantiatingListener(container.New())
	router := chi.NewRouter()
	router.Use(l.Middleware)
	router.Get("/hello/{name}", web.Inject(func(h *HelloController, w http.ResponseWriter, r *http.Request) {
		h.ServeHTTP(w, r)
	}))
	router.Get("/greeter", web.Inject(func(g Greeter, w http.ResponseWriter, r *http.Request) {
		t.Error("interface should not be late-instantiated")
	}))

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/hello/Cy", nil))
	require.Equal(t, http.StatusOK, rr.Code)

	var body struct {
		Data map[string]string `json:"data"`
	}
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&body))
	assert.Equal(t, "Hello, Cy", body.Data["message"])

	rr = httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/greeter", nil))
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestInject_OutsideMiddleware(t *testing.T) {
	rr := httptest.NewRecorder()
	web.Inject(func(*HelloController, http.ResponseWriter, *http.Request) {
		t.Error("should not be called")
	})(rr, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusInternalServerError, rr.Code)
}
