package demo_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/km-arc/go-gems/framework/app"
	"github.com/km-arc/go-gems/framework/behaviors"
	"github.com/km-arc/go-gems/framework/config"
	"github.com/km-arc/go-gems/framework/container"
	"github.com/km-arc/go-gems/internal/demo"
)

func newApp(t *testing.T) *app.Application {
	t.Helper()
	cfg := config.Load("testdata/none.env")
	cfg.Log.Level = "error"
	a := demo.NewApplication(app.WithConfig(cfg))
	a.Boot()
	t.Cleanup(func() { _ = a.Close() })
	return a
}

type envelope struct {
	Data    map[string]any      `json:"data"`
	Errors  map[string][]string `json:"errors"`
	Message string              `json:"message"`
}

func call(t *testing.T, a *app.Application, method, target string, cookies ...*http.Cookie) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	req := httptest.NewRequest(method, target, nil)
	for _, ck := range cookies {
		req.AddCookie(ck)
	}
	return send(t, a, req)
}

func send(t *testing.T, a *app.Application, req *http.Request) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	rr := httptest.NewRecorder()
	a.Router().ServeHTTP(rr, req)

	var body envelope
	if rr.Body.Len() > 0 {
		require.NoError(t, json.NewDecoder(rr.Body).Decode(&body))
	}
	return rr, body
}

func TestGreet_HotSwap(t *testing.T) {
	t.Setenv("GREETING", "Hello")
	a := newApp(t)

	_, body := call(t, a, http.MethodGet, "/greet?name=Ann")
	assert.Equal(t, "Hello, Ann!", body.Data["message"])

	rr, body := call(t, a, http.MethodPost, "/greet/swap?greeting=Hi")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "Hello", body.Data["previous"])
	assert.Equal(t, "Hi", body.Data["current"])

	_, body = call(t, a, http.MethodGet, "/greet?name=Ann")
	assert.Equal(t, "Hi, Ann!", body.Data["message"])
}

func TestGreet_SwapRequiresGreeting(t *testing.T) {
	a := newApp(t)

	rr, body := call(t, a, http.MethodPost, "/greet/swap")
	assert.Equal(t, http.StatusUnprocessableEntity, rr.Code)
	assert.NotEmpty(t, body.Errors["greeting"])
}

func TestGreet_SwapFromBody(t *testing.T) {
	t.Setenv("GREETING", "Hello")
	a := newApp(t)

	req := httptest.NewRequest(http.MethodPost, "/greet/swap", strings.NewReader(`{"greeting":"Hey"}`))
	req.Header.Set("Content-Type", "application/json")
	rr, body := send(t, a, req)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "Hello", body.Data["previous"])
	assert.Equal(t, "Hey", body.Data["current"])

	form := url.Values{"greeting": {"Howdy"}}
	req = httptest.NewRequest(http.MethodPost, "/greet/swap", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rr, body = send(t, a, req)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "Hey", body.Data["previous"])

	_, body = call(t, a, http.MethodGet, "/greet?name=Ann")
	assert.Equal(t, "Howdy, Ann!", body.Data["message"])
}

func TestGreet_SwapMalformedBody(t *testing.T) {
	a := newApp(t)

	req := httptest.NewRequest(http.MethodPost, "/greet/swap", strings.NewReader(`{greeting`))
	req.Header.Set("Content-Type", "application/json")
	rr, _ := send(t, a, req)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestGreeter_IsHotSwappableProxy(t *testing.T) {
	a := newApp(t)

	assert.IsType(t, demo.GreeterProxy{}, a.Make("greeter"))
	assert.Equal(t, "HotSwappable:Decorated:Factory", container.Describe(a.Adapter("greeter")))
}

func TestHello_LateInstantiatedPerSession(t *testing.T) {
	a := newApp(t)

	rr, body := call(t, a, http.MethodGet, "/hello/Bo")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "Hello, Bo!", body.Data["message"])
	assert.Equal(t, 1.0, body.Data["visits"])

	var session *http.Cookie
	for _, ck := range rr.Result().Cookies() {
		if ck.Name == a.Listener().CookieName() {
			session = ck
		}
	}
	require.NotNil(t, session)

	_, body = call(t, a, http.MethodGet, "/hello/Bo", session)
	assert.Equal(t, 2.0, body.Data["visits"])

	since, err := time.Parse(time.RFC3339Nano, body.Data["since"].(string))
	require.NoError(t, err)
	assert.False(t, since.IsZero(), "counter should be stamped on creation")

	_, body = call(t, a, http.MethodGet, "/hello/Bo")
	assert.Equal(t, 1.0, body.Data["visits"], "a new session gets a new counter")
}

func TestHello_UserFromBearerToken(t *testing.T) {
	a := newApp(t)

	_, body := call(t, a, http.MethodGet, "/hello/Bo")
	assert.Equal(t, demo.Guest, body.Data["user"])

	req := httptest.NewRequest(http.MethodGet, "/hello/Bo", nil)
	req.Header.Set("Authorization", "Bearer ann")
	rr, body := send(t, a, req)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "ann", body.Data["user"])
}

func TestHello_LateInstantiationIsNotAMiss(t *testing.T) {
	a := newApp(t)
	require.True(t, a.Config().Metrics.Enabled)

	rr, body := call(t, a, http.MethodGet, "/hello/Bo")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "Hello, Bo!", body.Data["message"])

	reg := container.Resolve[*prometheus.Registry](a.Container, "metrics.registry")
	families, err := reg.Gather()
	require.NoError(t, err)
	var misses float64
	for _, f := range families {
		if f.GetName() != "gems_component_lookup_misses_total" {
			continue
		}
		for _, m := range f.GetMetric() {
			misses += m.GetCounter().GetValue()
		}
	}
	assert.Zero(t, misses)
}

func TestProxy_WithoutDelegate(t *testing.T) {
	var g demo.Greeter = demo.NewGreeterProxy(new(behaviors.Swappable)).(demo.GreeterProxy)
	assert.Equal(t, "Ann", g.Greet("Ann"))
}
