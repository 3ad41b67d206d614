package http_test

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	gohttp "github.com/km-arc/go-gems/framework/http"
)

// ── Attributes ────────────────────────────────────────────────────────────────

func TestAttributes_SetWithoutStore(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	assert.False(t, gohttp.SetAttribute(r, "user", "ann"))

	_, ok := gohttp.Attribute(r, "user")
	assert.False(t, ok)
}

func TestAttributes_SetAndGet(t *testing.T) {
	r := gohttp.WithAttributes(httptest.NewRequest(http.MethodGet, "/", nil))
	require.True(t, gohttp.SetAttribute(r, "user", "ann"))

	v, ok := gohttp.Attribute(r, "user")
	require.True(t, ok)
	assert.Equal(t, "ann", v)

	v, ok = gohttp.NewRequest(r).Attribute("user")
	assert.True(t, ok)
	assert.Equal(t, "ann", v)
}

func TestAttributes_WithAttributesKeepsExistingStore(t *testing.T) {
	r := gohttp.WithAttributes(httptest.NewRequest(http.MethodGet, "/", nil))
	gohttp.SetAttribute(r, "k", 1)

	assert.Same(t, r, gohttp.WithAttributes(r))
}

func TestAttributes_VisibleToLaterHandlers(t *testing.T) {
	var got any
	auth := func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gohttp.SetAttribute(r, "user", "bo")
			next.ServeHTTP(w, r)
		})
	}
	h := gohttp.Attributes(auth(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got, _ = gohttp.Attribute(r, "user")
	})))

	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, "bo", got)
}

// ── StringFromRequest ─────────────────────────────────────────────────────────

func TestStringFromRequest_NilRequest(t *testing.T) {
	assert.Nil(t, gohttp.StringFromRequest("x").Provide(nil))
}

func TestStringFromRequest_Absent(t *testing.T) {
	r := gohttp.WithAttributes(httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Nil(t, gohttp.StringFromRequest("tenant").Provide(r))
}

func TestStringFromRequest_AttributeWins(t *testing.T) {
	r := gohttp.WithAttributes(httptest.NewRequest(http.MethodGet, "/?tenant=query", nil))
	gohttp.SetAttribute(r, "tenant", "attr")

	assert.Equal(t, "attr", gohttp.StringFromRequest("tenant").Provide(r))
}

func TestStringFromRequest_AttributeKeepsItsType(t *testing.T) {
	r := gohttp.WithAttributes(httptest.NewRequest(http.MethodGet, "/", nil))
	gohttp.SetAttribute(r, "limit", 10)

	assert.Equal(t, 10, gohttp.StringFromRequest("limit").Provide(r))
}

func TestStringFromRequest_QueryAndForm(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/?tenant=acme", nil)
	assert.Equal(t, "acme", gohttp.StringFromRequest("tenant").Provide(r))

	form := url.Values{"greeting": {"Hi"}}
	r = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(form.Encode()))
	r.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	assert.Equal(t, "Hi", gohttp.StringFromRequest("greeting").Provide(r))
}

func TestStringFromRequest_EmptyQueryValueIsPresent(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/?flag=", nil)
	assert.Equal(t, "", gohttp.StringFromRequest("flag").Provide(r))
}

func TestStringFromRequest_RouteParam(t *testing.T) {
	var got any
	router := chi.NewRouter()
	router.Use(gohttp.Attributes)
	router.Get("/hello/{name}", func(w http.ResponseWriter, r *http.Request) {
		got = gohttp.StringFromRequest("name").Provide(r)
	})

	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/hello/ann?name=query", nil))
	assert.Equal(t, "ann", got)
}
