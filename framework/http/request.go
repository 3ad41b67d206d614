package http

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
)

const maxMemory = 32 << 20 // 32 MB

// Request wraps *http.Request with Laravel-style helpers and access to the
// request's attributes.
type Request struct {
	raw *http.Request
}

// NewRequest wraps a standard *http.Request.
func NewRequest(r *http.Request) *Request {
	return &Request{raw: r}
}

// ── Binding ──────────────────────────────────────────────────────────────────

// Bind decodes the request body into v: JSON bodies through encoding/json,
// urlencoded and multipart bodies field by field using v's json tags. A
// request without a body leaves v untouched.
func (req *Request) Bind(v any) error {
	ct := req.ContentType()

	switch {
	case strings.Contains(ct, "application/json"):
		return req.bindJSON(v)
	case strings.Contains(ct, "multipart/form-data"):
		if err := req.raw.ParseMultipartForm(maxMemory); err != nil {
			return err
		}
		return bindForm(req.raw.MultipartForm.Value, v)
	default:
		if err := req.raw.ParseForm(); err != nil {
			return err
		}
		return bindForm(req.raw.PostForm, v)
	}
}

func (req *Request) bindJSON(v any) error {
	defer req.raw.Body.Close()
	body, err := io.ReadAll(req.raw.Body)
	if err != nil {
		return err
	}
	if len(body) == 0 {
		return errors.New("empty request body")
	}
	return json.Unmarshal(body, v)
}

// bindForm re-encodes single-valued form fields as a JSON object so v's json
// tags apply to form bodies too.
func bindForm(values map[string][]string, v any) error {
	if len(values) == 0 {
		return nil
	}
	m := make(map[string]any, len(values))
	for k, vals := range values {
		if len(vals) == 1 {
			m[k] = vals[0]
		} else {
			m[k] = vals
		}
	}
	b, err := json.Marshal(m)
	if err != nil {
		return err
	}
	return json.Unmarshal(b, v)
}

// ── Input helpers ────────────────────────────────────────────────────────────

// Input returns a single input value (query string OR post body).
func (req *Request) Input(key string, fallback ...string) string {
	_ = req.raw.ParseForm()
	v := req.raw.FormValue(key)
	if v == "" && len(fallback) > 0 {
		return fallback[0]
	}
	return v
}

// Query returns a query-string value.
func (req *Request) Query(key string, fallback ...string) string {
	v := req.raw.URL.Query().Get(key)
	if v == "" && len(fallback) > 0 {
		return fallback[0]
	}
	return v
}

// RouteParam returns a URL route parameter (chi), or "" outside a chi route.
func (req *Request) RouteParam(key string) string {
	if chi.RouteContext(req.raw.Context()) == nil {
		return ""
	}
	return chi.URLParam(req.raw, key)
}

// Header returns a request header value.
func (req *Request) Header(key string) string {
	return req.raw.Header.Get(key)
}

// BearerToken extracts the token from Authorization: Bearer <token>.
func (req *Request) BearerToken() string {
	token, ok := strings.CutPrefix(req.Header("Authorization"), "Bearer ")
	if !ok {
		return ""
	}
	return strings.TrimSpace(token)
}

// ContentType returns the Content-Type header value.
func (req *Request) ContentType() string {
	return req.Header("Content-Type")
}

// ── Attributes and parameters ────────────────────────────────────────────────

// Attribute returns a request attribute set with SetAttribute.
func (req *Request) Attribute(key string) (any, bool) {
	return Attribute(req.raw, key)
}

// Param looks key up as a route parameter, then in the query string and the
// form body. The second result is false when none of them carries it.
func (req *Request) Param(key string) (string, bool) {
	if v := req.RouteParam(key); v != "" {
		return v, true
	}
	_ = req.raw.ParseForm()
	if vals, ok := req.raw.Form[key]; ok && len(vals) > 0 {
		return vals[0], true
	}
	return "", false
}
