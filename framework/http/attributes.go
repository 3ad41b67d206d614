package http

import (
	"context"
	"net/http"
	"sync"
)

// Request attributes are values attached to one request by earlier handlers
// (authentication, routing, tenancy...) and read by later ones. They live in
// the request context.

type attributesKey struct{}

type attributes struct {
	mu sync.RWMutex
	m  map[string]any
}

// WithAttributes returns r carrying an attribute store. r is returned as is
// when it already has one.
func WithAttributes(r *http.Request) *http.Request {
	if _, ok := r.Context().Value(attributesKey{}).(*attributes); ok {
		return r
	}
	store := &attributes{m: make(map[string]any)}
	return r.WithContext(context.WithValue(r.Context(), attributesKey{}, store))
}

// Attributes is middleware installing an attribute store on every request.
func Attributes(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		next.ServeHTTP(w, WithAttributes(r))
	})
}

// SetAttribute stores v under key. It reports false when r has no attribute
// store (see WithAttributes).
func SetAttribute(r *http.Request, key string, v any) bool {
	store, ok := r.Context().Value(attributesKey{}).(*attributes)
	if !ok {
		return false
	}
	store.mu.Lock()
	store.m[key] = v
	store.mu.Unlock()
	return true
}

// Attribute returns the attribute stored under key.
func Attribute(r *http.Request, key string) (any, bool) {
	store, ok := r.Context().Value(attributesKey{}).(*attributes)
	if !ok {
		return nil, false
	}
	store.mu.RLock()
	defer store.mu.RUnlock()
	v, ok := store.m[key]
	return v, ok
}
