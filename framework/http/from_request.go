package http

import "net/http"

// StringFromRequest supplies the value a request carries under a string key.
//
//	v := gohttp.StringFromRequest("tenant").Provide(r)
type StringFromRequest string

// Provide returns, in order of preference, the request attribute named by
// the key, the route parameter, or the query/form parameter. It returns nil
// when the request carries none of them, or when r is nil.
func (key StringFromRequest) Provide(r *http.Request) any {
	if r == nil {
		return nil
	}
	if v, ok := Attribute(r, string(key)); ok && v != nil {
		return v
	}
	if v, ok := NewRequest(r).Param(string(key)); ok {
		return v
	}
	return nil
}
