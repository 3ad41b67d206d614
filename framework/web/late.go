package web

import (
	"errors"
	"net/http"
	"reflect"

	"github.com/km-arc/go-gems/framework/container"
	gohttp "github.com/km-arc/go-gems/framework/http"
)

var requestType = reflect.TypeOf(&http.Request{})

// LateInstantiatingMonitor supplies components a request container was
// never given. A reflect.Type key naming a concrete struct type outside the
// standard library is autowired in a transient child of the failing
// container. A string key is looked up on the current request with
// gohttp.StringFromRequest. Anything else stays missing.
//
// A concrete type that fails to build is reported through the lookup's
// *container.CompositionError rather than as missing.
type LateInstantiatingMonitor struct {
	container.NullMonitor
}

func (LateInstantiatingMonitor) NoComponentFound(c *container.Container, key any) any {
	switch k := key.(type) {
	case reflect.Type:
		if container.StandardLibrary(k) || !container.Instantiable(k) {
			return nil
		}
		instance, err := container.NewTransient(c).AddType(k).MakeType(k)
		if err != nil {
			panic(asComposition(k, err))
		}
		return instance
	case string:
		r, err := c.MakeType(requestType)
		if err != nil {
			return nil
		}
		req, _ := r.(*http.Request)
		return gohttp.StringFromRequest(k).Provide(req)
	}
	return nil
}

func asComposition(t reflect.Type, err error) *container.CompositionError {
	var ce *container.CompositionError
	if errors.As(err, &ce) {
		return ce
	}
	return &container.CompositionError{Key: container.KeyOf(t), Err: err}
}

// NewLateInstantiatingListener returns a listener whose request containers
// use a LateInstantiatingMonitor. opts may still override the monitor.
func NewLateInstantiatingListener(app *container.Container, opts ...Option) *Listener {
	late := WithRequestMonitor(func() container.Monitor { return LateInstantiatingMonitor{} })
	return New(app, append([]Option{late}, opts...)...)
}
