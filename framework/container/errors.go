package container

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is reported when neither the container, its parents nor the
	// monitor can supply a component.
	ErrNotFound = errors.New("container: no binding registered")

	// ErrWrongType is reported when a component does not have the requested type.
	ErrWrongType = errors.New("container: wrong component type")

	// ErrCircular is reported when a component depends on itself.
	ErrCircular = errors.New("container: circular dependency")

	// ErrNotInstantiable is reported when a type cannot be autowired.
	ErrNotInstantiable = errors.New("container: type is not instantiable")
)

// CompositionError is returned (or panicked, by Make and Resolve) when a
// component cannot be composed.
type CompositionError struct {
	Key string
	Err error
}

func (e *CompositionError) Error() string {
	if e.Err == ErrNotFound {
		return fmt.Sprintf("container: no binding registered for [%s]", e.Key)
	}
	return fmt.Sprintf("container: resolving [%s]: %v", e.Key, e.Err)
}

func (e *CompositionError) Unwrap() error { return e.Err }

// isMiss reports whether err is a plain "not found" for the key looked up,
// as opposed to a failure while building something that was found.
func isMiss(err error) bool {
	ce, ok := err.(*CompositionError)
	return ok && ce.Err == ErrNotFound
}
