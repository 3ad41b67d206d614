package container

import (
	"fmt"
	"reflect"
	"strings"
)

// ── Type keys ─────────────────────────────────────────────────────────────────

// KeyOf returns the abstract key used for t: the package-qualified type name
// with pointers stripped.
//
//	container.KeyOf(reflect.TypeOf(&Controller{}))  // "example.com/app.Controller"
func KeyOf(t reflect.Type) string {
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t.Name() == "" {
		return t.String()
	}
	return t.PkgPath() + "." + t.Name()
}

// KeyFor returns KeyOf for the static type T.
func KeyFor[T any]() string {
	return KeyOf(reflect.TypeOf((*T)(nil)).Elem())
}

// TypeKey returns the package-qualified type name of v, useful as a stable
// abstract key when working with interfaces.
//
//	key := container.TypeKey((*UserRepository)(nil))  // "main.UserRepository"
//	c.Singleton(key, factory)
//	repo := container.Resolve[UserRepository](c, key)
func TypeKey(v any) string {
	return KeyOf(reflect.TypeOf(v))
}

// ── Autowiring ────────────────────────────────────────────────────────────────

// Instantiable reports whether t can be autowired: a named struct, or a
// pointer to one, declared outside the standard library.
func Instantiable(t reflect.Type) bool {
	if t == nil {
		return false
	}
	if t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	return t.Kind() == reflect.Struct && t.Name() != "" && !StandardLibrary(t)
}

// StandardLibrary reports whether t is a predeclared type or belongs to a
// standard-library package.
func StandardLibrary(t reflect.Type) bool {
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	pkg := t.PkgPath()
	if pkg == "" {
		return true
	}
	if pkg == "main" {
		return false
	}
	first, _, _ := strings.Cut(pkg, "/")
	return !strings.Contains(first, ".")
}

// TypeAdapter builds a fresh struct on every Instance call and fills its
// exported fields tagged `inject`:
//
//	type Controller struct {
//	    Repo  UserRepository `inject:""`      // by field type
//	    Name  string         `inject:"name"`  // by abstract
//	    cache map[string]int                  // left alone
//	}
//
// A pointer type yields a pointer to the new struct, a struct type the value.
type TypeAdapter struct {
	typ reflect.Type
}

// NewTypeAdapter returns an autowiring adapter for t.
func NewTypeAdapter(t reflect.Type) *TypeAdapter {
	return &TypeAdapter{typ: t}
}

func (a *TypeAdapter) Key() string        { return KeyOf(a.typ) }
func (a *TypeAdapter) Descriptor() string { return "Autowired" }

func (a *TypeAdapter) Instance(c *Container) (any, error) {
	if !Instantiable(a.typ) {
		return nil, fmt.Errorf("%w: %s", ErrNotInstantiable, a.typ)
	}
	st := a.typ
	if st.Kind() == reflect.Pointer {
		st = st.Elem()
	}

	v := reflect.New(st)
	for i := 0; i < st.NumField(); i++ {
		f := st.Field(i)
		name, ok := f.Tag.Lookup("inject")
		if !ok || !f.IsExported() {
			continue
		}

		var dep any
		var err error
		if name == "" {
			dep, err = c.MakeType(f.Type)
		} else {
			dep, err = c.Get(name)
		}
		if err != nil {
			return nil, fmt.Errorf("field %s: %w", f.Name, err)
		}

		dv := reflect.ValueOf(dep)
		if !dv.IsValid() {
			continue
		}
		if !dv.Type().AssignableTo(f.Type) {
			return nil, fmt.Errorf("%w: field %s wants %s, got %s", ErrWrongType, f.Name, f.Type, dv.Type())
		}
		v.Elem().Field(i).Set(dv)
	}

	if a.typ.Kind() == reflect.Pointer {
		return v.Interface(), nil
	}
	return v.Elem().Interface(), nil
}
