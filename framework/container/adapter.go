package container

import (
	"fmt"
	"strings"
)

// Adapter produces the instance of one managed component.
type Adapter interface {
	// Key is the abstract the adapter is registered under.
	Key() string

	// Instance returns the component, building it as needed. c is the
	// container view performing the resolution.
	Instance(c *Container) (any, error)

	// Descriptor is a short label used by Describe, e.g. "Decorated".
	Descriptor() string
}

// Wrapper is implemented by adapters that decorate another adapter.
type Wrapper interface {
	Unwrap() Adapter
}

// Delegated is an embeddable base for behavior adapters. It forwards every
// call to Delegate; embedders override what they change.
type Delegated struct {
	Delegate Adapter
}

func (d *Delegated) Key() string     { return d.Delegate.Key() }
func (d *Delegated) Unwrap() Adapter { return d.Delegate }

func (d *Delegated) Instance(c *Container) (any, error) {
	return d.Delegate.Instance(c)
}

// FindAdapter walks a's chain and returns the first adapter of type A.
func FindAdapter[A any](a Adapter) (A, bool) {
	for a != nil {
		if found, ok := a.(A); ok {
			return found, true
		}
		w, ok := a.(Wrapper)
		if !ok {
			break
		}
		a = w.Unwrap()
	}
	var zero A
	return zero, false
}

// Describe renders the descriptor chain of a, outermost first:
//
//	"HotSwappable:Decorated:Factory"
func Describe(a Adapter) string {
	var parts []string
	for a != nil {
		parts = append(parts, a.Descriptor())
		w, ok := a.(Wrapper)
		if !ok {
			break
		}
		a = w.Unwrap()
	}
	return strings.Join(parts, ":")
}

// ── FactoryAdapter ────────────────────────────────────────────────────────────

// FactoryAdapter runs a Factory on every Instance call.
type FactoryAdapter struct {
	key     string
	factory Factory
}

// NewFactoryAdapter returns an adapter building key with f.
func NewFactoryAdapter(key string, f Factory) *FactoryAdapter {
	return &FactoryAdapter{key: key, factory: f}
}

func (a *FactoryAdapter) Key() string        { return a.key }
func (a *FactoryAdapter) Descriptor() string { return "Factory" }

// Instance runs the factory. A factory that calls Make or Resolve for a
// missing dependency panics with a *CompositionError; that panic is returned
// as an error here.
func (a *FactoryAdapter) Instance(c *Container) (instance any, err error) {
	defer func() {
		if r := recover(); r != nil {
			ce, ok := r.(*CompositionError)
			if !ok {
				panic(r)
			}
			err = ce
		}
	}()
	if a.factory == nil {
		return nil, fmt.Errorf("container: nil factory for [%s]", a.key)
	}
	return a.factory(c), nil
}

// ── InstanceAdapter ───────────────────────────────────────────────────────────

// InstanceAdapter always returns the same pre-built value.
type InstanceAdapter struct {
	key   string
	value any
}

// NewInstanceAdapter returns an adapter for a pre-built value.
func NewInstanceAdapter(key string, value any) *InstanceAdapter {
	return &InstanceAdapter{key: key, value: value}
}

func (a *InstanceAdapter) Key() string                        { return a.key }
func (a *InstanceAdapter) Descriptor() string                 { return "Instance" }
func (a *InstanceAdapter) Instance(_ *Container) (any, error) { return a.value, nil }
