package behaviors

import "github.com/km-arc/go-gems/framework/container"

// Decorator post-processes a freshly created component instance in place.
type Decorator interface {
	Decorate(instance any)
}

// DecoratorFunc adapts a function to Decorator.
type DecoratorFunc func(instance any)

func (f DecoratorFunc) Decorate(instance any) { f(instance) }

// Decorating returns a behavior that wraps every adapter created through
// Bind/Singleton in a Decorated adapter. Adapters registered with AddAdapter
// pass through untouched.
func Decorating(d Decorator) container.Behavior {
	return func(next container.AdapterFactory) container.AdapterFactory {
		return &decorating{next: next, decorator: d}
	}
}

type decorating struct {
	next      container.AdapterFactory
	decorator Decorator
}

func (f *decorating) CreateAdapter(m container.Monitor, props container.Properties, key string, fn container.Factory) container.Adapter {
	return m.NewBehavior(NewDecorated(f.next.CreateAdapter(m, props, key, fn), f.decorator))
}

func (f *decorating) AddAdapter(m container.Monitor, props container.Properties, adapter container.Adapter) container.Adapter {
	return f.next.AddAdapter(m, props, adapter)
}

// Decorated calls its Decorator on every instance the delegate produces.
type Decorated struct {
	container.Delegated
	decorator Decorator
}

// NewDecorated wraps delegate.
func NewDecorated(delegate container.Adapter, d Decorator) *Decorated {
	return &Decorated{Delegated: container.Delegated{Delegate: delegate}, decorator: d}
}

// Instance returns the delegate's instance after decorating it. The decorator
// is not called when the delegate fails.
func (d *Decorated) Instance(c *container.Container) (any, error) {
	instance, err := d.Delegate.Instance(c)
	if err != nil {
		return nil, err
	}
	d.decorator.Decorate(instance)
	return instance, nil
}

func (d *Decorated) Descriptor() string { return "Decorated" }
