package behaviors

import (
	"sync"

	"github.com/km-arc/go-gems/framework/container"
)

// Caching returns a behavior that keeps the first instance each adapter
// produces. Components registered with container.NoCache are left alone;
// container.Cache is accepted and consumed.
func Caching() container.Behavior {
	return func(next container.AdapterFactory) container.AdapterFactory {
		return caching{next: next}
	}
}

type caching struct {
	next container.AdapterFactory
}

func (f caching) CreateAdapter(m container.Monitor, props container.Properties, key string, fn container.Factory) container.Adapter {
	delegate := f.next.CreateAdapter(m, props, key, fn)
	if container.RemovePropertiesIfPresent(props, container.NoCache) {
		return delegate
	}
	container.RemovePropertiesIfPresent(props, container.Cache)
	return m.NewBehavior(NewCached(delegate))
}

func (f caching) AddAdapter(m container.Monitor, props container.Properties, adapter container.Adapter) container.Adapter {
	if container.RemovePropertiesIfPresent(props, container.NoCache) {
		return f.next.AddAdapter(m, props, adapter)
	}
	container.RemovePropertiesIfPresent(props, container.Cache)
	return m.NewBehavior(NewCached(f.next.AddAdapter(m, props, adapter)))
}

// Cached remembers the first successful instance of its delegate.
type Cached struct {
	container.Delegated

	mu       sync.Mutex
	done     bool
	instance any
}

// NewCached wraps delegate.
func NewCached(delegate container.Adapter) *Cached {
	return &Cached{Delegated: container.Delegated{Delegate: delegate}}
}

func (a *Cached) Instance(c *container.Container) (any, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if !a.done {
		instance, err := a.Delegate.Instance(c)
		if err != nil {
			return nil, err
		}
		a.instance, a.done = instance, true
	}
	return a.instance, nil
}

// Flush forgets the cached instance.
func (a *Cached) Flush() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.instance, a.done = nil, false
}

func (a *Cached) Descriptor() string { return "Cached" }
