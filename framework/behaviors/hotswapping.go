package behaviors

import (
	"sync"

	"github.com/km-arc/go-gems/framework/container"
)

// ProxyFunc builds the value handed out for a hot-swappable component. The
// proxy should forward every call to the current delegate of s.
type ProxyFunc func(s *Swappable) any

// HotSwapOption configures HotSwapping.
type HotSwapOption func(*hotSwapping)

// WithProxy registers the proxy used for the component registered under key.
func WithProxy(key string, proxy ProxyFunc) HotSwapOption {
	return func(h *hotSwapping) { h.proxies[key] = proxy }
}

// OptIn limits HotSwapping to components registered with container.HotSwap.
func OptIn() HotSwapOption {
	return func(h *hotSwapping) { h.optIn = true }
}

// HotSwapping returns a behavior hiding every component behind a swappable
// proxy, on both the Bind/Singleton and the AddAdapter paths. Components
// registered with container.NoHotSwap are left alone; container.HotSwap is
// accepted and consumed.
func HotSwapping(opts ...HotSwapOption) container.Behavior {
	return func(next container.AdapterFactory) container.AdapterFactory {
		h := &hotSwapping{next: next, proxies: make(map[string]ProxyFunc)}
		for _, opt := range opts {
			opt(h)
		}
		return h
	}
}

type hotSwapping struct {
	next    container.AdapterFactory
	proxies map[string]ProxyFunc
	optIn   bool
}

func (h *hotSwapping) CreateAdapter(m container.Monitor, props container.Properties, key string, fn container.Factory) container.Adapter {
	delegate := h.next.CreateAdapter(m, props, key, fn)
	return h.wrap(m, props, delegate)
}

func (h *hotSwapping) AddAdapter(m container.Monitor, props container.Properties, adapter container.Adapter) container.Adapter {
	if !h.applies(props) {
		return h.next.AddAdapter(m, props, adapter)
	}
	delegate := h.next.AddAdapter(m, props, adapter)
	return m.NewBehavior(NewHotSwappable(delegate, h.proxies[adapter.Key()]))
}

func (h *hotSwapping) wrap(m container.Monitor, props container.Properties, delegate container.Adapter) container.Adapter {
	if !h.applies(props) {
		return delegate
	}
	return m.NewBehavior(NewHotSwappable(delegate, h.proxies[delegate.Key()]))
}

// applies consumes the hot-swap characteristic and reports whether the
// component gets wrapped.
func (h *hotSwapping) applies(props container.Properties) bool {
	if container.RemovePropertiesIfPresent(props, container.NoHotSwap) {
		return false
	}
	return container.RemovePropertiesIfPresent(props, container.HotSwap) || !h.optIn
}

// HotSwappable hides the real instance of its delegate behind a proxy backed
// by a Swappable.
//
// The real instance is created once, on first access, and every later
// Instance call returns the same proxy. HotSwappable does not otherwise
// cache; put Caching around it or register a singleton for that.
type HotSwappable struct {
	container.Delegated

	proxy     ProxyFunc
	swappable Swappable

	mu       sync.Mutex
	instance any
}

// NewHotSwappable wraps delegate. A nil proxy makes the *Swappable itself the
// component.
func NewHotSwappable(delegate container.Adapter, proxy ProxyFunc) *HotSwappable {
	return &HotSwappable{Delegated: container.Delegated{Delegate: delegate}, proxy: proxy}
}

// Instance returns the proxy, creating the real instance on first access
// unless one was swapped in before.
func (h *HotSwappable) Instance(c *container.Container) (any, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.instance == nil {
		if h.swappable.Instance() == nil {
			inst, err := h.Delegate.Instance(c)
			if err != nil {
				return nil, err
			}
			h.swappable.Swap(inst)
		}
		if h.proxy != nil {
			h.instance = h.proxy(&h.swappable)
		} else {
			h.instance = &h.swappable
		}
	}
	return h.instance, nil
}

// SwapRealInstance installs instance behind the proxy and returns the
// previous real instance.
func (h *HotSwappable) SwapRealInstance(instance any) any {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.swappable.Swap(instance)
}

// RealInstance returns the instance currently behind the proxy, or nil before
// first access.
func (h *HotSwappable) RealInstance() any {
	return h.swappable.Instance()
}

// Swappable returns the cell behind the proxy.
func (h *HotSwappable) Swappable() *Swappable { return &h.swappable }

func (h *HotSwappable) Descriptor() string { return "HotSwappable" }

// HotSwappableFor finds the HotSwappable in the adapter chain registered
// under key in c or one of its parents.
func HotSwappableFor(c *container.Container, key string) (*HotSwappable, bool) {
	for ; c != nil; c = c.Parent() {
		if a := c.Adapter(key); a != nil {
			return container.FindAdapter[*HotSwappable](a)
		}
	}
	return nil, false
}
