package container

// ── Properties ────────────────────────────────────────────────────────────────

// Properties are the characteristics a component is registered with. Behaviors
// consume the characteristics they understand.
type Properties map[string]string

// Characteristics understood by the bundled behaviors.
var (
	HotSwap   = Properties{"hot-swap": "true"}
	NoHotSwap = Properties{"hot-swap": "false"}
	Cache     = Properties{"cache": "true"}
	NoCache   = Properties{"cache": "false"}
)

// Merge returns a fresh Properties holding every entry of props; later
// entries win.
func Merge(props ...Properties) Properties {
	out := make(Properties)
	for _, p := range props {
		for k, v := range p {
			out[k] = v
		}
	}
	return out
}

// Has reports whether every entry of chars is present in p with the same value.
func (p Properties) Has(chars Properties) bool {
	for k, v := range chars {
		if got, ok := p[k]; !ok || got != v {
			return false
		}
	}
	return true
}

// RemovePropertiesIfPresent removes chars from props when all of them are
// present, and reports whether it did.
//
//	if container.RemovePropertiesIfPresent(props, container.NoHotSwap) {
//	    return delegate
//	}
func RemovePropertiesIfPresent(props, chars Properties) bool {
	if props == nil || !props.Has(chars) {
		return false
	}
	for k := range chars {
		delete(props, k)
	}
	return true
}

// ── Behaviors ─────────────────────────────────────────────────────────────────

// AdapterFactory turns registrations into adapters.
type AdapterFactory interface {
	// CreateAdapter builds the adapter for a Bind/Singleton registration.
	CreateAdapter(m Monitor, props Properties, key string, f Factory) Adapter

	// AddAdapter decorates an adapter registered with AddAdapter.
	AddAdapter(m Monitor, props Properties, adapter Adapter) Adapter
}

// Behavior layers cross-cutting functionality over the next adapter factory,
// the same way HTTP middleware layers over the next handler.
//
//	c := container.New(container.WithBehaviors(
//	    behaviors.HotSwapping(),
//	    behaviors.Decorating(audit),
//	))
type Behavior func(next AdapterFactory) AdapterFactory

// Compose chains behaviors; the first one is outermost. With no behaviors the
// result creates plain FactoryAdapters.
func Compose(behaviors ...Behavior) AdapterFactory {
	var f AdapterFactory = adapterFactory{}
	for i := len(behaviors) - 1; i >= 0; i-- {
		f = behaviors[i](f)
	}
	return f
}

// adapterFactory is the innermost factory of every chain.
type adapterFactory struct{}

func (adapterFactory) CreateAdapter(_ Monitor, _ Properties, key string, f Factory) Adapter {
	return NewFactoryAdapter(key, f)
}

func (adapterFactory) AddAdapter(_ Monitor, _ Properties, adapter Adapter) Adapter {
	return adapter
}
