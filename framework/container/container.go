package container

import (
	"fmt"
	"io"
	"reflect"
	"strings"
	"sync"
	"time"

	"go.uber.org/multierr"
)

// ── Binding types ─────────────────────────────────────────────────────────────

// Factory is a function that builds a concrete value from the container.
type Factory func(c *Container) any

// binding holds the adapter chain for an abstract and whether its result is
// cached by the container.
type binding struct {
	adapter   Adapter
	singleton bool
}

// extender wraps an already-resolved instance with decorator logic.
type extender func(instance any, c *Container) any

// Option configures a container at construction time.
type Option func(r *registry)

// WithMonitor sets the monitor notified about instantiations and misses.
func WithMonitor(m Monitor) Option {
	return func(r *registry) {
		if m == nil {
			m = NullMonitor{}
		}
		r.monitor = m
	}
}

// WithBehaviors replaces the behaviors every Bind/Singleton/AddAdapter passes
// through. The first behavior is the outermost one.
func WithBehaviors(behaviors ...Behavior) Option {
	return func(r *registry) {
		r.behaviors = append([]Behavior(nil), behaviors...)
	}
}

// ── Container ─────────────────────────────────────────────────────────────────

// registry is the state shared by a container and the resolution views
// handed to factories.
type registry struct {
	mu sync.RWMutex

	parent    *Container
	monitor   Monitor
	behaviors []Behavior
	factory   AdapterFactory
	transient bool

	// abstract → binding
	bindings map[string]*binding

	// abstract → resolved singleton instance
	instances map[string]any

	// keys of instances built (not given) by this container, in creation order
	managed []string

	// alias → abstract (canonical key)
	aliases map[string]string

	// abstract → extender funcs
	extenders map[string][]extender

	// tag → []abstract
	tags map[string][]string

	// contextual: when[concrete][abstract] = factory
	contextual map[string]map[string]Factory

	// rebound callbacks: abstract → []func(any)
	reboundCallbacks map[string][]func(any)

	// resolved callbacks: []func(abstract, instance)
	afterResolving []func(string, any)
}

// Container is the IoC container.
//
// It supports:
//   - Bind / Singleton / Instance / Alias / AddAdapter / AddType
//   - Behaviors layered around every adapter the container creates
//   - Make / Get / MakeType / Resolve (generic)
//   - Parent containers, transient children and a Monitor for misses
//   - Tags, Extend, contextual binding, rebound and resolved callbacks
//   - Dispose of managed instances
//
// A *Container handed to a Factory is a view of the same container that also
// carries the current resolution path; it is used for contextual bindings and
// circular-dependency detection.
type Container struct {
	*registry

	stack []string
}

// New creates an empty container.
func New(opts ...Option) *Container {
	r := &registry{
		monitor:          NullMonitor{},
		bindings:         make(map[string]*binding),
		instances:        make(map[string]any),
		aliases:          make(map[string]string),
		extenders:        make(map[string][]extender),
		tags:             make(map[string][]string),
		contextual:       make(map[string]map[string]Factory),
		reboundCallbacks: make(map[string][]func(any)),
	}
	for _, opt := range opts {
		opt(r)
	}
	r.factory = Compose(r.behaviors...)

	c := &Container{registry: r}
	c.Instance("container", c)
	return c
}

// NewChild creates a container whose misses fall back to c. The child
// inherits c's monitor and behaviors unless opts override them.
func (c *Container) NewChild(opts ...Option) *Container {
	inherited := []Option{WithMonitor(c.monitor), WithBehaviors(c.behaviors...)}
	child := New(append(inherited, opts...)...)
	child.parent = c.root()
	return child
}

// NewTransient creates a child of parent that never caches instances, has no
// behaviors and shares parent's monitor. The child continues parent's
// resolution path so that cycles spanning both are still detected.
func NewTransient(parent *Container) *Container {
	child := New(WithMonitor(parent.monitor))
	child.parent = parent.root()
	child.transient = true
	child.stack = parent.stack
	return child
}

// Parent returns the parent container, or nil.
func (c *Container) Parent() *Container { return c.parent }

// Monitor returns the container's monitor.
func (c *Container) Monitor() Monitor { return c.monitor }

func (c *Container) root() *Container {
	return &Container{registry: c.registry}
}

// ── Registration ──────────────────────────────────────────────────────────────

// Bind registers a transient (new instance each Make) factory.
//
//	// Laravel: $app->bind(UserRepository::class, fn($app) => new EloquentUserRepository($app))
//	c.Bind("UserRepository", func(c *container.Container) any {
//	    return &EloquentUserRepository{DB: Resolve[*sql.DB](c, "db")}
//	})
//
// Trailing properties are handed to the behaviors, e.g. container.NoHotSwap.
func (c *Container) Bind(abstract string, factory Factory, props ...Properties) {
	c.bind(abstract, factory, false, props)
}

// Singleton registers a factory whose result is cached after first resolution.
//
//	// Laravel: $app->singleton(Cache::class, fn($app) => new RedisCache($app))
//	c.Singleton("cache", func(c *container.Container) any {
//	    return cache.NewRedisCache(Resolve[*config.Config](c, "config"))
//	})
func (c *Container) Singleton(abstract string, factory Factory, props ...Properties) {
	c.bind(abstract, factory, true, props)
}

// Instance registers a pre-built value as a singleton. The container does not
// dispose values registered this way.
//
//	// Laravel: $app->instance(Config::class, $config)
//	c.Instance("config", myConfig)
func (c *Container) Instance(abstract string, instance any) {
	c.mu.Lock()
	key := c.canonical(abstract)
	delete(c.bindings, key)
	c.instances[key] = instance
	c.mu.Unlock()
	c.fireRebound(abstract, instance)
}

// AddAdapter registers a ready-made adapter under its own key. The adapter
// passes through the behaviors' add path; the container does not cache its
// result.
func (c *Container) AddAdapter(adapter Adapter, props ...Properties) {
	wrapped := c.factory.AddAdapter(c.monitor, Merge(props...), adapter)
	c.register(adapter.Key(), &binding{adapter: wrapped})
}

// AddType registers an autowired concrete struct type under KeyOf(t).
// See Instantiable for the types accepted.
func (c *Container) AddType(t reflect.Type, props ...Properties) *Container {
	c.AddAdapter(NewTypeAdapter(t), props...)
	return c
}

func (c *Container) bind(abstract string, factory Factory, singleton bool, props []Properties) {
	c.mu.RLock()
	key := c.canonical(abstract)
	c.mu.RUnlock()

	adapter := c.factory.CreateAdapter(c.monitor, Merge(props...), key, factory)
	c.register(key, &binding{adapter: adapter, singleton: singleton})
}

// register installs b and refires rebound callbacks when an instance built
// from the previous binding existed.
func (c *Container) register(key string, b *binding) {
	c.mu.Lock()
	_, wasResolved := c.instances[key]
	delete(c.instances, key)
	c.bindings[key] = b
	c.mu.Unlock()

	if wasResolved {
		if instance, err := c.root().Get(key); err == nil {
			c.fireRebound(key, instance)
		}
	}
}

// Alias registers an alternative name for an abstract.
//
//	// Laravel: $app->alias(Cache::class, 'cache')
//	c.Alias("cache", "cacheManager")
func (c *Container) Alias(abstract, alias string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if abstract == alias {
		panic(fmt.Sprintf("container: [%s] is aliased to itself", abstract))
	}
	c.aliases[alias] = c.canonical(abstract)
}

// ── Contextual Binding ────────────────────────────────────────────────────────

// When starts a contextual binding chain.
//
//	// Laravel: $app->when(PhotoController::class)->needs(Filesystem::class)->give(fn() => new S3)
//	c.When("PhotoController").Needs("Filesystem").Give(func(c *container.Container) any {
//	    return filesystem.NewS3(...)
//	})
func (c *Container) When(concrete string) *ContextualBuilder {
	return &ContextualBuilder{container: c, concrete: concrete}
}

// getContextual returns the contextual factory for (concrete, abstract), or nil.
func (c *Container) getContextual(concrete, abstract string) Factory {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if m, ok := c.contextual[concrete]; ok {
		if f, ok := m[abstract]; ok {
			return f
		}
	}
	return nil
}

// ── Extend ────────────────────────────────────────────────────────────────────

// Extend decorates the resolved instance of an abstract. Unlike a Decorating
// behavior, an extender may replace the instance.
//
//	// Laravel: $app->extend(Logger::class, fn($logger, $app) => new TimestampLogger($logger))
//	c.Extend("logger", func(instance any, c *container.Container) any {
//	    return logging.NewTimestampWrapper(instance.(*Logger))
//	})
func (c *Container) Extend(abstract string, fn func(instance any, c *Container) any) {
	c.mu.Lock()
	key := c.canonical(abstract)
	c.extenders[key] = append(c.extenders[key], fn)

	inst, ok := c.instances[key]
	c.mu.Unlock()
	if !ok {
		return
	}

	// Already resolved as singleton: extend the cached value in place.
	extended := fn(inst, c.root())
	c.mu.Lock()
	c.instances[key] = extended
	c.mu.Unlock()
	c.fireRebound(abstract, extended)
}

// ── Tags ──────────────────────────────────────────────────────────────────────

// Tag associates multiple abstracts under a named group.
//
//	// Laravel: $app->tag([CpuReport::class, MemoryReport::class], 'reports')
//	c.Tag([]string{"CpuReport", "MemoryReport"}, "reports")
func (c *Container) Tag(abstracts []string, tag string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.tags[tag] = append(c.tags[tag], abstracts...)
}

// Tagged resolves all abstracts registered under a tag.
//
//	// Laravel: $app->tagged('reports')
//	reports := c.Tagged("reports")  // []any
func (c *Container) Tagged(tag string) []any {
	c.mu.RLock()
	abstracts := append([]string(nil), c.tags[tag]...)
	c.mu.RUnlock()

	result := make([]any, 0, len(abstracts))
	for _, abs := range abstracts {
		result = append(result, c.Make(abs))
	}
	return result
}

// ── Resolution ────────────────────────────────────────────────────────────────

// Make resolves an abstract from the container. It panics with a
// *CompositionError when the abstract cannot be resolved; use Get for an
// error return.
//
//	// Laravel: $app->make(UserRepository::class)
//	repo := c.Make("UserRepository")
func (c *Container) Make(abstract string) any {
	instance, err := c.resolve(abstract, nil)
	if err != nil {
		panic(err)
	}
	return instance
}

// Get resolves an abstract, returning a *CompositionError on failure.
func (c *Container) Get(abstract string) (any, error) {
	return c.resolve(abstract, nil)
}

// MakeType resolves the component registered under KeyOf(t). On a miss the
// monitor is consulted with t itself, which lets it build concrete types.
func (c *Container) MakeType(t reflect.Type) (any, error) {
	return c.resolve(KeyOf(t), t)
}

// resolve walks: contextual binding for the current caller, cached instance,
// local adapter, parent, monitor. Only the monitor of the container the
// lookup started from is asked about a miss.
func (c *Container) resolve(abstract string, t reflect.Type) (any, error) {
	inst, err := c.lookup(abstract)
	if !isMiss(err) {
		return inst, err
	}

	var key any = abstract
	if t != nil {
		key = t
	}
	inst, err = c.noComponentFound(key)
	if err != nil || inst != nil {
		return inst, err
	}
	return nil, &CompositionError{Key: abstract, Err: ErrNotFound}
}

// noComponentFound asks the monitor for a component. A monitor reports a
// component it found but could not build by panicking with a
// *CompositionError.
func (c *Container) noComponentFound(key any) (instance any, err error) {
	defer func() {
		if r := recover(); r != nil {
			ce, ok := r.(*CompositionError)
			if !ok {
				panic(r)
			}
			err = ce
		}
	}()
	return c.monitor.NoComponentFound(c, key), nil
}

// lookup resolves abstract from c and its parents without consulting any
// monitor.
func (c *Container) lookup(abstract string) (any, error) {
	c.mu.RLock()
	key := c.canonical(abstract)
	c.mu.RUnlock()

	if caller := c.caller(); caller != "" {
		if f := c.getContextual(caller, abstract); f != nil {
			return c.build(key, NewFactoryAdapter(key, f), false)
		}
	}

	c.mu.RLock()
	if inst, ok := c.instances[key]; ok {
		c.mu.RUnlock()
		return inst, nil
	}
	b, bound := c.bindings[key]
	c.mu.RUnlock()

	if bound {
		return c.build(key, b.adapter, b.singleton && !c.transient)
	}

	if c.parent != nil {
		return c.parent.withStack(c.stack).lookup(abstract)
	}
	return nil, &CompositionError{Key: abstract, Err: ErrNotFound}
}

// build runs an adapter on a view that records key on the resolution path,
// optionally caching the result.
func (c *Container) build(key string, a Adapter, singleton bool) (any, error) {
	for _, k := range c.stack {
		if k == key {
			path := strings.Join(append(append([]string(nil), c.stack...), key), " -> ")
			return nil, &CompositionError{Key: key, Err: fmt.Errorf("%w: %s", ErrCircular, path)}
		}
	}
	view := c.withStack(append(c.stack[:len(c.stack):len(c.stack)], key))

	start := time.Now()
	instance, err := a.Instance(view)
	if err != nil {
		c.monitor.InstantiationFailed(key, err)
		return nil, &CompositionError{Key: key, Err: err}
	}

	c.mu.RLock()
	exts := c.extenders[key]
	c.mu.RUnlock()
	for _, ext := range exts {
		instance = ext(instance, view)
	}

	if singleton {
		c.mu.Lock()
		if existing, ok := c.instances[key]; ok {
			// Lost a race with a concurrent build; keep the first instance.
			c.mu.Unlock()
			return existing, nil
		}
		c.instances[key] = instance
		c.managed = append(c.managed, key)
		c.mu.Unlock()
	}

	c.monitor.Instantiated(key, instance, time.Since(start))
	c.fireAfterResolving(key, instance)
	return instance, nil
}

func (c *Container) withStack(stack []string) *Container {
	return &Container{registry: c.registry, stack: stack}
}

// caller returns the abstract currently being built, if any.
func (c *Container) caller() string {
	if len(c.stack) == 0 {
		return ""
	}
	return c.stack[len(c.stack)-1]
}

// ── Helpers ───────────────────────────────────────────────────────────────────

// Bound returns true if an abstract has been registered locally.
//
//	// Laravel: $app->bound(UserRepository::class)
func (c *Container) Bound(abstract string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	key := c.canonical(abstract)
	_, hasBinding := c.bindings[key]
	_, hasInstance := c.instances[key]
	return hasBinding || hasInstance
}

// Resolved returns true if the abstract has been resolved at least once.
//
//	// Laravel: $app->resolved(Cache::class)
func (c *Container) Resolved(abstract string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	key := c.canonical(abstract)
	_, ok := c.instances[key]
	return ok
}

// Adapter returns the outermost adapter registered for abstract, or nil.
func (c *Container) Adapter(abstract string) Adapter {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if b, ok := c.bindings[c.canonical(abstract)]; ok {
		return b.adapter
	}
	return nil
}

// Forget removes all registrations for an abstract (binding + instance).
//
//	// Laravel: $app->forgetInstance(Cache::class)
func (c *Container) Forget(abstract string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	key := c.canonical(abstract)
	delete(c.bindings, key)
	delete(c.instances, key)
}

// Flush resets the entire container.
func (c *Container) Flush() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.bindings = make(map[string]*binding)
	c.instances = make(map[string]any)
	c.managed = nil
	c.aliases = make(map[string]string)
	c.extenders = make(map[string][]extender)
	c.tags = make(map[string][]string)
	c.contextual = make(map[string]map[string]Factory)
}

// Bindings returns a copy of all registered abstract keys (for debugging).
func (c *Container) Bindings() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]string, 0, len(c.bindings)+len(c.instances))
	for k := range c.bindings {
		out = append(out, k)
	}
	for k := range c.instances {
		if _, already := c.bindings[k]; !already {
			out = append(out, k)
		}
	}
	return out
}

// canonical resolves an alias to its canonical key (must hold mu).
func (c *Container) canonical(abstract string) string {
	if target, ok := c.aliases[abstract]; ok {
		return target
	}
	return abstract
}

// ── Lifecycle ─────────────────────────────────────────────────────────────────

// Disposable is implemented by components that release resources when their
// container is disposed.
type Disposable interface {
	Dispose() error
}

// Dispose releases every cached instance the container built itself, newest
// first. Instances implementing Disposable or io.Closer are disposed; the
// errors of all of them are combined.
func (c *Container) Dispose() error {
	c.mu.Lock()
	var keys []string
	var instances []any
	seen := make(map[string]bool)
	for i := len(c.managed) - 1; i >= 0; i-- {
		k := c.managed[i]
		inst, ok := c.instances[k]
		if seen[k] || !ok {
			continue
		}
		seen[k] = true
		keys = append(keys, k)
		instances = append(instances, inst)
		delete(c.instances, k)
	}
	c.managed = nil
	c.mu.Unlock()

	var err error
	for i, inst := range instances {
		switch d := inst.(type) {
		case Disposable:
			if e := d.Dispose(); e != nil {
				err = multierr.Append(err, fmt.Errorf("dispose [%s]: %w", keys[i], e))
			}
		case io.Closer:
			if e := d.Close(); e != nil {
				err = multierr.Append(err, fmt.Errorf("close [%s]: %w", keys[i], e))
			}
		}
	}
	return err
}

// ── Callbacks ─────────────────────────────────────────────────────────────────

// Rebinding registers a callback to be called whenever an abstract is re-bound.
//
//	// Laravel: $app->rebinding(UserRepository::class, fn($app, $repo) => ...)
func (c *Container) Rebinding(abstract string, cb func(any)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.reboundCallbacks[abstract] = append(c.reboundCallbacks[abstract], cb)
}

// AfterResolving registers a callback fired after any abstract is built.
//
//	// Laravel: $app->afterResolving(fn($object, $app) => ...)
func (c *Container) AfterResolving(cb func(abstract string, instance any)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.afterResolving = append(c.afterResolving, cb)
}

func (c *Container) fireRebound(abstract string, instance any) {
	c.mu.RLock()
	cbs := c.reboundCallbacks[abstract]
	c.mu.RUnlock()
	for _, cb := range cbs {
		cb(instance)
	}
}

func (c *Container) fireAfterResolving(abstract string, instance any) {
	c.mu.RLock()
	cbs := c.afterResolving
	c.mu.RUnlock()
	for _, cb := range cbs {
		cb(abstract, instance)
	}
}

// ── Generics helpers ──────────────────────────────────────────────────────────

// Resolve is a generic helper that calls Make and type-asserts the result.
// It panics with a *CompositionError on a miss or a type mismatch.
//
//	// Instead of: db := c.Make("db").(*sql.DB)
//	// Write:      db := container.Resolve[*sql.DB](c, "db")
func Resolve[T any](c *Container, abstract string) T {
	typed, err := Lookup[T](c, abstract)
	if err != nil {
		panic(err)
	}
	return typed
}

// Lookup is like Resolve but returns an error instead of panicking.
func Lookup[T any](c *Container, abstract string) (T, error) {
	var zero T
	instance, err := c.Get(abstract)
	if err != nil {
		return zero, err
	}
	typed, ok := instance.(T)
	if !ok {
		return zero, &CompositionError{
			Key: abstract,
			Err: fmt.Errorf("%w: want %T, got %T", ErrWrongType, zero, instance),
		}
	}
	return typed, nil
}

// ResolveType resolves the component registered under KeyFor[T].
//
//	c.AddType(reflect.TypeOf(&Controller{}))
//	ctrl, err := container.ResolveType[*Controller](c)
func ResolveType[T any](c *Container) (T, error) {
	var zero T
	t := reflect.TypeOf((*T)(nil)).Elem()
	instance, err := c.MakeType(t)
	if err != nil {
		return zero, err
	}
	typed, ok := instance.(T)
	if !ok {
		return zero, &CompositionError{
			Key: KeyOf(t),
			Err: fmt.Errorf("%w: want %s, got %T", ErrWrongType, t, instance),
		}
	}
	return typed, nil
}
