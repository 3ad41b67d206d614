package container

import "sync"

// ── ServiceProvider interface ─────────────────────────────────────────────────

// ServiceProvider mirrors Laravel's Illuminate\Support\ServiceProvider.
//
// Every provider must implement at minimum Register().
// Boot() is called after ALL providers have been registered, making it safe
// to resolve other bindings inside Boot().
//
//	// Laravel:
//	// class AppServiceProvider extends ServiceProvider {
//	//     public function register(): void { $this->app->singleton(...); }
//	//     public function boot(): void     { /* use resolved services */ }
//	// }
//
//	type AppServiceProvider struct{ container.BaseProvider }
//
//	func (p *AppServiceProvider) Register(app *container.Container) {
//	    app.Singleton("log", func(c *container.Container) any {
//	        return logging.New(container.Resolve[*config.Config](c, "config").Log)
//	    })
//	}
//
//	func (p *AppServiceProvider) Boot(app *container.Container) {
//	    log := container.Resolve[*logrus.Logger](app, "log")
//	    log.Info("Application booted")
//	}
type ServiceProvider interface {
	// Register binds services into the container.
	// Do NOT resolve other bindings here — use Boot() for that.
	Register(app *Container)

	// Boot is called after all providers are registered.
	// Safe to resolve and use any binding here.
	Boot(app *Container)

	// Provides returns the list of abstract keys this provider registers.
	// Used for deferred (lazy) provider loading.
	// Return nil / empty slice if the provider is always eager.
	//
	//	// Laravel: public function provides(): array { return [Cache::class]; }
	Provides() []string

	// IsDeferred returns true if this provider should be loaded lazily —
	// only when one of its Provides() abstracts is first resolved.
	//
	//	// Laravel: protected $defer = true;
	IsDeferred() bool
}

// ── BaseProvider ──────────────────────────────────────────────────────────────

// BaseProvider is an embeddable struct that provides no-op implementations
// of Boot(), Provides(), and IsDeferred().
// Embed it in your provider and only override what you need.
//
//	type MyProvider struct{ container.BaseProvider }
//	func (p *MyProvider) Register(app *container.Container) { ... }
type BaseProvider struct{}

func (p *BaseProvider) Boot(_ *Container)  {}
func (p *BaseProvider) Provides() []string { return nil }
func (p *BaseProvider) IsDeferred() bool   { return false }

// ── ProviderRegistry ──────────────────────────────────────────────────────────

// ProviderRegistry manages registration and booting of ServiceProviders,
// including deferred (lazy) providers.
//
// It mirrors the behaviour of Laravel's Application::registerConfiguredProviders
// and Application::bootProviders.
type ProviderRegistry struct {
	mu         sync.Mutex
	app        *Container
	eager      []ServiceProvider
	deferred   map[string]ServiceProvider // abstract → provider not yet loaded
	booted     bool
	registered map[ServiceProvider]bool
	loading    map[ServiceProvider]*sync.Once
}

// NewProviderRegistry creates a registry bound to app.
func NewProviderRegistry(app *Container) *ProviderRegistry {
	return &ProviderRegistry{
		app:        app.root(),
		deferred:   make(map[string]ServiceProvider),
		registered: make(map[ServiceProvider]bool),
		loading:    make(map[ServiceProvider]*sync.Once),
	}
}

// Register adds a provider and calls its Register() method (unless deferred).
//
//	// Laravel: $app->register(new AppServiceProvider($app))
func (r *ProviderRegistry) Register(provider ServiceProvider) {
	r.mu.Lock()
	if r.registered[provider] {
		r.mu.Unlock()
		return
	}
	r.registered[provider] = true

	if provider.IsDeferred() {
		for _, abstract := range provider.Provides() {
			r.deferred[abstract] = provider
		}
		r.mu.Unlock()
		r.interceptDeferred(provider)
		return
	}
	r.eager = append(r.eager, provider)
	booted := r.booted
	r.mu.Unlock()

	provider.Register(r.app)
	if booted {
		provider.Boot(r.app)
	}
}

// interceptDeferred registers a placeholder binding for each deferred
// abstract. The first resolution of any of them registers (and, after Boot,
// boots) the provider, whose own bindings replace the placeholders.
func (r *ProviderRegistry) interceptDeferred(provider ServiceProvider) {
	for _, abstract := range provider.Provides() {
		abs := abstract
		r.app.Bind(abs, func(c *Container) any {
			r.load(provider)
			// Resolve from the root: this view already has abs on its path.
			return r.app.Make(abs)
		})
	}
}

// load registers a deferred provider once. Concurrent callers wait until the
// provider's bindings are in place.
func (r *ProviderRegistry) load(provider ServiceProvider) {
	r.mu.Lock()
	once, ok := r.loading[provider]
	if !ok {
		once = new(sync.Once)
		r.loading[provider] = once
	}
	r.mu.Unlock()

	once.Do(func() {
		r.mu.Lock()
		for abs, p := range r.deferred {
			if p == provider {
				delete(r.deferred, abs)
			}
		}
		booted := r.booted
		r.mu.Unlock()

		provider.Register(r.app)
		if booted {
			provider.Boot(r.app)
		}
	})
}

// Boot calls Boot() on all eager providers.
// Must be called after ALL providers have been registered.
//
//	// Laravel: $app->boot()
func (r *ProviderRegistry) Boot() {
	r.mu.Lock()
	if r.booted {
		r.mu.Unlock()
		return
	}
	r.booted = true
	providers := append([]ServiceProvider(nil), r.eager...)
	r.mu.Unlock()

	for _, provider := range providers {
		provider.Boot(r.app)
	}
}

// Booted returns true if Boot() has been called.
func (r *ProviderRegistry) Booted() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.booted
}

// Providers returns all registered eager providers.
func (r *ProviderRegistry) Providers() []ServiceProvider {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]ServiceProvider(nil), r.eager...)
}
