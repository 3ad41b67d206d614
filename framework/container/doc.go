// Package container provides a Laravel-flavoured IoC (Inversion of Control)
// container with pluggable behaviors, monitors and scoped child containers.
//
// # Overview
//
// The container manages the instantiation and lifecycle of your application's
// dependencies. It supports transient bindings, singletons, pre-built instances,
// aliases, tags, contextual bindings, and extension.
//
// Every registration is turned into an Adapter, the factory object responsible
// for one component. Behaviors wrap those adapters (see package behaviors for
// Decorating and HotSwapping) and a Monitor observes instantiation and gets the
// last word on misses (see package web for late instantiation).
//
// Go has no runtime constructor reflection, so wiring is done with explicit
// factory functions; AddType autowires plain structs through `inject` tags.
//
// # Container Lifecycle
//
//  1. Create: c := container.New(container.WithBehaviors(...), container.WithMonitor(...))
//  2. Register providers: registry.Register(&MyProvider{})
//  3. Boot: registry.Boot()        — safe to resolve everything after this
//  4. Serve requests from child containers: req := c.NewChild()
//  5. Dispose: req.Dispose(), c.Dispose()
//
// # Bindings
//
//	// Transient — new instance every Make()
//	// Laravel: $app->bind(Foo::class, fn($app) => new Foo)
//	c.Bind("Foo", func(c *container.Container) any { return &Foo{} })
//
//	// Singleton — created once, reused
//	// Laravel: $app->singleton(Cache::class, fn($app) => new RedisCache)
//	c.Singleton("cache", func(c *container.Container) any {
//	    cfg := container.Resolve[*Config](c, "config")
//	    return cache.NewRedis(cfg)
//	})
//
//	// Pre-built value
//	// Laravel: $app->instance(Config::class, $config)
//	c.Instance("config", myConfig)
//
//	// Alias
//	// Laravel: $app->alias(Cache::class, 'cache')
//	c.Alias("cache", "cacheManager")
//
// # Resolving
//
//	// Untyped; panics with *CompositionError on failure
//	// Laravel: $app->make(Cache::class)
//	raw := c.Make("cache")
//
//	// Error-returning
//	raw, err := c.Get("cache")
//
//	// Generic (preferred — no type assertion required)
//	cache := container.Resolve[*RedisCache](c, "cache")
//	cache, err := container.Lookup[*RedisCache](c, "cache")
//
// Resolution order: contextual binding, cached singleton, local adapter,
// parent container, Monitor.NoComponentFound. Parents are searched without
// their monitors; only the container the lookup started from reports a miss.
//
// # Behaviors and Properties
//
//	c := container.New(container.WithBehaviors(behaviors.HotSwapping()))
//	c.Singleton("greeter", newGreeter)                         // hot-swappable
//	c.Singleton("clock", newClock, container.NoHotSwap)        // left alone
//
// # Autowiring
//
//	type Controller struct {
//	    Repo UserRepository `inject:"repo"`
//	}
//	c.AddType(reflect.TypeOf(&Controller{}))
//	ctrl, err := container.ResolveType[*Controller](c)
//
// # Contextual Binding
//
//	// Laravel: $app->when(PhotoController::class)
//	//              ->needs(Filesystem::class)
//	//              ->give(fn() => new S3Filesystem)
//	c.When("PhotoController").
//	    Needs("Filesystem").
//	    Give(func(c *container.Container) any { return &S3Filesystem{} })
//
// # Tags
//
//	// Laravel: $app->tag([CpuReport::class, MemReport::class], 'reports')
//	c.Tag([]string{"CpuReport", "MemReport"}, "reports")
//	reports := c.Tagged("reports")  // []any
//
// # Extend / Decorate
//
//	// Laravel: $app->extend(Logger::class, fn($logger, $app) => new TimestampLogger($logger))
//	c.Extend("logger", func(instance any, c *container.Container) any {
//	    return &TimestampLogger{Inner: instance.(*Logger)}
//	})
//
// # Service Providers
//
//	type AppServiceProvider struct{ container.BaseProvider }
//
//	func (p *AppServiceProvider) Register(app *container.Container) {
//	    app.Singleton("mailer", func(c *container.Container) any {
//	        cfg := container.Resolve[*config.Config](c, "config")
//	        return mail.NewSMTP(cfg.App.URL)
//	    })
//	}
//
//	func (p *AppServiceProvider) Boot(app *container.Container) {
//	    // safe to resolve other bindings here
//	}
//
//	registry := container.NewProviderRegistry(c)
//	registry.Register(&AppServiceProvider{})
//	registry.Boot()
//
// # Deferred Providers
//
//	type HeavyProvider struct{ container.BaseProvider }
//
//	func (p *HeavyProvider) IsDeferred() bool     { return true }
//	func (p *HeavyProvider) Provides() []string   { return []string{"heavy"} }
//	func (p *HeavyProvider) Register(app *container.Container) {
//	    app.Singleton("heavy", func(c *container.Container) any {
//	        return heavySetup() // only called on first app.Make("heavy")
//	    })
//	}
package container
