package providers

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"

	"github.com/km-arc/go-gems/framework/config"
	"github.com/km-arc/go-gems/framework/container"
	"github.com/km-arc/go-gems/framework/logging"
	"github.com/km-arc/go-gems/framework/monitors"
	"github.com/km-arc/go-gems/framework/routing"
	"github.com/km-arc/go-gems/framework/web"
)

// ── ConfigServiceProvider ─────────────────────────────────────────────────────

// ConfigServiceProvider binds the application configuration as "config".
// A preloaded Config is bound as is; otherwise it is loaded from EnvFiles on
// first use.
//
// Bound abstracts:
//   - "config"         → *config.Config
//   - "configuration"  → alias of "config"
type ConfigServiceProvider struct {
	container.BaseProvider
	EnvFiles []string
	Config   *config.Config
}

func (p *ConfigServiceProvider) Register(app *container.Container) {
	if p.Config != nil {
		app.Instance("config", p.Config)
	} else {
		envFiles := p.EnvFiles
		app.Singleton("config", func(c *container.Container) any {
			return config.Load(envFiles...)
		})
	}
	app.Alias("config", "configuration")
}

// ── LoggingServiceProvider ────────────────────────────────────────────────────

// LoggingServiceProvider binds the logrus logger as "log", built from the
// "log" section of the configuration unless Logger is given.
//
// Bound abstracts:
//   - "log"  → *logrus.Logger
type LoggingServiceProvider struct {
	container.BaseProvider
	Logger *logrus.Logger
}

func (p *LoggingServiceProvider) Register(app *container.Container) {
	if p.Logger != nil {
		app.Instance("log", p.Logger)
		return
	}
	app.Singleton("log", func(c *container.Container) any {
		return logging.New(container.Resolve[*config.Config](c, "config").Log)
	})
}

// ── MetricsServiceProvider ────────────────────────────────────────────────────

// MetricsServiceProvider binds the Prometheus registry and the container
// metrics and, when metrics are enabled, exposes the registry on the
// configured path at boot. Monitor is the instance already reporting for the
// application container; without one it is created on first use.
//
// Bound abstracts:
//   - "metrics.registry"  → *prometheus.Registry
//   - "metrics.monitor"   → *monitors.Metrics
type MetricsServiceProvider struct {
	container.BaseProvider
	Registry *prometheus.Registry
	Monitor  *monitors.Metrics
}

// NewRegistry returns a registry carrying the Go runtime and process
// collectors.
func NewRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return reg
}

func (p *MetricsServiceProvider) Register(app *container.Container) {
	if p.Registry != nil {
		app.Instance("metrics.registry", p.Registry)
	} else {
		app.Singleton("metrics.registry", func(*container.Container) any { return NewRegistry() })
	}
	if p.Monitor != nil {
		app.Instance("metrics.monitor", p.Monitor)
		return
	}
	app.Singleton("metrics.monitor", func(c *container.Container) any {
		m, err := monitors.NewMetrics(container.Resolve[*prometheus.Registry](c, "metrics.registry"))
		if err != nil {
			panic(&container.CompositionError{Key: "metrics.monitor", Err: err})
		}
		return m
	})
}

func (p *MetricsServiceProvider) Boot(app *container.Container) {
	cfg := container.Resolve[*config.Config](app, "config")
	if !cfg.Metrics.Enabled {
		return
	}
	reg := container.Resolve[*prometheus.Registry](app, "metrics.registry")
	router := container.Resolve[*routing.Router](app, "router")
	router.Handle(cfg.Metrics.Path, promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}))
}

// ── WebServiceProvider ────────────────────────────────────────────────────────

// WebServiceProvider binds the request-scope listener. With late
// instantiation enabled, request containers combine a
// LateInstantiatingMonitor with the application's monitor.
//
// Bound abstracts:
//   - "web.listener"  → *web.Listener
type WebServiceProvider struct {
	container.BaseProvider
	Options []web.Option
}

func (p *WebServiceProvider) Register(app *container.Container) {
	extra := p.Options
	app.Singleton("web.listener", func(c *container.Container) any {
		cfg := container.Resolve[*config.Config](c, "config")
		log := container.Resolve[*logrus.Logger](c, "log")

		opts := []web.Option{
			web.WithLogger(log),
			web.WithCookieName(cfg.Session.Cookie),
			web.WithSessionTTL(cfg.Session.TTL),
		}
		if !cfg.Web.LateInstantiation {
			return web.New(app, append(opts, extra...)...)
		}
		appMonitor := app.Monitor()
		opts = append(opts, web.WithRequestMonitor(func() container.Monitor {
			return monitors.Composite(web.LateInstantiatingMonitor{}, appMonitor)
		}))
		return web.NewLateInstantiatingListener(app, append(opts, extra...)...)
	})
}

// ── RoutingServiceProvider ────────────────────────────────────────────────────

// RoutingServiceProvider registers the HTTP router with the web listener's
// middleware installed, so every route is served inside a request scope.
//
// Bound abstracts:
//   - "router"  → *routing.Router
type RoutingServiceProvider struct {
	container.BaseProvider
}

func (p *RoutingServiceProvider) Register(app *container.Container) {
	app.Singleton("router", func(c *container.Container) any {
		r := routing.New(container.Resolve[*logrus.Logger](c, "log"))
		if c.Bound("web.listener") {
			r.Middleware(container.Resolve[*web.Listener](c, "web.listener").Middleware)
		}
		return r
	})
}
