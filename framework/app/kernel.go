package app

import (
	"context"
	"errors"
	"net"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"
	"github.com/sourcegraph/conc/pool"
	"go.uber.org/multierr"

	"github.com/km-arc/go-gems/framework/config"
	"github.com/km-arc/go-gems/framework/container"
	"github.com/km-arc/go-gems/framework/logging"
	"github.com/km-arc/go-gems/framework/monitors"
	"github.com/km-arc/go-gems/framework/providers"
	"github.com/km-arc/go-gems/framework/routing"
	"github.com/km-arc/go-gems/framework/web"
)

// Version is the application version reported by the CLI and the serve log.
const Version = "0.1.0"

// Application is the top-level application container.
// It embeds the IoC Container and ProviderRegistry so user code can
// call app.Bind(), app.Singleton(), app.Register() directly —
// exactly like $app in Laravel's bootstrap/app.php.
type Application struct {
	*container.Container
	Providers *container.ProviderRegistry
}

type options struct {
	envFiles   []string
	cfg        *config.Config
	behaviors  []container.Behavior
	webOptions []web.Option
}

// Option configures New.
type Option func(o *options)

// WithEnvFiles loads configuration from files instead of ".env".
func WithEnvFiles(files ...string) Option {
	return func(o *options) { o.envFiles = files }
}

// WithConfig uses cfg instead of loading configuration from the environment.
func WithConfig(cfg *config.Config) Option {
	return func(o *options) { o.cfg = cfg }
}

// WithBehaviors sets the behaviors of the application container; session
// and request containers inherit them.
func WithBehaviors(behaviors ...container.Behavior) Option {
	return func(o *options) { o.behaviors = behaviors }
}

// WithWebOptions passes extra options to the web listener.
func WithWebOptions(opts ...web.Option) Option {
	return func(o *options) { o.webOptions = append(o.webOptions, opts...) }
}

// New creates the application. Configuration, the logger and the metrics
// registry are built first because the container's monitor reports to them.
func New(opts ...Option) *Application {
	o := &options{}
	for _, opt := range opts {
		opt(o)
	}
	cfg := o.cfg
	if cfg == nil {
		cfg = config.Load(o.envFiles...)
	}
	log := logging.New(cfg.Log)
	reg := providers.NewRegistry()
	metrics := newMetrics(cfg, log, reg)

	c := container.New(
		container.WithMonitor(newMonitor(log, metrics)),
		container.WithBehaviors(o.behaviors...),
	)
	registry := container.NewProviderRegistry(c)

	app := &Application{
		Container: c,
		Providers: registry,
	}

	// Register framework core providers (same order as Laravel)
	registry.Register(&providers.ConfigServiceProvider{Config: cfg})
	registry.Register(&providers.LoggingServiceProvider{Logger: log})
	registry.Register(&providers.MetricsServiceProvider{Registry: reg, Monitor: metrics})
	registry.Register(&providers.WebServiceProvider{Options: o.webOptions})
	registry.Register(&providers.RoutingServiceProvider{})

	return app
}

// newMetrics returns the container metrics, or nil when metrics are disabled
// or cannot be registered.
func newMetrics(cfg *config.Config, log *logrus.Logger, reg prometheus.Registerer) *monitors.Metrics {
	if !cfg.Metrics.Enabled {
		return nil
	}
	metrics, err := monitors.NewMetrics(reg)
	if err != nil {
		log.WithError(err).Warn("container metrics disabled")
		return nil
	}
	return metrics
}

func newMonitor(log *logrus.Logger, metrics *monitors.Metrics) container.Monitor {
	logMonitor := monitors.NewLogging(log)
	if metrics == nil {
		return logMonitor
	}
	return monitors.Composite(logMonitor, metrics)
}

// Register adds a ServiceProvider to the application.
func (a *Application) Register(provider container.ServiceProvider) {
	a.Providers.Register(provider)
}

// Boot runs the Boot() phase on all providers.
func (a *Application) Boot() {
	a.Providers.Boot()
}

// Config resolves *config.Config from the container.
func (a *Application) Config() *config.Config {
	return container.Resolve[*config.Config](a.Container, "config")
}

// Logger resolves the application logger.
func (a *Application) Logger() *logrus.Logger {
	return container.Resolve[*logrus.Logger](a.Container, "log")
}

// Router resolves *routing.Router from the container.
func (a *Application) Router() *routing.Router {
	return container.Resolve[*routing.Router](a.Container, "router")
}

// Listener resolves the request-scope listener.
func (a *Application) Listener() *web.Listener {
	return container.Resolve[*web.Listener](a.Container, "web.listener")
}

// Run listens on the configured port and serves until ctx is done; see Serve.
func (a *Application) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", ":"+a.Config().App.Port)
	if err != nil {
		return err
	}
	return a.Serve(ctx, ln)
}

// Serve boots the application (if needed), serves HTTP on ln and sweeps
// expired sessions until ctx is done or the server fails. It then shuts the
// server down gracefully and closes the application.
func (a *Application) Serve(ctx context.Context, ln net.Listener) error {
	if !a.Providers.Booted() {
		a.Boot()
	}
	cfg := a.Config()
	log := a.Logger()
	listener := a.Listener()
	server := &http.Server{Handler: a.Router()}

	log.WithFields(logrus.Fields{
		"addr":    ln.Addr().String(),
		"env":     a.Environment(),
		"version": Version,
	}).Infof("%s running", cfg.App.Name)

	p := pool.New().WithContext(ctx).WithCancelOnError()
	p.Go(func(context.Context) error {
		if err := server.Serve(ln); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	p.Go(func(ctx context.Context) error {
		<-ctx.Done()
		shutdown, cancel := context.WithTimeout(context.Background(), cfg.App.ShutdownTimeout)
		defer cancel()
		return server.Shutdown(shutdown)
	})
	p.Go(func(ctx context.Context) error {
		err := listener.Run(ctx)
		if ctx.Err() != nil {
			return nil
		}
		return err
	})

	err := p.Wait()
	log.Info("shut down")
	return multierr.Append(err, a.Close())
}

// Close disposes sessions, the application's managed components and the
// listener.
func (a *Application) Close() error {
	if a.Resolved("web.listener") {
		return a.Listener().Close()
	}
	return a.Dispose()
}

// Environment returns APP_ENV value.
func (a *Application) Environment() string { return a.Config().App.Env }
