package web

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"go.uber.org/atomic"
	"go.uber.org/multierr"

	"github.com/km-arc/go-gems/framework/container"
	gohttp "github.com/km-arc/go-gems/framework/http"
	"github.com/km-arc/go-gems/framework/logging"
)

const (
	DefaultCookieName = "gems_session"
	DefaultSessionTTL = 30 * time.Minute
)

// Keys under which the request container holds the current request.
var (
	RequestKey        = container.KeyFor[http.Request]()
	ResponseWriterKey = container.KeyFor[http.ResponseWriter]()
	GoHTTPRequestKey  = container.KeyFor[gohttp.Request]()
)

// SessionIDKey holds the session id in every session container.
const SessionIDKey = "session.id"

// Option configures a Listener.
type Option func(l *Listener)

// WithRequestMonitor sets the factory for the monitor of each request
// container. By default request containers inherit the session's monitor.
func WithRequestMonitor(fn func() container.Monitor) Option {
	return func(l *Listener) { l.requestMonitor = fn }
}

// WithSessionScope adds a registrar run on every new session container.
func WithSessionScope(fn func(c *container.Container)) Option {
	return func(l *Listener) { l.sessionScope = append(l.sessionScope, fn) }
}

// WithRequestScope adds a registrar run on every request container, after
// the request itself has been registered.
func WithRequestScope(fn func(c *container.Container)) Option {
	return func(l *Listener) { l.requestScope = append(l.requestScope, fn) }
}

// WithSessionTTL sets how long an idle session lives.
func WithSessionTTL(ttl time.Duration) Option {
	return func(l *Listener) {
		if ttl > 0 {
			l.ttl = ttl
		}
	}
}

// WithCookieName sets the session cookie name.
func WithCookieName(name string) Option {
	return func(l *Listener) {
		if name != "" {
			l.cookie = name
		}
	}
}

// WithLogger sets the logger used for disposal errors and session events.
func WithLogger(log logrus.FieldLogger) Option {
	return func(l *Listener) {
		if log != nil {
			l.log = log
		}
	}
}

// Listener builds the session and request scopes around an application
// container.
type Listener struct {
	app *container.Container
	log logrus.FieldLogger

	cookie         string
	ttl            time.Duration
	requestMonitor func() container.Monitor
	sessionScope   []func(*container.Container)
	requestScope   []func(*container.Container)

	mu       sync.Mutex
	sessions map[string]*session
	closed   atomic.Bool
}

// New returns a listener for app.
func New(app *container.Container, opts ...Option) *Listener {
	l := &Listener{
		app:      app,
		log:      logging.Discard(),
		cookie:   DefaultCookieName,
		ttl:      DefaultSessionTTL,
		sessions: make(map[string]*session),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Container returns the application container.
func (l *Listener) Container() *container.Container { return l.app }

// CookieName returns the session cookie name.
func (l *Listener) CookieName() string { return l.cookie }

// Middleware serves every request with its own request container, reachable
// through RequestContainer. The container is disposed once next returns.
func (l *Listener) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if l.closed.Load() {
			gohttp.NewResponse(w).Error(http.StatusServiceUnavailable, "Shutting down.")
			return
		}

		r = gohttp.WithAttributes(r)
		sess := l.session(w, r)
		sess.touch(time.Now())

		var opts []container.Option
		if l.requestMonitor != nil {
			opts = append(opts, container.WithMonitor(l.requestMonitor()))
		}
		rc := sess.container.NewChild(opts...)
		r = r.WithContext(WithContainer(r.Context(), rc))

		rc.Instance(RequestKey, r)
		rc.Instance(ResponseWriterKey, w)
		rc.Instance(GoHTTPRequestKey, gohttp.NewRequest(r))
		for _, fn := range l.requestScope {
			fn(rc)
		}

		defer func() {
			if err := rc.Dispose(); err != nil {
				l.log.WithError(err).WithField("path", r.URL.Path).Error("disposing request container")
			}
		}()
		next.ServeHTTP(w, r)
	})
}

// Close disposes every session container and then the application
// container. Requests arriving afterwards get 503.
func (l *Listener) Close() error {
	if l.closed.Swap(true) {
		return nil
	}

	l.mu.Lock()
	sessions := l.sessions
	l.sessions = make(map[string]*session)
	l.mu.Unlock()

	var err error
	for _, s := range sessions {
		err = multierr.Append(err, s.dispose())
	}
	return multierr.Append(err, l.app.Dispose())
}

// ── Context ───────────────────────────────────────────────────────────────────

type containerKey struct{}

// WithContainer returns ctx carrying c.
func WithContainer(ctx context.Context, c *container.Container) context.Context {
	return context.WithValue(ctx, containerKey{}, c)
}

// FromContext returns the request container stored in ctx.
func FromContext(ctx context.Context) (*container.Container, bool) {
	c, ok := ctx.Value(containerKey{}).(*container.Container)
	return c, ok
}

// RequestContainer returns r's request container, or nil outside Middleware.
func RequestContainer(r *http.Request) *container.Container {
	c, _ := FromContext(r.Context())
	return c
}

// Inject adapts a handler taking a component of type T. The component is
// resolved by type from the request container; lookups that fail are
// answered with Response.Composition.
//
//	router.Get("/hello/{name}", web.Inject(func(h *Hello, w http.ResponseWriter, r *http.Request) {...}))
func Inject[T any](fn func(component T, w http.ResponseWriter, r *http.Request)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c := RequestContainer(r)
		if c == nil {
			gohttp.NewResponse(w).ServerError("No request container.")
			return
		}
		component, err := container.ResolveType[T](c)
		if err != nil {
			gohttp.NewResponse(w).Composition(err)
			return
		}
		fn(component, w, r)
	}
}
