// Package monitors provides container.Monitor implementations for
// observing a container: structured logging through logrus, Prometheus
// metrics, and a composite that fans out to several monitors.
//
//	m := monitors.Composite(
//	    monitors.NewLogging(log),
//	    metrics,
//	    web.LateInstantiatingMonitor{},
//	)
//	c := container.New(container.WithMonitor(m))
//
// Only NoComponentFound returns a value; in a composite the first non-nil
// answer wins, so put monitors that only observe misses first.
package monitors
