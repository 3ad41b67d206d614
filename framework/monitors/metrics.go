package monitors

import (
	"errors"
	"reflect"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/km-arc/go-gems/framework/container"
)

// Metrics counts instantiations, failures and misses and records how long
// instantiation takes.
type Metrics struct {
	instantiations *prometheus.CounterVec
	failures       *prometheus.CounterVec
	misses         *prometheus.CounterVec
	duration       *prometheus.HistogramVec
}

// NewMetrics creates the collectors and registers them with reg. Collectors
// already registered by an earlier Metrics are reused, so several containers
// can report into one registry.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		instantiations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "gems_component_instantiations_total",
				Help: "Components instantiated by the container",
			},
			[]string{"key"},
		),
		failures: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "gems_component_instantiation_failures_total",
				Help: "Component instantiations that returned an error",
			},
			[]string{"key"},
		),
		misses: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "gems_component_lookup_misses_total",
				Help: "Lookups no container in the chain could satisfy",
			},
			[]string{"kind"}, // "type" or "key"
		),
		duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "gems_component_instantiation_seconds",
				Help:    "Time spent instantiating components",
				Buckets: prometheus.ExponentialBuckets(0.00001, 10, 7),
			},
			[]string{"key"},
		),
	}

	var err error
	m.instantiations, err = register(reg, m.instantiations)
	if err != nil {
		return nil, err
	}
	m.failures, err = register(reg, m.failures)
	if err != nil {
		return nil, err
	}
	m.misses, err = register(reg, m.misses)
	if err != nil {
		return nil, err
	}
	m.duration, err = register(reg, m.duration)
	if err != nil {
		return nil, err
	}
	return m, nil
}

func register[C prometheus.Collector](reg prometheus.Registerer, c C) (C, error) {
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(C); ok {
				return existing, nil
			}
		}
		return c, err
	}
	return c, nil
}

func (m *Metrics) NewBehavior(a container.Adapter) container.Adapter { return a }

func (m *Metrics) Instantiated(key string, _ any, took time.Duration) {
	m.instantiations.WithLabelValues(key).Inc()
	m.duration.WithLabelValues(key).Observe(took.Seconds())
}

func (m *Metrics) InstantiationFailed(key string, _ error) {
	m.failures.WithLabelValues(key).Inc()
}

func (m *Metrics) NoComponentFound(_ *container.Container, key any) any {
	kind := "key"
	if _, ok := key.(reflect.Type); ok {
		kind = "type"
	}
	m.misses.WithLabelValues(kind).Inc()
	return nil
}
