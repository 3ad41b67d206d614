package demo

import (
	"time"

	"go.uber.org/atomic"

	"github.com/km-arc/go-gems/framework/behaviors"
)

// Counter counts visits. Since is stamped by the decorator when the
// container creates it.
type Counter struct {
	Since time.Time
	n     atomic.Int64
}

// Inc adds one visit and returns the new count.
func (c *Counter) Inc() int64 { return c.n.Inc() }

// Count returns the number of visits.
func (c *Counter) Count() int64 { return c.n.Load() }

// Stamp decorates every new Counter with its creation time. Other
// components are left untouched.
func Stamp(now func() time.Time) behaviors.Decorator {
	return behaviors.DecoratorFunc(func(instance any) {
		if c, ok := instance.(*Counter); ok {
			c.Since = now()
		}
	})
}
