package monitors

import (
	"time"

	"github.com/km-arc/go-gems/framework/container"
)

type composite []container.Monitor

// Composite returns a monitor that forwards every notification to ms in
// order. NewBehavior threads the adapter through each of them and
// NoComponentFound returns the first non-nil component.
func Composite(ms ...container.Monitor) container.Monitor {
	out := make(composite, 0, len(ms))
	for _, m := range ms {
		if m != nil {
			out = append(out, m)
		}
	}
	return out
}

func (c composite) NewBehavior(a container.Adapter) container.Adapter {
	for _, m := range c {
		a = m.NewBehavior(a)
	}
	return a
}

func (c composite) Instantiated(key string, instance any, took time.Duration) {
	for _, m := range c {
		m.Instantiated(key, instance, took)
	}
}

func (c composite) InstantiationFailed(key string, err error) {
	for _, m := range c {
		m.InstantiationFailed(key, err)
	}
}

func (c composite) NoComponentFound(ctr *container.Container, key any) any {
	for _, m := range c {
		if inst := m.NoComponentFound(ctr, key); inst != nil {
			return inst
		}
	}
	return nil
}
