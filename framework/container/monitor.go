package container

import "time"

// Monitor observes a container. It is told about every instantiation and
// gets the last word when a component cannot be found.
type Monitor interface {
	// NewBehavior is called with each behavior adapter as it is created and
	// returns the adapter to register, normally the same one.
	NewBehavior(a Adapter) Adapter

	Instantiated(key string, instance any, took time.Duration)
	InstantiationFailed(key string, err error)

	// NoComponentFound is called when neither c nor its parents could supply
	// key. Only the monitor of the container the lookup started from is
	// asked. key is the abstract string, or a reflect.Type when the lookup
	// came from MakeType. A non-nil result is used as the component; it is
	// not cached. A monitor that can name the component but fails to build
	// it panics with a *CompositionError, which the lookup returns.
	NoComponentFound(c *Container, key any) any
}

// NullMonitor does nothing. Embed it to implement only part of Monitor.
type NullMonitor struct{}

func (NullMonitor) NewBehavior(a Adapter) Adapter            { return a }
func (NullMonitor) Instantiated(string, any, time.Duration)  {}
func (NullMonitor) InstantiationFailed(string, error)        {}
func (NullMonitor) NoComponentFound(_ *Container, _ any) any { return nil }
