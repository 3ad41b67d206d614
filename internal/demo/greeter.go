// Package demo wires a small application showing the container behaviors:
// a hot-swappable greeter, a decorated per-session visit counter and a
// controller the request scope builds on demand.
package demo

import (
	"github.com/km-arc/go-gems/framework/behaviors"
)

// Greeter greets someone.
type Greeter interface {
	Greet(name string) string
}

// Greeting greets with a fixed salutation.
type Greeting struct {
	Text string
}

func (g Greeting) Greet(name string) string { return g.Text + ", " + name + "!" }

// GreeterProxy forwards to whatever Greeter is currently installed in its
// Swappable.
type GreeterProxy struct {
	s *behaviors.Swappable
}

// NewGreeterProxy is the behaviors.ProxyFunc for the "greeter" component.
func NewGreeterProxy(s *behaviors.Swappable) any { return GreeterProxy{s: s} }

func (p GreeterProxy) Greet(name string) string {
	g := behaviors.Delegate[Greeter](p.s)
	if g == nil {
		return name
	}
	return g.Greet(name)
}
