// Package behaviors provides container behaviors: adapter-factory middleware
// that layers cross-cutting functionality over every component a container
// creates.
//
// # Decorating
//
// Decorating runs a side-effecting Decorator on each freshly created instance
// and hands back the very same instance.
//
//	audit := behaviors.DecoratorFunc(func(instance any) {
//	    log.WithField("type", fmt.Sprintf("%T", instance)).Debug("created")
//	})
//	c := container.New(container.WithBehaviors(behaviors.Decorating(audit)))
//
// # Hot swapping
//
// HotSwapping hides a component behind a proxy whose backing implementation
// can be replaced at runtime. Go has no dynamic proxies, so the proxy is a
// small struct written against the component's interface:
//
//	type greeterProxy struct{ s *behaviors.Swappable }
//
//	func (p greeterProxy) Greet(name string) string {
//	    return behaviors.Delegate[Greeter](p.s).Greet(name)
//	}
//
//	c := container.New(container.WithBehaviors(behaviors.HotSwapping(
//	    behaviors.WithProxy("greeter", func(s *behaviors.Swappable) any { return greeterProxy{s} }),
//	)))
//	c.Singleton("greeter", func(*container.Container) any { return &English{} })
//
//	g := container.Resolve[Greeter](c, "greeter")  // greeterProxy
//	hs, _ := behaviors.HotSwappableFor(c, "greeter")
//	old := hs.SwapRealInstance(&French{})          // g now speaks French
//
// Without a registered proxy the component resolves to the *Swappable itself.
// Register a component with container.NoHotSwap to opt it out, or pass
// OptIn so that only components registered with container.HotSwap are
// wrapped.
//
// # Caching
//
// Caching keeps the first instance an adapter produces; container.NoCache opts
// a component out. Container singletons are cached by the container already,
// so Caching matters for AddAdapter registrations and transient bindings.
package behaviors
