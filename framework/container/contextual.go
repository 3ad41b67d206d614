package container

import "reflect"

// ContextualBuilder implements the fluent contextual binding API.
//
//	// Laravel: $app->when(PhotoController::class)->needs(Filesystem::class)->give(...)
//	c.When("PhotoController").Needs("Filesystem").Give(func(c *container.Container) any {
//	    return filesystem.NewS3(...)
//	})
//
// The concrete is matched against the abstract currently being built, so a
// contextual binding only applies to dependencies its concrete resolves from
// inside its own factory.
type ContextualBuilder struct {
	container *Container
	concrete  string
	needs     string
}

// Needs specifies which abstract the concrete type depends on.
func (b *ContextualBuilder) Needs(abstract string) *ContextualBuilder {
	b.needs = abstract
	return b
}

// Give provides the factory that should be used when the concrete type
// resolves the specified abstract.
func (b *ContextualBuilder) Give(factory Factory) {
	c := b.container
	c.mu.Lock()
	defer c.mu.Unlock()

	concrete := c.canonical(b.concrete)
	if _, ok := c.contextual[concrete]; !ok {
		c.contextual[concrete] = make(map[string]Factory)
	}
	c.contextual[concrete][b.needs] = factory
}

// GiveValue is a shorthand for Give when the value is a simple scalar or
// pre-built instance (no factory logic needed).
//
//	// Laravel: ->give('/tmp/photos')
//	c.When("PhotoController").Needs("storagePath").GiveValue("/tmp/photos")
func (b *ContextualBuilder) GiveValue(value any) {
	b.Give(func(_ *Container) any { return value })
}

// GiveType autowires a fresh t each time the concrete needs the abstract.
//
//	c.When("ReportJob").Needs("Exporter").GiveType(reflect.TypeOf(&CSVExporter{}))
func (b *ContextualBuilder) GiveType(t reflect.Type) {
	adapter := NewTypeAdapter(t)
	b.Give(func(c *Container) any {
		v, err := adapter.Instance(c)
		if err != nil {
			panic(&CompositionError{Key: adapter.Key(), Err: err})
		}
		return v
	})
}
