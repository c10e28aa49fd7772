package container

// ContextualBuilder is the fluent contextual-binding API: while the named
// concrete is being built, its dependency on an abstract resolves through a
// dedicated factory.
//
//	c.When("PhotoController").Needs("storage").Give(func(c *container.Container) (any, error) {
//	    return storage.NewS3(), nil
//	})
type ContextualBuilder struct {
	container *Container
	concrete  string
	needs     string
}

// Needs names the abstract the concrete depends on.
func (b *ContextualBuilder) Needs(abstract string) *ContextualBuilder {
	b.needs = abstract
	return b
}

// Give installs the factory used when the concrete resolves the abstract.
func (b *ContextualBuilder) Give(factory Factory) {
	b.container.mu.Lock()
	defer b.container.mu.Unlock()

	if _, ok := b.container.contextual[b.concrete]; !ok {
		b.container.contextual[b.concrete] = make(map[string]Factory)
	}
	b.container.contextual[b.concrete][b.needs] = factory
}

// GiveValue is Give for a pre-built value or scalar.
func (b *ContextualBuilder) GiveValue(value any) {
	b.Give(func(*Container) (any, error) { return value, nil })
}
