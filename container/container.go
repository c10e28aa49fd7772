package container

import (
	"fmt"
	"slices"
	"sync"
)

// ── Binding types ─────────────────────────────────────────────────────────────

// Factory builds a concrete value from the container. A factory may resolve
// its own dependencies through c; cycles are detected and reported rather
// than recursed into.
type Factory func(c *Container) (any, error)

// binding holds a registered factory and whether its result is cached.
type binding struct {
	factory   Factory
	singleton bool
}

// Extender wraps an already-resolved instance with decorator logic.
type Extender func(instance any, c *Container) any

// ── Container ─────────────────────────────────────────────────────────────────

// Container is the IoC container. It maps abstract string keys to concrete
// construction strategies: transient factories (Bind), cached factories
// (Singleton), and pre-built values (Instance). Registration is last write
// wins; no conflict detection is performed.
//
// The container is created once per application and passed explicitly to
// everything that needs it. There is no package-level instance.
//
// Bindings are registered during the single-threaded bootstrap phase and are
// expected to be stable afterwards; resolution after boot is safe for
// concurrent use.
type Container struct {
	mu sync.RWMutex

	// abstract → binding
	bindings map[string]*binding

	// abstract → resolved singleton instance
	instances map[string]any

	// alias → canonical abstract
	aliases map[string]string

	// abstract → extender funcs, applied in registration order
	extenders map[string][]Extender

	// tag → []abstract
	tags map[string][]string

	// contextual: when[concrete][abstract] = factory
	contextual map[string]map[string]Factory

	// rebound callbacks: abstract → []func(any)
	reboundCallbacks map[string][]func(any)

	// resolved event callbacks
	afterResolving []func(abstract string, instance any)

	// per-goroutine resolution chains for cycle detection and contextual lookup
	resolvingMu sync.Mutex
	resolving   map[int64]*resolution
}

// resolution tracks one goroutine's in-progress resolution chain.
type resolution struct {
	chain []frame
	seen  map[string]bool
}

// frame is one in-progress build. guard identifies it for cycle detection;
// name is the canonical abstract, used for contextual lookup and error
// chains. The two differ only while a deferred provider re-resolves the
// binding it just replaced.
type frame struct {
	guard string
	name  string
}

// New creates an empty container, bound to itself under "container".
func New() *Container {
	c := &Container{
		bindings:         make(map[string]*binding),
		instances:        make(map[string]any),
		aliases:          make(map[string]string),
		extenders:        make(map[string][]Extender),
		tags:             make(map[string][]string),
		contextual:       make(map[string]map[string]Factory),
		reboundCallbacks: make(map[string][]func(any)),
		resolving:        make(map[int64]*resolution),
	}
	c.Instance("container", c)
	return c
}

// ── Registration ──────────────────────────────────────────────────────────────

// Bind registers a transient factory: every Make constructs a new value.
// A prior binding for the same abstract is overwritten.
func (c *Container) Bind(abstract string, factory Factory) {
	c.register(abstract, factory, false)
}

// Singleton registers a factory whose result is cached after the first
// resolution. Every later Make for the abstract returns the same instance.
func (c *Container) Singleton(abstract string, factory Factory) {
	c.register(abstract, factory, true)
}

// Instance registers a pre-built value as a singleton.
func (c *Container) Instance(abstract string, instance any) {
	c.mu.Lock()
	key := c.canonical(abstract)
	delete(c.bindings, key)
	c.instances[key] = instance
	c.mu.Unlock()

	c.fireRebound(abstract, instance)
}

// register installs a binding, dropping any cached instance so the abstract
// is rebuilt with the new factory. If the abstract had already been resolved,
// rebound callbacks fire with the freshly built value.
func (c *Container) register(abstract string, factory Factory, singleton bool) {
	c.mu.Lock()
	key := c.canonical(abstract)
	_, wasResolved := c.instances[key]
	delete(c.instances, key)
	c.bindings[key] = &binding{factory: factory, singleton: singleton}
	c.mu.Unlock()

	if wasResolved {
		if instance, err := c.Make(abstract); err == nil {
			c.fireRebound(abstract, instance)
		}
	}
}

// Alias registers an alternative name for an abstract.
func (c *Container) Alias(abstract, alias string) {
	if abstract == alias {
		panic(fmt.Sprintf("container: [%s] is aliased to itself", abstract))
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.aliases[alias] = c.canonical(abstract)
}

// ── Contextual binding ────────────────────────────────────────────────────────

// When starts a contextual binding chain: while the named concrete is being
// built, its dependency on an abstract resolves through the given factory.
func (c *Container) When(concrete string) *ContextualBuilder {
	return &ContextualBuilder{container: c, concrete: concrete}
}

func (c *Container) getContextual(concrete, abstract string) Factory {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if m, ok := c.contextual[concrete]; ok {
		return m[abstract]
	}
	return nil
}

// ── Extend ────────────────────────────────────────────────────────────────────

// Extend decorates the resolved instance of an abstract. If the abstract was
// already resolved as a singleton, the cached instance is re-wrapped and
// rebound callbacks fire. The extender runs unlocked, so it may resolve
// other abstracts from the container.
func (c *Container) Extend(abstract string, fn Extender) {
	c.mu.Lock()
	key := c.canonical(abstract)
	c.extenders[key] = append(c.extenders[key], fn)
	inst, hadInstance := c.instances[key]
	c.mu.Unlock()

	if !hadInstance {
		return
	}

	extended := fn(inst, c)

	c.mu.Lock()
	if _, ok := c.instances[key]; ok {
		c.instances[key] = extended
	}
	c.mu.Unlock()

	c.fireRebound(abstract, extended)
}

// ── Tags ──────────────────────────────────────────────────────────────────────

// Tag associates multiple abstracts under a named group.
func (c *Container) Tag(abstracts []string, tag string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.tags[tag] = append(c.tags[tag], abstracts...)
}

// Tagged resolves every abstract registered under a tag, in tag order.
func (c *Container) Tagged(tag string) ([]any, error) {
	c.mu.RLock()
	abstracts := append([]string(nil), c.tags[tag]...)
	c.mu.RUnlock()

	result := make([]any, 0, len(abstracts))
	for _, abs := range abstracts {
		v, err := c.Make(abs)
		if err != nil {
			return nil, err
		}
		result = append(result, v)
	}
	return result, nil
}

// ── Resolution ────────────────────────────────────────────────────────────────

// Make resolves an abstract from the container: a cached instance if one
// exists, otherwise the registered factory (cached afterwards for
// singletons). A circular chain of factories yields *CircularDependencyError;
// an unregistered abstract yields *BindingNotFoundError.
func (c *Container) Make(abstract string) (any, error) {
	key := c.canonicalLocked(abstract)

	c.mu.RLock()
	if inst, ok := c.instances[key]; ok {
		c.mu.RUnlock()
		return inst, nil
	}
	c.mu.RUnlock()

	if res := c.current(); res != nil {
		if res.seen[key] {
			return nil, &CircularDependencyError{Chain: append(res.names(), key)}
		}
		// Contextual binding: consult the abstract the current build stack
		// is working on.
		caller := res.chain[len(res.chain)-1].name
		if f := c.getContextual(caller, key); f != nil {
			return c.runFactory(key, key, f, false)
		}
	}

	c.mu.RLock()
	b, ok := c.bindings[key]
	c.mu.RUnlock()
	if !ok {
		return nil, &BindingNotFoundError{Abstract: abstract}
	}

	return c.runFactory(key, key, b.factory, b.singleton)
}

// MustMake is Make panicking on error, for bootstrap wiring where a missing
// binding is a programmer error.
func (c *Container) MustMake(abstract string) any {
	v, err := c.Make(abstract)
	if err != nil {
		panic(err)
	}
	return v
}

// resolveBinding re-resolves the current binding for key without re-entering
// the cycle guard under the same key. Used by deferred providers, whose
// placeholder factory replaces the binding mid-resolution and then builds
// from the real one.
func (c *Container) resolveBinding(key string) (any, error) {
	c.mu.RLock()
	if inst, ok := c.instances[key]; ok {
		c.mu.RUnlock()
		return inst, nil
	}
	b, ok := c.bindings[key]
	c.mu.RUnlock()
	if !ok {
		return nil, &BindingNotFoundError{Abstract: key}
	}
	return c.runFactory(key+" (deferred)", key, b.factory, b.singleton)
}

// runFactory executes a factory under the cycle guard, applies extenders,
// and caches the result for singletons. guardKey identifies the in-progress
// resolution; cacheKey is the canonical abstract used for extenders, the
// instance cache, and resolved callbacks.
func (c *Container) runFactory(guardKey, cacheKey string, f Factory, singleton bool) (any, error) {
	res := c.enter()
	fr := frame{guard: guardKey, name: cacheKey}
	res.push(fr)
	instance, err := f(c)
	res.pop(fr)
	c.leave(res)
	if err != nil {
		return nil, err
	}

	c.mu.RLock()
	exts := append([]Extender(nil), c.extenders[cacheKey]...)
	c.mu.RUnlock()
	for _, ext := range exts {
		instance = ext(instance, c)
	}

	if singleton {
		// first writer wins, so concurrent first resolutions converge on a
		// single cached instance
		c.mu.Lock()
		if existing, ok := c.instances[cacheKey]; ok {
			instance = existing
		} else {
			c.instances[cacheKey] = instance
		}
		c.mu.Unlock()
	}

	c.fireAfterResolving(cacheKey, instance)
	return instance, nil
}

// ── Resolution chain bookkeeping ──────────────────────────────────────────────

func (r *resolution) push(f frame) {
	r.chain = append(r.chain, f)
	r.seen[f.guard] = true
}

func (r *resolution) pop(f frame) {
	delete(r.seen, f.guard)
	if n := len(r.chain); n > 0 {
		r.chain = r.chain[:n-1]
	}
}

func (r *resolution) names() []string {
	out := make([]string, 0, len(r.chain))
	for _, f := range r.chain {
		out = append(out, f.name)
	}
	return out
}

// current returns this goroutine's in-progress resolution chain, or nil when
// no resolution is underway.
func (c *Container) current() *resolution {
	id := goid()
	c.resolvingMu.Lock()
	defer c.resolvingMu.Unlock()
	res := c.resolving[id]
	if res == nil || len(res.chain) == 0 {
		return nil
	}
	return res
}

// enter returns this goroutine's resolution chain, creating it on first use.
func (c *Container) enter() *resolution {
	id := goid()
	c.resolvingMu.Lock()
	defer c.resolvingMu.Unlock()
	res, ok := c.resolving[id]
	if !ok {
		res = &resolution{seen: make(map[string]bool)}
		c.resolving[id] = res
	}
	return res
}

// leave discards the goroutine's chain once the outermost resolution is done.
func (c *Container) leave(res *resolution) {
	if len(res.chain) != 0 {
		return
	}
	id := goid()
	c.resolvingMu.Lock()
	delete(c.resolving, id)
	c.resolvingMu.Unlock()
}

// ── Introspection ─────────────────────────────────────────────────────────────

// Bound reports whether an abstract has a binding or a cached instance.
func (c *Container) Bound(abstract string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	key := c.canonical(abstract)
	_, hasBinding := c.bindings[key]
	_, hasInstance := c.instances[key]
	return hasBinding || hasInstance
}

// Resolved reports whether an abstract has been resolved at least once.
func (c *Container) Resolved(abstract string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, ok := c.instances[c.canonical(abstract)]
	return ok
}

// Forget removes the binding and any cached instance for an abstract.
func (c *Container) Forget(abstract string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	key := c.canonical(abstract)
	delete(c.bindings, key)
	delete(c.instances, key)
}

// Flush resets the container to empty, keeping only the self-binding.
func (c *Container) Flush() {
	c.mu.Lock()
	c.bindings = make(map[string]*binding)
	c.instances = make(map[string]any)
	c.aliases = make(map[string]string)
	c.extenders = make(map[string][]Extender)
	c.tags = make(map[string][]string)
	c.contextual = make(map[string]map[string]Factory)
	c.mu.Unlock()
	c.Instance("container", c)
}

// Bindings returns all registered abstract keys, for debugging.
func (c *Container) Bindings() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]string, 0, len(c.bindings)+len(c.instances))
	for k := range c.bindings {
		out = append(out, k)
	}
	for k := range c.instances {
		if _, already := c.bindings[k]; !already {
			out = append(out, k)
		}
	}
	return out
}

// canonical resolves an alias to its canonical key. Caller holds mu.
func (c *Container) canonical(abstract string) string {
	if target, ok := c.aliases[abstract]; ok {
		return target
	}
	return abstract
}

func (c *Container) canonicalLocked(abstract string) string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.canonical(abstract)
}

// ── Callbacks ─────────────────────────────────────────────────────────────────

// Rebinding registers a callback invoked whenever the abstract is re-bound
// after having been resolved.
func (c *Container) Rebinding(abstract string, cb func(any)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.reboundCallbacks[abstract] = append(c.reboundCallbacks[abstract], cb)
}

// AfterResolving registers a callback fired after any abstract resolves.
func (c *Container) AfterResolving(cb func(abstract string, instance any)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.afterResolving = append(c.afterResolving, cb)
}

func (c *Container) fireRebound(abstract string, instance any) {
	c.mu.RLock()
	cbs := slices.Clone(c.reboundCallbacks[abstract])
	c.mu.RUnlock()
	for _, cb := range cbs {
		cb(instance)
	}
}

func (c *Container) fireAfterResolving(abstract string, instance any) {
	c.mu.RLock()
	cbs := slices.Clone(c.afterResolving)
	c.mu.RUnlock()
	for _, cb := range cbs {
		cb(abstract, instance)
	}
}

// ── Generics helpers ──────────────────────────────────────────────────────────

// Resolve resolves an abstract and asserts its type.
//
//	cfg, err := container.Resolve[*config.Repository](c, "config")
func Resolve[T any](c *Container, abstract string) (T, error) {
	var zero T
	instance, err := c.Make(abstract)
	if err != nil {
		return zero, err
	}
	typed, ok := instance.(T)
	if !ok {
		return zero, &TypeMismatchError{
			Abstract: abstract,
			Expected: fmt.Sprintf("%T", zero),
			Got:      fmt.Sprintf("%T", instance),
		}
	}
	return typed, nil
}

// MustResolve is Resolve panicking on error.
func MustResolve[T any](c *Container, abstract string) T {
	v, err := Resolve[T](c, abstract)
	if err != nil {
		panic(err)
	}
	return v
}
