package container

import (
	"fmt"
	"sync"
)

// ── ServiceProvider ───────────────────────────────────────────────────────────

// ServiceProvider declares bindings and performs setup in two ordered
// phases. Register runs for every provider before any provider's Boot runs,
// so Boot may safely resolve bindings declared by other providers; Register
// must not.
//
//	type MailServiceProvider struct{ container.BaseProvider }
//
//	func (p *MailServiceProvider) Register(app *container.Container) error {
//	    app.Singleton("mailer", func(c *container.Container) (any, error) {
//	        cfg, err := container.Resolve[*config.Repository](c, "config")
//	        if err != nil {
//	            return nil, err
//	        }
//	        return mail.New(cfg), nil
//	    })
//	    return nil
//	}
type ServiceProvider interface {
	// Register binds services into the container. Resolving other bindings
	// here is a bug; use Boot.
	Register(app *Container) error

	// Boot runs after every provider has registered.
	Boot(app *Container) error

	// Provides lists the abstract keys this provider registers; consulted
	// only for deferred providers. Eager providers return nil.
	Provides() []string

	// IsDeferred reports whether the provider should register lazily, on
	// the first Make of one of its Provides keys.
	IsDeferred() bool
}

// BaseProvider is an embeddable struct supplying no-op Boot, Provides, and
// IsDeferred. Embed it and override what the provider needs.
type BaseProvider struct{}

func (BaseProvider) Boot(*Container) error { return nil }
func (BaseProvider) Provides() []string    { return nil }
func (BaseProvider) IsDeferred() bool      { return false }

// ── Named provider factories ──────────────────────────────────────────────────

var providerFactories = struct {
	mu sync.RWMutex
	m  map[string]func() ServiceProvider
}{m: make(map[string]func() ServiceProvider)}

// RegisterProviderFactory associates a provider name with a constructor, so
// configuration can select providers by name (the app.providers list).
// Typically called from a provider package's init, like database/sql driver
// registration.
func RegisterProviderFactory(name string, fn func() ServiceProvider) {
	providerFactories.mu.Lock()
	defer providerFactories.mu.Unlock()
	providerFactories.m[name] = fn
}

func providerFor(name string) (ServiceProvider, error) {
	providerFactories.mu.RLock()
	fn, ok := providerFactories.m[name]
	providerFactories.mu.RUnlock()
	if !ok {
		return nil, &UnknownProviderError{Name: name}
	}
	return fn(), nil
}

// ── ProviderRegistry ──────────────────────────────────────────────────────────

// ProviderRegistry owns the provider lifecycle: ordered registration, the
// global register-before-boot barrier, and lazy loading of deferred
// providers. Boot runs each eager provider's Boot in registration order,
// exactly once; a provider registered after Boot is booted immediately.
//
// Any Register or Boot error aborts bootstrap and propagates to the caller;
// there is no partial-failure recovery. Registration and Boot happen during
// single-threaded bootstrap, but deferred providers load on the first Make
// of one of their keys, which may be a concurrent request; that path is
// safe for concurrent use.
type ProviderRegistry struct {
	app *Container

	mu         sync.Mutex
	eager      []ServiceProvider
	booted     bool
	registered map[ServiceProvider]bool
	loads      map[ServiceProvider]*deferredLoad
}

// deferredLoad realizes one deferred provider exactly once, even when
// concurrent first requests race on its keys.
type deferredLoad struct {
	once sync.Once
	err  error
}

// NewProviderRegistry creates a registry bound to app.
func NewProviderRegistry(app *Container) *ProviderRegistry {
	return &ProviderRegistry{
		app:        app,
		registered: make(map[ServiceProvider]bool),
		loads:      make(map[ServiceProvider]*deferredLoad),
	}
}

// Register adds a provider and runs its Register phase (or wires lazy
// bindings for deferred providers). Registering the same provider instance
// twice is a no-op.
func (r *ProviderRegistry) Register(provider ServiceProvider) error {
	r.mu.Lock()
	if r.registered[provider] {
		r.mu.Unlock()
		return nil
	}
	r.registered[provider] = true
	r.mu.Unlock()

	if provider.IsDeferred() {
		r.interceptDeferred(provider)
		return nil
	}

	if err := provider.Register(r.app); err != nil {
		return fmt.Errorf("register provider %T: %w", provider, err)
	}

	r.mu.Lock()
	r.eager = append(r.eager, provider)
	booted := r.booted
	r.mu.Unlock()

	if booted {
		if err := provider.Boot(r.app); err != nil {
			return fmt.Errorf("boot provider %T: %w", provider, err)
		}
	}
	return nil
}

// RegisterNamed instantiates and registers the named providers in declared
// order. Unknown names yield *UnknownProviderError.
func (r *ProviderRegistry) RegisterNamed(names []string) error {
	for _, name := range names {
		provider, err := providerFor(name)
		if err != nil {
			return err
		}
		if err := r.Register(provider); err != nil {
			return err
		}
	}
	return nil
}

// interceptDeferred installs a placeholder binding for each Provides key.
// The first Make runs the provider's real Register (and Boot, when the
// registry is already booted), then resolves through the replacement binding.
func (r *ProviderRegistry) interceptDeferred(provider ServiceProvider) {
	for _, abstract := range provider.Provides() {
		abs := abstract
		r.app.Bind(abs, func(c *Container) (any, error) {
			if err := r.load(provider, c); err != nil {
				return nil, err
			}
			return c.resolveBinding(abs)
		})
	}
}

// load realizes a deferred provider exactly once. Concurrent callers block
// on the same sync.Once and observe the first attempt's outcome.
func (r *ProviderRegistry) load(provider ServiceProvider, c *Container) error {
	r.mu.Lock()
	dl, ok := r.loads[provider]
	if !ok {
		dl = &deferredLoad{}
		r.loads[provider] = dl
	}
	booted := r.booted
	r.mu.Unlock()

	dl.once.Do(func() {
		if err := provider.Register(c); err != nil {
			dl.err = fmt.Errorf("register deferred provider %T: %w", provider, err)
			return
		}
		if booted {
			if err := provider.Boot(c); err != nil {
				dl.err = fmt.Errorf("boot deferred provider %T: %w", provider, err)
			}
		}
	})
	return dl.err
}

// Boot runs the Boot phase on all eager providers in registration order.
// Every registered provider has completed Register before the first Boot
// call; repeated Boot calls are no-ops.
func (r *ProviderRegistry) Boot() error {
	r.mu.Lock()
	if r.booted {
		r.mu.Unlock()
		return nil
	}
	r.booted = true
	providers := append([]ServiceProvider(nil), r.eager...)
	r.mu.Unlock()

	for _, provider := range providers {
		if err := provider.Boot(r.app); err != nil {
			return fmt.Errorf("boot provider %T: %w", provider, err)
		}
	}
	return nil
}

// Booted reports whether Boot has run.
func (r *ProviderRegistry) Booted() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.booted
}

// Providers returns the registered eager providers in order.
func (r *ProviderRegistry) Providers() []ServiceProvider {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]ServiceProvider(nil), r.eager...)
}
