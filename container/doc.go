// Package container provides the Vessel IoC container, parameter injection,
// and the service-provider lifecycle.
//
// # Container
//
// The container maps abstract string keys to construction strategies:
//
//	c := container.New()
//
//	// Transient — new value on every Make
//	c.Bind("uuid", func(c *container.Container) (any, error) { return newID(), nil })
//
//	// Singleton — built once, cached
//	c.Singleton("cache", func(c *container.Container) (any, error) {
//	    cfg, err := container.Resolve[*config.Repository](c, "config")
//	    if err != nil {
//	        return nil, err
//	    }
//	    return cache.New(cfg), nil
//	})
//
//	// Pre-built value
//	c.Instance("config", repo)
//
//	// Resolution
//	raw, err := c.Make("cache")
//	typed, err := container.Resolve[*cache.Cache](c, "cache")
//
// Registration is last write wins. Re-binding an already-resolved abstract
// drops the cached instance and fires any Rebinding callbacks with the
// freshly built value. Resolution of a circular factory chain fails fast
// with *CircularDependencyError; the chain is reported in the error.
//
// Aliases, tags, Extend decorators, and contextual bindings follow the same
// shapes as the rest of the API; see the method docs.
//
// # Parameter injection
//
// Call invokes an arbitrary function, producing one argument per declared
// parameter. Types carrying the Shared marker resolve through the singleton
// path — every caller sees the same instance:
//
//	type Sessions struct {
//	    container.SharesInstance
//	    ...
//	}
//
//	out, err := c.Call(func(s *Sessions, req *vhttp.Request) vhttp.Responder {
//	    ...
//	})
//
// Parameters that are neither extras, Shared, bound, nor constructible
// receive their zero value; Call never fails on an unresolvable parameter.
//
// # Service providers
//
// Providers register bindings and perform setup in two ordered phases. The
// registry guarantees every provider's Register completes before any
// provider's Boot runs:
//
//	reg := container.NewProviderRegistry(c)
//	if err := reg.Register(&AppServiceProvider{}); err != nil { ... }
//	if err := reg.Boot(); err != nil { ... }
//
// Deferred providers (IsDeferred true) register on the first Make of one of
// their Provides keys. Named factories registered via
// RegisterProviderFactory let configuration select providers by name.
package container
