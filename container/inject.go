package container

import (
	"fmt"
	"reflect"
)

// ── Shared marker ─────────────────────────────────────────────────────────────

// Shared marks a type whose instances are shared container-wide: the
// parameter resolver hands every function asking for a Shared type the same
// instance for the lifetime of the container, instead of constructing a
// fresh one per call.
type Shared interface {
	SharedInstance()
}

// SharesInstance is an embeddable implementation of the Shared marker.
//
//	type SessionStore struct {
//	    container.SharesInstance
//	    ...
//	}
type SharesInstance struct{}

func (SharesInstance) SharedInstance() {}

var sharedType = reflect.TypeOf((*Shared)(nil)).Elem()
var containerType = reflect.TypeOf((*Container)(nil))

// ── Type keys ─────────────────────────────────────────────────────────────────

// TypeKey returns the package-qualified type name of v, a stable abstract
// key for binding interfaces and concrete types.
//
//	c.Singleton(container.TypeKey((*UserStore)(nil)), factory)
func TypeKey(v any) string {
	return typeKey(reflect.TypeOf(v))
}

func typeKey(t reflect.Type) string {
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	if t.Name() == "" {
		return t.String()
	}
	return t.PkgPath() + "." + t.Name()
}

// ── Call ──────────────────────────────────────────────────────────────────────

// Call invokes fn with one argument per declared parameter, resolved in
// order of preference:
//
//  1. an extra value of assignable type (request-scoped values the caller
//     supplies for this invocation only);
//  2. the container itself, for *Container parameters;
//  3. the shared path for Shared-marked types — one instance per type for
//     the lifetime of the container;
//  4. the registered binding for the type's key, when one exists;
//  5. a fresh zero instance for constructible concrete types;
//  6. the parameter type's zero value.
//
// Case 6 means primitive, untyped, and unresolvable parameters are supplied
// without error; callers wanting those must take them as extras. Results are
// returned as a slice in declaration order.
func (c *Container) Call(fn any, extras ...any) ([]any, error) {
	fv := reflect.ValueOf(fn)
	if !fv.IsValid() || fv.Kind() != reflect.Func {
		return nil, fmt.Errorf("container: Call target must be a func, got %T", fn)
	}

	ft := fv.Type()
	args := make([]reflect.Value, ft.NumIn())
	for i := range args {
		arg, err := c.resolveParam(ft.In(i), extras)
		if err != nil {
			return nil, err
		}
		args[i] = arg
	}

	results := fv.Call(args)
	out := make([]any, len(results))
	for i, r := range results {
		out[i] = r.Interface()
	}
	return out, nil
}

// resolveParam produces one argument value for a declared parameter type.
func (c *Container) resolveParam(t reflect.Type, extras []any) (reflect.Value, error) {
	for _, extra := range extras {
		ev := reflect.ValueOf(extra)
		if ev.IsValid() && ev.Type().AssignableTo(t) {
			return ev, nil
		}
	}

	if t == containerType {
		return reflect.ValueOf(c), nil
	}

	if t.Implements(sharedType) {
		v, err := c.shared(t)
		if err != nil {
			return reflect.Value{}, err
		}
		return reflect.ValueOf(v), nil
	}

	if key := typeKey(t); c.Bound(key) {
		v, err := c.Make(key)
		if err != nil {
			return reflect.Value{}, err
		}
		rv := reflect.ValueOf(v)
		if rv.IsValid() && rv.Type().AssignableTo(t) {
			return rv, nil
		}
		// Binding resolved to an incompatible value; fall through to the
		// construct-or-zero path rather than failing the call.
	}

	if v, ok := newInstanceOf(t); ok {
		return v, nil
	}

	// Unresolvable: supply the zero value, never an error.
	return reflect.Zero(t), nil
}

// shared resolves t through the singleton path: the cached instance under
// the type's key, the registered binding if one exists (result cached), or
// a fresh instance stored for all later callers.
func (c *Container) shared(t reflect.Type) (any, error) {
	key := typeKey(t)

	c.mu.RLock()
	inst, ok := c.instances[key]
	c.mu.RUnlock()
	if ok {
		return inst, nil
	}

	if c.Bound(key) {
		v, err := c.Make(key)
		if err != nil {
			return nil, err
		}
		c.mu.Lock()
		if existing, ok := c.instances[key]; ok {
			v = existing
		} else {
			c.instances[key] = v
		}
		c.mu.Unlock()
		return v, nil
	}

	nv, ok := newInstanceOf(t)
	if !ok {
		return nil, fmt.Errorf("container: cannot construct shared instance of %s", t)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if existing, ok := c.instances[key]; ok {
		return existing, nil
	}
	v := nv.Interface()
	c.instances[key] = v
	return v, nil
}

// newInstanceOf constructs a fresh zero instance for constructible concrete
// types: pointer-to-struct and plain struct. Interfaces, primitives, and
// everything else are not constructible.
func newInstanceOf(t reflect.Type) (reflect.Value, bool) {
	switch {
	case t.Kind() == reflect.Ptr && t.Elem().Kind() == reflect.Struct:
		return reflect.New(t.Elem()), true
	case t.Kind() == reflect.Struct:
		return reflect.New(t).Elem(), true
	default:
		return reflect.Value{}, false
	}
}
