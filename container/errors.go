package container

import (
	"fmt"
	"strings"
)

// BindingNotFoundError is returned when an abstract has no registered
// binding and no cached instance.
type BindingNotFoundError struct {
	Abstract string
}

func (e *BindingNotFoundError) Error() string {
	return fmt.Sprintf("container: no binding registered for [%s]", e.Abstract)
}

// CircularDependencyError is returned when resolving an abstract requires
// resolving itself. Chain holds the resolution path, ending with the
// abstract that closed the cycle.
type CircularDependencyError struct {
	Chain []string
}

func (e *CircularDependencyError) Error() string {
	return fmt.Sprintf("container: circular dependency: %s", strings.Join(e.Chain, " -> "))
}

// TypeMismatchError is returned by Resolve when a binding resolves to a
// value of an unexpected type.
type TypeMismatchError struct {
	Abstract string
	Expected string
	Got      string
}

func (e *TypeMismatchError) Error() string {
	return fmt.Sprintf("container: [%s] resolved to %s, expected %s", e.Abstract, e.Got, e.Expected)
}

// UnknownProviderError is returned when a configured provider name has no
// registered factory.
type UnknownProviderError struct {
	Name string
}

func (e *UnknownProviderError) Error() string {
	return fmt.Sprintf("container: no service provider registered under name %q", e.Name)
}
