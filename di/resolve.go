package di

import (
	"fmt"
	"slices"

	apperrors "github.com/kbukum/oswald/errors"
)

// chain is the ordered set of keys mid-resolution within one top-level call.
type chain struct {
	keys []string
}

func (ch *chain) contains(key string) bool {
	return slices.Contains(ch.keys, key)
}

func (ch *chain) push(key string) {
	ch.keys = append(ch.keys, key)
}

func (ch *chain) pop() {
	ch.keys = ch.keys[:len(ch.keys)-1]
}

// Resolve constructs an instance of the type described by d, resolving its
// dependencies through the container. It fails with CIRCULAR_DEPENDENCY when
// the dependency graph of d loops back on itself.
func (c *Container) Resolve(d Descriptor) (any, error) {
	if err := d.validate(); err != nil {
		return nil, err
	}
	return c.resolve(d, &chain{})
}

func (c *Container) resolve(d Descriptor, ch *chain) (any, error) {
	if ch.contains(d.key) {
		return nil, apperrors.CircularDependency(ch.keys, d.key)
	}

	ch.push(d.key)
	defer ch.pop()

	args := make(Args, len(d.deps))
	for i := range d.deps {
		dep, err := c.get(d.dependencyKey(i), ch)
		if err != nil {
			return nil, err
		}
		args[i] = dep
	}

	instance, err := d.construct(args)
	if err != nil {
		return nil, apperrors.ConstructionFailed(d.key, err)
	}
	return instance, nil
}

// Getter is anything that resolves instances by key.
type Getter interface {
	Get(key string) (any, error)
}

// MustResolve resolves a component with type safety, panics on error.
// Use this in wiring code where a missing dependency is a programming error.
//
// Example:
//
//	repo := di.MustResolve[*Repository](container, "Repository")
func MustResolve[T any](c Getter, key string) T {
	result, err := Resolve[T](c, key)
	if err != nil {
		panic(fmt.Sprintf("di: %v", err))
	}
	return result
}

// Resolve resolves a component with type safety, returns error on failure.
//
// Example:
//
//	repo, err := di.Resolve[*Repository](c, "Repository")
//	if err != nil {
//	    return fmt.Errorf("failed to get repository: %w", err)
//	}
func Resolve[T any](c Getter, key string) (T, error) {
	var zero T
	instance, err := c.Get(key)
	if err != nil {
		return zero, err
	}
	result, ok := instance.(T)
	if !ok {
		return zero, apperrors.TypeMismatch("component "+key, instance, zero)
	}
	return result, nil
}

// TryResolve resolves a component, returns zero value and false if it is
// missing, fails to construct, or has another type.
func TryResolve[T any](c Getter, key string) (T, bool) {
	result, err := Resolve[T](c, key)
	if err != nil {
		return result, false
	}
	return result, true
}
