package di

import (
	"fmt"
	"maps"
	"net/http"
	"slices"

	apperrors "github.com/kbukum/oswald/errors"
)

// Args holds resolved dependencies in declared parameter order.
type Args []any

// Constructor builds an instance from its resolved dependencies.
type Constructor func(args Args) (any, error)

// Descriptor is the metadata the container needs to construct a type.
// Build one with Describe; the zero value is not registrable.
type Descriptor struct {
	key       string
	deps      []string
	overrides map[int]string
	singleton bool
	construct Constructor
}

// Key returns the registration key of the described type.
func (d Descriptor) Key() string { return d.key }

// IsSingleton reports whether the type should be cached after first resolution.
func (d Descriptor) IsSingleton() bool { return d.singleton }

// Dependencies returns the effective dependency keys in parameter order,
// with override tokens applied.
func (d Descriptor) Dependencies() []string {
	keys := make([]string, len(d.deps))
	for i := range d.deps {
		keys[i] = d.dependencyKey(i)
	}
	return keys
}

// dependencyKey returns the key to resolve for parameter i: the override
// token when one was injected for that position, the declared key otherwise.
func (d Descriptor) dependencyKey(i int) string {
	if token, ok := d.overrides[i]; ok {
		return token
	}
	return d.deps[i]
}

func (d Descriptor) validate() error {
	if d.key == "" {
		return apperrors.InvalidDescriptor(d.key, "key is required")
	}
	if d.construct == nil {
		return apperrors.InvalidDescriptor(d.key, "constructor is required")
	}
	for i, dep := range d.deps {
		if d.dependencyKey(i) == "" {
			return apperrors.InvalidDescriptor(d.key, fmt.Sprintf("dependency %d (%q) has an empty key", i, dep))
		}
	}
	return nil
}

// Builder assembles a Descriptor.
type Builder struct {
	d Descriptor
}

// Describe starts a descriptor for the type registered under key.
func Describe(key string, construct Constructor) *Builder {
	return &Builder{d: Descriptor{key: key, construct: construct}}
}

// DependsOn appends dependency keys, one per constructor parameter, in order.
func (b *Builder) DependsOn(keys ...string) *Builder {
	b.d.deps = append(b.d.deps, keys...)
	return b
}

// Inject overrides the dependency key for the parameter at index.
// Overrides for positions without a declared dependency are ignored.
func (b *Builder) Inject(index int, token string) *Builder {
	if b.d.overrides == nil {
		b.d.overrides = make(map[int]string)
	}
	b.d.overrides[index] = token
	return b
}

// AsSingleton marks the type as process-wide singleton.
func (b *Builder) AsSingleton() *Builder {
	b.d.singleton = true
	return b
}

// Build returns an immutable copy of the descriptor.
func (b *Builder) Build() Descriptor {
	d := b.d
	d.deps = slices.Clone(b.d.deps)
	d.overrides = maps.Clone(b.d.overrides)
	return d
}

// Arg returns the resolved dependency at index i as T.
func Arg[T any](args Args, i int) (T, error) {
	var zero T
	if i < 0 || i >= len(args) {
		return zero, apperrors.New(apperrors.ErrCodeTypeMismatch,
			fmt.Sprintf("argument %d out of range (%d resolved)", i, len(args)), http.StatusInternalServerError)
	}
	v, ok := args[i].(T)
	if !ok {
		return zero, apperrors.TypeMismatch(fmt.Sprintf("argument %d", i), args[i], zero)
	}
	return v, nil
}
